package analysis

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory Repo used for local development and tests.
type MemoryRepo struct {
	mu       sync.RWMutex
	byDocument map[string]Outcome
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byDocument: make(map[string]Outcome)}
}

func (r *MemoryRepo) Create(ctx context.Context, outcome Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byDocument[outcome.DocumentID] = outcome
	return nil
}

func (r *MemoryRepo) GetByDocumentID(ctx context.Context, documentID string) (Outcome, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	outcome, ok := r.byDocument[documentID]
	if !ok {
		return Outcome{}, ErrNotFound
	}
	return outcome, nil
}

var _ Repo = (*MemoryRepo)(nil)
