package analysis

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("analysis outcome not found")

// Repo defines persistence operations for analysis outcomes.
type Repo interface {
	Create(ctx context.Context, outcome Outcome) error
	GetByDocumentID(ctx context.Context, documentID string) (Outcome, error)
}
