package offers

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo used for local development and tests.
type MemoryRepo struct {
	mu     sync.RWMutex
	offers map[string]Offer
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{offers: make(map[string]Offer)}
}

func (r *MemoryRepo) Create(ctx context.Context, offer Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offers[offer.ID] = offer
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, offer Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.offers[offer.ID]; !ok {
		return ErrNotFound
	}
	r.offers[offer.ID] = offer
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	offer, ok := r.offers[id]
	if !ok {
		return Offer{}, ErrNotFound
	}
	return offer, nil
}

func (r *MemoryRepo) GetByExternalID(ctx context.Context, externalID string) (Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, offer := range r.offers {
		if offer.ExternalID != "" && offer.ExternalID == externalID {
			return offer, nil
		}
	}
	return Offer{}, ErrNotFound
}

func (r *MemoryRepo) ListActive(ctx context.Context, filter SearchFilter) ([]Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Offer
	for _, offer := range r.offers {
		if !offer.Active {
			continue
		}
		if filter.Region != "" && offer.Region != filter.Region {
			continue
		}
		if filter.Category != "" && offer.HousingCategory != filter.Category {
			continue
		}
		matched = append(matched, offer)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	offset := filter.Offset
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *MemoryRepo) MergeWithDocument(ctx context.Context, offerID, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	offer, ok := r.offers[offerID]
	if !ok || offer.Provenance != ProvenanceRegistry {
		return ErrNotFound
	}
	offer.Provenance = ProvenanceMerged
	offer.DocumentID = documentID
	offer.UpdatedAt = time.Now().UTC()
	r.offers[offerID] = offer
	return nil
}

func (r *MemoryRepo) DeactivateExpired(ctx context.Context, today time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for id, offer := range r.offers {
		if offer.Active && offer.Expired(today) {
			offer.Active = false
			offer.UpdatedAt = time.Now().UTC()
			r.offers[id] = offer
			count++
		}
	}
	return count, nil
}

var _ Repo = (*MemoryRepo)(nil)
