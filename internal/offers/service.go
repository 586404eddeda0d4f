package offers

import (
	"context"
	"errors"
)

// Service contains business logic for browsing offers.
type Service struct {
	Repo Repo
}

// Get returns a single offer by ID.
func (s *Service) Get(ctx context.Context, id string) (Offer, error) {
	if id == "" {
		return Offer{}, errors.New("offer id required")
	}
	return s.Repo.GetByID(ctx, id)
}

// List returns active offers matching the filter.
func (s *Service) List(ctx context.Context, filter SearchFilter) ([]Offer, error) {
	return s.Repo.ListActive(ctx, filter)
}
