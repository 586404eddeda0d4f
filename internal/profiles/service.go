package profiles

import (
	"context"
	"errors"
	"time"
)

// Service contains business logic for profiles.
type Service struct {
	Repo Repo
}

// Get returns the profile for a user.
func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	if userID == "" {
		return Profile{}, errors.New("user id required")
	}
	return s.Repo.Get(ctx, userID)
}

// Update validates and stores the profile for a user.
func (s *Service) Update(ctx context.Context, profile Profile) (Profile, error) {
	if profile.UserID == "" {
		return Profile{}, errors.New("user id required")
	}
	if profile.Age < 0 || profile.AnnualIncome < 0 || profile.HouseholdMembers < 0 || profile.HousingOwned < 0 {
		return Profile{}, ErrInvalidInput
	}

	now := time.Now().UTC()
	existing, err := s.Repo.Get(ctx, profile.UserID)
	switch {
	case err == nil:
		profile.CreatedAt = existing.CreatedAt
	case errors.Is(err, ErrNotFound):
		profile.CreatedAt = now
	default:
		return Profile{}, err
	}
	profile.UpdatedAt = now

	if err := s.Repo.Upsert(ctx, profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}
