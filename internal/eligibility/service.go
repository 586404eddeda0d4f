package eligibility

import (
	"context"
	"errors"

	"zipduck-backend/internal/offers"
	"zipduck-backend/internal/profiles"
)

// RankedOffer pairs an offer with its evaluation for one user.
type RankedOffer struct {
	Offer     offers.Offer
	Breakdown Breakdown
}

// Service evaluates the current user's profile against stored offers. Results
// are derived per request and never written back to offer state.
type Service struct {
	Profiles profiles.Repo
	Offers   offers.Repo
}

// ErrProfileRequired is returned when the user has no profile to evaluate.
var ErrProfileRequired = errors.New("profile required for eligibility evaluation")

func (s *Service) profile(ctx context.Context, userID string) (profiles.Profile, error) {
	profile, err := s.Profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			return profiles.Profile{}, ErrProfileRequired
		}
		return profiles.Profile{}, err
	}
	return profile, nil
}

// RankOffers evaluates all active offers matching the filter for the user,
// sorted by the repo's listing order. When eligibleOnly is set, ineligible
// offers are dropped.
func (s *Service) RankOffers(ctx context.Context, userID string, filter offers.SearchFilter, eligibleOnly bool) ([]RankedOffer, error) {
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.Offers.ListActive(ctx, filter)
	if err != nil {
		return nil, err
	}

	ranked := make([]RankedOffer, 0, len(items))
	for _, offer := range items {
		breakdown := Evaluate(profile, offer)
		if eligibleOnly && !breakdown.Overall {
			continue
		}
		ranked = append(ranked, RankedOffer{Offer: offer, Breakdown: breakdown})
	}
	return ranked, nil
}

// EvaluateOffer returns the per-criterion breakdown and the detailed axis
// decomposition for one offer.
func (s *Service) EvaluateOffer(ctx context.Context, userID, offerID string) (Breakdown, ScoreDetail, error) {
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return Breakdown{}, ScoreDetail{}, err
	}

	offer, err := s.Offers.GetByID(ctx, offerID)
	if err != nil {
		return Breakdown{}, ScoreDetail{}, err
	}

	return Evaluate(profile, offer), DetailedScore(profile, offer), nil
}
