package eligibility

import (
	"strings"

	"zipduck-backend/internal/offers"
	"zipduck-backend/internal/profiles"
)

// Breakdown reports which criteria a profile passes for an offer.
type Breakdown struct {
	Age          bool
	Income       bool
	Household    bool
	OwnedHousing bool
	Overall      bool
	Score        int
}

// IsEligible reports whether the profile satisfies every criterion of the
// offer. All numeric bounds are inclusive; a nil bound is unrestricted on
// that side.
func IsEligible(profile profiles.Profile, offer offers.Offer) bool {
	return ageEligible(profile, offer) &&
		incomeEligible(profile, offer) &&
		householdEligible(profile, offer) &&
		ownedHousingEligible(profile, offer)
}

// MatchScore computes the canonical 0-100 match score. Ineligible profiles
// score 0. Eligible profiles start at 100 and lose points for weak fits:
// owning housing when the offer caps ownership, sitting in the outer 10%
// of the income range, and no preferred-region match.
func MatchScore(profile profiles.Profile, offer offers.Offer) int {
	if !IsEligible(profile, offer) {
		return 0
	}

	penalties := 0

	if offer.MaxHousingOwned != nil && profile.HousingOwned > 0 {
		penalties += 5
	}

	if offer.MinIncome != nil && offer.MaxIncome != nil {
		incomeRange := *offer.MaxIncome - *offer.MinIncome
		position := profile.AnnualIncome - *offer.MinIncome
		if float64(position) < float64(incomeRange)*0.1 || float64(position) > float64(incomeRange)*0.9 {
			penalties += 10
		}
	}

	if tokens := profile.PreferredRegionTokens(); len(tokens) > 0 && offer.Region != "" {
		if !regionMatches(tokens, offer.Region) {
			penalties += 15
		}
	}

	score := 100 - penalties
	if score < 0 {
		score = 0
	}
	return score
}

// Evaluate returns the per-criterion breakdown together with the canonical
// match score.
func Evaluate(profile profiles.Profile, offer offers.Offer) Breakdown {
	return Breakdown{
		Age:          ageEligible(profile, offer),
		Income:       incomeEligible(profile, offer),
		Household:    householdEligible(profile, offer),
		OwnedHousing: ownedHousingEligible(profile, offer),
		Overall:      IsEligible(profile, offer),
		Score:        MatchScore(profile, offer),
	}
}

func ageEligible(profile profiles.Profile, offer offers.Offer) bool {
	if offer.MinAge != nil && profile.Age < *offer.MinAge {
		return false
	}
	if offer.MaxAge != nil && profile.Age > *offer.MaxAge {
		return false
	}
	return true
}

func incomeEligible(profile profiles.Profile, offer offers.Offer) bool {
	if offer.MinIncome != nil && profile.AnnualIncome < *offer.MinIncome {
		return false
	}
	if offer.MaxIncome != nil && profile.AnnualIncome > *offer.MaxIncome {
		return false
	}
	return true
}

func householdEligible(profile profiles.Profile, offer offers.Offer) bool {
	if offer.MinHouseholdMembers != nil && profile.HouseholdMembers < *offer.MinHouseholdMembers {
		return false
	}
	if offer.MaxHouseholdMembers != nil && profile.HouseholdMembers > *offer.MaxHouseholdMembers {
		return false
	}
	return true
}

func ownedHousingEligible(profile profiles.Profile, offer offers.Offer) bool {
	if offer.MaxHousingOwned != nil && profile.HousingOwned > *offer.MaxHousingOwned {
		return false
	}
	return true
}

func regionMatches(tokens []string, region string) bool {
	for _, token := range tokens {
		if token != "" && strings.Contains(region, token) {
			return true
		}
	}
	return false
}
