package eligibility

import (
	"zipduck-backend/internal/offers"
	"zipduck-backend/internal/profiles"
)

// ScoreDetail decomposes a match into five weighted axes (age 10, income 30,
// household 10, owned housing 20, location 30). The axis heuristics differ
// from MatchScore's penalty model, so Overall here is approximate; MatchScore
// stays the canonical number.
type ScoreDetail struct {
	OfferID      string
	OfferName    string
	Eligible     bool
	Overall      int
	Age          int
	Income       int
	Household    int
	OwnedHousing int
	Location     int
	Reason       string
}

// DetailedScore computes the explanatory per-axis breakdown for an offer.
func DetailedScore(profile profiles.Profile, offer offers.Offer) ScoreDetail {
	detail := ScoreDetail{
		OfferID:   offer.ID,
		OfferName: offer.Name,
	}

	if !IsEligible(profile, offer) {
		detail.Reason = "자격 조건 미달"
		return detail
	}
	detail.Eligible = true

	detail.Age = ageScore(profile.Age, offer.MinAge, offer.MaxAge)
	detail.Income = incomeScore(profile.AnnualIncome, offer.MinIncome, offer.MaxIncome)
	detail.Household = householdScore(profile.HouseholdMembers, offer.MinHouseholdMembers, offer.MaxHouseholdMembers)
	detail.OwnedHousing = ownedHousingScore(profile.HousingOwned, offer.MaxHousingOwned)
	detail.Location = locationScore(profile.PreferredRegionTokens(), offer.Region)

	detail.Overall = detail.Age + detail.Income + detail.Household + detail.OwnedHousing + detail.Location
	detail.Reason = scoreReason(detail.Overall)
	return detail
}

func ageScore(age int, minAge, maxAge *int) int {
	if minAge == nil && maxAge == nil {
		return 10
	}
	if minAge != nil && age < *minAge+5 {
		return 7
	}
	if maxAge != nil && age > *maxAge-5 {
		return 7
	}
	return 10
}

func incomeScore(income int64, minIncome, maxIncome *int64) int {
	if minIncome == nil && maxIncome == nil {
		return 30
	}
	if minIncome != nil && maxIncome != nil {
		ratio := float64(income-*minIncome) / float64(*maxIncome-*minIncome)
		switch {
		case ratio >= 0.2 && ratio <= 0.8:
			return 30
		case ratio >= 0.1 && ratio <= 0.9:
			return 25
		default:
			return 20
		}
	}
	return 25
}

func householdScore(members int, minMembers, maxMembers *int) int {
	if minMembers == nil && maxMembers == nil {
		return 10
	}
	if minMembers != nil && maxMembers != nil {
		middle := (*minMembers + *maxMembers) / 2
		distance := members - middle
		if distance < 0 {
			distance = -distance
		}
		switch {
		case distance == 0:
			return 10
		case distance <= 1:
			return 8
		default:
			return 6
		}
	}
	return 8
}

func ownedHousingScore(owned int, maxOwned *int) int {
	if maxOwned == nil {
		return 20
	}
	if *maxOwned == 0 {
		if owned == 0 {
			return 20
		}
		return 0
	}
	ratio := float64(owned) / float64(*maxOwned)
	switch {
	case ratio <= 0.5:
		return 20
	case ratio <= 0.75:
		return 15
	default:
		return 10
	}
}

func locationScore(tokens []string, region string) int {
	if len(tokens) == 0 || region == "" {
		return 15
	}
	if regionMatches(tokens, region) {
		return 30
	}
	return 5
}

func scoreReason(overall int) string {
	switch {
	case overall >= 90:
		return "매우 적합한 청약입니다"
	case overall >= 75:
		return "적합한 청약입니다"
	case overall >= 60:
		return "조건부 적합입니다"
	default:
		return "자격은 있으나 조건이 다소 맞지 않습니다"
	}
}
