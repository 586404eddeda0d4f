package offers

import (
	"strings"
	"time"

	"zipduck-backend/internal/extraction"
)

// Provenance records where an offer's data originated.
type Provenance string

const (
	ProvenanceRegistry Provenance = "REGISTRY"
	ProvenanceDocument Provenance = "DOCUMENT"
	ProvenanceMerged   Provenance = "MERGED"
)

// HousingCategory classifies the housing type of an offer.
type HousingCategory string

const (
	CategoryApartment HousingCategory = "APARTMENT"
	CategoryOfficetel HousingCategory = "OFFICETEL"
	CategoryVilla     HousingCategory = "VILLA"
	CategoryTownhouse HousingCategory = "TOWNHOUSE"
	CategoryEtc       HousingCategory = "ETC"
)

// Offer is a time-boxed housing-subscription opportunity with eligibility
// criteria. Nil criterion bounds mean unrestricted on that side.
type Offer struct {
	ID                    string
	Name                  string
	Region                string
	Address               string
	HousingCategory       HousingCategory
	MinAge                *int
	MaxAge                *int
	MinIncome             *int64
	MaxIncome             *int64
	MinHouseholdMembers   *int
	MaxHouseholdMembers   *int
	MaxHousingOwned       *int
	SpecialQualifications string
	PreferenceCategories  string
	MinPrice              *int64
	MaxPrice              *int64
	ApplicationStartDate  *time.Time
	ApplicationEndDate    *time.Time
	Provenance            Provenance
	ExternalID            string
	DocumentID            string
	Active                bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Expired reports whether the application window closed before the given day.
func (o Offer) Expired(today time.Time) bool {
	if o.ApplicationEndDate == nil {
		return false
	}
	return o.ApplicationEndDate.Before(today.Truncate(24 * time.Hour))
}

// ParseHousingCategory maps free-text housing-type descriptions onto the
// category enum.
func ParseHousingCategory(raw string) HousingCategory {
	normalized := strings.TrimSpace(raw)
	switch {
	case strings.Contains(normalized, "아파트"):
		return CategoryApartment
	case strings.Contains(normalized, "오피스텔"):
		return CategoryOfficetel
	case strings.Contains(normalized, "빌라"):
		return CategoryVilla
	case strings.Contains(normalized, "타운하우스"):
		return CategoryTownhouse
	default:
		return CategoryEtc
	}
}

// FromCriteria builds an Offer from document-extracted criteria. The caller
// assigns ID, provenance and document linkage.
func FromCriteria(criteria extraction.Criteria, now time.Time) Offer {
	offer := Offer{
		Name:                strValue(criteria.OfferName),
		Region:              strValue(criteria.Region),
		Address:             strValue(criteria.Address),
		HousingCategory:     ParseHousingCategory(strValue(criteria.HousingCategory)),
		MinAge:              criteria.MinAge,
		MaxAge:              criteria.MaxAge,
		MinIncome:           criteria.MinIncome,
		MaxIncome:           criteria.MaxIncome,
		MinHouseholdMembers: criteria.MinHouseholdMembers,
		MaxHouseholdMembers: criteria.MaxHouseholdMembers,
		MaxHousingOwned:     criteria.MaxHousingOwned,
		MinPrice:            criteria.MinPrice,
		MaxPrice:            criteria.MaxPrice,
		Active:              true,
	}
	if criteria.SpecialQualifications != nil {
		offer.SpecialQualifications = *criteria.SpecialQualifications
	}
	if criteria.PreferenceCategories != nil {
		offer.PreferenceCategories = *criteria.PreferenceCategories
	}

	start := now.Truncate(24 * time.Hour)
	offer.ApplicationStartDate = &start
	end := parseApplicationEnd(criteria.ApplicationPeriod, now)
	offer.ApplicationEndDate = &end

	return offer
}

// parseApplicationEnd extracts a closing date from the free-text application
// period, defaulting to one month out when nothing parses.
func parseApplicationEnd(period *string, now time.Time) time.Time {
	fallback := now.AddDate(0, 1, 0).Truncate(24 * time.Hour)
	if period == nil {
		return fallback
	}

	fields := strings.FieldsFunc(*period, func(r rune) bool {
		return r == ' ' || r == '~' || r == ','
	})
	var last time.Time
	for _, field := range fields {
		if t, err := time.Parse("2006-01-02", strings.TrimSpace(field)); err == nil {
			if t.After(last) {
				last = t
			}
		}
	}
	if last.IsZero() {
		return fallback
	}
	return last
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
