package registry

import (
	"context"
	"time"
)

// Record is one announcement row from the public registry feed. Nil bounds
// mean the feed published no restriction for that criterion.
type Record struct {
	ExternalID            string
	Name                  string
	Region                string
	Address               string
	HousingType           string
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
}

// FeedClient fetches the current batch of registry announcements. The
// transport behind it is a deployment concern.
type FeedClient interface {
	FetchOffers(ctx context.Context) ([]Record, error)
}
