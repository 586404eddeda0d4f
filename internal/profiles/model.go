package profiles

import (
	"strings"
	"time"
)

// Profile captures the attributes used to evaluate housing-subscription
// eligibility. It is an immutable snapshot during evaluation; changes go
// through Service.Update.
type Profile struct {
	UserID           string
	Age              int
	AnnualIncome     int64
	HouseholdMembers int
	HousingOwned     int
	PreferredRegions string // comma-separated region tokens, ordered
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PreferredRegionTokens splits the preferred-regions field into trimmed,
// non-empty tokens preserving order.
func (p Profile) PreferredRegionTokens() []string {
	if strings.TrimSpace(p.PreferredRegions) == "" {
		return nil
	}
	parts := strings.Split(p.PreferredRegions, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
