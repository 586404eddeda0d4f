package reconcile

import (
	"strings"

	"zipduck-backend/internal/extraction"
	"zipduck-backend/internal/offers"
)

// Matcher decides whether extracted criteria describe an offer we already
// store. The heuristic is pluggable so it can be replaced with fuzzy
// matching without touching the pipeline.
type Matcher interface {
	Match(criteria extraction.Criteria, candidates []offers.Offer) (offers.Offer, bool)
}

// NameRegionMatcher matches when the extracted name is contained in a stored
// offer's name and the regions are exactly equal. Substring containment
// tolerates the suffixes announcements add around the estate name.
type NameRegionMatcher struct{}

func (NameRegionMatcher) Match(criteria extraction.Criteria, candidates []offers.Offer) (offers.Offer, bool) {
	if criteria.OfferName == nil || criteria.Region == nil {
		return offers.Offer{}, false
	}
	name := strings.TrimSpace(*criteria.OfferName)
	region := strings.TrimSpace(*criteria.Region)
	if name == "" || region == "" {
		return offers.Offer{}, false
	}

	for _, candidate := range candidates {
		if candidate.Region != region {
			continue
		}
		if strings.Contains(candidate.Name, name) {
			return candidate, true
		}
	}
	return offers.Offer{}, false
}
