package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"zipduck-backend/internal/extraction"
	"zipduck-backend/internal/offers"
	"zipduck-backend/internal/shared/telemetry"
)

// Reconciler merges document-extracted criteria with already-stored offers
// instead of creating duplicates.
type Reconciler struct {
	Offers  offers.Repo
	Matcher Matcher
}

// Reconcile finds or creates the offer described by the criteria. On a match
// against a registry offer the document is linked and provenance becomes
// MERGED; registry attribute values win. On a miss a new DOCUMENT offer is
// created. Returns the resulting offer and whether it was newly created.
func (r *Reconciler) Reconcile(ctx context.Context, criteria extraction.Criteria, documentID string, now time.Time) (offers.Offer, bool, error) {
	filter := offers.SearchFilter{Limit: 100}
	if criteria.Region != nil {
		filter.Region = strings.TrimSpace(*criteria.Region)
	}
	candidates, err := r.Offers.ListActive(ctx, filter)
	if err != nil {
		return offers.Offer{}, false, fmt.Errorf("list candidate offers: %w", err)
	}

	if matched, ok := r.Matcher.Match(criteria, candidates); ok {
		if matched.Provenance == offers.ProvenanceRegistry {
			if err := r.Offers.MergeWithDocument(ctx, matched.ID, documentID); err != nil {
				return offers.Offer{}, false, fmt.Errorf("merge offer %s: %w", matched.ID, err)
			}
			matched.Provenance = offers.ProvenanceMerged
			matched.DocumentID = documentID
			telemetry.Info("reconcile.merged", map[string]any{
				"offerId":    matched.ID,
				"documentId": documentID,
			})
		} else {
			telemetry.Info("reconcile.matched_existing", map[string]any{
				"offerId":    matched.ID,
				"documentId": documentID,
				"provenance": string(matched.Provenance),
			})
		}
		return matched, false, nil
	}

	offer := offers.FromCriteria(criteria, now)
	offer.ID = uuid.NewString()
	offer.Provenance = offers.ProvenanceDocument
	offer.DocumentID = documentID
	offer.CreatedAt = now.UTC()
	offer.UpdatedAt = now.UTC()
	if err := r.Offers.Create(ctx, offer); err != nil {
		return offers.Offer{}, false, fmt.Errorf("create offer: %w", err)
	}
	telemetry.Info("reconcile.created", map[string]any{
		"offerId":    offer.ID,
		"documentId": documentID,
	})
	return offer, true, nil
}
