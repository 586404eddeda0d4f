package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"zipduck-backend/internal/offers"
	"zipduck-backend/internal/resilience"
	"zipduck-backend/internal/shared/metrics"
	"zipduck-backend/internal/shared/telemetry"
)

// Summary reports the outcome of one collection run.
type Summary struct {
	Fetched int
	Created int
	Updated int
	Failed  int
}

// Collector pulls registry announcements and upserts them as offers keyed by
// external id. A bad record is logged and skipped, never aborting the run.
type Collector struct {
	Offers offers.Repo
	Feed   FeedClient
	Call   *resilience.Caller[[]Record]
}

func NewCollector(repo offers.Repo, feed FeedClient) *Collector {
	return &Collector{
		Offers: repo,
		Feed:   feed,
		Call:   resilience.New[[]Record]("registry").WithTimeout(30 * time.Second),
	}
}

// Collect fetches the feed once and reconciles every record into the offer
// store.
func (c *Collector) Collect(ctx context.Context, now time.Time) (Summary, error) {
	records, err := c.Call.Call(ctx, func(ctx context.Context) ([]Record, error) {
		return c.Feed.FetchOffers(ctx)
	})
	if err != nil {
		return Summary{}, fmt.Errorf("registry feed: %w", err)
	}

	summary := Summary{Fetched: len(records)}
	for _, record := range records {
		created, err := c.upsert(ctx, record, now)
		if err != nil {
			summary.Failed++
			telemetry.Error("registry.record_failed", map[string]any{
				"external_id": record.ExternalID,
				"error":       err.Error(),
			})
			continue
		}
		if created {
			summary.Created++
		} else {
			summary.Updated++
		}
	}

	metrics.AddOffersCollected(summary.Created + summary.Updated)
	telemetry.Info("registry.collect_done", map[string]any{
		"fetched": summary.Fetched,
		"created": summary.Created,
		"updated": summary.Updated,
		"failed":  summary.Failed,
	})
	return summary, nil
}

func (c *Collector) upsert(ctx context.Context, record Record, now time.Time) (created bool, err error) {
	if record.ExternalID == "" {
		return false, errors.New("record has no external id")
	}

	existing, err := c.Offers.GetByExternalID(ctx, record.ExternalID)
	switch {
	case err == nil:
		updated := applyRecord(existing, record, now)
		if err := c.Offers.Update(ctx, updated); err != nil {
			return false, err
		}
		return false, nil
	case errors.Is(err, offers.ErrNotFound):
		offer := applyRecord(offers.Offer{
			ID:         uuid.NewString(),
			Provenance: offers.ProvenanceRegistry,
			Active:     true,
			CreatedAt:  now,
		}, record, now)
		if err := c.Offers.Create(ctx, offer); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, err
	}
}

// applyRecord overwrites feed-owned attributes while keeping identity,
// provenance and document linkage intact.
func applyRecord(offer offers.Offer, record Record, now time.Time) offers.Offer {
	offer.Name = record.Name
	offer.Region = record.Region
	offer.Address = record.Address
	offer.HousingCategory = offers.ParseHousingCategory(record.HousingType)
	offer.MinAge = record.MinAge
	offer.MaxAge = record.MaxAge
	offer.MinIncome = record.MinIncome
	offer.MaxIncome = record.MaxIncome
	offer.MinHouseholdMembers = record.MinHouseholdMembers
	offer.MaxHouseholdMembers = record.MaxHouseholdMembers
	offer.MaxHousingOwned = record.MaxHousingOwned
	offer.SpecialQualifications = record.SpecialQualifications
	offer.PreferenceCategories = record.PreferenceCategories
	offer.MinPrice = record.MinPrice
	offer.MaxPrice = record.MaxPrice
	offer.ApplicationStartDate = record.ApplicationStartDate
	offer.ApplicationEndDate = record.ApplicationEndDate
	offer.ExternalID = record.ExternalID
	offer.UpdatedAt = now
	return offer
}
