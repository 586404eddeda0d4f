package offers

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("offer not found")

// SearchFilter narrows active-offer listings.
type SearchFilter struct {
	Region   string
	Category HousingCategory
	Limit    int
	Offset   int
}

// Repo defines persistence operations for offers.
type Repo interface {
	Create(ctx context.Context, offer Offer) error
	Update(ctx context.Context, offer Offer) error
	GetByID(ctx context.Context, id string) (Offer, error)
	GetByExternalID(ctx context.Context, externalID string) (Offer, error)
	ListActive(ctx context.Context, filter SearchFilter) ([]Offer, error)
	// MergeWithDocument flips provenance REGISTRY->MERGED and links the
	// document without touching registry-sourced attribute values.
	MergeWithDocument(ctx context.Context, offerID, documentID string) error
	// DeactivateExpired clears the active flag on offers whose application
	// window closed before the given day and returns how many changed.
	DeactivateExpired(ctx context.Context, today time.Time) (int, error)
}
