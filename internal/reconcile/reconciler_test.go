package reconcile

import (
	"context"
	"testing"
	"time"

	"zipduck-backend/internal/extraction"
	"zipduck-backend/internal/offers"
)

func strPtr(s string) *string { return &s }

func seedRegistryOffer(t *testing.T, repo offers.Repo, name, region string) offers.Offer {
	t.Helper()
	offer := offers.Offer{
		ID:         "registry-1",
		Name:       name,
		Region:     region,
		Provenance: offers.ProvenanceRegistry,
		ExternalID: "ext-1",
		Active:     true,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), offer); err != nil {
		t.Fatalf("seed offer: %v", err)
	}
	return offer
}

func TestReconcileMergesIntoRegistryOffer(t *testing.T) {
	repo := offers.NewMemoryRepo()
	seedRegistryOffer(t, repo, "강남 아파트", "서울")
	reconciler := &Reconciler{Offers: repo, Matcher: NameRegionMatcher{}}

	criteria := extraction.Criteria{
		OfferName: strPtr("강남"),
		Region:    strPtr("서울"),
	}
	offer, created, err := reconciler.Reconcile(context.Background(), criteria, "doc-1", time.Now())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if created {
		t.Fatal("expected merge, not creation")
	}
	if offer.Provenance != offers.ProvenanceMerged {
		t.Fatalf("expected MERGED provenance, got %s", offer.Provenance)
	}
	if offer.DocumentID != "doc-1" {
		t.Fatalf("expected linked document, got %q", offer.DocumentID)
	}

	stored, err := repo.GetByID(context.Background(), offer.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Name != "강남 아파트" {
		t.Fatalf("registry attributes must win, got name %q", stored.Name)
	}
	if stored.Provenance != offers.ProvenanceMerged {
		t.Fatalf("stored provenance = %s", stored.Provenance)
	}

	all, err := repo.ListActive(context.Background(), offers.SearchFilter{})
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("no second offer may be created, got %d", len(all))
	}
}

func TestReconcileCreatesDocumentOfferOnMiss(t *testing.T) {
	repo := offers.NewMemoryRepo()
	seedRegistryOffer(t, repo, "강남 아파트", "서울")
	reconciler := &Reconciler{Offers: repo, Matcher: NameRegionMatcher{}}

	criteria := extraction.Criteria{
		OfferName: strPtr("해운대 오피스텔"),
		Region:    strPtr("부산"),
	}
	offer, created, err := reconciler.Reconcile(context.Background(), criteria, "doc-2", time.Now())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if !created {
		t.Fatal("expected a new offer")
	}
	if offer.Provenance != offers.ProvenanceDocument {
		t.Fatalf("expected DOCUMENT provenance, got %s", offer.Provenance)
	}
	if offer.ID == "" || offer.DocumentID != "doc-2" {
		t.Fatalf("unexpected offer identity: %+v", offer)
	}
}

func TestReconcileDoesNotRemergeMergedOffer(t *testing.T) {
	repo := offers.NewMemoryRepo()
	offer := seedRegistryOffer(t, repo, "강남 아파트", "서울")
	if err := repo.MergeWithDocument(context.Background(), offer.ID, "doc-1"); err != nil {
		t.Fatalf("MergeWithDocument: %v", err)
	}
	reconciler := &Reconciler{Offers: repo, Matcher: NameRegionMatcher{}}

	criteria := extraction.Criteria{
		OfferName: strPtr("강남"),
		Region:    strPtr("서울"),
	}
	got, created, err := reconciler.Reconcile(context.Background(), criteria, "doc-3", time.Now())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if created {
		t.Fatal("expected reuse of existing offer")
	}
	if got.Provenance != offers.ProvenanceMerged {
		t.Fatalf("provenance must stay MERGED, got %s", got.Provenance)
	}

	stored, _ := repo.GetByID(context.Background(), offer.ID)
	if stored.DocumentID != "doc-1" {
		t.Fatalf("original document link must be kept, got %q", stored.DocumentID)
	}
}

func TestNameRegionMatcherRequiresExactRegion(t *testing.T) {
	candidates := []offers.Offer{{Name: "강남 아파트", Region: "서울"}}

	criteria := extraction.Criteria{OfferName: strPtr("강남"), Region: strPtr("서울특별시")}
	if _, ok := (NameRegionMatcher{}).Match(criteria, candidates); ok {
		t.Fatal("region must match exactly")
	}

	criteria.Region = strPtr("서울")
	if _, ok := (NameRegionMatcher{}).Match(criteria, candidates); !ok {
		t.Fatal("expected a match")
	}
}

func TestNameRegionMatcherContainmentIsOneDirectional(t *testing.T) {
	// Stored names are the authoritative long form; an extracted name that
	// is a superstring of a stored one must not match.
	candidates := []offers.Offer{{Name: "강남", Region: "서울"}}
	criteria := extraction.Criteria{OfferName: strPtr("강남 아파트 3단지"), Region: strPtr("서울")}
	if _, ok := (NameRegionMatcher{}).Match(criteria, candidates); ok {
		t.Fatal("extracted superstring must not match a shorter stored name")
	}
}

func TestNameRegionMatcherIgnoresMissingFields(t *testing.T) {
	candidates := []offers.Offer{{Name: "강남 아파트", Region: "서울"}}
	if _, ok := (NameRegionMatcher{}).Match(extraction.Criteria{Region: strPtr("서울")}, candidates); ok {
		t.Fatal("missing name must not match")
	}
	if _, ok := (NameRegionMatcher{}).Match(extraction.Criteria{OfferName: strPtr("강남")}, candidates); ok {
		t.Fatal("missing region must not match")
	}
}
