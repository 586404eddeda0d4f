package analysis

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"zipduck-backend/internal/documents"
	"zipduck-backend/internal/extraction"
	"zipduck-backend/internal/ocr"
	"zipduck-backend/internal/offers"
	"zipduck-backend/internal/profiles"
	"zipduck-backend/internal/reconcile"
	"zipduck-backend/internal/resilience"
)

type fixedStore struct {
	data []byte
}

func (f *fixedStore) Save(ctx context.Context, ownerID, fileName string, r io.Reader) (string, int64, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	f.data = data
	return "key/" + fileName, int64(len(data)), "application/pdf", nil
}

func (f *fixedStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

type visionStub struct {
	text string
	err  error
}

func (v *visionStub) DetectImageContent(ctx context.Context, data []byte, mimeType string) (bool, error) {
	return true, nil
}

func (v *visionStub) RecognizeText(ctx context.Context, data []byte, mimeType string) (string, error) {
	return v.text, v.err
}

type generatorStub struct {
	output string
	err    error
	calls  int
}

func (g *generatorStub) GenerateContent(ctx context.Context, prompt string, temperature float32, maxTokens int32) (string, error) {
	g.calls++
	return g.output, g.err
}

const extractionJSON = `{
  "offerName": "강남 아파트",
  "region": "서울",
  "minAge": 19,
  "maxAge": 65,
  "minIncome": 30000000,
  "maxIncome": 100000000,
  "minHouseholdMembers": 1,
  "maxHouseholdMembers": 5,
  "maxHousingOwned": 0
}`

// Long enough and Korean enough to grade HIGH.
var ocrText = strings.Repeat("청약공고 모집 12345 ", 50)

type testEnv struct {
	svc       *Service
	docs      *documents.MemoryRepo
	profs     *profiles.MemoryRepo
	offerRepo *offers.MemoryRepo
	outcomes  *MemoryRepo
	cache     *MemoryCache
	generator *generatorStub
	store     *fixedStore
}

func newTestEnv(t *testing.T, generator *generatorStub, vision *visionStub) *testEnv {
	t.Helper()
	env := &testEnv{
		docs:      documents.NewMemoryRepo(),
		profs:     profiles.NewMemoryRepo(),
		offerRepo: offers.NewMemoryRepo(),
		outcomes:  NewMemoryRepo(),
		cache:     NewMemoryCache(),
		generator: generator,
		store:     &fixedStore{data: []byte("%PDF-1.4 fake")},
	}
	env.svc = &Service{
		Documents:   env.docs,
		Profiles:    env.profs,
		Outcomes:    env.outcomes,
		Cache:       env.cache,
		Store:       env.store,
		OCR:         &ocr.Service{Client: vision},
		Extractor:   extraction.NewExtractor(generator),
		Reconciler:  &reconcile.Reconciler{Offers: env.offerRepo, Matcher: reconcile.NameRegionMatcher{}},
		OCRCall:     resilience.New[string]("ocr"),
		ExtractCall: resilience.New[extraction.Criteria]("extraction"),
		ModelID:     "gemini-1.5-pro",
	}
	return env
}

func seedDocument(t *testing.T, env *testEnv, fingerprint string) documents.Document {
	t.Helper()
	doc := documents.Document{
		ID:          "doc-1",
		UserID:      "user-1",
		FileName:    "공고문.pdf",
		StorageKey:  "key/공고문.pdf",
		SizeBytes:   int64(len(env.store.data)),
		ContentType: "application/pdf",
		Fingerprint: fingerprint,
		Status:      documents.StatusPending,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := env.docs.Create(context.Background(), doc); err != nil {
		t.Fatalf("seed document: %v", err)
	}
	return doc
}

func seedProfile(t *testing.T, env *testEnv) {
	t.Helper()
	err := env.profs.Upsert(context.Background(), profiles.Profile{
		UserID:           "user-1",
		Age:              30,
		AnnualIncome:     50_000_000,
		HouseholdMembers: 2,
		HousingOwned:     0,
		PreferredRegions: "서울",
	})
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}
}

func TestRunFullPipelineSuccess(t *testing.T) {
	env := newTestEnv(t, &generatorStub{output: "```json\n" + extractionJSON + "\n```"}, &visionStub{text: ocrText})
	seedProfile(t, env)
	doc := seedDocument(t, env, "fp-1")

	env.svc.run(context.Background(), doc)

	stored, err := env.docs.GetByID(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != documents.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s (%s)", stored.Status, stored.FailureReason)
	}

	outcome, err := env.outcomes.GetByDocumentID(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("outcome: %v", err)
	}
	if !outcome.Eligible || outcome.MatchScore <= 0 {
		t.Fatalf("expected eligible with positive score, got %v %d", outcome.Eligible, outcome.MatchScore)
	}
	if outcome.OCRQuality != ocr.TierHigh {
		t.Fatalf("expected HIGH quality, got %s", outcome.OCRQuality)
	}
	if outcome.Model != "gemini-1.5-pro" {
		t.Fatalf("expected model id recorded, got %q", outcome.Model)
	}

	// The extraction is now cached under the fingerprint.
	if _, ok := env.cache.Get(context.Background(), "fp-1"); !ok {
		t.Fatal("expected extraction cached")
	}

	// A document offer was created for the extracted criteria.
	all, err := env.offerRepo.ListActive(context.Background(), offers.SearchFilter{})
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(all) != 1 || all[0].Provenance != offers.ProvenanceDocument {
		t.Fatalf("expected one DOCUMENT offer, got %+v", all)
	}
}

func TestRunAIFailureMarksDocumentFailed(t *testing.T) {
	env := newTestEnv(t, &generatorStub{err: errors.New("invalid request")}, &visionStub{text: ocrText})
	seedProfile(t, env)
	doc := seedDocument(t, env, "fp-2")

	env.svc.run(context.Background(), doc)

	stored, err := env.docs.GetByID(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != documents.StatusFailed {
		t.Fatalf("expected FAILED, got %s", stored.Status)
	}
	if stored.FailureReason == "" {
		t.Fatal("expected a failure reason")
	}

	if _, err := env.outcomes.GetByDocumentID(context.Background(), doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("no outcome row may exist for a failed run, got %v", err)
	}
	if _, ok := env.cache.Get(context.Background(), "fp-2"); ok {
		t.Fatal("failed extraction must not be cached")
	}
}

func TestRunUnusableExtractionFails(t *testing.T) {
	env := newTestEnv(t, &generatorStub{output: "no json here"}, &visionStub{text: ocrText})
	seedProfile(t, env)
	doc := seedDocument(t, env, "fp-3")

	env.svc.run(context.Background(), doc)

	stored, _ := env.docs.GetByID(context.Background(), doc.ID)
	if stored.Status != documents.StatusFailed {
		t.Fatalf("expected FAILED, got %s", stored.Status)
	}
}

func TestRunCacheHitSkipsExtraction(t *testing.T) {
	generator := &generatorStub{err: errors.New("should not be called")}
	env := newTestEnv(t, generator, &visionStub{err: errors.New("should not be called")})
	seedProfile(t, env)
	doc := seedDocument(t, env, "fp-4")

	name := "강남 아파트"
	region := "서울"
	env.cache.Put(context.Background(), "fp-4", CachedResult{
		Criteria:   extraction.Criteria{OfferName: &name, Region: &region},
		OCRQuality: ocr.TierMedium,
		OCRWarning: "일부 내용이 불완전할 수 있습니다. 결과를 확인해주세요.",
		Model:      "gemini-1.5-pro",
	})

	env.svc.run(context.Background(), doc)

	stored, _ := env.docs.GetByID(context.Background(), doc.ID)
	if stored.Status != documents.StatusCompleted {
		t.Fatalf("expected COMPLETED from cache, got %s (%s)", stored.Status, stored.FailureReason)
	}
	if generator.calls != 0 {
		t.Fatalf("cache hit must not call the model, got %d calls", generator.calls)
	}

	outcome, err := env.outcomes.GetByDocumentID(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("outcome: %v", err)
	}
	if outcome.OCRQuality != ocr.TierMedium {
		t.Fatalf("cached quality must carry over, got %s", outcome.OCRQuality)
	}
}

func TestRunMergeScoresDocumentCriteriaNotRegistryValues(t *testing.T) {
	env := newTestEnv(t, &generatorStub{output: extractionJSON}, &visionStub{text: ocrText})
	seedProfile(t, env)

	// Registry offer matches by name/region but would reject the profile
	// on age. The persisted score must come from the document's criteria.
	maxAge := 25
	now := time.Now().UTC()
	err := env.offerRepo.Create(context.Background(), offers.Offer{
		ID:         "registry-1",
		Name:       "강남 아파트",
		Region:     "서울",
		MaxAge:     &maxAge,
		Provenance: offers.ProvenanceRegistry,
		ExternalID: "ext-1",
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("seed registry offer: %v", err)
	}
	doc := seedDocument(t, env, "fp-7")

	env.svc.run(context.Background(), doc)

	merged, err := env.offerRepo.GetByID(context.Background(), "registry-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if merged.Provenance != offers.ProvenanceMerged || merged.DocumentID != doc.ID {
		t.Fatalf("expected merge with document link, got %+v", merged)
	}

	outcome, err := env.outcomes.GetByDocumentID(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("outcome: %v", err)
	}
	if !outcome.Eligible || outcome.MatchScore <= 0 {
		t.Fatalf("scoring must use the extracted criteria, got %v %d", outcome.Eligible, outcome.MatchScore)
	}
}

func TestRunWithoutProfileStillCompletes(t *testing.T) {
	env := newTestEnv(t, &generatorStub{output: extractionJSON}, &visionStub{text: ocrText})
	doc := seedDocument(t, env, "fp-5")

	env.svc.run(context.Background(), doc)

	stored, _ := env.docs.GetByID(context.Background(), doc.ID)
	if stored.Status != documents.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s (%s)", stored.Status, stored.FailureReason)
	}
	outcome, err := env.outcomes.GetByDocumentID(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("outcome: %v", err)
	}
	if outcome.Eligible || outcome.MatchScore != 0 {
		t.Fatalf("no profile means no eligibility, got %v %d", outcome.Eligible, outcome.MatchScore)
	}
}

func TestSameFingerprintDocumentsBothComplete(t *testing.T) {
	env := newTestEnv(t, &generatorStub{output: extractionJSON}, &visionStub{text: ocrText})
	seedProfile(t, env)

	docA := seedDocument(t, env, "fp-6")
	docB := docA
	docB.ID = "doc-2"
	if err := env.docs.Create(context.Background(), docB); err != nil {
		t.Fatalf("seed second document: %v", err)
	}

	env.svc.run(context.Background(), docA)
	env.svc.run(context.Background(), docB)

	for _, id := range []string{"doc-1", "doc-2"} {
		stored, _ := env.docs.GetByID(context.Background(), id)
		if stored.Status != documents.StatusCompleted {
			t.Fatalf("document %s: expected COMPLETED, got %s", id, stored.Status)
		}
		if _, err := env.outcomes.GetByDocumentID(context.Background(), id); err != nil {
			t.Fatalf("document %s: outcome missing: %v", id, err)
		}
	}
}
