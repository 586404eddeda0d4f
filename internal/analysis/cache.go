package analysis

import (
	"context"
	"time"

	"zipduck-backend/internal/extraction"
	"zipduck-backend/internal/ocr"
)

// CacheTTL is how long an extraction stays valid for identical content.
const CacheTTL = 30 * 24 * time.Hour

// CachedResult is the content-addressed extraction payload. Scores are not
// cached; they depend on the uploader's profile and are recomputed per run.
type CachedResult struct {
	Criteria      extraction.Criteria `json:"criteria"`
	OCRQuality    ocr.Tier            `json:"ocrQuality"`
	OCRWarning    string              `json:"ocrWarning,omitempty"`
	ExtractedText string              `json:"extractedText,omitempty"`
	Model         string              `json:"model,omitempty"`
}

// ResultCache maps a document fingerprint to a previous extraction. Get
// reports a miss rather than an error for anything recoverable; the pipeline
// must keep working when the cache is degraded.
type ResultCache interface {
	Get(ctx context.Context, fingerprint string) (CachedResult, bool)
	Put(ctx context.Context, fingerprint string, result CachedResult)
	// Touch extends the TTL of a hit entry.
	Touch(ctx context.Context, fingerprint string)
}
