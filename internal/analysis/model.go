package analysis

import (
	"time"

	"zipduck-backend/internal/extraction"
	"zipduck-backend/internal/ocr"
)

// Outcome is the persisted result of one successful analysis run. Exactly
// one Outcome exists per COMPLETED document.
type Outcome struct {
	ID            string
	DocumentID    string
	Criteria      extraction.Criteria
	MatchScore    int
	Eligible      bool
	OCRQuality    ocr.Tier
	OCRWarning    string
	ExtractedText string
	Model         string
	ProcessingMS  int64
	CreatedAt     time.Time
}

// maxStoredTextRunes bounds the raw extracted text kept with an outcome.
const maxStoredTextRunes = 10_000

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
