package ocr

import (
	"context"
	"fmt"
	"strings"

	"zipduck-backend/internal/extract"
	"zipduck-backend/internal/shared/telemetry"
)

// Service routes documents between the direct PDF text layer and OCR.
type Service struct {
	Client Client
}

// DetectNeedsOCR decides whether the document needs OCR. Images always do.
// For PDFs the vision client is asked; if detection fails, OCR is assumed
// (the safer path for scanned announcements).
func (s *Service) DetectNeedsOCR(ctx context.Context, data []byte, mimeType string) bool {
	if isImageMime(mimeType) {
		return true
	}

	needsOCR, err := s.Client.DetectImageContent(ctx, data, mimeType)
	if err != nil {
		telemetry.Error("ocr.detect_failed", map[string]any{"error": err.Error()})
		return true
	}
	return needsOCR
}

// ExtractText pulls raw text from the document, via OCR when needed and the
// PDF text layer otherwise. The returned flag reports whether OCR ran, so
// callers can grade recognition quality only where it applies. OCR failures
// propagate; an empty OCR result is returned as-is and left to quality
// grading.
func (s *Service) ExtractText(ctx context.Context, data []byte, mimeType string) (string, bool, error) {
	if s.DetectNeedsOCR(ctx, data, mimeType) {
		text, err := s.Client.RecognizeText(ctx, data, mimeType)
		if err != nil {
			return "", true, fmt.Errorf("ocr: %w", err)
		}
		if strings.TrimSpace(text) == "" {
			telemetry.Info("ocr.empty_result", map[string]any{"mimeType": mimeType})
			return "", true, nil
		}
		return text, true, nil
	}

	text, err := extract.PDFText(data)
	if err != nil {
		return "", false, fmt.Errorf("pdf text layer: %w", err)
	}
	return text, false, nil
}

func isImageMime(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}
