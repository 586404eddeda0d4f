package ocr

import "context"

// Client is the vision capability behind the OCR adapter. Implementations
// live in internal/ai; tests use fakes.
type Client interface {
	// DetectImageContent reports whether the document is image-based
	// (scanned or photographed) rather than carrying a usable text layer.
	DetectImageContent(ctx context.Context, data []byte, mimeType string) (bool, error)
	// RecognizeText runs OCR over the document bytes.
	RecognizeText(ctx context.Context, data []byte, mimeType string) (string, error)
}
