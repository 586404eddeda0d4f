package ocr

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeClient struct {
	imageContent bool
	detectErr    error
	text         string
	textErr      error

	detectCalls    int
	recognizeCalls int
}

func (f *fakeClient) DetectImageContent(ctx context.Context, data []byte, mimeType string) (bool, error) {
	f.detectCalls++
	return f.imageContent, f.detectErr
}

func (f *fakeClient) RecognizeText(ctx context.Context, data []byte, mimeType string) (string, error) {
	f.recognizeCalls++
	return f.text, f.textErr
}

func TestDetectNeedsOCRImagesSkipDetection(t *testing.T) {
	client := &fakeClient{}
	svc := &Service{Client: client}

	if !svc.DetectNeedsOCR(context.Background(), []byte("img"), "image/png") {
		t.Fatal("images always need OCR")
	}
	if client.detectCalls != 0 {
		t.Fatal("image mime should not consult the client")
	}
}

func TestDetectNeedsOCRFailsOpen(t *testing.T) {
	client := &fakeClient{detectErr: errors.New("vision down")}
	svc := &Service{Client: client}

	if !svc.DetectNeedsOCR(context.Background(), []byte("%PDF"), "application/pdf") {
		t.Fatal("detection failure must assume OCR is needed")
	}
}

func TestExtractTextUsesOCRForScannedDocuments(t *testing.T) {
	client := &fakeClient{imageContent: true, text: "공고문 내용"}
	svc := &Service{Client: client}

	text, usedOCR, err := svc.ExtractText(context.Background(), []byte("%PDF"), "application/pdf")
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "공고문 내용" {
		t.Fatalf("unexpected text: %q", text)
	}
	if !usedOCR {
		t.Fatal("expected the OCR path to be reported")
	}
	if client.recognizeCalls != 1 {
		t.Fatalf("expected one OCR call, got %d", client.recognizeCalls)
	}
}

func TestExtractTextPropagatesOCRFailure(t *testing.T) {
	client := &fakeClient{imageContent: true, textErr: errors.New("quota exceeded")}
	svc := &Service{Client: client}

	if _, _, err := svc.ExtractText(context.Background(), []byte("%PDF"), "application/pdf"); err == nil {
		t.Fatal("expected OCR failure to propagate")
	}
}

func TestExtractTextEmptyOCRIsNotAnError(t *testing.T) {
	client := &fakeClient{imageContent: true, text: "  \n "}
	svc := &Service{Client: client}

	text, _, err := svc.ExtractText(context.Background(), []byte("img"), "image/jpeg")
	if err != nil {
		t.Fatalf("empty OCR output is a quality signal, not an error: %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty text, got %q", text)
	}
}

func TestExtractTextDirectPathErrorsOnBrokenPDF(t *testing.T) {
	client := &fakeClient{imageContent: false}
	svc := &Service{Client: client}

	_, usedOCR, err := svc.ExtractText(context.Background(), []byte("not a pdf"), "application/pdf")
	if err == nil {
		t.Fatal("expected text-layer extraction error")
	}
	if usedOCR {
		t.Fatal("direct path must not be reported as OCR")
	}
	if !strings.Contains(err.Error(), "pdf text layer") {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.recognizeCalls != 0 {
		t.Fatal("direct path must not call OCR")
	}
}
