package extract

import "testing"

func TestPDFTextRejectsEmptyData(t *testing.T) {
	if _, err := PDFText(nil); err == nil {
		t.Fatal("expected error for empty data")
	}
}

func TestPDFTextRejectsNonPDFData(t *testing.T) {
	if _, err := PDFText([]byte("plain text, not a pdf")); err == nil {
		t.Fatal("expected error for non-pdf data")
	}
}
