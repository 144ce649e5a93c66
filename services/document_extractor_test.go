package services

import "testing"

func TestExtractTextPlainPassthrough(t *testing.T) {
	de := NewDocumentExtractor()

	text, err := de.ExtractText([]byte("plain course notes"), "text/plain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "plain course notes" {
		t.Errorf("plain text must pass through unchanged, got %q", text)
	}
}

func TestIsPDFMagicBytes(t *testing.T) {
	if !isPDF([]byte("%PDF-1.7 rest of file")) {
		t.Error("PDF header not detected")
	}
	if isPDF([]byte("plain text")) {
		t.Error("plain text misdetected as PDF")
	}
	if isPDF([]byte("%P")) {
		t.Error("short input misdetected as PDF")
	}
}

func TestExtractTextRejectsCorruptPDF(t *testing.T) {
	de := NewDocumentExtractor()

	if _, err := de.ExtractText([]byte("%PDF-1.7 garbage"), "application/pdf"); err == nil {
		t.Error("corrupt PDF must error, not pass through as text")
	}
}
