package services

import (
	"bytes"
	"fmt"
	"strings"

	"helpdesk-suggestion-engine/internal/logger"

	"github.com/ledongthuc/pdf"
)

// DocumentExtractor turns uploaded reference material into plain text
// ready for chunking. Plain text passes through; PDFs are extracted
// page by page.
type DocumentExtractor struct{}

func NewDocumentExtractor() *DocumentExtractor {
	return &DocumentExtractor{}
}

// ExtractText returns the plain text of an uploaded document based on
// its content type.
func (de *DocumentExtractor) ExtractText(content []byte, contentType string) (string, error) {
	switch {
	case strings.Contains(contentType, "pdf") || isPDF(content):
		return de.extractPDF(content)
	default:
		return string(content), nil
	}
}

func (de *DocumentExtractor) extractPDF(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to create PDF reader: %w", err)
	}

	var textBuilder strings.Builder
	pages := reader.NumPage()

	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			logger.Warn("Failed to extract text from PDF page", "page", i, "error", err)
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	extracted := strings.TrimSpace(textBuilder.String())
	if extracted == "" {
		return "", fmt.Errorf("no text extracted from PDF")
	}
	return extracted, nil
}

// isPDF checks the magic bytes when no content type was supplied
func isPDF(content []byte) bool {
	return len(content) >= 4 && bytes.Equal(content[:4], []byte("%PDF"))
}
