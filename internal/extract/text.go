package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/rainier/internal/model"
)

// TextExtractor passes plain-text contracts through
type TextExtractor struct{}

// NewTextExtractor creates a new plain-text extractor
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Extract validates UTF-8 and normalizes line endings
func (t *TextExtractor) Extract(filename string, content []byte) (*model.Document, error) {
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", ErrExtraction)
	}

	doc := newDocument(filename, t.MimeType(), content)
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	doc.Text = strings.TrimPrefix(text, "\ufeff")
	return doc, nil
}

// CanExtract returns true for plain-text documents
func (t *TextExtractor) CanExtract(mimeType string) bool {
	return mimeType == "text/plain" || mimeType == "text/markdown"
}

// MimeType returns the primary MIME type for this extractor
func (t *TextExtractor) MimeType() string {
	return "text/plain"
}
