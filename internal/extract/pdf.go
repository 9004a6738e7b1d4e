package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/ppiankov/rainier/internal/model"
)

// PDFExtractor extracts the text layer of PDF documents
type PDFExtractor struct{}

// NewPDFExtractor creates a new PDF extractor
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract joins the plain text of every page with newlines. Scanned
// (image-only) PDFs yield empty text, not an error.
func (p *PDFExtractor) Extract(filename string, content []byte) (doc *model.Document, err error) {
	// The PDF reader panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: malformed PDF: %v", ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: open PDF: %v", ErrExtraction, err)
	}

	var text strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Some pages fail to decode; keep the rest
			continue
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}

		if text.Len() > 0 {
			text.WriteString("\n")
		}
		text.WriteString(pageText)
	}

	doc = newDocument(filename, p.MimeType(), content)
	doc.Text = text.String()
	doc.Pages = numPages
	return doc, nil
}

// CanExtract returns true for PDF documents
func (p *PDFExtractor) CanExtract(mimeType string) bool {
	return mimeType == "application/pdf" || mimeType == "application/x-pdf"
}

// MimeType returns the primary MIME type for this extractor
func (p *PDFExtractor) MimeType() string {
	return "application/pdf"
}
