package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ppiankov/rainier/internal/model"
	"golang.org/x/net/html"
)

// HTMLExtractor extracts visible text from HTML contracts
type HTMLExtractor struct{}

// NewHTMLExtractor creates a new HTML extractor
func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract parses the HTML and keeps only visible text
func (h *HTMLExtractor) Extract(filename string, content []byte) (*model.Document, error) {
	root, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: parse HTML: %v", ErrExtraction, err)
	}

	doc := newDocument(filename, h.MimeType(), content)
	doc.Text = extractVisibleText(root)
	return doc, nil
}

// CanExtract returns true for HTML documents
func (h *HTMLExtractor) CanExtract(mimeType string) bool {
	return mimeType == "text/html" || mimeType == "application/xhtml+xml"
}

// MimeType returns the primary MIME type for this extractor
func (h *HTMLExtractor) MimeType() string {
	return "text/html"
}

// extractVisibleText extracts text nodes from HTML, skipping scripts/styles.
// Block elements end a line so sentence boundaries survive.
func extractVisibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && isBlock(n.Data) {
			buf.WriteString("\n")
		}
	}

	walk(n)

	lines := strings.Split(buf.String(), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "br", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6", "section", "article", "blockquote", "pre", "table":
		return true
	}
	return false
}
