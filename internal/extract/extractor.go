// Package extract turns uploaded contract files into plain text.
package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ppiankov/rainier/internal/model"
)

var (
	// ErrUnsupportedType is returned when no extractor handles the file
	ErrUnsupportedType = errors.New("unsupported document type")

	// ErrExtraction is returned when a file cannot be read as its type
	ErrExtraction = errors.New("document extraction failed")
)

// Extractor defines the interface for document text extractors
type Extractor interface {
	// Extract reads the document text out of the raw file bytes
	Extract(filename string, content []byte) (*model.Document, error)

	// CanExtract checks if this extractor handles the given MIME type
	CanExtract(mimeType string) bool

	// MimeType returns the primary MIME type for this extractor
	MimeType() string
}

// Registry manages document extractors keyed by MIME type
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]Extractor
	order      []string
}

// NewRegistry creates a registry with the built-in extractors
func NewRegistry() *Registry {
	r := &Registry{
		extractors: make(map[string]Extractor),
	}

	r.Register(NewPDFExtractor())
	r.Register(NewHTMLExtractor())
	r.Register(NewTextExtractor())

	return r
}

// Register adds an extractor, replacing any with the same MIME type
func (r *Registry) Register(e Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.extractors[e.MimeType()]; !ok {
		r.order = append(r.order, e.MimeType())
	}
	r.extractors[e.MimeType()] = e
}

// ForMimeType finds the extractor for a MIME type, or nil
func (r *Registry) ForMimeType(mimeType string) Extractor {
	mimeType = baseMimeType(mimeType)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.extractors[mimeType]; ok {
		return e
	}
	for _, mt := range r.order {
		if e := r.extractors[mt]; e.CanExtract(mimeType) {
			return e
		}
	}
	return nil
}

// ForFilename finds the extractor for a file extension, or nil
func (r *Registry) ForFilename(filename string) Extractor {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return nil
	}
	mimeType := mime.TypeByExtension(ext)
	switch ext {
	case ".txt", ".text":
		mimeType = "text/plain"
	case ".htm", ".html":
		mimeType = "text/html"
	case ".pdf":
		mimeType = "application/pdf"
	}
	if mimeType == "" {
		return nil
	}
	return r.ForMimeType(mimeType)
}

// Extract picks an extractor by MIME type, falling back to the file
// extension, and extracts the document
func (r *Registry) Extract(filename, mimeType string, content []byte) (*model.Document, error) {
	e := r.ForMimeType(mimeType)
	if e == nil {
		e = r.ForFilename(filename)
	}
	if e == nil {
		return nil, ErrUnsupportedType
	}
	return e.Extract(filename, content)
}

// DetectType sniffs the MIME type of raw file content
func DetectType(filename string, content []byte) string {
	mt := baseMimeType(http.DetectContentType(content))
	if mt == "application/octet-stream" || mt == "text/plain" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
			return baseMimeType(byExt)
		}
	}
	return mt
}

func baseMimeType(mt string) string {
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

func newDocument(filename, mimeType string, content []byte) *model.Document {
	sum := sha256.Sum256(content)
	return &model.Document{
		Filename: filepath.Base(filename),
		MimeType: mimeType,
		SHA256:   hex.EncodeToString(sum[:]),
		Bytes:    len(content),
	}
}
