package model

// Document is the extracted plain text of one uploaded contract.
// It lives only for the duration of one analysis.
type Document struct {
	Filename string
	MimeType string
	Text     string
	Pages    int
	SHA256   string
	Bytes    int
}

// Meta returns the document metadata carried into the report
func (d *Document) Meta() DocumentMeta {
	return DocumentMeta{
		MimeType: d.MimeType,
		Pages:    d.Pages,
		SHA256:   d.SHA256,
		Bytes:    d.Bytes,
	}
}
