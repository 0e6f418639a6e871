package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docxport/internal/doctree"
)

// Parser converts raw document bytes into a document tree. The returned
// root is a "doc" node; importers that know a title store it in the root's
// "title" attribute.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Node, error)
}

// SupportedExtensions lists file extensions this service can import.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".json":     true,
}

// Options tune the importers ForFile returns.
type Options struct {
	// PdftotextFallback retries PDFs the Go reader cannot handle with the
	// pdftotext binary.
	PdftotextFallback bool
	// Root is a JSONPath locating the tree inside a wrapped .json payload.
	Root string
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PdftotextFallback}, nil
	case ".json":
		return &JSONParser{Root: opts.Root}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Title derives a document title from a filename.
func Title(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func newDoc(title string, content []*doctree.Node) *doctree.Node {
	doc := doctree.New("doc", nil, content...)
	if title != "" {
		doc.Attrs = map[string]any{"title": title}
	}
	return doc
}

func paragraph(text string) *doctree.Node {
	if text == "" {
		return doctree.New("paragraph", nil)
	}
	return doctree.New("paragraph", nil, doctree.NewText(text))
}
