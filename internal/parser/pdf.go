package parser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/docxport/internal/doctree"
)

// PDFParser handles PDF files. It tries the Go library first,
// then falls back to pdftotext if enabled. Only the text survives: each
// page becomes paragraphs, with a page break between pages.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "docxport-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	text, err := extractPDFText(tmpPath)
	if err != nil && p.FallbackPdftotext {
		text, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	return newDoc(Title(filename), pageBlocks(text)), nil
}

// pageBlocks splits form-feed separated page text into paragraphs.
func pageBlocks(text string) []*doctree.Node {
	var out []*doctree.Node
	for _, page := range strings.Split(text, "\f") {
		var paras []*doctree.Node
		for _, para := range strings.Split(strings.ReplaceAll(page, "\r\n", "\n"), "\n\n") {
			if para = strings.TrimSpace(para); para != "" {
				paras = append(paras, paragraph(para))
			}
		}
		if len(paras) == 0 {
			continue
		}
		if len(out) > 0 {
			out = append(out, doctree.New("pageBreak", nil))
		}
		out = append(out, paras...)
	}
	return out
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i > 1 {
			buf.WriteString("\f")
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
