package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dgallion1/docxport/internal/doctree"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"a.txt", "*parser.TextParser"},
		{"a.MD", "*parser.MarkdownParser"},
		{"a.markdown", "*parser.MarkdownParser"},
		{"a.csv", "*parser.CSVParser"},
		{"a.htm", "*parser.HTMLParser"},
		{"a.pdf", "*parser.PDFParser"},
		{"a.json", "*parser.JSONParser"},
	}
	for _, tt := range tests {
		p, err := ForFile(tt.filename, Options{})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.filename, err)
		}
		if got := fmt.Sprintf("%T", p); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.filename, tt.want, got)
		}
		if !IsSupportedExtension(tt.filename) {
			t.Errorf("%s: expected supported extension", tt.filename)
		}
	}

	if _, err := ForFile("a.docx", Options{}); err == nil {
		t.Error("expected error for .docx input")
	}
	if IsSupportedExtension("a.exe") {
		t.Error("expected .exe to be unsupported")
	}
}

func TestForFileOptions(t *testing.T) {
	p, _ := ForFile("a.pdf", Options{PdftotextFallback: true})
	if !p.(*PDFParser).FallbackPdftotext {
		t.Error("expected pdftotext fallback to be enabled")
	}
	j, _ := ForFile("a.json", Options{Root: "$.doc"})
	if j.(*JSONParser).Root != "$.doc" {
		t.Errorf("expected root %q, got %q", "$.doc", j.(*JSONParser).Root)
	}
}

func TestJSONParser(t *testing.T) {
	payload := `{"document":{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hi"}]}]}}`
	p := &JSONParser{Root: "$.document"}
	tree, err := p.Parse(strings.NewReader(payload), "tree.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := doctree.PlainText(tree); got != "hi" {
		t.Errorf("expected %q, got %q", "hi", got)
	}
	if got := tree.String("title", ""); got != "tree" {
		t.Errorf("expected title %q, got %q", "tree", got)
	}

	titled := `{"type":"doc","attrs":{"title":"Kept"}}`
	tree, err = (&JSONParser{}).Parse(strings.NewReader(titled), "x.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tree.String("title", ""); got != "Kept" {
		t.Errorf("expected title %q, got %q", "Kept", got)
	}

	if _, err := (&JSONParser{}).Parse(strings.NewReader(`{"content":[]}`), "bad.json"); err == nil {
		t.Error("expected error for node without a type")
	}
}

func TestPageBlocks(t *testing.T) {
	blocks := pageBlocks("one\n\ntwo\f\f three \n")
	want := "paragraph,paragraph,pageBreak,paragraph"
	if got := strings.Join(types(blocks), ","); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got := doctree.PlainText(blocks[3]); got != "three" {
		t.Errorf("expected %q, got %q", "three", got)
	}
	if len(pageBlocks("\f\f")) != 0 {
		t.Error("expected no blocks for blank pages")
	}
}
