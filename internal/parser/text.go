package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docxport/internal/doctree"
)

// TextParser handles plain text files. Blank lines separate paragraphs;
// line breaks inside a paragraph become hard breaks.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var content []*doctree.Node
	var lines []string
	flush := func() {
		if len(lines) > 0 {
			content = append(content, lineParagraph(lines))
			lines = nil
		}
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return newDoc(Title(filename), content), nil
}

func lineParagraph(lines []string) *doctree.Node {
	p := doctree.New("paragraph", nil)
	for i, line := range lines {
		if i > 0 {
			p.Content = append(p.Content, doctree.New("hardBreak", nil))
		}
		p.Content = append(p.Content, doctree.NewText(line))
	}
	return p
}
