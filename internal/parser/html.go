package parser

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/docxport/internal/doctree"
)

// HTMLParser handles HTML files. Block elements map onto document nodes;
// loose inline content between blocks is gathered into paragraphs.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := Title(filename)
	if t := findTitle(doc); t != "" {
		title = t
	}

	root := doc
	if body := findBody(doc); body != nil {
		root = body
	}
	return newDoc(title, htmlBlocks(root)), nil
}

// Elements whose content never reaches the document.
var skipped = map[string]bool{
	"script": true, "style": true, "nav": true, "head": true,
	"noscript": true, "template": true, "header": true, "footer": true,
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

// htmlBlocks converts the children of n to block nodes.
func htmlBlocks(n *html.Node) []*doctree.Node {
	var out []*doctree.Node
	var pending []*doctree.Node

	flush := func() {
		if p := inlineParagraph(pending, nil); p != nil {
			out = append(out, p)
		}
		pending = nil
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && skipped[c.Data] {
			continue
		}
		if !isBlock(c) {
			pending = append(pending, htmlInlines(c, nil)...)
			continue
		}
		flush()
		out = append(out, htmlBlock(c)...)
	}
	flush()
	return out
}

func isBlock(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if headingLevel(n.Data) > 0 {
		return true
	}
	switch n.Data {
	case "p", "ul", "ol", "li", "blockquote", "pre", "table", "hr",
		"div", "section", "article", "main", "aside", "figure", "figcaption",
		"details", "summary", "dl", "dt", "dd", "form", "fieldset", "iframe", "video":
		return true
	}
	return false
}

func htmlBlock(n *html.Node) []*doctree.Node {
	if level := headingLevel(n.Data); level > 0 {
		h := inlineParagraph(htmlChildInlines(n, nil), map[string]any{"level": int64(level)})
		if h == nil {
			return nil
		}
		h.Type = "heading"
		return []*doctree.Node{h}
	}

	switch n.Data {
	case "p", "dt", "dd", "figcaption", "summary":
		if p := inlineParagraph(htmlChildInlines(n, nil), alignAttrs(n)); p != nil {
			return []*doctree.Node{p}
		}
		return nil
	case "ul", "ol":
		return []*doctree.Node{htmlList(n)}
	case "li":
		// A stray item outside a list keeps its content.
		return htmlBlocks(n)
	case "blockquote":
		return []*doctree.Node{doctree.New("blockquote", nil, htmlBlocks(n)...)}
	case "pre":
		return []*doctree.Node{htmlPre(n)}
	case "table":
		if t := htmlTable(n); t != nil {
			return []*doctree.Node{t}
		}
		return nil
	case "hr":
		return []*doctree.Node{doctree.New("horizontalRule", nil)}
	case "iframe", "video":
		src := attr(n, "src")
		if src == "" {
			return nil
		}
		typ := "iframe"
		if n.Data == "video" {
			typ = "video"
		}
		return []*doctree.Node{doctree.New(typ, map[string]any{"src": src})}
	}
	// Generic containers flatten into their children.
	return htmlBlocks(n)
}

func htmlList(n *html.Node) *doctree.Node {
	typ := "bulletList"
	var attrs map[string]any
	if n.Data == "ol" {
		typ = "orderedList"
		if start, err := strconv.Atoi(attr(n, "start")); err == nil && start != 1 {
			attrs = map[string]any{"start": int64(start)}
		}
	}
	list := doctree.New(typ, attrs)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		list.Content = append(list.Content, doctree.New("listItem", nil, htmlBlocks(c)...))
	}
	return list
}

func htmlPre(n *html.Node) *doctree.Node {
	var attrs map[string]any
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "code" {
			for _, class := range strings.Fields(attr(c, "class")) {
				if lang, ok := strings.CutPrefix(class, "language-"); ok {
					attrs = map[string]any{"language": lang}
				}
			}
		}
	}
	code := strings.TrimSuffix(rawText(n), "\n")
	if code == "" {
		return doctree.New("codeBlock", attrs)
	}
	return doctree.New("codeBlock", attrs, doctree.NewText(code))
}

func htmlTable(n *html.Node) *doctree.Node {
	table := doctree.New("table", nil)
	var rows func(*html.Node)
	rows = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "thead", "tbody", "tfoot":
				rows(c)
			case "tr":
				table.Content = append(table.Content, htmlRow(c))
			}
		}
	}
	rows(n)
	if len(table.Content) == 0 {
		return nil
	}
	return table
}

func htmlRow(n *html.Node) *doctree.Node {
	row := doctree.New("tableRow", nil)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		typ := "tableCell"
		if c.Data == "th" {
			typ = "tableHeader"
		}
		attrs := map[string]any{}
		for _, key := range []string{"colspan", "rowspan"} {
			if v, err := strconv.Atoi(attr(c, key)); err == nil && v > 1 {
				attrs[key] = int64(v)
			}
		}
		if bg := attr(c, "bgcolor"); bg != "" {
			attrs["backgroundColor"] = bg
		}
		if len(attrs) == 0 {
			attrs = nil
		}
		content := htmlBlocks(c)
		if len(content) == 0 {
			content = []*doctree.Node{doctree.New("paragraph", nil)}
		}
		row.Content = append(row.Content, doctree.New(typ, attrs, content...))
	}
	return row
}

func htmlChildInlines(n *html.Node, marks []doctree.Mark) []*doctree.Node {
	var out []*doctree.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, htmlInlines(c, marks)...)
	}
	return out
}

// htmlInlines converts an inline element and its subtree. Whitespace is
// collapsed the way a browser renders it.
func htmlInlines(n *html.Node, marks []doctree.Mark) []*doctree.Node {
	switch n.Type {
	case html.TextNode:
		return appendText(nil, collapseSpace(n.Data), marks)
	case html.ElementNode:
	default:
		return nil
	}
	if skipped[n.Data] {
		return nil
	}

	switch n.Data {
	case "br":
		return []*doctree.Node{doctree.New("hardBreak", nil)}
	case "img":
		src := attr(n, "src")
		if src == "" {
			return nil
		}
		attrs := map[string]any{"src": src}
		for _, key := range []string{"alt", "title", "width"} {
			if v := attr(n, key); v != "" {
				attrs[key] = v
			}
		}
		return []*doctree.Node{doctree.New("image", attrs)}
	case "strong", "b":
		marks = with(marks, doctree.Mark{Type: "bold"})
	case "em", "i":
		marks = with(marks, doctree.Mark{Type: "italic"})
	case "u", "ins":
		marks = with(marks, doctree.Mark{Type: "underline"})
	case "s", "del", "strike":
		marks = with(marks, doctree.Mark{Type: "strike"})
	case "code", "kbd", "samp":
		marks = with(marks, doctree.Mark{Type: "code"})
	case "sub":
		marks = with(marks, doctree.Mark{Type: "subscript"})
	case "sup":
		marks = with(marks, doctree.Mark{Type: "superscript"})
	case "mark":
		marks = with(marks, doctree.Mark{Type: "highlight"})
	case "a":
		if href := attr(n, "href"); href != "" {
			marks = with(marks, linkMark(href, attr(n, "title")))
		}
	}

	var out []*doctree.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		for _, leaf := range htmlInlines(c, marks) {
			if leaf.Type == "text" {
				out = appendText(out, leaf.Text, leaf.Marks)
				continue
			}
			out = append(out, leaf)
		}
	}
	return out
}

// inlineParagraph wraps inline nodes in a paragraph, trimming the edges.
// It returns nil when nothing but whitespace remains.
func inlineParagraph(inlines []*doctree.Node, attrs map[string]any) *doctree.Node {
	for len(inlines) > 0 && inlines[0].Type == "text" {
		inlines[0].Text = strings.TrimLeft(inlines[0].Text, " ")
		if inlines[0].Text != "" {
			break
		}
		inlines = inlines[1:]
	}
	for len(inlines) > 0 && inlines[len(inlines)-1].Type == "text" {
		last := inlines[len(inlines)-1]
		last.Text = strings.TrimRight(last.Text, " ")
		if last.Text != "" {
			break
		}
		inlines = inlines[:len(inlines)-1]
	}
	if len(inlines) == 0 {
		return nil
	}
	return doctree.New("paragraph", attrs, inlines...)
}

func alignAttrs(n *html.Node) map[string]any {
	align := attr(n, "align")
	for _, decl := range strings.Split(attr(n, "style"), ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(prop) == "text-align" {
			align = strings.TrimSpace(val)
		}
	}
	if align == "" {
		return nil
	}
	return map[string]any{"textAlign": align}
}

func collapseSpace(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			space = true
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.WriteRune(r)
	}
	if space {
		sb.WriteByte(' ')
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// rawText returns the text under n without whitespace handling.
func rawText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return strings.TrimSpace(rawText(n))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
