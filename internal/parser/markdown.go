package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/docxport/internal/doctree"
)

// MarkdownParser handles CommonMark plus the GitHub extensions (tables,
// strikethrough, task lists, autolinks) using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	root := md.Parser().Parse(text.NewReader(src))

	c := &mdConverter{src: src}
	content := c.blocks(root)

	// A leading h1 names the document.
	title := Title(filename)
	if h, ok := root.FirstChild().(*ast.Heading); ok && h.Level == 1 {
		title = c.plain(h)
	}
	return newDoc(title, content), nil
}

type mdConverter struct {
	src []byte
}

func (c *mdConverter) blocks(parent ast.Node) []*doctree.Node {
	var out []*doctree.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if b := c.block(n); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func (c *mdConverter) block(n ast.Node) *doctree.Node {
	switch node := n.(type) {
	case *ast.Heading:
		return doctree.New("heading", map[string]any{"level": int64(node.Level)}, c.inlines(node, nil)...)
	case *ast.Paragraph, *ast.TextBlock:
		return doctree.New("paragraph", nil, c.inlines(node, nil)...)
	case *ast.Blockquote:
		return doctree.New("blockquote", nil, c.blocks(node)...)
	case *ast.FencedCodeBlock:
		attrs := map[string]any{}
		if lang := string(node.Language(c.src)); lang != "" {
			attrs["language"] = lang
		}
		return c.code(node, attrs)
	case *ast.CodeBlock:
		return c.code(node, nil)
	case *ast.List:
		return c.list(node)
	case *ast.ThematicBreak:
		return doctree.New("horizontalRule", nil)
	case *east.Table:
		return c.table(node)
	}
	// Raw HTML blocks and unknown extensions are dropped.
	return nil
}

func (c *mdConverter) code(n ast.Node, attrs map[string]any) *doctree.Node {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(c.src))
	}
	code := strings.TrimSuffix(buf.String(), "\n")
	if len(attrs) == 0 {
		attrs = nil
	}
	if code == "" {
		return doctree.New("codeBlock", attrs)
	}
	return doctree.New("codeBlock", attrs, doctree.NewText(code))
}

func (c *mdConverter) list(l *ast.List) *doctree.Node {
	listType, itemType := "bulletList", "listItem"
	var attrs map[string]any
	if l.IsOrdered() {
		listType = "orderedList"
		if l.Start != 1 {
			attrs = map[string]any{"start": int64(l.Start)}
		}
	}
	if !l.IsOrdered() && isTaskList(l) {
		listType, itemType = "taskList", "taskItem"
	}

	list := doctree.New(listType, attrs)
	for it := l.FirstChild(); it != nil; it = it.NextSibling() {
		item := doctree.New(itemType, nil, c.blocks(it)...)
		if itemType == "taskItem" {
			item.Attrs = map[string]any{"checked": taskChecked(it)}
			trimLeading(item)
		}
		list.Content = append(list.Content, item)
	}
	return list
}

func taskBox(item ast.Node) *east.TaskCheckBox {
	first := item.FirstChild()
	if first == nil {
		return nil
	}
	box, _ := first.FirstChild().(*east.TaskCheckBox)
	return box
}

// isTaskList reports whether every item starts with a checkbox.
func isTaskList(l *ast.List) bool {
	if l.FirstChild() == nil {
		return false
	}
	for it := l.FirstChild(); it != nil; it = it.NextSibling() {
		if it.FirstChild() == nil || taskBox(it) == nil {
			return false
		}
	}
	return true
}

func taskChecked(item ast.Node) bool {
	box := taskBox(item)
	return box != nil && box.IsChecked
}

// trimLeading drops the space left behind the checkbox marker.
func trimLeading(item *doctree.Node) {
	if len(item.Content) == 0 || len(item.Content[0].Content) == 0 {
		return
	}
	first := item.Content[0].Content[0]
	if first.Type != "text" {
		return
	}
	first.Text = strings.TrimLeft(first.Text, " ")
	if first.Text == "" {
		item.Content[0].Content = item.Content[0].Content[1:]
	}
}

func (c *mdConverter) table(t *east.Table) *doctree.Node {
	table := doctree.New("table", nil)
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		cellType := "tableCell"
		if _, ok := row.(*east.TableHeader); ok {
			cellType = "tableHeader"
		}
		tr := doctree.New("tableRow", nil)
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			p := doctree.New("paragraph", nil, c.inlines(cell, nil)...)
			if tc, ok := cell.(*east.TableCell); ok && tc.Alignment != east.AlignNone {
				p.Attrs = map[string]any{"textAlign": tc.Alignment.String()}
			}
			tr.Content = append(tr.Content, doctree.New(cellType, nil, p))
		}
		table.Content = append(table.Content, tr)
	}
	return table
}

// inlines flattens inline children into text leaves carrying the marks of
// their enclosing emphasis, code and link spans.
func (c *mdConverter) inlines(parent ast.Node, marks []doctree.Mark) []*doctree.Node {
	var out []*doctree.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Text:
			s := string(node.Segment.Value(c.src))
			if node.SoftLineBreak() {
				s += " "
			}
			out = appendText(out, s, marks)
			if node.HardLineBreak() {
				out = append(out, doctree.New("hardBreak", nil))
			}
		case *ast.String:
			out = appendText(out, string(node.Value), marks)
		case *ast.CodeSpan:
			out = appendText(out, c.plain(node), with(marks, doctree.Mark{Type: "code"}))
		case *ast.Emphasis:
			mark := doctree.Mark{Type: "italic"}
			if node.Level >= 2 {
				mark.Type = "bold"
			}
			out = append(out, c.inlines(node, with(marks, mark))...)
		case *east.Strikethrough:
			out = append(out, c.inlines(node, with(marks, doctree.Mark{Type: "strike"}))...)
		case *ast.Link:
			out = append(out, c.inlines(node, with(marks, linkMark(string(node.Destination), string(node.Title))))...)
		case *ast.AutoLink:
			url := string(node.URL(c.src))
			href := url
			if node.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(href, "mailto:") {
				href = "mailto:" + href
			}
			out = appendText(out, string(node.Label(c.src)), with(marks, linkMark(href, "")))
		case *ast.Image:
			attrs := map[string]any{"src": string(node.Destination)}
			if alt := c.plain(node); alt != "" {
				attrs["alt"] = alt
			}
			if title := string(node.Title); title != "" {
				attrs["title"] = title
			}
			out = append(out, doctree.New("image", attrs))
		case *east.TaskCheckBox, *ast.RawHTML:
		default:
			out = append(out, c.inlines(node, marks)...)
		}
	}
	return out
}

// plain returns the concatenated text under n.
func (c *mdConverter) plain(n ast.Node) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(c.src))
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

func linkMark(href, title string) doctree.Mark {
	attrs := map[string]any{"href": href}
	if title != "" {
		attrs["title"] = title
	}
	return doctree.Mark{Type: "link", Attrs: attrs}
}

// with returns marks plus m without aliasing the caller's slice.
func with(marks []doctree.Mark, m doctree.Mark) []doctree.Mark {
	out := make([]doctree.Mark, 0, len(marks)+1)
	return append(append(out, marks...), m)
}

// appendText adds a text leaf, merging into the previous leaf when the
// marks are the same.
func appendText(out []*doctree.Node, s string, marks []doctree.Mark) []*doctree.Node {
	if s == "" {
		return out
	}
	if n := len(out); n > 0 && out[n-1].Type == "text" && sameMarks(out[n-1].Marks, marks) {
		out[n-1].Text += s
		return out
	}
	leaf := doctree.NewText(s)
	if len(marks) > 0 {
		leaf.Marks = marks
	}
	return append(out, leaf)
}

func sameMarks(a, b []doctree.Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type || a[i].String("href", "") != b[i].String("href", "") {
			return false
		}
	}
	return true
}
