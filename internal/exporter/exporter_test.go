package exporter

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/fumiama/go-docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docxport/internal/doctree"
	"github.com/dgallion1/docxport/internal/highlight"
	"github.com/dgallion1/docxport/internal/imaging"
	"github.com/dgallion1/docxport/internal/layout"
	"github.com/dgallion1/docxport/internal/styles"
	"github.com/dgallion1/docxport/internal/units"
)

type fakeFetcher struct {
	data map[string][]byte
	err  error
}

func (f fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.data[url]
	if !ok {
		return nil, fmt.Errorf("unexpected url %s", url)
	}
	return data, nil
}

func para(text string, marks ...doctree.Mark) *doctree.Node {
	return doctree.New("paragraph", nil, doctree.NewText(text, marks...))
}

func doc(content ...*doctree.Node) *doctree.Node {
	return doctree.New("doc", nil, content...)
}

func item(content ...*doctree.Node) *doctree.Node {
	return doctree.New("listItem", nil, content...)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

type result struct {
	doc   *Document
	files map[string]string
}

func run(t *testing.T, tree *doctree.Node, cfg Config, opts ...Option) result {
	t.Helper()
	d, err := New(opts...).Export(context.Background(), tree, cfg)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(d.Bytes()), int64(d.Len()))
	require.NoError(t, err)
	files := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		files[f.Name] = string(data)
	}
	return result{doc: d, files: files}
}

// parse re-opens the package with go-docx. Only used for documents without
// shapes or SVG pictures.
func (r result) parse(t *testing.T) *docx.Docx {
	t.Helper()
	parsed, err := docx.Parse(bytes.NewReader(r.doc.Bytes()), int64(r.doc.Len()))
	require.NoError(t, err)
	return parsed
}

func paragraphs(d *docx.Docx) []*docx.Paragraph {
	var out []*docx.Paragraph
	for _, it := range d.Document.Body.Items {
		if p, ok := it.(*docx.Paragraph); ok {
			out = append(out, p)
		}
	}
	return out
}

func numbering(t *testing.T, p *docx.Paragraph) (numID, level string) {
	t.Helper()
	require.NotNil(t, p.Properties)
	require.NotNil(t, p.Properties.NumProperties)
	return p.Properties.NumProperties.NumID.Val, p.Properties.NumProperties.Ilvl.Val
}

func TestExportBulletList(t *testing.T) {
	tree := doc(doctree.New("bulletList", nil, item(para("one")), item(para("two"))))
	paras := paragraphs(run(t, tree, Config{}).parse(t))

	require.Len(t, paras, 2)
	for i, want := range []string{"one", "two"} {
		assert.Equal(t, want, paras[i].String())
		id, level := numbering(t, paras[i])
		assert.Equal(t, "1", id, "bullets use the shared num")
		assert.Equal(t, "0", level)
		require.NotNil(t, paras[i].Properties.Style)
		assert.Equal(t, styles.ListParagraph, paras[i].Properties.Style.Val)
	}
}

func TestExportNestedOrderedLists(t *testing.T) {
	tree := doc(doctree.New("orderedList", nil,
		item(para("x"), doctree.New("orderedList", nil, item(para("y")))),
	))
	r := run(t, tree, Config{})
	paras := paragraphs(r.parse(t))

	require.Len(t, paras, 2)
	xID, xLevel := numbering(t, paras[0])
	yID, yLevel := numbering(t, paras[1])
	assert.Equal(t, "0", xLevel)
	assert.Equal(t, "1", yLevel)
	assert.NotEqual(t, xID, yID)
	assert.Equal(t, "3", xID)
	assert.Equal(t, "4", yID)

	num := r.files["word/numbering.xml"]
	assert.Equal(t, 4, strings.Count(num, "<w:num "))
	assert.Contains(t, r.files["[Content_Types].xml"], "/word/numbering.xml")
}

func TestExportSiblingItemsShareInstance(t *testing.T) {
	tree := doc(
		doctree.New("orderedList", nil, item(para("a")), item(para("b"))),
		doctree.New("orderedList", map[string]any{"start": int64(5)}, item(para("c"))),
	)
	r := run(t, tree, Config{})
	paras := paragraphs(r.parse(t))

	require.Len(t, paras, 3)
	a, _ := numbering(t, paras[0])
	b, _ := numbering(t, paras[1])
	c, _ := numbering(t, paras[2])
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, r.files["word/numbering.xml"], `<w:startOverride w:val="5">`)
}

func TestExportListWithoutNumberingDefinition(t *testing.T) {
	off := false
	tree := doc(doctree.New("bulletList", nil, item(para("plain"))))
	r := run(t, tree, Config{UseDefaultNumbering: &off})
	paras := paragraphs(r.parse(t))

	require.Len(t, paras, 1)
	assert.Nil(t, paras[0].Properties.NumProperties)
	require.NotNil(t, paras[0].Properties.Ind)
	assert.Equal(t, listIndent, paras[0].Properties.Ind.Left)
	assert.NotContains(t, r.files, "word/numbering.xml")
}

func TestExportTaskList(t *testing.T) {
	tree := doc(doctree.New("taskList", nil,
		doctree.New("taskItem", map[string]any{"checked": true}, para("done")),
		doctree.New("taskItem", nil, para("todo")),
	))
	paras := paragraphs(run(t, tree, Config{}).parse(t))

	require.Len(t, paras, 2)
	assert.Equal(t, taskDone+"done", paras[0].String())
	assert.Equal(t, taskOpen+"todo", paras[1].String())
	assert.Nil(t, paras[0].Properties.NumProperties)
	assert.Equal(t, listIndent, paras[0].Properties.Ind.Left)
}

func TestExportTable(t *testing.T) {
	cell := func(typ string, attrs map[string]any, text string) *doctree.Node {
		return doctree.New(typ, attrs, para(text))
	}
	table := doctree.New("table", nil,
		doctree.New("tableRow", nil,
			cell("tableHeader", map[string]any{"colwidth": []any{int64(40)}}, "h1"),
			cell("tableHeader", map[string]any{"colspan": int64(2)}, "h2"),
		),
		doctree.New("tableRow", nil,
			cell("tableCell", map[string]any{"rowspan": int64(2), "backgroundColor": "#ff0000"}, "a"),
			cell("tableCell", nil, "b"),
			cell("tableCell", nil, "c"),
		),
		doctree.New("tableRow", nil,
			cell("tableCell", nil, "d"),
			cell("tableCell", nil, "e"),
		),
	)
	cfg := Config{Page: layout.Page{Width: 3000, Height: 4000, Margins: &layout.Margins{Left: 1000, Right: 1000}}}
	r := run(t, doc(table), cfg)
	parsed := r.parse(t)

	var tbl *docx.Table
	for _, it := range parsed.Document.Body.Items {
		if x, ok := it.(*docx.Table); ok {
			tbl = x
		}
	}
	require.NotNil(t, tbl)

	var widths []int64
	for _, c := range tbl.TableGrid.GridCols {
		widths = append(widths, c.W)
	}
	assert.Equal(t, []int64{600, 200, 200}, widths)

	require.Len(t, tbl.TableRows, 3)
	head := tbl.TableRows[0].TableCells
	require.Len(t, head, 2)
	assert.Equal(t, 2, head[1].TableCellProperties.GridSpan.Val)
	assert.EqualValues(t, 400, head[1].TableCellProperties.TableCellWidth.W)
	headRun := head[0].Paragraphs[0].Children[0].(*docx.Run)
	require.NotNil(t, headRun.RunProperties)
	assert.NotNil(t, headRun.RunProperties.Bold)

	mid := tbl.TableRows[1].TableCells
	require.Len(t, mid, 3)
	assert.Equal(t, "restart", mid[0].TableCellProperties.VMerge.Val)
	assert.Equal(t, "FF0000", mid[0].TableCellProperties.Shade.Fill)
	assert.Nil(t, mid[1].TableCellProperties.VMerge)

	last := tbl.TableRows[2].TableCells
	require.Len(t, last, 3)
	require.NotNil(t, last[0].TableCellProperties.VMerge)
	assert.Empty(t, last[0].TableCellProperties.VMerge.Val)
	require.Len(t, last[0].Paragraphs, 1)
	assert.Equal(t, "d", last[1].Paragraphs[0].String())

	body := r.files["word/document.xml"]
	assert.Equal(t, 1, strings.Count(body, "<w:tblHeader>"))
	assert.Contains(t, body, `<w:tblStyle w:val="TableGrid">`)
}

func TestExportTableColumnHintsArePixels(t *testing.T) {
	hinted := func(px int64, text string) *doctree.Node {
		return doctree.New("tableCell", map[string]any{"colwidth": []any{px}}, para(text))
	}
	table := doctree.New("table", nil, doctree.New("tableRow", nil,
		hinted(200, "a"),
		hinted(300, "b"),
		doctree.New("tableCell", nil, para("c")),
	))
	cfg := Config{Page: layout.Page{Width: 12000, Height: 16000, Margins: &layout.Margins{Left: 1000, Right: 1000}}}
	r := run(t, doc(table), cfg)

	var tbl *docx.Table
	for _, it := range r.parse(t).Document.Body.Items {
		if x, ok := it.(*docx.Table); ok {
			tbl = x
		}
	}
	require.NotNil(t, tbl)

	var widths []int64
	for _, c := range tbl.TableGrid.GridCols {
		widths = append(widths, c.W)
	}
	assert.Equal(t, []int64{
		int64(units.PixelsToTwip(200)),
		int64(units.PixelsToTwip(300)),
		2500,
	}, widths)
	assert.EqualValues(t, 3000, tbl.TableRows[0].TableCells[0].TableCellProperties.TableCellWidth.W)
}

func TestExportTableWithoutStyleHasBorders(t *testing.T) {
	off := false
	table := doctree.New("table", nil, doctree.New("tableRow", nil, doctree.New("tableCell", nil)))
	r := run(t, doc(table), Config{UseDefaultStyles: &off})
	body := r.files["word/document.xml"]
	assert.Contains(t, body, "<w:tblBorders>")
	assert.NotContains(t, body, "<w:tblStyle")
	// Empty cells still end with a paragraph.
	assert.Contains(t, body, "</w:tcPr><w:p></w:p></w:tc>")
}

func TestExportMalformedTable(t *testing.T) {
	table := doctree.New("table", nil,
		doctree.New("tableRow", nil,
			doctree.New("tableCell", map[string]any{"rowspan": int64(2)}),
			doctree.New("tableCell", nil),
		),
		doctree.New("tableRow", nil, doctree.New("tableCell", map[string]any{"colspan": int64(2)})),
	)
	_, err := New().Export(context.Background(), doc(table), Config{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, layout.ErrMalformedTable))
	assert.True(t, strings.HasPrefix(err.Error(), "table: "), err.Error())
}

func TestExportWithoutDefaultStyles(t *testing.T) {
	off := false
	tree := doc(
		doctree.New("heading", map[string]any{"level": int64(1)}, doctree.NewText("Title")),
		para("body"),
	)
	r := run(t, tree, Config{UseDefaultStyles: &off})

	assert.Zero(t, strings.Count(r.files["word/styles.xml"], "<w:style "))
	assert.NotContains(t, r.files["word/document.xml"], "<w:pStyle")
}

func TestExportStyleOverrides(t *testing.T) {
	tree := doc(doctree.New("heading", map[string]any{"level": int64(2)}, doctree.NewText("Sub")))
	cfg := Config{Styles: []styles.Style{{ID: "Heading2", Run: &styles.RunProps{Color: "#00ff00"}}}}
	r := run(t, tree, cfg)

	stylesXML := r.files["word/styles.xml"]
	assert.Equal(t, 1, strings.Count(stylesXML, `w:styleId="Heading2"`))
	assert.Contains(t, stylesXML, `<w:color w:val="00FF00">`)

	paras := paragraphs(r.parse(t))
	require.Len(t, paras, 1)
	assert.Equal(t, "Heading2", paras[0].Properties.Style.Val)
}

func TestExportMarks(t *testing.T) {
	tree := doc(doctree.New("paragraph", map[string]any{"textAlign": "center"},
		doctree.NewText("bold", doctree.Mark{Type: "bold"}, doctree.Mark{Type: "italic"}),
		doctree.NewText("big", doctree.Mark{Type: "textStyle", Attrs: map[string]any{
			"color": "red", "fontSize": "14pt", "fontFamily": `"Fira Sans", sans-serif`,
		}}),
		doctree.NewText("marked", doctree.Mark{Type: "highlight"}),
		doctree.NewText("plain", doctree.Mark{Type: "sparkle"}),
	))
	paras := paragraphs(run(t, tree, Config{}).parse(t))
	require.Len(t, paras, 1)
	p := paras[0]
	assert.Equal(t, "center", p.Properties.Justification.Val)
	require.Len(t, p.Children, 4)

	bold := p.Children[0].(*docx.Run).RunProperties
	assert.NotNil(t, bold.Bold)
	assert.NotNil(t, bold.Italic)

	big := p.Children[1].(*docx.Run).RunProperties
	assert.Equal(t, "FF0000", big.Color.Val)
	assert.Equal(t, "28", big.Size.Val)
	assert.Equal(t, "Fira Sans", big.Fonts.ASCII)

	assert.Equal(t, "yellow", p.Children[2].(*docx.Run).RunProperties.Highlight.Val)
	assert.Nil(t, p.Children[3].(*docx.Run).RunProperties)
}

func TestExportLinks(t *testing.T) {
	link := doctree.Mark{Type: "link", Attrs: map[string]any{"href": "https://example.com/a"}}
	tree := doc(
		para("site", link),
		para("anchor", doctree.Mark{Type: "link", Attrs: map[string]any{"href": "#top"}}),
	)
	r := run(t, tree, Config{})

	body := r.files["word/document.xml"]
	assert.Equal(t, 1, strings.Count(body, "<w:hyperlink "))
	assert.Contains(t, body, `<w:rStyle w:val="Hyperlink">`)
	assert.Contains(t, r.files["word/_rels/document.xml.rels"], `Target="https://example.com/a" TargetMode="External"`)

	parsed := r.parse(t)
	paras := paragraphs(parsed)
	require.Len(t, paras, 2)
	h, ok := paras[0].Children[0].(*docx.Hyperlink)
	require.True(t, ok)
	target, err := parsed.ReferTarget(h.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", target)
}

func TestExportLinkWithoutHyperlinkStyle(t *testing.T) {
	off := false
	link := doctree.Mark{Type: "link", Attrs: map[string]any{"href": "https://example.com"}}
	r := run(t, doc(para("x", link)), Config{UseDefaultStyles: &off})
	body := r.files["word/document.xml"]
	assert.Contains(t, body, `<w:color w:val="`+linkColor+`">`)
	assert.Contains(t, body, `<w:u w:val="single">`)
}

func TestExportHeaderFooter(t *testing.T) {
	link := doctree.Mark{Type: "link", Attrs: map[string]any{"href": "https://example.com"}}
	cfg := Config{
		Header: []*doctree.Node{doctree.New("paragraph", nil,
			doctree.NewText("Confidential", link),
			doctree.New("image", map[string]any{"src": "https://example.com/logo.png"}),
		)},
		Footer: []*doctree.Node{doctree.New("paragraph", nil,
			doctree.NewText("Page "),
			doctree.New("pageNumber", nil),
		)},
	}
	r := run(t, doc(para("body")), cfg, WithFetcher(fakeFetcher{err: errors.New("must not fetch")}))

	header := r.files["word/header1.xml"]
	assert.Contains(t, header, "Confidential")
	assert.NotContains(t, header, "<w:hyperlink")
	assert.NotContains(t, header, "<w:drawing")
	assert.Contains(t, r.files["word/footer1.xml"], `<w:fldSimple w:instr="PAGE">`)

	body := r.files["word/document.xml"]
	assert.Contains(t, body, `<w:headerReference w:type="default"`)
	assert.Contains(t, body, `<w:footerReference w:type="default"`)
}

func TestExportImage(t *testing.T) {
	src := dataURI("image/png", pngBytes(t, 200, 100))
	tree := doc(doctree.New("image", map[string]any{"src": src, "width": "50%", "title": "Figure 1", "align": "center"}))
	r := run(t, tree, Config{})

	// A4 with one inch margins.
	box := imaging.Fit(imaging.Info{Width: 200, Height: 100}, units.TwipToPixel(11906-2*1440), 50)
	cx, cy := box.EMU()
	body := r.files["word/document.xml"]
	assert.Contains(t, body, fmt.Sprintf(`cx="%d" cy="%d"`, cx, cy))
	assert.Contains(t, body, `name="Picture 1"`)
	assert.Contains(t, r.files, "word/media/image1.png")
	assert.Contains(t, r.files["[Content_Types].xml"], `Extension="png"`)

	paras := paragraphs(r.parse(t))
	require.Len(t, paras, 2)
	assert.Equal(t, "center", paras[0].Properties.Justification.Val)
	assert.Equal(t, "Figure 1", paras[1].String())
	assert.Equal(t, styles.Caption, paras[1].Properties.Style.Val)
}

func TestExportImageShrinksToWidth(t *testing.T) {
	src := "https://example.com/wide.png"
	fetcher := fakeFetcher{data: map[string][]byte{src: pngBytes(t, 4000, 1000)}}
	r := run(t, doc(doctree.New("image", map[string]any{"src": src})), Config{}, WithFetcher(fetcher))

	avail := units.TwipToPixel(11906 - 2*1440)
	cx, _ := imaging.Box{Width: avail}.EMU()
	assert.Contains(t, r.files["word/document.xml"], fmt.Sprintf(`cx="%d"`, cx))
}

func TestExportSVGImage(t *testing.T) {
	svg := []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg" width="100" height="50"><rect width="100" height="50" fill="red"/></svg>`)
	tree := doc(doctree.New("paragraph", nil, doctree.New("image", map[string]any{"src": dataURI("image/svg+xml", svg)})))
	r := run(t, tree, Config{})

	assert.Contains(t, r.files, "word/media/image1.png")
	assert.Contains(t, r.files, "word/media/image2.svg")
	assert.True(t, strings.HasPrefix(r.files["word/media/image2.svg"], "<svg"))
	assert.Contains(t, r.files["word/document.xml"], "svgBlip")
	assert.Contains(t, r.files["[Content_Types].xml"], `Extension="svg"`)
}

func TestExportImageErrors(t *testing.T) {
	t.Run("unsupported format", func(t *testing.T) {
		src := dataURI("text/plain", []byte("hello, world"))
		_, err := New().Export(context.Background(), doc(doctree.New("image", map[string]any{"src": src})), Config{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, imaging.ErrUnsupportedFormat))
		assert.True(t, strings.HasPrefix(err.Error(), `image "data:text/plain`), err.Error())
	})

	t.Run("fetch failure", func(t *testing.T) {
		boom := errors.New("boom")
		tree := doc(para("before"), doctree.New("image", map[string]any{"src": "https://example.com/x.png"}))
		_, err := New(WithFetcher(fakeFetcher{err: boom})).Export(context.Background(), tree, Config{})
		assert.True(t, errors.Is(err, boom))
	})

	t.Run("bad scheme", func(t *testing.T) {
		tree := doc(doctree.New("image", map[string]any{"src": "ftp://example.com/x.png"}))
		_, err := New().Export(context.Background(), tree, Config{})
		assert.Error(t, err)
	})
}

func TestExportPageErrors(t *testing.T) {
	cfg := Config{Page: layout.Page{Margins: &layout.Margins{Left: 8000, Right: 8000}}}
	_, err := New().Export(context.Background(), doc(para("x")), cfg)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "page: "))
}

func TestExportCodeBlock(t *testing.T) {
	tree := doc(doctree.New("codeBlock", map[string]any{"language": "brainfuck"}, doctree.NewText("a := 1\nb := 2")))
	paras := paragraphs(run(t, tree, Config{}).parse(t))

	require.Len(t, paras, 2)
	for _, p := range paras {
		assert.Equal(t, styles.CodeBlock, p.Properties.Style.Val)
		require.NotNil(t, p.Properties.Shade)
	}
	assert.Equal(t, "b := 2", paras[1].String())
}

type colorTokenizer struct {
	err error
}

func (c colorTokenizer) Tokenize(_ context.Context, code, _, _ string) (*highlight.Highlighted, error) {
	if c.err != nil {
		return nil, c.err
	}
	h := &highlight.Highlighted{Background: "FFFFFF", Foreground: "000000"}
	for _, line := range highlight.SplitLines(code) {
		h.Lines = append(h.Lines, []highlight.Token{
			{Content: line[:1], Color: "#FF0000"},
			{Content: line[1:], Color: "00aa00"},
		})
	}
	return h, nil
}

// runColors lists the distinct run colors of the given paragraphs.
func runColors(paras []*docx.Paragraph) map[string]bool {
	colors := map[string]bool{}
	for _, p := range paras {
		for _, c := range p.Children {
			if r, ok := c.(*docx.Run); ok && r.RunProperties != nil && r.RunProperties.Color != nil {
				colors[r.RunProperties.Color.Val] = true
			}
		}
	}
	return colors
}

func TestExportCodeBlockTokenColors(t *testing.T) {
	tree := doc(doctree.New("codeBlock", map[string]any{"language": "go"}, doctree.NewText("ab\ncd")))
	r := run(t, tree, Config{}, WithTokenizer(colorTokenizer{}))

	body := r.files["word/document.xml"]
	assert.Contains(t, body, `<w:color w:val="FF0000">`)
	assert.Contains(t, body, `<w:color w:val="00AA00">`)

	paras := paragraphs(r.parse(t))
	require.Len(t, paras, 2)
	assert.Equal(t, "FFFFFF", paras[0].Properties.Shade.Fill)
	assert.Equal(t, "cd", paras[1].String())
}

func TestExportCodeBlockTokenizerError(t *testing.T) {
	tree := doc(doctree.New("codeBlock", map[string]any{"language": "go"}, doctree.NewText("x := 1")))
	r := run(t, tree, Config{}, WithTokenizer(colorTokenizer{err: errors.New("parser crashed")}))

	paras := paragraphs(r.parse(t))
	require.Len(t, paras, 1)
	assert.Equal(t, "x := 1", paras[0].String())
	fg := highlight.ThemeByName(highlight.DefaultTheme).Foreground
	assert.Equal(t, map[string]bool{fg: true}, runColors(paras))
}

func TestExportCodeBlockHighlightsByDefault(t *testing.T) {
	code := "package main\n\n// entry point\nfunc main() {\n\tprintln(\"hi\", 42)\n}"
	tree := doc(doctree.New("codeBlock", map[string]any{"language": "go"}, doctree.NewText(code)))

	colored := runColors(paragraphs(run(t, tree, Config{}).parse(t)))
	assert.Greater(t, len(colored), 1, "colors: %v", colored)

	plain := runColors(paragraphs(run(t, tree, Config{}, WithTokenizer(nil)).parse(t)))
	assert.Len(t, plain, 1)
}

func TestExportCodeBlockWithoutCodeStyle(t *testing.T) {
	off := false
	tree := doc(doctree.New("codeBlock", map[string]any{"language": "go"}, doctree.NewText("x")))
	r := run(t, tree, Config{UseDefaultStyles: &off})

	body := r.files["word/document.xml"]
	assert.NotContains(t, body, `w:val="`+styles.CodeBlock+`"`)
	assert.Contains(t, body, "<w:shd ")
}

func TestExportEmbedWithoutHyperlinkStyle(t *testing.T) {
	off := false
	tree := doc(doctree.New("youtube", map[string]any{"src": "https://youtu.be/dQw4w9WgXcQ"}))
	r := run(t, tree, Config{UseDefaultStyles: &off})

	body := r.files["word/document.xml"]
	assert.NotContains(t, body, `<w:rStyle w:val="`+styles.Hyperlink+`">`)
	assert.Contains(t, body, `<w:color w:val="`+linkColor+`">`)
	assert.Equal(t, 1, strings.Count(body, "<w:hyperlink "))
}

func TestSrcLabel(t *testing.T) {
	assert.Equal(t, "short", srcLabel("short"))

	ascii := srcLabel(strings.Repeat("a", 100))
	assert.Equal(t, strings.Repeat("a", 64)+"...", ascii)

	// 'é' is two bytes, so byte 64 falls inside a rune when the
	// string is offset by one.
	label := srcLabel("x" + strings.Repeat("é", 40))
	assert.True(t, utf8.ValidString(label), "%q", label)
	assert.True(t, strings.HasSuffix(label, "..."))
	assert.Equal(t, "x"+strings.Repeat("é", 31)+"...", label)
}

func TestExportEmbed(t *testing.T) {
	tree := doc(
		doctree.New("youtube", map[string]any{"src": "https://youtu.be/dQw4w9WgXcQ"}),
		doctree.New("iframe", map[string]any{"src": "not a url"}),
	)
	r := run(t, tree, Config{})

	body := r.files["word/document.xml"]
	assert.Equal(t, 2, strings.Count(body, "<wps:txbx>"))
	assert.Contains(t, body, "YouTube video")
	assert.Contains(t, body, "Embedded content")
	assert.Equal(t, 1, strings.Count(body, "<w:hyperlink "))
	assert.Contains(t, r.files["word/_rels/document.xml.rels"], "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
}

func TestExportBlockquoteAndDetails(t *testing.T) {
	tree := doc(
		doctree.New("blockquote", nil, para("quoted"), doctree.New("heading", nil, doctree.NewText("h"))),
		doctree.New("details", nil,
			doctree.New("detailsSummary", nil, doctree.NewText("More")),
			doctree.New("detailsContent", nil, para("hidden")),
		),
		doctree.New("horizontalRule", nil),
		doctree.New("pageBreak", nil),
	)
	r := run(t, tree, Config{})
	paras := paragraphs(r.parse(t))

	require.Len(t, paras, 6)
	assert.Equal(t, styles.Quote, paras[0].Properties.Style.Val)
	assert.Equal(t, "Heading1", paras[1].Properties.Style.Val)
	assert.NotNil(t, paras[2].Children[0].(*docx.Run).RunProperties.Bold)
	assert.Equal(t, "hidden", paras[3].String())
	assert.Equal(t, styles.HorizontalRule, paras[4].Properties.Style.Val)
	assert.Contains(t, r.files["word/document.xml"], `<w:br w:type="page">`)
}

func TestExportInlineNodes(t *testing.T) {
	tree := doc(doctree.New("paragraph", nil,
		doctree.NewText("a\tb"),
		doctree.New("hardBreak", nil),
		doctree.New("mention", map[string]any{"id": "u1", "label": "ada"}),
		doctree.New("widget", nil),
	))
	paras := paragraphs(run(t, tree, Config{}).parse(t))
	require.Len(t, paras, 1)
	assert.Equal(t, "a\tb\n@ada", paras[0].String())
}

func TestExportUnknownNodesAreSkipped(t *testing.T) {
	tree := doc(para("kept"), doctree.New("widget", nil, para("lost")))
	paras := paragraphs(run(t, tree, Config{}).parse(t))
	require.Len(t, paras, 1)
	assert.Equal(t, "kept", paras[0].String())
}

func TestCustomTransformers(t *testing.T) {
	widget := func(_ context.Context, n *doctree.Node, _ *Scope) ([]Block, error) {
		return []Block{&docx.Paragraph{Children: []interface{}{textRun("widget:"+n.String("name", ""), nil)}}}, nil
	}
	shout := func(_ doctree.Mark, rp *docx.RunProperties, _ *Scope) { rp.Color = &docx.Color{Val: "FF0000"} }

	tree := doc(
		para("gone"),
		doctree.New("widget", map[string]any{"name": "w"}),
		doctree.New("heading", nil, doctree.NewText("loud", doctree.Mark{Type: "shout"})),
	)
	r := run(t, tree, Config{},
		WithBlock("paragraph", nil),
		WithBlock("widget", widget),
		WithMark("shout", shout),
	)
	paras := paragraphs(r.parse(t))

	require.Len(t, paras, 2)
	assert.Equal(t, "widget:w", paras[0].String())
	assert.Equal(t, "FF0000", paras[1].Children[0].(*docx.Run).RunProperties.Color.Val)
}

func TestExportDeterministic(t *testing.T) {
	tree := doc(
		doctree.New("heading", nil, doctree.NewText("T")),
		doctree.New("orderedList", nil, item(para("a")), item(para("b"))),
		doctree.New("table", nil, doctree.New("tableRow", nil, doctree.New("tableCell", nil, para("c")))),
	)
	cfg := Config{Title: "same", Created: time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)}
	a := run(t, tree, cfg)
	b := run(t, tree, cfg)
	assert.Equal(t, a.doc.Bytes(), b.doc.Bytes())
	assert.Contains(t, a.files["docProps/core.xml"], "<dc:title>same</dc:title>")
}

func TestExportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Export(ctx, doc(para("x")), Config{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExportEmptyTree(t *testing.T) {
	_, err := New().Export(context.Background(), nil, Config{})
	assert.Error(t, err)
}

func TestDocumentFormats(t *testing.T) {
	r := run(t, doc(para("x")), Config{})
	d := r.doc

	for _, name := range []string{"", "docx", "buffer", "stream", "blob"} {
		f, err := ParseFormat(name)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, d.Encode(&buf, f))
		assert.Equal(t, d.Bytes(), buf.Bytes(), name)
	}

	var buf bytes.Buffer
	require.NoError(t, d.Encode(&buf, FormatBase64))
	assert.Equal(t, d.Base64(), buf.String())
	decoded, err := base64.StdEncoding.DecodeString(buf.String())
	require.NoError(t, err)
	assert.Equal(t, d.Bytes(), decoded)

	blob := d.Blob()
	assert.Equal(t, ContentType, blob.ContentType)
	assert.EqualValues(t, d.Len(), blob.Size)
	data, err := io.ReadAll(blob.Open())
	require.NoError(t, err)
	assert.Equal(t, d.Bytes(), data)
	assert.Len(t, d.SHA256(), 64)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}

func TestConfigOverlay(t *testing.T) {
	off := false
	base := Config{
		Page:   layout.Page{Size: "a4", Margins: &layout.Margins{Left: 1000, Right: 1000}},
		Title:  "base",
		Styles: []styles.Style{{ID: "Quote", Run: &styles.RunProps{Italic: styles.Bool(true)}}},
	}
	out := base.Overlay(Config{
		Page:             layout.Page{Orientation: "landscape", Margins: &layout.Margins{Left: 500}},
		Creator:          "me",
		UseDefaultStyles: &off,
		Styles: []styles.Style{
			{ID: "Quote", Run: &styles.RunProps{Color: "#333333"}},
			{ID: "Extra"},
		},
	})

	assert.Equal(t, "a4", out.Page.Size)
	assert.Equal(t, "landscape", out.Page.Orientation)
	assert.EqualValues(t, 500, out.Page.Margins.Left)
	assert.Equal(t, "base", out.Title)
	assert.Equal(t, "me", out.Creator)
	assert.False(t, out.useDefaultStyles())
	assert.True(t, out.useDefaultNumbering())
	require.Len(t, out.Styles, 2)
	assert.True(t, *out.Styles[0].Run.Italic)
	assert.Equal(t, "#333333", out.Styles[0].Run.Color)
}
