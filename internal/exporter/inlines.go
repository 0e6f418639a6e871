package exporter

import (
	"context"
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/docxport/internal/codeblock"
	"github.com/dgallion1/docxport/internal/doctree"
	"github.com/dgallion1/docxport/internal/embed"
	"github.com/dgallion1/docxport/internal/styles"
	"github.com/dgallion1/docxport/internal/units"
)

// Direct formatting for links when the registry has no Hyperlink style.
const linkColor = embed.LinkColor

func defaultInlines() map[string]InlineTransformer {
	return map[string]InlineTransformer{
		"text":       textInline,
		"hardBreak":  hardBreakInline,
		"image":      imageInline,
		"mention":    mentionInline,
		"pageNumber": pageNumberInline,
	}
}

func defaultMarks() map[string]MarkTransformer {
	return map[string]MarkTransformer{
		"bold":        func(_ doctree.Mark, rp *docx.RunProperties, _ *Scope) { rp.Bold = &docx.Bold{} },
		"italic":      func(_ doctree.Mark, rp *docx.RunProperties, _ *Scope) { rp.Italic = &docx.Italic{} },
		"underline":   func(_ doctree.Mark, rp *docx.RunProperties, _ *Scope) { rp.Underline = &docx.Underline{Val: "single"} },
		"strike":      func(_ doctree.Mark, rp *docx.RunProperties, _ *Scope) { rp.Strike = &docx.Strike{Val: "true"} },
		"subscript":   func(_ doctree.Mark, rp *docx.RunProperties, _ *Scope) { rp.VertAlign = &docx.VertAlign{Val: "subscript"} },
		"superscript": func(_ doctree.Mark, rp *docx.RunProperties, _ *Scope) { rp.VertAlign = &docx.VertAlign{Val: "superscript"} },
		"code":        codeMark,
		"highlight":   highlightMark,
		"textStyle":   textStyleMark,
		"link":        linkMark,
	}
}

func codeMark(_ doctree.Mark, rp *docx.RunProperties, s *Scope) {
	if style := s.style(styles.CodeChar); style != "" {
		rp.RunStyle = &docx.RunStyle{Val: style}
	}
	rp.Fonts = fonts(codeblock.DefaultFont)
}

func highlightMark(m doctree.Mark, rp *docx.RunProperties, _ *Scope) {
	color := styles.NormalizeColor(m.String("color", ""))
	if color == "" {
		rp.Highlight = &docx.Highlight{Val: "yellow"}
		return
	}
	if name, ok := styles.HighlightName(color); ok {
		rp.Highlight = &docx.Highlight{Val: name}
		return
	}
	rp.Shade = shade(color)
}

func textStyleMark(m doctree.Mark, rp *docx.RunProperties, _ *Scope) {
	if c := styles.NormalizeColor(m.String("color", "")); c != "" {
		rp.Color = &docx.Color{Val: c}
	}
	if c := styles.NormalizeColor(m.String("backgroundColor", "")); c != "" {
		rp.Shade = shade(c)
	}
	if family := firstFamily(m.String("fontFamily", "")); family != "" {
		rp.Fonts = fonts(family)
	}
	if size := m.String("fontSize", ""); size != "" {
		if pt, err := units.ParsePoints(size); err == nil && pt > 0 {
			v := strconv.Itoa(units.HalfPoints(pt))
			rp.Size = &docx.Size{Val: v}
			rp.SizeCs = &docx.SizeCs{Val: v}
		}
	}
}

func linkMark(_ doctree.Mark, rp *docx.RunProperties, s *Scope) {
	if style := s.style(styles.Hyperlink); style != "" {
		rp.RunStyle = &docx.RunStyle{Val: style}
		return
	}
	rp.Color = &docx.Color{Val: linkColor}
	rp.Underline = &docx.Underline{Val: "single"}
}

// textInline emits one run per text leaf. A link mark wraps the run in a
// hyperlink in the body; elsewhere the run keeps only the link styling.
func textInline(_ context.Context, n *doctree.Node, s *Scope) ([]Inline, error) {
	if n.Text == "" {
		return nil, nil
	}
	run := textRun(n.Text, s.runProps(n.Marks))
	href := ""
	if m, ok := n.HasMark("link"); ok {
		href = strings.TrimSpace(m.String("href", ""))
	}
	if href == "" || strings.HasPrefix(href, "#") || s.region != RegionBody {
		return []Inline{run}, nil
	}
	return []Inline{&docx.Hyperlink{ID: s.x.b.LinkID(href), Run: *run}}, nil
}

func hardBreakInline(context.Context, *doctree.Node, *Scope) ([]Inline, error) {
	return []Inline{&docx.Run{Children: []interface{}{&docx.BarterRabbet{}}}}, nil
}

func imageInline(ctx context.Context, n *doctree.Node, s *Scope) ([]Inline, error) {
	run, err := s.picture(ctx, n)
	if err != nil || run == nil {
		return nil, err
	}
	return []Inline{run}, nil
}

func mentionInline(_ context.Context, n *doctree.Node, s *Scope) ([]Inline, error) {
	label := n.String("label", n.String("id", ""))
	if label == "" {
		return nil, nil
	}
	return []Inline{textRun("@"+label, s.runProps(n.Marks))}, nil
}

// simpleField is a w:fldSimple, which go-docx does not model.
type simpleField struct {
	XMLName xml.Name `xml:"w:fldSimple"`
	Instr   string   `xml:"w:instr,attr"`
	Run     *docx.Run
}

func pageNumberInline(_ context.Context, n *doctree.Node, s *Scope) ([]Inline, error) {
	return []Inline{&simpleField{Instr: "PAGE", Run: textRun("1", s.runProps(n.Marks))}}, nil
}

// runProps folds the marks into one set of run properties. It returns nil
// when nothing applies.
func (s *Scope) runProps(marks []doctree.Mark) *docx.RunProperties {
	rp := &docx.RunProperties{}
	if s.strong {
		rp.Bold = &docx.Bold{}
	}
	for _, m := range marks {
		if fn, ok := s.x.e.marks[m.Type]; ok {
			fn(m, rp, s)
		}
	}
	if *rp == (docx.RunProperties{}) {
		return nil
	}
	return rp
}

// textRun splits text on newlines and tabs into breaks and tab stops.
func textRun(text string, rp *docx.RunProperties) *docx.Run {
	run := &docx.Run{RunProperties: rp}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			run.Children = append(run.Children, &docx.BarterRabbet{})
		}
		for j, part := range strings.Split(line, "\t") {
			if j > 0 {
				run.Children = append(run.Children, &docx.Tab{})
			}
			if part != "" {
				run.Children = append(run.Children, &docx.Text{XMLSpace: "preserve", Text: part})
			}
		}
	}
	return run
}

func fonts(family string) *docx.RunFonts {
	return &docx.RunFonts{ASCII: family, HAnsi: family, EastAsia: family}
}

func shade(fill string) *docx.Shade {
	return &docx.Shade{Val: "clear", Color: "auto", Fill: fill}
}

// firstFamily takes the first entry of a CSS font-family list.
func firstFamily(s string) string {
	first, _, _ := strings.Cut(s, ",")
	return strings.Trim(strings.TrimSpace(first), `"'`)
}
