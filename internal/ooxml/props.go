// Package ooxml writes the WordprocessingML parts the document writer does
// not produce itself (style and numbering catalogs, header and footer parts,
// core properties) and assembles the final package.
package ooxml

import (
	"encoding/xml"
	"strconv"

	"github.com/dgallion1/docxport/internal/styles"
	"github.com/dgallion1/docxport/internal/units"
)

// Namespaces declared on the root of every part this package writes.
const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsWPS = "http://schemas.microsoft.com/office/word/2010/wordprocessingShape"
)

type val struct {
	Val string `xml:"w:val,attr"`
}

type onOff struct {
	Val string `xml:"w:val,attr,omitempty"`
}

func flag(b *bool) *onOff {
	if b == nil {
		return nil
	}
	if *b {
		return &onOff{}
	}
	return &onOff{Val: "0"}
}

func strVal(s string) *val {
	if s == "" {
		return nil
	}
	return &val{Val: s}
}

type rFonts struct {
	ASCII    string `xml:"w:ascii,attr,omitempty"`
	HAnsi    string `xml:"w:hAnsi,attr,omitempty"`
	EastAsia string `xml:"w:eastAsia,attr,omitempty"`
	CS       string `xml:"w:cs,attr,omitempty"`
}

type shd struct {
	Val   string `xml:"w:val,attr"`
	Color string `xml:"w:color,attr"`
	Fill  string `xml:"w:fill,attr"`
}

func shading(fill string) *shd {
	if fill = styles.NormalizeColor(fill); fill == "" {
		return nil
	}
	return &shd{Val: "clear", Color: "auto", Fill: fill}
}

// rPr follows the CT_RPr element order.
type rPr struct {
	XMLName   xml.Name `xml:"w:rPr"`
	RStyle    *val     `xml:"w:rStyle,omitempty"`
	Fonts     *rFonts  `xml:"w:rFonts,omitempty"`
	Bold      *onOff   `xml:"w:b,omitempty"`
	Italic    *onOff   `xml:"w:i,omitempty"`
	Caps      *onOff   `xml:"w:caps,omitempty"`
	Strike    *onOff   `xml:"w:strike,omitempty"`
	Color     *val     `xml:"w:color,omitempty"`
	Size      *val     `xml:"w:sz,omitempty"`
	SizeCs    *val     `xml:"w:szCs,omitempty"`
	Highlight *val     `xml:"w:highlight,omitempty"`
	Underline *val     `xml:"w:u,omitempty"`
	Shade     *shd     `xml:"w:shd,omitempty"`
	VertAlign *val     `xml:"w:vertAlign,omitempty"`
}

func runProps(r *styles.RunProps) *rPr {
	if r == nil || r.IsZero() {
		return nil
	}
	out := &rPr{
		RStyle:    strVal(r.Style),
		Bold:      flag(r.Bold),
		Italic:    flag(r.Italic),
		Caps:      flag(r.Caps),
		Strike:    flag(r.Strike),
		Color:     strVal(styles.NormalizeColor(r.Color)),
		Highlight: strVal(r.Highlight),
		Underline: strVal(r.Underline),
		Shade:     shading(r.Shading),
		VertAlign: strVal(r.VertAlign),
	}
	if r.Font != "" {
		out.Fonts = &rFonts{ASCII: r.Font, HAnsi: r.Font, EastAsia: r.Font, CS: r.Font}
	}
	if r.Size > 0 {
		hp := strconv.Itoa(units.HalfPoints(r.Size))
		out.Size, out.SizeCs = &val{Val: hp}, &val{Val: hp}
	}
	return out
}

type border struct {
	Val   string `xml:"w:val,attr"`
	Size  int    `xml:"w:sz,attr"`
	Space int    `xml:"w:space,attr"`
	Color string `xml:"w:color,attr"`
}

type pBdr struct {
	Top    *border `xml:"w:top,omitempty"`
	Left   *border `xml:"w:left,omitempty"`
	Bottom *border `xml:"w:bottom,omitempty"`
	Right  *border `xml:"w:right,omitempty"`
}

func edge(b *styles.Border) *border {
	if b == nil {
		return nil
	}
	out := &border{Val: b.Style, Size: b.Size, Space: b.Space, Color: styles.NormalizeColor(b.Color)}
	if out.Val == "" {
		out.Val = "single"
	}
	if out.Color == "" {
		out.Color = "auto"
	}
	return out
}

type spacing struct {
	Before   *int   `xml:"w:before,attr,omitempty"`
	After    *int   `xml:"w:after,attr,omitempty"`
	Line     *int   `xml:"w:line,attr,omitempty"`
	LineRule string `xml:"w:lineRule,attr,omitempty"`
}

type ind struct {
	Left      *int `xml:"w:left,attr,omitempty"`
	Right     *int `xml:"w:right,attr,omitempty"`
	Hanging   *int `xml:"w:hanging,attr,omitempty"`
	FirstLine *int `xml:"w:firstLine,attr,omitempty"`
}

// pPr follows the CT_PPrBase element order.
type pPr struct {
	XMLName      xml.Name `xml:"w:pPr"`
	KeepNext     *onOff   `xml:"w:keepNext,omitempty"`
	KeepLines    *onOff   `xml:"w:keepLines,omitempty"`
	Borders      *pBdr    `xml:"w:pBdr,omitempty"`
	Shade        *shd     `xml:"w:shd,omitempty"`
	Spacing      *spacing `xml:"w:spacing,omitempty"`
	Ind          *ind     `xml:"w:ind,omitempty"`
	Jc           *val     `xml:"w:jc,omitempty"`
	OutlineLevel *val     `xml:"w:outlineLvl,omitempty"`
}

func paragraphProps(p *styles.ParagraphProps) *pPr {
	if p == nil {
		return nil
	}
	out := &pPr{
		KeepNext:  flag(p.KeepNext),
		KeepLines: flag(p.KeepLines),
		Shade:     shading(p.Shading),
		Jc:        strVal(Justification(p.Alignment)),
	}
	if b := p.Borders; b != nil {
		out.Borders = &pBdr{Top: edge(b.Top), Left: edge(b.Left), Bottom: edge(b.Bottom), Right: edge(b.Right)}
	}
	if p.SpacingBefore != nil || p.SpacingAfter != nil || p.Line != nil {
		out.Spacing = &spacing{Before: p.SpacingBefore, After: p.SpacingAfter, Line: p.Line}
		if p.Line != nil {
			out.Spacing.LineRule = "auto"
		}
	}
	if p.IndentLeft != nil || p.IndentRight != nil || p.IndentHanging != nil || p.IndentFirstLine != nil {
		out.Ind = &ind{Left: p.IndentLeft, Right: p.IndentRight, Hanging: p.IndentHanging, FirstLine: p.IndentFirstLine}
	}
	if p.OutlineLevel != nil {
		out.OutlineLevel = &val{Val: strconv.Itoa(*p.OutlineLevel)}
	}
	return out
}

// Justification maps editor alignment names onto w:jc values. Unknown
// values map to "".
func Justification(align string) string {
	switch align {
	case "left", "start":
		return "left"
	case "center", "centre":
		return "center"
	case "right", "end":
		return "right"
	case "justify", "both":
		return "both"
	default:
		return ""
	}
}

func marshalPart(v any) ([]byte, error) {
	out, err := xml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
