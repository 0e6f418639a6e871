package config

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/dgallion1/docxport/internal/doctree"
	"github.com/dgallion1/docxport/internal/exporter"
	"github.com/dgallion1/docxport/internal/layout"
	"github.com/dgallion1/docxport/internal/styles"
	"github.com/dgallion1/docxport/internal/units"
)

// exportFile is the HCL shape of an export config:
//
//	title = "Report"
//	page {
//	  size    = "letter"
//	  margins { left = "1in" }
//	}
//	style "Heading1" {
//	  run { color = "1F3864" }
//	}
//	numbering "bulletList" {
//	  level "0" { text = "-" }
//	}
//	footer {
//	  alignment   = "center"
//	  page_number = true
//	}
type exportFile struct {
	Title               string `hcl:"title,optional"`
	Creator             string `hcl:"creator,optional"`
	Description         string `hcl:"description,optional"`
	CodeTheme           string `hcl:"code_theme,optional"`
	UseDefaultStyles    *bool  `hcl:"use_default_styles,optional"`
	UseDefaultNumbering *bool  `hcl:"use_default_numbering,optional"`

	Page      *pageBlock       `hcl:"page,block"`
	Styles    []styleBlock     `hcl:"style,block"`
	Numbering []numberingBlock `hcl:"numbering,block"`
	Header    *bandBlock       `hcl:"header,block"`
	Footer    *bandBlock       `hcl:"footer,block"`
}

type pageBlock struct {
	Size        string        `hcl:"size,optional"`
	Orientation string        `hcl:"orientation,optional"`
	Width       string        `hcl:"width,optional"`
	Height      string        `hcl:"height,optional"`
	Margins     *marginsBlock `hcl:"margins,block"`
}

type marginsBlock struct {
	Top    string `hcl:"top,optional"`
	Right  string `hcl:"right,optional"`
	Bottom string `hcl:"bottom,optional"`
	Left   string `hcl:"left,optional"`
	Header string `hcl:"header,optional"`
	Footer string `hcl:"footer,optional"`
	Gutter string `hcl:"gutter,optional"`
}

type styleBlock struct {
	ID        string          `hcl:"id,label"`
	Name      string          `hcl:"name,optional"`
	Kind      string          `hcl:"kind,optional"`
	BasedOn   string          `hcl:"based_on,optional"`
	Next      string          `hcl:"next,optional"`
	Run       *runBlock       `hcl:"run,block"`
	Paragraph *paragraphBlock `hcl:"paragraph,block"`
}

type runBlock struct {
	Bold      *bool   `hcl:"bold,optional"`
	Italic    *bool   `hcl:"italic,optional"`
	Strike    *bool   `hcl:"strike,optional"`
	Caps      *bool   `hcl:"caps,optional"`
	Underline string  `hcl:"underline,optional"`
	Color     string  `hcl:"color,optional"`
	Shading   string  `hcl:"shading,optional"`
	Highlight string  `hcl:"highlight,optional"`
	Font      string  `hcl:"font,optional"`
	Size      float64 `hcl:"size,optional"`
	VertAlign string  `hcl:"vert_align,optional"`
	Style     string  `hcl:"style,optional"`
}

// Paragraph lengths are unit strings ("6pt", "0.5in"); line is in 240ths.
type paragraphBlock struct {
	Alignment       string        `hcl:"alignment,optional"`
	SpacingBefore   *string       `hcl:"spacing_before,optional"`
	SpacingAfter    *string       `hcl:"spacing_after,optional"`
	Line            *int          `hcl:"line,optional"`
	IndentLeft      *string       `hcl:"indent_left,optional"`
	IndentRight     *string       `hcl:"indent_right,optional"`
	IndentHanging   *string       `hcl:"indent_hanging,optional"`
	IndentFirstLine *string       `hcl:"indent_first_line,optional"`
	KeepNext        *bool         `hcl:"keep_next,optional"`
	KeepLines       *bool         `hcl:"keep_lines,optional"`
	OutlineLevel    *int          `hcl:"outline_level,optional"`
	Shading         string        `hcl:"shading,optional"`
	Borders         []borderBlock `hcl:"border,block"`
}

type borderBlock struct {
	Edge  string `hcl:"edge,label"` // top, left, bottom, right
	Style string `hcl:"style,optional"`
	Size  int    `hcl:"size,optional"`
	Space int    `hcl:"space,optional"`
	Color string `hcl:"color,optional"`
}

type numberingBlock struct {
	Reference string       `hcl:"reference,label"`
	Levels    []levelBlock `hcl:"level,block"`
}

type levelBlock struct {
	Level     string    `hcl:"level,label"`
	Format    string    `hcl:"format,optional"`
	Text      string    `hcl:"text,optional"`
	Alignment string    `hcl:"alignment,optional"`
	Start     int       `hcl:"start,optional"`
	Left      *string   `hcl:"left,optional"`
	Hanging   *string   `hcl:"hanging,optional"`
	Run       *runBlock `hcl:"run,block"`
}

// bandBlock is a one-paragraph header or footer.
type bandBlock struct {
	Text       string `hcl:"text,optional"`
	Alignment  string `hcl:"alignment,optional"`
	PageNumber bool   `hcl:"page_number,optional"`
}

// LoadExportFile decodes an HCL (or HCL-JSON, by extension) export config.
func LoadExportFile(path string) (exporter.Config, error) {
	var f exportFile
	if err := hclsimple.DecodeFile(path, nil, &f); err != nil {
		return exporter.Config{}, fmt.Errorf("load export config: %w", err)
	}
	return f.config()
}

// ParseExport decodes export config source; filename picks the syntax.
func ParseExport(filename string, src []byte) (exporter.Config, error) {
	var f exportFile
	if err := hclsimple.Decode(filename, src, nil, &f); err != nil {
		return exporter.Config{}, fmt.Errorf("parse export config: %w", err)
	}
	return f.config()
}

func (f exportFile) config() (exporter.Config, error) {
	cfg := exporter.Config{
		Title:               f.Title,
		Creator:             f.Creator,
		Description:         f.Description,
		CodeTheme:           f.CodeTheme,
		UseDefaultStyles:    f.UseDefaultStyles,
		UseDefaultNumbering: f.UseDefaultNumbering,
	}

	if f.Page != nil {
		page, err := f.Page.page()
		if err != nil {
			return exporter.Config{}, fmt.Errorf("page: %w", err)
		}
		cfg.Page = page
	}

	for _, sb := range f.Styles {
		s, err := sb.style()
		if err != nil {
			return exporter.Config{}, fmt.Errorf("style %q: %w", sb.ID, err)
		}
		cfg.Styles = append(cfg.Styles, s)
	}

	for _, nb := range f.Numbering {
		n := styles.Numbering{Reference: nb.Reference}
		for _, lb := range nb.Levels {
			l, err := lb.level()
			if err != nil {
				return exporter.Config{}, fmt.Errorf("numbering %q: %w", nb.Reference, err)
			}
			n.Levels = append(n.Levels, l)
		}
		cfg.Numbering = append(cfg.Numbering, n)
	}

	cfg.Header = f.Header.blocks()
	cfg.Footer = f.Footer.blocks()
	return cfg, nil
}

func (p *pageBlock) page() (layout.Page, error) {
	page := layout.Page{Size: p.Size, Orientation: p.Orientation}
	var err error
	if page.Width, err = length(p.Width); err != nil {
		return page, fmt.Errorf("width: %w", err)
	}
	if page.Height, err = length(p.Height); err != nil {
		return page, fmt.Errorf("height: %w", err)
	}
	if p.Margins == nil {
		return page, nil
	}

	// Margins left out keep their defaults.
	m := layout.DefaultMargins()
	fields := []struct {
		name string
		src  string
		dst  *units.Length
	}{
		{"top", p.Margins.Top, &m.Top},
		{"right", p.Margins.Right, &m.Right},
		{"bottom", p.Margins.Bottom, &m.Bottom},
		{"left", p.Margins.Left, &m.Left},
		{"header", p.Margins.Header, &m.Header},
		{"footer", p.Margins.Footer, &m.Footer},
		{"gutter", p.Margins.Gutter, &m.Gutter},
	}
	for _, fld := range fields {
		if fld.src == "" {
			continue
		}
		v, err := length(fld.src)
		if err != nil {
			return page, fmt.Errorf("margin %s: %w", fld.name, err)
		}
		*fld.dst = v
	}
	page.Margins = &m
	return page, nil
}

func (sb styleBlock) style() (styles.Style, error) {
	s := styles.Style{
		ID:      sb.ID,
		Name:    sb.Name,
		Kind:    styles.Kind(sb.Kind),
		BasedOn: sb.BasedOn,
		Next:    sb.Next,
		Run:     sb.Run.props(),
	}
	if sb.Paragraph != nil {
		pp, err := sb.Paragraph.props()
		if err != nil {
			return s, err
		}
		s.Paragraph = pp
	}
	return s, nil
}

func (r *runBlock) props() *styles.RunProps {
	if r == nil {
		return nil
	}
	return &styles.RunProps{
		Bold:      r.Bold,
		Italic:    r.Italic,
		Strike:    r.Strike,
		Caps:      r.Caps,
		Underline: r.Underline,
		Color:     styles.NormalizeColor(r.Color),
		Shading:   styles.NormalizeColor(r.Shading),
		Highlight: r.Highlight,
		Font:      r.Font,
		Size:      r.Size,
		VertAlign: r.VertAlign,
		Style:     r.Style,
	}
}

func (p *paragraphBlock) props() (*styles.ParagraphProps, error) {
	out := &styles.ParagraphProps{
		Alignment:    p.Alignment,
		Line:         p.Line,
		KeepNext:     p.KeepNext,
		KeepLines:    p.KeepLines,
		OutlineLevel: p.OutlineLevel,
		Shading:      styles.NormalizeColor(p.Shading),
	}
	fields := []struct {
		name string
		src  *string
		dst  **int
	}{
		{"spacing_before", p.SpacingBefore, &out.SpacingBefore},
		{"spacing_after", p.SpacingAfter, &out.SpacingAfter},
		{"indent_left", p.IndentLeft, &out.IndentLeft},
		{"indent_right", p.IndentRight, &out.IndentRight},
		{"indent_hanging", p.IndentHanging, &out.IndentHanging},
		{"indent_first_line", p.IndentFirstLine, &out.IndentFirstLine},
	}
	for _, fld := range fields {
		v, err := twips(fld.src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fld.name, err)
		}
		*fld.dst = v
	}

	if len(p.Borders) > 0 {
		out.Borders = &styles.Borders{}
		for _, b := range p.Borders {
			edge := &styles.Border{Style: b.Style, Size: b.Size, Space: b.Space, Color: styles.NormalizeColor(b.Color)}
			switch b.Edge {
			case "top":
				out.Borders.Top = edge
			case "left":
				out.Borders.Left = edge
			case "bottom":
				out.Borders.Bottom = edge
			case "right":
				out.Borders.Right = edge
			default:
				return nil, fmt.Errorf("unknown border edge %q", b.Edge)
			}
		}
	}
	return out, nil
}

func (lb levelBlock) level() (styles.Level, error) {
	n, err := strconv.Atoi(lb.Level)
	if err != nil || n < 0 || n >= styles.MaxLevels {
		return styles.Level{}, fmt.Errorf("level %q: must be 0-%d", lb.Level, styles.MaxLevels-1)
	}
	l := styles.Level{
		Level:     n,
		Format:    lb.Format,
		Text:      lb.Text,
		Alignment: lb.Alignment,
		Start:     lb.Start,
		Run:       lb.Run.props(),
	}
	if l.Left, err = twips(lb.Left); err != nil {
		return l, fmt.Errorf("level %d left: %w", n, err)
	}
	if l.Hanging, err = twips(lb.Hanging); err != nil {
		return l, fmt.Errorf("level %d hanging: %w", n, err)
	}
	return l, nil
}

func (b *bandBlock) blocks() []*doctree.Node {
	if b == nil || (b.Text == "" && !b.PageNumber) {
		return nil
	}
	var attrs map[string]any
	if b.Alignment != "" {
		attrs = map[string]any{"textAlign": b.Alignment}
	}
	p := doctree.New("paragraph", attrs)
	if b.Text != "" {
		p.Content = append(p.Content, doctree.NewText(b.Text))
	}
	if b.PageNumber {
		if b.Text != "" {
			p.Content = append(p.Content, doctree.NewText(" "))
		}
		p.Content = append(p.Content, doctree.New("pageNumber", nil))
	}
	return []*doctree.Node{p}
}

func length(s string) (units.Length, error) {
	if s == "" {
		return 0, nil
	}
	tw, err := units.Parse(s)
	return units.Length(tw), err
}

func twips(s *string) (*int, error) {
	if s == nil {
		return nil, nil
	}
	tw, err := units.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &tw, nil
}
