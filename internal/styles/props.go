package styles

import "github.com/dgallion1/docxport/internal/merge"

// RunProps is character formatting. Unset fields (nil or "") inherit from
// whatever the run is layered on.
type RunProps struct {
	Bold      *bool   `json:"bold,omitempty"`
	Italic    *bool   `json:"italic,omitempty"`
	Strike    *bool   `json:"strike,omitempty"`
	Caps      *bool   `json:"caps,omitempty"`
	Underline string  `json:"underline,omitempty"` // single, double, dotted, ...
	Color     string  `json:"color,omitempty"`     // RRGGBB
	Shading   string  `json:"shading,omitempty"`   // RRGGBB background fill
	Highlight string  `json:"highlight,omitempty"` // named highlight color
	Font      string  `json:"font,omitempty"`
	Size      float64 `json:"size,omitempty"` // points
	VertAlign string  `json:"vertAlign,omitempty"`
	Style     string  `json:"style,omitempty"` // character style id
}

// Merge layers over on top of r.
func (r RunProps) Merge(over RunProps) RunProps {
	out := RunProps{
		Bold:      merge.Ptr(r.Bold, over.Bold),
		Italic:    merge.Ptr(r.Italic, over.Italic),
		Strike:    merge.Ptr(r.Strike, over.Strike),
		Caps:      merge.Ptr(r.Caps, over.Caps),
		Underline: merge.String(r.Underline, over.Underline),
		Color:     merge.String(r.Color, over.Color),
		Shading:   merge.String(r.Shading, over.Shading),
		Highlight: merge.String(r.Highlight, over.Highlight),
		Font:      merge.String(r.Font, over.Font),
		Size:      r.Size,
		VertAlign: merge.String(r.VertAlign, over.VertAlign),
		Style:     merge.String(r.Style, over.Style),
	}
	if over.Size > 0 {
		out.Size = over.Size
	}
	return out
}

// IsZero reports whether no field is set.
func (r RunProps) IsZero() bool {
	return r == RunProps{}
}

// Border describes one paragraph border edge.
type Border struct {
	Style string `json:"style,omitempty"` // single, double, dashed, ...
	Size  int    `json:"size,omitempty"`  // eighths of a point
	Space int    `json:"space,omitempty"` // points
	Color string `json:"color,omitempty"`
}

type Borders struct {
	Top    *Border `json:"top,omitempty"`
	Left   *Border `json:"left,omitempty"`
	Bottom *Border `json:"bottom,omitempty"`
	Right  *Border `json:"right,omitempty"`
}

func (b Borders) Merge(over Borders) Borders {
	return Borders{
		Top:    merge.Ptr(b.Top, over.Top),
		Left:   merge.Ptr(b.Left, over.Left),
		Bottom: merge.Ptr(b.Bottom, over.Bottom),
		Right:  merge.Ptr(b.Right, over.Right),
	}
}

// ParagraphProps is paragraph formatting. Lengths are twips; Line is in
// 240ths of a line (240 = single spacing).
type ParagraphProps struct {
	Alignment       string   `json:"alignment,omitempty"` // left, center, right, both
	SpacingBefore   *int     `json:"spacingBefore,omitempty"`
	SpacingAfter    *int     `json:"spacingAfter,omitempty"`
	Line            *int     `json:"line,omitempty"`
	IndentLeft      *int     `json:"indentLeft,omitempty"`
	IndentRight     *int     `json:"indentRight,omitempty"`
	IndentHanging   *int     `json:"indentHanging,omitempty"`
	IndentFirstLine *int     `json:"indentFirstLine,omitempty"`
	KeepNext        *bool    `json:"keepNext,omitempty"`
	KeepLines       *bool    `json:"keepLines,omitempty"`
	OutlineLevel    *int     `json:"outlineLevel,omitempty"`
	Shading         string   `json:"shading,omitempty"`
	Borders         *Borders `json:"borders,omitempty"`
}

func (p ParagraphProps) Merge(over ParagraphProps) ParagraphProps {
	return ParagraphProps{
		Alignment:       merge.String(p.Alignment, over.Alignment),
		SpacingBefore:   merge.Ptr(p.SpacingBefore, over.SpacingBefore),
		SpacingAfter:    merge.Ptr(p.SpacingAfter, over.SpacingAfter),
		Line:            merge.Ptr(p.Line, over.Line),
		IndentLeft:      merge.Ptr(p.IndentLeft, over.IndentLeft),
		IndentRight:     merge.Ptr(p.IndentRight, over.IndentRight),
		IndentHanging:   merge.Ptr(p.IndentHanging, over.IndentHanging),
		IndentFirstLine: merge.Ptr(p.IndentFirstLine, over.IndentFirstLine),
		KeepNext:        merge.Ptr(p.KeepNext, over.KeepNext),
		KeepLines:       merge.Ptr(p.KeepLines, over.KeepLines),
		OutlineLevel:    merge.Ptr(p.OutlineLevel, over.OutlineLevel),
		Shading:         merge.String(p.Shading, over.Shading),
		Borders:         merge.Nested(p.Borders, over.Borders, Borders.Merge),
	}
}

// Bool and Int return pointers for literal property values.
func Bool(v bool) *bool { return &v }
func Int(v int) *int    { return &v }
