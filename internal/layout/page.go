// Package layout computes page geometry and table column widths.
package layout

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docxport/internal/units"
)

// Margins in twips.
type Margins struct {
	Top    units.Length `json:"top"`
	Right  units.Length `json:"right"`
	Bottom units.Length `json:"bottom"`
	Left   units.Length `json:"left"`
	Header units.Length `json:"header"`
	Footer units.Length `json:"footer"`
	Gutter units.Length `json:"gutter"`
}

// Page describes the section geometry. Size names a preset; explicit
// Width/Height win over it.
type Page struct {
	Size        string       `json:"size,omitempty"`
	Orientation string       `json:"orientation,omitempty"` // portrait or landscape
	Width       units.Length `json:"width,omitempty"`
	Height      units.Length `json:"height,omitempty"`
	Margins     *Margins     `json:"margins,omitempty"`
}

var presets = map[string][2]int{
	"a3":     {16838, 23811},
	"a4":     {11906, 16838},
	"a5":     {8391, 11906},
	"letter": {12240, 15840},
	"legal":  {12240, 20160},
}

// DefaultMargins is one inch on every side with half-inch header and footer
// distances.
func DefaultMargins() Margins {
	return Margins{Top: 1440, Right: 1440, Bottom: 1440, Left: 1440, Header: 708, Footer: 708}
}

// Geometry is a fully resolved page.
type Geometry struct {
	Width, Height int
	Landscape     bool
	Margins       Margins
}

// Resolve fills in defaults (A4, portrait, one inch margins) and checks the
// content area is positive.
func (p Page) Resolve() (Geometry, error) {
	g := Geometry{Width: int(p.Width), Height: int(p.Height)}

	size := strings.ToLower(p.Size)
	if size == "" {
		size = "a4"
	}
	if g.Width == 0 || g.Height == 0 {
		dims, ok := presets[size]
		if !ok {
			return Geometry{}, fmt.Errorf("unknown page size %q", p.Size)
		}
		if g.Width == 0 {
			g.Width = dims[0]
		}
		if g.Height == 0 {
			g.Height = dims[1]
		}
	}

	switch strings.ToLower(p.Orientation) {
	case "", "portrait":
	case "landscape":
		g.Landscape = true
		if g.Width < g.Height {
			g.Width, g.Height = g.Height, g.Width
		}
	default:
		return Geometry{}, fmt.Errorf("unknown orientation %q", p.Orientation)
	}

	g.Margins = DefaultMargins()
	if p.Margins != nil {
		g.Margins = *p.Margins
	}

	if g.ContentWidth() <= 0 {
		return Geometry{}, fmt.Errorf("margins (%d + %d) leave no room on a %d twip page",
			g.Margins.Left, g.Margins.Right, g.Width)
	}
	return g, nil
}

// ContentWidth is the page width less the left and right margins, in twips.
func (g Geometry) ContentWidth() int {
	return g.Width - int(g.Margins.Left) - int(g.Margins.Right) - int(g.Margins.Gutter)
}

// ContentWidthPixels is ContentWidth at 96 dpi.
func (g Geometry) ContentWidthPixels() int {
	return units.TwipToPixel(g.ContentWidth())
}
