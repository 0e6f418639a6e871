package imaging

import (
	"math"
	"strconv"
	"strings"

	"github.com/dgallion1/docxport/internal/units"
)

// Box is a render size in pixels.
type Box struct {
	Width  int
	Height int
}

// EMU returns the box in English Metric Units.
func (b Box) EMU() (int64, int64) {
	return units.PixelsToEMU(b.Width), units.PixelsToEMU(b.Height)
}

// Fit computes the render box for an image inside availPx. A positive pct
// sizes the image relative to the available width (capped at 100%);
// otherwise the natural width is used, shrunk to fit. The natural aspect
// ratio is always preserved.
func Fit(info Info, availPx int, pct float64) Box {
	if info.Width <= 0 || info.Height <= 0 || availPx <= 0 {
		return Box{}
	}

	var w int
	if pct > 0 {
		w = int(math.Round(float64(availPx) * min(pct, 100) / 100))
	} else {
		w = min(availPx, info.Width)
	}
	w = max(w, 1)
	h := int(math.Round(float64(w) * float64(info.Height) / float64(info.Width)))
	return Box{Width: w, Height: max(h, 1)}
}

// WidthHint interprets an image node's width attribute. "50%" is a
// percentage; a bare or "px" number is an explicit pixel width.
func WidthHint(v any) (pct float64, px int) {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		if strings.HasSuffix(s, "%") {
			f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
			if err == nil && f > 0 {
				return f, 0
			}
			return 0, 0
		}
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64)
		if err == nil && f > 0 {
			return 0, int(math.Round(f))
		}
	case int64:
		if x > 0 {
			return 0, int(x)
		}
	case int:
		if x > 0 {
			return 0, x
		}
	case float64:
		if x > 0 {
			return 0, int(math.Round(x))
		}
	}
	return 0, 0
}
