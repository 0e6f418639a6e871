// Package imaging identifies image payloads, measures them and fits them to
// the page.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fumiama/imgsz"
	"golang.org/x/image/bmp"
	"golang.org/x/net/html"

	"github.com/dgallion1/docxport/internal/units"
)

type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	SVG  Format = "svg"
)

// ErrUnsupportedFormat is returned for payloads that match no known signature.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// svgSniffWindow is how far into the payload the "<svg" marker may appear.
const svgSniffWindow = 200

// Default SVG viewport when neither width/height nor viewBox are usable.
const (
	defaultSVGWidth  = 300
	defaultSVGHeight = 150
)

func init() {
	// go-docx measures drawings through imgsz, which lacks these two.
	imgsz.RegisterFormat(string(BMP), "BM", func(r io.Reader) (imgsz.Size, error) {
		cfg, err := bmp.DecodeConfig(r)
		if err != nil {
			return imgsz.Size{}, err
		}
		return imgsz.Size{Width: cfg.Width, Height: cfg.Height}, nil
	})
	imgsz.RegisterFormat(string(SVG), "<svg", func(r io.Reader) (imgsz.Size, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return imgsz.Size{}, err
		}
		w, h := svgSize(data)
		return imgsz.Size{Width: w, Height: h}, nil
	})
}

// Sniff identifies the format from magic bytes.
func Sniff(data []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0x89, 0x50, 0x4E, 0x47}):
		return PNG, nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return JPEG, nil
	case bytes.HasPrefix(data, []byte("GIF")):
		return GIF, nil
	case bytes.HasPrefix(data, []byte("BM")):
		return BMP, nil
	}
	head := data[:min(len(data), svgSniffWindow)]
	if bytes.Contains(head, []byte("<svg")) {
		return SVG, nil
	}
	return "", ErrUnsupportedFormat
}

// Info describes a probed image in pixels.
type Info struct {
	Format Format
	Width  int
	Height int
}

// Probe sniffs the format and decodes the natural dimensions.
func Probe(data []byte) (Info, error) {
	f, err := Sniff(data)
	if err != nil {
		return Info{}, err
	}

	info := Info{Format: f}
	if f == SVG {
		info.Width, info.Height = svgSize(data)
		return info, nil
	}

	sz, _, err := imgsz.DecodeSize(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("decode %s dimensions: %w", f, err)
	}
	if sz.Width <= 0 || sz.Height <= 0 {
		return Info{}, fmt.Errorf("%s image has no dimensions", f)
	}
	info.Width, info.Height = sz.Width, sz.Height
	return info, nil
}

// TrimSVG drops anything before the root element (XML prolog, comments,
// doctype) so the payload starts with "<svg".
func TrimSVG(data []byte) []byte {
	if i := bytes.Index(data, []byte("<svg")); i > 0 {
		return data[i:]
	}
	return data
}

// svgSize reads width/height from the root element, falling back to the
// viewBox and then the browser default viewport.
func svgSize(data []byte) (int, int) {
	z := html.NewTokenizer(bytes.NewReader(data))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return defaultSVGWidth, defaultSVGHeight
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "svg" {
				continue
			}
			var width, height string
			var viewBox []float64
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				switch string(key) {
				case "width":
					width = string(val)
				case "height":
					height = string(val)
				case "viewbox":
					viewBox = parseViewBox(string(val))
				}
			}
			return resolveSVGSize(width, height, viewBox)
		}
	}
}

func resolveSVGSize(width, height string, viewBox []float64) (int, int) {
	w, wok := svgLength(width)
	h, hok := svgLength(height)

	var vw, vh float64
	if len(viewBox) == 4 && viewBox[2] > 0 && viewBox[3] > 0 {
		vw, vh = viewBox[2], viewBox[3]
	}

	switch {
	case wok && hok:
	case wok && vw > 0:
		h = int(float64(w) * vh / vw)
	case hok && vw > 0:
		w = int(float64(h) * vw / vh)
	case vw > 0:
		w, h = int(vw), int(vh)
	default:
		if !wok {
			w = defaultSVGWidth
		}
		if !hok {
			h = defaultSVGHeight
		}
	}
	return max(w, 1), max(h, 1)
}

// svgLength converts an SVG length to pixels. Percentages are not resolvable
// without a viewport and report false.
func svgLength(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, "%") {
		return 0, false
	}
	if f, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64); err == nil {
		if f <= 0 {
			return 0, false
		}
		return int(f + 0.5), true
	}
	tw, err := units.Parse(s)
	if err != nil || tw <= 0 {
		return 0, false
	}
	return units.TwipToPixel(tw), true
}

func parseViewBox(s string) []float64 {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' || r == '\n' })
	if len(fields) != 4 {
		return nil
	}
	out := make([]float64, 4)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil
		}
		out[i] = v
	}
	return out
}
