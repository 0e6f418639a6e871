package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
)

// maxRasterEdge bounds the fallback bitmap so huge SVG viewports stay cheap.
const maxRasterEdge = 2048

// RasterFallback renders an SVG into a PNG of the given box for consumers
// that cannot display SVG. When the SVG cannot be parsed, a neutral
// placeholder of the same size is produced instead.
func RasterFallback(svg []byte, box Box) ([]byte, error) {
	box = clampBox(box)
	img, err := rasterizeSVG(svg, box)
	if err != nil {
		return Placeholder(box)
	}
	return encodePNG(img)
}

func rasterizeSVG(svg []byte, box Box) (img *image.RGBA, err error) {
	// oksvg panics on some malformed path data.
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("rasterize svg: %v", r)
		}
	}()

	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("read svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(box.Width), float64(box.Height))

	img = image.NewRGBA(image.Rect(0, 0, box.Width, box.Height))
	scanner := rasterx.NewScannerGV(box.Width, box.Height, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(box.Width, box.Height, scanner), 1.0)
	return img, nil
}

// Placeholder draws a light framed rectangle with a diagonal cross.
func Placeholder(box Box) ([]byte, error) {
	box = clampBox(box)
	w, h := float64(box.Width), float64(box.Height)

	// One canvas unit per pixel at 1 dot per millimetre.
	c := canvas.New(w, h)
	ctx := canvas.NewContext(c)
	ctx.SetFillColor(canvas.Hex("#F2F2F2"))
	ctx.SetStrokeColor(canvas.Hex("#BFBFBF"))
	ctx.SetStrokeWidth(2)
	ctx.DrawPath(0, 0, canvas.Rectangle(w, h))

	cross := &canvas.Path{}
	cross.MoveTo(0, 0)
	cross.LineTo(w, h)
	cross.MoveTo(0, h)
	cross.LineTo(w, 0)
	ctx.SetFillColor(color.RGBA{})
	ctx.SetStrokeWidth(1)
	ctx.DrawPath(0, 0, cross)

	img := rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace)
	return encodePNG(img)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func clampBox(b Box) Box {
	b.Width, b.Height = max(b.Width, 1), max(b.Height, 1)
	if edge := max(b.Width, b.Height); edge > maxRasterEdge {
		b.Width = max(b.Width*maxRasterEdge/edge, 1)
		b.Height = max(b.Height*maxRasterEdge/edge, 1)
	}
	return b
}
