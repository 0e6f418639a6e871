package exporter

import (
	"fmt"
	"sync"

	"github.com/fumiama/go-docx"
)

// builder guards the parts of the document writer that allocate package
// state (relationship ids, media names, drawing ids). Transformers running
// concurrently go through it; the runs and links it hands back are detached
// from the scratch paragraph and placed by the caller.
type builder struct {
	mu       sync.Mutex
	f        *docx.Docx
	scratch  *docx.Paragraph
	pictures int
	svg      map[string]string
}

func newBuilder(f *docx.Docx) *builder {
	return &builder{f: f, scratch: f.AddParagraph(), svg: map[string]string{}}
}

// LinkID registers an external hyperlink and returns its relationship id.
func (b *builder) LinkID(url string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.scratch.AddLink(url, url).ID
	b.scratch.Children = b.scratch.Children[:0]
	return id
}

// Shape returns a run holding an inline rectangle shape.
func (b *builder) Shape(w, h int64, name string, line *docx.ALine) *docx.Run {
	b.mu.Lock()
	defer b.mu.Unlock()
	run := b.scratch.AddInlineShape(w, h, name, "auto", "rect", line)
	b.scratch.Children = b.scratch.Children[:0]
	return run
}

// Picture adds image media and returns a run with its inline drawing.
func (b *builder) Picture(data []byte) (*docx.Run, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	run, err := b.scratch.AddInlineDrawing(data)
	b.scratch.Children = b.scratch.Children[:0]
	if err != nil {
		return nil, err
	}
	b.pictures++
	name := fmt.Sprintf("Picture %d", b.pictures)
	if in := inline(run); in != nil {
		in.DocPr.Name = name
		if pic := in.Graphic.GraphicData.Pic; pic != nil {
			pic.NonVisualPicProperties.NonVisualDrawingProperties.Name = name
		}
	}
	return run, nil
}

// PairSVG records that the picture with relationship id raster is the
// fallback for the SVG media with id svg.
func (b *builder) PairSVG(raster, svg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.svg[raster] = svg
}

func (b *builder) svgPairs() map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]string, len(b.svg))
	for k, v := range b.svg {
		out[k] = v
	}
	return out
}

func inline(run *docx.Run) *docx.WPInline {
	if run == nil || len(run.Children) == 0 {
		return nil
	}
	d, ok := run.Children[0].(*docx.Drawing)
	if !ok {
		return nil
	}
	return d.Inline
}

// blipID returns the relationship id of a picture run's image.
func blipID(run *docx.Run) string {
	in := inline(run)
	if in == nil || in.Graphic == nil || in.Graphic.GraphicData == nil || in.Graphic.GraphicData.Pic == nil {
		return ""
	}
	return in.Graphic.GraphicData.Pic.BlipFill.Blip.Embed
}
