package exporter

import (
	"context"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/docxport/internal/doctree"
	"github.com/dgallion1/docxport/internal/embed"
	"github.com/dgallion1/docxport/internal/imaging"
	"github.com/dgallion1/docxport/internal/lists"
	"github.com/dgallion1/docxport/internal/ooxml"
	"github.com/dgallion1/docxport/internal/styles"
	"github.com/dgallion1/docxport/internal/units"
)

// listIndent is the per-level indentation used when a list has no
// numbering definition, and for task lists.
const listIndent = 720

const (
	taskOpen = "☐ "
	taskDone = "☒ "
)

func defaultBlocks() map[string]BlockTransformer {
	return map[string]BlockTransformer{
		"doc":            containerBlock,
		"paragraph":      paragraphBlock,
		"heading":        headingBlock,
		"blockquote":     blockquoteBlock,
		"codeBlock":      codeBlockBlock,
		"bulletList":     listBlock,
		"orderedList":    listBlock,
		"taskList":       listBlock,
		"listItem":       listItemBlock,
		"taskItem":       listItemBlock,
		"table":          tableBlock,
		"image":          imageBlock,
		"horizontalRule": horizontalRuleBlock,
		"pageBreak":      pageBreakBlock,
		"youtube":        embedBlock,
		"video":          embedBlock,
		"iframe":         embedBlock,
		"details":        containerBlock,
		"detailsContent": containerBlock,
		"detailsSummary": detailsSummaryBlock,
	}
}

func containerBlock(ctx context.Context, n *doctree.Node, s *Scope) ([]Block, error) {
	return s.Blocks(ctx, n.Content)
}

func paragraphBlock(ctx context.Context, n *doctree.Node, s *Scope) ([]Block, error) {
	p, err := s.paragraph(ctx, n, "")
	if err != nil {
		return nil, err
	}
	return []Block{p}, nil
}

func headingBlock(ctx context.Context, n *doctree.Node, s *Scope) ([]Block, error) {
	p, err := s.paragraph(ctx, n, styles.HeadingID(n.Int("level", 1)))
	if err != nil {
		return nil, err
	}
	return []Block{p}, nil
}

// blockquoteBlock emits the quoted blocks, giving the Quote style to every
// paragraph that has no style of its own.
func blockquoteBlock(ctx context.Context, n *doctree.Node, s *Scope) ([]Block, error) {
	blocks, err := s.Blocks(ctx, n.Content)
	if err != nil {
		return nil, err
	}
	quote := s.style(styles.Quote)
	if quote == "" {
		return blocks, nil
	}
	for _, b := range blocks {
		p, ok := b.(*docx.Paragraph)
		if !ok {
			continue
		}
		if pp := props(p); pp.Style == nil {
			pp.Style = &docx.Style{Val: quote}
		}
	}
	return blocks, nil
}

func codeBlockBlock(ctx context.Context, n *doctree.Node, s *Scope) ([]Block, error) {
	paras := s.x.code.Render(ctx, doctree.PlainText(n), n.String("language", ""))
	out := make([]Block, len(paras))
	for i, p := range paras {
		out[i] = p
	}
	return out, nil
}

func listBlock(ctx context.Context, n *doctree.Node, s *Scope) ([]Block, error) {
	info, ok := s.x.plan.Lookup(n)
	if !ok {
		return s.Blocks(ctx, n.Content)
	}
	return s.withList(info).Blocks(ctx, n.Content)
}

// listItemBlock numbers the item's direct paragraphs. Nested lists recurse
// through their own transformer with the next level.
func listItemBlock(ctx context.Context, n *doctree.Node, s *Scope) ([]Block, error) {
	info, ok := s.List()
	if !ok {
		return s.Blocks(ctx, n.Content)
	}

	var first *doctree.Node
	for _, c := range n.Content {
		if c.Type == "paragraph" {
			first = c
			break
		}
	}
	checked := n.Bool("checked", false)

	return fanOut(ctx, s.x.e.concurrency, n.Content, func(ctx context.Context, c *doctree.Node) ([]Block, error) {
		blocks, err := s.Blocks(ctx, []*doctree.Node{c})
		if err != nil || c.Type != "paragraph" {
			return blocks, err
		}
		for _, b := range blocks {
			p, ok := b.(*docx.Paragraph)
			if !ok {
				continue
			}
			s.numberParagraph(p, info)
			if info.Task && c == first {
				glyph := taskOpen
				if checked {
					glyph = taskDone
				}
				p.Children = append([]interface{}{textRun(glyph, nil)}, p.Children...)
			}
		}
		return blocks, nil
	})
}

func (s *Scope) numberParagraph(p *docx.Paragraph, info lists.Info) {
	pp := props(p)
	if style := s.style(styles.ListParagraph); style != "" && pp.Style == nil {
		pp.Style = &docx.Style{Val: style}
	}
	if info.Task {
		pp.Ind = &docx.Ind{Left: listIndent * (info.Level + 1)}
		return
	}
	id, ok := s.x.numbering.NumID(info.Reference, info.Instance)
	if !ok {
		pp.Ind = &docx.Ind{Left: listIndent * (info.Level + 1)}
		return
	}
	pp.NumProperties = &docx.NumProperties{
		NumID: &docx.NumID{Val: strconv.Itoa(id)},
		Ilvl:  &docx.Ilevel{Val: strconv.Itoa(info.Level)},
	}
}

func imageBlock(ctx context.Context, n *doctree.Node, s *Scope) ([]Block, error) {
	run, err := s.picture(ctx, n)
	if err != nil || run == nil {
		return nil, err
	}
	p := &docx.Paragraph{Children: []interface{}{run}}
	if jc := ooxml.Justification(n.String("align", "")); jc != "" {
		props(p).Justification = &docx.Justification{Val: jc}
	}
	out := []Block{p}

	if title := n.String("title", ""); title != "" {
		caption := &docx.Paragraph{Children: []interface{}{textRun(title, nil)}}
		if style := s.style(styles.Caption); style != "" {
			props(caption).Style = &docx.Style{Val: style}
		}
		out = append(out, caption)
	}
	return out, nil
}

// picture loads, probes and sizes an image node into a drawing run. SVG
// sources get a PNG fallback with the vector paired to it. Images outside
// the body are skipped.
func (s *Scope) picture(ctx context.Context, n *doctree.Node) (*docx.Run, error) {
	src := n.String("src", "")
	if s.region != RegionBody {
		s.log().Debug("image skipped", "src", srcLabel(src))
		return nil, nil
	}

	data, err := imaging.Load(ctx, src, s.x.e.fetcher)
	if err != nil {
		return nil, fmt.Errorf("image %q: %w", srcLabel(src), err)
	}
	info, err := imaging.Probe(data)
	if err != nil {
		return nil, fmt.Errorf("image %q: %w", srcLabel(src), err)
	}

	avail := max(units.TwipToPixel(s.width), 1)
	pct, px := imaging.WidthHint(n.Attr("width"))
	if px > 0 && info.Width > 0 {
		info.Height = max(px*info.Height/info.Width, 1)
		info.Width = px
	}
	box := imaging.Fit(info, avail, pct)

	var run *docx.Run
	if info.Format == imaging.SVG {
		run, err = s.svgPicture(data, box)
	} else {
		run, err = s.x.b.Picture(data)
	}
	if err != nil {
		return nil, fmt.Errorf("image %q: %w", srcLabel(src), err)
	}

	in := inline(run)
	if in != nil {
		in.Size(box.EMU())
		if alt := n.String("alt", ""); alt != "" && in.DocPr != nil {
			in.DocPr.Name = alt
		}
	}
	return run, nil
}

func (s *Scope) svgPicture(svg []byte, box imaging.Box) (*docx.Run, error) {
	fallback, err := imaging.RasterFallback(svg, box)
	if err != nil {
		return nil, fmt.Errorf("svg fallback: %w", err)
	}
	raster, err := s.x.b.Picture(fallback)
	if err != nil {
		return nil, err
	}
	vector, err := s.x.b.Picture(imaging.TrimSVG(svg))
	if err != nil {
		return nil, err
	}
	s.x.b.PairSVG(blipID(raster), blipID(vector))
	return raster, nil
}

func horizontalRuleBlock(_ context.Context, _ *doctree.Node, s *Scope) ([]Block, error) {
	p := &docx.Paragraph{}
	if style := s.style(styles.HorizontalRule); style != "" {
		props(p).Style = &docx.Style{Val: style}
	}
	return []Block{p}, nil
}

func pageBreakBlock(context.Context, *doctree.Node, *Scope) ([]Block, error) {
	run := &docx.Run{Children: []interface{}{&docx.BarterRabbet{Type: "page"}}}
	return []Block{&docx.Paragraph{Children: []interface{}{run}}}, nil
}

func embedBlock(_ context.Context, n *doctree.Node, s *Scope) ([]Block, error) {
	src := n.String("src", "")
	if s.region != RegionBody {
		s.log().Debug("embed skipped", "src", src)
		return nil, nil
	}
	return []Block{embed.Render(src, s.width, s.style(styles.Hyperlink), s.x.b)}, nil
}

func detailsSummaryBlock(ctx context.Context, n *doctree.Node, s *Scope) ([]Block, error) {
	p, err := s.withStrong().paragraph(ctx, n, "")
	if err != nil {
		return nil, err
	}
	return []Block{p}, nil
}

// paragraph builds a paragraph from n's inline content with an optional
// style and the node's textAlign.
func (s *Scope) paragraph(ctx context.Context, n *doctree.Node, style string) (*docx.Paragraph, error) {
	children, err := s.Inlines(ctx, n.Content)
	if err != nil {
		return nil, err
	}
	p := &docx.Paragraph{Children: children}
	if style = s.style(style); style != "" {
		props(p).Style = &docx.Style{Val: style}
	}
	if jc := ooxml.Justification(n.String("textAlign", "")); jc != "" {
		props(p).Justification = &docx.Justification{Val: jc}
	}
	return p, nil
}

// style returns id when the registry defines it, "" otherwise.
func (s *Scope) style(id string) string {
	if id == "" || !s.x.styles.Has(id) {
		return ""
	}
	return id
}

func props(p *docx.Paragraph) *docx.ParagraphProperties {
	if p.Properties == nil {
		p.Properties = &docx.ParagraphProperties{}
	}
	return p.Properties
}

// srcLabel shortens src for logs and errors, cutting on a rune boundary.
func srcLabel(src string) string {
	const limit = 64
	if len(src) <= limit {
		return src
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(src[cut]) {
		cut--
	}
	return src[:cut] + "..."
}
