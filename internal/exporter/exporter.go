// Package exporter converts a document tree into a .docx package.
//
// Node types map to block or inline transformers and mark types map to run
// property transformers. Unregistered node and mark types produce nothing.
// Each container's children are transformed concurrently and reassembled
// in document order.
package exporter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fumiama/go-docx"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/docxport/internal/codeblock"
	"github.com/dgallion1/docxport/internal/doctree"
	"github.com/dgallion1/docxport/internal/fetch"
	"github.com/dgallion1/docxport/internal/highlight"
	"github.com/dgallion1/docxport/internal/imaging"
	"github.com/dgallion1/docxport/internal/layout"
	"github.com/dgallion1/docxport/internal/lists"
	"github.com/dgallion1/docxport/internal/ooxml"
	"github.com/dgallion1/docxport/internal/styles"
)

// Block is a body-level element: *docx.Paragraph or *Table.
type Block = any

// Inline is a paragraph child: *docx.Run, *docx.Hyperlink or a field.
type Inline = any

type (
	BlockTransformer  func(ctx context.Context, n *doctree.Node, s *Scope) ([]Block, error)
	InlineTransformer func(ctx context.Context, n *doctree.Node, s *Scope) ([]Inline, error)
	MarkTransformer   func(m doctree.Mark, rp *docx.RunProperties, s *Scope)
)

// DefaultConcurrency bounds the fan-out at each container.
const DefaultConcurrency = 8

// Exporter holds the transformer tables and collaborators. It is safe for
// concurrent use; each Export call has its own state.
type Exporter struct {
	log         *slog.Logger
	fetcher     imaging.Fetcher
	tokenizer   highlight.Tokenizer
	instanceIDs func() lists.Generator
	concurrency int
	now         func() time.Time

	blocks  map[string]BlockTransformer
	inlines map[string]InlineTransformer
	marks   map[string]MarkTransformer
}

type Option func(*Exporter)

func WithLogger(log *slog.Logger) Option {
	return func(e *Exporter) { e.log = log }
}

// WithFetcher sets the byte source for http(s) images.
func WithFetcher(f imaging.Fetcher) Option {
	return func(e *Exporter) { e.fetcher = f }
}

// WithTokenizer replaces the tree-sitter highlighter. A nil tokenizer
// renders code blocks in a single color.
func WithTokenizer(t highlight.Tokenizer) Option {
	return func(e *Exporter) { e.tokenizer = t }
}

// WithInstanceIDs sets the numbering instance generator factory, called
// once per export.
func WithInstanceIDs(fn func() lists.Generator) Option {
	return func(e *Exporter) { e.instanceIDs = fn }
}

func WithConcurrency(n int) Option {
	return func(e *Exporter) { e.concurrency = n }
}

// WithClock sets the creation timestamp source for documents whose config
// has none. A nil clock leaves timestamps out.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// WithBlock registers or, with a nil fn, removes a block transformer.
func WithBlock(nodeType string, fn BlockTransformer) Option {
	return func(e *Exporter) { setOrDelete(e.blocks, nodeType, fn) }
}

func WithInline(nodeType string, fn InlineTransformer) Option {
	return func(e *Exporter) { setOrDelete(e.inlines, nodeType, fn) }
}

func WithMark(markType string, fn MarkTransformer) Option {
	return func(e *Exporter) { setOrDelete(e.marks, markType, fn) }
}

func setOrDelete[T any](m map[string]T, key string, fn T) {
	if any(fn) == nil || isNilFunc(fn) {
		delete(m, key)
		return
	}
	m[key] = fn
}

func isNilFunc(fn any) bool {
	switch f := fn.(type) {
	case BlockTransformer:
		return f == nil
	case InlineTransformer:
		return f == nil
	case MarkTransformer:
		return f == nil
	}
	return false
}

func New(opts ...Option) *Exporter {
	e := &Exporter{
		log:         slog.New(slog.DiscardHandler),
		fetcher:     fetch.NewClient(),
		tokenizer:   highlight.NewTreeSitter(),
		instanceIDs: lists.Counter,
		concurrency: DefaultConcurrency,
		blocks:      defaultBlocks(),
		inlines:     defaultInlines(),
		marks:       defaultMarks(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.concurrency < 1 {
		e.concurrency = 1
	}
	return e
}

// export is the state of one Export call. Everything except the builder
// is read-only once the walk starts.
type export struct {
	e         *Exporter
	cfg       Config
	geometry  layout.Geometry
	styles    *styles.Registry
	plan      *lists.Plan
	numbering *ooxml.NumberingPlan
	code      *codeblock.Renderer
	b         *builder
}

// Export converts tree into a .docx package.
func (e *Exporter) Export(ctx context.Context, tree *doctree.Node, cfg Config) (*Document, error) {
	if tree == nil {
		return nil, errors.New("export: empty document")
	}
	geometry, err := cfg.Page.Resolve()
	if err != nil {
		return nil, fmt.Errorf("page: %w", err)
	}

	// Header and footer lists share the instance sequence with the body.
	all := doctree.New("doc", nil, tree)
	all.Content = append(all.Content, cfg.Header...)
	all.Content = append(all.Content, cfg.Footer...)
	plan := lists.Assign(all, e.instanceIDs())

	numbering := styles.NewNumberingRegistry(cfg.Numbering, cfg.useDefaultNumbering())
	reg := styles.NewRegistry(cfg.Styles, cfg.useDefaultStyles())
	code := &codeblock.Renderer{Tokenizer: e.tokenizer, Theme: cfg.CodeTheme, Log: e.log}
	if reg.Has(styles.CodeBlock) {
		code.Style = styles.CodeBlock
	}

	f := docx.New().WithDefaultTheme()
	x := &export{
		e:         e,
		cfg:       cfg,
		geometry:  geometry,
		styles:    reg,
		plan:      plan,
		numbering: ooxml.PlanNumbering(numbering, plan.Instances()),
		code:      code,
		b:         newBuilder(f),
	}

	start := time.Now()
	body, err := x.scope(RegionBody).Blocks(ctx, []*doctree.Node{tree})
	if err != nil {
		return nil, err
	}
	header, err := x.scope(RegionHeader).Blocks(ctx, cfg.Header)
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	footer, err := x.scope(RegionFooter).Blocks(ctx, cfg.Footer)
	if err != nil {
		return nil, fmt.Errorf("footer: %w", err)
	}

	items := make([]interface{}, 0, len(body)+1)
	items = append(items, body...)
	items = append(items, ooxml.Section(geometry, len(cfg.Header) > 0, len(cfg.Footer) > 0))
	f.Document.Body.Items = items

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write package: %w", err)
	}

	parts, err := x.parts(header, footer)
	if err != nil {
		return nil, err
	}
	pkg, err := ooxml.Finalize(buf.Bytes(), parts)
	if err != nil {
		return nil, fmt.Errorf("assemble package: %w", err)
	}

	e.log.Debug("document exported",
		"blocks", len(body),
		"bytes", len(pkg),
		"numbering_instances", len(plan.Instances()),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &Document{data: pkg}, nil
}

func (x *export) parts(header, footer []Block) (ooxml.Parts, error) {
	var (
		p   ooxml.Parts
		err error
	)
	if p.Styles, err = ooxml.StylesXML(x.styles); err != nil {
		return p, fmt.Errorf("styles: %w", err)
	}
	if !x.numbering.Empty() {
		if p.Numbering, err = x.numbering.XML(); err != nil {
			return p, fmt.Errorf("numbering: %w", err)
		}
	}
	if len(x.cfg.Header) > 0 {
		if p.Header, err = ooxml.HeaderXML(header); err != nil {
			return p, fmt.Errorf("header: %w", err)
		}
	}
	if len(x.cfg.Footer) > 0 {
		if p.Footer, err = ooxml.FooterXML(footer); err != nil {
			return p, fmt.Errorf("footer: %w", err)
		}
	}

	meta := ooxml.Meta{
		Title:       x.cfg.Title,
		Creator:     x.cfg.Creator,
		Description: x.cfg.Description,
		Created:     x.cfg.Created,
	}
	if meta.Created.IsZero() && x.e.now != nil {
		meta.Created = x.e.now()
	}
	meta.Modified = meta.Created
	if p.Core, err = ooxml.CoreXML(meta); err != nil {
		return p, fmt.Errorf("core properties: %w", err)
	}
	p.SVG = x.b.svgPairs()
	return p, nil
}

// fanOut runs fn over items with at most limit in flight and returns the
// results in input order. The first error cancels the rest.
func fanOut[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) ([]R, error)) ([]R, error) {
	results := make([][]R, len(items))
	if limit <= 1 || len(items) <= 1 {
		for i, it := range items {
			r, err := fn(ctx, it)
			if err != nil {
				return nil, err
			}
			results[i] = r
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)
		for i, it := range items {
			g.Go(func() error {
				r, err := fn(gctx, it)
				if err != nil {
					return err
				}
				results[i] = r
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	n := 0
	for _, r := range results {
		n += len(r)
	}
	out := make([]R, 0, n)
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}
