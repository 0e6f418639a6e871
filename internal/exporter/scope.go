package exporter

import (
	"context"
	"log/slog"

	"github.com/dgallion1/docxport/internal/doctree"
	"github.com/dgallion1/docxport/internal/lists"
)

// Region is the document part a transformer is writing into.
type Region int

const (
	RegionBody Region = iota
	RegionHeader
	RegionFooter
)

func (r Region) String() string {
	switch r {
	case RegionHeader:
		return "header"
	case RegionFooter:
		return "footer"
	default:
		return "body"
	}
}

// Scope is the context handed to transformers: the available width, the
// enclosing list and the part being written. Scopes are values; With*
// methods return modified copies.
type Scope struct {
	x      *export
	width  int
	region Region
	list   *lists.Info
	strong bool
}

func (x *export) scope(r Region) *Scope {
	return &Scope{x: x, width: x.geometry.ContentWidth(), region: r}
}

// Width is the available content width in twips.
func (s *Scope) Width() int { return s.width }

func (s *Scope) Region() Region { return s.region }

// List returns the innermost enclosing list, if any.
func (s *Scope) List() (lists.Info, bool) {
	if s.list == nil {
		return lists.Info{}, false
	}
	return *s.list, true
}

// Strong reports whether runs in this scope are forced bold (table headers,
// details summaries).
func (s *Scope) Strong() bool { return s.strong }

func (s *Scope) withWidth(w int) *Scope {
	c := *s
	c.width = max(w, 1)
	return &c
}

func (s *Scope) withList(info lists.Info) *Scope {
	c := *s
	c.list = &info
	return &c
}

func (s *Scope) withStrong() *Scope {
	c := *s
	c.strong = true
	return &c
}

// Blocks transforms nodes concurrently and returns their blocks in order.
// Node types without a block transformer produce nothing.
func (s *Scope) Blocks(ctx context.Context, nodes []*doctree.Node) ([]Block, error) {
	return fanOut(ctx, s.x.e.concurrency, nodes, func(ctx context.Context, n *doctree.Node) ([]Block, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fn, ok := s.x.e.blocks[n.Type]
		if !ok {
			return nil, nil
		}
		return fn(ctx, n, s)
	})
}

// Inlines transforms the inline children of a block node in order.
func (s *Scope) Inlines(ctx context.Context, nodes []*doctree.Node) ([]Inline, error) {
	return fanOut(ctx, s.x.e.concurrency, nodes, func(ctx context.Context, n *doctree.Node) ([]Inline, error) {
		fn, ok := s.x.e.inlines[n.Type]
		if !ok {
			return nil, nil
		}
		return fn(ctx, n, s)
	})
}

func (s *Scope) log() *slog.Logger {
	return s.x.e.log.With("region", s.region.String())
}
