package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dgallion1/docxport/internal/doctree"
	"github.com/dgallion1/docxport/internal/exporter"
	"github.com/dgallion1/docxport/internal/parser"
)

// Input is one document to convert: either a tree supplied directly or raw
// file bytes imported by extension.
type Input struct {
	Filename string
	Data     []byte
	Tree     *doctree.Node
	Root     string // JSONPath of the tree inside a .json upload
	Config   exporter.Config
}

// ErrImport marks failures to read the input, as opposed to failures to
// export a valid tree.
var ErrImport = errors.New("import")

// Import returns the input's tree, parsing Data when no tree was given.
func Import(in Input, opts parser.Options) (*doctree.Node, error) {
	if in.Tree != nil {
		return in.Tree, nil
	}
	if in.Root != "" {
		opts.Root = in.Root
	}
	p, err := parser.ForFile(in.Filename, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImport, err)
	}
	tree, err := p.Parse(bytes.NewReader(in.Data), in.Filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImport, err)
	}
	return tree, nil
}

// Resolve layers the input's config over the defaults and falls back to the
// tree's title for document metadata.
func Resolve(defaults exporter.Config, in Input, tree *doctree.Node) exporter.Config {
	cfg := defaults.Overlay(in.Config)
	if cfg.Title == "" && tree != nil {
		cfg.Title = tree.String("title", "")
	}
	return cfg
}

// Convert imports and exports in one step.
func Convert(ctx context.Context, ex *exporter.Exporter, defaults exporter.Config, in Input, opts parser.Options) (*exporter.Document, error) {
	tree, err := Import(in, opts)
	if err != nil {
		return nil, err
	}
	return ex.Export(ctx, tree, Resolve(defaults, in, tree))
}
