package parser

import (
	"io"

	"github.com/dgallion1/docxport/internal/doctree"
)

// JSONParser reads a serialized document tree. Root, when set, is a
// JSONPath selecting the tree inside a larger payload.
type JSONParser struct {
	Root string
}

func (p *JSONParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	tree, err := doctree.Select(data, p.Root)
	if err != nil {
		return nil, err
	}

	if tree.String("title", "") == "" {
		if tree.Attrs == nil {
			tree.Attrs = map[string]any{}
		}
		tree.Attrs["title"] = Title(filename)
	}
	return tree, nil
}
