package doctree

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// Parse decodes a JSON document tree.
func Parse(data []byte) (*Node, error) {
	return Select(data, "")
}

// Select decodes JSON and returns the tree found at a JSONPath expression,
// for payloads that wrap the document (for example "$.document"). An empty
// path selects the root value.
func Select(data []byte, path string) (*Node, error) {
	v, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse tree json: %w", err)
	}
	if path != "" && path != "$" {
		x, err := jp.ParseString(path)
		if err != nil {
			return nil, fmt.Errorf("parse path %q: %w", path, err)
		}
		found := x.Get(v)
		if len(found) == 0 {
			return nil, fmt.Errorf("path %q matched nothing", path)
		}
		v = found[0]
	}
	return FromValue(v)
}

// FromValue converts a generic JSON value (maps, slices, scalars) into a tree.
func FromValue(v any) (*Node, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("node must be an object, got %T", v)
	}

	n := &Node{}
	n.Type, _ = obj["type"].(string)
	if n.Type == "" {
		return nil, fmt.Errorf("node is missing a type")
	}
	n.Text, _ = obj["text"].(string)

	if attrs, ok := obj["attrs"].(map[string]any); ok {
		n.Attrs = attrs
	}

	if raw, ok := obj["marks"].([]any); ok {
		for i, rm := range raw {
			mo, ok := rm.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s mark %d: must be an object", n.Type, i)
			}
			m := Mark{}
			m.Type, _ = mo["type"].(string)
			if m.Type == "" {
				return nil, fmt.Errorf("%s mark %d: missing type", n.Type, i)
			}
			if attrs, ok := mo["attrs"].(map[string]any); ok {
				m.Attrs = attrs
			}
			n.Marks = append(n.Marks, m)
		}
	}

	if raw, ok := obj["content"].([]any); ok {
		n.Content = make([]*Node, 0, len(raw))
		for i, rc := range raw {
			child, err := FromValue(rc)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", n.Type, i, err)
			}
			n.Content = append(n.Content, child)
		}
	}
	return n, nil
}

// UnmarshalJSON lets trees embedded in larger JSON payloads decode through
// the same path as Parse.
func (n *Node) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*n = *parsed
	return nil
}
