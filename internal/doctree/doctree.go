// Package doctree defines the rich-text document tree consumed by the exporter.
//
// A tree is built from nodes that either carry text (leaf "text" nodes) or
// child content (containers). Marks decorate text leaves. Trees are treated
// as read-only once built.
package doctree

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Node is one element of the document tree.
type Node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
	Content []*Node        `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
}

// Mark is an inline decoration on a text leaf (bold, link, ...).
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// New builds a container node.
func New(typ string, attrs map[string]any, content ...*Node) *Node {
	return &Node{Type: typ, Attrs: attrs, Content: content}
}

// NewText builds a text leaf.
func NewText(text string, marks ...Mark) *Node {
	return &Node{Type: "text", Text: text, Marks: marks}
}

func (n *Node) Attr(key string) any {
	if n == nil || n.Attrs == nil {
		return nil
	}
	return n.Attrs[key]
}

func (n *Node) String(key, fallback string) string {
	return stringAttr(n.Attr(key), fallback)
}

func (n *Node) Int(key string, fallback int) int {
	return intAttr(n.Attr(key), fallback)
}

func (n *Node) Float(key string, fallback float64) float64 {
	return floatAttr(n.Attr(key), fallback)
}

func (n *Node) Bool(key string, fallback bool) bool {
	switch v := n.Attr(key).(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// Ints reads a numeric list attribute such as a table cell's colwidth.
// Non-numeric or null entries read as 0.
func (n *Node) Ints(key string) []int {
	raw, ok := n.Attr(key).([]any)
	if !ok {
		if ints, ok := n.Attr(key).([]int); ok {
			return ints
		}
		return nil
	}
	out := make([]int, len(raw))
	for i, v := range raw {
		out[i] = intAttr(v, 0)
	}
	return out
}

func (m Mark) String(key, fallback string) string {
	if m.Attrs == nil {
		return fallback
	}
	return stringAttr(m.Attrs[key], fallback)
}

// HasMark reports whether the leaf carries a mark of the given type.
func (n *Node) HasMark(typ string) (Mark, bool) {
	for _, m := range n.Marks {
		if m.Type == typ {
			return m, true
		}
	}
	return Mark{}, false
}

// Walk visits n and its descendants depth-first in document order. Returning
// false from fn skips the node's children.
func Walk(n *Node, fn func(n *Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Content {
		Walk(c, fn)
	}
}

// PlainText concatenates all text below n. Block boundaries become newlines.
func PlainText(n *Node) string {
	var sb strings.Builder
	var visit func(*Node)
	visit = func(n *Node) {
		if n == nil {
			return
		}
		switch n.Type {
		case "text":
			sb.WriteString(n.Text)
			return
		case "hardBreak":
			sb.WriteByte('\n')
			return
		}
		for _, c := range n.Content {
			visit(c)
		}
		if len(n.Content) > 0 && n.Type != "doc" && sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteByte('\n')
		}
	}
	visit(n)
	return strings.TrimRight(sb.String(), "\n")
}

func stringAttr(v any, fallback string) string {
	switch x := v.(type) {
	case string:
		if x != "" {
			return x
		}
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fallback
}

func intAttr(v any, fallback int) int {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return int(n)
		}
		if f, err := x.Float64(); err == nil {
			return int(f)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
			return n
		}
	}
	return fallback
}

func floatAttr(v any, fallback float64) float64 {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case float64:
		return x
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f
		}
	}
	return fallback
}
