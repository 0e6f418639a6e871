// Package lists assigns indentation levels and numbering instances to list
// nodes before the exporter walks the tree.
//
// Assignment runs once, sequentially, in document order, so instance ids are
// stable no matter how the exporter schedules its concurrent work.
package lists

import (
	"sort"
	"sync/atomic"

	"github.com/dgallion1/docxport/internal/doctree"
	"github.com/dgallion1/docxport/internal/styles"
)

// Generator returns the next numbering instance id.
type Generator func() int

// Counter returns a generator yielding 1, 2, 3, ...
func Counter() Generator {
	var n atomic.Int64
	return func() int { return int(n.Add(1)) }
}

// Info is the numbering context of one list node.
type Info struct {
	Reference string // numbering reference, "" for task lists
	Level     int
	Instance  int // 0 when the list carries no instance
	Start     int
	Task      bool
}

// Numbered reports whether the list restarts its own counter.
func (i Info) Numbered() bool { return i.Instance > 0 }

// Plan maps list nodes to their numbering context.
type Plan struct {
	lists     map[*doctree.Node]Info
	instances []Info
}

var listTypes = map[string]string{
	"bulletList":  styles.BulletList,
	"orderedList": styles.OrderedList,
	"taskList":    "",
}

// IsList reports whether a node type is one of the list containers.
func IsList(typ string) bool {
	_, ok := listTypes[typ]
	return ok
}

// Assign walks the tree and records every list node. Ordered lists always
// get a fresh instance from next, whether top-level or nested, and their
// items share it. Bullet and task lists never carry one.
func Assign(root *doctree.Node, next Generator) *Plan {
	if next == nil {
		next = Counter()
	}
	p := &Plan{lists: make(map[*doctree.Node]Info)}

	var visit func(n *doctree.Node, depth int)
	visit = func(n *doctree.Node, depth int) {
		if n == nil {
			return
		}
		ref, isList := listTypes[n.Type]
		if isList {
			info := Info{Reference: ref, Level: min(depth, styles.MaxLevels-1), Task: n.Type == "taskList"}
			if n.Type == "orderedList" {
				info.Instance = next()
				info.Start = n.Int("start", 1)
				p.instances = append(p.instances, info)
			}
			p.lists[n] = info
			depth++
		}
		for _, c := range n.Content {
			visit(c, depth)
		}
	}
	visit(root, 0)
	return p
}

// Lookup returns the context recorded for a list node.
func (p *Plan) Lookup(n *doctree.Node) (Info, bool) {
	if p == nil {
		return Info{}, false
	}
	info, ok := p.lists[n]
	return info, ok
}

// Instances returns every numbered instance ordered by id.
func (p *Plan) Instances() []Info {
	out := make([]Info, len(p.instances))
	copy(out, p.instances)
	sort.Slice(out, func(i, j int) bool { return out[i].Instance < out[j].Instance })
	return out
}
