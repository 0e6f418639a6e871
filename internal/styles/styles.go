// Package styles holds the paragraph, character and table style catalog and
// the list numbering catalog used when writing a document. Both are built
// once per export from built-in defaults and caller overrides.
package styles

import (
	"fmt"
	"sort"

	"github.com/dgallion1/docxport/internal/merge"
)

type Kind string

const (
	KindParagraph Kind = "paragraph"
	KindCharacter Kind = "character"
	KindTable     Kind = "table"
)

// Style is one catalog entry, keyed by ID.
type Style struct {
	ID        string          `json:"id"`
	Name      string          `json:"name,omitempty"`
	Kind      Kind            `json:"kind,omitempty"`
	BasedOn   string          `json:"basedOn,omitempty"`
	Next      string          `json:"next,omitempty"`
	Default   bool            `json:"default,omitempty"`
	Quick     bool            `json:"quickFormat,omitempty"`
	Run       *RunProps       `json:"run,omitempty"`
	Paragraph *ParagraphProps `json:"paragraph,omitempty"`
}

// Merge layers over on top of s. The ID never changes.
func (s Style) Merge(over Style) Style {
	return Style{
		ID:        s.ID,
		Name:      merge.String(s.Name, over.Name),
		Kind:      Kind(merge.String(string(s.Kind), string(over.Kind))),
		BasedOn:   merge.String(s.BasedOn, over.BasedOn),
		Next:      merge.String(s.Next, over.Next),
		Default:   s.Default || over.Default,
		Quick:     s.Quick || over.Quick,
		Run:       merge.Nested(s.Run, over.Run, RunProps.Merge),
		Paragraph: merge.Nested(s.Paragraph, over.Paragraph, ParagraphProps.Merge),
	}
}

// Well-known style ids referenced by the exporter.
const (
	Normal         = "Normal"
	Title          = "Title"
	Quote          = "Quote"
	CodeBlock      = "CodeBlock"
	CodeChar       = "CodeChar"
	Hyperlink      = "Hyperlink"
	ListParagraph  = "ListParagraph"
	TableGrid      = "TableGrid"
	Caption        = "Caption"
	HorizontalRule = "HorizontalRule"
	Header         = "Header"
	Footer         = "Footer"
)

// HeadingID returns the style id for a heading level, clamped to 1..6.
func HeadingID(level int) string {
	level = min(max(level, 1), 6)
	return fmt.Sprintf("Heading%d", level)
}

// DocDefaults are the document-wide run and paragraph defaults.
var DocDefaults = Style{
	Run:       &RunProps{Font: "Calibri", Size: 11},
	Paragraph: &ParagraphProps{SpacingAfter: Int(160), Line: Int(259)},
}

// Defaults returns a fresh copy of the built-in catalog.
func Defaults() []Style {
	out := []Style{
		{ID: Normal, Name: "Normal", Kind: KindParagraph, Default: true, Quick: true},
		{
			ID: Title, Name: "Title", Kind: KindParagraph, BasedOn: Normal, Next: Normal, Quick: true,
			Run:       &RunProps{Size: 28, Font: "Calibri Light"},
			Paragraph: &ParagraphProps{SpacingAfter: Int(80), Line: Int(240)},
		},
	}

	sizes := []float64{20, 16, 14, 12, 11, 11}
	for i, size := range sizes {
		level := i + 1
		out = append(out, Style{
			ID: HeadingID(level), Name: fmt.Sprintf("heading %d", level), Kind: KindParagraph,
			BasedOn: Normal, Next: Normal, Quick: true,
			Run: &RunProps{Bold: Bool(true), Size: size, Color: "2F5496"},
			Paragraph: &ParagraphProps{
				SpacingBefore: Int(240), SpacingAfter: Int(80),
				KeepNext: Bool(true), KeepLines: Bool(true), OutlineLevel: Int(i),
			},
		})
	}

	out = append(out,
		Style{
			ID: Quote, Name: "Quote", Kind: KindParagraph, BasedOn: Normal, Next: Normal, Quick: true,
			Run: &RunProps{Italic: Bool(true), Color: "404040"},
			Paragraph: &ParagraphProps{
				IndentLeft: Int(720), IndentRight: Int(720),
				Borders: &Borders{Left: &Border{Style: "single", Size: 18, Space: 8, Color: "BFBFBF"}},
			},
		},
		Style{
			ID: CodeBlock, Name: "Code Block", Kind: KindParagraph, BasedOn: Normal,
			Run:       &RunProps{Font: "Consolas", Size: 10},
			Paragraph: &ParagraphProps{SpacingBefore: Int(0), SpacingAfter: Int(0), Line: Int(240)},
		},
		Style{
			ID: CodeChar, Name: "Code Char", Kind: KindCharacter,
			Run: &RunProps{Font: "Consolas", Shading: "F2F2F2"},
		},
		Style{
			ID: Hyperlink, Name: "Hyperlink", Kind: KindCharacter,
			Run: &RunProps{Color: "0563C1", Underline: "single"},
		},
		Style{
			ID: ListParagraph, Name: "List Paragraph", Kind: KindParagraph, BasedOn: Normal, Quick: true,
			Paragraph: &ParagraphProps{IndentLeft: Int(720), SpacingAfter: Int(40)},
		},
		Style{
			ID: TableGrid, Name: "Table Grid", Kind: KindTable,
			Paragraph: &ParagraphProps{SpacingAfter: Int(0), Line: Int(240)},
		},
		Style{
			ID: Caption, Name: "caption", Kind: KindParagraph, BasedOn: Normal, Next: Normal, Quick: true,
			Run:       &RunProps{Italic: Bool(true), Size: 9, Color: "44546A"},
			Paragraph: &ParagraphProps{Alignment: "center", SpacingAfter: Int(200)},
		},
		Style{
			ID: HorizontalRule, Name: "Horizontal Rule", Kind: KindParagraph, BasedOn: Normal, Next: Normal,
			Paragraph: &ParagraphProps{
				SpacingBefore: Int(120), SpacingAfter: Int(120),
				Borders: &Borders{Bottom: &Border{Style: "single", Size: 6, Space: 1, Color: "A6A6A6"}},
			},
		},
		Style{ID: Header, Name: "header", Kind: KindParagraph, BasedOn: Normal, Paragraph: &ParagraphProps{SpacingAfter: Int(0)}},
		Style{ID: Footer, Name: "footer", Kind: KindParagraph, BasedOn: Normal, Paragraph: &ParagraphProps{SpacingAfter: Int(0)}},
	)
	return out
}

// Registry is the resolved style catalog for one export. It is read-only
// after construction.
type Registry struct {
	styles []Style
	byID   map[string]int
}

// NewRegistry merges overrides into the built-in catalog. With useDefaults
// false the catalog holds only the overrides.
func NewRegistry(overrides []Style, useDefaults bool) *Registry {
	var base []Style
	if useDefaults {
		base = Defaults()
	}
	resolved := merge.ByKey(base, overrides, func(s Style) string { return s.ID }, Style.Merge)
	for i := range resolved {
		if resolved[i].Kind == "" {
			resolved[i].Kind = KindParagraph
		}
		if resolved[i].Name == "" {
			resolved[i].Name = resolved[i].ID
		}
	}

	r := &Registry{styles: resolved, byID: make(map[string]int, len(resolved))}
	for i, s := range resolved {
		r.byID[s.ID] = i
	}
	return r
}

func (r *Registry) Get(id string) (Style, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Style{}, false
	}
	return r.styles[i], true
}

func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// All returns the catalog in definition order.
func (r *Registry) All() []Style {
	out := make([]Style, len(r.styles))
	copy(out, r.styles)
	return out
}

// IDs returns the sorted style ids.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.styles))
	for _, s := range r.styles {
		ids = append(ids, s.ID)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) Len() int { return len(r.styles) }
