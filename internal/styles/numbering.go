package styles

import (
	"fmt"

	"github.com/dgallion1/docxport/internal/merge"
)

// Numbering references the exporter assigns to list nodes.
const (
	BulletList  = "bulletList"
	OrderedList = "orderedList"
)

// Level is one indentation level of a numbering definition.
type Level struct {
	Level     int       `json:"level"`
	Format    string    `json:"format,omitempty"` // bullet, decimal, lowerLetter, lowerRoman, upperLetter, upperRoman
	Text      string    `json:"text,omitempty"`   // "%1." or a bullet glyph
	Alignment string    `json:"alignment,omitempty"`
	Start     int       `json:"start,omitempty"`
	Left      *int      `json:"left,omitempty"`
	Hanging   *int      `json:"hanging,omitempty"`
	Run       *RunProps `json:"run,omitempty"`
}

func (l Level) Merge(over Level) Level {
	out := Level{
		Level:     l.Level,
		Format:    merge.String(l.Format, over.Format),
		Text:      merge.String(l.Text, over.Text),
		Alignment: merge.String(l.Alignment, over.Alignment),
		Start:     l.Start,
		Left:      merge.Ptr(l.Left, over.Left),
		Hanging:   merge.Ptr(l.Hanging, over.Hanging),
		Run:       merge.Nested(l.Run, over.Run, RunProps.Merge),
	}
	if over.Start > 0 {
		out.Start = over.Start
	}
	return out
}

// Numbering is a list definition keyed by Reference. Levels merge by level.
type Numbering struct {
	Reference string  `json:"reference"`
	Levels    []Level `json:"levels"`
}

func (n Numbering) Merge(over Numbering) Numbering {
	return Numbering{
		Reference: n.Reference,
		Levels:    merge.ByKey(n.Levels, over.Levels, func(l Level) int { return l.Level }, Level.Merge),
	}
}

// MaxLevels is the number of levels WordprocessingML list definitions support.
const MaxLevels = 9

var (
	bulletGlyphs  = []string{"•", "◦", "▪"}
	orderedFormat = []string{"decimal", "lowerLetter", "lowerRoman"}
)

// DefaultNumbering returns a fresh copy of the built-in list definitions.
func DefaultNumbering() []Numbering {
	bullets := Numbering{Reference: BulletList}
	ordered := Numbering{Reference: OrderedList}
	for i := 0; i < MaxLevels; i++ {
		left, hanging := 720*(i+1), 360
		bullets.Levels = append(bullets.Levels, Level{
			Level: i, Format: "bullet", Text: bulletGlyphs[i%len(bulletGlyphs)], Alignment: "left",
			Start: 1, Left: Int(left), Hanging: Int(hanging),
		})
		ordered.Levels = append(ordered.Levels, Level{
			Level: i, Format: orderedFormat[i%len(orderedFormat)], Text: fmt.Sprintf("%%%d.", i+1),
			Alignment: "left", Start: 1, Left: Int(left), Hanging: Int(hanging),
		})
	}
	return []Numbering{bullets, ordered}
}

// NumberingRegistry is the resolved list catalog for one export.
type NumberingRegistry struct {
	entries []Numbering
	byRef   map[string]int
}

// NewNumberingRegistry merges overrides into the built-in definitions. With
// useDefaults false only the overrides are present.
func NewNumberingRegistry(overrides []Numbering, useDefaults bool) *NumberingRegistry {
	var base []Numbering
	if useDefaults {
		base = DefaultNumbering()
	}
	resolved := merge.ByKey(base, overrides, func(n Numbering) string { return n.Reference }, Numbering.Merge)

	r := &NumberingRegistry{entries: resolved, byRef: make(map[string]int, len(resolved))}
	for i, n := range resolved {
		r.byRef[n.Reference] = i
	}
	return r
}

func (r *NumberingRegistry) Get(ref string) (Numbering, bool) {
	i, ok := r.byRef[ref]
	if !ok {
		return Numbering{}, false
	}
	return r.entries[i], true
}

// Index returns the zero-based position of a reference, used as its
// abstract numbering id.
func (r *NumberingRegistry) Index(ref string) (int, bool) {
	i, ok := r.byRef[ref]
	return i, ok
}

func (r *NumberingRegistry) All() []Numbering {
	out := make([]Numbering, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *NumberingRegistry) Len() int { return len(r.entries) }

// LevelOf returns the definition for a level of a reference.
func (n Numbering) LevelOf(level int) (Level, bool) {
	for _, l := range n.Levels {
		if l.Level == level {
			return l, true
		}
	}
	return Level{}, false
}
