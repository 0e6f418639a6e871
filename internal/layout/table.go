package layout

import (
	"errors"
	"fmt"

	"github.com/dgallion1/docxport/internal/doctree"
)

// ErrMalformedTable reports cells that do not fit the table's column grid.
var ErrMalformedTable = errors.New("malformed table")

func colspan(cell *doctree.Node) int  { return max(cell.Int("colspan", 1), 1) }
func rowspanOf(cell *doctree.Node) int { return max(cell.Int("rowspan", 1), 1) }

// TotalColumns is the widest row measured in colspans. A table without rows
// has one column.
func TotalColumns(table *doctree.Node) int {
	total := 0
	for _, row := range table.Content {
		sum := 0
		for _, cell := range row.Content {
			sum += colspan(cell)
		}
		total = max(total, sum)
	}
	return max(total, 1)
}

// ColumnWidths distributes available across the table's columns. Hints come
// from the first row's colwidth attributes, in the same unit as available: a
// cell spanning n columns either lists n widths or one width that is divided
// between them. Columns without a hint share what the hinted columns leave.
// The result is scaled down when it would exceed available.
func ColumnWidths(table *doctree.Node, available int) []int {
	return ColumnWidthsFrom(table, available, nil)
}

// ColumnWidthsFrom is ColumnWidths for hints in another unit. hint converts
// each colwidth value into available's unit before the widths are fitted; nil
// takes them as they are.
func ColumnWidthsFrom(table *doctree.Node, available int, hint func(int) int) []int {
	if hint == nil {
		hint = func(v int) int { return v }
	}
	total := TotalColumns(table)
	widths := make([]int, total)

	if len(table.Content) > 0 {
		col := 0
		for _, cell := range table.Content[0].Content {
			span := colspan(cell)
			hints := cell.Ints("colwidth")
			switch {
			case len(hints) == 1 && span > 1:
				if hints[0] > 0 {
					for i := 0; i < span && col+i < total; i++ {
						widths[col+i] = hint(hints[0]) / span
					}
				}
			default:
				for i := 0; i < span && i < len(hints) && col+i < total; i++ {
					if hints[i] > 0 {
						widths[col+i] = hint(hints[i])
					}
				}
			}
			col += span
		}
	}

	known, unknown := 0, 0
	for _, w := range widths {
		if w > 0 {
			known += w
		} else {
			unknown++
		}
	}

	if unknown > 0 {
		share := available / total
		if unknown < total && available-known > 0 {
			share = (available - known) / unknown
		}
		for i, w := range widths {
			if w == 0 {
				widths[i] = share
			}
		}
	}

	sum := 0
	for _, w := range widths {
		sum += w
	}
	if sum > available && sum > 0 {
		for i, w := range widths {
			widths[i] = w * available / sum
		}
	}
	return widths
}

// SpanWidth sums the widths of columns [col, col+span).
func SpanWidth(widths []int, col, span int) int {
	w := 0
	for i := col; i < col+span && i < len(widths); i++ {
		w += widths[i]
	}
	return w
}

// Slot is one position in a row of the placed grid. Continue marks a slot
// covered by a cell that started in an earlier row. A nil Cell with
// Continue false is padding for a short row.
type Slot struct {
	Cell     *doctree.Node
	Col      int
	ColSpan  int
	RowSpan  int
	Continue bool
}

// Grid is a table with every cell assigned to its grid columns.
type Grid struct {
	Columns int
	Rows    [][]Slot
}

// Place lays the table's cells onto the column grid, honoring colspan and
// rowspan. Rows shorter than the grid are padded.
func Place(table *doctree.Node) (*Grid, error) {
	g := &Grid{Columns: TotalColumns(table)}

	type carry struct {
		rows, span int
		cell       *doctree.Node
	}
	pending := make([]carry, g.Columns)

	for r, row := range table.Content {
		active := make([]carry, g.Columns)
		copy(active, pending)
		for c := range pending {
			if pending[c].rows > 0 {
				pending[c].rows--
			}
		}

		var slots []Slot
		col := 0
		fillCovered := func() {
			for col < g.Columns && active[col].rows > 0 {
				a := active[col]
				slots = append(slots, Slot{Cell: a.cell, Col: col, ColSpan: a.span, RowSpan: 1, Continue: true})
				col += a.span
			}
		}

		for i, cell := range row.Content {
			fillCovered()
			span, rs := colspan(cell), rowspanOf(cell)
			if col+span > g.Columns {
				return nil, fmt.Errorf("%w: row %d cell %d spans past column %d", ErrMalformedTable, r, i, g.Columns)
			}
			for k := col + 1; k < col+span; k++ {
				if active[k].rows > 0 {
					return nil, fmt.Errorf("%w: row %d cell %d overlaps a row-spanning cell", ErrMalformedTable, r, i)
				}
			}
			slots = append(slots, Slot{Cell: cell, Col: col, ColSpan: span, RowSpan: rs})
			if rs > 1 {
				pending[col] = carry{rows: rs - 1, span: span, cell: cell}
			}
			col += span
		}

		for col < g.Columns {
			fillCovered()
			if col >= g.Columns {
				break
			}
			slots = append(slots, Slot{Col: col, ColSpan: 1, RowSpan: 1})
			col++
		}
		if col > g.Columns {
			return nil, fmt.Errorf("%w: row %d overlaps a row-spanning cell", ErrMalformedTable, r)
		}
		g.Rows = append(g.Rows, slots)
	}
	return g, nil
}
