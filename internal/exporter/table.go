package exporter

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/docxport/internal/doctree"
	"github.com/dgallion1/docxport/internal/layout"
	"github.com/dgallion1/docxport/internal/styles"
	"github.com/dgallion1/docxport/internal/units"
)

// Table is a w:tbl. Unlike docx.Table its cells hold paragraphs and nested
// tables in one ordered list, and cell properties are written in schema
// order.
type Table struct {
	XMLName    xml.Name `xml:"w:tbl"`
	Properties *docx.WTableProperties
	Grid       *docx.WTableGrid
	Rows       []*Row
}

type Row struct {
	XMLName    xml.Name `xml:"w:tr"`
	Properties *rowProps
	Cells      []*Cell
}

type rowProps struct {
	XMLName xml.Name  `xml:"w:trPr"`
	Header  *struct{} `xml:"w:tblHeader,omitempty"`
}

type Cell struct {
	XMLName    xml.Name `xml:"w:tc"`
	Properties *cellProps
	Blocks     []Block
}

type cellProps struct {
	XMLName  xml.Name `xml:"w:tcPr"`
	Width    *docx.WTableCellWidth
	GridSpan *docx.WGridSpan
	VMerge   *docx.WvMerge
	Shade    *docx.Shade
}

func tableBlock(ctx context.Context, n *doctree.Node, s *Scope) ([]Block, error) {
	if len(n.Content) == 0 {
		return nil, nil
	}
	grid, err := layout.Place(n)
	if err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}
	// colwidth hints are CSS pixels from the editor.
	widths := layout.ColumnWidthsFrom(n, s.width, func(px int) int {
		return units.PixelsToTwip(float64(px))
	})

	t := &Table{
		Properties: s.tableProps(widths),
		Grid:       &docx.WTableGrid{},
	}
	for _, w := range widths {
		t.Grid.GridCols = append(t.Grid.GridCols, &docx.WGridCol{W: int64(w)})
	}

	type job struct {
		cell *Cell
		node *doctree.Node
		sc   *Scope
	}
	var jobs []job

	leading := true
	for _, slots := range grid.Rows {
		row := &Row{}
		header := len(slots) > 0
		for _, slot := range slots {
			width := layout.SpanWidth(widths, slot.Col, slot.ColSpan)
			c := &Cell{Properties: &cellProps{
				Width: &docx.WTableCellWidth{W: int64(width), Type: "dxa"},
			}}
			if slot.ColSpan > 1 {
				c.Properties.GridSpan = &docx.WGridSpan{Val: slot.ColSpan}
			}
			switch {
			case slot.Continue:
				c.Properties.VMerge = &docx.WvMerge{}
			case slot.RowSpan > 1:
				c.Properties.VMerge = &docx.WvMerge{Val: "restart"}
			}
			row.Cells = append(row.Cells, c)

			if slot.Cell == nil || slot.Cell.Type != "tableHeader" {
				header = false
			}
			if slot.Cell == nil || slot.Continue {
				continue
			}
			if fill := styles.NormalizeColor(slot.Cell.String("backgroundColor", "")); fill != "" {
				c.Properties.Shade = shade(fill)
			}
			sc := s.withWidth(width)
			if slot.Cell.Type == "tableHeader" {
				sc = sc.withStrong()
			}
			jobs = append(jobs, job{cell: c, node: slot.Cell, sc: sc})
		}
		// Leading all-header rows repeat on every page.
		leading = leading && header
		if leading {
			row.Properties = &rowProps{Header: &struct{}{}}
		}
		t.Rows = append(t.Rows, row)
	}

	_, err = fanOut(ctx, s.x.e.concurrency, jobs, func(ctx context.Context, j job) ([]struct{}, error) {
		blocks, err := j.sc.Blocks(ctx, j.node.Content)
		if err != nil {
			return nil, err
		}
		j.cell.Blocks = blocks
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	for _, row := range t.Rows {
		for _, c := range row.Cells {
			// A cell must end with a paragraph.
			if len(c.Blocks) == 0 {
				c.Blocks = []Block{&docx.Paragraph{}}
				continue
			}
			if _, ok := c.Blocks[len(c.Blocks)-1].(*docx.Paragraph); !ok {
				c.Blocks = append(c.Blocks, &docx.Paragraph{})
			}
		}
	}
	return []Block{t}, nil
}

func (s *Scope) tableProps(widths []int) *docx.WTableProperties {
	total := 0
	for _, w := range widths {
		total += w
	}
	p := &docx.WTableProperties{
		Width: &docx.WTableWidth{W: int64(total), Type: "dxa"},
	}
	if style := s.style(styles.TableGrid); style != "" {
		p.Style = &docx.WTableStyle{Val: style}
		return p
	}
	edge := func() *docx.WTableBorder { return &docx.WTableBorder{Val: "single", Size: 4, Color: "auto"} }
	p.TableBorders = &docx.WTableBorders{
		Top: edge(), Left: edge(), Bottom: edge(), Right: edge(),
		InsideH: edge(), InsideV: edge(),
	}
	return p
}
