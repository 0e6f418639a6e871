package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/docxport/internal/doctree"
)

// CSVParser handles CSV files. The whole file becomes one table whose first
// row is the header row.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	title := Title(filename)
	if len(records) == 0 {
		return newDoc(title, nil), nil
	}

	// Short rows are padded so every row spans the same grid.
	width := 0
	for _, rec := range records {
		width = max(width, len(rec))
	}

	table := doctree.New("table", nil)
	for i, rec := range records {
		cellType := "tableCell"
		if i == 0 {
			cellType = "tableHeader"
		}
		row := doctree.New("tableRow", nil)
		for j := 0; j < width; j++ {
			text := ""
			if j < len(rec) {
				text = rec[j]
			}
			row.Content = append(row.Content, doctree.New(cellType, nil, paragraph(text)))
		}
		table.Content = append(table.Content, row)
	}
	return newDoc(title, []*doctree.Node{table}), nil
}
