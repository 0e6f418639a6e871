package exporter

import (
	"time"

	"github.com/dgallion1/docxport/internal/doctree"
	"github.com/dgallion1/docxport/internal/layout"
	"github.com/dgallion1/docxport/internal/merge"
	"github.com/dgallion1/docxport/internal/styles"
)

// Config drives one export.
type Config struct {
	Page   layout.Page     `json:"page"`
	Header []*doctree.Node `json:"header,omitempty"`
	Footer []*doctree.Node `json:"footer,omitempty"`

	Styles    []styles.Style     `json:"styles,omitempty"`
	Numbering []styles.Numbering `json:"numbering,omitempty"`

	// nil means true: overrides are merged into the built-in catalogs.
	// false replaces the catalogs with the overrides alone.
	UseDefaultStyles    *bool `json:"useDefaultStyles,omitempty"`
	UseDefaultNumbering *bool `json:"useDefaultNumbering,omitempty"`

	Title       string    `json:"title,omitempty"`
	Creator     string    `json:"creator,omitempty"`
	Description string    `json:"description,omitempty"`
	Created     time.Time `json:"created,omitzero"`

	CodeTheme string `json:"codeTheme,omitempty"`
}

func (c Config) useDefaultStyles() bool {
	return c.UseDefaultStyles == nil || *c.UseDefaultStyles
}

func (c Config) useDefaultNumbering() bool {
	return c.UseDefaultNumbering == nil || *c.UseDefaultNumbering
}

// Overlay layers over on top of c: scalar fields set in over win, header
// and footer blocks are replaced when over has any, and style and numbering
// overrides merge by key.
func (c Config) Overlay(over Config) Config {
	out := c
	if over.Page.Size != "" {
		out.Page.Size = over.Page.Size
	}
	if over.Page.Orientation != "" {
		out.Page.Orientation = over.Page.Orientation
	}
	if over.Page.Width != 0 {
		out.Page.Width = over.Page.Width
	}
	if over.Page.Height != 0 {
		out.Page.Height = over.Page.Height
	}
	out.Page.Margins = merge.Ptr(c.Page.Margins, over.Page.Margins)

	if len(over.Header) > 0 {
		out.Header = over.Header
	}
	if len(over.Footer) > 0 {
		out.Footer = over.Footer
	}
	out.Styles = merge.ByKey(c.Styles, over.Styles, func(s styles.Style) string { return s.ID }, styles.Style.Merge)
	out.Numbering = merge.ByKey(c.Numbering, over.Numbering, func(n styles.Numbering) string { return n.Reference }, styles.Numbering.Merge)
	out.UseDefaultStyles = merge.Ptr(c.UseDefaultStyles, over.UseDefaultStyles)
	out.UseDefaultNumbering = merge.Ptr(c.UseDefaultNumbering, over.UseDefaultNumbering)

	out.Title = merge.String(c.Title, over.Title)
	out.Creator = merge.String(c.Creator, over.Creator)
	out.Description = merge.String(c.Description, over.Description)
	out.CodeTheme = merge.String(c.CodeTheme, over.CodeTheme)
	if !over.Created.IsZero() {
		out.Created = over.Created
	}
	return out
}
