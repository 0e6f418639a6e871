package ooxml

import (
	"encoding/xml"

	"github.com/dgallion1/docxport/internal/styles"
)

type stylesPart struct {
	XMLName  xml.Name  `xml:"w:styles"`
	XMLW     string    `xml:"xmlns:w,attr"`
	XMLR     string    `xml:"xmlns:r,attr"`
	Defaults defaults  `xml:"w:docDefaults"`
	Styles   []styleEl `xml:"w:style"`
}

type defaults struct {
	RunDefault struct {
		RPr *rPr
	} `xml:"w:rPrDefault"`
	ParaDefault struct {
		PPr *pPr
	} `xml:"w:pPrDefault"`
}

type styleEl struct {
	Type    string `xml:"w:type,attr"`
	Default string `xml:"w:default,attr,omitempty"`
	ID      string `xml:"w:styleId,attr"`
	Name    val    `xml:"w:name"`
	BasedOn *val   `xml:"w:basedOn,omitempty"`
	Next    *val   `xml:"w:next,omitempty"`
	Quick   *onOff `xml:"w:qFormat,omitempty"`
	PPr     *pPr
	RPr     *rPr
	TblPr   *tblStylePr
}

type tblBorder struct {
	Val   string `xml:"w:val,attr"`
	Size  int    `xml:"w:sz,attr"`
	Space int    `xml:"w:space,attr"`
	Color string `xml:"w:color,attr"`
}

type tblStylePr struct {
	XMLName xml.Name `xml:"w:tblPr"`
	Borders struct {
		Top     tblBorder `xml:"w:top"`
		Left    tblBorder `xml:"w:left"`
		Bottom  tblBorder `xml:"w:bottom"`
		Right   tblBorder `xml:"w:right"`
		InsideH tblBorder `xml:"w:insideH"`
		InsideV tblBorder `xml:"w:insideV"`
	} `xml:"w:tblBorders"`
}

// gridBorders draws a single thin line on every table edge.
func gridBorders() *tblStylePr {
	line := tblBorder{Val: "single", Size: 4, Color: "auto"}
	t := &tblStylePr{}
	t.Borders.Top, t.Borders.Left, t.Borders.Bottom, t.Borders.Right = line, line, line, line
	t.Borders.InsideH, t.Borders.InsideV = line, line
	return t
}

// StylesXML renders word/styles.xml from a resolved registry. Document
// defaults are always written; the style list holds exactly the registry.
func StylesXML(reg *styles.Registry) ([]byte, error) {
	part := stylesPart{XMLW: nsW, XMLR: nsR}
	part.Defaults.RunDefault.RPr = runProps(styles.DocDefaults.Run)
	part.Defaults.ParaDefault.PPr = paragraphProps(styles.DocDefaults.Paragraph)

	for _, s := range reg.All() {
		el := styleEl{
			Type:    string(s.Kind),
			ID:      s.ID,
			Name:    val{Val: s.Name},
			BasedOn: strVal(s.BasedOn),
			Next:    strVal(s.Next),
			RPr:     runProps(s.Run),
		}
		if s.Default {
			el.Default = "1"
		}
		if s.Quick {
			el.Quick = &onOff{}
		}
		switch s.Kind {
		case styles.KindParagraph:
			el.PPr = paragraphProps(s.Paragraph)
		case styles.KindTable:
			el.PPr = paragraphProps(s.Paragraph)
			el.TblPr = gridBorders()
		}
		part.Styles = append(part.Styles, el)
	}
	return marshalPart(part)
}
