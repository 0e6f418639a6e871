package ooxml

import (
	"encoding/xml"
	"time"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/docxport/internal/layout"
)

// Placeholder relationship ids written into the section properties. Finalize
// swaps them for the ids it allocates to the header and footer parts.
const (
	HeaderRelID = "rIdHeaderPart"
	FooterRelID = "rIdFooterPart"
)

type hdrFtr struct {
	XMLName xml.Name
	XMLW    string `xml:"xmlns:w,attr"`
	XMLR    string `xml:"xmlns:r,attr"`
	XMLWP   string `xml:"xmlns:wp,attr"`
	XMLWPS  string `xml:"xmlns:wps,attr"`
	Items   []interface{}
}

// HeaderXML renders a header part holding blocks. An empty header still
// needs one paragraph to be valid.
func HeaderXML(blocks []interface{}) ([]byte, error) {
	return hdrFtrXML("w:hdr", blocks)
}

func FooterXML(blocks []interface{}) ([]byte, error) {
	return hdrFtrXML("w:ftr", blocks)
}

func hdrFtrXML(name string, blocks []interface{}) ([]byte, error) {
	if len(blocks) == 0 {
		blocks = []interface{}{&docx.Paragraph{}}
	}
	return marshalPart(hdrFtr{
		XMLName: xml.Name{Local: name},
		XMLW:    nsW, XMLR: nsR, XMLWP: nsWP, XMLWPS: nsWPS,
		Items: blocks,
	})
}

type hdrFtrRef struct {
	Type string `xml:"w:type,attr"`
	ID   string `xml:"r:id,attr"`
}

type pgSz struct {
	W      int    `xml:"w:w,attr"`
	H      int    `xml:"w:h,attr"`
	Orient string `xml:"w:orient,attr,omitempty"`
}

// SectPr is the body's final section properties, extended with header and
// footer references.
type SectPr struct {
	XMLName   xml.Name    `xml:"w:sectPr"`
	HeaderRef *hdrFtrRef  `xml:"w:headerReference,omitempty"`
	FooterRef *hdrFtrRef  `xml:"w:footerReference,omitempty"`
	PgSz      *pgSz       `xml:"w:pgSz"`
	PgMar     *docx.PgMar `xml:"w:pgMar"`
	Cols      *docx.Cols  `xml:"w:cols"`
}

// Section builds the section properties for a page geometry.
func Section(g layout.Geometry, header, footer bool) *SectPr {
	m := g.Margins
	s := &SectPr{
		PgSz: &pgSz{W: g.Width, H: g.Height},
		PgMar: &docx.PgMar{
			Top: int(m.Top), Left: int(m.Left), Bottom: int(m.Bottom), Right: int(m.Right),
			Header: int(m.Header), Footer: int(m.Footer), Gutter: int(m.Gutter),
		},
		Cols: &docx.Cols{Space: 720},
	}
	if g.Landscape {
		s.PgSz.Orient = "landscape"
	}
	if header {
		s.HeaderRef = &hdrFtrRef{Type: "default", ID: HeaderRelID}
	}
	if footer {
		s.FooterRef = &hdrFtrRef{Type: "default", ID: FooterRelID}
	}
	return s
}

// Meta is the document's core properties. Zero timestamps are omitted.
type Meta struct {
	Title       string
	Creator     string
	Description string
	Created     time.Time
	Modified    time.Time
}

type w3cdtf struct {
	Type  string `xml:"xsi:type,attr"`
	Value string `xml:",chardata"`
}

type coreProps struct {
	XMLName     xml.Name `xml:"cp:coreProperties"`
	XMLCP       string   `xml:"xmlns:cp,attr"`
	XMLDC       string   `xml:"xmlns:dc,attr"`
	XMLDCTerms  string   `xml:"xmlns:dcterms,attr"`
	XMLDCMIType string   `xml:"xmlns:dcmitype,attr"`
	XMLXSI      string   `xml:"xmlns:xsi,attr"`
	Title       string   `xml:"dc:title,omitempty"`
	Creator     string   `xml:"dc:creator,omitempty"`
	Description string   `xml:"dc:description,omitempty"`
	LastBy      string   `xml:"cp:lastModifiedBy,omitempty"`
	Created     *w3cdtf  `xml:"dcterms:created,omitempty"`
	Modified    *w3cdtf  `xml:"dcterms:modified,omitempty"`
}

func stamp(t time.Time) *w3cdtf {
	if t.IsZero() {
		return nil
	}
	return &w3cdtf{Type: "dcterms:W3CDTF", Value: t.UTC().Format(time.RFC3339)}
}

// CoreXML renders docProps/core.xml.
func CoreXML(m Meta) ([]byte, error) {
	return marshalPart(coreProps{
		XMLCP:       "http://schemas.openxmlformats.org/package/2006/metadata/core-properties",
		XMLDC:       "http://purl.org/dc/elements/1.1/",
		XMLDCTerms:  "http://purl.org/dc/terms/",
		XMLDCMIType: "http://purl.org/dc/dcmitype/",
		XMLXSI:      "http://www.w3.org/2001/XMLSchema-instance",
		Title:       m.Title,
		Creator:     m.Creator,
		Description: m.Description,
		LastBy:      m.Creator,
		Created:     stamp(m.Created),
		Modified:    stamp(m.Modified),
	})
}
