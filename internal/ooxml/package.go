package ooxml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
)

const (
	contentTypesName = "[Content_Types].xml"
	documentRelsName = "word/_rels/document.xml.rels"
	documentName     = "word/document.xml"
	stylesName       = "word/styles.xml"
	numberingName    = "word/numbering.xml"
	headerName       = "word/header1.xml"
	footerName       = "word/footer1.xml"
	coreName         = "docProps/core.xml"

	relBase = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"

	// SVGExtURI identifies the DrawingML extension that pairs a raster
	// blip with an SVG original.
	SVGExtURI = "{96DAC541-7B7A-43D3-8B79-37D633B846F1}"
	nsASVG    = "http://schemas.microsoft.com/office/drawing/2016/SVG/main"
)

// Parts are the generated parts merged into the writer's package. Nil
// parts are left as the writer produced them (or absent).
type Parts struct {
	Styles    []byte
	Numbering []byte
	Header    []byte
	Footer    []byte
	Core      []byte

	// SVG maps the relationship id of a raster fallback image to the id of
	// the SVG it stands in for.
	SVG map[string]string
}

var mediaTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"svg":  "image/svg+xml",
	"webp": "image/webp",
}

var partTypes = map[string]string{
	documentName:            "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml",
	stylesName:              "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml",
	numberingName:           "application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml",
	headerName:              "application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml",
	footerName:              "application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml",
	"word/fontTable.xml":    "application/vnd.openxmlformats-officedocument.wordprocessingml.fontTable+xml",
	"word/theme/theme1.xml": "application/vnd.openxmlformats-officedocument.theme+xml",
	coreName:                "application/vnd.openxmlformats-package.core-properties+xml",
	"docProps/app.xml":      "application/vnd.openxmlformats-officedocument.extended-properties+xml",
}

// Finalize rewrites a package produced by the document writer: it installs
// the generated parts, registers their relationships and content types,
// pairs SVG images with their raster fallbacks, and writes every entry in
// sorted order with the content types first.
func Finalize(src []byte, parts Parts) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(src), int64(len(src)))
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}
	files := make(map[string][]byte, len(zr.File)+4)
	for _, f := range zr.File {
		data, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		files[f.Name] = data
	}
	if files[documentName] == nil || files[documentRelsName] == nil {
		return nil, fmt.Errorf("package has no main document")
	}

	rels, err := parseRels(files[documentRelsName])
	if err != nil {
		return nil, fmt.Errorf("read relationships: %w", err)
	}

	doc := files[documentName]
	set := func(name string, data []byte) {
		if data != nil {
			files[name] = data
		}
	}
	set(stylesName, parts.Styles)
	set(coreName, parts.Core)
	if parts.Numbering != nil {
		files[numberingName] = parts.Numbering
		rels.add("numbering", "numbering.xml")
	}
	if parts.Header != nil {
		files[headerName] = parts.Header
		id := rels.add("header", "header1.xml")
		doc = bytes.ReplaceAll(doc, []byte(`r:id="`+HeaderRelID+`"`), []byte(`r:id="`+id+`"`))
	}
	if parts.Footer != nil {
		files[footerName] = parts.Footer
		id := rels.add("footer", "footer1.xml")
		doc = bytes.ReplaceAll(doc, []byte(`r:id="`+FooterRelID+`"`), []byte(`r:id="`+id+`"`))
	}

	doc, err = pairSVG(doc, parts.SVG)
	if err != nil {
		return nil, err
	}
	files[documentName] = doc

	if files[documentRelsName], err = rels.marshal(); err != nil {
		return nil, fmt.Errorf("write relationships: %w", err)
	}
	if files[contentTypesName], err = contentTypes(files); err != nil {
		return nil, fmt.Errorf("write content types: %w", err)
	}
	return writeSorted(files)
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func writeSorted(files map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		if name != contentTypesName {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	names = append([]string{contentTypesName}, names...)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close package: %w", err)
	}
	return buf.Bytes(), nil
}

type relationships struct {
	XMLName xml.Name            `xml:"Relationships"`
	Xmlns   string              `xml:"xmlns,attr"`
	Rels    []docx.Relationship `xml:"Relationship"`

	next int
}

func parseRels(data []byte) (*relationships, error) {
	r := &relationships{}
	if err := xml.Unmarshal(data, r); err != nil {
		return nil, err
	}
	for _, rel := range r.Rels {
		if n, err := strconv.Atoi(strings.TrimPrefix(rel.ID, "rId")); err == nil && n > r.next {
			r.next = n
		}
	}
	return r, nil
}

// add appends a relationship and returns its id.
func (r *relationships) add(kind, target string) string {
	r.next++
	id := "rId" + strconv.Itoa(r.next)
	r.Rels = append(r.Rels, docx.Relationship{ID: id, Type: relBase + kind, Target: target})
	return id
}

func (r *relationships) marshal() ([]byte, error) {
	r.Xmlns = docx.XMLNS_REL
	return marshalPart(r)
}

type typesPart struct {
	XMLName   xml.Name       `xml:"Types"`
	Xmlns     string         `xml:"xmlns,attr"`
	Defaults  []typeDefault  `xml:"Default"`
	Overrides []typeOverride `xml:"Override"`
}

type typeDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type typeOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

func contentTypes(files map[string][]byte) ([]byte, error) {
	part := typesPart{
		Xmlns: "http://schemas.openxmlformats.org/package/2006/content-types",
		Defaults: []typeDefault{
			{Extension: "rels", ContentType: "application/vnd.openxmlformats-package.relationships+xml"},
			{Extension: "xml", ContentType: "application/xml"},
		},
	}

	exts := map[string]bool{}
	var overrides []string
	for name := range files {
		if _, ok := partTypes[name]; ok {
			overrides = append(overrides, name)
			continue
		}
		if strings.HasPrefix(name, "word/media/") {
			if ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), ".")); mediaTypes[ext] != "" {
				exts[ext] = true
			}
		}
	}

	sortedExts := make([]string, 0, len(exts))
	for ext := range exts {
		sortedExts = append(sortedExts, ext)
	}
	sort.Strings(sortedExts)
	for _, ext := range sortedExts {
		part.Defaults = append(part.Defaults, typeDefault{Extension: ext, ContentType: mediaTypes[ext]})
	}

	sort.Strings(overrides)
	for _, name := range overrides {
		part.Overrides = append(part.Overrides, typeOverride{PartName: "/" + name, ContentType: partTypes[name]})
	}
	return marshalPart(part)
}

// pairSVG adds the svgBlip extension to each raster blip that stands in
// for an SVG image.
func pairSVG(doc []byte, pairs map[string]string) ([]byte, error) {
	if len(pairs) == 0 {
		return doc, nil
	}
	ids := make([]string, 0, len(pairs))
	for id := range pairs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, pngID := range ids {
		plain, err := xml.Marshal(docx.ABlip{Embed: pngID, Cstate: "print"})
		if err != nil {
			return nil, fmt.Errorf("svg %s: %w", pngID, err)
		}
		open := bytes.TrimSuffix(plain, []byte("</a:blip>"))
		ext := fmt.Sprintf(`<a:extLst><a:ext uri="%s"><asvg:svgBlip xmlns:asvg="%s" r:embed="%s"></asvg:svgBlip></a:ext></a:extLst></a:blip>`,
			SVGExtURI, nsASVG, pairs[pngID])
		extended := append(append([]byte{}, open...), ext...)
		if !bytes.Contains(doc, plain) {
			return nil, fmt.Errorf("svg %s: fallback image not found in document", pngID)
		}
		doc = bytes.ReplaceAll(doc, plain, extended)
	}
	return doc, nil
}
