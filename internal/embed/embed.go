// Package embed renders video embeds, which have no native docx form, as a
// bordered text box holding a label and a link to the canonical video page.
package embed

import (
	"regexp"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/docxport/internal/units"
)

const (
	ProviderYouTube = "youtube"
	ProviderVimeo   = "vimeo"
)

// BoxHeight is the text box height in twips.
const BoxHeight = 1080

// LinkColor styles the link when no character style is given.
const LinkColor = "0563C1"

var (
	youtubeRE = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.|m\.)?(?:youtube\.com/(?:watch\?(?:[^#]*&)?v=|embed/|shorts/|live/|v/)|youtube-nocookie\.com/embed/|youtu\.be/)([A-Za-z0-9_-]{11})`)
	vimeoRE   = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.|player\.)?vimeo\.com/(?:video/|channels/[^/]+/)?(\d+)`)
)

// Video is a recognized embed source. Canonical is empty when the source URL
// matched no provider.
type Video struct {
	Provider  string
	ID        string
	Canonical string
}

// Parse extracts a canonical video reference from an embed or share URL.
func Parse(src string) Video {
	if m := youtubeRE.FindStringSubmatch(src); m != nil {
		return Video{Provider: ProviderYouTube, ID: m[1], Canonical: "https://www.youtube.com/watch?v=" + m[1]}
	}
	if m := vimeoRE.FindStringSubmatch(src); m != nil {
		return Video{Provider: ProviderVimeo, ID: m[1], Canonical: "https://vimeo.com/" + m[1]}
	}
	return Video{}
}

// Label is the caption shown above the link.
func (v Video) Label() string {
	switch v.Provider {
	case ProviderYouTube:
		return "YouTube video"
	case ProviderVimeo:
		return "Vimeo video"
	default:
		return "Embedded content"
	}
}

// Canvas supplies the package-bound pieces of the box: the drawing run,
// which needs a document-unique id, and the hyperlink relationship.
type Canvas interface {
	Shape(width, height int64, name string, line *docx.ALine) *docx.Run
	LinkID(url string) string
}

// Render builds the fallback paragraph for src, sized to widthTwips.
// linkStyle is the character style of the link; empty uses direct
// formatting.
func Render(src string, widthTwips int, linkStyle string, c Canvas) *docx.Paragraph {
	v := Parse(src)

	line := &docx.ALine{
		W:         12700,
		SolidFill: &docx.ASolidFill{SrgbClr: &docx.ASrgbClr{Val: "A6A6A6"}},
	}
	run := c.Shape(units.TwipToEMU(widthTwips), units.TwipToEMU(BoxHeight), "Embed", line)

	if d, ok := run.Children[0].(*docx.Drawing); ok && d.Inline != nil {
		shape := d.Inline.Graphic.GraphicData.Shape
		shape.CNvCnPr = nil
		shape.CNvSpPr = &docx.WPSCNvSpPr{TxBox: 1}
		shape.SpPr.NoFill = nil
		shape.SpPr.SolidFill = &docx.ASolidFill{SrgbClr: &docx.ASrgbClr{Val: "F2F2F2"}}
		shape.TextBox = &docx.WPSTextBox{Content: &docx.WTextBoxContent{
			Paragraphs: []docx.Paragraph{labelParagraph(v), linkParagraph(v, src, linkStyle, c)},
		}}
		shape.BodyPr = &docx.WPSBodyPr{
			Wrap: "square", Anchor: "ctr",
			LIns: 91440, TIns: 45720, RIns: 91440, BIns: 45720,
		}
	}

	return &docx.Paragraph{Children: []interface{}{run}}
}

func centered() *docx.ParagraphProperties {
	return &docx.ParagraphProperties{
		Justification: &docx.Justification{Val: "center"},
		Spacing:       &docx.Spacing{Before: 0, Line: 240, LineRule: "auto"},
	}
}

func labelParagraph(v Video) docx.Paragraph {
	return docx.Paragraph{
		Properties: centered(),
		Children: []interface{}{&docx.Run{
			RunProperties: &docx.RunProperties{Bold: &docx.Bold{}},
			Children:      []interface{}{&docx.Text{Text: v.Label()}},
		}},
	}
}

// linkParagraph links to the canonical URL, or shows the raw source as
// plain text when there is nothing to link to.
func linkParagraph(v Video, src, linkStyle string, c Canvas) docx.Paragraph {
	p := docx.Paragraph{Properties: centered()}
	if v.Canonical == "" {
		text := src
		if text == "" {
			text = "(no link)"
		}
		p.Children = append(p.Children, &docx.Run{
			RunProperties: &docx.RunProperties{Color: &docx.Color{Val: "7F7F7F"}},
			Children:      []interface{}{&docx.Text{Text: text, XMLSpace: "preserve"}},
		})
		return p
	}
	rp := &docx.RunProperties{}
	if linkStyle != "" {
		rp.RunStyle = &docx.RunStyle{Val: linkStyle}
	} else {
		rp.Color = &docx.Color{Val: LinkColor}
		rp.Underline = &docx.Underline{Val: "single"}
	}
	p.Children = append(p.Children, &docx.Hyperlink{
		ID: c.LinkID(v.Canonical),
		Run: docx.Run{
			RunProperties: rp,
			Children:      []interface{}{&docx.Text{Text: v.Canonical}},
		},
	})
	return p
}
