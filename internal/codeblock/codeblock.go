// Package codeblock renders source code as shaded monospace paragraphs.
package codeblock

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/docxport/internal/highlight"
	"github.com/dgallion1/docxport/internal/styles"
)

const DefaultFont = "Consolas"

// Renderer turns a code block into one paragraph per source line. A nil
// Tokenizer renders everything in the theme's foreground color.
type Renderer struct {
	Tokenizer highlight.Tokenizer
	Theme     string
	Font      string
	// Style is the paragraph style id. Empty leaves lines unstyled.
	Style string
	Log   *slog.Logger
}

// Render never fails: unknown languages and tokenizer errors fall back to
// single-color text.
func (r *Renderer) Render(ctx context.Context, code, language string) []*docx.Paragraph {
	h := r.tokens(ctx, code, language)

	font := r.Font
	if font == "" {
		font = DefaultFont
	}

	paras := make([]*docx.Paragraph, 0, len(h.Lines))
	for _, line := range h.Lines {
		p := &docx.Paragraph{Properties: &docx.ParagraphProperties{}}
		if r.Style != "" {
			p.Properties.Style = &docx.Style{Val: r.Style}
		}
		if h.Background != "" {
			p.Properties.Shade = &docx.Shade{Val: "clear", Color: "auto", Fill: h.Background}
		}
		for _, tok := range line {
			p.Children = append(p.Children, tokenRun(tok, font))
		}
		paras = append(paras, p)
	}
	return paras
}

func (r *Renderer) tokens(ctx context.Context, code, language string) *highlight.Highlighted {
	if r.Tokenizer == nil || strings.TrimSpace(language) == "" {
		return highlight.Plain(code, r.Theme)
	}
	h, err := r.Tokenizer.Tokenize(ctx, code, language, r.Theme)
	if err != nil {
		if r.Log != nil {
			level := slog.LevelWarn
			if errors.Is(err, highlight.ErrUnsupportedLanguage) {
				level = slog.LevelDebug
			}
			r.Log.Log(ctx, level, "code block rendered without highlighting", "language", language, "error", err)
		}
		return highlight.Plain(code, r.Theme)
	}
	return h
}

func tokenRun(tok highlight.Token, font string) *docx.Run {
	run := &docx.Run{
		RunProperties: &docx.RunProperties{
			Fonts: &docx.RunFonts{ASCII: font, HAnsi: font, EastAsia: font},
		},
	}
	if color := styles.NormalizeColor(tok.Color); color != "" {
		run.RunProperties.Color = &docx.Color{Val: color}
	}
	for i, part := range strings.Split(tok.Content, "\t") {
		if i > 0 {
			run.Children = append(run.Children, &docx.Tab{})
		}
		if part != "" {
			run.Children = append(run.Children, &docx.Text{Text: part, XMLSpace: "preserve"})
		}
	}
	return run
}
