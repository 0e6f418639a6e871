// Package highlight turns source code into colored tokens for code blocks.
package highlight

import (
	"context"
	"errors"
	"strings"
)

// ErrUnsupportedLanguage is returned for languages without a grammar.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Token is a run of source text drawn in one color (RRGGBB).
type Token struct {
	Content string
	Color   string
}

// Highlighted is tokenized source split into lines.
type Highlighted struct {
	Lines      [][]Token
	Background string
	Foreground string
}

// Tokenizer colors source code for a language and theme.
type Tokenizer interface {
	Tokenize(ctx context.Context, code, language, theme string) (*Highlighted, error)
}

// Plain returns code as single-color lines in the theme's foreground.
func Plain(code, theme string) *Highlighted {
	th := ThemeByName(theme)
	h := &Highlighted{Background: th.Background, Foreground: th.Foreground}
	for _, line := range SplitLines(code) {
		var toks []Token
		if line != "" {
			toks = []Token{{Content: line, Color: th.Foreground}}
		}
		h.Lines = append(h.Lines, toks)
	}
	return h
}

// SplitLines splits on newlines, normalizing CRLF and dropping one trailing
// newline. Empty input is a single empty line.
func SplitLines(code string) []string {
	code = strings.ReplaceAll(code, "\r\n", "\n")
	code = strings.TrimSuffix(code, "\n")
	return strings.Split(code, "\n")
}
