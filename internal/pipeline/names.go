package pipeline

import (
	"path/filepath"
	"strings"
)

// OutputName turns an input filename into the .docx name offered for
// download. Path components and characters that break a
// Content-Disposition header are dropped.
func OutputName(input string) string {
	base := filepath.Base(strings.ReplaceAll(input, `\`, "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == '"', r == '/', r == ';':
			return -1
		}
		return r
	}, base)
	base = strings.TrimSpace(base)
	if base == "" || base == "." {
		base = "document"
	}
	return base + ".docx"
}
