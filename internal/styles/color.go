package styles

import (
	"fmt"
	"strconv"
	"strings"
)

var namedColors = map[string]string{
	"black": "000000", "white": "FFFFFF", "red": "FF0000", "green": "008000",
	"blue": "0000FF", "yellow": "FFFF00", "orange": "FFA500", "purple": "800080",
	"gray": "808080", "grey": "808080", "silver": "C0C0C0", "maroon": "800000",
	"navy": "000080", "teal": "008080", "olive": "808000", "lime": "00FF00",
	"aqua": "00FFFF", "cyan": "00FFFF", "fuchsia": "FF00FF", "magenta": "FF00FF",
	"pink": "FFC0CB", "brown": "A52A2A",
}

// NormalizeColor converts a CSS-like color ("#abc", "#aabbcc", "aabbcc",
// "rgb(1, 2, 3)" or a basic color name) to an upper-case RRGGBB string.
// Anything unparseable yields "", meaning no color.
func NormalizeColor(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "inherit" || s == "transparent" || s == "auto" {
		return ""
	}
	if hex, ok := namedColors[s]; ok {
		return hex
	}
	if strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba(") {
		return parseRGB(s)
	}

	s = strings.TrimPrefix(s, "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	case 8: // RRGGBBAA, drop alpha
		s = s[:6]
	default:
		return ""
	}
	if _, err := strconv.ParseUint(s, 16, 32); err != nil {
		return ""
	}
	return strings.ToUpper(s)
}

func parseRGB(s string) string {
	open, end := strings.IndexByte(s, '('), strings.IndexByte(s, ')')
	if open < 0 || end < open {
		return ""
	}
	parts := strings.Split(s[open+1:end], ",")
	if len(parts) < 3 {
		return ""
	}
	var rgb [3]int
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return ""
		}
		rgb[i] = v
	}
	return fmt.Sprintf("%02X%02X%02X", rgb[0], rgb[1], rgb[2])
}

var highlightColors = map[string]string{
	"FFFF00": "yellow", "00FF00": "green", "00FFFF": "cyan", "FF00FF": "magenta",
	"0000FF": "blue", "FF0000": "red", "000080": "darkBlue", "008080": "darkCyan",
	"008000": "darkGreen", "800080": "darkMagenta", "800000": "darkRed",
	"808000": "darkYellow", "808080": "darkGray", "C0C0C0": "lightGray", "000000": "black",
}

// HighlightName maps an RRGGBB color to a named w:highlight value when one
// matches exactly.
func HighlightName(hex string) (string, bool) {
	name, ok := highlightColors[strings.ToUpper(hex)]
	return name, ok
}
