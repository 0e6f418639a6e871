package highlight

type class int

const (
	classDefault class = iota
	classKeyword
	classString
	classNumber
	classComment
	classType
	classFunction
	classProperty
	classConstant
	classOperator
)

// Theme maps token classes to colors.
type Theme struct {
	Name       string
	Background string
	Foreground string
	colors     map[class]string
}

func (t Theme) color(c class) string {
	if col, ok := t.colors[c]; ok {
		return col
	}
	return t.Foreground
}

const DefaultTheme = "github-light"

var themes = map[string]Theme{
	"github-light": {
		Name: "github-light", Background: "F6F8FA", Foreground: "24292F",
		colors: map[class]string{
			classKeyword:  "CF222E",
			classString:   "0A3069",
			classNumber:   "0550AE",
			classComment:  "6E7781",
			classType:     "953800",
			classFunction: "8250DF",
			classProperty: "0550AE",
			classConstant: "0550AE",
		},
	},
	"github-dark": {
		Name: "github-dark", Background: "0D1117", Foreground: "C9D1D9",
		colors: map[class]string{
			classKeyword:  "FF7B72",
			classString:   "A5D6FF",
			classNumber:   "79C0FF",
			classComment:  "8B949E",
			classType:     "FFA657",
			classFunction: "D2A8FF",
			classProperty: "79C0FF",
			classConstant: "79C0FF",
		},
	},
	"monokai": {
		Name: "monokai", Background: "272822", Foreground: "F8F8F2",
		colors: map[class]string{
			classKeyword:  "F92672",
			classString:   "E6DB74",
			classNumber:   "AE81FF",
			classComment:  "75715E",
			classType:     "66D9EF",
			classFunction: "A6E22E",
			classConstant: "AE81FF",
			classOperator: "F92672",
		},
	},
}

// ThemeByName returns a theme, falling back to the default for unknown names.
func ThemeByName(name string) Theme {
	if th, ok := themes[name]; ok {
		return th
	}
	return themes[DefaultTheme]
}

// Themes lists the available theme names.
func Themes() []string {
	return []string{"github-dark", "github-light", "monokai"}
}
