package highlight

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/hcl"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	sqllang "github.com/smacker/go-tree-sitter/sql"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/smacker/go-tree-sitter/yaml"
)

// TreeSitter tokenizes with tree-sitter grammars. Parsers are not shared
// across calls, so one TreeSitter can serve concurrent exports.
type TreeSitter struct{}

func NewTreeSitter() *TreeSitter { return &TreeSitter{} }

// languageFor maps code block language names and common aliases to grammars.
func languageFor(name string) *sitter.Language {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "go", "golang":
		return golang.GetLanguage()
	case "python", "py":
		return python.GetLanguage()
	case "javascript", "js", "jsx", "node":
		return javascript.GetLanguage()
	case "typescript", "ts", "tsx":
		return typescript.GetLanguage()
	case "rust", "rs":
		return rust.GetLanguage()
	case "sql":
		return sqllang.GetLanguage()
	case "yaml", "yml":
		return yaml.GetLanguage()
	case "hcl", "terraform", "tf":
		return hcl.GetLanguage()
	default:
		return nil
	}
}

// Supports reports whether a grammar exists for language.
func (ts *TreeSitter) Supports(language string) bool {
	return languageFor(language) != nil
}

func (ts *TreeSitter) Tokenize(ctx context.Context, code, language, theme string) (*Highlighted, error) {
	lang := languageFor(language)
	if lang == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}

	src := []byte(strings.ReplaceAll(code, "\r\n", "\n"))
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", language, err)
	}
	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("parse %s: empty tree", language)
	}

	th := ThemeByName(theme)
	var spans []span
	collect(root, &spans)

	// Spans arrive in source order; gaps (whitespace, unclassified text)
	// take the foreground color.
	var flat []Token
	pos := uint32(0)
	for _, s := range spans {
		if s.start < pos {
			continue
		}
		if s.start > pos {
			flat = append(flat, Token{Content: string(src[pos:s.start]), Color: th.Foreground})
		}
		flat = append(flat, Token{Content: string(src[s.start:s.end]), Color: th.color(s.class)})
		pos = s.end
	}
	if int(pos) < len(src) {
		flat = append(flat, Token{Content: string(src[pos:]), Color: th.Foreground})
	}

	return &Highlighted{
		Lines:      splitTokens(flat),
		Background: th.Background,
		Foreground: th.Foreground,
	}, nil
}

type span struct {
	start, end uint32
	class      class
}

func collect(n *sitter.Node, out *[]span) {
	if n == nil {
		return
	}
	c, atomic := classify(n)
	if atomic || n.ChildCount() == 0 {
		if n.EndByte() > n.StartByte() && c != classDefault {
			*out = append(*out, span{start: n.StartByte(), end: n.EndByte(), class: c})
		}
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		collect(n.Child(i), out)
	}
}

var (
	numberTypes = map[string]bool{
		"int_literal": true, "float_literal": true, "imaginary_literal": true, "integer": true,
		"float": true, "number": true, "numeric_literal": true, "integer_literal": true,
	}
	constantTypes = map[string]bool{
		"true": true, "false": true, "nil": true, "none": true, "null": true, "undefined": true,
		"boolean": true, "null_scalar": true, "boolean_scalar": true, "iota": true,
	}
	typeTypes = map[string]bool{
		"type_identifier": true, "primitive_type": true, "predefined_type": true,
	}
	propertyTypes = map[string]bool{
		"field_identifier": true, "property_identifier": true, "shorthand_property_identifier": true,
	}
	functionParents = map[string]bool{
		"function_declaration": true, "method_declaration": true, "function_definition": true,
		"function_item": true, "method_definition": true, "call_expression": true, "call": true,
	}
)

// classify picks a color class for n. atomic nodes are colored as a whole
// without descending into their children.
func classify(n *sitter.Node) (class, bool) {
	t := n.Type()
	switch {
	case strings.Contains(t, "comment"):
		return classComment, true
	case strings.Contains(t, "string") || t == "char_literal" || t == "rune_literal" || t == "template_string":
		return classString, true
	case numberTypes[t]:
		return classNumber, true
	case constantTypes[t]:
		return classConstant, true
	case typeTypes[t]:
		return classType, true
	case propertyTypes[t]:
		return classProperty, true
	case t == "identifier" && isFunctionName(n):
		return classFunction, true
	case !n.IsNamed() && isWord(t):
		return classKeyword, true
	case !n.IsNamed():
		return classOperator, true
	}
	return classDefault, false
}

func isFunctionName(n *sitter.Node) bool {
	p := n.Parent()
	if p == nil || !functionParents[p.Type()] {
		return false
	}
	target := p.ChildByFieldName("name")
	if target == nil {
		target = p.ChildByFieldName("function")
	}
	return target != nil && target.StartByte() == n.StartByte() && target.EndByte() == n.EndByte()
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return true
}

// splitTokens breaks a flat token stream into lines at newlines.
func splitTokens(flat []Token) [][]Token {
	lines := [][]Token{nil}
	for _, tok := range flat {
		parts := strings.Split(tok.Content, "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, nil)
			}
			if part != "" {
				last := len(lines) - 1
				lines[last] = append(lines[last], Token{Content: part, Color: tok.Color})
			}
		}
	}
	if n := len(lines); n > 1 && len(lines[n-1]) == 0 {
		lines = lines[:n-1]
	}
	return lines
}
