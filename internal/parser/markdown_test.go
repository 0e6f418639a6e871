package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/docxport/internal/doctree"
)

func parseMarkdown(t *testing.T, input, filename string) *doctree.Node {
	t.Helper()
	p := &MarkdownParser{}
	tree, err := p.Parse(strings.NewReader(input), filename)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Type != "doc" {
		t.Fatalf("expected doc root, got %q", tree.Type)
	}
	return tree
}

func types(nodes []*doctree.Node) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.Type)
	}
	return out
}

func TestMarkdownParser_HeadingsAndMarks(t *testing.T) {
	input := `# Title

Intro *text* and **bold**.

## Section A

Section A content.
`
	tree := parseMarkdown(t, input, "doc.md")

	if got := tree.String("title", ""); got != "Title" {
		t.Errorf("expected title %q, got %q", "Title", got)
	}
	want := []string{"heading", "paragraph", "heading", "paragraph"}
	if got := strings.Join(types(tree.Content), ","); got != strings.Join(want, ",") {
		t.Fatalf("expected blocks %v, got %s", want, got)
	}
	if lvl := tree.Content[2].Int("level", 0); lvl != 2 {
		t.Errorf("expected level 2, got %d", lvl)
	}

	intro := tree.Content[1].Content
	if len(intro) != 5 {
		t.Fatalf("expected 5 text leaves, got %d", len(intro))
	}
	if _, ok := intro[1].HasMark("italic"); !ok || intro[1].Text != "text" {
		t.Errorf("expected italic %q, got %+v", "text", intro[1])
	}
	if _, ok := intro[3].HasMark("bold"); !ok || intro[3].Text != "bold" {
		t.Errorf("expected bold %q, got %+v", "bold", intro[3])
	}
	if got := doctree.PlainText(tree.Content[1]); got != "Intro text and bold." {
		t.Errorf("expected %q, got %q", "Intro text and bold.", got)
	}
}

func TestMarkdownParser_CodeBlocks(t *testing.T) {
	input := "```go\nx := 1\ny := 2\n```\n\n    indented\n"
	tree := parseMarkdown(t, input, "api.md")

	if len(tree.Content) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(tree.Content))
	}
	fenced := tree.Content[0]
	if fenced.Type != "codeBlock" || fenced.String("language", "") != "go" {
		t.Errorf("expected go code block, got %+v", fenced)
	}
	if got := doctree.PlainText(fenced); got != "x := 1\ny := 2" {
		t.Errorf("expected code %q, got %q", "x := 1\ny := 2", got)
	}
	if got := doctree.PlainText(tree.Content[1]); got != "indented" {
		t.Errorf("expected %q, got %q", "indented", got)
	}
}

func TestMarkdownParser_Lists(t *testing.T) {
	input := "- a\n- b\n\n---\n\n3. x\n4. y\n"
	tree := parseMarkdown(t, input, "lists.md")

	want := "bulletList,horizontalRule,orderedList"
	if got := strings.Join(types(tree.Content), ","); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	bullets := tree.Content[0]
	if len(bullets.Content) != 2 || bullets.Content[0].Type != "listItem" {
		t.Fatalf("expected 2 list items, got %+v", bullets.Content)
	}
	if got := doctree.PlainText(bullets.Content[1]); got != "b" {
		t.Errorf("expected %q, got %q", "b", got)
	}
	if start := tree.Content[2].Int("start", 1); start != 3 {
		t.Errorf("expected start 3, got %d", start)
	}
}

func TestMarkdownParser_TaskList(t *testing.T) {
	tree := parseMarkdown(t, "- [ ] todo\n- [x] done\n", "tasks.md")

	if len(tree.Content) != 1 || tree.Content[0].Type != "taskList" {
		t.Fatalf("expected a task list, got %v", types(tree.Content))
	}
	items := tree.Content[0].Content
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Bool("checked", true) || !items[1].Bool("checked", false) {
		t.Errorf("unexpected checked states: %v, %v", items[0].Attrs, items[1].Attrs)
	}
	if got := doctree.PlainText(items[0]); got != "todo" {
		t.Errorf("expected %q, got %q", "todo", got)
	}
}

func TestMarkdownParser_Table(t *testing.T) {
	input := "| a | b |\n|:--|--:|\n| 1 | 2 |\n"
	tree := parseMarkdown(t, input, "table.md")

	if len(tree.Content) != 1 || tree.Content[0].Type != "table" {
		t.Fatalf("expected a table, got %v", types(tree.Content))
	}
	rows := tree.Content[0].Content
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Content[0].Type != "tableHeader" || rows[1].Content[0].Type != "tableCell" {
		t.Errorf("unexpected cell types: %s, %s", rows[0].Content[0].Type, rows[1].Content[0].Type)
	}
	if got := rows[1].Content[1].Content[0].String("textAlign", ""); got != "right" {
		t.Errorf("expected right alignment, got %q", got)
	}
	if got := doctree.PlainText(rows[1].Content[1]); got != "2" {
		t.Errorf("expected %q, got %q", "2", got)
	}
}

func TestMarkdownParser_LinksAndImages(t *testing.T) {
	input := "[go](https://go.dev \"Go\") ~~old~~ `code`\n\n![a cat](cat.png)\n"
	tree := parseMarkdown(t, input, "links.md")

	leaves := tree.Content[0].Content
	m, ok := leaves[0].HasMark("link")
	if !ok || m.String("href", "") != "https://go.dev" || m.String("title", "") != "Go" {
		t.Errorf("expected link mark, got %+v", leaves[0])
	}
	var struck, code bool
	for _, l := range leaves {
		if _, ok := l.HasMark("strike"); ok && l.Text == "old" {
			struck = true
		}
		if _, ok := l.HasMark("code"); ok && l.Text == "code" {
			code = true
		}
	}
	if !struck || !code {
		t.Errorf("expected strike and code leaves, got %+v", leaves)
	}

	img := tree.Content[1].Content[0]
	if img.Type != "image" || img.String("src", "") != "cat.png" || img.String("alt", "") != "a cat" {
		t.Errorf("unexpected image node: %+v", img)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	tree := parseMarkdown(t, "", "empty.md")
	if len(tree.Content) != 0 {
		t.Errorf("expected 0 blocks for empty input, got %d", len(tree.Content))
	}
}

func TestMarkdownParser_TitleStripping(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"readme.md", "readme"},
		{"notes.markdown", "notes"},
		{"dir/plain.md", "plain"},
	}
	for _, tt := range tests {
		tree := parseMarkdown(t, "text", tt.filename)
		if got := tree.String("title", ""); got != tt.want {
			t.Errorf("filename=%q: expected title %q, got %q", tt.filename, tt.want, got)
		}
	}
}
