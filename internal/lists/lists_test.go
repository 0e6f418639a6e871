package lists

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docxport/internal/doctree"
	"github.com/dgallion1/docxport/internal/styles"
)

func item(text string, nested ...*doctree.Node) *doctree.Node {
	content := []*doctree.Node{doctree.New("paragraph", nil, doctree.NewText(text))}
	return doctree.New("listItem", nil, append(content, nested...)...)
}

func TestBulletListHasNoInstance(t *testing.T) {
	list := doctree.New("bulletList", nil, item("a"), item("b"))
	plan := Assign(doctree.New("doc", nil, list), nil)

	info, ok := plan.Lookup(list)
	require.True(t, ok)
	assert.Equal(t, styles.BulletList, info.Reference)
	assert.Equal(t, 0, info.Level)
	assert.False(t, info.Numbered())
	assert.Empty(t, plan.Instances())
}

func TestNestedOrderedListsGetDistinctInstances(t *testing.T) {
	inner := doctree.New("orderedList", nil, item("y"))
	outer := doctree.New("orderedList", nil, item("x", inner))
	plan := Assign(doctree.New("doc", nil, outer), nil)

	o, _ := plan.Lookup(outer)
	i, _ := plan.Lookup(inner)
	assert.Equal(t, 0, o.Level)
	assert.Equal(t, 1, i.Level)
	assert.NotEqual(t, o.Instance, i.Instance)
	assert.Equal(t, 1, o.Instance)
	assert.Equal(t, 2, i.Instance)
}

func TestSeparateTopLevelListsRestart(t *testing.T) {
	first := doctree.New("orderedList", nil, item("a"))
	second := doctree.New("orderedList", map[string]any{"start": int64(5)}, item("b"))
	plan := Assign(doctree.New("doc", nil, first, doctree.New("paragraph", nil), second), nil)

	a, _ := plan.Lookup(first)
	b, _ := plan.Lookup(second)
	assert.NotEqual(t, a.Instance, b.Instance)
	assert.Equal(t, 1, a.Start)
	assert.Equal(t, 5, b.Start)

	inst := plan.Instances()
	require.Len(t, inst, 2)
	assert.Less(t, inst[0].Instance, inst[1].Instance)
}

func TestMixedNesting(t *testing.T) {
	ordered := doctree.New("orderedList", nil, item("n"))
	bullets := doctree.New("bulletList", nil, item("b", ordered))
	plan := Assign(doctree.New("doc", nil, bullets), nil)

	info, _ := plan.Lookup(ordered)
	assert.Equal(t, 1, info.Level)
	assert.True(t, info.Numbered())
}

func TestInjectedGenerator(t *testing.T) {
	ids := []int{100, 200}
	gen := func() int {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	a := doctree.New("orderedList", nil, item("a"))
	b := doctree.New("orderedList", nil, item("b"))
	plan := Assign(doctree.New("doc", nil, a, b), gen)

	ia, _ := plan.Lookup(a)
	ib, _ := plan.Lookup(b)
	assert.Equal(t, 100, ia.Instance)
	assert.Equal(t, 200, ib.Instance)
}

func TestTaskList(t *testing.T) {
	task := doctree.New("taskList", nil, doctree.New("taskItem", map[string]any{"checked": true}))
	plan := Assign(doctree.New("doc", nil, task), nil)
	info, ok := plan.Lookup(task)
	require.True(t, ok)
	assert.True(t, info.Task)
	assert.False(t, info.Numbered())
	assert.True(t, IsList("taskList"))
	assert.False(t, IsList("listItem"))
}

func TestLevelCapped(t *testing.T) {
	var list *doctree.Node
	innermost := doctree.New("bulletList", nil, item("deep"))
	list = innermost
	for i := 0; i < 12; i++ {
		list = doctree.New("bulletList", nil, item("x", list))
	}
	plan := Assign(doctree.New("doc", nil, list), nil)
	info, _ := plan.Lookup(innermost)
	assert.Equal(t, styles.MaxLevels-1, info.Level)
}
