package tree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stringTree is a fixed tree of strings used to exercise Base and Walk.
type stringTree struct {
	Base[string]
	children map[string][]string
	parents  map[string]string
}

func newStringTree(edges map[string][]string) *stringTree {
	t := &stringTree{children: edges, parents: make(map[string]string)}
	for parent, kids := range edges {
		for _, k := range kids {
			t.parents[k] = parent
		}
	}
	return t
}

func (t *stringTree) Root() string { return "" }
func (t *stringTree) Parent(n string) string { return t.parents[n] }
func (t *stringTree) IsLeaf(n string) bool { return len(t.children[n]) == 0 }
func (t *stringTree) Children(n string) []string { return t.Arrange(t.children[n]) }

type toggleFilter struct {
	on     bool
	prefix string
}

func (f *toggleFilter) Active() bool { return f.on }
func (f *toggleFilter) Accept(n string) bool { return strings.HasPrefix(n, f.prefix) }

var _ DataProvider[string] = (*stringTree)(nil)

func TestBase_Arrange(t *testing.T) {
	tr := newStringTree(map[string][]string{
		"": {"beta", "alpha", "gamma", "apex"},
	})

	assert.Equal(t, []string{"beta", "alpha", "gamma", "apex"}, tr.Children(""))

	tr.SetComparator(strings.Compare)
	assert.Equal(t, []string{"alpha", "apex", "beta", "gamma"}, tr.Children(""))

	f := &toggleFilter{prefix: "a"}
	tr.SetFilters(f)
	assert.Len(t, tr.Children(""), 4, "inactive filter accepts everything")

	f.on = true
	assert.Equal(t, []string{"alpha", "apex"}, tr.Children(""))
	assert.True(t, tr.Accepts("abc"))
	assert.False(t, tr.Accepts("xyz"))

	tr.SetFilters()
	assert.Empty(t, tr.Filters())
	assert.Len(t, tr.Children(""), 4)
}

func TestBase_ArrangeStable(t *testing.T) {
	tr := newStringTree(map[string][]string{"": {"b1", "a1", "b2", "a2"}})
	tr.SetComparator(func(a, b string) int { return int(a[0]) - int(b[0]) })
	assert.Equal(t, []string{"a1", "a2", "b1", "b2"}, tr.Children(""))
}

func TestFilterFunc(t *testing.T) {
	f := FilterFunc[string](func(n string) bool { return len(n) > 3 })
	assert.True(t, f.Active())
	assert.True(t, f.Accept("long"))
	assert.False(t, f.Accept("no"))
}

func TestBase_Notify(t *testing.T) {
	tr := newStringTree(nil)

	var got []string
	cancelA := tr.Subscribe(func(e Event[string]) { got = append(got, "a:"+e.Kind.String()+":"+e.Node) })
	tr.Subscribe(func(e Event[string]) { got = append(got, "b:"+e.Kind.String()+":"+e.Node) })

	tr.Notify(Event[string]{Kind: NodeInserted, Node: "x"})
	cancelA()
	cancelA()
	tr.Notify(Event[string]{Kind: NodeRemoved, Node: "x"})

	assert.Equal(t, []string{"a:inserted:x", "b:inserted:x", "b:removed:x"}, got)
}

func TestBase_NotifyReentrant(t *testing.T) {
	tr := newStringTree(map[string][]string{"": {"a"}})
	var seen []string
	tr.Subscribe(func(e Event[string]) {
		seen = tr.Children(e.Parent)
	})
	tr.Notify(Event[string]{Kind: NodeChanged, Node: "a", Parent: ""})
	assert.Equal(t, []string{"a"}, seen)
}

func TestWalk(t *testing.T) {
	tr := newStringTree(map[string][]string{
		"":      {"sets", "loose"},
		"sets":  {"alien", "aliens"},
		"loose": {"heat"},
	})
	tr.SetComparator(strings.Compare)

	var visited []string
	Walk[string](tr, func(n string, depth int) bool {
		visited = append(visited, strings.Repeat(" ", depth)+n)
		return true
	})
	require.Len(t, visited, 6)
	assert.Equal(t, []string{"", " loose", "  heat", " sets", "  alien", "  aliens"}, visited)

	visited = nil
	Walk[string](tr, func(n string, depth int) bool {
		visited = append(visited, n)
		return n != "sets"
	})
	assert.Equal(t, []string{"", "loose", "heat", "sets"}, visited)
}
