// Package tree defines the contract between hierarchical data and the views
// that render it. A DataProvider exposes a rooted tree, an optional set of
// filters and a sort order, and notifies listeners about structural changes.
package tree

// EventKind identifies a structural change.
type EventKind int

const (
	NodeInserted EventKind = iota
	NodeChanged
	NodeRemoved
)

func (k EventKind) String() string {
	switch k {
	case NodeInserted:
		return "inserted"
	case NodeChanged:
		return "changed"
	case NodeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is delivered to listeners after a node was inserted, changed or
// removed. Parent is the node's parent at the time of the event.
type Event[N comparable] struct {
	Kind   EventKind
	Node   N
	Parent N
}

// Listener receives tree events.
type Listener[N comparable] func(Event[N])

// Filter decides whether a node is visible. Inactive filters accept everything.
type Filter[N comparable] interface {
	Active() bool
	Accept(node N) bool
}

// FilterFunc adapts a plain function to an always-active Filter.
type FilterFunc[N comparable] func(node N) bool

func (f FilterFunc[N]) Active() bool { return true }
func (f FilterFunc[N]) Accept(node N) bool { return f(node) }

// Comparator orders siblings. It returns a negative number when a sorts
// before b, zero when they are equal and a positive number otherwise.
type Comparator[N comparable] func(a, b N) int

// DataProvider exposes a tree of nodes to a view.
type DataProvider[N comparable] interface {
	Root() N
	Parent(node N) N
	// Children returns the filtered and sorted children of node.
	Children(node N) []N
	IsLeaf(node N) bool

	Filters() []Filter[N]
	SetFilters(filters ...Filter[N])
	Comparator() Comparator[N]
	SetComparator(cmp Comparator[N])

	Subscribe(fn Listener[N]) (cancel func())
}

// Walk visits node and its descendants depth first in display order. fn
// receives the depth of each node (root is 0); returning false skips the
// node's children.
func Walk[N comparable](p DataProvider[N], fn func(node N, depth int) bool) {
	walk(p, p.Root(), 0, fn)
}

func walk[N comparable](p DataProvider[N], node N, depth int, fn func(N, int) bool) {
	if !fn(node, depth) {
		return
	}
	if p.IsLeaf(node) {
		return
	}
	for _, child := range p.Children(node) {
		walk(p, child, depth+1, fn)
	}
}
