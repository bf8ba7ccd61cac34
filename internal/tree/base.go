package tree

import (
	"slices"
	"sync"
)

// Base implements the filter, comparator and listener bookkeeping shared by
// providers. Embed it and implement Root, Parent, Children and IsLeaf.
type Base[N comparable] struct {
	mu        sync.RWMutex
	filters   []Filter[N]
	cmp       Comparator[N]
	listeners map[int]Listener[N]
	nextID    int
}

// Filters returns a copy of the installed filters.
func (b *Base[N]) Filters() []Filter[N] {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.filters)
}

// SetFilters replaces all filters.
func (b *Base[N]) SetFilters(filters ...Filter[N]) {
	b.mu.Lock()
	b.filters = slices.Clone(filters)
	b.mu.Unlock()
}

// Comparator returns the current sort order, nil for insertion order.
func (b *Base[N]) Comparator() Comparator[N] {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cmp
}

// SetComparator replaces the sort order.
func (b *Base[N]) SetComparator(cmp Comparator[N]) {
	b.mu.Lock()
	b.cmp = cmp
	b.mu.Unlock()
}

// Accepts reports whether node passes every active filter.
func (b *Base[N]) Accepts(node N) bool {
	for _, f := range b.Filters() {
		if f.Active() && !f.Accept(node) {
			return false
		}
	}
	return true
}

// Arrange drops the nodes rejected by the filters and stable-sorts the rest.
// The input slice is not modified.
func (b *Base[N]) Arrange(nodes []N) []N {
	filters := b.Filters()
	cmp := b.Comparator()

	out := make([]N, 0, len(nodes))
next:
	for _, n := range nodes {
		for _, f := range filters {
			if f.Active() && !f.Accept(n) {
				continue next
			}
		}
		out = append(out, n)
	}
	if cmp != nil {
		slices.SortStableFunc(out, cmp)
	}
	return out
}

// Subscribe registers fn and returns a func that removes it again.
func (b *Base[N]) Subscribe(fn Listener[N]) func() {
	b.mu.Lock()
	if b.listeners == nil {
		b.listeners = make(map[int]Listener[N])
	}
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Notify delivers e to all listeners in subscription order. The lock is not
// held while listeners run, so they may call back into the provider.
func (b *Base[N]) Notify(e Event[N]) {
	b.mu.RLock()
	ids := make([]int, 0, len(b.listeners))
	for id := range b.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]Listener[N], 0, len(ids))
	for _, id := range ids {
		fns = append(fns, b.listeners[id])
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}
