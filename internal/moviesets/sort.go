package moviesets

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/Nomadcxx/mediashelf/internal/tree"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortBy names a sort order for the tree.
type SortBy string

const (
	SortByTitle  SortBy = "title"
	SortByYear   SortBy = "year"
	SortByRating SortBy = "rating"
)

// ParseSortBy validates a sort order name. The empty string means title.
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByTitle:
		return SortByTitle, nil
	case SortByYear:
		return SortByYear, nil
	case SortByRating:
		return SortByRating, nil
	default:
		return "", fmt.Errorf("unknown sort order %q (use title, year or rating)", s)
	}
}

// titleCollator orders titles the way a reader expects: case and accents
// are secondary, digits compare numerically.
type titleCollator struct {
	mu sync.Mutex
	c  *collate.Collator
}

func newTitleCollator(tag language.Tag) *titleCollator {
	return &titleCollator{c: collate.New(tag, collate.Loose, collate.Numeric)}
}

func (t *titleCollator) compare(a, b string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.c.CompareString(a, b)
}

// NewComparator returns the comparator for by, collating titles for lang.
// Sets have no year or rating of their own: they use their earliest movie
// year and their best movie rating. Ties fall back to title order.
func NewComparator(by SortBy, lang language.Tag) tree.Comparator[Node] {
	coll := newTitleCollator(lang)
	byTitle := func(a, b Node) int {
		return coll.compare(sortTitle(a), sortTitle(b))
	}

	switch by {
	case SortByYear:
		return func(a, b Node) int {
			if c := cmp.Compare(nodeYear(a), nodeYear(b)); c != 0 {
				return c
			}
			return byTitle(a, b)
		}
	case SortByRating:
		return func(a, b Node) int {
			// best first
			if c := cmp.Compare(nodeRating(b), nodeRating(a)); c != 0 {
				return c
			}
			return byTitle(a, b)
		}
	default:
		return byTitle
	}
}

func sortNodes(nodes []Node, c tree.Comparator[Node]) {
	slices.SortStableFunc(nodes, c)
}

func sortTitle(n Node) string {
	switch n.Kind {
	case MovieSetNode:
		return n.Set.Title
	case MovieNode:
		return n.Movie.SortKey()
	default:
		return ""
	}
}

func nodeYear(n Node) int {
	switch n.Kind {
	case MovieNode:
		return n.Movie.Year
	case MovieSetNode:
		year := 0
		for _, m := range n.Set.Movies() {
			if m.Year > 0 && (year == 0 || m.Year < year) {
				year = m.Year
			}
		}
		return year
	default:
		return 0
	}
}

func nodeRating(n Node) float32 {
	switch n.Kind {
	case MovieNode:
		return n.Movie.Rating.Value
	case MovieSetNode:
		var best float32
		for _, m := range n.Set.Movies() {
			best = max(best, m.Rating.Value)
		}
		return best
	default:
		return 0
	}
}
