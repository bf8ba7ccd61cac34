package moviesets

import (
	"strings"

	"github.com/Nomadcxx/mediashelf/internal/tree"
	"github.com/antzucaro/matchr"
)

// TitleFilter matches nodes whose title contains the query, or is within a
// small edit distance of it so that typos still find the movie.
type TitleFilter struct {
	query string
}

// NewTitleFilter creates a title filter; an empty query makes it inactive.
func NewTitleFilter(query string) *TitleFilter {
	f := &TitleFilter{}
	f.SetQuery(query)
	return f
}

// SetQuery replaces the query.
func (f *TitleFilter) SetQuery(query string) {
	f.query = strings.ToLower(strings.TrimSpace(query))
}

// Query returns the normalised query.
func (f *TitleFilter) Query() string {
	return f.query
}

func (f *TitleFilter) Active() bool {
	return f.query != ""
}

func (f *TitleFilter) Accept(n Node) bool {
	if n.Kind == RootNode {
		return true
	}
	return MatchTitle(f.query, n.Title())
}

// MatchTitle reports whether title matches query. query must be lower case.
// Besides plain substring matches, the query may be off by one edit per five
// characters from the full title or from any run of title words of the same
// word count.
func MatchTitle(query, title string) bool {
	title = strings.ToLower(title)
	if strings.Contains(title, query) {
		return true
	}

	budget := len([]rune(query)) / 5
	if budget == 0 {
		return false
	}
	if matchr.Levenshtein(query, title) <= budget {
		return true
	}

	words := strings.Fields(title)
	width := len(strings.Fields(query))
	for i := 0; i+width <= len(words); i++ {
		if matchr.Levenshtein(query, strings.Join(words[i:i+width], " ")) <= budget {
			return true
		}
	}
	return false
}

// WatchedFilter keeps movies by watched state. Sets follow their aggregated
// state (all movies watched).
type WatchedFilter struct {
	Enabled bool
	Watched bool
}

func (f *WatchedFilter) Active() bool {
	return f.Enabled
}

func (f *WatchedFilter) Accept(n Node) bool {
	switch n.Kind {
	case MovieSetNode:
		return n.Set.Watched() == f.Watched
	case MovieNode:
		return n.Movie.Watched == f.Watched
	default:
		return true
	}
}

// ParseWatched maps "yes"/"watched"/"true" and "no"/"unwatched"/"false" to an
// enabled filter; anything else (including "") gives an inactive one.
func ParseWatched(s string) *WatchedFilter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "watched", "true":
		return &WatchedFilter{Enabled: true, Watched: true}
	case "no", "unwatched", "false":
		return &WatchedFilter{Enabled: true, Watched: false}
	default:
		return &WatchedFilter{}
	}
}

var (
	_ tree.Filter[Node] = (*TitleFilter)(nil)
	_ tree.Filter[Node] = (*WatchedFilter)(nil)
)
