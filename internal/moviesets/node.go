// Package moviesets presents the movie library as a tree of movie sets and
// their movies, and describes how that tree is rendered as a table.
package moviesets

import "github.com/Nomadcxx/mediashelf/internal/movie"

// NodeKind tells which entity a Node wraps.
type NodeKind int

const (
	RootNode NodeKind = iota
	MovieSetNode
	MovieNode
)

func (k NodeKind) String() string {
	switch k {
	case RootNode:
		return "root"
	case MovieSetNode:
		return "movieset"
	case MovieNode:
		return "movie"
	default:
		return "unknown"
	}
}

// Node is a position in the movie set tree. It is a small value type so two
// nodes wrapping the same entity compare equal.
type Node struct {
	Kind  NodeKind
	Set   *movie.MovieSet // set node itself, or the parent set of a movie node
	Movie *movie.Movie
}

// Root is the invisible top of the tree.
var Root = Node{Kind: RootNode}

// SetNode wraps a movie set.
func SetNode(s *movie.MovieSet) Node {
	return Node{Kind: MovieSetNode, Set: s}
}

// MovieNodeOf wraps a movie that belongs to s.
func MovieNodeOf(s *movie.MovieSet, m *movie.Movie) Node {
	return Node{Kind: MovieNode, Set: s, Movie: m}
}

// Title returns the display title of the wrapped entity.
func (n Node) Title() string {
	switch n.Kind {
	case MovieSetNode:
		return n.Set.Title
	case MovieNode:
		return n.Movie.Title
	default:
		return ""
	}
}
