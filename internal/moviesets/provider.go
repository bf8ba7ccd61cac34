package moviesets

import (
	"sync"

	"github.com/Nomadcxx/mediashelf/internal/logging"
	"github.com/Nomadcxx/mediashelf/internal/movie"
	"github.com/Nomadcxx/mediashelf/internal/tree"
)

// Provider exposes a movie.Library as root -> movie sets -> movies. It follows
// the library and turns every membership change into tree events.
type Provider struct {
	tree.Base[Node]

	lib    *movie.Library
	log    *logging.Logger
	cancel func()
	once   sync.Once
}

var _ tree.DataProvider[Node] = (*Provider)(nil)

// NewProvider creates a Provider over lib. Call Close to stop following it.
func NewProvider(lib *movie.Library, log *logging.Logger) *Provider {
	if log == nil {
		log = logging.Nop()
	}
	p := &Provider{lib: lib, log: log}
	p.cancel = lib.Subscribe(p.handleLibraryEvent)
	return p
}

// Close detaches the provider from the library.
func (p *Provider) Close() {
	p.once.Do(p.cancel)
}

// Library returns the backing library.
func (p *Provider) Library() *movie.Library {
	return p.lib
}

func (p *Provider) Root() Node {
	return Root
}

func (p *Provider) Parent(n Node) Node {
	switch n.Kind {
	case MovieNode:
		return SetNode(n.Set)
	default:
		return Root
	}
}

func (p *Provider) IsLeaf(n Node) bool {
	return n.Kind == MovieNode
}

// Children returns the visible children of n. A movie set is visible when it
// passes the filters itself or when any of its movies does.
func (p *Provider) Children(n Node) []Node {
	switch n.Kind {
	case RootNode:
		sets := p.lib.MovieSets()
		nodes := make([]Node, 0, len(sets))
		for _, s := range sets {
			nodes = append(nodes, SetNode(s))
		}
		return p.arrangeSets(nodes)
	case MovieSetNode:
		return p.Arrange(p.movieNodes(n.Set))
	default:
		return nil
	}
}

// AllChildren returns the children of n ignoring filters, in sort order.
func (p *Provider) AllChildren(n Node) []Node {
	var nodes []Node
	switch n.Kind {
	case RootNode:
		for _, s := range p.lib.MovieSets() {
			nodes = append(nodes, SetNode(s))
		}
	case MovieSetNode:
		nodes = p.movieNodes(n.Set)
	}
	if cmp := p.Comparator(); cmp != nil {
		sortNodes(nodes, cmp)
	}
	return nodes
}

func (p *Provider) movieNodes(s *movie.MovieSet) []Node {
	movies := s.Movies()
	nodes := make([]Node, 0, len(movies))
	for _, m := range movies {
		nodes = append(nodes, MovieNodeOf(s, m))
	}
	return nodes
}

func (p *Provider) arrangeSets(nodes []Node) []Node {
	visible := nodes[:0:0]
	for _, n := range nodes {
		if p.Accepts(n) || p.anyMovieAccepted(n.Set) {
			visible = append(visible, n)
		}
	}
	if cmp := p.Comparator(); cmp != nil {
		sortNodes(visible, cmp)
	}
	return visible
}

func (p *Provider) anyMovieAccepted(s *movie.MovieSet) bool {
	for _, n := range p.movieNodes(s) {
		if p.Accepts(n) {
			return true
		}
	}
	return false
}

func (p *Provider) handleLibraryEvent(e movie.Event) {
	p.log.Debug("moviesets", "library event",
		logging.F("type", e.Type.String()))

	switch e.Type {
	case movie.MovieSetAdded:
		p.Notify(tree.Event[Node]{Kind: tree.NodeInserted, Node: SetNode(e.MovieSet), Parent: Root})
	case movie.MovieSetChanged:
		p.Notify(tree.Event[Node]{Kind: tree.NodeChanged, Node: SetNode(e.MovieSet), Parent: Root})
	case movie.MovieSetRemoved:
		p.Notify(tree.Event[Node]{Kind: tree.NodeRemoved, Node: SetNode(e.MovieSet), Parent: Root})

	case movie.MovieAdded:
		p.insertMovie(e.MovieSet, e.Movie)
	case movie.MovieRemoved:
		p.removeMovie(e.PreviousSet, e.Movie)
	case movie.MovieChanged:
		if e.PreviousSet == e.MovieSet {
			if e.MovieSet != nil {
				p.Notify(tree.Event[Node]{Kind: tree.NodeChanged, Node: MovieNodeOf(e.MovieSet, e.Movie), Parent: SetNode(e.MovieSet)})
				p.Notify(tree.Event[Node]{Kind: tree.NodeChanged, Node: SetNode(e.MovieSet), Parent: Root})
			}
			return
		}
		p.removeMovie(e.PreviousSet, e.Movie)
		p.insertMovie(e.MovieSet, e.Movie)
	}
}

// insertMovie and removeMovie also report the set as changed since its
// aggregated columns (count, watched) depend on the members.
func (p *Provider) insertMovie(s *movie.MovieSet, m *movie.Movie) {
	if s == nil {
		return
	}
	p.Notify(tree.Event[Node]{Kind: tree.NodeInserted, Node: MovieNodeOf(s, m), Parent: SetNode(s)})
	p.Notify(tree.Event[Node]{Kind: tree.NodeChanged, Node: SetNode(s), Parent: Root})
}

func (p *Provider) removeMovie(s *movie.MovieSet, m *movie.Movie) {
	if s == nil {
		return
	}
	p.Notify(tree.Event[Node]{Kind: tree.NodeRemoved, Node: MovieNodeOf(s, m), Parent: SetNode(s)})
	p.Notify(tree.Event[Node]{Kind: tree.NodeChanged, Node: SetNode(s), Parent: Root})
}
