package moviesets

import (
	"sync"
	"testing"

	"github.com/Nomadcxx/mediashelf/internal/movie"
	"github.com/Nomadcxx/mediashelf/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestProvider_Structure(t *testing.T) {
	f := newFixture()
	p := NewProvider(f.lib, nil)
	defer p.Close()

	assert.Equal(t, Root, p.Root())
	assert.False(t, p.IsLeaf(Root))

	sets := p.Children(Root)
	require.Len(t, sets, 2)
	assert.Equal(t, []string{"Alien Collection", "The Matrix Collection"}, titles(sets))

	movies := p.Children(sets[0])
	assert.Equal(t, []string{"Alien", "Aliens"}, titles(movies))
	assert.True(t, p.IsLeaf(movies[0]))
	assert.Nil(t, p.Children(movies[0]))
	assert.Equal(t, sets[0], p.Parent(movies[0]))
	assert.Equal(t, Root, p.Parent(sets[0]))
}

func TestProvider_FiltersKeepSetWhenChildMatches(t *testing.T) {
	f := newFixture()
	p := NewProvider(f.lib, nil)
	defer p.Close()

	p.SetFilters(NewTitleFilter("reloaded"))
	sets := p.Children(Root)
	require.Len(t, sets, 1)
	assert.Equal(t, "The Matrix Collection", sets[0].Title())
	assert.Equal(t, []string{"The Matrix Reloaded"}, titles(p.Children(sets[0])))
	assert.Len(t, p.AllChildren(sets[0]), 2)

	p.SetFilters(NewTitleFilter("collection"))
	assert.Len(t, p.Children(Root), 2)

	p.SetFilters(ParseWatched("no"))
	sets = p.Children(Root)
	assert.Equal(t, []string{"Alien Collection"}, titles(sets))
	assert.Equal(t, []string{"Aliens"}, titles(p.Children(sets[0])))
}

func TestProvider_Comparator(t *testing.T) {
	f := newFixture()
	p := NewProvider(f.lib, nil)
	defer p.Close()

	p.SetComparator(NewComparator(SortByRating, language.English))
	sets := p.Children(Root)
	assert.Equal(t, []string{"The Matrix Collection", "Alien Collection"}, titles(sets))
	assert.Equal(t, []string{"The Matrix", "The Matrix Reloaded"}, titles(p.Children(sets[0])))
}

func TestProvider_Events(t *testing.T) {
	f := newFixture()
	p := NewProvider(f.lib, nil)
	defer p.Close()

	var events []tree.Event[Node]
	p.Subscribe(func(e tree.Event[Node]) { events = append(events, e) })

	heat := movie.NewMovie("Heat", 1995, "/movies/Heat")
	f.lib.AddMovie(heat)
	assert.Empty(t, events, "movies outside sets are not part of the tree")

	f.lib.AssignToSet(heat.ID, f.alien.ID)
	heat = f.lib.Movie(heat.ID)
	require.Len(t, events, 2)
	assert.Equal(t, tree.NodeInserted, events[0].Kind)
	assert.Equal(t, MovieNodeOf(f.alien, heat), events[0].Node)
	assert.Equal(t, SetNode(f.alien), events[0].Parent)
	assert.Equal(t, tree.NodeChanged, events[1].Kind)
	assert.Equal(t, SetNode(f.alien), events[1].Node)

	events = nil
	f.lib.AssignToSet(heat.ID, f.matrix.ID)
	require.Len(t, events, 4)
	assert.Equal(t, tree.NodeRemoved, events[0].Kind)
	assert.Equal(t, SetNode(f.alien), events[0].Parent)
	assert.Equal(t, tree.NodeInserted, events[2].Kind)
	assert.Equal(t, SetNode(f.matrix), events[2].Parent)

	events = nil
	heat = f.lib.Movie(heat.ID)
	heat.Watched = true
	f.lib.UpdateMovie(heat)
	require.Len(t, events, 2)
	assert.Equal(t, tree.NodeChanged, events[0].Kind)
	assert.Equal(t, MovieNodeOf(f.matrix, heat), events[0].Node)

	events = nil
	f.lib.RemoveMovieSet(f.matrix.ID)
	require.NotEmpty(t, events)
	assert.Equal(t, tree.NodeRemoved, events[0].Kind)
	assert.Equal(t, SetNode(f.matrix), events[0].Node)
	assert.Len(t, p.Children(Root), 1)

	events = nil
	p.Close()
	f.lib.AddMovieSet(movie.NewMovieSet("Late"))
	assert.Empty(t, events)
}

func TestProvider_ConcurrentMembershipChanges(t *testing.T) {
	f := newFixture()
	p := NewProvider(f.lib, nil)
	defer p.Close()

	aliens := f.movies["Aliens"]
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			target := f.alien.ID
			if i%2 == 0 {
				target = f.matrix.ID
			}
			f.lib.AssignToSet(aliens.ID, target)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			for _, set := range p.Children(Root) {
				seen := make(map[string]bool)
				for _, n := range p.Children(set) {
					if seen[n.Movie.ID] {
						t.Errorf("%s listed twice in %s", n.Movie.Title, set.Title())
					}
					seen[n.Movie.ID] = true
				}
				set.Set.Watched()
			}
		}
	}()
	wg.Wait()

	// the last move (i == 499) went to the Alien set
	assert.Equal(t, 2, f.alien.MovieCount())
	assert.Equal(t, 2, f.matrix.MovieCount())
	assert.Equal(t, f.alien.ID, f.lib.Movie(aliens.ID).SetID)
}
