package moviesets

import (
	"github.com/Nomadcxx/mediashelf/internal/movie"
)

type fixture struct {
	lib    *movie.Library
	alien  *movie.MovieSet
	matrix *movie.MovieSet
	movies map[string]*movie.Movie
}

// newFixture builds two sets: Alien Collection (Alien, Aliens) and The Matrix
// Collection (The Matrix, The Matrix Reloaded).
func newFixture() *fixture {
	f := &fixture{lib: movie.NewLibrary(), movies: make(map[string]*movie.Movie)}
	f.alien = movie.NewMovieSet("Alien Collection")
	f.matrix = movie.NewMovieSet("The Matrix Collection")
	f.lib.AddMovieSet(f.alien)
	f.lib.AddMovieSet(f.matrix)

	add := func(set *movie.MovieSet, title string, year int, rating float32, watched bool) {
		m := movie.NewMovie(title, year, "/movies/"+title)
		m.Rating.Value = rating
		m.Watched = watched
		m.SetID = set.ID
		f.lib.AddMovie(m)
		f.movies[title] = m
	}
	add(f.alien, "Alien", 1979, 8.5, true)
	add(f.alien, "Aliens", 1986, 8.4, false)
	add(f.matrix, "The Matrix", 1999, 8.7, true)
	add(f.matrix, "The Matrix Reloaded", 2003, 7.2, true)
	return f
}

func titles(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Title()
	}
	return out
}
