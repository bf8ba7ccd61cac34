package scanner

import (
	"path/filepath"
	"strings"

	"github.com/Nomadcxx/mediashelf/internal/movie"
)

// ApplyStats counts the library changes made by Apply.
type ApplyStats struct {
	MoviesAdded   int
	MoviesUpdated int
	MoviesRemoved int
	SetsAdded     int
	SetsRemoved   int
}

// Apply merges a scan result into lib. Movies are matched by folder and sets
// by title, so IDs stay stable across scans. Movies below the scanned root
// that were not found again are removed, and so are sets left empty.
func Apply(lib *movie.Library, res *Result) ApplyStats {
	var stats ApplyStats

	setIDs := make(map[string]string, len(res.MovieSets))
	for _, set := range res.MovieSets {
		if existing := lib.FindMovieSetByTitle(set.Title); existing != nil {
			updated := existing.Clone()
			if set.Poster != "" {
				updated.Poster = set.Poster
			}
			if set.Fanart != "" {
				updated.Fanart = set.Fanart
			}
			if updated.Poster != existing.Poster || updated.Fanart != existing.Fanart {
				lib.UpdateMovieSet(updated)
			}
			setIDs[set.ID] = existing.ID
			continue
		}
		lib.AddMovieSet(set)
		setIDs[set.ID] = set.ID
		stats.SetsAdded++
	}

	seen := make(map[string]bool, len(res.Movies))
	for _, m := range res.Movies {
		if m.SetID != "" {
			m.SetID = setIDs[m.SetID]
		}
		if ApplyMovie(lib, m) {
			stats.MoviesAdded++
		} else {
			stats.MoviesUpdated++
		}
		seen[m.ID] = true
	}

	for _, m := range lib.Movies() {
		if seen[m.ID] || !within(res.Root, m.Path) {
			continue
		}
		lib.RemoveMovie(m.ID)
		stats.MoviesRemoved++
	}
	stats.SetsRemoved = PruneEmptySets(lib)
	return stats
}

// ApplyMovie adds m to lib or replaces the movie stored for the same folder,
// keeping its ID. It reports whether the movie is new.
func ApplyMovie(lib *movie.Library, m *movie.Movie) bool {
	if existing := lib.FindMovieByPath(m.Path); existing != nil && existing.Path == m.Path {
		m.ID = existing.ID
		lib.UpdateMovie(m)
		return false
	}
	lib.AddMovie(m)
	return true
}

// PruneEmptySets removes sets without movies and returns how many went.
func PruneEmptySets(lib *movie.Library) int {
	removed := 0
	for _, s := range lib.MovieSets() {
		if s.MovieCount() == 0 {
			lib.RemoveMovieSet(s.ID)
			removed++
		}
	}
	return removed
}

func within(root, path string) bool {
	if root == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// AssignSet puts m into the library set titled setName, creating the set
// (with artwork from root's .sets folder) when it does not exist yet. An
// empty setName leaves m without a set.
func AssignSet(lib *movie.Library, root string, m *movie.Movie, setName string) {
	if setName == "" {
		m.SetID = ""
		return
	}
	if existing := lib.FindMovieSetByTitle(setName); existing != nil {
		m.SetID = existing.ID
		return
	}
	set := movie.NewMovieSet(setName)
	loadSetArtwork(root, set)
	lib.AddMovieSet(set)
	m.SetID = set.ID
}
