package movie

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MovieSet groups related movies (a collection such as "Alien Collection").
// The member list is maintained by the Library and is safe to read while the
// library changes.
type MovieSet struct {
	ID     string
	Title  string
	Plot   string
	Poster string
	Fanart string

	mu     sync.RWMutex
	movies []*Movie // replaced, never modified in place
}

// NewMovieSet creates an empty MovieSet with a fresh ID.
func NewMovieSet(title string) *MovieSet {
	return &MovieSet{
		ID:    uuid.NewString(),
		Title: title,
	}
}

// Clone returns a copy of the set metadata without members.
func (s *MovieSet) Clone() *MovieSet {
	return &MovieSet{
		ID:     s.ID,
		Title:  s.Title,
		Plot:   s.Plot,
		Poster: s.Poster,
		Fanart: s.Fanart,
	}
}

// Movies returns the members ordered by year, then title.
func (s *MovieSet) Movies() []*Movie {
	members := s.members()
	out := make([]*Movie, len(members))
	copy(out, members)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].SortKey() < out[j].SortKey()
	})
	return out
}

// MovieCount returns the number of movies in the set.
func (s *MovieSet) MovieCount() int {
	return len(s.members())
}

// HasImages reports whether poster and fanart artwork are set.
func (s *MovieSet) HasImages() bool {
	return s.Poster != "" && s.Fanart != ""
}

// Watched reports whether the set has movies and all of them are watched.
func (s *MovieSet) Watched() bool {
	members := s.members()
	if len(members) == 0 {
		return false
	}
	for _, m := range members {
		if !m.Watched {
			return false
		}
	}
	return true
}

func (s *MovieSet) members() []*Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.movies
}

func (s *MovieSet) setMembers(movies []*Movie) {
	s.mu.Lock()
	s.movies = movies
	s.mu.Unlock()
}

func (s *MovieSet) add(m *Movie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.movies {
		if existing == m {
			return
		}
	}
	next := make([]*Movie, len(s.movies), len(s.movies)+1)
	copy(next, s.movies)
	s.movies = append(next, m)
}

func (s *MovieSet) remove(m *Movie) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.movies {
		if existing == m {
			next := make([]*Movie, 0, len(s.movies)-1)
			next = append(next, s.movies[:i]...)
			s.movies = append(next, s.movies[i+1:]...)
			return true
		}
	}
	return false
}
