package movie

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// EventType identifies a library mutation.
type EventType int

const (
	MovieAdded EventType = iota
	MovieChanged
	MovieRemoved
	MovieSetAdded
	MovieSetChanged
	MovieSetRemoved
)

func (t EventType) String() string {
	switch t {
	case MovieAdded:
		return "movie_added"
	case MovieChanged:
		return "movie_changed"
	case MovieRemoved:
		return "movie_removed"
	case MovieSetAdded:
		return "movieset_added"
	case MovieSetChanged:
		return "movieset_changed"
	case MovieSetRemoved:
		return "movieset_removed"
	default:
		return "unknown"
	}
}

// Event describes a single library mutation. For movie events MovieSet is the
// set the movie belongs to after the change and PreviousSet the one before.
type Event struct {
	Type        EventType
	Movie       *Movie
	MovieSet    *MovieSet
	PreviousSet *MovieSet
}

// Listener receives library events.
type Listener func(Event)

// Library owns all movies and movie sets. Mutations go through the Library so
// set membership stays consistent and listeners see every change. Listeners
// run synchronously after the library lock has been released.
type Library struct {
	mu     sync.RWMutex
	movies map[string]*Movie
	sets   map[string]*MovieSet

	lmu       sync.Mutex
	listeners map[int]Listener
	nextID    int
}

// NewLibrary creates an empty Library.
func NewLibrary() *Library {
	return &Library{
		movies:    make(map[string]*Movie),
		sets:      make(map[string]*MovieSet),
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers fn for all future events and returns a cancel func.
func (l *Library) Subscribe(fn Listener) func() {
	l.lmu.Lock()
	id := l.nextID
	l.nextID++
	l.listeners[id] = fn
	l.lmu.Unlock()

	return func() {
		l.lmu.Lock()
		delete(l.listeners, id)
		l.lmu.Unlock()
	}
}

func (l *Library) emit(events ...Event) {
	l.lmu.Lock()
	ids := make([]int, 0, len(l.listeners))
	for id := range l.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]Listener, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, l.listeners[id])
	}
	l.lmu.Unlock()

	for _, e := range events {
		for _, fn := range fns {
			fn(e)
		}
	}
}

// AddMovie adds m, or updates it when a movie with the same ID exists.
func (l *Library) AddMovie(m *Movie) {
	l.mu.Lock()
	if _, exists := l.movies[m.ID]; exists {
		l.mu.Unlock()
		l.UpdateMovie(m)
		return
	}
	l.movies[m.ID] = m
	set := l.sets[m.SetID]
	if set != nil {
		set.add(m)
	} else if m.SetID != "" {
		m.SetID = ""
	}
	l.mu.Unlock()

	l.emit(Event{Type: MovieAdded, Movie: m, MovieSet: set})
}

// UpdateMovie replaces the stored movie with the same ID and moves it between
// sets if its SetID changed. Unknown movies are added.
func (l *Library) UpdateMovie(m *Movie) {
	l.mu.Lock()
	e, exists := l.replaceLocked(m)
	l.mu.Unlock()
	if !exists {
		l.AddMovie(m)
		return
	}
	l.emit(e)
}

// replaceLocked swaps in m for the stored movie with its ID. l.mu must be held.
func (l *Library) replaceLocked(m *Movie) (Event, bool) {
	old, exists := l.movies[m.ID]
	if !exists {
		return Event{}, false
	}

	var previous *MovieSet
	for _, s := range l.sets {
		if s.remove(old) {
			previous = s
			break
		}
	}
	l.movies[m.ID] = m
	set := l.sets[m.SetID]
	if set != nil {
		set.add(m)
	} else if m.SetID != "" {
		m.SetID = ""
	}
	return Event{Type: MovieChanged, Movie: m, MovieSet: set, PreviousSet: previous}, true
}

// RemoveMovie removes the movie with the given ID. It returns false when the
// movie is unknown.
func (l *Library) RemoveMovie(id string) bool {
	l.mu.Lock()
	m, exists := l.movies[id]
	if !exists {
		l.mu.Unlock()
		return false
	}
	delete(l.movies, id)
	set := l.sets[m.SetID]
	if set != nil {
		set.remove(m)
	}
	l.mu.Unlock()

	l.emit(Event{Type: MovieRemoved, Movie: m, PreviousSet: set})
	return true
}

// AssignToSet moves a movie into the set with setID; an empty setID removes
// it from its current set. The stored movie is replaced by a copy carrying the
// new SetID, so movies handed out earlier are never modified.
func (l *Library) AssignToSet(movieID, setID string) bool {
	l.mu.Lock()
	m, ok := l.movies[movieID]
	_, setOK := l.sets[setID]
	if !ok || (setID != "" && !setOK) {
		l.mu.Unlock()
		return false
	}
	moved := *m
	moved.SetID = setID
	e, _ := l.replaceLocked(&moved)
	l.mu.Unlock()

	l.emit(e)
	return true
}

// AddMovieSet adds s and adopts any known movies that reference it.
func (l *Library) AddMovieSet(s *MovieSet) {
	l.mu.Lock()
	if _, exists := l.sets[s.ID]; exists {
		l.mu.Unlock()
		l.UpdateMovieSet(s)
		return
	}
	l.sets[s.ID] = s
	for _, m := range l.movies {
		if m.SetID == s.ID {
			s.add(m)
		}
	}
	l.mu.Unlock()

	l.emit(Event{Type: MovieSetAdded, MovieSet: s})
}

// UpdateMovieSet replaces the metadata of a known set, keeping its members.
func (l *Library) UpdateMovieSet(s *MovieSet) {
	l.mu.Lock()
	old, exists := l.sets[s.ID]
	if !exists {
		l.mu.Unlock()
		l.AddMovieSet(s)
		return
	}
	if old != s {
		s.setMembers(old.members())
		l.sets[s.ID] = s
	}
	l.mu.Unlock()

	l.emit(Event{Type: MovieSetChanged, MovieSet: s})
}

// RemoveMovieSet deletes the set. Its movies stay in the library without a
// set, each replaced by a copy with an empty SetID.
func (l *Library) RemoveMovieSet(id string) bool {
	l.mu.Lock()
	s, exists := l.sets[id]
	if !exists {
		l.mu.Unlock()
		return false
	}
	delete(l.sets, id)
	members := s.members()
	s.setMembers(nil)

	events := []Event{{Type: MovieSetRemoved, MovieSet: s}}
	for _, m := range members {
		detached := *m
		detached.SetID = ""
		if l.movies[m.ID] == m {
			l.movies[m.ID] = &detached
		}
		events = append(events, Event{Type: MovieChanged, Movie: &detached, PreviousSet: s})
	}
	l.mu.Unlock()

	l.emit(events...)
	return true
}

// Movie returns the movie with the given ID or nil.
func (l *Library) Movie(id string) *Movie {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.movies[id]
}

// MovieSet returns the set with the given ID or nil.
func (l *Library) MovieSet(id string) *MovieSet {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sets[id]
}

// MovieSetOf returns the set m belongs to, or nil.
func (l *Library) MovieSetOf(m *Movie) *MovieSet {
	if m == nil || m.SetID == "" {
		return nil
	}
	return l.MovieSet(m.SetID)
}

// Movies returns all movies ordered by title.
func (l *Library) Movies() []*Movie {
	l.mu.RLock()
	out := make([]*Movie, 0, len(l.movies))
	for _, m := range l.movies {
		out = append(out, m)
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].SortKey() != out[j].SortKey() {
			return out[i].SortKey() < out[j].SortKey()
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// MovieSets returns all sets ordered by title.
func (l *Library) MovieSets() []*MovieSet {
	l.mu.RLock()
	out := make([]*MovieSet, 0, len(l.sets))
	for _, s := range l.sets {
		out = append(out, s)
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FindMovieSetByTitle returns the set with a case-insensitively equal title.
func (l *Library) FindMovieSetByTitle(title string) *MovieSet {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, s := range l.sets {
		if strings.EqualFold(s.Title, title) {
			return s
		}
	}
	return nil
}

// FindMovieByPath returns the movie whose folder is path, or which contains path.
func (l *Library) FindMovieByPath(path string) *Movie {
	path = filepath.Clean(path)
	l.mu.RLock()
	defer l.mu.RUnlock()

	var best *Movie
	for _, m := range l.movies {
		if m.Path == path || strings.HasPrefix(path, m.Path+string(filepath.Separator)) {
			if best == nil || len(m.Path) > len(best.Path) {
				best = m
			}
		}
	}
	return best
}
