// Package notify tells media servers which movie folders changed so they can
// rescan them instead of the whole library.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Nomadcxx/mediashelf/internal/logging"
	"github.com/Nomadcxx/mediashelf/internal/movie"
)

type ChangeKind int

const (
	Created ChangeKind = iota
	Modified
	Deleted
)

func (k ChangeKind) String() string {
	switch k {
	case Created:
		return "Created"
	case Modified:
		return "Modified"
	case Deleted:
		return "Deleted"
	default:
		return "unknown"
	}
}

// Change is one movie folder that appeared, changed or disappeared.
type Change struct {
	Kind  ChangeKind
	Title string
	Year  int
	Path  string
}

// Result of one notifier call.
type Result struct {
	Service  string
	Changes  int
	Error    error
	Duration time.Duration
}

// Notifier is the interface that notification providers must implement
type Notifier interface {
	Name() string
	Enabled() bool
	Ping(ctx context.Context) error
	Notify(ctx context.Context, changes []Change) error
}

// Manager queues library changes and sends them to every registered
// notifier on Flush.
type Manager struct {
	mu        sync.Mutex
	notifiers []Notifier
	pending   []Change
	index     map[string]int
	log       *logging.Logger
}

func NewManager(log *logging.Logger) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	return &Manager{
		index: make(map[string]int),
		log:   log,
	}
}

// Register adds n when it is enabled.
func (m *Manager) Register(n Notifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.Enabled() {
		m.notifiers = append(m.notifiers, n)
		m.log.Info("notify", "Registered notifier", logging.F("service", n.Name()))
	}
}

func (m *Manager) NotifierCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notifiers)
}

// Attach queues a change for every movie event of lib. Set events carry no
// folder and are ignored.
func (m *Manager) Attach(lib *movie.Library) (cancel func()) {
	return lib.Subscribe(func(e movie.Event) {
		if e.Movie == nil {
			return
		}
		kind := Modified
		switch e.Type {
		case movie.MovieAdded:
			kind = Created
		case movie.MovieRemoved:
			kind = Deleted
		}
		m.Queue(Change{Kind: kind, Title: e.Movie.Title, Year: e.Movie.Year, Path: e.Movie.Path})
	})
}

// Queue adds c. Changes to the same folder collapse: a folder created and
// then modified stays Created, created and deleted is dropped.
func (m *Manager) Queue(c Change) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[c.Path]
	if !ok {
		m.index[c.Path] = len(m.pending)
		m.pending = append(m.pending, c)
		return
	}
	prev := m.pending[i]
	switch {
	case prev.Kind == Created && c.Kind == Modified:
		c.Kind = Created
	case prev.Kind == Created && c.Kind == Deleted:
		m.pending = append(m.pending[:i], m.pending[i+1:]...)
		m.reindex()
		return
	case prev.Kind == Deleted && c.Kind == Created:
		c.Kind = Modified
	}
	m.pending[i] = c
}

func (m *Manager) reindex() {
	clear(m.index)
	for i, c := range m.pending {
		m.index[c.Path] = i
	}
}

// Pending returns the number of queued changes.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Flush sends the queued changes to every notifier and clears the queue,
// also when a notifier fails; the next full scan sends its own changes.
func (m *Manager) Flush(ctx context.Context) []Result {
	m.mu.Lock()
	changes := m.pending
	m.pending = nil
	clear(m.index)
	notifiers := make([]Notifier, len(m.notifiers))
	copy(notifiers, m.notifiers)
	m.mu.Unlock()

	if len(changes) == 0 || len(notifiers) == 0 {
		return nil
	}

	results := make([]Result, len(notifiers))
	var wg sync.WaitGroup
	for i, n := range notifiers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			err := n.Notify(ctx, changes)
			results[i] = Result{Service: n.Name(), Changes: len(changes), Error: err, Duration: time.Since(start)}
			if err != nil {
				m.log.Warn("notify", "Notification failed",
					logging.F("service", n.Name()),
					logging.F("error", err.Error()))
				return
			}
			m.log.Info("notify", "Notification sent",
				logging.F("service", n.Name()),
				logging.F("changes", len(changes)))
		}()
	}
	wg.Wait()
	return results
}

// PingAll checks connectivity to all registered notifiers
func (m *Manager) PingAll(ctx context.Context) map[string]error {
	m.mu.Lock()
	notifiers := make([]Notifier, len(m.notifiers))
	copy(notifiers, m.notifiers)
	m.mu.Unlock()

	results := make(map[string]error)
	for _, n := range notifiers {
		results[n.Name()] = n.Ping(ctx)
	}
	return results
}

// FormatChange returns a human-readable summary of c.
func FormatChange(c Change) string {
	if c.Year > 0 {
		return fmt.Sprintf("%s: %s (%d)", c.Kind, c.Title, c.Year)
	}
	return fmt.Sprintf("%s: %s", c.Kind, c.Title)
}
