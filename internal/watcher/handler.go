package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Nomadcxx/mediashelf/internal/logging"
	"github.com/Nomadcxx/mediashelf/internal/media"
	"github.com/Nomadcxx/mediashelf/internal/movie"
	"github.com/Nomadcxx/mediashelf/internal/scanner"
)

// LibraryHandler keeps a movie.Library in sync with file events. Events are
// collected per movie folder; once a folder has been quiet for the debounce
// period it is rescanned and the result replaces the library entry.
type LibraryHandler struct {
	lib      *movie.Library
	scanner  *scanner.Scanner
	roots    []string
	debounce time.Duration
	log      *logging.Logger
	after    func()
	applyMu  sync.Locker

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
}

type HandlerOption func(*LibraryHandler)

// WithDebounce sets the quiet period; zero rescans on every event.
func WithDebounce(d time.Duration) HandlerOption {
	return func(h *LibraryHandler) {
		h.debounce = d
	}
}

func WithHandlerLogger(l *logging.Logger) HandlerOption {
	return func(h *LibraryHandler) {
		if l != nil {
			h.log = l
		}
	}
}

// WithAfterChange registers fn to run after each folder update, for
// example to persist the library.
func WithAfterChange(fn func()) HandlerOption {
	return func(h *LibraryHandler) {
		h.after = fn
	}
}

// WithApplyLock serializes library updates with other writers, such as the
// periodic scanner, that hold the same lock.
func WithApplyLock(mu sync.Locker) HandlerOption {
	return func(h *LibraryHandler) {
		if mu != nil {
			h.applyMu = mu
		}
	}
}

func NewLibraryHandler(lib *movie.Library, sc *scanner.Scanner, roots []string, opts ...HandlerOption) *LibraryHandler {
	cleaned := make([]string, len(roots))
	for i, r := range roots {
		cleaned[i] = filepath.Clean(r)
	}
	h := &LibraryHandler{
		lib:     lib,
		scanner: sc,
		roots:   cleaned,
		log:     logging.Nop(),
		applyMu: &sync.Mutex{},
		pending: make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *LibraryHandler) IsMediaFile(path string) bool {
	return media.IsMediaPath(path)
}

func (h *LibraryHandler) HandleFileEvent(event FileEvent) error {
	path := filepath.Clean(event.Path)
	root := h.rootOf(path)
	if root == "" || path == root {
		return nil
	}

	dir := filepath.Dir(path)
	if event.Type == EventDelete || event.Type == EventMove {
		// the path may have been a whole movie folder
		if m := h.lib.FindMovieByPath(path); m != nil && m.Path == path {
			dir = path
		}
	}
	dir = scanner.MovieDir(root, dir)

	if h.debounce <= 0 {
		return h.refresh(context.Background(), root, dir)
	}
	h.schedule(root, dir)
	return nil
}

func (h *LibraryHandler) schedule(root, dir string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	if t, ok := h.pending[dir]; ok {
		t.Reset(h.debounce)
		return
	}
	h.pending[dir] = time.AfterFunc(h.debounce, func() {
		h.mu.Lock()
		delete(h.pending, dir)
		h.mu.Unlock()
		if err := h.refresh(context.Background(), root, dir); err != nil {
			h.log.Error("watcher", "Rescan failed", err, logging.F("dir", dir))
		}
	})
}

// Pending returns the number of folders waiting for their rescan.
func (h *LibraryHandler) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending)
}

// Flush rescans every pending folder now.
func (h *LibraryHandler) Flush(ctx context.Context) error {
	h.mu.Lock()
	dirs := make([]string, 0, len(h.pending))
	for dir, t := range h.pending {
		if t.Stop() {
			dirs = append(dirs, dir)
		}
		delete(h.pending, dir)
	}
	h.mu.Unlock()

	var errs []error
	for _, dir := range dirs {
		if err := h.refresh(ctx, h.rootOf(dir), dir); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close drops pending rescans.
func (h *LibraryHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for dir, t := range h.pending {
		t.Stop()
		delete(h.pending, dir)
	}
}

// refresh rescans dir and replaces its library entry. A vanished folder, or
// one without a main video, removes the movies stored for it.
func (h *LibraryHandler) refresh(ctx context.Context, root, dir string) error {
	defer func() {
		if h.after != nil {
			h.after()
		}
	}()

	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		h.removeUnder(dir)
		return nil
	}

	m, setName, err := h.scanner.ScanMovieDir(ctx, root, dir)
	if err != nil {
		return err
	}
	if m == nil {
		h.removeUnder(dir)
		return nil
	}

	h.applyMu.Lock()
	scanner.AssignSet(h.lib, root, m, setName)
	added := scanner.ApplyMovie(h.lib, m)
	scanner.PruneEmptySets(h.lib)
	h.applyMu.Unlock()

	if added {
		h.log.Info("watcher", "Movie added", logging.F("title", m.Title), logging.F("dir", dir))
	} else {
		h.log.Debug("watcher", "Movie updated", logging.F("title", m.Title), logging.F("dir", dir))
	}
	return nil
}

func (h *LibraryHandler) removeUnder(dir string) {
	h.applyMu.Lock()
	defer h.applyMu.Unlock()

	removed := 0
	for _, m := range h.lib.Movies() {
		if m.Path == dir || strings.HasPrefix(m.Path, dir+string(filepath.Separator)) {
			h.lib.RemoveMovie(m.ID)
			removed++
			h.log.Info("watcher", "Movie removed", logging.F("title", m.Title), logging.F("dir", m.Path))
		}
	}
	if removed > 0 {
		scanner.PruneEmptySets(h.lib)
	}
}

func (h *LibraryHandler) rootOf(path string) string {
	best := ""
	for _, r := range h.roots {
		if path == r || strings.HasPrefix(path, r+string(filepath.Separator)) {
			if len(r) > len(best) {
				best = r
			}
		}
	}
	return best
}
