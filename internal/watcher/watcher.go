// Package watcher follows library roots with fsnotify and reports changes to
// media files.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Nomadcxx/mediashelf/internal/logging"
	"github.com/fsnotify/fsnotify"
)

type EventType string

const (
	EventCreate EventType = "create"
	EventWrite  EventType = "write"
	EventMove   EventType = "move"
	EventDelete EventType = "delete"
)

type FileEvent struct {
	Type EventType
	Path string
}

// Handler receives file events. Create and write events are only delivered
// for paths IsMediaFile accepts; move and delete events are always delivered
// because a vanished path can no longer be inspected.
type Handler interface {
	HandleFileEvent(event FileEvent) error
	IsMediaFile(path string) bool
}

type Watcher struct {
	fsWatcher *fsnotify.Watcher
	handler   Handler
	log       *logging.Logger
	recursive bool
}

type Option func(*Watcher)

func WithRecursive(recursive bool) Option {
	return func(w *Watcher) {
		w.recursive = recursive
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		w.log = l
	}
}

func NewWatcher(handler Handler, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		handler:   handler,
		log:       logging.Nop(),
		recursive: true,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = logging.Nop()
	}
	return w, nil
}

// Watch adds roots (and, when recursive, every non-hidden folder below them).
func (w *Watcher) Watch(roots []string) error {
	for _, root := range roots {
		if !w.recursive {
			if err := w.fsWatcher.Add(root); err != nil {
				return fmt.Errorf("unable to watch %s: %w", root, err)
			}
			w.log.Info("watcher", "Watching", logging.F("path", root))
			continue
		}
		if err := w.addRecursive(root); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) addRecursive(root string) error {
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return fmt.Errorf("unable to watch %s: %w", path, err)
		}
		count++
		return nil
	})
	if err != nil {
		return fmt.Errorf("unable to watch %s: %w", root, err)
	}
	w.log.Info("watcher", "Watching", logging.F("path", root), logging.F("dirs", count))
	return nil
}

// Start processes events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.handleNewDir(event.Name)
					continue
				}
			}
			if err := w.handleEvent(event); err != nil {
				w.log.Error("watcher", "Error handling event", err, logging.F("path", event.Name))
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher", "Watcher error", err)
		}
	}
}

// handleNewDir starts watching a new folder and reports the media files that
// were moved in together with it.
func (w *Watcher) handleNewDir(dir string) {
	if !w.recursive || strings.HasPrefix(filepath.Base(dir), ".") {
		return
	}
	if err := w.addRecursive(dir); err != nil {
		w.log.Warn("watcher", "Unable to watch new directory", logging.F("path", dir), logging.F("error", err.Error()))
		return
	}
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !w.handler.IsMediaFile(path) {
			return nil
		}
		if herr := w.handler.HandleFileEvent(FileEvent{Type: EventCreate, Path: path}); herr != nil {
			w.log.Error("watcher", "Error handling event", herr, logging.F("path", path))
		}
		return nil
	})
}

func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

func (w *Watcher) handleEvent(event fsnotify.Event) error {
	var eventType EventType
	switch {
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		eventType = EventDelete
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		eventType = EventMove
	case event.Op&fsnotify.Write == fsnotify.Write:
		eventType = EventWrite
	case event.Op&fsnotify.Create == fsnotify.Create:
		eventType = EventCreate
	default:
		return nil
	}

	if (eventType == EventCreate || eventType == EventWrite) && !w.handler.IsMediaFile(event.Name) {
		return nil
	}

	w.log.Debug("watcher", "Event",
		logging.F("type", string(eventType)),
		logging.F("file", filepath.Base(event.Name)))
	return w.handler.HandleFileEvent(FileEvent{Type: eventType, Path: event.Name})
}
