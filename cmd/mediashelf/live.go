package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/Nomadcxx/mediashelf/internal/config"
	"github.com/Nomadcxx/mediashelf/internal/logging"
	"github.com/Nomadcxx/mediashelf/internal/movie"
	"github.com/Nomadcxx/mediashelf/internal/notify"
	"github.com/Nomadcxx/mediashelf/internal/scanner"
	"github.com/Nomadcxx/mediashelf/internal/watcher"
)

// live keeps a loaded library in sync with disk: fsnotify events rescan
// single movie folders, the periodic scanner catches what the watcher missed,
// and every change is saved to the database and sent to the notifiers.
type live struct {
	periodic *scanner.PeriodicScanner
	handler  *watcher.LibraryHandler
	watcher  *watcher.Watcher
	detach   []func()
	wg       sync.WaitGroup
}

func startLive(ctx context.Context, e *env, lib *movie.Library) (*live, error) {
	roots := make([]string, 0, len(e.cfg.Libraries.Movies))
	for _, r := range e.cfg.Libraries.Movies {
		abs, err := filepath.Abs(r)
		if err != nil {
			return nil, fmt.Errorf("invalid root %s: %w", r, err)
		}
		roots = append(roots, abs)
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("no library roots configured (libraries.movies)")
	}

	debounce, err := e.cfg.DebounceDuration()
	if err != nil {
		return nil, err
	}
	interval, err := e.cfg.ScanIntervalDuration()
	if err != nil {
		return nil, err
	}

	mgr := newNotifyManager(e.cfg, e.log)

	var saveMu sync.Mutex
	save := func() error {
		saveMu.Lock()
		defer saveMu.Unlock()
		if err := e.db.SaveLibrary(lib); err != nil {
			return err
		}
		// changes applied during shutdown still go out
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		mgr.Flush(nctx)
		return nil
	}

	journal, err := e.openJournal()
	if err != nil {
		return nil, err
	}

	// folder refreshes and periodic passes must not interleave
	var applyMu sync.Mutex
	sc := scanner.New(scanner.WithLogger(e.log))
	l := &live{}
	l.handler = watcher.NewLibraryHandler(lib, sc, roots,
		watcher.WithDebounce(debounce),
		watcher.WithApplyLock(&applyMu),
		watcher.WithHandlerLogger(e.log),
		watcher.WithAfterChange(func() {
			if err := save(); err != nil {
				e.log.Error("watch", "Failed to save library", err)
			}
		}))

	l.watcher, err = watcher.NewWatcher(l.handler, watcher.WithLogger(e.log))
	if err != nil {
		return nil, err
	}
	if err := l.watcher.Watch(roots); err != nil {
		l.watcher.Close()
		return nil, err
	}

	l.periodic = scanner.NewPeriodicScanner(scanner.PeriodicConfig{
		Interval:  interval,
		Roots:     roots,
		Library:   lib,
		Scanner:   sc,
		Logger:    e.log,
		ApplyLock: &applyMu,
		AfterScan: func(context.Context) error {
			return save()
		},
	})

	if journal != nil {
		l.detach = append(l.detach, journal.Attach(lib, func(err error) {
			e.log.Warn("watch", "Failed to journal change", logging.F("error", err.Error()))
		}))
	}
	if mgr.NotifierCount() > 0 {
		l.detach = append(l.detach, mgr.Attach(lib))
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := l.watcher.Start(ctx); err != nil {
			e.log.Error("watch", "Watcher stopped", err)
		}
	}()
	if interval > 0 {
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			l.periodic.Start(ctx)
		}()
	}

	e.log.Info("watch", "Watching libraries",
		logging.F("roots", len(roots)),
		logging.F("debounce", debounce.String()),
		logging.F("scan_interval", interval.String()))
	return l, nil
}

// Status reports the periodic scanner state.
func (l *live) Status() scanner.Status {
	return l.periodic.Status()
}

// Stop waits for the loops to end (ctx must be cancelled) and applies
// pending folder rescans.
func (l *live) Stop() error {
	l.watcher.Close()
	l.wg.Wait()
	err := l.handler.Flush(context.Background())
	l.handler.Close()
	for _, detach := range l.detach {
		detach()
	}
	return err
}

// newNotifyManager registers the configured media servers.
func newNotifyManager(cfg *config.Config, log *logging.Logger) *notify.Manager {
	mgr := notify.NewManager(log)
	mgr.Register(notify.NewJellyfinNotifier(cfg.Notify.JellyfinURL, cfg.Notify.JellyfinAPIKey))
	return mgr
}
