package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Nomadcxx/mediashelf/internal/logging"
	"github.com/Nomadcxx/mediashelf/internal/movie"
)

// PeriodicConfig configures a PeriodicScanner.
type PeriodicConfig struct {
	Interval time.Duration
	Roots    []string
	Library  *movie.Library
	Scanner  *Scanner
	Logger   *logging.Logger
	// ApplyLock is held while a scan result is merged into Library. Share it
	// with other writers of the same library.
	ApplyLock sync.Locker
	// AfterScan runs after every successful pass, e.g. to persist the library.
	AfterScan func(ctx context.Context) error
}

// Status is the health snapshot of a PeriodicScanner.
type Status struct {
	Healthy      bool      `json:"healthy"`
	LastScan     time.Time `json:"last_scan,omitempty"`
	LastSuccess  time.Time `json:"last_success,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
	SkippedTicks int64     `json:"skipped_ticks"`
	Scanning     bool      `json:"scanning"`
}

// PeriodicScanner rescans the library roots on a fixed interval to pick up
// changes the file watcher missed.
type PeriodicScanner struct {
	cfg PeriodicConfig
	log *logging.Logger

	mu           sync.Mutex
	scanning     bool
	lastScan     time.Time
	lastSuccess  time.Time
	lastError    error
	skippedTicks int64
	healthy      bool
}

// NewPeriodicScanner creates a PeriodicScanner.
func NewPeriodicScanner(cfg PeriodicConfig) *PeriodicScanner {
	if cfg.Scanner == nil {
		cfg.Scanner = New(WithLogger(cfg.Logger))
	}
	if cfg.ApplyLock == nil {
		cfg.ApplyLock = &sync.Mutex{}
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Nop()
	}
	return &PeriodicScanner{cfg: cfg, log: log, healthy: true}
}

// Status returns the current state.
func (p *PeriodicScanner) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := Status{
		Healthy:      p.healthy,
		LastScan:     p.lastScan,
		LastSuccess:  p.lastSuccess,
		SkippedTicks: p.skippedTicks,
		Scanning:     p.scanning,
	}
	if p.lastError != nil {
		st.LastError = p.lastError.Error()
	}
	return st
}

// Start runs the loop until ctx is cancelled.
func (p *PeriodicScanner) Start(ctx context.Context) error {
	if p.cfg.Interval <= 0 {
		return fmt.Errorf("periodic scan interval must be positive, got %s", p.cfg.Interval)
	}
	p.log.Info("scanner", "Periodic scanner starting",
		logging.F("interval", p.cfg.Interval.String()),
		logging.F("roots", len(p.cfg.Roots)))

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("scanner", "Periodic scanner stopped")
			return nil
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick runs one pass unless the previous one is still busy.
func (p *PeriodicScanner) Tick(ctx context.Context) {
	p.mu.Lock()
	if p.scanning {
		p.skippedTicks++
		skipped := p.skippedTicks
		p.mu.Unlock()
		p.log.Warn("scanner", "Periodic scan skipped, previous scan still running",
			logging.F("skipped_ticks", skipped))
		return
	}
	p.scanning = true
	p.mu.Unlock()

	err := p.run(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.scanning = false
	p.lastScan = time.Now()
	if err != nil {
		p.lastError = err
		p.healthy = false
		p.log.Error("scanner", "Periodic scan failed", err)
		return
	}
	p.lastSuccess = p.lastScan
	p.lastError = nil
	p.healthy = true
}

func (p *PeriodicScanner) run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scan panic: %v", r)
		}
	}()

	for _, root := range p.cfg.Roots {
		res, err := p.cfg.Scanner.Scan(ctx, root)
		if err != nil {
			return fmt.Errorf("scan %s: %w", root, err)
		}
		p.cfg.ApplyLock.Lock()
		stats := Apply(p.cfg.Library, res)
		p.cfg.ApplyLock.Unlock()
		p.log.Info("scanner", "Periodic scan applied",
			logging.F("root", root),
			logging.F("added", stats.MoviesAdded),
			logging.F("updated", stats.MoviesUpdated),
			logging.F("removed", stats.MoviesRemoved))
	}
	if p.cfg.AfterScan != nil {
		return p.cfg.AfterScan(ctx)
	}
	return nil
}
