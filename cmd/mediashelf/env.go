package main

import (
	"fmt"
	"path/filepath"

	"github.com/Nomadcxx/mediashelf/internal/activity"
	"github.com/Nomadcxx/mediashelf/internal/config"
	"github.com/Nomadcxx/mediashelf/internal/database"
	"github.com/Nomadcxx/mediashelf/internal/logging"
	"github.com/Nomadcxx/mediashelf/internal/movie"
	"golang.org/x/text/language"
)

// env bundles what most commands need: config, logger and database.
type env struct {
	cfg *config.Config
	log *logging.Logger
	db  *database.MediaDB

	journal *activity.Logger
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFile(cfgFile)
	}
	return config.Load()
}

// openEnv loads the config, creates the logger and opens the database.
func openEnv() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := cfg.Logging
	if verbose {
		logCfg.Level = "debug"
	}
	log, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}
	db, err := database.OpenPath(dbPath)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	log.Debug("main", "Database opened", logging.F("path", dbPath))

	return &env{cfg: cfg, log: log, db: db}, nil
}

func (e *env) Close() {
	if e.journal != nil {
		e.journal.Close()
	}
	e.db.Close()
	e.log.Close()
}

func (e *env) loadLibrary() (*movie.Library, error) {
	lib, err := e.db.LoadLibrary()
	if err != nil {
		return nil, fmt.Errorf("failed to load library: %w", err)
	}
	return lib, nil
}

// language returns the configured collation language, English when unset
// or invalid.
func (e *env) language() language.Tag {
	tag, err := language.Parse(e.cfg.Browse.Language)
	if err != nil {
		e.log.Warn("main", "Invalid browse.language, using English", logging.F("language", e.cfg.Browse.Language))
		return language.English
	}
	return tag
}

// openJournal opens the activity journal next to the database and prunes old
// days. It returns nil when watch.activity_days is 0.
func (e *env) openJournal() (*activity.Logger, error) {
	if e.journal != nil || e.cfg.Watch.ActivityDays == 0 {
		return e.journal, nil
	}
	j, err := activity.NewLogger(filepath.Dir(e.db.Path()))
	if err != nil {
		return nil, fmt.Errorf("failed to open activity journal: %w", err)
	}
	if err := j.PruneOld(e.cfg.Watch.ActivityDays); err != nil {
		e.log.Warn("main", "Failed to prune activity journal", logging.F("error", err.Error()))
	}
	e.journal = j
	return j, nil
}
