// Package database persists the movie library in SQLite.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// MediaDB is the database handle for the movie library.
type MediaDB struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// OpenPath opens or creates the database at path and migrates it.
func OpenPath(path string) (*MediaDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return initDB(db, path)
}

// OpenInMemory opens a private in-memory database, used by tests and
// one-shot commands.
func OpenInMemory() (*MediaDB, error) {
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// every new connection would get its own empty memory database
	db.SetMaxOpenConns(1)
	return initDB(db, ":memory:")
}

func initDB(db *sql.DB, path string) (*MediaDB, error) {
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	mdb := &MediaDB{db: db, path: path}
	if err := applyMigrations(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return mdb, nil
}

// Close closes the database connection.
func (m *MediaDB) Close() error {
	return m.db.Close()
}

// Path returns the database file path, ":memory:" for in-memory databases.
func (m *MediaDB) Path() string {
	return m.path
}

// SchemaVersion returns the applied schema version.
func (m *MediaDB) SchemaVersion() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return schemaVersion(context.Background(), m.db)
}
