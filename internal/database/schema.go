package database

import (
	"context"
	"database/sql"
	"fmt"
)

const currentSchemaVersion = 2

var migrations = []migration{
	{
		version: 1,
		up: []string{
			`CREATE TABLE schema_version (
				version INTEGER PRIMARY KEY,
				applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,

			`CREATE TABLE movie_sets (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				title_normalized TEXT NOT NULL,
				plot TEXT NOT NULL DEFAULT '',
				poster TEXT NOT NULL DEFAULT '',
				fanart TEXT NOT NULL DEFAULT '',
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_movie_sets_normalized ON movie_sets(title_normalized)`,

			`CREATE TABLE movies (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				title_normalized TEXT NOT NULL,
				sort_title TEXT NOT NULL DEFAULT '',
				year INTEGER NOT NULL DEFAULT 0,
				path TEXT NOT NULL UNIQUE,
				plot TEXT NOT NULL DEFAULT '',
				rating REAL NOT NULL DEFAULT 0,
				votes INTEGER NOT NULL DEFAULT 0,
				rating_max INTEGER NOT NULL DEFAULT 0,
				watched BOOLEAN NOT NULL DEFAULT 0,
				set_id TEXT REFERENCES movie_sets(id) ON DELETE SET NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_movies_normalized ON movies(title_normalized)`,
			`CREATE INDEX idx_movies_set ON movies(set_id)`,

			`CREATE TABLE media_files (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				movie_id TEXT NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
				path TEXT NOT NULL,
				type TEXT NOT NULL,
				size INTEGER NOT NULL DEFAULT 0,
				stacking INTEGER NOT NULL DEFAULT 0,
				stacking_marker TEXT NOT NULL DEFAULT '',
				UNIQUE(movie_id, path)
			)`,
			`CREATE INDEX idx_media_files_movie ON media_files(movie_id)`,

			`INSERT INTO schema_version (version) VALUES (1)`,
		},
	},
	{
		version: 2,
		up: []string{
			// stream details from NFOs or probing
			`ALTER TABLE media_files ADD COLUMN video_codec TEXT NOT NULL DEFAULT ''`,
			`ALTER TABLE media_files ADD COLUMN video_width INTEGER NOT NULL DEFAULT 0`,
			`ALTER TABLE media_files ADD COLUMN video_height INTEGER NOT NULL DEFAULT 0`,
			`CREATE TABLE audio_streams (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				media_file_id INTEGER NOT NULL REFERENCES media_files(id) ON DELETE CASCADE,
				position INTEGER NOT NULL,
				codec TEXT NOT NULL DEFAULT '',
				channels TEXT NOT NULL DEFAULT '',
				language TEXT NOT NULL DEFAULT '',
				bitrate INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE INDEX idx_audio_streams_file ON audio_streams(media_file_id)`,
			`INSERT INTO schema_version (version) VALUES (2)`,
		},
	},
}

type migration struct {
	version int
	up      []string
}

func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'`,
	).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}

	var version sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version); err != nil {
		return 0, err
	}
	return int(version.Int64), nil
}

// applyMigrations runs every migration newer than the stored version, each in
// its own transaction. Every migration records its own version row.
func applyMigrations(ctx context.Context, db *sql.DB) error {
	current, err := schemaVersion(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", current, currentSchemaVersion)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		for _, stmt := range m.up {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d: %w", m.version, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
	}
	return nil
}
