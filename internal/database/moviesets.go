package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Nomadcxx/mediashelf/internal/movie"
)

// UpsertMovieSet inserts or updates a movie set's metadata.
func (m *MediaDB) UpsertMovieSet(s *movie.MovieSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return upsertMovieSet(m.db, s)
}

func upsertMovieSet(q querier, s *movie.MovieSet) error {
	_, err := q.Exec(`
		INSERT INTO movie_sets (id, title, title_normalized, plot, poster, fanart, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			title_normalized = excluded.title_normalized,
			plot = excluded.plot,
			poster = excluded.poster,
			fanart = excluded.fanart,
			updated_at = excluded.updated_at`,
		s.ID, s.Title, NormalizeTitle(s.Title), s.Plot, s.Poster, s.Fanart, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("upsert movie set %s: %w", s.ID, err)
	}
	return nil
}

// GetMovieSet returns the set with the given ID without its members, or nil.
func (m *MediaDB) GetMovieSet(id string) (*movie.MovieSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, err := scanMovieSet(m.db.QueryRow(movieSetSelect+` WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// GetMovieSetByTitle looks a set up by normalized title, or returns nil.
func (m *MediaDB) GetMovieSetByTitle(title string) (*movie.MovieSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, err := scanMovieSet(m.db.QueryRow(movieSetSelect+` WHERE title_normalized = ? LIMIT 1`, NormalizeTitle(title)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// DeleteMovieSet removes a set; its movies stay and lose their set.
func (m *MediaDB) DeleteMovieSet(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.db.Exec(`DELETE FROM movie_sets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete movie set %s: %w", id, err)
	}
	return nil
}

const movieSetSelect = `SELECT id, title, plot, poster, fanart FROM movie_sets`

func scanMovieSet(row rowScanner) (*movie.MovieSet, error) {
	var s movie.MovieSet
	if err := row.Scan(&s.ID, &s.Title, &s.Plot, &s.Poster, &s.Fanart); err != nil {
		return nil, err
	}
	return &s, nil
}
