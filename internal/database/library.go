package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Nomadcxx/mediashelf/internal/movie"
)

// SaveLibrary makes the database mirror lib: all sets and movies are
// written and rows for entities no longer in the library are deleted, in a
// single transaction.
func (m *MediaDB) SaveLibrary(lib *movie.Library) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sets := lib.MovieSets()
	movies := lib.Movies()

	return m.inTx(func(tx *sql.Tx) error {
		setIDs := make([]string, 0, len(sets))
		for _, s := range sets {
			if err := upsertMovieSet(tx, s); err != nil {
				return err
			}
			setIDs = append(setIDs, s.ID)
		}

		movieIDs := make([]string, 0, len(movies))
		for _, mov := range movies {
			if err := upsertMovie(tx, mov); err != nil {
				return err
			}
			movieIDs = append(movieIDs, mov.ID)
		}

		if err := deleteExcept(tx, "movies", movieIDs); err != nil {
			return err
		}
		return deleteExcept(tx, "movie_sets", setIDs)
	})
}

// deleteExcept removes every row of table whose id is not in keep.
func deleteExcept(tx *sql.Tx, table string, keep []string) error {
	if len(keep) == 0 {
		_, err := tx.Exec(`DELETE FROM ` + table)
		return err
	}
	// sqlite limits bound parameters, so go through a temp table
	if _, err := tx.Exec(`CREATE TEMP TABLE IF NOT EXISTS keep_ids (id TEXT PRIMARY KEY)`); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM keep_ids`); err != nil {
		return err
	}
	for _, id := range keep {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO keep_ids (id) VALUES (?)`, id); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`DELETE FROM ` + table + ` WHERE id NOT IN (SELECT id FROM keep_ids)`); err != nil {
		return fmt.Errorf("prune %s: %w", table, err)
	}
	return nil
}

// LoadLibrary reads everything into a new Library.
func (m *MediaDB) LoadLibrary() (*movie.Library, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows, err := m.db.Query(movieSetSelect + ` ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("load movie sets: %w", err)
	}
	var sets []*movie.MovieSet
	for rows.Next() {
		s, err := scanMovieSet(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		sets = append(sets, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	movies, err := queryMovies(m.db, movieSelect+` ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("load movies: %w", err)
	}

	lib := movie.NewLibrary()
	for _, s := range sets {
		lib.AddMovieSet(s)
	}
	for _, mov := range movies {
		lib.AddMovie(mov)
	}
	return lib, nil
}

// Stats summarises the database contents.
type Stats struct {
	Movies     int
	MovieSets  int
	MediaFiles int
	// FilesByType counts media files per MediaFileType name.
	FilesByType map[string]int
}

// CountMovies returns the number of stored movies.
func (m *MediaDB) CountMovies() (int, error) {
	return m.count(`SELECT COUNT(*) FROM movies`)
}

// CountMovieSets returns the number of stored movie sets.
func (m *MediaDB) CountMovieSets() (int, error) {
	return m.count(`SELECT COUNT(*) FROM movie_sets`)
}

func (m *MediaDB) count(query string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int
	if err := m.db.QueryRow(query).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// GetStats returns counts for movies, sets and files.
func (m *MediaDB) GetStats() (*Stats, error) {
	stats := &Stats{FilesByType: make(map[string]int)}
	var err error
	if stats.Movies, err = m.CountMovies(); err != nil {
		return nil, err
	}
	if stats.MovieSets, err = m.CountMovieSets(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	rows, err := m.db.Query(`SELECT type, COUNT(*) FROM media_files GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		stats.FilesByType[strings.ToUpper(typ)] = n
		stats.MediaFiles += n
	}
	return stats, rows.Err()
}
