package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Nomadcxx/mediashelf/internal/media"
	"github.com/Nomadcxx/mediashelf/internal/movie"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// UpsertMovie stores m together with its media files and audio streams. A
// different movie stored for the same folder is replaced.
func (m *MediaDB) UpsertMovie(mov *movie.Movie) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.inTx(func(tx *sql.Tx) error {
		return upsertMovie(tx, mov)
	})
}

func upsertMovie(q querier, mov *movie.Movie) error {
	if _, err := q.Exec(`DELETE FROM movies WHERE path = ? AND id != ?`, mov.Path, mov.ID); err != nil {
		return fmt.Errorf("replace movie at %s: %w", mov.Path, err)
	}

	_, err := q.Exec(`
		INSERT INTO movies (
			id, title, title_normalized, sort_title, year, path, plot,
			rating, votes, rating_max, watched, set_id, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			title_normalized = excluded.title_normalized,
			sort_title = excluded.sort_title,
			year = excluded.year,
			path = excluded.path,
			plot = excluded.plot,
			rating = excluded.rating,
			votes = excluded.votes,
			rating_max = excluded.rating_max,
			watched = excluded.watched,
			set_id = excluded.set_id,
			updated_at = excluded.updated_at`,
		mov.ID, mov.Title, NormalizeTitle(mov.Title), mov.SortTitle, mov.Year, mov.Path, mov.Plot,
		mov.Rating.Value, mov.Rating.Votes, mov.Rating.Max, mov.Watched, nullString(mov.SetID), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("upsert movie %s: %w", mov.ID, err)
	}

	if _, err := q.Exec(`DELETE FROM media_files WHERE movie_id = ?`, mov.ID); err != nil {
		return fmt.Errorf("clear media files: %w", err)
	}
	for _, mf := range mov.MediaFiles {
		if err := insertMediaFile(q, mov.ID, mf); err != nil {
			return err
		}
	}
	return nil
}

func insertMediaFile(q querier, movieID string, mf *media.MediaFile) error {
	res, err := q.Exec(`
		INSERT INTO media_files (
			movie_id, path, type, size, stacking, stacking_marker,
			video_codec, video_width, video_height
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		movieID, mf.Path, string(mf.Type), mf.Filesize, mf.Stacking, mf.StackingMarker,
		mf.VideoCodec, mf.VideoWidth, mf.VideoHeight,
	)
	if err != nil {
		return fmt.Errorf("insert media file %s: %w", mf.Path, err)
	}
	fileID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for i, a := range mf.AudioStreams {
		_, err := q.Exec(`
			INSERT INTO audio_streams (media_file_id, position, codec, channels, language, bitrate)
			VALUES (?, ?, ?, ?, ?, ?)`,
			fileID, i, a.Codec, a.Channels, a.Language, a.Bitrate,
		)
		if err != nil {
			return fmt.Errorf("insert audio stream: %w", err)
		}
	}
	return nil
}

// GetMovie returns the movie with the given ID, or nil if there is none.
func (m *MediaDB) GetMovie(id string) (*movie.Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mov, err := scanMovie(m.db.QueryRow(movieSelect+` WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	files, err := loadMediaFiles(m.db, []string{mov.ID})
	if err != nil {
		return nil, err
	}
	mov.MediaFiles = files[mov.ID]
	return mov, nil
}

// GetMovieByPath returns the movie stored for a folder, or nil.
func (m *MediaDB) GetMovieByPath(path string) (*movie.Movie, error) {
	m.mu.RLock()
	var id string
	err := m.db.QueryRow(`SELECT id FROM movies WHERE path = ?`, path).Scan(&id)
	m.mu.RUnlock()
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m.GetMovie(id)
}

// DeleteMovie removes a movie and its files. Unknown IDs are not an error.
func (m *MediaDB) DeleteMovie(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.db.Exec(`DELETE FROM movies WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete movie %s: %w", id, err)
	}
	return nil
}

// SearchMovies returns movies whose normalized title contains query.
func (m *MediaDB) SearchMovies(query string) ([]*movie.Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return queryMovies(m.db, movieSelect+` WHERE title_normalized LIKE ? ORDER BY title`,
		"%"+NormalizeTitle(query)+"%")
}

const movieSelect = `SELECT id, title, sort_title, year, path, plot,
	rating, votes, rating_max, watched, set_id FROM movies`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (*movie.Movie, error) {
	var mov movie.Movie
	var setID sql.NullString
	err := row.Scan(
		&mov.ID, &mov.Title, &mov.SortTitle, &mov.Year, &mov.Path, &mov.Plot,
		&mov.Rating.Value, &mov.Rating.Votes, &mov.Rating.Max, &mov.Watched, &setID,
	)
	if err != nil {
		return nil, err
	}
	mov.SetID = setID.String
	return &mov, nil
}

func queryMovies(q querier, query string, args ...any) ([]*movie.Movie, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movies []*movie.Movie
	var ids []string
	for rows.Next() {
		mov, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, mov)
		ids = append(ids, mov.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	files, err := loadMediaFiles(q, ids)
	if err != nil {
		return nil, err
	}
	for _, mov := range movies {
		mov.MediaFiles = files[mov.ID]
	}
	return movies, nil
}

// loadMediaFiles returns the media files of the given movies keyed by movie ID.
// The stored type is kept as is, so a changed classifier does not silently
// reshuffle a library until it is rescanned.
func loadMediaFiles(q querier, movieIDs []string) (map[string][]*media.MediaFile, error) {
	out := make(map[string][]*media.MediaFile, len(movieIDs))
	if len(movieIDs) == 0 {
		return out, nil
	}
	want := make(map[string]bool, len(movieIDs))
	for _, id := range movieIDs {
		want[id] = true
	}

	rows, err := q.Query(`
		SELECT id, movie_id, path, type, size, stacking, stacking_marker,
		       video_codec, video_width, video_height
		FROM media_files ORDER BY movie_id, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int64]*media.MediaFile)
	for rows.Next() {
		var fileID int64
		var movieID, path, typ string
		var mf media.MediaFile
		if err := rows.Scan(&fileID, &movieID, &path, &typ, &mf.Filesize, &mf.Stacking, &mf.StackingMarker,
			&mf.VideoCodec, &mf.VideoWidth, &mf.VideoHeight); err != nil {
			return nil, err
		}
		if !want[movieID] {
			continue
		}
		mf.SetPath(path)
		mf.Type = media.MediaFileType(typ)
		out[movieID] = append(out[movieID], &mf)
		byID[fileID] = &mf
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(byID) == 0 {
		return out, nil
	}
	arows, err := q.Query(`
		SELECT media_file_id, codec, channels, language, bitrate
		FROM audio_streams ORDER BY media_file_id, position`)
	if err != nil {
		return nil, err
	}
	defer arows.Close()
	for arows.Next() {
		var fileID int64
		var a media.AudioStream
		if err := arows.Scan(&fileID, &a.Codec, &a.Channels, &a.Language, &a.Bitrate); err != nil {
			return nil, err
		}
		if mf := byID[fileID]; mf != nil {
			mf.AudioStreams = append(mf.AudioStreams, a)
		}
	}
	return out, arows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (m *MediaDB) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
