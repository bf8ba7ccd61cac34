// Package movie holds the library entities (movies and movie sets) and the
// in-memory Library that owns them.
package movie

import (
	"path/filepath"
	"strings"

	"github.com/Nomadcxx/mediashelf/internal/media"
	"github.com/google/uuid"
)

// Rating is a community rating on a 0..Max scale.
type Rating struct {
	Value float32
	Votes int
	Max   int
}

// Movie is a single movie folder and the files that belong to it.
type Movie struct {
	ID        string
	Title     string
	SortTitle string
	Year      int
	Path      string
	Plot      string
	Rating    Rating
	Watched   bool
	SetID     string // empty when the movie is not part of a set

	MediaFiles []*media.MediaFile
}

// NewMovie creates a Movie with a fresh ID.
func NewMovie(title string, year int, path string) *Movie {
	return &Movie{
		ID:    uuid.NewString(),
		Title: title,
		Year:  year,
		Path:  filepath.Clean(path),
	}
}

// AddMediaFile attaches mf unless a file with the same identity is already present.
func (m *Movie) AddMediaFile(mf *media.MediaFile) {
	for _, existing := range m.MediaFiles {
		if existing.SameFile(mf) {
			return
		}
	}
	m.MediaFiles = append(m.MediaFiles, mf)
}

// MediaFilesOfType returns the media files matching any of the given types.
func (m *Movie) MediaFilesOfType(types ...media.MediaFileType) []*media.MediaFile {
	var out []*media.MediaFile
	for _, mf := range m.MediaFiles {
		for _, t := range types {
			if mf.Type == t {
				out = append(out, mf)
				break
			}
		}
	}
	return out
}

// VideoFiles returns the main feature files, stacked parts included.
func (m *Movie) VideoFiles() []*media.MediaFile {
	return m.MediaFilesOfType(media.FileTypeVideo)
}

// VideoFilesize sums the size of all main feature files.
func (m *Movie) VideoFilesize() int64 {
	var size int64
	for _, mf := range m.VideoFiles() {
		size += mf.Filesize
	}
	return size
}

// VideoFormat returns the resolution class of the first video file.
func (m *Movie) VideoFormat() string {
	videos := m.VideoFiles()
	if len(videos) == 0 {
		return ""
	}
	return videos[0].VideoFormat()
}

// IsStacked reports whether the main feature is split over several files.
func (m *Movie) IsStacked() bool {
	for _, mf := range m.VideoFiles() {
		if mf.IsStacked() {
			return true
		}
	}
	return false
}

// HasNfo reports whether an NFO file exists for the movie.
func (m *Movie) HasNfo() bool {
	return len(m.MediaFilesOfType(media.FileTypeNFO)) > 0
}

// HasImages reports whether both poster and fanart are present.
func (m *Movie) HasImages() bool {
	return len(m.MediaFilesOfType(media.FileTypePoster)) > 0 &&
		len(m.MediaFilesOfType(media.FileTypeFanart)) > 0
}

// SortKey returns the title used for ordering.
func (m *Movie) SortKey() string {
	if m.SortTitle != "" {
		return m.SortTitle
	}
	return m.Title
}

// UpdateMediaFilePath rewrites the paths of all media files after the movie
// folder moved from oldPath to newPath. Files outside oldPath are untouched.
func (m *Movie) UpdateMediaFilePath(oldPath, newPath string) {
	oldPath = filepath.Clean(oldPath)
	newPath = filepath.Clean(newPath)
	prefix := oldPath + string(filepath.Separator)

	for _, mf := range m.MediaFiles {
		if !strings.HasPrefix(mf.Path, prefix) {
			continue
		}
		mf.SetPath(filepath.Join(newPath, strings.TrimPrefix(mf.Path, prefix)))
	}
}
