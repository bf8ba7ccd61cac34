// Package media classifies the files that make up a movie: videos and their
// extras, artwork, NFOs, subtitles, plus the audio metadata attached to them.
package media

import (
	"os"
	"path/filepath"
)

// MediaFile is a single file on disk belonging to a movie. The type is decided
// once from the path when the MediaFile is created; stacking information is
// filled in later by whoever knows the folder holds a multi-part video.
type MediaFile struct {
	Path     string
	Filename string
	Type     MediaFileType
	Filesize int64

	VideoCodec   string
	VideoWidth   int
	VideoHeight  int
	AudioStreams []AudioStream

	Stacking       int
	StackingMarker string
}

// NewMediaFile creates a MediaFile for path and classifies it.
func NewMediaFile(path string) *MediaFile {
	clean := filepath.Clean(path)
	return &MediaFile{
		Path:     clean,
		Filename: filepath.Base(clean),
		Type:     classify(clean),
	}
}

// Dir returns the directory containing the file.
func (mf *MediaFile) Dir() string {
	return filepath.Dir(mf.Path)
}

// Basename returns the filename without its extension.
func (mf *MediaFile) Basename() string {
	return trimExtension(mf.Filename)
}

// SetPath moves the MediaFile to a new location. The type is kept.
func (mf *MediaFile) SetPath(path string) {
	mf.Path = filepath.Clean(path)
	mf.Filename = filepath.Base(mf.Path)
}

// SetStacking sets the 1-based part index, 0 means not stacked.
func (mf *MediaFile) SetStacking(index int) {
	mf.Stacking = index
}

// SetStackingMarker sets the marker text ("cd1", "part 1") found in the name.
func (mf *MediaFile) SetStackingMarker(marker string) {
	mf.StackingMarker = marker
}

// DetectStacking parses the stacking marker from the filename and stores it.
func (mf *MediaFile) DetectStacking() bool {
	index, marker, ok := ParseStacking(mf.Filename)
	if !ok {
		return false
	}
	mf.Stacking = index
	mf.StackingMarker = marker
	return true
}

// IsStacked reports whether the file is one part of a multi-part video.
func (mf *MediaFile) IsStacked() bool {
	return mf.Stacking > 0 && mf.StackingMarker != ""
}

// FilenameWithoutStacking returns the filename with the stacking marker
// removed, so all parts of a stack share the same value.
func (mf *MediaFile) FilenameWithoutStacking() string {
	return removeStackingMarker(mf.Filename, mf.StackingMarker)
}

// SameFile reports whether both MediaFiles point at the same file. Existing
// files are compared by identity, so "movie.mkv" and "Movie.mkv" are the same
// file exactly when the filesystem says so. Paths that cannot be stat'ed fall
// back to the platform's case rule.
func (mf *MediaFile) SameFile(other *MediaFile) bool {
	if other == nil {
		return false
	}
	a, errA := os.Stat(mf.Path)
	b, errB := os.Stat(other.Path)
	if errA == nil && errB == nil {
		return os.SameFile(a, b)
	}
	return pathsEqual(absPath(mf.Path), absPath(other.Path))
}

// VideoFormat returns the resolution class ("720p", "1080p", ...) of the
// video stream, or "" when the dimensions are unknown.
func (mf *MediaFile) VideoFormat() string {
	w, h := mf.VideoWidth, mf.VideoHeight
	switch {
	case w <= 0 || h <= 0:
		return ""
	case w <= 720 && h <= 480:
		return "480p"
	case w <= 768 && h <= 576:
		return "576p"
	case w <= 1280 && h <= 720:
		return "720p"
	case w <= 1920 && h <= 1080:
		return "1080p"
	case w <= 3840 && h <= 2160:
		return "2160p"
	default:
		return "4320p"
	}
}

// MaxAudioChannels returns the highest channel count over all audio streams.
func (mf *MediaFile) MaxAudioChannels() int {
	best := 0
	for _, a := range mf.AudioStreams {
		if n := a.ChannelsAsInt(); n > best {
			best = n
		}
	}
	return best
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
