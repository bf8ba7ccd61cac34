// Package scanner walks movie library roots and turns folders into movies,
// movie sets and classified media files.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Nomadcxx/mediashelf/internal/logging"
	"github.com/Nomadcxx/mediashelf/internal/media"
	"github.com/Nomadcxx/mediashelf/internal/movie"
	"github.com/Nomadcxx/mediashelf/internal/naming"
)

// SetsDir is the folder below a library root holding movie set artwork as
// <root>/.sets/<set title>/poster.jpg and fanart.jpg.
const SetsDir = ".sets"

// auxDirs hold files that belong to the enclosing movie folder.
var auxDirs = map[string]bool{
	"extra": true, "extras": true,
	"trailer": true, "trailers": true,
	"sample": true, "samples": true,
	"subs": true, "subtitles": true,
}

// Result is the outcome of scanning one library root.
type Result struct {
	Root         string
	Movies       []*movie.Movie
	MovieSets    []*movie.MovieSet
	FilesScanned int
	Duration     time.Duration
	Errors       []error
}

// Progress is reported while walking.
type Progress struct {
	FilesScanned int
	CurrentPath  string
}

// ProgressCallback receives progress updates.
type ProgressCallback func(Progress)

const progressReportInterval = 25

// Scanner builds movies from folders on disk.
type Scanner struct {
	log        *logging.Logger
	onProgress ProgressCallback
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger (default: discard).
func WithLogger(l *logging.Logger) Option {
	return func(s *Scanner) { s.log = l }
}

// WithProgress sets a progress callback.
func WithProgress(fn ProgressCallback) Option {
	return func(s *Scanner) { s.onProgress = fn }
}

// New creates a Scanner.
func New(opts ...Option) *Scanner {
	s := &Scanner{log: logging.Nop()}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = logging.Nop()
	}
	return s
}

// Scan walks root. Every folder holding at least one main video becomes a
// movie; extras, trailer, sample and subtitle folders are folded into the
// movie above them. Unreadable entries are recorded in Result.Errors and
// skipped; cancelling ctx aborts the walk.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	start := time.Now()
	root = filepath.Clean(root)
	if info, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("stat library root: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("library root %s is not a directory", root)
	}

	s.log.Info("scanner", "Scan starting", logging.F("root", root))
	result := &Result{Root: root}
	groups := make(map[string][]*media.MediaFile)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			result.Errors = append(result.Errors, fmt.Errorf("walk %s: %w", path, walkErr))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		mf, err := newMediaFile(path, d)
		if err != nil {
			result.Errors = append(result.Errors, err)
			return nil
		}
		if mf.Type == media.FileTypeUnknown {
			return nil
		}

		result.FilesScanned++
		if s.onProgress != nil && result.FilesScanned%progressReportInterval == 0 {
			s.onProgress(Progress{FilesScanned: result.FilesScanned, CurrentPath: path})
		}

		owner := ownerDir(root, filepath.Dir(path))
		groups[owner] = append(groups[owner], mf)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sets := make(map[string]*movie.MovieSet)
	dirs := make([]string, 0, len(groups))
	for dir := range groups {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		m, setName, ok := s.buildMovie(dir, groups[dir], result)
		if !ok {
			continue
		}
		if setName != "" {
			set := sets[strings.ToLower(setName)]
			if set == nil {
				set = movie.NewMovieSet(setName)
				loadSetArtwork(root, set)
				sets[strings.ToLower(setName)] = set
				result.MovieSets = append(result.MovieSets, set)
			}
			m.SetID = set.ID
		}
		result.Movies = append(result.Movies, m)
	}

	if s.onProgress != nil {
		s.onProgress(Progress{FilesScanned: result.FilesScanned})
	}
	result.Duration = time.Since(start)
	s.log.Info("scanner", "Scan complete",
		logging.F("root", root),
		logging.F("movies", len(result.Movies)),
		logging.F("sets", len(result.MovieSets)),
		logging.F("files", result.FilesScanned),
		logging.F("errors", len(result.Errors)),
		logging.F("duration_ms", result.Duration.Milliseconds()))
	return result, nil
}

// ScanMovieDir scans a single movie folder below root. It returns nil when the
// folder holds no main video.
func (s *Scanner) ScanMovieDir(ctx context.Context, root, dir string) (*movie.Movie, string, error) {
	dir = ownerDir(filepath.Clean(root), filepath.Clean(dir))

	var files []*media.MediaFile
	var errs []error
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			return walkErr
		}
		if path == dir {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			// only auxiliary folders belong to this movie
			if !auxDirs[strings.ToLower(d.Name())] {
				return filepath.SkipDir
			}
			return nil
		}
		mf, err := newMediaFile(path, d)
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if mf.Type != media.FileTypeUnknown {
			files = append(files, mf)
		}
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("scan movie dir %s: %w", dir, err)
	}

	result := &Result{Root: root}
	m, setName, ok := s.buildMovie(dir, files, result)
	for _, e := range result.Errors {
		s.log.Warn("scanner", "Problem while scanning movie", logging.F("dir", dir), logging.F("error", e.Error()))
	}
	for _, e := range errs {
		s.log.Warn("scanner", "Unreadable file", logging.F("error", e.Error()))
	}
	if !ok {
		return nil, "", nil
	}
	return m, setName, nil
}

func newMediaFile(path string, d fs.DirEntry) (*media.MediaFile, error) {
	mf := media.NewMediaFile(path)
	if mf.Type == media.FileTypeUnknown {
		return mf, nil
	}
	info, err := d.Info()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	mf.Filesize = info.Size()
	return mf, nil
}

// ownerDir climbs out of auxiliary folders ("Movie/extras/x" -> "Movie").
func ownerDir(root, dir string) string {
	for dir != root && auxDirs[strings.ToLower(filepath.Base(dir))] {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return dir
}

// buildMovie turns the files of one folder into a movie. It reports false
// when the folder has no main video.
func (s *Scanner) buildMovie(dir string, files []*media.MediaFile, result *Result) (*movie.Movie, string, bool) {
	if !hasMainVideo(files) {
		return nil, "", false
	}
	detectStacks(files)

	var nfo *NFO
	if path := pickNFO(dir, files); path != "" {
		n, err := ParseNFO(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("nfo %s: %w", path, err))
		} else {
			nfo = n
		}
	}

	title, year := "", 0
	if info, err := naming.ParseMovieName(filepath.Base(dir)); err == nil {
		title, year = info.Title, info.Year
	} else {
		title = filepath.Base(dir)
	}
	if nfo != nil {
		if nfo.Title != "" {
			title = nfo.Title
		}
		if nfo.Year > 0 {
			year = nfo.Year
		}
	}

	m := movie.NewMovie(title, year, dir)
	m.SortTitle = naming.SortTitle(title)
	for _, mf := range files {
		m.AddMediaFile(mf)
	}

	setName := ""
	if nfo != nil {
		if nfo.SortTitle != "" {
			m.SortTitle = nfo.SortTitle
		}
		m.Plot = nfo.Plot
		m.Rating = movie.Rating{Value: nfo.Rating, Votes: nfo.Votes, Max: nfo.RatingMax}
		m.Watched = nfo.Watched
		setName = nfo.SetName
		applyStreamDetails(m, nfo)
	}

	s.log.Debug("scanner", "Movie found",
		logging.F("title", m.Title),
		logging.F("year", m.Year),
		logging.F("files", len(m.MediaFiles)),
		logging.F("stacked", m.IsStacked()))
	return m, setName, true
}

func hasMainVideo(files []*media.MediaFile) bool {
	for _, mf := range files {
		if mf.Type == media.FileTypeVideo {
			return true
		}
	}
	return false
}

// detectStacks marks videos as stacked only when at least two main videos of
// the folder reduce to the same name once the part marker is gone.
func detectStacks(files []*media.MediaFile) {
	byName := make(map[string][]*media.MediaFile)
	for _, mf := range files {
		if mf.Type != media.FileTypeVideo || !mf.DetectStacking() {
			continue
		}
		key := strings.ToLower(filepath.Join(mf.Dir(), mf.FilenameWithoutStacking()))
		byName[key] = append(byName[key], mf)
	}
	for _, group := range byName {
		if len(group) > 1 {
			continue
		}
		group[0].SetStacking(0)
		group[0].SetStackingMarker("")
	}
}

// pickNFO prefers movie.nfo, then an NFO named like a main video, then any
// NFO in the movie folder itself.
func pickNFO(dir string, files []*media.MediaFile) string {
	var nfos []*media.MediaFile
	videoNames := make(map[string]bool)
	for _, mf := range files {
		switch mf.Type {
		case media.FileTypeNFO:
			if mf.Dir() == dir {
				nfos = append(nfos, mf)
			}
		case media.FileTypeVideo:
			videoNames[strings.ToLower(mf.Basename())] = true
			videoNames[strings.ToLower(strings.TrimSuffix(mf.FilenameWithoutStacking(), filepath.Ext(mf.Filename)))] = true
		}
	}
	for _, n := range nfos {
		if strings.EqualFold(n.Filename, "movie.nfo") {
			return n.Path
		}
	}
	for _, n := range nfos {
		if videoNames[strings.ToLower(n.Basename())] {
			return n.Path
		}
	}
	if len(nfos) > 0 {
		return nfos[0].Path
	}
	return ""
}

// applyStreamDetails copies NFO stream details onto the first main video
// when the file itself carries none.
func applyStreamDetails(m *movie.Movie, nfo *NFO) {
	videos := m.VideoFiles()
	if len(videos) == 0 {
		return
	}
	v := videos[0]
	if v.VideoWidth == 0 && v.VideoHeight == 0 {
		v.VideoCodec = nfo.VideoCodec
		v.VideoWidth = nfo.VideoWidth
		v.VideoHeight = nfo.VideoHeight
	}
	if len(v.AudioStreams) == 0 {
		for _, a := range nfo.Audio {
			v.AudioStreams = append(v.AudioStreams, media.AudioStream{
				Codec:    a.Codec,
				Channels: a.Channels,
				Language: a.Language,
			})
		}
	}
}

var artworkExts = []string{".jpg", ".jpeg", ".png"}

// loadSetArtwork looks for poster and fanart under <root>/.sets/<title>/.
func loadSetArtwork(root string, set *movie.MovieSet) {
	dir := filepath.Join(root, SetsDir, set.Title)
	find := func(name string) string {
		for _, ext := range artworkExts {
			p := filepath.Join(dir, name+ext)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
		return ""
	}
	set.Poster = find("poster")
	set.Fanart = find("fanart")
}

// MovieDir returns the movie folder that owns dir below root.
func MovieDir(root, dir string) string {
	return ownerDir(filepath.Clean(root), filepath.Clean(dir))
}
