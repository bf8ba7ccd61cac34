// Package activity keeps a daily JSONL journal of library changes: movies
// and movie sets that appeared, changed or went away.
package activity

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Nomadcxx/mediashelf/internal/movie"
)

type Entry struct {
	Timestamp time.Time `json:"ts"`
	Action    string    `json:"action"`
	MovieID   string    `json:"movie_id,omitempty"`
	SetID     string    `json:"set_id,omitempty"`
	Title     string    `json:"title"`
	Year      int       `json:"year,omitempty"`
	Path      string    `json:"path,omitempty"`
	Set       string    `json:"set,omitempty"`
	// PreviousSet is the set a movie left when it moved between sets.
	PreviousSet string `json:"previous_set,omitempty"`
}

type Logger struct {
	mu          sync.Mutex
	logDir      string
	currentFile *os.File
	currentDate string
	now         func() time.Time
}

// NewLogger journals into <dir>/activity.
func NewLogger(dir string) (*Logger, error) {
	logDir := filepath.Join(dir, "activity")

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}

	return &Logger{
		logDir: logDir,
		now:    time.Now,
	}, nil
}

// EntryFor converts a library event into a journal entry.
func EntryFor(e movie.Event) Entry {
	entry := Entry{Action: e.Type.String()}
	if e.Movie != nil {
		entry.MovieID = e.Movie.ID
		entry.Title = e.Movie.Title
		entry.Year = e.Movie.Year
		entry.Path = e.Movie.Path
		if e.MovieSet != nil {
			entry.Set = e.MovieSet.Title
		}
		if e.PreviousSet != nil && e.PreviousSet != e.MovieSet {
			entry.PreviousSet = e.PreviousSet.Title
		}
		return entry
	}
	if e.MovieSet != nil {
		entry.SetID = e.MovieSet.ID
		entry.Title = e.MovieSet.Title
	}
	return entry
}

// Attach journals every event of lib until the returned cancel is called.
// Movie updates that keep the movie in the same set are skipped; every
// rescan emits one per movie.
func (l *Logger) Attach(lib *movie.Library, onError func(error)) (cancel func()) {
	return lib.Subscribe(func(e movie.Event) {
		if e.Type == movie.MovieChanged && e.PreviousSet == e.MovieSet {
			return
		}
		if err := l.Log(EntryFor(e)); err != nil && onError != nil {
			onError(err)
		}
	})
}

func (l *Logger) Log(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry.Timestamp = now

	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	today := now.Format("2006-01-02")
	if l.currentDate != today || l.currentFile == nil {
		if err := l.rotateFile(today); err != nil {
			return err
		}
	}

	_, err = l.currentFile.Write(append(line, '\n'))
	return err
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentFile != nil {
		err := l.currentFile.Close()
		l.currentFile = nil
		return err
	}
	return nil
}

// PruneOld deletes journal files older than retentionDays.
func (l *Logger) PruneOld(retentionDays int) error {
	cutoff := l.now().AddDate(0, 0, -retentionDays)

	files, err := l.journalFiles()
	if err != nil {
		return err
	}
	for _, name := range files {
		fileDate, err := time.Parse("2006-01-02", strings.TrimSuffix(strings.TrimPrefix(name, "activity-"), ".jsonl"))
		if err != nil {
			continue
		}
		if fileDate.Before(cutoff) {
			os.Remove(filepath.Join(l.logDir, name))
		}
	}
	return nil
}

func (l *Logger) rotateFile(date string) error {
	if l.currentFile != nil {
		l.currentFile.Close()
	}

	filePath := filepath.Join(l.logDir, "activity-"+date+".jsonl")
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	l.currentFile = file
	l.currentDate = date
	return nil
}

func (l *Logger) LogDir() string {
	return l.logDir
}

// journalFiles lists the journal file names, oldest first.
func (l *Logger) journalFiles() ([]string, error) {
	entries, err := os.ReadDir(l.logDir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "activity-") && strings.HasSuffix(e.Name(), ".jsonl") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Recent returns up to limit entries, newest first.
func (l *Logger) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	files, err := l.journalFiles()
	if err != nil {
		return nil, err
	}
	slices.Reverse(files)

	results := []Entry{}
	for _, name := range files {
		fileEntries, err := readEntries(filepath.Join(l.logDir, name))
		if err != nil {
			continue
		}
		slices.Reverse(fileEntries)
		for _, e := range fileEntries {
			results = append(results, e)
			if len(results) >= limit {
				return results, nil
			}
		}
	}
	return results, nil
}

// readEntries reads a JSONL file, skipping lines that do not parse.
func readEntries(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var entries []Entry
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		var entry Entry
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, sc.Err()
}
