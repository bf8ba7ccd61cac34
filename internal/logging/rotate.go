package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// rotatingFile appends to path and moves it aside once it grows past maxSize.
// Backups are named <name>.1<ext> (newest) to <name>.<backups><ext>.
type rotatingFile struct {
	path    string
	maxSize int64
	backups int

	f    *os.File
	size int64
}

func openRotatingFile(path string, maxSize int64, backups int) (*rotatingFile, error) {
	r := &rotatingFile{path: path, maxSize: maxSize, backups: backups}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *rotatingFile) open() error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("unable to open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("unable to stat log file: %w", err)
	}
	r.f = f
	r.size = info.Size()
	return nil
}

func (r *rotatingFile) Write(p []byte) error {
	if r.size > 0 && r.size+int64(len(p)) > r.maxSize {
		if err := r.rotate(); err != nil {
			return err
		}
	}
	n, err := r.f.Write(p)
	r.size += int64(n)
	return err
}

func (r *rotatingFile) rotate() error {
	if err := r.f.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}

	ext := filepath.Ext(r.path)
	stem := strings.TrimSuffix(r.path, ext)
	backup := func(n int) string { return fmt.Sprintf("%s.%d%s", stem, n, ext) }

	os.Remove(backup(r.backups))
	for n := r.backups - 1; n >= 1; n-- {
		if _, err := os.Stat(backup(n)); err != nil {
			continue
		}
		if err := os.Rename(backup(n), backup(n+1)); err != nil {
			return fmt.Errorf("failed to rotate %s: %w", backup(n), err)
		}
	}
	if err := os.Rename(r.path, backup(1)); err != nil {
		return fmt.Errorf("failed to rotate current log: %w", err)
	}
	return r.open()
}

func (r *rotatingFile) Close() error {
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}
