// Package ui renders terminal output: styles, box-drawn tables and the movie
// set tree.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

var (
	isTerminal   = detectTerminal()
	colorEnabled = os.Getenv("NO_COLOR") == ""
)

func detectTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// DisableColors disables all color output
func DisableColors() {
	colorEnabled = false
	initStyles()
}

// EnableColors enables color output when stdout is a terminal
func EnableColors() {
	colorEnabled = true
	isTerminal = detectTerminal()
	initStyles()
}

// IsTerminal checks if stdout is a terminal with colors enabled
func IsTerminal() bool {
	return isTerminal && colorEnabled
}

// Section writes a section header
func Section(w io.Writer, title string) {
	fmt.Fprintln(w)
	if IsTerminal() {
		fmt.Fprintln(w, Info("━━━ "+strings.ToUpper(title)+" ━━━"))
		return
	}
	fmt.Fprintln(w, strings.ToUpper(title))
	fmt.Fprintln(w, strings.Repeat("=", len(title)+6))
}

// KeyValue writes an aligned "key: value" line.
func KeyValue(w io.Writer, key, value string) {
	fmt.Fprintf(w, "  %-14s %s\n", key+":", value)
}

// FormatBytes formats bytes to human-readable format using go-humanize
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatCount adds thousands separators.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatAgo formats t relative to now ("3 minutes ago"); zero is "never".
func FormatAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// FormatDuration formats duration to human-readable format
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
