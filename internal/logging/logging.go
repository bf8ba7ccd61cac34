// Package logging is a small structured logger: one line per entry with a
// level, a component tag, the message and key=value fields. Output goes to a
// console writer and optionally to a size-rotated file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log entry.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	levelOff
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a Level. Unknown names map to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Field is a key-value pair attached to an entry.
type Field struct {
	Key   string
	Value any
}

// F creates a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Config holds logger configuration.
type Config struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	File       string `mapstructure:"file"`        // empty disables the file sink
	MaxSizeMB  int    `mapstructure:"max_size_mb"` // rotate when the file grows past this
	MaxBackups int    `mapstructure:"max_backups"`
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		MaxSizeMB:  10,
		MaxBackups: 5,
	}
}

// Logger writes structured log lines. It is safe for concurrent use.
type Logger struct {
	mu      sync.Mutex
	level   Level
	console io.Writer
	file    *rotatingFile
	now     func() time.Time
}

// New creates a Logger writing to stderr and, when cfg.File is set, to that file.
func New(cfg Config) (*Logger, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter is New with an explicit console writer (nil for none).
func NewWithWriter(cfg Config, console io.Writer) (*Logger, error) {
	l := &Logger{
		level:   ParseLevel(cfg.Level),
		console: console,
		now:     time.Now,
	}
	if cfg.File == "" {
		return l, nil
	}

	path, err := expandHome(cfg.File)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("unable to create log directory: %w", err)
	}

	maxSize := int64(cfg.MaxSizeMB) * 1024 * 1024
	if maxSize <= 0 {
		maxSize = 10 * 1024 * 1024
	}
	backups := cfg.MaxBackups
	if backups <= 0 {
		backups = 5
	}

	l.file, err = openRotatingFile(path, maxSize, backups)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{level: levelOff, now: time.Now}
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to get home dir: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

func (l *Logger) log(level Level, component, msg string, err error, fields []Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}

	var sb strings.Builder
	sb.WriteString(l.now().Format(time.RFC3339))
	fmt.Fprintf(&sb, " [%s] [%s] %s", level, component, msg)
	if err != nil {
		sb.WriteString(" | error=")
		sb.WriteString(err.Error())
	}
	for _, f := range fields {
		fmt.Fprintf(&sb, " | %s=%v", f.Key, f.Value)
	}
	sb.WriteByte('\n')
	line := []byte(sb.String())

	if l.console != nil {
		l.console.Write(line)
	}
	if l.file != nil {
		if werr := l.file.Write(line); werr != nil && l.console != nil {
			fmt.Fprintf(l.console, "log file error: %v\n", werr)
		}
	}
}

func (l *Logger) Debug(component, msg string, fields ...Field) {
	l.log(LevelDebug, component, msg, nil, fields)
}

func (l *Logger) Info(component, msg string, fields ...Field) {
	l.log(LevelInfo, component, msg, nil, fields)
}

func (l *Logger) Warn(component, msg string, fields ...Field) {
	l.log(LevelWarn, component, msg, nil, fields)
}

// Error logs msg together with err.
func (l *Logger) Error(component, msg string, err error, fields ...Field) {
	l.log(LevelError, component, msg, err, fields)
}

// Level returns the minimum level that is written.
func (l *Logger) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// FilePath returns the log file path, empty when logging to the console only.
func (l *Logger) FilePath() string {
	if l.file == nil {
		return ""
	}
	return l.file.path
}

// Close closes the file sink.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Component is a Logger bound to one component name.
type Component struct {
	l    *Logger
	name string
}

// For returns a logger that tags every entry with component.
func (l *Logger) For(component string) Component {
	return Component{l: l, name: component}
}

func (c Component) Debug(msg string, fields ...Field) { c.l.Debug(c.name, msg, fields...) }
func (c Component) Info(msg string, fields ...Field) { c.l.Info(c.name, msg, fields...) }
func (c Component) Warn(msg string, fields ...Field) { c.l.Warn(c.name, msg, fields...) }
func (c Component) Error(msg string, err error, fields ...Field) {
	c.l.Error(c.name, msg, err, fields...)
}
