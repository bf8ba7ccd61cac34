// Package config loads mediashelf's TOML configuration through viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Nomadcxx/mediashelf/internal/logging"
	"github.com/Nomadcxx/mediashelf/internal/moviesets"
	"github.com/Nomadcxx/mediashelf/internal/paths"
	"github.com/spf13/viper"
)

type Config struct {
	Libraries LibrariesConfig `mapstructure:"libraries"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Server    ServerConfig    `mapstructure:"server"`
	Browse    BrowseConfig    `mapstructure:"browse"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Logging   logging.Config  `mapstructure:"logging"`
}

// LibrariesConfig lists the movie library roots.
type LibrariesConfig struct {
	Movies []string `mapstructure:"movies"`
}

type DatabaseConfig struct {
	// Path of the SQLite file; empty means ~/.config/mediashelf/library.db.
	Path string `mapstructure:"path"`
}

// WatchConfig controls `mediashelf watch`.
type WatchConfig struct {
	// Debounce delays the rescan of a movie folder after its last event.
	Debounce string `mapstructure:"debounce"`
	// ScanInterval is the full rescan period; "0" disables periodic scans.
	ScanInterval string `mapstructure:"scan_interval"`
	// ActivityDays is how long the change journal is kept; 0 disables it.
	ActivityDays int `mapstructure:"activity_days"`
}

type ServerConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// BrowseConfig holds the default table and browser view.
type BrowseConfig struct {
	Sort     string `mapstructure:"sort"`
	Language string `mapstructure:"language"`
}

// NotifyConfig lists media servers told about changed movie folders.
type NotifyConfig struct {
	JellyfinURL    string `mapstructure:"jellyfin_url"`
	JellyfinAPIKey string `mapstructure:"jellyfin_api_key"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Libraries: LibrariesConfig{Movies: []string{}},
		Watch: WatchConfig{
			Debounce:     "2s",
			ScanInterval: "30m",
			ActivityDays: 30,
		},
		Server: ServerConfig{
			Addr:        "127.0.0.1:8687",
			CORSOrigins: []string{},
		},
		Browse: BrowseConfig{
			Sort:     "title",
			Language: "en",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads the config from its default location. A missing file yields
// the defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("unable to get config path: %w", err)
	}
	return LoadFile(path)
}

// LoadFile reads the config at path over the defaults. Environment variables
// such as MEDIASHELF_SERVER_ADDR override file values.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix("MEDIASHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := DefaultConfig()
	setDefaults(v, cfg)

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that
// are absent from the file.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("libraries.movies", cfg.Libraries.Movies)
	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("watch.debounce", cfg.Watch.Debounce)
	v.SetDefault("watch.scan_interval", cfg.Watch.ScanInterval)
	v.SetDefault("watch.activity_days", cfg.Watch.ActivityDays)
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.cors_origins", cfg.Server.CORSOrigins)
	v.SetDefault("browse.sort", cfg.Browse.Sort)
	v.SetDefault("browse.language", cfg.Browse.Language)
	v.SetDefault("notify.jellyfin_url", cfg.Notify.JellyfinURL)
	v.SetDefault("notify.jellyfin_api_key", cfg.Notify.JellyfinAPIKey)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.max_size_mb", cfg.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", cfg.Logging.MaxBackups)
}

// Validate checks values that would otherwise fail much later.
func (c *Config) Validate() error {
	if _, err := moviesets.ParseSortBy(c.Browse.Sort); err != nil {
		return fmt.Errorf("browse.sort: %w", err)
	}
	if _, err := c.DebounceDuration(); err != nil {
		return fmt.Errorf("watch.debounce: %w", err)
	}
	if _, err := c.ScanIntervalDuration(); err != nil {
		return fmt.Errorf("watch.scan_interval: %w", err)
	}
	if c.Watch.ActivityDays < 0 {
		return fmt.Errorf("watch.activity_days: must not be negative")
	}
	return nil
}

// DebounceDuration parses Watch.Debounce.
func (c *Config) DebounceDuration() (time.Duration, error) {
	return parseDuration(c.Watch.Debounce)
}

// ScanIntervalDuration parses Watch.ScanInterval; zero disables scanning.
func (c *Config) ScanIntervalDuration() (time.Duration, error) {
	return parseDuration(c.Watch.ScanInterval)
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}

// DatabasePath returns the configured database path or the default one.
func (c *Config) DatabasePath() (string, error) {
	if c.Database.Path != "" {
		return expandHome(c.Database.Path)
	}
	return paths.DatabasePath()
}

func expandHome(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := paths.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, p[1:]), nil
}

// Save writes the config to its default location.
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating the directory.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("unable to create config dir: %w", err)
	}
	return os.WriteFile(path, []byte(c.ToTOML()), 0644)
}

func ConfigPath() (string, error) {
	return paths.ConfigPath()
}

func ConfigExists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func (c *Config) ToTOML() string {
	return fmt.Sprintf(`# mediashelf configuration
# Generated by: mediashelf config init

# ============================================================================
# LIBRARIES
# Movie library roots. Every folder with a main video is one movie; Kodi
# .nfo files provide titles, ratings and movie sets. Set artwork lives in
# <root>/.sets/<set name>/poster.jpg and fanart.jpg.
# ============================================================================
[libraries]
movies = %s

# ============================================================================
# DATABASE
# Empty path uses ~/.config/mediashelf/library.db
# ============================================================================
[database]
path = %q

# ============================================================================
# WATCH
# mediashelf watch: rescan a movie folder this long after its last change,
# and rescan everything every scan_interval ("0" disables). Library changes
# are journaled next to the database for activity_days (0 disables).
# ============================================================================
[watch]
debounce = %q
scan_interval = %q
activity_days = %d

# ============================================================================
# SERVER
# mediashelf serve: JSON API listen address and allowed CORS origins
# ============================================================================
[server]
addr = %q
cors_origins = %s

# ============================================================================
# BROWSE
# Default sort order (title, year, rating) and collation language
# ============================================================================
[browse]
sort = %q
language = %q

# ============================================================================
# NOTIFY
# Tell Jellyfin which movie folders changed while watching or serving.
# Leave empty to disable.
# ============================================================================
[notify]
jellyfin_url = %q
jellyfin_api_key = %q

# ============================================================================
# LOGGING
# ============================================================================
[logging]
level = %q
file = %q
max_size_mb = %d
max_backups = %d
`,
		formatStringSlice(c.Libraries.Movies),
		c.Database.Path,
		c.Watch.Debounce,
		c.Watch.ScanInterval,
		c.Watch.ActivityDays,
		c.Server.Addr,
		formatStringSlice(c.Server.CORSOrigins),
		c.Browse.Sort,
		c.Browse.Language,
		c.Notify.JellyfinURL,
		c.Notify.JellyfinAPIKey,
		c.Logging.Level,
		c.Logging.File,
		c.Logging.MaxSizeMB,
		c.Logging.MaxBackups,
	)
}

func formatStringSlice(s []string) string {
	if len(s) == 0 {
		return "[]"
	}
	quoted := make([]string, len(s))
	for i, v := range s {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
