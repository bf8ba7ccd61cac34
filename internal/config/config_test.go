package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := DefaultConfig()
	cfg.Libraries.Movies = []string{"/srv/movies", "/mnt/films"}
	cfg.Database.Path = "/var/lib/mediashelf/library.db"
	cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
	cfg.Browse.Sort = "year"
	cfg.Logging.Level = "debug"
	cfg.Watch.ActivityDays = 0
	cfg.Notify.JellyfinURL = "http://jellyfin.local:8096"
	cfg.Notify.JellyfinAPIKey = "secret"
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFile_Partial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[libraries]
movies = ["/srv/movies"]

[watch]
debounce = "500ms"
`), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/srv/movies"}, cfg.Libraries.Movies)
	d, err := cfg.DebounceDuration()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, d)
	assert.Equal(t, "30m", cfg.Watch.ScanInterval)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFile_EnvOverride(t *testing.T) {
	t.Setenv("MEDIASHELF_SERVER_ADDR", ":9999")
	t.Setenv("MEDIASHELF_NOTIFY_JELLYFIN_API_KEY", "from-env")
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "from-env", cfg.Notify.JellyfinAPIKey)
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad sort":     "[browse]\nsort = \"size\"\n",
		"bad duration": "[watch]\ndebounce = \"soon\"\n",
		"negative":     "[watch]\nscan_interval = \"-5m\"\n",
		"bad toml":     "[libraries\n",
		"journal days": "[watch]\nactivity_days = -1\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))
			_, err := LoadFile(path)
			assert.Error(t, err)
		})
	}
}

func TestScanIntervalDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Watch.ScanInterval = "0"
	d, err := cfg.ScanIntervalDuration()
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestDatabasePath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg := DefaultConfig()

	def, err := cfg.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, "library.db", filepath.Base(def))

	cfg.Database.Path = "/tmp/custom.db"
	p, err := cfg.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", p)
}
