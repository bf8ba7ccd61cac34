// Package paths resolves mediashelf's per-user locations.
//
// Under sudo the original user's directories (via SUDO_USER) are used instead
// of root's, so `sudo mediashelf watch` keeps reading the same config.
package paths

import (
	"os"
	"os/user"
	"path/filepath"
)

// AppName is the directory name used below the user's config dir.
const AppName = "mediashelf"

// UserHomeDir returns the home directory of the actual user.
func UserHomeDir() (string, error) {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && sudoUser != "root" {
		if u, err := user.Lookup(sudoUser); err == nil {
			return u.HomeDir, nil
		}
	}
	return os.UserHomeDir()
}

// UserConfigDir returns XDG_CONFIG_HOME when set, else ~/.config of the
// actual user.
func UserConfigDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir, nil
	}
	home, err := UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config"), nil
}

// AppDir returns ~/.config/mediashelf.
func AppDir() (string, error) {
	dir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// ConfigPath returns ~/.config/mediashelf/config.toml.
func ConfigPath() (string, error) {
	return inAppDir("config.toml")
}

// DatabasePath returns ~/.config/mediashelf/library.db.
func DatabasePath() (string, error) {
	return inAppDir("library.db")
}

// LogPath returns ~/.config/mediashelf/logs/mediashelf.log.
func LogPath() (string, error) {
	return inAppDir(filepath.Join("logs", AppName+".log"))
}

func inAppDir(name string) (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
