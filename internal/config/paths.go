package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

// DefaultPath is the system-wide config file.
const DefaultPath = "/etc/blnd/config.toml"

// DefaultEnvFile holds BLND_ variables for the systemd unit.
const DefaultEnvFile = "/etc/default/blnd"

// ResolvePath returns path when it exists. When path is the default and
// missing, the user's XDG config directories are searched for
// blnd/config.toml so the daemon can run unprivileged on a desktop.
func ResolvePath(path string) string {
	if _, err := os.Stat(path); err == nil || path != DefaultPath {
		return path
	}
	if found, err := xdg.SearchConfigFile(filepath.Join("blnd", "config.toml")); err == nil {
		return found
	}
	return path
}

// LoadEnvFile exports the variables in a dotenv file. Variables already in
// the environment win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
