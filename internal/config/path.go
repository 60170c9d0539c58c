package config

import (
	"os"
	"path/filepath"

	"github.com/leefowlercu/cymirs/internal/fsutil"
)

// Config file names.
const (
	ConfigFileName  = "config.yaml"
	SecretsFileName = "secrets.env"

	// ConfigDirEnv names the environment variable overriding the config
	// directory.
	ConfigDirEnv = "CYMIRS_CONFIG_DIR"
)

// ConfigDir returns the config directory: $CYMIRS_CONFIG_DIR when set,
// otherwise ~/.config/cymirs. It returns "" when neither can be determined.
func ConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return ExpandPath(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "cymirs")
}

// DefaultConfigPath returns the default path for the config file.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// SecretsPath returns the path of the optional secrets file.
func SecretsPath() string {
	return filepath.Join(ConfigDir(), SecretsFileName)
}

// EnsureConfigDir creates the config directory with the given permissions.
func EnsureConfigDir(perms os.FileMode) error {
	return os.MkdirAll(ConfigDir(), perms)
}

// ConfigExistsAt returns true if a config file exists at the specified path.
func ConfigExistsAt(path string) bool {
	return fsutil.IsRegularFile(ExpandPath(path))
}

// ExpandPath expands a leading ~ in path to the user's home directory.
// Use it on path-valued fields of the typed config.
func ExpandPath(path string) string {
	return fsutil.ExpandHome(path)
}
