package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "CYMIRS"

// newViper returns a viper instance with env binding and defaults set up.
func newViper() *viper.Viper {
	v := viper.New()

	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

// addSearchPaths adds the config search locations in priority order:
//  1. Directory specified by CYMIRS_CONFIG_DIR
//  2. ~/.config/cymirs/
//  3. Current working directory (.)
func addSearchPaths(v *viper.Viper) {
	v.SetConfigName(strings.TrimSuffix(ConfigFileName, filepath.Ext(ConfigFileName)))

	if envPath := os.Getenv(ConfigDirEnv); envPath != "" {
		v.AddConfigPath(ExpandPath(envPath))
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		v.AddConfigPath(filepath.Join(home, ".config", "cymirs"))
	}
	v.AddConfigPath(".")
}

// loadSecrets loads KEY=value pairs from the secrets file into the process
// environment. Variables already set are not overridden. A missing file is
// not an error.
func loadSecrets() error {
	path := SecretsPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load secrets from %s; %w", path, err)
	}
	return nil
}

// Load reads and returns the typed configuration from the search paths.
// A missing config file is not an error; defaults and environment
// overrides apply. An invalid config file returns an error.
func Load() (*Config, error) {
	if err := loadSecrets(); err != nil {
		return nil, err
	}

	v := newViper()
	addSearchPaths(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config; %w", err)
		}
	}

	return unmarshalConfig(v)
}

// LoadFromPath reads configuration from a specific file path.
func LoadFromPath(path string) (*Config, error) {
	if err := loadSecrets(); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigFile(ExpandPath(path))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config from %s; %w", path, err)
	}

	return unmarshalConfig(v)
}

// LoadWithDefaults returns configuration using defaults only.
func LoadWithDefaults() *Config {
	cfg := NewDefaultConfig()
	return &cfg
}

// unmarshalConfig converts viper config to a validated Config struct.
func unmarshalConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config; %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
