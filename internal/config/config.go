// Package config loads the cymirs application configuration: logging, run
// history, metrics export and notification delivery settings. Job settings
// live in job files, not here.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spf13/viper"
)

var (
	mu sync.RWMutex

	// global is the viper instance populated by Init.
	global *viper.Viper

	// current is the typed config built by Init.
	current *Config

	// configFilePath stores the path to the loaded config file.
	configFilePath string
)

// Init initializes the configuration subsystem.
// It loads the optional secrets file, then searches for config.yaml in
// priority order:
//  1. Directory specified by CYMIRS_CONFIG_DIR environment variable
//  2. ~/.config/cymirs/
//  3. Current working directory (.)
//
// If no config file is found, defaults are used.
// If a config file exists but is invalid or unreadable, Init returns an error.
func Init() error {
	if err := loadSecrets(); err != nil {
		return err
	}

	v := newViper()
	addSearchPaths(v)

	path := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config; %w", err)
		}
	} else {
		path = v.ConfigFileUsed()
	}

	cfg, err := unmarshalConfig(v)
	if err != nil {
		return err
	}

	mu.Lock()
	global = v
	current = cfg
	configFilePath = path
	mu.Unlock()

	slog.Debug("config initialized", "file", path)
	return nil
}

// Get returns the typed configuration, or nil before Init.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// MustGet returns the typed configuration and panics before Init.
func MustGet() *Config {
	cfg := Get()
	if cfg == nil {
		panic("config: MustGet called before Init")
	}
	return cfg
}

// ConfigFilePath returns the path to the loaded config file,
// or empty string if using defaults only.
func ConfigFilePath() string {
	mu.RLock()
	defer mu.RUnlock()
	return configFilePath
}

// Reset clears the configuration state for testing purposes.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	global = nil
	current = nil
	configFilePath = ""
}

// GetAllSettings returns all configuration settings as a map, or nil
// before Init.
func GetAllSettings() map[string]any {
	mu.RLock()
	defer mu.RUnlock()
	if global == nil {
		return nil
	}
	return global.AllSettings()
}
