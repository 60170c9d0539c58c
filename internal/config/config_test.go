package config

import (
	"os"
	"path/filepath"
	"testing"
)

// isolate points every config location at empty temp directories and
// clears cached state.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv(ConfigDirEnv, tmpDir)
	t.Setenv("HOME", tmpDir)

	origDir, _ := os.Getwd()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to chdir; %v", err)
	}
	t.Cleanup(func() { os.Chdir(origDir) })

	Reset()
	t.Cleanup(Reset)
	return tmpDir
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestInit_NoConfigFile_UsesDefaults(t *testing.T) {
	isolate(t)

	if err := Init(); err != nil {
		t.Fatalf("Init() returned error when no config file exists: %v", err)
	}

	if path := ConfigFilePath(); path != "" {
		t.Errorf("ConfigFilePath() = %q, want empty string when no config file", path)
	}

	cfg := Get()
	if cfg == nil {
		t.Fatal("Get() returned nil after Init()")
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.History.Limit != DefaultHistoryLimit {
		t.Errorf("History.Limit = %d, want %d", cfg.History.Limit, DefaultHistoryLimit)
	}
}

func TestInit_ConfigInEnvDir_LoadsFromEnvDir(t *testing.T) {
	dir := isolate(t)
	configPath := writeConfig(t, dir, "log_level: debug\n")

	if err := Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	if got := ConfigFilePath(); got != configPath {
		t.Errorf("ConfigFilePath() = %q, want %q", got, configPath)
	}
	if got := Get().LogLevel; got != "debug" {
		t.Errorf("LogLevel = %q, want debug", got)
	}
}

func TestInit_ConfigInDefaultDir_LoadsFromDefaultDir(t *testing.T) {
	home := isolate(t)
	t.Setenv(ConfigDirEnv, "")

	configDir := filepath.Join(home, ".config", "cymirs")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	configPath := writeConfig(t, configDir, "log_level: warn\n")

	if err := Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	if got := ConfigFilePath(); got != configPath {
		t.Errorf("ConfigFilePath() = %q, want %q", got, configPath)
	}
}

func TestInit_InvalidYAML_ReturnsFatalError(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "log_level: [unclosed\n")

	if err := Init(); err == nil {
		t.Error("Init() should return error for invalid YAML")
	}
	if Get() != nil {
		t.Error("Get() should stay nil after failed Init()")
	}
}

func TestInit_InvalidValues_ReturnsValidationError(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "notify:\n  burst: 0\n")

	err := Init()
	if err == nil {
		t.Fatal("Init() should return error for invalid values")
	}
	if !IsValidationError(err) {
		t.Errorf("expected validation error, got %T", err)
	}
}

func TestEnvOverride_NestedKey_MapsCorrectly(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "history:\n  limit: 10\n")
	t.Setenv("CYMIRS_HISTORY_LIMIT", "25")
	t.Setenv("CYMIRS_LOG_LEVEL", "error")

	if err := Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	cfg := Get()
	if cfg.History.Limit != 25 {
		t.Errorf("History.Limit = %d, want 25 from env", cfg.History.Limit)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want error from env", cfg.LogLevel)
	}
}

func TestInit_LoadsSecretsFile(t *testing.T) {
	dir := isolate(t)
	const key = "CYMIRS_TEST_SECRET_PASSWORD"

	secrets := key + "=hunter2\n"
	if err := os.WriteFile(filepath.Join(dir, "secrets.env"), []byte(secrets), 0600); err != nil {
		t.Fatalf("failed to write secrets file: %v", err)
	}
	writeConfig(t, dir, "notify:\n  smtp:\n    password_env: "+key+"\n")
	t.Cleanup(func() { os.Unsetenv(key) })

	if err := Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	if got := Get().Notify.SMTP.ResolvePassword(); got != "hunter2" {
		t.Errorf("ResolvePassword() = %q, want value from secrets file", got)
	}
}

func TestInit_SecretsDoNotOverrideEnvironment(t *testing.T) {
	dir := isolate(t)
	const key = "CYMIRS_TEST_SECRET_OVERRIDE"
	t.Setenv(key, "from-env")

	if err := os.WriteFile(filepath.Join(dir, "secrets.env"), []byte(key+"=from-file\n"), 0600); err != nil {
		t.Fatalf("failed to write secrets file: %v", err)
	}

	if err := Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	if got := os.Getenv(key); got != "from-env" {
		t.Errorf("%s = %q, want from-env", key, got)
	}
}

func TestGet_BeforeInit_ReturnsNil(t *testing.T) {
	Reset()
	if cfg := Get(); cfg != nil {
		t.Errorf("Get() before Init() = %v, want nil", cfg)
	}
	if settings := GetAllSettings(); settings != nil {
		t.Errorf("GetAllSettings() before Init() = %v, want nil", settings)
	}
}

func TestMustGet_BeforeInit_Panics(t *testing.T) {
	Reset()
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustGet() before Init() should panic")
		}
	}()
	_ = MustGet()
}

func TestGetAllSettings_AfterInit(t *testing.T) {
	isolate(t)

	if err := Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	settings := GetAllSettings()
	if settings["log_level"] != DefaultLogLevel {
		t.Errorf("settings[log_level] = %v, want %q", settings["log_level"], DefaultLogLevel)
	}
	if _, ok := settings["notify"]; !ok {
		t.Error("settings missing notify section")
	}
}

func TestExpandPath(t *testing.T) {
	home := os.Getenv("HOME")
	if home == "" {
		t.Skip("HOME environment variable not set")
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"tilde path", "~/.config/cymirs/cymirs.log", filepath.Join(home, ".config/cymirs/cymirs.log")},
		{"absolute path", "/var/log/cymirs.log", "/var/log/cymirs.log"},
		{"tilde user", "~other/cymirs.log", "~other/cymirs.log"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPath(tt.input); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
