package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromPath_ValidConfig_ReturnsTypedConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv(ConfigDirEnv, tmpDir)
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `log_level: debug
log_file: /var/log/cymirs-test.log
history:
  path: /tmp/cymirs-history.db
  limit: 50
metrics:
  textfile: /var/lib/node_exporter/cymirs.prom
notify:
  smtp:
    host: smtp.example.com
    port: 465
    username: lab
    password_env: LAB_SMTP_PASSWORD
    from: cymirs@lab.example.com
    tls: tls
  sms_gateway: txt.example.com
  rate_per_minute: 2
  burst: 1
  timeout: 10
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config; %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.History.Path != "/tmp/cymirs-history.db" {
		t.Errorf("History.Path = %q, want %q", cfg.History.Path, "/tmp/cymirs-history.db")
	}
	if cfg.History.Limit != 50 {
		t.Errorf("History.Limit = %d, want 50", cfg.History.Limit)
	}
	if cfg.Metrics.Textfile != "/var/lib/node_exporter/cymirs.prom" {
		t.Errorf("Metrics.Textfile = %q", cfg.Metrics.Textfile)
	}

	smtp := cfg.Notify.SMTP
	if smtp.Host != "smtp.example.com" || smtp.Port != 465 || smtp.TLS != TLSImplicit {
		t.Errorf("Notify.SMTP = %+v, want host smtp.example.com port 465 tls", smtp)
	}
	if smtp.Username != "lab" || smtp.PasswordEnv != "LAB_SMTP_PASSWORD" {
		t.Errorf("Notify.SMTP credentials = %q/%q", smtp.Username, smtp.PasswordEnv)
	}
	if smtp.From != "cymirs@lab.example.com" {
		t.Errorf("Notify.SMTP.From = %q", smtp.From)
	}
	if cfg.Notify.SMSGateway != "txt.example.com" {
		t.Errorf("Notify.SMSGateway = %q", cfg.Notify.SMSGateway)
	}
	if cfg.Notify.RatePerMinute != 2 || cfg.Notify.Burst != 1 || cfg.Notify.Timeout != 10 {
		t.Errorf("Notify limits = %g/%d/%d, want 2/1/10",
			cfg.Notify.RatePerMinute, cfg.Notify.Burst, cfg.Notify.Timeout)
	}
}

func TestLoadFromPath_InvalidConfig_ReturnsValidationError(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv(ConfigDirEnv, tmpDir)
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("notify:\n  smtp:\n    port: 0\n"), 0600); err != nil {
		t.Fatalf("failed to write test config; %v", err)
	}

	_, err := LoadFromPath(configPath)
	if err == nil {
		t.Fatal("LoadFromPath() expected error for invalid config")
	}
	if !IsValidationError(err) {
		t.Errorf("expected validation error, got %T", err)
	}
}

func TestLoadFromPath_MissingFile_ReturnsError(t *testing.T) {
	t.Setenv(ConfigDirEnv, t.TempDir())
	if _, err := LoadFromPath("/nonexistent/config.yaml"); err == nil {
		t.Error("LoadFromPath() expected error for missing file")
	}
}

func TestLoad_MissingFile_UsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want defaults when no file exists", err)
	}
	if cfg.History.Path != DefaultHistoryPath {
		t.Errorf("History.Path = %q, want %q", cfg.History.Path, DefaultHistoryPath)
	}
}

func TestLoad_InvalidYAML_ReturnsError(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "history: [\n")

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for invalid YAML")
	}
}

func TestLoadWithDefaults_ReturnsDefaultConfig(t *testing.T) {
	cfg := LoadWithDefaults()
	if cfg == nil {
		t.Fatal("LoadWithDefaults() returned nil")
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.Notify.Burst != DefaultBurst {
		t.Errorf("Notify.Burst = %d, want %d", cfg.Notify.Burst, DefaultBurst)
	}
}

func TestLoad_UsesViperDefaults_WhenKeysNotInFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv(ConfigDirEnv, tmpDir)
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("log_level: warn\n"), 0600); err != nil {
		t.Fatalf("failed to write test config; %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "warn")
	}
	if cfg.Notify.SMTP.Port != DefaultSMTPPort {
		t.Errorf("Notify.SMTP.Port = %d, want default %d", cfg.Notify.SMTP.Port, DefaultSMTPPort)
	}
	if cfg.Notify.Timeout != DefaultNotifyTimeout {
		t.Errorf("Notify.Timeout = %d, want default %d", cfg.Notify.Timeout, DefaultNotifyTimeout)
	}
}
