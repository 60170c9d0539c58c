package config

import (
	"testing"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.LogFile != DefaultLogFile {
		t.Errorf("LogFile = %q, want %q", cfg.LogFile, DefaultLogFile)
	}

	if cfg.History.Path != DefaultHistoryPath {
		t.Errorf("History.Path = %q, want %q", cfg.History.Path, DefaultHistoryPath)
	}
	if cfg.History.Limit != DefaultHistoryLimit {
		t.Errorf("History.Limit = %d, want %d", cfg.History.Limit, DefaultHistoryLimit)
	}
	if cfg.Metrics.Textfile != "" {
		t.Errorf("Metrics.Textfile = %q, want empty", cfg.Metrics.Textfile)
	}

	smtp := cfg.Notify.SMTP
	if smtp.Host != "" {
		t.Errorf("Notify.SMTP.Host = %q, want empty", smtp.Host)
	}
	if smtp.Port != DefaultSMTPPort {
		t.Errorf("Notify.SMTP.Port = %d, want %d", smtp.Port, DefaultSMTPPort)
	}
	if smtp.TLS != TLSStartTLS {
		t.Errorf("Notify.SMTP.TLS = %q, want %q", smtp.TLS, TLSStartTLS)
	}
	if smtp.PasswordEnv != DefaultSMTPPasswordEnv {
		t.Errorf("Notify.SMTP.PasswordEnv = %q, want %q", smtp.PasswordEnv, DefaultSMTPPasswordEnv)
	}
	if smtp.Password != nil {
		t.Errorf("Notify.SMTP.Password = %v, want nil", smtp.Password)
	}

	if cfg.Notify.RatePerMinute != DefaultRatePerMinute {
		t.Errorf("Notify.RatePerMinute = %g, want %g", cfg.Notify.RatePerMinute, DefaultRatePerMinute)
	}
	if cfg.Notify.Burst != DefaultBurst {
		t.Errorf("Notify.Burst = %d, want %d", cfg.Notify.Burst, DefaultBurst)
	}
	if cfg.Notify.Timeout != DefaultNotifyTimeout {
		t.Errorf("Notify.Timeout = %d, want %d", cfg.Notify.Timeout, DefaultNotifyTimeout)
	}
}

func TestSMTPConfigResolvePassword(t *testing.T) {
	tests := []struct {
		name     string
		password *string
		envName  string
		envValue string
		want     string
	}{
		{
			name:     "password from config",
			password: stringPtr("from-config"),
			envName:  "TEST_SMTP_PASSWORD",
			envValue: "from-env",
			want:     "from-config",
		},
		{
			name:     "empty config password falls back to env",
			password: stringPtr(""),
			envName:  "TEST_SMTP_PASSWORD",
			envValue: "from-env",
			want:     "from-env",
		},
		{
			name:     "nil password falls back to env",
			password: nil,
			envName:  "TEST_SMTP_PASSWORD",
			envValue: "from-env",
			want:     "from-env",
		},
		{
			name:     "no env name",
			password: nil,
			envName:  "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envName != "" {
				t.Setenv(tt.envName, tt.envValue)
			}

			cfg := SMTPConfig{Password: tt.password, PasswordEnv: tt.envName}
			if got := cfg.ResolvePassword(); got != tt.want {
				t.Errorf("ResolvePassword() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSMTPConfigEnabled(t *testing.T) {
	cfg := SMTPConfig{}
	if cfg.Enabled() {
		t.Error("Enabled() = true, want false without host")
	}
	cfg.Host = "smtp.example.com"
	if !cfg.Enabled() {
		t.Error("Enabled() = false, want true with host")
	}
}

func stringPtr(s string) *string {
	return &s
}
