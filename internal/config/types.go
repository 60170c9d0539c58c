package config

import "os"

// Config is the root configuration structure for the application.
type Config struct {
	LogLevel string        `yaml:"log_level" mapstructure:"log_level"`
	LogFile  string        `yaml:"log_file" mapstructure:"log_file"`
	History  HistoryConfig `yaml:"history" mapstructure:"history"`
	Metrics  MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Notify   NotifyConfig  `yaml:"notify" mapstructure:"notify"`
}

// HistoryConfig holds run-history database configuration.
type HistoryConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
	// Limit is the number of runs kept; older runs are pruned after each
	// run. Zero keeps every run.
	Limit int `yaml:"limit" mapstructure:"limit"`
}

// MetricsConfig holds metrics export configuration.
type MetricsConfig struct {
	// Textfile is where run metrics are written in Prometheus text format.
	// Empty disables the export.
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}

// NotifyConfig holds email and text notification configuration.
type NotifyConfig struct {
	SMTP          SMTPConfig `yaml:"smtp" mapstructure:"smtp"`
	SMSGateway    string     `yaml:"sms_gateway" mapstructure:"sms_gateway"`
	RatePerMinute float64    `yaml:"rate_per_minute" mapstructure:"rate_per_minute"`
	Burst         int        `yaml:"burst" mapstructure:"burst"`
	Timeout       int        `yaml:"timeout" mapstructure:"timeout"` // seconds
}

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host        string  `yaml:"host" mapstructure:"host"`
	Port        int     `yaml:"port" mapstructure:"port"`
	Username    string  `yaml:"username" mapstructure:"username"`
	Password    *string `yaml:"password,omitempty" mapstructure:"password"`
	PasswordEnv string  `yaml:"password_env" mapstructure:"password_env"`
	From        string  `yaml:"from" mapstructure:"from"`
	// TLS is one of "starttls", "tls" or "none".
	TLS string `yaml:"tls" mapstructure:"tls"`
}

// ResolvePassword returns the password from config or falls back to the
// environment variable named by PasswordEnv.
func (c *SMTPConfig) ResolvePassword() string {
	if c.Password != nil && *c.Password != "" {
		return *c.Password
	}
	if c.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(c.PasswordEnv)
}

// Enabled reports whether an SMTP server is configured.
func (c *SMTPConfig) Enabled() bool {
	return c.Host != ""
}
