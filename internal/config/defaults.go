package config

import "github.com/spf13/viper"

// Default configuration values.
const (
	DefaultLogLevel = "info"
	DefaultLogFile  = "~/.config/cymirs/cymirs.log"

	DefaultHistoryPath  = "~/.config/cymirs/history.db"
	DefaultHistoryLimit = 500

	DefaultMetricsTextfile = ""

	DefaultSMTPHost        = ""
	DefaultSMTPPort        = 587
	DefaultSMTPPasswordEnv = "CYMIRS_SMTP_PASSWORD"
	DefaultSMTPFrom        = ""
	DefaultSMTPTLS         = TLSStartTLS

	DefaultSMSGateway    = ""
	DefaultRatePerMinute = 6.0
	DefaultBurst         = 3
	DefaultNotifyTimeout = 30 // seconds
)

// SMTP TLS modes.
const (
	TLSStartTLS = "starttls"
	TLSImplicit = "tls"
	TLSNone     = "none"
)

// NewDefaultConfig returns a Config populated with the default values.
func NewDefaultConfig() Config {
	return Config{
		LogLevel: DefaultLogLevel,
		LogFile:  DefaultLogFile,
		History: HistoryConfig{
			Path:  DefaultHistoryPath,
			Limit: DefaultHistoryLimit,
		},
		Metrics: MetricsConfig{
			Textfile: DefaultMetricsTextfile,
		},
		Notify: NotifyConfig{
			SMTP: SMTPConfig{
				Host:        DefaultSMTPHost,
				Port:        DefaultSMTPPort,
				PasswordEnv: DefaultSMTPPasswordEnv,
				From:        DefaultSMTPFrom,
				TLS:         DefaultSMTPTLS,
			},
			SMSGateway:    DefaultSMSGateway,
			RatePerMinute: DefaultRatePerMinute,
			Burst:         DefaultBurst,
			Timeout:       DefaultNotifyTimeout,
		},
	}
}

// setDefaults registers all default configuration values with v.
// Called before reading config files.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", DefaultLogFile)

	v.SetDefault("history.path", DefaultHistoryPath)
	v.SetDefault("history.limit", DefaultHistoryLimit)

	v.SetDefault("metrics.textfile", DefaultMetricsTextfile)

	v.SetDefault("notify.smtp.host", DefaultSMTPHost)
	v.SetDefault("notify.smtp.port", DefaultSMTPPort)
	v.SetDefault("notify.smtp.username", "")
	v.SetDefault("notify.smtp.password_env", DefaultSMTPPasswordEnv)
	v.SetDefault("notify.smtp.from", DefaultSMTPFrom)
	v.SetDefault("notify.smtp.tls", DefaultSMTPTLS)
	v.SetDefault("notify.sms_gateway", DefaultSMSGateway)
	v.SetDefault("notify.rate_per_minute", DefaultRatePerMinute)
	v.SetDefault("notify.burst", DefaultBurst)
	v.SetDefault("notify.timeout", DefaultNotifyTimeout)
}
