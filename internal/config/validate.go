package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/leefowlercu/cymirs/internal/logging"
)

// ValidationError represents a config validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation failures.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString("config validation failed:\n")
	for _, err := range e {
		b.WriteString("  - ")
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

// validTLSModes lists recognized SMTP TLS modes.
var validTLSModes = map[string]bool{
	TLSStartTLS: true,
	TLSImplicit: true,
	TLSNone:     true,
}

var validate = validator.New()

// Validate checks the configuration for errors.
// Returns ValidationErrors if validation fails.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
		errs = append(errs, ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("must be one of: debug, info, warn, error; got %q", cfg.LogLevel),
		})
	}

	if cfg.LogFile == "" {
		errs = append(errs, ValidationError{
			Field:   "log_file",
			Message: "must not be empty",
		})
	}

	// Validate history config
	if cfg.History.Path == "" {
		errs = append(errs, ValidationError{
			Field:   "history.path",
			Message: "must not be empty",
		})
	}

	if cfg.History.Limit < 0 {
		errs = append(errs, ValidationError{
			Field:   "history.limit",
			Message: fmt.Sprintf("must be non-negative, got %d", cfg.History.Limit),
		})
	}

	// Validate notify config
	smtp := cfg.Notify.SMTP
	if smtp.Port < 1 || smtp.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   "notify.smtp.port",
			Message: fmt.Sprintf("must be between 1 and 65535, got %d", smtp.Port),
		})
	}

	if !validTLSModes[smtp.TLS] {
		errs = append(errs, ValidationError{
			Field:   "notify.smtp.tls",
			Message: fmt.Sprintf("must be one of: starttls, tls, none; got %q", smtp.TLS),
		})
	}

	if smtp.Host != "" {
		if err := validate.Var(smtp.Host, "hostname_rfc1123|ip"); err != nil {
			errs = append(errs, ValidationError{
				Field:   "notify.smtp.host",
				Message: fmt.Sprintf("must be a hostname or IP address, got %q", smtp.Host),
			})
		}
		if err := validate.Var(smtp.From, "required,email"); err != nil {
			errs = append(errs, ValidationError{
				Field:   "notify.smtp.from",
				Message: fmt.Sprintf("must be an email address when smtp.host is set, got %q", smtp.From),
			})
		}
	}

	if gw := cfg.Notify.SMSGateway; gw != "" {
		if err := validate.Var(gw, "fqdn"); err != nil {
			errs = append(errs, ValidationError{
				Field:   "notify.sms_gateway",
				Message: fmt.Sprintf("must be a mail domain, got %q", gw),
			})
		}
	}

	if cfg.Notify.RatePerMinute < 0 {
		errs = append(errs, ValidationError{
			Field:   "notify.rate_per_minute",
			Message: fmt.Sprintf("must be non-negative, got %g", cfg.Notify.RatePerMinute),
		})
	}

	if cfg.Notify.Burst < 1 {
		errs = append(errs, ValidationError{
			Field:   "notify.burst",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Notify.Burst),
		})
	}

	if cfg.Notify.Timeout < 1 {
		errs = append(errs, ValidationError{
			Field:   "notify.timeout",
			Message: fmt.Sprintf("must be at least 1 second, got %d", cfg.Notify.Timeout),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var ve ValidationError
	var ves ValidationErrors
	return errors.As(err, &ve) || errors.As(err, &ves)
}
