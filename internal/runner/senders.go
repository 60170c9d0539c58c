package runner

import (
	"fmt"
	"time"

	"github.com/leefowlercu/cymirs/internal/config"
	"github.com/leefowlercu/cymirs/internal/notify"
)

// MailSenders returns a SenderFactory delivering email through the
// configured SMTP server and text messages through its SMS gateway.
func MailSenders(cfg config.NotifyConfig) SenderFactory {
	return func(kind, address string) (notify.Sender, error) {
		if !cfg.SMTP.Enabled() {
			return nil, notify.ErrNoSMTPHost
		}
		smtp := SMTPConfig(cfg)

		switch kind {
		case ChannelEmail:
			return notify.NewMailer(smtp, address)
		case ChannelText:
			return notify.NewTextMailer(smtp, address, cfg.SMSGateway)
		default:
			return nil, fmt.Errorf("unknown notification channel %q", kind)
		}
	}
}

// SMTPConfig converts the notify section of the configuration to the
// settings of a mail sender.
func SMTPConfig(cfg config.NotifyConfig) notify.SMTPConfig {
	return notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.ResolvePassword(),
		From:     cfg.SMTP.From,
		TLS:      cfg.SMTP.TLS,
		Timeout:  time.Duration(cfg.Timeout) * time.Second,
	}
}
