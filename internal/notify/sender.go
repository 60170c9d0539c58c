package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

// Message is a single status update.
type Message struct {
	Subject string
	Body    string
}

// Sender delivers messages to one destination.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig describes the outgoing mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// TLS is one of "starttls", "tls" (implicit TLS) or "none".
	TLS     string
	Timeout time.Duration
}

// textLimit is the longest body sent to a phone.
const textLimit = 160

// ErrNoSMTPHost is returned when a mail sender is built without a server.
var ErrNoSMTPHost = errors.New("smtp host not configured")

// Mailer sends messages as plain-text email.
type Mailer struct {
	cfg  SMTPConfig
	to   string
	text bool
}

// NewMailer returns a Mailer delivering to the email address to.
func NewMailer(cfg SMTPConfig, to string) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, ErrNoSMTPHost
	}
	return &Mailer{cfg: cfg, to: to}, nil
}

// NewTextMailer returns a Mailer delivering short messages to a phone
// through an email-to-SMS gateway, e.g. "txt.att.net".
func NewTextMailer(cfg SMTPConfig, number, gateway string) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, ErrNoSMTPHost
	}
	if gateway == "" {
		return nil, errors.New("sms gateway not configured")
	}
	return &Mailer{cfg: cfg, to: GatewayAddress(number, gateway), text: true}, nil
}

// GatewayAddress returns the email address of number at an SMS gateway.
// Everything but digits is stripped from number.
func GatewayAddress(number, gateway string) string {
	var digits strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String() + "@" + gateway
}

// To returns the destination address.
func (m *Mailer) To() string {
	return m.to
}

// Send delivers msg.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	email := mail.NewMsg()
	if err := email.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid sender address %q; %w", m.cfg.From, err)
	}
	if err := email.To(m.to); err != nil {
		return fmt.Errorf("invalid recipient address %q; %w", m.to, err)
	}

	body := msg.Body
	if m.text {
		body = truncate(msg.Subject+": "+msg.Body, textLimit)
	} else {
		email.Subject(msg.Subject)
	}
	email.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(m.cfg.Host, m.clientOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client; %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, email); err != nil {
		return fmt.Errorf("failed to send mail to %s; %w", m.to, err)
	}
	return nil
}

func (m *Mailer) clientOptions() []mail.Option {
	var opts []mail.Option
	switch strings.ToLower(m.cfg.TLS) {
	case "tls":
		opts = append(opts, mail.WithSSL())
	case "none":
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	if m.cfg.Port > 0 {
		opts = append(opts, mail.WithPort(m.cfg.Port))
	}
	if m.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(m.cfg.Timeout))
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	return opts
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
