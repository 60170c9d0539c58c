package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/leefowlercu/cymirs/internal/metrics"
)

// Default handler settings.
const (
	DefaultSendTimeout   = 30 * time.Second
	DefaultSubjectPrefix = "[cymirs]"
)

// Channel pairs a destination with the events it subscribes to.
type Channel struct {
	// Name identifies the channel in logs and metrics, e.g. "email".
	Name     string
	Sender   Sender
	Triggers Triggers
}

type channel struct {
	Channel
	limiter   *rate.Limiter
	afterSent bool
}

// Option configures a Handler.
type Option func(*core)

// WithClock sets the time source used for after(N) triggers.
func WithClock(now func() time.Time) Option {
	return func(c *core) {
		c.now = now
	}
}

// WithFallbackLogger sets the logger used to report delivery problems. It
// must not route back into the Handler.
func WithFallbackLogger(logger *slog.Logger) Option {
	return func(c *core) {
		c.fallback = logger
	}
}

// WithSendTimeout bounds each delivery attempt.
func WithSendTimeout(d time.Duration) Option {
	return func(c *core) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit limits each channel to perMinute messages with the given
// burst. A perMinute of zero disables throttling.
func WithRateLimit(perMinute float64, burst int) Option {
	return func(c *core) {
		c.perMinute = perMinute
		c.burst = burst
	}
}

// WithSubjectPrefix sets the prefix of every message subject.
func WithSubjectPrefix(prefix string) Option {
	return func(c *core) {
		c.prefix = prefix
	}
}

// core is the state shared by a Handler and the handlers derived from it
// with WithAttrs and WithGroup.
type core struct {
	mu        sync.Mutex
	channels  []*channel
	now       func() time.Time
	start     time.Time
	fallback  *slog.Logger
	timeout   time.Duration
	prefix    string
	perMinute float64
	burst     int
}

// Handler is a slog.Handler that turns matching log records into
// notifications.
type Handler struct {
	core   *core
	attrs  []slog.Attr
	groups []string
}

// NewHandler returns a Handler for the given channels. Channels without a
// sender or without triggers are ignored.
func NewHandler(channels []Channel, opts ...Option) *Handler {
	c := &core{
		now:      time.Now,
		fallback: slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout:  DefaultSendTimeout,
		prefix:   DefaultSubjectPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}

	limit := rate.Inf
	if c.perMinute > 0 {
		limit = rate.Limit(c.perMinute / 60)
	}
	burst := c.burst
	if burst < 1 {
		burst = 1
	}

	for _, ch := range channels {
		if ch.Sender == nil || ch.Triggers.IsZero() {
			continue
		}
		c.channels = append(c.channels, &channel{
			Channel: ch,
			limiter: rate.NewLimiter(limit, burst),
		})
	}
	c.start = c.now()

	return &Handler{core: c}
}

// Start marks the beginning of the job; after(N) triggers count from here.
func (h *Handler) Start() {
	h.core.mu.Lock()
	defer h.core.mu.Unlock()
	h.core.start = h.core.now()
	for _, ch := range h.core.channels {
		ch.afterSent = false
	}
}

// Channels returns the names of the active channels.
func (h *Handler) Channels() []string {
	names := make([]string, 0, len(h.core.channels))
	for _, ch := range h.core.channels {
		names = append(names, ch.Name)
	}
	return names
}

// Enabled reports whether the handler has any channel to deliver to.
func (h *Handler) Enabled(_ context.Context, _ slog.Level) bool {
	return len(h.core.channels) > 0
}

// Handle delivers r to every channel subscribed to one of its events.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	events, fields := h.inspect(r)

	c := h.core
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for _, ch := range c.channels {
		for _, e := range events {
			if ch.Triggers.Has(e) {
				c.deliver(ctx, ch, c.message(e, r.Message, r.Time, fields))
			}
		}

		if d := ch.Triggers.After(); d > 0 && !ch.afterSent && now.Sub(c.start) >= d {
			ch.afterSent = true
			text := fmt.Sprintf("job still running after %s", d)
			c.deliver(ctx, ch, c.message(After, text, now, nil))
		}
	}

	return nil
}

// WithAttrs returns a handler sharing h's channels with attrs added.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefixed := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		prefixed = append(prefixed, slog.Attr{Key: h.qualify(a.Key), Value: a.Value})
	}
	return &Handler{
		core:   h.core,
		attrs:  append(append([]slog.Attr{}, h.attrs...), prefixed...),
		groups: h.groups,
	}
}

// WithGroup returns a handler sharing h's channels whose attribute keys are
// qualified by name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &Handler{
		core:   h.core,
		attrs:  h.attrs,
		groups: append(append([]string{}, h.groups...), name),
	}
}

func (h *Handler) qualify(key string) string {
	if len(h.groups) == 0 {
		return key
	}
	return strings.Join(h.groups, ".") + "." + key
}

// inspect returns the events r stands for and its attributes as text.
func (h *Handler) inspect(r slog.Record) ([]Event, []string) {
	var events []Event
	switch {
	case r.Level >= slog.LevelError:
		events = append(events, Error)
	case r.Level >= slog.LevelWarn:
		events = append(events, Warning)
	}

	var fields []string
	add := func(a slog.Attr) {
		if isMarker(a.Key) {
			e := Event(a.Value.String())
			for _, seen := range events {
				if seen == e {
					return
				}
			}
			events = append(events, e)
			return
		}
		fields = append(fields, fmt.Sprintf("%s: %s", a.Key, a.Value.String()))
	}

	for _, a := range h.attrs {
		add(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		add(slog.Attr{Key: h.qualify(a.Key), Value: a.Value})
		return true
	})

	return events, fields
}

// isMarker reports whether key is AttrKey, possibly qualified by groups.
func isMarker(key string) bool {
	return key == AttrKey || strings.HasSuffix(key, "."+AttrKey)
}

func (c *core) message(e Event, text string, at time.Time, fields []string) Message {
	var body strings.Builder
	body.WriteString(text)
	body.WriteString("\n")
	if len(fields) > 0 {
		body.WriteString("\n")
		for _, f := range fields {
			body.WriteString(f)
			body.WriteString("\n")
		}
	}
	if !at.IsZero() {
		body.WriteString("\n")
		body.WriteString(at.Format(time.RFC1123))
		body.WriteString("\n")
	}

	return Message{
		Subject: strings.TrimSpace(fmt.Sprintf("%s %s: %s", c.prefix, e, text)),
		Body:    body.String(),
	}
}

// deliver sends msg over ch. Callers hold c.mu.
func (c *core) deliver(ctx context.Context, ch *channel, msg Message) {
	if !ch.limiter.Allow() {
		metrics.RecordNotification(ch.Name, metrics.OutcomeDropped)
		c.fallback.Warn("notification dropped by rate limit",
			"channel", ch.Name,
			"subject", msg.Subject,
		)
		return
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	if err := ch.Sender.Send(sendCtx, msg); err != nil {
		metrics.RecordNotification(ch.Name, metrics.OutcomeFailed)
		c.fallback.Warn("notification failed",
			"channel", ch.Name,
			"subject", msg.Subject,
			"error", err,
		)
		return
	}

	metrics.RecordNotification(ch.Name, metrics.OutcomeSent)
}
