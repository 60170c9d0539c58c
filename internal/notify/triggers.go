// Package notify sends status updates for a running job over email and text
// message channels.
//
// The Handler type is a slog.Handler: it sits next to the regular log
// handlers and decides, per record and per channel, whether the record is an
// event the channel's owner asked to hear about.
package notify

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Event is a kind of status update a channel can subscribe to.
type Event string

// Recognised events.
const (
	StepMinor Event = "step-minor"
	StepMajor Event = "step-major"
	Warning   Event = "warning"
	Error     Event = "error"
	After     Event = "after"
	Finish    Event = "finish"
	Rundown   Event = "rundown"
)

// AttrKey is the log attribute that marks a record as a notification event.
//
//	logger.Info("job finished", notify.AttrKey, notify.Finish)
const AttrKey = "notify"

// Events lists every recognised event in display order.
var Events = []Event{StepMinor, StepMajor, Warning, Error, After, Finish, Rundown}

// MaxAfterMinutes is the largest accepted after(N), one year.
const MaxAfterMinutes = 365 * 24 * 60

// ErrInvalidTrigger is returned by ParseTriggers for malformed trigger lists.
var ErrInvalidTrigger = errors.New("invalid notification trigger")

// Triggers is the set of events a channel is notified about.
type Triggers struct {
	order []Event
	set   map[Event]bool
	after time.Duration
}

// ParseTriggers parses a comma-separated list of events, for example
// "error,finish,after(60)". The argument of after is a number of minutes.
// Spaces are not allowed around the commas.
func ParseTriggers(s string) (Triggers, error) {
	t := Triggers{set: make(map[Event]bool)}
	if s == "" {
		return t, fmt.Errorf("%w; empty event list", ErrInvalidTrigger)
	}

	for _, item := range strings.Split(s, ",") {
		event, after, err := parseTrigger(strings.ToLower(item))
		if err != nil {
			return Triggers{}, err
		}
		if t.set[event] {
			return Triggers{}, fmt.Errorf("%w; duplicate event %q", ErrInvalidTrigger, event)
		}
		t.set[event] = true
		t.order = append(t.order, event)
		if event == After {
			t.after = after
		}
	}

	return t, nil
}

func parseTrigger(item string) (Event, time.Duration, error) {
	if item == "" {
		return "", 0, fmt.Errorf("%w; empty event", ErrInvalidTrigger)
	}

	if strings.HasPrefix(item, string(After)) {
		arg, ok := strings.CutPrefix(item, string(After)+"(")
		if !ok || !strings.HasSuffix(arg, ")") {
			return "", 0, fmt.Errorf("%w; %q must be written as after(<minutes>)", ErrInvalidTrigger, item)
		}
		minutes, err := strconv.Atoi(strings.TrimSuffix(arg, ")"))
		if err != nil || minutes < 1 {
			return "", 0, fmt.Errorf("%w; after() needs a positive whole number of minutes, got %q", ErrInvalidTrigger, item)
		}
		if minutes > MaxAfterMinutes {
			return "", 0, fmt.Errorf("%w; after() is limited to %d minutes, got %q", ErrInvalidTrigger, MaxAfterMinutes, item)
		}
		return After, time.Duration(minutes) * time.Minute, nil
	}

	event := Event(item)
	switch event {
	case StepMinor, StepMajor, Warning, Error, Finish, Rundown:
		return event, 0, nil
	default:
		return "", 0, fmt.Errorf("%w; unknown event %q", ErrInvalidTrigger, item)
	}
}

// Has reports whether e is one of the triggers.
func (t Triggers) Has(e Event) bool {
	return t.set[e]
}

// After returns the after(N) delay, or zero when after is not set.
func (t Triggers) After() time.Duration {
	return t.after
}

// IsZero reports whether no events are set.
func (t Triggers) IsZero() bool {
	return len(t.order) == 0
}

// String returns the canonical comma-separated form of t.
func (t Triggers) String() string {
	parts := make([]string, 0, len(t.order))
	for _, e := range t.order {
		if e == After {
			parts = append(parts, fmt.Sprintf("after(%d)", int(t.after/time.Minute)))
			continue
		}
		parts = append(parts, string(e))
	}
	return strings.Join(parts, ",")
}
