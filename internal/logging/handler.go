package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// SwappableHandler forwards to a slog.Handler that can be replaced at
// runtime. Handlers derived with WithAttrs or WithGroup share the same
// replaceable root, so loggers created before a swap follow it.
type SwappableHandler struct {
	root *atomic.Pointer[slog.Handler]
	ops  []func(slog.Handler) slog.Handler
}

// NewSwappableHandler creates a handler forwarding to initial.
func NewSwappableHandler(initial slog.Handler) *SwappableHandler {
	root := new(atomic.Pointer[slog.Handler])
	root.Store(&initial)
	return &SwappableHandler{root: root}
}

// Swap replaces the root handler for this handler and every handler
// derived from it.
func (sh *SwappableHandler) Swap(next slog.Handler) {
	sh.root.Store(&next)
}

// current returns the root handler with this handler's attrs and groups
// applied.
func (sh *SwappableHandler) current() slog.Handler {
	h := *sh.root.Load()
	for _, op := range sh.ops {
		h = op(h)
	}
	return h
}

// Enabled reports whether the current handler handles records at level.
func (sh *SwappableHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return sh.current().Enabled(ctx, level)
}

// Handle forwards r to the current handler.
func (sh *SwappableHandler) Handle(ctx context.Context, r slog.Record) error {
	return sh.current().Handle(ctx, r)
}

// WithAttrs returns a derived handler that adds attrs.
func (sh *SwappableHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return sh.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

// WithGroup returns a derived handler that opens group name.
func (sh *SwappableHandler) WithGroup(name string) slog.Handler {
	return sh.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (sh *SwappableHandler) derive(op func(slog.Handler) slog.Handler) *SwappableHandler {
	ops := make([]func(slog.Handler) slog.Handler, len(sh.ops), len(sh.ops)+1)
	copy(ops, sh.ops)
	return &SwappableHandler{root: sh.root, ops: append(ops, op)}
}
