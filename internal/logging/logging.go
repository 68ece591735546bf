// Package logging hands out component-scoped slog loggers that share one
// output and one level.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	level = new(slog.LevelVar)

	mu  sync.RWMutex
	out slog.Handler = newHandler(os.Stderr, "text")
)

// Logger returns a logger tagged with component. Loggers obtained before
// Configure or SetLevel pick up the new settings.
func Logger(component string) *slog.Logger {
	return slog.New(&handler{}).With("component", component)
}

// SetLevel sets the minimum level by name ("debug", "info", "warn",
// "error"). Unknown names leave the level unchanged and return false.
func SetLevel(name string) bool {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return false
	}
	level.Set(l)
	return true
}

// Configure redirects every logger to w in the given format ("text" or
// "json").
func Configure(w io.Writer, format string) {
	mu.Lock()
	defer mu.Unlock()
	out = newHandler(w, format)
}

func newHandler(w io.Writer, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// handler resolves the shared output on every record and replays the
// attrs and groups it was derived with.
type handler struct {
	derive []func(slog.Handler) slog.Handler
}

func (h *handler) resolve() slog.Handler {
	mu.RLock()
	base := out
	mu.RUnlock()
	for _, d := range h.derive {
		base = d(base)
	}
	return base
}

func (h *handler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= level.Level()
}

func (h *handler) Handle(ctx context.Context, r slog.Record) error {
	return h.resolve().Handle(ctx, r)
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.with(func(b slog.Handler) slog.Handler { return b.WithAttrs(attrs) })
}

func (h *handler) WithGroup(name string) slog.Handler {
	return h.with(func(b slog.Handler) slog.Handler { return b.WithGroup(name) })
}

func (h *handler) with(d func(slog.Handler) slog.Handler) *handler {
	derive := make([]func(slog.Handler) slog.Handler, 0, len(h.derive)+1)
	derive = append(derive, h.derive...)
	return &handler{derive: append(derive, d)}
}
