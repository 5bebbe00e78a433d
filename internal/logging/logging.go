// Package logging provides structured logging with Sentry integration.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

// Config holds logging configuration.
type Config struct {
	Level     string // "debug", "info", "warn", "error"
	SentryDSN string
	Version   string
}

var sentryEnabled bool

// Init sets up the default slog logger, forwarding error records to Sentry
// when a DSN is configured.
func Init(cfg Config) error {
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:     cfg.SentryDSN,
			Release: cfg.Version,
		})
		if err != nil {
			return fmt.Errorf("sentry init: %w", err)
		}
		sentryEnabled = true
	}

	handler := &sentryHandler{
		Handler: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: parseLevel(cfg.Level),
		}),
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// Flush flushes buffered Sentry events. Call before shutdown.
func Flush(timeout time.Duration) {
	if sentryEnabled {
		sentry.Flush(timeout)
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// sentryHandler wraps an slog.Handler and mirrors errors to Sentry.
type sentryHandler struct {
	slog.Handler
}

func (h *sentryHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.Handler.Handle(ctx, r); err != nil {
		return err
	}

	if sentryEnabled && r.Level >= slog.LevelError {
		event := sentry.NewEvent()
		event.Level = sentry.LevelError
		event.Message = r.Message
		event.Timestamp = r.Time
		r.Attrs(func(a slog.Attr) bool {
			event.Extra[a.Key] = a.Value.Any()
			return true
		})
		sentry.CaptureEvent(event)
	}
	return nil
}

func (h *sentryHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sentryHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *sentryHandler) WithGroup(name string) slog.Handler {
	return &sentryHandler{Handler: h.Handler.WithGroup(name)}
}
