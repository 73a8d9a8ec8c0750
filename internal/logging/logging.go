// Package logging builds the process logger on zerolog and adapts it to the catalog logging interfaces.
package logging

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/library-loans-go/catalog"
)

// New creates a zerolog.Logger writing to w at the given level ("debug", "info", ...).
// An unknown level falls back to info. With console set, lines are human readable instead of JSON.
func New(w io.Writer, level string, console bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// ZerologLogger implements catalog.Logger and catalog.ContextualLogger on a zerolog.Logger.
// Arguments are slog-style alternating keys and values. The context-aware methods add
// trace_id and span_id when ctx carries a valid span.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps logger.
func NewZerologLogger(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: logger}
}

func (a *ZerologLogger) Debug(msg string, args ...any) { a.write(context.Background(), a.logger.Debug(), msg, args) }
func (a *ZerologLogger) Info(msg string, args ...any)  { a.write(context.Background(), a.logger.Info(), msg, args) }
func (a *ZerologLogger) Warn(msg string, args ...any)  { a.write(context.Background(), a.logger.Warn(), msg, args) }
func (a *ZerologLogger) Error(msg string, args ...any) { a.write(context.Background(), a.logger.Error(), msg, args) }

func (a *ZerologLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	a.write(ctx, a.logger.Debug(), msg, args)
}

func (a *ZerologLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	a.write(ctx, a.logger.Info(), msg, args)
}

func (a *ZerologLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	a.write(ctx, a.logger.Warn(), msg, args)
}

func (a *ZerologLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	a.write(ctx, a.logger.Error(), msg, args)
}

func (a *ZerologLogger) write(ctx context.Context, event *zerolog.Event, msg string, args []any) {
	if event == nil {
		return
	}

	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		event = event.Str("trace_id", spanCtx.TraceID().String()).Str("span_id", spanCtx.SpanID().String())
	}

	if len(args)%2 == 1 {
		args = append(args[:len(args):len(args)], "!MISSING")
	}

	event.Fields(args).Msg(msg)
}

var (
	_ catalog.Logger           = (*ZerologLogger)(nil)
	_ catalog.ContextualLogger = (*ZerologLogger)(nil)
)

// Tee forwards every call to each of its loggers in order.
type Tee []catalog.ContextualLogger

func (t Tee) DebugContext(ctx context.Context, msg string, args ...any) {
	for _, l := range t {
		l.DebugContext(ctx, msg, args...)
	}
}

func (t Tee) InfoContext(ctx context.Context, msg string, args ...any) {
	for _, l := range t {
		l.InfoContext(ctx, msg, args...)
	}
}

func (t Tee) WarnContext(ctx context.Context, msg string, args ...any) {
	for _, l := range t {
		l.WarnContext(ctx, msg, args...)
	}
}

func (t Tee) ErrorContext(ctx context.Context, msg string, args ...any) {
	for _, l := range t {
		l.ErrorContext(ctx, msg, args...)
	}
}

var _ catalog.ContextualLogger = Tee(nil)
