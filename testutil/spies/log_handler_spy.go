package spies

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"
)

// LogEntry is a captured log record with its attributes flattened to a map.
type LogEntry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]slog.Value
}

// LogHandlerSpy is a slog.Handler that keeps every record it receives.
type LogHandlerSpy struct {
	mu      sync.Mutex
	entries []LogEntry
	echo    slog.Handler
}

// NewLogHandlerSpy returns a spy. With echo true records are also written as JSON to stdout,
// which helps when debugging a failing test.
func NewLogHandlerSpy(echo bool) *LogHandlerSpy {
	spy := &LogHandlerSpy{}
	if echo {
		spy.echo = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	return spy
}

func (s *LogHandlerSpy) Enabled(context.Context, slog.Level) bool { return true }
func (s *LogHandlerSpy) WithAttrs([]slog.Attr) slog.Handler        { return s }
func (s *LogHandlerSpy) WithGroup(string) slog.Handler             { return s }

func (s *LogHandlerSpy) Handle(ctx context.Context, record slog.Record) error {
	entry := LogEntry{Level: record.Level, Message: record.Message, Attrs: make(map[string]slog.Value, record.NumAttrs())}
	record.Attrs(func(attr slog.Attr) bool {
		entry.Attrs[attr.Key] = attr.Value.Resolve()
		return true
	})

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()

	if s.echo != nil {
		return s.echo.Handle(ctx, record)
	}

	return nil
}

// GetRecords returns a snapshot of the captured entries.
func (s *LogHandlerSpy) GetRecords() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.entries)
}

// HasLog starts a match over the entries with the given level and message.
// Chain WithAttr or WithDurationMS to narrow it and finish with Assert.
func (s *LogHandlerSpy) HasLog(level slog.Level, message string) *LogMatch {
	match := &LogMatch{}
	for _, entry := range s.GetRecords() {
		if entry.Level == level && entry.Message == message {
			match.entries = append(match.entries, entry)
		}
	}

	return match
}

// LogMatch holds the entries that passed every filter so far.
type LogMatch struct {
	entries []LogEntry
}

func (m *LogMatch) keep(pred func(LogEntry) bool) *LogMatch {
	m.entries = slices.DeleteFunc(m.entries, func(e LogEntry) bool { return !pred(e) })
	return m
}

// WithAttr keeps entries whose attribute key renders to the same string as value.
func (m *LogMatch) WithAttr(key string, value any) *LogMatch {
	want := fmt.Sprint(value)

	return m.keep(func(e LogEntry) bool {
		got, ok := e.Attrs[key]
		return ok && got.String() == want
	})
}

// WithDurationMS keeps entries carrying a non-negative numeric duration_ms.
func (m *LogMatch) WithDurationMS() *LogMatch {
	return m.keep(func(e LogEntry) bool {
		v, ok := e.Attrs["duration_ms"]
		if !ok {
			return false
		}

		switch v.Kind() {
		case slog.KindFloat64:
			return v.Float64() >= 0
		case slog.KindInt64:
			return v.Int64() >= 0
		default:
			return false
		}
	})
}

// Assert reports whether at least one entry survived the chain.
func (m *LogMatch) Assert() bool {
	return len(m.entries) > 0
}
