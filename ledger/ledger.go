package ledger

import (
	"errors"
	"time"

	"github.com/AntonStoeckl/library-loans-go/catalog"
)

var (
	// ErrNilStore is returned when New is called without a store.
	ErrNilStore = errors.New("store must not be nil")

	// ErrNilClock is returned when WithClock is called with nil.
	ErrNilClock = errors.New("clock must not be nil")
)

// Clock returns the current time.
type Clock func() time.Time

// Ledger is the only component that mutates the counters of books and users.
type Ledger struct {
	store            catalog.Store
	clock            Clock
	strictCounters   bool
	retryOptions     []RetryOption
	logger           catalog.Logger
	contextualLogger catalog.ContextualLogger
	metricsCollector catalog.MetricsCollector
	tracingCollector catalog.TracingCollector
}

// New creates a Ledger on top of store.
func New(store catalog.Store, options ...Option) (*Ledger, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	l := &Ledger{
		store: store,
		clock: time.Now,
	}

	for _, option := range options {
		if err := option(l); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// Option defines a functional option for configuring a Ledger.
type Option func(*Ledger) error

// WithClock sets the time source for loan and return dates.
func WithClock(clock Clock) Option {
	return func(l *Ledger) error {
		if clock == nil {
			return ErrNilClock
		}

		l.clock = clock

		return nil
	}
}

// WithStrictCounters makes a counter that would need clamping fail the operation with
// catalog.ErrCounterInvariantViolated instead of being clamped with a warning.
func WithStrictCounters() Option {
	return func(l *Ledger) error {
		l.strictCounters = true
		return nil
	}
}

// WithRetryOptions configures the backoff of write operations.
// The options are validated right away.
func WithRetryOptions(options ...RetryOption) Option {
	return func(l *Ledger) error {
		validated := &backoffPolicy{}
		for _, option := range options {
			if err := option(validated); err != nil {
				return err
			}
		}

		l.retryOptions = append(l.retryOptions, options...)

		return nil
	}
}

// WithLogger sets the logger for operation logging.
func WithLogger(logger catalog.Logger) Option {
	return func(l *Ledger) error {
		l.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger. It takes precedence over WithLogger.
func WithContextualLogger(logger catalog.ContextualLogger) Option {
	return func(l *Ledger) error {
		l.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector catalog.MetricsCollector) Option {
	return func(l *Ledger) error {
		l.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector.
func WithTracing(collector catalog.TracingCollector) Option {
	return func(l *Ledger) error {
		l.tracingCollector = collector
		return nil
	}
}

func (l *Ledger) now() time.Time {
	return catalog.ToTimestamp(l.clock())
}
