package ledger

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/AntonStoeckl/library-loans-go/catalog"
)

const (
	defaultMaxAttempts  = 6
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3
)

var (
	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay is returned when the base delay is negative.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrInvalidJitterFactor is returned when the jitter factor is not between 0.0 and 1.0.
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

// RetryableFunc is one attempt of a unit of work.
type RetryableFunc func(ctx context.Context) error

// RetryMetrics summarizes a retried call for the ledger's metrics.
type RetryMetrics struct {
	Attempts         int
	TotalDelay       time.Duration
	LastErrorType    string
	RetriesExhausted bool
}

type backoffPolicy struct {
	maxAttempts  int
	baseDelay    time.Duration
	jitterFactor float64
}

// RetryOption adjusts the backoff policy. Invalid values make RetryWithExponentialBackoff fail before the first attempt.
type RetryOption func(*backoffPolicy) error

// WithMaxAttempts caps the total number of attempts, the first one included.
func WithMaxAttempts(attempts int) RetryOption {
	return func(p *backoffPolicy) error {
		if attempts < 1 {
			return ErrInvalidMaxAttempts
		}

		p.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the wait before the second attempt. Each further wait doubles it.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(p *backoffPolicy) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		p.baseDelay = delay

		return nil
	}
}

// WithJitterFactor sets the random extra wait as a share (0.0 to 1.0) of each backoff step.
func WithJitterFactor(factor float64) RetryOption {
	return func(p *backoffPolicy) error {
		if factor < 0 || factor > 1 {
			return ErrInvalidJitterFactor
		}

		p.jitterFactor = factor

		return nil
	}
}

// delayBefore returns the wait ahead of the given zero-based attempt.
func (p backoffPolicy) delayBefore(attempt int) time.Duration {
	if attempt == 0 {
		return 0
	}

	step := p.baseDelay << (attempt - 1)
	extra := time.Duration(rand.Float64() * p.jitterFactor * float64(step)) //nolint:gosec // jitter needs no crypto randomness

	return step + extra
}

// RetryWithExponentialBackoff runs fn until it succeeds, fails with anything but
// catalog.ErrConcurrencyConflict, runs out of attempts, or ctx ends while waiting.
//
// With the defaults the waits are 10, 20, 40, 80 and 160 ms plus up to 30% jitter.
func RetryWithExponentialBackoff(ctx context.Context, fn RetryableFunc, options ...RetryOption) (RetryMetrics, error) {
	policy := backoffPolicy{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}

	for _, option := range options {
		if err := option(&policy); err != nil {
			return RetryMetrics{}, err
		}
	}

	meta := RetryMetrics{LastErrorType: errorTypeNone}

	var err error
	for attempt := range policy.maxAttempts {
		if attempt > 0 {
			wait := policy.delayBefore(attempt)
			if waitErr := sleep(ctx, wait); waitErr != nil {
				meta.LastErrorType = errorType(waitErr)
				return meta, waitErr
			}

			meta.TotalDelay += wait
		}

		meta.Attempts++
		err = fn(ctx)
		meta.LastErrorType = errorType(err)

		if err == nil || !isRetryableError(err) {
			return meta, err
		}
	}

	meta.RetriesExhausted = true

	return meta, err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isRetryableError(err error) bool {
	return errors.Is(err, catalog.ErrConcurrencyConflict)
}

const (
	errorTypeNone                    = "none"
	errorTypeConcurrencyConflict     = "concurrency_conflict"
	errorTypeContextCanceled         = "context_canceled"
	errorTypeContextDeadlineExceeded = "context_deadline_exceeded"
	errorTypeBusinessRule            = "business_rule"
	errorTypeOther                   = "other"
)

func errorType(err error) string {
	switch {
	case err == nil:
		return errorTypeNone
	case errors.Is(err, catalog.ErrConcurrencyConflict):
		return errorTypeConcurrencyConflict
	case errors.Is(err, context.Canceled):
		return errorTypeContextCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return errorTypeContextDeadlineExceeded
	case isBusinessError(err):
		return errorTypeBusinessRule
	default:
		return errorTypeOther
	}
}

func isBusinessError(err error) bool {
	return errors.Is(err, catalog.ErrNotFound) ||
		errors.Is(err, catalog.ErrConflict) ||
		errors.Is(err, catalog.ErrInvalidInput)
}
