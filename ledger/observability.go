package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-loans-go/catalog"
)

const (
	// OperationDurationMetric tracks ledger operation duration.
	OperationDurationMetric = "ledger_operation_duration_seconds"

	// OperationCallsMetric tracks total ledger operation calls.
	OperationCallsMetric = "ledger_operation_calls_total"

	// RetriesMetric tracks retried units of work.
	//
	// Labels:
	//   - operation: ledger operation that was retried
	//   - attempt_number: total attempts that were needed
	//   - error_type: category of the error causing the last retry
	RetriesMetric = "ledger_retries_total"

	// RetryDelayMetric tracks the total backoff delay spent in retries of one operation.
	RetryDelayMetric = "ledger_retry_delay_seconds"

	// MaxRetriesReachedMetric tracks operations that gave up after the last attempt.
	MaxRetriesReachedMetric = "ledger_max_retries_reached_total"

	// CounterClampedMetric tracks counter updates that had to be clamped because the counter had drifted.
	//
	// Labels:
	//   - counter: book_available_quantity or user_active_loans
	CounterClampedMetric = "ledger_counter_clamped_total"

	// CountersRepairedMetric records how many drifted counters one repair run rewrote.
	CountersRepairedMetric = "ledger_counters_repaired"

	// StatusSuccess indicates successful completion.
	StatusSuccess = "success"

	// StatusRejected indicates the operation was refused by a business rule (not found, conflict, invalid input).
	StatusRejected = "rejected"

	// StatusError indicates a technical failure.
	StatusError = "error"

	// StatusCanceled indicates the operation was canceled due to context cancellation.
	StatusCanceled = "canceled"

	// StatusTimeout indicates the operation timed out due to context deadline exceeded.
	StatusTimeout = "timeout"

	// StatusConcurrencyConflict indicates the operation gave up on a concurrency conflict.
	StatusConcurrencyConflict = "concurrency_conflict"

	// SpanNamePrefix is prepended to the operation name to build the span name.
	SpanNamePrefix = "ledger."

	LogMsgOperationStarted   = "ledger operation started"
	LogMsgOperationCompleted = "ledger operation completed"
	LogMsgOperationRejected  = "ledger operation rejected"
	LogMsgOperationFailed    = "ledger operation failed"
	LogMsgCounterClamped     = "ledger counter clamped"
	LogMsgCounterRepaired    = "ledger counter repaired"

	LogAttrOperation    = "operation"
	LogAttrStatus       = "status"
	LogAttrDurationMS   = "duration_ms"
	LogAttrError        = "error"
	LogAttrErrorType    = "error_type"
	LogAttrAttempts     = "attempts"
	LogAttrCounter      = "counter"
	LogAttrEntityID     = "entity_id"
	LogAttrRecorded     = "recorded"
	LogAttrExpected     = "expected"
	LogAttrAttemptCount = "attempt_number"
)

const (
	OperationCreateLoan            = "create_loan"
	OperationReturnLoan            = "return_loan"
	OperationListAllLoans          = "list_all_loans"
	OperationListActiveLoansByUser = "list_active_loans_by_user"
	OperationRegisterBook          = "register_book"
	OperationReviseBook            = "revise_book"
	OperationDeleteBook            = "delete_book"
	OperationGetBook               = "get_book"
	OperationListBooks             = "list_books"
	OperationRegisterUser          = "register_user"
	OperationReviseUser            = "revise_user"
	OperationDeleteUser            = "delete_user"
	OperationGetUser               = "get_user"
	OperationListUsers             = "list_users"
	OperationRepairCounters        = "repair_counters"
	OperationCheckInvariants       = "check_invariants"
)

// observe wraps one ledger operation with tracing, metrics, and logging.
// Write operations run inside the retry loop, reads run once.
func (l *Ledger) observe(ctx context.Context, operation string, write bool, fn RetryableFunc) error {
	start := time.Now()
	ctx, span := l.startSpan(ctx, operation)
	l.logDebug(ctx, LogMsgOperationStarted, LogAttrOperation, operation)

	var err error
	if write {
		var meta RetryMetrics
		meta, err = RetryWithExponentialBackoff(ctx, fn, l.retryOptions...)
		l.recordRetryMetrics(ctx, operation, meta)
	} else {
		err = fn(ctx)
	}

	duration := time.Since(start)
	status := statusOf(err)

	l.recordOperationMetrics(ctx, operation, status, duration)
	l.finishSpan(span, status, duration, err)

	switch status {
	case StatusSuccess:
		l.logInfo(ctx, LogMsgOperationCompleted,
			LogAttrOperation, operation, LogAttrDurationMS, toMilliseconds(duration))
	case StatusRejected:
		l.logInfo(ctx, LogMsgOperationRejected,
			LogAttrOperation, operation, LogAttrError, err.Error(), LogAttrDurationMS, toMilliseconds(duration))
	default:
		l.logError(ctx, LogMsgOperationFailed,
			LogAttrOperation, operation, LogAttrStatus, status, LogAttrError, err.Error())
	}

	return err
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, context.Canceled):
		return StatusCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return StatusTimeout
	case errors.Is(err, catalog.ErrConcurrencyConflict):
		return StatusConcurrencyConflict
	case isBusinessError(err):
		return StatusRejected
	default:
		return StatusError
	}
}

// counterClamped reports a counter that needed clamping. In strict mode it fails the unit of work.
func (l *Ledger) counterClamped(ctx context.Context, kind catalog.CounterKind, entityID fmt.Stringer) error {
	l.incrementCounter(ctx, CounterClampedMetric, map[string]string{LogAttrCounter: string(kind)})
	l.logWarn(ctx, LogMsgCounterClamped, LogAttrCounter, string(kind), LogAttrEntityID, entityID.String())

	if l.strictCounters {
		return fmt.Errorf("%w: %s %s", catalog.ErrCounterInvariantViolated, kind, entityID)
	}

	return nil
}

func (l *Ledger) recordOperationMetrics(ctx context.Context, operation, status string, duration time.Duration) {
	labels := map[string]string{LogAttrOperation: operation, LogAttrStatus: status}
	l.recordDuration(ctx, OperationDurationMetric, duration, labels)
	l.incrementCounter(ctx, OperationCallsMetric, labels)
}

func (l *Ledger) recordRetryMetrics(ctx context.Context, operation string, meta RetryMetrics) {
	if meta.Attempts > 1 {
		l.incrementCounter(ctx, RetriesMetric, map[string]string{
			LogAttrOperation:    operation,
			LogAttrAttemptCount: strconv.Itoa(meta.Attempts),
			LogAttrErrorType:    meta.LastErrorType,
		})
		l.recordDuration(ctx, RetryDelayMetric, meta.TotalDelay, map[string]string{LogAttrOperation: operation})
	}

	if meta.RetriesExhausted {
		l.incrementCounter(ctx, MaxRetriesReachedMetric, map[string]string{LogAttrOperation: operation})
	}
}

func (l *Ledger) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if l.metricsCollector == nil {
		return
	}

	if contextual, ok := l.metricsCollector.(catalog.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	l.metricsCollector.RecordDuration(metric, duration, labels)
}

func (l *Ledger) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if l.metricsCollector == nil {
		return
	}

	if contextual, ok := l.metricsCollector.(catalog.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	l.metricsCollector.IncrementCounter(metric, labels)
}

func (l *Ledger) recordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	if l.metricsCollector == nil {
		return
	}

	if contextual, ok := l.metricsCollector.(catalog.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(ctx, metric, value, labels)
		return
	}

	l.metricsCollector.RecordValue(metric, value, labels)
}

func (l *Ledger) startSpan(ctx context.Context, operation string) (context.Context, catalog.SpanContext) {
	if l.tracingCollector == nil {
		return ctx, nil
	}

	return l.tracingCollector.StartSpan(ctx, SpanNamePrefix+operation, map[string]string{LogAttrOperation: operation})
}

func (l *Ledger) finishSpan(span catalog.SpanContext, status string, duration time.Duration, err error) {
	if l.tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: fmt.Sprintf("%.2f", toMilliseconds(duration)),
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	l.tracingCollector.FinishSpan(span, status, attrs)
}

func (l *Ledger) logDebug(ctx context.Context, msg string, args ...any) {
	if l.contextualLogger != nil {
		l.contextualLogger.DebugContext(ctx, msg, args...)
	} else if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}

func (l *Ledger) logInfo(ctx context.Context, msg string, args ...any) {
	if l.contextualLogger != nil {
		l.contextualLogger.InfoContext(ctx, msg, args...)
	} else if l.logger != nil {
		l.logger.Info(msg, args...)
	}
}

func (l *Ledger) logWarn(ctx context.Context, msg string, args ...any) {
	if l.contextualLogger != nil {
		l.contextualLogger.WarnContext(ctx, msg, args...)
	} else if l.logger != nil {
		l.logger.Warn(msg, args...)
	}
}

func (l *Ledger) logError(ctx context.Context, msg string, args ...any) {
	if l.contextualLogger != nil {
		l.contextualLogger.ErrorContext(ctx, msg, args...)
	} else if l.logger != nil {
		l.logger.Error(msg, args...)
	}
}

func toMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}
