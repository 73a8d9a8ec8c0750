package spies

import (
	"context"
	"maps"
	"sync"
	"time"
)

// MetricKind tells which collector method produced a MetricRecord.
type MetricKind string

const (
	KindDuration MetricKind = "duration"
	KindCounter  MetricKind = "counter"
	KindValue    MetricKind = "value"
)

// MetricRecord is one captured collector call. Duration is set for KindDuration, Value for KindValue.
type MetricRecord struct {
	Kind     MetricKind
	Metric   string
	Duration time.Duration
	Value    float64
	Labels   map[string]string
}

// MetricsCollectorSpy captures catalog.ContextualMetricsCollector calls in call order.
type MetricsCollectorSpy struct {
	mu      sync.Mutex
	enabled bool
	calls   []MetricRecord
}

// NewMetricsCollectorSpy returns a spy. With capture false it swallows every call.
func NewMetricsCollectorSpy(capture bool) *MetricsCollectorSpy {
	return &MetricsCollectorSpy{enabled: capture}
}

func (s *MetricsCollectorSpy) capture(record MetricRecord) {
	if !s.enabled {
		return
	}

	record.Labels = maps.Clone(record.Labels)

	s.mu.Lock()
	s.calls = append(s.calls, record)
	s.mu.Unlock()
}

func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.capture(MetricRecord{Kind: KindDuration, Metric: metric, Duration: duration, Labels: labels})
}

func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.capture(MetricRecord{Kind: KindCounter, Metric: metric, Labels: labels})
}

func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.capture(MetricRecord{Kind: KindValue, Metric: metric, Value: value, Labels: labels})
}

func (s *MetricsCollectorSpy) RecordDurationContext(_ context.Context, metric string, duration time.Duration, labels map[string]string) {
	s.RecordDuration(metric, duration, labels)
}

func (s *MetricsCollectorSpy) IncrementCounterContext(_ context.Context, metric string, labels map[string]string) {
	s.IncrementCounter(metric, labels)
}

func (s *MetricsCollectorSpy) RecordValueContext(_ context.Context, metric string, value float64, labels map[string]string) {
	s.RecordValue(metric, value, labels)
}

// Records returns the captured calls of one kind.
func (s *MetricsCollectorSpy) Records(kind MetricKind) []MetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []MetricRecord
	for _, record := range s.calls {
		if record.Kind == kind {
			out = append(out, record)
		}
	}

	return out
}

func (s *MetricsCollectorSpy) GetDurationRecords() []MetricRecord { return s.Records(KindDuration) }
func (s *MetricsCollectorSpy) GetCounterRecords() []MetricRecord  { return s.Records(KindCounter) }
func (s *MetricsCollectorSpy) GetValueRecords() []MetricRecord    { return s.Records(KindValue) }

// HasDurationRecordWithLabels reports whether a duration of metric was recorded with at least the given labels.
func (s *MetricsCollectorSpy) HasDurationRecordWithLabels(metric string, labels map[string]string) bool {
	return s.count(KindDuration, metric, labels) > 0
}

// CountCounterRecords counts increments of metric carrying at least the given labels.
func (s *MetricsCollectorSpy) CountCounterRecords(metric string, labels map[string]string) int {
	return s.count(KindCounter, metric, labels)
}

func (s *MetricsCollectorSpy) count(kind MetricKind, metric string, labels map[string]string) int {
	n := 0

	for _, record := range s.Records(kind) {
		if record.Metric == metric && subsetOf(labels, record.Labels) {
			n++
		}
	}

	return n
}

func subsetOf(want, got map[string]string) bool {
	for k, v := range want {
		if value, ok := got[k]; !ok || value != v {
			return false
		}
	}

	return true
}
