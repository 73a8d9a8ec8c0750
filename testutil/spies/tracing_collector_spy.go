package spies

import (
	"context"
	"maps"
	"sync"

	"github.com/AntonStoeckl/library-loans-go/catalog"
)

// SpySpanRecord is one span as seen by TracingCollectorSpy.
type SpySpanRecord struct {
	Name            string
	StartAttributes map[string]string
	Status          string
	EndAttributes   map[string]string
	Finished        bool
}

// SpySpanContext is the span handle the spy hands out. It points back at its record.
type SpySpanContext struct {
	spy   *TracingCollectorSpy
	index int
}

// SetStatus stores the status on the span record.
func (c *SpySpanContext) SetStatus(status string) {
	c.spy.update(c.index, func(r *SpySpanRecord) { r.Status = status })
}

// AddAttribute stores an end attribute on the span record.
func (c *SpySpanContext) AddAttribute(key, value string) {
	c.spy.update(c.index, func(r *SpySpanRecord) {
		if r.EndAttributes == nil {
			r.EndAttributes = map[string]string{}
		}

		r.EndAttributes[key] = value
	})
}

// TracingCollectorSpy captures catalog.TracingCollector calls.
type TracingCollectorSpy struct {
	mu      sync.Mutex
	enabled bool
	spans   []SpySpanRecord
}

// NewTracingCollectorSpy returns a spy. With capture false StartSpan hands out no span.
func NewTracingCollectorSpy(capture bool) *TracingCollectorSpy {
	return &TracingCollectorSpy{enabled: capture}
}

func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, catalog.SpanContext) {
	if !s.enabled {
		return ctx, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.spans = append(s.spans, SpySpanRecord{Name: name, StartAttributes: maps.Clone(attrs)})

	return ctx, &SpySpanContext{spy: s, index: len(s.spans) - 1}
}

func (s *TracingCollectorSpy) FinishSpan(span catalog.SpanContext, status string, attrs map[string]string) {
	handle, ok := span.(*SpySpanContext)
	if !ok || handle.spy != s {
		return
	}

	s.update(handle.index, func(r *SpySpanRecord) {
		r.Status = status
		r.Finished = true

		if r.EndAttributes == nil {
			r.EndAttributes = map[string]string{}
		}

		maps.Copy(r.EndAttributes, attrs)
	})
}

func (s *TracingCollectorSpy) update(index int, change func(*SpySpanRecord)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	change(&s.spans[index])
}

// GetSpanRecords returns a snapshot of the captured spans.
func (s *TracingCollectorSpy) GetSpanRecords() []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SpySpanRecord, 0, len(s.spans))
	for _, span := range s.spans {
		span.StartAttributes = maps.Clone(span.StartAttributes)
		span.EndAttributes = maps.Clone(span.EndAttributes)
		out = append(out, span)
	}

	return out
}

// FindFinishedSpan returns the first finished span called name.
func (s *TracingCollectorSpy) FindFinishedSpan(name string) (SpySpanRecord, bool) {
	for _, span := range s.GetSpanRecords() {
		if span.Finished && span.Name == name {
			return span, true
		}
	}

	return SpySpanRecord{}, false
}
