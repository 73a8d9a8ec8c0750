package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/library-loans-go/catalog/oteladapters"
)

func newTracingCollector() (*oteladapters.TracingCollector, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	return oteladapters.NewTracingCollector(provider.Tracer("test")), exporter
}

func spanAttribute(span tracetest.SpanStub, key string) (string, bool) {
	for _, attr := range span.Attributes {
		if attr.Key == attribute.Key(key) {
			return attr.Value.AsString(), true
		}
	}

	return "", false
}

func Test_TracingCollector_StartAndFinishSpan(t *testing.T) {
	// arrange
	collector, exporter := newTracingCollector()

	// act
	ctx, span := collector.StartSpan(context.Background(), "ledger.create_loan", map[string]string{"operation": "create_loan"})
	span.AddAttribute("loan_id", "abc")
	collector.FinishSpan(span, "success", map[string]string{"duration_ms": "1.5"})

	// assert
	assert.True(t, trace.SpanContextFromContext(ctx).IsValid())

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "ledger.create_loan", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)

	for key, want := range map[string]string{"operation": "create_loan", "loan_id": "abc", "duration_ms": "1.5", "status": "success"} {
		got, found := spanAttribute(spans[0], key)
		assert.True(t, found, key)
		assert.Equal(t, want, got, key)
	}
}

func Test_TracingCollector_StatusMapping(t *testing.T) {
	testCases := []struct {
		status string
		code   codes.Code
	}{
		{status: "success", code: codes.Ok},
		{status: "rejected", code: codes.Ok},
		{status: "error", code: codes.Error},
		{status: "canceled", code: codes.Error},
		{status: "timeout", code: codes.Error},
		{status: "concurrency_conflict", code: codes.Error},
		{status: "something_else", code: codes.Error},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			// arrange
			collector, exporter := newTracingCollector()
			_, span := collector.StartSpan(context.Background(), "ledger.return_loan", nil)

			// act
			collector.FinishSpan(span, tc.status, nil)

			// assert
			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.code, spans[0].Status.Code)
		})
	}
}

func Test_TracingCollector_NestsSpansThroughContext(t *testing.T) {
	// arrange
	collector, exporter := newTracingCollector()

	// act
	ctx, parent := collector.StartSpan(context.Background(), "parent", nil)
	_, child := collector.StartSpan(ctx, "child", nil)
	collector.FinishSpan(child, "success", nil)
	collector.FinishSpan(parent, "success", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}

func Test_TracingCollector_IgnoresForeignSpanContext(t *testing.T) {
	// arrange
	collector, exporter := newTracingCollector()

	// act / assert
	assert.NotPanics(t, func() {
		collector.FinishSpan(foreignSpan{}, "success", nil)
	})
	assert.Empty(t, exporter.GetSpans())
}

type foreignSpan struct{}

func (foreignSpan) SetStatus(string)            {}
func (foreignSpan) AddAttribute(string, string) {}
