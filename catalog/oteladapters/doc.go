// Package oteladapters connects the catalog observability interfaces to OpenTelemetry.
//
// MetricsCollector maps durations to histograms, counters to counters, and values to gauges.
// TracingCollector maps ledger operations to spans. SlogBridgeLogger carries log records into
// the OpenTelemetry log pipeline with trace correlation.
package oteladapters
