package config

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const metricExportInterval = 10 * time.Second

// ErrObservabilitySetupFailed is returned when an exporter or the resource cannot be created.
var ErrObservabilitySetupFailed = errors.New("observability setup failed")

// ObservabilityProviders holds the OpenTelemetry SDK providers registered by NewObservabilityProviders.
type ObservabilityProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	LoggerProvider *sdklog.LoggerProvider
}

// NewObservabilityProviders builds trace, metric, and log providers exporting over OTLP gRPC to
// cfg.Endpoint and registers them as the global providers together with the W3C trace context propagator.
// Exporters connect lazily, so an unreachable collector does not fail the setup.
func NewObservabilityProviders(ctx context.Context, cfg Observability) (*ObservabilityProviders, error) {
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceNameKey.String(cfg.ServiceName)))
	if err != nil {
		return nil, errors.Join(ErrObservabilitySetupFailed, err)
	}

	hostPort, insecure := splitEndpoint(cfg.Endpoint)

	traceOptions := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(hostPort)}
	metricOptions := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(hostPort)}
	logOptions := []otlploggrpc.Option{otlploggrpc.WithEndpoint(hostPort)}

	if insecure {
		traceOptions = append(traceOptions, otlptracegrpc.WithInsecure())
		metricOptions = append(metricOptions, otlpmetricgrpc.WithInsecure())
		logOptions = append(logOptions, otlploggrpc.WithInsecure())
	}

	traceExporter, err := otlptracegrpc.New(ctx, traceOptions...)
	if err != nil {
		return nil, errors.Join(ErrObservabilitySetupFailed, err)
	}

	metricExporter, err := otlpmetricgrpc.New(ctx, metricOptions...)
	if err != nil {
		_ = traceExporter.Shutdown(ctx)
		return nil, errors.Join(ErrObservabilitySetupFailed, err)
	}

	logExporter, err := otlploggrpc.New(ctx, logOptions...)
	if err != nil {
		_ = traceExporter.Shutdown(ctx)
		_ = metricExporter.Shutdown(ctx)

		return nil, errors.Join(ErrObservabilitySetupFailed, err)
	}

	providers := &ObservabilityProviders{
		TracerProvider: sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(traceExporter),
			sdktrace.WithResource(res),
		),
		MeterProvider: sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(metricExportInterval))),
			sdkmetric.WithResource(res),
		),
		LoggerProvider: sdklog.NewLoggerProvider(
			sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
			sdklog.WithResource(res),
		),
	}

	otel.SetTracerProvider(providers.TracerProvider)
	otel.SetMeterProvider(providers.MeterProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	global.SetLoggerProvider(providers.LoggerProvider)

	return providers, nil
}

// Shutdown flushes and stops all providers. Every provider is shut down even when an earlier one fails.
func (p *ObservabilityProviders) Shutdown(ctx context.Context) error {
	return errors.Join(
		p.TracerProvider.Shutdown(ctx),
		p.MeterProvider.Shutdown(ctx),
		p.LoggerProvider.Shutdown(ctx),
	)
}

// splitEndpoint strips an http:// or https:// scheme. Only https:// endpoints use TLS.
func splitEndpoint(endpoint string) (hostPort string, insecure bool) {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "https://"), "/"), false
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "http://"), "/"), true
	default:
		return endpoint, true
	}
}
