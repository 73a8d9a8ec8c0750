package main

import (
	"context"
	"time"

	"github.com/AntonStoeckl/library-loans-go/config"
)

const telemetryShutdownTimeout = 5 * time.Second

// shutdownTelemetry is set while OTLP providers are registered.
var shutdownTelemetry func(context.Context) error

// setupTelemetry registers the OTLP providers when observability is enabled.
// Without it the global OpenTelemetry providers stay no-op.
func setupTelemetry(ctx context.Context, cfg config.Observability) error {
	if !cfg.Enabled {
		return nil
	}

	providers, err := config.NewObservabilityProviders(ctx, cfg)
	if err != nil {
		return err
	}

	shutdownTelemetry = providers.Shutdown
	logger.Debug().Str("endpoint", cfg.Endpoint).Str("service", cfg.ServiceName).Msg("exporting telemetry over OTLP")

	return nil
}

// finishTelemetry flushes and stops the providers registered by setupTelemetry, if any.
func finishTelemetry() error {
	if shutdownTelemetry == nil {
		return nil
	}

	shutdown := shutdownTelemetry
	shutdownTelemetry = nil

	ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
	defer cancel()

	return shutdown(ctx)
}
