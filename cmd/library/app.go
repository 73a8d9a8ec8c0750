package main

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/AntonStoeckl/library-loans-go/catalog"
	"github.com/AntonStoeckl/library-loans-go/catalog/memoryengine"
	"github.com/AntonStoeckl/library-loans-go/catalog/oteladapters"
	"github.com/AntonStoeckl/library-loans-go/catalog/postgresengine"
	"github.com/AntonStoeckl/library-loans-go/config"
	"github.com/AntonStoeckl/library-loans-go/internal/logging"
	"github.com/AntonStoeckl/library-loans-go/ledger"
)

const instrumentationName = "github.com/AntonStoeckl/library-loans-go"

// openStore builds the configured store. The returned close function releases its connections.
func openStore(ctx context.Context, cfg config.Config, log catalog.Logger) (catalog.Store, func(), error) {
	if cfg.Storage == config.StorageMemory {
		store, err := memoryengine.NewStore(memoryengine.WithLogger(log))
		if err != nil {
			return nil, nil, err
		}

		return store, func() {}, nil
	}

	store, closeFn, err := openPostgres(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	return store, closeFn, nil
}

func openPostgres(ctx context.Context, cfg config.Config, log catalog.Logger) (*postgresengine.Store, func(), error) {
	var (
		store   *postgresengine.Store
		closeFn func()
		err     error
	)

	options := []postgresengine.Option{postgresengine.WithLogger(log)}

	switch cfg.Postgres.Driver {
	case config.DriverSQL:
		db, openErr := config.NewSQLDB(ctx, cfg.Postgres.DSN)
		if openErr != nil {
			return nil, nil, openErr
		}

		closeFn = func() { _ = db.Close() }
		store, err = postgresengine.NewStoreFromSQLDB(db, options...)

	case config.DriverSQLX:
		db, openErr := config.NewSQLXDB(ctx, cfg.Postgres.DSN)
		if openErr != nil {
			return nil, nil, openErr
		}

		closeFn = func() { _ = db.Close() }
		store, err = postgresengine.NewStoreFromSQLX(db, options...)

	case config.DriverPGX:
		pool, openErr := config.NewPGXPool(ctx, cfg.Postgres.DSN)
		if openErr != nil {
			return nil, nil, openErr
		}

		closeFn = pool.Close
		store, err = postgresengine.NewStoreFromPGXPool(pool, options...)

	default:
		return nil, nil, fmt.Errorf("%w: unknown postgres driver %q", config.ErrInvalidConfig, cfg.Postgres.Driver)
	}

	if err != nil {
		closeFn()
		return nil, nil, err
	}

	return store, closeFn, nil
}

// requirePostgres rejects commands whose effect would vanish with an in-memory store.
func requirePostgres(command string) error {
	if cfg.Storage != config.StoragePostgres {
		return fmt.Errorf("%w: %s needs storage %q", config.ErrInvalidConfig, command, config.StoragePostgres)
	}

	return nil
}

// newLedger wires the ledger to the zerolog logger and to the global OpenTelemetry providers.
// With observability enabled, operation logs are also sent through the OTel slog bridge.
func newLedger(store catalog.Store, cfg config.Config, log *logging.ZerologLogger) (*ledger.Ledger, error) {
	var contextual catalog.ContextualLogger = log
	if cfg.Observability.Enabled {
		contextual = logging.Tee{log, oteladapters.NewSlogBridgeLogger(instrumentationName)}
	}

	options := []ledger.Option{
		ledger.WithLogger(log),
		ledger.WithContextualLogger(contextual),
		ledger.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter(instrumentationName))),
		ledger.WithTracing(oteladapters.NewTracingCollector(otel.Tracer(instrumentationName))),
	}

	if cfg.StrictCounters {
		options = append(options, ledger.WithStrictCounters())
	}

	return ledger.New(store, options...)
}
