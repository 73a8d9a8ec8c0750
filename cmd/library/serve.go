package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-loans-go/httpapi"
	"github.com/AntonStoeckl/library-loans-go/internal/logging"
	"github.com/AntonStoeckl/library-loans-go/ledger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := logging.NewZerologLogger(logger)

		store, closeStore, err := openStore(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer closeStore()

		l, err := newLedger(store, cfg, log)
		if err != nil {
			return err
		}

		server, err := httpapi.New(l, httpapi.WithLogger(log), httpapi.WithCORSOrigins(cfg.CORS.Origins))
		if err != nil {
			return err
		}

		scheduler, err := scheduleRepair(ctx, l, cfg.Repair.Schedule)
		if err != nil {
			return err
		}

		serveErr := make(chan error, 1)
		go func() {
			logger.Info().Str("addr", cfg.HTTP.Addr).Str("storage", cfg.Storage).Msg("library api listening")
			serveErr <- server.Start(cfg.HTTP.Addr)
		}()

		select {
		case err = <-serveErr:
		case <-ctx.Done():
			logger.Warn().Msg("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()

			err = server.Shutdown(shutdownCtx)
		}

		if scheduler != nil {
			<-scheduler.Stop().Done()
		}

		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	},
}

// scheduleRepair starts a cron job running RepairCounters. An empty schedule starts nothing.
func scheduleRepair(ctx context.Context, l *ledger.Ledger, schedule string) (*cron.Cron, error) {
	if schedule == "" {
		return nil, nil
	}

	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		report, repairErr := l.RepairCounters(ctx)
		if repairErr != nil {
			logger.Error().Err(repairErr).Msg("scheduled counter repair failed")
			return
		}

		logger.Info().
			Int("drifts", len(report.Drifts)).
			Int("repaired", report.Repaired).
			Int("unresolved", report.Unresolved).
			Msg("scheduled counter repair finished")
	})
	if err != nil {
		return nil, err
	}

	c.Start()

	return c, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
