package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"expensetracker/internal/amqp"
	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
	"expensetracker/internal/sheets/google"
	"expensetracker/internal/worker"
)

// NewWorkerCommand creates the command that mirrors expenses to Google Sheets
// on every expense event. It is both the "worker" subcommand and the root of
// the standalone sheets-worker binary.
func NewWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Mirror expenses to Google Sheets on every expense event",
		Long: `Consume expense events from AMQP and re-export the whole expense table to
Google Sheets after each one. An export also runs at startup to catch up on
events missed while the worker was down.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadAndValidateConfig()
			if err != nil {
				return err
			}
			if !cfg.EventsEnabled() {
				return errors.New("AMQP_URL is required to run the worker")
			}
			if err := cfg.ValidateSheets(); err != nil {
				return err
			}
			return runWorker(cmd, cfg)
		},
	}
}

func runWorker(cmd *cobra.Command, cfg *config.Config) error {
	logger, err := SetupLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	logger = logger.WithComponent(applog.ComponentWorker)

	ctx, stop := SignalContext(cmd.Context())
	defer stop()

	if cfg.DataBackend == config.BackendMemory {
		logger.Warn("Worker is reading the in-memory backend, which never sees the API's writes")
	}

	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("failed to connect to AMQP: %w", err)
	}
	defer consumer.Close()

	// The worker only reads, so its backend publishes nothing.
	readCfg := *cfg
	readCfg.AMQPURL = ""
	res, err := OpenBackend(ctx, &readCfg, logger)
	if err != nil {
		return err
	}
	defer closeBackend(res, logger)

	exporter, err := google.NewExporter(ctx, sheetsConfig(cfg), logger)
	if err != nil {
		return err
	}
	syncWorker := worker.NewSyncWorker(res.Service, exporter, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := syncWorker.StartupSync(gctx); err != nil {
			logger.Error("Startup sync failed, waiting for events", applog.FieldError, err)
		}

		logger.Info("Consuming expense events",
			"exchange", cfg.AMQPExchange,
			"queue", cfg.AMQPQueue)
		err := consumer.Run(gctx, syncWorker.HandleEvent)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	err = g.Wait()
	syncs, last := syncWorker.Stats()
	logger.Info("Worker stopped",
		applog.FieldOperation, applog.OpShutdown,
		"syncs", syncs,
		"last_sync", last)
	return err
}
