package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
)

func newMigrateCommand() *cobra.Command {
	var dataBackend string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the SQL backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if dataBackend != "" {
				cfg.DataBackend = dataBackend
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.DataBackend == config.BackendMemory {
				return fmt.Errorf("nothing to migrate: the %s backend has no schema", config.BackendMemory)
			}

			logger, err := SetupLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			// Opening a SQL repository applies any pending migrations.
			cfg.AMQPURL = ""
			res, err := OpenBackend(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			closeBackend(res, logger)

			logger.Info("Migrations applied", applog.FieldBackend, cfg.DataBackend)
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", cfg.DataBackend)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataBackend, "backend", "", "sqlite or postgres (overrides DATA_BACKEND)")

	return cmd
}
