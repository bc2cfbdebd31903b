package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
	"expensetracker/internal/report"
	"expensetracker/internal/sheets"
	"expensetracker/internal/sheets/google"
	"expensetracker/internal/sheets/memory"
	"expensetracker/internal/worker"
)

func newExportCommand() *cobra.Command {
	var toSheets bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every expense once",
		Long: `Export every expense once, ordered by date.

With --sheets the rows replace the contents of the configured Google Sheet
(GOOGLE_SPREADSHEET_ID, GOOGLE_SHEET_NAME and service account credentials).
Without it the rows are printed as a markdown table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadAndValidateConfig()
			if err != nil {
				return err
			}
			if toSheets {
				if err := cfg.ValidateSheets(); err != nil {
					return err
				}
			}
			return runExport(cmd, cfg, toSheets)
		},
	}

	cmd.Flags().BoolVar(&toSheets, "sheets", false, "write to Google Sheets instead of stdout")

	return cmd
}

func runExport(cmd *cobra.Command, cfg *config.Config, toSheets bool) error {
	ctx := cmd.Context()
	logger, err := SetupLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	cfg.AMQPURL = ""
	res, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeBackend(res, logger)

	var exporter sheets.Exporter
	preview := memory.New()
	if toSheets {
		exporter, err = google.NewExporter(ctx, sheetsConfig(cfg), logger)
		if err != nil {
			return err
		}
	} else {
		exporter = preview
	}

	w := worker.NewSyncWorker(res.Service, exporter, logger)
	if err := w.Sync(ctx); err != nil {
		logger.Error("Export failed", applog.FieldError, err, applog.FieldOperation, applog.OpExport)
		return err
	}

	if toSheets {
		fmt.Fprintf(cmd.OutOrStdout(), "exported to sheet %q\n", cfg.GoogleSheetName)
		return nil
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), report.RowsMarkdown(preview.Rows()))
	return err
}

func sheetsConfig(cfg *config.Config) google.Config {
	return google.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	}
}
