package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
	"expensetracker/internal/report"
	"expensetracker/internal/services"
)

const (
	summaryByCategory = "category"
	summaryMonthly    = "monthly"
	summaryAll        = "all"
)

type summaryOptions struct {
	by    string
	year  int
	style string
	raw   bool
}

func newSummaryCommand() *cobra.Command {
	var opts summaryOptions

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print expense totals by category and by month",
		Example: `  expensetracker summary
  expensetracker summary --by monthly --year 2024
  expensetracker summary --raw > report.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch opts.by {
			case summaryByCategory, summaryMonthly, summaryAll:
			default:
				return fmt.Errorf("invalid --by %q: must be %s, %s or %s", opts.by, summaryByCategory, summaryMonthly, summaryAll)
			}
			if opts.year < 0 || opts.year > 9999 {
				return fmt.Errorf("invalid --year %d", opts.year)
			}

			cfg, err := LoadAndValidateConfig()
			if err != nil {
				return err
			}
			return runSummary(cmd, cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.by, "by", summaryAll, "which summary to print: category, monthly or all")
	cmd.Flags().IntVar(&opts.year, "year", 0, "year for the monthly summary (defaults to the current year)")
	cmd.Flags().StringVar(&opts.style, "style", "", "glamour style such as dark, light or notty (auto-detected when empty)")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "print markdown without terminal styling")

	return cmd
}

func runSummary(cmd *cobra.Command, cfg *config.Config, opts summaryOptions) error {
	logger, err := SetupLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	formatter, err := report.NewFormatter(cfg.Currency)
	if err != nil {
		return err
	}

	// Reports only read, so no events are published.
	cfg.AMQPURL = ""
	res, err := OpenBackend(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer closeBackend(res, logger)

	md, err := summaryMarkdown(cmd.Context(), res.Service, formatter, opts)
	if err != nil {
		logger.Error("Failed to build summary", applog.FieldError, err, applog.FieldOperation, applog.OpSummary)
		return err
	}

	out := md
	if !opts.raw {
		out, err = report.Render(md, opts.style)
		if err != nil {
			return err
		}
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}

func summaryMarkdown(ctx context.Context, svc *services.ExpenseService, f *report.Formatter, opts summaryOptions) (string, error) {
	var sections []string

	if opts.by == summaryByCategory || opts.by == summaryAll {
		s, err := svc.SummaryByCategory(ctx)
		if err != nil {
			return "", err
		}
		sections = append(sections, f.CategoryMarkdown(s))
	}

	if opts.by == summaryMonthly || opts.by == summaryAll {
		year := opts.year
		if year == 0 {
			year = svc.CurrentYear()
		}
		s, err := svc.MonthlySummary(ctx, year)
		if err != nil {
			return "", err
		}
		sections = append(sections, f.MonthlyMarkdown(s, year))
	}

	return strings.Join(sections, "\n"), nil
}
