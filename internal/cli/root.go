package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the expensetracker command tree.
func NewRootCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expensetracker",
		Short:   "Track personal expenses over HTTP and summarize them",
		Version: version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	cmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newSummaryCommand(),
		newExportCommand(),
		NewWorkerCommand(),
	)

	return cmd
}
