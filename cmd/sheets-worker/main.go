package main

import (
	"os"

	"expensetracker/internal/cli"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cmd := cli.NewWorkerCommand()
	cmd.Use = "sheets-worker"
	cmd.SilenceUsage = true
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
