package main

import (
	"os"

	"expensetracker/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	if err := cli.NewRootCommand(version).Execute(); err != nil {
		os.Exit(1)
	}
}
