// Command cohort mirrors OpenClass cohort progress into a local SQLite cache.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/cohort-tracker/internal/adapters/driving/cli"
	"github.com/custodia-labs/cohort-tracker/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A .env in the working directory may carry COHORT_* credentials.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("ignoring .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, version)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
