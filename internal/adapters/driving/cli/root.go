// Package cli implements the cohort command-line interface with cobra.
// Commands talk to the core through the driving ports held in package
// variables, which the root command wires before any subcommand runs.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cohort-tracker/internal/core/ports/driven"
	"github.com/custodia-labs/cohort-tracker/internal/core/ports/driving"
	"github.com/custodia-labs/cohort-tracker/internal/logger"
)

// noSetup marks commands that run without opening config or storage.
const noSetup = "no-setup"

var (
	version = "dev"

	verbose   bool
	logFormat string
	configDir string
)

// Services used by the commands. Tests replace them through setupServices.
var (
	configStore   driven.ConfigStore
	classService  driving.ClassService
	statusService driving.StatusService
	rosterService driving.RosterService
	syncEngine    driving.SyncEngine
	scheduler     driving.Scheduler
)

// setupServices runs before every command that needs the core; teardownServices
// releases what it opened once Execute returns.
var (
	setupServices    = wireServices
	teardownServices = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "cohort",
	Short: "Track cohort progress from OpenClass",
	Long: `cohort mirrors OpenClass classes, students, assignments and completion
records into a local SQLite cache.

Run 'cohort init' once to store credentials and discover classes, activate the
classes to follow, then run 'cohort sync' or keep 'cohort schedule' running.`,
	SilenceUsage:      true,
	PersistentPreRunE: preRun,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logger.FormatConsole, "log format: console or json")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.cohort-tracker)")
}

// Execute runs the root command with the given build version.
func Execute(ctx context.Context, v string) error {
	if v != "" {
		version = v
	}
	err := rootCmd.ExecuteContext(ctx)
	return errors.Join(err, teardownServices())
}

func preRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if err := logger.SetFormat(logFormat); err != nil {
		return err
	}

	if cmd.Annotations[noSetup] == "true" {
		return nil
	}
	return setupServices(cmd)
}

// commandContext returns the command's context, never nil.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
