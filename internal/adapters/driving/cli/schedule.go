package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/cohort-tracker/internal/logger"
)

var (
	metricsAddr string
	statusRuns  int
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run scheduled syncs until interrupted",
	Long: `Runs the incremental and full sync tasks on their configured intervals
(scheduler.incremental_interval and scheduler.full_interval, in minutes).

With --metrics-addr, Prometheus metrics are served at /metrics.`,
	RunE: runSchedule,
}

var scheduleStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show scheduled sync state and recent runs",
	RunE:  runScheduleStatus,
}

func init() {
	scheduleCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	scheduleStatusCmd.Flags().IntVarP(&statusRuns, "runs", "n", 5, "recent runs to show per mode")
	scheduleCmd.AddCommand(scheduleStatusCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	ctx := commandContext(cmd)

	if metricsAddr != "" {
		stop, err := serveMetrics(ctx, metricsAddr)
		if err != nil {
			return err
		}
		defer stop()
		cmd.Printf("Serving metrics on %s/metrics\n", metricsAddr)
	}

	cmd.Println("Scheduler running. Press Ctrl+C to stop.")
	if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scheduler failed: %w", err)
	}
	if err := scheduler.Stop(); err != nil {
		return fmt.Errorf("scheduler stop failed: %w", err)
	}
	cmd.Println("Scheduler stopped.")
	return nil
}

func runScheduleStatus(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}
	ctx := commandContext(cmd)

	schedules, err := scheduler.Schedules(ctx)
	if err != nil {
		return fmt.Errorf("failed to load schedules: %w", err)
	}
	if len(schedules) == 0 {
		cmd.Println("No schedules yet. Run 'cohort schedule' to start them.")
		return nil
	}

	for _, sched := range schedules {
		cmd.Printf("%s sync, every %s\n", sched.Mode, sched.Interval)
		cmd.Printf("  Next run:      %s\n", formatTime(&sched.NextRun))
		cmd.Printf("  Last run:      %s\n", formatTime(&sched.LastRun))
		cmd.Printf("  Last success:  %s (%d new)\n", formatTime(&sched.LastSuccess), sched.LastInserted)
		if sched.LastError != "" {
			cmd.Printf("  Last error:    %s\n", sched.LastError)
		}

		runs, err := scheduler.RecentRuns(ctx, sched.Mode, statusRuns)
		if err != nil {
			return fmt.Errorf("failed to load %s runs: %w", sched.Mode, err)
		}
		for _, run := range runs {
			outcome := "ok"
			if !run.Succeeded() {
				outcome = "FAILED"
			}
			cmd.Printf("  %s  %-6s %3d classes %6d new %6d dup  %s\n",
				formatTime(&run.StartedAt), outcome, run.Stats.ClassesSynced,
				run.Stats.ProgressionsInserted, run.Stats.DuplicateRecords,
				run.Duration().Round(time.Second))
		}
		cmd.Println()
	}
	return nil
}

// serveMetrics starts the metrics endpoint and returns a function that shuts it down.
func serveMetrics(ctx context.Context, addr string) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(err, "metrics server")
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx) //nolint:errcheck // best effort on exit
	}, nil
}
