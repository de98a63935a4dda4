package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var statusCmd = &cobra.Command{
	Use:   "status [class]",
	Short: "Show cached data per class",
	Long: `Shows how many students, assignments and completion records are cached
for each class and when data was last fetched.

With a class argument, also lists that class's recent sync history.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&historyLimit, "history", 10, "number of history pages to show for a class")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if statusService == nil {
		return errors.New("status service not configured")
	}

	ctx := commandContext(cmd)

	if len(args) > 0 {
		return runClassStatus(cmd, args[0])
	}

	overview, err := statusService.Overview(ctx)
	if err != nil {
		return fmt.Errorf("failed to load status: %w", err)
	}
	if len(overview) == 0 {
		cmd.Println("No classes yet. Run 'cohort init' first.")
		return nil
	}

	cmd.Printf("%-20s %-8s %9s %12s %13s  %s\n",
		"CLASS", "ACTIVE", "STUDENTS", "ASSIGNMENTS", "PROGRESSIONS", "LAST SYNC")
	for _, o := range overview {
		active := "no"
		if o.Class.IsActive {
			active = "yes"
		}
		cmd.Printf("%-20s %-8s %9d %12d %13d  %s\n",
			o.Class.Ref(), active, o.Counts.Students, o.Counts.Assignments,
			o.Counts.Progressions, formatTime(o.Class.SyncedAt))
	}

	last, err := statusService.LastSync(ctx)
	if err != nil {
		return fmt.Errorf("failed to load last sync: %w", err)
	}
	cmd.Printf("\nLast page fetched: %s\n", formatTime(last))
	return nil
}

func runClassStatus(cmd *cobra.Command, ref string) error {
	history, err := statusService.History(commandContext(cmd), ref, historyLimit)
	if err != nil {
		if hint := describeError(err); hint != "" {
			cmd.PrintErrln(hint)
		}
		return fmt.Errorf("failed to load history: %w", err)
	}

	cmd.Printf("Sync history for %s\n", ref)
	if len(history) == 0 {
		cmd.Println("  (never synced)")
		return nil
	}

	cmd.Printf("  %-20s %-10s %6s %8s\n", "TIME", "RUN", "PAGE", "RECORDS")
	for _, h := range history {
		run := h.RunID
		if len(run) > 8 {
			run = run[:8]
		}
		synced := h.SyncedAt
		cmd.Printf("  %-20s %-10s %6d %8d\n", formatTime(&synced), run, h.Page, h.RecordCount)
	}
	return nil
}
