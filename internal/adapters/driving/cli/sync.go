package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
	"github.com/custodia-labs/cohort-tracker/internal/core/ports/driving"
)

var (
	fullSync  bool
	keepGoing bool
)

var syncCmd = &cobra.Command{
	Use:   "sync [class]",
	Short: "Synchronise completion records from OpenClass",
	Long: `Pulls completion records into the local cache.

If a class (friendly id or provider id) is given, only that class is
synchronised. Otherwise every active class is synchronised in turn.

An incremental sync stops at the first page made entirely of records already
stored. Use --full to walk the whole feed and reconcile missed records.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&fullSync, "full", false, "walk the whole feed instead of stopping at known records")
	syncCmd.Flags().BoolVar(&keepGoing, "keep-going", false, "continue with other classes when one class fails to fetch")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncEngine == nil {
		return errors.New("sync service not configured")
	}

	ctx := commandContext(cmd)
	mode := "incremental"
	if fullSync {
		mode = "full"
	}

	start := time.Now()
	var (
		stats *domain.SyncStats
		err   error
	)

	if len(args) > 0 {
		if classService == nil {
			return errors.New("class service not configured")
		}
		class, resolveErr := classService.Resolve(ctx, args[0])
		if resolveErr != nil {
			return fmt.Errorf("sync failed: %w", resolveErr)
		}
		cmd.Printf("Synchronising %s (%s, %s)...\n", class.Name, class.Ref(), mode)
		stats, err = syncWithProgress(ctx, cmd, syncEngine, class.ID, fullSync)
	} else {
		cmd.Printf("Synchronising all active classes (%s)...\n", mode)
		stats, err = syncEngine.SyncAll(ctx, fullSync)
		if err == nil && stats.ClassesSynced == 0 {
			cmd.Println("No active classes. Run 'cohort class activate <class>' first.")
			return nil
		}
	}

	if stats != nil {
		printStats(cmd, stats, time.Since(start))
	}
	if err != nil {
		if hint := describeError(err); hint != "" {
			cmd.PrintErrln(hint)
		}
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}

// syncWithProgress runs a class sync while printing the page being fetched.
func syncWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	engine driving.SyncEngine,
	classID string,
	full bool,
) (*domain.SyncStats, error) {
	type result struct {
		stats *domain.SyncStats
		err   error
	}
	done := make(chan result, 1)
	go func() {
		stats, err := engine.SyncClass(ctx, classID, full)
		done <- result{stats, err}
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastPage := -1
	for {
		select {
		case r := <-done:
			if lastPage >= 0 {
				cmd.Println()
			}
			return r.stats, r.err
		case <-ticker.C:
			// Best effort; a missing status only skips the progress line.
			status, err := engine.Status(ctx, classID)
			if err != nil || status == nil || !status.Running || status.Page == lastPage {
				continue
			}
			lastPage = status.Page
			cmd.Printf("\rPage %d: %d records (%d new)", status.Page,
				status.Stats.TotalRecords, status.Stats.ProgressionsInserted)
		}
	}
}

func printStats(cmd *cobra.Command, stats *domain.SyncStats, elapsed time.Duration) {
	cmd.Println()
	cmd.Println("=== Sync Complete ===")
	if stats.ClassesSynced > 0 {
		cmd.Printf("Classes synced:     %d\n", stats.ClassesSynced)
	}
	cmd.Printf("Pages fetched:      %d\n", stats.PagesFetched)
	cmd.Printf("Total records:      %d\n", stats.TotalRecords)
	cmd.Printf("Duplicates skipped: %d\n", stats.DuplicateRecords)
	cmd.Printf("Students touched:   %d\n", stats.StudentsTouched)
	cmd.Printf("Assignments:        %d\n", stats.AssignmentsTouched)
	cmd.Printf("New progressions:   %d\n", stats.ProgressionsInserted)
	cmd.Printf("Time elapsed:       %.2fs\n", elapsed.Seconds())
}
