package driving

import (
	"context"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
)

// Scheduler runs the periodic incremental and full sync tasks.
type Scheduler interface {
	// Start begins running scheduled syncs.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops the loop and waits for a running sync.
	Stop() error

	// Schedules returns the persisted state of each scheduled mode.
	Schedules(ctx context.Context) ([]domain.Schedule, error)

	// RecentRuns returns the latest scheduled runs of mode, newest first.
	RecentRuns(ctx context.Context, mode domain.SyncMode, limit int) ([]domain.ScheduledRun, error)
}
