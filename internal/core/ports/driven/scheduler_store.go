package driven

import (
	"context"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
)

// SchedulerStore persists schedule state and the log of scheduled runs,
// so a restarted scheduler resumes where it left off.
type SchedulerStore interface {
	// GetSchedule returns the schedule of mode.
	// Returns nil and no error if none is stored.
	GetSchedule(ctx context.Context, mode domain.SyncMode) (*domain.Schedule, error)

	// ListSchedules returns every stored schedule, incremental first.
	ListSchedules(ctx context.Context) ([]domain.Schedule, error)

	// SaveSchedule creates or replaces the schedule of its mode.
	SaveSchedule(ctx context.Context, schedule *domain.Schedule) error

	// RecordRun appends a finished run.
	RecordRun(ctx context.Context, run *domain.ScheduledRun) error

	// RecentRuns returns runs of mode, newest first.
	RecentRuns(ctx context.Context, mode domain.SyncMode, limit int) ([]domain.ScheduledRun, error)

	// PruneRuns keeps the newest keep runs per mode.
	PruneRuns(ctx context.Context, keep int) error
}
