package driving

import (
	"context"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
)

// SyncEngine pulls completion records from the provider into the local cache.
type SyncEngine interface {
	// SyncClass synchronises one class. A full sync walks the whole feed;
	// an incremental sync stops at the first page made only of known records.
	SyncClass(ctx context.Context, classID string, full bool) (*domain.SyncStats, error)

	// SyncAll synchronises every active class in sequence and merges the stats.
	SyncAll(ctx context.Context, full bool) (*domain.SyncStats, error)

	// Status returns sync status for a class.
	Status(ctx context.Context, classID string) (*SyncStatus, error)
}

// SyncStatus represents the current state of a sync operation.
type SyncStatus struct {
	// ClassID identifies the class.
	ClassID string

	// Running indicates if sync is currently in progress.
	Running bool

	// Phase is the current state machine phase.
	Phase domain.SyncPhase

	// Page is the page currently being processed.
	Page int

	// Stats holds the counters accumulated so far.
	Stats domain.SyncStats
}
