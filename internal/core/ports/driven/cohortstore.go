package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
)

// ClassStore persists classes and their activation state.
type ClassStore interface {
	// Save inserts a class or updates its name and friendly id.
	// Activation state and last sync time of an existing class are preserved.
	Save(ctx context.Context, class domain.Class) error

	// Get retrieves a class by provider id.
	// Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Class, error)

	// GetByFriendlyID retrieves a class by its friendly id.
	// Returns domain.ErrNotFound if absent.
	GetByFriendlyID(ctx context.Context, friendlyID string) (*domain.Class, error)

	// List returns all classes ordered by name.
	List(ctx context.Context) ([]domain.Class, error)

	// ListActive returns active classes ordered by name.
	ListActive(ctx context.Context) ([]domain.Class, error)

	// SetActive toggles the activation flag.
	// Returns domain.ErrNotFound if the class does not exist.
	SetActive(ctx context.Context, id string, active bool) error

	// SetLastSync records a successful sync time.
	SetLastSync(ctx context.Context, id string, at time.Time) error
}

// CohortStore is the upsert/dedup surface used by the sync engine.
type CohortStore interface {
	// UpsertStudent inserts a student if (id, class_id) is absent.
	// Existing rows are never overwritten, so roster edits survive syncs.
	UpsertStudent(ctx context.Context, student domain.Student) error

	// UpsertAssignment inserts or replaces an assignment keyed by (id, class_id).
	UpsertAssignment(ctx context.Context, assignment domain.Assignment) error

	// InsertProgression inserts or replaces a progression keyed by id,
	// stamping it with the current ingestion time.
	InsertProgression(ctx context.Context, progression domain.Progression) error

	// ExistingProgressionIDs returns the ids already stored for a class.
	ExistingProgressionIDs(ctx context.Context, classID string) (map[string]struct{}, error)

	// Counts returns the cached row counts for a class.
	Counts(ctx context.Context, classID string) (domain.ClassCounts, error)

	// UpdateStudentRoster sets region and night tags on every student
	// matching the name case-insensitively. Returns true if any row changed.
	UpdateStudentRoster(ctx context.Context, firstName, lastName, region, night string) (bool, error)
}

// SyncHistoryStore is the append-only provenance log.
type SyncHistoryStore interface {
	// RecordSync appends a page entry. Entries are never updated or deleted.
	RecordSync(ctx context.Context, entry domain.SyncHistoryEntry) error

	// ListHistory returns the most recent entries for a class, newest first.
	ListHistory(ctx context.Context, classID string, limit int) ([]domain.SyncHistoryEntry, error)

	// LastSync returns the time of the most recent entry across all classes.
	// Returns nil and no error if nothing was ever synced.
	LastSync(ctx context.Context) (*time.Time, error)
}
