package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
)

// ClassService manages which provider classes are tracked.
type ClassService interface {
	// Discover lists provider classes and stores new ones as inactive.
	Discover(ctx context.Context) ([]domain.Class, error)

	// List returns all locally known classes.
	List(ctx context.Context) ([]domain.Class, error)

	// Resolve finds a class by friendly id, falling back to provider id.
	Resolve(ctx context.Context, ref string) (*domain.Class, error)

	// Activate marks a class for inclusion in SyncAll.
	Activate(ctx context.Context, ref string) (*domain.Class, error)

	// Deactivate excludes a class from SyncAll.
	Deactivate(ctx context.Context, ref string) (*domain.Class, error)
}

// StatusService reports on cached data.
type StatusService interface {
	// Overview returns every class with its cached row counts.
	Overview(ctx context.Context) ([]domain.ClassOverview, error)

	// History returns recent sync history for a class, newest first.
	History(ctx context.Context, ref string, limit int) ([]domain.SyncHistoryEntry, error)

	// LastSync returns the most recent page fetch time, nil if never.
	LastSync(ctx context.Context) (*time.Time, error)
}

// RosterService applies roster tags to stored students.
type RosterService interface {
	// TagStudent sets region and night on every student with the given
	// name, in any class. Returns domain.ErrNotFound when nobody matches.
	TagStudent(ctx context.Context, firstName, lastName, region, night string) error
}
