package domain

import "time"

// Class is a provider class (cohort) mirrored locally.
type Class struct {
	// ID is the provider-assigned identifier.
	ID string

	// Name is the human-readable class name.
	Name string

	// FriendlyID is the short identifier used to address the class from the CLI.
	FriendlyID string

	// IsActive controls whether the class participates in SyncAll runs.
	IsActive bool

	// SyncedAt is the time of the last successful sync, nil if never synced.
	SyncedAt *time.Time
}

// Ref returns the identifier shown to operators, preferring the friendly ID.
func (c *Class) Ref() string {
	if c.FriendlyID != "" {
		return c.FriendlyID
	}
	return c.ID
}

// ClassCounts holds the number of cached rows for one class.
type ClassCounts struct {
	Students     int
	Assignments  int
	Progressions int
}

// ClassOverview combines a class with its cached row counts.
type ClassOverview struct {
	Class  Class
	Counts ClassCounts
}
