package domain

import (
	"fmt"
	"time"
)

// SyncMode selects the paging policy of a sync run.
type SyncMode string

// Sync modes.
const (
	ModeIncremental SyncMode = "incremental"
	ModeFull        SyncMode = "full"
)

// SyncModes lists every mode the scheduler knows, in display order.
var SyncModes = []SyncMode{ModeIncremental, ModeFull}

// ModeOf maps the engine's full flag to a mode.
func ModeOf(full bool) SyncMode {
	if full {
		return ModeFull
	}
	return ModeIncremental
}

// Full reports whether the mode pages to the end of the feed.
func (m SyncMode) Full() bool {
	return m == ModeFull
}

// ParseSyncMode validates a mode name.
func ParseSyncMode(s string) (SyncMode, error) {
	switch m := SyncMode(s); m {
	case ModeIncremental, ModeFull:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown sync mode %q", ErrInvalidInput, s)
	}
}

// Schedule is the persisted state of one periodic sync mode.
type Schedule struct {
	Mode     SyncMode
	Interval time.Duration

	// NextRun is zero until the first run is planned; a zero NextRun is due.
	NextRun time.Time
	LastRun time.Time

	// LastSuccess and LastInserted describe the most recent clean run.
	LastSuccess  time.Time
	LastInserted int

	// LastError is the error of the most recent run, empty if it succeeded.
	LastError string
}

// Due reports whether the schedule should run at now.
func (s *Schedule) Due(now time.Time) bool {
	return s.NextRun.IsZero() || !s.NextRun.After(now)
}

// Advance folds a finished run into the schedule and plans the next one.
func (s *Schedule) Advance(run *ScheduledRun) {
	s.LastRun = run.StartedAt
	s.NextRun = run.EndedAt.Add(s.Interval)
	if !run.Succeeded() {
		s.LastError = run.Error
		return
	}
	s.LastError = ""
	s.LastSuccess = run.EndedAt
	s.LastInserted = run.Stats.ProgressionsInserted
}

// ScheduledRun is the outcome of one scheduled SyncAll.
type ScheduledRun struct {
	Mode      SyncMode
	StartedAt time.Time
	EndedAt   time.Time

	// Stats holds what was committed, also on failure.
	Stats SyncStats

	// Error is empty on success.
	Error string
}

// Succeeded reports whether the run finished without error.
func (r *ScheduledRun) Succeeded() bool {
	return r.Error == ""
}

// Duration is the wall time of the run.
func (r *ScheduledRun) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// SchedulerConfig holds the interval of each scheduled mode.
// A zero or negative interval disables that mode.
type SchedulerConfig struct {
	Incremental time.Duration
	Full        time.Duration
}

// Interval returns the configured interval of mode.
func (c SchedulerConfig) Interval(mode SyncMode) time.Duration {
	switch mode {
	case ModeIncremental:
		return c.Incremental
	case ModeFull:
		return c.Full
	default:
		return 0
	}
}

// Enabled reports whether mode runs at all.
func (c SchedulerConfig) Enabled(mode SyncMode) bool {
	return c.Interval(mode) > 0
}

// DefaultSchedulerConfig runs incremental syncs hourly and a full sync daily.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Incremental: time.Hour,
		Full:        24 * time.Hour,
	}
}
