package domain

import (
	"fmt"
	"time"
)

// SyncStats aggregates the counters of one or more class syncs.
type SyncStats struct {
	// TotalRecords is the number of feed records seen, new or duplicate.
	TotalRecords int

	// DuplicateRecords is the number of records skipped as already stored.
	DuplicateRecords int

	// StudentsTouched counts student upserts issued.
	StudentsTouched int

	// AssignmentsTouched counts assignment upserts issued.
	AssignmentsTouched int

	// ProgressionsInserted counts new progression rows written.
	ProgressionsInserted int

	// PagesFetched counts pages fetched, including a terminating empty page.
	PagesFetched int

	// ClassesSynced counts classes that reached DONE.
	ClassesSynced int
}

// Merge adds other's counters to s.
func (s *SyncStats) Merge(other SyncStats) {
	s.TotalRecords += other.TotalRecords
	s.DuplicateRecords += other.DuplicateRecords
	s.StudentsTouched += other.StudentsTouched
	s.AssignmentsTouched += other.AssignmentsTouched
	s.ProgressionsInserted += other.ProgressionsInserted
	s.PagesFetched += other.PagesFetched
	s.ClassesSynced += other.ClassesSynced
}

// String returns a one-line summary.
func (s SyncStats) String() string {
	return fmt.Sprintf("%d pages, %d records (%d new, %d duplicate)",
		s.PagesFetched, s.TotalRecords, s.ProgressionsInserted, s.DuplicateRecords)
}

// SyncHistoryEntry is a write-once provenance row for one fetched page.
type SyncHistoryEntry struct {
	// RunID groups the pages of a single class sync.
	RunID       string
	ClassID     string
	Page        int
	RecordCount int
	SyncedAt    time.Time
}

// SyncPhase is a state of the per-class sync state machine.
type SyncPhase string

// Sync phases in execution order.
const (
	PhaseFetchingStructure  SyncPhase = "fetching_structure"
	PhaseLoadingExistingIDs SyncPhase = "loading_existing_ids"
	PhasePaging             SyncPhase = "paging"
	PhaseDone               SyncPhase = "done"
	PhaseFailed             SyncPhase = "failed"
)

// StopReason explains why a paging loop ended.
type StopReason string

// Paging stop reasons.
const (
	StopEmptyPage     StopReason = "empty_page"
	StopEndOfStream   StopReason = "end_of_stream"
	StopCaughtUp      StopReason = "caught_up"
	StopNotApplicable StopReason = ""
)

// SyncOptions tunes the sync engine.
type SyncOptions struct {
	// PageDelay is slept between pages.
	PageDelay time.Duration

	// MaxPages caps a single class sync. Zero disables the ceiling.
	MaxPages int

	// ContinueOnError makes SyncAll keep going past classes that fail with
	// a fetch error. Auth and storage errors still abort the run.
	ContinueOnError bool
}

// DefaultSyncOptions returns the defaults used by the CLI.
func DefaultSyncOptions() SyncOptions {
	return SyncOptions{
		PageDelay: 500 * time.Millisecond,
		MaxPages:  10000,
	}
}
