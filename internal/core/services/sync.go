package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
	"github.com/custodia-labs/cohort-tracker/internal/core/ports/driven"
	"github.com/custodia-labs/cohort-tracker/internal/core/ports/driving"
	"github.com/custodia-labs/cohort-tracker/internal/logger"
	"github.com/custodia-labs/cohort-tracker/internal/metrics"
)

// Ensure SyncEngine implements the interface.
var _ driving.SyncEngine = (*SyncEngine)(nil)

// SyncEngine pulls progression pages from an LMS provider into the cohort store.
// One class is paged at a time; there is no fan-out across pages or classes.
type SyncEngine struct {
	provider driven.LmsProvider
	classes  driven.ClassStore
	cohort   driven.CohortStore
	history  driven.SyncHistoryStore
	opts     domain.SyncOptions

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	newID func() string

	// Status tracking
	mu          sync.RWMutex
	activeSyncs map[string]*driving.SyncStatus
	lastSyncs   map[string]driving.SyncStatus
}

// NewSyncEngine creates a sync engine.
func NewSyncEngine(
	provider driven.LmsProvider,
	classes driven.ClassStore,
	cohort driven.CohortStore,
	history driven.SyncHistoryStore,
	opts domain.SyncOptions,
) *SyncEngine {
	return &SyncEngine{
		provider:    provider,
		classes:     classes,
		cohort:      cohort,
		history:     history,
		opts:        opts,
		now:         time.Now,
		sleep:       sleepContext,
		newID:       uuid.NewString,
		activeSyncs: make(map[string]*driving.SyncStatus),
		lastSyncs:   make(map[string]driving.SyncStatus),
	}
}

// SyncClass authenticates and synchronises one class.
// On failure the returned stats cover the pages committed before the error.
func (e *SyncEngine) SyncClass(ctx context.Context, classID string, full bool) (*domain.SyncStats, error) {
	class, err := e.classes.Get(ctx, classID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("class %s: %w", classID, err)
		}
		return nil, fmt.Errorf("%w: get class: %w", domain.ErrStorage, err)
	}

	if err := e.provider.Authenticate(ctx); err != nil {
		return nil, asAuthError(err)
	}

	stats, err := e.syncClass(ctx, class, full)
	return &stats, err
}

// SyncAll authenticates once and synchronises every active class in order.
// With no active classes it returns empty stats and does not log in.
// By default the first failing class aborts the run. With ContinueOnError,
// fetch failures are collected and the run moves to the next class; auth and
// storage failures still abort.
func (e *SyncEngine) SyncAll(ctx context.Context, full bool) (*domain.SyncStats, error) {
	active, err := e.classes.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list active classes: %w", domain.ErrStorage, err)
	}
	if len(active) == 0 {
		logger.Warn("No active classes to sync")
		return &domain.SyncStats{}, nil
	}

	if err := e.provider.Authenticate(ctx); err != nil {
		return nil, asAuthError(err)
	}

	total := &domain.SyncStats{}
	var errs []error
	for i := range active {
		stats, err := e.syncClass(ctx, &active[i], full)
		total.Merge(stats)
		if err == nil {
			continue
		}

		err = fmt.Errorf("class %s: %w", active[i].Ref(), err)
		if !e.opts.ContinueOnError || domain.IsFatalForRun(err) || ctx.Err() != nil {
			return total, errors.Join(append(errs, err)...)
		}
		logger.Warn("Skipping class %s after error: %v", active[i].Ref(), err)
		errs = append(errs, err)
	}

	return total, errors.Join(errs...)
}

// Status returns the live status of a running sync, or the final status of
// the most recent one. A class never synced by this engine reports an idle status.
func (e *SyncEngine) Status(_ context.Context, classID string) (*driving.SyncStatus, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if status, ok := e.activeSyncs[classID]; ok {
		copied := *status
		return &copied, nil
	}
	if status, ok := e.lastSyncs[classID]; ok {
		return &status, nil
	}
	return &driving.SyncStatus{ClassID: classID}, nil
}

// syncClass runs the per-class state machine on an authenticated provider.
func (e *SyncEngine) syncClass(ctx context.Context, class *domain.Class, full bool) (stats domain.SyncStats, err error) {
	if !e.begin(class.ID) {
		return stats, fmt.Errorf("class %s: %w", class.Ref(), domain.ErrSyncInProgress)
	}

	runID := e.newID()
	started := e.now()
	log := logger.With("run_id", runID).With().
		Str("class_id", class.ID).
		Str("mode", metrics.Mode(full)).
		Logger()

	defer func() {
		e.finish(class.ID, stats, err)
		metrics.RecordClassSync(full, started, err)
	}()

	logger.Section("Sync " + class.Ref())
	log.Info().Str("class", class.Ref()).Msg("starting class sync")

	// FETCHING_STRUCTURE
	e.setPhase(class.ID, domain.PhaseFetchingStructure, 0, stats)
	sections, serr := e.provider.FetchClassStructure(ctx, class.ID)
	if serr != nil {
		// An expired token still fails on page 0.
		log.Warn().Err(serr).Msg("class structure unavailable, continuing without sections")
		sections = domain.SectionMap{}
	}
	if sections == nil {
		sections = domain.SectionMap{}
	}

	// LOADING_EXISTING_IDS
	e.setPhase(class.ID, domain.PhaseLoadingExistingIDs, 0, stats)
	seen, err := e.cohort.ExistingProgressionIDs(ctx, class.ID)
	if err != nil {
		return stats, fmt.Errorf("%w: load existing ids: %w", domain.ErrStorage, err)
	}
	log.Debug().Int("existing", len(seen)).Int("sections", len(sections)).Msg("loaded dedup set")

	// PAGING
	reason, err := e.page(ctx, log, class.ID, runID, full, sections, seen, &stats)
	if err != nil {
		return stats, err
	}

	// DONE
	if err := e.classes.SetLastSync(ctx, class.ID, e.now()); err != nil {
		return stats, fmt.Errorf("%w: set last sync: %w", domain.ErrStorage, err)
	}
	stats.ClassesSynced = 1

	log.Info().
		Str("stop", string(reason)).
		Int("pages", stats.PagesFetched).
		Int("new", stats.ProgressionsInserted).
		Int("duplicates", stats.DuplicateRecords).
		Dur("took", e.now().Sub(started)).
		Msg("class sync complete")
	return stats, nil
}

// page walks the feed from page 0 until the stopping policy ends the loop.
func (e *SyncEngine) page(
	ctx context.Context,
	log zerolog.Logger,
	classID, runID string,
	full bool,
	sections domain.SectionMap,
	seen map[string]struct{},
	stats *domain.SyncStats,
) (domain.StopReason, error) {
	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return domain.StopNotApplicable, err
		}
		if e.opts.MaxPages > 0 && n >= e.opts.MaxPages {
			return domain.StopNotApplicable, fmt.Errorf("%w: %w: stopped at %d pages",
				domain.ErrFetch, domain.ErrPageLimitExceeded, n)
		}

		e.setPhase(classID, domain.PhasePaging, n, *stats)
		page, err := e.provider.FetchProgressions(ctx, classID, n)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return domain.StopNotApplicable, ctxErr
			}
			return domain.StopNotApplicable, asFetchError(fmt.Errorf("page %d: %w", n, err))
		}
		stats.PagesFetched++

		if len(page.Records) == 0 {
			log.Debug().Int("page", n).Msg("empty page, end of feed")
			return domain.StopEmptyPage, nil
		}

		newRecords, duplicates, err := e.storePage(ctx, classID, page.Records, sections, seen, stats)
		if err != nil {
			return domain.StopNotApplicable, err
		}

		if err := e.history.RecordSync(ctx, domain.SyncHistoryEntry{
			RunID:       runID,
			ClassID:     classID,
			Page:        n,
			RecordCount: len(page.Records),
			SyncedAt:    e.now(),
		}); err != nil {
			return domain.StopNotApplicable, fmt.Errorf("%w: record sync history: %w", domain.ErrStorage, err)
		}
		metrics.RecordPage(classID, newRecords, duplicates)

		log.Info().
			Int("page", n).
			Int("records", len(page.Records)).
			Int("new", newRecords).
			Int("duplicates", duplicates).
			Msg("page processed")

		if !full && newRecords == 0 && duplicates > 0 {
			return domain.StopCaughtUp, nil
		}
		if !page.CanLoadMore {
			return domain.StopEndOfStream, nil
		}

		if err := e.sleep(ctx, e.opts.PageDelay); err != nil {
			return domain.StopNotApplicable, err
		}
	}
}

// storePage writes the new records of one page: student, then assignment,
// then progression, so no stored progression dangles.
func (e *SyncEngine) storePage(
	ctx context.Context,
	classID string,
	records []domain.ProgressionRecord,
	sections domain.SectionMap,
	seen map[string]struct{},
	stats *domain.SyncStats,
) (newRecords, duplicates int, err error) {
	for i := range records {
		rec := &records[i]
		stats.TotalRecords++

		if _, ok := seen[rec.ID]; ok {
			duplicates++
			stats.DuplicateRecords++
			continue
		}

		student := rec.Student
		student.ClassID = classID
		if err := e.cohort.UpsertStudent(ctx, student); err != nil {
			return newRecords, duplicates, fmt.Errorf("%w: %w", domain.ErrStorage, err)
		}
		stats.StudentsTouched++

		assignment := rec.Assignment
		assignment.ClassID = classID
		assignment.Section = sections.Lookup(assignment.ID)
		if err := e.cohort.UpsertAssignment(ctx, assignment); err != nil {
			return newRecords, duplicates, fmt.Errorf("%w: %w", domain.ErrStorage, err)
		}
		stats.AssignmentsTouched++

		progression := rec.Progression(classID)
		progression.SyncedAt = e.now()
		if err := e.cohort.InsertProgression(ctx, progression); err != nil {
			return newRecords, duplicates, fmt.Errorf("%w: %w", domain.ErrStorage, err)
		}
		stats.ProgressionsInserted++

		seen[rec.ID] = struct{}{}
		newRecords++
	}
	return newRecords, duplicates, nil
}

// begin registers a running sync. Returns false if one is already running.
func (e *SyncEngine) begin(classID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, running := e.activeSyncs[classID]; running {
		return false
	}
	e.activeSyncs[classID] = &driving.SyncStatus{
		ClassID: classID,
		Running: true,
		Phase:   domain.PhaseFetchingStructure,
	}
	return true
}

// setPhase updates the live status for a running sync.
func (e *SyncEngine) setPhase(classID string, phase domain.SyncPhase, page int, stats domain.SyncStats) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if status, ok := e.activeSyncs[classID]; ok {
		status.Phase = phase
		status.Page = page
		status.Stats = stats
	}
}

// finish clears the live status and keeps the final one.
func (e *SyncEngine) finish(classID string, stats domain.SyncStats, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	final := driving.SyncStatus{ClassID: classID, Phase: domain.PhaseDone, Stats: stats}
	if status, ok := e.activeSyncs[classID]; ok {
		final.Page = status.Page
	}
	if err != nil {
		final.Phase = domain.PhaseFailed
	}
	e.lastSyncs[classID] = final
	delete(e.activeSyncs, classID)
}

// asAuthError makes sure an authentication failure carries domain.ErrAuth.
func asAuthError(err error) error {
	if errors.Is(err, domain.ErrAuth) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrAuth, err)
}

// asFetchError tags a provider failure as a fetch error unless it is an auth failure.
func asFetchError(err error) error {
	if errors.Is(err, domain.ErrAuth) || errors.Is(err, domain.ErrFetch) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrFetch, err)
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
