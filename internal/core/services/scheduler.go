package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
	"github.com/custodia-labs/cohort-tracker/internal/core/ports/driven"
	"github.com/custodia-labs/cohort-tracker/internal/core/ports/driving"
	"github.com/custodia-labs/cohort-tracker/internal/logger"
)

const (
	// runRetention is the number of runs kept per mode.
	runRetention = 100

	// defaultTick is how often the scheduler looks for due schedules.
	defaultTick = time.Minute
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// Scheduler runs periodic incremental and full syncs in the background.
// Runs are serialised: a due mode waits for the running one to finish.
type Scheduler struct {
	config domain.SchedulerConfig
	store  driven.SchedulerStore
	engine driving.SyncEngine
	tick   time.Duration
	now    func() time.Time

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
	inFlight map[domain.SyncMode]bool

	// runMu serialises runs against the single-writer store.
	runMu sync.Mutex
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	engine driving.SyncEngine,
) *Scheduler {
	return &Scheduler{
		config:   config,
		store:    store,
		engine:   engine,
		tick:     defaultTick,
		now:      time.Now,
		inFlight: make(map[domain.SyncMode]bool),
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if err := s.initialiseSchedules(ctx); err != nil {
		logger.Error(err, "scheduler: failed to initialise schedules")
	}

	return s.run(ctx)
}

// Stop gracefully shuts down the scheduler and waits for a running sync.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// Schedules returns the persisted schedule state.
func (s *Scheduler) Schedules(ctx context.Context) ([]domain.Schedule, error) {
	return s.store.ListSchedules(ctx)
}

// RecentRuns returns the latest runs of mode.
func (s *Scheduler) RecentRuns(ctx context.Context, mode domain.SyncMode, limit int) ([]domain.ScheduledRun, error) {
	return s.store.RecentRuns(ctx, mode, limit)
}

// initialiseSchedules stores a schedule for every enabled mode. A changed
// interval replans the next run; other state survives restarts.
func (s *Scheduler) initialiseSchedules(ctx context.Context) error {
	for _, mode := range domain.SyncModes {
		interval := s.config.Interval(mode)
		if interval <= 0 {
			continue
		}

		sched, err := s.store.GetSchedule(ctx, mode)
		if err != nil {
			return err
		}
		switch {
		case sched == nil:
			sched = &domain.Schedule{Mode: mode, Interval: interval, NextRun: s.now().Add(interval)}
		case sched.Interval != interval:
			sched.Interval = interval
			sched.NextRun = s.now().Add(interval)
		default:
			continue
		}
		if err := s.store.SaveSchedule(ctx, sched); err != nil {
			return err
		}
	}
	return nil
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	s.startDue(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.startDue(ctx)
		}
	}
}

// startDue starts every enabled schedule that is due and not already running.
// Stored schedules for modes disabled in config are left alone.
func (s *Scheduler) startDue(ctx context.Context) {
	schedules, err := s.store.ListSchedules(ctx)
	if err != nil {
		logger.Error(err, "scheduler: failed to list schedules")
		return
	}

	now := s.now()
	for i := range schedules {
		sched := schedules[i]
		if !s.config.Enabled(sched.Mode) || !sched.Due(now) {
			continue
		}
		if !s.claim(sched.Mode) {
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.release(sched.Mode)
			if _, err := s.Run(ctx, &sched); err != nil {
				logger.Error(err, "scheduler: %s sync failed", sched.Mode)
			}
		}()
	}
}

// claim marks a mode as in flight. Returns false if it already is.
func (s *Scheduler) claim(mode domain.SyncMode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[mode] {
		return false
	}
	s.inFlight[mode] = true
	return true
}

func (s *Scheduler) release(mode domain.SyncMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, mode)
}

// Run executes one scheduled sync synchronously, then persists the schedule
// and the run. The returned error is the sync error, if any.
func (s *Scheduler) Run(ctx context.Context, sched *domain.Schedule) (*domain.ScheduledRun, error) {
	if _, err := domain.ParseSyncMode(string(sched.Mode)); err != nil {
		return nil, err
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	run := &domain.ScheduledRun{Mode: sched.Mode, StartedAt: s.now()}
	logger.Info("scheduler: running %s sync", sched.Mode)

	err := s.syncAll(ctx, run)
	run.EndedAt = s.now()
	if err != nil {
		run.Error = err.Error()
	}
	sched.Advance(run)

	log := logger.Log()
	log.Info().
		Str("mode", string(run.Mode)).
		Bool("ok", run.Succeeded()).
		Int("classes", run.Stats.ClassesSynced).
		Int("new", run.Stats.ProgressionsInserted).
		Dur("took", run.Duration()).
		Time("next_run", sched.NextRun).
		Msg("scheduled sync finished")

	// Persist with a fresh context so a shutdown still records the outcome.
	persistCtx := context.WithoutCancel(ctx)
	if saveErr := s.store.SaveSchedule(persistCtx, sched); saveErr != nil {
		logger.Error(saveErr, "scheduler: failed to save %s schedule", sched.Mode)
	}
	if recordErr := s.store.RecordRun(persistCtx, run); recordErr != nil {
		logger.Error(recordErr, "scheduler: failed to record %s run", sched.Mode)
	}
	if pruneErr := s.store.PruneRuns(persistCtx, runRetention); pruneErr != nil {
		logger.Error(pruneErr, "scheduler: failed to prune runs")
	}

	return run, err
}

// syncAll runs the engine and copies what it committed into run.
func (s *Scheduler) syncAll(ctx context.Context, run *domain.ScheduledRun) error {
	if s.engine == nil {
		return nil
	}
	stats, err := s.engine.SyncAll(ctx, run.Mode.Full())
	if stats != nil {
		run.Stats = *stats
	}
	if err != nil {
		return fmt.Errorf("%s sync: %w", run.Mode, err)
	}
	return nil
}
