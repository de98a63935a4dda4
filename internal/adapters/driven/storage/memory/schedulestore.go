package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
	"github.com/custodia-labs/cohort-tracker/internal/core/ports/driven"
)

// Ensure ScheduleStore implements the interface.
var _ driven.SchedulerStore = (*ScheduleStore)(nil)

// ScheduleStore is an in-memory implementation of driven.SchedulerStore.
type ScheduleStore struct {
	mu        sync.RWMutex
	schedules map[domain.SyncMode]domain.Schedule
	runs      []domain.ScheduledRun
}

// NewScheduleStore creates an empty schedule store.
func NewScheduleStore() *ScheduleStore {
	return &ScheduleStore{schedules: make(map[domain.SyncMode]domain.Schedule)}
}

// GetSchedule returns a copy of the stored schedule, or nil.
func (s *ScheduleStore) GetSchedule(_ context.Context, mode domain.SyncMode) (*domain.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sched, ok := s.schedules[mode]
	if !ok {
		return nil, nil
	}
	return &sched, nil
}

// ListSchedules returns stored schedules, incremental first.
func (s *ScheduleStore) ListSchedules(_ context.Context) ([]domain.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Schedule
	for _, mode := range domain.SyncModes {
		if sched, ok := s.schedules[mode]; ok {
			out = append(out, sched)
		}
	}
	return out, nil
}

// SaveSchedule stores a copy of sched.
func (s *ScheduleStore) SaveSchedule(_ context.Context, sched *domain.Schedule) error {
	if sched == nil || sched.Mode == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[sched.Mode] = *sched
	return nil
}

// RecordRun appends a copy of run.
func (s *ScheduleStore) RecordRun(_ context.Context, run *domain.ScheduledRun) error {
	if run == nil || run.Mode == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, *run)
	return nil
}

// RecentRuns returns runs of mode, newest first.
func (s *ScheduleStore) RecentRuns(_ context.Context, mode domain.SyncMode, limit int) ([]domain.ScheduledRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ScheduledRun
	for i := len(s.runs) - 1; i >= 0 && len(out) < limit; i-- {
		if s.runs[i].Mode == mode {
			out = append(out, s.runs[i])
		}
	}
	return out, nil
}

// PruneRuns keeps the newest keep runs per mode.
func (s *ScheduleStore) PruneRuns(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[domain.SyncMode]int)
	kept := make([]domain.ScheduledRun, 0, len(s.runs))
	for i := len(s.runs) - 1; i >= 0; i-- {
		mode := s.runs[i].Mode
		if seen[mode] < keep {
			kept = append(kept, s.runs[i])
		}
		seen[mode]++
	}
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	s.runs = kept
	return nil
}
