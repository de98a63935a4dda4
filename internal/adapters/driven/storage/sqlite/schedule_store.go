package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
	"github.com/custodia-labs/cohort-tracker/internal/core/ports/driven"
)

// scheduleStore implements driven.SchedulerStore.
type scheduleStore struct {
	store *Store
}

var _ driven.SchedulerStore = (*scheduleStore)(nil)

const (
	scheduleColumns = "mode, interval_seconds, next_run, last_run, last_success, last_inserted, last_error"
	runColumns      = "mode, started_at, ended_at, classes_synced, pages_fetched, records_seen, duplicates, progressions_inserted, error"
)

// GetSchedule returns nil and no error when mode has no row.
func (s *scheduleStore) GetSchedule(ctx context.Context, mode domain.SyncMode) (*domain.Schedule, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM sync_schedules WHERE mode = ?`, string(mode))

	sched, err := scanSchedule(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return sched, err
}

// ListSchedules orders by mode descending, which puts incremental first.
func (s *scheduleStore) ListSchedules(ctx context.Context) ([]domain.Schedule, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+scheduleColumns+` FROM sync_schedules ORDER BY mode DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying schedules: %w", err)
	}
	defer rows.Close()

	var out []domain.Schedule
	for rows.Next() {
		sched, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sched)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schedules: %w", err)
	}
	return out, nil
}

func (s *scheduleStore) SaveSchedule(ctx context.Context, sched *domain.Schedule) error {
	if sched == nil || sched.Mode == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_schedules (`+scheduleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(mode) DO UPDATE SET
			interval_seconds = excluded.interval_seconds,
			next_run = excluded.next_run,
			last_run = excluded.last_run,
			last_success = excluded.last_success,
			last_inserted = excluded.last_inserted,
			last_error = excluded.last_error
	`, string(sched.Mode), int64(sched.Interval/time.Second),
		formatNullableTime(sched.NextRun), formatNullableTime(sched.LastRun),
		formatNullableTime(sched.LastSuccess), sched.LastInserted, nullString(sched.LastError))
	if err != nil {
		return fmt.Errorf("saving %s schedule: %w", sched.Mode, err)
	}
	return nil
}

// RecordRun keeps run timestamps at nanosecond precision so durations survive.
func (s *scheduleStore) RecordRun(ctx context.Context, run *domain.ScheduledRun) error {
	if run == nil || run.Mode == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO scheduled_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, string(run.Mode),
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.EndedAt.UTC().Format(time.RFC3339Nano),
		run.Stats.ClassesSynced, run.Stats.PagesFetched, run.Stats.TotalRecords,
		run.Stats.DuplicateRecords, run.Stats.ProgressionsInserted,
		nullString(run.Error))
	if err != nil {
		return fmt.Errorf("recording %s run: %w", run.Mode, err)
	}
	return nil
}

func (s *scheduleStore) RecentRuns(ctx context.Context, mode domain.SyncMode, limit int) ([]domain.ScheduledRun, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM scheduled_runs
		WHERE mode = ?
		ORDER BY id DESC
		LIMIT ?
	`, string(mode), limit)
	if err != nil {
		return nil, fmt.Errorf("querying %s runs: %w", mode, err)
	}
	defer rows.Close()

	var out []domain.ScheduledRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s runs: %w", mode, err)
	}
	return out, nil
}

func (s *scheduleStore) PruneRuns(ctx context.Context, keep int) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM scheduled_runs
		WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY mode ORDER BY id DESC) AS rn
				FROM scheduled_runs
			) WHERE rn > ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning scheduled runs: %w", err)
	}
	return nil
}

func scanSchedule(row scanner) (*domain.Schedule, error) {
	var (
		sched                      domain.Schedule
		mode                       string
		seconds                    int64
		nextRun, lastRun, lastSucc sql.NullString
		lastErr                    sql.NullString
	)
	err := row.Scan(&mode, &seconds, &nextRun, &lastRun, &lastSucc, &sched.LastInserted, &lastErr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning schedule: %w", err)
	}

	sched.Mode = domain.SyncMode(mode)
	sched.Interval = time.Duration(seconds) * time.Second
	sched.NextRun = parseNullableTime(nextRun)
	sched.LastRun = parseNullableTime(lastRun)
	sched.LastSuccess = parseNullableTime(lastSucc)
	sched.LastError = lastErr.String
	return &sched, nil
}

func scanRun(row scanner) (*domain.ScheduledRun, error) {
	var (
		run            domain.ScheduledRun
		mode           string
		started, ended string
		errMsg         sql.NullString
	)
	if err := row.Scan(&mode, &started, &ended,
		&run.Stats.ClassesSynced, &run.Stats.PagesFetched, &run.Stats.TotalRecords,
		&run.Stats.DuplicateRecords, &run.Stats.ProgressionsInserted, &errMsg); err != nil {
		return nil, fmt.Errorf("scanning scheduled run: %w", err)
	}

	run.Mode = domain.SyncMode(mode)
	run.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	run.EndedAt, _ = time.Parse(time.RFC3339Nano, ended)
	run.Error = errMsg.String
	return &run, nil
}
