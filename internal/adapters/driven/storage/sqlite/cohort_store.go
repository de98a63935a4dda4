package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
	"github.com/custodia-labs/cohort-tracker/internal/core/ports/driven"
)

// cohortStore implements driven.CohortStore.
type cohortStore struct {
	store *Store
}

var _ driven.CohortStore = (*cohortStore)(nil)

// UpsertStudent inserts a student unless (id, class_id) already exists.
func (s *cohortStore) UpsertStudent(ctx context.Context, student domain.Student) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO students (id, class_id, first_name, last_name, email, region, night)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id, class_id) DO NOTHING
	`, student.ID, student.ClassID, student.FirstName, student.LastName, student.Email,
		student.Region, student.Night)
	if err != nil {
		return fmt.Errorf("upserting student: %w", err)
	}
	return nil
}

// UpsertAssignment inserts or replaces an assignment.
func (s *cohortStore) UpsertAssignment(ctx context.Context, assignment domain.Assignment) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO assignments (id, class_id, name, type, section)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id, class_id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			section = excluded.section
	`, assignment.ID, assignment.ClassID, assignment.Name, assignment.Type, assignment.Section)
	if err != nil {
		return fmt.Errorf("upserting assignment: %w", err)
	}
	return nil
}

// InsertProgression inserts or replaces a progression.
func (s *cohortStore) InsertProgression(ctx context.Context, p domain.Progression) error {
	syncedAt := p.SyncedAt
	if syncedAt.IsZero() {
		syncedAt = time.Now()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO progressions
			(id, class_id, student_id, assignment_id, grade, started_at, completed_at, reviewed_at, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			class_id = excluded.class_id,
			student_id = excluded.student_id,
			assignment_id = excluded.assignment_id,
			grade = excluded.grade,
			started_at = excluded.started_at,
			completed_at = excluded.completed_at,
			reviewed_at = excluded.reviewed_at,
			synced_at = excluded.synced_at
	`, p.ID, p.ClassID, p.StudentID, p.AssignmentID, p.Grade,
		p.StartedAt, p.CompletedAt, p.ReviewedAt, syncedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting progression: %w", err)
	}
	return nil
}

// ExistingProgressionIDs returns the progression ids stored for a class.
func (s *cohortStore) ExistingProgressionIDs(ctx context.Context, classID string) (map[string]struct{}, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT id FROM progressions WHERE class_id = ?", classID)
	if err != nil {
		return nil, fmt.Errorf("querying progression ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning progression id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating progression ids: %w", err)
	}
	return ids, nil
}

// Counts returns the cached row counts for a class.
func (s *cohortStore) Counts(ctx context.Context, classID string) (domain.ClassCounts, error) {
	var c domain.ClassCounts
	err := s.store.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM students WHERE class_id = ?),
			(SELECT COUNT(*) FROM assignments WHERE class_id = ?),
			(SELECT COUNT(*) FROM progressions WHERE class_id = ?)
	`, classID, classID, classID).Scan(&c.Students, &c.Assignments, &c.Progressions)
	if err != nil {
		return domain.ClassCounts{}, fmt.Errorf("counting class rows: %w", err)
	}
	return c, nil
}

// UpdateStudentRoster tags every student matching the name, in any class.
func (s *cohortStore) UpdateStudentRoster(ctx context.Context, firstName, lastName, region, night string) (bool, error) {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE students SET region = ?, night = ?
		WHERE LOWER(first_name) = LOWER(?) AND LOWER(last_name) = LOWER(?)
	`, nullString(region), nullString(night), firstName, lastName)
	if err != nil {
		return false, fmt.Errorf("updating student roster: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking affected rows: %w", err)
	}
	return n > 0, nil
}

// ==================== Sync History Store ====================

// historyStore implements driven.SyncHistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.SyncHistoryStore = (*historyStore)(nil)

// RecordSync appends a page entry.
func (s *historyStore) RecordSync(ctx context.Context, e domain.SyncHistoryEntry) error {
	at := e.SyncedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_history (run_id, class_id, page, records_processed, synced_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.RunID, e.ClassID, e.Page, e.RecordCount, at.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording sync history: %w", err)
	}
	return nil
}

// ListHistory returns the most recent entries for a class, newest first.
func (s *historyStore) ListHistory(ctx context.Context, classID string, limit int) ([]domain.SyncHistoryEntry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT run_id, class_id, page, records_processed, synced_at
		FROM sync_history
		WHERE class_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, classID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sync history: %w", err)
	}
	defer rows.Close()

	var entries []domain.SyncHistoryEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var e domain.SyncHistoryEntry
		var syncedAt sql.NullString
		if err := rows.Scan(&e.RunID, &e.ClassID, &e.Page, &e.RecordCount, &syncedAt); err != nil {
			return nil, fmt.Errorf("scanning sync history: %w", err)
		}
		e.SyncedAt = parseNullableTime(syncedAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sync history: %w", err)
	}
	return entries, nil
}

// LastSync returns the time of the most recent entry across all classes.
func (s *historyStore) LastSync(ctx context.Context) (*time.Time, error) {
	var syncedAt sql.NullString
	err := s.store.db.QueryRowContext(ctx,
		"SELECT synced_at FROM sync_history ORDER BY id DESC LIMIT 1").Scan(&syncedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying last sync: %w", err)
	}
	t := parseNullableTime(syncedAt)
	if t.IsZero() {
		return nil, nil
	}
	return &t, nil
}
