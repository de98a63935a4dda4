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

// classStore implements driven.ClassStore.
type classStore struct {
	store *Store
}

var _ driven.ClassStore = (*classStore)(nil)

const classColumns = "id, name, friendly_id, is_active, synced_at"

// Save inserts a class or refreshes its name and friendly id.
func (s *classStore) Save(ctx context.Context, class domain.Class) error {
	var syncedAt interface{}
	if class.SyncedAt != nil {
		syncedAt = formatNullableTime(*class.SyncedAt)
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO classes (id, name, friendly_id, is_active, synced_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			friendly_id = excluded.friendly_id
	`, class.ID, class.Name, nullString(class.FriendlyID), boolToInt(class.IsActive), syncedAt)
	if err != nil {
		return fmt.Errorf("saving class: %w", err)
	}
	return nil
}

// Get retrieves a class by provider id.
func (s *classStore) Get(ctx context.Context, id string) (*domain.Class, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+classColumns+" FROM classes WHERE id = ?", id)
	return scanClass(row)
}

// GetByFriendlyID retrieves a class by friendly id.
func (s *classStore) GetByFriendlyID(ctx context.Context, friendlyID string) (*domain.Class, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+classColumns+" FROM classes WHERE friendly_id = ?", friendlyID)
	return scanClass(row)
}

// List returns all classes ordered by name.
func (s *classStore) List(ctx context.Context) ([]domain.Class, error) {
	return s.query(ctx, "SELECT "+classColumns+" FROM classes ORDER BY name, id")
}

// ListActive returns active classes ordered by name.
func (s *classStore) ListActive(ctx context.Context) ([]domain.Class, error) {
	return s.query(ctx, "SELECT "+classColumns+" FROM classes WHERE is_active = 1 ORDER BY name, id")
}

// SetActive toggles the activation flag.
func (s *classStore) SetActive(ctx context.Context, id string, active bool) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE classes SET is_active = ? WHERE id = ?", boolToInt(active), id)
	if err != nil {
		return fmt.Errorf("updating class: %w", err)
	}
	return requireAffected(res)
}

// SetLastSync records a successful sync time.
func (s *classStore) SetLastSync(ctx context.Context, id string, at time.Time) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE classes SET synced_at = ? WHERE id = ?", formatNullableTime(at), id)
	if err != nil {
		return fmt.Errorf("updating class sync time: %w", err)
	}
	return requireAffected(res)
}

func (s *classStore) query(ctx context.Context, q string) ([]domain.Class, error) {
	rows, err := s.store.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying classes: %w", err)
	}
	defer rows.Close()

	var classes []domain.Class //nolint:prealloc // size unknown from query
	for rows.Next() {
		class, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, *class)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating classes: %w", err)
	}
	return classes, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanClass(row scanner) (*domain.Class, error) {
	var class domain.Class
	var friendlyID, syncedAt sql.NullString
	var active int

	if err := row.Scan(&class.ID, &class.Name, &friendlyID, &active, &syncedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning class: %w", err)
	}

	class.FriendlyID = friendlyID.String
	class.IsActive = active == 1
	if t := parseNullableTime(syncedAt); !t.IsZero() {
		class.SyncedAt = &t
	}
	return &class, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
