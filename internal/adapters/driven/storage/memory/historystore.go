package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
	"github.com/custodia-labs/cohort-tracker/internal/core/ports/driven"
)

// Ensure SyncHistoryStore implements the interface.
var _ driven.SyncHistoryStore = (*SyncHistoryStore)(nil)

// SyncHistoryStore is an in-memory implementation of driven.SyncHistoryStore.
type SyncHistoryStore struct {
	mu      sync.RWMutex
	entries []domain.SyncHistoryEntry
}

// NewSyncHistoryStore creates a new in-memory history store.
func NewSyncHistoryStore() *SyncHistoryStore {
	return &SyncHistoryStore{}
}

// RecordSync appends an entry.
func (s *SyncHistoryStore) RecordSync(_ context.Context, entry domain.SyncHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.SyncedAt.IsZero() {
		entry.SyncedAt = time.Now()
	}
	s.entries = append(s.entries, entry)
	return nil
}

// ListHistory returns the most recent entries for a class, newest first.
func (s *SyncHistoryStore) ListHistory(_ context.Context, classID string, limit int) ([]domain.SyncHistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.SyncHistoryEntry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].ClassID != classID {
			continue
		}
		result = append(result, s.entries[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

// LastSync returns the time of the most recent entry.
func (s *SyncHistoryStore) LastSync(_ context.Context) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return nil, nil
	}
	t := s.entries[len(s.entries)-1].SyncedAt
	return &t, nil
}

// All returns every entry in insertion order.
func (s *SyncHistoryStore) All() []domain.SyncHistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SyncHistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
