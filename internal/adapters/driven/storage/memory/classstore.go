package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
	"github.com/custodia-labs/cohort-tracker/internal/core/ports/driven"
)

// Ensure ClassStore implements the interface.
var _ driven.ClassStore = (*ClassStore)(nil)

// ClassStore is an in-memory implementation of driven.ClassStore.
type ClassStore struct {
	mu      sync.RWMutex
	classes map[string]domain.Class
}

// NewClassStore creates a new in-memory class store.
func NewClassStore() *ClassStore {
	return &ClassStore{
		classes: make(map[string]domain.Class),
	}
}

// Save inserts a class or refreshes its name and friendly id.
func (s *ClassStore) Save(_ context.Context, class domain.Class) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.classes[class.ID]; ok {
		existing.Name = class.Name
		existing.FriendlyID = class.FriendlyID
		s.classes[class.ID] = existing
		return nil
	}
	s.classes[class.ID] = copyClass(class)
	return nil
}

// Get retrieves a class by id.
func (s *ClassStore) Get(_ context.Context, id string) (*domain.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	class, ok := s.classes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := copyClass(class)
	return &c, nil
}

// GetByFriendlyID retrieves a class by friendly id.
func (s *ClassStore) GetByFriendlyID(_ context.Context, friendlyID string) (*domain.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, class := range s.classes {
		if friendlyID != "" && class.FriendlyID == friendlyID {
			c := copyClass(class)
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

// List returns all classes ordered by name.
func (s *ClassStore) List(_ context.Context) ([]domain.Class, error) {
	return s.filter(func(domain.Class) bool { return true }), nil
}

// ListActive returns active classes ordered by name.
func (s *ClassStore) ListActive(_ context.Context) ([]domain.Class, error) {
	return s.filter(func(c domain.Class) bool { return c.IsActive }), nil
}

// SetActive toggles the activation flag.
func (s *ClassStore) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	class, ok := s.classes[id]
	if !ok {
		return domain.ErrNotFound
	}
	class.IsActive = active
	s.classes[id] = class
	return nil
}

// SetLastSync records a successful sync time.
func (s *ClassStore) SetLastSync(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	class, ok := s.classes[id]
	if !ok {
		return domain.ErrNotFound
	}
	class.SyncedAt = &at
	s.classes[id] = class
	return nil
}

func (s *ClassStore) filter(keep func(domain.Class) bool) []domain.Class {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Class, 0, len(s.classes))
	for _, class := range s.classes {
		if keep(class) {
			result = append(result, copyClass(class))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func copyClass(c domain.Class) domain.Class {
	if c.SyncedAt != nil {
		t := *c.SyncedAt
		c.SyncedAt = &t
	}
	return c
}
