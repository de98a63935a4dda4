package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
	"github.com/custodia-labs/cohort-tracker/internal/core/ports/driven"
)

// Ensure CohortStore implements the interface.
var _ driven.CohortStore = (*CohortStore)(nil)

type rowKey struct {
	id      string
	classID string
}

// CohortStore is an in-memory implementation of driven.CohortStore.
// It enforces the same referential rules as the SQLite schema: a
// progression is rejected unless its student and assignment exist.
type CohortStore struct {
	mu           sync.RWMutex
	students     map[rowKey]domain.Student
	assignments  map[rowKey]domain.Assignment
	progressions map[string]domain.Progression
	now          func() time.Time
}

// NewCohortStore creates a new in-memory cohort store.
func NewCohortStore() *CohortStore {
	return &CohortStore{
		students:     make(map[rowKey]domain.Student),
		assignments:  make(map[rowKey]domain.Assignment),
		progressions: make(map[string]domain.Progression),
		now:          time.Now,
	}
}

// UpsertStudent inserts a student unless it already exists.
func (s *CohortStore) UpsertStudent(_ context.Context, student domain.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := rowKey{student.ID, student.ClassID}
	if _, ok := s.students[key]; !ok {
		s.students[key] = student
	}
	return nil
}

// UpsertAssignment inserts or replaces an assignment.
func (s *CohortStore) UpsertAssignment(_ context.Context, assignment domain.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[rowKey{assignment.ID, assignment.ClassID}] = assignment
	return nil
}

// InsertProgression inserts or replaces a progression.
func (s *CohortStore) InsertProgression(_ context.Context, p domain.Progression) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.students[rowKey{p.StudentID, p.ClassID}]; !ok {
		return fmt.Errorf("inserting progression %s: student %s not stored", p.ID, p.StudentID)
	}
	if _, ok := s.assignments[rowKey{p.AssignmentID, p.ClassID}]; !ok {
		return fmt.Errorf("inserting progression %s: assignment %s not stored", p.ID, p.AssignmentID)
	}
	if p.SyncedAt.IsZero() {
		p.SyncedAt = s.now()
	}
	s.progressions[p.ID] = p
	return nil
}

// ExistingProgressionIDs returns the progression ids stored for a class.
func (s *CohortStore) ExistingProgressionIDs(_ context.Context, classID string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make(map[string]struct{})
	for id, p := range s.progressions {
		if p.ClassID == classID {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}

// Counts returns the row counts for a class.
func (s *CohortStore) Counts(_ context.Context, classID string) (domain.ClassCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var c domain.ClassCounts
	for k := range s.students {
		if k.classID == classID {
			c.Students++
		}
	}
	for k := range s.assignments {
		if k.classID == classID {
			c.Assignments++
		}
	}
	for _, p := range s.progressions {
		if p.ClassID == classID {
			c.Progressions++
		}
	}
	return c, nil
}

// UpdateStudentRoster tags every student matching the name in any class.
func (s *CohortStore) UpdateStudentRoster(_ context.Context, firstName, lastName, region, night string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for k, st := range s.students {
		if strings.EqualFold(st.FirstName, firstName) && strings.EqualFold(st.LastName, lastName) {
			st.Region, st.Night = optional(region), optional(night)
			s.students[k] = st
			changed = true
		}
	}
	return changed, nil
}

// optional mirrors the SQL store, where an empty tag is NULL.
func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// Student returns a stored student.
func (s *CohortStore) Student(id, classID string) (domain.Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.students[rowKey{id, classID}]
	return st, ok
}

// Assignment returns a stored assignment.
func (s *CohortStore) Assignment(id, classID string) (domain.Assignment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[rowKey{id, classID}]
	return a, ok
}

// Progression returns a stored progression.
func (s *CohortStore) Progression(id string) (domain.Progression, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.progressions[id]
	return p, ok
}
