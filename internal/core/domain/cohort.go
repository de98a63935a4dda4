package domain

import "time"

// Student is a learner as seen from one class.
// The same person may exist in several classes with different roster tags.
type Student struct {
	ID        string
	ClassID   string
	FirstName string
	LastName  string
	Email     string

	// Region and Night are roster tags set by roster import only.
	Region *string
	Night  *string
}

// FullName returns "First Last".
func (s *Student) FullName() string {
	switch {
	case s.FirstName == "":
		return s.LastName
	case s.LastName == "":
		return s.FirstName
	default:
		return s.FirstName + " " + s.LastName
	}
}

// Assignment is a unit of coursework within a class.
type Assignment struct {
	ID      string
	ClassID string
	Name    string
	Type    string

	// Section is the course-structure grouping, nil when unknown.
	Section *string
}

// Progression is a stored completion record.
type Progression struct {
	// ID is the provider's globally unique record id.
	ID           string
	ClassID      string
	StudentID    string
	AssignmentID string
	Grade        *float64
	StartedAt    string
	CompletedAt  string
	ReviewedAt   *string

	// SyncedAt is the local ingestion time.
	SyncedAt time.Time
}

// ProgressionRecord is one decoded entry of the provider completion feed.
// It carries the student and assignment it references so the engine can
// upsert them before the progression row.
type ProgressionRecord struct {
	ID          string
	Student     Student
	Assignment  Assignment
	Grade       *float64
	StartedAt   string
	CompletedAt string
	ReviewedAt  *string
}

// Progression converts the feed record to a storable progression for classID.
func (r *ProgressionRecord) Progression(classID string) Progression {
	return Progression{
		ID:           r.ID,
		ClassID:      classID,
		StudentID:    r.Student.ID,
		AssignmentID: r.Assignment.ID,
		Grade:        r.Grade,
		StartedAt:    r.StartedAt,
		CompletedAt:  r.CompletedAt,
		ReviewedAt:   r.ReviewedAt,
	}
}

// ProgressionPage is one page of the completion feed.
// An empty Records slice or CanLoadMore == false both mean end of stream.
type ProgressionPage struct {
	Records     []ProgressionRecord
	CanLoadMore bool
}

// SectionMap maps assignment id to section name.
type SectionMap map[string]string

// Lookup returns the section for an assignment, nil if unknown.
func (m SectionMap) Lookup(assignmentID string) *string {
	if s, ok := m[assignmentID]; ok {
		return &s
	}
	return nil
}
