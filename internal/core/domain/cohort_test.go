package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudent_FullName(t *testing.T) {
	tests := []struct {
		first, last, want string
	}{
		{"Ada", "Lovelace", "Ada Lovelace"},
		{"", "Lovelace", "Lovelace"},
		{"Ada", "", "Ada"},
	}
	for _, tt := range tests {
		s := Student{FirstName: tt.first, LastName: tt.last}
		assert.Equal(t, tt.want, s.FullName())
	}
}

func TestProgressionRecord_Progression(t *testing.T) {
	grade := 0.85
	reviewed := "2025-01-02T00:00:00Z"
	rec := ProgressionRecord{
		ID:          "p1",
		Student:     Student{ID: "s1"},
		Assignment:  Assignment{ID: "a1"},
		Grade:       &grade,
		StartedAt:   "2025-01-01T10:00:00Z",
		CompletedAt: "2025-01-01T11:00:00Z",
		ReviewedAt:  &reviewed,
	}

	p := rec.Progression("class-1")

	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "class-1", p.ClassID)
	assert.Equal(t, "s1", p.StudentID)
	assert.Equal(t, "a1", p.AssignmentID)
	require.NotNil(t, p.Grade)
	assert.InDelta(t, 0.85, *p.Grade, 1e-9)
	assert.Equal(t, "2025-01-01T11:00:00Z", p.CompletedAt)
	assert.Equal(t, &reviewed, p.ReviewedAt)
	assert.True(t, p.SyncedAt.IsZero())
}

func TestSectionMap_Lookup(t *testing.T) {
	m := SectionMap{"a1": "Week 1"}

	got := m.Lookup("a1")
	require.NotNil(t, got)
	assert.Equal(t, "Week 1", *got)

	assert.Nil(t, m.Lookup("missing"))

	var empty SectionMap
	assert.Nil(t, empty.Lookup("a1"))
}

func TestClass_Ref(t *testing.T) {
	c := Class{ID: "64f0c", FriendlyID: "spring-25"}
	assert.Equal(t, "spring-25", c.Ref())

	c.FriendlyID = ""
	assert.Equal(t, "64f0c", c.Ref())
}
