package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSyncStats_Merge(t *testing.T) {
	total := SyncStats{}
	total.Merge(SyncStats{
		TotalRecords:         5,
		DuplicateRecords:     1,
		StudentsTouched:      4,
		AssignmentsTouched:   4,
		ProgressionsInserted: 4,
		PagesFetched:         2,
		ClassesSynced:        1,
	})
	total.Merge(SyncStats{
		TotalRecords:         3,
		ProgressionsInserted: 3,
		StudentsTouched:      3,
		AssignmentsTouched:   3,
		PagesFetched:         1,
		ClassesSynced:        1,
	})

	assert.Equal(t, 8, total.TotalRecords)
	assert.Equal(t, 1, total.DuplicateRecords)
	assert.Equal(t, 7, total.StudentsTouched)
	assert.Equal(t, 7, total.AssignmentsTouched)
	assert.Equal(t, 7, total.ProgressionsInserted)
	assert.Equal(t, 3, total.PagesFetched)
	assert.Equal(t, 2, total.ClassesSynced)
}

func TestSyncStats_MergeZero(t *testing.T) {
	stats := SyncStats{PagesFetched: 3}
	stats.Merge(SyncStats{})
	assert.Equal(t, SyncStats{PagesFetched: 3}, stats)
}

func TestSyncStats_String(t *testing.T) {
	stats := SyncStats{PagesFetched: 2, TotalRecords: 4, ProgressionsInserted: 2, DuplicateRecords: 2}
	assert.Equal(t, "2 pages, 4 records (2 new, 2 duplicate)", stats.String())
}

func TestDefaultSyncOptions(t *testing.T) {
	opts := DefaultSyncOptions()
	assert.Equal(t, 500*time.Millisecond, opts.PageDelay)
	assert.Equal(t, 10000, opts.MaxPages)
	assert.False(t, opts.ContinueOnError)
}
