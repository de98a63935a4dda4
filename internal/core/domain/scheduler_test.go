package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSchedulerConfig(t *testing.T) {
	cfg := DefaultSchedulerConfig()

	assert.Equal(t, time.Hour, cfg.Interval(ModeIncremental))
	assert.Equal(t, 24*time.Hour, cfg.Interval(ModeFull))
	assert.True(t, cfg.Enabled(ModeIncremental))
	assert.True(t, cfg.Enabled(ModeFull))
	assert.Zero(t, cfg.Interval("weekly"))
}

func TestSchedulerConfig_DisabledMode(t *testing.T) {
	cfg := SchedulerConfig{Incremental: 15 * time.Minute, Full: -1}

	assert.True(t, cfg.Enabled(ModeIncremental))
	assert.False(t, cfg.Enabled(ModeFull))
}

func TestSyncMode(t *testing.T) {
	assert.Equal(t, ModeFull, ModeOf(true))
	assert.Equal(t, ModeIncremental, ModeOf(false))
	assert.True(t, ModeFull.Full())
	assert.False(t, ModeIncremental.Full())

	m, err := ParseSyncMode("full")
	require.NoError(t, err)
	assert.Equal(t, ModeFull, m)

	_, err = ParseSyncMode("hourly")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSchedule_Due(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, (&Schedule{}).Due(now))
	assert.True(t, (&Schedule{NextRun: now}).Due(now))
	assert.True(t, (&Schedule{NextRun: now.Add(-time.Second)}).Due(now))
	assert.False(t, (&Schedule{NextRun: now.Add(time.Second)}).Due(now))
}

func TestSchedule_Advance(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Minute)
	s := &Schedule{Mode: ModeIncremental, Interval: time.Hour}

	s.Advance(&ScheduledRun{StartedAt: start, EndedAt: end, Stats: SyncStats{ProgressionsInserted: 12}})
	assert.Equal(t, start, s.LastRun)
	assert.Equal(t, end.Add(time.Hour), s.NextRun)
	assert.Equal(t, end, s.LastSuccess)
	assert.Equal(t, 12, s.LastInserted)
	assert.Empty(t, s.LastError)

	later := end.Add(time.Hour)
	s.Advance(&ScheduledRun{StartedAt: later, EndedAt: later.Add(time.Second), Error: "fetch failed: 502"})
	assert.Equal(t, "fetch failed: 502", s.LastError)
	assert.Equal(t, end, s.LastSuccess, "a failed run keeps the last success")
	assert.Equal(t, 12, s.LastInserted)
	assert.Equal(t, later.Add(time.Second+time.Hour), s.NextRun)
}

func TestScheduledRun(t *testing.T) {
	start := time.Now()
	run := ScheduledRun{Mode: ModeFull, StartedAt: start, EndedAt: start.Add(90 * time.Second)}

	assert.True(t, run.Succeeded())
	assert.Equal(t, 90*time.Second, run.Duration())

	run.Error = "auth failed"
	assert.False(t, run.Succeeded())
}
