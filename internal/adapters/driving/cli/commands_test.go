package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cohort-tracker/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
)

func TestVersionCmd_SkipsSetup(t *testing.T) {
	env := setupCLITest(t)
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := execute(t, "", "version")

	require.NoError(t, err)
	assert.Contains(t, out, "cohort version test-version-1.0.0")
	assert.Zero(t, env.wired)
}

func TestInitCmd_WithFlags(t *testing.T) {
	env := setupCLITest(t)

	out, err := execute(t, "", "init", "--email", "mentor@example.com", "--password", "hunter22", "--api-base", "http://localhost:1")

	require.NoError(t, err)
	assert.Equal(t, "mentor@example.com", env.config.GetString(keyEmail))
	assert.Equal(t, "hunter22", env.config.GetString(keyPassword))
	assert.Equal(t, "http://localhost:1", env.config.GetString(keyAPIBase))
	assert.Contains(t, out, "sd-2025")
	assert.Contains(t, out, "da-2025")
	assert.Equal(t, 2, env.wired, "services are rebuilt once credentials exist")

	classes, err := env.classes.List(context.Background())
	require.NoError(t, err)
	require.Len(t, classes, 2)
	for _, c := range classes {
		assert.False(t, c.IsActive, "discovered classes start inactive")
	}
}

func TestInitCmd_PromptsForMissingValues(t *testing.T) {
	env := setupCLITest(t)

	_, err := execute(t, "mentor@example.com\nsecret-pass\n", "init")

	require.NoError(t, err)
	assert.Equal(t, "mentor@example.com", env.config.GetString(keyEmail))
	assert.Equal(t, "secret-pass", env.config.GetString(keyPassword))
}

func TestInitCmd_RequiresEmail(t *testing.T) {
	env := setupCLITest(t)

	_, err := execute(t, "\n", "init")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "email is required")
	assert.Empty(t, env.config.GetString(keyEmail))
}

func TestInitCmd_DiscoveryAuthFailure(t *testing.T) {
	env := setupCLITest(t)
	env.provider.authErr = fmt.Errorf("%w: bad password", domain.ErrAuth)

	out, err := execute(t, "", "init", "--email", "mentor@example.com", "--password", "wrong")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAuth)
	assert.Contains(t, out, "authentication failed")
	assert.Equal(t, "mentor@example.com", env.config.GetString(keyEmail), "config is kept for a retry")
}

func TestClassCmd_ListEmpty(t *testing.T) {
	setupCLITest(t)

	out, err := execute(t, "", "class", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No classes yet")
}

func TestClassCmd_ActivateDeactivate(t *testing.T) {
	env := setupCLITest(t)
	env.seedActive(t)
	ctx := context.Background()

	out, err := execute(t, "", "class", "activate", "sd-2025")
	require.NoError(t, err)
	assert.Contains(t, out, "Class sd-2025 (Software Dev) activated.")

	c, err := env.classes.Get(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, c.IsActive)

	out, err = execute(t, "", "class", "deactivate", "c1")
	require.NoError(t, err)
	assert.Contains(t, out, "deactivated")

	c, err = env.classes.Get(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, c.IsActive)
}

func TestClassCmd_ActivateUnknown(t *testing.T) {
	env := setupCLITest(t)
	env.seedActive(t)

	_, err := execute(t, "", "class", "activate", "nope")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClassCmd_ListShowsActiveFlag(t *testing.T) {
	env := setupCLITest(t)
	env.seedActive(t, "c2")

	out, err := execute(t, "", "class")

	require.NoError(t, err)
	assert.Regexp(t, `da-2025\s+yes\s+never\s+Data Analysis`, out)
	assert.Regexp(t, `sd-2025\s+no\s+never\s+Software Dev`, out)
}

func TestClassCmd_Discover(t *testing.T) {
	env := setupCLITest(t)

	out, err := execute(t, "", "class", "discover")

	require.NoError(t, err)
	assert.Contains(t, out, "Software Dev")
	classes, err := env.classes.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, classes, 2)
}

func TestSyncCmd_NoActiveClasses(t *testing.T) {
	setupCLITest(t)

	out, err := execute(t, "", "sync")

	require.NoError(t, err)
	assert.Contains(t, out, "No active classes")
}

func TestSyncCmd_AllActive(t *testing.T) {
	env := setupCLITest(t)
	env.seedActive(t, "c1", "c2")
	env.provider.pages["c1"] = []domain.ProgressionPage{{
		Records:     []domain.ProgressionRecord{progression("p1", "s1", "a1"), progression("p2", "s2", "a1")},
		CanLoadMore: false,
	}}
	env.provider.pages["c2"] = []domain.ProgressionPage{{
		Records: []domain.ProgressionRecord{progression("p3", "s1", "a9")},
	}}

	out, err := execute(t, "", "sync")

	require.NoError(t, err)
	assert.Contains(t, out, "Synchronising all active classes (incremental)")
	assert.Regexp(t, `Classes synced:\s+2`, out)
	assert.Regexp(t, `New progressions:\s+3`, out)

	p, ok := env.cohort.Progression("p1")
	require.True(t, ok)
	assert.Equal(t, "c1", p.ClassID)
	a, ok := env.cohort.Assignment("a1", "c1")
	require.True(t, ok)
	require.NotNil(t, a.Section)
	assert.Equal(t, "Week 1", *a.Section)
}

func TestSyncCmd_SingleClassFull(t *testing.T) {
	env := setupCLITest(t)
	env.seedActive(t)
	env.provider.pages["c1"] = []domain.ProgressionPage{
		{Records: []domain.ProgressionRecord{progression("p1", "s1", "a1")}, CanLoadMore: true},
		{Records: []domain.ProgressionRecord{progression("p1", "s1", "a1")}, CanLoadMore: true},
	}

	out, err := execute(t, "", "sync", "sd-2025", "--full")

	require.NoError(t, err)
	assert.Contains(t, out, "Synchronising Software Dev (sd-2025, full)")
	assert.Regexp(t, `Pages fetched:\s+3`, out)
	assert.Regexp(t, `Duplicates skipped:\s+1`, out)
	assert.Regexp(t, `New progressions:\s+1`, out)
}

func TestSyncCmd_UnknownClass(t *testing.T) {
	setupCLITest(t)

	_, err := execute(t, "", "sync", "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncCmd_AuthFailure(t *testing.T) {
	env := setupCLITest(t)
	env.seedActive(t, "c1")
	env.provider.authErr = fmt.Errorf("%w: rejected", domain.ErrAuth)

	out, err := execute(t, "", "sync")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAuth)
	assert.Contains(t, out, "authentication failed")
	counts, cerr := env.cohort.Counts(context.Background(), "c1")
	require.NoError(t, cerr)
	assert.Zero(t, counts.Progressions)
}

func TestStatusCmd_Overview(t *testing.T) {
	env := setupCLITest(t)
	env.seedActive(t, "c1")
	env.provider.pages["c1"] = []domain.ProgressionPage{{
		Records: []domain.ProgressionRecord{progression("p1", "s1", "a1"), progression("p2", "s2", "a2")},
	}}
	_, err := execute(t, "", "sync")
	require.NoError(t, err)

	out, err := execute(t, "", "status")

	require.NoError(t, err)
	assert.Regexp(t, `sd-2025\s+yes\s+2\s+2\s+2`, out)
	assert.Regexp(t, `da-2025\s+no\s+0\s+0\s+0\s+never`, out)
	assert.Contains(t, out, "Last page fetched:")
	assert.NotContains(t, out, "Last page fetched: never")
}

func TestStatusCmd_ClassHistory(t *testing.T) {
	env := setupCLITest(t)
	env.seedActive(t, "c1")
	env.provider.pages["c1"] = []domain.ProgressionPage{
		{Records: []domain.ProgressionRecord{progression("p1", "s1", "a1")}, CanLoadMore: true},
		{Records: []domain.ProgressionRecord{progression("p2", "s1", "a1")}},
	}
	_, err := execute(t, "", "sync")
	require.NoError(t, err)

	out, err := execute(t, "", "status", "sd-2025", "--history", "1")

	require.NoError(t, err)
	assert.Contains(t, out, "Sync history for sd-2025")
	assert.Regexp(t, `\s1\s+1\n`, out, "newest page first")
	assert.NotRegexp(t, `\s0\s+1\n`, out)
}

func TestStatusCmd_ClassNeverSynced(t *testing.T) {
	env := setupCLITest(t)
	env.seedActive(t)

	out, err := execute(t, "", "status", "c2")

	require.NoError(t, err)
	assert.Contains(t, out, "(never synced)")
}

func TestConfigCmd_SetAndShow(t *testing.T) {
	env := setupCLITest(t)
	t.Setenv(envEmail, "")
	t.Setenv(envPassword, "")
	t.Setenv(envAPIBase, "")

	_, err := execute(t, "", "config", "set", keyEmail, "mentor@example.com")
	require.NoError(t, err)
	out, err := execute(t, "", "config", "set", keyPassword, "very-long-password")
	require.NoError(t, err)
	assert.Contains(t, out, "very...word")
	_, err = execute(t, "", "config", "set", keyMaxPages, "25")
	require.NoError(t, err)

	out, err = execute(t, "", "config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "mentor@example.com")
	assert.NotContains(t, out, "very-long-password")
	assert.Regexp(t, `Max pages:\s+25`, out)
	assert.Equal(t, "25", env.config.GetString(keyMaxPages))
}

func TestConfigCmd_SetUnknownKey(t *testing.T) {
	setupCLITest(t)

	_, err := execute(t, "", "config", "set", "openclass.colour", "blue")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestScheduleCmd_NotConfigured(t *testing.T) {
	env := setupCLITest(t)
	env.schedules = nil

	_, err := execute(t, "", "schedule")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheduler not configured")
}

func TestLoadSettings_Defaults(t *testing.T) {
	t.Setenv(envEmail, "")
	t.Setenv(envPassword, "")
	t.Setenv(envAPIBase, "")

	s := loadSettings(memory.NewConfigStore())

	assert.Equal(t, "https://api.openclass.ai", s.OpenClass.APIBase)
	assert.Equal(t, 30*time.Second, s.OpenClass.Timeout)
	assert.Equal(t, 200, s.OpenClass.PageSize)
	assert.Equal(t, 500*time.Millisecond, s.Sync.PageDelay)
	assert.Equal(t, 500*time.Millisecond, s.OpenClass.RequestInterval)
	assert.Equal(t, 10000, s.Sync.MaxPages)
	assert.False(t, s.Sync.ContinueOnError)
	assert.Equal(t, time.Hour, s.Scheduler.Interval(domain.ModeIncremental))
	assert.Equal(t, 24*time.Hour, s.Scheduler.Interval(domain.ModeFull))
	assert.Error(t, s.OpenClass.Validate(), "credentials are required")
}

func TestLoadSettings_FileAndEnvironment(t *testing.T) {
	store := memory.NewConfigStore()
	require.NoError(t, store.Set(keyEmail, "file@example.com"))
	require.NoError(t, store.Set(keyPassword, "from-file"))
	require.NoError(t, store.Set(keyTimeoutSeconds, 5))
	require.NoError(t, store.Set(keyPageDelayMS, 0))
	require.NoError(t, store.Set(keyMaxPages, "50"))
	require.NoError(t, store.Set(keyContinueOnError, true))
	require.NoError(t, store.Set(keyIncrementalMins, 15))
	require.NoError(t, store.Set(keyFullMins, -1))
	require.NoError(t, store.Set(keyDatabaseDir, "/tmp/cohort"))
	t.Setenv(envEmail, "env@example.com")
	t.Setenv(envPassword, "")
	t.Setenv(envAPIBase, "https://staging.example.com")

	s := loadSettings(store)

	assert.Equal(t, "env@example.com", s.OpenClass.Email)
	assert.Equal(t, "from-file", s.OpenClass.Password)
	assert.Equal(t, "https://staging.example.com", s.OpenClass.APIBase)
	assert.Equal(t, 5*time.Second, s.OpenClass.Timeout)
	assert.Zero(t, s.Sync.PageDelay)
	assert.Zero(t, s.OpenClass.RequestInterval)
	assert.Equal(t, 50, s.Sync.MaxPages)
	assert.True(t, s.Sync.ContinueOnError)
	assert.Equal(t, 15*time.Minute, s.Scheduler.Interval(domain.ModeIncremental))
	assert.False(t, s.Scheduler.Enabled(domain.ModeFull))
	assert.Equal(t, "/tmp/cohort", s.DataDir)
	assert.NoError(t, s.OpenClass.Validate())
}

func TestUnconfiguredProvider(t *testing.T) {
	p := unconfiguredProvider{err: errors.New("email is required")}
	ctx := context.Background()

	err := p.Authenticate(ctx)
	assert.ErrorIs(t, err, domain.ErrAuth)
	assert.Contains(t, err.Error(), "cohort init")

	_, err = p.FetchProgressions(ctx, "c1", 0)
	assert.ErrorIs(t, err, domain.ErrAuth)
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: x", domain.ErrAuth), "authentication failed"},
		{fmt.Errorf("%w: %w", domain.ErrFetch, domain.ErrPageLimitExceeded), "sync.max_pages"},
		{fmt.Errorf("%w: x", domain.ErrFetch), "re-running the sync is safe"},
		{fmt.Errorf("%w: x", domain.ErrStorage), "local database error"},
		{errors.New("other"), ""},
	}

	for _, tt := range tests {
		if tt.want == "" {
			assert.Empty(t, describeError(tt.err))
			continue
		}
		assert.Contains(t, describeError(tt.err), tt.want)
	}
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", maskSecret(""))
	assert.Equal(t, "****", maskSecret("12345678"))
	assert.Equal(t, "sk-1...cdef", maskSecret("sk-1234567890abcdef"))
}

func TestStudentTagCmd(t *testing.T) {
	env := setupCLITest(t)
	env.seedActive(t, "c1")
	env.provider.pages["c1"] = []domain.ProgressionPage{{
		Records: []domain.ProgressionRecord{progression("p1", "s1", "a1")},
	}}
	_, err := execute(t, "", "sync")
	require.NoError(t, err)

	out, err := execute(t, "", "student", "tag", "ada", "LOVELACE", "--region", "north", "--night", "tuesday")

	require.NoError(t, err)
	assert.Contains(t, out, "Tagged ada LOVELACE: region=north night=tuesday")
	st, ok := env.cohort.Student("s1", "c1")
	require.True(t, ok)
	require.NotNil(t, st.Region)
	require.NotNil(t, st.Night)
	assert.Equal(t, "north", *st.Region)
	assert.Equal(t, "tuesday", *st.Night)
}

func TestStudentTagCmd_Errors(t *testing.T) {
	setupCLITest(t)

	_, err := execute(t, "", "student", "tag", "Ada", "Lovelace")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = execute(t, "", "student", "tag", "Ada", "Lovelace", "--region", "north")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no stored student named Ada Lovelace")
}

func TestScheduleStatusCmd(t *testing.T) {
	env := setupCLITest(t)
	ctx := context.Background()
	start := time.Date(2025, 3, 1, 2, 0, 0, 0, time.Local)

	require.NoError(t, env.schedules.SaveSchedule(ctx, &domain.Schedule{
		Mode:         domain.ModeIncremental,
		Interval:     time.Hour,
		NextRun:      start.Add(time.Hour),
		LastRun:      start,
		LastSuccess:  start.Add(time.Minute),
		LastInserted: 12,
	}))
	require.NoError(t, env.schedules.SaveSchedule(ctx, &domain.Schedule{
		Mode:      domain.ModeFull,
		Interval:  24 * time.Hour,
		LastError: "full sync: class da-2025: fetch failed",
	}))
	require.NoError(t, env.schedules.RecordRun(ctx, &domain.ScheduledRun{
		Mode:      domain.ModeIncremental,
		StartedAt: start,
		EndedAt:   start.Add(time.Minute),
		Stats:     domain.SyncStats{ClassesSynced: 2, ProgressionsInserted: 12, DuplicateRecords: 200},
	}))

	out, err := execute(t, "", "schedule", "status")

	require.NoError(t, err)
	assert.Contains(t, out, "incremental sync, every 1h0m0s")
	assert.Contains(t, out, "Last success:  2025-03-01 02:01 (12 new)")
	assert.Regexp(t, `2025-03-01 02:00  ok\s+2 classes\s+12 new\s+200 dup  1m0s`, out)
	assert.Contains(t, out, "full sync, every 24h0m0s")
	assert.Contains(t, out, "Next run:      never")
	assert.Contains(t, out, "Last error:    full sync: class da-2025: fetch failed")
}

func TestScheduleStatusCmd_Empty(t *testing.T) {
	setupCLITest(t)

	out, err := execute(t, "", "schedule", "status")

	require.NoError(t, err)
	assert.Contains(t, out, "No schedules yet")
}
