package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cohort-tracker/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
	"github.com/custodia-labs/cohort-tracker/internal/core/ports/driven"
	"github.com/custodia-labs/cohort-tracker/internal/core/services"
)

// fakeProvider serves fixed classes and pages.
type fakeProvider struct {
	authErr error
	classes []domain.Class
	pages   map[string][]domain.ProgressionPage
}

var _ driven.LmsProvider = (*fakeProvider)(nil)

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Authenticate(context.Context) error { return p.authErr }

func (p *fakeProvider) FetchClasses(context.Context) ([]domain.Class, error) {
	return p.classes, nil
}

func (p *fakeProvider) FetchClassStructure(context.Context, string) (domain.SectionMap, error) {
	return domain.SectionMap{"a1": "Week 1"}, nil
}

func (p *fakeProvider) FetchProgressions(_ context.Context, classID string, page int) (*domain.ProgressionPage, error) {
	pages := p.pages[classID]
	if page >= len(pages) {
		return &domain.ProgressionPage{}, nil
	}
	return &pages[page], nil
}

func progression(id, studentID, assignmentID string) domain.ProgressionRecord {
	return domain.ProgressionRecord{
		ID:          id,
		Student:     domain.Student{ID: studentID, FirstName: "Ada", LastName: "Lovelace"},
		Assignment:  domain.Assignment{ID: assignmentID, Name: "Intro", Type: "lesson"},
		StartedAt:   "2025-01-01T00:00:00Z",
		CompletedAt: "2025-01-02T00:00:00Z",
	}
}

// testEnv wires real services over in-memory stores.
type testEnv struct {
	provider *fakeProvider
	config   *memory.ConfigStore
	classes  *memory.ClassStore
	cohort   *memory.CohortStore
	history  *memory.SyncHistoryStore

	// schedules backs the scheduler; nil leaves it unconfigured.
	schedules *memory.ScheduleStore
	wired     int
}

func setupCLITest(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		provider: &fakeProvider{
			classes: []domain.Class{
				{ID: "c1", Name: "Software Dev", FriendlyID: "sd-2025"},
				{ID: "c2", Name: "Data Analysis", FriendlyID: "da-2025"},
			},
			pages: map[string][]domain.ProgressionPage{},
		},
		config:    memory.NewConfigStore(),
		classes:   memory.NewClassStore(),
		cohort:    memory.NewCohortStore(),
		history:   memory.NewSyncHistoryStore(),
		schedules: memory.NewScheduleStore(),
	}

	oldSetup, oldTeardown := setupServices, teardownServices
	oldConfig, oldClass, oldStatus, oldEngine, oldScheduler := configStore, classService, statusService, syncEngine, scheduler
	oldRoster := rosterService

	setupServices = func(*cobra.Command) error {
		env.wired++
		opts := domain.SyncOptions{MaxPages: 100, ContinueOnError: keepGoing}
		classes := services.NewClassService(env.provider, env.classes)
		engine := services.NewSyncEngine(env.provider, env.classes, env.cohort, env.history, opts)
		configStore = env.config
		classService = classes
		statusService = services.NewStatusService(classes, env.cohort, env.history)
		rosterService = services.NewRosterService(env.cohort)
		syncEngine = engine
		scheduler = nil
		if env.schedules != nil {
			scheduler = services.NewScheduler(domain.DefaultSchedulerConfig(), env.schedules, engine)
		}
		return nil
	}
	teardownServices = func() error { return nil }

	t.Cleanup(func() {
		setupServices, teardownServices = oldSetup, oldTeardown
		configStore, classService, statusService, syncEngine, scheduler = oldConfig, oldClass, oldStatus, oldEngine, oldScheduler
		rosterService = oldRoster
		tagRegion, tagNight = "", ""
		fullSync, keepGoing = false, false
		historyLimit = 10
		initEmail, initPassword, initAPIBase = "", "", ""
		metricsAddr = ""
		statusRuns = 5
	})

	return env
}

// seedActive stores the provider classes locally and activates the given refs.
func (env *testEnv) seedActive(t *testing.T, ids ...string) {
	t.Helper()
	ctx := context.Background()
	for _, c := range env.provider.classes {
		require.NoError(t, env.classes.Save(ctx, c))
	}
	for _, id := range ids {
		require.NoError(t, env.classes.SetActive(ctx, id, true))
	}
}

// execute runs the root command and returns combined output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
