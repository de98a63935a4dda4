package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cohort-tracker/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/cohort-tracker/internal/connectors/openclass"
	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
	"github.com/custodia-labs/cohort-tracker/internal/core/ports/driven"
	"github.com/custodia-labs/cohort-tracker/internal/core/services"
	"github.com/custodia-labs/cohort-tracker/internal/logger"
)

// wireServices opens config and storage and builds the core services.
// Missing credentials do not fail wiring: commands that never reach the
// provider keep working, and the others report how to fix it.
func wireServices(cmd *cobra.Command) error {
	cfgStore, err := openConfigStore()
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	s := loadSettings(cfgStore)
	if keepGoing {
		s.Sync.ContinueOnError = true
	}

	store, err := sqlite.NewStore(s.DataDir)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	logger.Debug("database: %s", store.Path())

	var provider driven.LmsProvider
	client, err := openclass.NewClient(s.OpenClass)
	if err != nil {
		logger.Debug("provider unavailable: %v", err)
		provider = unconfiguredProvider{err: err}
	} else {
		provider = openclass.NewBreakerProvider(client)
	}

	classes := services.NewClassService(provider, store.ClassStore())
	engine := services.NewSyncEngine(provider, store.ClassStore(), store.CohortStore(), store.SyncHistoryStore(), s.Sync)

	configStore = cfgStore
	classService = classes
	statusService = services.NewStatusService(classes, store.CohortStore(), store.SyncHistoryStore())
	rosterService = services.NewRosterService(store.CohortStore())
	syncEngine = engine
	scheduler = services.NewScheduler(s.Scheduler, store.SchedulerStore(), engine)

	teardownServices = func() error {
		teardownServices = func() error { return nil }
		return store.Close()
	}

	logger.Debug("wired %s for %s", provider.Name(), cmd.CommandPath())
	return nil
}

// rewire closes the current services and wires them again from fresh config.
func rewire(cmd *cobra.Command) error {
	if err := teardownServices(); err != nil {
		return err
	}
	return setupServices(cmd)
}

// unconfiguredProvider stands in for the OpenClass client until credentials are set.
type unconfiguredProvider struct {
	err error
}

var _ driven.LmsProvider = unconfiguredProvider{}

func (unconfiguredProvider) Name() string { return "openclass" }

func (p unconfiguredProvider) Authenticate(context.Context) error {
	return fmt.Errorf("%w: %w (run 'cohort init' or set %s and %s)", domain.ErrAuth, p.err, envEmail, envPassword)
}

func (p unconfiguredProvider) FetchClasses(ctx context.Context) ([]domain.Class, error) {
	return nil, p.Authenticate(ctx)
}

func (p unconfiguredProvider) FetchClassStructure(ctx context.Context, _ string) (domain.SectionMap, error) {
	return nil, p.Authenticate(ctx)
}

func (p unconfiguredProvider) FetchProgressions(ctx context.Context, _ string, _ int) (*domain.ProgressionPage, error) {
	return nil, p.Authenticate(ctx)
}

// describeError turns core errors into operator hints.
func describeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuth):
		return "authentication failed: check credentials with 'cohort config show'"
	case errors.Is(err, domain.ErrStorage):
		return "local database error"
	case errors.Is(err, domain.ErrPageLimitExceeded):
		return "provider kept reporting more pages; raise sync.max_pages if this is expected"
	case errors.Is(err, domain.ErrFetch):
		return "provider request failed; re-running the sync is safe"
	case errors.Is(err, domain.ErrNotFound):
		return "class not found: run 'cohort class list'"
	default:
		return ""
	}
}
