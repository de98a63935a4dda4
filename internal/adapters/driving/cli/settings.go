package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cohort-tracker/internal/adapters/driven/config/file"
	"github.com/custodia-labs/cohort-tracker/internal/connectors/openclass"
	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
	"github.com/custodia-labs/cohort-tracker/internal/core/ports/driven"
)

// Configuration keys.
const (
	keyEmail           = "openclass.email"
	keyPassword        = "openclass.password"
	keyAPIBase         = "openclass.api_base"
	keyAppID           = "openclass.app_id"
	keyOrigin          = "openclass.origin"
	keyTimeoutSeconds  = "openclass.timeout_seconds"
	keyPageSize        = "openclass.page_size"
	keyPageDelayMS     = "sync.page_delay_ms"
	keyMaxPages        = "sync.max_pages"
	keyContinueOnError = "sync.continue_on_error"
	keyIncrementalMins = "scheduler.incremental_interval"
	keyFullMins        = "scheduler.full_interval"
	keyDatabaseDir     = "database.dir"
)

// Environment overrides.
const (
	envEmail    = "COHORT_EMAIL"
	envPassword = "COHORT_PASSWORD"
	envAPIBase  = "COHORT_API_BASE"
)

// knownKeys lists the keys accepted by 'cohort config set'.
var knownKeys = []string{
	keyEmail, keyPassword, keyAPIBase, keyAppID, keyOrigin, keyTimeoutSeconds, keyPageSize,
	keyPageDelayMS, keyMaxPages, keyContinueOnError, keyIncrementalMins, keyFullMins, keyDatabaseDir,
}

// settings is the typed view of the config file plus environment overrides.
type settings struct {
	OpenClass openclass.Config
	Sync      domain.SyncOptions
	Scheduler domain.SchedulerConfig
	DataDir   string
}

// loadSettings reads every known key, falling back to defaults for unset ones.
func loadSettings(store driven.ConfigStore) settings {
	s := settings{
		OpenClass: openclass.DefaultConfig(),
		Sync:      domain.DefaultSyncOptions(),
		Scheduler: domain.DefaultSchedulerConfig(),
	}

	s.OpenClass.Email = firstNonEmpty(os.Getenv(envEmail), store.GetString(keyEmail))
	s.OpenClass.Password = firstNonEmpty(os.Getenv(envPassword), store.GetString(keyPassword))
	s.OpenClass.APIBase = firstNonEmpty(os.Getenv(envAPIBase), store.GetString(keyAPIBase), s.OpenClass.APIBase)
	s.OpenClass.AppID = firstNonEmpty(store.GetString(keyAppID), s.OpenClass.AppID)
	s.OpenClass.Origin = firstNonEmpty(store.GetString(keyOrigin), s.OpenClass.Origin)
	if v := store.GetInt(keyTimeoutSeconds); v > 0 {
		s.OpenClass.Timeout = time.Duration(v) * time.Second
	}
	if v := store.GetInt(keyPageSize); v > 0 {
		s.OpenClass.PageSize = v
	}

	if _, ok := store.Get(keyPageDelayMS); ok {
		s.Sync.PageDelay = time.Duration(max(store.GetInt(keyPageDelayMS), 0)) * time.Millisecond
	}
	// The client-side limiter paces requests at the same rate as the engine.
	s.OpenClass.RequestInterval = s.Sync.PageDelay
	if _, ok := store.Get(keyMaxPages); ok {
		s.Sync.MaxPages = max(store.GetInt(keyMaxPages), 0)
	}
	s.Sync.ContinueOnError = store.GetBool(keyContinueOnError)

	s.Scheduler.Incremental = minutes(s.Scheduler.Incremental, store.GetInt(keyIncrementalMins))
	s.Scheduler.Full = minutes(s.Scheduler.Full, store.GetInt(keyFullMins))

	s.DataDir = store.GetString(keyDatabaseDir)
	if s.DataDir == "" && configDir != "" {
		s.DataDir = filepath.Join(configDir, "data")
	}

	return s
}

// minutes converts a configured interval in minutes. Zero keeps def and a
// negative value disables the mode.
func minutes(def time.Duration, v int) time.Duration {
	switch {
	case v == 0:
		return def
	case v < 0:
		return 0
	default:
		return time.Duration(v) * time.Minute
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
	Long: `View and edit ~/.cohort-tracker/config.toml.

Environment variables COHORT_EMAIL, COHORT_PASSWORD and COHORT_API_BASE
override the file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	s := loadSettings(configStore)

	cmd.Printf("Config file: %s\n\n", configStore.Path())
	cmd.Println("OpenClass")
	cmd.Printf("  Email:       %s\n", orNotSet(s.OpenClass.Email))
	cmd.Printf("  Password:    %s\n", maskSecret(s.OpenClass.Password))
	cmd.Printf("  API base:    %s\n", s.OpenClass.APIBase)
	cmd.Printf("  Timeout:     %s\n", s.OpenClass.Timeout)
	cmd.Printf("  Page size:   %d\n", s.OpenClass.PageSize)
	cmd.Println("Sync")
	cmd.Printf("  Page delay:  %s\n", s.Sync.PageDelay)
	cmd.Printf("  Max pages:   %d\n", s.Sync.MaxPages)
	cmd.Printf("  Keep going:  %t\n", s.Sync.ContinueOnError)
	cmd.Println("Scheduler")

	for _, mode := range domain.SyncModes {
		label := string(mode) + ":"
		if !s.Scheduler.Enabled(mode) {
			cmd.Printf("  %-13s disabled\n", label)
			continue
		}
		cmd.Printf("  %-13s every %s\n", label, s.Scheduler.Interval(mode))
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, value := args[0], args[1]
	if !slices.Contains(knownKeys, key) {
		return fmt.Errorf("%w: unknown key %q (known: %s)", domain.ErrInvalidInput, key, strings.Join(knownKeys, ", "))
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	if key == keyPassword {
		value = maskSecret(value)
	}
	cmd.Printf("%s = %s\n", key, value)
	return nil
}

// openConfigStore opens the TOML store in the selected directory.
func openConfigStore() (*file.ConfigStore, error) {
	return file.NewConfigStore(configDir)
}

// Helper functions.

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// maskSecret shows the first and last four characters of long secrets.
func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
