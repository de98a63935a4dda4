// Package sqlite provides the SQLite implementation of the cohort store ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. A single Store exposes several port implementations over one connection:
//
//   - ClassStore: class catalogue and activation flags
//   - CohortStore: students, assignments and progressions
//   - SyncHistoryStore: per-page provenance rows
//   - SchedulerStore: scheduled task state and results
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.cohort-tracker/data/cohort.db
//
// # Thread Safety
//
// The store holds exactly one open connection, so every statement is
// serialised through the same handle. Callers must not share the database
// file with another process while a sync runs.
package sqlite
