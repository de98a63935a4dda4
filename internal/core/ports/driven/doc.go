// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - LmsProvider: Authenticates against and reads from a learning-management API
//   - ClassStore: Class persistence and activation state
//   - CohortStore: Student, assignment and progression persistence (upsert/dedup surface)
//   - SyncHistoryStore: Append-only page provenance
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - SchedulerStore: Only needed when running the background scheduler.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
