// Package domain defines the core business entities for the cohort tracker.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Class: A provider class (cohort) that can be activated for syncing
//   - Student, Assignment: Per-class records keyed by (id, class_id)
//   - Progression: A single completion record from the provider feed
//   - SyncStats, SyncHistoryEntry: Sync accounting and provenance
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
