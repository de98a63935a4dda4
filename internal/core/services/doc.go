// Package services implements the driving port interfaces.
//
// SyncEngine pages the provider feed into the cohort store. ClassService and
// StatusService cover the class catalogue and cache reporting, RosterService
// applies roster tags, and Scheduler runs incremental and full syncs on an
// interval.
package services
