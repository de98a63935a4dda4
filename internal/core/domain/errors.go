package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSyncInProgress indicates a sync is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// Sync Errors.

	// ErrAuth indicates the provider rejected the credentials or the
	// login response carried no token. Fatal for the whole run.
	ErrAuth = errors.New("authentication failed")

	// ErrNotAuthenticated indicates a provider call was made before Authenticate.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrFetch indicates a network failure, a non-2xx response or a malformed
	// page payload. Fatal for the class being synced.
	ErrFetch = errors.New("fetch failed")

	// ErrPageLimitExceeded indicates the provider kept reporting more pages
	// beyond the configured ceiling. Always wrapped together with ErrFetch.
	ErrPageLimitExceeded = errors.New("page limit exceeded")

	// ErrStorage indicates a local write or read failure. Fatal for the run.
	ErrStorage = errors.New("storage failure")
)

// IsFatalForRun reports whether err must abort a multi-class run even
// when the caller asked to continue past failing classes.
func IsFatalForRun(err error) bool {
	return errors.Is(err, ErrAuth) || errors.Is(err, ErrStorage)
}
