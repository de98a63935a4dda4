package driven

import (
	"context"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
)

// LmsProvider is the capability set of a remote learning-management system.
// Implementations return decoded domain values; transport details such as
// envelope encoding stay inside the adapter.
type LmsProvider interface {
	// Name returns the provider name for logs and status output.
	Name() string

	// Authenticate exchanges credentials for a session token.
	// Must be called before any other operation. Calling it again replaces the token.
	// Returns an error wrapping domain.ErrAuth when credentials are rejected
	// or no token can be read from the response.
	Authenticate(ctx context.Context) error

	// FetchClasses lists the classes visible to the authenticated account.
	// Returned classes are inactive and unsynced.
	FetchClasses(ctx context.Context) ([]domain.Class, error)

	// FetchClassStructure returns the assignment id to section name mapping.
	// Callers treat failure as non-fatal.
	FetchClassStructure(ctx context.Context, classID string) (domain.SectionMap, error)

	// FetchProgressions fetches one zero-indexed page of completion records.
	// Records are not guaranteed unique across pages; callers deduplicate by id.
	FetchProgressions(ctx context.Context, classID string, page int) (*domain.ProgressionPage, error)
}
