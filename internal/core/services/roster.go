package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
	"github.com/custodia-labs/cohort-tracker/internal/core/ports/driven"
	"github.com/custodia-labs/cohort-tracker/internal/core/ports/driving"
	"github.com/custodia-labs/cohort-tracker/internal/logger"
)

// Ensure RosterService implements the interface.
var _ driving.RosterService = (*RosterService)(nil)

// RosterService is the only writer of student region and night tags.
// Sync never touches them.
type RosterService struct {
	cohort driven.CohortStore
}

// NewRosterService creates a roster service.
func NewRosterService(cohort driven.CohortStore) *RosterService {
	return &RosterService{cohort: cohort}
}

// TagStudent matches names case-insensitively after trimming.
// An empty region or night clears that tag.
func (s *RosterService) TagStudent(ctx context.Context, firstName, lastName, region, night string) error {
	firstName, lastName = strings.TrimSpace(firstName), strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return fmt.Errorf("%w: first and last name are required", domain.ErrInvalidInput)
	}

	changed, err := s.cohort.UpdateStudentRoster(ctx, firstName, lastName,
		strings.TrimSpace(region), strings.TrimSpace(night))
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	if !changed {
		return fmt.Errorf("student %s %s: %w", firstName, lastName, domain.ErrNotFound)
	}

	logger.Debug("roster: tagged %s %s region=%q night=%q", firstName, lastName, region, night)
	return nil
}
