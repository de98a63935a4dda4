package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
	"github.com/custodia-labs/cohort-tracker/internal/core/ports/driven"
	"github.com/custodia-labs/cohort-tracker/internal/core/ports/driving"
)

// Ensure StatusService implements the interface.
var _ driving.StatusService = (*StatusService)(nil)

// StatusService reports on the local cache.
type StatusService struct {
	classes *ClassService
	cohort  driven.CohortStore
	history driven.SyncHistoryStore
}

// NewStatusService creates a status service.
func NewStatusService(classes *ClassService, cohort driven.CohortStore, history driven.SyncHistoryStore) *StatusService {
	return &StatusService{classes: classes, cohort: cohort, history: history}
}

// Overview returns every known class with its cached row counts.
func (s *StatusService) Overview(ctx context.Context) ([]domain.ClassOverview, error) {
	classes, err := s.classes.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ClassOverview, 0, len(classes))
	for _, class := range classes {
		counts, err := s.cohort.Counts(ctx, class.ID)
		if err != nil {
			return nil, fmt.Errorf("counts for %s: %w", class.Ref(), err)
		}
		out = append(out, domain.ClassOverview{Class: class, Counts: counts})
	}
	return out, nil
}

// History returns recent sync history for a class.
func (s *StatusService) History(ctx context.Context, ref string, limit int) ([]domain.SyncHistoryEntry, error) {
	class, err := s.classes.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.history.ListHistory(ctx, class.ID, limit)
}

// LastSync returns the most recent page fetch time.
func (s *StatusService) LastSync(ctx context.Context) (*time.Time, error) {
	return s.history.LastSync(ctx)
}
