package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
	"github.com/custodia-labs/cohort-tracker/internal/core/ports/driven"
	"github.com/custodia-labs/cohort-tracker/internal/core/ports/driving"
	"github.com/custodia-labs/cohort-tracker/internal/logger"
)

// Ensure ClassService implements the interface.
var _ driving.ClassService = (*ClassService)(nil)

// ClassService manages the local class catalogue.
type ClassService struct {
	provider driven.LmsProvider
	classes  driven.ClassStore
}

// NewClassService creates a class service. provider may be nil when only
// local operations are needed; Discover then fails.
func NewClassService(provider driven.LmsProvider, classes driven.ClassStore) *ClassService {
	return &ClassService{provider: provider, classes: classes}
}

// Discover fetches the provider's classes and stores unknown ones as inactive.
// Known classes keep their activation flag and last sync time.
func (s *ClassService) Discover(ctx context.Context) ([]domain.Class, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("discover classes: provider not configured")
	}
	if err := s.provider.Authenticate(ctx); err != nil {
		return nil, asAuthError(err)
	}

	remote, err := s.provider.FetchClasses(ctx)
	if err != nil {
		return nil, asFetchError(fmt.Errorf("list classes: %w", err))
	}

	for _, class := range remote {
		class.IsActive = false
		class.SyncedAt = nil
		if err := s.classes.Save(ctx, class); err != nil {
			return nil, fmt.Errorf("%w: save class %s: %w", domain.ErrStorage, class.ID, err)
		}
	}
	logger.Info("Discovered %d classes from %s", len(remote), s.provider.Name())

	return s.classes.List(ctx)
}

// List returns all locally known classes.
func (s *ClassService) List(ctx context.Context) ([]domain.Class, error) {
	return s.classes.List(ctx)
}

// Resolve looks a class up by friendly id, then by provider id.
func (s *ClassService) Resolve(ctx context.Context, ref string) (*domain.Class, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: empty class reference", domain.ErrInvalidInput)
	}
	class, err := s.classes.GetByFriendlyID(ctx, ref)
	if err == nil {
		return class, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	class, err = s.classes.Get(ctx, ref)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("class %q: %w", ref, domain.ErrNotFound)
	}
	return class, err
}

// Activate includes a class in SyncAll runs.
func (s *ClassService) Activate(ctx context.Context, ref string) (*domain.Class, error) {
	return s.setActive(ctx, ref, true)
}

// Deactivate excludes a class from SyncAll runs. Cached data is kept.
func (s *ClassService) Deactivate(ctx context.Context, ref string) (*domain.Class, error) {
	return s.setActive(ctx, ref, false)
}

func (s *ClassService) setActive(ctx context.Context, ref string, active bool) (*domain.Class, error) {
	class, err := s.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.classes.SetActive(ctx, class.ID, active); err != nil {
		return nil, err
	}
	class.IsActive = active
	return class, nil
}
