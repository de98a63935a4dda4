package openclass

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
	"github.com/custodia-labs/cohort-tracker/internal/core/ports/driven"
	"github.com/custodia-labs/cohort-tracker/internal/logger"
	"github.com/custodia-labs/cohort-tracker/internal/metrics"
)

const (
	// BreakerFailureThreshold is the consecutive failure count that opens the circuit.
	BreakerFailureThreshold = 5

	// BreakerOpenTimeout is how long the circuit stays open before a trial request.
	BreakerOpenTimeout = 30 * time.Second
)

// Verify interface compliance.
var _ driven.LmsProvider = (*BreakerProvider)(nil)

// BreakerProvider guards the fetch operations of an LmsProvider with a
// circuit breaker. Authenticate is passed through unguarded.
type BreakerProvider struct {
	inner driven.LmsProvider
	cb    *gobreaker.CircuitBreaker[any]
	name  string
}

// NewBreakerProvider wraps inner.
func NewBreakerProvider(inner driven.LmsProvider) *BreakerProvider {
	name := inner.Name() + "-api"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= BreakerFailureThreshold
		},
		// Auth failures and cancellations say nothing about API health.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, domain.ErrAuth) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker %s: %s -> %s", name, from, to)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &BreakerProvider{inner: inner, cb: cb, name: name}
}

// Name returns the wrapped provider's name.
func (b *BreakerProvider) Name() string {
	return b.inner.Name()
}

// Authenticate delegates directly to the wrapped provider.
func (b *BreakerProvider) Authenticate(ctx context.Context) error {
	return b.inner.Authenticate(ctx)
}

// FetchClasses delegates through the breaker.
func (b *BreakerProvider) FetchClasses(ctx context.Context) ([]domain.Class, error) {
	return execute(b, func() ([]domain.Class, error) {
		return b.inner.FetchClasses(ctx)
	})
}

// FetchClassStructure delegates through the breaker.
func (b *BreakerProvider) FetchClassStructure(ctx context.Context, classID string) (domain.SectionMap, error) {
	return execute(b, func() (domain.SectionMap, error) {
		return b.inner.FetchClassStructure(ctx, classID)
	})
}

// FetchProgressions delegates through the breaker.
func (b *BreakerProvider) FetchProgressions(ctx context.Context, classID string, page int) (*domain.ProgressionPage, error) {
	return execute(b, func() (*domain.ProgressionPage, error) {
		return b.inner.FetchProgressions(ctx, classID, page)
	})
}

// State returns the current breaker state.
func (b *BreakerProvider) State() gobreaker.State {
	return b.cb.State()
}

func execute[T any](b *BreakerProvider, fn func() (T, error)) (T, error) {
	var zero T
	result, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %s: %w", domain.ErrFetch, b.name, err)
		}
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
