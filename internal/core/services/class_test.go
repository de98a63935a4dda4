package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cohort-tracker/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
)

func TestClassService_Discover(t *testing.T) {
	provider := newStubProvider()
	provider.classes = []domain.Class{
		{ID: "c1", Name: "Software Dev", FriendlyID: "swd"},
		{ID: "c2", Name: "Data Analysis", FriendlyID: "da"},
	}
	store := memory.NewClassStore()
	ctx := context.Background()

	// c1 is already tracked and active.
	require.NoError(t, store.Save(ctx, domain.Class{ID: "c1", Name: "Old name", FriendlyID: "swd"}))
	require.NoError(t, store.SetActive(ctx, "c1", true))

	svc := NewClassService(provider, store)
	classes, err := svc.Discover(ctx)
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, 1, provider.authCalls)

	c1, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Software Dev", c1.Name)
	assert.True(t, c1.IsActive)

	c2, err := store.Get(ctx, "c2")
	require.NoError(t, err)
	assert.False(t, c2.IsActive)
}

func TestClassService_DiscoverAuthFailure(t *testing.T) {
	provider := newStubProvider()
	provider.authErr = fmt.Errorf("%w: 401", domain.ErrAuth)
	svc := NewClassService(provider, memory.NewClassStore())

	_, err := svc.Discover(context.Background())
	assert.ErrorIs(t, err, domain.ErrAuth)
}

func TestClassService_DiscoverWithoutProvider(t *testing.T) {
	svc := NewClassService(nil, memory.NewClassStore())
	_, err := svc.Discover(context.Background())
	assert.Error(t, err)
}

func TestClassService_ResolveAndActivate(t *testing.T) {
	store := memory.NewClassStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, domain.Class{ID: "abc123", Name: "Software Dev", FriendlyID: "swd"}))
	svc := NewClassService(nil, store)

	byFriendly, err := svc.Resolve(ctx, "swd")
	require.NoError(t, err)
	assert.Equal(t, "abc123", byFriendly.ID)

	byID, err := svc.Resolve(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "swd", byID.FriendlyID)

	_, err = svc.Resolve(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Resolve(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	activated, err := svc.Activate(ctx, "swd")
	require.NoError(t, err)
	assert.True(t, activated.IsActive)
	active, err := store.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	deactivated, err := svc.Deactivate(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)
	active, err = store.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}
