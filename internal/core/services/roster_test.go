package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cohort-tracker/internal/core/domain"
)

func TestRosterService_TagStudent(t *testing.T) {
	f := newEngineFixture(t, "c1", "c2")
	f.provider.pages["c1"] = []domain.ProgressionPage{page(false, record("p1", "u1", "a1"))}
	f.provider.pages["c2"] = []domain.ProgressionPage{page(false, record("p2", "u1", "a2"))}
	ctx := context.Background()

	_, err := f.engine.SyncAll(ctx, true)
	require.NoError(t, err)

	svc := NewRosterService(f.cohort)
	require.NoError(t, svc.TagStudent(ctx, " first U1 ", "LAST", "north", "tuesday"))

	for _, classID := range []string{"c1", "c2"} {
		st, ok := f.cohort.Student("u1", classID)
		require.True(t, ok)
		require.NotNil(t, st.Region)
		require.NotNil(t, st.Night)
		assert.Equal(t, "north", *st.Region)
		assert.Equal(t, "tuesday", *st.Night)
	}
}

func TestRosterService_TagsSurviveSync(t *testing.T) {
	f := newEngineFixture(t, "c1")
	f.provider.pages["c1"] = []domain.ProgressionPage{page(false, record("p1", "u1", "a1"))}
	ctx := context.Background()

	_, err := f.engine.SyncClass(ctx, "c1", true)
	require.NoError(t, err)
	require.NoError(t, NewRosterService(f.cohort).TagStudent(ctx, "First u1", "Last", "south", ""))

	f.provider.pages["c1"] = []domain.ProgressionPage{page(false, record("p2", "u1", "a2"), record("p1", "u1", "a1"))}
	_, err = f.engine.SyncClass(ctx, "c1", true)
	require.NoError(t, err)

	st, ok := f.cohort.Student("u1", "c1")
	require.True(t, ok)
	require.NotNil(t, st.Region)
	assert.Equal(t, "south", *st.Region)
	assert.Nil(t, st.Night)
}

func TestRosterService_Errors(t *testing.T) {
	f := newEngineFixture(t)
	svc := NewRosterService(f.cohort)
	ctx := context.Background()

	err := svc.TagStudent(ctx, "", "Last", "north", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = svc.TagStudent(ctx, "Nobody", "Here", "north", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
