package encounters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questforge/session-engine/internal/domain/combat"
	apperr "github.com/questforge/session-engine/internal/errors"
)

func TestInMemory_CreateGetUpdate(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	enc := combat.NewEncounter("enc-1", "session-1")
	require.NoError(t, repo.Create(ctx, enc))

	err := repo.Create(ctx, enc)
	assert.True(t, apperr.IsAlreadyExists(err))

	got, err := repo.Get(ctx, "enc-1")
	require.NoError(t, err)
	assert.Equal(t, "session-1", got.SessionID)

	_, err = repo.Get(ctx, "missing")
	assert.True(t, apperr.IsNotFound(err))
}

func TestInMemory_GetActiveBySession(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	active, err := repo.GetActiveBySession(ctx, "session-1")
	require.NoError(t, err)
	assert.Nil(t, active, "no encounter yet")

	enc := combat.NewEncounter("enc-1", "session-1")
	require.NoError(t, repo.Create(ctx, enc))

	active, err = repo.GetActiveBySession(ctx, "session-1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "enc-1", active.ID)

	enc.Complete()
	require.NoError(t, repo.Update(ctx, enc))

	active, err = repo.GetActiveBySession(ctx, "session-1")
	require.NoError(t, err)
	assert.Nil(t, active, "completed encounters are not active")
}

func TestInMemory_DeleteCleansIndex(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, combat.NewEncounter("enc-1", "session-1")))
	require.NoError(t, repo.Create(ctx, combat.NewEncounter("enc-2", "session-1")))

	require.NoError(t, repo.Delete(ctx, "enc-1"))

	encs, err := repo.GetBySession(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, encs, 1)
	assert.Equal(t, "enc-2", encs[0].ID)

	err = repo.Delete(ctx, "enc-1")
	assert.True(t, apperr.IsNotFound(err))
}
