package settings

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testingpkg "github.com/vmi/dashboard/internal/testing"
)

func TestRepository_GetSet(t *testing.T) {
	db := testingpkg.NewMemoryDB(t)
	repo := NewRepository(db, zerolog.Nop())
	ctx := context.Background()

	value, err := repo.Get(ctx, KeyShillerCAPE)
	require.NoError(t, err)
	assert.Nil(t, value)

	require.NoError(t, repo.Set(ctx, KeyShillerCAPE, "31.2"))
	require.NoError(t, repo.Set(ctx, KeyShillerCAPE, "33.5"))

	value, err = repo.Get(ctx, KeyShillerCAPE)
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, "33.5", *value)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{KeyShillerCAPE: "33.5"}, all)

	require.NoError(t, repo.Delete(ctx, KeyShillerCAPE))
	require.NoError(t, repo.Delete(ctx, KeyShillerCAPE))
	value, err = repo.Get(ctx, KeyShillerCAPE)
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestRepository_GetFloat(t *testing.T) {
	db := testingpkg.NewMemoryDB(t)
	repo := NewRepository(db, zerolog.Nop())
	ctx := context.Background()

	v, found, err := repo.GetFloat(ctx, "missing", 7)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 7.0, v)

	require.NoError(t, repo.SetFloat(ctx, KeyShillerCAPE, 28.75))
	v, found, err = repo.GetFloat(ctx, KeyShillerCAPE, 0)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 28.75, v)

	require.NoError(t, repo.Set(ctx, "broken", "abc"))
	v, found, err = repo.GetFloat(ctx, "broken", 3)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 3.0, v)
}
