package accounts

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmi/dashboard/internal/domain"
	testingpkg "github.com/vmi/dashboard/internal/testing"
)

func TestRepository_CreateAndGet(t *testing.T) {
	db := testingpkg.NewMemoryDB(t)
	repo := NewRepository(db, zerolog.Nop())
	ctx := context.Background()

	a := &domain.Account{UserID: 1, AccountType: "Roth IRA", Nickname: "Retirement"}
	id, err := repo.Create(ctx, db.Conn(), a)
	require.NoError(t, err)
	assert.Equal(t, id, a.ID)

	got, err := repo.GetByID(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, "Roth IRA", got.AccountType)
	assert.Equal(t, "Retirement", got.Nickname)
	assert.Equal(t, domain.CurrencyUSD, got.Currency)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = repo.GetByID(ctx, 2, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepository_CreateRequiresType(t *testing.T) {
	db := testingpkg.NewMemoryDB(t)
	repo := NewRepository(db, zerolog.Nop())

	_, err := repo.Create(context.Background(), db.Conn(), &domain.Account{UserID: 1})
	assert.True(t, domain.IsValidationError(err))
}

func TestRepository_EnsureByType(t *testing.T) {
	db := testingpkg.NewMemoryDB(t)
	repo := NewRepository(db, zerolog.Nop())
	ctx := context.Background()

	first, err := repo.EnsureByType(ctx, db.Conn(), 1, "Brokerage")
	require.NoError(t, err)

	second, err := repo.EnsureByType(ctx, db.Conn(), 1, "Brokerage")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, err := repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
