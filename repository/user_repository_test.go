package repository

import (
	"context"
	"testing"

	"betroom/repository/testutil"
	"betroom/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	discordID := int64(123456789)
	user := testutil.CreateTestUser("alice")
	user.DiscordID = &discordID
	require.NoError(t, repo.Create(ctx, user))
	assert.False(t, user.CreatedAt.IsZero())

	t.Run("by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "alice", got.Nickname)
		assert.True(t, got.Balance.Equal(decimal.RequireFromString("2000")))
	})

	t.Run("by discord id", func(t *testing.T) {
		got, err := repo.GetByDiscordID(ctx, discordID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("missing returns nil", func(t *testing.T) {
		got, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = repo.GetByDiscordID(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("duplicate nickname", func(t *testing.T) {
		err := repo.Create(ctx, testutil.CreateTestUser("alice"))
		assert.ErrorIs(t, err, service.ErrDuplicateNickname)
	})
}

func TestUserRepository_DeductBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	user := testutil.CreateTestUserWithBalance("bob", "500.00")
	testutil.InsertUser(t, testDB.DB, user)

	t.Run("covered", func(t *testing.T) {
		balance, err := repo.DeductBalance(ctx, user.ID, decimal.RequireFromString("200.50"))
		require.NoError(t, err)
		assert.Equal(t, "299.5", balance.String())
	})

	t.Run("exact balance", func(t *testing.T) {
		balance, err := repo.DeductBalance(ctx, user.ID, decimal.RequireFromString("299.50"))
		require.NoError(t, err)
		assert.True(t, balance.IsZero())
	})

	t.Run("insufficient leaves balance untouched", func(t *testing.T) {
		_, err := repo.DeductBalance(ctx, user.ID, decimal.RequireFromString("0.01"))
		assert.ErrorIs(t, err, service.ErrInsufficientBalance)
		assert.True(t, testutil.Balance(t, testDB.DB, user.ID).IsZero())
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := repo.DeductBalance(ctx, uuid.New(), decimal.RequireFromString("1"))
		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})
}

func TestUserRepository_AddBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	user := testutil.CreateTestUserWithBalance("carol", "10.00")
	testutil.InsertUser(t, testDB.DB, user)

	balance, err := repo.AddBalance(ctx, user.ID, decimal.RequireFromString("599.40"))
	require.NoError(t, err)
	assert.Equal(t, "609.4", balance.String())

	_, err = repo.AddBalance(ctx, uuid.New(), decimal.RequireFromString("1"))
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestUserRepository_List(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	var created []uuid.UUID
	for _, name := range []string{"alice", "bob", "carol", "dave", "erin"} {
		user := testutil.CreateTestUser(name)
		require.NoError(t, repo.Create(ctx, user))
		created = append(created, user.ID)
	}

	var seen []uuid.UUID
	for offset := 0; ; offset += 2 {
		page, err := repo.List(ctx, 2, offset)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		assert.LessOrEqual(t, len(page), 2)
		for _, u := range page {
			seen = append(seen, u.ID)
		}
	}
	assert.ElementsMatch(t, created, seen)

	page, err := repo.List(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, page)
}
