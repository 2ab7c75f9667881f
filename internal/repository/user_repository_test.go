package repository

import (
	"context"
	"testing"

	"github.com/milhasdesk/points-admin/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db.DB)
	ctx := context.Background()

	user, err := repo.Create(ctx, &model.User{
		Name:   "Operator",
		Email:  "operator@example.com",
		APIKey: "key-1",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	t.Run("duplicate api key", func(t *testing.T) {
		_, err := repo.Create(ctx, &model.User{
			Name:   "Another",
			Email:  "another@example.com",
			APIKey: "key-1",
		})
		assert.Error(t, err)
	})
}

func TestUserRepository_Get(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db.DB)
	ctx := context.Background()

	created, err := repo.Create(ctx, &model.User{
		Name:   "Operator",
		Email:  "operator@example.com",
		APIKey: "key-1",
	})
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		user, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Operator", user.Name)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.Get(ctx, 404)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserRepository_GetByAPIKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db.DB)
	ctx := context.Background()

	created, err := repo.Create(ctx, &model.User{
		Name:   "Operator",
		Email:  "operator@example.com",
		APIKey: "secret-key",
	})
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		user, err := repo.GetByAPIKey(ctx, "secret-key")
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := repo.GetByAPIKey(ctx, "wrong-key")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
