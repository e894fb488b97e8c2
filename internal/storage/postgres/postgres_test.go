package postgres_test

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"imageModeration/internal/models"
	"imageModeration/internal/storage"
	"imageModeration/internal/storage/postgres"
	"os"
	"testing"
)

func setupStorage(t *testing.T) *postgres.Storage {
	t.Helper()

	dsn := os.Getenv("IMAGE_MODERATION_TEST_DSN")
	if dsn == "" {
		t.Skip("IMAGE_MODERATION_TEST_DSN env not set")
	}

	s, err := postgres.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(context.Background()))

	return s
}

func createUser(t *testing.T, s *postgres.Storage) *models.User {
	t.Helper()

	user := &models.User{ID: uuid.New(), Username: "user-" + uuid.NewString()[:8]}
	_, err := s.DB.Exec(`INSERT INTO users (id, username) VALUES ($1, $2)`, user.ID, user.Username)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = s.DB.Exec(`DELETE FROM images WHERE owner_id = $1`, user.ID)
		_, _ = s.DB.Exec(`DELETE FROM users WHERE id = $1`, user.ID)
	})

	return user
}

func batch(owner *models.User, n int) []models.Image {
	images := make([]models.Image, n)
	for i := range images {
		images[i] = models.Image{
			ID:          uuid.New(),
			OwnerID:     owner.ID,
			StoragePath: fmt.Sprintf("%s/1700000000000-img_%d.jpg-%s", owner.Username, i, uuid.NewString()[:6]),
		}
	}

	return images
}

func TestInsertApproveDelete(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()
	owner := createUser(t, s)

	saved, err := s.InsertImages(ctx, batch(owner, 3))
	require.NoError(t, err)
	require.Len(t, saved, 3)

	got, err := s.GetImage(ctx, saved[1].ID)
	require.NoError(t, err)
	assert.Equal(t, saved[1].StoragePath, got.StoragePath)
	assert.False(t, got.Approved)

	require.NoError(t, s.ApproveImage(ctx, saved[1].ID))
	require.NoError(t, s.ApproveImage(ctx, saved[1].ID))

	got, err = s.GetImage(ctx, saved[1].ID)
	require.NoError(t, err)
	assert.True(t, got.Approved)

	n, err := s.DeleteImagesByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	_, err = s.GetImage(ctx, saved[0].ID)
	assert.ErrorIs(t, err, storage.ErrImageNotFound)
}

func TestInsertImages_IsAtomic(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()
	owner := createUser(t, s)

	images := batch(owner, 2)
	images[1].StoragePath = images[0].StoragePath

	_, err := s.InsertImages(ctx, images)
	require.Error(t, err)

	_, err = s.GetImage(ctx, images[0].ID)
	assert.ErrorIs(t, err, storage.ErrImageNotFound)
}

func TestUsers(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()
	owner := createUser(t, s)

	byName, err := s.GetUserByUsername(ctx, owner.Username)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, byName.ID)
	assert.False(t, byName.AvatarPath.Valid)

	require.NoError(t, s.UpdateUserAvatar(ctx, owner.ID, owner.Username+"/1-me.png"))

	byID, err := s.GetUserByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.Username+"/1-me.png", byID.AvatarPath.String)

	_, err = s.GetUserByID(ctx, uuid.New())
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	err = s.ApproveImage(ctx, uuid.New())
	assert.ErrorIs(t, err, storage.ErrImageNotFound)
}
