package moderator_test

import (
	"context"
	"errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"imageModeration/internal/events"
	"imageModeration/internal/lib/apperr"
	"imageModeration/internal/lib/pathguard"
	"imageModeration/internal/models"
	"imageModeration/internal/services/moderator"
	"imageModeration/internal/services/moderator/mocks"
	"imageModeration/internal/storage"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func setup(t *testing.T) (*mocks.Store, *mocks.EventPublisher, *moderator.Moderator, string) {
	t.Helper()

	root := t.TempDir()
	guard, err := pathguard.New(root)
	require.NoError(t, err)

	store := mocks.NewStore(t)
	publisher := mocks.NewEventPublisher(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return store, publisher, moderator.New(log, store, guard, publisher), root
}

func TestModerate_Approve(t *testing.T) {
	pending := &models.Image{ID: uuid.New(), OwnerID: uuid.New(), StoragePath: "alice/1-a_0.jpg"}
	approved := &models.Image{ID: uuid.New(), OwnerID: uuid.New(), StoragePath: "alice/1-a_1.jpg", Approved: true}

	tests := []struct {
		name         string
		image        *models.Image
		getErr       error
		expectWrite  bool
		writeErr     error
		wantKind     apperr.Kind
		wantApproved bool
	}{
		{name: "Pending Becomes Approved", image: pending, expectWrite: true, wantApproved: true},
		{name: "Approving Twice Is A No-op", image: approved, wantApproved: true},
		{name: "Not Found", image: pending, getErr: storage.ErrImageNotFound, wantKind: apperr.KindNotFound},
		{name: "Load Fails", image: pending, getErr: errors.New("db error"), wantKind: apperr.KindStorage},
		{name: "Write Fails", image: pending, expectWrite: true, writeErr: errors.New("db error"), wantKind: apperr.KindStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _, m, _ := setup(t)

			if tt.getErr != nil {
				store.On("GetImage", mock.Anything, tt.image.ID).Return(nil, tt.getErr).Once()
			} else {
				store.On("GetImage", mock.Anything, tt.image.ID).Return(tt.image, nil).Once()
			}
			if tt.expectWrite {
				store.On("ApproveImage", mock.Anything, tt.image.ID).Return(tt.writeErr).Once()
			}

			res, err := m.Moderate(context.Background(), tt.image.ID, true)
			if tt.wantKind != apperr.KindUnknown {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantApproved, res.Approved)
			assert.Zero(t, res.Purged)
		})
	}
}

func TestModerate_RejectPurgesOwner(t *testing.T) {
	store, publisher, m, root := setup(t)

	owner := &models.User{ID: uuid.New(), Username: "alice"}
	target := &models.Image{ID: uuid.New(), OwnerID: owner.ID, StoragePath: "alice/1-a_0.jpg"}

	require.NoError(t, os.MkdirAll(filepath.Join(root, "alice"), 0o755))
	for _, name := range []string{"1-a_0.jpg", "1-b_1.jpg", "2-c_0.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, "alice", name), []byte("x"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bob"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "bob", "1-z_0.jpg"), []byte("x"), 0o644))

	store.On("GetImage", mock.Anything, target.ID).Return(target, nil).Once()
	store.On("GetUserByID", mock.Anything, owner.ID).Return(owner, nil).Once()
	store.On("DeleteImagesByOwner", mock.Anything, owner.ID).Return(int64(3), nil).Once()
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(ev events.Event) bool {
		return ev.Type == events.Purged && ev.OwnerID == owner.ID && ev.Deleted == 3 && ev.DirRemoved
	})).Once()

	res, err := m.Moderate(context.Background(), target.ID, false)
	require.NoError(t, err)

	assert.False(t, res.Approved)
	assert.Equal(t, int64(3), res.Purged)
	assert.True(t, res.DirRemoved)
	assert.NoDirExists(t, filepath.Join(root, "alice"))
	assert.FileExists(t, filepath.Join(root, "bob", "1-z_0.jpg"))
	assert.DirExists(t, root)
}

func TestModerate_RejectKeepsMetadataConsistent(t *testing.T) {
	tests := []struct {
		name     string
		username string
	}{
		{name: "Directory Already Gone", username: "ghost"},
		{name: "Username Escapes Root", username: "../outside"},
		{name: "Empty Username", username: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, publisher, m, root := setup(t)

			owner := &models.User{ID: uuid.New(), Username: tt.username}
			target := &models.Image{ID: uuid.New(), OwnerID: owner.ID}

			sibling := filepath.Join(filepath.Dir(root), "outside")
			_ = os.MkdirAll(sibling, 0o755)
			t.Cleanup(func() { _ = os.RemoveAll(sibling) })

			store.On("GetImage", mock.Anything, target.ID).Return(target, nil).Once()
			store.On("GetUserByID", mock.Anything, owner.ID).Return(owner, nil).Once()
			store.On("DeleteImagesByOwner", mock.Anything, owner.ID).Return(int64(1), nil).Once()
			publisher.On("Publish", mock.Anything, mock.Anything).Once()

			res, err := m.Moderate(context.Background(), target.ID, false)
			require.NoError(t, err)
			assert.Equal(t, int64(1), res.Purged)
			assert.DirExists(t, root)
			assert.DirExists(t, sibling)
		})
	}
}

func TestModerate_RejectErrors(t *testing.T) {
	owner := &models.User{ID: uuid.New(), Username: "alice"}
	target := &models.Image{ID: uuid.New(), OwnerID: owner.ID}

	t.Run("Owner Missing", func(t *testing.T) {
		store, _, m, _ := setup(t)
		store.On("GetImage", mock.Anything, target.ID).Return(target, nil).Once()
		store.On("GetUserByID", mock.Anything, owner.ID).Return(nil, storage.ErrUserNotFound).Once()

		_, err := m.Moderate(context.Background(), target.ID, false)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
		assert.Equal(t, "owner not found", apperr.Message(err))
	})

	t.Run("Delete Fails", func(t *testing.T) {
		store, _, m, _ := setup(t)
		store.On("GetImage", mock.Anything, target.ID).Return(target, nil).Once()
		store.On("GetUserByID", mock.Anything, owner.ID).Return(owner, nil).Once()
		store.On("DeleteImagesByOwner", mock.Anything, owner.ID).Return(int64(0), errors.New("db error")).Once()

		_, err := m.Moderate(context.Background(), target.ID, false)
		assert.Equal(t, apperr.KindStorage, apperr.KindOf(err))
	})

	t.Run("Image Missing", func(t *testing.T) {
		store, _, m, _ := setup(t)
		store.On("GetImage", mock.Anything, target.ID).Return(nil, storage.ErrImageNotFound).Once()

		_, err := m.Moderate(context.Background(), target.ID, false)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}
