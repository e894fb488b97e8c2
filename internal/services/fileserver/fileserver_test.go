package fileserver_test

import (
	"context"
	"database/sql"
	"errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"imageModeration/internal/lib/apperr"
	"imageModeration/internal/lib/pathguard"
	"imageModeration/internal/models"
	"imageModeration/internal/services/fileserver"
	"imageModeration/internal/services/fileserver/mocks"
	"imageModeration/internal/storage"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

type env struct {
	store       *mocks.Store
	server      *fileserver.Server
	imagesRoot  string
	avatarsRoot string
}

func setup(t *testing.T) *env {
	t.Helper()

	imagesRoot, avatarsRoot := t.TempDir(), t.TempDir()

	images, err := pathguard.New(imagesRoot)
	require.NoError(t, err)
	avatars, err := pathguard.New(avatarsRoot)
	require.NoError(t, err)

	store := mocks.NewStore(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &env{
		store:       store,
		server:      fileserver.New(log, store, images, avatars),
		imagesRoot:  imagesRoot,
		avatarsRoot: avatarsRoot,
	}
}

func writeFile(t *testing.T, root, rel string, data []byte) {
	t.Helper()

	abs := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, data, 0o644))
}

func TestOpenImage_StreamsStoredBytes(t *testing.T) {
	e := setup(t)
	id := uuid.New()
	data := []byte("\x89PNG fake but stored bytes")

	writeFile(t, e.imagesRoot, "alice/1700000000000-cat_0.png", data)
	mtime := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(e.imagesRoot, "alice", "1700000000000-cat_0.png"), mtime, mtime))

	e.store.On("GetImage", mock.Anything, id).
		Return(&models.Image{ID: id, StoragePath: "alice/1700000000000-cat_0.png"}, nil).Once()

	f, err := e.server.OpenImage(context.Background(), id)
	require.NoError(t, err)
	defer f.Close()

	rr := httptest.NewRecorder()
	n, err := fileserver.Stream(rr, f)
	require.NoError(t, err)

	assert.Equal(t, int64(len(data)), n)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, data, rr.Body.Bytes())
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, strconv.Itoa(len(data)), rr.Header().Get("Content-Length"))
	assert.Equal(t, "public, max-age=86400", rr.Header().Get("Cache-Control"))
	assert.Equal(t, mtime.Format(http.TimeFormat), rr.Header().Get("Last-Modified"))
	assert.Equal(t, `inline; filename="1700000000000-cat_0.png"`, rr.Header().Get("Content-Disposition"))
}

func TestOpenImage_Errors(t *testing.T) {
	outside := filepath.Join(t.TempDir(), "secret.png")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o644))

	tests := []struct {
		name        string
		storagePath string
		storeErr    error
		setup       func(e *env)
		wantKind    apperr.Kind
	}{
		{name: "Record Missing", storeErr: storage.ErrImageNotFound, wantKind: apperr.KindNotFound},
		{name: "Store Fails", storeErr: errors.New("db error"), wantKind: apperr.KindStorage},
		{name: "File Missing", storagePath: "alice/gone.png", wantKind: apperr.KindNotFound},
		{name: "Traversal", storagePath: "../../etc/passwd", wantKind: apperr.KindConfinement},
		{name: "Absolute Outside Root", storagePath: outside, wantKind: apperr.KindConfinement},
		{name: "Empty Path", storagePath: "", wantKind: apperr.KindConfinement},
		{
			name:        "Directory",
			storagePath: "alice",
			setup: func(e *env) {
				require.NoError(t, os.MkdirAll(filepath.Join(e.imagesRoot, "alice"), 0o755))
			},
			wantKind: apperr.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setup(t)
			id := uuid.New()

			if tt.setup != nil {
				tt.setup(e)
			}

			if tt.storeErr != nil {
				e.store.On("GetImage", mock.Anything, id).Return(nil, tt.storeErr).Once()
			} else {
				e.store.On("GetImage", mock.Anything, id).Return(&models.Image{ID: id, StoragePath: tt.storagePath}, nil).Once()
			}

			_, err := e.server.OpenImage(context.Background(), id)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			assert.NotContains(t, apperr.Message(err), e.imagesRoot)
		})
	}
}

func TestOpenAvatar(t *testing.T) {
	tests := []struct {
		name       string
		stored     sql.NullString
		storeErr   error
		wantKind   apperr.Kind
		wantType   string
		wantName   string
		wantFailed bool
	}{
		{
			name:     "Relative To Root",
			stored:   sql.NullString{String: "alice/1700000000000-me.webp", Valid: true},
			wantType: "image/webp",
			wantName: "1700000000000-me.webp",
		},
		{
			name:     "Legacy Prefix And Backslashes",
			stored:   sql.NullString{String: `Avatars\alice\1700000000000-me.webp`, Valid: true},
			wantType: "image/webp",
			wantName: "1700000000000-me.webp",
		},
		{name: "No Avatar", stored: sql.NullString{}, wantKind: apperr.KindNotFound, wantFailed: true},
		{name: "Unknown User", storeErr: storage.ErrUserNotFound, wantKind: apperr.KindNotFound, wantFailed: true},
		{
			name:       "Escapes Root",
			stored:     sql.NullString{String: "avatars/../../etc/passwd", Valid: true},
			wantKind:   apperr.KindConfinement,
			wantFailed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setup(t)
			writeFile(t, e.avatarsRoot, "alice/1700000000000-me.webp", []byte("RIFF....WEBP"))

			if tt.storeErr != nil {
				e.store.On("GetUserByUsername", mock.Anything, "alice").Return(nil, tt.storeErr).Once()
			} else {
				e.store.On("GetUserByUsername", mock.Anything, "alice").
					Return(&models.User{ID: uuid.New(), Username: "alice", AvatarPath: tt.stored}, nil).Once()
			}

			f, err := e.server.OpenAvatar(context.Background(), "alice")
			if tt.wantFailed {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				return
			}

			require.NoError(t, err)
			defer f.Close()

			assert.Equal(t, fileserver.KindAvatar, f.Kind)
			assert.Equal(t, tt.wantType, f.ContentType)
			assert.Equal(t, tt.wantName, f.Name)
		})
	}
}

func TestUnknownExtensionFallsBack(t *testing.T) {
	e := setup(t)
	id := uuid.New()
	writeFile(t, e.imagesRoot, "alice/blob.unknownext", []byte("??"))

	e.store.On("GetImage", mock.Anything, id).Return(&models.Image{ID: id, StoragePath: "alice/blob.unknownext"}, nil).Once()

	f, err := e.server.OpenImage(context.Background(), id)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "application/octet-stream", f.ContentType)
}

func TestNormalizeAvatarPath(t *testing.T) {
	tests := map[string]string{
		"alice/1-me.png":          "alice/1-me.png",
		"avatars/alice/1-me.png":  "alice/1-me.png",
		`avatars\alice\1-me.png`:  "alice/1-me.png",
		"AVATARS/alice/1-me.png":  "alice/1-me.png",
		"other/avatars/1-me.png":  "other/avatars/1-me.png",
		"avatarsalice/1-me.png":   "avatarsalice/1-me.png",
		`alice\sub/1-me.png`:      "alice/sub/1-me.png",
	}

	for in, want := range tests {
		assert.Equal(t, filepath.FromSlash(want), fileserver.NormalizeAvatarPath(in), in)
	}
}

func TestDispositionName(t *testing.T) {
	assert.Equal(t, "evil.pngX-Injected: 1", fileserver.DispositionName("evil\".png\r\nX-Injected: 1"))
	assert.Equal(t, "plain.jpg", fileserver.DispositionName("plain.jpg"))
}

type failingReader struct {
	sent bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.sent {
		return 0, errors.New("disk gone")
	}
	r.sent = true
	return copy(p, "partial"), nil
}

func (r *failingReader) Close() error { return nil }

func TestStream_ReadErrorTerminates(t *testing.T) {
	rr := httptest.NewRecorder()

	n, err := fileserver.Stream(rr, &fileserver.File{
		Kind:        fileserver.KindImage,
		Name:        "x.jpg",
		ContentType: "image/jpeg",
		Size:        1024,
		ModTime:     time.Now(),
		Body:        &failingReader{},
	})
	require.Error(t, err)

	assert.Equal(t, int64(len("partial")), n)
	assert.Equal(t, "1024", rr.Header().Get("Content-Length"))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "partial"))
}
