// Package fileserver streams stored images and avatars. Every reference is
// resolved through the root it belongs to and fails closed when it escapes it.
package fileserver

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"imageModeration/internal/lib/apperr"
	"imageModeration/internal/lib/metrics"
	"imageModeration/internal/models"
	"imageModeration/internal/storage"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	KindImage  = "image"
	KindAvatar = "avatar"

	cacheControl = "public, max-age=86400"
	fallbackType = "application/octet-stream"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=Store
type Store interface {
	GetImage(ctx context.Context, id uuid.UUID) (*models.Image, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type Guard interface {
	Resolve(candidate string) (string, error)
}

// File is an opened stored file ready to be streamed. The caller closes it.
type File struct {
	Kind        string
	Name        string
	ContentType string
	Size        int64
	ModTime     time.Time
	Body        io.ReadCloser
}

func (f *File) Close() error {
	return f.Body.Close()
}

type Server struct {
	log     *slog.Logger
	store   Store
	images  Guard
	avatars Guard
}

func New(log *slog.Logger, store Store, images, avatars Guard) *Server {
	return &Server{
		log:     log,
		store:   store,
		images:  images,
		avatars: avatars,
	}
}

func (s *Server) OpenImage(ctx context.Context, id uuid.UUID) (*File, error) {
	const op = "services.fileserver.OpenImage"

	img, err := s.store.GetImage(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrImageNotFound) {
			return nil, apperr.NotFound("image not found")
		}
		return nil, apperr.Storage("failed to load image", fmt.Errorf("%s: %w", op, err))
	}

	f, err := open(s.images, KindImage, img.StoragePath)
	if err != nil {
		return nil, err
	}

	s.log.Debug("image opened", slog.String("op", op), slog.String("image_id", id.String()), slog.Int64("size", f.Size))

	return f, nil
}

func (s *Server) OpenAvatar(ctx context.Context, username string) (*File, error) {
	const op = "services.fileserver.OpenAvatar"

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.NotFound("avatar not found")
		}
		return nil, apperr.Storage("failed to load user", fmt.Errorf("%s: %w", op, err))
	}

	if !user.AvatarPath.Valid || user.AvatarPath.String == "" {
		return nil, apperr.NotFound("avatar not found")
	}

	f, err := open(s.avatars, KindAvatar, NormalizeAvatarPath(user.AvatarPath.String))
	if err != nil {
		return nil, err
	}

	s.log.Debug("avatar opened", slog.String("op", op), slog.String("username", username), slog.Int64("size", f.Size))

	return f, nil
}

var avatarsPrefix = regexp.MustCompile(`(?i)^avatars[/\\]`)

// NormalizeAvatarPath turns a stored avatar reference into a path relative
// to the avatars root. Older rows carry an "avatars/" or "avatars\" prefix and
// mixed separators.
func NormalizeAvatarPath(stored string) string {
	rel := avatarsPrefix.ReplaceAllString(stored, "")
	rel = strings.ReplaceAll(rel, `\`, "/")

	return filepath.FromSlash(rel)
}

func open(guard Guard, kind, rel string) (*File, error) {
	abs, err := guard.Resolve(rel)
	if err != nil {
		return nil, apperr.Confinement(err)
	}

	f, err := os.Open(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
			return nil, apperr.NotFound("file not found")
		}
		return nil, apperr.Storage("failed to open file", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, apperr.Storage("failed to open file", err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, apperr.NotFound("file not found")
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(abs)))
	if contentType == "" {
		contentType = fallbackType
	}

	return &File{
		Kind:        kind,
		Name:        filepath.Base(abs),
		ContentType: contentType,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		Body:        f,
	}, nil
}

// Stream writes the headers and body of f. Headers are sent before the first
// byte, so a read error midway can only cut the response short; the declared
// Content-Length then tells the client the body is incomplete.
func Stream(w http.ResponseWriter, f *File) (int64, error) {
	h := w.Header()
	h.Set("Content-Type", f.ContentType)
	h.Set("Content-Length", strconv.FormatInt(f.Size, 10))
	h.Set("Last-Modified", f.ModTime.UTC().Format(http.TimeFormat))
	h.Set("Cache-Control", cacheControl)
	h.Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, DispositionName(f.Name)))
	h.Set("X-Content-Type-Options", "nosniff")

	w.WriteHeader(http.StatusOK)

	n, err := io.Copy(w, f.Body)
	metrics.BytesServed.WithLabelValues(f.Kind).Add(float64(n))
	if err != nil {
		return n, fmt.Errorf("stream %s: %w", f.Kind, err)
	}

	return n, nil
}

// DispositionName drops characters that could break out of a quoted header value.
func DispositionName(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
}
