// Package avatars replaces a user's avatar file. Avatars are stored as
// uploaded, without any transform.
package avatars

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"imageModeration/internal/ingest"
	"imageModeration/internal/lib/apperr"
	"imageModeration/internal/lib/filename"
	"imageModeration/internal/lib/logger/sl"
	"imageModeration/internal/lib/pathguard"
	"imageModeration/internal/models"
	"imageModeration/internal/services/fileserver"
	"imageModeration/internal/storage"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"
)

var allowedExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=Store
type Store interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUserAvatar(ctx context.Context, userID uuid.UUID, avatarPath string) error
}

type Guard interface {
	Resolve(candidate string) (string, error)
	EnsureDir(rel string) (string, error)
}

type Service struct {
	log     *slog.Logger
	store   Store
	avatars Guard
	now     func() time.Time
}

func New(log *slog.Logger, store Store, avatars Guard) *Service {
	return &Service{
		log:     log,
		store:   store,
		avatars: avatars,
		now:     time.Now,
	}
}

// Replace stores file as the user's avatar and returns its path relative to
// the avatars root. The previous avatar is removed once the new path is saved;
// failing to remove it is only logged.
func (s *Service) Replace(ctx context.Context, username string, file ingest.File) (string, error) {
	const op = "services.avatars.Replace"

	log := s.log.With(slog.String("op", op), slog.String("username", username))

	ext := filename.Ext(file.Name)
	if !allowedExt[ext] || !imageTypes[file.Sniffed] {
		return "", apperr.Validation("unsupported avatar type")
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return "", apperr.NotFound("user not found")
		}
		return "", apperr.Storage("failed to load user", fmt.Errorf("%s: %w", op, err))
	}

	if _, err = s.avatars.EnsureDir(user.Username); err != nil {
		return "", guardErr("failed to create avatar directory", err)
	}

	rel := path.Join(user.Username, fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), filename.SafeBase(file.Name), ext))

	abs, err := s.avatars.Resolve(rel)
	if err != nil {
		return "", guardErr("failed to store avatar", err)
	}

	if err = os.WriteFile(abs, file.Data, 0o644); err != nil {
		return "", apperr.Storage("failed to store avatar", fmt.Errorf("%s: %w", op, err))
	}

	if err = s.store.UpdateUserAvatar(ctx, user.ID, rel); err != nil {
		if rmErr := os.Remove(abs); rmErr != nil {
			log.Warn("failed to remove unsaved avatar", sl.Err(rmErr))
		}
		return "", apperr.Storage("failed to save avatar", fmt.Errorf("%s: %w", op, err))
	}

	if user.AvatarPath.Valid && user.AvatarPath.String != "" {
		s.removeOld(log, user.AvatarPath.String, rel)
	}

	log.Info("avatar replaced", slog.String("avatar_path", rel))

	return rel, nil
}

func (s *Service) removeOld(log *slog.Logger, stored, current string) {
	old := fileserver.NormalizeAvatarPath(stored)
	if old == filepath.FromSlash(current) {
		return
	}

	abs, err := s.avatars.Resolve(old)
	if err != nil {
		log.Warn("previous avatar path rejected", sl.Err(err))
		return
	}

	if err = os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("failed to remove previous avatar", sl.Err(err))
	}
}

func guardErr(msg string, err error) error {
	if pathguard.IsViolation(err) {
		return apperr.Confinement(err)
	}

	return apperr.Storage(msg, err)
}
