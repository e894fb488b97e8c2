// Package moderator applies approve/reject decisions.
//
// A rejection is owner-wide, not per-image: rejecting any one image removes
// the owner's whole image directory and deletes every image record of that
// owner, approved ones included. The image id only selects the owner.
package moderator

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"imageModeration/internal/events"
	"imageModeration/internal/lib/apperr"
	"imageModeration/internal/lib/logger/sl"
	"imageModeration/internal/lib/metrics"
	"imageModeration/internal/models"
	"imageModeration/internal/storage"
	"log/slog"
	"os"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=Store
type Store interface {
	GetImage(ctx context.Context, id uuid.UUID) (*models.Image, error)
	ApproveImage(ctx context.Context, id uuid.UUID) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	DeleteImagesByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventPublisher
type EventPublisher interface {
	Publish(ctx context.Context, ev events.Event)
}

type Guard interface {
	Resolve(candidate string) (string, error)
}

type Result struct {
	Approved bool
	// Purged is the number of records removed by a rejection.
	Purged     int64
	DirRemoved bool
}

type Moderator struct {
	log       *slog.Logger
	store     Store
	images    Guard
	publisher EventPublisher
}

func New(log *slog.Logger, store Store, images Guard, publisher EventPublisher) *Moderator {
	return &Moderator{
		log:       log,
		store:     store,
		images:    images,
		publisher: publisher,
	}
}

func (m *Moderator) Moderate(ctx context.Context, imageID uuid.UUID, approve bool) (Result, error) {
	const op = "services.moderator.Moderate"

	img, err := m.store.GetImage(ctx, imageID)
	if err != nil {
		if errors.Is(err, storage.ErrImageNotFound) {
			return Result{}, apperr.NotFound("image not found")
		}
		return Result{}, apperr.Storage("failed to load image", fmt.Errorf("%s: %w", op, err))
	}

	if approve {
		return m.approve(ctx, img)
	}

	return m.purge(ctx, img)
}

// approve is idempotent: an approved record is left untouched.
func (m *Moderator) approve(ctx context.Context, img *models.Image) (Result, error) {
	const op = "services.moderator.approve"

	if img.Approved {
		return Result{Approved: true}, nil
	}

	if err := m.store.ApproveImage(ctx, img.ID); err != nil {
		if errors.Is(err, storage.ErrImageNotFound) {
			return Result{}, apperr.NotFound("image not found")
		}
		return Result{}, apperr.Storage("failed to approve image", fmt.Errorf("%s: %w", op, err))
	}

	metrics.ModerationDecisions.WithLabelValues("approve").Inc()
	m.log.Info("image approved", slog.String("op", op), slog.String("image_id", img.ID.String()))

	return Result{Approved: true}, nil
}

// purge removes the owner's directory best-effort, then every record of the
// owner. A failed directory removal is logged and does not stop the
// metadata delete. Uploads racing with a purge for the same owner are not
// isolated from it and can leave orphaned files or records.
func (m *Moderator) purge(ctx context.Context, img *models.Image) (Result, error) {
	const op = "services.moderator.purge"

	log := m.log.With(
		slog.String("op", op),
		slog.String("image_id", img.ID.String()),
		slog.String("owner_id", img.OwnerID.String()),
	)

	owner, err := m.store.GetUserByID(ctx, img.OwnerID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return Result{}, apperr.NotFound("owner not found")
		}
		return Result{}, apperr.Storage("failed to load owner", fmt.Errorf("%s: %w", op, err))
	}

	dirRemoved := m.removeDir(log, owner.Username)

	deleted, err := m.store.DeleteImagesByOwner(ctx, owner.ID)
	if err != nil {
		return Result{}, apperr.Storage("failed to delete images", fmt.Errorf("%s: %w", op, err))
	}

	m.publisher.Publish(ctx, events.Event{
		Type:       events.Purged,
		OwnerID:    owner.ID,
		Deleted:    deleted,
		DirRemoved: dirRemoved,
	})

	metrics.ModerationDecisions.WithLabelValues("reject").Inc()
	log.Info("owner images purged", slog.Int64("deleted", deleted), slog.Bool("dir_removed", dirRemoved))

	return Result{Purged: deleted, DirRemoved: dirRemoved}, nil
}

func (m *Moderator) removeDir(log *slog.Logger, username string) bool {
	if username == "" {
		log.Warn("owner has no username, directory left in place")
		return false
	}

	dir, err := m.images.Resolve(username)
	if err != nil {
		log.Warn("owner directory rejected", sl.Err(err))
		return false
	}

	if err = os.RemoveAll(dir); err != nil {
		log.Error("failed to remove owner directory", sl.Err(err))
		return false
	}

	return true
}
