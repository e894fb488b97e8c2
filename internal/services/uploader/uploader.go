// Package uploader turns one multipart batch into stored, transformed files
// and their metadata records.
//
// Files are written as soon as they are transformed. The records of a batch are
// inserted in one atomic step afterwards, so a failing batch can leave files
// on disk without records; those paths are announced as images.orphaned for
// the janitor to sweep.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"imageModeration/internal/events"
	"imageModeration/internal/ingest"
	"imageModeration/internal/lib/apperr"
	"imageModeration/internal/lib/filename"
	"imageModeration/internal/lib/logger/sl"
	"imageModeration/internal/lib/metrics"
	"imageModeration/internal/lib/pathguard"
	"imageModeration/internal/models"
	"imageModeration/internal/processor"
	"imageModeration/internal/storage"
	"log/slog"
	"os"
	"path"
	"time"
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=Store
type Store interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	InsertImages(ctx context.Context, images []models.Image) ([]models.Image, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=Transformer
type Transformer interface {
	Transform(ctx context.Context, data []byte, opts processor.Options) ([]byte, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventPublisher
type EventPublisher interface {
	Publish(ctx context.Context, ev events.Event)
}

// Guard confines every path under the images root.
type Guard interface {
	Resolve(candidate string) (string, error)
	EnsureDir(rel string) (string, error)
}

type Limits struct {
	MinFiles int
	MaxFiles int
}

type Uploader struct {
	log         *slog.Logger
	store       Store
	transformer Transformer
	images      Guard
	publisher   EventPublisher
	limits      Limits
	now         func() time.Time
}

func New(
	log *slog.Logger,
	store Store,
	transformer Transformer,
	images Guard,
	publisher EventPublisher,
	limits Limits,
) *Uploader {
	return &Uploader{
		log:         log,
		store:       store,
		transformer: transformer,
		images:      images,
		publisher:   publisher,
		limits:      limits,
		now:         time.Now,
	}
}

// Upload validates the batch, transforms and writes every file under the
// owner's directory and persists one pending record per file. Every check that
// can fail without touching the disk runs first.
func (u *Uploader) Upload(ctx context.Context, ownerID string, files []ingest.File, opts processor.Options) ([]models.Image, error) {
	const op = "services.uploader.Upload"

	log := u.log.With(slog.String("op", op), slog.String("owner_id", ownerID))

	if err := u.validate(files); err != nil {
		metrics.UploadBatches.WithLabelValues("rejected").Inc()
		return nil, err
	}

	user, err := u.owner(ctx, ownerID)
	if err != nil {
		metrics.UploadBatches.WithLabelValues("rejected").Inc()
		return nil, err
	}

	if _, err = u.images.EnsureDir(user.Username); err != nil {
		metrics.UploadBatches.WithLabelValues("failed").Inc()
		return nil, guardErr("failed to create user directory", err)
	}

	opts = opts.WithDefaults()
	stamp := u.now().UnixMilli()

	written, err := u.writeAll(ctx, user.Username, stamp, files, opts)
	if err != nil {
		log.Warn("batch aborted", slog.Int("files_written", len(written)), sl.Err(err))
		u.orphan(ctx, user.ID, written)
		metrics.UploadBatches.WithLabelValues("rejected").Inc()
		return nil, err
	}

	records := make([]models.Image, len(written))
	for i, rel := range written {
		records[i] = models.Image{
			ID:          uuid.New(),
			OwnerID:     user.ID,
			StoragePath: rel,
			Approved:    false,
		}
	}

	saved, err := u.store.InsertImages(ctx, records)
	if err != nil {
		log.Error("failed to persist batch", sl.Err(err))
		u.orphan(ctx, user.ID, written)
		metrics.UploadBatches.WithLabelValues("failed").Inc()
		return nil, apperr.Storage("failed to save images", fmt.Errorf("%s: %w", op, err))
	}

	ids := make([]uuid.UUID, len(saved))
	for i := range saved {
		ids[i] = saved[i].ID
	}

	u.publisher.Publish(ctx, events.Event{
		Type:     events.Uploaded,
		OwnerID:  user.ID,
		ImageIDs: ids,
		Paths:    written,
	})

	metrics.UploadBatches.WithLabelValues("ok").Inc()
	log.Info("batch stored", slog.Int("count", len(saved)), slog.String("format", opts.Format.Name()))

	return saved, nil
}

func (u *Uploader) validate(files []ingest.File) error {
	if len(files) < u.limits.MinFiles {
		return apperr.Validation(fmt.Sprintf("at least %d images are required", u.limits.MinFiles))
	}
	if len(files) > u.limits.MaxFiles {
		return apperr.Validation("too many files")
	}

	for i, f := range files {
		if !allowedTypes[f.ContentType] || !allowedTypes[f.Sniffed] {
			return apperr.Validation(fmt.Sprintf("unsupported file type at index %d", i))
		}
	}

	return nil
}

func (u *Uploader) owner(ctx context.Context, ownerID string) (*models.User, error) {
	const op = "services.uploader.owner"

	id, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, apperr.Validation("invalid user id")
	}

	user, err := u.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.Validation("user not found")
		}
		return nil, apperr.Storage("failed to load user", fmt.Errorf("%s: %w", op, err))
	}

	if user.Username == "" {
		return nil, apperr.Validation("user has no username")
	}

	return user, nil
}

// writeAll transforms and writes the files concurrently. It returns the relative
// paths written so far, in file order, even when it fails.
func (u *Uploader) writeAll(ctx context.Context, username string, stamp int64, files []ingest.File, opts processor.Options) ([]string, error) {
	// each goroutine owns one slot
	written := make([]string, len(files))

	g, gctx := errgroup.WithContext(ctx)

	for i, f := range files {
		g.Go(func() error {
			out, err := u.transformer.Transform(gctx, f.Data, opts)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				return apperr.Transform(fmt.Sprintf("invalid image at index %d", i), err)
			}

			name := fmt.Sprintf("%d-%s_%d.%s", stamp, filename.SafeBase(f.Name), i, opts.Format.Ext())
			rel := path.Join(username, name)

			abs, err := u.images.Resolve(rel)
			if err != nil {
				return guardErr("failed to store file", err)
			}

			if err = os.WriteFile(abs, out, 0o644); err != nil {
				return apperr.Storage("failed to store file", err)
			}

			written[i] = rel

			metrics.FilesStored.Inc()

			return nil
		})
	}

	err := g.Wait()

	// keep order, drop slots of files that never made it to disk
	paths := written[:0]
	for _, rel := range written {
		if rel != "" {
			paths = append(paths, rel)
		}
	}

	return paths, err
}

func (u *Uploader) orphan(ctx context.Context, ownerID uuid.UUID, paths []string) {
	if len(paths) == 0 {
		return
	}

	u.publisher.Publish(ctx, events.Event{
		Type:    events.Orphaned,
		OwnerID: ownerID,
		Paths:   paths,
	})
}

func guardErr(msg string, err error) error {
	if pathguard.IsViolation(err) {
		return apperr.Confinement(err)
	}

	return apperr.Storage(msg, err)
}
