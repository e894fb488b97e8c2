// Package janitor sweeps files left on disk by upload batches whose metadata
// was never persisted. It reacts to images.orphaned events.
package janitor

import (
	"context"
	"errors"
	"fmt"
	"imageModeration/internal/events"
	"imageModeration/internal/lib/logger/sl"
	"log/slog"
	"os"
)

type PathResolver interface {
	Resolve(candidate string) (string, error)
}

type Janitor struct {
	log    *slog.Logger
	images PathResolver
}

func New(log *slog.Logger, images PathResolver) *Janitor {
	return &Janitor{log: log, images: images}
}

// Handle is a consumer callback. Missing files count as swept and paths that
// fail confinement are skipped.
func (j *Janitor) Handle(_ context.Context, message []byte) error {
	const op = "janitor.Handle"

	ev, err := events.Decode(message)
	if err != nil {
		return fmt.Errorf("%s: decode event: %w", op, err)
	}

	if ev.Type != events.Orphaned {
		return nil
	}

	log := j.log.With(slog.String("op", op), slog.String("owner_id", ev.OwnerID.String()))

	var errs []error
	removed := 0

	for _, rel := range ev.Paths {
		abs, err := j.images.Resolve(rel)
		if err != nil {
			log.Warn("orphan path rejected", slog.String("path", rel), sl.Err(err))
			continue
		}

		if err = os.Remove(abs); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			errs = append(errs, err)
			continue
		}
		removed++
	}

	log.Info("orphaned files swept", slog.Int("removed", removed), slog.Int("listed", len(ev.Paths)))

	if err = errors.Join(errs...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
