package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/semaphore"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"imageModeration/internal/lib/metrics"
	"log/slog"
	"time"
)

// maxSourcePixels rejects decompression bombs before the full decode.
const maxSourcePixels = 100_000_000

var (
	ErrUndecodable = errors.New("image cannot be decoded")
	ErrTooLarge    = errors.New("image dimensions too large")
)

// ImageProcessor normalizes uploaded images. It holds no per-image state, so one
// instance serves every request; the semaphore bounds how many CPU-heavy
// transforms run at once across the whole process.
type ImageProcessor struct {
	log *slog.Logger
	sem *semaphore.Weighted
}

func NewImageProcessor(log *slog.Logger, workers int) *ImageProcessor {
	if workers < 1 {
		workers = 1
	}

	return &ImageProcessor{
		log: log,
		sem: semaphore.NewWeighted(int64(workers)),
	}
}

// Transform decodes data, applies its EXIF orientation, shrinks it to fit a
// MaxWidth square without ever enlarging it, and encodes it in opts.Format.
// The output carries no EXIF, so the orientation tag is gone.
func (p *ImageProcessor) Transform(ctx context.Context, data []byte, opts Options) ([]byte, error) {
	const op = "processor.Transform"

	opts = opts.WithDefaults()

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer p.sem.Release(1)

	start := time.Now()

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrUndecodable, err)
	}
	if cfg.Width*cfg.Height > maxSourcePixels {
		return nil, fmt.Errorf("%s: %w: %dx%d", op, ErrTooLarge, cfg.Width, cfg.Height)
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrUndecodable, err)
	}
	if format == "webp" {
		src = orient(src, webpOrientation(data))
	}

	// Fit returns a copy untouched when src already fits.
	resized := imaging.Fit(src, opts.MaxWidth, opts.MaxWidth, imaging.Lanczos)

	var buf bytes.Buffer
	if err = opts.Format.encode(&buf, resized); err != nil {
		return nil, fmt.Errorf("%s: encode %s: %w", op, opts.Format.Name(), err)
	}

	metrics.TransformDuration.WithLabelValues(opts.Format.Name()).Observe(time.Since(start).Seconds())

	p.log.Debug("image transformed",
		slog.String("op", op),
		slog.String("format", opts.Format.Name()),
		slog.Int("src_width", src.Bounds().Dx()),
		slog.Int("src_height", src.Bounds().Dy()),
		slog.Int("width", resized.Bounds().Dx()),
		slog.Int("height", resized.Bounds().Dy()),
		slog.Int("bytes", buf.Len()),
	)

	return buf.Bytes(), nil
}
