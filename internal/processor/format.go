package processor

import (
	"fmt"
	"github.com/disintegration/imaging"
	"image"
	"image/png"
	"io"
	"strconv"
	"strings"
)

const (
	DefaultMaxWidth = 1280
	MaxWidthLimit   = 4096
	DefaultQuality  = 80
	MaxQuality      = 100
)

// Format is the output encoding of a batch. The set is closed: JPEG or PNG.
type Format interface {
	Name() string
	Ext() string
	encode(w io.Writer, img image.Image) error
}

type JPEG struct {
	Quality int
}

func (JPEG) Name() string { return "jpeg" }
func (JPEG) Ext() string  { return "jpg" }

func (f JPEG) encode(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(ClampQuality(f.Quality)))
}

type PNG struct{}

func (PNG) Name() string { return "png" }
func (PNG) Ext() string  { return "png" }

func (PNG) encode(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
}

// Options are the request-level transform settings shared by every file of a batch.
type Options struct {
	Format   Format
	MaxWidth int
}

// WithDefaults fills a missing format and clamps MaxWidth.
func (o Options) WithDefaults() Options {
	if o.Format == nil {
		o.Format = JPEG{Quality: DefaultQuality}
	}
	o.MaxWidth = ClampWidth(o.MaxWidth)

	return o
}

// ParseOptions reads the upload query parameters. Width and quality never
// fail: unparsable or non-positive values fall back to their defaults and
// oversized ones are capped. An unknown format is rejected.
func ParseOptions(format, width, quality string) (Options, error) {
	var f Format

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "jpg", "jpeg":
		f = JPEG{Quality: ClampQuality(atoi(quality))}
	case "png":
		f = PNG{}
	default:
		return Options{}, fmt.Errorf("unsupported format %q", format)
	}

	return Options{
		Format:   f,
		MaxWidth: ClampWidth(atoi(width)),
	}, nil
}

func ClampWidth(w int) int {
	return clamp(w, DefaultMaxWidth, MaxWidthLimit)
}

func ClampQuality(q int) int {
	return clamp(q, DefaultQuality, MaxQuality)
}

func clamp(v, def, upper int) int {
	if v < 1 {
		return def
	}
	if v > upper {
		return upper
	}

	return v
}

func atoi(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}

	return v
}
