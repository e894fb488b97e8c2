// Package ingest reads multipart uploads into memory before any processing
// starts. Count and size limits are enforced while the body streams in, so an
// oversized request is cut off instead of being spooled to disk.
package ingest

import (
	"errors"
	"fmt"
	"github.com/gabriel-vasile/mimetype"
	"imageModeration/internal/lib/apperr"
	"io"
	"mime"
	"net/http"
	"strings"
)

const (
	// formOverhead covers part headers, boundaries and plain fields.
	formOverhead = 1 << 20
	maxFieldSize = 64 << 10
)

type Limits struct {
	MaxFiles    int
	MaxFileSize int64
}

type File struct {
	// Name is the client-supplied file name, unsanitized.
	Name string
	// ContentType is the media type the client declared for the part.
	ContentType string
	// Sniffed is the media type detected from the content itself.
	Sniffed string
	Data    []byte
}

type Form struct {
	Files  []File
	Values map[string]string
}

func (f *Form) Value(key string) string {
	return f.Values[key]
}

// Parse consumes the request body. Parts named field are collected as files;
// other file parts are discarded and plain parts become Values.
func Parse(w http.ResponseWriter, r *http.Request, field string, limits Limits) (*Form, error) {
	const op = "ingest.Parse"

	r.Body = http.MaxBytesReader(w, r.Body, int64(limits.MaxFiles)*limits.MaxFileSize+formOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, apperr.Validation("invalid multipart form")
	}

	form := &Form{Values: make(map[string]string)}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, classify(op, err)
		}

		switch {
		case part.FormName() == field && part.FileName() != "":
			if len(form.Files) == limits.MaxFiles {
				_ = part.Close()
				return nil, apperr.Validation("too many files")
			}

			file, err := readFile(part.FileName(), part.Header.Get("Content-Type"), part, limits.MaxFileSize)
			_ = part.Close()
			if err != nil {
				return nil, classify(op, err)
			}

			form.Files = append(form.Files, file)
		case part.FileName() != "":
			_, err = io.Copy(io.Discard, part)
			_ = part.Close()
			if err != nil {
				return nil, classify(op, err)
			}
		default:
			value, err := io.ReadAll(io.LimitReader(part, maxFieldSize))
			_ = part.Close()
			if err != nil {
				return nil, classify(op, err)
			}

			form.Values[part.FormName()] = string(value)
		}
	}

	return form, nil
}

var errFileTooLarge = errors.New("file too large")

func readFile(name, declared string, r io.Reader, maxSize int64) (File, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return File{}, err
	}
	if int64(len(data)) > maxSize {
		return File{}, errFileTooLarge
	}

	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(declared))
	}

	return File{
		Name:        name,
		ContentType: mediaType,
		Sniffed:     mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}

func classify(op string, err error) error {
	var maxBytesErr *http.MaxBytesError

	if errors.Is(err, errFileTooLarge) || errors.As(err, &maxBytesErr) {
		return apperr.Validation("file too large")
	}

	return &apperr.Error{
		Kind: apperr.KindValidation,
		Msg:  "invalid multipart form",
		Err:  fmt.Errorf("%s: %w", op, err),
	}
}
