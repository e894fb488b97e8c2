// Package apperr carries the error taxonomy shared by the upload, serve and
// moderation paths. Every error that reaches an HTTP handler is either an
// *Error or is treated as a storage failure.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation is a user-correctable input problem.
	KindValidation
	// KindConfinement is a path that resolves outside its root.
	KindConfinement
	KindNotFound
	// KindTransform is an image that could not be decoded or encoded.
	KindTransform
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConfinement:
		return "confinement"
	case KindNotFound:
		return "not_found"
	case KindTransform:
		return "transform"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind Kind
	// Msg is the short public message. It never contains filesystem paths.
	Msg string
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}

	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

func Confinement(err error) error {
	return &Error{Kind: KindConfinement, Msg: "invalid path", Err: err}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func Transform(msg string, err error) error {
	return &Error{Kind: KindTransform, Msg: msg, Err: err}
}

func Storage(msg string, err error) error {
	return &Error{Kind: KindStorage, Msg: msg, Err: err}
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindConfinement, KindTransform:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text safe to hand to a client.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal error"
	}

	return e.Msg
}
