package storage

import "errors"

var (
	ErrImageNotFound = errors.New("image not found")
	ErrUserNotFound  = errors.New("user not found")
)
