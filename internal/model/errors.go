package model

import "errors"

// Error kinds returned by stores, cache, blob storage and services.
// Layers wrap them with context; callers inspect them with errors.Is.
var (
	ErrBadRequest     = errors.New("bad request")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal error")
	ErrNotImplemented = errors.New("not implemented")
	ErrTimeout        = errors.New("timeout")
)
