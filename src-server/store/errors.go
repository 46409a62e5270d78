package store

import "errors"

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotFound         = errors.New("event not found")
	ErrPermissionDenied = errors.New("permission denied")
)
