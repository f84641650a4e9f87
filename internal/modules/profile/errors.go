package profile

import "errors"

var (
	ErrNotFound   = errors.New("profile not found")
	ErrValidation = errors.New("invalid profile data")
)
