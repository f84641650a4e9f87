package catalog

import "errors"

var (
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("service not found")
	ErrValidation      = errors.New("invalid service data")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidFilter   = errors.New("invalid filter")
)

// FieldErrors carries validator failures by field name. It matches ErrValidation.
type FieldErrors map[string]string

func (FieldErrors) Error() string { return ErrValidation.Error() }

func (FieldErrors) Is(target error) bool { return target == ErrValidation }
