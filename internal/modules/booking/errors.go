package booking

import "errors"

var (
	ErrValidation              = errors.New("validation error")
	ErrNotFound                = errors.New("booking not found")
	ErrServiceNotFound         = errors.New("service not found")
	ErrCapacityExceeded        = errors.New("guest count exceeds service capacity")
	ErrDateInPast              = errors.New("event date is in the past")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrForbidden               = errors.New("not allowed to change this booking")
)
