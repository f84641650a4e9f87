package review

import "errors"

var (
	ErrInvalidRequest   = errors.New("invalid_request")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not_found")
	ErrAlreadyReviewed  = errors.New("booking already reviewed")
	ErrReviewNotAllowed = errors.New("review_not_allowed")
)
