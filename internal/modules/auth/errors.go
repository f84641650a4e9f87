package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidRole        = errors.New("role must be client or professional")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrInvalidResetToken  = errors.New("reset token is invalid or expired")
	ErrUserNotFound       = errors.New("user not found")
)
