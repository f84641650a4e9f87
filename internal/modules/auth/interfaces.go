package auth

import (
	"context"
	"time"

	"churrasco/internal/domain"
)

// UserRepository holds only the methods the auth service uses.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, userID int64, hash string) error
	Delete(ctx context.Context, userID int64) error
}

type TokenRepository interface {
	Revoke(ctx context.Context, t *domain.RevokedToken) error
	CreateReset(ctx context.Context, t *domain.PasswordReset) error
	GetResetByHash(ctx context.Context, hash string) (*domain.PasswordReset, error)
	MarkResetUsed(ctx context.Context, id int64) (bool, error)
}

type TokenIssuer interface {
	GenerateToken(userID int64, role string) (string, error)
	TTL() time.Duration
}
