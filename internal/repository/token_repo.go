package repository

import (
	"context"
	"time"

	"churrasco/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenRepository stores revoked access tokens and password reset tokens.
type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Revoke blocks a jti. Revoking twice is a no-op.
func (r *TokenRepository) Revoke(ctx context.Context, t *domain.RevokedToken) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(t).Error
}

func (r *TokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&domain.RevokedToken{}).
		Where("jti = ?", jti).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *TokenRepository) CreateReset(ctx context.Context, t *domain.PasswordReset) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TokenRepository) GetResetByHash(ctx context.Context, hash string) (*domain.PasswordReset, error) {
	var t domain.PasswordReset
	if err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// MarkResetUsed consumes a reset token. It reports false when the token was
// already used.
func (r *TokenRepository) MarkResetUsed(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.PasswordReset{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", time.Now().UTC())
	return res.RowsAffected > 0, res.Error
}

// DeleteExpired drops revocations and reset tokens that can no longer matter.
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("expires_at < ?", now).Delete(&domain.RevokedToken{})
		if res.Error != nil {
			return res.Error
		}
		total += res.RowsAffected

		res = tx.Where("expires_at < ? OR used_at IS NOT NULL", now).Delete(&domain.PasswordReset{})
		if res.Error != nil {
			return res.Error
		}
		total += res.RowsAffected
		return nil
	})
	return total, err
}
