package domain

import "time"

// RevokedToken blocks an access token by its jti until the token would have
// expired anyway.
type RevokedToken struct {
	JTI       string    `json:"jti" gorm:"primaryKey;size:64"`
	UserID    int64     `json:"user_id" gorm:"index;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (RevokedToken) TableName() string { return "revoked_tokens" }

// PasswordReset stores a one-time reset token.
//
// Only the SHA-256 hash of the token is stored.
type PasswordReset struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	UserID    int64      `json:"user_id" gorm:"index;not null"`
	TokenHash string     `json:"-" gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"not null"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (PasswordReset) TableName() string { return "password_resets" }

func (t *PasswordReset) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

func (t *PasswordReset) IsUsed() bool {
	return t.UsedAt != nil
}
