package domain

import "time"

type UserRole string

const (
	RoleClient       UserRole = "client"
	RoleProfessional UserRole = "professional"
)

func (r UserRole) Valid() bool {
	return r == RoleClient || r == RoleProfessional
}

// User is the profile row behind every account. Professionals (churrasqueiros)
// publish services; clients book them.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email" validate:"required,email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	WhatsApp     string    `json:"whatsapp,omitempty"`
	City         string    `json:"city,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) IsProfessional() bool {
	return u != nil && u.Role == RoleProfessional
}

// ContactPhone prefers the WhatsApp number when one is set.
func (u *User) ContactPhone() string {
	if u.WhatsApp != "" {
		return u.WhatsApp
	}
	return u.Phone
}
