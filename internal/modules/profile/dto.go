package profile

import (
	"churrasco/internal/domain"
	"churrasco/internal/modules/contact"
)

// UpdateRequest carries the editable profile fields. Nil pointers leave the
// stored value untouched.
type UpdateRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=120"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	WhatsApp *string `json:"whatsapp" validate:"omitempty,max=32"`
	City     *string `json:"city" validate:"omitempty,max=120"`
	Bio      *string `json:"bio" validate:"omitempty,max=2000"`
}

// PublicProfile is what other users see of an account.
type PublicProfile struct {
	ID        int64                 `json:"id"`
	Name      string                `json:"name"`
	Role      domain.UserRole       `json:"role"`
	City      string                `json:"city,omitempty"`
	Bio       string                `json:"bio,omitempty"`
	AvatarURL string                `json:"avatar_url,omitempty"`
	Rating    *domain.RatingSummary `json:"rating,omitempty"`
	Services  []domain.Service      `json:"services,omitempty"`
	Contact   contact.Links         `json:"contact"`
}
