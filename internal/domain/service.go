package domain

import "time"

// ServiceCategory is the explicit taxonomy a professional may tag a service with.
type ServiceCategory string

const (
	CategoryTradicional ServiceCategory = "tradicional"
	CategoryPremium     ServiceCategory = "premium"
	CategoryGaucho      ServiceCategory = "gaucho"
	CategoryCorporativo ServiceCategory = "corporativo"
	CategoryFesta       ServiceCategory = "festa"
)

var Categories = []ServiceCategory{
	CategoryTradicional,
	CategoryPremium,
	CategoryGaucho,
	CategoryCorporativo,
	CategoryFesta,
}

func (c ServiceCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Service is a barbecue offering published by a professional.
// MaxGuests is the capacity enforced when a booking is created.
type Service struct {
	ID             int64           `json:"id" gorm:"primaryKey"`
	ProfessionalID int64           `json:"professional_id" gorm:"not null;index"`
	Title          string          `json:"title" gorm:"not null"`
	Description    string          `json:"description" gorm:"type:text"`
	Category       ServiceCategory `json:"category,omitempty"`
	PriceFrom      float64         `json:"price_from" gorm:"not null"`
	PriceTo        float64         `json:"price_to,omitempty"`
	DurationHours  int             `json:"duration_hours"`
	MinGuests      int             `json:"min_guests"`
	MaxGuests      int             `json:"max_guests" gorm:"not null"`
	Location       string          `json:"location"`
	Images         []string        `json:"images" gorm:"serializer:json"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Professional *User          `json:"professional,omitempty" gorm:"-"`
	Rating       *RatingSummary `json:"rating,omitempty" gorm:"-"`
}

func (Service) TableName() string {
	return "services"
}
