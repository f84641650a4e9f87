package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Review is written by a client once a booking is completed. The unique
// index on booking_id allows at most one review per booking.
type Review struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	BookingID      int64     `json:"booking_id" gorm:"not null;uniqueIndex"`
	ClientID       int64     `json:"client_id" gorm:"not null;index"`
	ProfessionalID int64     `json:"professional_id" gorm:"not null;index"`
	ServiceID      int64     `json:"service_id" gorm:"not null;index"`
	Rating         int       `json:"rating" gorm:"not null"`
	Comment        string    `json:"comment,omitempty" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at"`

	ClientName string `json:"client_name,omitempty" gorm:"-"`
}

func (Review) TableName() string {
	return "reviews"
}

// NewProfessionalLabel is shown instead of a score while nobody has rated.
const NewProfessionalLabel = "Novo"

// RatingSummary is the arithmetic mean and count of a professional's reviews.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

func (r RatingSummary) Label() string {
	if r.Count == 0 {
		return NewProfessionalLabel
	}
	return fmt.Sprintf("%.1f", r.Average)
}

func (r RatingSummary) MarshalJSON() ([]byte, error) {
	type plain RatingSummary
	return json.Marshal(struct {
		plain
		Label string `json:"label"`
	}{plain(r), r.Label()})
}
