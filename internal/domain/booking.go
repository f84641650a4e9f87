package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

type Booking struct {
	ID             int64         `json:"id"`
	ClientID       int64         `json:"client_id" validate:"required"`
	ProfessionalID int64         `json:"professional_id" validate:"required"`
	ServiceID      int64         `json:"service_id" validate:"required"`
	EventDate      time.Time     `json:"event_date" validate:"required"`
	EventTime      string        `json:"event_time" validate:"required,hhmm"`
	GuestCount     int           `json:"guest_count" validate:"required,gte=1"`
	Location       string        `json:"location" validate:"required"`
	Notes          string        `json:"notes,omitempty"`
	TotalPrice     float64       `json:"total_price" validate:"gte=0"`
	Status         BookingStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	CancelledAt    *time.Time    `json:"cancelled_at,omitempty"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`

	Service      *Service `json:"service,omitempty"`
	Client       *User    `json:"client,omitempty"`
	Professional *User    `json:"professional,omitempty"`
}

// Participants returns the two user ids allowed to see the booking.
func (b *Booking) Participants() []int64 {
	return []int64{b.ClientID, b.ProfessionalID}
}

func (b *Booking) IsParticipant(userID int64) bool {
	return b.ClientID == userID || b.ProfessionalID == userID
}
