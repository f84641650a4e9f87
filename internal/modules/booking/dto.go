package booking

import "churrasco/internal/domain"

const eventDateLayout = "2006-01-02"

type CreateBookingRequest struct {
	ServiceID  int64  `json:"service_id" binding:"required"`
	EventDate  string `json:"event_date" binding:"required"`
	EventTime  string `json:"event_time" binding:"required"`
	GuestCount int    `json:"guest_count" binding:"required"`
	Location   string `json:"location" binding:"required"`
	Notes      string `json:"notes"`
}

type ReviewStatusResponse struct {
	CanReview bool `json:"can_review"`
	HasReview bool `json:"has_review"`
}

type ListFilter struct {
	Status domain.BookingStatus
}
