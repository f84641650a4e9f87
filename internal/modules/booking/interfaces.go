package booking

import (
	"context"

	"churrasco/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByClient(ctx context.Context, clientID int64, status domain.BookingStatus) ([]domain.Booking, error)
	ListByProfessional(ctx context.Context, professionalID int64, status domain.BookingStatus) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (*domain.Booking, error)
}

type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

type UserRepository interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.User, error)
}

// ReviewLookup answers whether a booking was already reviewed.
type ReviewLookup interface {
	ExistsForBooking(ctx context.Context, bookingID int64) (bool, error)
}
