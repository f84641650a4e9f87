package review

import (
	"context"
	"strings"
	"unicode/utf8"

	"churrasco/internal/domain"
	"churrasco/internal/pkg/dberr"
	"churrasco/internal/realtime"

	"go.uber.org/zap"
)

type ReviewRepository interface {
	Create(ctx context.Context, rv *domain.Review) error
	ExistsForBooking(ctx context.Context, bookingID int64) (bool, error)
	ListByProfessional(ctx context.Context, professionalID int64, limit int) ([]domain.Review, error)
	Summary(ctx context.Context, professionalID int64) (domain.RatingSummary, error)
}

type BookingGate interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

type Service struct {
	reviews  ReviewRepository
	bookings BookingGate
	events   realtime.Publisher
	log      *zap.Logger
}

func NewService(reviews ReviewRepository, bookings BookingGate, events realtime.Publisher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{reviews: reviews, bookings: bookings, events: events, log: log}
}

// Create stores the client's review of a completed booking. Each booking
// accepts a single review.
func (s *Service) Create(ctx context.Context, clientID int64, req CreateReviewRequest) (*domain.Review, error) {
	if clientID <= 0 || req.BookingID <= 0 {
		return nil, ErrInvalidRequest
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}
	comment := strings.TrimSpace(req.Comment)
	if utf8.RuneCountInString(comment) > maxCommentLength {
		return nil, ErrInvalidRequest
	}

	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.ClientID != clientID {
		return nil, ErrForbidden
	}
	if b.Status != domain.BookingCompleted {
		return nil, ErrReviewNotAllowed
	}

	exists, err := s.reviews.ExistsForBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	rv := &domain.Review{
		BookingID:      b.ID,
		ClientID:       clientID,
		ProfessionalID: b.ProfessionalID,
		ServiceID:      b.ServiceID,
		Rating:         req.Rating,
		Comment:        comment,
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}

	realtime.Emit(ctx, s.events, s.log, realtime.TableReviews, realtime.EventInsert, rv, rv.ProfessionalID, rv.ClientID)
	return rv, nil
}

func (s *Service) ListByProfessional(ctx context.Context, professionalID int64, limit int) ([]domain.Review, error) {
	if professionalID <= 0 {
		return nil, ErrInvalidRequest
	}
	return s.reviews.ListByProfessional(ctx, professionalID, ClampLimit(limit))
}

// GetSummary returns the professional's average rating over all reviews.
func (s *Service) GetSummary(ctx context.Context, professionalID int64) (domain.RatingSummary, error) {
	if professionalID <= 0 {
		return domain.RatingSummary{}, ErrInvalidRequest
	}
	return s.reviews.Summary(ctx, professionalID)
}

func (s *Service) HasReview(ctx context.Context, bookingID int64) (bool, error) {
	return s.reviews.ExistsForBooking(ctx, bookingID)
}
