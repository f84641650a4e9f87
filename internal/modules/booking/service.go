package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"churrasco/internal/domain"
	"churrasco/internal/pkg/dberr"
	"churrasco/internal/pkg/validator"
	"churrasco/internal/realtime"
	"churrasco/internal/repository"

	"go.uber.org/zap"
)

type Service struct {
	bookings BookingRepository
	services ServiceRepository
	users    UserRepository
	reviews  ReviewLookup
	events   realtime.Publisher
	log      *zap.Logger
	now      func() time.Time
	loc      *time.Location
}

func NewService(
	bookings BookingRepository,
	services ServiceRepository,
	users UserRepository,
	reviews ReviewLookup,
	events realtime.Publisher,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		bookings: bookings,
		services: services,
		users:    users,
		reviews:  reviews,
		events:   events,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		loc:      time.UTC,
	}
}

// WithLocation sets the zone in which "today" is decided for event dates.
func (s *Service) WithLocation(loc *time.Location) *Service {
	if loc != nil {
		s.loc = loc
	}
	return s
}

// CreateBooking opens a pending request from a client for one of a
// professional's services.
func (s *Service) CreateBooking(ctx context.Context, clientID int64, req CreateBookingRequest) (*domain.Booking, error) {
	eventDate, err := time.Parse(eventDateLayout, strings.TrimSpace(req.EventDate))
	if err != nil {
		return nil, ErrValidation
	}
	req.Location = strings.TrimSpace(req.Location)
	if req.GuestCount < 1 || req.Location == "" {
		return nil, ErrValidation
	}

	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if eventDate.Before(today) {
		return nil, ErrDateInPast
	}

	svc, err := s.services.GetByID(ctx, req.ServiceID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	if svc.MaxGuests > 0 && req.GuestCount > svc.MaxGuests {
		return nil, ErrCapacityExceeded
	}
	if svc.ProfessionalID == clientID {
		return nil, ErrForbidden
	}

	b := &domain.Booking{
		ClientID:       clientID,
		ProfessionalID: svc.ProfessionalID,
		ServiceID:      svc.ID,
		EventDate:      eventDate,
		EventTime:      strings.TrimSpace(req.EventTime),
		GuestCount:     req.GuestCount,
		Location:       req.Location,
		Notes:          strings.TrimSpace(req.Notes),
		TotalPrice:     CalculateTotal(svc.PriceFrom, req.GuestCount),
		Status:         domain.BookingPending,
	}
	if errs := validator.Validate(b); errs != nil {
		return nil, ErrValidation
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}
	b.Service = svc

	s.log.Info("booking created",
		zap.Int64("booking_id", b.ID),
		zap.Int64("client_id", clientID),
		zap.Int64("professional_id", b.ProfessionalID),
		zap.Float64("total_price", b.TotalPrice),
	)
	realtime.Emit(ctx, s.events, s.log, realtime.TableBookings, realtime.EventInsert, b, b.Participants()...)
	return b, nil
}

// Accept confirms a pending booking. Professional only.
func (s *Service) Accept(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	return s.advance(ctx, userID, bookingID, domain.BookingConfirmed)
}

// Reject declines a pending booking. Professional only.
func (s *Service) Reject(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	b, err := s.load(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if b.ProfessionalID != userID {
		return nil, ErrForbidden
	}
	return s.apply(ctx, b, ActorProfessional, domain.BookingCancelled)
}

// Complete finalizes a confirmed booking. Professional only.
func (s *Service) Complete(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	return s.advance(ctx, userID, bookingID, domain.BookingCompleted)
}

// Cancel withdraws a pending request. Client only.
func (s *Service) Cancel(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	b, err := s.load(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if b.ClientID != userID {
		return nil, ErrForbidden
	}
	return s.apply(ctx, b, ActorClient, domain.BookingCancelled)
}

func (s *Service) advance(ctx context.Context, userID, bookingID int64, to domain.BookingStatus) (*domain.Booking, error) {
	b, err := s.load(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	actor, _ := ActorFor(b, userID)
	return s.apply(ctx, b, actor, to)
}

func (s *Service) apply(ctx context.Context, b *domain.Booking, actor Actor, to domain.BookingStatus) (*domain.Booking, error) {
	if err := ValidateTransition(actor, b.Status, to); err != nil {
		return nil, err
	}

	updated, err := s.bookings.UpdateStatus(ctx, b.ID, b.Status, to)
	if err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, ErrInvalidStatusTransition
		}
		return nil, err
	}

	s.log.Info("booking status changed",
		zap.Int64("booking_id", b.ID),
		zap.String("actor", string(actor)),
		zap.String("from", string(b.Status)),
		zap.String("to", string(to)),
	)
	realtime.Emit(ctx, s.events, s.log, realtime.TableBookings, realtime.EventUpdate, updated, updated.Participants()...)
	return updated, nil
}

// load returns the booking when userID is one of its participants.
func (s *Service) load(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !b.IsParticipant(userID) {
		return nil, ErrForbidden
	}
	return b, nil
}

// GetByID returns a booking with its service and both participants attached.
func (s *Service) GetByID(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	b, err := s.load(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	list := []domain.Booking{*b}
	if err := s.attach(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// ListMine lists the bookings a client requested or a professional received.
func (s *Service) ListMine(ctx context.Context, userID int64, role domain.UserRole, filter ListFilter) ([]domain.Booking, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrValidation
	}

	var (
		list []domain.Booking
		err  error
	)
	if role == domain.RoleProfessional {
		list, err = s.bookings.ListByProfessional(ctx, userID, filter.Status)
	} else {
		list, err = s.bookings.ListByClient(ctx, userID, filter.Status)
	}
	if err != nil {
		return nil, err
	}
	if err := s.attach(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// ReviewStatus tells the client whether the booking can still be reviewed.
func (s *Service) ReviewStatus(ctx context.Context, userID, bookingID int64) (*ReviewStatusResponse, error) {
	b, err := s.load(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	has, err := s.reviews.ExistsForBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	return &ReviewStatusResponse{
		CanReview: !has && b.Status == domain.BookingCompleted && b.ClientID == userID,
		HasReview: has,
	}, nil
}

func (s *Service) attach(ctx context.Context, list []domain.Booking) error {
	if len(list) == 0 {
		return nil
	}

	services := make(map[int64]*domain.Service)
	userIDs := make([]int64, 0, len(list)*2)
	for _, b := range list {
		userIDs = append(userIDs, b.ClientID, b.ProfessionalID)
		if _, seen := services[b.ServiceID]; seen {
			continue
		}
		svc, err := s.services.GetByID(ctx, b.ServiceID)
		if err != nil && !dberr.IsNotFound(err) {
			return err
		}
		services[b.ServiceID] = svc
	}

	users, err := s.users.GetByIDs(ctx, userIDs)
	if err != nil {
		return err
	}
	for i := range list {
		list[i].Service = services[list[i].ServiceID]
		list[i].Client = users[list[i].ClientID]
		list[i].Professional = users[list[i].ProfessionalID]
	}
	return nil
}
