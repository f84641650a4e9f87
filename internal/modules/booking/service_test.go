package booking

import (
	"context"
	"testing"
	"time"

	"churrasco/internal/domain"
	"churrasco/internal/realtime"
	"churrasco/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	if b != nil {
		b.ID = 999
	}
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByClient(ctx context.Context, clientID int64, status domain.BookingStatus) ([]domain.Booking, error) {
	args := m.Called(ctx, clientID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByProfessional(ctx context.Context, professionalID int64, status domain.BookingStatus) ([]domain.Booking, error) {
	args := m.Called(ctx, professionalID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (*domain.Booking, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*domain.User), args.Error(1)
}

type MockReviewLookup struct {
	mock.Mock
}

func (m *MockReviewLookup) ExistsForBooking(ctx context.Context, bookingID int64) (bool, error) {
	args := m.Called(ctx, bookingID)
	return args.Bool(0), args.Error(1)
}

type recordingPublisher struct {
	events []realtime.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev realtime.Event) error {
	p.events = append(p.events, ev)
	return nil
}

type fixture struct {
	bookings *MockBookingRepository
	services *MockServiceRepository
	users    *MockUserRepository
	reviews  *MockReviewLookup
	events   *recordingPublisher
	svc      *Service
}

func newFixture() *fixture {
	f := &fixture{
		bookings: new(MockBookingRepository),
		services: new(MockServiceRepository),
		users:    new(MockUserRepository),
		reviews:  new(MockReviewLookup),
		events:   &recordingPublisher{},
	}
	f.svc = NewService(f.bookings, f.services, f.users, f.reviews, f.events, nil)
	f.svc.now = func() time.Time { return time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC) }
	return f
}

func sampleService() *domain.Service {
	return &domain.Service{ID: 7, ProfessionalID: 2, Title: "Churrasco completo", PriceFrom: 500, MaxGuests: 40}
}

func validRequest() CreateBookingRequest {
	return CreateBookingRequest{
		ServiceID:  7,
		EventDate:  "2026-06-01",
		EventTime:  "19:30",
		GuestCount: 15,
		Location:   "Rua das Flores, 10",
	}
}

func TestService_CreateBooking_Success(t *testing.T) {
	f := newFixture()
	f.services.On("GetByID", mock.Anything, int64(7)).Return(sampleService(), nil)
	f.bookings.On("Create", mock.Anything, mock.AnythingOfType("*domain.Booking")).Return(nil)

	b, err := f.svc.CreateBooking(context.Background(), 1, validRequest())

	require.NoError(t, err)
	assert.Equal(t, int64(999), b.ID)
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, int64(2), b.ProfessionalID)
	assert.Equal(t, 600.0, b.TotalPrice)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, realtime.EventInsert, f.events.events[0].Type)
	assert.ElementsMatch(t, []int64{1, 2}, f.events.events[0].Audience)
	f.bookings.AssertExpectations(t)
}

func TestService_CreateBooking_TodayIsAllowed(t *testing.T) {
	f := newFixture()
	f.services.On("GetByID", mock.Anything, int64(7)).Return(sampleService(), nil)
	f.bookings.On("Create", mock.Anything, mock.Anything).Return(nil)

	req := validRequest()
	req.EventDate = "2026-05-10"
	_, err := f.svc.CreateBooking(context.Background(), 1, req)
	assert.NoError(t, err)
}

func TestService_CreateBooking_TodayFollowsLocalCalendar(t *testing.T) {
	f := newFixture()
	f.services.On("GetByID", mock.Anything, int64(7)).Return(sampleService(), nil)
	f.bookings.On("Create", mock.Anything, mock.Anything).Return(nil)
	// 01:30 UTC on the 11th is still 22:30 on the 10th in Brasília.
	f.svc.now = func() time.Time { return time.Date(2026, 5, 11, 1, 30, 0, 0, time.UTC) }
	f.svc.WithLocation(time.FixedZone("BRT", -3*60*60))

	req := validRequest()
	req.EventDate = "2026-05-10"
	_, err := f.svc.CreateBooking(context.Background(), 1, req)
	assert.NoError(t, err)

	req.EventDate = "2026-05-09"
	_, err = f.svc.CreateBooking(context.Background(), 1, req)
	assert.ErrorIs(t, err, ErrDateInPast)
}

func TestService_CreateBooking_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateBookingRequest)
		want   error
	}{
		{"past date", func(r *CreateBookingRequest) { r.EventDate = "2026-05-09" }, ErrDateInPast},
		{"bad date", func(r *CreateBookingRequest) { r.EventDate = "01/06/2026" }, ErrValidation},
		{"bad time", func(r *CreateBookingRequest) { r.EventTime = "25:00" }, ErrValidation},
		{"no guests", func(r *CreateBookingRequest) { r.GuestCount = 0 }, ErrValidation},
		{"blank location", func(r *CreateBookingRequest) { r.Location = "  " }, ErrValidation},
		{"over capacity", func(r *CreateBookingRequest) { r.GuestCount = 41 }, ErrCapacityExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.services.On("GetByID", mock.Anything, int64(7)).Return(sampleService(), nil).Maybe()

			req := validRequest()
			tt.mutate(&req)
			_, err := f.svc.CreateBooking(context.Background(), 1, req)

			assert.ErrorIs(t, err, tt.want)
			f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			assert.Empty(t, f.events.events)
		})
	}
}

func TestService_CreateBooking_ServiceNotFound(t *testing.T) {
	f := newFixture()
	f.services.On("GetByID", mock.Anything, int64(7)).Return(nil, gorm.ErrRecordNotFound)

	_, err := f.svc.CreateBooking(context.Background(), 1, validRequest())
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func pendingBooking() *domain.Booking {
	return &domain.Booking{ID: 5, ClientID: 1, ProfessionalID: 2, ServiceID: 7, Status: domain.BookingPending}
}

func TestService_Accept(t *testing.T) {
	f := newFixture()
	confirmed := pendingBooking()
	confirmed.Status = domain.BookingConfirmed
	f.bookings.On("GetByID", mock.Anything, int64(5)).Return(pendingBooking(), nil)
	f.bookings.On("UpdateStatus", mock.Anything, int64(5), domain.BookingPending, domain.BookingConfirmed).Return(confirmed, nil)

	b, err := f.svc.Accept(context.Background(), 2, 5)

	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, realtime.EventUpdate, f.events.events[0].Type)
	assert.Equal(t, realtime.TableBookings, f.events.events[0].Table)
}

func TestService_Accept_ByClientIsForbidden(t *testing.T) {
	f := newFixture()
	f.bookings.On("GetByID", mock.Anything, int64(5)).Return(pendingBooking(), nil)

	_, err := f.svc.Accept(context.Background(), 1, 5)

	assert.ErrorIs(t, err, ErrForbidden)
	f.bookings.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Accept_StrangerIsForbidden(t *testing.T) {
	f := newFixture()
	f.bookings.On("GetByID", mock.Anything, int64(5)).Return(pendingBooking(), nil)

	_, err := f.svc.Accept(context.Background(), 99, 5)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_Complete_FromPendingIsInvalid(t *testing.T) {
	f := newFixture()
	f.bookings.On("GetByID", mock.Anything, int64(5)).Return(pendingBooking(), nil)

	_, err := f.svc.Complete(context.Background(), 2, 5)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestService_Reject_ConcurrentChangeLoses(t *testing.T) {
	f := newFixture()
	f.bookings.On("GetByID", mock.Anything, int64(5)).Return(pendingBooking(), nil)
	f.bookings.On("UpdateStatus", mock.Anything, int64(5), domain.BookingPending, domain.BookingCancelled).
		Return(nil, repository.ErrStatusChanged)

	_, err := f.svc.Reject(context.Background(), 2, 5)

	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	assert.Empty(t, f.events.events)
}

func TestService_Cancel(t *testing.T) {
	f := newFixture()
	cancelled := pendingBooking()
	cancelled.Status = domain.BookingCancelled
	f.bookings.On("GetByID", mock.Anything, int64(5)).Return(pendingBooking(), nil)
	f.bookings.On("UpdateStatus", mock.Anything, int64(5), domain.BookingPending, domain.BookingCancelled).Return(cancelled, nil)

	b, err := f.svc.Cancel(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, b.Status)

	_, err = f.svc.Cancel(context.Background(), 2, 5)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_GetByID_NotFound(t *testing.T) {
	f := newFixture()
	f.bookings.On("GetByID", mock.Anything, int64(404)).Return(nil, gorm.ErrRecordNotFound)

	_, err := f.svc.GetByID(context.Background(), 1, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_ListMine_RoleAware(t *testing.T) {
	f := newFixture()
	rows := []domain.Booking{*pendingBooking()}
	f.bookings.On("ListByProfessional", mock.Anything, int64(2), domain.BookingPending).Return(rows, nil)
	f.bookings.On("ListByClient", mock.Anything, int64(1), domain.BookingStatus("")).Return(rows, nil)
	f.services.On("GetByID", mock.Anything, int64(7)).Return(sampleService(), nil)
	f.users.On("GetByIDs", mock.Anything, mock.Anything).Return(map[int64]*domain.User{
		1: {ID: 1, Name: "Cliente"},
		2: {ID: 2, Name: "Assador"},
	}, nil)

	list, err := f.svc.ListMine(context.Background(), 2, domain.RoleProfessional, ListFilter{Status: domain.BookingPending})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Cliente", list[0].Client.Name)
	assert.Equal(t, "Churrasco completo", list[0].Service.Title)

	_, err = f.svc.ListMine(context.Background(), 1, domain.RoleClient, ListFilter{})
	require.NoError(t, err)

	_, err = f.svc.ListMine(context.Background(), 1, domain.RoleClient, ListFilter{Status: "bogus"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_ReviewStatus(t *testing.T) {
	f := newFixture()
	completed := pendingBooking()
	completed.Status = domain.BookingCompleted
	f.bookings.On("GetByID", mock.Anything, int64(5)).Return(completed, nil)
	f.reviews.On("ExistsForBooking", mock.Anything, int64(5)).Return(false, nil).Once()

	st, err := f.svc.ReviewStatus(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.True(t, st.CanReview)
	assert.False(t, st.HasReview)

	f.reviews.On("ExistsForBooking", mock.Anything, int64(5)).Return(true, nil).Once()
	st, err = f.svc.ReviewStatus(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.False(t, st.CanReview)
	assert.True(t, st.HasReview)
}
