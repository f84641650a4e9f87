package repository

import (
	"context"
	"errors"
	"time"

	"churrasco/internal/domain"

	"gorm.io/gorm"
)

// ErrStatusChanged is returned when a booking left the expected status
// between read and write.
var ErrStatusChanged = errors.New("booking status changed")

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID             int64      `gorm:"column:id;primaryKey"`
	ClientID       int64      `gorm:"column:client_id;not null;index"`
	ProfessionalID int64      `gorm:"column:professional_id;not null;index"`
	ServiceID      int64      `gorm:"column:service_id;not null;index"`
	EventDate      time.Time  `gorm:"column:event_date;not null"`
	EventTime      string     `gorm:"column:event_time;size:5"`
	GuestCount     int        `gorm:"column:guest_count;not null"`
	Location       string     `gorm:"column:location"`
	Notes          *string    `gorm:"column:notes;type:text"`
	TotalPrice     float64    `gorm:"column:total_price"`
	Status         string     `gorm:"column:status;not null;index"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
	CancelledAt    *time.Time `gorm:"column:cancelled_at"`
	CompletedAt    *time.Time `gorm:"column:completed_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	return &domain.Booking{
		ID:             m.ID,
		ClientID:       m.ClientID,
		ProfessionalID: m.ProfessionalID,
		ServiceID:      m.ServiceID,
		EventDate:      m.EventDate,
		EventTime:      m.EventTime,
		GuestCount:     m.GuestCount,
		Location:       m.Location,
		Notes:          deref(m.Notes),
		TotalPrice:     m.TotalPrice,
		Status:         domain.BookingStatus(m.Status),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		CancelledAt:    m.CancelledAt,
		CompletedAt:    m.CompletedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	return bookingModel{
		ID:             b.ID,
		ClientID:       b.ClientID,
		ProfessionalID: b.ProfessionalID,
		ServiceID:      b.ServiceID,
		EventDate:      b.EventDate,
		EventTime:      b.EventTime,
		GuestCount:     b.GuestCount,
		Location:       b.Location,
		Notes:          nullable(b.Notes),
		TotalPrice:     b.TotalPrice,
		Status:         string(b.Status),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
		CancelledAt:    b.CancelledAt,
		CompletedAt:    b.CompletedAt,
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

// ListByClient returns the client's booking requests, newest first.
// An empty status lists every status.
func (r *BookingRepository) ListByClient(ctx context.Context, clientID int64, status domain.BookingStatus) ([]domain.Booking, error) {
	return r.list(ctx, "client_id = ?", clientID, status)
}

// ListByProfessional returns bookings received by the professional, newest first.
func (r *BookingRepository) ListByProfessional(ctx context.Context, professionalID int64, status domain.BookingStatus) ([]domain.Booking, error) {
	return r.list(ctx, "professional_id = ?", professionalID, status)
}

func (r *BookingRepository) list(ctx context.Context, cond string, id int64, status domain.BookingStatus) ([]domain.Booking, error) {
	q := r.db.WithContext(ctx).Where(cond, id)
	if status != "" {
		q = q.Where("status = ?", string(status))
	}

	var rows []bookingModel
	if err := q.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// UpdateStatus moves a booking from one status to another. The write only
// applies while the row still holds the expected status.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (*domain.Booking, error) {
	now := time.Now().UTC()
	updates := map[string]any{
		"status":     string(to),
		"updated_at": now,
	}
	switch to {
	case domain.BookingCancelled:
		updates["cancelled_at"] = now
	case domain.BookingCompleted:
		updates["completed_at"] = now
	}

	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, ErrStatusChanged
	}
	return r.GetByID(ctx, id)
}
