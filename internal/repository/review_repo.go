package repository

import (
	"context"

	"churrasco/internal/domain"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *ReviewRepository) ExistsForBooking(ctx context.Context, bookingID int64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("booking_id = ?", bookingID).
		Count(&cnt).Error
	return cnt > 0, err
}

// ListByProfessional returns the newest reviews with the author's name.
func (r *ReviewRepository) ListByProfessional(ctx context.Context, professionalID int64, limit int) ([]domain.Review, error) {
	type row struct {
		domain.Review
		AuthorName string `gorm:"column:client_name"`
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Table("reviews").
		Select("reviews.*, users.name AS client_name").
		Joins("LEFT JOIN users ON users.id = reviews.client_id").
		Where("reviews.professional_id = ?", professionalID).
		Order("reviews.created_at DESC").
		Order("reviews.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Review, 0, len(rows))
	for _, rw := range rows {
		rv := rw.Review
		rv.ClientName = rw.AuthorName
		out = append(out, rv)
	}
	return out, nil
}

type ratingRow struct {
	ProfessionalID int64   `gorm:"column:professional_id"`
	Average        float64 `gorm:"column:average"`
	Count          int64   `gorm:"column:count"`
}

// Summary aggregates AVG and COUNT server-side for one professional.
func (r *ReviewRepository) Summary(ctx context.Context, professionalID int64) (domain.RatingSummary, error) {
	var rw ratingRow
	err := r.db.WithContext(ctx).
		Model(&domain.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("professional_id = ?", professionalID).
		Scan(&rw).Error
	if err != nil {
		return domain.RatingSummary{}, err
	}
	return domain.RatingSummary{Average: rw.Average, Count: rw.Count}, nil
}

// Summaries aggregates ratings for many professionals in one grouped query.
// Professionals without reviews are absent from the map.
func (r *ReviewRepository) Summaries(ctx context.Context, professionalIDs []int64) (map[int64]domain.RatingSummary, error) {
	out := make(map[int64]domain.RatingSummary, len(professionalIDs))
	if len(professionalIDs) == 0 {
		return out, nil
	}

	var rows []ratingRow
	err := r.db.WithContext(ctx).
		Model(&domain.Review{}).
		Select("professional_id, AVG(rating) AS average, COUNT(*) AS count").
		Where("professional_id IN ?", professionalIDs).
		Group("professional_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, rw := range rows {
		out[rw.ProfessionalID] = domain.RatingSummary{Average: rw.Average, Count: rw.Count}
	}
	return out, nil
}
