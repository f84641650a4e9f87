package subscription

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles persistence for plans and subscriptions.
type Repository interface {
	ListPlans(ctx context.Context) ([]Plan, error)
	GetPlanByID(ctx context.Context, id PlanID) (*Plan, error)

	// GetActive returns the newest active subscription or nil.
	GetActive(ctx context.Context, professionalID int64) (*Subscription, error)
	// Activate cancels every active subscription of the professional and
	// inserts sub in one transaction.
	Activate(ctx context.Context, sub *Subscription, reason string) error
	// CreatePending stores a subscription whose payment is not settled yet.
	CreatePending(ctx context.Context, sub *Subscription) error
	GetPending(ctx context.Context, professionalID int64, id string) (*Subscription, error)
	// ActivatePending turns a pending row into the active subscription,
	// cancelling the previous active one in the same transaction.
	ActivatePending(ctx context.Context, sub *Subscription, reason string) error
	Cancel(ctx context.Context, id string, reason string, at time.Time) error
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Migrate creates the subscription tables and inserts missing default plans.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&Plan{}, &Subscription{}); err != nil {
		return err
	}
	plans := DefaultPlans()
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&plans).Error
}

func (r *repository) ListPlans(ctx context.Context) ([]Plan, error) {
	var plans []Plan
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("price ASC").Find(&plans).Error
	return plans, err
}

func (r *repository) GetPlanByID(ctx context.Context, id PlanID) (*Plan, error) {
	var plan Plan
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *repository) GetActive(ctx context.Context, professionalID int64) (*Subscription, error) {
	var sub Subscription
	err := r.db.WithContext(ctx).
		Where("professional_id = ? AND status = ?", professionalID, StatusActive).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *repository) Activate(ctx context.Context, sub *Subscription, reason string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Subscription{}).
			Where("professional_id = ? AND status = ?", sub.ProfessionalID, StatusActive).
			Updates(map[string]any{
				"status":        StatusCancelled,
				"cancel_reason": reason,
				"cancelled_at":  sub.StartsAt,
				"updated_at":    sub.StartsAt,
			}).Error; err != nil {
			return err
		}
		return tx.Create(sub).Error
	})
}

func (r *repository) CreatePending(ctx context.Context, sub *Subscription) error {
	sub.Status = StatusPending
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *repository) GetPending(ctx context.Context, professionalID int64, id string) (*Subscription, error) {
	var sub Subscription
	err := r.db.WithContext(ctx).
		Where("id = ? AND professional_id = ? AND status = ?", id, professionalID, StatusPending).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *repository) ActivatePending(ctx context.Context, sub *Subscription, reason string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Subscription{}).
			Where("professional_id = ? AND status = ?", sub.ProfessionalID, StatusActive).
			Updates(map[string]any{
				"status":        StatusCancelled,
				"cancel_reason": reason,
				"cancelled_at":  sub.StartsAt,
				"updated_at":    sub.StartsAt,
			}).Error; err != nil {
			return err
		}

		res := tx.Model(&Subscription{}).
			Where("id = ? AND status = ?", sub.ID, StatusPending).
			Updates(map[string]any{
				"status":     StatusActive,
				"starts_at":  sub.StartsAt,
				"expires_at": sub.ExpiresAt,
				"updated_at": sub.StartsAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSubscriptionNotFound
		}
		sub.Status = StatusActive
		return nil
	})
}

func (r *repository) Cancel(ctx context.Context, id string, reason string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&Subscription{}).
		Where("id = ? AND status = ?", id, StatusActive).
		Updates(map[string]any{
			"status":        StatusCancelled,
			"cancel_reason": reason,
			"cancelled_at":  at,
			"updated_at":    at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (r *repository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Subscription{}).
		Where("status IN ? AND expires_at < ?", []Status{StatusActive, StatusPending}, now).
		Updates(map[string]any{
			"status":     StatusExpired,
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}
