package subscription

import (
	"math"
	"time"
)

// PlanID identifies a subscription tier.
type PlanID string

const (
	PlanBasic   PlanID = "basic"
	PlanPro     PlanID = "pro"
	PlanPremium PlanID = "premium"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// Plan is a tier professionals can pay for.
type Plan struct {
	ID           PlanID    `gorm:"column:id;primaryKey;size:32" json:"id"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Description  string    `gorm:"column:description" json:"description"`
	Price        float64   `gorm:"column:price;not null" json:"price"`
	DurationDays int       `gorm:"column:duration_days;not null" json:"duration_days"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Plan) TableName() string { return "subscription_plans" }

// Subscription is a paid, time-bounded entitlement of one professional.
type Subscription struct {
	ID             string     `gorm:"column:id;primaryKey;size:36" json:"id"`
	ProfessionalID int64      `gorm:"column:professional_id;not null;index" json:"professional_id"`
	PlanID         PlanID     `gorm:"column:plan_id;not null;size:32" json:"plan_id"`
	Status         Status     `gorm:"column:status;not null;size:16;index" json:"status"`
	StartsAt       time.Time  `gorm:"column:starts_at;not null" json:"starts_at"`
	ExpiresAt      time.Time  `gorm:"column:expires_at;not null;index" json:"expires_at"`
	Amount         float64    `gorm:"column:amount;not null" json:"amount"`
	PaymentMethod  string     `gorm:"column:payment_method;size:16" json:"payment_method"`
	PaymentRef     string     `gorm:"column:payment_ref" json:"payment_ref,omitempty"`
	CancelledAt    *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CancelReason   string     `gorm:"column:cancel_reason" json:"cancel_reason,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Subscription) TableName() string { return "subscriptions" }

// IsValid reports whether the subscription is active and not past expiry.
func (s *Subscription) IsValid(now time.Time) bool {
	return s.Status == StatusActive && now.Before(s.ExpiresAt)
}

// DaysRemaining rounds the time left up to whole days; 0 once expired.
func (s *Subscription) DaysRemaining(now time.Time) int {
	if !s.IsValid(now) {
		return 0
	}
	return int(math.Ceil(s.ExpiresAt.Sub(now).Hours() / 24))
}

// DefaultPlans are inserted on first migration.
func DefaultPlans() []Plan {
	return []Plan{
		{ID: PlanBasic, Name: "Básico", Description: "Perfil publicado e até 3 serviços", Price: 49.90, DurationDays: 30, IsActive: true},
		{ID: PlanPro, Name: "Profissional", Description: "Serviços ilimitados e destaque na busca", Price: 99.90, DurationDays: 30, IsActive: true},
		{ID: PlanPremium, Name: "Premium", Description: "Tudo do Profissional por um trimestre", Price: 249.90, DurationDays: 90, IsActive: true},
	}
}
