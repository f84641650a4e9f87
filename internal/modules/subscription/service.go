package subscription

import (
	"context"
	"fmt"
	"strings"
	"time"

	"churrasco/internal/domain"
	"churrasco/internal/pkg/dberr"
	"churrasco/internal/realtime"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service handles professional subscriptions. Clients are rejected with
// ErrNotProfessional.
type Service struct {
	repo    Repository
	gateway PaymentGateway
	events  realtime.Publisher
	log     *zap.Logger
	now     func() time.Time
}

func NewService(repo Repository, gateway PaymentGateway, events realtime.Publisher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, gateway: gateway, events: events, log: log, now: time.Now}
}

func (s *Service) ListPlans(ctx context.Context) ([]Plan, error) {
	return s.repo.ListPlans(ctx)
}

// GetCurrent returns the caller's latest active subscription with its
// validity and remaining days.
func (s *Service) GetCurrent(ctx context.Context, userID int64, role domain.UserRole) (*CurrentView, error) {
	if role != domain.RoleProfessional {
		return nil, ErrNotProfessional
	}

	sub, err := s.repo.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return &CurrentView{HasSubscription: false}, nil
	}

	now := s.now().UTC()
	view := &CurrentView{
		HasSubscription: true,
		Subscription:    sub,
		IsValid:         sub.IsValid(now),
		DaysRemaining:   sub.DaysRemaining(now),
	}
	plan, err := s.repo.GetPlanByID(ctx, sub.PlanID)
	if err != nil && !dberr.IsNotFound(err) {
		return nil, err
	}
	view.Plan = plan
	return view, nil
}

// Subscribe validates the payment form, charges the plan price and then
// replaces any active subscription with the new one. A charge that has not
// succeeded yet only leaves a pending subscription behind.
func (s *Service) Subscribe(ctx context.Context, userID int64, role domain.UserRole, req SubscribeRequest) (*SubscribeResult, error) {
	if role != domain.RoleProfessional {
		return nil, ErrNotProfessional
	}
	now := s.now().UTC()

	form, err := ValidatePayment(req.Payment, now)
	if err != nil {
		return nil, err
	}

	plan, err := s.repo.GetPlanByID(ctx, PlanID(strings.ToLower(strings.TrimSpace(req.PlanID))))
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if !plan.IsActive {
		return nil, ErrPlanNotFound
	}

	receipt, err := s.gateway.Charge(ctx, Charge{
		ProfessionalID: userID,
		PlanID:         plan.ID,
		Amount:         plan.Price,
		Method:         form.Method,
		Last4:          last4(form.CardNumber),
		Description:    fmt.Sprintf("Churrasco %s (%d dias)", plan.Name, plan.DurationDays),
	})
	if err != nil {
		s.log.Info("subscription payment failed",
			zap.Int64("professional_id", userID), zap.String("plan_id", string(plan.ID)), zap.Error(err))
		return nil, err
	}

	sub := &Subscription{
		ID:             uuid.NewString(),
		ProfessionalID: userID,
		PlanID:         plan.ID,
		Status:         StatusActive,
		StartsAt:       now,
		ExpiresAt:      now.AddDate(0, 0, plan.DurationDays),
		Amount:         plan.Price,
		PaymentMethod:  form.Method,
		PaymentRef:     receipt.Reference,
	}

	if receipt.Status != PaymentSucceeded {
		if err := s.repo.CreatePending(ctx, sub); err != nil {
			s.log.Error("pending subscription not stored",
				zap.Int64("professional_id", userID), zap.String("payment_ref", receipt.Reference), zap.Error(err))
			return nil, err
		}
		s.log.Info("subscription awaiting payment",
			zap.Int64("professional_id", userID), zap.String("subscription_id", sub.ID), zap.String("payment_status", receipt.Status))
		realtime.Emit(ctx, s.events, s.log, realtime.TableSubscriptions, realtime.EventInsert, sub, userID)
		return &SubscribeResult{Subscription: sub, Payment: *receipt}, nil
	}

	if err := s.repo.Activate(ctx, sub, "replaced by "+string(plan.ID)); err != nil {
		s.log.Error("subscription not stored after successful charge",
			zap.Int64("professional_id", userID), zap.String("payment_ref", receipt.Reference), zap.Error(err))
		return nil, err
	}

	s.log.Info("subscription activated",
		zap.Int64("professional_id", userID), zap.String("plan_id", string(plan.ID)), zap.String("subscription_id", sub.ID))
	realtime.Emit(ctx, s.events, s.log, realtime.TableSubscriptions, realtime.EventInsert, sub, userID)

	return &SubscribeResult{Subscription: sub, Payment: *receipt}, nil
}

// Confirm activates a pending subscription once its payment has settled.
// The validity period starts at confirmation.
func (s *Service) Confirm(ctx context.Context, userID int64, role domain.UserRole, subscriptionID string) (*Subscription, error) {
	if role != domain.RoleProfessional {
		return nil, ErrNotProfessional
	}

	sub, err := s.repo.GetPending(ctx, userID, strings.TrimSpace(subscriptionID))
	if err != nil {
		return nil, err
	}

	status, err := s.gateway.Status(ctx, sub.PaymentRef)
	if err != nil {
		return nil, err
	}
	if status != PaymentSucceeded {
		return nil, fmt.Errorf("%w: status %s", ErrPaymentIncomplete, status)
	}

	plan, err := s.repo.GetPlanByID(ctx, sub.PlanID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	now := s.now().UTC()
	sub.StartsAt = now
	sub.ExpiresAt = now.AddDate(0, 0, plan.DurationDays)
	sub.UpdatedAt = now
	if err := s.repo.ActivatePending(ctx, sub, "replaced by "+string(plan.ID)); err != nil {
		return nil, err
	}

	s.log.Info("subscription activated",
		zap.Int64("professional_id", userID), zap.String("plan_id", string(plan.ID)), zap.String("subscription_id", sub.ID))
	realtime.Emit(ctx, s.events, s.log, realtime.TableSubscriptions, realtime.EventUpdate, sub, userID)
	return sub, nil
}

func (s *Service) Cancel(ctx context.Context, userID int64, role domain.UserRole, reason string) (*Subscription, error) {
	if role != domain.RoleProfessional {
		return nil, ErrNotProfessional
	}

	sub, err := s.repo.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubscriptionNotFound
	}

	now := s.now().UTC()
	reason = strings.TrimSpace(reason)
	if err := s.repo.Cancel(ctx, sub.ID, reason, now); err != nil {
		return nil, err
	}
	sub.Status = StatusCancelled
	sub.CancelReason = reason
	sub.CancelledAt = &now
	sub.UpdatedAt = now

	realtime.Emit(ctx, s.events, s.log, realtime.TableSubscriptions, realtime.EventUpdate, sub, userID)
	return sub, nil
}

// ExpireOverdue marks active subscriptions past their expiry as expired.
func (s *Service) ExpireOverdue(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpireOverdue(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("subscriptions expired", zap.Int64("count", n))
	}
	return n, nil
}
