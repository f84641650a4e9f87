package subscription

import "errors"

var (
	ErrPlanNotFound         = errors.New("subscription plan not found")
	ErrSubscriptionNotFound = errors.New("no active subscription")
	ErrNotProfessional      = errors.New("only professionals can have subscriptions")
	ErrInvalidPayment       = errors.New("invalid payment details")
	ErrPaymentDeclined      = errors.New("payment declined")
	ErrPaymentIncomplete    = errors.New("payment not completed yet")
)
