package subscription

// PaymentForm is the checkout form. Card fields are ignored for pix.
type PaymentForm struct {
	Method     string `json:"method" binding:"required"`
	CardHolder string `json:"card_holder"`
	CardNumber string `json:"card_number"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

type SubscribeRequest struct {
	PlanID  string      `json:"plan_id" binding:"required"`
	Payment PaymentForm `json:"payment" binding:"required"`
}

type ConfirmRequest struct {
	SubscriptionID string `json:"subscription_id" binding:"required"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

// CurrentView describes the caller's subscription state.
type CurrentView struct {
	HasSubscription bool          `json:"has_subscription"`
	Subscription    *Subscription `json:"subscription,omitempty"`
	Plan            *Plan         `json:"plan,omitempty"`
	IsValid         bool          `json:"is_valid"`
	DaysRemaining   int           `json:"days_remaining"`
}

// SubscribeResult adds the gateway outcome to the new subscription.
type SubscribeResult struct {
	Subscription *Subscription `json:"subscription"`
	Payment      Receipt       `json:"payment"`
}
