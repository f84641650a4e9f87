package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var checkoutNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func validCard() PaymentForm {
	return PaymentForm{Method: "card", CardHolder: "Joao Silva", CardNumber: "4242 4242 4242 4242", Expiry: "12/30", CVV: "123"}
}

func TestValidatePayment_Card(t *testing.T) {
	got, err := ValidatePayment(validCard(), checkoutNow)
	require.NoError(t, err)
	assert.Equal(t, "4242424242424242", got.CardNumber)
	assert.Equal(t, "4242", last4(got.CardNumber))
}

func TestValidatePayment_Rejections(t *testing.T) {
	cases := map[string]func(*PaymentForm){
		"unknown method":  func(f *PaymentForm) { f.Method = "boleto" },
		"missing holder":  func(f *PaymentForm) { f.CardHolder = " " },
		"short number":    func(f *PaymentForm) { f.CardNumber = "424242424242" },
		"too long number": func(f *PaymentForm) { f.CardNumber = "42424242424242424242" },
		"bad checksum":    func(f *PaymentForm) { f.CardNumber = "4242424242424241" },
		"letters":         func(f *PaymentForm) { f.CardNumber = "4242abcd42424242" },
		"expired":         func(f *PaymentForm) { f.Expiry = "04/26" },
		"bad expiry":      func(f *PaymentForm) { f.Expiry = "13/30" },
		"expiry format":   func(f *PaymentForm) { f.Expiry = "2030-12" },
		"short cvv":       func(f *PaymentForm) { f.CVV = "12" },
		"long cvv":        func(f *PaymentForm) { f.CVV = "12345" },
		"non numeric cvv": func(f *PaymentForm) { f.CVV = "12a" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := validCard()
			mutate(&f)
			_, err := ValidatePayment(f, checkoutNow)
			assert.ErrorIs(t, err, ErrInvalidPayment)
		})
	}
}

func TestValidatePayment_CurrentMonthStillValid(t *testing.T) {
	f := validCard()
	f.Expiry = "05/26"
	_, err := ValidatePayment(f, checkoutNow)
	assert.NoError(t, err)
}

func TestValidatePayment_PixIgnoresCard(t *testing.T) {
	got, err := ValidatePayment(PaymentForm{Method: " PIX ", CardNumber: "garbage"}, checkoutNow)
	require.NoError(t, err)
	assert.Equal(t, PaymentForm{Method: MethodPix}, got)
}

func TestSimulatedGateway(t *testing.T) {
	gw := NewSimulatedGateway()

	r, err := gw.Charge(context.Background(), Charge{Method: MethodCard, Last4: "4242", Amount: 49.9})
	require.NoError(t, err)
	assert.Equal(t, "succeeded", r.Status)
	assert.Contains(t, r.Reference, "sim_")

	_, err = gw.Charge(context.Background(), Charge{Method: MethodCard, Last4: "0002"})
	assert.ErrorIs(t, err, ErrPaymentDeclined)

	assert.Equal(t, int64(4990), toCents(49.90))
	assert.Equal(t, int64(24990), toCents(249.90))
}

func TestSubscription_DaysRemaining(t *testing.T) {
	sub := &Subscription{Status: StatusActive, ExpiresAt: checkoutNow.Add(36 * time.Hour)}
	assert.True(t, sub.IsValid(checkoutNow))
	assert.Equal(t, 2, sub.DaysRemaining(checkoutNow))

	sub.ExpiresAt = checkoutNow.Add(-time.Minute)
	assert.False(t, sub.IsValid(checkoutNow))
	assert.Equal(t, 0, sub.DaysRemaining(checkoutNow))

	sub.ExpiresAt = checkoutNow.Add(48 * time.Hour)
	sub.Status = StatusCancelled
	assert.Equal(t, 0, sub.DaysRemaining(checkoutNow))
}
