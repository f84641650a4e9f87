package subscription

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"churrasco/internal/pkg/validator"
)

const (
	MethodCard = "card"
	MethodPix  = "pix"
)

var expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2})$`)

type cardDetails struct {
	Holder string `validate:"required,min=2"`
	Number string `validate:"required,numeric,min=13,max=19,luhn"`
	CVV    string `validate:"required,numeric,min=3,max=4"`
}

// ValidatePayment checks the checkout form before anything is charged.
// The card number is returned without separators.
func ValidatePayment(f PaymentForm, now time.Time) (PaymentForm, error) {
	f.Method = strings.ToLower(strings.TrimSpace(f.Method))
	switch f.Method {
	case MethodPix:
		return PaymentForm{Method: MethodPix}, nil
	case MethodCard:
	default:
		return f, fmt.Errorf("%w: method must be card or pix", ErrInvalidPayment)
	}

	f.CardHolder = strings.TrimSpace(f.CardHolder)
	f.CardNumber = strings.NewReplacer(" ", "", "-", "").Replace(f.CardNumber)
	f.CVV = strings.TrimSpace(f.CVV)

	if errs := validator.Validate(cardDetails{Holder: f.CardHolder, Number: f.CardNumber, CVV: f.CVV}); errs != nil {
		return f, fmt.Errorf("%w: %v", ErrInvalidPayment, errs)
	}
	if err := checkExpiry(strings.TrimSpace(f.Expiry), now); err != nil {
		return f, err
	}
	return f, nil
}

// checkExpiry accepts MM/YY; a card is valid through the last day of its month.
func checkExpiry(expiry string, now time.Time) error {
	m := expiryPattern.FindStringSubmatch(expiry)
	if m == nil {
		return fmt.Errorf("%w: expiry must be MM/YY", ErrInvalidPayment)
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])

	firstInvalid := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	if !now.UTC().Before(firstInvalid) {
		return fmt.Errorf("%w: card expired", ErrInvalidPayment)
	}
	return nil
}

func last4(number string) string {
	if len(number) < 4 {
		return ""
	}
	return number[len(number)-4:]
}
