package subscription

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// Charge is one payment attempt for a plan.
type Charge struct {
	ProfessionalID int64
	PlanID         PlanID
	Amount         float64
	Method         string
	Last4          string
	Description    string
}

type Receipt struct {
	Gateway      string `json:"gateway"`
	Reference    string `json:"reference"`
	Status       string `json:"status"`
	ClientSecret string `json:"client_secret,omitempty"`
}

// PaymentSucceeded is the only receipt status that grants a subscription.
const PaymentSucceeded = "succeeded"

// PaymentGateway charges plans. Status re-reads a previous charge by reference.
type PaymentGateway interface {
	Charge(ctx context.Context, ch Charge) (*Receipt, error)
	Status(ctx context.Context, reference string) (string, error)
}

// declinedTestCard mirrors the well-known "always declined" test number.
const declinedTestCard = "0002"

const simulatedRefPrefix = "sim_"

// SimulatedGateway approves every charge except the declined test card.
type SimulatedGateway struct{}

func NewSimulatedGateway() *SimulatedGateway { return &SimulatedGateway{} }

func (SimulatedGateway) Charge(ctx context.Context, ch Charge) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ch.Method == MethodCard && ch.Last4 == declinedTestCard {
		return nil, ErrPaymentDeclined
	}
	return &Receipt{
		Gateway:   "simulated",
		Reference: simulatedRefPrefix + uuid.NewString(),
		Status:    PaymentSucceeded,
	}, nil
}

func (SimulatedGateway) Status(ctx context.Context, reference string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !strings.HasPrefix(reference, simulatedRefPrefix) {
		return "", fmt.Errorf("unknown payment reference %q", reference)
	}
	return PaymentSucceeded, nil
}

// StripeGateway creates a PaymentIntent in BRL. The app confirms it with the
// returned client secret; until then the subscription stays pending.
type StripeGateway struct {
	intents *paymentintent.Client
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{
		intents: &paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
	}
}

func (g *StripeGateway) Charge(ctx context.Context, ch Charge) (*Receipt, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(toCents(ch.Amount)),
		Currency:           stripe.String(string(stripe.CurrencyBRL)),
		PaymentMethodTypes: stripe.StringSlice([]string{ch.Method}),
		Description:        stripe.String(ch.Description),
	}
	params.Context = ctx
	params.AddMetadata("professional_id", strconv.FormatInt(ch.ProfessionalID, 10))
	params.AddMetadata("plan_id", string(ch.PlanID))

	pi, err := g.intents.New(params)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.Type == stripe.ErrorTypeCard {
			return nil, fmt.Errorf("%w: %s", ErrPaymentDeclined, serr.Msg)
		}
		return nil, fmt.Errorf("stripe payment intent: %w", err)
	}

	return &Receipt{
		Gateway:      "stripe",
		Reference:    pi.ID,
		Status:       string(pi.Status),
		ClientSecret: pi.ClientSecret,
	}, nil
}

// Status reads the PaymentIntent back once the app has confirmed it.
func (g *StripeGateway) Status(ctx context.Context, reference string) (string, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.intents.Get(reference, params)
	if err != nil {
		return "", fmt.Errorf("stripe payment intent %s: %w", reference, err)
	}
	return string(pi.Status), nil
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
