package subscription

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"churrasco/internal/database"
	"churrasco/internal/domain"
	"churrasco/internal/realtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev realtime.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

type fixture struct {
	svc    *Service
	repo   Repository
	events *recordingPublisher
	clock  time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Connect("file:"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared", nil)
	require.NoError(t, err)
	require.NoError(t, Migrate(context.Background(), db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	f := &fixture{repo: NewRepository(db), events: &recordingPublisher{}, clock: checkoutNow}
	f.svc = NewService(f.repo, NewSimulatedGateway(), f.events, nil)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func TestMigrate_SeedsPlansOnce(t *testing.T) {
	f := newFixture(t)
	plans, err := f.svc.ListPlans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, PlanBasic, plans[0].ID)
	assert.Equal(t, PlanPremium, plans[2].ID)
}

func TestClientsAreRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetCurrent(ctx, 1, domain.RoleClient)
	assert.ErrorIs(t, err, ErrNotProfessional)
	_, err = f.svc.Subscribe(ctx, 1, domain.RoleClient, SubscribeRequest{PlanID: "pro", Payment: validCard()})
	assert.ErrorIs(t, err, ErrNotProfessional)
	_, err = f.svc.Cancel(ctx, 1, domain.RoleClient, "")
	assert.ErrorIs(t, err, ErrNotProfessional)
}

func TestSubscribe_ReplacesActiveSubscription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pro := domain.RoleProfessional

	view, err := f.svc.GetCurrent(ctx, 5, pro)
	require.NoError(t, err)
	assert.False(t, view.HasSubscription)

	first, err := f.svc.Subscribe(ctx, 5, pro, SubscribeRequest{PlanID: "basic", Payment: validCard()})
	require.NoError(t, err)
	assert.Equal(t, 49.90, first.Subscription.Amount)
	assert.Equal(t, checkoutNow.AddDate(0, 0, 30), first.Subscription.ExpiresAt)
	assert.Equal(t, "simulated", first.Payment.Gateway)

	f.clock = checkoutNow.Add(time.Hour)
	second, err := f.svc.Subscribe(ctx, 5, pro, SubscribeRequest{PlanID: "PREMIUM", Payment: PaymentForm{Method: "pix"}})
	require.NoError(t, err)
	assert.Equal(t, MethodPix, second.Subscription.PaymentMethod)

	view, err = f.svc.GetCurrent(ctx, 5, pro)
	require.NoError(t, err)
	require.True(t, view.HasSubscription)
	assert.Equal(t, second.Subscription.ID, view.Subscription.ID)
	assert.Equal(t, PlanPremium, view.Plan.ID)
	assert.True(t, view.IsValid)
	assert.Equal(t, 90, view.DaysRemaining)

	assert.Len(t, f.events.events, 2)
	assert.Equal(t, realtime.TableSubscriptions, f.events.events[0].Table)
	assert.Equal(t, []int64{5}, f.events.events[0].Audience)
}

func TestSubscribe_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pro := domain.RoleProfessional

	_, err := f.svc.Subscribe(ctx, 5, pro, SubscribeRequest{PlanID: "gold", Payment: validCard()})
	assert.ErrorIs(t, err, ErrPlanNotFound)

	bad := validCard()
	bad.CVV = "1"
	_, err = f.svc.Subscribe(ctx, 5, pro, SubscribeRequest{PlanID: "pro", Payment: bad})
	assert.ErrorIs(t, err, ErrInvalidPayment)

	declined := validCard()
	declined.CardNumber = "4000000000000002"
	_, err = f.svc.Subscribe(ctx, 5, pro, SubscribeRequest{PlanID: "pro", Payment: declined})
	assert.ErrorIs(t, err, ErrPaymentDeclined)

	view, err := f.svc.GetCurrent(ctx, 5, pro)
	require.NoError(t, err)
	assert.False(t, view.HasSubscription)
	assert.Empty(t, f.events.events)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pro := domain.RoleProfessional

	_, err := f.svc.Cancel(ctx, 5, pro, "")
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)

	_, err = f.svc.Subscribe(ctx, 5, pro, SubscribeRequest{PlanID: "pro", Payment: validCard()})
	require.NoError(t, err)

	sub, err := f.svc.Cancel(ctx, 5, pro, " muito caro ")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, sub.Status)
	assert.Equal(t, "muito caro", sub.CancelReason)

	view, err := f.svc.GetCurrent(ctx, 5, pro)
	require.NoError(t, err)
	assert.False(t, view.HasSubscription)
}

func TestExpireOverdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pro := domain.RoleProfessional

	_, err := f.svc.Subscribe(ctx, 5, pro, SubscribeRequest{PlanID: "basic", Payment: validCard()})
	require.NoError(t, err)
	_, err = f.svc.Subscribe(ctx, 6, pro, SubscribeRequest{PlanID: "premium", Payment: validCard()})
	require.NoError(t, err)

	f.clock = checkoutNow.AddDate(0, 0, 31)

	view, err := f.svc.GetCurrent(ctx, 5, pro)
	require.NoError(t, err)
	assert.True(t, view.HasSubscription)
	assert.False(t, view.IsValid)
	assert.Equal(t, 0, view.DaysRemaining)

	n, err := f.svc.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	view, err = f.svc.GetCurrent(ctx, 5, pro)
	require.NoError(t, err)
	assert.False(t, view.HasSubscription)

	view, err = f.svc.GetCurrent(ctx, 6, pro)
	require.NoError(t, err)
	assert.True(t, view.IsValid)
	assert.Equal(t, 59, view.DaysRemaining)
}

// intentGateway behaves like a card intent that the app confirms later.
type intentGateway struct {
	mu     sync.Mutex
	status string
}

func (g *intentGateway) Charge(context.Context, Charge) (*Receipt, error) {
	return &Receipt{Gateway: "intent", Reference: "pi_123", Status: "requires_payment_method", ClientSecret: "pi_123_secret"}, nil
}

func (g *intentGateway) Status(_ context.Context, reference string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if reference != "pi_123" {
		return "", assert.AnError
	}
	return g.status, nil
}

func (g *intentGateway) settle(status string) {
	g.mu.Lock()
	g.status = status
	g.mu.Unlock()
}

func TestSubscribe_UnsettledPaymentStaysPending(t *testing.T) {
	f := newFixture(t)
	gw := &intentGateway{status: "requires_payment_method"}
	f.svc.gateway = gw
	ctx := context.Background()
	pro := domain.RoleProfessional

	res, err := f.svc.Subscribe(ctx, 5, pro, SubscribeRequest{PlanID: "premium", Payment: validCard()})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, res.Subscription.Status)
	assert.Equal(t, "requires_payment_method", res.Payment.Status)
	assert.Equal(t, "pi_123_secret", res.Payment.ClientSecret)

	view, err := f.svc.GetCurrent(ctx, 5, pro)
	require.NoError(t, err)
	assert.False(t, view.HasSubscription)
	assert.False(t, view.IsValid)

	_, err = f.svc.Confirm(ctx, 5, pro, res.Subscription.ID)
	assert.ErrorIs(t, err, ErrPaymentIncomplete)

	_, err = f.svc.Confirm(ctx, 6, pro, res.Subscription.ID)
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)

	gw.settle(PaymentSucceeded)
	f.clock = checkoutNow.Add(2 * time.Hour)
	sub, err := f.svc.Confirm(ctx, 5, pro, res.Subscription.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, sub.Status)
	assert.Equal(t, f.clock.AddDate(0, 0, 90), sub.ExpiresAt)

	view, err = f.svc.GetCurrent(ctx, 5, pro)
	require.NoError(t, err)
	require.True(t, view.HasSubscription)
	assert.Equal(t, res.Subscription.ID, view.Subscription.ID)
	assert.True(t, view.IsValid)
	assert.Equal(t, 90, view.DaysRemaining)

	_, err = f.svc.Confirm(ctx, 5, pro, res.Subscription.ID)
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
}

func TestConfirm_ReplacesPreviousActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pro := domain.RoleProfessional

	first, err := f.svc.Subscribe(ctx, 5, pro, SubscribeRequest{PlanID: "basic", Payment: validCard()})
	require.NoError(t, err)
	require.Equal(t, StatusActive, first.Subscription.Status)

	gw := &intentGateway{status: PaymentSucceeded}
	f.svc.gateway = gw
	pending, err := f.svc.Subscribe(ctx, 5, pro, SubscribeRequest{PlanID: "pro", Payment: validCard()})
	require.NoError(t, err)

	view, err := f.svc.GetCurrent(ctx, 5, pro)
	require.NoError(t, err)
	assert.Equal(t, first.Subscription.ID, view.Subscription.ID)

	_, err = f.svc.Confirm(ctx, 5, pro, pending.Subscription.ID)
	require.NoError(t, err)

	view, err = f.svc.GetCurrent(ctx, 5, pro)
	require.NoError(t, err)
	assert.Equal(t, pending.Subscription.ID, view.Subscription.ID)
	assert.Equal(t, PlanPro, view.Plan.ID)
}
