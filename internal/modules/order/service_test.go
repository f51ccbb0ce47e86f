package order

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v74"

	"github.com/heartyhounds/storefront-backend/internal/modules/mailqueue"
)

// ── fakes ─────────────────────────────────────────────────────────────────────

type memoryRepo struct {
	mu   sync.Mutex
	byID map[string]*Order
	byPI map[string]*Order
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: map[string]*Order{}, byPI: map[string]*Order{}}
}

func (r *memoryRepo) CreateOrder(_ context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byPI[o.PaymentIntentID]; exists {
		return ErrDuplicatePaymentIntent
	}
	r.byID[o.ID.String()] = o
	r.byPI[o.PaymentIntentID] = o
	return nil
}

func (r *memoryRepo) GetOrderByID(_ context.Context, id string) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.byID[id]; ok {
		return o, nil
	}
	return nil, errors.New("order not found")
}

func (r *memoryRepo) GetOrderByPaymentIntentID(_ context.Context, pi string) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.byPI[pi]; ok {
		return o, nil
	}
	return nil, errors.New("order not found")
}

func (r *memoryRepo) ListOrdersByEmail(_ context.Context, email string) ([]*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var orders []*Order
	for _, o := range r.byPI {
		if o.CustomerEmail == email {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (r *memoryRepo) UpdateStatus(_ context.Context, id string, status OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return errors.New("order not found")
	}
	o.Status = status
	return nil
}

type fakeGateway struct {
	session *stripe.CheckoutSession
	intent  *stripe.PaymentIntent
	err     error
}

func (f *fakeGateway) CreateCheckoutSession(context.Context, *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return f.session, f.err
}

func (f *fakeGateway) GetCheckoutSession(context.Context, string, *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeGateway) GetPaymentIntent(context.Context, string) (*stripe.PaymentIntent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.intent, nil
}

type stockRecorder struct {
	decrements map[string]int
	err        error
}

func (s *stockRecorder) DecrementStock(_ context.Context, id string, qty int) error {
	if s.err != nil {
		return s.err
	}
	if s.decrements == nil {
		s.decrements = map[string]int{}
	}
	s.decrements[id] += qty
	return nil
}

type mailRecorder struct {
	queued []*mailqueue.Email
	err    error
}

func (m *mailRecorder) Enqueue(_ context.Context, e *mailqueue.Email) error {
	if m.err != nil {
		return m.err
	}
	m.queued = append(m.queued, e)
	return nil
}

func (m *mailRecorder) ListPending(context.Context) ([]*mailqueue.Email, error) {
	return m.queued, nil
}

// ── fixtures ──────────────────────────────────────────────────────────────────

func succeededIntent() *stripe.PaymentIntent {
	return &stripe.PaymentIntent{
		ID:       "pi_1",
		Status:   stripe.PaymentIntentStatusSucceeded,
		Amount:   3297,
		Currency: stripe.Currency("usd"),
		Metadata: map[string]string{
			"items": `[{"id":"prod_1","quantity":2}]`,
		},
	}
}

func expandedSession(pi *stripe.PaymentIntent) *stripe.CheckoutSession {
	return &stripe.CheckoutSession{
		ID:            "cs_1",
		PaymentIntent: pi,
		CustomerDetails: &stripe.CheckoutSessionCustomerDetails{
			Email: "shopper@example.com",
			Name:  "Pat Shopper",
		},
		LineItems: &stripe.LineItemList{Data: []*stripe.LineItem{
			{
				Description:    "Tug Rope",
				Quantity:       2,
				AmountSubtotal: 1998,
				AmountTotal:    1998,
				Price:          &stripe.Price{UnitAmount: 999},
			},
			{
				Description:    "Squeaky Ball",
				Quantity:       1,
				AmountSubtotal: 500,
				AmountTotal:    500,
				Price:          &stripe.Price{UnitAmount: 500},
			},
		}},
		TotalDetails: &stripe.CheckoutSessionTotalDetails{AmountShipping: 799},
	}
}

func newTestService(gw *fakeGateway) (Service, *memoryRepo, *stockRecorder, *mailRecorder) {
	repo := newMemoryRepo()
	stock := &stockRecorder{}
	mail := &mailRecorder{}
	return NewService(repo, gw, stock, mail, nil), repo, stock, mail
}

// ── tests ─────────────────────────────────────────────────────────────────────

func TestCreateFromPayment_RequiresAReference(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeGateway{})
	_, _, err := svc.CreateFromPayment(context.Background(), CreateFromPaymentRequest{})
	assert.ErrorContains(t, err, "required")
}

func TestCreateFromPayment_SessionPathBuildsItemizedOrder(t *testing.T) {
	pi := succeededIntent()
	svc, _, _, _ := newTestService(&fakeGateway{session: expandedSession(pi)})

	o, created, err := svc.CreateFromPayment(context.Background(), CreateFromPaymentRequest{SessionID: "cs_1"})
	require.NoError(t, err)
	assert.True(t, created)

	assert.Equal(t, "shopper@example.com", o.CustomerEmail)
	assert.Equal(t, "Pat Shopper", o.CustomerName)
	assert.Equal(t, "pi_1", o.PaymentIntentID)
	assert.Equal(t, "cs_1", o.CheckoutSessionID)
	assert.Equal(t, StatusPaid, o.Status)
	assert.Equal(t, PaymentPaid, o.PaymentStatus)
	require.NotNil(t, o.PaidAt)

	require.Len(t, o.Items, 2)
	assert.Equal(t, "Tug Rope", o.Items[0].Name)
	assert.Equal(t, 9.99, o.Items[0].UnitPrice)
	assert.Equal(t, 24.98, o.Subtotal)
	assert.Equal(t, 7.99, o.ShippingCost)
	assert.Equal(t, 32.97, o.Total)

	// 2.9% + 30c of 3297 cents = 125.613 -> 126 cents
	assert.Equal(t, 1.26, o.StripeFee)
}

func TestCreateFromPayment_IntentPathBooksResidualSubtotal(t *testing.T) {
	pi := succeededIntent()
	pi.ReceiptEmail = "receipt@example.com"
	pi.ApplicationFeeAmount = 330
	svc, _, _, _ := newTestService(&fakeGateway{intent: pi})

	o, created, err := svc.CreateFromPayment(context.Background(), CreateFromPaymentRequest{PaymentIntentID: "pi_1"})
	require.NoError(t, err)
	assert.True(t, created)

	assert.Empty(t, o.Items)
	assert.Equal(t, "receipt@example.com", o.CustomerEmail)
	assert.Equal(t, 3.30, o.PlatformFee)
	// residual: 3297 - 330 - 126 = 2841 cents
	assert.Equal(t, 28.41, o.Subtotal)
}

func TestCreateFromPayment_EmailFallbackChain(t *testing.T) {
	pi := succeededIntent()
	pi.ReceiptEmail = "receipt@example.com"
	session := expandedSession(pi)
	session.CustomerDetails = nil
	session.CustomerEmail = "session@example.com"
	svc, _, _, _ := newTestService(&fakeGateway{session: session})

	o, _, err := svc.CreateFromPayment(context.Background(), CreateFromPaymentRequest{SessionID: "cs_1"})
	require.NoError(t, err)
	assert.Equal(t, "session@example.com", o.CustomerEmail)
}

func TestCreateFromPayment_RejectsUnsucceededIntent(t *testing.T) {
	pi := succeededIntent()
	pi.Status = stripe.PaymentIntentStatusRequiresPaymentMethod
	svc, repo, _, _ := newTestService(&fakeGateway{intent: pi})

	_, _, err := svc.CreateFromPayment(context.Background(), CreateFromPaymentRequest{PaymentIntentID: "pi_1"})
	assert.ErrorIs(t, err, ErrPaymentNotSucceeded)
	assert.Empty(t, repo.byPI)
}

func TestCreateFromPayment_IsIdempotent(t *testing.T) {
	pi := succeededIntent()
	svc, repo, _, _ := newTestService(&fakeGateway{session: expandedSession(pi)})

	first, created, err := svc.CreateFromPayment(context.Background(), CreateFromPaymentRequest{SessionID: "cs_1"})
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := svc.CreateFromPayment(context.Background(), CreateFromPaymentRequest{SessionID: "cs_1"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.byPI, 1)
}

// racingRepo simulates a concurrent winner landing between the existence
// check and the insert: the first lookup misses, the insert trips the unique
// index, and subsequent lookups find the winner.
type racingRepo struct {
	*memoryRepo
	winner  *Order
	lookups int
}

func (r *racingRepo) GetOrderByPaymentIntentID(_ context.Context, pi string) (*Order, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, errors.New("order not found")
	}
	return r.winner, nil
}

func (r *racingRepo) CreateOrder(context.Context, *Order) error {
	return ErrDuplicatePaymentIntent
}

func TestCreateFromPayment_RaceLoserReturnsWinner(t *testing.T) {
	pi := succeededIntent()
	winner := &Order{PaymentIntentID: "pi_1"}
	repo := &racingRepo{memoryRepo: newMemoryRepo(), winner: winner}
	svc := NewService(repo, &fakeGateway{intent: pi}, &stockRecorder{}, &mailRecorder{}, nil)

	o, created, err := svc.CreateFromPayment(context.Background(), CreateFromPaymentRequest{PaymentIntentID: "pi_1"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, winner, o)
	assert.Equal(t, 2, repo.lookups)
}

func TestCreateFromPayment_SideEffects(t *testing.T) {
	pi := succeededIntent()
	svc, _, stock, mail := newTestService(&fakeGateway{session: expandedSession(pi)})

	_, _, err := svc.CreateFromPayment(context.Background(), CreateFromPaymentRequest{SessionID: "cs_1"})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"prod_1": 2}, stock.decrements)
	require.Len(t, mail.queued, 1)
	assert.Equal(t, "shopper@example.com", mail.queued[0].Recipient)
	assert.Equal(t, "order_confirmation", mail.queued[0].Template)
}

func TestCreateFromPayment_SideEffectFailuresAreSwallowed(t *testing.T) {
	pi := succeededIntent()
	repo := newMemoryRepo()
	stock := &stockRecorder{err: errors.New("stock store down")}
	mail := &mailRecorder{err: errors.New("mail store down")}
	svc := NewService(repo, &fakeGateway{session: expandedSession(pi)}, stock, mail, nil)

	o, created, err := svc.CreateFromPayment(context.Background(), CreateFromPaymentRequest{SessionID: "cs_1"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotNil(t, o)
}

func TestCreateFromPayment_CustomFeeEstimator(t *testing.T) {
	pi := succeededIntent()
	repo := newMemoryRepo()
	flat := func(int64) int64 { return 100 }
	svc := NewService(repo, &fakeGateway{intent: pi}, &stockRecorder{}, &mailRecorder{}, flat)

	o, _, err := svc.CreateFromPayment(context.Background(), CreateFromPaymentRequest{PaymentIntentID: "pi_1"})
	require.NoError(t, err)
	assert.Equal(t, 1.00, o.StripeFee)
}

func TestUpdateStatus_ForwardOnly(t *testing.T) {
	pi := succeededIntent()
	svc, _, _, _ := newTestService(&fakeGateway{intent: pi})

	o, _, err := svc.CreateFromPayment(context.Background(), CreateFromPaymentRequest{PaymentIntentID: "pi_1"})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), o.ID.String(), UpdateStatusRequest{Status: "processing"})
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, updated.Status)

	_, err = svc.UpdateStatus(context.Background(), o.ID.String(), UpdateStatusRequest{Status: "paid"})
	assert.ErrorContains(t, err, "cannot transition")
}

func TestEstimateStripeFee(t *testing.T) {
	assert.Equal(t, int64(126), EstimateStripeFee(3297)) // 95.613 + 30 -> 126
	assert.Equal(t, int64(320), EstimateStripeFee(10000))
	assert.Equal(t, int64(30), EstimateStripeFee(0))
}
