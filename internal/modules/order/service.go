package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v74"

	"github.com/heartyhounds/storefront-backend/internal/modules/checkout"
	"github.com/heartyhounds/storefront-backend/internal/modules/mailqueue"
)

var (
	// ErrPaymentNotFound means no payment intent could be resolved from the
	// supplied reference.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrPaymentNotSucceeded means the payment intent exists but is not in a
	// succeeded state; no order may be created for it.
	ErrPaymentNotSucceeded = errors.New("payment has not succeeded")
)

// StockService is the slice of the catalog needed after a sale.
type StockService interface {
	DecrementStock(ctx context.Context, id string, quantity int) error
}

// Service defines order business logic.
type Service interface {
	// CreateFromPayment reconciles a completed payment into a persisted
	// order. The bool reports whether a new order was created; false means
	// an order already existed for the payment intent and was returned as-is.
	CreateFromPayment(ctx context.Context, req CreateFromPaymentRequest) (*Order, bool, error)

	// GetOrder retrieves an order with its items by id.
	GetOrder(ctx context.Context, id string) (*Order, error)

	// ListCustomerOrders returns a customer's order history by email.
	ListCustomerOrders(ctx context.Context, email string) ([]*Order, error)

	// UpdateStatus advances an order's fulfillment status.
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Order, error)
}

type service struct {
	repo        Repository
	gateway     checkout.Gateway
	stock       StockService
	mail        mailqueue.Repository
	estimateFee FeeEstimator
}

// NewService creates a new order service. estimateFee may be nil, in which
// case the standard card-fee estimate is used.
func NewService(repo Repository, gateway checkout.Gateway, stock StockService, mail mailqueue.Repository, estimateFee FeeEstimator) Service {
	if estimateFee == nil {
		estimateFee = EstimateStripeFee
	}
	return &service{repo: repo, gateway: gateway, stock: stock, mail: mail, estimateFee: estimateFee}
}

// validTransitions is the forward-only fulfillment state machine applied to
// admin status updates.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusPaid, StatusCancelled},
	StatusPaid:       {StatusProcessing, StatusCancelled, StatusRefunded},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

func (s *service) CreateFromPayment(ctx context.Context, req CreateFromPaymentRequest) (*Order, bool, error) {
	if req.SessionID == "" && req.PaymentIntentID == "" {
		return nil, false, fmt.Errorf("sessionId or paymentIntentId is required")
	}

	// ── Resolve the authoritative payment intent ──────────────────────────
	var session *stripe.CheckoutSession
	var pi *stripe.PaymentIntent
	var err error

	if req.SessionID != "" {
		params := &stripe.CheckoutSessionParams{}
		params.AddExpand("line_items")
		params.AddExpand("payment_intent")
		params.AddExpand("customer")
		session, err = s.gateway.GetCheckoutSession(ctx, req.SessionID, params)
		if err != nil {
			return nil, false, err
		}
		pi = session.PaymentIntent
	} else {
		pi, err = s.gateway.GetPaymentIntent(ctx, req.PaymentIntentID)
		if err != nil {
			return nil, false, err
		}
	}

	if pi == nil || pi.ID == "" {
		return nil, false, ErrPaymentNotFound
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, false, fmt.Errorf("%w (status: %s)", ErrPaymentNotSucceeded, pi.Status)
	}

	// Fast path: an order for this payment intent already exists.
	if existing, err := s.repo.GetOrderByPaymentIntentID(ctx, pi.ID); err == nil && existing != nil {
		return existing, false, nil
	}

	o := s.buildOrder(session, pi)

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		if errors.Is(err, ErrDuplicatePaymentIntent) {
			// Lost a concurrent race; the unique index picked the winner.
			existing, lookupErr := s.repo.GetOrderByPaymentIntentID(ctx, pi.ID)
			if lookupErr != nil {
				return nil, false, lookupErr
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to persist order: %w", err)
	}

	s.runSideEffects(ctx, o, pi)

	return o, true, nil
}

// buildOrder derives all order fields from the provider's session and
// payment intent.
func (s *service) buildOrder(session *stripe.CheckoutSession, pi *stripe.PaymentIntent) *Order {
	totalCents := pi.Amount
	platformFeeCents := pi.ApplicationFeeAmount
	stripeFeeCents := s.estimateFee(totalCents)

	var items []*OrderItem
	var subtotalCents, shippingCents int64
	if session != nil && session.LineItems != nil && len(session.LineItems.Data) > 0 {
		for _, li := range session.LineItems.Data {
			var unitCents int64
			if li.Price != nil {
				unitCents = li.Price.UnitAmount
			}
			items = append(items, &OrderItem{
				ID:        uuid.New(),
				Name:      li.Description,
				Quantity:  li.Quantity,
				UnitPrice: float64(unitCents) / 100,
				LineTotal: float64(li.AmountTotal) / 100,
			})
			subtotalCents += li.AmountSubtotal
		}
		if session.TotalDetails != nil {
			shippingCents = session.TotalDetails.AmountShipping
		}
	} else {
		// No line item breakdown available; book the residual as subtotal.
		subtotalCents = totalCents - platformFeeCents - stripeFeeCents
	}

	currency := strings.ToLower(string(pi.Currency))
	if currency == "" {
		currency = "usd"
	}

	now := time.Now().UTC()
	o := &Order{
		ID:              uuid.New(),
		CustomerEmail:   resolveCustomerEmail(session, pi),
		Items:           items,
		Subtotal:        float64(subtotalCents) / 100,
		ShippingCost:    float64(shippingCents) / 100,
		PlatformFee:     float64(platformFeeCents) / 100,
		StripeFee:       float64(stripeFeeCents) / 100,
		Total:           float64(totalCents) / 100,
		Currency:        currency,
		Status:          StatusPaid,
		PaymentStatus:   PaymentPaid,
		PaymentIntentID: pi.ID,
		PaidAt:          &now,
	}

	if len(pi.Metadata) > 0 {
		if md, err := json.Marshal(pi.Metadata); err == nil {
			o.Metadata = md
		}
		o.ConnectedAccountID = pi.Metadata["connected_account_id"]
	}

	if session != nil {
		o.CheckoutSessionID = session.ID
		if o.ConnectedAccountID == "" {
			o.ConnectedAccountID = session.Metadata["connected_account_id"]
		}
		if session.CustomerDetails != nil {
			o.CustomerName = session.CustomerDetails.Name
			if bd, err := json.Marshal(session.CustomerDetails); err == nil {
				o.BillingDetails = bd
			}
		}
		if session.ShippingDetails != nil {
			if sd, err := json.Marshal(session.ShippingDetails); err == nil {
				o.ShippingDetails = sd
			}
		}
		if session.Customer != nil {
			o.CustomerID = session.Customer.ID
		}
	}
	return o
}

// resolveCustomerEmail applies the fallback chain: session customer details,
// then the session email, then the payment intent's receipt email.
func resolveCustomerEmail(session *stripe.CheckoutSession, pi *stripe.PaymentIntent) string {
	if session != nil {
		if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
			return session.CustomerDetails.Email
		}
		if session.CustomerEmail != "" {
			return session.CustomerEmail
		}
	}
	if pi.ReceiptEmail != "" {
		return pi.ReceiptEmail
	}
	return ""
}

// runSideEffects decrements stock and enqueues the confirmation email.
// Best-effort: failures are logged and never fail the reconciliation.
func (s *service) runSideEffects(ctx context.Context, o *Order, pi *stripe.PaymentIntent) {
	for _, sold := range soldItems(pi) {
		if err := s.stock.DecrementStock(ctx, sold.ID, sold.Quantity); err != nil {
			log.Printf("order %s: stock decrement failed for product %s: %v", o.ID, sold.ID, err)
		}
	}

	if o.CustomerEmail == "" {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"order_id": o.ID,
		"total":    o.Total,
		"currency": o.Currency,
	})
	err := s.mail.Enqueue(ctx, &mailqueue.Email{
		ID:        uuid.New(),
		Recipient: o.CustomerEmail,
		Subject:   "Your Hearty Hounds order confirmation",
		Template:  "order_confirmation",
		Payload:   payload,
	})
	if err != nil {
		log.Printf("order %s: confirmation email enqueue failed: %v", o.ID, err)
	}
}

// soldItems reads the product id/quantity list the checkout service stashed
// in the payment intent metadata. Line items alone don't carry catalog ids.
func soldItems(pi *stripe.PaymentIntent) []checkout.SoldItem {
	raw, ok := pi.Metadata["items"]
	if !ok || raw == "" {
		return nil
	}
	var sold []checkout.SoldItem
	if err := json.Unmarshal([]byte(raw), &sold); err != nil {
		log.Printf("payment %s: unreadable items metadata: %v", pi.ID, err)
		return nil
	}
	return sold
}

func (s *service) GetOrder(ctx context.Context, id string) (*Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

func (s *service) ListCustomerOrders(ctx context.Context, email string) ([]*Order, error) {
	return s.repo.ListOrdersByEmail(ctx, email)
}

func (s *service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}

	newStatus := OrderStatus(strings.ToLower(req.Status))
	allowed := false
	for _, next := range validTransitions[o.Status] {
		if next == newStatus {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("cannot transition order from %s to %s", o.Status, newStatus)
	}

	if err := s.repo.UpdateStatus(ctx, id, newStatus); err != nil {
		return nil, err
	}
	return s.repo.GetOrderByID(ctx, id)
}
