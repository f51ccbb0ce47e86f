package order

import (
	"context"
	"errors"
)

// ErrDuplicatePaymentIntent is returned by CreateOrder when an order already
// exists for the payment intent. The unique index on payment_intent_id makes
// this the race-proof signal, not the read-before-write check.
var ErrDuplicatePaymentIntent = errors.New("order already exists for payment intent")

// Repository defines data access for orders.
type Repository interface {
	// CreateOrder persists a new order and its items atomically in a
	// transaction. Returns ErrDuplicatePaymentIntent if an order with the
	// same payment intent id already exists.
	CreateOrder(ctx context.Context, o *Order) error

	// GetOrderByID retrieves an order with its items by UUID.
	GetOrderByID(ctx context.Context, id string) (*Order, error)

	// GetOrderByPaymentIntentID retrieves the order created for a payment
	// intent, if any.
	GetOrderByPaymentIntentID(ctx context.Context, paymentIntentID string) (*Order, error)

	// ListOrdersByEmail returns a customer's order history, newest first.
	ListOrdersByEmail(ctx context.Context, email string) ([]*Order, error)

	// UpdateStatus advances an order to a new status, stamping shipped_at /
	// delivered_at when those states are reached.
	UpdateStatus(ctx context.Context, id string, status OrderStatus) error
}
