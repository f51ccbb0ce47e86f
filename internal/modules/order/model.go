package order

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the fulfillment lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusPaid       OrderStatus = "paid"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusRefunded   OrderStatus = "refunded"
)

// PaymentStatus tracks the money side independently of fulfillment.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// OrderItem is a snapshot of a purchased item at payment time, not a live
// product reference. Money fields are decimal currency units.
type OrderItem struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ProductID string    `json:"product_id,omitempty"`
	Name      string    `json:"name"`
	Quantity  int64     `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	LineTotal float64   `json:"line_total"`
	CreatedAt time.Time `json:"created_at"`
}

// Order is the persisted record of a completed payment. Exactly one exists
// per payment intent.
type Order struct {
	ID                 uuid.UUID       `json:"id"`
	CustomerEmail      string          `json:"customer_email"`
	CustomerName       string          `json:"customer_name,omitempty"`
	CustomerID         string          `json:"customer_id,omitempty"`
	Items              []*OrderItem    `json:"items,omitempty"`
	Subtotal           float64         `json:"subtotal"`
	ShippingCost       float64         `json:"shipping_cost"`
	PlatformFee        float64         `json:"platform_fee"`
	StripeFee          float64         `json:"stripe_fee"`
	Total              float64         `json:"total"`
	Currency           string          `json:"currency"`
	Status             OrderStatus     `json:"status"`
	PaymentStatus      PaymentStatus   `json:"payment_status"`
	PaymentIntentID    string          `json:"payment_intent_id"`
	CheckoutSessionID  string          `json:"checkout_session_id,omitempty"`
	ConnectedAccountID string          `json:"connected_account_id,omitempty"`
	ShippingDetails    json.RawMessage `json:"shipping_details,omitempty"`
	BillingDetails     json.RawMessage `json:"billing_details,omitempty"`
	Metadata           json.RawMessage `json:"metadata,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	PaidAt             *time.Time      `json:"paid_at,omitempty"`
	ShippedAt          *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt        *time.Time      `json:"delivered_at,omitempty"`
}

// CreateFromPaymentRequest references a completed payment by session or
// payment intent. At least one is required.
type CreateFromPaymentRequest struct {
	SessionID       string `json:"sessionId,omitempty"`
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
}

// UpdateStatusRequest advances an order's fulfillment status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
