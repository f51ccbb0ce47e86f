package checkout

// CheckoutItem is one cart line as sent by the storefront. Price is in
// decimal currency units; the server recomputes every total from it and
// never trusts a client-sent total.
type CheckoutItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int64   `json:"quantity"`
	ImageURL    string  `json:"imageUrl,omitempty"`
}

// SelectedShippingRate is the rate the shopper picked from a prior quote.
// Amount is already integer cents.
type SelectedShippingRate struct {
	ID          string `json:"id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency,omitempty"`
}

// CreateSessionRequest is the payload for creating a hosted checkout session.
type CreateSessionRequest struct {
	Items                []CheckoutItem        `json:"items"`
	CustomerEmail        string                `json:"customerEmail,omitempty"`
	ConnectedAccountID   string                `json:"connectedAccountId,omitempty"`
	SuccessURL           string                `json:"successUrl"`
	CancelURL            string                `json:"cancelUrl"`
	SelectedShippingRate *SelectedShippingRate `json:"selectedShippingRate,omitempty"`
	Metadata             map[string]string     `json:"metadata,omitempty"`
}

// SessionResponse is the reshaped provider session returned to the client.
type SessionResponse struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	ClientSecret  string            `json:"client_secret,omitempty"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	PaymentStatus string            `json:"payment_status"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// SoldItem pairs a catalog product id with the purchased quantity. The list
// rides along in the payment intent metadata so order reconciliation can
// adjust stock; provider line items don't carry catalog ids.
type SoldItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// Totals is the server-side money breakdown for a cart, all integer cents.
type Totals struct {
	SubtotalCents    int64 `json:"subtotal_cents"`
	ShippingCents    int64 `json:"shipping_cents"`
	TotalCents       int64 `json:"total_cents"`
	PlatformFeeCents int64 `json:"platform_fee_cents"`
}
