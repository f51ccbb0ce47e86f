package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v74"
)

const (
	// platformFeeRate is the 10% marketplace cut taken on split payments.
	platformFeeRate = 0.10

	defaultCurrency    = "usd"
	defaultDescription = "Hearty Hounds product"
	metadataSource     = "hearty-hounds-storefront"
)

// Service defines the checkout business logic.
type Service interface {
	// CreateSession shapes a cart into a hosted checkout session.
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionResponse, error)

	// GetSession retrieves a session with line items, payment intent and
	// customer expanded. The id must carry the cs_ prefix.
	GetSession(ctx context.Context, id string) (*stripe.CheckoutSession, error)
}

type service struct {
	gateway           Gateway
	platformAccountID string
}

// NewService creates a new checkout service. platformAccountID is the shop's
// own connected-account id; payments routed to it skip the transfer split.
func NewService(gateway Gateway, platformAccountID string) Service {
	return &service{gateway: gateway, platformAccountID: platformAccountID}
}

// ComputeTotals derives all money amounts from raw item prices server-side.
func ComputeTotals(items []CheckoutItem, rate *SelectedShippingRate) Totals {
	var subtotal int64
	for _, item := range items {
		subtotal += int64(math.Round(item.Price*100)) * item.Quantity
	}
	var shipping int64
	if rate != nil {
		shipping = rate.Amount
	}
	total := subtotal + shipping
	return Totals{
		SubtotalCents:    subtotal,
		ShippingCents:    shipping,
		TotalCents:       total,
		PlatformFeeCents: int64(math.Round(float64(total) * platformFeeRate)),
	}
}

func (s *service) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionResponse, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("items are required")
	}
	if req.SuccessURL == "" {
		return nil, fmt.Errorf("successUrl is required")
	}
	if req.CancelURL == "" {
		return nil, fmt.Errorf("cancelUrl is required")
	}

	totals := ComputeTotals(req.Items, req.SelectedShippingRate)

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items)+1)
	for _, item := range req.Items {
		description := item.Description
		if description == "" {
			description = defaultDescription
		}
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:        stripe.String(item.Name),
			Description: stripe.String(description),
		}
		// Invalid image URLs are dropped silently rather than failing checkout.
		if isAbsoluteHTTPURL(item.ImageURL) {
			product.Images = stripe.StringSlice([]string{item.ImageURL})
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(item.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(defaultCurrency),
				UnitAmount:  stripe.Int64(int64(math.Round(item.Price * 100))),
				ProductData: product,
			},
		})
	}
	if totals.ShippingCents > 0 {
		name := "Shipping"
		if req.SelectedShippingRate != nil && req.SelectedShippingRate.DisplayName != "" {
			name = "Shipping - " + req.SelectedShippingRate.DisplayName
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(defaultCurrency),
				UnitAmount: stripe.Int64(totals.ShippingCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(name),
				},
			},
		})
	}

	metadata := map[string]string{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	metadata["source"] = metadataSource
	metadata["created_at"] = time.Now().UTC().Format(time.RFC3339)
	metadata["subtotal_cents"] = strconv.FormatInt(totals.SubtotalCents, 10)
	metadata["shipping_cents"] = strconv.FormatInt(totals.ShippingCents, 10)
	metadata["total_cents"] = strconv.FormatInt(totals.TotalCents, 10)
	metadata["platform_fee_cents"] = strconv.FormatInt(totals.PlatformFeeCents, 10)
	if sold := soldItemsMetadata(req.Items); sold != "" {
		metadata["items"] = sold
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		LineItems:         lineItems,
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}

	switch {
	case req.ConnectedAccountID != "" && req.ConnectedAccountID != s.platformAccountID:
		// Split payment: seller receives the funds, platform keeps the fee.
		params.PaymentIntentData.ApplicationFeeAmount = stripe.Int64(totals.PlatformFeeCents)
		params.PaymentIntentData.TransferData = &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
			Destination: stripe.String(req.ConnectedAccountID),
		}
		metadata["connected_account_id"] = req.ConnectedAccountID
	case req.ConnectedAccountID == s.platformAccountID && req.ConnectedAccountID != "":
		// Payment to the platform's own account: no transfer, no fee charged.
		metadata["platform_fee_cents"] = "0"
	}

	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	params.PaymentIntentData.Metadata = metadata

	session, err := s.gateway.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, err
	}

	resp := &SessionResponse{
		ID:            session.ID,
		URL:           session.URL,
		AmountTotal:   session.AmountTotal,
		Currency:      string(session.Currency),
		PaymentStatus: string(session.PaymentStatus),
		Metadata:      session.Metadata,
	}
	if session.PaymentIntent != nil {
		resp.ClientSecret = session.PaymentIntent.ClientSecret
	}
	return resp, nil
}

func (s *service) GetSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	if !strings.HasPrefix(id, "cs_") {
		return nil, fmt.Errorf("invalid session id format")
	}
	params := &stripe.CheckoutSessionParams{}
	params.AddExpand("line_items")
	params.AddExpand("payment_intent")
	params.AddExpand("customer")
	return s.gateway.GetCheckoutSession(ctx, id, params)
}

// soldItemsMetadata encodes product ids and quantities for reconciliation.
func soldItemsMetadata(items []CheckoutItem) string {
	sold := make([]SoldItem, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		sold = append(sold, SoldItem{ID: item.ID, Quantity: int(item.Quantity)})
	}
	if len(sold) == 0 {
		return ""
	}
	b, err := json.Marshal(sold)
	if err != nil {
		return ""
	}
	return string(b)
}

func isAbsoluteHTTPURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
