package checkout

import (
	"context"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
)

// Gateway is the thin seam over the Stripe API. The service builds the
// request params; the gateway only executes them, so tests can swap in a
// fake and inspect exactly what would hit the wire.
type Gateway interface {
	// CreateCheckoutSession creates a hosted Checkout Session.
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)

	// GetCheckoutSession retrieves a session, honoring any expand params.
	GetCheckoutSession(ctx context.Context, id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)

	// GetPaymentIntent retrieves a payment intent by id.
	GetPaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
}

type stripeGateway struct {
	api *client.API
}

// NewStripeGateway creates a Gateway backed by the live Stripe API.
func NewStripeGateway(apiKey string) Gateway {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &stripeGateway{api: api}
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	params.Context = ctx
	return g.api.CheckoutSessions.New(params)
}

func (g *stripeGateway) GetCheckoutSession(ctx context.Context, id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	if params == nil {
		params = &stripe.CheckoutSessionParams{}
	}
	params.Context = ctx
	return g.api.CheckoutSessions.Get(id, params)
}

func (g *stripeGateway) GetPaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	return g.api.PaymentIntents.Get(id, params)
}
