package shipping

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"

	"github.com/heartyhounds/storefront-backend/internal/modules/address"
)

// freeShippingThreshold is the order total (decimal units) at which shipping
// becomes free for the shopper.
const freeShippingThreshold = 50.0

// ErrNoRates means the provider returned an empty rate set; a valid business
// outcome surfaced as 404, not an exception.
var ErrNoRates = errors.New("no rates found")

// Service defines the shipping rate business logic.
type Service interface {
	// QuoteRates aggregates a cart into one parcel and quotes rates from the
	// seller's origin address.
	QuoteRates(ctx context.Context, req QuoteRequest) (*QuoteResponse, error)

	// GetRates quotes rates for caller-supplied origin and packages.
	GetRates(ctx context.Context, req RatesRequest) (*RatesResponse, error)

	// ValidateAddress runs provider-side address validation.
	ValidateAddress(ctx context.Context, a Address) (*ValidateAddressResponse, error)
}

type service struct {
	provider       RateProvider
	addresses      address.Repository
	fallbackOrigin Address
}

// NewService creates a new shipping service. fallbackOrigin is used when the
// seller address is unset or unreadable; quoting never fails on origin lookup.
func NewService(provider RateProvider, addresses address.Repository, fallbackOrigin Address) Service {
	return &service{provider: provider, addresses: addresses, fallbackOrigin: fallbackOrigin}
}

func (s *service) QuoteRates(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("items are required")
	}
	if err := validateDestination(req.ToAddress); err != nil {
		return nil, err
	}

	origin := s.resolveOrigin(ctx)
	parcel := AggregatePackage(req.Items)

	shipment, err := s.provider.CreateShipment(ctx, origin, req.ToAddress, []Parcel{parcel}, false, nil)
	if err != nil {
		return nil, err
	}

	rates := formatRates(shipment.Rates)
	if len(rates) == 0 {
		return nil, ErrNoRates
	}

	var orderTotal float64
	for _, item := range req.Items {
		orderTotal += item.Price * float64(item.Quantity)
	}

	metadata := map[string]string{"shipment_id": shipment.ObjectID}
	if req.ConnectedAccountID != "" {
		metadata["connected_account_id"] = req.ConnectedAccountID
	}

	return &QuoteResponse{
		Rates:                    rates,
		QualifiesForFreeShipping: orderTotal >= freeShippingThreshold,
		FreeShippingThreshold:    freeShippingThreshold,
		OrderTotal:               orderTotal,
		PackageInfo:              parcel,
		Metadata:                 metadata,
	}, nil
}

func (s *service) GetRates(ctx context.Context, req RatesRequest) (*RatesResponse, error) {
	if err := validateDestination(req.FromAddress); err != nil {
		return nil, fmt.Errorf("fromAddress: %w", err)
	}
	if err := validateDestination(req.ToAddress); err != nil {
		return nil, fmt.Errorf("toAddress: %w", err)
	}
	if len(req.Packages) == 0 {
		return nil, fmt.Errorf("packages are required")
	}

	shipment, err := s.provider.CreateShipment(ctx, req.FromAddress, req.ToAddress, req.Packages, req.Async, req.CarrierAccounts)
	if err != nil {
		return nil, err
	}

	rates := formatRates(shipment.Rates)
	if len(rates) == 0 {
		return nil, ErrNoRates
	}

	return &RatesResponse{
		Rates:      rates,
		ShipmentID: shipment.ObjectID,
		Metadata:   map[string]string{"status": shipment.Status},
	}, nil
}

func (s *service) ValidateAddress(ctx context.Context, a Address) (*ValidateAddressResponse, error) {
	validated, err := s.provider.ValidateAddress(ctx, a)
	if err != nil {
		return nil, err
	}

	messages := make([]ValidationMessage, 0, len(validated.ValidationResults.Messages))
	for _, m := range validated.ValidationResults.Messages {
		messages = append(messages, ValidationMessage{Code: m.Code, Text: m.Text})
	}
	return &ValidateAddressResponse{
		Valid: validated.ValidationResults.IsValid,
		Address: Address{
			Name: validated.Name, Street1: validated.Street1, Street2: validated.Street2,
			City: validated.City, State: validated.State, Zip: validated.Zip,
			Country: validated.Country, Phone: validated.Phone, Email: validated.Email,
		},
		ValidationResults: messages,
	}, nil
}

// resolveOrigin reads the seller address singleton, falling back to the
// configured default when missing. Fail-open: a broken origin store should
// degrade quotes, not take checkout down.
func (s *service) resolveOrigin(ctx context.Context) Address {
	a, err := s.addresses.GetDefault(ctx)
	if err != nil {
		log.Printf("shipping: seller address unavailable, using fallback origin: %v", err)
		return s.fallbackOrigin
	}
	return Address{
		Name: a.Name, Street1: a.Street1, Street2: a.Street2,
		City: a.City, State: a.State, Zip: a.Zip, Country: a.Country,
		Phone: a.Phone, Email: a.Email,
	}
}

func validateDestination(a Address) error {
	if a.Street1 == "" {
		return fmt.Errorf("street1 is required")
	}
	if a.City == "" {
		return fmt.Errorf("city is required")
	}
	if a.State == "" {
		return fmt.Errorf("state is required")
	}
	if a.Zip == "" {
		return fmt.Errorf("zip is required")
	}
	if a.Country == "" {
		return fmt.Errorf("country is required")
	}
	return nil
}

// formatRates filters out rates missing amount or currency, converts decimal
// string amounts to integer cents and sorts ascending. The sort is stable so
// equal amounts keep provider order.
func formatRates(raw []ProviderRate) []Rate {
	rates := make([]Rate, 0, len(raw))
	for _, r := range raw {
		if r.Amount == "" || r.Currency == "" {
			continue
		}
		amount, err := strconv.ParseFloat(r.Amount, 64)
		if err != nil {
			continue
		}
		rate := Rate{
			ID:            r.ObjectID,
			DisplayName:   r.Provider + " " + r.ServiceLevel.Name,
			Amount:        int64(math.Round(amount * 100)),
			Currency:      r.Currency,
			Carrier:       r.Provider,
			Service:       r.ServiceLevel.Token,
			EstimatedDays: r.EstimatedDays,
		}
		if r.EstimatedDays > 0 {
			rate.DeliveryEstimate = &DeliveryEstimate{
				Minimum: r.EstimatedDays,
				Maximum: r.EstimatedDays + 2,
			}
		}
		rates = append(rates, rate)
	}
	sort.SliceStable(rates, func(i, j int) bool { return rates[i].Amount < rates[j].Amount })
	return rates
}
