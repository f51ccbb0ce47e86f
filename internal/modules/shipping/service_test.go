package shipping

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartyhounds/storefront-backend/internal/modules/address"
)

type fakeProvider struct {
	shipment  *Shipment
	validated *ValidatedAddress
	err       error

	createCalls int
	lastFrom    Address
	lastParcels []Parcel
	lastAsync   bool
}

func (f *fakeProvider) CreateShipment(_ context.Context, from, to Address, parcels []Parcel, async bool, carrierAccounts []string) (*Shipment, error) {
	f.createCalls++
	f.lastFrom = from
	f.lastParcels = parcels
	f.lastAsync = async
	if f.err != nil {
		return nil, f.err
	}
	return f.shipment, nil
}

func (f *fakeProvider) ValidateAddress(_ context.Context, a Address) (*ValidatedAddress, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.validated, nil
}

type fakeAddressRepo struct {
	addr *address.SellerAddress
	err  error
}

func (f *fakeAddressRepo) GetDefault(context.Context) (*address.SellerAddress, error) {
	return f.addr, f.err
}

func (f *fakeAddressRepo) SetDefault(context.Context, *address.SellerAddress) error { return nil }

func destination() Address {
	return Address{Street1: "1 Bark Ave", City: "Portland", State: "OR", Zip: "97201", Country: "US"}
}

func providerRate(id, amount, provider, service string, days int) ProviderRate {
	r := ProviderRate{ObjectID: id, Amount: amount, Currency: "USD", Provider: provider, EstimatedDays: days}
	r.ServiceLevel.Name = service
	r.ServiceLevel.Token = service
	return r
}

func TestQuoteRates_FormatsAndSortsRates(t *testing.T) {
	provider := &fakeProvider{shipment: &Shipment{
		ObjectID: "shp_1",
		Rates: []ProviderRate{
			providerRate("r1", "12.50", "UPS", "Ground", 5),
			providerRate("r2", "7.99", "USPS", "Priority", 3),
			{ObjectID: "r3", Amount: "", Currency: "USD"},        // dropped: no amount
			{ObjectID: "r4", Amount: "9.99", Currency: ""},       // dropped: no currency
			providerRate("r5", "not-a-number", "FedEx", "2Day", 2), // dropped: unparseable
		},
	}}
	svc := NewService(provider, &fakeAddressRepo{err: errors.New("no rows")}, destination())

	resp, err := svc.QuoteRates(context.Background(), QuoteRequest{
		ToAddress: destination(),
		Items:     []QuoteItem{{Price: 20, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Rates, 2)

	assert.Equal(t, "r2", resp.Rates[0].ID)
	assert.Equal(t, int64(799), resp.Rates[0].Amount)
	assert.Equal(t, "r1", resp.Rates[1].ID)
	assert.Equal(t, int64(1250), resp.Rates[1].Amount)
	assert.Equal(t, "USPS Priority", resp.Rates[0].DisplayName)
	require.NotNil(t, resp.Rates[0].DeliveryEstimate)
	assert.Equal(t, 3, resp.Rates[0].DeliveryEstimate.Minimum)
}

func TestQuoteRates_StableSortPreservesProviderOrderOnTies(t *testing.T) {
	provider := &fakeProvider{shipment: &Shipment{Rates: []ProviderRate{
		providerRate("first", "5.00", "USPS", "A", 3),
		providerRate("second", "5.00", "UPS", "B", 3),
	}}}
	svc := NewService(provider, &fakeAddressRepo{err: errors.New("no rows")}, destination())

	resp, err := svc.QuoteRates(context.Background(), QuoteRequest{
		ToAddress: destination(),
		Items:     []QuoteItem{{Price: 10, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Rates[0].ID)
	assert.Equal(t, "second", resp.Rates[1].ID)
}

func TestQuoteRates_FreeShippingBoundary(t *testing.T) {
	provider := &fakeProvider{shipment: &Shipment{Rates: []ProviderRate{
		providerRate("r1", "5.00", "USPS", "Ground", 4),
	}}}
	svc := NewService(provider, &fakeAddressRepo{err: errors.New("no rows")}, destination())

	atThreshold, err := svc.QuoteRates(context.Background(), QuoteRequest{
		ToAddress: destination(),
		Items:     []QuoteItem{{Price: 25, Quantity: 2}}, // exactly 50.00
	})
	require.NoError(t, err)
	assert.True(t, atThreshold.QualifiesForFreeShipping)
	assert.Equal(t, 50.0, atThreshold.OrderTotal)

	below, err := svc.QuoteRates(context.Background(), QuoteRequest{
		ToAddress: destination(),
		Items:     []QuoteItem{{Price: 49.99, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.False(t, below.QualifiesForFreeShipping)
}

func TestQuoteRates_EmptyCartRejectedBeforeProviderCall(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewService(provider, &fakeAddressRepo{}, destination())

	_, err := svc.QuoteRates(context.Background(), QuoteRequest{ToAddress: destination()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
	assert.Zero(t, provider.createCalls)
}

func TestQuoteRates_EmptyRateSetIsNoRates(t *testing.T) {
	provider := &fakeProvider{shipment: &Shipment{}}
	svc := NewService(provider, &fakeAddressRepo{err: errors.New("no rows")}, destination())

	_, err := svc.QuoteRates(context.Background(), QuoteRequest{
		ToAddress: destination(),
		Items:     []QuoteItem{{Price: 10, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrNoRates)
}

func TestQuoteRates_OriginFallsBackWhenSellerAddressMissing(t *testing.T) {
	provider := &fakeProvider{shipment: &Shipment{Rates: []ProviderRate{
		providerRate("r1", "5.00", "USPS", "Ground", 4),
	}}}
	fallback := Address{Street1: "99 Fallback Rd", City: "Austin", State: "TX", Zip: "78701", Country: "US"}
	svc := NewService(provider, &fakeAddressRepo{err: errors.New("no rows")}, fallback)

	_, err := svc.QuoteRates(context.Background(), QuoteRequest{
		ToAddress: destination(),
		Items:     []QuoteItem{{Price: 10, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "99 Fallback Rd", provider.lastFrom.Street1)
}

func TestQuoteRates_UsesSellerAddressWhenPresent(t *testing.T) {
	provider := &fakeProvider{shipment: &Shipment{Rates: []ProviderRate{
		providerRate("r1", "5.00", "USPS", "Ground", 4),
	}}}
	repo := &fakeAddressRepo{addr: &address.SellerAddress{
		Street1: "10 Kennel Ct", City: "Denver", State: "CO", Zip: "80202", Country: "US",
	}}
	svc := NewService(provider, repo, destination())

	_, err := svc.QuoteRates(context.Background(), QuoteRequest{
		ToAddress: destination(),
		Items:     []QuoteItem{{Price: 10, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "10 Kennel Ct", provider.lastFrom.Street1)
}

func TestGetRates_RequiresPackages(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewService(provider, &fakeAddressRepo{}, destination())

	_, err := svc.GetRates(context.Background(), RatesRequest{
		FromAddress: destination(),
		ToAddress:   destination(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "packages are required")
	assert.Zero(t, provider.createCalls)
}

func TestGetRates_PassesPackagesAndAsyncThrough(t *testing.T) {
	provider := &fakeProvider{shipment: &Shipment{ObjectID: "shp_9", Rates: []ProviderRate{
		providerRate("r1", "5.00", "USPS", "Ground", 4),
	}}}
	svc := NewService(provider, &fakeAddressRepo{}, destination())

	packages := []Parcel{{Length: 12, Width: 8, Height: 4, Weight: 2}}
	resp, err := svc.GetRates(context.Background(), RatesRequest{
		FromAddress: destination(),
		ToAddress:   destination(),
		Packages:    packages,
		Async:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, "shp_9", resp.ShipmentID)
	assert.Equal(t, packages, provider.lastParcels)
	assert.True(t, provider.lastAsync)
}
