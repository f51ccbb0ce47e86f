package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// ProviderError is a structured error returned by the rate provider. The
// handler passes its detail through as a 400.
type ProviderError struct {
	Detail string `json:"detail"`
}

func (e *ProviderError) Error() string { return e.Detail }

// Shipment is the provider's shipment object carrying quoted rates.
type Shipment struct {
	ObjectID string         `json:"object_id"`
	Status   string         `json:"status"`
	Rates    []ProviderRate `json:"rates"`
}

// ProviderRate is a raw rate as returned by the provider. Amount is a
// decimal string in currency units.
type ProviderRate struct {
	ObjectID      string `json:"object_id"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Provider      string `json:"provider"`
	ServiceLevel  struct {
		Name  string `json:"name"`
		Token string `json:"token"`
	} `json:"servicelevel"`
	EstimatedDays int    `json:"estimated_days"`
	DurationTerms string `json:"duration_terms"`
}

// ValidatedAddress is the provider's address validation result.
type ValidatedAddress struct {
	Name              string `json:"name"`
	Street1           string `json:"street1"`
	Street2           string `json:"street2"`
	City              string `json:"city"`
	State             string `json:"state"`
	Zip               string `json:"zip"`
	Country           string `json:"country"`
	Phone             string `json:"phone"`
	Email             string `json:"email"`
	ValidationResults struct {
		IsValid  bool `json:"is_valid"`
		Messages []struct {
			Code string `json:"code"`
			Text string `json:"text"`
		} `json:"messages"`
	} `json:"validation_results"`
}

// RateProvider is the seam over the Shippo REST API.
type RateProvider interface {
	// CreateShipment registers a shipment with the given parcels and returns
	// quoted rates.
	CreateShipment(ctx context.Context, from, to Address, parcels []Parcel, async bool, carrierAccounts []string) (*Shipment, error)

	// ValidateAddress runs provider-side address validation.
	ValidateAddress(ctx context.Context, a Address) (*ValidatedAddress, error)
}

type shippoGateway struct {
	apiToken string
	baseURL  string
	client   *http.Client
}

// NewShippoGateway creates a RateProvider backed by the Shippo API.
func NewShippoGateway(apiToken string) RateProvider {
	return &shippoGateway{
		apiToken: apiToken,
		baseURL:  "https://api.goshippo.com",
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// shippoAddress and shippoParcel are wire shapes; Shippo wants dimensions and
// weight as decimal strings.
type shippoAddress struct {
	Name     string `json:"name,omitempty"`
	Street1  string `json:"street1"`
	Street2  string `json:"street2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Validate bool   `json:"validate,omitempty"`
}

type shippoParcel struct {
	Length       string `json:"length"`
	Width        string `json:"width"`
	Height       string `json:"height"`
	DistanceUnit string `json:"distance_unit"`
	Weight       string `json:"weight"`
	MassUnit     string `json:"mass_unit"`
}

func toShippoAddress(a Address) shippoAddress {
	return shippoAddress{
		Name: a.Name, Street1: a.Street1, Street2: a.Street2,
		City: a.City, State: a.State, Zip: a.Zip, Country: a.Country,
		Phone: a.Phone, Email: a.Email,
	}
}

func toShippoParcel(p Parcel) shippoParcel {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return shippoParcel{
		Length: f(p.Length), Width: f(p.Width), Height: f(p.Height),
		DistanceUnit: "in",
		Weight:       f(p.Weight),
		MassUnit:     "lb",
	}
}

func (g *shippoGateway) CreateShipment(ctx context.Context, from, to Address, parcels []Parcel, async bool, carrierAccounts []string) (*Shipment, error) {
	wireParcels := make([]shippoParcel, 0, len(parcels))
	for _, p := range parcels {
		wireParcels = append(wireParcels, toShippoParcel(p))
	}
	body := map[string]interface{}{
		"address_from": toShippoAddress(from),
		"address_to":   toShippoAddress(to),
		"parcels":      wireParcels,
		"async":        async,
	}
	if len(carrierAccounts) > 0 {
		body["carrier_accounts"] = carrierAccounts
	}

	shipment := &Shipment{}
	if err := g.post(ctx, "/shipments/", body, shipment); err != nil {
		return nil, err
	}
	return shipment, nil
}

func (g *shippoGateway) ValidateAddress(ctx context.Context, a Address) (*ValidatedAddress, error) {
	body := toShippoAddress(a)
	body.Validate = true

	validated := &ValidatedAddress{}
	if err := g.post(ctx, "/addresses/", body, validated); err != nil {
		return nil, err
	}
	return validated, nil
}

func (g *shippoGateway) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "ShippoToken "+g.apiToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		provErr := &ProviderError{}
		if json.Unmarshal(data, provErr) == nil && provErr.Detail != "" {
			return provErr
		}
		return fmt.Errorf("shippo: unexpected status %d", resp.StatusCode)
	}
	return json.Unmarshal(data, out)
}
