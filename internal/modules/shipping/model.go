package shipping

// Address is a shipping origin or destination.
type Address struct {
	Name    string `json:"name,omitempty"`
	Street1 string `json:"street1"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// Dimensions are package dimensions in inches.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Parcel is a single package: dimensions in inches, weight in pounds.
type Parcel struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
}

// DeliveryEstimate bounds the expected transit time in days.
type DeliveryEstimate struct {
	Minimum int `json:"minimum"`
	Maximum int `json:"maximum"`
}

// Rate is a carrier rate reshaped for the storefront. Amount is always
// integer cents.
type Rate struct {
	ID               string            `json:"id"`
	DisplayName      string            `json:"display_name"`
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	Carrier          string            `json:"carrier"`
	Service          string            `json:"service"`
	EstimatedDays    int               `json:"estimated_days,omitempty"`
	DeliveryEstimate *DeliveryEstimate `json:"delivery_estimate,omitempty"`
}

// QuoteItem is a cart line for the cart-derived quote endpoint. Weight is in
// ounces; missing weight/dimensions get carrier-safe defaults.
type QuoteItem struct {
	ID         string      `json:"id,omitempty"`
	Name       string      `json:"name,omitempty"`
	Price      float64     `json:"price"`
	Quantity   int         `json:"quantity"`
	WeightOz   *float64    `json:"weight,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
}

// QuoteRequest asks for rates for a cart shipped from the seller's origin.
type QuoteRequest struct {
	ToAddress          Address     `json:"toAddress"`
	Items              []QuoteItem `json:"items"`
	ConnectedAccountID string      `json:"connectedAccountId,omitempty"`
}

// QuoteResponse is the cart-derived rate quote.
type QuoteResponse struct {
	Rates                    []Rate            `json:"rates"`
	QualifiesForFreeShipping bool              `json:"qualifies_for_free_shipping"`
	FreeShippingThreshold    float64           `json:"free_shipping_threshold"`
	OrderTotal               float64           `json:"order_total"`
	PackageInfo              Parcel            `json:"package_info"`
	Metadata                 map[string]string `json:"metadata,omitempty"`
}

// RatesRequest is the generic variant: caller supplies origin and explicit
// packages, no cart aggregation.
type RatesRequest struct {
	FromAddress     Address  `json:"fromAddress"`
	ToAddress       Address  `json:"toAddress"`
	Packages        []Parcel `json:"packages"`
	Async           bool     `json:"async,omitempty"`
	CarrierAccounts []string `json:"carrierAccounts,omitempty"`
}

// RatesResponse is the generic rate listing.
type RatesResponse struct {
	Rates      []Rate            `json:"rates"`
	ShipmentID string            `json:"shipment_id"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ValidateAddressResponse reports provider address validation.
type ValidateAddressResponse struct {
	Valid             bool                `json:"valid"`
	Address           Address             `json:"address"`
	ValidationResults []ValidationMessage `json:"validation_results"`
}

// ValidationMessage is one provider remark about a validated address.
type ValidationMessage struct {
	Code string `json:"code,omitempty"`
	Text string `json:"text,omitempty"`
}
