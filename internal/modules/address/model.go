package address

import "time"

// SellerAddress is the shop's origin address used for shipping rate quotes.
// There is exactly one, stored under a well-known id.
type SellerAddress struct {
	Name      string    `json:"name,omitempty"`
	Street1   string    `json:"street1"`
	Street2   string    `json:"street2,omitempty"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Zip       string    `json:"zip"`
	Country   string    `json:"country"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
