package address

import "context"

// Repository defines data access for the seller origin address.
type Repository interface {
	// GetDefault returns the current origin address, or an error if none is set.
	GetDefault(ctx context.Context) (*SellerAddress, error)

	// SetDefault replaces the origin address (upsert on the singleton row).
	SetDefault(ctx context.Context, a *SellerAddress) error
}
