package catalog

import "context"

// Repository defines data access for products.
type Repository interface {
	// Create persists a new product.
	Create(ctx context.Context, p *Product) error

	// GetByID retrieves a product by UUID.
	GetByID(ctx context.Context, id string) (*Product, error)

	// List returns products, optionally filtered by category / featured / in-stock.
	List(ctx context.Context, category string, featuredOnly, inStockOnly bool) ([]*Product, error)

	// Update overwrites a product's mutable fields.
	Update(ctx context.Context, p *Product) error

	// Delete removes a product.
	Delete(ctx context.Context, id string) error

	// DecrementStock subtracts quantity from stock, flooring at zero and
	// clearing in_stock when the floor is hit.
	DecrementStock(ctx context.Context, id string, quantity int) error
}
