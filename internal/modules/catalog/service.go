package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service defines the catalog business logic.
type Service interface {
	CreateProduct(ctx context.Context, req UpsertProductRequest) (*Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context, category string, featuredOnly, inStockOnly bool) ([]*Product, error)
	UpdateProduct(ctx context.Context, id string, req UpsertProductRequest) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error

	// DecrementStock is called by order reconciliation after a sale.
	DecrementStock(ctx context.Context, id string, quantity int) error
}

type service struct {
	repo Repository
}

// NewService creates a new catalog service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateProduct(ctx context.Context, req UpsertProductRequest) (*Product, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("price must not be negative")
	}
	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}
	p := &Product{
		ID:            uuid.New(),
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Currency:      currency,
		Images:        req.Images,
		Category:      req.Category,
		WeightOz:      req.WeightOz,
		Dimensions:    req.Dimensions,
		StockQuantity: req.StockQuantity,
		InStock:       req.StockQuantity > 0,
		Featured:      req.Featured,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to persist product: %w", err)
	}
	return p, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListProducts(ctx context.Context, category string, featuredOnly, inStockOnly bool) ([]*Product, error) {
	return s.repo.List(ctx, category, featuredOnly, inStockOnly)
}

func (s *service) UpdateProduct(ctx context.Context, id string, req UpsertProductRequest) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("product not found: %w", err)
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Price >= 0 {
		p.Price = req.Price
	}
	if req.Currency != "" {
		p.Currency = req.Currency
	}
	p.Description = req.Description
	p.Images = req.Images
	p.Category = req.Category
	p.WeightOz = req.WeightOz
	p.Dimensions = req.Dimensions
	p.StockQuantity = req.StockQuantity
	p.InStock = req.StockQuantity > 0
	p.Featured = req.Featured
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) DecrementStock(ctx context.Context, id string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be > 0")
	}
	return s.repo.DecrementStock(ctx, id, quantity)
}
