package address

import (
	"context"
	"fmt"
)

// Service defines seller address business logic.
type Service interface {
	GetSellerAddress(ctx context.Context) (*SellerAddress, error)
	SetSellerAddress(ctx context.Context, a SellerAddress) (*SellerAddress, error)
}

type service struct {
	repo Repository
}

// NewService creates a new address service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetSellerAddress(ctx context.Context) (*SellerAddress, error) {
	return s.repo.GetDefault(ctx)
}

func (s *service) SetSellerAddress(ctx context.Context, a SellerAddress) (*SellerAddress, error) {
	if a.Street1 == "" {
		return nil, fmt.Errorf("street1 is required")
	}
	if a.City == "" {
		return nil, fmt.Errorf("city is required")
	}
	if a.State == "" {
		return nil, fmt.Errorf("state is required")
	}
	if a.Zip == "" {
		return nil, fmt.Errorf("zip is required")
	}
	if a.Country == "" {
		return nil, fmt.Errorf("country is required")
	}
	if err := s.repo.SetDefault(ctx, &a); err != nil {
		return nil, fmt.Errorf("failed to persist seller address: %w", err)
	}
	return s.repo.GetDefault(ctx)
}
