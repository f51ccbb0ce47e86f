package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Dimensions are the physical dimensions of a product in inches.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Product is a storefront product. Weight (ounces) and dimensions feed the
// shipping package aggregation; price feeds checkout totals.
type Product struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description,omitempty"`
	Price         float64     `json:"price"`
	Currency      string      `json:"currency"`
	Images        []string    `json:"images,omitempty"`
	Category      string      `json:"category,omitempty"`
	WeightOz      *float64    `json:"weight,omitempty"`
	Dimensions    *Dimensions `json:"dimensions,omitempty"`
	StockQuantity int         `json:"stock_quantity"`
	InStock       bool        `json:"in_stock"`
	Featured      bool        `json:"featured"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// UpsertProductRequest is the payload for creating or updating a product.
type UpsertProductRequest struct {
	Name          string      `json:"name"`
	Description   string      `json:"description,omitempty"`
	Price         float64     `json:"price"`
	Currency      string      `json:"currency,omitempty"`
	Images        []string    `json:"images,omitempty"`
	Category      string      `json:"category,omitempty"`
	WeightOz      *float64    `json:"weight,omitempty"`
	Dimensions    *Dimensions `json:"dimensions,omitempty"`
	StockQuantity int         `json:"stock_quantity"`
	Featured      bool        `json:"featured"`
}
