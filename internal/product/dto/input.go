package dto

import "github.com/vendora/catalog-service/internal/model"

type CreateProductInput struct {
	Name             string
	ShortDescription string
	Description      string
	BasePrice        float64
	MRP              *float64
	DiscountPercent  float64
	CategoryID       string
	SubCategoryID    string
	Status           string
	Stock            int // only meaningful for variant-less products
	ImageURLs        []string
	VideoURLs        []string
	Meta             model.JSONMap
}

// VariantInput carries one variant of an aggregate create, or a
// standalone upsert. A present ID selects update semantics.
type VariantInput struct {
	ID              string
	SKU             string
	Attributes      model.JSONMap
	Price           float64
	MRP             *float64
	DiscountPercent float64
	Stock           int
}

// UpdateProductInput uses pointer fields: nil leaves the column alone.
type UpdateProductInput struct {
	ProductID        string
	Name             *string
	ShortDescription *string
	Description      *string
	BasePrice        *float64
	MRP              *float64
	DiscountPercent  *float64
	CategoryID       *string
	SubCategoryID    *string
	Status           *string
	IsActive         *bool
	Meta             model.JSONMap
	AddImageURLs     []string
	AddVideoURLs     []string
}

type PricingInput struct {
	ProductID       string
	VariantID       string // empty targets the product itself
	BasePrice       *float64
	MRP             *float64
	DiscountPercent *float64
}

const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

type StockAdjustment struct {
	ProductID string
	VariantID string // empty targets the product's own counter
	Direction string // "in" | "out"
	Qty       int
	Note      string
}
