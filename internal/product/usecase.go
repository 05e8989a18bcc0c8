package product

import (
	"context"

	"github.com/vendora/catalog-service/internal/model"
	"github.com/vendora/catalog-service/internal/product/dto"
)

type UseCase interface {
	// CreateProductWithVariants is the aggregate creation path: at least
	// one variant, all rows in one transaction.
	CreateProductWithVariants(ctx context.Context, vendorID string, input *dto.CreateProductInput, variants []dto.VariantInput) (*model.Product, error)
	// CreateProduct creates a variant-less product with product-level
	// stock (bulk import path).
	CreateProduct(ctx context.Context, vendorID string, input *dto.CreateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, vendorID, productID string) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	UpdateProduct(ctx context.Context, vendorID string, input *dto.UpdateProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, vendorID, productID string, force bool) error

	UpsertVariant(ctx context.Context, vendorID, productID string, input *dto.VariantInput) (*model.ProductVariant, error)
	AdjustStock(ctx context.Context, vendorID string, adj *dto.StockAdjustment) (int, error)
	SetPricing(ctx context.Context, vendorID string, input *dto.PricingInput) (*model.Product, error)
	ListMovements(ctx context.Context, vendorID, productID string, page, pageSize int) ([]model.StockMovement, int, error)
}
