package product

import (
	"context"

	"github.com/vendora/catalog-service/internal/model"
	"github.com/vendora/catalog-service/internal/product/dto"
)

type Repository interface {
	// CreateWithVariants persists the product row and all variant rows
	// in one transaction; either all commit or none do.
	CreateWithVariants(ctx context.Context, product *model.Product, variants []model.ProductVariant) error
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindBySlug(ctx context.Context, slug string) (*model.Product, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id string) error

	FindVariants(ctx context.Context, productID string) ([]model.ProductVariant, error)
	FindVariantByID(ctx context.Context, id string) (*model.ProductVariant, error)
	CreateVariant(ctx context.Context, v *model.ProductVariant) error
	UpdateVariant(ctx context.Context, v *model.ProductVariant) error

	// AdjustProductStock / AdjustVariantStock apply a signed stock delta
	// with a conditional update (stock can never go negative) and write
	// the movement row in the same transaction. They return the new
	// stock value.
	AdjustProductStock(ctx context.Context, movement *model.StockMovement) (int, error)
	AdjustVariantStock(ctx context.Context, movement *model.StockMovement) (int, error)
	ListMovements(ctx context.Context, productID string, page, pageSize int) ([]model.StockMovement, int, error)
}
