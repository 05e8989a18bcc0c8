package category

import (
	"context"

	"github.com/vendora/catalog-service/internal/category/dto"
	"github.com/vendora/catalog-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id string) (*model.Category, error)
	FindByName(ctx context.Context, name string) (*model.Category, error) // case-insensitive
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)
	FindAll(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id string) error

	CreateSub(ctx context.Context, sub *model.SubCategory) error
	FindSubByID(ctx context.Context, id string) (*model.SubCategory, error)
	FindSubByName(ctx context.Context, categoryID, name string) (*model.SubCategory, error)
	FindSubsByCategory(ctx context.Context, categoryID string) ([]model.SubCategory, error)
	DeleteSub(ctx context.Context, id string) error
}
