package category

import (
	"context"

	"github.com/vendora/catalog-service/internal/category/dto"
	"github.com/vendora/catalog-service/internal/model"
)

type UseCase interface {
	CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error)
	UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	CreateSubCategory(ctx context.Context, input *dto.CreateSubCategoryInput) (*model.SubCategory, error)
	ListSubCategories(ctx context.Context, categoryID string) ([]model.SubCategory, error)
	DeleteSubCategory(ctx context.Context, id string) error
}
