package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vendora/catalog-service/internal/apperr"
	"github.com/vendora/catalog-service/internal/category"
	"github.com/vendora/catalog-service/internal/category/dto"
	"github.com/vendora/catalog-service/internal/model"
	"github.com/vendora/catalog-service/internal/slug"
	"go.uber.org/zap"
)

type categoryUseCase struct {
	repo   category.Repository
	logger *zap.Logger
}

func NewCategoryUseCase(repo category.Repository, log *zap.Logger) category.UseCase {
	return &categoryUseCase{
		repo:   repo,
		logger: log,
	}
}

// CreateCategory enforces globally unique names: a collision is a
// Conflict, never a suffixed slug. The unique constraint is the final
// arbiter under concurrent creates.
func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("name is required: %w", apperr.ErrValidation)
	}

	existing, err := uc.repo.FindByName(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("category %q already exists: %w", input.Name, apperr.ErrConflict)
	}

	now := time.Now()
	cat := &model.Category{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:            input.Name,
		Slug:            slug.Make(input.Name),
		Description:     optional(input.Description),
		MetaTitle:       optional(input.MetaTitle),
		MetaDescription: optional(input.MetaDescription),
		MetaKeywords:    optional(input.MetaKeywords),
		ImageURL:        optional(input.ImageURL),
		SortOrder:       input.SortOrder,
		IsActive:        true,
	}

	if err := uc.repo.Create(ctx, cat); err != nil {
		return nil, err
	}
	uc.logger.Info("category created", zap.String("id", cat.ID), zap.String("slug", cat.Slug))
	return cat, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	cat, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, fmt.Errorf("category %s: %w", id, apperr.ErrNotFound)
	}
	return cat, nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	cat, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, fmt.Errorf("category %s: %w", input.ID, apperr.ErrNotFound)
	}

	if input.Name != "" && input.Name != cat.Name {
		dup, err := uc.repo.FindByName(ctx, input.Name)
		if err != nil {
			return nil, err
		}
		if dup != nil && dup.ID != cat.ID {
			return nil, fmt.Errorf("category %q already exists: %w", input.Name, apperr.ErrConflict)
		}
		cat.Name = input.Name
		cat.Slug = slug.Make(input.Name)
	}

	cat.Description = optional(input.Description)
	cat.MetaTitle = optional(input.MetaTitle)
	cat.MetaDescription = optional(input.MetaDescription)
	cat.MetaKeywords = optional(input.MetaKeywords)
	if input.ImageURL != "" {
		cat.ImageURL = &input.ImageURL
	}
	cat.SortOrder = input.SortOrder
	cat.IsActive = input.IsActive
	cat.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id string) error {
	cat, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if cat == nil {
		return fmt.Errorf("category %s: %w", id, apperr.ErrNotFound)
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *categoryUseCase) CreateSubCategory(ctx context.Context, input *dto.CreateSubCategoryInput) (*model.SubCategory, error) {
	if input.Name == "" || input.CategoryName == "" {
		return nil, fmt.Errorf("name and category_name are required: %w", apperr.ErrValidation)
	}

	parent, err := uc.repo.FindByName(ctx, input.CategoryName)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, fmt.Errorf("category %q: %w", input.CategoryName, apperr.ErrNotFound)
	}

	existing, err := uc.repo.FindSubByName(ctx, parent.ID, input.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("subcategory %q under %q already exists: %w", input.Name, parent.Name, apperr.ErrConflict)
	}

	now := time.Now()
	sub := &model.SubCategory{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		CategoryID: parent.ID,
		Name:       input.Name,
		// Prefixed with the parent slug: the slug column is globally
		// unique while names are only unique per parent.
		Slug:        slug.Make(parent.Name) + "-" + slug.Make(input.Name),
		Description: optional(input.Description),
		ImageURL:    optional(input.ImageURL),
		IsActive:    true,
	}

	if err := uc.repo.CreateSub(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (uc *categoryUseCase) ListSubCategories(ctx context.Context, categoryID string) ([]model.SubCategory, error) {
	return uc.repo.FindSubsByCategory(ctx, categoryID)
}

func (uc *categoryUseCase) DeleteSubCategory(ctx context.Context, id string) error {
	sub, err := uc.repo.FindSubByID(ctx, id)
	if err != nil {
		return err
	}
	if sub == nil {
		return fmt.Errorf("subcategory %s: %w", id, apperr.ErrNotFound)
	}
	return uc.repo.DeleteSub(ctx, id)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
