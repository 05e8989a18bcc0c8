package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendora/catalog-service/internal/apperr"
	"github.com/vendora/catalog-service/internal/category/dto"
	"github.com/vendora/catalog-service/internal/model"
	"go.uber.org/zap"
)

type fakeRepo struct {
	categories []*model.Category
	subs       []*model.SubCategory
}

func (r *fakeRepo) Create(_ context.Context, c *model.Category) error {
	for _, existing := range r.categories {
		if strings.EqualFold(existing.Name, c.Name) {
			return apperr.ErrConflict
		}
	}
	r.categories = append(r.categories, c)
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*model.Category, error) {
	for _, c := range r.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) FindByName(_ context.Context, name string) (*model.Category, error) {
	for _, c := range r.categories {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) FindBySlug(_ context.Context, s string) (*model.Category, error) {
	for _, c := range r.categories {
		if c.Slug == s {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) FindAll(_ context.Context, _ *dto.CategoryFilters) ([]model.Category, int, error) {
	out := make([]model.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (r *fakeRepo) Update(_ context.Context, _ *model.Category) error { return nil }

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	for i, c := range r.categories {
		if c.ID == id {
			r.categories = append(r.categories[:i], r.categories[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeRepo) CreateSub(_ context.Context, s *model.SubCategory) error {
	r.subs = append(r.subs, s)
	return nil
}

func (r *fakeRepo) FindSubByID(_ context.Context, id string) (*model.SubCategory, error) {
	for _, s := range r.subs {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) FindSubByName(_ context.Context, categoryID, name string) (*model.SubCategory, error) {
	for _, s := range r.subs {
		if s.CategoryID == categoryID && strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) FindSubsByCategory(_ context.Context, categoryID string) ([]model.SubCategory, error) {
	var out []model.SubCategory
	for _, s := range r.subs {
		if s.CategoryID == categoryID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeRepo) DeleteSub(_ context.Context, _ string) error { return nil }

func TestCreateCategory(t *testing.T) {
	repo := &fakeRepo{}
	uc := NewCategoryUseCase(repo, zap.NewNop())

	created, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{
		Name: "Home & Kitchen",
	})
	require.NoError(t, err)
	assert.Equal(t, "home-kitchen", created.Slug)
	assert.True(t, created.IsActive)
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	repo := &fakeRepo{}
	uc := NewCategoryUseCase(repo, zap.NewNop())

	_, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Electronics"})
	require.NoError(t, err)

	// Same name in a different case is still the same category.
	_, err = uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "electronics"})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Len(t, repo.categories, 1)
}

func TestCreateCategoryRequiresName(t *testing.T) {
	uc := NewCategoryUseCase(&fakeRepo{}, zap.NewNop())

	_, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateSubCategory(t *testing.T) {
	repo := &fakeRepo{}
	uc := NewCategoryUseCase(repo, zap.NewNop())

	parent, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Electronics"})
	require.NoError(t, err)

	sub, err := uc.CreateSubCategory(context.Background(), &dto.CreateSubCategoryInput{
		CategoryName: "Electronics",
		Name:         "Audio",
	})
	require.NoError(t, err)
	assert.Equal(t, parent.ID, sub.CategoryID)

	// Duplicate under the same parent conflicts.
	_, err = uc.CreateSubCategory(context.Background(), &dto.CreateSubCategoryInput{
		CategoryName: "Electronics",
		Name:         "audio",
	})
	require.ErrorIs(t, err, apperr.ErrConflict)

	// Unknown parent is NotFound.
	_, err = uc.CreateSubCategory(context.Background(), &dto.CreateSubCategoryInput{
		CategoryName: "Garden",
		Name:         "Tools",
	})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateCategoryRename(t *testing.T) {
	repo := &fakeRepo{}
	uc := NewCategoryUseCase(repo, zap.NewNop())

	created, err := uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Electronics"})
	require.NoError(t, err)
	_, err = uc.CreateCategory(context.Background(), &dto.CreateCategoryInput{Name: "Books"})
	require.NoError(t, err)

	// Renaming onto an existing name conflicts.
	_, err = uc.UpdateCategory(context.Background(), &dto.UpdateCategoryInput{
		ID:       created.ID,
		Name:     "Books",
		IsActive: true,
	})
	require.ErrorIs(t, err, apperr.ErrConflict)

	updated, err := uc.UpdateCategory(context.Background(), &dto.UpdateCategoryInput{
		ID:       created.ID,
		Name:     "Gadgets",
		IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "gadgets", updated.Slug)
}

func TestDeleteCategoryNotFound(t *testing.T) {
	uc := NewCategoryUseCase(&fakeRepo{}, zap.NewNop())

	err := uc.DeleteCategory(context.Background(), "missing")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
