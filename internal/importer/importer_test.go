package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendora/catalog-service/internal/apperr"
	"github.com/vendora/catalog-service/internal/category/dto"
	"github.com/vendora/catalog-service/internal/model"
	productdto "github.com/vendora/catalog-service/internal/product/dto"
	productuc "github.com/vendora/catalog-service/internal/product/usecase"
	"go.uber.org/zap"
)

func newPipeline(products *memProductRepo, categories *memCategoryRepo) *Pipeline {
	uc := productuc.NewProductUseCase(products, nil, nil, zap.NewNop())
	return NewPipeline(uc, products, categories, zap.NewNop())
}

type memCategoryRepo struct {
	categories []*model.Category
	subs       []*model.SubCategory
}

func (r *memCategoryRepo) Create(_ context.Context, c *model.Category) error {
	for _, existing := range r.categories {
		if strings.EqualFold(existing.Name, c.Name) {
			return apperr.ErrConflict
		}
	}
	r.categories = append(r.categories, c)
	return nil
}

func (r *memCategoryRepo) FindByID(_ context.Context, id string) (*model.Category, error) {
	for _, c := range r.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *memCategoryRepo) FindByName(_ context.Context, name string) (*model.Category, error) {
	for _, c := range r.categories {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, nil
}

func (r *memCategoryRepo) FindBySlug(_ context.Context, s string) (*model.Category, error) {
	for _, c := range r.categories {
		if c.Slug == s {
			return c, nil
		}
	}
	return nil, nil
}

func (r *memCategoryRepo) FindAll(_ context.Context, _ *dto.CategoryFilters) ([]model.Category, int, error) {
	out := make([]model.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (r *memCategoryRepo) Update(_ context.Context, _ *model.Category) error { return nil }
func (r *memCategoryRepo) Delete(_ context.Context, _ string) error          { return nil }

func (r *memCategoryRepo) CreateSub(_ context.Context, s *model.SubCategory) error {
	for _, existing := range r.subs {
		if existing.CategoryID == s.CategoryID && strings.EqualFold(existing.Name, s.Name) {
			return apperr.ErrConflict
		}
	}
	r.subs = append(r.subs, s)
	return nil
}

func (r *memCategoryRepo) FindSubByID(_ context.Context, id string) (*model.SubCategory, error) {
	for _, s := range r.subs {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (r *memCategoryRepo) FindSubByName(_ context.Context, categoryID, name string) (*model.SubCategory, error) {
	for _, s := range r.subs {
		if s.CategoryID == categoryID && strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return nil, nil
}

func (r *memCategoryRepo) FindSubsByCategory(_ context.Context, categoryID string) ([]model.SubCategory, error) {
	var out []model.SubCategory
	for _, s := range r.subs {
		if s.CategoryID == categoryID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memCategoryRepo) DeleteSub(_ context.Context, _ string) error { return nil }

type memProductRepo struct {
	products []*model.Product
	variants []*model.ProductVariant
}

func (r *memProductRepo) CreateWithVariants(ctx context.Context, p *model.Product, vs []model.ProductVariant) error {
	if err := r.Create(ctx, p); err != nil {
		return err
	}
	for i := range vs {
		r.variants = append(r.variants, &vs[i])
	}
	return nil
}

func (r *memProductRepo) Create(_ context.Context, p *model.Product) error {
	for _, existing := range r.products {
		if existing.Slug == p.Slug {
			return apperr.ErrConflict
		}
	}
	r.products = append(r.products, p)
	return nil
}

func (r *memProductRepo) FindByID(_ context.Context, id string) (*model.Product, error) {
	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *memProductRepo) FindBySlug(_ context.Context, s string) (*model.Product, error) {
	for _, p := range r.products {
		if p.Slug == s {
			return p, nil
		}
	}
	return nil, nil
}

func (r *memProductRepo) SlugExists(_ context.Context, s string) (bool, error) {
	for _, p := range r.products {
		if p.Slug == s {
			return true, nil
		}
	}
	return false, nil
}

func (r *memProductRepo) FindAll(_ context.Context, _ *productdto.ProductFilters) ([]model.Product, int, error) {
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (r *memProductRepo) Update(_ context.Context, _ *model.Product) error { return nil }
func (r *memProductRepo) Delete(_ context.Context, _ string) error         { return nil }

func (r *memProductRepo) FindVariants(_ context.Context, productID string) ([]model.ProductVariant, error) {
	var out []model.ProductVariant
	for _, v := range r.variants {
		if v.ProductID == productID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *memProductRepo) FindVariantByID(_ context.Context, id string) (*model.ProductVariant, error) {
	for _, v := range r.variants {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, nil
}

func (r *memProductRepo) CreateVariant(_ context.Context, v *model.ProductVariant) error {
	r.variants = append(r.variants, v)
	return nil
}

func (r *memProductRepo) UpdateVariant(_ context.Context, _ *model.ProductVariant) error { return nil }

func (r *memProductRepo) AdjustProductStock(_ context.Context, _ *model.StockMovement) (int, error) {
	return 0, nil
}

func (r *memProductRepo) AdjustVariantStock(_ context.Context, _ *model.StockMovement) (int, error) {
	return 0, nil
}

func (r *memProductRepo) ListMovements(_ context.Context, _ string, _, _ int) ([]model.StockMovement, int, error) {
	return nil, 0, nil
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleCSV = `name,base_price,discount_percent,category,subcategory,sku,stock
Wireless Mouse,1000,15,Electronics,Accessories,WM-001,40
Broken Row,,10,Electronics,,BR-001,5
USB Hub,750,0,Electronics,Accessories,UH-001,12
`

func TestImportCatalog(t *testing.T) {
	products := &memProductRepo{}
	categories := &memCategoryRepo{}
	pipe := newPipeline(products, categories)

	path := writeCSV(t, sampleCSV)
	res, err := pipe.ImportCatalog(context.Background(), "vendor-1", path, FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, res.Total, res.Imported+res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 3, res.Errors[0].Line)
	assert.Contains(t, res.Errors[0].Reason, "base_price")

	// Rows 1 and 3 both name Electronics; the category is created once.
	require.Len(t, categories.categories, 1)
	assert.Equal(t, "Electronics", categories.categories[0].Name)
	require.Len(t, categories.subs, 1)
	assert.Equal(t, "Accessories", categories.subs[0].Name)

	require.Len(t, products.products, 2)
	mouse := products.products[0]
	assert.Equal(t, "wireless-mouse", mouse.Slug)
	assert.Equal(t, 850.00, mouse.FinalPrice)
	assert.Equal(t, model.StatusDraft, mouse.Status)
	assert.Equal(t, "vendor-1", mouse.VendorID)
	assert.Equal(t, 0, mouse.Stock)
	require.NotNil(t, mouse.CategoryID)
	assert.Equal(t, categories.categories[0].ID, *mouse.CategoryID)

	// Rows with a SKU get a default variant carrying the stock.
	require.Len(t, products.variants, 2)
	assert.Equal(t, "WM-001", products.variants[0].SKU)
	assert.Equal(t, 40, products.variants[0].Stock)

	// The source file is removed once the run completes.
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestImportCatalogRerunSkipsExisting(t *testing.T) {
	products := &memProductRepo{}
	categories := &memCategoryRepo{}
	pipe := newPipeline(products, categories)

	res, err := pipe.ImportCatalog(context.Background(), "vendor-1", writeCSV(t, sampleCSV), FormatCSV)
	require.NoError(t, err)
	require.Equal(t, 2, res.Imported)

	res, err = pipe.ImportCatalog(context.Background(), "vendor-1", writeCSV(t, sampleCSV), FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 3, res.Skipped)

	// Nothing new was persisted on the second run.
	assert.Len(t, products.products, 2)
	assert.Len(t, categories.categories, 1)
}

func TestImportCatalogDuplicateRowInSameFile(t *testing.T) {
	products := &memProductRepo{}
	categories := &memCategoryRepo{}
	pipe := newPipeline(products, categories)

	csv := `name,base_price,category
Desk Lamp,500,Home
Desk Lamp,500,Home
`
	res, err := pipe.ImportCatalog(context.Background(), "vendor-1", writeCSV(t, csv), FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Reason, "duplicate")
	assert.Len(t, products.products, 1)
}

func TestImportCatalogBadDiscount(t *testing.T) {
	products := &memProductRepo{}
	categories := &memCategoryRepo{}
	pipe := newPipeline(products, categories)

	csv := `name,base_price,discount_percent
Overdone,100,150
`
	res, err := pipe.ImportCatalog(context.Background(), "vendor-1", writeCSV(t, csv), FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, products.products)
}
