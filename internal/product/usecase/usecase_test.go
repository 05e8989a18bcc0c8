package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendora/catalog-service/internal/apperr"
	"github.com/vendora/catalog-service/internal/model"
	"github.com/vendora/catalog-service/internal/product/dto"
	"go.uber.org/zap"
)

type fakeRepo struct {
	products  map[string]*model.Product
	variants  map[string]*model.ProductVariant
	movements []*model.StockMovement
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		products: map[string]*model.Product{},
		variants: map[string]*model.ProductVariant{},
	}
}

func (r *fakeRepo) CreateWithVariants(ctx context.Context, p *model.Product, vs []model.ProductVariant) error {
	if err := r.Create(ctx, p); err != nil {
		return err
	}
	for i := range vs {
		v := vs[i]
		r.variants[v.ID] = &v
	}
	return nil
}

func (r *fakeRepo) Create(_ context.Context, p *model.Product) error {
	for _, existing := range r.products {
		if existing.Slug == p.Slug {
			return apperr.ErrConflict
		}
	}
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (r *fakeRepo) FindBySlug(_ context.Context, s string) (*model.Product, error) {
	for _, p := range r.products {
		if p.Slug == s {
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) SlugExists(_ context.Context, s string) (bool, error) {
	for _, p := range r.products {
		if p.Slug == s {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) FindAll(_ context.Context, _ *dto.ProductFilters) ([]model.Product, int, error) {
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (r *fakeRepo) Update(_ context.Context, p *model.Product) error {
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	delete(r.products, id)
	for vid, v := range r.variants {
		if v.ProductID == id {
			delete(r.variants, vid)
		}
	}
	return nil
}

func (r *fakeRepo) FindVariants(_ context.Context, productID string) ([]model.ProductVariant, error) {
	var out []model.ProductVariant
	for _, v := range r.variants {
		if v.ProductID == productID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeRepo) FindVariantByID(_ context.Context, id string) (*model.ProductVariant, error) {
	v, ok := r.variants[id]
	if !ok {
		return nil, nil
	}
	clone := *v
	return &clone, nil
}

func (r *fakeRepo) CreateVariant(_ context.Context, v *model.ProductVariant) error {
	clone := *v
	r.variants[v.ID] = &clone
	return nil
}

func (r *fakeRepo) UpdateVariant(_ context.Context, v *model.ProductVariant) error {
	clone := *v
	r.variants[v.ID] = &clone
	return nil
}

func (r *fakeRepo) AdjustProductStock(_ context.Context, m *model.StockMovement) (int, error) {
	p, ok := r.products[m.ProductID]
	if !ok {
		return 0, apperr.ErrNotFound
	}
	delta := m.Quantity
	if m.Direction == dto.DirectionOut {
		delta = -delta
	}
	if p.Stock+delta < 0 {
		return 0, apperr.ErrInsufficientStock
	}
	m.StockBefore = p.Stock
	p.Stock += delta
	m.StockAfter = p.Stock
	r.movements = append(r.movements, m)
	return p.Stock, nil
}

func (r *fakeRepo) AdjustVariantStock(_ context.Context, m *model.StockMovement) (int, error) {
	v, ok := r.variants[*m.VariantID]
	if !ok {
		return 0, apperr.ErrNotFound
	}
	delta := m.Quantity
	if m.Direction == dto.DirectionOut {
		delta = -delta
	}
	if v.Stock+delta < 0 {
		return 0, apperr.ErrInsufficientStock
	}
	m.StockBefore = v.Stock
	v.Stock += delta
	m.StockAfter = v.Stock
	r.movements = append(r.movements, m)
	return v.Stock, nil
}

func (r *fakeRepo) ListMovements(_ context.Context, productID string, _, _ int) ([]model.StockMovement, int, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, *m)
		}
	}
	return out, len(out), nil
}

func seedProduct(repo *fakeRepo, vendorID string, stock int) *model.Product {
	p := &model.Product{
		BaseModel: model.BaseModel{ID: "p1"},
		VendorID:  vendorID,
		Name:      "Wireless Mouse",
		Slug:      "wireless-mouse",
		BasePrice: 1000,
		Stock:     stock,
		Status:    model.StatusPublished,
		IsActive:  true,
	}
	repo.products[p.ID] = p
	return p
}

func TestCreateProductWithVariants(t *testing.T) {
	repo := newFakeRepo()
	uc := NewProductUseCase(repo, nil, nil, zap.NewNop())

	input := &dto.CreateProductInput{
		Name:            "Wireless Mouse",
		BasePrice:       1000,
		DiscountPercent: 15,
	}
	created, err := uc.CreateProductWithVariants(context.Background(), "vendor-1", input, []dto.VariantInput{
		{SKU: "WM-BLK", Price: 1000, DiscountPercent: 15, Stock: 10},
		{SKU: "WM-WHT", Price: 1100, DiscountPercent: 15, Stock: 5},
	})
	require.NoError(t, err)

	assert.Equal(t, "wireless-mouse", created.Slug)
	assert.Equal(t, 850.00, created.FinalPrice)
	assert.Equal(t, model.StatusDraft, created.Status)
	assert.Len(t, created.Variants, 2)
	assert.Equal(t, 935.00, created.Variants[1].FinalPrice)
	assert.Len(t, repo.products, 1)
	assert.Len(t, repo.variants, 2)
}

func TestCreateProductWithVariantsRequiresVariant(t *testing.T) {
	repo := newFakeRepo()
	uc := NewProductUseCase(repo, nil, nil, zap.NewNop())

	_, err := uc.CreateProductWithVariants(context.Background(), "vendor-1", &dto.CreateProductInput{
		Name:      "Wireless Mouse",
		BasePrice: 1000,
	}, nil)

	require.ErrorIs(t, err, apperr.ErrValidation)
	// Nothing persisted when the aggregate is rejected.
	assert.Empty(t, repo.products)
	assert.Empty(t, repo.variants)
}

func TestCreateProductSlugCollision(t *testing.T) {
	repo := newFakeRepo()
	seedProduct(repo, "vendor-1", 0)
	uc := NewProductUseCase(repo, nil, nil, zap.NewNop())

	created, err := uc.CreateProduct(context.Background(), "vendor-2", &dto.CreateProductInput{
		Name:      "Wireless Mouse",
		BasePrice: 500,
	})
	require.NoError(t, err)

	assert.NotEqual(t, "wireless-mouse", created.Slug)
	assert.Contains(t, created.Slug, "wireless-mouse-")
}

func TestAdjustStock(t *testing.T) {
	repo := newFakeRepo()
	seedProduct(repo, "vendor-1", 10)
	uc := NewProductUseCase(repo, nil, nil, zap.NewNop())

	newStock, err := uc.AdjustStock(context.Background(), "vendor-1", &dto.StockAdjustment{
		ProductID: "p1",
		Direction: dto.DirectionOut,
		Qty:       4,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, newStock)

	newStock, err = uc.AdjustStock(context.Background(), "vendor-1", &dto.StockAdjustment{
		ProductID: "p1",
		Direction: dto.DirectionIn,
		Qty:       10,
	})
	require.NoError(t, err)
	assert.Equal(t, 16, newStock)

	require.Len(t, repo.movements, 2)
	assert.Equal(t, 10, repo.movements[0].StockBefore)
	assert.Equal(t, 6, repo.movements[0].StockAfter)
}

func TestAdjustStockInsufficient(t *testing.T) {
	repo := newFakeRepo()
	seedProduct(repo, "vendor-1", 3)
	uc := NewProductUseCase(repo, nil, nil, zap.NewNop())

	_, err := uc.AdjustStock(context.Background(), "vendor-1", &dto.StockAdjustment{
		ProductID: "p1",
		Direction: dto.DirectionOut,
		Qty:       5,
	})

	require.ErrorIs(t, err, apperr.ErrInsufficientStock)
	// The failed adjustment leaves the counter and the audit log alone.
	assert.Equal(t, 3, repo.products["p1"].Stock)
	assert.Empty(t, repo.movements)
}

func TestAdjustStockOwnership(t *testing.T) {
	repo := newFakeRepo()
	seedProduct(repo, "vendor-1", 10)
	uc := NewProductUseCase(repo, nil, nil, zap.NewNop())

	_, err := uc.AdjustStock(context.Background(), "vendor-2", &dto.StockAdjustment{
		ProductID: "p1",
		Direction: dto.DirectionOut,
		Qty:       1,
	})
	require.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, 10, repo.products["p1"].Stock)

	_, err = uc.AdjustStock(context.Background(), "vendor-1", &dto.StockAdjustment{
		ProductID: "missing",
		Direction: dto.DirectionOut,
		Qty:       1,
	})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAdjustStockValidation(t *testing.T) {
	repo := newFakeRepo()
	seedProduct(repo, "vendor-1", 10)
	uc := NewProductUseCase(repo, nil, nil, zap.NewNop())

	_, err := uc.AdjustStock(context.Background(), "vendor-1", &dto.StockAdjustment{
		ProductID: "p1",
		Direction: "sideways",
		Qty:       1,
	})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = uc.AdjustStock(context.Background(), "vendor-1", &dto.StockAdjustment{
		ProductID: "p1",
		Direction: dto.DirectionIn,
		Qty:       0,
	})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAdjustStockVariant(t *testing.T) {
	repo := newFakeRepo()
	seedProduct(repo, "vendor-1", 0)
	repo.variants["v1"] = &model.ProductVariant{
		BaseModel: model.BaseModel{ID: "v1"},
		ProductID: "p1",
		SKU:       "WM-BLK",
		Stock:     8,
	}
	uc := NewProductUseCase(repo, nil, nil, zap.NewNop())

	newStock, err := uc.AdjustStock(context.Background(), "vendor-1", &dto.StockAdjustment{
		ProductID: "p1",
		VariantID: "v1",
		Direction: dto.DirectionOut,
		Qty:       3,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, newStock)

	// A variant hanging off another product is not reachable this way.
	repo.variants["v2"] = &model.ProductVariant{
		BaseModel: model.BaseModel{ID: "v2"},
		ProductID: "other",
		Stock:     100,
	}
	_, err = uc.AdjustStock(context.Background(), "vendor-1", &dto.StockAdjustment{
		ProductID: "p1",
		VariantID: "v2",
		Direction: dto.DirectionOut,
		Qty:       1,
	})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpsertVariant(t *testing.T) {
	repo := newFakeRepo()
	seedProduct(repo, "vendor-1", 0)
	uc := NewProductUseCase(repo, nil, nil, zap.NewNop())

	created, err := uc.UpsertVariant(context.Background(), "vendor-1", "p1", &dto.VariantInput{
		SKU:             "WM-BLK",
		Price:           1000,
		DiscountPercent: 10,
		Stock:           5,
	})
	require.NoError(t, err)
	assert.Equal(t, 900.00, created.FinalPrice)

	updated, err := uc.UpsertVariant(context.Background(), "vendor-1", "p1", &dto.VariantInput{
		ID:              created.ID,
		SKU:             "WM-BLK",
		Price:           800,
		DiscountPercent: 10,
		Stock:           5,
	})
	require.NoError(t, err)
	assert.Equal(t, 720.00, updated.FinalPrice)

	_, err = uc.UpsertVariant(context.Background(), "vendor-1", "p1", &dto.VariantInput{
		ID:  "missing",
		SKU: "X",
	})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = uc.UpsertVariant(context.Background(), "vendor-2", "p1", &dto.VariantInput{SKU: "Y", Price: 1})
	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestSetPricingRecomputesFinalPrice(t *testing.T) {
	repo := newFakeRepo()
	seedProduct(repo, "vendor-1", 0)
	uc := NewProductUseCase(repo, nil, nil, zap.NewNop())

	discount := 25.0
	p, err := uc.SetPricing(context.Background(), "vendor-1", &dto.PricingInput{
		ProductID:       "p1",
		DiscountPercent: &discount,
	})
	require.NoError(t, err)
	assert.Equal(t, 750.00, p.FinalPrice)

	price := 1999.99
	p, err = uc.SetPricing(context.Background(), "vendor-1", &dto.PricingInput{
		ProductID: "p1",
		BasePrice: &price,
	})
	require.NoError(t, err)
	// Discount survives from the previous call.
	assert.Equal(t, 1499.99, p.FinalPrice)
}

func TestDeleteProduct(t *testing.T) {
	repo := newFakeRepo()
	seedProduct(repo, "vendor-1", 0)
	uc := NewProductUseCase(repo, nil, nil, zap.NewNop())

	require.NoError(t, uc.DeleteProduct(context.Background(), "vendor-1", "p1", false))
	soft := repo.products["p1"]
	require.NotNil(t, soft)
	assert.False(t, soft.IsActive)
	assert.Equal(t, model.StatusInactive, soft.Status)

	require.NoError(t, uc.DeleteProduct(context.Background(), "vendor-1", "p1", true))
	assert.Empty(t, repo.products)
}

func TestUpdateProductRenameReallocatesSlug(t *testing.T) {
	repo := newFakeRepo()
	seedProduct(repo, "vendor-1", 0)
	uc := NewProductUseCase(repo, nil, nil, zap.NewNop())

	name := "Ergonomic Mouse"
	updated, err := uc.UpdateProduct(context.Background(), "vendor-1", &dto.UpdateProductInput{
		ProductID: "p1",
		Name:      &name,
	})
	require.NoError(t, err)
	assert.Equal(t, "ergonomic-mouse", updated.Slug)
	assert.Equal(t, "Ergonomic Mouse", repo.products["p1"].Name)
}
