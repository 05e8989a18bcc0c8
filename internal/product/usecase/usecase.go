package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vendora/catalog-service/internal/apperr"
	"github.com/vendora/catalog-service/internal/metrics"
	"github.com/vendora/catalog-service/internal/model"
	"github.com/vendora/catalog-service/internal/pricing"
	"github.com/vendora/catalog-service/internal/product"
	"github.com/vendora/catalog-service/internal/product/dto"
	"github.com/vendora/catalog-service/internal/slug"
	"github.com/vendora/catalog-service/pkg/cache"
	"github.com/vendora/catalog-service/pkg/search"
	"go.uber.org/zap"
)

const productsIndex = "products"

type productUseCase struct {
	repo   product.Repository
	locker cache.Locker
	es     *search.Client
	logger *zap.Logger
}

// NewProductUseCase wires the product service. locker and es may be nil;
// stock adjustments then rely on the conditional update alone and search
// falls back to the database.
func NewProductUseCase(repo product.Repository, locker cache.Locker, es *search.Client, log *zap.Logger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		locker: locker,
		es:     es,
		logger: log,
	}
}

func (uc *productUseCase) CreateProductWithVariants(ctx context.Context, vendorID string, input *dto.CreateProductInput, variants []dto.VariantInput) (*model.Product, error) {
	if input.Name == "" || input.BasePrice <= 0 {
		return nil, fmt.Errorf("name and a positive base_price are required: %w", apperr.ErrValidation)
	}
	if len(variants) == 0 {
		return nil, fmt.Errorf("at least one variant is required: %w", apperr.ErrValidation)
	}

	p, err := uc.buildProduct(ctx, vendorID, input)
	if err != nil {
		return nil, err
	}

	now := p.CreatedAt
	rows := make([]model.ProductVariant, 0, len(variants))
	for _, v := range variants {
		if v.SKU == "" {
			return nil, fmt.Errorf("variant sku is required: %w", apperr.ErrValidation)
		}
		rows = append(rows, model.ProductVariant{
			BaseModel: model.BaseModel{
				ID:        uuid.New().String(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			ProductID:       p.ID,
			SKU:             v.SKU,
			Attributes:      orEmpty(v.Attributes),
			Price:           v.Price,
			MRP:             v.MRP,
			DiscountPercent: v.DiscountPercent,
			FinalPrice:      pricing.FinalPrice(v.Price, v.DiscountPercent),
			Stock:           v.Stock,
			IsActive:        true,
		})
	}

	if err := uc.repo.CreateWithVariants(ctx, p, rows); err != nil {
		return nil, err
	}
	p.Variants = rows

	metrics.ProductCreated()
	uc.logger.Info("product created",
		zap.String("id", p.ID),
		zap.String("slug", p.Slug),
		zap.Int("variants", len(rows)),
	)

	go uc.syncToElastic(context.WithoutCancel(ctx), p)
	return p, nil
}

func (uc *productUseCase) CreateProduct(ctx context.Context, vendorID string, input *dto.CreateProductInput) (*model.Product, error) {
	if input.Name == "" || input.BasePrice <= 0 {
		return nil, fmt.Errorf("name and a positive base_price are required: %w", apperr.ErrValidation)
	}

	p, err := uc.buildProduct(ctx, vendorID, input)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	metrics.ProductCreated()
	go uc.syncToElastic(context.WithoutCancel(ctx), p)
	return p, nil
}

func (uc *productUseCase) buildProduct(ctx context.Context, vendorID string, input *dto.CreateProductInput) (*model.Product, error) {
	uniqueSlug, err := slug.Allocate(ctx, input.Name, uc.repo.SlugExists)
	if err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = model.StatusDraft
	}

	now := time.Now()
	return &model.Product{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		VendorID:         vendorID,
		Name:             input.Name,
		Slug:             uniqueSlug,
		ShortDescription: optional(input.ShortDescription),
		Description:      optional(input.Description),
		BasePrice:        input.BasePrice,
		MRP:              input.MRP,
		DiscountPercent:  input.DiscountPercent,
		FinalPrice:       pricing.FinalPrice(input.BasePrice, input.DiscountPercent),
		CategoryID:       optional(input.CategoryID),
		SubCategoryID:    optional(input.SubCategoryID),
		Stock:            input.Stock,
		Status:           status,
		IsActive:         true,
		ImageURLs:        input.ImageURLs,
		VideoURLs:        input.VideoURLs,
		Meta:             orEmpty(input.Meta),
	}, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, vendorID, productID string) (*model.Product, error) {
	p, err := uc.ownedProduct(ctx, vendorID, productID)
	if err != nil {
		return nil, err
	}
	variants, err := uc.repo.FindVariants(ctx, productID)
	if err != nil {
		return nil, err
	}
	p.Variants = variants
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	if filters.SearchQuery != "" && uc.es != nil {
		products, count, err := uc.searchElastic(ctx, filters)
		if err == nil {
			return products, count, nil
		}
		uc.logger.Error("search fell back to database", zap.Error(err))
	}
	return uc.repo.FindAll(ctx, filters)
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, vendorID string, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.ownedProduct(ctx, vendorID, input.ProductID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != p.Name {
		p.Name = *input.Name
		newSlug, err := slug.Allocate(ctx, *input.Name, uc.repo.SlugExists)
		if err != nil {
			return nil, err
		}
		p.Slug = newSlug
	}
	if input.ShortDescription != nil {
		p.ShortDescription = input.ShortDescription
	}
	if input.Description != nil {
		p.Description = input.Description
	}
	if input.CategoryID != nil {
		p.CategoryID = optional(*input.CategoryID)
	}
	if input.SubCategoryID != nil {
		p.SubCategoryID = optional(*input.SubCategoryID)
	}
	if input.Status != nil {
		p.Status = *input.Status
	}
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
	if input.Meta != nil {
		p.Meta = input.Meta
	}
	if len(input.AddImageURLs) > 0 {
		p.ImageURLs = append(p.ImageURLs, input.AddImageURLs...)
	}
	if len(input.AddVideoURLs) > 0 {
		p.VideoURLs = append(p.VideoURLs, input.AddVideoURLs...)
	}

	// final_price is derived, never authoritative input
	if input.BasePrice != nil || input.DiscountPercent != nil {
		if input.BasePrice != nil {
			p.BasePrice = *input.BasePrice
		}
		if input.DiscountPercent != nil {
			p.DiscountPercent = *input.DiscountPercent
		}
		p.FinalPrice = pricing.FinalPrice(p.BasePrice, p.DiscountPercent)
	}
	if input.MRP != nil {
		p.MRP = input.MRP
	}

	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	go uc.syncToElastic(context.WithoutCancel(ctx), p)
	return p, nil
}

// DeleteProduct soft-deletes by default; force removes the row and its
// variants.
func (uc *productUseCase) DeleteProduct(ctx context.Context, vendorID, productID string, force bool) error {
	p, err := uc.ownedProduct(ctx, vendorID, productID)
	if err != nil {
		return err
	}

	if force {
		if err := uc.repo.Delete(ctx, productID); err != nil {
			return err
		}
		if uc.es != nil {
			go func() {
				if err := uc.es.Delete(context.Background(), productsIndex, productID); err != nil {
					uc.logger.Error("failed to remove product from index", zap.Error(err))
				}
			}()
		}
		return nil
	}

	p.IsActive = false
	p.Status = model.StatusInactive
	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return err
	}
	go uc.syncToElastic(context.WithoutCancel(ctx), p)
	return nil
}

func (uc *productUseCase) UpsertVariant(ctx context.Context, vendorID, productID string, input *dto.VariantInput) (*model.ProductVariant, error) {
	if _, err := uc.ownedProduct(ctx, vendorID, productID); err != nil {
		return nil, err
	}

	now := time.Now()

	if input.ID != "" {
		v, err := uc.repo.FindVariantByID(ctx, input.ID)
		if err != nil {
			return nil, err
		}
		if v == nil || v.ProductID != productID {
			return nil, fmt.Errorf("variant %s: %w", input.ID, apperr.ErrNotFound)
		}

		priceChanged := v.Price != input.Price || v.DiscountPercent != input.DiscountPercent

		v.SKU = input.SKU
		v.Attributes = orEmpty(input.Attributes)
		v.Price = input.Price
		v.MRP = input.MRP
		v.DiscountPercent = input.DiscountPercent
		v.Stock = input.Stock
		if priceChanged {
			v.FinalPrice = pricing.FinalPrice(v.Price, v.DiscountPercent)
		}
		v.UpdatedAt = now

		if err := uc.repo.UpdateVariant(ctx, v); err != nil {
			return nil, err
		}
		return v, nil
	}

	if input.SKU == "" {
		return nil, fmt.Errorf("variant sku is required: %w", apperr.ErrValidation)
	}

	v := &model.ProductVariant{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ProductID:       productID,
		SKU:             input.SKU,
		Attributes:      orEmpty(input.Attributes),
		Price:           input.Price,
		MRP:             input.MRP,
		DiscountPercent: input.DiscountPercent,
		FinalPrice:      pricing.FinalPrice(input.Price, input.DiscountPercent),
		Stock:           input.Stock,
		IsActive:        true,
	}

	if err := uc.repo.CreateVariant(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// AdjustStock targets exactly one counter per call: the product's own
// stock for variant-less products, or one named variant. The ownership
// check runs before any stock read.
func (uc *productUseCase) AdjustStock(ctx context.Context, vendorID string, adj *dto.StockAdjustment) (int, error) {
	if adj.Direction != dto.DirectionIn && adj.Direction != dto.DirectionOut {
		return 0, fmt.Errorf("direction must be %q or %q: %w", dto.DirectionIn, dto.DirectionOut, apperr.ErrValidation)
	}
	if adj.Qty <= 0 {
		return 0, fmt.Errorf("qty must be positive: %w", apperr.ErrValidation)
	}

	if _, err := uc.ownedProduct(ctx, vendorID, adj.ProductID); err != nil {
		return 0, err
	}

	if uc.locker != nil {
		lockKey := "lock:stock:" + adj.ProductID
		if adj.VariantID != "" {
			lockKey += ":" + adj.VariantID
		}
		lockValue := uuid.New().String()

		acquired := false
		for i := 0; i < 3; i++ {
			ok, err := uc.locker.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
			if err != nil {
				uc.logger.Error("stock lock error", zap.Error(err))
				break
			}
			if ok {
				acquired = true
				break
			}
			time.Sleep(100 * time.Millisecond)
		}
		if acquired {
			defer uc.locker.ReleaseLock(ctx, lockKey, lockValue)
		}
		// The conditional update below stays correct without the lock;
		// it only narrows contention.
	}

	movement := &model.StockMovement{
		ID:        uuid.New().String(),
		ProductID: adj.ProductID,
		Direction: adj.Direction,
		Quantity:  adj.Qty,
		Note:      optional(adj.Note),
		CreatedAt: time.Now(),
	}

	var newStock int
	var err error
	if adj.VariantID != "" {
		v, ferr := uc.repo.FindVariantByID(ctx, adj.VariantID)
		if ferr != nil {
			return 0, ferr
		}
		if v == nil || v.ProductID != adj.ProductID {
			return 0, fmt.Errorf("variant %s: %w", adj.VariantID, apperr.ErrNotFound)
		}
		movement.VariantID = &adj.VariantID
		newStock, err = uc.repo.AdjustVariantStock(ctx, movement)
	} else {
		newStock, err = uc.repo.AdjustProductStock(ctx, movement)
	}

	metrics.StockAdjustment(adj.Direction, err == nil)
	if err != nil {
		return 0, err
	}

	uc.logger.Info("stock adjusted",
		zap.String("product_id", adj.ProductID),
		zap.String("direction", adj.Direction),
		zap.Int("qty", adj.Qty),
		zap.Int("stock", newStock),
	)
	return newStock, nil
}

func (uc *productUseCase) SetPricing(ctx context.Context, vendorID string, input *dto.PricingInput) (*model.Product, error) {
	p, err := uc.ownedProduct(ctx, vendorID, input.ProductID)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	if input.VariantID != "" {
		v, err := uc.repo.FindVariantByID(ctx, input.VariantID)
		if err != nil {
			return nil, err
		}
		if v == nil || v.ProductID != input.ProductID {
			return nil, fmt.Errorf("variant %s: %w", input.VariantID, apperr.ErrNotFound)
		}

		if input.BasePrice != nil {
			v.Price = *input.BasePrice
		}
		if input.DiscountPercent != nil {
			v.DiscountPercent = *input.DiscountPercent
		}
		if input.MRP != nil {
			v.MRP = input.MRP
		}
		if input.BasePrice != nil || input.DiscountPercent != nil {
			v.FinalPrice = pricing.FinalPrice(v.Price, v.DiscountPercent)
		}
		v.UpdatedAt = now

		if err := uc.repo.UpdateVariant(ctx, v); err != nil {
			return nil, err
		}
		p.Variants = []model.ProductVariant{*v}
		return p, nil
	}

	if input.BasePrice != nil {
		p.BasePrice = *input.BasePrice
	}
	if input.DiscountPercent != nil {
		p.DiscountPercent = *input.DiscountPercent
	}
	if input.MRP != nil {
		p.MRP = input.MRP
	}
	if input.BasePrice != nil || input.DiscountPercent != nil {
		p.FinalPrice = pricing.FinalPrice(p.BasePrice, p.DiscountPercent)
	}
	p.UpdatedAt = now

	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	go uc.syncToElastic(context.WithoutCancel(ctx), p)
	return p, nil
}

func (uc *productUseCase) ListMovements(ctx context.Context, vendorID, productID string, page, pageSize int) ([]model.StockMovement, int, error) {
	if _, err := uc.ownedProduct(ctx, vendorID, productID); err != nil {
		return nil, 0, err
	}
	return uc.repo.ListMovements(ctx, productID, page, pageSize)
}

// ownedProduct loads the product and verifies vendor ownership before
// any mutation or stock read happens.
func (uc *productUseCase) ownedProduct(ctx context.Context, vendorID, productID string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("product %s: %w", productID, apperr.ErrNotFound)
	}
	if p.VendorID != vendorID {
		return nil, fmt.Errorf("product %s belongs to another vendor: %w", productID, apperr.ErrForbidden)
	}
	return p, nil
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.es == nil {
		return
	}

	mapping := `{
		"mappings": {
			"properties": {
				"vendor_id": { "type": "keyword" },
				"name": { "type": "text" },
				"slug": { "type": "keyword" },
				"short_description": { "type": "text" },
				"description": { "type": "text" },
				"final_price": { "type": "double" },
				"status": { "type": "keyword" },
				"is_active": { "type": "boolean" },
				"created_at": { "type": "date" }
			}
		}
	}`
	_ = uc.es.CreateIndex(ctx, productsIndex, mapping)

	if err := uc.es.Index(ctx, productsIndex, p.ID, p); err != nil {
		uc.logger.Error("failed to index product", zap.String("id", p.ID), zap.Error(err))
	}
}

func (uc *productUseCase) searchElastic(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	must := []map[string]any{
		{
			"query_string": map[string]any{
				"query":  fmt.Sprintf("*%s*", f.SearchQuery),
				"fields": []string{"name^3", "short_description", "description"},
			},
		},
	}
	if f.VendorID != "" {
		must = append(must, map[string]any{
			"term": map[string]any{"vendor_id": f.VendorID},
		})
	}

	q := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{"must": must},
		},
	}
	if f.PageSize > 0 {
		q["from"] = (f.Page - 1) * f.PageSize
		q["size"] = f.PageSize
	}

	res, err := uc.es.Search(ctx, productsIndex, q)
	if err != nil {
		return nil, 0, err
	}

	products := make([]model.Product, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var p model.Product
		if err := json.Unmarshal(hit.Source, &p); err == nil {
			products = append(products, p)
		}
	}
	return products, res.Hits.Total.Value, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orEmpty(m model.JSONMap) model.JSONMap {
	if m == nil {
		return model.JSONMap{}
	}
	return m
}
