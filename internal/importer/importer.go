// Package importer ingests catalog rows from CSV or XLSX sources.
//
// Rows are processed one at a time, each committed on its own: a bad
// row is recorded in the result and never aborts the batch. This is
// deliberately the opposite of the aggregate product-create path, which
// is all-or-nothing.
package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vendora/catalog-service/internal/apperr"
	"github.com/vendora/catalog-service/internal/category"
	"github.com/vendora/catalog-service/internal/metrics"
	"github.com/vendora/catalog-service/internal/model"
	"github.com/vendora/catalog-service/internal/product"
	"github.com/vendora/catalog-service/internal/product/dto"
	"github.com/vendora/catalog-service/internal/slug"
	"go.uber.org/zap"
)

type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type Result struct {
	Total    int        `json:"total"`
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors"`
}

// Pipeline creates products through the product use case so imported
// rows get the same slug allocation, pricing derivation and search sync
// as API-created ones; the repository is only read for dedupe lookups.
type Pipeline struct {
	products   product.UseCase
	reads      product.Repository
	categories category.Repository
	logger     *zap.Logger
}

func NewPipeline(products product.UseCase, reads product.Repository, categories category.Repository, log *zap.Logger) *Pipeline {
	return &Pipeline{
		products:   products,
		reads:      reads,
		categories: categories,
		logger:     log,
	}
}

// run tracks entities resolved earlier in the same import so two rows
// naming the same new category create it exactly once.
type run struct {
	categories    map[string]*model.Category    // lower(name) -> row
	subcategories map[string]*model.SubCategory // categoryID + "\x00" + lower(name)
	productSlugs  map[string]bool               // base slug seen this run
}

// ImportCatalog ingests the file at path and deletes it afterwards.
func (p *Pipeline) ImportCatalog(ctx context.Context, vendorID, path, format string) (*Result, error) {
	rows, err := parseFile(path, format)
	if err != nil {
		return nil, fmt.Errorf("parse import source: %w", err)
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			p.logger.Warn("failed to remove import source", zap.String("path", path), zap.Error(err))
		}
	}()

	result := &Result{Total: len(rows)}
	state := &run{
		categories:    map[string]*model.Category{},
		subcategories: map[string]*model.SubCategory{},
		productSlugs:  map[string]bool{},
	}

	for _, row := range rows {
		if err := p.processRow(ctx, vendorID, row, state); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, RowError{Line: row.Line, Reason: err.Error()})
			if errors.Is(err, errDuplicate) {
				metrics.ImportRow("duplicate")
			} else {
				metrics.ImportRow("error")
			}
			continue
		}
		result.Imported++
		metrics.ImportRow("imported")
	}

	p.logger.Info("catalog import finished",
		zap.Int("total", result.Total),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

var errDuplicate = errors.New("duplicate row")

func (p *Pipeline) processRow(ctx context.Context, vendorID string, row Row, state *run) error {
	if row.Name == "" {
		return fmt.Errorf("name is required")
	}
	basePrice, err := strconv.ParseFloat(row.BasePrice, 64)
	if err != nil || basePrice <= 0 {
		return fmt.Errorf("a positive base_price is required")
	}

	var discount float64
	if row.DiscountPercent != "" {
		discount, err = strconv.ParseFloat(row.DiscountPercent, 64)
		if err != nil || discount < 0 || discount > 100 {
			return fmt.Errorf("discount_percent must be a number in [0,100]")
		}
	}
	var mrp *float64
	if row.MRP != "" {
		v, err := strconv.ParseFloat(row.MRP, 64)
		if err != nil {
			return fmt.Errorf("mrp must be a number")
		}
		mrp = &v
	}
	var stock int
	if row.Stock != "" {
		stock, err = strconv.Atoi(row.Stock)
		if err != nil || stock < 0 {
			return fmt.Errorf("stock must be a non-negative integer")
		}
	}

	cat, err := p.resolveCategory(ctx, row.Category, state)
	if err != nil {
		return err
	}
	sub, err := p.resolveSubCategory(ctx, cat, row.SubCategory, state)
	if err != nil {
		return err
	}

	// Dedupe by case-sensitive base slug + name: an unchanged re-import
	// of the same row creates nothing.
	baseSlug := slug.Make(row.Name)
	if state.productSlugs[baseSlug] {
		return fmt.Errorf("%w: product %q already imported in this run", errDuplicate, row.Name)
	}
	existing, err := p.reads.FindBySlug(ctx, baseSlug)
	if err != nil {
		return err
	}
	if existing != nil && existing.Name == row.Name {
		return fmt.Errorf("%w: product %q already exists", errDuplicate, row.Name)
	}

	input := &dto.CreateProductInput{
		Name:             row.Name,
		ShortDescription: row.ShortDescription,
		Description:      row.Description,
		BasePrice:        basePrice,
		MRP:              mrp,
		DiscountPercent:  discount,
		Stock:            stock,
	}
	if cat != nil {
		input.CategoryID = cat.ID
	}
	if sub != nil {
		input.SubCategoryID = sub.ID
	}
	// With a default variant the stock lives on the variant row; the
	// product-level counter stays for variant-less imports only.
	if row.SKU != "" {
		input.Stock = 0
	}

	prod, err := p.products.CreateProduct(ctx, vendorID, input)
	if err != nil {
		return err
	}
	state.productSlugs[baseSlug] = true

	// Rows carrying a SKU get a default variant mirroring the product's
	// pricing; the stock then lives on the variant.
	if row.SKU != "" {
		if _, err := p.products.UpsertVariant(ctx, vendorID, prod.ID, &dto.VariantInput{
			SKU:             row.SKU,
			Price:           basePrice,
			MRP:             mrp,
			DiscountPercent: discount,
			Stock:           stock,
		}); err != nil {
			return err
		}
	}

	return nil
}

// resolveCategory looks the category up case-insensitively by name and
// creates it on first sight. Under a concurrent create the unique
// constraint is the final arbiter: a Conflict triggers one re-read.
func (p *Pipeline) resolveCategory(ctx context.Context, name string, state *run) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	key := strings.ToLower(name)
	if cat, ok := state.categories[key]; ok {
		return cat, nil
	}

	cat, err := p.categories.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		now := time.Now()
		cat = &model.Category{
			BaseModel: model.BaseModel{
				ID:        uuid.New().String(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			Name:     name,
			Slug:     slug.Make(name),
			IsActive: true,
		}
		if err := p.categories.Create(ctx, cat); err != nil {
			if !errors.Is(err, apperr.ErrConflict) {
				return nil, err
			}
			cat, err = p.categories.FindByName(ctx, name)
			if err != nil {
				return nil, err
			}
			if cat == nil {
				return nil, fmt.Errorf("category %q: %w", name, apperr.ErrConflict)
			}
		}
	}

	state.categories[key] = cat
	return cat, nil
}

func (p *Pipeline) resolveSubCategory(ctx context.Context, parent *model.Category, name string, state *run) (*model.SubCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" || parent == nil {
		return nil, nil
	}

	key := parent.ID + "\x00" + strings.ToLower(name)
	if sub, ok := state.subcategories[key]; ok {
		return sub, nil
	}

	sub, err := p.categories.FindSubByName(ctx, parent.ID, name)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		now := time.Now()
		sub = &model.SubCategory{
			BaseModel: model.BaseModel{
				ID:        uuid.New().String(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			CategoryID: parent.ID,
			Name:       name,
			Slug:       slug.Make(parent.Name) + "-" + slug.Make(name),
			IsActive:   true,
		}
		if err := p.categories.CreateSub(ctx, sub); err != nil {
			if !errors.Is(err, apperr.ErrConflict) {
				return nil, err
			}
			sub, err = p.categories.FindSubByName(ctx, parent.ID, name)
			if err != nil {
				return nil, err
			}
		}
	}

	state.subcategories[key] = sub
	return sub, nil
}
