package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/vendora/catalog-service/internal/apperr"
	"github.com/vendora/catalog-service/internal/model"
	"github.com/vendora/catalog-service/internal/product/dto"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const insertProductQuery = `
    INSERT INTO products (
        id, vendor_id, name, slug, short_description, description,
        base_price, mrp, discount_percent, final_price,
        category_id, subcategory_id, stock, status, is_active,
        image_urls, video_urls, meta, created_at, updated_at
    )
    VALUES (
        :id, :vendor_id, :name, :slug, :short_description, :description,
        :base_price, :mrp, :discount_percent, :final_price,
        :category_id, :subcategory_id, :stock, :status, :is_active,
        :image_urls, :video_urls, :meta, :created_at, :updated_at
    )
`

const insertVariantQuery = `
    INSERT INTO product_variants (
        id, product_id, sku, attributes, price, mrp, discount_percent,
        final_price, stock, is_active, created_at, updated_at
    )
    VALUES (
        :id, :product_id, :sku, :attributes, :price, :mrp, :discount_percent,
        :final_price, :stock, :is_active, :created_at, :updated_at
    )
`

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *PGRepository) CreateWithVariants(ctx context.Context, p *model.Product, variants []model.ProductVariant) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, insertProductQuery, p); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("product slug %q: %w", p.Slug, apperr.ErrConflict)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	for i := range variants {
		if _, err := tx.NamedExecContext(ctx, insertVariantQuery, &variants[i]); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("variant sku %q: %w", variants[i].SKU, apperr.ErrConflict)
			}
			return fmt.Errorf("insert variant: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	_, err := r.DB.NamedExecContext(ctx, insertProductQuery, p)
	if isUniqueViolation(err) {
		return fmt.Errorf("product slug %q: %w", p.Slug, apperr.ErrConflict)
	}
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	query := `SELECT * FROM products WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *PGRepository) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	var product model.Product
	query := `SELECT * FROM products WHERE slug = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &product, query, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *PGRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int
	err := r.DB.GetContext(ctx, &count, `SELECT count(*) FROM products WHERE slug = $1`, slug)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	var products []model.Product
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.VendorID != "" {
		conditions = append(conditions, "vendor_id = :vendor_id")
		args["vendor_id"] = f.VendorID
	}
	if f.CategoryID != "" {
		conditions = append(conditions, "category_id = :category_id")
		args["category_id"] = f.CategoryID
	}
	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(name ILIKE :search OR short_description ILIKE :search OR description ILIKE :search)")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM products" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return nil, 0, err
		}
	}

	orderBy := "updated_at DESC"
	if f.SortBy != "" {
		// whitelist sort fields
		switch f.SortBy {
		case "name":
			orderBy = "name"
		case "price":
			orderBy = "final_price"
		case "created_at":
			orderBy = "created_at"
		}
		if strings.ToLower(f.SortOrder) == "asc" {
			orderBy += " ASC"
		} else {
			orderBy += " DESC"
		}
	}

	query := fmt.Sprintf("SELECT * FROM products%s ORDER BY %s", whereClause, orderBy)
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &products, args); err != nil {
		return nil, 0, err
	}

	return products, count, nil
}

func (r *PGRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products
        SET name = :name,
            slug = :slug,
            short_description = :short_description,
            description = :description,
            base_price = :base_price,
            mrp = :mrp,
            discount_percent = :discount_percent,
            final_price = :final_price,
            category_id = :category_id,
            subcategory_id = :subcategory_id,
            status = :status,
            is_active = :is_active,
            image_urls = :image_urls,
            video_urls = :video_urls,
            meta = :meta,
            updated_at = :updated_at
        WHERE id = :id AND vendor_id = :vendor_id
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	if isUniqueViolation(err) {
		return fmt.Errorf("product slug %q: %w", p.Slug, apperr.ErrConflict)
	}
	return err
}

// Delete removes the product row; variants cascade via FK.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	return err
}

func (r *PGRepository) FindVariants(ctx context.Context, productID string) ([]model.ProductVariant, error) {
	var variants []model.ProductVariant
	query := `SELECT * FROM product_variants WHERE product_id = $1 ORDER BY created_at ASC`
	err := r.DB.SelectContext(ctx, &variants, query, productID)
	return variants, err
}

func (r *PGRepository) FindVariantByID(ctx context.Context, id string) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	query := `SELECT * FROM product_variants WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &variant, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

func (r *PGRepository) CreateVariant(ctx context.Context, v *model.ProductVariant) error {
	_, err := r.DB.NamedExecContext(ctx, insertVariantQuery, v)
	if isUniqueViolation(err) {
		return fmt.Errorf("variant sku %q: %w", v.SKU, apperr.ErrConflict)
	}
	return err
}

func (r *PGRepository) UpdateVariant(ctx context.Context, v *model.ProductVariant) error {
	query := `
        UPDATE product_variants
        SET sku = :sku,
            attributes = :attributes,
            price = :price,
            mrp = :mrp,
            discount_percent = :discount_percent,
            final_price = :final_price,
            stock = :stock,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id AND product_id = :product_id
    `
	_, err := r.DB.NamedExecContext(ctx, query, v)
	if isUniqueViolation(err) {
		return fmt.Errorf("variant sku %q: %w", v.SKU, apperr.ErrConflict)
	}
	return err
}

// AdjustProductStock applies the movement's delta to the product's own
// stock counter. The UPDATE carries the non-negativity predicate, so a
// would-be-negative adjustment matches zero rows and nothing commits.
func (r *PGRepository) AdjustProductStock(ctx context.Context, m *model.StockMovement) (int, error) {
	return r.adjustStock(ctx, m, `
        UPDATE products
        SET stock = stock + $1, updated_at = NOW()
        WHERE id = $2 AND stock + $1 >= 0
        RETURNING stock
    `, m.ProductID)
}

func (r *PGRepository) AdjustVariantStock(ctx context.Context, m *model.StockMovement) (int, error) {
	if m.VariantID == nil {
		return 0, fmt.Errorf("variant id is required: %w", apperr.ErrValidation)
	}
	return r.adjustStock(ctx, m, `
        UPDATE product_variants
        SET stock = stock + $1, updated_at = NOW()
        WHERE id = $2 AND stock + $1 >= 0
        RETURNING stock
    `, *m.VariantID)
}

func (r *PGRepository) adjustStock(ctx context.Context, m *model.StockMovement, query, targetID string) (int, error) {
	delta := m.Quantity
	if m.Direction == "out" {
		delta = -delta
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var newStock int
	err = tx.GetContext(ctx, &newStock, query, delta, targetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Existence and ownership were checked by the caller inside
			// this request; zero rows here means the predicate failed.
			return 0, fmt.Errorf("stock adjustment of %d rejected: %w", delta, apperr.ErrInsufficientStock)
		}
		return 0, err
	}

	m.StockBefore = newStock - delta
	m.StockAfter = newStock

	insertMovement := `
        INSERT INTO stock_movements (
            id, product_id, variant_id, direction, quantity,
            stock_before, stock_after, note, created_at
        )
        VALUES (
            :id, :product_id, :variant_id, :direction, :quantity,
            :stock_before, :stock_after, :note, :created_at
        )
    `
	if _, err := tx.NamedExecContext(ctx, insertMovement, m); err != nil {
		return 0, fmt.Errorf("log movement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return newStock, nil
}

func (r *PGRepository) ListMovements(ctx context.Context, productID string, page, pageSize int) ([]model.StockMovement, int, error) {
	var movements []model.StockMovement
	var count int

	if err := r.DB.GetContext(ctx, &count, `SELECT count(*) FROM stock_movements WHERE product_id = $1`, productID); err != nil {
		return nil, 0, err
	}

	query := `SELECT * FROM stock_movements WHERE product_id = $1 ORDER BY created_at DESC`
	if pageSize > 0 {
		offset := (page - 1) * pageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", pageSize, offset)
	}

	if err := r.DB.SelectContext(ctx, &movements, query, productID); err != nil {
		return nil, 0, err
	}
	return movements, count, nil
}
