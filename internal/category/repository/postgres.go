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
	"github.com/vendora/catalog-service/internal/category/dto"
	"github.com/vendora/catalog-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// isUniqueViolation unwraps postgres error 23505.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// escapeLike neutralizes LIKE metacharacters so a stored name such as
// "E%" cannot act as a wildcard in the case-insensitive lookups below.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *PGRepository) Create(ctx context.Context, c *model.Category) error {
	query := `
        INSERT INTO categories (
            id, name, slug, description, meta_title, meta_description, meta_keywords,
            image_url, sort_order, is_active, created_at, updated_at
        )
        VALUES (
            :id, :name, :slug, :description, :meta_title, :meta_description, :meta_keywords,
            :image_url, :sort_order, :is_active, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	if isUniqueViolation(err) {
		return fmt.Errorf("category %q: %w", c.Name, apperr.ErrConflict)
	}
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	var category model.Category
	query := `SELECT * FROM categories WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &category, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *PGRepository) FindByName(ctx context.Context, name string) (*model.Category, error) {
	var category model.Category
	query := `SELECT * FROM categories WHERE name ILIKE $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &category, query, escapeLike(name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *PGRepository) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var category model.Category
	query := `SELECT * FROM categories WHERE slug = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &category, query, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	var categories []model.Category
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM categories" + whereClause
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

	query := "SELECT * FROM categories" + whereClause + " ORDER BY sort_order ASC, name ASC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &categories, args)
	if err != nil {
		return nil, 0, err
	}

	return categories, count, nil
}

func (r *PGRepository) Update(ctx context.Context, c *model.Category) error {
	query := `
        UPDATE categories
        SET name = :name,
            slug = :slug,
            description = :description,
            meta_title = :meta_title,
            meta_description = :meta_description,
            meta_keywords = :meta_keywords,
            image_url = :image_url,
            sort_order = :sort_order,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	if isUniqueViolation(err) {
		return fmt.Errorf("category %q: %w", c.Name, apperr.ErrConflict)
	}
	return err
}

// Delete removes the category; subcategories cascade via FK.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id)
	return err
}

func (r *PGRepository) CreateSub(ctx context.Context, s *model.SubCategory) error {
	query := `
        INSERT INTO sub_categories (id, category_id, name, slug, description, image_url, is_active, created_at, updated_at)
        VALUES (:id, :category_id, :name, :slug, :description, :image_url, :is_active, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, s)
	if isUniqueViolation(err) {
		return fmt.Errorf("subcategory %q: %w", s.Name, apperr.ErrConflict)
	}
	return err
}

func (r *PGRepository) FindSubByID(ctx context.Context, id string) (*model.SubCategory, error) {
	var sub model.SubCategory
	query := `SELECT * FROM sub_categories WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &sub, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// FindSubByName is scoped to a parent category: the same subcategory
// name under different categories identifies distinct entities.
func (r *PGRepository) FindSubByName(ctx context.Context, categoryID, name string) (*model.SubCategory, error) {
	var sub model.SubCategory
	query := `SELECT * FROM sub_categories WHERE category_id = $1 AND name ILIKE $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &sub, query, categoryID, escapeLike(name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *PGRepository) FindSubsByCategory(ctx context.Context, categoryID string) ([]model.SubCategory, error) {
	var subs []model.SubCategory
	query := `SELECT * FROM sub_categories WHERE category_id = $1 ORDER BY name ASC`
	err := r.DB.SelectContext(ctx, &subs, query, categoryID)
	return subs, err
}

func (r *PGRepository) DeleteSub(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sub_categories WHERE id = $1", id)
	return err
}
