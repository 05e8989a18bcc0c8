package model

import (
	"time"

	"github.com/lib/pq"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusInactive  = "inactive"
)

type Product struct {
	BaseModel
	VendorID         string           `db:"vendor_id" json:"vendor_id"`
	Name             string           `db:"name" json:"name"`
	Slug             string           `db:"slug" json:"slug"`
	ShortDescription *string          `db:"short_description" json:"short_description"`
	Description      *string          `db:"description" json:"description"`
	BasePrice        float64          `db:"base_price" json:"base_price"`
	MRP              *float64         `db:"mrp" json:"mrp"`
	DiscountPercent  float64          `db:"discount_percent" json:"discount_percent"`
	FinalPrice       float64          `db:"final_price" json:"final_price"`
	CategoryID       *string          `db:"category_id" json:"category_id"`
	SubCategoryID    *string          `db:"subcategory_id" json:"subcategory_id"`
	Stock            int              `db:"stock" json:"stock"` // used only when the product has no variants
	Status           string           `db:"status" json:"status"`
	IsActive         bool             `db:"is_active" json:"is_active"`
	ImageURLs        pq.StringArray   `db:"image_urls" json:"image_urls"`
	VideoURLs        pq.StringArray   `db:"video_urls" json:"video_urls"`
	Meta             JSONMap          `db:"meta" json:"meta"`
	Variants         []ProductVariant `db:"-" json:"variants,omitempty"`
}

type ProductVariant struct {
	BaseModel
	ProductID       string   `db:"product_id" json:"product_id"`
	SKU             string   `db:"sku" json:"sku"`
	Attributes      JSONMap  `db:"attributes" json:"attributes"`
	Price           float64  `db:"price" json:"price"`
	MRP             *float64 `db:"mrp" json:"mrp"`
	DiscountPercent float64  `db:"discount_percent" json:"discount_percent"`
	FinalPrice      float64  `db:"final_price" json:"final_price"`
	Stock           int      `db:"stock" json:"stock"`
	IsActive        bool     `db:"is_active" json:"is_active"`
}

// StockMovement is the audit row written alongside every applied
// stock adjustment. VariantID is nil for product-level adjustments.
type StockMovement struct {
	ID          string    `db:"id" json:"id"`
	ProductID   string    `db:"product_id" json:"product_id"`
	VariantID   *string   `db:"variant_id" json:"variant_id"`
	Direction   string    `db:"direction" json:"direction"`
	Quantity    int       `db:"quantity" json:"quantity"`
	StockBefore int       `db:"stock_before" json:"stock_before"`
	StockAfter  int       `db:"stock_after" json:"stock_after"`
	Note        *string   `db:"note" json:"note"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
