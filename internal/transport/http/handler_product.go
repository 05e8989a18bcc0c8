package http

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/vendora/catalog-service/internal/model"
	"github.com/vendora/catalog-service/internal/product"
	"github.com/vendora/catalog-service/internal/product/dto"
	"go.uber.org/zap"
)

type ProductHandler struct {
	uc     product.UseCase
	logger *zap.Logger
}

func NewProductHandler(uc product.UseCase, log *zap.Logger) *ProductHandler {
	return &ProductHandler{uc: uc, logger: log}
}

type variantRequest struct {
	ID              string        `json:"id"`
	SKU             string        `json:"sku" validate:"required"`
	Attributes      model.JSONMap `json:"attributes"`
	Price           float64       `json:"price" validate:"required,gt=0"`
	MRP             *float64      `json:"mrp" validate:"omitempty,gt=0"`
	DiscountPercent float64       `json:"discount_percent" validate:"gte=0,lte=100"`
	Stock           int           `json:"stock" validate:"gte=0"`
}

type createProductRequest struct {
	Name             string           `json:"name" validate:"required"`
	ShortDescription string           `json:"short_description"`
	Description      string           `json:"description"`
	BasePrice        float64          `json:"base_price" validate:"required,gt=0"`
	MRP              *float64         `json:"mrp" validate:"omitempty,gt=0"`
	DiscountPercent  float64          `json:"discount_percent" validate:"gte=0,lte=100"`
	CategoryID       string           `json:"category_id"`
	SubCategoryID    string           `json:"subcategory_id"`
	Status           string           `json:"status" validate:"omitempty,oneof=draft published"`
	ImageURLs        []string         `json:"image_urls"`
	VideoURLs        []string         `json:"video_urls"`
	Meta             model.JSONMap    `json:"meta"`
	Variants         []variantRequest `json:"variants" validate:"required,min=1,dive"`
}

func (h *ProductHandler) Create(c fiber.Ctx) error {
	var req createProductRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "message": "invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return respondError(c, err)
	}

	input := &dto.CreateProductInput{
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		BasePrice:        req.BasePrice,
		MRP:              req.MRP,
		DiscountPercent:  req.DiscountPercent,
		CategoryID:       req.CategoryID,
		SubCategoryID:    req.SubCategoryID,
		Status:           req.Status,
		ImageURLs:        req.ImageURLs,
		VideoURLs:        req.VideoURLs,
		Meta:             req.Meta,
	}
	variants := make([]dto.VariantInput, 0, len(req.Variants))
	for _, v := range req.Variants {
		variants = append(variants, dto.VariantInput{
			SKU:             v.SKU,
			Attributes:      v.Attributes,
			Price:           v.Price,
			MRP:             v.MRP,
			DiscountPercent: v.DiscountPercent,
			Stock:           v.Stock,
		})
	}

	created, err := h.uc.CreateProductWithVariants(c.Context(), vendorID(c), input, variants)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, created)
}

func (h *ProductHandler) Get(c fiber.Ctx) error {
	p, err := h.uc.GetProduct(c.Context(), vendorID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, p)
}

func (h *ProductHandler) List(c fiber.Ctx) error {
	filters := &dto.ProductFilters{
		VendorID:    vendorID(c),
		CategoryID:  c.Query("category_id", ""),
		Status:      c.Query("status", ""),
		SearchQuery: c.Query("q", ""),
		SortBy:      c.Query("sort_by", "created_at"),
		SortOrder:   c.Query("sort_order", "desc"),
		Page:        queryInt(c, "page", 1),
		PageSize:    queryInt(c, "page_size", 20),
	}
	if raw := c.Query("is_active", ""); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filters.IsActive = &active
		}
	}

	items, total, err := h.uc.ListProducts(c.Context(), filters)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, items, total, filters.Page, filters.PageSize)
}

type updateProductRequest struct {
	Name             *string       `json:"name"`
	ShortDescription *string       `json:"short_description"`
	Description      *string       `json:"description"`
	BasePrice        *float64      `json:"base_price" validate:"omitempty,gt=0"`
	MRP              *float64      `json:"mrp" validate:"omitempty,gt=0"`
	DiscountPercent  *float64      `json:"discount_percent" validate:"omitempty,gte=0,lte=100"`
	CategoryID       *string       `json:"category_id"`
	SubCategoryID    *string       `json:"subcategory_id"`
	Status           *string       `json:"status" validate:"omitempty,oneof=draft published inactive"`
	IsActive         *bool         `json:"is_active"`
	Meta             model.JSONMap `json:"meta"`
	AddImageURLs     []string      `json:"add_image_urls"`
	AddVideoURLs     []string      `json:"add_video_urls"`
}

func (h *ProductHandler) Update(c fiber.Ctx) error {
	var req updateProductRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "message": "invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return respondError(c, err)
	}

	updated, err := h.uc.UpdateProduct(c.Context(), vendorID(c), &dto.UpdateProductInput{
		ProductID:        c.Params("id"),
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		BasePrice:        req.BasePrice,
		MRP:              req.MRP,
		DiscountPercent:  req.DiscountPercent,
		CategoryID:       req.CategoryID,
		SubCategoryID:    req.SubCategoryID,
		Status:           req.Status,
		IsActive:         req.IsActive,
		Meta:             req.Meta,
		AddImageURLs:     req.AddImageURLs,
		AddVideoURLs:     req.AddVideoURLs,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, updated)
}

// Delete soft-deactivates by default; ?force=true removes the rows.
func (h *ProductHandler) Delete(c fiber.Ctx) error {
	force, _ := strconv.ParseBool(c.Query("force", "false"))
	if err := h.uc.DeleteProduct(c.Context(), vendorID(c), c.Params("id"), force); err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"deleted": true, "force": force})
}

func (h *ProductHandler) UpsertVariant(c fiber.Ctx) error {
	var req variantRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "message": "invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return respondError(c, err)
	}

	v, err := h.uc.UpsertVariant(c.Context(), vendorID(c), c.Params("id"), &dto.VariantInput{
		ID:              req.ID,
		SKU:             req.SKU,
		Attributes:      req.Attributes,
		Price:           req.Price,
		MRP:             req.MRP,
		DiscountPercent: req.DiscountPercent,
		Stock:           req.Stock,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, v)
}

type stockRequest struct {
	VariantID string `json:"variant_id"`
	Direction string `json:"direction" validate:"required,oneof=in out"`
	Qty       int    `json:"qty" validate:"required,gt=0"`
	Note      string `json:"note"`
}

func (h *ProductHandler) AdjustStock(c fiber.Ctx) error {
	var req stockRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "message": "invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return respondError(c, err)
	}

	newStock, err := h.uc.AdjustStock(c.Context(), vendorID(c), &dto.StockAdjustment{
		ProductID: c.Params("id"),
		VariantID: req.VariantID,
		Direction: req.Direction,
		Qty:       req.Qty,
		Note:      req.Note,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"stock": newStock})
}

type pricingRequest struct {
	VariantID       string   `json:"variant_id"`
	BasePrice       *float64 `json:"base_price" validate:"omitempty,gt=0"`
	MRP             *float64 `json:"mrp" validate:"omitempty,gt=0"`
	DiscountPercent *float64 `json:"discount_percent" validate:"omitempty,gte=0,lte=100"`
}

func (h *ProductHandler) SetPricing(c fiber.Ctx) error {
	var req pricingRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "message": "invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return respondError(c, err)
	}

	p, err := h.uc.SetPricing(c.Context(), vendorID(c), &dto.PricingInput{
		ProductID:       c.Params("id"),
		VariantID:       req.VariantID,
		BasePrice:       req.BasePrice,
		MRP:             req.MRP,
		DiscountPercent: req.DiscountPercent,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, p)
}

func (h *ProductHandler) ListMovements(c fiber.Ctx) error {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	movements, total, err := h.uc.ListMovements(c.Context(), vendorID(c), c.Params("id"), page, pageSize)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, movements, total, page, pageSize)
}

func queryInt(c fiber.Ctx, key string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(key, "")); err == nil && v > 0 {
		return v
	}
	return fallback
}
