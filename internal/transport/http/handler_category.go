package http

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/vendora/catalog-service/internal/category"
	"github.com/vendora/catalog-service/internal/category/dto"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	uc     category.UseCase
	logger *zap.Logger
}

func NewCategoryHandler(uc category.UseCase, log *zap.Logger) *CategoryHandler {
	return &CategoryHandler{uc: uc, logger: log}
}

type createCategoryRequest struct {
	Name            string `json:"name" validate:"required"`
	Description     string `json:"description"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	MetaKeywords    string `json:"meta_keywords"`
	ImageURL        string `json:"image_url"`
	SortOrder       int    `json:"sort_order"`
}

func (h *CategoryHandler) Create(c fiber.Ctx) error {
	var req createCategoryRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "message": "invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return respondError(c, err)
	}

	created, err := h.uc.CreateCategory(c.Context(), &dto.CreateCategoryInput{
		Name:            req.Name,
		Description:     req.Description,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		MetaKeywords:    req.MetaKeywords,
		ImageURL:        req.ImageURL,
		SortOrder:       req.SortOrder,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, created)
}

func (h *CategoryHandler) Get(c fiber.Ctx) error {
	cat, err := h.uc.GetCategory(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, cat)
}

func (h *CategoryHandler) List(c fiber.Ctx) error {
	filters := &dto.CategoryFilters{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 50),
	}
	if raw := c.Query("is_active", ""); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filters.IsActive = &active
		}
	}

	items, total, err := h.uc.ListCategories(c.Context(), filters)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, items, total, filters.Page, filters.PageSize)
}

type updateCategoryRequest struct {
	Name            string `json:"name" validate:"required"`
	Description     string `json:"description"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	MetaKeywords    string `json:"meta_keywords"`
	ImageURL        string `json:"image_url"`
	SortOrder       int    `json:"sort_order"`
	IsActive        bool   `json:"is_active"`
}

func (h *CategoryHandler) Update(c fiber.Ctx) error {
	var req updateCategoryRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "message": "invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return respondError(c, err)
	}

	updated, err := h.uc.UpdateCategory(c.Context(), &dto.UpdateCategoryInput{
		ID:              c.Params("id"),
		Name:            req.Name,
		Description:     req.Description,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		MetaKeywords:    req.MetaKeywords,
		ImageURL:        req.ImageURL,
		SortOrder:       req.SortOrder,
		IsActive:        req.IsActive,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, updated)
}

func (h *CategoryHandler) Delete(c fiber.Ctx) error {
	if err := h.uc.DeleteCategory(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

type createSubCategoryRequest struct {
	CategoryName string `json:"category_name" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url"`
}

func (h *CategoryHandler) CreateSub(c fiber.Ctx) error {
	var req createSubCategoryRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "message": "invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return respondError(c, err)
	}

	created, err := h.uc.CreateSubCategory(c.Context(), &dto.CreateSubCategoryInput{
		CategoryName: req.CategoryName,
		Name:         req.Name,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, created)
}

func (h *CategoryHandler) ListSubs(c fiber.Ctx) error {
	subs, err := h.uc.ListSubCategories(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, subs)
}

func (h *CategoryHandler) DeleteSub(c fiber.Ctx) error {
	if err := h.uc.DeleteSubCategory(c.Context(), c.Params("subId")); err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"deleted": true})
}
