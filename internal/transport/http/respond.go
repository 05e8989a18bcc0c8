package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/vendora/catalog-service/internal/apperr"
)

var validate = validator.New()

func respondData(c fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

func respondList(c fiber.Ctx, items any, total, page, pageSize int) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   items,
		"pagination": fiber.Map{
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		},
	})
}

// respondError translates the use-case error taxonomy into HTTP. Raw
// validator errors count as bad input too.
func respondError(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal server error"

	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		status = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, apperr.ErrValidation):
		status = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, apperr.ErrInsufficientStock):
		status = fiber.StatusConflict
		message = err.Error()
	case errors.Is(err, apperr.ErrNotFound):
		status = fiber.StatusNotFound
		message = err.Error()
	case errors.Is(err, apperr.ErrForbidden):
		status = fiber.StatusForbidden
		message = err.Error()
	case errors.Is(err, apperr.ErrConflict):
		status = fiber.StatusConflict
		message = err.Error()
	}

	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
	})
}
