package http

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// CodeStore is the slice of the verification store these endpoints use.
type CodeStore interface {
	Issue(ctx context.Context, purpose, subject string) (string, error)
	Verify(ctx context.Context, purpose, subject, code string) error
	Invalidate(ctx context.Context, purpose, subject string) error
}

type VerificationHandler struct {
	store  CodeStore
	logger *zap.Logger
}

func NewVerificationHandler(store CodeStore, log *zap.Logger) *VerificationHandler {
	return &VerificationHandler{store: store, logger: log}
}

type issueCodeRequest struct {
	Purpose    string `json:"purpose" validate:"required"`
	Identifier string `json:"identifier" validate:"required"`
}

// Issue stores a fresh code and hands it back to the caller. Delivering
// it (mail, SMS) is the caller's concern; this service only keeps the
// code alive for its TTL.
func (h *VerificationHandler) Issue(c fiber.Ctx) error {
	var req issueCodeRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "message": "invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return respondError(c, err)
	}

	code, err := h.store.Issue(c.Context(), req.Purpose, req.Identifier)
	if err != nil {
		return respondError(c, err)
	}

	h.logger.Info("verification code issued",
		zap.String("purpose", req.Purpose),
		zap.String("identifier", req.Identifier),
	)
	return respondData(c, fiber.StatusCreated, fiber.Map{"code": code})
}

type verifyCodeRequest struct {
	Purpose    string `json:"purpose" validate:"required"`
	Identifier string `json:"identifier" validate:"required"`
	Code       string `json:"code" validate:"required"`
}

func (h *VerificationHandler) Verify(c fiber.Ctx) error {
	var req verifyCodeRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "message": "invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return respondError(c, err)
	}

	if err := h.store.Verify(c.Context(), req.Purpose, req.Identifier, req.Code); err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"verified": true})
}

func (h *VerificationHandler) Invalidate(c fiber.Ctx) error {
	var req issueCodeRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "message": "invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return respondError(c, err)
	}

	if err := h.store.Invalidate(c.Context(), req.Purpose, req.Identifier); err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"invalidated": true})
}
