package http

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"go.uber.org/zap"
)

type Handlers struct {
	Products     *ProductHandler
	Categories   *CategoryHandler
	Import       *ImportHandler
	Verification *VerificationHandler
}

func NewApp(appName string, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      appName,
		BodyLimit:    25 * 1024 * 1024, // catalog files
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}
			log.Error("request error",
				zap.Int("status", code),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"message": message,
			})
		},
	})

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-Vendor-ID"},
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))

	return app
}

func SetupRoutes(app *fiber.App, h *Handlers) {
	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	categories := v1.Group("/categories")
	categories.Get("/", h.Categories.List)
	categories.Get("/:id", h.Categories.Get)
	categories.Get("/:id/subcategories", h.Categories.ListSubs)
	categories.Post("/", h.Categories.Create, RequireVendor())
	categories.Put("/:id", h.Categories.Update, RequireVendor())
	categories.Delete("/:id", h.Categories.Delete, RequireVendor())
	categories.Post("/subcategories", h.Categories.CreateSub, RequireVendor())
	categories.Delete("/:id/subcategories/:subId", h.Categories.DeleteSub, RequireVendor())

	products := v1.Group("/products", RequireVendor())
	products.Post("/", h.Products.Create)
	products.Get("/", h.Products.List)
	products.Get("/:id", h.Products.Get)
	products.Patch("/:id", h.Products.Update)
	products.Delete("/:id", h.Products.Delete)
	products.Put("/:id/variants", h.Products.UpsertVariant)
	products.Post("/:id/stock", h.Products.AdjustStock)
	products.Patch("/:id/pricing", h.Products.SetPricing)
	products.Get("/:id/movements", h.Products.ListMovements)

	v1.Post("/import", h.Import.Import, RequireVendor())

	verification := v1.Group("/verification", RequireVendor())
	verification.Post("/codes", h.Verification.Issue)
	verification.Post("/verify", h.Verification.Verify)
	verification.Delete("/codes", h.Verification.Invalidate)
}
