package http

import (
	"github.com/gofiber/fiber/v3"
)

const vendorIDLocal = "vendorID"

// RequireVendor expects the authenticated vendor identity from the edge
// gateway in X-Vendor-ID. Routes behind it can assume a tenant.
func RequireVendor() fiber.Handler {
	return func(c fiber.Ctx) error {
		vendorID := c.Get("X-Vendor-ID")
		if vendorID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  "error",
				"message": "missing vendor identity",
			})
		}
		c.Locals(vendorIDLocal, vendorID)
		return c.Next()
	}
}

func vendorID(c fiber.Ctx) string {
	v, _ := c.Locals(vendorIDLocal).(string)
	return v
}
