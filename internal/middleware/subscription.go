package middleware

import (
	"github.com/gofiber/fiber/v2"

	"homebiz_backend/internal/billing"
	"homebiz_backend/internal/model"
	"homebiz_backend/pkg/utils/jwt"
)

// RequireSeller rejects callers that do not hold the seller role.
func RequireSeller() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)

		if claims.Role != string(model.RoleSeller) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Only sellers can perform this action",
			})
		}

		return c.Next()
	}
}

// RequireActiveSubscription gates publishing actions on a paid, unexpired
// subscription. The check goes through the billing service's predicate
// every time; nothing here caches entitlement.
func RequireActiveSubscription(billingSvc *billing.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)

		active, err := billingSvc.HasActiveSubscription(claims.UserID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not check subscription",
			})
		}
		if !active {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Active subscription required",
			})
		}

		return c.Next()
	}
}
