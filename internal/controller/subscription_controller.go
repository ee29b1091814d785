package controller

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"homebiz_backend/internal/billing"
	"homebiz_backend/internal/model"
	"homebiz_backend/pkg/email"
	"homebiz_backend/pkg/utils/jwt"
)

type SubscriptionController struct {
	billing *billing.Service
	db      *gorm.DB
	mailer  *email.Service
}

func NewSubscriptionController(billingSvc *billing.Service, db *gorm.DB, mailer *email.Service) *SubscriptionController {
	return &SubscriptionController{billing: billingSvc, db: db, mailer: mailer}
}

type CheckoutInput struct {
	PackageID string `json:"package_id" validate:"required"`
	OriginURL string `json:"origin_url" validate:"required"`
}

// ListPackages katalogdaki paketleri döner, auth gerekmez.
func (sc *SubscriptionController) ListPackages(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"packages": sc.billing.Packages(),
	})
}

func (sc *SubscriptionController) CreateCheckout(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(CheckoutInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	result, err := sc.billing.StartCheckout(c.Context(), claims.UserID, model.UserRole(claims.Role), input.PackageID, input.OriginURL)
	if err != nil {
		return sc.billingError(c, err)
	}

	return c.JSON(result)
}

// CheckoutStatus reconciles a checkout session against the gateway. The
// client polls this after the redirect; every repeat call is safe.
func (sc *SubscriptionController) CheckoutStatus(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	sessionID := c.Params("session_id")

	result, err := sc.billing.CheckoutStatus(c.Context(), claims.UserID, sessionID)
	if err != nil {
		return sc.billingError(c, err)
	}

	if result.Activated {
		sc.notifyActivated(claims.UserID, claims.Email)
	}

	return c.JSON(result)
}

func (sc *SubscriptionController) GetCurrent(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	if claims.Role != string(model.RoleSeller) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Only sellers have subscriptions",
		})
	}

	sub, err := sc.billing.CurrentSubscription(claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch subscription",
		})
	}

	if sub == nil {
		return c.JSON(fiber.Map{"has_subscription": false})
	}

	return c.JSON(fiber.Map{
		"has_subscription": true,
		"is_active":        sub.IsActiveAt(time.Now()),
		"package_id":       sub.PackageID,
		"expires_at":       sub.ExpiresAt.Format(time.RFC3339),
		"status":           sub.Status,
	})
}

func (sc *SubscriptionController) billingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, billing.ErrPackageNotFound):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid subscription package",
		})
	case errors.Is(err, billing.ErrInvalidOrigin):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid origin URL",
		})
	case errors.Is(err, billing.ErrSellerOnly):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Only sellers can subscribe",
		})
	case errors.Is(err, billing.ErrTransactionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Transaction not found",
		})
	case errors.Is(err, billing.ErrPaymentUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Payment system unavailable, please retry",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not process payment request",
		})
	}
}

// notifyActivated sends the activation mail for the call that granted the
// entitlement. Mail failure is logged, never surfaced to the client.
func (sc *SubscriptionController) notifyActivated(userID uint, userEmail string) {
	if sc.mailer == nil {
		return
	}

	sub, err := sc.billing.CurrentSubscription(userID)
	if err != nil || sub == nil {
		log.Printf("Could not load subscription for activation email: %v", err)
		return
	}

	pkg, ok := sc.billing.Package(sub.PackageID)
	if !ok {
		return
	}

	var user model.User
	name := userEmail
	if err := sc.db.First(&user, userID).Error; err == nil {
		name = user.Name
	}

	err = sc.mailer.SendSubscriptionActivatedEmail(userEmail, email.SubscriptionActivatedData{
		Name:        name,
		PackageName: pkg.Name,
		Price:       pkg.Price,
		Currency:    pkg.Currency,
		ExpiresAt:   sub.ExpiresAt,
	})
	if err != nil {
		log.Printf("Could not send subscription activation email to %s: %v", userEmail, err)
	}
}
