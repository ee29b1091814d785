package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"homebiz_backend/internal/model"
	"homebiz_backend/pkg/utils/jwt"
	"homebiz_backend/pkg/utils/location"
)

type BusinessController struct {
	db *gorm.DB
}

func NewBusinessController(db *gorm.DB) *BusinessController {
	return &BusinessController{db: db}
}

type BusinessInput struct {
	Name        string                 `json:"name" validate:"required"`
	Description string                 `json:"description" validate:"required"`
	Category    model.BusinessCategory `json:"category" validate:"required"`
	Address     string                 `json:"address" validate:"required"`
	Latitude    float64                `json:"latitude"`
	Longitude   float64                `json:"longitude"`
	Phone       string                 `json:"phone"`
}

// CreateBusiness yeni işletme kaydı oluşturur. Seller rolü ve aktif
// abonelik kontrolleri route middleware'lerinde yapılıyor.
func (bc *BusinessController) CreateBusiness(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(BusinessInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if input.Name == "" || input.Description == "" || input.Address == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name, description and address are required",
		})
	}

	business := model.Business{
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Address:     input.Address,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Phone:       input.Phone,
		Status:      model.BusinessStatusActive,
		UserID:      claims.UserID,
	}

	if err := bc.db.Create(&business).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create business",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Business created successfully",
		"business": business,
	})
}

// ListBusinesses aktif işletmeleri listeler. lat/lng verilirse yaklaşık
// mesafe (km) eklenir; sadece gösterim amaçlı, sıralama yapılmaz.
func (bc *BusinessController) ListBusinesses(c *fiber.Ctx) error {
	var businesses []model.Business
	if err := bc.db.Where("status = ?", model.BusinessStatusActive).
		Limit(100).Find(&businesses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch businesses",
		})
	}

	lat, latErr := strconv.ParseFloat(c.Query("latitude"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("longitude"), 64)
	withDistance := latErr == nil && lngErr == nil

	result := make([]fiber.Map, 0, len(businesses))
	for _, b := range businesses {
		entry := fiber.Map{
			"id":          b.ID,
			"name":        b.Name,
			"slug":        b.Slug,
			"description": b.Description,
			"category":    b.Category,
			"address":     b.Address,
			"latitude":    b.Latitude,
			"longitude":   b.Longitude,
			"phone":       b.Phone,
			"owner_id":    b.UserID,
		}
		if withDistance {
			entry["distance"] = location.ApproxDistanceKm(lat, lng, b.Latitude, b.Longitude)
		}
		result = append(result, entry)
	}

	return c.JSON(result)
}

func (bc *BusinessController) ListMyBusinesses(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var businesses []model.Business
	if err := bc.db.Where("user_id = ?", claims.UserID).
		Limit(100).Find(&businesses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch businesses",
		})
	}

	return c.JSON(businesses)
}

// GetBusinessBySlug herkese açık işletme detay sayfası.
func (bc *BusinessController) GetBusinessBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")

	var business model.Business
	err := bc.db.Where("slug = ? AND status = ?", slug, model.BusinessStatusActive).
		Preload("Products", "status = ?", model.ProductStatusActive).
		First(&business).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Business not found",
		})
	}

	return c.JSON(fiber.Map{
		"business": business,
		"products": business.Products,
	})
}
