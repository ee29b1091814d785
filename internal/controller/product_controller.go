package controller

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"homebiz_backend/internal/model"
	"homebiz_backend/pkg/storage"
	"homebiz_backend/pkg/utils/image"
	"homebiz_backend/pkg/utils/jwt"
)

type ProductController struct {
	db      *gorm.DB
	storage *storage.Client
}

func NewProductController(db *gorm.DB, storageClient *storage.Client) *ProductController {
	return &ProductController{db: db, storage: storageClient}
}

type ProductInput struct {
	Name        string         `json:"name" validate:"required"`
	Description string         `json:"description" validate:"required"`
	Price       float64        `json:"price" validate:"required"`
	Category    string         `json:"category"`
	ImageURL    string         `json:"image_url"`
	Attributes  datatypes.JSON `json:"attributes"`
}

func (pc *ProductController) CreateProduct(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	businessID, err := strconv.ParseUint(c.Params("business_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid business ID",
		})
	}

	// Sahiplik kontrolü; yabancı işletme de 404 döner.
	var business model.Business
	if err := pc.db.Where("id = ? AND user_id = ?", businessID, claims.UserID).
		First(&business).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Business not found or not owned by user",
		})
	}

	input := new(ProductInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if input.Name == "" || input.Description == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name and description are required",
		})
	}

	product := model.Product{
		BusinessID:  business.ID,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		ImageURL:    input.ImageURL,
		Attributes:  input.Attributes,
		Status:      model.ProductStatusActive,
	}

	if err := pc.db.Create(&product).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create product",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product created successfully",
		"product": product,
	})
}

func (pc *ProductController) ListProducts(c *fiber.Ctx) error {
	businessID, err := strconv.ParseUint(c.Params("business_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid business ID",
		})
	}

	var products []model.Product
	if err := pc.db.Where("business_id = ? AND status = ?", businessID, model.ProductStatusActive).
		Limit(100).Find(&products).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch products",
		})
	}

	return c.JSON(products)
}

// UploadProductImage ürün görselini işleyip obje deposuna yükler.
func (pc *ProductController) UploadProductImage(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	if pc.storage == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Image storage not configured",
		})
	}

	productID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid product ID",
		})
	}

	var product model.Product
	if err := pc.db.Preload("Business").First(&product, productID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Product not found",
		})
	}

	if product.Business.UserID != claims.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized to upload images for this product",
		})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No image file provided",
		})
	}

	url, err := pc.storage.UploadProductImage(c.Context(), file, product.BusinessID, product.ID)
	if err != nil {
		// Sadece dosyanın kendisiyle ilgili hatalar istemciye geri döner;
		// depolama hataları detay sızdırmaz.
		if errors.Is(err, image.ErrInvalidImage) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		log.Printf("Could not upload product image: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not upload image",
		})
	}

	if err := pc.db.Model(&product).Update("image_url", url).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save image URL",
		})
	}

	return c.JSON(fiber.Map{
		"message":   "Image uploaded successfully",
		"image_url": url,
	})
}
