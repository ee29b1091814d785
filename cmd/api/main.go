package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"homebiz_backend/internal/billing"
	"homebiz_backend/internal/controller"
	"homebiz_backend/internal/middleware"
	"homebiz_backend/internal/model"
	"homebiz_backend/pkg/config"
	"homebiz_backend/pkg/cron"
	"homebiz_backend/pkg/database"
	"homebiz_backend/pkg/email"
	"homebiz_backend/pkg/seed"
	"homebiz_backend/pkg/storage"
	"homebiz_backend/pkg/utils/jwt"
)

type controllers struct {
	auth         *controller.AuthController
	business     *controller.BusinessController
	product      *controller.ProductController
	subscription *controller.SubscriptionController
}

func setupRoutes(app *fiber.App, ctrl controllers, tokens *jwt.Manager, billingSvc *billing.Service) {
	api := app.Group("/api")

	// Auth Routes
	auth := api.Group("/auth")
	auth.Post("/register", ctrl.auth.Register)
	auth.Post("/login", ctrl.auth.Login)

	// Public routes kayıt sırası önemli: auth Use katmanlarından önce.
	api.Get("/businesses", ctrl.business.ListBusinesses)
	api.Get("/businesses/:business_id/products", ctrl.product.ListProducts)
	api.Get("/b/:slug", ctrl.business.GetBusinessBySlug)

	api.Get("/me", middleware.AuthMiddleware(tokens), ctrl.auth.GetMe)

	// Subscription routes
	subscriptions := api.Group("/subscription")
	subscriptions.Get("/packages", ctrl.subscription.ListPackages)

	subProtected := subscriptions.Use(middleware.AuthMiddleware(tokens))
	subProtected.Post("/checkout", ctrl.subscription.CreateCheckout)
	subProtected.Get("/status/:session_id", ctrl.subscription.CheckoutStatus)
	subProtected.Get("/current", ctrl.subscription.GetCurrent)

	// Business routes; publishing is gated on seller role + paid subscription
	businesses := api.Group("/businesses", middleware.AuthMiddleware(tokens))
	businesses.Get("/my", ctrl.business.ListMyBusinesses)
	businesses.Post("/",
		middleware.RequireSeller(),
		middleware.RequireActiveSubscription(billingSvc),
		ctrl.business.CreateBusiness)
	businesses.Post("/:business_id/products", ctrl.product.CreateProduct)

	products := api.Group("/products", middleware.AuthMiddleware(tokens))
	products.Post("/:id/image", ctrl.product.UploadProductImage)
}

func main() {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is not set in .env")
	}

	db, err := database.Connect(cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	err = database.Migrate(db,
		&model.User{},
		&model.Business{},
		&model.Product{},
		&model.PaymentTransaction{},
		&model.Subscription{},
	)
	if err != nil {
		log.Printf("Migration warning: %v", err)
	}

	var mailer *email.Service
	if cfg.Email.APIKey != "" {
		mailer, err = email.NewService(cfg.Email.APIKey, cfg.Email.From)
		if err != nil {
			log.Fatal("Could not initialize email service:", err)
		}
	} else {
		log.Println("RESEND_API_KEY not set, transactional mail disabled")
	}

	var storageClient *storage.Client
	if cfg.Storage.Bucket != "" {
		storageClient, err = storage.NewClient(context.Background(), cfg.Storage.Bucket, cfg.Storage.Region)
		if err != nil {
			log.Printf("Image storage unavailable: %v", err)
			storageClient = nil
		}
	}

	if cfg.Stripe.SecretKey == "" {
		log.Println("Warning: STRIPE_SECRET_KEY not set, checkout will be unavailable")
	}

	tokens := jwt.NewManager(cfg.JWT.Secret)
	catalog := billing.DefaultCatalog()
	gateway := billing.NewStripeGateway(cfg.Stripe.SecretKey)
	billingSvc := billing.NewService(billing.NewRepository(db), gateway, catalog)

	ctrl := controllers{
		auth:         controller.NewAuthController(db, tokens, mailer),
		business:     controller.NewBusinessController(db),
		product:      controller.NewProductController(db, storageClient),
		subscription: controller.NewSubscriptionController(billingSvc, db, mailer),
	}

	if cfg.SeedDemo {
		seed.SeedDemoData(db)
	}

	expiryCron := cron.StartSubscriptionExpiry(db, catalog, mailer)
	defer expiryCron.Stop()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New())

	setupRoutes(app, ctrl, tokens, billingSvc)

	log.Printf("Server is running on port %s", cfg.Server.Port)
	log.Fatal(app.Listen(":" + cfg.Server.Port))
}
