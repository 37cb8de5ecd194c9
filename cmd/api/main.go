package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/flashframe/flashframe-backend/internal/config"
	"github.com/flashframe/flashframe-backend/internal/handler"
	"github.com/flashframe/flashframe-backend/internal/middleware"
	"github.com/flashframe/flashframe-backend/internal/models"
	"github.com/flashframe/flashframe-backend/internal/repository"
	"github.com/flashframe/flashframe-backend/internal/service"
	"github.com/flashframe/flashframe-backend/pkg/database"
	"github.com/flashframe/flashframe-backend/pkg/email"
	applogger "github.com/flashframe/flashframe-backend/pkg/logger"
	"github.com/flashframe/flashframe-backend/pkg/payment"
	"github.com/flashframe/flashframe-backend/pkg/qrcode"
	"github.com/flashframe/flashframe-backend/pkg/queue"
	"github.com/flashframe/flashframe-backend/pkg/recognition"
	"github.com/flashframe/flashframe-backend/pkg/session"
	"github.com/flashframe/flashframe-backend/pkg/storage"
	"github.com/flashframe/flashframe-backend/pkg/utils"
)

func main() {
	// .env is optional outside local development.
	_ = godotenv.Load()

	cfg := config.LoadConfig()

	logger, err := applogger.New(cfg.Env)
	if err != nil {
		log.Fatal("failed to initialize logger:", err)
	}
	defer logger.Sync()

	db, err := database.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	if err := database.RunMigrations(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	ctx := context.Background()

	s3Storage, err := storage.NewS3Storage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.Error(err))
	}
	recognitionClient, err := recognition.NewClient(ctx, cfg.S3.Region, logger)
	if err != nil {
		logger.Fatal("failed to initialize recognition client", zap.Error(err))
	}
	jobQueue, err := queue.NewQueue(ctx, cfg.S3.Region, logger)
	if err != nil {
		logger.Fatal("failed to initialize queue client", zap.Error(err))
	}

	sessions := session.NewStore(cfg.Redis.Addr, cfg.Redis.Password)
	emailService := email.NewEmailService(logger)
	stripeService := payment.NewStripeService(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, cfg.FrontendURL)
	qrService := qrcode.NewQRService(cfg.FrontendURL)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	eventRepo := repository.NewEventRepository(db)
	giftRepo := repository.NewGiftEventRepository(db)
	handshakeRepo := repository.NewHandshakeRepository(db)
	faceRepo := repository.NewFaceRepository(db)
	packageRepo := repository.NewCreditPackageRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, orgRepo, sessions, emailService, logger)
	eventService := service.NewEventService(
		eventRepo,
		userRepo,
		orgRepo,
		giftRepo,
		handshakeRepo,
		recognitionClient,
		jobQueue,
		qrService,
		cfg.SQS.DeleteQueueURL,
		logger,
	)
	photoService := service.NewPhotoService(eventRepo, s3Storage, faceRepo, logger)
	orgService := service.NewOrganizationService(orgRepo, s3Storage, logger)
	paymentService := service.NewPaymentService(packageRepo, handshakeRepo, stripeService, logger)

	validator := utils.NewValidator()

	// Handlers
	authHandler := handler.NewAuthHandler(authService, validator)
	eventHandler := handler.NewEventHandler(eventService, validator)
	photoHandler := handler.NewPhotoHandler(photoService, validator)
	orgHandler := handler.NewOrganizationHandler(orgService)
	paymentHandler := handler.NewPaymentHandler(paymentService)

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-XSRF-TOKEN",
		AllowMethods:     "GET, POST, PUT, DELETE",
		AllowCredentials: true,
	}))
	app.Use(fiberlogger.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	api := app.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/signin", authHandler.Signin)
	auth.Post("/forgot-password", authHandler.ForgotPassword)
	auth.Post("/reset-password", authHandler.ResetPassword)

	// Public gallery (must be registered before the auth middleware)
	api.Get("/gallery/:slug/photos", photoHandler.PublicGallery)

	// Stripe webhook (public, signature-authenticated)
	api.Post("/payments/webhook", paymentHandler.StripeWebhook)
	api.Get("/payments/packages", paymentHandler.ListPackages)

	// Protected routes
	api.Use(middleware.AuthMiddleware(sessions))
	csrf := middleware.CsrfMiddleware()
	{
		auth.Post("/signout", authHandler.Signout)
		auth.Get("/is-logged-in", authHandler.IsLoggedIn)

		events := api.Group("/events")
		events.Get("/", eventHandler.ListEvents)
		events.Post("/", csrf, middleware.RequirePermission(models.PermissionCreateEvents), eventHandler.CreateEvent)
		events.Post("/finish-upload", csrf, middleware.RequirePermission(models.PermissionManageEvents), eventHandler.FinishUpload)
		events.Post("/add-images", csrf, middleware.RequirePermission(models.PermissionManageEvents), eventHandler.AddImages)
		events.Get("/:id", eventHandler.GetEvent)
		events.Put("/:id", csrf, middleware.RequirePermission(models.PermissionManageEvents), eventHandler.UpdateEvent)
		events.Delete("/:id", csrf, middleware.RequirePermission(models.PermissionManageEvents), eventHandler.DeleteEvent)
		events.Put("/:id/favorites", csrf, middleware.RequirePermission(models.PermissionManageEvents), eventHandler.UpdateFavorites)
		events.Get("/:id/qrcode", eventHandler.EventQRCode)
		events.Post("/:id/photos/presign", csrf, middleware.RequirePermission(models.PermissionManageEvents), photoHandler.PresignUploads)

		photos := api.Group("/photos")
		photos.Post("/delete", csrf, middleware.RequirePermission(models.PermissionManageEvents), photoHandler.DeletePhotos)

		organization := api.Group("/organization")
		organization.Get("/", orgHandler.GetOrganization)
		organization.Put("/", csrf, middleware.RequirePermission(models.PermissionManageOrg), orgHandler.UpdateOrganization)
		organization.Post("/assets/:kind", csrf, middleware.RequirePermission(models.PermissionManageOrg), orgHandler.UploadAsset)

		payments := api.Group("/payments")
		payments.Post("/checkout/:packageID", csrf, middleware.RequirePermission(models.PermissionManageOrg), paymentHandler.Checkout)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("api listening", zap.String("port", port))
	log.Fatal(app.Listen(":" + port))
}
