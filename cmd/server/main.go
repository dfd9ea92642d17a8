package main

import (
	stdlog "log"
	"net/http"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/config"
	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/handlers"
	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/logger"
	authMiddleware "github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/middleware"
	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		stdlog.Println("No .env file found, using system environment")
	}
	config.Load()
	logger.Initialize()
	log := logger.Get()

	// Operator auth
	var authClient *firebaseauth.Client
	authClient, err := services.InitFirebase(config.AppConfig.FirebaseCredentialsPath)
	if err != nil {
		log.Warn("Firebase initialization failed; auth will reject all requests", zap.Error(err))
		authClient = nil
	}

	// Local persistence for draft sessions
	var db *gorm.DB
	if config.AppConfig.DatabaseURL != "" {
		db, err = services.InitDB(config.AppConfig.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := services.AutoMigrate(db); err != nil {
			log.Fatal("Failed to run database migrations", zap.Error(err))
		}
	} else {
		log.Fatal("DATABASE_URL not set")
	}

	// Read cache; the service degrades to direct fetches without it
	cache, err := services.NewRedisCache(config.AppConfig.RedisURL)
	if err != nil {
		log.Warn("Redis unavailable, running without read cache", zap.Error(err))
		cache = nil
	}

	backend := services.NewBackendClient(config.AppConfig.BackendBaseURL, config.AppConfig.BackendAPIKey)

	inv := services.NewInvalidator()
	if cache != nil {
		services.RegisterCacheGroups(inv, cache)
	}

	catalogTTL := time.Duration(config.AppConfig.CatalogCacheTTL) * time.Second
	catalogs := services.NewCatalogService(backend, cache, catalogTTL)
	drafts := services.NewDraftService(db, backend, catalogs)
	submission := services.NewSubmissionService(db, backend, catalogs, inv)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = authMiddleware.CustomErrorHandler
	e.Validator = handlers.NewRequestValidator()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authClient)
	quotaHandler := handlers.NewQuotaHandler(catalogs, backend)
	draftHandler := handlers.NewDraftHandler(drafts, submission, catalogs)
	txHandler := handlers.NewTransactionHandler(backend, cache, inv)

	// Public routes
	e.POST("/auth/login", authHandler.HandleLogin)
	e.POST("/auth/logout", authHandler.HandleLogout)
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Protected API
	api := e.Group("/api", authMiddleware.RequireAuth(authClient))

	api.GET("/reservations/:id/quota-status", quotaHandler.QuotaStatus)
	api.POST("/reservations/:id/selection-preview", quotaHandler.Preview)
	api.GET("/reservations/:id/schedule-preview", quotaHandler.SchedulePreview)
	api.GET("/reservations/:id/schedule.pdf", quotaHandler.SchedulePDF)
	api.GET("/reservations/:id/processed-payments.pdf", quotaHandler.ProcessedPaymentsPDF)
	api.GET("/reservations/:id/transactions", txHandler.ByReservation)

	api.POST("/drafts", draftHandler.Create)
	api.GET("/drafts/:id", draftHandler.Get)
	api.PATCH("/drafts/:id", draftHandler.Update)
	api.POST("/drafts/:id/toggle/:quotaId", draftHandler.Toggle)
	api.POST("/drafts/:id/clear", draftHandler.Clear)
	api.POST("/drafts/:id/match-total", draftHandler.MatchTotal)
	api.POST("/drafts/:id/receipt", draftHandler.UploadReceipt)
	api.POST("/drafts/:id/submit", draftHandler.Submit)
	api.DELETE("/drafts/:id", draftHandler.Cancel)

	api.GET("/transactions", txHandler.List)
	api.GET("/transactions/:id", txHandler.Get)
	api.GET("/transactions/:id/receipt.pdf", txHandler.ReceiptPDF)
	api.DELETE("/transactions/:id", txHandler.Delete)

	log.Info("Server starting", zap.String("port", config.AppConfig.AppPort))
	e.Logger.Fatal(e.Start(":" + config.AppConfig.AppPort))
}
