package main

import (
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"price-reconciler-service/internal/clients/scraper"
	"price-reconciler-service/internal/clients/shopify"
	"price-reconciler-service/internal/config"
	"price-reconciler-service/internal/database"
	"price-reconciler-service/internal/handlers"
	"price-reconciler-service/internal/middleware"
	"price-reconciler-service/internal/models"
	"price-reconciler-service/internal/repository"
	"price-reconciler-service/internal/services"
	"price-reconciler-service/internal/suppliers"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate the mirror and audit tables. Supplier price tables are
	// loaded externally and never migrated here.
	if err := db.AutoMigrate(
		&models.VariantMirror{},
		&models.CreateLogEntry{},
		&models.ChangeLogEntry{},
		&models.DeleteLogEntry{},
	); err != nil {
		log.Printf("Warning: Auto-migration failed: %v", err)
	}
	log.Println("Database models migrated")

	// Initialize clients
	shopifyClient := shopify.NewClient(cfg.ShopifyStoreDomain, cfg.ShopifyAccessToken, cfg.ShopifyAPIVersion, cfg.ShopifyRateLimit)
	scraperClient := scraper.NewClient(cfg.ScraperProxyURL, cfg.ScraperProxyUser, cfg.ScraperProxyKey)

	// Initialize repositories
	mirrorRepo := repository.NewMirrorRepository(db)
	logRepo := repository.NewLogRepository(db)

	// Initialize services
	aggregator := suppliers.NewAggregator(suppliers.NewGormFetcher(db))
	competitorService := services.NewCompetitorService(scraperClient)
	crossrefService := services.NewCrossRefService(mirrorRepo, shopifyClient)
	upsertService := services.NewUpsertService(shopifyClient, mirrorRepo, logRepo, cfg.ShopifyLocationID)
	searchService := services.NewSearchService(aggregator, crossrefService, competitorService)
	duplicateService := services.NewDuplicateService(shopifyClient, mirrorRepo, mirrorRepo, logRepo)
	reportService := services.NewReportService(mirrorRepo, services.DefaultMarginThreshold)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	productHandler := handlers.NewProductHandler(searchService, crossrefService, upsertService, logRepo)
	competitorHandler := handlers.NewCompetitorHandler(competitorService)
	duplicateHandler := handlers.NewDuplicateHandler(duplicateService)
	pricingHandler := handlers.NewPricingHandler(reportService)

	// Setup router
	router := setupRouter(healthHandler, productHandler, competitorHandler, duplicateHandler, pricingHandler)

	// Start server
	log.Printf("Price Reconciler Service starting on port %s (env: %s)", cfg.Port, cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter configures the HTTP router
func setupRouter(
	healthHandler *handlers.HealthHandler,
	productHandler *handlers.ProductHandler,
	competitorHandler *handlers.CompetitorHandler,
	duplicateHandler *handlers.DuplicateHandler,
	pricingHandler *handlers.PricingHandler,
) *gin.Engine {
	router := gin.Default()

	// Security headers middleware
	router.Use(middleware.SecurityHeaders())

	// CORS middleware
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{
			"http://localhost:3000",
			"http://localhost:3001",
		}
	}
	router.Use(middleware.CORS(origins))

	// Health check
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		// Barcode search and store writes
		products := v1.Group("/products")
		{
			products.GET("/search", productHandler.Search)
			products.POST("/upsert", productHandler.Upsert)
			products.POST("/delete", duplicateHandler.Delete)
			products.GET("/changes", productHandler.Changes)
		}

		// Store cross-reference
		v1.GET("/shopify/lookup", productHandler.Lookup)

		// Competitor scraping
		v1.GET("/competitors/price", competitorHandler.Price)

		// Duplicate review
		v1.GET("/duplicates", duplicateHandler.List)

		// Pricing
		v1.GET("/pricing/suggest", pricingHandler.Suggest)
		v1.GET("/reports/low-margin", pricingHandler.LowMargin)
	}

	return router
}
