package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the price reconciler service
type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DatabaseURL string

	// Shopify
	ShopifyStoreDomain string
	ShopifyAccessToken string
	ShopifyAPIVersion  string
	ShopifyLocationID  string

	// Scraper proxy
	ScraperProxyURL  string
	ScraperProxyUser string
	ScraperProxyKey  string

	// Rate Limiting
	ShopifyRateLimit int // requests per second
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first if present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not read .env file: %v", err)
	}

	databaseURL := getEnv("DATABASE_URL", "")
	if databaseURL == "" {
		dbHost := getEnv("DB_HOST", "localhost")
		dbPort := getEnv("DB_PORT", "5432")
		dbUser := getEnv("DB_USER", "postgres")
		dbPassword := getEnv("DB_PASSWORD", "")
		dbName := getEnv("DB_NAME", "price_reconciler")
		dbSSLMode := getEnv("DB_SSLMODE", "disable")

		databaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			dbUser, dbPassword, dbHost, dbPort, dbName, dbSSLMode)
	}

	config := &Config{
		Port:        getEnv("PORT", "8099"),
		Environment: getEnv("ENVIRONMENT", "development"),
		DatabaseURL: databaseURL,

		// Shopify
		ShopifyStoreDomain: getEnv("SHOPIFY_STORE_DOMAIN", ""),
		ShopifyAccessToken: getEnv("SHOPIFY_ACCESS_TOKEN", ""),
		ShopifyAPIVersion:  getEnv("SHOPIFY_API_VERSION", "2024-01"),
		ShopifyLocationID:  getEnv("SHOPIFY_LOCATION_ID", ""),

		// Scraper proxy
		ScraperProxyURL:  getEnv("SCRAPER_PROXY_URL", ""),
		ScraperProxyUser: getEnv("SCRAPER_PROXY_USER", ""),
		ScraperProxyKey:  getEnv("SCRAPER_PROXY_KEY", ""),

		// Rate Limiting
		ShopifyRateLimit: getEnvAsInt("SHOPIFY_RATE_LIMIT", 2),
	}

	// Validate required fields
	if config.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	if config.ShopifyStoreDomain == "" || config.ShopifyAccessToken == "" {
		log.Println("Warning: Shopify credentials not set, store operations will fail")
	}

	if config.ScraperProxyURL == "" {
		log.Println("Warning: SCRAPER_PROXY_URL not set, competitor lookups will be disabled")
	}

	return config
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}
