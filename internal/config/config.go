package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port string
	Mode string

	// Database configuration
	DatabaseURL string

	// Redis configuration (optional, empty disables caching and session revocation)
	RedisURL string

	// Razorpay configuration
	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string
	Currency          string

	// Admin session configuration
	JWTSecret         string
	AdminSessionHours int
	AdminSecretKey    string

	// Object storage configuration
	StorageBucket     string
	StorageRegion     string
	StorageEndpoint   string
	StorageAccessKey  string
	StorageSecretKey  string
	StoragePublicURL  string
	StorageRootFolder string
	MaxUploadMB       int

	// Brevo email configuration
	BrevoAPIKey    string
	BrevoFromEmail string
	BrevoFromName  string

	CatalogCacheSeconds int
	ServiceName         string
}

var AppConfig *Config

func InitConfig() error {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		// Ignore error if .env file doesn't exist
	}

	AppConfig = &Config{
		Port:                getEnv("PORT", "8080"),
		Mode:                getEnv("GIN_MODE", "debug"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		RedisURL:            getEnv("REDIS_URL", ""),
		RazorpayKeyID:       getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret:   getEnv("RAZORPAY_KEY_SECRET", ""),
		RazorpayBaseURL:     getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		Currency:            getEnv("PAYMENT_CURRENCY", "INR"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		AdminSessionHours:   getEnvInt("ADMIN_SESSION_HOURS", 24),
		AdminSecretKey:      getEnv("ADMIN_SECRET_KEY", ""),
		StorageBucket:       getEnv("STORAGE_BUCKET", ""),
		StorageRegion:       getEnv("STORAGE_REGION", "us-east-1"),
		StorageEndpoint:     getEnv("STORAGE_ENDPOINT", ""),
		StorageAccessKey:    getEnv("STORAGE_ACCESS_KEY", ""),
		StorageSecretKey:    getEnv("STORAGE_SECRET_KEY", ""),
		StoragePublicURL:    getEnv("STORAGE_PUBLIC_URL", ""),
		StorageRootFolder:   getEnv("STORAGE_ROOT_FOLDER", ""),
		MaxUploadMB:         getEnvInt("MAX_UPLOAD_MB", 100),
		BrevoAPIKey:         getEnv("BREVO_API_KEY", ""),
		BrevoFromEmail:      getEnv("BREVO_FROM_EMAIL", ""),
		BrevoFromName:       getEnv("BREVO_FROM_NAME", "Notes Marketplace"),
		CatalogCacheSeconds: getEnvInt("CATALOG_CACHE_SECONDS", 60),
		ServiceName:         getEnv("SERVICE_NAME", "notes-marketplace"),
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
