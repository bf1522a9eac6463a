package main

import (
	"context"
	"errors"
	"log"

	"notes-marketplace-api/internal/api"
	"notes-marketplace-api/internal/config"
	"notes-marketplace-api/internal/database"
	"notes-marketplace-api/internal/services"
	"notes-marketplace-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatal("Failed to initialize config:", err)
	}

	// Initialize logging
	logging.InitLogging()
	defer logging.Sync()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.CloseDatabase()

	// Object storage is optional; uploads answer 503 without it
	var store services.FileStore
	storage, err := services.NewStorageService(context.Background())
	switch {
	case errors.Is(err, services.ErrStorageNotConfigured):
		logging.Warnf("STORAGE_BUCKET is not set, uploads are disabled")
	case err != nil:
		log.Fatal("Failed to initialize storage:", err)
	default:
		store = storage
	}

	// Set Gin mode
	gin.SetMode(config.AppConfig.Mode)

	r := gin.New()
	r.Use(gin.Recovery())

	// Setup routes
	api.SetupRoutes(r, api.NewHandlers(store))

	// Start server
	port := config.AppConfig.Port
	logging.Infof("Starting server on port %s", port)

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
