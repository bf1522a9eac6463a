package database

import (
	"context"
	"fmt"
	"time"

	"notes-marketplace-api/internal/config"
	"notes-marketplace-api/internal/models"
	"notes-marketplace-api/pkg/logging"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var (
	DB          *gorm.DB
	RedisClient *redis.Client
)

// InitDatabase initializes database connection
func InitDatabase() error {
	if err := initPostgres(); err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}

	// Redis is optional; without it the catalog is not cached and logout
	// cannot revoke sessions before they expire.
	if err := initRedis(); err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}

	if err := AutoMigrate(DB); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

// Open connects to Postgres, or to a SQLite file when dsn is empty
func Open(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	}

	if dsn == "" {
		logging.Infof("Database URL not set, using SQLite for development")
		return gorm.Open(sqlite.Open("notes-marketplace.db"), cfg)
	}
	return gorm.Open(postgres.Open(dsn), cfg)
}

// OpenSQLite opens a SQLite database at dsn, used by tests and local tooling
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func initPostgres() error {
	var err error
	DB, err = Open(config.AppConfig.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	logging.Infof("Database connected successfully")
	return nil
}

func initRedis() error {
	redisURL := config.AppConfig.RedisURL
	if redisURL == "" {
		logging.Warnf("REDIS_URL not set, catalog cache and session revocation disabled")
		return nil
	}

	logging.Infof("Connecting to Redis: %s", maskRedisURL(redisURL))

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		logging.Errorf("Failed to parse Redis URL: %v", err)
		return fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	RedisClient = redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err = RedisClient.Ping(ctx).Result(); err != nil {
		logging.Errorf("Failed to connect to Redis: %v", err)
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.Infof("Redis connected successfully")
	return nil
}

// maskRedisURL masks sensitive information in Redis URL for logging
func maskRedisURL(url string) string {
	if len(url) > 20 {
		return url[:10] + "***" + url[len(url)-10:]
	}
	return "***"
}

// AutoMigrate creates or updates every table the service owns
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Note{},
		&models.Syllabus{},
		&models.Purchase{},
		&models.SyllabusDownload{},
		&models.AdminUser{},
	)
}

// GetDB returns database instance
func GetDB() *gorm.DB {
	return DB
}

// GetRedis returns Redis client, nil when Redis is not configured
func GetRedis() *redis.Client {
	return RedisClient
}

// CloseDatabase closes database connections
func CloseDatabase() error {
	if DB != nil {
		if sqlDB, err := DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				logging.Errorf("Failed to close database: %v", err)
			}
		}
	}

	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logging.Errorf("Failed to close Redis: %v", err)
		}
	}

	return nil
}
