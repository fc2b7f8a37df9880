// Package bootstrap handles application initialization and lifecycle
// management for the prospect pipeline service.
package bootstrap

import (
	"fmt"

	"github.com/jonesrussell/prospect-pipeline/internal/logger"
)

// Start initializes and runs the prospect pipeline service.
func Start() error {
	cfg, configErr := LoadConfig()
	if configErr != nil {
		return fmt.Errorf("config: %w", configErr)
	}

	log, logErr := CreateLogger(cfg)
	if logErr != nil {
		return fmt.Errorf("logger: %w", logErr)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting Prospect Pipeline Service",
		logger.String("name", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port),
	)

	db, dbErr := SetupDatabase(cfg)
	if dbErr != nil {
		return fmt.Errorf("database: %w", dbErr)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("Failed to close database", logger.Error(closeErr))
		}
	}()
	log.Info("Database connection established")

	redisClient, redisErr := SetupRedis(cfg)
	if redisErr != nil {
		return fmt.Errorf("redis: %w", redisErr)
	}
	if redisClient != nil {
		defer func() {
			if closeErr := redisClient.Close(); closeErr != nil {
				log.Error("Failed to close redis", logger.Error(closeErr))
			}
		}()
		log.Info("Redis connection established")
	} else {
		log.Info("Redis disabled, lifecycle events will not be published")
	}

	server := SetupHTTPServer(cfg, db, redisClient, log)

	if runErr := server.Run(); runErr != nil {
		log.Error("Server error", logger.Error(runErr))
		return fmt.Errorf("server: %w", runErr)
	}

	log.Info("Prospect Pipeline Service stopped")
	return nil
}
