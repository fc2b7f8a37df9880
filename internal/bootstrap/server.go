package bootstrap

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/prospect-pipeline/internal/api"
	"github.com/jonesrussell/prospect-pipeline/internal/config"
	"github.com/jonesrussell/prospect-pipeline/internal/database"
	"github.com/jonesrussell/prospect-pipeline/internal/events"
	"github.com/jonesrussell/prospect-pipeline/internal/logger"
	"github.com/jonesrussell/prospect-pipeline/internal/poller"
	"github.com/jonesrussell/prospect-pipeline/internal/processor"
	"github.com/jonesrussell/prospect-pipeline/internal/service"
	"github.com/jonesrussell/prospect-pipeline/internal/web"
)

const healthCheckTimeout = 2 * time.Second

// SetupHTTPServer creates the HTTP server with all handlers wired.
func SetupHTTPServer(
	cfg *config.Config,
	db *database.Connection,
	redisClient *redis.Client,
	log logger.Logger,
) *web.Server {
	campaignRepo := database.NewCampaignRepository(db.DB)
	icpRepo := database.NewICPConfigRepository(db.DB)
	leadRepo := database.NewLeadRepository(db.DB)

	stageClient := processor.NewClient(&cfg.Processors)
	progressPoller := poller.New(campaignRepo, log, cfg.Poller.Interval, cfg.Poller.MaxAttempts)
	publisher := events.NewPublisher(redisClient, log)

	orchestrator := service.NewOrchestrator(
		campaignRepo,
		icpRepo,
		leadRepo,
		stageClient,
		progressPoller,
		publisher,
		log,
		cfg.Processors.DefaultBatchLimit,
	)
	icpSvc := service.NewICPService(icpRepo, log)

	campaignHandler := api.NewCampaignHandler(orchestrator)
	progressHandler := api.NewProgressHandler(orchestrator)
	icpHandler := api.NewICPHandler(icpSvc)

	serverCfg := web.NewConfig(cfg.Service.Name, cfg.Service.Port)
	serverCfg.Debug = cfg.Service.Debug
	serverCfg.ServiceVersion = cfg.Service.Version

	healthChecks := map[string]web.HealthChecker{
		"database": web.DatabaseHealthChecker(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
			defer cancel()
			return db.Ping(ctx)
		}),
	}
	if redisClient != nil {
		healthChecks["redis"] = web.RedisHealthChecker(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
			defer cancel()
			return redisClient.Ping(ctx).Err()
		})
	}

	return web.NewServer(serverCfg, log, func(router *gin.Engine) {
		web.RegisterHealthRoutes(router, cfg.Service.Name, cfg.Service.Version, healthChecks)
		api.SetupRoutes(router, campaignHandler, progressHandler, icpHandler, cfg.Auth.JWTSecret)
	})
}
