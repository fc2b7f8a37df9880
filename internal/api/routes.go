package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/prospect-pipeline/internal/web"
)

// SetupRoutes configures all API routes.
// The stats merge endpoint is public (called by stage processors inside the
// Docker network); everything else is protected with JWT.
func SetupRoutes(
	router *gin.Engine,
	campaignHandler *CampaignHandler,
	progressHandler *ProgressHandler,
	icpHandler *ICPHandler,
	jwtSecret string,
) {
	public, protected := web.SetupAPIRoutes(router, jwtSecret)

	// Stats ingest, called by stage processors
	public.POST("/campaigns/:id/stats", campaignHandler.MergeStats)

	// Campaign lifecycle
	protected.POST("/campaigns", campaignHandler.Create)
	protected.GET("/campaigns", campaignHandler.List)
	protected.GET("/campaigns/:id", campaignHandler.Get)
	protected.DELETE("/campaigns/:id", campaignHandler.Delete)
	protected.POST("/campaigns/:id/start", campaignHandler.Start)
	protected.POST("/campaigns/:id/pause", campaignHandler.Pause)
	protected.POST("/campaigns/:id/resume", campaignHandler.Resume)
	protected.POST("/campaigns/:id/complete", campaignHandler.Complete)
	protected.POST("/campaigns/:id/advance", campaignHandler.Advance)

	// Progress and leads
	protected.GET("/campaigns/:id/progress", progressHandler.Get)
	protected.GET("/campaigns/:id/progress/wait", progressHandler.Wait)
	protected.GET("/campaigns/:id/leads", campaignHandler.ListLeads)
	protected.GET("/campaigns/:id/leads/counts", campaignHandler.LeadCounts)

	// ICP configs
	protected.POST("/icp-configs", icpHandler.Create)
	protected.GET("/icp-configs", icpHandler.List)
	protected.GET("/icp-configs/:id", icpHandler.Get)
	protected.PUT("/icp-configs/:id", icpHandler.Update)
	protected.DELETE("/icp-configs/:id", icpHandler.Delete)
}
