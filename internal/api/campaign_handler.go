package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/prospect-pipeline/internal/domain"
)

// Campaigner defines the campaign operations needed by the handler.
type Campaigner interface {
	CreateCampaign(ctx context.Context, req *domain.CreateCampaignRequest) (*domain.Campaign, error)
	GetCampaign(ctx context.Context, id string) (*domain.Campaign, error)
	ListCampaigns(ctx context.Context) ([]domain.Campaign, error)
	StartCampaign(ctx context.Context, id string) (*domain.Campaign, error)
	PauseCampaign(ctx context.Context, id string) (*domain.Campaign, error)
	ResumeCampaign(ctx context.Context, id string) (*domain.Campaign, error)
	CompleteCampaign(ctx context.Context, id string) (*domain.Campaign, error)
	DeleteCampaign(ctx context.Context, id string) error
	AdvanceStage(ctx context.Context, id, action string) (*domain.AdvanceStageResult, error)
	MergeStats(ctx context.Context, id string, incoming domain.CampaignStats) (*domain.Campaign, error)
	ListLeads(ctx context.Context, campaignID string) ([]domain.Lead, error)
	CountLeadsByStatus(ctx context.Context, campaignID string) (map[domain.PipelineStatus]int64, error)
}

// CampaignHandler handles campaign lifecycle HTTP requests.
type CampaignHandler struct {
	svc Campaigner
}

// NewCampaignHandler creates a new campaign handler.
func NewCampaignHandler(svc Campaigner) *CampaignHandler {
	return &CampaignHandler{svc: svc}
}

// Create handles POST /api/v1/campaigns.
func (h *CampaignHandler) Create(c *gin.Context) {
	var req domain.CreateCampaignRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErr.Error()})
		return
	}

	campaign, createErr := h.svc.CreateCampaign(c.Request.Context(), &req)
	if createErr != nil {
		writeError(c, createErr)
		return
	}

	c.JSON(http.StatusCreated, campaign)
}

// List handles GET /api/v1/campaigns.
func (h *CampaignHandler) List(c *gin.Context) {
	campaigns, listErr := h.svc.ListCampaigns(c.Request.Context())
	if listErr != nil {
		writeError(c, listErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
}

// Get handles GET /api/v1/campaigns/:id.
func (h *CampaignHandler) Get(c *gin.Context) {
	campaign, getErr := h.svc.GetCampaign(c.Request.Context(), c.Param("id"))
	if getErr != nil {
		writeError(c, getErr)
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// Start handles POST /api/v1/campaigns/:id/start.
func (h *CampaignHandler) Start(c *gin.Context) {
	campaign, startErr := h.svc.StartCampaign(c.Request.Context(), c.Param("id"))
	if startErr != nil {
		writeError(c, startErr)
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// Pause handles POST /api/v1/campaigns/:id/pause.
func (h *CampaignHandler) Pause(c *gin.Context) {
	campaign, pauseErr := h.svc.PauseCampaign(c.Request.Context(), c.Param("id"))
	if pauseErr != nil {
		writeError(c, pauseErr)
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// Resume handles POST /api/v1/campaigns/:id/resume.
func (h *CampaignHandler) Resume(c *gin.Context) {
	campaign, resumeErr := h.svc.ResumeCampaign(c.Request.Context(), c.Param("id"))
	if resumeErr != nil {
		writeError(c, resumeErr)
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// Complete handles POST /api/v1/campaigns/:id/complete.
func (h *CampaignHandler) Complete(c *gin.Context) {
	campaign, completeErr := h.svc.CompleteCampaign(c.Request.Context(), c.Param("id"))
	if completeErr != nil {
		writeError(c, completeErr)
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// Delete handles DELETE /api/v1/campaigns/:id.
func (h *CampaignHandler) Delete(c *gin.Context) {
	if deleteErr := h.svc.DeleteCampaign(c.Request.Context(), c.Param("id")); deleteErr != nil {
		writeError(c, deleteErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Advance handles POST /api/v1/campaigns/:id/advance.
func (h *CampaignHandler) Advance(c *gin.Context) {
	var req domain.AdvanceStageRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErr.Error()})
		return
	}

	result, advanceErr := h.svc.AdvanceStage(c.Request.Context(), c.Param("id"), req.Stage)
	if advanceErr != nil {
		writeError(c, advanceErr)
		return
	}

	c.JSON(http.StatusOK, result)
}

// MergeStats handles POST /api/v1/campaigns/:id/stats.
// Called by the stage processors to report their counters.
func (h *CampaignHandler) MergeStats(c *gin.Context) {
	var incoming domain.CampaignStats
	if bindErr := c.ShouldBindJSON(&incoming); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErr.Error()})
		return
	}

	campaign, mergeErr := h.svc.MergeStats(c.Request.Context(), c.Param("id"), incoming)
	if mergeErr != nil {
		writeError(c, mergeErr)
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// ListLeads handles GET /api/v1/campaigns/:id/leads.
func (h *CampaignHandler) ListLeads(c *gin.Context) {
	leads, listErr := h.svc.ListLeads(c.Request.Context(), c.Param("id"))
	if listErr != nil {
		writeError(c, listErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leads": leads})
}

// LeadCounts handles GET /api/v1/campaigns/:id/leads/counts.
func (h *CampaignHandler) LeadCounts(c *gin.Context) {
	counts, countErr := h.svc.CountLeadsByStatus(c.Request.Context(), c.Param("id"))
	if countErr != nil {
		writeError(c, countErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"counts": counts})
}
