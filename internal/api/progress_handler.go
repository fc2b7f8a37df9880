package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/prospect-pipeline/internal/domain"
)

// ProgressReader defines the progress operations needed by the handler.
type ProgressReader interface {
	GetProgress(ctx context.Context, id string) (*domain.Campaign, []domain.StageView, error)
	WaitForStageProgress(ctx context.Context, id string, stage domain.Stage) (*domain.Campaign, []domain.StageView, error)
}

// ProgressResponse is the payload returned by the progress endpoints.
type ProgressResponse struct {
	CampaignID string                `json:"campaign_id"`
	Status     domain.CampaignStatus `json:"status"`
	Goal       int64                 `json:"meta_leads_total,omitempty"`
	Stats      domain.CampaignStats  `json:"stats"`
	Stages     []domain.StageView    `json:"stages"`
	TimedOut   bool                  `json:"timed_out,omitempty"`
}

// ProgressHandler handles campaign progress HTTP requests.
type ProgressHandler struct {
	svc ProgressReader
}

// NewProgressHandler creates a new progress handler.
func NewProgressHandler(svc ProgressReader) *ProgressHandler {
	return &ProgressHandler{svc: svc}
}

// Get handles GET /api/v1/campaigns/:id/progress.
func (h *ProgressHandler) Get(c *gin.Context) {
	campaign, views, progressErr := h.svc.GetProgress(c.Request.Context(), c.Param("id"))
	if progressErr != nil {
		writeError(c, progressErr)
		return
	}

	c.JSON(http.StatusOK, progressResponse(campaign, views, false))
}

// Wait handles GET /api/v1/campaigns/:id/progress/wait?stage=enrichment.
// Long-poll variant of Get: blocks until the stage's counter moves, then
// returns the refreshed snapshot. A poll timeout is not an error; the
// current snapshot is returned with timed_out set so clients can re-poll.
func (h *ProgressHandler) Wait(c *gin.Context) {
	stage := domain.Stage(c.Query("stage"))

	valid := false
	for _, s := range domain.AllStages() {
		if s == stage {
			valid = true
			break
		}
	}
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown stage"})
		return
	}

	id := c.Param("id")

	campaign, views, waitErr := h.svc.WaitForStageProgress(c.Request.Context(), id, stage)
	if errors.Is(waitErr, domain.ErrPollTimeout) {
		campaign, views, waitErr = h.svc.GetProgress(c.Request.Context(), id)
		if waitErr != nil {
			writeError(c, waitErr)
			return
		}

		c.JSON(http.StatusOK, progressResponse(campaign, views, true))
		return
	}
	if waitErr != nil {
		writeError(c, waitErr)
		return
	}

	c.JSON(http.StatusOK, progressResponse(campaign, views, false))
}

func progressResponse(campaign *domain.Campaign, views []domain.StageView, timedOut bool) ProgressResponse {
	return ProgressResponse{
		CampaignID: campaign.ID,
		Status:     campaign.Status,
		Goal:       campaign.Goal,
		Stats:      campaign.Stats,
		Stages:     views,
		TimedOut:   timedOut,
	}
}
