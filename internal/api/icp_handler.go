package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/prospect-pipeline/internal/domain"
)

// ICPManager defines the ICP config operations needed by the handler.
type ICPManager interface {
	Create(ctx context.Context, cfg *domain.ICPConfig) (*domain.ICPConfig, error)
	Get(ctx context.Context, id string) (*domain.ICPConfig, error)
	List(ctx context.Context) ([]domain.ICPConfig, error)
	Update(ctx context.Context, cfg *domain.ICPConfig) (*domain.ICPConfig, error)
	Delete(ctx context.Context, id string) error
}

// ICPHandler handles ICP config HTTP requests.
type ICPHandler struct {
	svc ICPManager
}

// NewICPHandler creates a new ICP config handler.
func NewICPHandler(svc ICPManager) *ICPHandler {
	return &ICPHandler{svc: svc}
}

// Create handles POST /api/v1/icp-configs.
func (h *ICPHandler) Create(c *gin.Context) {
	var cfg domain.ICPConfig
	if bindErr := c.ShouldBindJSON(&cfg); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErr.Error()})
		return
	}

	created, createErr := h.svc.Create(c.Request.Context(), &cfg)
	if createErr != nil {
		writeError(c, createErr)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// List handles GET /api/v1/icp-configs.
func (h *ICPHandler) List(c *gin.Context) {
	configs, listErr := h.svc.List(c.Request.Context())
	if listErr != nil {
		writeError(c, listErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"icp_configs": configs})
}

// Get handles GET /api/v1/icp-configs/:id.
func (h *ICPHandler) Get(c *gin.Context) {
	cfg, getErr := h.svc.Get(c.Request.Context(), c.Param("id"))
	if getErr != nil {
		writeError(c, getErr)
		return
	}

	c.JSON(http.StatusOK, cfg)
}

// Update handles PUT /api/v1/icp-configs/:id.
func (h *ICPHandler) Update(c *gin.Context) {
	var cfg domain.ICPConfig
	if bindErr := c.ShouldBindJSON(&cfg); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErr.Error()})
		return
	}
	cfg.ID = c.Param("id")

	updated, updateErr := h.svc.Update(c.Request.Context(), &cfg)
	if updateErr != nil {
		writeError(c, updateErr)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/icp-configs/:id.
func (h *ICPHandler) Delete(c *gin.Context) {
	if deleteErr := h.svc.Delete(c.Request.Context(), c.Param("id")); deleteErr != nil {
		writeError(c, deleteErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
