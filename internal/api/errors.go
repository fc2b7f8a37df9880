// Package api provides HTTP handlers for the prospect pipeline service.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/prospect-pipeline/internal/domain"
)

// writeError maps domain errors to HTTP responses. Validation failures are
// client errors, impossible transitions are conflicts, processor failures
// surface as bad gateway.
func writeError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	var transitionErr *domain.TransitionError
	var remoteErr *domain.RemoteProcessingError

	switch {
	case errors.Is(err, domain.ErrCampaignNotFound),
		errors.Is(err, domain.ErrICPConfigNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &remoteErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error": err.Error(),
			"stage": string(remoteErr.Stage),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}

	//nolint:errcheck // gin collects errors for the request log
	c.Error(err)
}
