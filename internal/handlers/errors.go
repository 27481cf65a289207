package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"shoot-workflow-backend/internal/blobstore"
	"shoot-workflow-backend/internal/database"
	"shoot-workflow-backend/internal/dropbox"
	"shoot-workflow-backend/internal/models"
	"shoot-workflow-backend/internal/services"
	"shoot-workflow-backend/internal/workflow"
)

// respondError maps workflow errors onto HTTP responses. Remote storage and
// database details are logged, never returned.
func respondError(c *gin.Context, action string, err error) {
	var (
		guard     *workflow.StageGuardViolation
		invalid   *services.ValidationError
		folderErr *workflow.FolderResolutionError
		blobErr   *blobstore.Error
		persist   *workflow.PersistenceError
	)

	switch {
	case errors.As(err, &guard):
		resp := models.ErrorResponse{Error: "invalid workflow stage", Message: guard.Error(), Expected: guard.Expected}
		if guard.Subject == "file" {
			resp.CurrentStage = guard.Actual
		} else {
			resp.CurrentStatus = guard.Actual
		}
		c.JSON(http.StatusBadRequest, resp)
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not found", Message: action})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: invalid.Error()})
	case errors.Is(err, workflow.ErrInvalidOverride):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "forbidden", Message: err.Error()})
	case errors.Is(err, dropbox.ErrNotConnected):
		log.Printf("handlers: %s: %v", action, err)
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "remote storage not connected", Message: action})
	case errors.As(err, &folderErr):
		log.Printf("handlers: %s: %v", action, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "folder resolution failed", Message: action})
	case errors.As(err, &blobErr):
		log.Printf("handlers: %s: %v", action, err)
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "remote storage error",
			Message: "remote storage " + blobErr.Op + " failed (" + string(blobErr.Kind) + ")",
		})
	case errors.Is(err, context.DeadlineExceeded):
		log.Printf("handlers: %s: %v", action, err)
		c.JSON(http.StatusGatewayTimeout, models.ErrorResponse{Error: "timed out", Message: action})
	case errors.As(err, &persist):
		log.Printf("handlers: %s: %v", action, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database error", Message: action})
	default:
		log.Printf("handlers: %s: %v", action, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal error", Message: action})
	}
}
