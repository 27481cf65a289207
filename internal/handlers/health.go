package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"shoot-workflow-backend/internal/models"
)

// Pinger is implemented by stores that can report their connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler godoc
// @Summary     Health check
// @Description Returns the health status of the API and its database
// @Tags        health
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Failure     503 {object} models.HealthResponse
// @Router      /health [get]
func HealthHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, models.HealthResponse{Status: "database unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
	}
}
