package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"shoot-workflow-backend/internal/database"
	"shoot-workflow-backend/internal/dropbox"
	"shoot-workflow-backend/internal/models"
)

// DropboxHandler links the Dropbox account used for shoot folders. provider
// is nil when a static access token is configured.
type DropboxHandler struct {
	provider *dropbox.OAuthTokenProvider
	store    dropbox.TokenStore
}

func NewDropboxHandler(provider *dropbox.OAuthTokenProvider, store dropbox.TokenStore) *DropboxHandler {
	return &DropboxHandler{provider: provider, store: store}
}

func (h *DropboxHandler) requireOAuth(c *gin.Context) bool {
	if h.provider == nil {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "oauth not configured",
			Message: "dropbox is using a static access token",
		})
		return false
	}
	return true
}

// Connect godoc
// @Summary     Start linking Dropbox
// @Tags        dropbox
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.DropboxConnectResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /dropbox/connect [get]
func (h *DropboxHandler) Connect(c *gin.Context) {
	if !h.requireOAuth(c) {
		return
	}
	c.JSON(http.StatusOK, models.DropboxConnectResponse{
		AuthorizeURL: h.provider.AuthorizeURL(uuid.NewString()),
	})
}

// ExchangeCode godoc
// @Summary     Finish linking Dropbox
// @Description Exchanges the authorization code for a refresh token and stores it.
// @Tags        dropbox
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.DropboxTokenRequest true "Authorization code"
// @Success     200 {object} models.DropboxTokenResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /dropbox/token [post]
func (h *DropboxHandler) ExchangeCode(c *gin.Context) {
	if !h.requireOAuth(c) {
		return
	}

	var req models.DropboxTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	tok, err := h.provider.ExchangeCode(c.Request.Context(), req.Code)
	if err != nil {
		log.Printf("handlers: dropbox code exchange failed: %v", err)
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "dropbox code exchange failed"})
		return
	}
	c.JSON(http.StatusOK, models.DropboxTokenResponse{Connected: true, ExpiresAt: tok.ExpiresAt})
}

// TokenStatus godoc
// @Summary     Dropbox link status
// @Tags        dropbox
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.DropboxTokenResponse
// @Router      /dropbox/token [get]
func (h *DropboxHandler) TokenStatus(c *gin.Context) {
	if h.provider == nil {
		c.JSON(http.StatusOK, models.DropboxTokenResponse{Connected: true})
		return
	}

	tok, err := h.store.GetOAuthToken(c.Request.Context(), dropbox.ProviderName)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusOK, models.DropboxTokenResponse{Connected: false})
		return
	}
	if err != nil {
		respondError(c, "get dropbox token", err)
		return
	}
	c.JSON(http.StatusOK, models.DropboxTokenResponse{
		Connected: tok.RefreshToken != "",
		ExpiresAt: tok.ExpiresAt,
	})
}
