package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"shoot-workflow-backend/internal/database"
	"shoot-workflow-backend/internal/middleware"
	"shoot-workflow-backend/internal/models"
	"shoot-workflow-backend/internal/services"
	"shoot-workflow-backend/internal/workflow"
)

type ShootsHandler struct {
	svc *services.WorkflowService
}

func NewShootsHandler(svc *services.WorkflowService) *ShootsHandler {
	return &ShootsHandler{svc: svc}
}

// actorID reads the authenticated user, writing a 401 if there is none.
func actorID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return uuid.Nil, false
	}
	return id, true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// CreateShoot godoc
// @Summary     Book a shoot
// @Description Creates a shoot in workflow status booked. When both date and time are given the shoot is scheduled and its ToDo and Completed folders are provisioned; otherwise it is on_hold.
// @Tags        shoots
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateShootRequest true "Shoot"
// @Success     201 {object} models.ShootResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /shoots [post]
func (h *ShootsHandler) CreateShoot(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req models.CreateShootRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	shoot, err := h.svc.CreateShoot(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, "create shoot", err)
		return
	}
	c.JSON(http.StatusCreated, models.NewShootResponse(shoot))
}

// ListShoots godoc
// @Summary     List shoots
// @Tags        shoots
// @Produce     json
// @Security    Bearer
// @Param       workflow_status query string false "Filter by workflow status"
// @Param       client_id       query string false "Filter by client (UUID)"
// @Param       limit           query int    false "Maximum number of shoots"
// @Success     200 {object} models.ShootListResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /shoots [get]
func (h *ShootsHandler) ListShoots(c *gin.Context) {
	filter := database.ShootFilter{
		WorkflowStatus: models.WorkflowStatus(c.Query("workflow_status")),
	}
	if v := c.Query("client_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid client_id"})
			return
		}
		filter.ClientID = uuid.NullUUID{UUID: id, Valid: true}
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid limit"})
			return
		}
		filter.Limit = n
	}

	shoots, err := h.svc.ListShoots(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "list shoots", err)
		return
	}

	out := make([]models.ShootResponse, len(shoots))
	for i := range shoots {
		out[i] = models.NewShootResponse(&shoots[i])
	}
	c.JSON(http.StatusOK, models.ShootListResponse{Shoots: out})
}

// GetShoot godoc
// @Summary     Get a shoot
// @Tags        shoots
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID (UUID)"
// @Success     200 {object} models.ShootResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id} [get]
func (h *ShootsHandler) GetShoot(c *gin.Context) {
	shootID, ok := pathID(c, "shoot_id")
	if !ok {
		return
	}
	shoot, err := h.svc.GetShoot(c.Request.Context(), shootID)
	if err != nil {
		respondError(c, "get shoot", err)
		return
	}
	c.JSON(http.StatusOK, models.NewShootResponse(shoot))
}

// UpdateNotes godoc
// @Summary     Update shoot notes
// @Description Each role may only write its own note fields; a request naming any other field is rejected as a whole.
// @Tags        shoots
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID (UUID)"
// @Param       request body models.UpdateNotesRequest true "Notes"
// @Success     200 {object} models.ShootResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/notes [patch]
func (h *ShootsHandler) UpdateNotes(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	shootID, ok := pathID(c, "shoot_id")
	if !ok {
		return
	}

	var req models.UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	shoot, err := h.svc.UpdateNotes(c.Request.Context(), shootID, userID, middleware.Role(c), req.Fields())
	if err != nil {
		respondError(c, "update notes", err)
		return
	}
	c.JSON(http.StatusOK, models.NewShootResponse(shoot))
}

// ProvisionFolders godoc
// @Summary     Provision shoot folders
// @Description Creates any missing ToDo and Completed folders for the shoot's categories. Folders that already exist are reused.
// @Tags        shoots
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID (UUID)"
// @Success     200 {object} models.FoldersResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/folders [post]
func (h *ShootsHandler) ProvisionFolders(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	shootID, ok := pathID(c, "shoot_id")
	if !ok {
		return
	}

	mappings, err := h.svc.ProvisionFolders(c.Request.Context(), shootID, userID)
	if err != nil && len(mappings) == 0 {
		respondError(c, "provision folders", err)
		return
	}

	resp := models.FoldersResponse{Folders: make([]models.FolderResponse, len(mappings))}
	for i, m := range mappings {
		resp.Folders[i] = models.FolderResponse{
			FolderType:      string(m.FolderType),
			ServiceCategory: string(m.ServiceCategory),
			RemotePath:      m.RemotePath,
		}
	}
	resp.Errors = folderErrors(err)
	c.JSON(http.StatusOK, resp)
}

// folderErrors lists the folders that failed without provider details.
func folderErrors(err error) []string {
	if err == nil {
		return nil
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}

	var out []string
	for _, e := range errs {
		var folderErr *workflow.FolderResolutionError
		if errors.As(e, &folderErr) {
			out = append(out, string(folderErr.FolderType)+" folder ("+string(folderErr.Category)+") could not be created")
			continue
		}
		out = append(out, "folder could not be created")
	}
	return out
}

// FinalizeShoot godoc
// @Summary     Finalize a shoot
// @Description Admin override to admin_verified or completed. Refused while any file is still in ToDo; completed files are verified as part of the override.
// @Tags        shoots
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID (UUID)"
// @Param       request body models.FinalizeShootRequest true "Target status"
// @Success     200 {object} models.ShootResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/finalize [post]
func (h *ShootsHandler) FinalizeShoot(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	shootID, ok := pathID(c, "shoot_id")
	if !ok {
		return
	}

	var req models.FinalizeShootRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	shoot, err := h.svc.FinalizeShoot(c.Request.Context(), shootID, userID, models.WorkflowStatus(req.TargetStatus))
	if err != nil {
		respondError(c, "finalize shoot", err)
		return
	}
	c.JSON(http.StatusOK, models.NewShootResponse(shoot))
}

// GetWorkflowStatus godoc
// @Summary     Get workflow progress
// @Tags        shoots
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID (UUID)"
// @Success     200 {object} models.WorkflowStatusResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/workflow [get]
func (h *ShootsHandler) GetWorkflowStatus(c *gin.Context) {
	shootID, ok := pathID(c, "shoot_id")
	if !ok {
		return
	}

	summary, err := h.svc.GetWorkflowStatus(c.Request.Context(), shootID)
	if err != nil {
		respondError(c, "get workflow status", err)
		return
	}

	counts := make(map[string]int)
	for _, stage := range models.AllFileStages() {
		counts[string(stage)] = summary.Counts[stage]
	}
	recent := make([]models.WorkflowLogResponse, len(summary.RecentLog))
	for i := range summary.RecentLog {
		recent[i] = models.NewWorkflowLogResponse(&summary.RecentLog[i])
	}

	shoot := summary.Shoot
	c.JSON(http.StatusOK, models.WorkflowStatusResponse{
		ShootID:    shoot.ID.String(),
		Status:     string(shoot.WorkflowStatus),
		FileCounts: counts,
		TotalFiles: summary.Counts.Total(),
		RecentLog:  recent,
		CanUpload:  shoot.CanUploadRawFiles(),
		CanPromote: shoot.CanPromoteToCompleted(),
		CanVerify:  shoot.CanVerify(),
	})
}
