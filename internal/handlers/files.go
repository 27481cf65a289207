package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"shoot-workflow-backend/internal/models"
	"shoot-workflow-backend/internal/services"
	"shoot-workflow-backend/internal/workflow"
)

const maxMultipartMemory = 32 << 20

type FilesHandler struct {
	svc *services.WorkflowService
}

func NewFilesHandler(svc *services.WorkflowService) *FilesHandler {
	return &FilesHandler{svc: svc}
}

func parseCategory(c *gin.Context, v string) (models.ServiceCategory, bool) {
	if v == "" {
		return "", true
	}
	category, ok := models.ParseServiceCategory(v)
	if !ok {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid service_category",
			Message: "must be one of P, iGuide, Video",
		})
		return "", false
	}
	return category, true
}

func batchResponse(shootID string, result *services.UploadResult, extra []models.UploadErrorInfo) models.UploadResponse {
	files := make([]models.FileResponse, len(result.Files))
	for i := range result.Files {
		files[i] = models.NewFileResponse(&result.Files[i])
	}
	errs := append(extra, result.Errors...)
	if errs == nil {
		errs = []models.UploadErrorInfo{}
	}
	return models.UploadResponse{
		ShootID:      shootID,
		Files:        files,
		Errors:       errs,
		SuccessCount: len(files),
		ErrorCount:   len(errs),
		Status:       string(result.Status),
	}
}

// UploadFiles godoc
// @Summary     Upload files to a shoot
// @Description Uploads photographer files into the shoot's ToDo folder. With upload_type=edited the files go straight to Completed. Each file succeeds or fails on its own.
// @Tags        files
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       shoot_id         path     string true  "Shoot ID (UUID)"
// @Param       files            formData file   true  "Files (multiple allowed)"
// @Param       service_category formData string false "P, iGuide or Video"
// @Param       upload_type      formData string false "raw (default) or edited"
// @Success     200 {object} models.UploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/files [post]
func (h *FilesHandler) UploadFiles(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	shootID, ok := pathID(c, "shoot_id")
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}
	form := c.Request.MultipartForm
	if form == nil || len(form.File["files"]) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "no files uploaded",
			Message: "please provide files in the \"files\" field",
		})
		return
	}

	category, ok := parseCategory(c, c.PostForm("service_category"))
	if !ok {
		return
	}

	var (
		uploads    []workflow.Upload
		openErrors []models.UploadErrorInfo
	)
	for _, fh := range form.File["files"] {
		data, err := readPart(fh)
		if err != nil {
			openErrors = append(openErrors, models.UploadErrorInfo{
				Filename: fh.Filename,
				Error:    fmt.Sprintf("failed to read file: %v", err),
				Stage:    "file_open",
			})
			continue
		}
		uploads = append(uploads, workflow.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	result, err := h.svc.UploadRawFiles(c.Request.Context(), shootID, uploads, userID, category, c.PostForm("upload_type"))
	if err != nil {
		respondError(c, "upload files", err)
		return
	}
	c.JSON(http.StatusOK, batchResponse(shootID.String(), result, openErrors))
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}

// CopyFiles godoc
// @Summary     Copy remote files into a shoot
// @Description Copies files that already exist in remote storage into the shoot's ToDo folder.
// @Tags        files
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID (UUID)"
// @Param       request body models.CopyFilesRequest true "Files to copy"
// @Success     200 {object} models.UploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/files/copy [post]
func (h *FilesHandler) CopyFiles(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	shootID, ok := pathID(c, "shoot_id")
	if !ok {
		return
	}

	var req models.CopyFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}
	category, ok := parseCategory(c, req.ServiceCategory)
	if !ok {
		return
	}

	result, err := h.svc.CopyFiles(c.Request.Context(), shootID, req.Files, userID, category)
	if err != nil {
		respondError(c, "copy files", err)
		return
	}
	c.JSON(http.StatusOK, batchResponse(shootID.String(), result, nil))
}

// ListFiles godoc
// @Summary     List shoot files
// @Tags        files
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID (UUID)"
// @Success     200 {object} models.FilesResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/files [get]
func (h *FilesHandler) ListFiles(c *gin.Context) {
	shootID, ok := pathID(c, "shoot_id")
	if !ok {
		return
	}

	files, err := h.svc.ListFiles(c.Request.Context(), shootID)
	if err != nil {
		respondError(c, "list files", err)
		return
	}

	out := make([]models.FileResponse, len(files))
	for i := range files {
		out[i] = models.NewFileResponse(&files[i])
	}
	c.JSON(http.StatusOK, models.FilesResponse{Files: out})
}

// PromoteFile godoc
// @Summary     Move a file to Completed
// @Description Moves an edited file from the ToDo folder to the Completed folder.
// @Tags        files
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID (UUID)"
// @Param       file_id  path string true "File ID (UUID)"
// @Success     200 {object} models.FileResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/files/{file_id}/promote [post]
func (h *FilesHandler) PromoteFile(c *gin.Context) {
	h.fileAction(c, "promote file", func(c *gin.Context, ids fileIDs) (*models.ShootFile, error) {
		return h.svc.PromoteFile(c.Request.Context(), ids.shoot, ids.file, ids.actor)
	})
}

// VerifyFile godoc
// @Summary     Verify a completed file
// @Description Copies the file into local storage and marks it verified. Admin only.
// @Tags        files
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID (UUID)"
// @Param       file_id  path string true "File ID (UUID)"
// @Param       request body models.VerifyFileRequest false "Verification notes"
// @Success     200 {object} models.FileResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/files/{file_id}/verify [post]
func (h *FilesHandler) VerifyFile(c *gin.Context) {
	var req models.VerifyFileRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
			return
		}
	}
	h.fileAction(c, "verify file", func(c *gin.Context, ids fileIDs) (*models.ShootFile, error) {
		return h.svc.VerifyFile(c.Request.Context(), ids.shoot, ids.file, ids.actor, req.Notes)
	})
}

// ArchiveFile godoc
// @Summary     Archive a verified file
// @Tags        files
// @Produce     json
// @Security    Bearer
// @Param       shoot_id path string true "Shoot ID (UUID)"
// @Param       file_id  path string true "File ID (UUID)"
// @Success     200 {object} models.FileResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /shoots/{shoot_id}/files/{file_id}/archive [post]
func (h *FilesHandler) ArchiveFile(c *gin.Context) {
	h.fileAction(c, "archive file", func(c *gin.Context, ids fileIDs) (*models.ShootFile, error) {
		return h.svc.ArchiveFile(c.Request.Context(), ids.shoot, ids.file, ids.actor)
	})
}

type fileIDs struct {
	actor, shoot, file uuid.UUID
}

func (h *FilesHandler) fileAction(c *gin.Context, action string, fn func(*gin.Context, fileIDs) (*models.ShootFile, error)) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	shootID, ok := pathID(c, "shoot_id")
	if !ok {
		return
	}
	fileID, ok := pathID(c, "file_id")
	if !ok {
		return
	}

	file, err := fn(c, fileIDs{actor: userID, shoot: shootID, file: fileID})
	if err != nil {
		respondError(c, action, err)
		return
	}
	c.JSON(http.StatusOK, models.NewFileResponse(file))
}
