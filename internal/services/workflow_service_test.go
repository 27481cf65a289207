package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shoot-workflow-backend/internal/blobstore"
	"shoot-workflow-backend/internal/database"
	"shoot-workflow-backend/internal/models"
	"shoot-workflow-backend/internal/test/fakes"
	"shoot-workflow-backend/internal/workflow"
)

type env struct {
	svc       *WorkflowService
	store     *database.MemoryStore
	blobs     *fakes.BlobStore
	artifacts *fakes.ArtifactStore
	service   models.Service
	admin     uuid.UUID
}

func newEnv(t *testing.T, serviceName string) *env {
	t.Helper()
	e := &env{
		store:     database.NewMemoryStore(),
		blobs:     fakes.NewBlobStore(),
		artifacts: fakes.NewArtifactStore(),
		service:   models.Service{ID: uuid.New(), Name: serviceName},
		admin:     uuid.New(),
	}
	e.store.AddService(e.service)

	folders := workflow.NewProvisioner(e.blobs, "", time.Second, nil)
	life := workflow.NewLifecycle(workflow.LifecycleConfig{
		Store:       e.store,
		Blobs:       e.blobs,
		Provisioner: folders,
		Artifacts:   e.artifacts,
		BlobTimeout: time.Second,
	})
	e.svc = NewWorkflowService(e.store, folders, life)
	return e
}

func (e *env) request() models.CreateShootRequest {
	return models.CreateShootRequest{
		ClientID:      uuid.NewString(),
		ServiceID:     e.service.ID.String(),
		Address:       "123 Main St.",
		City:          "Austin",
		State:         "TX",
		Zip:           "78701",
		ScheduledDate: "2025-01-18",
		Time:          "10:30",
		BaseQuote:     200,
		TaxAmount:     16.5,
		TotalQuote:    216.5,
	}
}

func (e *env) createShoot(t *testing.T) *models.Shoot {
	t.Helper()
	s, err := e.svc.CreateShoot(context.Background(), e.request(), e.admin)
	require.NoError(t, err)
	return s
}

func (e *env) uploads(names ...string) []workflow.Upload {
	out := make([]workflow.Upload, len(names))
	for i, n := range names {
		out[i] = workflow.Upload{Filename: n, Data: []byte("data:" + n)}
	}
	return out
}

func TestCreateShootScheduledProvisionsFolders(t *testing.T) {
	e := newEnv(t, "Standard Photos")
	ctx := context.Background()

	s := e.createShoot(t)
	assert.Equal(t, models.ShootStatusScheduled, s.Status)
	assert.Equal(t, models.WorkflowBooked, s.WorkflowStatus)
	assert.Equal(t, "unpaid", s.PaymentStatus)

	folders, err := e.store.ListFolders(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, folders, 2)
	for _, f := range folders {
		assert.Equal(t, models.CategoryPhoto, f.ServiceCategory)
	}
	assert.Equal(t, 2, e.blobs.Count("create_folder"))

	logs, err := e.store.ListLogs(ctx, s.ID, 0)
	require.NoError(t, err)
	var actions []string
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	assert.ElementsMatch(t, []string{models.ActionShootCreated, models.ActionFoldersProvisioned}, actions)
}

func TestCreateShootWithoutTimeIsOnHold(t *testing.T) {
	e := newEnv(t, "Standard Photos")
	req := e.request()
	req.Time = ""

	s, err := e.svc.CreateShoot(context.Background(), req, e.admin)
	require.NoError(t, err)
	assert.Equal(t, models.ShootStatusOnHold, s.Status)
	assert.Zero(t, e.blobs.Count("create_folder"))
}

func TestCreateShootRollsBackWhenProvisioningFails(t *testing.T) {
	e := newEnv(t, "Standard Photos")
	e.blobs.Fail["create_folder /RealEstatePhotos/Completed"] = &blobstore.Error{Provider: "fake", Op: "create_folder", Kind: blobstore.KindAuth}

	_, err := e.svc.CreateShoot(context.Background(), e.request(), e.admin)
	var fre *workflow.FolderResolutionError
	require.True(t, errors.As(err, &fre))

	shoots, err := e.store.ListShoots(context.Background(), database.ShootFilter{})
	require.NoError(t, err)
	assert.Empty(t, shoots)
}

func TestCreateShootValidation(t *testing.T) {
	e := newEnv(t, "Standard Photos")

	req := e.request()
	req.ServiceID = uuid.NewString()
	_, err := e.svc.CreateShoot(context.Background(), req, e.admin)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "service_id", ve.Field)

	req = e.request()
	req.ScheduledDate = "18/01/2025"
	_, err = e.svc.CreateShoot(context.Background(), req, e.admin)
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "scheduled_date", ve.Field)
}

func TestUploadRawFilesCollectsPerFileErrors(t *testing.T) {
	e := newEnv(t, "Standard Photos")
	s := e.createShoot(t)
	e.blobs.Fail["_b.jpg"] = &blobstore.Error{Provider: "fake", Op: "upload", Kind: blobstore.KindTransient, Err: errors.New("token=secret")}

	res, err := e.svc.UploadRawFiles(context.Background(), s.ID, e.uploads("a.jpg", "b.jpg", "c.jpg"), e.admin, "", UploadTypeRaw)
	require.NoError(t, err)
	require.Len(t, res.Files, 2)
	assert.Equal(t, "a.jpg", res.Files[0].Filename)
	assert.Equal(t, "c.jpg", res.Files[1].Filename)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, models.UploadErrorInfo{
		Filename: "b.jpg",
		Error:    "remote storage upload failed (transient)",
		Stage:    "upload",
		Code:     "transient",
	}, res.Errors[0])
	assert.Equal(t, models.WorkflowPhotosUploaded, res.Status)
}

func TestUploadRawFilesGuardsShootStatus(t *testing.T) {
	e := newEnv(t, "Standard Photos")
	s := e.createShoot(t)
	ctx := context.Background()

	res, err := e.svc.UploadRawFiles(ctx, s.ID, e.uploads("a.jpg"), e.admin, "", UploadTypeRaw)
	require.NoError(t, err)
	_, err = e.svc.PromoteFile(ctx, s.ID, res.Files[0].ID, e.admin)
	require.NoError(t, err)

	_, err = e.svc.UploadRawFiles(ctx, s.ID, e.uploads("late.jpg"), e.admin, "", UploadTypeRaw)
	var guard *workflow.StageGuardViolation
	require.True(t, errors.As(err, &guard))
	assert.Equal(t, "editing_complete", guard.Actual)

	edited, err := e.svc.UploadRawFiles(ctx, s.ID, e.uploads("retouch.jpg"), e.admin, "", UploadTypeEdited)
	require.NoError(t, err)
	require.Len(t, edited.Files, 1)
	assert.Equal(t, models.StageCompleted, edited.Files[0].WorkflowStage)
	assert.Equal(t, models.WorkflowEditingComplete, edited.Status)

	_, err = e.svc.UploadRawFiles(ctx, s.ID, e.uploads("x.jpg"), e.admin, "", "final")
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestUploadRawFilesUnknownShoot(t *testing.T) {
	e := newEnv(t, "Standard Photos")
	_, err := e.svc.UploadRawFiles(context.Background(), uuid.New(), e.uploads("a.jpg"), e.admin, "", UploadTypeRaw)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestCopyFiles(t *testing.T) {
	e := newEnv(t, "Standard Photos")
	s := e.createShoot(t)
	e.blobs.Put("/inbox/a.jpg", []byte("a"))

	res, err := e.svc.CopyFiles(context.Background(), s.ID, []models.CopyFileItem{
		{Path: "/inbox/a.jpg", Name: "a.jpg"},
		{Path: "/inbox/missing.jpg", Name: "missing.jpg"},
	}, e.admin, "")
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "missing.jpg", res.Errors[0].Filename)
	assert.Equal(t, "not_found", res.Errors[0].Code)
	assert.Equal(t, models.WorkflowPhotosUploaded, res.Status)
}

func TestVerifyFileMaterializesAndAdvances(t *testing.T) {
	e := newEnv(t, "Standard Photos")
	s := e.createShoot(t)
	ctx := context.Background()

	res, err := e.svc.UploadRawFiles(ctx, s.ID, e.uploads("a.jpg"), e.admin, "", UploadTypeRaw)
	require.NoError(t, err)
	fileID := res.Files[0].ID

	_, err = e.svc.VerifyFile(ctx, s.ID, fileID, e.admin, "")
	var guard *workflow.StageGuardViolation
	require.True(t, errors.As(err, &guard))
	assert.Equal(t, "todo", guard.Actual)
	assert.Zero(t, e.blobs.Count("download"), "guard is checked before any I/O")

	promoted, err := e.svc.PromoteFile(ctx, s.ID, fileID, e.admin)
	require.NoError(t, err)

	verified, err := e.svc.VerifyFile(ctx, s.ID, fileID, e.admin, "sharp")
	require.NoError(t, err)
	assert.Equal(t, models.StageVerified, verified.WorkflowStage)
	key := "shoots/" + s.ID.String() + "/final/" + promoted.StoredFilename
	assert.Equal(t, "/artifacts/"+key, verified.LocalPath.String)
	assert.Equal(t, []byte("data:a.jpg"), e.artifacts.Data[key])
	assert.Equal(t, promoted.RemotePath, verified.RemotePath)

	shoot, err := e.svc.GetShoot(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowAdminVerified, shoot.WorkflowStatus)
	assert.True(t, shoot.AdminVerifiedAt.Valid)

	stored, err := e.store.GetFile(ctx, s.ID, fileID)
	require.NoError(t, err)
	assert.Equal(t, verified.LocalPath, stored.LocalPath)
}

func TestVerifyFileDownloadFailureChangesNothing(t *testing.T) {
	e := newEnv(t, "Standard Photos")
	s := e.createShoot(t)
	ctx := context.Background()

	res, err := e.svc.UploadRawFiles(ctx, s.ID, e.uploads("a.jpg"), e.admin, "", UploadTypeRaw)
	require.NoError(t, err)
	fileID := res.Files[0].ID
	_, err = e.svc.PromoteFile(ctx, s.ID, fileID, e.admin)
	require.NoError(t, err)

	e.blobs.Fail["download "] = &blobstore.Error{Provider: "fake", Op: "download", Kind: blobstore.KindTransient}
	_, err = e.svc.VerifyFile(ctx, s.ID, fileID, e.admin, "")
	require.Error(t, err)

	stored, err := e.store.GetFile(ctx, s.ID, fileID)
	require.NoError(t, err)
	assert.Equal(t, models.StageCompleted, stored.WorkflowStage)
	shoot, err := e.svc.GetShoot(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowEditingComplete, shoot.WorkflowStatus)
}

func TestArchiveFile(t *testing.T) {
	e := newEnv(t, "Standard Photos")
	s := e.createShoot(t)
	ctx := context.Background()

	res, err := e.svc.UploadRawFiles(ctx, s.ID, e.uploads("a.jpg"), e.admin, "", UploadTypeRaw)
	require.NoError(t, err)
	fileID := res.Files[0].ID

	_, err = e.svc.ArchiveFile(ctx, s.ID, fileID, e.admin)
	var guard *workflow.StageGuardViolation
	require.True(t, errors.As(err, &guard))

	_, err = e.svc.PromoteFile(ctx, s.ID, fileID, e.admin)
	require.NoError(t, err)
	_, err = e.svc.VerifyFile(ctx, s.ID, fileID, e.admin, "")
	require.NoError(t, err)

	archived, err := e.svc.ArchiveFile(ctx, s.ID, fileID, e.admin)
	require.NoError(t, err)
	assert.Equal(t, models.StageArchived, archived.WorkflowStage)
}

func TestFinalizeShootRefusesTodoFiles(t *testing.T) {
	e := newEnv(t, "Standard Photos")
	s := e.createShoot(t)
	ctx := context.Background()

	_, err := e.svc.UploadRawFiles(ctx, s.ID, e.uploads("a.jpg"), e.admin, "", UploadTypeRaw)
	require.NoError(t, err)

	_, err = e.svc.FinalizeShoot(ctx, s.ID, e.admin, models.WorkflowCompleted)
	var guard *workflow.StageGuardViolation
	require.True(t, errors.As(err, &guard))
	assert.Equal(t, "file", guard.Subject)
	assert.Equal(t, "todo", guard.Actual)

	shoot, err := e.svc.GetShoot(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowPhotosUploaded, shoot.WorkflowStatus)
}

func TestFinalizeShootVerifiesCompletedFiles(t *testing.T) {
	e := newEnv(t, "Standard Photos")
	s := e.createShoot(t)
	ctx := context.Background()

	res, err := e.svc.UploadRawFiles(ctx, s.ID, e.uploads("a.jpg", "b.jpg"), e.admin, "", UploadTypeRaw)
	require.NoError(t, err)
	for _, f := range res.Files {
		_, err := e.svc.PromoteFile(ctx, s.ID, f.ID, e.admin)
		require.NoError(t, err)
	}

	shoot, err := e.svc.FinalizeShoot(ctx, s.ID, e.admin, models.WorkflowCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowCompleted, shoot.WorkflowStatus)
	assert.True(t, shoot.AdminVerifiedAt.Valid)

	files, err := e.svc.ListFiles(ctx, s.ID)
	require.NoError(t, err)
	for _, f := range files {
		assert.Equal(t, models.StageVerified, f.WorkflowStage)
		assert.True(t, f.LocalPath.Valid)
	}
	assert.Len(t, e.artifacts.Data, 2)

	summary, err := e.svc.GetWorkflowStatus(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Counts[models.StageVerified])
	var sawAdminVerified, sawOverride bool
	for _, l := range summary.RecentLog {
		switch l.Action {
		case models.ActionStatusChanged:
			if strings.Contains(string(l.Metadata), `"new_status":"admin_verified"`) {
				sawAdminVerified = true
			}
		case models.ActionWorkflowOverride:
			sawOverride = true
		}
	}
	assert.True(t, sawAdminVerified)
	assert.True(t, sawOverride)
}

func TestFinalizeEmptyShoot(t *testing.T) {
	e := newEnv(t, "Standard Photos")
	s := e.createShoot(t)

	shoot, err := e.svc.FinalizeShoot(context.Background(), s.ID, e.admin, models.WorkflowAdminVerified)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowAdminVerified, shoot.WorkflowStatus)
	assert.Equal(t, uuid.NullUUID{UUID: e.admin, Valid: true}, shoot.VerifiedBy)

	_, err = e.svc.FinalizeShoot(context.Background(), s.ID, e.admin, models.WorkflowEditingComplete)
	assert.ErrorIs(t, err, workflow.ErrInvalidOverride)
}

func TestGetWorkflowStatus(t *testing.T) {
	e := newEnv(t, "Standard Photos")
	s := e.createShoot(t)
	ctx := context.Background()

	_, err := e.svc.UploadRawFiles(ctx, s.ID, e.uploads("a.jpg", "b.jpg"), e.admin, "", UploadTypeRaw)
	require.NoError(t, err)

	summary, err := e.svc.GetWorkflowStatus(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowPhotosUploaded, summary.Shoot.WorkflowStatus)
	assert.Equal(t, 2, summary.Counts[models.StageTodo])
	assert.Equal(t, 2, summary.Counts.Total())
	assert.NotEmpty(t, summary.RecentLog)
	assert.LessOrEqual(t, len(summary.RecentLog), recentLogLimit)

	_, err = e.svc.GetWorkflowStatus(ctx, uuid.New())
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestUpdateNotesPermissions(t *testing.T) {
	e := newEnv(t, "Standard Photos")
	s := e.createShoot(t)
	ctx := context.Background()

	_, err := e.svc.UpdateNotes(ctx, s.ID, e.admin, models.RoleEditor, map[models.NoteField]string{
		models.NoteEditor:  "color corrected",
		models.NoteCompany: "internal",
	})
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := e.svc.GetShoot(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, got.EditorNotes.Valid, "nothing is written when one field is refused")

	updated, err := e.svc.UpdateNotes(ctx, s.ID, e.admin, models.RoleEditor, map[models.NoteField]string{
		models.NoteEditor: "color corrected",
	})
	require.NoError(t, err)
	assert.Equal(t, "color corrected", updated.EditorNotes.String)

	updated, err = e.svc.UpdateNotes(ctx, s.ID, e.admin, models.RoleAdmin, map[models.NoteField]string{
		models.NoteCompany:      "vip client",
		models.NotePhotographer: "bring drone",
	})
	require.NoError(t, err)
	assert.Equal(t, "vip client", updated.CompanyNotes.String)
	assert.Equal(t, "bring drone", updated.PhotographerNotes.String)

	_, err = e.svc.UpdateNotes(ctx, s.ID, e.admin, models.RoleClient, nil)
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestProvisionFoldersTwice(t *testing.T) {
	e := newEnv(t, "iGuide Tour")
	req := e.request()
	req.Time = ""
	s, err := e.svc.CreateShoot(context.Background(), req, e.admin)
	require.NoError(t, err)

	first, err := e.svc.ProvisionFolders(context.Background(), s.ID, e.admin)
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := e.svc.ProvisionFolders(context.Background(), s.ID, e.admin)
	require.NoError(t, err)
	assert.Len(t, second, 2)
	assert.Equal(t, 2, e.blobs.Count("create_folder"))

	all, err := e.store.ListFolders(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	for _, m := range all {
		assert.Equal(t, models.CategoryIGuide, m.ServiceCategory)
	}
}

func TestProvisionFoldersLogsOnlyNewFolders(t *testing.T) {
	e := newEnv(t, "Standard Photos")
	ctx := context.Background()
	req := e.request()
	req.Time = ""
	s, err := e.svc.CreateShoot(ctx, req, e.admin)
	require.NoError(t, err)

	e.blobs.Fail["create_folder /RealEstatePhotos/Completed"] = &blobstore.Error{Provider: "fake", Op: "create_folder", Kind: blobstore.KindTransient}
	first, err := e.svc.ProvisionFolders(ctx, s.ID, e.admin)
	require.Error(t, err)
	require.Len(t, first, 1)

	delete(e.blobs.Fail, "create_folder /RealEstatePhotos/Completed")
	second, err := e.svc.ProvisionFolders(ctx, s.ID, e.admin)
	require.NoError(t, err)
	require.Len(t, second, 2)

	_, err = e.svc.ProvisionFolders(ctx, s.ID, e.admin)
	require.NoError(t, err)

	logs, err := e.store.ListLogs(ctx, s.ID, 0)
	require.NoError(t, err)
	var folderLogs []models.WorkflowLog
	for _, l := range logs {
		if l.Action == models.ActionFoldersProvisioned {
			folderLogs = append(folderLogs, l)
		}
	}
	require.Len(t, folderLogs, 2)

	// Newest first.
	var latest struct {
		Folders []string `json:"folders"`
	}
	require.NoError(t, json.Unmarshal(folderLogs[0].Metadata, &latest))
	require.Len(t, latest.Folders, 1)
	assert.True(t, strings.HasPrefix(latest.Folders[0], "/RealEstatePhotos/Completed/"))
	assert.Equal(t, "1 folders provisioned", folderLogs[0].Details)
}
