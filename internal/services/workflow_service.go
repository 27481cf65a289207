package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"shoot-workflow-backend/internal/blobstore"
	"shoot-workflow-backend/internal/database"
	"shoot-workflow-backend/internal/models"
	"shoot-workflow-backend/internal/workflow"
)

const (
	UploadTypeRaw    = "raw"
	UploadTypeEdited = "edited"

	recentLogLimit = 10
	dateLayout     = "2006-01-02"
)

// WorkflowService orchestrates the workflow core for the HTTP layer.
type WorkflowService struct {
	store   database.Store
	folders *workflow.Provisioner
	files   *workflow.Lifecycle
}

func NewWorkflowService(store database.Store, folders *workflow.Provisioner, files *workflow.Lifecycle) *WorkflowService {
	return &WorkflowService{
		store:   store,
		folders: folders,
		files:   files,
	}
}

// UploadResult is the outcome of a batch; one file failing never fails the
// others.
type UploadResult struct {
	Files  []models.ShootFile
	Errors []models.UploadErrorInfo
	Status models.WorkflowStatus
}

// WorkflowSummary is the read-only projection of a shoot's progress.
type WorkflowSummary struct {
	Shoot     *models.Shoot
	Counts    models.StageCounts
	RecentLog []models.WorkflowLog
}

// CreateShoot books a shoot. When both date and time are known the remote
// folders are provisioned in the same unit of work; if that fails nothing is
// kept.
func (s *WorkflowService) CreateShoot(ctx context.Context, req models.CreateShootRequest, actor uuid.UUID) (*models.Shoot, error) {
	shoot, err := s.newShoot(ctx, req, actor)
	if err != nil {
		return nil, err
	}

	var changes workflow.Changes
	err = s.store.InTx(ctx, func(ctx context.Context, repo database.Repository) error {
		if err := repo.CreateShoot(ctx, shoot); err != nil {
			return &workflow.PersistenceError{Op: "create shoot", Err: err}
		}
		err := workflow.AppendLog(ctx, repo, shoot.ID, actor, models.ActionShootCreated,
			fmt.Sprintf("Shoot booked for %s", shoot.Address),
			map[string]any{"status": shoot.Status, "workflow_status": string(shoot.WorkflowStatus)})
		if err != nil {
			return &workflow.PersistenceError{Op: "append shoot log", Err: err}
		}

		if !shoot.IsFullyScheduled() {
			return nil
		}
		mappings, err := s.folders.EnsureShootFolders(ctx, repo, shoot)
		if err != nil {
			return err
		}
		if err := logFolders(ctx, repo, shoot.ID, actor, mappings); err != nil {
			return err
		}
		changes.Folders = mappings
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.files.Publish(ctx, changes)
	log.Printf("services: shoot created shoot_id=%s status=%s folders=%d", shoot.ID, shoot.Status, len(changes.Folders))
	return shoot, nil
}

func (s *WorkflowService) newShoot(ctx context.Context, req models.CreateShootRequest, actor uuid.UUID) (*models.Shoot, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, &ValidationError{Field: "client_id", Message: "must be a uuid"}
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return nil, &ValidationError{Field: "service_id", Message: "must be a uuid"}
	}
	svc, err := s.store.GetService(ctx, serviceID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, &ValidationError{Field: "service_id", Message: "unknown service"}
	}
	if err != nil {
		return nil, err
	}

	shoot := &models.Shoot{
		ID:             uuid.New(),
		ClientID:       clientID,
		ServiceID:      svc.ID,
		ServiceName:    svc.Name,
		Address:        strings.TrimSpace(req.Address),
		City:           strings.TrimSpace(req.City),
		State:          strings.TrimSpace(req.State),
		Zip:            strings.TrimSpace(req.Zip),
		ScheduledTime:  models.NullString(strings.TrimSpace(req.Time)),
		BaseQuote:      req.BaseQuote,
		TaxAmount:      req.TaxAmount,
		TotalQuote:     req.TotalQuote,
		PaymentStatus:  req.PaymentStatus,
		WorkflowStatus: models.WorkflowBooked,
		ShootNotes:     models.NullString(req.Notes),
		CreatedBy:      actor,
	}
	if shoot.PaymentStatus == "" {
		shoot.PaymentStatus = "unpaid"
	}
	if req.PhotographerID != "" {
		id, err := uuid.Parse(req.PhotographerID)
		if err != nil {
			return nil, &ValidationError{Field: "photographer_id", Message: "must be a uuid"}
		}
		shoot.PhotographerID = uuid.NullUUID{UUID: id, Valid: true}
	}
	if req.ServiceCategory != "" {
		c, ok := models.ParseServiceCategory(req.ServiceCategory)
		if !ok {
			return nil, &ValidationError{Field: "service_category", Message: "must be P, iGuide or Video"}
		}
		shoot.ServiceCategory = models.NullString(string(c))
	}
	if req.ScheduledDate != "" {
		d, err := time.Parse(dateLayout, req.ScheduledDate)
		if err != nil {
			return nil, &ValidationError{Field: "scheduled_date", Message: "must be YYYY-MM-DD"}
		}
		shoot.ScheduledDate = models.NullTime(d)
	}

	shoot.Status = models.ShootStatusOnHold
	if shoot.IsFullyScheduled() {
		shoot.Status = models.ShootStatusScheduled
	}
	return shoot, nil
}

func logFolders(ctx context.Context, repo database.Repository, shootID, actor uuid.UUID, mappings []models.FolderMapping) error {
	if len(mappings) == 0 {
		return nil
	}
	paths := make([]string, 0, len(mappings))
	for _, m := range mappings {
		paths = append(paths, m.RemotePath)
	}
	err := workflow.AppendLog(ctx, repo, shootID, actor, models.ActionFoldersProvisioned,
		fmt.Sprintf("%d folders provisioned", len(mappings)),
		map[string]any{"folders": paths})
	if err != nil {
		return &workflow.PersistenceError{Op: "append folders log", Err: err}
	}
	return nil
}

// ProvisionFolders creates any missing folders of the shoot. Folders that
// could be created are kept even when others fail.
func (s *WorkflowService) ProvisionFolders(ctx context.Context, shootID, actor uuid.UUID) ([]models.FolderMapping, error) {
	shoot, err := s.store.GetShoot(ctx, shootID)
	if err != nil {
		return nil, err
	}

	before, err := s.store.ListFolders(ctx, shootID)
	if err != nil {
		return nil, err
	}
	mappings, provisionErr := s.folders.EnsureShootFolders(ctx, s.store, shoot)

	if created := newMappings(before, mappings); len(created) > 0 {
		if err := logFolders(ctx, s.store, shootID, actor, created); err != nil {
			log.Printf("services: %v shoot_id=%s", err, shootID)
		}
		s.files.Publish(ctx, workflow.Changes{Folders: created})
	}
	return mappings, provisionErr
}

func newMappings(before, after []models.FolderMapping) []models.FolderMapping {
	seen := make(map[uuid.UUID]bool, len(before))
	for _, m := range before {
		seen[m.ID] = true
	}
	var out []models.FolderMapping
	for _, m := range after {
		if !seen[m.ID] {
			out = append(out, m)
		}
	}
	return out
}

func (s *WorkflowService) GetShoot(ctx context.Context, shootID uuid.UUID) (*models.Shoot, error) {
	return s.store.GetShoot(ctx, shootID)
}

func (s *WorkflowService) ListShoots(ctx context.Context, filter database.ShootFilter) ([]models.Shoot, error) {
	if filter.WorkflowStatus != "" && !filter.WorkflowStatus.Valid() {
		return nil, &ValidationError{Field: "workflow_status", Message: "unknown status"}
	}
	return s.store.ListShoots(ctx, filter)
}

func (s *WorkflowService) ListFiles(ctx context.Context, shootID uuid.UUID) ([]models.ShootFile, error) {
	if _, err := s.store.GetShoot(ctx, shootID); err != nil {
		return nil, err
	}
	return s.store.ListFiles(ctx, shootID)
}

// UploadRawFiles stores a batch of raw (or, with uploadType edited, already
// edited) files. The shoot must accept uploads of that kind; after that each
// file succeeds or fails on its own.
func (s *WorkflowService) UploadRawFiles(ctx context.Context, shootID uuid.UUID, uploads []workflow.Upload, uploader uuid.UUID, category models.ServiceCategory, uploadType string) (*UploadResult, error) {
	shoot, err := s.store.GetShoot(ctx, shootID)
	if err != nil {
		return nil, err
	}

	put := s.files.UploadToTodo
	allowed := shoot.CanUploadRawFiles()
	expected := []string{string(models.WorkflowBooked), string(models.WorkflowPhotosUploaded)}
	switch uploadType {
	case "", UploadTypeRaw:
	case UploadTypeEdited:
		put = s.files.UploadToCompleted
		allowed = shoot.CanUploadEditedFiles()
		expected = append(expected, string(models.WorkflowEditingComplete))
	default:
		return nil, &ValidationError{Field: "upload_type", Message: "must be raw or edited"}
	}
	if !allowed {
		return nil, &workflow.StageGuardViolation{Subject: "shoot", ID: shoot.ID, Expected: expected, Actual: string(shoot.WorkflowStatus)}
	}

	result := &UploadResult{}
	for _, up := range uploads {
		file, err := put(ctx, shootID, up, uploader, category)
		if err != nil {
			log.Printf("services: upload failed shoot_id=%s filename=%s: %v", shootID, up.Filename, err)
			result.Errors = append(result.Errors, uploadError(up.Filename, err))
			continue
		}
		result.Files = append(result.Files, *file)
	}

	return s.finishBatch(ctx, shootID, result)
}

// CopyFiles copies files already in the blob store into the shoot's ToDo
// folder.
func (s *WorkflowService) CopyFiles(ctx context.Context, shootID uuid.UUID, items []models.CopyFileItem, actor uuid.UUID, category models.ServiceCategory) (*UploadResult, error) {
	shoot, err := s.store.GetShoot(ctx, shootID)
	if err != nil {
		return nil, err
	}
	if !shoot.CanUploadRawFiles() {
		return nil, &workflow.StageGuardViolation{
			Subject:  "shoot",
			ID:       shoot.ID,
			Expected: []string{string(models.WorkflowBooked), string(models.WorkflowPhotosUploaded)},
			Actual:   string(shoot.WorkflowStatus),
		}
	}

	result := &UploadResult{}
	for _, item := range items {
		file, err := s.files.CopyToTodo(ctx, shootID, item.Path, item.Name, actor, category)
		if err != nil {
			log.Printf("services: copy failed shoot_id=%s path=%s: %v", shootID, item.Path, err)
			result.Errors = append(result.Errors, uploadError(item.Name, err))
			continue
		}
		result.Files = append(result.Files, *file)
	}

	return s.finishBatch(ctx, shootID, result)
}

func (s *WorkflowService) finishBatch(ctx context.Context, shootID uuid.UUID, result *UploadResult) (*UploadResult, error) {
	shoot, err := s.store.GetShoot(ctx, shootID)
	if err != nil {
		return nil, err
	}
	result.Status = shoot.WorkflowStatus
	return result, nil
}

// uploadError describes a per-file failure without provider internals.
func uploadError(filename string, err error) models.UploadErrorInfo {
	var (
		blobErr   *blobstore.Error
		guard     *workflow.StageGuardViolation
		folderErr *workflow.FolderResolutionError
		persist   *workflow.PersistenceError
	)
	switch {
	case errors.As(err, &guard):
		return models.UploadErrorInfo{Filename: filename, Error: guard.Error(), Stage: "guard", Code: "stage_guard"}
	case errors.As(err, &folderErr):
		return models.UploadErrorInfo{Filename: filename, Error: "remote folder could not be resolved", Stage: "folder", Code: "folder_resolution"}
	case errors.As(err, &blobErr):
		return models.UploadErrorInfo{
			Filename: filename,
			Error:    fmt.Sprintf("remote storage %s failed (%s)", blobErr.Op, blobErr.Kind),
			Stage:    blobErr.Op,
			Code:     string(blobErr.Kind),
		}
	case errors.As(err, &persist):
		return models.UploadErrorInfo{Filename: filename, Error: "failed to save file record", Stage: "database", Code: "persistence"}
	case errors.Is(err, context.DeadlineExceeded):
		return models.UploadErrorInfo{Filename: filename, Error: "timed out", Stage: "upload", Code: string(blobstore.KindTransient)}
	}
	return models.UploadErrorInfo{Filename: filename, Error: "unexpected error", Stage: "unknown", Code: string(blobstore.KindUnknown)}
}

func (s *WorkflowService) PromoteFile(ctx context.Context, shootID, fileID, actor uuid.UUID) (*models.ShootFile, error) {
	return s.files.PromoteToCompleted(ctx, shootID, fileID, actor)
}

// VerifyFile verifies a completed file: the stage is checked first, then the
// file is copied into the artifact store, then verification and the status
// recompute commit together.
func (s *WorkflowService) VerifyFile(ctx context.Context, shootID, fileID, actor uuid.UUID, notes string) (*models.ShootFile, error) {
	file, err := s.store.GetFile(ctx, shootID, fileID)
	if err != nil {
		return nil, err
	}
	if !file.CanVerify() {
		return nil, &workflow.StageGuardViolation{Subject: "file", ID: file.ID, Expected: []string{string(models.StageCompleted)}, Actual: string(file.WorkflowStage)}
	}

	localPath, err := s.files.CopyToLocalStorage(ctx, file)
	if err != nil {
		return nil, err
	}

	var (
		verified *models.ShootFile
		changes  workflow.Changes
	)
	err = s.store.InTx(ctx, func(ctx context.Context, repo database.Repository) error {
		shoot, err := repo.LockShoot(ctx, shootID)
		if err != nil {
			return err
		}
		current, err := repo.GetFile(ctx, shootID, fileID)
		if err != nil {
			return err
		}
		current.LocalPath = models.NullString(localPath)
		if err := s.files.Verify(ctx, repo, current, actor, notes, &changes); err != nil {
			return err
		}
		st, err := s.files.Engine().RecomputeShootStatus(ctx, repo, shoot, actor)
		if err != nil {
			return err
		}
		changes.Shoot = append(changes.Shoot, st...)
		verified = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.files.Publish(ctx, changes)
	return verified, nil
}

// ArchiveFile retires a verified file.
func (s *WorkflowService) ArchiveFile(ctx context.Context, shootID, fileID, actor uuid.UUID) (*models.ShootFile, error) {
	var (
		archived *models.ShootFile
		changes  workflow.Changes
	)
	err := s.store.InTx(ctx, func(ctx context.Context, repo database.Repository) error {
		shoot, err := repo.LockShoot(ctx, shootID)
		if err != nil {
			return err
		}
		file, err := repo.GetFile(ctx, shootID, fileID)
		if err != nil {
			return err
		}
		if err := s.files.Archive(ctx, repo, file, actor, &changes); err != nil {
			return err
		}
		st, err := s.files.Engine().RecomputeShootStatus(ctx, repo, shoot, actor)
		if err != nil {
			return err
		}
		changes.Shoot = append(changes.Shoot, st...)
		archived = file
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.files.Publish(ctx, changes)
	return archived, nil
}

// FinalizeShoot verifies every completed file and forces the shoot to
// target (admin_verified or completed). Files still in todo block it, so a
// finalized shoot never has unverified files.
func (s *WorkflowService) FinalizeShoot(ctx context.Context, shootID, actor uuid.UUID, target models.WorkflowStatus) (*models.Shoot, error) {
	if target != models.WorkflowAdminVerified && target != models.WorkflowCompleted {
		return nil, workflow.ErrInvalidOverride
	}

	files, err := s.ListFiles(ctx, shootID)
	if err != nil {
		return nil, err
	}
	if err := requireNoTodo(files); err != nil {
		return nil, err
	}

	localPaths := make(map[uuid.UUID]string)
	for i := range files {
		f := &files[i]
		if f.WorkflowStage != models.StageCompleted {
			continue
		}
		loc, err := s.files.CopyToLocalStorage(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("failed to copy %s to local storage: %w", f.Filename, err)
		}
		localPaths[f.ID] = loc
	}

	var (
		shoot   *models.Shoot
		changes workflow.Changes
	)
	err = s.store.InTx(ctx, func(ctx context.Context, repo database.Repository) error {
		var err error
		shoot, err = repo.LockShoot(ctx, shootID)
		if err != nil {
			return err
		}
		current, err := repo.ListFiles(ctx, shootID)
		if err != nil {
			return &workflow.PersistenceError{Op: "list files", Err: err}
		}
		if err := requireNoTodo(current); err != nil {
			return err
		}

		for i := range current {
			f := &current[i]
			if f.WorkflowStage != models.StageCompleted {
				continue
			}
			loc, ok := localPaths[f.ID]
			if !ok {
				return fmt.Errorf("file %s was added while finalizing, retry", f.ID)
			}
			f.LocalPath = models.NullString(loc)
			if err := s.files.Verify(ctx, repo, f, actor, "verified on finalize", &changes); err != nil {
				return err
			}
		}

		st, err := s.files.Engine().RecomputeShootStatus(ctx, repo, shoot, actor)
		if err != nil {
			return err
		}
		changes.Shoot = append(changes.Shoot, st...)

		ch, changed, err := s.files.Engine().Override(ctx, repo, shoot, target, actor)
		if err != nil {
			return err
		}
		if changed {
			changes.Shoot = append(changes.Shoot, ch)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.files.Publish(ctx, changes)
	log.Printf("services: shoot finalized shoot_id=%s status=%s verified=%d", shootID, shoot.WorkflowStatus, len(changes.Files))
	return shoot, nil
}

func requireNoTodo(files []models.ShootFile) error {
	for _, f := range files {
		if f.WorkflowStage == models.StageTodo {
			return &workflow.StageGuardViolation{
				Subject:  "file",
				ID:       f.ID,
				Expected: []string{string(models.StageCompleted), string(models.StageVerified), string(models.StageArchived)},
				Actual:   string(f.WorkflowStage),
			}
		}
	}
	return nil
}

func (s *WorkflowService) GetWorkflowStatus(ctx context.Context, shootID uuid.UUID) (*WorkflowSummary, error) {
	shoot, err := s.store.GetShoot(ctx, shootID)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.CountFilesByStage(ctx, shootID)
	if err != nil {
		return nil, err
	}
	logs, err := s.store.ListLogs(ctx, shootID, recentLogLimit)
	if err != nil {
		return nil, err
	}
	return &WorkflowSummary{Shoot: shoot, Counts: counts, RecentLog: logs}, nil
}

// UpdateNotes writes the given note fields. Every field must be writable by
// role, otherwise nothing is written.
func (s *WorkflowService) UpdateNotes(ctx context.Context, shootID, actor uuid.UUID, role string, notes map[models.NoteField]string) (*models.Shoot, error) {
	if len(notes) == 0 {
		return nil, &ValidationError{Field: "notes", Message: "no note fields given"}
	}

	writable := make(map[models.NoteField]bool)
	for _, f := range models.WritableNoteFields(role) {
		writable[f] = true
	}
	fields := make([]string, 0, len(notes))
	for f := range notes {
		if !writable[f] {
			return nil, &NotePermissionError{Role: role, Field: f}
		}
		fields = append(fields, string(f))
	}
	sort.Strings(fields)

	err := s.store.InTx(ctx, func(ctx context.Context, repo database.Repository) error {
		if _, err := repo.LockShoot(ctx, shootID); err != nil {
			return err
		}
		if err := repo.UpdateShootNotes(ctx, shootID, notes); err != nil {
			return &workflow.PersistenceError{Op: "update notes", Err: err}
		}
		err := workflow.AppendLog(ctx, repo, shootID, actor, models.ActionNotesUpdated,
			"Notes updated: "+strings.Join(fields, ", "),
			map[string]any{"fields": fields, "role": role})
		if err != nil {
			return &workflow.PersistenceError{Op: "append notes log", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.store.GetShoot(ctx, shootID)
}
