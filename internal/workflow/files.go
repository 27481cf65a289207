package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"shoot-workflow-backend/internal/artifacts"
	"shoot-workflow-backend/internal/blobstore"
	"shoot-workflow-backend/internal/database"
	"shoot-workflow-backend/internal/metrics"
	"shoot-workflow-backend/internal/models"
)

// Stored filename prefixes.
const (
	prefixTodo       = "TODO"
	prefixCompleted  = "COMPLETED"
	prefixCopiedTodo = "COPIED_TODO"
)

// Upload is one file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Lifecycle moves individual files through todo, completed, verified and
// archived, keeping the blob store, the database and the shoot status in
// step.
type Lifecycle struct {
	store     database.Store
	blobs     blobOps
	folders   *Provisioner
	engine    *Engine
	artifacts artifacts.Store
	publisher *Publisher
	now       func() time.Time
}

type LifecycleConfig struct {
	Store       database.Store
	Blobs       blobstore.Store
	Provisioner *Provisioner
	Engine      *Engine
	Artifacts   artifacts.Store
	Publisher   *Publisher
	Metrics     *metrics.Metrics
	BlobTimeout time.Duration
}

func NewLifecycle(cfg LifecycleConfig) *Lifecycle {
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = NewPublisher(nil, cfg.Metrics)
	}
	engine := cfg.Engine
	if engine == nil {
		engine = NewEngine()
	}
	return &Lifecycle{
		store:     cfg.Store,
		blobs:     newBlobOps(cfg.Blobs, cfg.BlobTimeout, cfg.Metrics),
		folders:   cfg.Provisioner,
		engine:    engine,
		artifacts: cfg.Artifacts,
		publisher: publisher,
		now:       time.Now,
	}
}

// newFile describes how a file enters a shoot.
type newFile struct {
	name       string
	mimeType   string
	size       int64
	prefix     string
	folderType models.FolderType
	stage      models.FileStage
	action     string
	allowed    func(*models.Shoot) bool
	// put places the bytes at dest and returns where they were stored.
	put func(ctx context.Context, dest string) (blobstore.Object, error)
}

// UploadToTodo stores a raw file in the shoot's ToDo folder for category.
// An empty category means the shoot's first category.
func (l *Lifecycle) UploadToTodo(ctx context.Context, shootID uuid.UUID, up Upload, uploader uuid.UUID, category models.ServiceCategory) (*models.ShootFile, error) {
	return l.add(ctx, shootID, uploader, category, newFile{
		name:       up.Filename,
		mimeType:   contentType(up.Filename, up.ContentType),
		size:       int64(len(up.Data)),
		prefix:     prefixTodo,
		folderType: models.FolderTodo,
		stage:      models.StageTodo,
		action:     models.ActionFileUploaded,
		allowed:    (*models.Shoot).CanUploadRawFiles,
		put: func(ctx context.Context, dest string) (blobstore.Object, error) {
			return l.blobs.upload(ctx, dest, up.Data, contentType(up.Filename, up.ContentType))
		},
	})
}

// UploadToCompleted stores an edited file directly in the Completed folder.
func (l *Lifecycle) UploadToCompleted(ctx context.Context, shootID uuid.UUID, up Upload, uploader uuid.UUID, category models.ServiceCategory) (*models.ShootFile, error) {
	return l.add(ctx, shootID, uploader, category, newFile{
		name:       up.Filename,
		mimeType:   contentType(up.Filename, up.ContentType),
		size:       int64(len(up.Data)),
		prefix:     prefixCompleted,
		folderType: models.FolderCompleted,
		stage:      models.StageCompleted,
		action:     models.ActionFileUploaded,
		allowed:    (*models.Shoot).CanUploadEditedFiles,
		put: func(ctx context.Context, dest string) (blobstore.Object, error) {
			return l.blobs.upload(ctx, dest, up.Data, contentType(up.Filename, up.ContentType))
		},
	})
}

// CopyToTodo copies a file that already lives in the blob store into the
// shoot's ToDo folder.
func (l *Lifecycle) CopyToTodo(ctx context.Context, shootID uuid.UUID, sourcePath, name string, actor uuid.UUID, category models.ServiceCategory) (*models.ShootFile, error) {
	if name == "" {
		name = path.Base(sourcePath)
	}
	return l.add(ctx, shootID, actor, category, newFile{
		name:       name,
		mimeType:   contentType(name, ""),
		prefix:     prefixCopiedTodo,
		folderType: models.FolderTodo,
		stage:      models.StageTodo,
		action:     models.ActionFileCopied,
		allowed:    (*models.Shoot).CanUploadRawFiles,
		put: func(ctx context.Context, dest string) (blobstore.Object, error) {
			return blobstore.Object{Path: dest}, l.blobs.copy(ctx, sourcePath, dest)
		},
	})
}

func (l *Lifecycle) add(ctx context.Context, shootID, actor uuid.UUID, category models.ServiceCategory, nf newFile) (*models.ShootFile, error) {
	shoot, err := l.store.GetShoot(ctx, shootID)
	if err != nil {
		return nil, err
	}
	if !nf.allowed(shoot) {
		return nil, shootGuard(shoot, allowedStatuses(nf.allowed)...)
	}
	if category == "" {
		category = ResolveServiceCategories(shoot)[0]
	}

	folder, err := l.folders.ResolveFolder(ctx, l.store, shoot, nf.folderType, category)
	if err != nil {
		return nil, err
	}

	fileID := uuid.New()
	original := baseName(nf.name)
	dest := path.Join(folder.RemotePath, storedName(nf.prefix, l.now(), fileID, original))

	obj, err := nf.put(ctx, dest)
	if err != nil {
		return nil, err
	}
	if obj.Path == "" {
		obj.Path = dest
	}
	dest = obj.Path

	file := &models.ShootFile{
		ID:              fileID,
		ShootID:         shoot.ID,
		Filename:        original,
		StoredFilename:  path.Base(dest),
		RemotePath:      dest,
		RemoteID:        models.NullString(obj.ID),
		ServiceCategory: folder.ServiceCategory,
		MimeType:        nf.mimeType,
		FileSize:        nf.size,
		UploadedBy:      actor,
		WorkflowStage:   nf.stage,
	}
	if nf.stage == models.StageCompleted {
		file.MovedToCompletedAt = models.NullTime(l.now())
	}

	var changes Changes
	err = l.store.InTx(ctx, func(ctx context.Context, repo database.Repository) error {
		locked, err := repo.LockShoot(ctx, shoot.ID)
		if err != nil {
			return err
		}
		if !nf.allowed(locked) {
			return shootGuard(locked, allowedStatuses(nf.allowed)...)
		}
		if err := repo.CreateFile(ctx, file); err != nil {
			return persistErr("create file", err)
		}
		err = AppendLog(ctx, repo, shoot.ID, actor, nf.action,
			fmt.Sprintf("File %s added to %s", original, nf.stage),
			map[string]any{
				"file_id":   file.ID.String(),
				"filename":  original,
				"new_stage": string(nf.stage),
				"path":      dest,
			})
		if err != nil {
			return persistErr("append file log", err)
		}
		changes.addFile(file, "")

		st, err := l.engine.RecomputeShootStatus(ctx, repo, locked, actor)
		if err != nil {
			return err
		}
		changes.addStatus(st...)
		return nil
	})
	if err != nil {
		if delErr := l.blobs.delete(context.WithoutCancel(ctx), dest); delErr != nil {
			log.Printf("workflow: orphaned blob after failed insert path=%s: %v", dest, delErr)
		}
		return nil, err
	}

	l.publisher.Publish(ctx, changes)
	return file, nil
}

// PromoteToCompleted moves a todo file into the Completed folder of its
// category.
func (l *Lifecycle) PromoteToCompleted(ctx context.Context, shootID, fileID, actor uuid.UUID) (*models.ShootFile, error) {
	var (
		file     *models.ShootFile
		fromPath string
		movedTo  string
		changes  Changes
	)
	err := l.store.InTx(ctx, func(ctx context.Context, repo database.Repository) error {
		shoot, err := repo.LockShoot(ctx, shootID)
		if err != nil {
			return err
		}
		file, err = repo.GetFile(ctx, shootID, fileID)
		if err != nil {
			return err
		}
		if !file.CanMoveToCompleted() {
			return fileGuard(file, models.StageTodo)
		}

		category, err := l.promoteCategory(ctx, repo, shoot, file)
		if err != nil {
			return err
		}
		completed, err := l.folders.ResolveFolder(ctx, repo, shoot, models.FolderCompleted, category)
		if err != nil {
			return err
		}

		dest := path.Join(completed.RemotePath, file.StoredFilename)
		if err := l.blobs.move(ctx, file.RemotePath, dest); err != nil {
			return err
		}
		fromPath, movedTo = file.RemotePath, dest

		file.RemotePath = dest
		file.WorkflowStage = models.StageCompleted
		file.MovedToCompletedAt = models.NullTime(l.now())
		if err := repo.UpdateFile(ctx, file); err != nil {
			return persistErr("update file", err)
		}
		err = AppendLog(ctx, repo, shootID, actor, models.ActionFileMovedToCompleted,
			fmt.Sprintf("File %s moved to completed", file.Filename),
			map[string]any{
				"file_id":   file.ID.String(),
				"filename":  file.Filename,
				"old_stage": string(models.StageTodo),
				"new_stage": string(models.StageCompleted),
				"from_path": fromPath,
				"to_path":   dest,
			})
		if err != nil {
			return persistErr("append promote log", err)
		}
		changes.addFile(file, models.StageTodo)

		st, err := l.engine.RecomputeShootStatus(ctx, repo, shoot, actor)
		if err != nil {
			return err
		}
		changes.addStatus(st...)
		return nil
	})
	if err != nil {
		if movedTo != "" {
			if mvErr := l.blobs.move(context.WithoutCancel(ctx), movedTo, fromPath); mvErr != nil {
				log.Printf("workflow: move back failed file_id=%s from=%s to=%s: %v", fileID, movedTo, fromPath, mvErr)
			}
		}
		return nil, err
	}

	l.publisher.Publish(ctx, changes)
	return file, nil
}

// promoteCategory picks the category whose Completed folder a file goes to:
// the stored one, else the ToDo folder the file sits in, else the shoot's
// first category.
func (l *Lifecycle) promoteCategory(ctx context.Context, repo database.Repository, shoot *models.Shoot, file *models.ShootFile) (models.ServiceCategory, error) {
	if c, ok := models.ParseServiceCategory(string(file.ServiceCategory)); ok {
		return c, nil
	}

	folders, err := repo.ListFolders(ctx, shoot.ID)
	if err != nil {
		return "", persistErr("list folders", err)
	}
	for _, f := range folders {
		if f.FolderType == models.FolderTodo && strings.HasPrefix(file.RemotePath, f.RemotePath+"/") {
			return f.ServiceCategory, nil
		}
	}
	return ResolveServiceCategories(shoot)[0], nil
}

// Verify marks a completed file as verified. It only changes the file; the
// caller materializes it and recomputes the shoot status in the same
// transaction.
func (l *Lifecycle) Verify(ctx context.Context, repo database.Repository, file *models.ShootFile, actor uuid.UUID, notes string, changes *Changes) error {
	if !file.CanVerify() {
		return fileGuard(file, models.StageCompleted)
	}

	file.WorkflowStage = models.StageVerified
	file.VerifiedAt = models.NullTime(l.now())
	file.VerifiedBy = uuid.NullUUID{UUID: actor, Valid: actor != uuid.Nil}
	file.VerificationNotes = models.NullString(notes)
	if err := repo.UpdateFile(ctx, file); err != nil {
		return persistErr("update file", err)
	}

	meta := map[string]any{
		"file_id":   file.ID.String(),
		"filename":  file.Filename,
		"old_stage": string(models.StageCompleted),
		"new_stage": string(models.StageVerified),
	}
	if notes != "" {
		meta["notes"] = notes
	}
	if file.LocalPath.Valid {
		meta["local_path"] = file.LocalPath.String
	}
	if err := AppendLog(ctx, repo, file.ShootID, actor, models.ActionFileVerified,
		fmt.Sprintf("File %s verified", file.Filename), meta); err != nil {
		return persistErr("append verify log", err)
	}

	if changes != nil {
		changes.addFile(file, models.StageCompleted)
	}
	return nil
}

// Archive retires a verified file. Archived is terminal.
func (l *Lifecycle) Archive(ctx context.Context, repo database.Repository, file *models.ShootFile, actor uuid.UUID, changes *Changes) error {
	if file.WorkflowStage != models.StageVerified {
		return fileGuard(file, models.StageVerified)
	}

	file.WorkflowStage = models.StageArchived
	if err := repo.UpdateFile(ctx, file); err != nil {
		return persistErr("update file", err)
	}
	err := AppendLog(ctx, repo, file.ShootID, actor, models.ActionFileArchived,
		fmt.Sprintf("File %s archived", file.Filename),
		map[string]any{
			"file_id":   file.ID.String(),
			"filename":  file.Filename,
			"old_stage": string(models.StageVerified),
			"new_stage": string(models.StageArchived),
		})
	if err != nil {
		return persistErr("append archive log", err)
	}

	if changes != nil {
		changes.addFile(file, models.StageVerified)
	}
	return nil
}

// CopyToLocalStorage downloads the file's current blob into the artifact
// store and sets its local path. The remote copy is kept. The new path is
// persisted by the caller.
func (l *Lifecycle) CopyToLocalStorage(ctx context.Context, file *models.ShootFile) (string, error) {
	if l.artifacts == nil {
		return "", errors.New("no artifact store configured")
	}

	data, err := l.blobs.download(ctx, file.RemotePath)
	if err != nil {
		return "", err
	}

	key := artifacts.FinalKey(file.ShootID.String(), file.StoredFilename)
	loc, err := l.artifacts.Put(ctx, key, data, file.MimeType)
	if err != nil {
		return "", fmt.Errorf("failed to store %s in %s: %w", key, l.artifacts.Name(), err)
	}

	file.LocalPath = models.NullString(loc)
	return loc, nil
}

// Engine exposes the engine shared with the lifecycle.
func (l *Lifecycle) Engine() *Engine { return l.engine }

// Publish forwards committed changes made outside the lifecycle's own
// transactions.
func (l *Lifecycle) Publish(ctx context.Context, changes Changes) {
	l.publisher.Publish(ctx, changes)
}

// baseName strips any directory part a client sent along with the name.
func baseName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}

// storedName is prefix_unix_id_original. The id segment keeps same-named
// files added in the same second apart.
func storedName(prefix string, at time.Time, id uuid.UUID, original string) string {
	return fmt.Sprintf("%s_%d_%s_%s", prefix, at.Unix(), id.String()[:8], original)
}

func contentType(name, declared string) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if t := mime.TypeByExtension(strings.ToLower(path.Ext(name))); t != "" {
		return t
	}
	return "application/octet-stream"
}

func allowedStatuses(allowed func(*models.Shoot) bool) []models.WorkflowStatus {
	var out []models.WorkflowStatus
	for _, st := range []models.WorkflowStatus{
		models.WorkflowBooked,
		models.WorkflowPhotosUploaded,
		models.WorkflowEditingComplete,
		models.WorkflowAdminVerified,
		models.WorkflowCompleted,
	} {
		if allowed(&models.Shoot{WorkflowStatus: st}) {
			out = append(out, st)
		}
	}
	return out
}
