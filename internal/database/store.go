package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"shoot-workflow-backend/internal/models"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

type ShootFilter struct {
	WorkflowStatus models.WorkflowStatus
	ClientID       uuid.NullUUID
	Limit          int
}

// Repository is the set of queries the workflow core runs. It is satisfied
// both by the store itself and by the handle passed into InTx.
type Repository interface {
	GetService(ctx context.Context, id uuid.UUID) (*models.Service, error)

	CreateShoot(ctx context.Context, shoot *models.Shoot) error
	GetShoot(ctx context.Context, id uuid.UUID) (*models.Shoot, error)
	// LockShoot reads the shoot and holds it until the surrounding transaction ends.
	LockShoot(ctx context.Context, id uuid.UUID) (*models.Shoot, error)
	ListShoots(ctx context.Context, filter ShootFilter) ([]models.Shoot, error)
	UpdateShootWorkflow(ctx context.Context, shoot *models.Shoot) error
	UpdateShootNotes(ctx context.Context, id uuid.UUID, notes map[models.NoteField]string) error

	CreateFile(ctx context.Context, file *models.ShootFile) error
	GetFile(ctx context.Context, shootID, fileID uuid.UUID) (*models.ShootFile, error)
	ListFiles(ctx context.Context, shootID uuid.UUID) ([]models.ShootFile, error)
	UpdateFile(ctx context.Context, file *models.ShootFile) error
	CountFilesByStage(ctx context.Context, shootID uuid.UUID) (models.StageCounts, error)

	GetFolder(ctx context.Context, shootID uuid.UUID, folderType models.FolderType, category models.ServiceCategory) (*models.FolderMapping, error)
	ListFolders(ctx context.Context, shootID uuid.UUID) ([]models.FolderMapping, error)
	// CreateFolder inserts the mapping unless one exists for the same triple.
	// created reports whether a row was written.
	CreateFolder(ctx context.Context, folder *models.FolderMapping) (created bool, err error)

	AppendLog(ctx context.Context, entry *models.WorkflowLog) error
	ListLogs(ctx context.Context, shootID uuid.UUID, limit int) ([]models.WorkflowLog, error)

	GetOAuthToken(ctx context.Context, provider string) (*models.OAuthToken, error)
	SaveOAuthToken(ctx context.Context, token *models.OAuthToken) error
}

// Store is a Repository that can run a unit of work atomically. If fn returns
// an error nothing it wrote is kept.
type Store interface {
	Repository
	InTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
	Close() error
}
