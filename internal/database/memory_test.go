package database

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shoot-workflow-backend/internal/models"
)

func seedShoot(t *testing.T, store *MemoryStore) *models.Shoot {
	t.Helper()
	svc := models.Service{ID: uuid.New(), Name: "Photo Package"}
	store.AddService(svc)

	shoot := &models.Shoot{
		ID:             uuid.New(),
		ClientID:       uuid.New(),
		ServiceID:      svc.ID,
		Address:        "1 Main St",
		City:           "Austin",
		State:          "TX",
		Zip:            "78701",
		Status:         models.ShootStatusOnHold,
		WorkflowStatus: models.WorkflowBooked,
		CreatedBy:      uuid.New(),
	}
	require.NoError(t, store.CreateShoot(context.Background(), shoot))
	return shoot
}

func TestMemoryStoreShootRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	shoot := seedShoot(t, store)

	got, err := store.GetShoot(context.Background(), shoot.ID)
	require.NoError(t, err)
	assert.Equal(t, "Photo Package", got.ServiceName)
	assert.Equal(t, models.WorkflowBooked, got.WorkflowStatus)

	_, err = store.GetShoot(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	shoot := seedShoot(t, store)

	boom := errors.New("boom")
	err := store.InTx(ctx, func(ctx context.Context, repo Repository) error {
		s, err := repo.LockShoot(ctx, shoot.ID)
		require.NoError(t, err)
		s.WorkflowStatus = models.WorkflowPhotosUploaded
		require.NoError(t, repo.UpdateShootWorkflow(ctx, s))
		require.NoError(t, repo.CreateFile(ctx, &models.ShootFile{
			ID:            uuid.New(),
			ShootID:       shoot.ID,
			WorkflowStage: models.StageTodo,
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.GetShoot(ctx, shoot.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowBooked, got.WorkflowStatus)

	files, err := store.ListFiles(ctx, shoot.ID)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestMemoryStoreCreateFolderIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	shoot := seedShoot(t, store)

	mapping := &models.FolderMapping{
		ID:              uuid.New(),
		ShootID:         shoot.ID,
		FolderType:      models.FolderTodo,
		ServiceCategory: models.CategoryPhoto,
		RemotePath:      "/RealEstatePhotos/ToDo/2025-01-18/P-1-Main-St-Austin-TX",
	}
	created, err := store.CreateFolder(ctx, mapping)
	require.NoError(t, err)
	assert.True(t, created)

	dup := *mapping
	dup.ID = uuid.New()
	dup.RemotePath = "/elsewhere"
	created, err = store.CreateFolder(ctx, &dup)
	require.NoError(t, err)
	assert.False(t, created)

	got, err := store.GetFolder(ctx, shoot.ID, models.FolderTodo, models.CategoryPhoto)
	require.NoError(t, err)
	assert.Equal(t, mapping.RemotePath, got.RemotePath)
}

func TestMemoryStoreCountsAndLogs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	shoot := seedShoot(t, store)

	for _, stage := range []models.FileStage{models.StageTodo, models.StageTodo, models.StageCompleted} {
		require.NoError(t, store.CreateFile(ctx, &models.ShootFile{ID: uuid.New(), ShootID: shoot.ID, WorkflowStage: stage}))
	}
	counts, err := store.CountFilesByStage(ctx, shoot.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[models.StageTodo])
	assert.Equal(t, 1, counts[models.StageCompleted])
	assert.Equal(t, 3, counts.Total())

	for _, action := range []string{models.ActionShootCreated, models.ActionFileUploaded} {
		require.NoError(t, store.AppendLog(ctx, &models.WorkflowLog{ID: uuid.New(), ShootID: shoot.ID, Action: action}))
	}
	logs, err := store.ListLogs(ctx, shoot.ID, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActionFileUploaded, logs[0].Action)
}

func TestMemoryStoreNotes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	shoot := seedShoot(t, store)

	require.NoError(t, store.UpdateShootNotes(ctx, shoot.ID, map[models.NoteField]string{
		models.NoteEditor: "sky replaced",
	}))
	got, err := store.GetShoot(ctx, shoot.ID)
	require.NoError(t, err)
	assert.Equal(t, "sky replaced", got.EditorNotes.String)
	assert.False(t, got.ShootNotes.Valid)
}

func TestMemoryStoreOAuthTokenKeepsRefreshToken(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.SaveOAuthToken(ctx, &models.OAuthToken{Provider: "dropbox", AccessToken: "a1", RefreshToken: "r1"}))
	require.NoError(t, store.SaveOAuthToken(ctx, &models.OAuthToken{Provider: "dropbox", AccessToken: "a2"}))

	tok, err := store.GetOAuthToken(ctx, "dropbox")
	require.NoError(t, err)
	assert.Equal(t, "a2", tok.AccessToken)
	assert.Equal(t, "r1", tok.RefreshToken)
}
