package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shoot-workflow-backend/internal/database"
	"shoot-workflow-backend/internal/models"
)

func TestTransitionOnlyAcceptsNextStatus(t *testing.T) {
	f := newFixture(t)
	s := f.shoot(t, "Standard Photos")
	engine := NewEngine()
	ctx := context.Background()

	_, err := engine.Transition(ctx, f.store, s, models.WorkflowEditingComplete, f.admin)
	var guard *StageGuardViolation
	require.True(t, errors.As(err, &guard))
	assert.Equal(t, "shoot", guard.Subject)
	assert.Equal(t, string(models.WorkflowBooked), guard.Actual)
	assert.Equal(t, []string{string(models.WorkflowPhotosUploaded)}, guard.Expected)
	assert.Equal(t, models.WorkflowBooked, f.status(t, s.ID))

	ch, err := engine.Transition(ctx, f.store, s, models.WorkflowPhotosUploaded, f.admin)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowBooked, ch.From)
	assert.Equal(t, models.WorkflowPhotosUploaded, ch.To)

	got, err := f.store.GetShoot(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowPhotosUploaded, got.WorkflowStatus)
	assert.True(t, got.PhotosUploadedAt.Valid)

	// Backwards is never allowed.
	_, err = engine.Transition(ctx, f.store, got, models.WorkflowBooked, f.admin)
	assert.True(t, errors.As(err, &guard))
}

func TestRecomputeWithoutFilesStaysBooked(t *testing.T) {
	f := newFixture(t)
	s := f.shoot(t, "Standard Photos")

	changes, err := NewEngine().RecomputeShootStatus(context.Background(), f.store, s, f.admin)
	require.NoError(t, err)
	assert.Empty(t, changes)
	assert.Equal(t, models.WorkflowBooked, f.status(t, s.ID))
	assert.Empty(t, f.logs(t, s.ID, models.ActionStatusChanged))
}

func TestAutoAdvance(t *testing.T) {
	tests := []struct {
		name   string
		status models.WorkflowStatus
		counts models.StageCounts
		want   models.WorkflowStatus
	}{
		{"booked with a file", models.WorkflowBooked, models.StageCounts{models.StageTodo: 1}, models.WorkflowPhotosUploaded},
		{"todo left", models.WorkflowPhotosUploaded, models.StageCounts{models.StageTodo: 1, models.StageCompleted: 2}, ""},
		{"all promoted", models.WorkflowPhotosUploaded, models.StageCounts{models.StageCompleted: 3}, models.WorkflowEditingComplete},
		{"unverified left", models.WorkflowEditingComplete, models.StageCounts{models.StageCompleted: 1, models.StageVerified: 1}, ""},
		{"all verified", models.WorkflowEditingComplete, models.StageCounts{models.StageVerified: 1, models.StageArchived: 1}, models.WorkflowAdminVerified},
		{"never to completed", models.WorkflowAdminVerified, models.StageCounts{models.StageVerified: 1}, ""},
		{"no files", models.WorkflowPhotosUploaded, models.StageCounts{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := autoAdvance(tt.status, tt.counts)
			assert.Equal(t, tt.want != "", ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOverrideToCompletedBackfillsVerification(t *testing.T) {
	f := newFixture(t)
	s := f.shoot(t, "Standard Photos")
	ctx := context.Background()

	var change StatusChange
	err := f.store.InTx(ctx, func(ctx context.Context, repo database.Repository) error {
		locked, err := repo.LockShoot(ctx, s.ID)
		if err != nil {
			return err
		}
		change, _, err = NewEngine().Override(ctx, repo, locked, models.WorkflowCompleted, f.admin)
		return err
	})
	require.NoError(t, err)
	assert.True(t, change.Override)
	assert.Equal(t, models.WorkflowBooked, change.From)

	got, err := f.store.GetShoot(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowCompleted, got.WorkflowStatus)
	require.True(t, got.AdminVerifiedAt.Valid)
	assert.Equal(t, uuid.NullUUID{UUID: f.admin, Valid: true}, got.VerifiedBy)

	logs := f.logs(t, s.ID, models.ActionWorkflowOverride)
	require.Len(t, logs, 1)
	var meta map[string]string
	require.NoError(t, json.Unmarshal(logs[0].Metadata, &meta))
	assert.Equal(t, map[string]string{"old_status": "booked", "new_status": "completed"}, meta)

	// A second override to the same status changes nothing.
	stamped := got.AdminVerifiedAt.Time
	_, changed, err := NewEngine().Override(ctx, f.store, got, models.WorkflowCompleted, uuid.New())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, f.logs(t, s.ID, models.ActionWorkflowOverride), 1)
	assert.Equal(t, stamped, got.AdminVerifiedAt.Time)
}

func TestOverrideRejectsOtherTargets(t *testing.T) {
	f := newFixture(t)
	s := f.shoot(t, "Standard Photos")

	_, _, err := NewEngine().Override(context.Background(), f.store, s, models.WorkflowEditingComplete, f.admin)
	assert.ErrorIs(t, err, ErrInvalidOverride)
}
