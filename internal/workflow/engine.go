package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"shoot-workflow-backend/internal/database"
	"shoot-workflow-backend/internal/models"
)

// ErrInvalidOverride is returned for override targets other than
// admin_verified and completed.
var ErrInvalidOverride = errors.New("override target must be admin_verified or completed")

// Engine moves a shoot through its workflow statuses. Callers hold the shoot
// row lock (LockShoot inside Store.InTx) for the duration of every call.
type Engine struct {
	now func() time.Time
}

func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// Transition advances the shoot to the status that follows its current one.
func (e *Engine) Transition(ctx context.Context, repo database.Repository, shoot *models.Shoot, to models.WorkflowStatus, actor uuid.UUID) (StatusChange, error) {
	next, ok := shoot.WorkflowStatus.Next()
	if !ok || next != to {
		var expected []models.WorkflowStatus
		if prev, ok := previous(to); ok {
			expected = append(expected, prev)
		}
		return StatusChange{}, shootGuard(shoot, expected...)
	}

	from := shoot.WorkflowStatus
	shoot.WorkflowStatus = to
	e.stamp(shoot, actor)

	if err := repo.UpdateShootWorkflow(ctx, shoot); err != nil {
		shoot.WorkflowStatus = from
		return StatusChange{}, persistErr("update shoot status", err)
	}
	err := AppendLog(ctx, repo, shoot.ID, actor, models.ActionStatusChanged,
		fmt.Sprintf("Workflow status changed from %s to %s", from, to),
		map[string]any{"old_status": string(from), "new_status": string(to)})
	if err != nil {
		return StatusChange{}, persistErr("append status log", err)
	}

	return StatusChange{ShootID: shoot.ID, From: from, To: to, Actor: actor}, nil
}

// RecomputeShootStatus advances the shoot as far as its file stage counts
// allow. It must run in the transaction that changed the files. Calling it
// again without further file changes does nothing.
func (e *Engine) RecomputeShootStatus(ctx context.Context, repo database.Repository, shoot *models.Shoot, actor uuid.UUID) ([]StatusChange, error) {
	counts, err := repo.CountFilesByStage(ctx, shoot.ID)
	if err != nil {
		return nil, persistErr("count files", err)
	}

	var changes []StatusChange
	for {
		to, ok := autoAdvance(shoot.WorkflowStatus, counts)
		if !ok {
			return changes, nil
		}
		ch, err := e.Transition(ctx, repo, shoot, to, actor)
		if err != nil {
			return nil, err
		}
		changes = append(changes, ch)
	}
}

func autoAdvance(status models.WorkflowStatus, counts models.StageCounts) (models.WorkflowStatus, bool) {
	total := counts.Total()
	if total == 0 {
		return "", false
	}
	switch status {
	case models.WorkflowBooked:
		return models.WorkflowPhotosUploaded, true
	case models.WorkflowPhotosUploaded:
		if counts[models.StageTodo] == 0 {
			return models.WorkflowEditingComplete, true
		}
	case models.WorkflowEditingComplete:
		if counts.NotVerified() == 0 {
			return models.WorkflowAdminVerified, true
		}
	}
	return "", false
}

// Override sets admin_verified or completed from any status.
func (e *Engine) Override(ctx context.Context, repo database.Repository, shoot *models.Shoot, to models.WorkflowStatus, actor uuid.UUID) (StatusChange, bool, error) {
	if to != models.WorkflowAdminVerified && to != models.WorkflowCompleted {
		return StatusChange{}, false, ErrInvalidOverride
	}

	from := shoot.WorkflowStatus
	if from == to && shoot.AdminVerifiedAt.Valid {
		return StatusChange{}, false, nil
	}
	shoot.WorkflowStatus = to
	e.stamp(shoot, actor)

	if err := repo.UpdateShootWorkflow(ctx, shoot); err != nil {
		shoot.WorkflowStatus = from
		return StatusChange{}, false, persistErr("override shoot status", err)
	}
	err := AppendLog(ctx, repo, shoot.ID, actor, models.ActionWorkflowOverride,
		fmt.Sprintf("Workflow status overridden from %s to %s", from, to),
		map[string]any{"old_status": string(from), "new_status": string(to)})
	if err != nil {
		return StatusChange{}, false, persistErr("append override log", err)
	}

	return StatusChange{ShootID: shoot.ID, From: from, To: to, Override: true, Actor: actor}, true, nil
}

// stamp sets the first-entry timestamp of the shoot's current status. From
// admin_verified on, admin_verified_at and the verifier are backfilled.
func (e *Engine) stamp(shoot *models.Shoot, actor uuid.UUID) {
	now := e.now()
	switch shoot.WorkflowStatus {
	case models.WorkflowPhotosUploaded:
		if !shoot.PhotosUploadedAt.Valid {
			shoot.PhotosUploadedAt = models.NullTime(now)
		}
	case models.WorkflowEditingComplete:
		if !shoot.EditingCompletedAt.Valid {
			shoot.EditingCompletedAt = models.NullTime(now)
		}
	case models.WorkflowAdminVerified, models.WorkflowCompleted:
		if !shoot.AdminVerifiedAt.Valid {
			shoot.AdminVerifiedAt = models.NullTime(now)
		}
		if !shoot.VerifiedBy.Valid && actor != uuid.Nil {
			shoot.VerifiedBy = uuid.NullUUID{UUID: actor, Valid: true}
		}
	}
}

func previous(s models.WorkflowStatus) (models.WorkflowStatus, bool) {
	r := s.Rank()
	if r <= 0 {
		return "", false
	}
	for _, st := range []models.WorkflowStatus{models.WorkflowBooked, models.WorkflowPhotosUploaded, models.WorkflowEditingComplete, models.WorkflowAdminVerified} {
		if st.Rank() == r-1 {
			return st, true
		}
	}
	return "", false
}
