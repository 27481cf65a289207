package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"shoot-workflow-backend/internal/database"
	"shoot-workflow-backend/internal/models"
)

// StageGuardViolation is returned when a file stage or shoot status does not
// permit the requested transition. Actual is the authoritative current value.
type StageGuardViolation struct {
	Subject  string // "file" or "shoot"
	ID       uuid.UUID
	Expected []string
	Actual   string
}

func (e *StageGuardViolation) Error() string {
	return fmt.Sprintf("%s %s is %q, expected %s", e.Subject, e.ID, e.Actual, strings.Join(e.Expected, " or "))
}

func fileGuard(f *models.ShootFile, expected ...models.FileStage) *StageGuardViolation {
	exp := make([]string, len(expected))
	for i, s := range expected {
		exp[i] = string(s)
	}
	return &StageGuardViolation{Subject: "file", ID: f.ID, Expected: exp, Actual: string(f.WorkflowStage)}
}

func shootGuard(s *models.Shoot, expected ...models.WorkflowStatus) *StageGuardViolation {
	exp := make([]string, len(expected))
	for i, st := range expected {
		exp[i] = string(st)
	}
	return &StageGuardViolation{Subject: "shoot", ID: s.ID, Expected: exp, Actual: string(s.WorkflowStatus)}
}

// FolderResolutionError means no folder mapping exists and provisioning one
// on demand failed too.
type FolderResolutionError struct {
	ShootID    uuid.UUID
	FolderType models.FolderType
	Category   models.ServiceCategory
	Err        error
}

func (e *FolderResolutionError) Error() string {
	return fmt.Sprintf("resolve %s folder (%s) for shoot %s: %v", e.FolderType, e.Category, e.ShootID, e.Err)
}

func (e *FolderResolutionError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed database write during a transition. The
// transaction it occurred in has been rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// persistErr wraps database failures, leaving not-found errors and errors
// that are already typed untouched.
func persistErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		guard  *StageGuardViolation
		folder *FolderResolutionError
		pe     *PersistenceError
	)
	if errors.Is(err, database.ErrNotFound) || errors.As(err, &guard) || errors.As(err, &folder) || errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
