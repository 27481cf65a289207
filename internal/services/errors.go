package services

import (
	"errors"
	"fmt"

	"shoot-workflow-backend/internal/models"
)

// ValidationError reports a request that is well-formed JSON but not
// acceptable.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ErrForbidden is wrapped by errors for actions the caller's role may not take.
var ErrForbidden = errors.New("forbidden")

type NotePermissionError struct {
	Role  string
	Field models.NoteField
}

func (e *NotePermissionError) Error() string {
	return fmt.Sprintf("role %q may not write %s", e.Role, e.Field)
}

func (e *NotePermissionError) Unwrap() error { return ErrForbidden }
