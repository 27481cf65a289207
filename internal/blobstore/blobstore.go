// Package blobstore defines the remote file storage contract the workflow
// core depends on. Dropbox and Supabase Storage implement it.
package blobstore

import (
	"context"
	"errors"
	"fmt"
)

type FolderResult int

const (
	FolderCreated FolderResult = iota + 1
	FolderAlreadyExists
)

func (r FolderResult) String() string {
	switch r {
	case FolderCreated:
		return "created"
	case FolderAlreadyExists:
		return "already_exists"
	}
	return "unknown"
}

// Object is a stored blob. Path can differ from the requested path when the
// provider renamed the object to avoid a conflict.
type Object struct {
	ID   string
	Path string
}

type Store interface {
	// CreateFolder is idempotent: an existing folder yields FolderAlreadyExists.
	CreateFolder(ctx context.Context, path string) (FolderResult, error)
	// Upload stores data at path. It never overwrites an existing object.
	Upload(ctx context.Context, path string, data []byte, contentType string) (Object, error)
	Move(ctx context.Context, from, to string) error
	Copy(ctx context.Context, from, to string) error
	Download(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
	Name() string
}

type Kind string

const (
	KindAuth      Kind = "auth"
	KindNotFound  Kind = "not_found"
	KindConflict  Kind = "conflict"
	KindTransient Kind = "transient"
	KindUnknown   Kind = "unknown"
)

// Error is returned by every Store implementation. Its message never
// includes credentials.
type Error struct {
	Provider string
	Op       string
	Path     string
	Kind     Kind
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s %s: %s", e.Provider, e.Op, e.Path, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a blobstore Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var be *Error
	return errors.As(err, &be) && be.Kind == kind
}

// Temporary reports whether retrying the call may succeed.
func Temporary(err error) bool {
	return IsKind(err, KindTransient)
}
