package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// FileStage is a single asset's position in the per-file lifecycle.
type FileStage string

const (
	StageTodo      FileStage = "todo"
	StageCompleted FileStage = "completed"
	StageVerified  FileStage = "verified"
	StageArchived  FileStage = "archived"
)

var stageOrder = []FileStage{StageTodo, StageCompleted, StageVerified, StageArchived}

// AllFileStages lists stages in lifecycle order.
func AllFileStages() []FileStage {
	out := make([]FileStage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

func (s FileStage) Rank() int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the stage that follows s; archived has none.
func (s FileStage) Next() (FileStage, bool) {
	r := s.Rank()
	if r < 0 || r+1 >= len(stageOrder) {
		return "", false
	}
	return stageOrder[r+1], true
}

// AtLeastVerified is true for verified and archived files.
func (s FileStage) AtLeastVerified() bool {
	return s.Rank() >= StageVerified.Rank()
}

type ShootFile struct {
	ID                 uuid.UUID
	ShootID            uuid.UUID
	Filename           string
	StoredFilename     string
	LocalPath          sql.NullString
	RemotePath         string
	RemoteID           sql.NullString
	ServiceCategory    ServiceCategory
	MimeType           string
	FileSize           int64
	UploadedBy         uuid.UUID
	WorkflowStage      FileStage
	MovedToCompletedAt sql.NullTime
	VerifiedAt         sql.NullTime
	VerifiedBy         uuid.NullUUID
	VerificationNotes  sql.NullString
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (f *ShootFile) CanMoveToCompleted() bool {
	return f.WorkflowStage == StageTodo
}

func (f *ShootFile) CanVerify() bool {
	return f.WorkflowStage == StageCompleted
}

// StageCounts is the number of files of a shoot in each stage.
type StageCounts map[FileStage]int

func (c StageCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// NotVerified counts files that have not reached the verified stage.
func (c StageCounts) NotVerified() int {
	return c[StageTodo] + c[StageCompleted]
}
