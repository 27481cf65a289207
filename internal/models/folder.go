package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// FolderType distinguishes the raw-intake folder from the edited-output folder.
type FolderType string

const (
	FolderTodo      FolderType = "todo"
	FolderCompleted FolderType = "completed"
)

// FolderMapping records a provisioned remote folder for a shoot.
type FolderMapping struct {
	ID              uuid.UUID
	ShootID         uuid.UUID
	FolderType      FolderType
	ServiceCategory ServiceCategory
	RemotePath      string
	CreatedAt       time.Time
}

// Workflow log actions.
const (
	ActionShootCreated         = "shoot_created"
	ActionFoldersProvisioned   = "folders_provisioned"
	ActionFileUploaded         = "file_uploaded"
	ActionFileCopied           = "file_copied"
	ActionFileMovedToCompleted = "file_moved_to_completed"
	ActionFileVerified         = "file_verified"
	ActionFileArchived         = "file_archived"
	ActionStatusChanged        = "status_changed"
	ActionWorkflowOverride     = "workflow_override"
	ActionNotesUpdated         = "notes_updated"
)

// WorkflowLog is an append-only audit entry.
type WorkflowLog struct {
	ID        uuid.UUID
	ShootID   uuid.UUID
	UserID    uuid.UUID
	Action    string
	Details   string
	Metadata  json.RawMessage
	CreatedAt time.Time
}

// OAuthToken is the persisted credential for a remote storage provider.
type OAuthToken struct {
	Provider     string
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
	UpdatedAt    time.Time
}

// WorkflowEvent is broadcast to subscribed clients after a change commits.
type WorkflowEvent struct {
	ShootID uuid.UUID
	Event   string
	Payload map[string]any
}

// Workflow event names.
const (
	EventStatusChanged = "workflow.status_changed"
	EventFileStage     = "workflow.file_stage_changed"
	EventFoldersReady  = "workflow.folders_ready"
)
