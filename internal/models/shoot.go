package models

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WorkflowStatus is the shoot-level aggregate position in the delivery workflow.
type WorkflowStatus string

const (
	WorkflowBooked          WorkflowStatus = "booked"
	WorkflowPhotosUploaded  WorkflowStatus = "photos_uploaded"
	WorkflowEditingComplete WorkflowStatus = "editing_complete"
	WorkflowAdminVerified   WorkflowStatus = "admin_verified"
	WorkflowCompleted       WorkflowStatus = "completed"
)

var workflowOrder = []WorkflowStatus{
	WorkflowBooked,
	WorkflowPhotosUploaded,
	WorkflowEditingComplete,
	WorkflowAdminVerified,
	WorkflowCompleted,
}

// Rank returns the position of the status in the chain, or -1 if unknown.
func (s WorkflowStatus) Rank() int {
	for i, st := range workflowOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the status that ordinarily follows s. ok is false for the
// terminal status and for unknown values.
func (s WorkflowStatus) Next() (WorkflowStatus, bool) {
	r := s.Rank()
	if r < 0 || r+1 >= len(workflowOrder) {
		return "", false
	}
	return workflowOrder[r+1], true
}

func (s WorkflowStatus) Valid() bool {
	return s.Rank() >= 0
}

// Booking status values stored in shoots.status.
const (
	ShootStatusScheduled = "scheduled"
	ShootStatusOnHold    = "on_hold"
)

type Shoot struct {
	ID              uuid.UUID
	ClientID        uuid.UUID
	PhotographerID  uuid.NullUUID
	ServiceID       uuid.UUID
	ServiceName     string
	ServiceCategory sql.NullString

	Address string
	City    string
	State   string
	Zip     string

	ScheduledDate sql.NullTime
	ScheduledTime sql.NullString

	BaseQuote     float64
	TaxAmount     float64
	TotalQuote    float64
	PaymentStatus string

	Status         string
	WorkflowStatus WorkflowStatus

	ShootNotes        sql.NullString
	CompanyNotes      sql.NullString
	PhotographerNotes sql.NullString
	EditorNotes       sql.NullString

	PhotosUploadedAt   sql.NullTime
	EditingCompletedAt sql.NullTime
	AdminVerifiedAt    sql.NullTime
	VerifiedBy         uuid.NullUUID

	CreatedBy uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsFullyScheduled reports whether both a date and a time have been booked.
func (s *Shoot) IsFullyScheduled() bool {
	return s.ScheduledDate.Valid && s.ScheduledTime.Valid && s.ScheduledTime.String != ""
}

func (s *Shoot) CanUploadRawFiles() bool {
	return s.WorkflowStatus == WorkflowBooked || s.WorkflowStatus == WorkflowPhotosUploaded
}

func (s *Shoot) CanUploadEditedFiles() bool {
	return s.CanUploadRawFiles() || s.WorkflowStatus == WorkflowEditingComplete
}

func (s *Shoot) CanPromoteToCompleted() bool {
	return s.WorkflowStatus == WorkflowPhotosUploaded
}

func (s *Shoot) CanVerify() bool {
	return s.WorkflowStatus == WorkflowEditingComplete
}

// ServiceCategory is the kind of deliverable a folder holds.
type ServiceCategory string

const (
	CategoryPhoto  ServiceCategory = "P"
	CategoryIGuide ServiceCategory = "iGuide"
	CategoryVideo  ServiceCategory = "Video"
)

// ParseServiceCategory accepts the stored spellings and "photo(s)",
// ignoring case and surrounding space.
func ParseServiceCategory(v string) (ServiceCategory, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "p", "photo", "photos":
		return CategoryPhoto, true
	case "iguide":
		return CategoryIGuide, true
	case "video":
		return CategoryVideo, true
	}
	return "", false
}

// Prefix is the folder-name prefix used for the category.
func (c ServiceCategory) Prefix() string {
	switch c {
	case CategoryIGuide:
		return "iGuide"
	case CategoryVideo:
		return "Video"
	default:
		return "P"
	}
}

// NoteField names one of the fixed per-role note columns on a shoot.
type NoteField string

const (
	NoteShoot        NoteField = "shoot_notes"
	NoteCompany      NoteField = "company_notes"
	NotePhotographer NoteField = "photographer_notes"
	NoteEditor       NoteField = "editor_notes"
)

// User roles carried in the JWT "role" claim.
const (
	RoleAdmin        = "admin"
	RoleSuperAdmin   = "super_admin"
	RoleClient       = "client"
	RolePhotographer = "photographer"
	RoleEditor       = "editor"
)

// WritableNoteFields returns the note fields a role may change.
func WritableNoteFields(role string) []NoteField {
	switch role {
	case RoleAdmin, RoleSuperAdmin:
		return []NoteField{NoteShoot, NoteCompany, NotePhotographer, NoteEditor}
	case RoleClient:
		return []NoteField{NoteShoot}
	case RolePhotographer:
		return []NoteField{NotePhotographer}
	case RoleEditor:
		return []NoteField{NoteEditor}
	}
	return nil
}

type Service struct {
	ID   uuid.UUID
	Name string
}

// NullString treats the empty string as NULL.
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func NullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
