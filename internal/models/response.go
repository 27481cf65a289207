package models

import (
	"encoding/json"
	"time"
)

type ShootResponse struct {
	ID              string   `json:"id"`
	ClientID        string   `json:"client_id"`
	PhotographerID  string   `json:"photographer_id,omitempty"`
	ServiceID       string   `json:"service_id"`
	ServiceName     string   `json:"service_name,omitempty"`
	ServiceCategory string   `json:"service_category,omitempty"`
	Address         string   `json:"address"`
	City            string   `json:"city"`
	State           string   `json:"state"`
	Zip             string   `json:"zip"`
	ScheduledDate   string   `json:"scheduled_date,omitempty"`
	Time            string   `json:"time,omitempty"`
	BaseQuote       float64  `json:"base_quote"`
	TaxAmount       float64  `json:"tax_amount"`
	TotalQuote      float64  `json:"total_quote"`
	PaymentStatus   string   `json:"payment_status"`
	Status          string   `json:"status"`
	WorkflowStatus  string   `json:"workflow_status"`
	Notes           NotesOut `json:"notes"`

	PhotosUploadedAt   *time.Time `json:"photos_uploaded_at,omitempty"`
	EditingCompletedAt *time.Time `json:"editing_completed_at,omitempty"`
	AdminVerifiedAt    *time.Time `json:"admin_verified_at,omitempty"`
	VerifiedBy         string     `json:"verified_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NotesOut struct {
	ShootNotes        string `json:"shoot_notes,omitempty"`
	CompanyNotes      string `json:"company_notes,omitempty"`
	PhotographerNotes string `json:"photographer_notes,omitempty"`
	EditorNotes       string `json:"editor_notes,omitempty"`
}

type ShootListResponse struct {
	Shoots []ShootResponse `json:"shoots"`
}

type FileResponse struct {
	ID                 string     `json:"id"`
	ShootID            string     `json:"shoot_id"`
	Filename           string     `json:"filename"`
	StoredFilename     string     `json:"stored_filename"`
	WorkflowStage      string     `json:"workflow_stage"`
	ServiceCategory    string     `json:"service_category"`
	RemotePath         string     `json:"remote_path"`
	LocalPath          string     `json:"local_path,omitempty"`
	FileSize           int64      `json:"file_size"`
	MimeType           string     `json:"mime_type"`
	MovedToCompletedAt *time.Time `json:"moved_to_completed_at,omitempty"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
	VerifiedBy         string     `json:"verified_by,omitempty"`
	VerificationNotes  string     `json:"verification_notes,omitempty"`
	CreatedAt          time.Time  `json:"uploaded_at"`
}

type FilesResponse struct {
	Files []FileResponse `json:"files"`
}

// UploadErrorInfo is one failed file in a batch.
type UploadErrorInfo struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
	Stage    string `json:"stage"`
	Code     string `json:"code,omitempty"`
}

type UploadResponse struct {
	ShootID      string            `json:"shoot_id"`
	Files        []FileResponse    `json:"uploaded_files"`
	Errors       []UploadErrorInfo `json:"errors"`
	SuccessCount int               `json:"success_count"`
	ErrorCount   int               `json:"error_count"`
	Status       string            `json:"workflow_status"`
}

type FolderResponse struct {
	FolderType      string `json:"folder_type"`
	ServiceCategory string `json:"service_category"`
	RemotePath      string `json:"remote_path"`
}

type FoldersResponse struct {
	Folders []FolderResponse `json:"folders"`
	Errors  []string         `json:"errors,omitempty"`
}

type WorkflowLogResponse struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Action    string          `json:"action"`
	Details   string          `json:"details,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type WorkflowStatusResponse struct {
	ShootID    string                `json:"shoot_id"`
	Status     string                `json:"workflow_status"`
	FileCounts map[string]int        `json:"file_counts"`
	TotalFiles int                   `json:"total_files"`
	RecentLog  []WorkflowLogResponse `json:"recent_log"`
	CanUpload  bool                  `json:"can_upload"`
	CanPromote bool                  `json:"can_promote"`
	CanVerify  bool                  `json:"can_verify"`
}

type DropboxConnectResponse struct {
	AuthorizeURL string `json:"authorize_url"`
}

type DropboxTokenResponse struct {
	Connected bool       `json:"connected"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func nullTimePtr(valid bool, t time.Time) *time.Time {
	if !valid {
		return nil
	}
	return &t
}

func NewShootResponse(s *Shoot) ShootResponse {
	resp := ShootResponse{
		ID:              s.ID.String(),
		ClientID:        s.ClientID.String(),
		ServiceID:       s.ServiceID.String(),
		ServiceName:     s.ServiceName,
		ServiceCategory: s.ServiceCategory.String,
		Address:         s.Address,
		City:            s.City,
		State:           s.State,
		Zip:             s.Zip,
		Time:            s.ScheduledTime.String,
		BaseQuote:       s.BaseQuote,
		TaxAmount:       s.TaxAmount,
		TotalQuote:      s.TotalQuote,
		PaymentStatus:   s.PaymentStatus,
		Status:          s.Status,
		WorkflowStatus:  string(s.WorkflowStatus),
		Notes: NotesOut{
			ShootNotes:        s.ShootNotes.String,
			CompanyNotes:      s.CompanyNotes.String,
			PhotographerNotes: s.PhotographerNotes.String,
			EditorNotes:       s.EditorNotes.String,
		},
		PhotosUploadedAt:   nullTimePtr(s.PhotosUploadedAt.Valid, s.PhotosUploadedAt.Time),
		EditingCompletedAt: nullTimePtr(s.EditingCompletedAt.Valid, s.EditingCompletedAt.Time),
		AdminVerifiedAt:    nullTimePtr(s.AdminVerifiedAt.Valid, s.AdminVerifiedAt.Time),
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
	if s.PhotographerID.Valid {
		resp.PhotographerID = s.PhotographerID.UUID.String()
	}
	if s.ScheduledDate.Valid {
		resp.ScheduledDate = s.ScheduledDate.Time.Format("2006-01-02")
	}
	if s.VerifiedBy.Valid {
		resp.VerifiedBy = s.VerifiedBy.UUID.String()
	}
	return resp
}

func NewFileResponse(f *ShootFile) FileResponse {
	resp := FileResponse{
		ID:                 f.ID.String(),
		ShootID:            f.ShootID.String(),
		Filename:           f.Filename,
		StoredFilename:     f.StoredFilename,
		WorkflowStage:      string(f.WorkflowStage),
		ServiceCategory:    string(f.ServiceCategory),
		RemotePath:         f.RemotePath,
		LocalPath:          f.LocalPath.String,
		FileSize:           f.FileSize,
		MimeType:           f.MimeType,
		MovedToCompletedAt: nullTimePtr(f.MovedToCompletedAt.Valid, f.MovedToCompletedAt.Time),
		VerifiedAt:         nullTimePtr(f.VerifiedAt.Valid, f.VerifiedAt.Time),
		VerificationNotes:  f.VerificationNotes.String,
		CreatedAt:          f.CreatedAt,
	}
	if f.VerifiedBy.Valid {
		resp.VerifiedBy = f.VerifiedBy.UUID.String()
	}
	return resp
}

func NewWorkflowLogResponse(l *WorkflowLog) WorkflowLogResponse {
	return WorkflowLogResponse{
		ID:        l.ID.String(),
		UserID:    l.UserID.String(),
		Action:    l.Action,
		Details:   l.Details,
		Metadata:  l.Metadata,
		CreatedAt: l.CreatedAt,
	}
}
