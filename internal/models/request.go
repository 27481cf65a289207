package models

type CreateShootRequest struct {
	ClientID        string `json:"client_id" binding:"required,uuid"`
	PhotographerID  string `json:"photographer_id,omitempty" binding:"omitempty,uuid"`
	ServiceID       string `json:"service_id" binding:"required,uuid"`
	ServiceCategory string `json:"service_category,omitempty"`

	Address string `json:"address" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	Zip     string `json:"zip" binding:"required"`

	// ScheduledDate is YYYY-MM-DD; Time is free-form (usually HH:MM).
	ScheduledDate string `json:"scheduled_date,omitempty" example:"2025-01-18"`
	Time          string `json:"time,omitempty" example:"10:30"`

	BaseQuote     float64 `json:"base_quote" binding:"gte=0"`
	TaxAmount     float64 `json:"tax_amount" binding:"gte=0"`
	TotalQuote    float64 `json:"total_quote" binding:"gte=0"`
	PaymentStatus string  `json:"payment_status,omitempty"`

	Notes string `json:"notes,omitempty"`
}

type CopyFileItem struct {
	Path string `json:"path" binding:"required"`
	Name string `json:"name" binding:"required"`
}

type CopyFilesRequest struct {
	Files           []CopyFileItem `json:"files" binding:"required,min=1,dive"`
	ServiceCategory string         `json:"service_category,omitempty"`
}

type VerifyFileRequest struct {
	Notes string `json:"notes,omitempty"`
}

type FinalizeShootRequest struct {
	// TargetStatus is admin_verified or completed.
	TargetStatus string `json:"target_status" binding:"required,oneof=admin_verified completed" example:"completed"`
}

// UpdateNotesRequest carries only the fields being changed.
type UpdateNotesRequest struct {
	ShootNotes        *string `json:"shoot_notes,omitempty"`
	CompanyNotes      *string `json:"company_notes,omitempty"`
	PhotographerNotes *string `json:"photographer_notes,omitempty"`
	EditorNotes       *string `json:"editor_notes,omitempty"`
}

// Fields returns the set fields keyed by note column.
func (r UpdateNotesRequest) Fields() map[NoteField]string {
	out := make(map[NoteField]string)
	if r.ShootNotes != nil {
		out[NoteShoot] = *r.ShootNotes
	}
	if r.CompanyNotes != nil {
		out[NoteCompany] = *r.CompanyNotes
	}
	if r.PhotographerNotes != nil {
		out[NotePhotographer] = *r.PhotographerNotes
	}
	if r.EditorNotes != nil {
		out[NoteEditor] = *r.EditorNotes
	}
	return out
}

type DropboxTokenRequest struct {
	Code string `json:"code" binding:"required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	// Set on stage guard violations so clients can resynchronize.
	CurrentStage  string   `json:"current_stage,omitempty"`
	CurrentStatus string   `json:"current_status,omitempty"`
	Expected      []string `json:"expected,omitempty"`
}
