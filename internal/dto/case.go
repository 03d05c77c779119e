package dto

import (
	"time"

	"github.com/dentallab/backend/internal/domain"
)

// CreateDentistRequest represents dentist creation request
type CreateDentistRequest struct {
	Name   string `json:"name" binding:"required,min=2"`
	Clinic string `json:"clinic"`
	Email  string `json:"email" binding:"required,email"`
	Phone  string `json:"phone"`
}

// DentistResponse represents dentist data in response
type DentistResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Clinic    string `json:"clinic,omitempty"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// NewDentistResponse builds the response projection of a dentist
func NewDentistResponse(d *domain.Dentist) DentistResponse {
	return DentistResponse{
		ID:        d.ID,
		Name:      d.Name,
		Clinic:    d.Clinic,
		Email:     d.Email,
		Phone:     d.Phone,
		IsActive:  d.IsActive,
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
	}
}

// CreateCaseRequest represents lab case creation request
type CreateCaseRequest struct {
	DentistID   string `json:"dentist_id" binding:"required,uuid"`
	PatientName string `json:"patient_name" binding:"required,min=2"`
	CaseType    string `json:"case_type" binding:"required"`
	DueDate     string `json:"due_date"`
	Notes       string `json:"notes"`
}

// ParseDueDate parses the optional due date, date-only or RFC3339.
// Returns (nil, true) when the field is empty.
func (r *CreateCaseRequest) ParseDueDate() (*time.Time, bool) {
	if r.DueDate == "" {
		return nil, true
	}
	if t, err := time.Parse("2006-01-02", r.DueDate); err == nil {
		return &t, true
	}
	if t, err := time.Parse(time.RFC3339, r.DueDate); err == nil {
		return &t, true
	}
	return nil, false
}

// UpdateCaseStatusRequest represents case status transition request
type UpdateCaseStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListCasesQuery represents case list filters
type ListCasesQuery struct {
	Status    string `form:"status"`
	DentistID string `form:"dentist_id"`
}

// CaseResponse represents lab case data in response
type CaseResponse struct {
	ID          string `json:"id"`
	CaseNumber  string `json:"case_number"`
	DentistID   string `json:"dentist_id"`
	PatientName string `json:"patient_name"`
	CaseType    string `json:"case_type"`
	Status      string `json:"status"`
	DueDate     string `json:"due_date,omitempty"`
	Notes       string `json:"notes,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// NewCaseResponse builds the response projection of a lab case
func NewCaseResponse(c *domain.Case) CaseResponse {
	resp := CaseResponse{
		ID:          c.ID,
		CaseNumber:  c.CaseNumber,
		DentistID:   c.DentistID,
		PatientName: c.PatientName,
		CaseType:    c.CaseType,
		Status:      string(c.Status),
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.Format(time.RFC3339),
	}
	if c.DueDate != nil {
		resp.DueDate = c.DueDate.Format("2006-01-02")
	}
	return resp
}
