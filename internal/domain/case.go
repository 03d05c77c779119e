package domain

import "time"

// CaseStatus is the workflow state of a lab case.
type CaseStatus string

const (
	CaseStatusReceived     CaseStatus = "received"
	CaseStatusInProgress   CaseStatus = "in_progress"
	CaseStatusQualityCheck CaseStatus = "quality_check"
	CaseStatusCompleted    CaseStatus = "completed"
	CaseStatusDelivered    CaseStatus = "delivered"
	CaseStatusOnHold       CaseStatus = "on_hold"
	CaseStatusCancelled    CaseStatus = "cancelled"
)

// caseTransitions is the allowed workflow graph. on_hold and cancelled are
// reachable from any non-terminal state; on_hold resumes to in_progress.
var caseTransitions = map[CaseStatus][]CaseStatus{
	CaseStatusReceived:     {CaseStatusInProgress, CaseStatusOnHold, CaseStatusCancelled},
	CaseStatusInProgress:   {CaseStatusQualityCheck, CaseStatusOnHold, CaseStatusCancelled},
	CaseStatusQualityCheck: {CaseStatusInProgress, CaseStatusCompleted, CaseStatusOnHold, CaseStatusCancelled},
	CaseStatusCompleted:    {CaseStatusDelivered},
	CaseStatusOnHold:       {CaseStatusInProgress, CaseStatusCancelled},
}

// Valid reports whether the status is a known workflow state.
func (s CaseStatus) Valid() bool {
	switch s {
	case CaseStatusReceived, CaseStatusInProgress, CaseStatusQualityCheck,
		CaseStatusCompleted, CaseStatusDelivered, CaseStatusOnHold, CaseStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the workflow allows moving to next.
func (s CaseStatus) CanTransitionTo(next CaseStatus) bool {
	for _, allowed := range caseTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Case is a dental lab case: a unit of work ordered by a dentist.
type Case struct {
	ID          string     `json:"id"`
	CaseNumber  string     `json:"case_number"`
	DentistID   string     `json:"dentist_id"`
	PatientName string     `json:"patient_name"`
	CaseType    string     `json:"case_type"`
	Status      CaseStatus `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Dentist is a client of the lab.
type Dentist struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Clinic    string    `json:"clinic,omitempty"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
