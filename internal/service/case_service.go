package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dentallab/backend/internal/domain"
	"github.com/dentallab/backend/internal/dto"
	"github.com/dentallab/backend/internal/repository"
	"github.com/dentallab/backend/pkg/telemetry"
)

// CaseService defines lab case and dentist operations
type CaseService interface {
	CreateCase(ctx context.Context, req *dto.CreateCaseRequest) (*domain.Case, error)
	GetCase(ctx context.Context, id string) (*domain.Case, error)
	ListCases(ctx context.Context, filter *repository.CaseFilter) ([]*domain.Case, error)
	UpdateCaseStatus(ctx context.Context, id string, status domain.CaseStatus) (*domain.Case, error)

	CreateDentist(ctx context.Context, req *dto.CreateDentistRequest) (*domain.Dentist, error)
	GetDentist(ctx context.Context, id string) (*domain.Dentist, error)
	ListDentists(ctx context.Context) ([]*domain.Dentist, error)
}

// caseService implements CaseService
type caseService struct {
	caseRepo    repository.CaseRepository
	dentistRepo repository.DentistRepository
}

// NewCaseService creates a new CaseService
func NewCaseService(caseRepo repository.CaseRepository, dentistRepo repository.DentistRepository) CaseService {
	return &caseService{caseRepo: caseRepo, dentistRepo: dentistRepo}
}

// CreateCase registers a new lab case for an existing dentist
func (s *caseService) CreateCase(ctx context.Context, req *dto.CreateCaseRequest) (*domain.Case, error) {
	ctx, span := telemetry.StartSpan(ctx, "CaseService.CreateCase")
	defer span.End()

	dentist, err := s.dentistRepo.GetByID(ctx, req.DentistID)
	if err != nil {
		return nil, err
	}
	if dentist == nil {
		return nil, domain.ErrDentistNotFound
	}

	dueDate, ok := req.ParseDueDate()
	if !ok {
		return nil, domain.ErrInvalidDueDate
	}

	now := time.Now()
	id := uuid.New().String()
	c := &domain.Case{
		ID:          id,
		CaseNumber:  newCaseNumber(now, id),
		DentistID:   req.DentistID,
		PatientName: req.PatientName,
		CaseType:    req.CaseType,
		Status:      domain.CaseStatusReceived,
		DueDate:     dueDate,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.caseRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCase retrieves a lab case by id
func (s *caseService) GetCase(ctx context.Context, id string) (*domain.Case, error) {
	c, err := s.caseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrCaseNotFound
	}
	return c, nil
}

// ListCases lists lab cases, optionally filtered by status and dentist
func (s *caseService) ListCases(ctx context.Context, filter *repository.CaseFilter) ([]*domain.Case, error) {
	if filter != nil && filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.ErrInvalidCaseStatus
	}
	return s.caseRepo.List(ctx, filter)
}

// UpdateCaseStatus moves a case through the workflow, rejecting
// transitions the workflow graph does not allow
func (s *caseService) UpdateCaseStatus(ctx context.Context, id string, status domain.CaseStatus) (*domain.Case, error) {
	ctx, span := telemetry.StartSpan(ctx, "CaseService.UpdateCaseStatus")
	defer span.End()

	if !status.Valid() {
		return nil, domain.ErrInvalidCaseStatus
	}

	c, err := s.caseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrCaseNotFound
	}
	if !c.Status.CanTransitionTo(status) {
		return nil, domain.ErrInvalidCaseStatus
	}

	if err := s.caseRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	return c, nil
}

// CreateDentist registers a new dentist client
func (s *caseService) CreateDentist(ctx context.Context, req *dto.CreateDentistRequest) (*domain.Dentist, error) {
	ctx, span := telemetry.StartSpan(ctx, "CaseService.CreateDentist")
	defer span.End()

	now := time.Now()
	d := &domain.Dentist{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Clinic:    req.Clinic,
		Email:     req.Email,
		Phone:     req.Phone,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.dentistRepo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// GetDentist retrieves a dentist by id
func (s *caseService) GetDentist(ctx context.Context, id string) (*domain.Dentist, error) {
	d, err := s.dentistRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrDentistNotFound
	}
	return d, nil
}

// ListDentists lists all dentists
func (s *caseService) ListDentists(ctx context.Context) ([]*domain.Dentist, error) {
	return s.dentistRepo.List(ctx)
}

// newCaseNumber builds a human-readable case number, e.g. LAB-2026-3F2A01B4
func newCaseNumber(at time.Time, id string) string {
	short := strings.ToUpper(strings.ReplaceAll(id, "-", ""))[:8]
	return fmt.Sprintf("LAB-%d-%s", at.Year(), short)
}
