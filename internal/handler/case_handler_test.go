package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentallab/backend/internal/domain"
	"github.com/dentallab/backend/internal/dto"
	"github.com/dentallab/backend/internal/repository"
	"github.com/dentallab/backend/pkg/response"
)

// MockCaseService is a mock implementation of CaseService
type MockCaseService struct {
	cases    map[string]*domain.Case
	dentists map[string]*domain.Dentist
}

func NewMockCaseService() *MockCaseService {
	return &MockCaseService{
		cases:    make(map[string]*domain.Case),
		dentists: make(map[string]*domain.Dentist),
	}
}

func (m *MockCaseService) CreateCase(ctx context.Context, req *dto.CreateCaseRequest) (*domain.Case, error) {
	if _, ok := m.dentists[req.DentistID]; !ok {
		return nil, domain.ErrDentistNotFound
	}
	now := time.Now()
	c := &domain.Case{
		ID:          "case-123",
		CaseNumber:  "LAB-2026-ABCD1234",
		DentistID:   req.DentistID,
		PatientName: req.PatientName,
		CaseType:    req.CaseType,
		Status:      domain.CaseStatusReceived,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.cases[c.ID] = c
	return c, nil
}

func (m *MockCaseService) GetCase(ctx context.Context, id string) (*domain.Case, error) {
	c, ok := m.cases[id]
	if !ok {
		return nil, domain.ErrCaseNotFound
	}
	return c, nil
}

func (m *MockCaseService) ListCases(ctx context.Context, filter *repository.CaseFilter) ([]*domain.Case, error) {
	if filter != nil && filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.ErrInvalidCaseStatus
	}
	var out []*domain.Case
	for _, c := range m.cases {
		out = append(out, c)
	}
	return out, nil
}

func (m *MockCaseService) UpdateCaseStatus(ctx context.Context, id string, status domain.CaseStatus) (*domain.Case, error) {
	c, ok := m.cases[id]
	if !ok {
		return nil, domain.ErrCaseNotFound
	}
	if !c.Status.CanTransitionTo(status) {
		return nil, domain.ErrInvalidCaseStatus
	}
	c.Status = status
	return c, nil
}

func (m *MockCaseService) CreateDentist(ctx context.Context, req *dto.CreateDentistRequest) (*domain.Dentist, error) {
	now := time.Now()
	d := &domain.Dentist{
		ID:        "3f2a01b4-9c1d-4e8a-b6f0-1a2b3c4d5e6f",
		Name:      req.Name,
		Clinic:    req.Clinic,
		Email:     req.Email,
		Phone:     req.Phone,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.dentists[d.ID] = d
	return d, nil
}

func (m *MockCaseService) GetDentist(ctx context.Context, id string) (*domain.Dentist, error) {
	d, ok := m.dentists[id]
	if !ok {
		return nil, domain.ErrDentistNotFound
	}
	return d, nil
}

func (m *MockCaseService) ListDentists(ctx context.Context) ([]*domain.Dentist, error) {
	var out []*domain.Dentist
	for _, d := range m.dentists {
		out = append(out, d)
	}
	return out, nil
}

func setupCaseRouter(svc *MockCaseService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewCaseHandler(svc)
	r := gin.New()
	r.POST("/cases", h.CreateCase)
	r.GET("/cases", h.ListCases)
	r.GET("/cases/:id", h.GetCase)
	r.PATCH("/cases/:id/status", h.UpdateCaseStatus)
	r.POST("/dentists", h.CreateDentist)
	r.GET("/dentists", h.ListDentists)
	r.GET("/dentists/:id", h.GetDentist)
	return r
}

func doJSON(r *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCaseHandler_CreateCase(t *testing.T) {
	svc := NewMockCaseService()
	r := setupCaseRouter(svc)

	_, err := svc.CreateDentist(context.Background(), &dto.CreateDentistRequest{
		Name:  "Dr. Molar",
		Email: "molar@clinic.example",
	})
	require.NoError(t, err)

	t.Run("created", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/cases", dto.CreateCaseRequest{
			DentistID:   "3f2a01b4-9c1d-4e8a-b6f0-1a2b3c4d5e6f",
			PatientName: "Jane Doe",
			CaseType:    "crown",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp response.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
	})

	t.Run("unknown dentist", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/cases", dto.CreateCaseRequest{
			DentistID:   "11111111-2222-3333-4444-555555555555",
			PatientName: "Jane Doe",
			CaseType:    "crown",
		})
		assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	})

	t.Run("missing fields", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/cases", gin.H{"patient_name": "X"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad due date", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/cases", dto.CreateCaseRequest{
			DentistID:   "3f2a01b4-9c1d-4e8a-b6f0-1a2b3c4d5e6f",
			PatientName: "Jane Doe",
			CaseType:    "crown",
			DueDate:     "soon",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCaseHandler_UpdateCaseStatus(t *testing.T) {
	svc := NewMockCaseService()
	r := setupCaseRouter(svc)

	_, err := svc.CreateDentist(context.Background(), &dto.CreateDentistRequest{Name: "Dr. Molar", Email: "m@c.example"})
	require.NoError(t, err)
	created, err := svc.CreateCase(context.Background(), &dto.CreateCaseRequest{
		DentistID: "3f2a01b4-9c1d-4e8a-b6f0-1a2b3c4d5e6f", PatientName: "John", CaseType: "bridge",
	})
	require.NoError(t, err)

	t.Run("allowed transition", func(t *testing.T) {
		w := doJSON(r, http.MethodPatch, "/cases/"+created.ID+"/status",
			dto.UpdateCaseStatusRequest{Status: string(domain.CaseStatusInProgress)})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("illegal transition", func(t *testing.T) {
		w := doJSON(r, http.MethodPatch, "/cases/"+created.ID+"/status",
			dto.UpdateCaseStatusRequest{Status: string(domain.CaseStatusDelivered)})
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp response.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "INVALID_CASE_STATUS", resp.Code)
	})

	t.Run("unknown case", func(t *testing.T) {
		w := doJSON(r, http.MethodPatch, "/cases/missing/status",
			dto.UpdateCaseStatusRequest{Status: string(domain.CaseStatusInProgress)})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCaseHandler_Dentists(t *testing.T) {
	svc := NewMockCaseService()
	r := setupCaseRouter(svc)

	w := doJSON(r, http.MethodPost, "/dentists", dto.CreateDentistRequest{
		Name:   "Dr. Molar",
		Clinic: "Bright Smiles",
		Email:  "molar@clinic.example",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(r, http.MethodGet, "/dentists/3f2a01b4-9c1d-4e8a-b6f0-1a2b3c4d5e6f", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/dentists/nobody", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/dentists", nil)
	require.Equal(t, http.StatusOK, w.Code)
}
