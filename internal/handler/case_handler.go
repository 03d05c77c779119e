package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dentallab/backend/internal/domain"
	"github.com/dentallab/backend/internal/dto"
	"github.com/dentallab/backend/internal/repository"
	"github.com/dentallab/backend/internal/service"
	"github.com/dentallab/backend/pkg/logger"
	"github.com/dentallab/backend/pkg/response"
)

// CaseHandler handles lab case and dentist HTTP requests
type CaseHandler struct {
	caseService service.CaseService
}

// NewCaseHandler creates a new CaseHandler
func NewCaseHandler(caseService service.CaseService) *CaseHandler {
	return &CaseHandler{caseService: caseService}
}

// CreateCase handles POST /cases
func (h *CaseHandler) CreateCase(c *gin.Context) {
	var req dto.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}
	if _, ok := req.ParseDueDate(); !ok {
		response.ValidationError(c, "due_date must be YYYY-MM-DD or RFC3339")
		return
	}

	created, err := h.caseService.CreateCase(c.Request.Context(), &req)
	if err != nil {
		h.writeCaseError(c, err)
		return
	}
	response.Created(c, dto.NewCaseResponse(created))
}

// GetCase handles GET /cases/:id
func (h *CaseHandler) GetCase(c *gin.Context) {
	found, err := h.caseService.GetCase(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeCaseError(c, err)
		return
	}
	response.Success(c, dto.NewCaseResponse(found))
}

// ListCases handles GET /cases
func (h *CaseHandler) ListCases(c *gin.Context) {
	var query dto.ListCasesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	filter := &repository.CaseFilter{
		Status:    domain.CaseStatus(query.Status),
		DentistID: query.DentistID,
	}
	cases, err := h.caseService.ListCases(c.Request.Context(), filter)
	if err != nil {
		h.writeCaseError(c, err)
		return
	}

	out := make([]dto.CaseResponse, len(cases))
	for i, item := range cases {
		out[i] = dto.NewCaseResponse(item)
	}
	response.Success(c, out)
}

// UpdateCaseStatus handles PATCH /cases/:id/status
func (h *CaseHandler) UpdateCaseStatus(c *gin.Context) {
	var req dto.UpdateCaseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	updated, err := h.caseService.UpdateCaseStatus(c.Request.Context(), c.Param("id"), domain.CaseStatus(req.Status))
	if err != nil {
		h.writeCaseError(c, err)
		return
	}
	response.Success(c, dto.NewCaseResponse(updated))
}

// CreateDentist handles POST /dentists
func (h *CaseHandler) CreateDentist(c *gin.Context) {
	var req dto.CreateDentistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	created, err := h.caseService.CreateDentist(c.Request.Context(), &req)
	if err != nil {
		h.writeCaseError(c, err)
		return
	}
	response.Created(c, dto.NewDentistResponse(created))
}

// GetDentist handles GET /dentists/:id
func (h *CaseHandler) GetDentist(c *gin.Context) {
	found, err := h.caseService.GetDentist(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeCaseError(c, err)
		return
	}
	response.Success(c, dto.NewDentistResponse(found))
}

// ListDentists handles GET /dentists
func (h *CaseHandler) ListDentists(c *gin.Context) {
	dentists, err := h.caseService.ListDentists(c.Request.Context())
	if err != nil {
		h.writeCaseError(c, err)
		return
	}

	out := make([]dto.DentistResponse, len(dentists))
	for i, d := range dentists {
		out[i] = dto.NewDentistResponse(d)
	}
	response.Success(c, out)
}

// writeCaseError maps case service errors onto the HTTP taxonomy.
func (h *CaseHandler) writeCaseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrCaseNotFound):
		response.NotFound(c, "Case not found")
	case errors.Is(err, domain.ErrDentistNotFound):
		response.NotFound(c, "Dentist not found")
	case errors.Is(err, domain.ErrInvalidCaseStatus):
		response.Error(c, 400, "INVALID_CASE_STATUS", "Status value or transition not allowed")
	case errors.Is(err, domain.ErrInvalidDueDate):
		response.Error(c, 400, "INVALID_DUE_DATE", "Due date must be YYYY-MM-DD or RFC3339")
	default:
		logger.Error("case handler error", zap.Error(err), zap.String("path", c.FullPath()))
		response.InternalError(c, err)
	}
}
