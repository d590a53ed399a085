package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"clubelocal-backend/internal/domains/company"
	"clubelocal-backend/internal/shared/response"
	"clubelocal-backend/pkg/logger"
)

type CompanyHandler struct {
	service company.Service
}

func NewCompanyHandler(service company.Service) *CompanyHandler {
	return &CompanyHandler{service: service}
}

// List handles GET /api/admin/companies.
func (h *CompanyHandler) List(c *gin.Context) {
	var req company.ListCompaniesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Parâmetros de consulta inválidos")
		return
	}

	companies, total, err := h.service.List(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, gin.H{
		"companies":  companies,
		"pagination": response.NewPagination(req.Page, req.Limit, total),
	})
}

// UpdateStatus handles PUT /api/admin/companies/:id/status.
func (h *CompanyHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "ID de empresa inválido")
		return
	}

	var req company.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Corpo da requisição inválido")
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), id, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, updated)
}

func (h *CompanyHandler) handleError(c *gin.Context, err error) {
	var vErrs validation.Errors
	if errors.As(err, &vErrs) {
		response.BadRequest(c, err.Error())
		return
	}

	switch {
	case errors.Is(err, company.ErrInvalidStatus):
		response.BadRequest(c, err.Error())
	case errors.Is(err, company.ErrNotFound):
		response.NotFound(c, err.Error())
	default:
		logger.Error("company handler error", err)
		response.InternalServerError(c, "Erro interno do servidor")
	}
}
