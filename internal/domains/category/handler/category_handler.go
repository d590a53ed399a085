package handler

import (
	"github.com/gin-gonic/gin"

	"clubelocal-backend/internal/domains/category"
	"clubelocal-backend/internal/shared/response"
	"clubelocal-backend/pkg/logger"
)

type CategoryHandler struct {
	service category.Service
}

func NewCategoryHandler(service category.Service) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// List handles GET /api/coupons/categories.
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.service.List(c.Request.Context())
	if err != nil {
		logger.Error("category list error", err)
		response.InternalServerError(c, "Erro ao buscar categorias")
		return
	}
	response.OK(c, gin.H{"categories": categories})
}
