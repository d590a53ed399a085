package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"clubelocal-backend/internal/domains/admin"
	"clubelocal-backend/internal/shared/response"
	"clubelocal-backend/pkg/logger"
)

// StatsProvider is what the handler needs from the admin service.
type StatsProvider interface {
	Stats(ctx context.Context) (*admin.Stats, error)
}

type AdminHandler struct {
	service StatsProvider
}

func NewAdminHandler(service StatsProvider) *AdminHandler {
	return &AdminHandler{service: service}
}

// GetStats handles GET /api/admin/stats.
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		logger.Error("admin stats error", err)
		response.InternalServerError(c, "Erro ao buscar estatísticas")
		return
	}
	response.OK(c, stats)
}
