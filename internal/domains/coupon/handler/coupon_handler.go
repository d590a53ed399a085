package handler

import (
	"encoding/base64"
	"errors"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"clubelocal-backend/internal/domains/coupon"
	"clubelocal-backend/internal/shared/middleware"
	"clubelocal-backend/internal/shared/response"
	"clubelocal-backend/pkg/logger"
)

const qrImageSize = 256

type CouponHandler struct {
	service coupon.Service
}

func NewCouponHandler(service coupon.Service) *CouponHandler {
	return &CouponHandler{service: service}
}

func viewerFrom(c *gin.Context) coupon.Viewer {
	userID, ok := middleware.UserID(c)
	if !ok {
		return coupon.Viewer{}
	}
	role, _ := middleware.Role(c)
	return coupon.Viewer{UserID: userID, Role: role, Authenticated: true}
}

// List handles GET /api/coupons. Works with or without a token; the filter
// tightens or widens with the caller's role.
func (h *CouponHandler) List(c *gin.Context) {
	var req coupon.ListCouponsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Parâmetros de consulta inválidos")
		return
	}

	coupons, total, err := h.service.List(c.Request.Context(), viewerFrom(c), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, gin.H{
		"coupons":    coupons,
		"pagination": response.NewPagination(req.Page, req.Limit, total),
	})
}

// Get handles GET /api/coupons/:id.
func (h *CouponHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, coupon.ErrNotFound.Error())
		return
	}

	cp, err := h.service.Get(c.Request.Context(), viewerFrom(c), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, cp)
}

// Create handles POST /api/coupons.
func (h *CouponHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Usuário não autenticado")
		return
	}

	var req coupon.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Corpo da requisição inválido")
		return
	}

	cp, err := h.service.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Created(c, gin.H{
		"message": "Cupom criado com sucesso! Aguardando aprovação.",
		"coupon":  cp,
	})
}

// Update handles PUT /api/coupons/:id.
func (h *CouponHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Usuário não autenticado")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, coupon.ErrNotFound.Error())
		return
	}

	var req coupon.UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Corpo da requisição inválido")
		return
	}

	cp, err := h.service.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, gin.H{
		"message": "Cupom atualizado com sucesso!",
		"coupon":  cp,
	})
}

// Delete handles DELETE /api/coupons/:id.
func (h *CouponHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, coupon.ErrNotFound.Error())
		return
	}

	if err := h.service.Delete(c.Request.Context(), viewerFrom(c), id); err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, gin.H{"message": "Cupom deletado com sucesso"})
}

// Activate handles POST /api/coupons/:id/use. The QR payload is also
// rendered server-side as a base64 PNG so the app can show it offline.
func (h *CouponHandler) Activate(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Usuário não autenticado")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, coupon.ErrNotFound.Error())
		return
	}

	resp, err := h.service.Activate(c.Request.Context(), userID, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	if png, err := qrcode.Encode(resp.QRCode, qrcode.Medium, qrImageSize); err != nil {
		logger.Warn("qr image generation failed", map[string]interface{}{"error": err.Error()})
	} else {
		resp.QRCodeImage = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	}
	response.Created(c, resp)
}

// ValidateCode handles POST /api/coupons/validate.
func (h *CouponHandler) ValidateCode(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Usuário não autenticado")
		return
	}

	var req coupon.ValidateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Corpo da requisição inválido")
		return
	}

	resp, err := h.service.ValidateCode(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, resp)
}

// ListFavorites handles GET /api/users/favorites.
func (h *CouponHandler) ListFavorites(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Usuário não autenticado")
		return
	}

	favorites, err := h.service.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, gin.H{"favorites": favorites})
}

// AddFavorite handles POST /api/users/favorites.
func (h *CouponHandler) AddFavorite(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Usuário não autenticado")
		return
	}

	var req struct {
		CouponID string `json:"couponId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.CouponID == "" {
		response.BadRequest(c, "ID do cupom é obrigatório")
		return
	}
	couponID, err := uuid.Parse(req.CouponID)
	if err != nil {
		response.BadRequest(c, "ID do cupom é obrigatório")
		return
	}

	fav, err := h.service.AddFavorite(c.Request.Context(), userID, couponID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Created(c, gin.H{
		"message":  "Cupom adicionado aos favoritos",
		"favorite": fav,
	})
}

// RemoveFavorite handles DELETE /api/users/favorites/:couponId.
func (h *CouponHandler) RemoveFavorite(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Usuário não autenticado")
		return
	}
	couponID, err := uuid.Parse(c.Param("couponId"))
	if err != nil {
		response.NotFound(c, coupon.ErrFavoriteNotFound.Error())
		return
	}

	if err := h.service.RemoveFavorite(c.Request.Context(), userID, couponID); err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, gin.H{"message": "Cupom removido dos favoritos"})
}

// ActiveCoupons handles GET /api/users/active-coupons.
func (h *CouponHandler) ActiveCoupons(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Usuário não autenticado")
		return
	}

	items, err := h.service.ActiveCoupons(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, gin.H{"activeCoupons": items})
}

// History handles GET /api/users/history.
func (h *CouponHandler) History(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "Usuário não autenticado")
		return
	}

	resp, err := h.service.History(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, resp)
}

// ListForModeration handles GET /api/admin/coupons/pending.
func (h *CouponHandler) ListForModeration(c *gin.Context) {
	var req struct {
		Status string `form:"status"`
		Page   int    `form:"page"`
		Limit  int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Parâmetros de consulta inválidos")
		return
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}

	coupons, total, err := h.service.ListForModeration(c.Request.Context(), req.Status, req.Page, req.Limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, gin.H{
		"coupons":    coupons,
		"pagination": response.NewPagination(req.Page, req.Limit, total),
	})
}

// SetStatus handles PUT /api/admin/coupons/:id/status.
func (h *CouponHandler) SetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, coupon.ErrNotFound.Error())
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Corpo da requisição inválido")
		return
	}

	cp, err := h.service.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, gin.H{
		"message": "Status do cupom atualizado",
		"coupon":  cp,
	})
}

// ToggleActive handles PUT /api/admin/coupons/:id/toggle-active.
func (h *CouponHandler) ToggleActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, coupon.ErrNotFound.Error())
		return
	}

	cp, err := h.service.ToggleActive(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	message := "Cupom pausado com sucesso"
	if cp.IsActive {
		message = "Cupom ativado com sucesso"
	}
	response.OK(c, gin.H{
		"message": message,
		"coupon":  cp,
	})
}

func (h *CouponHandler) handleError(c *gin.Context, err error) {
	var vErrs validation.Errors
	if errors.As(err, &vErrs) {
		response.BadRequest(c, err.Error())
		return
	}
	var limitErr *coupon.UserLimitError
	if errors.As(err, &limitErr) {
		response.BadRequest(c, limitErr.Error())
		return
	}

	switch {
	case errors.Is(err, coupon.ErrInvalidDates),
		errors.Is(err, coupon.ErrInvalidStatus),
		errors.Is(err, coupon.ErrToggleDenied),
		errors.Is(err, coupon.ErrNotAvailable),
		errors.Is(err, coupon.ErrExpired),
		errors.Is(err, coupon.ErrNotYetValid),
		errors.Is(err, coupon.ErrTotalLimitReached),
		errors.Is(err, coupon.ErrCodeRequired),
		errors.Is(err, coupon.ErrInvalidQRCode),
		errors.Is(err, coupon.ErrAlreadyUsed),
		errors.Is(err, coupon.ErrUsageExpired),
		errors.Is(err, coupon.ErrUsageNotYetValid),
		errors.Is(err, coupon.ErrFavoriteExists),
		errors.Is(err, coupon.ErrInvalidCompanyID):
		response.BadRequest(c, err.Error())
	case errors.Is(err, coupon.ErrCurrentForbidden):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, coupon.ErrNotOwner),
		errors.Is(err, coupon.ErrDeleteDenied),
		errors.Is(err, coupon.ErrWrongCompany):
		response.Forbidden(c, err.Error())
	case errors.Is(err, coupon.ErrNotFound),
		errors.Is(err, coupon.ErrCodeNotFound),
		errors.Is(err, coupon.ErrCompanyMissing),
		errors.Is(err, coupon.ErrFavoriteNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, coupon.ErrCodeGeneration):
		response.InternalServerError(c, err.Error())
	default:
		logger.Error("coupon handler error", err)
		response.InternalServerError(c, "Erro interno do servidor")
	}
}
