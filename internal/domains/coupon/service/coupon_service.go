package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"clubelocal-backend/internal/config"
	"clubelocal-backend/internal/domains/coupon"
	"clubelocal-backend/internal/domains/user"
	"clubelocal-backend/pkg/cache"
	"clubelocal-backend/pkg/logger"
)

type CouponService struct {
	repo      coupon.Repository
	companies coupon.CompanyDirectory
	codes     *coupon.CodeGenerator
	cfg       *config.CouponConfig
	cache     cache.Cache
}

func NewCouponService(repo coupon.Repository, companies coupon.CompanyDirectory, cfg *config.CouponConfig, c cache.Cache) *CouponService {
	return &CouponService{
		repo:      repo,
		companies: companies,
		codes:     coupon.NewCodeGenerator(cfg.CodeAlphabet, cfg.CodeLength),
		cfg:       cfg,
		cache:     c,
	}
}

var _ coupon.Service = (*CouponService)(nil)

// List resolves every query parameter before touching the database, then
// hands the repository a fully-built filter for the caller's role.
func (s *CouponService) List(ctx context.Context, viewer coupon.Viewer, req *coupon.ListCouponsRequest) ([]*coupon.Coupon, int, error) {
	req.Normalize()

	var categoryID *uuid.UUID
	if req.Category != "" {
		id, err := s.repo.CategoryIDByName(ctx, req.Category)
		if err != nil {
			return nil, 0, err
		}
		if id == nil {
			// Unknown category names yield an empty page, not an error.
			return []*coupon.Coupon{}, 0, nil
		}
		categoryID = id
	}

	companyID, err := s.resolveCompanyScope(ctx, viewer, req.CompanyID)
	if err != nil {
		return nil, 0, err
	}

	var filter *coupon.QueryFilter
	switch viewer.Role {
	case user.RoleCompany.String():
		own := companyID
		if own == nil {
			id, err := s.companies.CompanyIDByUser(ctx, viewer.UserID)
			if err != nil {
				return nil, 0, err
			}
			own = &id
		}
		filter = coupon.CompanyCouponFilter(*own, req)
	case user.RoleAdmin.String():
		filter = coupon.AdminCouponFilter(req)
		if companyID != nil {
			filter.WithCompany(*companyID)
		}
	default:
		filter = coupon.CustomerCouponFilter(req)
		if companyID != nil {
			filter.WithCompany(*companyID)
		}
	}
	if categoryID != nil {
		filter.WithCategory(*categoryID)
	}

	return s.repo.List(ctx, filter)
}

// resolveCompanyScope turns the companyId parameter, including the literal
// "current", into a concrete id. Returns nil when no scoping was asked for.
func (s *CouponService) resolveCompanyScope(ctx context.Context, viewer coupon.Viewer, raw string) (*uuid.UUID, error) {
	switch {
	case raw == "":
		return nil, nil
	case raw == "current":
		if !viewer.Authenticated || viewer.Role != user.RoleCompany.String() {
			return nil, coupon.ErrCurrentForbidden
		}
		id, err := s.companies.CompanyIDByUser(ctx, viewer.UserID)
		if err != nil {
			return nil, err
		}
		return &id, nil
	default:
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, coupon.ErrInvalidCompanyID
		}
		return &id, nil
	}
}

// Get applies the visibility policy: hidden coupons 404 rather than 403 so
// their existence is not revealed.
func (s *CouponService) Get(ctx context.Context, viewer coupon.Viewer, id uuid.UUID) (*coupon.Coupon, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if c.Status == coupon.StatusApproved && c.IsActive {
		return c, nil
	}
	if viewer.Role == user.RoleAdmin.String() {
		return c, nil
	}
	if viewer.Role == user.RoleCompany.String() {
		ownID, err := s.companies.CompanyIDByUser(ctx, viewer.UserID)
		if err == nil && ownID == c.CompanyID {
			return c, nil
		}
	}
	return nil, coupon.ErrNotFound
}

// Create stores the merchant submission as PENDING and inactive; only an
// admin approval makes it visible.
func (s *CouponService) Create(ctx context.Context, userID uuid.UUID, req *coupon.CreateCouponRequest) (*coupon.Coupon, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	companyID, err := s.companies.CompanyIDByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	maxUses := req.MaxUsesPerUser
	if maxUses < 1 {
		maxUses = 1
	}

	c := &coupon.Coupon{
		CompanyID:       companyID,
		CategoryID:      req.CategoryID,
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		DiscountType:    coupon.DiscountType(req.DiscountType),
		DiscountValue:   req.DiscountValue,
		ImageURL:        req.ImageURL,
		TermsConditions: req.TermsConditions,
		ValidFrom:       req.ValidFrom,
		ValidUntil:      req.ValidUntil,
		MaxUsesPerUser:  maxUses,
		TotalUsesLimit:  req.TotalUsesLimit,
		Status:          coupon.StatusPending,
		IsActive:        false,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.invalidateCaches(ctx)

	logger.Info("coupon created", map[string]interface{}{
		"coupon_id":  c.ID.String(),
		"company_id": companyID.String(),
	})
	return s.repo.FindByID(ctx, c.ID)
}

// Update applies a partial edit. Editing an APPROVED coupon demotes it to
// PENDING, and any edit deactivates until the next approval.
func (s *CouponService) Update(ctx context.Context, userID, id uuid.UUID, req *coupon.UpdateCouponRequest) (*coupon.Coupon, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ownID, err := s.companies.CompanyIDByUser(ctx, userID)
	if err != nil || ownID != c.CompanyID {
		return nil, coupon.ErrNotOwner
	}

	if req.Title != nil {
		c.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.DiscountType != nil {
		c.DiscountType = coupon.DiscountType(*req.DiscountType)
	}
	if req.DiscountValue != nil {
		c.DiscountValue = req.DiscountValue
	}
	if req.ImageURL != nil {
		c.ImageURL = req.ImageURL
	}
	if req.TermsConditions != nil {
		c.TermsConditions = req.TermsConditions
	}
	if req.ValidFrom != nil {
		c.ValidFrom = *req.ValidFrom
	}
	if req.ValidUntil != nil {
		c.ValidUntil = *req.ValidUntil
	}
	if req.MaxUsesPerUser != nil {
		c.MaxUsesPerUser = *req.MaxUsesPerUser
	}
	if req.TotalUsesLimit != nil {
		c.TotalUsesLimit = req.TotalUsesLimit
	}
	if req.CategoryID != nil {
		c.CategoryID = req.CategoryID
	}

	if !c.ValidUntil.After(c.ValidFrom) {
		return nil, coupon.ErrInvalidDates
	}

	if c.Status == coupon.StatusApproved {
		c.Status = coupon.StatusPending
	}
	c.IsActive = false

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.invalidateCaches(ctx)

	return s.repo.FindByID(ctx, c.ID)
}

func (s *CouponService) Delete(ctx context.Context, viewer coupon.Viewer, id uuid.UUID) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	switch viewer.Role {
	case user.RoleAdmin.String():
	case user.RoleCompany.String():
		ownID, err := s.companies.CompanyIDByUser(ctx, viewer.UserID)
		if err != nil || ownID != c.CompanyID {
			return coupon.ErrDeleteDenied
		}
	default:
		return coupon.ErrDeleteDenied
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCaches(ctx)
	return nil
}

// Activate is redemption phase one: preconditions, then an insert of an
// unused usage row with a fresh code. The caps below count only validated
// rows, so a pending activation does not consume quota. The check and the
// insert are not one atomic step; concurrent activations can momentarily
// exceed a cap near its boundary, which the merchant-side validation
// tolerates.
func (s *CouponService) Activate(ctx context.Context, userID, couponID uuid.UUID) (*coupon.ActivateResponse, error) {
	c, err := s.repo.FindByID(ctx, couponID)
	if err != nil {
		return nil, err
	}

	if c.Status != coupon.StatusApproved || !c.IsActive {
		return nil, coupon.ErrNotAvailable
	}

	now := time.Now()
	if now.After(c.ValidUntil) {
		return nil, coupon.ErrExpired
	}
	if now.Before(c.ValidFrom) {
		return nil, coupon.ErrNotYetValid
	}

	userUsages, err := s.repo.CountUserValidatedUsages(ctx, couponID, userID)
	if err != nil {
		return nil, err
	}
	if userUsages >= c.MaxUsesPerUser {
		return nil, &coupon.UserLimitError{Max: c.MaxUsesPerUser}
	}

	if c.TotalUsesLimit != nil {
		totalUsages, err := s.repo.CountValidatedUsages(ctx, couponID)
		if err != nil {
			return nil, err
		}
		if totalUsages >= *c.TotalUsesLimit {
			return nil, coupon.ErrTotalLimitReached
		}
	}

	usage, err := s.insertWithUniqueCode(ctx, couponID, userID)
	if err != nil {
		return nil, err
	}
	usage.Coupon = c

	logger.Info("coupon activated", map[string]interface{}{
		"coupon_id": couponID.String(),
		"user_id":   userID.String(),
		"code":      usage.Code,
	})

	return &coupon.ActivateResponse{
		Message:     "Cupom ativado com sucesso!",
		Code:        usage.Code,
		QRCode:      coupon.BuildQRPayload(s.cfg.QRNamespace, couponID, usage.Code),
		CouponUsage: usage,
	}, nil
}

// insertWithUniqueCode retries on code collisions, relying on the unique
// constraint instead of a pre-check so two concurrent drawers cannot both
// claim the same code.
func (s *CouponService) insertWithUniqueCode(ctx context.Context, couponID, userID uuid.UUID) (*coupon.CouponUsage, error) {
	for attempt := 0; attempt < s.cfg.MaxCodeAttempts; attempt++ {
		code, err := s.codes.Generate()
		if err != nil {
			return nil, err
		}

		usage := &coupon.CouponUsage{CouponID: couponID, UserID: userID, Code: code}
		err = s.repo.InsertUsage(ctx, usage)
		if err == nil {
			return usage, nil
		}
		if !errors.Is(err, coupon.ErrDuplicateCode) {
			return nil, err
		}
	}
	return nil, coupon.ErrCodeGeneration
}

// ValidateCode is redemption phase two, executed at the counter. The final
// flip of is_used happens in a single conditional UPDATE so a code can be
// redeemed exactly once no matter how many terminals scan it.
func (s *CouponService) ValidateCode(ctx context.Context, userID uuid.UUID, req *coupon.ValidateCodeRequest) (*coupon.ValidateResponse, error) {
	code, err := s.extractCode(req)
	if err != nil {
		return nil, err
	}

	usage, err := s.repo.FindUsageByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if usage.IsUsed {
		return nil, coupon.ErrAlreadyUsed
	}

	ownID, err := s.companies.CompanyIDByUser(ctx, userID)
	if err != nil || ownID != usage.Coupon.CompanyID {
		return nil, coupon.ErrWrongCompany
	}

	now := time.Now()
	if now.After(usage.Coupon.ValidUntil) {
		return nil, coupon.ErrUsageExpired
	}
	if now.Before(usage.Coupon.ValidFrom) {
		return nil, coupon.ErrUsageNotYetValid
	}

	finalized, err := s.repo.FinalizeUsage(ctx, usage.ID)
	if err != nil {
		return nil, err
	}
	s.invalidateCaches(ctx)

	logger.Info("coupon validated", map[string]interface{}{
		"usage_id":   finalized.ID.String(),
		"coupon_id":  usage.CouponID.String(),
		"company_id": ownID.String(),
	})

	return &coupon.ValidateResponse{
		Message: "Cupom validado com sucesso!",
		CouponUsage: &coupon.ValidatedUsage{
			ID:      finalized.ID,
			Code:    finalized.Code,
			UsedAt:  *finalized.UsedAt,
			User:    usage.User,
			Coupon:  usage.Coupon,
			Savings: coupon.SavingsEstimate(usage.Coupon.DiscountType, usage.Coupon.DiscountValue),
		},
	}, nil
}

func (s *CouponService) extractCode(req *coupon.ValidateCodeRequest) (string, error) {
	if qr := strings.TrimSpace(req.QRCode); qr != "" {
		_, code, err := coupon.ParseQRPayload(s.cfg.QRNamespace, qr)
		if err != nil {
			return "", err
		}
		return code, nil
	}
	if code := strings.TrimSpace(req.Code); code != "" {
		return code, nil
	}
	return "", coupon.ErrCodeRequired
}

func (s *CouponService) AddFavorite(ctx context.Context, userID, couponID uuid.UUID) (*coupon.Favorite, error) {
	if _, err := s.repo.FindByID(ctx, couponID); err != nil {
		return nil, err
	}
	return s.repo.AddFavorite(ctx, userID, couponID)
}

func (s *CouponService) RemoveFavorite(ctx context.Context, userID, couponID uuid.UUID) error {
	return s.repo.RemoveFavorite(ctx, userID, couponID)
}

func (s *CouponService) ListFavorites(ctx context.Context, userID uuid.UUID) ([]*coupon.Favorite, error) {
	return s.repo.ListFavorites(ctx, userID)
}

// ActiveCoupons lists the caller's not-yet-validated activations that are
// still redeemable, rebuilding each QR payload for the app to render.
func (s *CouponService) ActiveCoupons(ctx context.Context, userID uuid.UUID) ([]*coupon.ActiveCouponItem, error) {
	usages, err := s.repo.ListPendingUsages(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]*coupon.ActiveCouponItem, 0, len(usages))
	for _, u := range usages {
		items = append(items, &coupon.ActiveCouponItem{
			ID:        u.ID,
			Code:      u.Code,
			QRCode:    coupon.BuildQRPayload(s.cfg.QRNamespace, u.CouponID, u.Code),
			CreatedAt: u.CreatedAt,
			Coupon:    u.Coupon,
		})
	}
	return items, nil
}

func (s *CouponService) History(ctx context.Context, userID uuid.UUID) (*coupon.HistoryResponse, error) {
	usages, err := s.repo.ListValidatedUsages(ctx, userID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, u := range usages {
		total = total.Add(coupon.SavingsEstimate(u.Coupon.DiscountType, u.Coupon.DiscountValue))
	}
	return &coupon.HistoryResponse{History: usages, TotalSavings: total}, nil
}

func (s *CouponService) ListForModeration(ctx context.Context, status string, page, limit int) ([]*coupon.Coupon, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, coupon.ModerationCouponFilter(status, page, limit))
}

// SetStatus is the admin approval decision. Approval activates the coupon
// in the same step; rejection deactivates it.
func (s *CouponService) SetStatus(ctx context.Context, id uuid.UUID, status string) (*coupon.Coupon, error) {
	target := coupon.CouponStatus(status)
	if target != coupon.StatusApproved && target != coupon.StatusRejected {
		return nil, coupon.ErrInvalidStatus
	}

	c, err := s.repo.SetStatus(ctx, id, target, target == coupon.StatusApproved)
	if err != nil {
		return nil, err
	}
	s.invalidateCaches(ctx)

	logger.Info("coupon status updated", map[string]interface{}{
		"coupon_id": c.ID.String(),
		"status":    c.Status.String(),
	})
	return c, nil
}

func (s *CouponService) ToggleActive(ctx context.Context, id uuid.UUID) (*coupon.Coupon, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != coupon.StatusApproved {
		return nil, coupon.ErrToggleDenied
	}

	updated, err := s.repo.SetActive(ctx, id, !c.IsActive)
	if err != nil {
		return nil, err
	}
	s.invalidateCaches(ctx)
	return updated, nil
}

func (s *CouponService) invalidateCaches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.KeyCategoriesLive, cache.KeyAdminStats); err != nil {
		logger.Warn("cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}
