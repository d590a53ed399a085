package coupon

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for coupons, usages and favorites.
type Repository interface {
	Create(ctx context.Context, c *Coupon) error
	FindByID(ctx context.Context, id uuid.UUID) (*Coupon, error)
	Update(ctx context.Context, c *Coupon) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter *QueryFilter) ([]*Coupon, int, error)
	SetStatus(ctx context.Context, id uuid.UUID, status CouponStatus, isActive bool) (*Coupon, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*Coupon, error)
	Counts(ctx context.Context) (total, approved, pending int, err error)

	// Category name resolution for listing filters. Returns (nil, nil) when
	// no category matches.
	CategoryIDByName(ctx context.Context, name string) (*uuid.UUID, error)

	// Usages. InsertUsage returns ErrDuplicateCode when the generated code
	// collides with an existing row.
	InsertUsage(ctx context.Context, u *CouponUsage) error
	FindUsageByCode(ctx context.Context, code string) (*CouponUsage, error)
	FinalizeUsage(ctx context.Context, usageID uuid.UUID) (*CouponUsage, error)
	CountUserValidatedUsages(ctx context.Context, couponID, userID uuid.UUID) (int, error)
	CountValidatedUsages(ctx context.Context, couponID uuid.UUID) (int, error)
	CountAllValidatedUsages(ctx context.Context) (int, error)
	ListPendingUsages(ctx context.Context, userID uuid.UUID) ([]*CouponUsage, error)
	ListValidatedUsages(ctx context.Context, userID uuid.UUID) ([]*CouponUsage, error)

	// Favorites.
	AddFavorite(ctx context.Context, userID, couponID uuid.UUID) (*Favorite, error)
	RemoveFavorite(ctx context.Context, userID, couponID uuid.UUID) error
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]*Favorite, error)
}

// CompanyDirectory resolves the company owned by a COMPANY user. The coupon
// domain needs only the identity, not the full company record.
type CompanyDirectory interface {
	CompanyIDByUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

// Viewer identifies the (possibly anonymous) caller of a read endpoint.
type Viewer struct {
	UserID        uuid.UUID
	Role          string
	Authenticated bool
}

// Service exposes the coupon use cases.
type Service interface {
	List(ctx context.Context, viewer Viewer, req *ListCouponsRequest) ([]*Coupon, int, error)
	Get(ctx context.Context, viewer Viewer, id uuid.UUID) (*Coupon, error)
	Create(ctx context.Context, userID uuid.UUID, req *CreateCouponRequest) (*Coupon, error)
	Update(ctx context.Context, userID, id uuid.UUID, req *UpdateCouponRequest) (*Coupon, error)
	Delete(ctx context.Context, viewer Viewer, id uuid.UUID) error

	Activate(ctx context.Context, userID, couponID uuid.UUID) (*ActivateResponse, error)
	ValidateCode(ctx context.Context, userID uuid.UUID, req *ValidateCodeRequest) (*ValidateResponse, error)

	AddFavorite(ctx context.Context, userID, couponID uuid.UUID) (*Favorite, error)
	RemoveFavorite(ctx context.Context, userID, couponID uuid.UUID) error
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]*Favorite, error)

	ActiveCoupons(ctx context.Context, userID uuid.UUID) ([]*ActiveCouponItem, error)
	History(ctx context.Context, userID uuid.UUID) (*HistoryResponse, error)

	// Admin moderation.
	ListForModeration(ctx context.Context, status string, page, limit int) ([]*Coupon, int, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) (*Coupon, error)
	ToggleActive(ctx context.Context, id uuid.UUID) (*Coupon, error)
}
