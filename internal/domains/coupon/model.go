package coupon

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Coupon is a merchant offer. Visibility to customers requires the full
// conjunction: status APPROVED, is_active true and the clock inside
// [ValidFrom, ValidUntil].
type Coupon struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	CompanyID   uuid.UUID  `db:"company_id" json:"companyId"`
	CategoryID  *uuid.UUID `db:"category_id" json:"categoryId,omitempty"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`

	DiscountType DiscountType `db:"discount_type" json:"discountType"`
	// DiscountValue is required unless DiscountType is FREEBIE. For
	// PERCENTAGE it is the percent figure, for FIXED the amount in reais.
	DiscountValue *decimal.Decimal `db:"discount_value" json:"discountValue,omitempty"`

	ImageURL        *string `db:"image_url" json:"imageUrl,omitempty"`
	TermsConditions *string `db:"terms_conditions" json:"termsConditions,omitempty"`

	ValidFrom  time.Time `db:"valid_from" json:"validFrom"`
	ValidUntil time.Time `db:"valid_until" json:"validUntil"`

	MaxUsesPerUser int  `db:"max_uses_per_user" json:"maxUsesPerUser"`
	TotalUsesLimit *int `db:"total_uses_limit" json:"totalUsesLimit,omitempty"`

	Status   CouponStatus `db:"status" json:"status"`
	IsActive bool         `db:"is_active" json:"isActive"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Projections filled by list/get queries, not stored on the row.
	Company    *CompanySummary  `db:"-" json:"company,omitempty"`
	Category   *CategorySummary `db:"-" json:"category,omitempty"`
	UsageCount int              `db:"-" json:"usageCount"`
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
	DiscountFreebie    DiscountType = "FREEBIE"
)

func (t DiscountType) IsValid() bool {
	switch t {
	case DiscountPercentage, DiscountFixed, DiscountFreebie:
		return true
	}
	return false
}

func (t DiscountType) String() string {
	return string(t)
}

type CouponStatus string

const (
	StatusPending  CouponStatus = "PENDING"
	StatusApproved CouponStatus = "APPROVED"
	StatusRejected CouponStatus = "REJECTED"
)

func (s CouponStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (s CouponStatus) String() string {
	return string(s)
}

// InWindow reports whether the validity window contains now.
func (c *Coupon) InWindow(now time.Time) bool {
	return !now.Before(c.ValidFrom) && !now.After(c.ValidUntil)
}

// Redeemable reports whether a customer may activate the coupon right now,
// before usage caps are considered.
func (c *Coupon) Redeemable(now time.Time) bool {
	return c.Status == StatusApproved && c.IsActive && c.InWindow(now)
}

// CouponUsage is one activation. It is created with IsUsed false and a
// fresh unique code; validation by the merchant flips IsUsed exactly once.
type CouponUsage struct {
	ID       uuid.UUID `db:"id" json:"id"`
	CouponID uuid.UUID `db:"coupon_id" json:"couponId"`
	UserID   uuid.UUID `db:"user_id" json:"userId"`

	Code   string     `db:"code" json:"code"`
	IsUsed bool       `db:"is_used" json:"isUsed"`
	UsedAt *time.Time `db:"used_at" json:"usedAt,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	Coupon *Coupon      `db:"-" json:"coupon,omitempty"`
	User   *UserSummary `db:"-" json:"user,omitempty"`
}

// Favorite links a customer to a coupon. (user_id, coupon_id) is unique.
type Favorite struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"userId"`
	CouponID  uuid.UUID `db:"coupon_id" json:"couponId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	Coupon *Coupon `db:"-" json:"coupon,omitempty"`
}

// CompanySummary is the company slice embedded in coupon payloads.
type CompanySummary struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	LogoURL *string   `json:"logoUrl,omitempty"`
	City    *string   `json:"city,omitempty"`
}

// CategorySummary is the category slice embedded in coupon payloads.
type CategorySummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Icon string    `json:"icon"`
}

// UserSummary is the redeeming customer shown to the validating merchant.
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
	Email    string    `json:"email"`
}

// freebieSavings stands in for the unknown value of a FREEBIE redemption.
var freebieSavings = decimal.NewFromInt(10)

// SavingsEstimate converts a redeemed coupon's terms into an estimated
// saving. PERCENTAGE keeps the percent figure as-is since the purchase
// amount is unknown.
func SavingsEstimate(t DiscountType, value *decimal.Decimal) decimal.Decimal {
	if t == DiscountFreebie {
		return freebieSavings
	}
	if value == nil {
		return decimal.Zero
	}
	return *value
}
