package coupon

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCouponRequest is the merchant coupon submission. The created coupon
// always starts PENDING and inactive regardless of the payload.
type CreateCouponRequest struct {
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	DiscountType    string           `json:"discountType"`
	DiscountValue   *decimal.Decimal `json:"discountValue"`
	ImageURL        *string          `json:"imageUrl"`
	TermsConditions *string          `json:"termsConditions"`
	ValidFrom       time.Time        `json:"validFrom"`
	ValidUntil      time.Time        `json:"validUntil"`
	MaxUsesPerUser  int              `json:"maxUsesPerUser"`
	TotalUsesLimit  *int             `json:"totalUsesLimit"`
	CategoryID      *uuid.UUID       `json:"categoryId"`
}

func (r CreateCouponRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(3, 255)),
		validation.Field(&r.Description, validation.Required),
		validation.Field(&r.DiscountType, validation.Required, validation.In(
			DiscountPercentage.String(), DiscountFixed.String(), DiscountFreebie.String())),
		validation.Field(&r.ValidFrom, validation.Required),
		validation.Field(&r.ValidUntil, validation.Required),
		validation.Field(&r.MaxUsesPerUser, validation.Min(0)),
		validation.Field(&r.TotalUsesLimit, validation.Min(1)),
	)
	if err != nil {
		return err
	}
	if DiscountType(r.DiscountType) != DiscountFreebie && r.DiscountValue == nil {
		return validation.Errors{"discountValue": validation.ErrRequired}
	}
	if !r.ValidUntil.After(r.ValidFrom) {
		return ErrInvalidDates
	}
	return nil
}

// UpdateCouponRequest is a partial edit. Nil fields keep the stored value.
type UpdateCouponRequest struct {
	Title           *string          `json:"title"`
	Description     *string          `json:"description"`
	DiscountType    *string          `json:"discountType"`
	DiscountValue   *decimal.Decimal `json:"discountValue"`
	ImageURL        *string          `json:"imageUrl"`
	TermsConditions *string          `json:"termsConditions"`
	ValidFrom       *time.Time       `json:"validFrom"`
	ValidUntil      *time.Time       `json:"validUntil"`
	MaxUsesPerUser  *int             `json:"maxUsesPerUser"`
	TotalUsesLimit  *int             `json:"totalUsesLimit"`
	CategoryID      *uuid.UUID       `json:"categoryId"`
}

func (r UpdateCouponRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(3, 255)),
		validation.Field(&r.Description, validation.NilOrNotEmpty),
		validation.Field(&r.DiscountType, validation.In(
			DiscountPercentage.String(), DiscountFixed.String(), DiscountFreebie.String())),
		validation.Field(&r.MaxUsesPerUser, validation.Min(0)),
		validation.Field(&r.TotalUsesLimit, validation.Min(1)),
	)
}

// ListCouponsRequest carries the raw query parameters of GET /coupons.
// CompanyID may be a UUID or the literal "current".
type ListCouponsRequest struct {
	Category  string `form:"category"`
	Search    string `form:"search"`
	CompanyID string `form:"companyId"`
	Status    string `form:"status"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}

func (r *ListCouponsRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = 20
	}
	if r.Limit > 100 {
		r.Limit = 100
	}
	if r.SortBy == "" {
		r.SortBy = "createdAt"
	}
	if r.SortOrder == "" {
		r.SortOrder = "desc"
	}
}

// ValidateCodeRequest is the merchant validation payload. Either the bare
// code or the full QR payload must be present.
type ValidateCodeRequest struct {
	Code   string `json:"code"`
	QRCode string `json:"qrCode"`
}

// ActivateResponse is returned by POST /coupons/:id/use.
type ActivateResponse struct {
	Message     string       `json:"message"`
	Code        string       `json:"code"`
	QRCode      string       `json:"qrCode"`
	QRCodeImage string       `json:"qrCodeImage,omitempty"`
	CouponUsage *CouponUsage `json:"couponUsage"`
}

// ValidateResponse is returned by POST /coupons/validate.
type ValidateResponse struct {
	Message     string          `json:"message"`
	CouponUsage *ValidatedUsage `json:"couponUsage"`
}

// ValidatedUsage is the receipt handed to the merchant after validation.
type ValidatedUsage struct {
	ID      uuid.UUID       `json:"id"`
	Code    string          `json:"code"`
	UsedAt  time.Time       `json:"usedAt"`
	User    *UserSummary    `json:"user,omitempty"`
	Coupon  *Coupon         `json:"coupon"`
	Savings decimal.Decimal `json:"savings"`
}

// ActiveCouponItem is one pending redemption on GET /users/active-coupons,
// with the QR payload rebuilt so the app can re-render the code.
type ActiveCouponItem struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	QRCode    string    `json:"qrCode"`
	CreatedAt time.Time `json:"createdAt"`
	Coupon    *Coupon   `json:"coupon"`
}

// HistoryResponse is the validated-redemption history plus the running
// savings estimate.
type HistoryResponse struct {
	History      []*CouponUsage  `json:"history"`
	TotalSavings decimal.Decimal `json:"totalSavings"`
}
