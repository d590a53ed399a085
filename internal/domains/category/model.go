package category

import (
	"time"

	"github.com/google/uuid"
)

// Category groups coupons and companies for browsing.
type Category struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Icon      string    `db:"icon" json:"icon"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// WithCount decorates a category with its count of coupons that are
// currently redeemable: APPROVED, active and inside their validity window.
type WithCount struct {
	Category
	CouponCount int `json:"couponCount"`
}
