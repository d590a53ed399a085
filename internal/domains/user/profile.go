package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CompanySummary is the slice of a company record shown on the profile.
type CompanySummary struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	LogoURL *string   `json:"logoUrl,omitempty"`
	City    *string   `json:"city,omitempty"`
	Status  string    `json:"status"`
}

// SubscriptionSummary is the caller's latest ACTIVE subscription, if any.
type SubscriptionSummary struct {
	ID        uuid.UUID       `json:"id"`
	PlanType  string          `json:"planType"`
	Status    string          `json:"status"`
	Price     decimal.Decimal `json:"price"`
	StartDate time.Time       `json:"startDate"`
	EndDate   time.Time       `json:"endDate"`
}

// SavingsRow is one validated redemption's discount terms, used to build
// the profile savings estimate.
type SavingsRow struct {
	DiscountType  string
	DiscountValue *decimal.Decimal
}

// ProfileStats aggregates redemption activity. TotalSavings is an estimate,
// not a ledger figure.
type ProfileStats struct {
	CouponsUsed    int             `json:"couponsUsed"`
	FavoritesCount int             `json:"favoritesCount"`
	TotalSavings   decimal.Decimal `json:"totalSavings"`
}

// ProfileResponse is the GET /users/profile payload.
type ProfileResponse struct {
	User         *User                `json:"user"`
	Company      *CompanySummary      `json:"company,omitempty"`
	Subscription *SubscriptionSummary `json:"subscription,omitempty"`
	Stats        ProfileStats         `json:"stats"`
}
