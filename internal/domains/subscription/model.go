package subscription

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Subscription is a club membership purchased by a customer.
type Subscription struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"userId"`
	PlanType  PlanType        `db:"plan_type" json:"planType"`
	Status    Status          `db:"status" json:"status"`
	Price     decimal.Decimal `db:"price" json:"price"`
	StartDate time.Time       `db:"start_date" json:"startDate"`
	EndDate   time.Time       `db:"end_date" json:"endDate"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

type PlanType string

const (
	PlanMonthly PlanType = "MONTHLY"
	PlanYearly  PlanType = "YEARLY"
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)
