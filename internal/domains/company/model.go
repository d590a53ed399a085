package company

import (
	"time"

	"github.com/google/uuid"
)

// Company is a merchant account owned by exactly one COMPANY user.
type Company struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UserID      uuid.UUID  `db:"user_id" json:"userId"`
	Name        string     `db:"name" json:"name"`
	Description *string    `db:"description" json:"description,omitempty"`
	CategoryID  *uuid.UUID `db:"category_id" json:"categoryId,omitempty"`
	Address     *string    `db:"address" json:"address,omitempty"`
	City        *string    `db:"city" json:"city,omitempty"`
	Phone       *string    `db:"phone" json:"phone,omitempty"`
	Instagram   *string    `db:"instagram" json:"instagram,omitempty"`
	Website     *string    `db:"website" json:"website,omitempty"`
	LogoURL     *string    `db:"logo_url" json:"logoUrl,omitempty"`

	// Status is the admin-controlled approval state. IsActive mirrors it:
	// ACTIVE keeps is_active true, every other status forces it false.
	Status   Status `db:"status" json:"status"`
	IsActive bool   `db:"is_active" json:"isActive"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusSuspended:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
