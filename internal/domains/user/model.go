package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the domain entity mapped 1:1 to the users table.
type User struct {
	ID    uuid.UUID `db:"id" json:"id"`
	Email string    `db:"email" json:"email"`

	PasswordHash string `db:"password_hash" json:"-"`

	FullName  string  `db:"full_name" json:"fullName"`
	Phone     *string `db:"phone" json:"phone,omitempty"`
	AvatarURL *string `db:"avatar_url" json:"avatarUrl,omitempty"`

	// Role is fixed at creation. Signup always creates CUSTOMER; COMPANY and
	// ADMIN accounts are provisioned out-of-band.
	Role Role `db:"role" json:"role"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Role enum.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleCompany  Role = "COMPANY"
	RoleAdmin    Role = "ADMIN"
)

// AllRoles returns all valid roles.
func AllRoles() []Role {
	return []Role{RoleCustomer, RoleCompany, RoleAdmin}
}

// IsValid reports whether the role is one of the known values.
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleCompany, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Sanitize removes sensitive data before the entity leaves the service layer.
func (u *User) Sanitize() {
	u.PasswordHash = ""
}
