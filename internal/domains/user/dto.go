package user

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// SignupRequest registers a new customer account.
type SignupRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName string  `json:"fullName"`
	Phone    *string `json:"phone"`
}

func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 72)),
		validation.Field(&r.FullName, validation.Required, validation.Length(3, 255)),
		validation.Field(&r.Phone, validation.Length(8, 20)),
	)
}

// LoginRequest authenticates an existing account of any role.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// UpdateProfileRequest mutates the caller's own profile. Nil fields are
// left untouched.
type UpdateProfileRequest struct {
	FullName  *string `json:"fullName"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatarUrl"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.NilOrNotEmpty, validation.Length(3, 255)),
		validation.Field(&r.Phone, validation.Length(8, 20)),
		validation.Field(&r.AvatarURL, is.URL),
	)
}

// ListUsersRequest filters the admin user listing.
type ListUsersRequest struct {
	Role   string `form:"role"`
	Search string `form:"search"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// Normalize applies listing defaults and clamps the page size.
func (r *ListUsersRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = 20
	}
	if r.Limit > 100 {
		r.Limit = 100
	}
}

// AuthResponse carries the signed token plus the sanitized account.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
