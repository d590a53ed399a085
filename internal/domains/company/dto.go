package company

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ListCompaniesRequest filters the admin company listing.
type ListCompaniesRequest struct {
	Status string `form:"status"`
	Search string `form:"search"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

func (r *ListCompaniesRequest) Normalize() {
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

// UpdateStatusRequest is the admin moderation payload. Only ACTIVE and
// SUSPENDED are accepted; PENDING is an initial state, not a target.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (r UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required,
			validation.In(StatusActive.String(), StatusSuspended.String())),
	)
}
