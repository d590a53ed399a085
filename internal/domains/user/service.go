package user

import (
	"context"

	"github.com/google/uuid"
)

// Service exposes the auth and profile use cases.
type Service interface {
	Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*User, error)
	List(ctx context.Context, req *ListUsersRequest) ([]*User, int, error)
}
