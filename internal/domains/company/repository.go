package company

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Company, error)
	List(ctx context.Context, req *ListCompaniesRequest) ([]*Company, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Company, error)
	Counts(ctx context.Context) (total, active, pending int, err error)
}

type Service interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Company, error)
	List(ctx context.Context, req *ListCompaniesRequest) ([]*Company, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req *UpdateStatusRequest) (*Company, error)
}
