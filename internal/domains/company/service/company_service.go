package service

import (
	"context"

	"github.com/google/uuid"

	"clubelocal-backend/internal/domains/company"
	"clubelocal-backend/pkg/logger"
)

type CompanyService struct {
	repo company.Repository
}

func NewCompanyService(repo company.Repository) *CompanyService {
	return &CompanyService{repo: repo}
}

var _ company.Service = (*CompanyService)(nil)

func (s *CompanyService) GetByUserID(ctx context.Context, userID uuid.UUID) (*company.Company, error) {
	return s.repo.FindByUserID(ctx, userID)
}

func (s *CompanyService) List(ctx context.Context, req *company.ListCompaniesRequest) ([]*company.Company, int, error) {
	req.Normalize()

	if req.Status != "" && !company.Status(req.Status).IsValid() {
		return nil, 0, company.ErrInvalidStatus
	}
	return s.repo.List(ctx, req)
}

func (s *CompanyService) UpdateStatus(ctx context.Context, id uuid.UUID, req *company.UpdateStatusRequest) (*company.Company, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.UpdateStatus(ctx, id, company.Status(req.Status))
	if err != nil {
		return nil, err
	}

	logger.Info("company status updated", map[string]interface{}{
		"company_id": c.ID.String(),
		"status":     c.Status.String(),
	})
	return c, nil
}
