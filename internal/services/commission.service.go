package services

import (
	"context"

	"github.com/milhasdesk/points-admin/internal/model"
)

type commissionListRepository interface {
	List(ctx context.Context, f model.CommissionFilter) ([]*model.Commission, int64, error)
}

type CommissionService struct {
	repo commissionListRepository
}

func NewCommissionService(repo commissionListRepository) *CommissionService {
	return &CommissionService{repo: repo}
}

func (s *CommissionService) List(ctx context.Context, f model.CommissionFilter) ([]*model.Commission, int64, error) {
	return s.repo.List(ctx, f)
}
