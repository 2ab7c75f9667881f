package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/milhasdesk/points-admin/internal/model"
	"github.com/milhasdesk/points-admin/internal/repository"
)

type purchaseStoreRepository interface {
	Create(ctx context.Context, p *model.Purchase) (*model.Purchase, error)
	Get(ctx context.Context, id int64) (*model.Purchase, error)
	List(ctx context.Context, f model.PurchaseFilter) ([]*model.Purchase, int64, error)
}

type purchaseCedenteRepository interface {
	Get(ctx context.Context, id int64) (*model.Cedente, error)
}

type PurchaseService struct {
	purchaseRepo purchaseStoreRepository
	cedenteRepo  purchaseCedenteRepository
}

func NewPurchaseService(purchaseRepo purchaseStoreRepository, cedenteRepo purchaseCedenteRepository) *PurchaseService {
	return &PurchaseService{
		purchaseRepo: purchaseRepo,
		cedenteRepo:  cedenteRepo,
	}
}

// Create opens a purchase with its line items. Point amounts are
// normalized at this boundary; whatever arrives as a negative or
// non-finite number becomes zero.
func (s *PurchaseService) Create(ctx context.Context, p model.PurchaseCreateRequest) (*model.Purchase, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.cedenteRepo.Get(ctx, p.CedenteID); err != nil {
		if errors.Is(err, repository.ErrCedenteNotFound) {
			return nil, ErrCedenteNotFound
		}
		return nil, fmt.Errorf("load cedente: %w", err)
	}

	purchase := &model.Purchase{
		CedenteID:       p.CedenteID,
		Status:          model.PurchaseStatusOpen,
		CedentePayCents: model.ClampInt(p.CedentePayCents),
	}
	for _, in := range p.Items {
		purchase.Items = append(purchase.Items, &model.PurchaseItem{
			ProgramFrom:             in.ProgramFrom,
			ProgramTo:               in.ProgramTo,
			PointsFinal:             float64(model.Clamp(in.PointsFinal)),
			PointsDebitedFromOrigin: float64(model.Clamp(in.PointsDebitedFromOrigin)),
			Status:                  model.ItemStatusPending,
		})
	}

	return s.purchaseRepo.Create(ctx, purchase)
}

func (s *PurchaseService) Get(ctx context.Context, id int64) (*model.Purchase, error) {
	p, err := s.purchaseRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPurchaseNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *PurchaseService) List(ctx context.Context, f model.PurchaseFilter) ([]*model.Purchase, int64, error) {
	return s.purchaseRepo.List(ctx, f)
}
