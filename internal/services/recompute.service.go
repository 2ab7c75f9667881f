package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/milhasdesk/points-admin/internal/model"
	"github.com/milhasdesk/points-admin/internal/repository"
)

type recomputePurchaseRepository interface {
	Get(ctx context.Context, id int64) (*model.Purchase, error)
	UpdatePredicted(ctx context.Context, purchaseID int64, predicted map[model.Program]int64) error
}

type recomputeCedenteRepository interface {
	GetBalances(ctx context.Context, cedenteID int64) (map[model.Program]int64, error)
}

// RecomputeService keeps the predicted-balance fields of an open
// purchase in sync with its line items. Only the four legacy programs
// carry predicted fields; the asymmetry is historical and deliberately
// preserved.
type RecomputeService struct {
	purchaseRepo recomputePurchaseRepository
	cedenteRepo  recomputeCedenteRepository
}

func NewRecomputeService(purchaseRepo recomputePurchaseRepository, cedenteRepo recomputeCedenteRepository) *RecomputeService {
	return &RecomputeService{
		purchaseRepo: purchaseRepo,
		cedenteRepo:  cedenteRepo,
	}
}

// Recompute sets predicted = clamp(current balance + delta) for the
// legacy programs, from the purchase's non-canceled items.
func (s *RecomputeService) Recompute(ctx context.Context, purchaseID int64) error {
	purchase, err := s.purchaseRepo.Get(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, repository.ErrPurchaseNotFound) {
			return ErrPurchaseNotFound
		}
		return fmt.Errorf("load purchase: %w", err)
	}
	if !purchase.IsOpen() {
		return ErrPurchaseNotOpen
	}

	current, err := s.cedenteRepo.GetBalances(ctx, purchase.CedenteID)
	if err != nil {
		if errors.Is(err, repository.ErrCedenteNotFound) {
			return ErrCedenteMissing
		}
		return fmt.Errorf("load balances: %w", err)
	}

	deltas := model.ComputeDeltas(purchase.Items)
	predicted := make(map[model.Program]int64, len(model.LegacyPrograms))
	for _, p := range model.LegacyPrograms {
		predicted[p] = model.ClampInt(current[p] + deltas[p])
	}

	if err := s.purchaseRepo.UpdatePredicted(ctx, purchaseID, predicted); err != nil {
		if errors.Is(err, repository.ErrPurchaseNotOpen) {
			return ErrPurchaseNotOpen
		}
		return fmt.Errorf("update predicted: %w", err)
	}
	return nil
}
