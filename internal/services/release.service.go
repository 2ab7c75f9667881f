package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/milhasdesk/points-admin/internal/model"
	"github.com/milhasdesk/points-admin/internal/repository"
	"github.com/milhasdesk/points-admin/pkg/logger"
)

var (
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrPurchaseNotOpen  = errors.New("purchase is not open")
	ErrCedenteMissing   = errors.New("purchase has no cedente")
	ErrReleaseFailed    = errors.New("failed to release purchase")
)

type PurchaseRepository interface {
	Get(ctx context.Context, id int64) (*model.Purchase, error)
	GetFresh(ctx context.Context, id int64) (*model.Purchase, error)
	ReleasePendingItems(ctx context.Context, purchaseID int64) error
	Close(ctx context.Context, purchaseID int64, releasedByID int64, applied map[model.Program]int64) error
}

type CedenteRepository interface {
	Get(ctx context.Context, id int64) (*model.Cedente, error)
	SetBalances(ctx context.Context, cedenteID int64, balances map[model.Program]int64) error
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type CommissionRepository interface {
	UpsertForPurchase(ctx context.Context, c *model.Commission) (*model.Commission, error)
}

// Recomputer reconciles the predicted-balance fields of an open
// purchase from its current line items before a release.
type Recomputer interface {
	Recompute(ctx context.Context, purchaseID int64) error
}

// EventPublisher pushes release events onto the stream consumed by the
// payout processor.
type EventPublisher interface {
	PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error)
}

// ReleaseResult is what a successful release returns: the closed
// purchase fully expanded, and the commission when one was generated.
type ReleaseResult struct {
	Purchase   *model.Purchase
	Commission *model.Commission
}

type ReleaseService struct {
	purchaseRepo   PurchaseRepository
	cedenteRepo    CedenteRepository
	commissionRepo CommissionRepository
	recomputer     Recomputer
	events         EventPublisher
}

func NewReleaseService(purchaseRepo PurchaseRepository, cedenteRepo CedenteRepository, commissionRepo CommissionRepository, recomputer Recomputer, events EventPublisher) *ReleaseService {
	return &ReleaseService{
		purchaseRepo:   purchaseRepo,
		cedenteRepo:    cedenteRepo,
		commissionRepo: commissionRepo,
		recomputer:     recomputer,
		events:         events,
	}
}

// Release closes an open purchase: applies its point deltas to the
// cedente's balances, marks pending items released, stamps the close,
// and upserts the commission when the purchase pays out. All writes
// happen in one transaction; a concurrent release of the same purchase
// loses on the in-transaction status re-check and aborts with
// ErrPurchaseNotOpen, leaving nothing written.
func (s *ReleaseService) Release(ctx context.Context, purchaseID int64, userID int64, overrides *model.AppliedOverrides) (*ReleaseResult, error) {
	// Optimistic pre-checks, cheap rejection before recompute and the
	// transaction. The authoritative check is repeated inside.
	purchase, err := s.purchaseRepo.Get(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, repository.ErrPurchaseNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("load purchase: %w", err)
	}
	if !purchase.IsOpen() {
		return nil, ErrPurchaseNotOpen
	}
	if purchase.CedenteID == 0 {
		return nil, ErrCedenteMissing
	}

	// Reconcile predicted totals from the current line items, then work
	// from a fresh read so the release sees what recompute wrote.
	if s.recomputer != nil {
		if err := s.recomputer.Recompute(ctx, purchaseID); err != nil {
			return nil, fmt.Errorf("recompute purchase: %w", err)
		}
	}

	result := &ReleaseResult{}
	err = s.cedenteRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		purchase, err := s.purchaseRepo.GetFresh(ctx, purchaseID)
		if err != nil {
			if errors.Is(err, repository.ErrPurchaseNotFound) {
				return ErrPurchaseNotFound
			}
			return err
		}
		if !purchase.IsOpen() {
			// Another release won the race between the pre-check and
			// this snapshot.
			return ErrPurchaseNotOpen
		}
		if purchase.Cedente == nil {
			return ErrCedenteMissing
		}

		current := purchase.Cedente.Balances()
		deltas := model.ComputeDeltas(purchase.Items)
		applied := resolveAppliedBalances(purchase, current, deltas, overrides)

		if err := s.cedenteRepo.SetBalances(ctx, purchase.CedenteID, applied); err != nil {
			return fmt.Errorf("apply balances: %w", err)
		}

		if err := s.purchaseRepo.ReleasePendingItems(ctx, purchaseID); err != nil {
			return fmt.Errorf("release items: %w", err)
		}

		if err := s.purchaseRepo.Close(ctx, purchaseID, userID, applied); err != nil {
			if errors.Is(err, repository.ErrPurchaseNotOpen) {
				return ErrPurchaseNotOpen
			}
			return fmt.Errorf("close purchase: %w", err)
		}

		if purchase.CedentePayCents > 0 {
			commission, err := s.commissionRepo.UpsertForPurchase(ctx, &model.Commission{
				CedenteID:     purchase.CedenteID,
				PurchaseID:    purchaseID,
				AmountCents:   purchase.CedentePayCents,
				Status:        model.CommissionStatusPending,
				GeneratedByID: userID,
				GeneratedAt:   time.Now().UTC(),
			})
			if err != nil {
				return fmt.Errorf("upsert commission: %w", err)
			}
			result.Commission = commission
		}

		closed, err := s.purchaseRepo.GetFresh(ctx, purchaseID)
		if err != nil {
			return err
		}
		result.Purchase = closed
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrPurchaseNotFound) || errors.Is(err, ErrPurchaseNotOpen) || errors.Is(err, ErrCedenteMissing) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrReleaseFailed, err)
	}

	s.publishReleaseEvent(ctx, result)

	return result, nil
}

// resolveAppliedBalances picks the final balance for each of the nine
// programs from an ordered list of sources, first present wins:
//
//  1. caller-supplied override for the program
//  2. the purchase's stored predicted balance (legacy four programs only)
//  3. current balance plus the computed delta
//
// Every resolved value is clamped to the non-negative domain.
func resolveAppliedBalances(purchase *model.Purchase, current, deltas map[model.Program]int64, overrides *model.AppliedOverrides) map[model.Program]int64 {
	sources := []func(p model.Program) (int64, bool){
		overrides.Get,
		purchase.PredictedBalance,
		func(p model.Program) (int64, bool) { return current[p] + deltas[p], true },
	}

	applied := make(map[model.Program]int64, len(model.AllPrograms))
	for _, p := range model.AllPrograms {
		for _, source := range sources {
			if v, ok := source(p); ok {
				applied[p] = model.ClampInt(v)
				break
			}
		}
	}
	return applied
}

// publishReleaseEvent is best-effort: the release already committed, a
// failed publish only delays the payout notification.
func (s *ReleaseService) publishReleaseEvent(ctx context.Context, result *ReleaseResult) {
	if s.events == nil || result.Purchase == nil {
		return
	}
	event := &model.ReleaseEvent{
		PurchaseID: result.Purchase.ID,
		CedenteID:  result.Purchase.CedenteID,
	}
	if result.Purchase.ReleasedByID != nil {
		event.ReleasedByID = *result.Purchase.ReleasedByID
	}
	if result.Purchase.ReleasedAt != nil {
		event.ReleasedAt = *result.Purchase.ReleasedAt
	}
	if result.Commission != nil {
		event.CommissionCents = result.Commission.AmountCents
	}
	if _, err := s.events.PublishJSON(ctx, event, map[string]string{"type": "release"}); err != nil {
		logger.Error("failed to publish release event", "purchase_id", event.PurchaseID, "error", err)
	}
}
