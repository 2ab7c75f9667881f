package processor

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	gateway "github.com/milhasdesk/points-admin/internal/gateways"
	"github.com/milhasdesk/points-admin/internal/model"
	"github.com/milhasdesk/points-admin/internal/queue"
	"github.com/milhasdesk/points-admin/pkg/logger"
	"github.com/milhasdesk/points-admin/pkg/prom"
)

type PayoutNotifier interface {
	Notify(ctx context.Context, n *gateway.PayoutNotification) (*gateway.NotifyResponse, error)
}

// ReleaseProcessor consumes release events and notifies the payout
// webhook for purchases that generated a commission.
type ReleaseProcessor struct {
	notifier    PayoutNotifier
	idempotency *IdempotencyService
}

func NewReleaseProcessor(notifier PayoutNotifier, idempotency *IdempotencyService) *ReleaseProcessor {
	return &ReleaseProcessor{
		notifier:    notifier,
		idempotency: idempotency,
	}
}

func (p *ReleaseProcessor) GetType() string {
	return "release"
}

func (p *ReleaseProcessor) Process(ctx context.Context, queueMessage *queue.Message) error {
	var event model.ReleaseEvent
	if err := json.Unmarshal(queueMessage.Data, &event); err != nil {
		logger.Error("failed to unmarshal release event", "error", err)
		// Malformed payload will never parse; surface the error so the
		// queue eventually dead-letters it.
		return err
	}

	if event.CommissionCents <= 0 {
		// Nothing payable, ack and move on.
		return nil
	}

	key := strconv.FormatInt(event.PurchaseID, 10)
	if err := p.idempotency.Acquire(key); err != nil {
		if errors.Is(err, ErrAlreadyProcessed) {
			logger.Info("release already notified, skipping", "purchase_id", event.PurchaseID)
			return nil
		}
		if errors.Is(err, ErrLockAcquireFailed) {
			return errors.New("lock held by another consumer")
		}
		return err
	}

	resp, err := p.notifier.Notify(ctx, &gateway.PayoutNotification{
		PurchaseID:      event.PurchaseID,
		CedenteID:       event.CedenteID,
		CommissionCents: event.CommissionCents,
		ReleasedAt:      event.ReleasedAt,
	})
	if err != nil {
		prom.IncCounter(prom.SystemReleases, prom.MetricCommissionNotifyFailed)
		_ = p.idempotency.Release(key)
		return err
	}

	if err := p.idempotency.MarkProcessed(key); err != nil {
		logger.Warn("failed to mark release processed", "purchase_id", event.PurchaseID, "error", err)
	}

	prom.IncCounter(prom.SystemReleases, prom.MetricCommissionsNotified)
	logger.Info("commission payout notified",
		"purchase_id", event.PurchaseID,
		"cedente_id", event.CedenteID,
		"amount_cents", event.CommissionCents,
		"notification_id", resp.NotificationID,
	)
	return nil
}
