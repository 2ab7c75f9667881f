package model

import "time"

// ReleaseEvent is published to the release stream after a purchase is
// closed. Consumers use PurchaseID as the idempotency key.
type ReleaseEvent struct {
	PurchaseID      int64     `json:"purchase_id"`
	CedenteID       int64     `json:"cedente_id"`
	ReleasedByID    int64     `json:"released_by_id"`
	CommissionCents int64     `json:"commission_cents"`
	ReleasedAt      time.Time `json:"released_at"`
}
