package model

import "time"

// CommissionStatus is the payout state of a commission.
type CommissionStatus string

const (
	CommissionStatusPending CommissionStatus = "PENDING"
	CommissionStatusPaid    CommissionStatus = "PAID"
)

// Commission is the amount owed to a cedente for a released purchase.
// At most one exists per purchase; the release transaction upserts it.
type Commission struct {
	ID            int64            `json:"id"`
	CedenteID     int64            `json:"cedente_id"`
	PurchaseID    int64            `json:"purchase_id"`
	AmountCents   int64            `json:"amount_cents"`
	Status        CommissionStatus `json:"status"`
	GeneratedByID int64            `json:"generated_by_id"`
	GeneratedAt   time.Time        `json:"generated_at"`
	PaidAt        *time.Time       `json:"paid_at"`
	PaymentRef    *string          `json:"payment_ref"`
}

func (Commission) TableName() string { return "cedente_commissions" }

// CommissionFilter controls List queries.
type CommissionFilter struct {
	CedenteID *int64
	Statuses  []CommissionStatus
	Limit     int
	Offset    int
}
