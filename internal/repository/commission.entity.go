package repository

import (
	"time"

	"github.com/milhasdesk/points-admin/internal/model"
)

type CommissionEntity struct {
	ID            int64      `db:"id"              gorm:"primaryKey;autoIncrement;column:id"`
	CedenteID     int64      `db:"cedente_id"      gorm:"column:cedente_id;not null;index"`
	PurchaseID    int64      `db:"purchase_id"     gorm:"column:purchase_id;not null;uniqueIndex"`
	AmountCents   int64      `db:"amount_cents"    gorm:"column:amount_cents;not null"`
	Status        string     `db:"status"          gorm:"column:status;not null;index;default:PENDING"`
	GeneratedByID int64      `db:"generated_by_id" gorm:"column:generated_by_id;not null"`
	GeneratedAt   time.Time  `db:"generated_at"    gorm:"column:generated_at;not null"`
	PaidAt        *time.Time `db:"paid_at"         gorm:"column:paid_at"`
	PaymentRef    *string    `db:"payment_ref"     gorm:"column:payment_ref"`
}

func (CommissionEntity) TableName() string {
	return "cedente_commissions"
}

func toCommissionEntity(m *model.Commission) *CommissionEntity {
	if m == nil {
		return nil
	}
	return &CommissionEntity{
		ID:            m.ID,
		CedenteID:     m.CedenteID,
		PurchaseID:    m.PurchaseID,
		AmountCents:   m.AmountCents,
		Status:        string(m.Status),
		GeneratedByID: m.GeneratedByID,
		GeneratedAt:   m.GeneratedAt,
		PaidAt:        m.PaidAt,
		PaymentRef:    m.PaymentRef,
	}
}

func toCommissionModel(e *CommissionEntity) *model.Commission {
	if e == nil {
		return nil
	}
	return &model.Commission{
		ID:            e.ID,
		CedenteID:     e.CedenteID,
		PurchaseID:    e.PurchaseID,
		AmountCents:   e.AmountCents,
		Status:        model.CommissionStatus(e.Status),
		GeneratedByID: e.GeneratedByID,
		GeneratedAt:   e.GeneratedAt,
		PaidAt:        e.PaidAt,
		PaymentRef:    e.PaymentRef,
	}
}

func toCommissionModels(entities []*CommissionEntity) []*model.Commission {
	if entities == nil {
		return nil
	}
	models := make([]*model.Commission, len(entities))
	for i, e := range entities {
		models[i] = toCommissionModel(e)
	}
	return models
}
