package repository

import (
	"time"

	"github.com/milhasdesk/points-admin/internal/model"
)

type PurchaseEntity struct {
	ID        int64          `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	CedenteID int64          `db:"cedente_id" gorm:"column:cedente_id;not null;index"`
	Cedente   *CedenteEntity `db:"-"          gorm:"foreignKey:CedenteID;references:ID"`
	Status    string         `db:"status"     gorm:"column:status;not null;index;default:OPEN"`

	PredictedLatam  *int64 `db:"predicted_latam"  gorm:"column:predicted_latam"`
	PredictedSmiles *int64 `db:"predicted_smiles" gorm:"column:predicted_smiles"`
	PredictedLivelo *int64 `db:"predicted_livelo" gorm:"column:predicted_livelo"`
	PredictedEsfera *int64 `db:"predicted_esfera" gorm:"column:predicted_esfera"`

	AppliedLatam  *int64 `db:"applied_latam"  gorm:"column:applied_latam"`
	AppliedSmiles *int64 `db:"applied_smiles" gorm:"column:applied_smiles"`
	AppliedLivelo *int64 `db:"applied_livelo" gorm:"column:applied_livelo"`
	AppliedEsfera *int64 `db:"applied_esfera" gorm:"column:applied_esfera"`

	CedentePayCents int64                 `db:"cedente_pay_cents" gorm:"column:cedente_pay_cents;not null;default:0"`
	ReleasedAt      *time.Time            `db:"released_at"       gorm:"column:released_at"`
	ReleasedByID    *int64                `db:"released_by_id"    gorm:"column:released_by_id"`
	ReleasedBy      *UserEntity           `db:"-"                 gorm:"foreignKey:ReleasedByID;references:ID"`
	Items           []*PurchaseItemEntity `db:"-"                 gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time             `db:"created_at"        gorm:"column:created_at;autoCreateTime"`
}

func (PurchaseEntity) TableName() string {
	return "purchases"
}

type PurchaseItemEntity struct {
	ID                      int64     `db:"id"                         gorm:"primaryKey;autoIncrement;column:id"`
	PurchaseID              int64     `db:"purchase_id"                gorm:"column:purchase_id;not null;index"`
	ProgramFrom             *string   `db:"program_from"               gorm:"column:program_from"`
	ProgramTo               *string   `db:"program_to"                 gorm:"column:program_to"`
	PointsFinal             float64   `db:"points_final"               gorm:"column:points_final;not null;default:0"`
	PointsDebitedFromOrigin float64   `db:"points_debited_from_origin" gorm:"column:points_debited_from_origin;not null;default:0"`
	Status                  string    `db:"status"                     gorm:"column:status;not null;index;default:PENDING"`
	CreatedAt               time.Time `db:"created_at"                 gorm:"column:created_at;autoCreateTime"`
}

func (PurchaseItemEntity) TableName() string {
	return "purchase_items"
}

func toPurchaseEntity(m *model.Purchase) *PurchaseEntity {
	if m == nil {
		return nil
	}
	e := &PurchaseEntity{
		ID:              m.ID,
		CedenteID:       m.CedenteID,
		Status:          string(m.Status),
		PredictedLatam:  m.PredictedLatam,
		PredictedSmiles: m.PredictedSmiles,
		PredictedLivelo: m.PredictedLivelo,
		PredictedEsfera: m.PredictedEsfera,
		AppliedLatam:    m.AppliedLatam,
		AppliedSmiles:   m.AppliedSmiles,
		AppliedLivelo:   m.AppliedLivelo,
		AppliedEsfera:   m.AppliedEsfera,
		CedentePayCents: m.CedentePayCents,
		ReleasedAt:      m.ReleasedAt,
		ReleasedByID:    m.ReleasedByID,
		CreatedAt:       m.CreatedAt,
	}
	for _, item := range m.Items {
		e.Items = append(e.Items, toPurchaseItemEntity(item))
	}
	return e
}

func toPurchaseModel(e *PurchaseEntity) *model.Purchase {
	if e == nil {
		return nil
	}
	m := &model.Purchase{
		ID:              e.ID,
		CedenteID:       e.CedenteID,
		Cedente:         toCedenteModel(e.Cedente),
		Status:          model.PurchaseStatus(e.Status),
		PredictedLatam:  e.PredictedLatam,
		PredictedSmiles: e.PredictedSmiles,
		PredictedLivelo: e.PredictedLivelo,
		PredictedEsfera: e.PredictedEsfera,
		AppliedLatam:    e.AppliedLatam,
		AppliedSmiles:   e.AppliedSmiles,
		AppliedLivelo:   e.AppliedLivelo,
		AppliedEsfera:   e.AppliedEsfera,
		CedentePayCents: e.CedentePayCents,
		ReleasedAt:      e.ReleasedAt,
		ReleasedByID:    e.ReleasedByID,
		ReleasedBy:      toUserModel(e.ReleasedBy),
		CreatedAt:       e.CreatedAt,
	}
	for _, item := range e.Items {
		m.Items = append(m.Items, toPurchaseItemModel(item))
	}
	return m
}

func toPurchaseModels(entities []*PurchaseEntity) []*model.Purchase {
	if entities == nil {
		return nil
	}
	models := make([]*model.Purchase, len(entities))
	for i, e := range entities {
		models[i] = toPurchaseModel(e)
	}
	return models
}

func toPurchaseItemEntity(m *model.PurchaseItem) *PurchaseItemEntity {
	if m == nil {
		return nil
	}
	return &PurchaseItemEntity{
		ID:                      m.ID,
		PurchaseID:              m.PurchaseID,
		ProgramFrom:             m.ProgramFrom,
		ProgramTo:               m.ProgramTo,
		PointsFinal:             m.PointsFinal,
		PointsDebitedFromOrigin: m.PointsDebitedFromOrigin,
		Status:                  string(m.Status),
		CreatedAt:               m.CreatedAt,
	}
}

func toPurchaseItemModel(e *PurchaseItemEntity) *model.PurchaseItem {
	if e == nil {
		return nil
	}
	return &model.PurchaseItem{
		ID:                      e.ID,
		PurchaseID:              e.PurchaseID,
		ProgramFrom:             e.ProgramFrom,
		ProgramTo:               e.ProgramTo,
		PointsFinal:             e.PointsFinal,
		PointsDebitedFromOrigin: e.PointsDebitedFromOrigin,
		Status:                  model.ItemStatus(e.Status),
		CreatedAt:               e.CreatedAt,
	}
}
