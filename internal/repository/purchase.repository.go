package repository

import (
	"context"
	"errors"
	"time"

	"github.com/milhasdesk/points-admin/internal/model"
	"github.com/milhasdesk/points-admin/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrPurchaseNotOpen  = errors.New("purchase is not open")
)

type PurchaseRepository struct {
	*pg.DB
}

func NewPurchaseRepository(db *pg.DB) *PurchaseRepository {
	return &PurchaseRepository{
		db,
	}
}

func (r *PurchaseRepository) Create(ctx context.Context, p *model.Purchase) (*model.Purchase, error) {
	entity := toPurchaseEntity(p)
	if entity.Status == "" {
		entity.Status = string(model.PurchaseStatusOpen)
	}
	for _, item := range entity.Items {
		if item.Status == "" {
			item.Status = string(model.ItemStatusPending)
		}
	}

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toPurchaseModel(entity), nil
}

// Get loads a purchase with items, cedente and the releasing user.
func (r *PurchaseRepository) Get(ctx context.Context, id int64) (*model.Purchase, error) {
	return r.get(ctx, r.Read(ctx), id)
}

// GetFresh is Get through the write connection. Inside a transaction
// started with WithinTransaction this re-reads the row in the current
// snapshot, which is what guards the release against a concurrent close.
func (r *PurchaseRepository) GetFresh(ctx context.Context, id int64) (*model.Purchase, error) {
	return r.get(ctx, r.Write(ctx), id)
}

func (r *PurchaseRepository) get(ctx context.Context, db *gorm.DB, id int64) (*model.Purchase, error) {
	var entity PurchaseEntity
	err := db.WithContext(ctx).
		Preload("Items").
		Preload("Cedente").
		Preload("ReleasedBy").
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, err
	}
	return toPurchaseModel(&entity), nil
}

func (r *PurchaseRepository) List(ctx context.Context, f model.PurchaseFilter) ([]*model.Purchase, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&PurchaseEntity{})

	if f.CedenteID != nil {
		q = q.Where("cedente_id = ?", *f.CedenteID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	order := "created_at"
	if f.Desc {
		order = "created_at DESC"
	}

	var entities []*PurchaseEntity
	err := q.Preload("Items").Order(order).Limit(limit).Offset(f.Offset).Find(&entities).Error
	if err != nil {
		return nil, 0, err
	}

	return toPurchaseModels(entities), total, nil
}

// UpdatePredicted writes the four legacy predicted-balance fields on a
// still-open purchase. Recompute is the only caller.
func (r *PurchaseRepository) UpdatePredicted(ctx context.Context, purchaseID int64, predicted map[model.Program]int64) error {
	updates := map[string]interface{}{
		"predicted_latam":  model.ClampInt(predicted[model.ProgramLatam]),
		"predicted_smiles": model.ClampInt(predicted[model.ProgramSmiles]),
		"predicted_livelo": model.ClampInt(predicted[model.ProgramLivelo]),
		"predicted_esfera": model.ClampInt(predicted[model.ProgramEsfera]),
	}

	result := r.Write(ctx).WithContext(ctx).
		Model(&PurchaseEntity{}).
		Where("id = ? AND status = ?", purchaseID, model.PurchaseStatusOpen).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPurchaseNotOpen
	}
	return nil
}

// ReleasePendingItems flips every PENDING item of the purchase to
// RELEASED in one statement. Canceled items are untouched.
func (r *PurchaseRepository) ReleasePendingItems(ctx context.Context, purchaseID int64) error {
	return r.Write(ctx).WithContext(ctx).
		Model(&PurchaseItemEntity{}).
		Where("purchase_id = ? AND status = ?", purchaseID, model.ItemStatusPending).
		Update("status", model.ItemStatusReleased).
		Error
}

// Close transitions the purchase OPEN -> CLOSED, stamping the release
// metadata and the applied-balance snapshot for the four legacy
// programs. The WHERE status = OPEN guard makes the close conditional:
// if a concurrent release already closed the row, zero rows are
// affected and the caller gets ErrPurchaseNotOpen, aborting its
// transaction with nothing written.
func (r *PurchaseRepository) Close(ctx context.Context, purchaseID int64, releasedByID int64, applied map[model.Program]int64) error {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":         model.PurchaseStatusClosed,
		"released_at":    now,
		"released_by_id": releasedByID,
		"applied_latam":  applied[model.ProgramLatam],
		"applied_smiles": applied[model.ProgramSmiles],
		"applied_livelo": applied[model.ProgramLivelo],
		"applied_esfera": applied[model.ProgramEsfera],
	}

	result := r.Write(ctx).WithContext(ctx).
		Model(&PurchaseEntity{}).
		Where("id = ? AND status = ?", purchaseID, model.PurchaseStatusOpen).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPurchaseNotOpen
	}
	return nil
}
