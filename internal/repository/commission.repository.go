package repository

import (
	"context"
	"errors"
	"time"

	"github.com/milhasdesk/points-admin/internal/model"
	"github.com/milhasdesk/points-admin/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCommissionNotFound = errors.New("commission not found")

type CommissionRepository struct {
	*pg.DB
}

func NewCommissionRepository(db *pg.DB) *CommissionRepository {
	return &CommissionRepository{
		db,
	}
}

// UpsertForPurchase creates the commission for a purchase or, if one
// already exists, rewrites it in place: new amount, status back to
// PENDING, payment fields cleared. The unique index on purchase_id
// makes this a single atomic statement, so an accidental second release
// can never duplicate a commission.
func (r *CommissionRepository) UpsertForPurchase(ctx context.Context, c *model.Commission) (*model.Commission, error) {
	entity := toCommissionEntity(c)
	if entity.Status == "" {
		entity.Status = string(model.CommissionStatusPending)
	}
	if entity.GeneratedAt.IsZero() {
		entity.GeneratedAt = time.Now().UTC()
	}

	err := r.Write(ctx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "purchase_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"amount_cents":    entity.AmountCents,
				"status":          string(model.CommissionStatusPending),
				"generated_by_id": entity.GeneratedByID,
				"generated_at":    entity.GeneratedAt,
				"paid_at":         nil,
				"payment_ref":     nil,
			}),
		}).
		Create(entity).
		Error
	if err != nil {
		return nil, err
	}

	// Re-read: on conflict the entity keeps the zero ID.
	return r.GetByPurchase(ctx, entity.PurchaseID)
}

func (r *CommissionRepository) GetByPurchase(ctx context.Context, purchaseID int64) (*model.Commission, error) {
	var entity CommissionEntity
	err := r.Write(ctx).WithContext(ctx).
		Where("purchase_id = ?", purchaseID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommissionNotFound
		}
		return nil, err
	}
	return toCommissionModel(&entity), nil
}

func (r *CommissionRepository) List(ctx context.Context, f model.CommissionFilter) ([]*model.Commission, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&CommissionEntity{})

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

	var entities []*CommissionEntity
	err := q.Order("generated_at DESC").Limit(limit).Offset(f.Offset).Find(&entities).Error
	if err != nil {
		return nil, 0, err
	}

	return toCommissionModels(entities), total, nil
}
