package repository

import (
	"context"
	"errors"

	"github.com/milhasdesk/points-admin/internal/model"
	"github.com/milhasdesk/points-admin/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrCedenteNotFound  = errors.New("cedente not found")
	ErrDuplicateCedente = errors.New("cedente document already registered")
)

type CedenteRepository struct {
	*pg.DB
}

func NewCedenteRepository(db *pg.DB) *CedenteRepository {
	return &CedenteRepository{
		db,
	}
}

func (r *CedenteRepository) Create(ctx context.Context, c *model.Cedente) (*model.Cedente, error) {
	entity := toCedenteEntity(c)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateCedente
		}
		return nil, err
	}

	return toCedenteModel(entity), nil
}

func (r *CedenteRepository) Get(ctx context.Context, id int64) (*model.Cedente, error) {
	var entity CedenteEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCedenteNotFound
		}
		return nil, err
	}
	return toCedenteModel(&entity), nil
}

func (r *CedenteRepository) List(ctx context.Context, f model.CedenteFilter) ([]*model.Cedente, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&CedenteEntity{})

	if f.Name != nil {
		q = q.Where("name LIKE ?", "%"+*f.Name+"%")
	}
	if f.Document != nil {
		q = q.Where("document = ?", *f.Document)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	var entities []*CedenteEntity
	err := q.Order("name").Limit(limit).Offset(f.Offset).Find(&entities).Error
	if err != nil {
		return nil, 0, err
	}

	return toCedenteModels(entities), total, nil
}

// SetBalances writes all nine program counters in a single UPDATE.
// Values are clamped to the non-negative domain before writing; this is
// the only balance writer besides admin edits, so the counters can never
// go below zero.
func (r *CedenteRepository) SetBalances(ctx context.Context, cedenteID int64, balances map[model.Program]int64) error {
	updates := make(map[string]interface{}, len(balanceColumns))
	for _, p := range model.AllPrograms {
		updates[balanceColumns[p]] = model.ClampInt(balances[p])
	}

	result := r.Write(ctx).WithContext(ctx).
		Model(&CedenteEntity{}).
		Where("id = ?", cedenteID).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCedenteNotFound
	}
	return nil
}

// GetBalances reads the nine counters, clamped.
func (r *CedenteRepository) GetBalances(ctx context.Context, cedenteID int64) (map[model.Program]int64, error) {
	c, err := r.Get(ctx, cedenteID)
	if err != nil {
		return nil, err
	}
	return c.Balances(), nil
}
