package repository

import (
	"context"
	"errors"

	"github.com/milhasdesk/points-admin/internal/model"
	"github.com/milhasdesk/points-admin/pkg/pg"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	*pg.DB
}

func NewUserRepository(db *pg.DB) *UserRepository {
	return &UserRepository{
		db,
	}
}

func (r *UserRepository) Get(ctx context.Context, id int64) (*model.User, error) {
	var entity UserEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserModel(&entity), nil
}

func (r *UserRepository) GetByAPIKey(ctx context.Context, apiKey string) (*model.User, error) {
	var entity UserEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("api_key = ?", apiKey).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserModel(&entity), nil
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	entity := toUserEntity(u)
	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toUserModel(entity), nil
}
