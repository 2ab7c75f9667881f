package repository

import (
	"github.com/milhasdesk/points-admin/internal/model"
)

type UserEntity struct {
	ID     int64  `db:"id"      gorm:"primaryKey;autoIncrement;column:id"`
	Name   string `db:"name"    gorm:"column:name;not null"`
	Email  string `db:"email"   gorm:"column:email;not null;unique"`
	APIKey string `db:"api_key" gorm:"column:api_key;not null;unique"`
}

func (UserEntity) TableName() string {
	return "users"
}

func toUserEntity(m *model.User) *UserEntity {
	if m == nil {
		return nil
	}
	return &UserEntity{
		ID:     m.ID,
		Name:   m.Name,
		Email:  m.Email,
		APIKey: m.APIKey,
	}
}

func toUserModel(e *UserEntity) *model.User {
	if e == nil {
		return nil
	}
	return &model.User{
		ID:     e.ID,
		Name:   e.Name,
		Email:  e.Email,
		APIKey: e.APIKey,
	}
}
