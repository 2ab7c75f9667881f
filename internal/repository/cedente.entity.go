package repository

import (
	"time"

	"github.com/milhasdesk/points-admin/internal/model"
)

type CedenteEntity struct {
	ID         int64     `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	Name       string    `db:"name"        gorm:"column:name;not null"`
	Document   string    `db:"document"    gorm:"column:document;not null;unique"`
	Phone      string    `db:"phone"       gorm:"column:phone"`
	Latam      int64     `db:"latam"       gorm:"column:latam;not null;default:0"`
	Smiles     int64     `db:"smiles"      gorm:"column:smiles;not null;default:0"`
	Livelo     int64     `db:"livelo"      gorm:"column:livelo;not null;default:0"`
	Esfera     int64     `db:"esfera"      gorm:"column:esfera;not null;default:0"`
	Azul       int64     `db:"azul"        gorm:"column:azul;not null;default:0"`
	Iberia     int64     `db:"iberia"      gorm:"column:iberia;not null;default:0"`
	AA         int64     `db:"aa"          gorm:"column:aa;not null;default:0"`
	Tap        int64     `db:"tap"         gorm:"column:tap;not null;default:0"`
	FlyingBlue int64     `db:"flying_blue" gorm:"column:flying_blue;not null;default:0"`
	CreatedAt  time.Time `db:"created_at"  gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `db:"updated_at"  gorm:"column:updated_at;autoUpdateTime"`
}

func (CedenteEntity) TableName() string {
	return "cedentes"
}

func toCedenteEntity(m *model.Cedente) *CedenteEntity {
	if m == nil {
		return nil
	}
	return &CedenteEntity{
		ID:         m.ID,
		Name:       m.Name,
		Document:   m.Document,
		Phone:      m.Phone,
		Latam:      m.Latam,
		Smiles:     m.Smiles,
		Livelo:     m.Livelo,
		Esfera:     m.Esfera,
		Azul:       m.Azul,
		Iberia:     m.Iberia,
		AA:         m.AA,
		Tap:        m.Tap,
		FlyingBlue: m.FlyingBlue,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func toCedenteModel(e *CedenteEntity) *model.Cedente {
	if e == nil {
		return nil
	}
	return &model.Cedente{
		ID:         e.ID,
		Name:       e.Name,
		Document:   e.Document,
		Phone:      e.Phone,
		Latam:      e.Latam,
		Smiles:     e.Smiles,
		Livelo:     e.Livelo,
		Esfera:     e.Esfera,
		Azul:       e.Azul,
		Iberia:     e.Iberia,
		AA:         e.AA,
		Tap:        e.Tap,
		FlyingBlue: e.FlyingBlue,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func toCedenteModels(entities []*CedenteEntity) []*model.Cedente {
	if entities == nil {
		return nil
	}
	models := make([]*model.Cedente, len(entities))
	for i, e := range entities {
		models[i] = toCedenteModel(e)
	}
	return models
}

// balanceColumns maps program keys to their cedente table columns in a
// fixed order for the single-update balance write.
var balanceColumns = map[model.Program]string{
	model.ProgramLatam:      "latam",
	model.ProgramSmiles:     "smiles",
	model.ProgramLivelo:     "livelo",
	model.ProgramEsfera:     "esfera",
	model.ProgramAzul:       "azul",
	model.ProgramIberia:     "iberia",
	model.ProgramAA:         "aa",
	model.ProgramTap:        "tap",
	model.ProgramFlyingBlue: "flying_blue",
}
