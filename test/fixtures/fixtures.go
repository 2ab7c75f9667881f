package fixtures

import (
	"time"

	"github.com/milhasdesk/points-admin/internal/model"
)

var (
	TestCedente1 = model.Cedente{
		ID:       1,
		Name:     "Maria Souza",
		Document: "111.111.111-11",
		Latam:    1_000,
		Smiles:   500,
	}

	TestCedente2 = model.Cedente{
		ID:       2,
		Name:     "Joao Lima",
		Document: "222.222.222-22",
		Livelo:   2_000,
	}

	TestCedenteEmpty = model.Cedente{
		ID:       3,
		Name:     "Ana Prado",
		Document: "333.333.333-33",
	}

	TestOperator = model.User{
		ID:     7,
		Name:   "Back Office",
		Email:  "backoffice@example.com",
		APIKey: "test-api-key-7",
	}
)

func NewTestPurchase(cedenteID int64, payCents int64, items ...*model.PurchaseItem) *model.Purchase {
	return &model.Purchase{
		CedenteID:       cedenteID,
		Status:          model.PurchaseStatusOpen,
		CedentePayCents: payCents,
		Items:           items,
		CreatedAt:       time.Now(),
	}
}

func NewCreditItem(program string, points float64) *model.PurchaseItem {
	return &model.PurchaseItem{
		ProgramTo:   &program,
		PointsFinal: points,
		Status:      model.ItemStatusPending,
	}
}

func NewDebitItem(program string, points float64) *model.PurchaseItem {
	return &model.PurchaseItem{
		ProgramFrom:             &program,
		PointsDebitedFromOrigin: points,
		Status:                  model.ItemStatusPending,
	}
}

func NewCanceledItem(program string, points float64) *model.PurchaseItem {
	item := NewCreditItem(program, points)
	item.Status = model.ItemStatusCanceled
	return item
}

func PurchaseCreateRequestSimple(cedenteID int64) model.PurchaseCreateRequest {
	return model.PurchaseCreateRequest{
		CedenteID:       cedenteID,
		CedentePayCents: 50_000,
		Items: []model.PurchaseItemInput{
			{ProgramTo: Ptr("latam"), PointsFinal: 200},
			{ProgramFrom: Ptr("smiles"), PointsDebitedFromOrigin: 100},
		},
	}
}

func PurchaseCreateRequestNoPayout(cedenteID int64) model.PurchaseCreateRequest {
	return model.PurchaseCreateRequest{
		CedenteID: cedenteID,
		Items: []model.PurchaseItemInput{
			{ProgramTo: Ptr("azul"), PointsFinal: 1_000},
		},
	}
}

var (
	ValidProgramNames = []string{
		"latam",
		"smiles",
		"livelo",
		"esfera",
		"azul",
		"iberia",
		"aa",
		"tap",
		"FLYING_BLUE",
	}

	InvalidProgramNames = []string{
		"",
		"multiplus",
		"tudoazul ",
		"LATAMPASS",
	}
)

func PurchaseFilterByCedente(cedenteID int64) model.PurchaseFilter {
	return model.PurchaseFilter{
		CedenteID: &cedenteID,
		Limit:     50,
		Offset:    0,
		Desc:      false,
	}
}

func PurchaseFilterOpen(cedenteID int64) model.PurchaseFilter {
	return model.PurchaseFilter{
		CedenteID: &cedenteID,
		Statuses:  []model.PurchaseStatus{model.PurchaseStatusOpen},
		Limit:     50,
		Offset:    0,
	}
}

func CommissionFilterPending(cedenteID int64) model.CommissionFilter {
	return model.CommissionFilter{
		CedenteID: &cedenteID,
		Statuses:  []model.CommissionStatus{model.CommissionStatusPending},
		Limit:     50,
		Offset:    0,
	}
}

func Ptr[T any](v T) *T {
	return &v
}
