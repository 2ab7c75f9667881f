package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/milhasdesk/points-admin/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCedente(t *testing.T, db *testDB, id int64) {
	t.Helper()
	err := db.Write(context.Background()).Create(&CedenteEntity{
		ID:       id,
		Name:     "Cedente",
		Document: fmt.Sprintf("doc-%d", id),
	}).Error
	require.NoError(t, err)
}

func TestPurchaseRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPurchaseRepository(db.DB)
	ctx := context.Background()
	seedCedente(t, db, 1)

	t.Run("defaults to OPEN with PENDING items", func(t *testing.T) {
		p, err := repo.Create(ctx, &model.Purchase{
			CedenteID:       1,
			CedentePayCents: 10_000,
			Items: []*model.PurchaseItem{
				{ProgramTo: strPtr("smiles"), PointsFinal: 1000},
				{ProgramFrom: strPtr("latam"), PointsDebitedFromOrigin: 500},
			},
		})
		require.NoError(t, err)
		assert.NotZero(t, p.ID)
		assert.Equal(t, model.PurchaseStatusOpen, p.Status)
		require.Len(t, p.Items, 2)
		for _, item := range p.Items {
			assert.Equal(t, model.ItemStatusPending, item.Status)
		}
	})
}

func TestPurchaseRepository_Get(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPurchaseRepository(db.DB)
	ctx := context.Background()
	seedCedente(t, db, 1)

	created, err := repo.Create(ctx, &model.Purchase{
		CedenteID: 1,
		Items:     []*model.PurchaseItem{{ProgramTo: strPtr("azul"), PointsFinal: 100}},
	})
	require.NoError(t, err)

	t.Run("loads associations", func(t *testing.T) {
		p, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, p.Cedente)
		assert.Equal(t, int64(1), p.Cedente.ID)
		assert.Len(t, p.Items, 1)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.Get(ctx, 999)
		assert.ErrorIs(t, err, ErrPurchaseNotFound)
	})
}

func TestPurchaseRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPurchaseRepository(db.DB)
	ctx := context.Background()
	seedCedente(t, db, 1)
	seedCedente(t, db, 2)

	for _, cedenteID := range []int64{1, 1, 2} {
		_, err := repo.Create(ctx, &model.Purchase{CedenteID: cedenteID})
		require.NoError(t, err)
	}

	t.Run("filter by cedente", func(t *testing.T) {
		cedenteID := int64(1)
		purchases, total, err := repo.List(ctx, model.PurchaseFilter{CedenteID: &cedenteID})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, purchases, 2)
	})

	t.Run("filter by status", func(t *testing.T) {
		purchases, total, err := repo.List(ctx, model.PurchaseFilter{
			Statuses: []model.PurchaseStatus{model.PurchaseStatusClosed},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
		assert.Len(t, purchases, 0)
	})
}

func TestPurchaseRepository_UpdatePredicted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPurchaseRepository(db.DB)
	ctx := context.Background()
	seedCedente(t, db, 1)

	created, err := repo.Create(ctx, &model.Purchase{CedenteID: 1})
	require.NoError(t, err)

	t.Run("writes the four legacy fields", func(t *testing.T) {
		err := repo.UpdatePredicted(ctx, created.ID, map[model.Program]int64{
			model.ProgramLatam:  1_500,
			model.ProgramSmiles: -200,
		})
		require.NoError(t, err)

		p, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, p.PredictedLatam)
		assert.Equal(t, int64(1_500), *p.PredictedLatam)
		require.NotNil(t, p.PredictedSmiles)
		assert.Equal(t, int64(0), *p.PredictedSmiles, "negative predicted clamps to zero")
	})

	t.Run("closed purchase rejects the write", func(t *testing.T) {
		err := repo.Close(ctx, created.ID, 0, map[model.Program]int64{})
		require.NoError(t, err)

		err = repo.UpdatePredicted(ctx, created.ID, map[model.Program]int64{})
		assert.ErrorIs(t, err, ErrPurchaseNotOpen)
	})
}

func TestPurchaseRepository_ReleasePendingItems(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPurchaseRepository(db.DB)
	ctx := context.Background()
	seedCedente(t, db, 1)

	created, err := repo.Create(ctx, &model.Purchase{
		CedenteID: 1,
		Items: []*model.PurchaseItem{
			{ProgramTo: strPtr("smiles"), PointsFinal: 100},
			{ProgramTo: strPtr("latam"), PointsFinal: 200, Status: model.ItemStatusCanceled},
		},
	})
	require.NoError(t, err)

	err = repo.ReleasePendingItems(ctx, created.ID)
	require.NoError(t, err)

	p, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)

	statuses := map[model.ItemStatus]int{}
	for _, item := range p.Items {
		statuses[item.Status]++
	}
	assert.Equal(t, 1, statuses[model.ItemStatusReleased])
	assert.Equal(t, 1, statuses[model.ItemStatusCanceled], "canceled items stay canceled")
	assert.Equal(t, 0, statuses[model.ItemStatusPending])
}

func TestPurchaseRepository_Close(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPurchaseRepository(db.DB)
	ctx := context.Background()
	seedCedente(t, db, 1)

	err := db.Write(ctx).Create(&UserEntity{ID: 7, Name: "Admin", Email: "a@x", APIKey: "k"}).Error
	require.NoError(t, err)

	created, err := repo.Create(ctx, &model.Purchase{CedenteID: 1})
	require.NoError(t, err)

	applied := map[model.Program]int64{
		model.ProgramLatam:  900,
		model.ProgramSmiles: 100,
	}

	t.Run("stamps release metadata", func(t *testing.T) {
		err := repo.Close(ctx, created.ID, 7, applied)
		require.NoError(t, err)

		p, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, model.PurchaseStatusClosed, p.Status)
		require.NotNil(t, p.ReleasedAt)
		require.NotNil(t, p.ReleasedByID)
		assert.Equal(t, int64(7), *p.ReleasedByID)
		require.NotNil(t, p.AppliedLatam)
		assert.Equal(t, int64(900), *p.AppliedLatam)
		require.NotNil(t, p.AppliedSmiles)
		assert.Equal(t, int64(100), *p.AppliedSmiles)
	})

	t.Run("second close fails", func(t *testing.T) {
		err := repo.Close(ctx, created.ID, 7, applied)
		assert.ErrorIs(t, err, ErrPurchaseNotOpen)
	})

	t.Run("unknown purchase fails", func(t *testing.T) {
		err := repo.Close(ctx, 999, 7, applied)
		assert.ErrorIs(t, err, ErrPurchaseNotOpen)
	})
}
