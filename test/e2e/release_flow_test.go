package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/milhasdesk/points-admin/internal/model"
	"github.com/milhasdesk/points-admin/internal/queue"
	"github.com/milhasdesk/points-admin/internal/repository"
	"github.com/milhasdesk/points-admin/internal/services"
	"github.com/milhasdesk/points-admin/pkg/pg"
	"github.com/milhasdesk/points-admin/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testDB = pg.DB

type TestEnvironment struct {
	DB               *pg.DB
	Redis            *miniredis.Miniredis
	RedisAdapter     redis.RedisAdapter
	Queue            *queue.Queue
	UserRepo         *repository.UserRepository
	CedenteRepo      *repository.CedenteRepository
	PurchaseRepo     *repository.PurchaseRepository
	CommissionRepo   *repository.CommissionRepository
	PurchaseService  *services.PurchaseService
	RecomputeService *services.RecomputeService
	ReleaseService   *services.ReleaseService
}

func setupE2EEnvironment(t *testing.T) *TestEnvironment {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&repository.UserEntity{},
		&repository.CedenteEntity{},
		&repository.PurchaseEntity{},
		&repository.PurchaseItemEntity{},
		&repository.CommissionEntity{},
	)
	require.NoError(t, err)

	pgDB := &testDB{}
	pgDBValue := reflect.ValueOf(pgDB).Elem()

	readField := pgDBValue.FieldByName("read")
	writeField := pgDBValue.FieldByName("write")

	readField = reflect.NewAt(readField.Type(), readField.Addr().UnsafePointer()).Elem()
	writeField = reflect.NewAt(writeField.Type(), writeField.Addr().UnsafePointer()).Elem()

	readField.Set(reflect.ValueOf(db))
	writeField.Set(reflect.ValueOf(db))

	mr, err := miniredis.Run()
	require.NoError(t, err)

	// Use unique connection name per test to avoid global adapter caching issues
	connName := fmt.Sprintf("test-%d", time.Now().UnixNano())
	redisAdapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	queueConfig := queue.QueueConfig{
		Name:              "test:releases",
		ConsumerGroup:     "test-group",
		ConsumerName:      "test-consumer",
		MaxRetries:        3,
		VisibilityTimeout: 5 * time.Second,
		PollInterval:      100 * time.Millisecond,
		BatchSize:         10,
		MaxLen:            1000,
		EnableDLQ:         true,
	}

	q, err := queue.NewQueue(redisAdapter, queueConfig)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(pgDB)
	cedenteRepo := repository.NewCedenteRepository(pgDB)
	purchaseRepo := repository.NewPurchaseRepository(pgDB)
	commissionRepo := repository.NewCommissionRepository(pgDB)

	purchaseService := services.NewPurchaseService(purchaseRepo, cedenteRepo)
	recomputeService := services.NewRecomputeService(purchaseRepo, cedenteRepo)
	releaseService := services.NewReleaseService(purchaseRepo, cedenteRepo, commissionRepo, recomputeService, q)

	return &TestEnvironment{
		DB:               pgDB,
		Redis:            mr,
		RedisAdapter:     redisAdapter,
		Queue:            q,
		UserRepo:         userRepo,
		CedenteRepo:      cedenteRepo,
		PurchaseRepo:     purchaseRepo,
		CommissionRepo:   commissionRepo,
		PurchaseService:  purchaseService,
		RecomputeService: recomputeService,
		ReleaseService:   releaseService,
	}
}

func (env *TestEnvironment) Cleanup() {
	// Stop queue first (gracefully drain messages)
	if env.Queue != nil {
		_ = env.Queue.Stop(5 * time.Second)
	}
	// Give time for any in-flight operations to complete
	time.Sleep(100 * time.Millisecond)
	// Then close Redis
	if env.Redis != nil {
		env.Redis.Close()
	}
}

func (env *TestEnvironment) createCedente(t *testing.T, id int64, latam, smiles int64) {
	ctx := context.Background()
	cedente := &repository.CedenteEntity{
		ID:       id,
		Name:     "Test Cedente",
		Document: fmt.Sprintf("doc-%d", id),
		Latam:    latam,
		Smiles:   smiles,
	}
	require.NoError(t, env.DB.Write(ctx).Create(cedente).Error)
}

func (env *TestEnvironment) createUser(t *testing.T, id int64) {
	ctx := context.Background()
	user := &repository.UserEntity{
		ID:     id,
		Name:   "Operator",
		Email:  fmt.Sprintf("op-%d@example.com", id),
		APIKey: fmt.Sprintf("key-%d", id),
	}
	require.NoError(t, env.DB.Write(ctx).Create(user).Error)
}

func strPtr(s string) *string { return &s }

func TestE2E_ReleaseFlow(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()
	env.createCedente(t, 1, 1_000, 500)
	env.createUser(t, 7)

	purchase, err := env.PurchaseService.Create(ctx, model.PurchaseCreateRequest{
		CedenteID:       1,
		CedentePayCents: 50_000,
		Items: []model.PurchaseItemInput{
			{ProgramTo: strPtr("latam"), PointsFinal: 200},
			{ProgramFrom: strPtr("smiles"), PointsDebitedFromOrigin: 100},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, purchase.ID)
	assert.Equal(t, model.PurchaseStatusOpen, purchase.Status)

	result, err := env.ReleaseService.Release(ctx, purchase.ID, 7, nil)
	require.NoError(t, err)

	// The purchase is closed with the applied balances stamped.
	assert.Equal(t, model.PurchaseStatusClosed, result.Purchase.Status)
	require.NotNil(t, result.Purchase.AppliedLatam)
	assert.Equal(t, int64(1_200), *result.Purchase.AppliedLatam)
	require.NotNil(t, result.Purchase.AppliedSmiles)
	assert.Equal(t, int64(400), *result.Purchase.AppliedSmiles)
	require.NotNil(t, result.Purchase.ReleasedByID)
	assert.Equal(t, int64(7), *result.Purchase.ReleasedByID)
	assert.NotNil(t, result.Purchase.ReleasedAt)

	// The cedente's counters moved.
	cedente, err := env.CedenteRepo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1_200), cedente.Latam)
	assert.Equal(t, int64(400), cedente.Smiles)

	// Line items flipped to RELEASED.
	for _, item := range result.Purchase.Items {
		assert.Equal(t, model.ItemStatusReleased, item.Status)
	}

	// The commission exists, pending payout.
	require.NotNil(t, result.Commission)
	assert.Equal(t, int64(50_000), result.Commission.AmountCents)
	assert.Equal(t, model.CommissionStatusPending, result.Commission.Status)

	commission, err := env.CommissionRepo.GetByPurchase(ctx, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Commission.ID, commission.ID)

	// The release event landed on the stream.
	n, err := env.Queue.Len()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestE2E_DoubleReleaseRejected(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()
	env.createCedente(t, 1, 1_000, 0)
	env.createUser(t, 7)

	purchase, err := env.PurchaseService.Create(ctx, model.PurchaseCreateRequest{
		CedenteID:       1,
		CedentePayCents: 10_000,
		Items: []model.PurchaseItemInput{
			{ProgramTo: strPtr("latam"), PointsFinal: 100},
		},
	})
	require.NoError(t, err)

	_, err = env.ReleaseService.Release(ctx, purchase.ID, 7, nil)
	require.NoError(t, err)

	_, err = env.ReleaseService.Release(ctx, purchase.ID, 7, nil)
	assert.ErrorIs(t, err, services.ErrPurchaseNotOpen)

	// The first release's balances stand.
	cedente, err := env.CedenteRepo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1_100), cedente.Latam)

	// Still exactly one commission row for the purchase.
	var count int64
	env.DB.Read(ctx).Model(&repository.CommissionEntity{}).Where("purchase_id = ?", purchase.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestE2E_OverrideWinsOverComputed(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()
	env.createCedente(t, 1, 1_000, 0)
	env.createUser(t, 7)

	purchase, err := env.PurchaseService.Create(ctx, model.PurchaseCreateRequest{
		CedenteID: 1,
		Items: []model.PurchaseItemInput{
			{ProgramTo: strPtr("latam"), PointsFinal: 200},
		},
	})
	require.NoError(t, err)

	overrides := &model.AppliedOverrides{Latam: fixturePtr(int64(999))}
	result, err := env.ReleaseService.Release(ctx, purchase.ID, 7, overrides)
	require.NoError(t, err)

	require.NotNil(t, result.Purchase.AppliedLatam)
	assert.Equal(t, int64(999), *result.Purchase.AppliedLatam)

	cedente, err := env.CedenteRepo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(999), cedente.Latam)
}

func TestE2E_PredictedWinsAfterRecompute(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()
	env.createCedente(t, 1, 1_000, 500)
	env.createUser(t, 7)

	purchase, err := env.PurchaseService.Create(ctx, model.PurchaseCreateRequest{
		CedenteID: 1,
		Items: []model.PurchaseItemInput{
			{ProgramTo: strPtr("latam"), PointsFinal: 300},
			{ProgramFrom: strPtr("smiles"), PointsDebitedFromOrigin: 999},
		},
	})
	require.NoError(t, err)

	err = env.RecomputeService.Recompute(ctx, purchase.ID)
	require.NoError(t, err)

	stored, err := env.PurchaseRepo.Get(ctx, purchase.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PredictedLatam)
	assert.Equal(t, int64(1_300), *stored.PredictedLatam)
	require.NotNil(t, stored.PredictedSmiles)
	assert.Equal(t, int64(0), *stored.PredictedSmiles) // 500 - 999 clamps

	result, err := env.ReleaseService.Release(ctx, purchase.ID, 7, nil)
	require.NoError(t, err)

	cedente, err := env.CedenteRepo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1_300), cedente.Latam)
	assert.Equal(t, int64(0), cedente.Smiles)
	require.NotNil(t, result.Purchase.AppliedSmiles)
	assert.Equal(t, int64(0), *result.Purchase.AppliedSmiles)
}

func TestE2E_NoCommissionWithoutPayout(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()
	env.createCedente(t, 1, 0, 0)
	env.createUser(t, 7)

	purchase, err := env.PurchaseService.Create(ctx, model.PurchaseCreateRequest{
		CedenteID: 1,
		Items: []model.PurchaseItemInput{
			{ProgramTo: strPtr("azul"), PointsFinal: 1_000},
		},
	})
	require.NoError(t, err)

	result, err := env.ReleaseService.Release(ctx, purchase.ID, 7, nil)
	require.NoError(t, err)
	assert.Nil(t, result.Commission)

	var count int64
	env.DB.Read(ctx).Model(&repository.CommissionEntity{}).Count(&count)
	assert.Equal(t, int64(0), count)

	cedente, err := env.CedenteRepo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), cedente.Azul)
}

func TestE2E_ReleaseEventConsumption(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()
	env.createCedente(t, 1, 0, 0)
	env.createUser(t, 7)

	purchase, err := env.PurchaseService.Create(ctx, model.PurchaseCreateRequest{
		CedenteID:       1,
		CedentePayCents: 25_000,
		Items: []model.PurchaseItemInput{
			{ProgramTo: strPtr("latam"), PointsFinal: 100},
		},
	})
	require.NoError(t, err)

	_, err = env.ReleaseService.Release(ctx, purchase.ID, 7, nil)
	require.NoError(t, err)

	received := make(chan model.ReleaseEvent, 1)
	handler := func(ctx context.Context, qMsg *queue.Message) error {
		var event model.ReleaseEvent
		if err := json.Unmarshal(qMsg.Data, &event); err != nil {
			return err
		}
		received <- event
		return nil
	}

	err = env.Queue.Consume(handler)
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, purchase.ID, event.PurchaseID)
		assert.Equal(t, int64(1), event.CedenteID)
		assert.Equal(t, int64(7), event.ReleasedByID)
		assert.Equal(t, int64(25_000), event.CommissionCents)
	case <-time.After(3 * time.Second):
		t.Fatal("release event not consumed within timeout")
	}
}

func TestE2E_ListPurchasesByStatus(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()
	env.createCedente(t, 1, 0, 0)
	env.createUser(t, 7)

	var lastID int64
	for i := 0; i < 3; i++ {
		purchase, err := env.PurchaseService.Create(ctx, model.PurchaseCreateRequest{
			CedenteID: 1,
			Items: []model.PurchaseItemInput{
				{ProgramTo: strPtr("latam"), PointsFinal: float64(10 * (i + 1))},
			},
		})
		require.NoError(t, err)
		lastID = purchase.ID
	}

	_, err := env.ReleaseService.Release(ctx, lastID, 7, nil)
	require.NoError(t, err)

	cedenteID := int64(1)
	open, total, err := env.PurchaseService.List(ctx, model.PurchaseFilter{
		CedenteID: &cedenteID,
		Statuses:  []model.PurchaseStatus{model.PurchaseStatusOpen},
		Limit:     10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, open, 2)
}

func fixturePtr[T any](v T) *T { return &v }
