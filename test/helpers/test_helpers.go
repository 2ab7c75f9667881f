package helpers

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/milhasdesk/points-admin/internal/repository"
	"github.com/milhasdesk/points-admin/pkg/pg"
	"github.com/milhasdesk/points-admin/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func SetupTestDB(t *testing.T) *pg.DB {
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

	pgDB := &pg.DB{}
	pgDBValue := reflect.ValueOf(pgDB).Elem()

	readField := pgDBValue.FieldByName("read")
	writeField := pgDBValue.FieldByName("write")

	readField = reflect.NewAt(readField.Type(), readField.Addr().UnsafePointer()).Elem()
	writeField = reflect.NewAt(writeField.Type(), writeField.Addr().UnsafePointer()).Elem()

	readField.Set(reflect.ValueOf(db))
	writeField.Set(reflect.ValueOf(db))

	return pgDB
}

func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	adapter, err := redis.NewRedisAdapter(t.Name()+"-"+mr.Addr(), "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return mr, adapter
}

func CreateTestUser(t *testing.T, db *pg.DB, id int64) *repository.UserEntity {
	ctx := context.Background()
	user := &repository.UserEntity{
		ID:     id,
		Name:   "Test Operator",
		Email:  RandomEmail(id),
		APIKey: RandomAPIKey(id),
	}
	err := db.Write(ctx).Create(user).Error
	require.NoError(t, err)
	return user
}

func CreateTestCedente(t *testing.T, db *pg.DB, id int64, latam, smiles int64) *repository.CedenteEntity {
	ctx := context.Background()
	cedente := &repository.CedenteEntity{
		ID:       id,
		Name:     "Test Cedente",
		Document: RandomDocument(id),
		Latam:    latam,
		Smiles:   smiles,
	}
	err := db.Write(ctx).Create(cedente).Error
	require.NoError(t, err)
	return cedente
}

func CreateTestPurchase(t *testing.T, db *pg.DB, cedenteID int64, payCents int64, items ...*repository.PurchaseItemEntity) *repository.PurchaseEntity {
	ctx := context.Background()
	purchase := &repository.PurchaseEntity{
		CedenteID:       cedenteID,
		Status:          "OPEN",
		CedentePayCents: payCents,
		Items:           items,
		CreatedAt:       time.Now(),
	}
	err := db.Write(ctx).Create(purchase).Error
	require.NoError(t, err)
	return purchase
}

func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func AssertEventually(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	if !WaitForCondition(t, timeout, condition) {
		t.Fatal(msg)
	}
}

func ContextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func RandomAPIKey(id int64) string {
	return "test-api-key-" + time.Now().Format("20060102150405") + "-" + string(rune('a'+id%26))
}

func RandomEmail(id int64) string {
	return "operator-" + time.Now().Format("20060102150405") + "-" + string(rune('a'+id%26)) + "@example.com"
}

func RandomDocument(id int64) string {
	return "doc-" + time.Now().Format("20060102150405.000") + "-" + string(rune('a'+id%26))
}

func Ptr[T any](v T) *T {
	return &v
}
