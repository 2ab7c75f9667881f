package processor

import (
	"errors"
	"time"

	"github.com/milhasdesk/points-admin/pkg/redis"
)

var (
	ErrAlreadyProcessed  = errors.New("release already processed")
	ErrLockAcquireFailed = errors.New("failed to acquire processing lock")
)

type IdempotencyConfig struct {
	LockTTL            time.Duration
	ProcessedTTL       time.Duration
	LockKeyPrefix      string
	ProcessedKeyPrefix string
}

func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		LockTTL:            30 * time.Second,
		ProcessedTTL:       24 * time.Hour,
		LockKeyPrefix:      "release:lock:",
		ProcessedKeyPrefix: "release:processed:",
	}
}

// IdempotencyService keeps a released purchase from being notified
// twice: a short SetNX lock serializes concurrent consumers and a
// longer-lived processed marker absorbs stream redeliveries.
type IdempotencyService struct {
	redis  redis.RedisAdapter
	config IdempotencyConfig
}

func NewIdempotencyService(redisAdapter redis.RedisAdapter, config IdempotencyConfig) *IdempotencyService {
	return &IdempotencyService{
		redis:  redisAdapter,
		config: config,
	}
}

// Acquire returns ErrAlreadyProcessed when the purchase was already
// handled and ErrLockAcquireFailed when another consumer holds it.
func (s *IdempotencyService) Acquire(key string) error {
	exists, err := s.redis.Exist(s.config.ProcessedKeyPrefix + key)
	if err == nil && exists > 0 {
		return ErrAlreadyProcessed
	}

	ok, err := s.redis.SetNX(s.config.LockKeyPrefix+key, []byte("1"), s.config.LockTTL)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLockAcquireFailed
	}
	return nil
}

// MarkProcessed records success and drops the lock.
func (s *IdempotencyService) MarkProcessed(key string) error {
	if err := s.redis.Set(s.config.ProcessedKeyPrefix+key, []byte("1"), s.config.ProcessedTTL); err != nil {
		return err
	}
	return s.redis.Del(s.config.LockKeyPrefix + key)
}

// Release drops the lock without marking success, so the message can be
// retried.
func (s *IdempotencyService) Release(key string) error {
	return s.redis.Del(s.config.LockKeyPrefix + key)
}
