package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/milhasdesk/points-admin/pkg/logger"
	"github.com/pkg/errors"
)

const ConfigTagName = "env"
const ConfigDefaultTagName = "default"

var config *Config

// Config holds every env-driven setting of the service. No other code
// reads the environment directly.
type Config struct {
	AppEnv              string `env:"APP_ENV" default:"dev"`
	AppName             string `env:"APP_NAME" default:"points_admin"`
	AppDebug            bool   `env:"APP_DEBUG" default:"1"`
	AppDebugMetricsAddr string `env:"APP_DEBUG_METRIC_ADDR"`
	AppDebugMetricsURI  string `env:"APP_DEBUG_METRIC_URI"`

	HttpListenAddr         string `env:"HTTP_LISTEN_ADDR" validation:"mustExists"`
	HttpServerReadTimeout  int    `env:"HTTP_SERVER_READ_TIMEOUT"`
	HttpServerWriteTimeout int    `env:"HTTP_SERVER_WRITE_TIMEOUT"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	RedisAddr               string `env:"REDIS_ADDR"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX"`

	PromNamespace string `env:"PROM_NAMESPACE" default:"points"`

	ReleaseStreamName       string        `env:"RELEASE_STREAM_NAME" default:"releases"`
	ReleaseConsumerGroup    string        `env:"RELEASE_CONSUMER_GROUP" default:"release-processors"`
	ReleaseConsumerName     string        `env:"RELEASE_CONSUMER_NAME"`
	ReleaseMaxRetries       int           `env:"RELEASE_MAX_RETRIES" default:"3"`
	ReleaseVisibilityWindow time.Duration `env:"RELEASE_VISIBILITY_TIMEOUT" default:"30s"`
	ReleasePollInterval     time.Duration `env:"RELEASE_POLL_INTERVAL" default:"1s"`
	ReleaseBatchSize        int64         `env:"RELEASE_BATCH_SIZE" default:"10"`
	ReleaseStreamMaxLen     int64         `env:"RELEASE_STREAM_MAX_LEN" default:"100000"`
	ReleaseEnableDLQ        bool          `env:"RELEASE_ENABLE_DLQ" default:"1"`
	ReleaseConsumers        int           `env:"RELEASE_CONSUMERS" default:"2"`

	PayoutWebhookURL string `env:"PAYOUT_WEBHOOK_URL"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		err = godotenv.Load(path)
		if err != nil {
			return errors.New("failed to load configuration file " + path + " error: " + err.Error())
		}
	}

	_, err = env.UnmarshalFromEnviron(c)
	if err != nil {
		return errors.New("failed to map env variables to Configuration object " + " error: " + err.Error())
	}

	config = c
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}
