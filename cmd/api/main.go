package main

import (
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/milhasdesk/points-admin/internal/config"
	"github.com/milhasdesk/points-admin/internal/handlers"
	"github.com/milhasdesk/points-admin/internal/queue"
	"github.com/milhasdesk/points-admin/internal/repository"
	"github.com/milhasdesk/points-admin/internal/services"
	xhttp "github.com/milhasdesk/points-admin/pkg/http"
	"github.com/milhasdesk/points-admin/pkg/logger"
	"github.com/milhasdesk/points-admin/pkg/pg"
	"github.com/milhasdesk/points-admin/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	// transport (tcp for now)
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	releaseQ, err := queue.NewQueue(redisAdap, queue.QueueConfig{
		Name:              config.Get().ReleaseStreamName,
		ConsumerGroup:     config.Get().ReleaseConsumerGroup,
		ConsumerName:      config.Get().ReleaseConsumerName,
		MaxRetries:        config.Get().ReleaseMaxRetries,
		VisibilityTimeout: config.Get().ReleaseVisibilityWindow,
		PollInterval:      config.Get().ReleasePollInterval,
		BatchSize:         config.Get().ReleaseBatchSize,
		MaxLen:            config.Get().ReleaseStreamMaxLen,
		EnableDLQ:         config.Get().ReleaseEnableDLQ,
	})
	if err != nil {
		logger.Error("failed creating release queue", "error", err)
		return
	}

	purchaseRepo := repository.NewPurchaseRepository(db)
	cedenteRepo := repository.NewCedenteRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)
	userRepo := repository.NewUserRepository(db)

	// services
	recomputeService := services.NewRecomputeService(purchaseRepo, cedenteRepo)
	releaseService := services.NewReleaseService(purchaseRepo, cedenteRepo, commissionRepo, recomputeService, releaseQ)
	purchaseService := services.NewPurchaseService(purchaseRepo, cedenteRepo)
	cedenteService := services.NewCedenteService(cedenteRepo)
	commissionService := services.NewCommissionService(commissionRepo)
	sessionService := services.NewSessionService(userRepo)
	healthService := services.NewHealthService()

	// v1 handlers
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService, releaseService, recomputeService, sessionService)
	cedenteHandler := handlers.NewCedenteHandler(cedenteService, commissionService)
	healthHandler := handlers.NewHealthHandler(healthService)

	g := s.Router.Group("/api/v1")
	handlers.RegisterPurchaseRoutes(g, purchaseHandler)
	handlers.RegisterCedenteRoutes(g, cedenteHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	// Create new server
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Kill)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	select {
	case <-c:
		s.Shutdown()
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
