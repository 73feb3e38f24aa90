package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/auth_service/internal/audit"
	"github.com/Skotchmaster/auth_service/internal/config"
	"github.com/Skotchmaster/auth_service/internal/es"
	"github.com/Skotchmaster/auth_service/internal/events"
	"github.com/Skotchmaster/auth_service/internal/handlers"
	"github.com/Skotchmaster/auth_service/internal/logging"
	authmw "github.com/Skotchmaster/auth_service/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/auth_service/internal/middleware/logging"
	"github.com/Skotchmaster/auth_service/internal/repo"
	"github.com/Skotchmaster/auth_service/internal/revocation"
	"github.com/Skotchmaster/auth_service/internal/service"
	"github.com/Skotchmaster/auth_service/internal/token"
	httpserver "github.com/Skotchmaster/auth_service/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(configuration.SECRET_KEY, "SECRET_KEY")

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	var revoked revocation.Store
	var redisClient *redis.Client
	if configuration.REDIS_ADDR != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: configuration.REDIS_ADDR})
		revoked = revocation.NewRedisStore(redisClient)
		logger.Info("revocation_store", "backend", "redis")
	} else {
		revoked = revocation.NewGormStore(db)
		logger.Info("revocation_store", "backend", "postgres")
	}

	svc := &service.AuthService{
		Users:   repo.NewGormUserRepo(db),
		Revoked: revoked,
		Tokens:  token.NewManager([]byte(configuration.SECRET_KEY)),
	}

	var producer *events.KafkaProducer
	if len(configuration.KAFKA_BROKERS) > 0 {
		producer = events.NewKafkaProducer(configuration.KAFKA_BROKERS)
		svc.Events = producer
	}

	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		svc.Audit = audit.NewESRecorder(esClient)
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		AuthHandler: &handlers.AuthHandler{Svc: svc},
		UserHandler: &handlers.UserHandler{Svc: svc},
		AuthMW:      authmw.NewRequireAuth(svc),
	}
	httpserver.Register(e, &deps)

	reaperCtx, stopReaper := context.WithCancel(context.Background())
	reaper := revocation.NewReaper(revoked, configuration.REAP_INTERVAL, logger)
	go reaper.Run(reaperCtx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", configuration.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	stopReaper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
