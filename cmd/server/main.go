package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"socialnet/internal/config"
	"socialnet/internal/db"
	"socialnet/internal/events"
	"socialnet/internal/logger"
	"socialnet/internal/middleware"
	"socialnet/internal/router"
	"socialnet/internal/services"
	"socialnet/internal/telemetry"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)
	logger.Info.Printf("Starting with %s", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg.OTelEndpoint, cfg.OTelServiceName)
	if err != nil {
		logger.Error.Fatalf("Failed to init tracing: %v", err)
	}

	// Initialize Database
	conn, err := db.Init(cfg.DatabaseURL)
	if err != nil {
		logger.Error.Fatalf("Failed to connect to database: %v", err)
	}

	var publisher services.EventPublisher = services.NopPublisher()
	var kafkaPublisher *events.KafkaPublisher
	if cfg.KafkaBrokers != "" {
		kafkaPublisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		publisher = kafkaPublisher
		logger.Info.Printf("Publishing events to kafka topic %s", cfg.KafkaTopic)
	}

	var limiter *middleware.RateLimiter
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn.Printf("Redis unavailable, rate limiting disabled: %v", err)
		} else {
			limiter = middleware.NewRateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute)
			logger.Info.Printf("Rate limiting mutating requests to %d/min", cfg.RateLimitPerMinute)
		}
	}

	r, err := router.New(router.Deps{
		DB:            conn,
		Events:        publisher,
		Limiter:       limiter,
		AdminName:     cfg.AdminName,
		AdminPassword: cfg.AdminPassword,
		SessionSecret: cfg.AdminSecretKey,
	})
	if err != nil {
		logger.Error.Fatalf("Failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           telemetry.Wrap(r, cfg.OTelServiceName),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		logger.Info.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error.Printf("Server shutdown: %v", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error.Printf("Kafka close: %v", err)
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error.Printf("Tracing shutdown: %v", err)
	}
	if sqlDB, err := conn.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info.Println("Bye")
}
