package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/questforge/session-engine/internal/clients/reference"
	"github.com/questforge/session-engine/internal/config"
	"github.com/questforge/session-engine/internal/repositories/characters"
	"github.com/questforge/session-engine/internal/repositories/encounters"
	"github.com/questforge/session-engine/internal/services"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		cancel()
		logger.Fatal("failed to connect to redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	cancel()

	refClient, err := reference.New(&reference.Config{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	})
	if err != nil {
		logger.Fatal("failed to create reference client", zap.Error(err))
	}

	provider := services.NewProvider(&services.ProviderConfig{
		ReferenceClient: refClient,
		CharacterRepository: characters.NewRedisRepository(&characters.RedisRepoConfig{
			Client: redisClient,
		}),
		EncounterRepository: encounters.NewRedisRepository(&encounters.RedisRepoConfig{
			Client: redisClient,
		}),
		Logger: logger,
	})
	// Round-trip through the service once so a broken store surfaces at
	// startup instead of on the first player action
	probeCtx, probeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if _, err := provider.EncounterService.GetActiveEncounter(probeCtx, "startup-probe"); err != nil {
		probeCancel()
		logger.Fatal("encounter service probe failed", zap.Error(err))
	}
	probeCancel()

	logger.Info("session engine ready", zap.String("redis", cfg.Redis.Addr))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	if err := redisClient.Close(); err != nil {
		logger.Warn("failed to close redis client", zap.Error(err))
	}
}
