package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/prohmpiriya/tienda-api/internal/di"
	"github.com/prohmpiriya/tienda-api/internal/service"
	"github.com/prohmpiriya/tienda-api/pkg/config"
	"github.com/prohmpiriya/tienda-api/pkg/logger"
)

// seed-store loads the sample products into the configured document store
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: "seed-store",
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Seeding document store...", zap.String("driver", cfg.Store.Driver))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		appLog.Error("Seeding failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	appLog := logger.Get()

	// The cache is invalidated on writes, so connect Redis when it is in use
	redisClient, err := di.OpenRedis(ctx, cfg)
	if err != nil {
		appLog.Warn("Redis unavailable, cached listings may be stale until they expire", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	conn, err := di.OpenProductStore(ctx, cfg, redisClient)
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}
	if conn == nil {
		return fmt.Errorf("STORE_DRIVER is not set, nothing to seed")
	}
	defer conn.Close(context.Background())

	resp, err := service.NewStoreService(conn.Store).Initialize(ctx)
	if err != nil {
		created := 0
		if resp != nil {
			created = resp.Created
		}
		return fmt.Errorf("stopped after %d products: %w", created, err)
	}

	appLog.Info("Document store seeded", zap.Int("created", resp.Created))
	return nil
}
