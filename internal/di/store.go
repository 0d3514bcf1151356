package di

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prohmpiriya/tienda-api/internal/handler"
	"github.com/prohmpiriya/tienda-api/internal/repository"
	"github.com/prohmpiriya/tienda-api/pkg/config"
	"github.com/prohmpiriya/tienda-api/pkg/database"
	"github.com/prohmpiriya/tienda-api/pkg/logger"
	"github.com/prohmpiriya/tienda-api/pkg/redis"
	"github.com/prohmpiriya/tienda-api/pkg/retry"
)

// StoreConnection is an open document store and the connection behind it
type StoreConnection struct {
	Driver  string
	Store   repository.ProductStore
	Checker handler.HealthChecker
	close   func(ctx context.Context) error
}

// Close releases the underlying connection
func (s *StoreConnection) Close(ctx context.Context) error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// OpenProductStore connects the configured document store. It returns nil
// when no driver is configured. The store is wrapped in the Redis cache when
// caching is enabled and a client is available.
func OpenProductStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (*StoreConnection, error) {
	var conn *StoreConnection
	var err error

	switch cfg.Store.Driver {
	case config.StoreDriverNone, "":
		return nil, nil
	case config.StoreDriverMongoDB:
		conn, err = openMongoStore(ctx, cfg)
	case config.StoreDriverPostgres:
		conn, err = openPostgresStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Store.CacheEnabled && redisClient != nil {
		conn.Store = repository.NewCachedProductStore(conn.Store, redisClient, cfg.Store.CacheTTL)
		logger.Get().Info("Document store cache enabled", zap.Duration("ttl", cfg.Store.CacheTTL))
	}

	return conn, nil
}

func openMongoStore(ctx context.Context, cfg *config.Config) (*StoreConnection, error) {
	mongoCfg := &database.MongoConfig{
		URI:            cfg.MongoDB.URI,
		Database:       cfg.MongoDB.Database,
		ConnectTimeout: cfg.MongoDB.Timeout,
		MaxPoolSize:    50,
	}

	var db *database.MongoDB
	err := retry.Do(ctx, retry.ConnectBackoff(), func(ctx context.Context) error {
		var err error
		db, err = database.NewMongo(ctx, mongoCfg)
		return err
	}, logRetry("mongodb"))
	if err != nil {
		return nil, fmt.Errorf("mongodb store: %w", err)
	}

	logger.Get().Info("Document store connected",
		zap.String("driver", config.StoreDriverMongoDB),
		zap.String("database", cfg.MongoDB.Database),
		zap.String("collection", cfg.MongoDB.Collection),
	)

	return &StoreConnection{
		Driver:  config.StoreDriverMongoDB,
		Store:   repository.NewMongoProductStore(db.Collection(cfg.MongoDB.Collection)),
		Checker: db,
		close:   db.Close,
	}, nil
}

func openPostgresStore(ctx context.Context, cfg *config.Config) (*StoreConnection, error) {
	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        int32(cfg.Database.MinConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres store: %w", err)
	}

	store := repository.NewPostgresProductStore(db.Pool())
	if err := retry.Do(ctx, retry.ConnectBackoff(), store.EnsureSchema, logRetry("postgres schema")); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres store schema: %w", err)
	}

	logger.Get().Info("Document store connected",
		zap.String("driver", config.StoreDriverPostgres),
		zap.String("database", cfg.Database.DBName),
	)

	return &StoreConnection{
		Driver:  config.StoreDriverPostgres,
		Store:   store,
		Checker: db,
		close: func(context.Context) error {
			db.Close()
			return nil
		},
	}, nil
}

func logRetry(target string) retry.Notify {
	return func(attempt int, err error, wait time.Duration) {
		logger.Get().Warn("Connection attempt failed, retrying",
			zap.String("target", target),
			zap.Int("attempt", attempt),
			zap.Duration("next_in", wait),
			zap.Error(err),
		)
	}
}
