package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prohmpiriya/tienda-api/internal/service"
	"github.com/prohmpiriya/tienda-api/pkg/config"
	"github.com/prohmpiriya/tienda-api/pkg/redis"
)

// OpenRedis connects to Redis when it is enabled. It returns nil, nil when
// Redis is disabled.
func OpenRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}

	client, err := redis.NewClient(ctx, &redis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return client, nil
}

// OpenPublisher returns the Kafka event publisher when Kafka is enabled and a
// no-op publisher otherwise.
func OpenPublisher(ctx context.Context, cfg *config.Config) (service.EventPublisher, error) {
	if !cfg.Kafka.Enabled {
		return service.NewNoOpEventPublisher(), nil
	}

	publisher, err := service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.Topic,
		ServiceName: cfg.App.Name,
		ClientID:    cfg.Kafka.ClientID,
	})
	if err != nil {
		return service.NewNoOpEventPublisher(), fmt.Errorf("kafka publisher: %w", err)
	}
	return publisher, nil
}
