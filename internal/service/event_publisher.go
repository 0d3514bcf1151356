package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/tienda-api/internal/domain"
	"github.com/prohmpiriya/tienda-api/pkg/kafka"
)

// EventPublisher defines the interface for publishing catalog and directory events
type EventPublisher interface {
	// PublishProductEvent publishes a product event; product may be nil for deletions
	PublishProductEvent(ctx context.Context, eventType domain.EventType, productID int, product *domain.PublicProduct) error

	// PublishUserEvent publishes a user event
	PublishUserEvent(ctx context.Context, eventType domain.EventType, userID int, user *domain.PublicUser) error

	// Close closes the event publisher
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "tienda-events"
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "tienda-api"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "tienda-api-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// PublishProductEvent publishes a product event
func (p *KafkaEventPublisher) PublishProductEvent(ctx context.Context, eventType domain.EventType, productID int, product *domain.PublicProduct) error {
	return p.publishEvent(ctx, domain.NewProductEvent(eventType, uuid.New().String(), productID, product))
}

// PublishUserEvent publishes a user event
func (p *KafkaEventPublisher) PublishUserEvent(ctx context.Context, eventType domain.EventType, userID int, user *domain.PublicUser) error {
	return p.publishEvent(ctx, domain.NewUserEvent(eventType, uuid.New().String(), userID, user))
}

// Close closes the event publisher
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

func (p *KafkaEventPublisher) publishEvent(ctx context.Context, event *domain.Event) error {
	msg, err := buildEventMessage(p.topic, p.serviceName, event)
	if err != nil {
		return err
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.EventType, err)
	}

	return nil
}

// buildEventMessage encodes an event with its routing headers
func buildEventMessage(topic, source string, event *domain.Event) (*kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	return &kafka.Message{
		Topic: topic,
		Key:   event.Key(),
		Value: value,
		Headers: map[string]string{
			"event_type":   string(event.EventType),
			"event_id":     event.EventID,
			"source":       source,
			"content_type": "application/json",
		},
		Timestamp: event.OccurredAt,
	}, nil
}

// NoOpEventPublisher is a no-op implementation of EventPublisher, used when Kafka is disabled
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// PublishProductEvent is a no-op
func (p *NoOpEventPublisher) PublishProductEvent(ctx context.Context, eventType domain.EventType, productID int, product *domain.PublicProduct) error {
	return nil
}

// PublishUserEvent is a no-op
func (p *NoOpEventPublisher) PublishUserEvent(ctx context.Context, eventType domain.EventType, userID int, user *domain.PublicUser) error {
	return nil
}

// Close is a no-op
func (p *NoOpEventPublisher) Close() error {
	return nil
}
