package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(ctx context.Context, event *DeckEvent) error
	Close() error
}

// PublisherConfig holds configuration for the event publisher
type PublisherConfig struct {
	KafkaBrokers []string
	TopicName    string
	Logger       *slog.Logger
}

// newMessage marshals an event into a Watermill message with metadata headers
func newMessage(event *DeckEvent) (*message.Message, error) {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, eventBytes)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("source", event.Source)
	msg.Metadata.Set("version", event.Version)
	msg.Metadata.Set("timestamp", event.Timestamp.Format("2006-01-02T15:04:05Z07:00"))
	return msg, nil
}

// publish sends one event through any Watermill publisher
func publish(ctx context.Context, publisher message.Publisher, topic string, logger *slog.Logger, event *DeckEvent) error {
	msg, err := newMessage(event)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)

	if err := publisher.Publish(topic, msg); err != nil {
		logger.Error("Failed to publish event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	logger.Info("Published event",
		"event_id", event.ID,
		"event_type", event.Type,
		"topic", topic)
	return nil
}

// ===== KAFKA =====

// KafkaEventPublisher implements EventPublisher using Watermill with Kafka
type KafkaEventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
	topicName string
}

// NewKafkaEventPublisher creates a new Kafka-based event publisher using Watermill
func NewKafkaEventPublisher(config PublisherConfig) (*KafkaEventPublisher, error) {
	logger := watermill.NewSlogLogger(config.Logger)

	publisherConfig := kafka.PublisherConfig{
		Brokers:   config.KafkaBrokers,
		Marshaler: kafka.DefaultMarshaler{},
	}

	publisher, err := kafka.NewPublisher(publisherConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}

	return &KafkaEventPublisher{
		publisher: publisher,
		logger:    config.Logger,
		topicName: config.TopicName,
	}, nil
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, event *DeckEvent) error {
	return publish(ctx, p.publisher, p.topicName, p.logger, event)
}

// Close closes the publisher and releases resources
func (p *KafkaEventPublisher) Close() error {
	return p.publisher.Close()
}

// ===== IN-PROCESS =====

// GoChannelEventPublisher delivers events to in-process subscribers through a
// Watermill Go channel pub/sub. Events published with no subscriber are
// dropped.
type GoChannelEventPublisher struct {
	pubSub    *gochannel.GoChannel
	logger    *slog.Logger
	topicName string
}

func NewGoChannelEventPublisher(config PublisherConfig) *GoChannelEventPublisher {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(config.Logger))
	return &GoChannelEventPublisher{
		pubSub:    pubSub,
		logger:    config.Logger,
		topicName: config.TopicName,
	}
}

func (p *GoChannelEventPublisher) Publish(ctx context.Context, event *DeckEvent) error {
	return publish(ctx, p.pubSub, p.topicName, p.logger, event)
}

// Subscribe returns the stream of messages published to the configured topic.
// Every message must be acked.
func (p *GoChannelEventPublisher) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return p.pubSub.Subscribe(ctx, p.topicName)
}

func (p *GoChannelEventPublisher) Close() error {
	return p.pubSub.Close()
}

// ===== NOP =====

// NopEventPublisher discards every event. It backs the disabled and fallback
// paths so nothing accumulates in a long running process.
type NopEventPublisher struct {
	logger *slog.Logger
}

func NewNopEventPublisher(logger *slog.Logger) *NopEventPublisher {
	return &NopEventPublisher{logger: logger}
}

func (n *NopEventPublisher) Publish(ctx context.Context, event *DeckEvent) error {
	n.logger.Debug("Discarded event",
		"event_id", event.ID,
		"event_type", event.Type)
	return nil
}

func (n *NopEventPublisher) Close() error {
	return nil
}

// ===== MOCK =====

// MockEventPublisher is a mock implementation for testing
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []DeckEvent
	Logger *slog.Logger
}

// NewMockEventPublisher creates a new mock event publisher
func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{
		Events: make([]DeckEvent, 0),
		Logger: logger,
	}
}

// Publish stores the event in memory (for testing)
func (m *MockEventPublisher) Publish(ctx context.Context, event *DeckEvent) error {
	m.mu.Lock()
	m.Events = append(m.Events, *event)
	m.mu.Unlock()

	m.Logger.Debug("Mock: Published event",
		"event_id", event.ID,
		"event_type", event.Type)
	return nil
}

// Close is a no-op for the mock publisher
func (m *MockEventPublisher) Close() error {
	return nil
}

// GetPublishedEvents returns all published events (for testing)
func (m *MockEventPublisher) GetPublishedEvents() []DeckEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]DeckEvent(nil), m.Events...)
}

// ClearEvents clears all published events (for testing)
func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = make([]DeckEvent, 0)
}
