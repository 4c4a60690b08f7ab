package config

import (
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/flashcard-service/internal/events"
)

// EventConfig holds configuration for event publishing
type EventConfig struct {
	Enabled      bool
	Publisher    string // gochannel, kafka or nop
	KafkaBrokers string
	Topic        string
}

// GetKafkaBrokers returns Kafka brokers as a slice
func (c *EventConfig) GetKafkaBrokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// CreateEventPublisher creates an event publisher based on configuration
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled, discarding events")
		return events.NewNopEventPublisher(logger), nil
	}

	switch c.Publisher {
	case "gochannel", "":
		logger.Info("Creating in-process event publisher", "topic", c.Topic)
		return events.NewGoChannelEventPublisher(events.PublisherConfig{
			TopicName: c.Topic,
			Logger:    logger,
		}), nil
	case "kafka":
		logger.Info("Creating Kafka event publisher",
			"brokers", c.KafkaBrokers,
			"topic", c.Topic)

		return events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: c.GetKafkaBrokers(),
			TopicName:    c.Topic,
			Logger:       logger,
		})
	case "nop":
		logger.Info("Discarding events")
		return events.NewNopEventPublisher(logger), nil
	default:
		logger.Warn("Unknown event publisher type, discarding events", "publisher", c.Publisher)
		return events.NewNopEventPublisher(logger), nil
	}
}
