package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
)

// LogEvents drains messages until the channel closes or ctx is done, logging
// each decoded event. Malformed payloads are acked and dropped.
func LogEvents(ctx context.Context, messages <-chan *message.Message, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var event DeckEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				logger.Warn("Dropping malformed event", "message_uuid", msg.UUID, "error", err)
				msg.Ack()
				continue
			}
			logger.Info("Event received",
				"event_id", event.ID,
				"event_type", event.Type,
				"source", msg.Metadata.Get("source"))
			msg.Ack()
		}
	}
}
