package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
)

// EventType represents the domain events emitted by the flashcard service
type EventType string

const (
	EventDeckGenerated EventType = "deck.generated"
	EventDeckImported  EventType = "deck.imported"
	EventQuizCompleted EventType = "quiz.completed"
)

const (
	eventSource  = "flashcard-service"
	eventVersion = "1.0"
)

// DeckEvent is the envelope for every published event
type DeckEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewDeckEvent wraps data in an envelope with a fresh id and timestamp
func NewDeckEvent(eventType EventType, data interface{}) *DeckEvent {
	return &DeckEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

// Event payloads

type DeckGeneratedEvent struct {
	DocumentHash  string                  `json:"document_hash"`
	SourceFormat  models.SourceFormat     `json:"source_format"`
	CardCount     int                     `json:"card_count"`
	TypeBreakdown map[models.CardType]int `json:"type_breakdown"`
	Quotas        models.Quotas           `json:"quotas"`
	CacheHit      bool                    `json:"cache_hit"`
}

type DeckImportedEvent struct {
	Format       models.ExportFormat `json:"format"`
	TotalRows    int                 `json:"total_rows"`
	SuccessCount int                 `json:"success_count"`
	ErrorCount   int                 `json:"error_count"`
}

type QuizCompletedEvent struct {
	SessionID string  `json:"session_id"`
	Total     int     `json:"total"`
	Answered  int     `json:"answered"`
	Score     int     `json:"score"`
	Accuracy  float64 `json:"accuracy"`
	Feedback  string  `json:"feedback"`
}
