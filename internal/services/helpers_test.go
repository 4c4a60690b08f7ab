package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/SAP-F-2025/flashcard-service/internal/cache"
	"github.com/SAP-F-2025/flashcard-service/internal/events"
	"github.com/SAP-F-2025/flashcard-service/internal/extractor"
	"github.com/SAP-F-2025/flashcard-service/internal/generator"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/nlp"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
)

const photosynthesis = `Photosynthesis is the process used by plants and algae to convert light energy into chemical energy.
During photosynthesis, chlorophyll molecules inside the chloroplast absorb light energy from the sun.
The light reactions split water molecules and release oxygen as a byproduct of photosynthesis.
The Calvin cycle uses carbon dioxide and chemical energy to build glucose molecules for the plant.
Glucose produced by photosynthesis provides energy for growth and is stored as starch in plant tissues.
Without chlorophyll and sunlight, plants cannot perform photosynthesis and will eventually stop growing.`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockCacheService is a mock implementation of cache.CacheService
type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) DeletePattern(ctx context.Context, pattern string) error {
	args := m.Called(ctx, pattern)
	return args.Error(0)
}

// failingPublisher rejects every event.
type failingPublisher struct{}

func (failingPublisher) Publish(ctx context.Context, event *events.DeckEvent) error {
	return errors.New("broker unavailable")
}

func (failingPublisher) Close() error { return nil }

// reverseSource reverses on shuffle and always picks the first index.
type reverseSource struct{}

func (reverseSource) Intn(n int) int { return 0 }

func (reverseSource) Shuffle(n int, swap func(i, j int)) {
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

var testQuotas = models.Quotas{MCQ: 8, TrueFalse: 4, FillBlank: 3}

func newTestFlashcardService(cacheService cache.CacheService, publisher events.EventPublisher) FlashcardService {
	return newTestFlashcardServiceWithTokenizer(cacheService, publisher, nlp.TokenizerConfig{})
}

func newTestFlashcardServiceWithTokenizer(cacheService cache.CacheService, publisher events.EventPublisher, tokenizer nlp.TokenizerConfig) FlashcardService {
	logger := testLogger()
	analyzer := nlp.NewAnalyzer(nlp.NewTokenizer(tokenizer, logger))
	gen := generator.New(analyzer, generator.NewSeededSource(7), generator.DefaultOptions(), logger)

	return NewFlashcardService(
		extractor.New(logger),
		gen,
		cacheService,
		publisher,
		FlashcardServiceConfig{
			DefaultQuotas:  testQuotas,
			CacheTTL:       time.Minute,
			MaxUploadBytes: 1 << 20,
		},
		logger,
		validator.New(),
	)
}

func sampleDeck() models.Deck {
	return models.Deck{
		{
			Type:          models.CardMCQ,
			Question:      "Complete the sentence: The ________ is the powerhouse of the cell.",
			Options:       []string{"nucleus", "mitochondria", "ribosome", "membrane"},
			CorrectIndex:  1,
			CorrectAnswer: "mitochondria",
			Explanation:   "The correct answer is 'mitochondria' based on the context.",
		},
		{
			Type:        models.CardTrueFalse,
			Question:    "The ribosome is the powerhouse of the cell.",
			IsTrue:      false,
			Explanation: "This statement has been modified from the original text.",
		},
		{
			Type:          models.CardFillBlank,
			Question:      "Fill in the blank: Cellular ________ produces energy, for example.",
			CorrectAnswer: "respiration",
			Explanation:   "The correct word is 'respiration' based on the context.",
		},
	}
}
