package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/flashcard-service/internal/cache"
	"github.com/SAP-F-2025/flashcard-service/internal/config"
	"github.com/SAP-F-2025/flashcard-service/internal/events"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
)

const sampleText = `Photosynthesis is the process used by plants and algae to convert light energy into chemical energy.
During photosynthesis, chlorophyll molecules inside the chloroplast absorb light energy from the sun.
The light reactions split water molecules and release oxygen as a byproduct of photosynthesis.
The Calvin cycle uses carbon dioxide and chemical energy to build glucose molecules for the plant.`

func testConfig(redisURL, publisher string) *config.Config {
	return &config.Config{
		App:   config.AppConfig{Env: config.Development, Port: "8080", LogLevel: "debug"},
		Redis: config.RedisConfig{URL: redisURL, TTL: time.Minute},
		Generation: config.GenerationConfig{
			DefaultMCQ:       2,
			DefaultTrueFalse: 2,
			DefaultFillBlank: 1,
			KeywordCount:     20,
			SentenceCount:    25,
			MinContentChars:  100,
			Seed:             42,
			MaxUploadBytes:   1 << 20,
		},
		Quiz:   config.QuizConfig{SessionTTL: time.Hour},
		Events: config.EventConfig{Enabled: true, Publisher: publisher, Topic: "flashcards"},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(context.Background(), nil, testLogger())
	assert.Error(t, err)
}

func TestNew_InMemoryFallbacks(t *testing.T) {
	container, err := New(context.Background(), testConfig("", "nop"), testLogger())
	require.NoError(t, err)
	defer container.Close()

	assert.IsType(t, &cache.MemoryCache{}, container.Cache)
	assert.IsType(t, &events.NopEventPublisher{}, container.Publisher)

	result, err := container.Flashcards.Generate(context.Background(), &models.GenerateRequest{Text: sampleText})
	require.NoError(t, err)
	assert.Equal(t, models.Quotas{MCQ: 2, TrueFalse: 2, FillBlank: 1}, result.Quotas)
	assert.LessOrEqual(t, len(result.Deck), 5)
}

func TestNew_EventsDisabledDiscardsEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := testConfig("", "gochannel")
	cfg.Events.Enabled = false
	container, err := New(context.Background(), cfg, logger)
	require.NoError(t, err)
	defer container.Close()

	require.IsType(t, &events.NopEventPublisher{}, container.Publisher)

	const generations = 200
	for i := 0; i < generations; i++ {
		result, err := container.Flashcards.Generate(context.Background(), &models.GenerateRequest{Text: sampleText})
		require.NoError(t, err)
		require.NotEmpty(t, result.Deck)
	}
	assert.Equal(t, generations, strings.Count(buf.String(), "Discarded event"))
}

func TestNew_PublisherFailureFallsBackToNop(t *testing.T) {
	cfg := testConfig("", "kafka")
	cfg.Events.KafkaBrokers = ""
	container, err := New(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	defer container.Close()

	assert.IsType(t, &events.NopEventPublisher{}, container.Publisher)
}

func TestNew_UnreachableRedisFallsBackToMemory(t *testing.T) {
	container, err := New(context.Background(), testConfig("redis://127.0.0.1:1/0", "nop"), testLogger())
	require.NoError(t, err)
	defer container.Close()

	assert.IsType(t, &cache.MemoryCache{}, container.Cache)
}

func TestNew_RedisAndGoChannel(t *testing.T) {
	mr := miniredis.RunT(t)

	container, err := New(context.Background(), testConfig("redis://"+mr.Addr(), "gochannel"), testLogger())
	require.NoError(t, err)

	assert.IsType(t, &events.GoChannelEventPublisher{}, container.Publisher)
	assert.NotNil(t, container.Quiz)
	assert.NotNil(t, container.ImportExport)

	_, err = container.Flashcards.Generate(context.Background(), &models.GenerateRequest{Text: sampleText})
	require.NoError(t, err)
	assert.NotEmpty(t, mr.Keys())

	assert.NoError(t, container.Close())
}
