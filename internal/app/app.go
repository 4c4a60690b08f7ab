package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/flashcard-service/internal/cache"
	"github.com/SAP-F-2025/flashcard-service/internal/config"
	"github.com/SAP-F-2025/flashcard-service/internal/events"
	"github.com/SAP-F-2025/flashcard-service/internal/extractor"
	"github.com/SAP-F-2025/flashcard-service/internal/generator"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/nlp"
	"github.com/SAP-F-2025/flashcard-service/internal/services"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
	"github.com/SAP-F-2025/flashcard-service/pkg"
)

// Container holds the wired services shared by the HTTP server and the CLI.
type Container struct {
	Config       *config.Config
	Logger       *slog.Logger
	Cache        cache.CacheService
	Publisher    events.EventPublisher
	Random       generator.RandomSource
	Flashcards   services.FlashcardService
	ImportExport services.ImportExportService
	Quiz         services.QuizService

	redisClient *redis.Client
	cancel      context.CancelFunc
}

// New builds every service from cfg. Redis and the event broker are optional:
// a failed connection falls back to the in-memory implementation.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	c := &Container{Config: cfg, Logger: logger}

	redisClient, err := pkg.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, caching in memory", "error", err)
		redisClient = nil
	}
	c.redisClient = redisClient
	c.Cache = cache.NewCacheService(redisClient, logger)

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		publisher = events.NewNopEventPublisher(logger)
	}
	c.Publisher = publisher

	subCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	if goChannel, ok := publisher.(*events.GoChannelEventPublisher); ok {
		messages, err := goChannel.Subscribe(subCtx)
		if err != nil {
			logger.Warn("Failed to subscribe to deck events", "error", err)
		} else {
			go events.LogEvents(subCtx, messages, logger)
		}
	}

	gen := cfg.Generation
	seed := gen.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	c.Random = generator.NewSeededSource(seed)

	tokenizer := nlp.NewTokenizer(nlp.TokenizerConfig{
		StopwordsFile: gen.StopwordsFile,
		Naive:         gen.NaiveTokenizer,
	}, logger)
	generatorService := generator.New(nlp.NewAnalyzer(tokenizer), c.Random, generator.Options{
		KeywordCount:    gen.KeywordCount,
		SentenceCount:   gen.SentenceCount,
		MinContentChars: gen.MinContentChars,
	}, logger)

	v := validator.New()
	c.Flashcards = services.NewFlashcardService(
		extractor.New(logger),
		generatorService,
		c.Cache,
		publisher,
		services.FlashcardServiceConfig{
			DefaultQuotas: models.Quotas{
				MCQ:       gen.DefaultMCQ,
				TrueFalse: gen.DefaultTrueFalse,
				FillBlank: gen.DefaultFillBlank,
			},
			CacheTTL:       cfg.Redis.TTL,
			MaxUploadBytes: gen.MaxUploadBytes,
		},
		logger,
		v,
	)
	c.ImportExport = services.NewImportExportService(publisher, logger, v)
	c.Quiz = services.NewQuizService(c.Random, publisher, cfg.Quiz.SessionTTL, logger, v)

	logger.Info("Services initialized",
		"redis_cache", redisClient != nil,
		"events_publisher", cfg.Events.Publisher,
		"events_enabled", cfg.Events.Enabled,
		"seeded", gen.Seed != 0)

	return c, nil
}

// Close stops the event subscriber and releases the publisher and Redis client.
func (c *Container) Close() error {
	if c.cancel != nil {
		c.cancel()
	}

	var errs []error
	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			c.Logger.Error("Failed to close event publisher", "error", err)
			errs = append(errs, err)
		}
	}
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			c.Logger.Error("Failed to close redis client", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
