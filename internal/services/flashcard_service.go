package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/flashcard-service/internal/cache"
	"github.com/SAP-F-2025/flashcard-service/internal/events"
	"github.com/SAP-F-2025/flashcard-service/internal/extractor"
	"github.com/SAP-F-2025/flashcard-service/internal/generator"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
)

// FlashcardService turns text or uploaded documents into decks.
type FlashcardService interface {
	Generate(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResult, error)
	GenerateFromFile(ctx context.Context, fileName, contentType string, data []byte, opts models.GenerationOptions) (*models.GenerateResult, error)
	Analyze(ctx context.Context, doc *models.Document) (models.Analysis, bool)
	InvalidateAnalyses(ctx context.Context, req *models.InvalidateAnalysesRequest) error
	DefaultQuotas() models.Quotas
}

type FlashcardServiceConfig struct {
	DefaultQuotas  models.Quotas
	CacheTTL       time.Duration
	MaxUploadBytes int64
}

type flashcardService struct {
	extractor *extractor.Extractor
	generator *generator.Generator
	cache     cache.CacheService
	publisher events.EventPublisher
	config    FlashcardServiceConfig
	logger    *slog.Logger
	validator *validator.Validator
	svcLogger *ServiceLogger
}

func NewFlashcardService(
	ext *extractor.Extractor,
	gen *generator.Generator,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	config FlashcardServiceConfig,
	logger *slog.Logger,
	validator *validator.Validator,
) FlashcardService {
	return &flashcardService{
		extractor: ext,
		generator: gen,
		cache:     cacheService,
		publisher: publisher,
		config:    config,
		logger:    logger,
		validator: validator,
		svcLogger: NewServiceLogger(logger, LogConfig{Service: "flashcard-service", Component: "generation", EnableDebug: true}),
	}
}

func (s *flashcardService) DefaultQuotas() models.Quotas {
	return s.config.DefaultQuotas
}

// ===== GENERATION =====

func (s *flashcardService) Generate(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResult, error) {
	op := s.svcLogger.WithOperation(ctx, "generate")

	if err := s.validator.Validate(req); err != nil {
		op.LogResult("", "deck", err)
		return nil, err
	}

	doc := extractor.NewDocument(req.Text, models.FormatText)
	result := s.generate(ctx, doc, req.ResolveQuotas(s.config.DefaultQuotas))

	op.LogResult(doc.Hash, "deck", nil, generationAttrs(result)...)
	return result, nil
}

func (s *flashcardService) GenerateFromFile(ctx context.Context, fileName, contentType string, data []byte, opts models.GenerationOptions) (*models.GenerateResult, error) {
	op := s.svcLogger.WithOperation(ctx, "generate_from_file")

	if s.config.MaxUploadBytes > 0 && int64(len(data)) > s.config.MaxUploadBytes {
		op.LogResult("", "deck", ErrPayloadTooLarge, slog.Int("size", len(data)))
		return nil, ErrPayloadTooLarge
	}
	if err := s.validator.Validate(opts); err != nil {
		op.LogResult("", "deck", err)
		return nil, err
	}

	doc, err := s.extractor.ExtractFile(ctx, fileName, contentType, data)
	if err != nil {
		op.LogResult("", "document", err, slog.String("filename", fileName))
		return nil, err
	}

	result := s.generate(ctx, doc, opts.ResolveQuotas(s.config.DefaultQuotas))

	op.LogResult(doc.Hash, "deck", nil, generationAttrs(result)...)
	return result, nil
}

func (s *flashcardService) generate(ctx context.Context, doc *models.Document, quotas models.Quotas) *models.GenerateResult {
	result := &models.GenerateResult{
		Deck:          models.Deck{},
		Quotas:        quotas,
		TypeBreakdown: map[models.CardType]int{},
		Keywords:      []models.Keyword{},
		Document:      doc,
	}

	if !s.generator.HasEnoughContent(doc.Content) {
		s.logger.Warn("Skipping generation",
			"error", generator.ErrInsufficientContent,
			"reason", "text too short",
			"hash", doc.Hash,
			"min_chars", s.generator.Options().MinContentChars)
		return result
	}

	analysis, hit := s.Analyze(ctx, doc)
	result.CacheHit = hit
	result.Keywords = analysis.Keywords
	result.SentenceCount = len(analysis.Sentences)
	result.Deck = s.generator.Build(analysis, quotas)
	result.TypeBreakdown = result.Deck.TypeBreakdown()

	if len(result.Deck) > 0 {
		s.publishGenerated(ctx, doc, result)
	}
	return result
}

// Analyze returns the keyword and sentence analysis of a document, reading
// and filling the cache. The bool reports a cache hit.
func (s *flashcardService) Analyze(ctx context.Context, doc *models.Document) (models.Analysis, bool) {
	opts := s.generator.Options()
	key := cache.AnalysisKey(doc.Hash, s.generator.TokenizerFingerprint(), opts.KeywordCount, opts.SentenceCount)

	var analysis models.Analysis
	err := s.cache.Get(ctx, key, &analysis)
	if err == nil {
		s.svcLogger.LogDebug(ctx, "Analysis cache hit", slog.String("key", key))
		return analysis, true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Analysis cache read failed", "key", key, "error", err)
	}

	analysis = s.generator.Analyze(doc.Content)
	if err := s.cache.Set(ctx, key, analysis, s.config.CacheTTL); err != nil {
		s.logger.Warn("Analysis cache write failed", "key", key, "error", err)
	}
	return analysis, false
}

// InvalidateAnalyses drops the cached analyses of one document, or of every
// document when no hash is given.
func (s *flashcardService) InvalidateAnalyses(ctx context.Context, req *models.InvalidateAnalysesRequest) error {
	op := s.svcLogger.WithOperation(ctx, "invalidate_analyses")

	if err := s.validator.Validate(req); err != nil {
		op.LogResult(req.Hash, "analysis", err)
		return err
	}

	pattern := cache.AnalysisPattern(strings.ToLower(req.Hash))
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		err = fmt.Errorf("failed to invalidate analyses: %w", err)
		op.LogResult(req.Hash, "analysis", err)
		return err
	}

	op.LogResult(req.Hash, "analysis", nil, slog.String("pattern", pattern))
	return nil
}

func (s *flashcardService) publishGenerated(ctx context.Context, doc *models.Document, result *models.GenerateResult) {
	event := events.NewDeckEvent(events.EventDeckGenerated, events.DeckGeneratedEvent{
		DocumentHash:  doc.Hash,
		SourceFormat:  doc.SourceFormat,
		CardCount:     len(result.Deck),
		TypeBreakdown: result.TypeBreakdown,
		Quotas:        result.Quotas,
		CacheHit:      result.CacheHit,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish deck generated event", "error", err)
	}
}

func generationAttrs(result *models.GenerateResult) []slog.Attr {
	return []slog.Attr{
		slog.Int("card_count", len(result.Deck)),
		slog.Int("requested", result.Quotas.Total()),
		slog.Int("sentences", result.SentenceCount),
		slog.Bool("cache_hit", result.CacheHit),
	}
}
