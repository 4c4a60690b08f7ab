package generator

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/nlp"
)

// ErrInsufficientContent is logged when text is too short or has no
// qualifying sentences. Generation then returns an empty deck.
var ErrInsufficientContent = errors.New("generator: insufficient content")

// DefaultMinContentChars is the shortest trimmed text that is analysed.
const DefaultMinContentChars = 100

type Options struct {
	KeywordCount    int
	SentenceCount   int
	MinContentChars int
}

func DefaultOptions() Options {
	return Options{
		KeywordCount:    nlp.DefaultKeywordCount,
		SentenceCount:   nlp.DefaultSentenceCount,
		MinContentChars: DefaultMinContentChars,
	}
}

// Generator turns ranked sentences into flashcards. All randomness comes from
// the injected RandomSource.
type Generator struct {
	analyzer *nlp.Analyzer
	rng      RandomSource
	opts     Options
	logger   *slog.Logger
}

func New(analyzer *nlp.Analyzer, rng RandomSource, opts Options, logger *slog.Logger) *Generator {
	if opts.KeywordCount <= 0 {
		opts.KeywordCount = nlp.DefaultKeywordCount
	}
	if opts.SentenceCount <= 0 {
		opts.SentenceCount = nlp.DefaultSentenceCount
	}
	if opts.MinContentChars < 0 {
		opts.MinContentChars = DefaultMinContentChars
	}
	return &Generator{
		analyzer: analyzer,
		rng:      rng,
		opts:     opts,
		logger:   logger,
	}
}

func (g *Generator) Options() Options {
	return g.opts
}

// TokenizerFingerprint identifies the tokenizer Analyze runs with.
func (g *Generator) TokenizerFingerprint() string {
	return g.analyzer.Tokenizer().Fingerprint()
}

// HasEnoughContent reports whether the trimmed text reaches MinContentChars.
func (g *Generator) HasEnoughContent(text string) bool {
	return nlp.RuneLen(strings.TrimSpace(text)) >= g.opts.MinContentChars
}

// Analyze extracts keywords and ranked sentences with the configured counts.
func (g *Generator) Analyze(text string) models.Analysis {
	return g.analyzer.Analyze(text, g.opts.KeywordCount, g.opts.SentenceCount)
}

// Generate builds a deck from raw text. It never fails: short or unusable
// text yields an empty deck.
func (g *Generator) Generate(text string, quotas models.Quotas) models.Deck {
	if !g.HasEnoughContent(text) {
		g.logger.Warn("Skipping generation",
			"error", ErrInsufficientContent,
			"reason", "text too short",
			"chars", nlp.RuneLen(strings.TrimSpace(text)),
			"min_chars", g.opts.MinContentChars)
		return models.Deck{}
	}
	return g.Build(g.Analyze(text), quotas)
}

// Build assembles a deck from an existing analysis. Each card type walks the
// sentences in rank order until its quota is met; a sentence that fails for a
// type is not retried. The combined cards are shuffled and truncated to the
// total quota.
func (g *Generator) Build(analysis models.Analysis, quotas models.Quotas) models.Deck {
	if len(analysis.Sentences) == 0 {
		g.logger.Warn("Skipping generation",
			"error", ErrInsufficientContent,
			"reason", "no qualifying sentences",
			"keywords", len(analysis.Keywords))
		return models.Deck{}
	}

	keywords := models.KeywordTokens(analysis.Keywords)
	deck := models.Deck{}

	mcqCount := 0
	for _, s := range analysis.Sentences {
		if mcqCount >= quotas.MCQ {
			break
		}
		if card, ok := g.MCQ(s.Text, keywords); ok {
			deck = append(deck, card)
			mcqCount++
		}
	}

	tfCount := 0
	for _, s := range analysis.Sentences {
		if tfCount >= quotas.TrueFalse {
			break
		}
		cards := g.TrueFalse(s.Text, keywords)
		if remaining := quotas.TrueFalse - tfCount; len(cards) > remaining {
			cards = cards[:remaining]
		}
		deck = append(deck, cards...)
		tfCount += len(cards)
	}

	fillCount := 0
	for _, s := range analysis.Sentences {
		if fillCount >= quotas.FillBlank {
			break
		}
		if card, ok := g.FillBlank(s.Text, keywords); ok {
			deck = append(deck, card)
			fillCount++
		}
	}

	deck.Shuffle(g.rng.Shuffle)
	if total := quotas.Total(); len(deck) > total {
		deck = deck[:total]
	}

	g.logger.Debug("Deck generated",
		"cards", len(deck),
		"mcq", mcqCount,
		"true_false", tfCount,
		"fill_blank", fillCount,
		"sentences", len(analysis.Sentences))

	return deck
}
