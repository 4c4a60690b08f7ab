package nlp

import (
	"sort"
	"strings"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
)

const (
	DefaultKeywordCount  = 20
	DefaultSentenceCount = 25
	// MinSentenceWords is the shortest sentence kept for scoring.
	MinSentenceWords = 8
	// MinContentWordLen is exclusive: content words are longer than this.
	MinContentWordLen = 3
)

// Analyzer ranks keywords and sentences with a Tokenizer strategy.
type Analyzer struct {
	tokenizer Tokenizer
}

func NewAnalyzer(tokenizer Tokenizer) *Analyzer {
	return &Analyzer{tokenizer: tokenizer}
}

func (a *Analyzer) Tokenizer() Tokenizer {
	return a.tokenizer
}

// Words returns the lowercased word tokens of text.
func (a *Analyzer) Words(text string) []string {
	spans := a.tokenizer.WordSpans(text)
	words := make([]string, len(spans))
	for i, sp := range spans {
		words[i] = strings.ToLower(text[sp.Start:sp.End])
	}
	return words
}

// IsContentWord reports whether a lowercased token is alphanumeric, longer
// than MinContentWordLen characters and not a stopword.
func (a *Analyzer) IsContentWord(token string) bool {
	return IsAlnum(token) && RuneLen(token) > MinContentWordLen && !a.tokenizer.IsStopword(token)
}

// ContentWords returns every content word occurrence in text, in order.
func (a *Analyzer) ContentWords(text string) []string {
	var words []string
	for _, w := range a.Words(text) {
		if a.IsContentWord(w) {
			words = append(words, w)
		}
	}
	return words
}

// ExtractKeywords returns up to k content words ranked by frequency, ties
// broken by first occurrence.
func (a *Analyzer) ExtractKeywords(text string, k int) []models.Keyword {
	if k <= 0 {
		return []models.Keyword{}
	}

	counts := make(map[string]int)
	var order []string
	for _, w := range a.ContentWords(text) {
		if _, seen := counts[w]; !seen {
			order = append(order, w)
		}
		counts[w]++
	}

	keywords := make([]models.Keyword, len(order))
	for i, w := range order {
		keywords[i] = models.Keyword{Token: w, Frequency: counts[w]}
	}
	sort.SliceStable(keywords, func(i, j int) bool {
		return keywords[i].Frequency > keywords[j].Frequency
	})

	if len(keywords) > k {
		keywords = keywords[:k]
	}
	return keywords
}

// SelectSentences scores every sentence of at least MinSentenceWords words by
// the number of its tokens found in keywords and returns the top n, keeping
// document order among equal scores.
func (a *Analyzer) SelectSentences(text string, keywords []models.Keyword, n int) []models.ScoredSentence {
	if n <= 0 {
		return []models.ScoredSentence{}
	}

	set := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		set[kw.Token] = struct{}{}
	}

	scored := []models.ScoredSentence{}
	for pos, sentence := range a.tokenizer.Sentences(text) {
		if CountWords(sentence) < MinSentenceWords {
			continue
		}
		score := 0
		for _, w := range a.Words(sentence) {
			if _, ok := set[w]; ok {
				score++
			}
		}
		scored = append(scored, models.ScoredSentence{Text: sentence, Score: score, Position: pos})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

// Analyze runs keyword extraction followed by sentence selection.
func (a *Analyzer) Analyze(text string, k, n int) models.Analysis {
	keywords := a.ExtractKeywords(text, k)
	return models.Analysis{
		Keywords:  keywords,
		Sentences: a.SelectSentences(text, keywords, n),
	}
}
