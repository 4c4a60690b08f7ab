package nlp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
)

const mitochondria = "The mitochondria is the powerhouse of the cell. Mitochondria produce ATP through respiration. This process is essential for cellular energy."

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(NewTokenizer(TokenizerConfig{}, discardLogger()))
}

func TestExtractKeywords_EmptyText(t *testing.T) {
	a := newTestAnalyzer()

	kws := a.ExtractKeywords("", DefaultKeywordCount)
	assert.NotNil(t, kws)
	assert.Empty(t, kws)

	assert.Empty(t, NewAnalyzer(NewFallbackTokenizer()).ExtractKeywords("", DefaultKeywordCount))
}

func TestExtractKeywords_NeverPanics(t *testing.T) {
	inputs := []string{
		"", " ", "\n\t", "a", "....", "ﬁnance ﬁnance", "日本語のテキストです。", "🙂🙂🙂 emoji test words",
		"  ", strings.Repeat("word ", 1000),
	}
	for _, tok := range []Tokenizer{NewTokenizer(TokenizerConfig{}, discardLogger()), NewFallbackTokenizer()} {
		a := NewAnalyzer(tok)
		for _, in := range inputs {
			assert.NotPanics(t, func() { a.ExtractKeywords(in, 20) }, "tokenizer=%s input=%q", tok.Name(), in)
		}
	}
}

func TestExtractKeywords_RankingAndTieBreak(t *testing.T) {
	a := newTestAnalyzer()

	kws := a.ExtractKeywords(strings.Repeat(mitochondria, 3), DefaultKeywordCount)
	require.NotEmpty(t, kws)

	assert.Equal(t, models.Keyword{Token: "mitochondria", Frequency: 6}, kws[0])
	assert.Equal(t, []string{
		"mitochondria", "powerhouse", "cell", "produce", "respiration",
		"process", "essential", "cellular", "energy",
	}, models.KeywordTokens(kws))
}

func TestExtractKeywords_Filters(t *testing.T) {
	a := newTestAnalyzer()

	kws := models.KeywordTokens(a.ExtractKeywords("The ATP and DNA of those cells, cells! x-ray 1234 don't", 20))

	assert.Equal(t, []string{"cells", "1234"}, kws)
}

func TestExtractKeywords_TopK(t *testing.T) {
	a := newTestAnalyzer()

	kws := a.ExtractKeywords("alpha beta beta gamma gamma gamma delta", 2)
	assert.Equal(t, []string{"gamma", "beta"}, models.KeywordTokens(kws))

	assert.Empty(t, a.ExtractKeywords("alpha beta", 0))
}

func TestSelectSentences(t *testing.T) {
	a := newTestAnalyzer()
	text := strings.Repeat(mitochondria, 3)

	kws := a.ExtractKeywords(text, DefaultKeywordCount)
	sentences := a.SelectSentences(text, kws, DefaultSentenceCount)

	require.Len(t, sentences, 3)
	assert.Equal(t, 7, sentences[0].Score)
	assert.Equal(t, 7, sentences[1].Score)
	assert.Equal(t, 3, sentences[2].Score)
	assert.Less(t, sentences[0].Position, sentences[1].Position)
	assert.Equal(t, "The mitochondria is the powerhouse of the cell.", sentences[2].Text)
	for _, s := range sentences {
		assert.GreaterOrEqual(t, CountWords(s.Text), MinSentenceWords)
	}
}

func TestSelectSentences_StableAndTopN(t *testing.T) {
	a := newTestAnalyzer()
	text := "One two three four five six seven eight. " +
		"Alpha words appear within this longer sentence here. " +
		"Nine ten eleven twelve thirteen fourteen fifteen sixteen."

	kws := []models.Keyword{{Token: "alpha", Frequency: 1}}

	all := a.SelectSentences(text, kws, 10)
	require.Len(t, all, 3)
	assert.Equal(t, 1, all[0].Score)
	assert.Equal(t, 0, all[1].Position)
	assert.Equal(t, 2, all[2].Position)

	top := a.SelectSentences(text, kws, 1)
	require.Len(t, top, 1)
	assert.Equal(t, 1, top[0].Position)
}

func TestSelectSentences_FallbackTokenizer(t *testing.T) {
	a := NewAnalyzer(NewFallbackTokenizer())
	text := strings.Repeat(mitochondria, 2)

	analysis := a.Analyze(text, DefaultKeywordCount, DefaultSentenceCount)

	assert.NotEmpty(t, analysis.Keywords)
	require.NotEmpty(t, analysis.Sentences)
	for _, s := range analysis.Sentences {
		assert.True(t, strings.HasSuffix(s.Text, "."))
	}
}
