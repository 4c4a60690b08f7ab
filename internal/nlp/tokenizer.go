package nlp

import (
	"bufio"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// ErrTokenizationUnavailable reports that the linguistic resources of the
// primary tokenizer could not be loaded and the whitespace fallback is in use.
var ErrTokenizationUnavailable = errors.New("nlp: tokenization resources unavailable")

//go:embed stopwords_en.txt
var englishStopwords string

var fallbackStopwords = []string{
	"a", "an", "the", "and", "or", "but", "if", "because", "as", "what",
	"while", "of", "to", "in", "for", "on", "by", "with", "about", "is", "are",
}

// Span is a half-open byte range [Start, End) into the tokenized text.
type Span struct {
	Start int
	End   int
}

// Tokenizer splits text into sentences and words. Implementations must never
// fail on valid UTF-8 input.
type Tokenizer interface {
	Name() string
	// Fingerprint identifies the strategy and its stopword set, so results
	// computed by differently configured tokenizers never collide.
	Fingerprint() string
	Sentences(text string) []string
	// WordSpans returns the byte ranges of word tokens in text, in order.
	WordSpans(text string) []Span
	IsStopword(word string) bool
}

type TokenizerConfig struct {
	// StopwordsFile overrides the embedded english stopword list.
	StopwordsFile string
	// Naive forces the whitespace fallback.
	Naive bool
}

// NewTokenizer selects the tokenizer strategy once at startup. When the
// primary resources cannot be loaded it logs ErrTokenizationUnavailable and
// returns the fallback.
func NewTokenizer(cfg TokenizerConfig, logger *slog.Logger) Tokenizer {
	if cfg.Naive {
		logger.Warn("Using fallback tokenizer", "error", ErrTokenizationUnavailable, "reason", "forced by configuration")
		return NewFallbackTokenizer()
	}

	if cfg.StopwordsFile == "" {
		return NewPrimaryTokenizer(parseStopwords(strings.NewReader(englishStopwords)))
	}

	f, err := os.Open(cfg.StopwordsFile)
	if err != nil {
		logger.Warn("Using fallback tokenizer",
			"error", fmt.Errorf("%w: %v", ErrTokenizationUnavailable, err),
			"stopwords_file", cfg.StopwordsFile)
		return NewFallbackTokenizer()
	}
	defer f.Close()

	stopwords := parseStopwords(f)
	if len(stopwords) == 0 {
		logger.Warn("Using fallback tokenizer",
			"error", ErrTokenizationUnavailable,
			"stopwords_file", cfg.StopwordsFile,
			"reason", "empty stopword list")
		return NewFallbackTokenizer()
	}
	return NewPrimaryTokenizer(stopwords)
}

// stopwordsFingerprint is name followed by a short sha256 of the sorted
// stopword set.
func stopwordsFingerprint(name string, stopwords map[string]struct{}) string {
	words := make([]string, 0, len(stopwords))
	for w := range stopwords {
		words = append(words, w)
	}
	sort.Strings(words)
	sum := sha256.Sum256([]byte(strings.Join(words, "\n")))
	return name + "-" + hex.EncodeToString(sum[:6])
}

func parseStopwords(r io.Reader) map[string]struct{} {
	set := make(map[string]struct{})
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		set[word] = struct{}{}
	}
	return set
}

// ===== PRIMARY TOKENIZER =====

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*|[^\s\p{L}\p{N}]`)

var abbreviations = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "dr": {}, "prof": {}, "sr": {}, "jr": {}, "st": {},
	"vs": {}, "etc": {}, "fig": {}, "no": {}, "vol": {}, "e.g": {}, "i.e": {}, "cf": {}, "al": {},
}

type primaryTokenizer struct {
	stopwords   map[string]struct{}
	fingerprint string
}

func NewPrimaryTokenizer(stopwords map[string]struct{}) Tokenizer {
	return &primaryTokenizer{
		stopwords:   stopwords,
		fingerprint: stopwordsFingerprint("primary", stopwords),
	}
}

func (t *primaryTokenizer) Name() string { return "primary" }

func (t *primaryTokenizer) Fingerprint() string { return t.fingerprint }

func (t *primaryTokenizer) WordSpans(text string) []Span {
	matches := wordPattern.FindAllStringIndex(text, -1)
	spans := make([]Span, len(matches))
	for i, m := range matches {
		spans[i] = Span{Start: m[0], End: m[1]}
	}
	return spans
}

func (t *primaryTokenizer) IsStopword(word string) bool {
	_, ok := t.stopwords[word]
	return ok
}

// Sentences splits after runs of terminal punctuation that are followed by
// whitespace, unless the preceding word is a known abbreviation or a single
// letter initial.
func (t *primaryTokenizer) Sentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		end := i + 1
		for end < len(runes) && (isTerminal(runes[end]) || isCloser(runes[end])) {
			end++
		}
		if end < len(runes) && !unicode.IsSpace(runes[end]) {
			i = end - 1
			continue
		}
		if runes[i] == '.' && isAbbreviation(runes[start:i]) {
			i = end - 1
			continue
		}
		sentences = appendSentence(sentences, string(runes[start:end]))
		start = end
		i = end - 1
	}
	if start < len(runes) {
		sentences = appendSentence(sentences, string(runes[start:]))
	}
	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’', '»':
		return true
	}
	return false
}

func isAbbreviation(before []rune) bool {
	j := len(before)
	for j > 0 && !unicode.IsSpace(before[j-1]) {
		j--
	}
	word := strings.ToLower(strings.TrimLeft(string(before[j:]), "([\"'“‘"))
	if word == "" {
		return false
	}
	if _, ok := abbreviations[word]; ok {
		return true
	}
	r := []rune(word)
	return len(r) == 1 && unicode.IsLetter(r[0])
}

func appendSentence(sentences []string, s string) []string {
	s = CollapseSpaces(s)
	if s == "" {
		return sentences
	}
	return append(sentences, s)
}

// ===== FALLBACK TOKENIZER =====

type fallbackTokenizer struct {
	stopwords   map[string]struct{}
	fingerprint string
}

// NewFallbackTokenizer splits words on whitespace and sentences on '.', and
// uses a short built-in stopword list. It needs no external resources.
func NewFallbackTokenizer() Tokenizer {
	set := make(map[string]struct{}, len(fallbackStopwords))
	for _, w := range fallbackStopwords {
		set[w] = struct{}{}
	}
	return &fallbackTokenizer{stopwords: set, fingerprint: stopwordsFingerprint("fallback", set)}
}

func (t *fallbackTokenizer) Name() string { return "fallback" }

func (t *fallbackTokenizer) Fingerprint() string { return t.fingerprint }

func (t *fallbackTokenizer) WordSpans(text string) []Span {
	return FieldSpans(text)
}

func (t *fallbackTokenizer) IsStopword(word string) bool {
	_, ok := t.stopwords[word]
	return ok
}

func (t *fallbackTokenizer) Sentences(text string) []string {
	var sentences []string
	for _, part := range strings.Split(text, ".") {
		part = CollapseSpaces(part)
		if part != "" {
			sentences = append(sentences, part+".")
		}
	}
	return sentences
}
