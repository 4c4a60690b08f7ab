package generator

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/nlp"
)

const (
	mcqPrefix       = "Complete the sentence: "
	fillBlankPrefix = "Fill in the blank: "

	// MinFillBlankWords is the shortest sentence a fill-blank card is built from.
	MinFillBlankWords = 10
	minDistractorLen  = 2
	distractorCount   = models.MCQOptionCount - 1
)

var genericDistractors = []string{
	"concept", "element", "process", "method", "system",
	"principle", "approach", "structure", "model", "theory",
}

// ===== MULTIPLE CHOICE =====

// MCQ blanks a random content word of sentence and offers it among three
// distractors. ok is false when the sentence has no content word.
func (g *Generator) MCQ(sentence string, keywords []string) (models.Flashcard, bool) {
	spans := g.analyzer.Tokenizer().WordSpans(sentence)

	var candidates []nlp.Span
	for _, sp := range spans {
		if g.analyzer.IsContentWord(strings.ToLower(sentence[sp.Start:sp.End])) {
			candidates = append(candidates, sp)
		}
	}
	if len(candidates) == 0 {
		return models.Flashcard{}, false
	}

	chosen := candidates[g.rng.Intn(len(candidates))]
	answer := strings.ToLower(sentence[chosen.Start:chosen.End])

	// Blank the first occurrence of the answer, which may precede the chosen one.
	for _, sp := range candidates {
		if strings.ToLower(sentence[sp.Start:sp.End]) == answer {
			chosen = sp
			break
		}
	}
	question := nlp.ReplaceSpan(sentence, chosen, models.BlankMarker)

	options := append(sample(g.rng, distractorPool(answer, keywords), distractorCount), answer)
	g.rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	index := 0
	for i, opt := range options {
		if opt == answer {
			index = i
			break
		}
	}

	return models.Flashcard{
		Type:          models.CardMCQ,
		Question:      mcqPrefix + question,
		Options:       options,
		CorrectIndex:  index,
		CorrectAnswer: answer,
		Explanation:   fmt.Sprintf("The correct answer is '%s' based on the context.", answer),
	}, true
}

func distractorPool(answer string, keywords []string) []string {
	seen := map[string]struct{}{answer: {}}
	var pool []string
	add := func(w string) {
		if _, dup := seen[w]; dup {
			return
		}
		seen[w] = struct{}{}
		pool = append(pool, w)
	}

	for _, kw := range keywords {
		if utf8.RuneCountInString(kw) > minDistractorLen {
			add(kw)
		}
	}
	if len(pool) < distractorCount {
		for _, w := range genericDistractors {
			add(w)
		}
	}
	return pool
}

// ===== TRUE / FALSE =====

// TrueFalse returns the verbatim sentence as a true card and, when some
// keyword differs from a content word, a false card with that one word
// substituted. Sentences shorter than the selection minimum yield nothing.
func (g *Generator) TrueFalse(sentence string, keywords []string) []models.Flashcard {
	if nlp.CountWords(sentence) < nlp.MinSentenceWords {
		return nil
	}

	cards := []models.Flashcard{{
		Type:        models.CardTrueFalse,
		Question:    sentence,
		IsTrue:      true,
		Explanation: "This statement is directly from the source text.",
	}}

	if len(keywords) == 0 {
		return cards
	}

	tokenizer := g.analyzer.Tokenizer()
	for _, field := range nlp.FieldSpans(sentence) {
		core, ok := nlp.CoreSpan(sentence, field)
		if !ok {
			continue
		}
		word := sentence[core.Start:core.End]
		normalized := nlp.Normalize(word)
		if utf8.RuneCountInString(normalized) <= nlp.MinContentWordLen || tokenizer.IsStopword(normalized) {
			continue
		}

		var replacements []string
		for _, kw := range keywords {
			if !strings.EqualFold(kw, normalized) {
				replacements = append(replacements, kw)
			}
		}
		if len(replacements) == 0 {
			continue
		}

		replacement := matchCase(word, replacements[g.rng.Intn(len(replacements))])
		cards = append(cards, models.Flashcard{
			Type:        models.CardTrueFalse,
			Question:    nlp.ReplaceSpan(sentence, core, replacement),
			IsTrue:      false,
			Explanation: "This statement has been modified from the original text.",
		})
		break
	}

	return cards
}

// matchCase capitalises replacement when original starts with an upper-case
// letter.
func matchCase(original, replacement string) string {
	first, _ := utf8.DecodeRuneInString(original)
	if !unicode.IsUpper(first) || replacement == "" {
		return replacement
	}
	r, size := utf8.DecodeRuneInString(replacement)
	return string(unicode.ToUpper(r)) + replacement[size:]
}

// ===== FILL IN THE BLANK =====

// FillBlank blanks the first word, scanning left to right, whose normalized
// form is a keyword longer than three characters. ok is false for sentences
// under MinFillBlankWords words or without such a word.
func (g *Generator) FillBlank(sentence string, keywords []string) (models.Flashcard, bool) {
	if nlp.CountWords(sentence) < MinFillBlankWords {
		return models.Flashcard{}, false
	}

	set := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		set[kw] = struct{}{}
	}

	for _, field := range nlp.FieldSpans(sentence) {
		core, ok := nlp.CoreSpan(sentence, field)
		if !ok {
			continue
		}
		normalized := nlp.Normalize(sentence[field.Start:field.End])
		if _, isKeyword := set[normalized]; !isKeyword || utf8.RuneCountInString(normalized) <= nlp.MinContentWordLen {
			continue
		}

		answer := sentence[core.Start:core.End]
		return models.Flashcard{
			Type:          models.CardFillBlank,
			Question:      fillBlankPrefix + nlp.ReplaceSpan(sentence, core, models.BlankMarker),
			CorrectAnswer: answer,
			Explanation:   fmt.Sprintf("The correct word is '%s' based on the context.", answer),
		}, true
	}

	return models.Flashcard{}, false
}
