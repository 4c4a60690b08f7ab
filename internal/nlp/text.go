package nlp

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CollapseSpaces trims s and replaces every whitespace run with one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CountWords counts whitespace separated fields.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// RuneLen is the length of s in characters.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// IsAlnum reports whether s is non-empty and made only of letters and digits.
func IsAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// Normalize lowercases s and strips every non-word character, so "Cell," and
// "cell" compare equal.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if isWordRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FieldSpans returns the byte ranges of the whitespace separated fields of s.
func FieldSpans(s string) []Span {
	var spans []Span
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				spans = append(spans, Span{Start: start, End: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, Span{Start: start, End: len(s)})
	}
	return spans
}

// CoreSpan narrows a field to the range between its first and last word
// character, leaving surrounding punctuation outside. ok is false when the
// field has no word characters.
func CoreSpan(s string, field Span) (Span, bool) {
	text := s[field.Start:field.End]
	first, last := -1, -1
	for i, r := range text {
		if isWordRune(r) {
			if first < 0 {
				first = i
			}
			last = i + utf8.RuneLen(r)
		}
	}
	if first < 0 {
		return Span{}, false
	}
	return Span{Start: field.Start + first, End: field.Start + last}, true
}

// ReplaceSpan returns s with the bytes in span replaced by repl.
func ReplaceSpan(s string, span Span, repl string) string {
	return s[:span.Start] + repl + s[span.End:]
}
