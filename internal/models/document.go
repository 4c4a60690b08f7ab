package models

type SourceFormat string

const (
	FormatPDF  SourceFormat = "pdf"
	FormatDOCX SourceFormat = "docx"
	FormatTXT  SourceFormat = "txt"
	// FormatText marks text supplied directly rather than uploaded as a file.
	FormatText SourceFormat = "text"
)

// Document is the extracted text of one upload. It lives for a single
// generation request.
type Document struct {
	Content      string       `json:"-"`
	SourceFormat SourceFormat `json:"source_format"`
	FileName     string       `json:"file_name,omitempty"`
	PageCount    int          `json:"page_count"`
	Hash         string       `json:"hash"`
}

type Keyword struct {
	Token     string `json:"token"`
	Frequency int    `json:"frequency"`
}

type ScoredSentence struct {
	Text     string `json:"text"`
	Score    int    `json:"score"`
	Position int    `json:"position"`
}

// Analysis is the cached result of keyword extraction and sentence ranking
// for one document.
type Analysis struct {
	Keywords  []Keyword        `json:"keywords"`
	Sentences []ScoredSentence `json:"sentences"`
}

// KeywordTokens returns the tokens in rank order.
func KeywordTokens(keywords []Keyword) []string {
	tokens := make([]string, len(keywords))
	for i, kw := range keywords {
		tokens[i] = kw.Token
	}
	return tokens
}
