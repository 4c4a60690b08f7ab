package extractor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
)

const utf8BOM = "\uFEFF"

// Extractor turns uploaded payloads into Documents. Decoding happens in
// memory; no temporary files are written.
type Extractor struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract decodes data according to format.
func (e *Extractor) Extract(ctx context.Context, data []byte, format models.SourceFormat) (*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		text  string
		pages = 1
		err   error
	)

	switch format {
	case models.FormatPDF:
		text, pages, err = e.extractPDF(ctx, data)
	case models.FormatDOCX:
		text, err = e.extractDOCX(ctx, data)
	case models.FormatTXT, models.FormatText:
		text, err = decodeText(format, data)
	default:
		err = newExtractionError(format, "no decoder", ErrUnsupportedFormat)
	}
	if err != nil {
		e.logger.Warn("Extraction failed", "format", format, "size", len(data), "error", err)
		return nil, err
	}

	doc := NewDocument(text, format)
	doc.PageCount = pages

	e.logger.Debug("Document extracted",
		"format", format,
		"size", len(data),
		"pages", pages,
		"chars", utf8.RuneCountInString(doc.Content))

	return doc, nil
}

// ExtractFile resolves the format from the file name or MIME type and
// extracts it.
func (e *Extractor) ExtractFile(ctx context.Context, fileName, contentType string, data []byte) (*models.Document, error) {
	format, err := ResolveFormat(fileName, contentType)
	if err != nil {
		return nil, err
	}
	doc, err := e.Extract(ctx, data, format)
	if err != nil {
		return nil, err
	}
	doc.FileName = fileName
	return doc, nil
}

// NewDocument normalizes text and stamps it with its content hash.
func NewDocument(text string, format models.SourceFormat) *models.Document {
	content := norm.NFKC.String(text)
	sum := sha256.Sum256([]byte(content))
	return &models.Document{
		Content:      content,
		SourceFormat: format,
		PageCount:    1,
		Hash:         hex.EncodeToString(sum[:]),
	}
}

func decodeText(format models.SourceFormat, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", newExtractionError(format, "cannot decode text", ErrInvalidEncoding)
	}
	return strings.TrimPrefix(string(data), utf8BOM), nil
}
