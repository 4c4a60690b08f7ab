package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
)

const pageSeparator = "\n\n"

// extractPDF returns the plain text of every page joined by a blank line.
// Pages without a text layer contribute nothing.
func (e *Extractor) extractPDF(ctx context.Context, data []byte) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newExtractionError(models.FormatPDF, "corrupt document", fmt.Errorf("%w: %v", ErrMalformed, r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return "", 0, newExtractionError(models.FormatPDF, "cannot open document", ErrEncrypted)
		}
		return "", 0, newExtractionError(models.FormatPDF, "cannot open document", err)
	}

	pages = reader.NumPage()
	texts := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", 0, newExtractionError(models.FormatPDF, fmt.Sprintf("cannot read page %d", i), err)
		}
		if content = strings.TrimSpace(content); content != "" {
			texts = append(texts, content)
		}
	}

	if len(texts) == 0 {
		e.logger.Warn("PDF has no text layer", "pages", pages)
	}
	return strings.Join(texts, pageSeparator), pages, nil
}
