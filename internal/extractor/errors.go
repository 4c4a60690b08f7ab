package extractor

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrInvalidEncoding   = errors.New("invalid UTF-8 byte sequence")
	ErrEncrypted         = errors.New("document is encrypted")
	ErrMalformed         = errors.New("document is malformed")
)

// ExtractionError is returned whenever a payload cannot be turned into text.
type ExtractionError struct {
	Format models.SourceFormat
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	format := string(e.Format)
	if format == "" {
		format = "unknown"
	}
	if e.Err == nil {
		return fmt.Sprintf("extract %s: %s", format, e.Reason)
	}
	return fmt.Sprintf("extract %s: %s: %v", format, e.Reason, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func newExtractionError(format models.SourceFormat, reason string, err error) *ExtractionError {
	return &ExtractionError{Format: format, Reason: reason, Err: err}
}

// IsExtractionError reports whether err wraps an *ExtractionError.
func IsExtractionError(err error) bool {
	var ee *ExtractionError
	return errors.As(err, &ee)
}
