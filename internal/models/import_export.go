package models

import "time"

type ImportStatus string

const (
	ImportCompleted        ImportStatus = "completed"
	ImportPartial          ImportStatus = "partial"
	ImportValidationFailed ImportStatus = "validation_failed"
)

type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

func (f ExportFormat) IsValid() bool {
	switch f {
	case ExportJSON, ExportCSV, ExportXLSX:
		return true
	}
	return false
}

// ContentType returns the MIME type used for attachments of this format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportCSV:
		return "text/csv"
	case ExportXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// ImportValidationError describes one skipped record. Row is 1-based and
// counts data records only.
type ImportValidationError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   string `json:"value"`
	Code    string `json:"code"`
}

type ImportSummary struct {
	TotalRows      int                     `json:"total_rows"`
	ProcessedRows  int                     `json:"processed_rows"`
	SuccessCount   int                     `json:"success_count"`
	ErrorCount     int                     `json:"error_count"`
	Status         ImportStatus            `json:"status"`
	TypeBreakdown  map[CardType]int        `json:"type_breakdown"`
	Preview        []string                `json:"preview"`
	Errors         []ImportValidationError `json:"errors"`
	ProcessingTime time.Duration           `json:"processing_time"`
}

type ImportResult struct {
	Deck    Deck          `json:"deck"`
	Summary ImportSummary `json:"summary"`
}

type ExportResult struct {
	Format      ExportFormat `json:"format"`
	FileName    string       `json:"file_name"`
	ContentType string       `json:"content_type"`
	Data        []byte       `json:"-"`
	CardCount   int          `json:"card_count"`
}

// ExportFileName is the attachment name used for exported decks.
func (f ExportFormat) ExportFileName() string {
	return "flashcards." + string(f)
}

type ExportRequest struct {
	Format ExportFormat `json:"format" validate:"required,export_format"`
	Deck   Deck         `json:"deck" validate:"required,min=1"`
}
