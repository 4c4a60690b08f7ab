package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/flashcard-service/internal/events"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
)

// ImportExportService moves decks in and out of the service as JSON, CSV or
// XLSX files.
type ImportExportService interface {
	// Import operations
	ImportDeckFromFile(ctx context.Context, fileName string, data []byte) (*models.ImportResult, error)
	ImportDeckFromJSON(ctx context.Context, reader io.Reader) (*models.ImportResult, error)
	ImportDeckFromCSV(ctx context.Context, reader io.Reader) (*models.ImportResult, error)
	ImportDeckFromExcel(ctx context.Context, reader io.Reader) (*models.ImportResult, error)

	// Export operations
	Export(ctx context.Context, req *models.ExportRequest) (*models.ExportResult, error)
	ExportDeckToJSON(deck models.Deck) ([]byte, error)
	ExportDeckToCSV(deck models.Deck) ([]byte, error)
	ExportDeckToExcel(deck models.Deck) ([]byte, error)
}

const (
	previewSize    = 2
	deckSheetName  = "Flashcards"
	tabularOptions = 4
)

// tabularHeaders is the column layout shared by CSV and XLSX files.
var tabularHeaders = []string{
	"type", "question", "option_a", "option_b", "option_c", "option_d",
	"correct_answer", "correct_index", "explanation",
}

var optionColumns = []string{"option_a", "option_b", "option_c", "option_d"}

type importExportService struct {
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	svcLogger *ServiceLogger
}

func NewImportExportService(publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) ImportExportService {
	return &importExportService{
		publisher: publisher,
		logger:    logger,
		validator: validator,
		svcLogger: NewServiceLogger(logger, LogConfig{Service: "flashcard-service", Component: "import_export"}),
	}
}

// ===== IMPORT OPERATIONS =====

func (s *importExportService) ImportDeckFromFile(ctx context.Context, fileName string, data []byte) (*models.ImportResult, error) {
	s.logger.Info("Starting deck import", "filename", fileName, "size", len(data))

	ext := strings.ToLower(filepath.Ext(fileName))
	reader := bytes.NewReader(data)

	switch ext {
	case ".json":
		return s.ImportDeckFromJSON(ctx, reader)
	case ".csv":
		return s.ImportDeckFromCSV(ctx, reader)
	case ".xlsx":
		return s.ImportDeckFromExcel(ctx, reader)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedImportFormat, ext)
	}
}

func (s *importExportService) ImportDeckFromJSON(ctx context.Context, reader io.Reader) (*models.ImportResult, error) {
	op := s.svcLogger.WithOperation(ctx, "import_json")
	start := time.Now()

	var raw []json.RawMessage
	if err := json.NewDecoder(reader).Decode(&raw); err != nil {
		err = ValidationErrors{*NewValidationError("file", "must be a JSON array of flashcards", err.Error())}
		op.LogResult("", "deck", err)
		return nil, err
	}
	if len(raw) == 0 {
		err := ValidationErrors{*NewValidationError("file", "contains no flashcards", 0)}
		op.LogResult("", "deck", err)
		return nil, err
	}

	builder := newImportBuilder(len(raw))
	for i, item := range raw {
		row := i + 1
		var record models.FlashcardRecord
		if err := json.Unmarshal(item, &record); err != nil {
			builder.reject(models.ImportValidationError{
				Row:     row,
				Message: "record is not a flashcard object",
				Value:   truncate(string(item), 80),
				Code:    "invalid_record",
			})
			continue
		}
		s.acceptRecord(builder, row, record)
	}

	result := builder.result(time.Since(start))
	if err := s.finishImport(ctx, op, models.ExportJSON, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *importExportService) ImportDeckFromCSV(ctx context.Context, reader io.Reader) (*models.ImportResult, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, ValidationErrors{*NewValidationError("file", "is not valid CSV", err.Error())}
	}
	return s.importRows(ctx, models.ExportCSV, records)
}

func (s *importExportService) ImportDeckFromExcel(ctx context.Context, reader io.Reader) (*models.ImportResult, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, ValidationErrors{*NewValidationError("file", "is not a valid XLSX workbook", err.Error())}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ValidationErrors{*NewValidationError("file", "workbook has no sheets", nil)}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	return s.importRows(ctx, models.ExportXLSX, rows)
}

// importRows imports a header row followed by data rows in the tabular
// layout.
func (s *importExportService) importRows(ctx context.Context, format models.ExportFormat, rows [][]string) (*models.ImportResult, error) {
	op := s.svcLogger.WithOperation(ctx, "import_"+string(format))
	start := time.Now()

	if len(rows) < 2 {
		err := ValidationErrors{*NewValidationError("file", "must have a header row and at least one data row", len(rows))}
		op.LogResult("", "deck", err)
		return nil, err
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range []string{"type", "question", "correct_answer"} {
		if _, exists := headerMap[col]; !exists {
			err := ValidationErrors{*NewValidationError("headers", fmt.Sprintf("missing required column: %s", col), col)}
			op.LogResult("", "deck", err)
			return nil, err
		}
	}

	builder := newImportBuilder(len(rows) - 1)
	for i, row := range rows[1:] {
		record, rowErr := parseTabularRow(row, headerMap, i+1)
		if rowErr != nil {
			builder.reject(*rowErr)
			continue
		}
		s.acceptRecord(builder, i+1, record)
	}

	result := builder.result(time.Since(start))
	if err := s.finishImport(ctx, op, format, result); err != nil {
		return nil, err
	}
	return result, nil
}

// acceptRecord runs the tag, shape and deck checks on one record and adds it
// to the deck only when all pass.
func (s *importExportService) acceptRecord(b *importBuilder, row int, record models.FlashcardRecord) {
	if err := s.validator.Validate(record); err != nil {
		b.reject(toImportErrors(row, err)...)
		return
	}

	card, err := record.ToFlashcard()
	if err != nil {
		b.reject(models.ImportValidationError{
			Row:     row,
			Column:  "correct_answer",
			Message: err.Error(),
			Value:   truncate(string(record.CorrectAnswer), 80),
			Code:    "invalid_card",
		})
		return
	}

	if errs := s.validator.Deck().ValidateCard(card); len(errs) > 0 {
		b.reject(toImportErrors(row, errs)...)
		return
	}
	b.accept(card)
}

// finishImport logs the outcome and publishes the imported event. An import
// that kept no card fails with a no_valid_flashcards BusinessRuleError whose
// context carries the row errors.
func (s *importExportService) finishImport(ctx context.Context, op *ContextualLogger, format models.ExportFormat, result *models.ImportResult) error {
	summary := result.Summary
	var err error
	if summary.Status == models.ImportValidationFailed {
		err = NewBusinessRuleError("no_valid_flashcards", "No valid flashcards found", map[string]interface{}{
			"format":      format,
			"status":      summary.Status,
			"total_rows":  summary.TotalRows,
			"error_count": summary.ErrorCount,
			"errors":      summary.Errors,
		})
	}
	op.LogResult("", "deck", err,
		slog.Int("total_rows", summary.TotalRows),
		slog.Int("success_count", summary.SuccessCount),
		slog.Int("error_count", summary.ErrorCount),
		slog.String("import_status", string(summary.Status)),
	)
	if err != nil {
		return err
	}
	event := events.NewDeckEvent(events.EventDeckImported, events.DeckImportedEvent{
		Format:       format,
		TotalRows:    summary.TotalRows,
		SuccessCount: summary.SuccessCount,
		ErrorCount:   summary.ErrorCount,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish deck imported event", "error", err)
	}
	return nil
}

func toImportErrors(row int, err error) []models.ImportValidationError {
	errs, ok := err.(ValidationErrors)
	if !ok {
		return []models.ImportValidationError{{Row: row, Message: err.Error(), Code: "invalid_record"}}
	}

	out := make([]models.ImportValidationError, 0, len(errs))
	for _, ve := range errs {
		code := ve.Rule
		if code == "" {
			code = "invalid_value"
		}
		out = append(out, models.ImportValidationError{
			Row:     row,
			Column:  ve.Field,
			Message: ve.Message,
			Value:   truncate(fmt.Sprint(displayValue(ve.Value)), 80),
			Code:    code,
		})
	}
	return out
}

func displayValue(v interface{}) interface{} {
	if raw, ok := v.(json.RawMessage); ok {
		return string(raw)
	}
	if v == nil {
		return ""
	}
	return v
}

func parseTabularRow(row []string, headerMap map[string]int, rowNum int) (models.FlashcardRecord, *models.ImportValidationError) {
	getColumn := func(name string) string {
		if index, exists := headerMap[name]; exists && index < len(row) {
			return strings.TrimSpace(row[index])
		}
		return ""
	}

	record := models.FlashcardRecord{
		Type:        models.CardType(strings.ToLower(getColumn("type"))),
		Question:    getColumn("question"),
		Explanation: getColumn("explanation"),
	}

	answer := getColumn("correct_answer")
	if answer != "" {
		if record.Type == models.CardTrueFalse {
			value, err := strconv.ParseBool(strings.ToLower(answer))
			if err != nil {
				return record, &models.ImportValidationError{
					Row:     rowNum,
					Column:  "correct_answer",
					Message: "must be true or false",
					Value:   answer,
					Code:    "invalid_boolean",
				}
			}
			record.CorrectAnswer = json.RawMessage(strconv.FormatBool(value))
		} else {
			encoded, _ := json.Marshal(answer)
			record.CorrectAnswer = encoded
		}
	}

	if record.Type == models.CardMCQ {
		for _, col := range optionColumns {
			if opt := getColumn(col); opt != "" {
				record.Options = append(record.Options, opt)
			}
		}
		if raw := getColumn("correct_index"); raw != "" {
			index, err := strconv.Atoi(raw)
			if err != nil {
				return record, &models.ImportValidationError{
					Row:     rowNum,
					Column:  "correct_index",
					Message: "must be a whole number",
					Value:   raw,
					Code:    "invalid_integer",
				}
			}
			record.CorrectIndex = &index
		}
	}

	return record, nil
}

// importBuilder accumulates accepted cards and per-row errors.
type importBuilder struct {
	deck    models.Deck
	errors  []models.ImportValidationError
	total   int
	skipped int
}

func newImportBuilder(total int) *importBuilder {
	return &importBuilder{
		deck:   make(models.Deck, 0, total),
		errors: []models.ImportValidationError{},
		total:  total,
	}
}

func (b *importBuilder) accept(card models.Flashcard) {
	b.deck = append(b.deck, card)
}

func (b *importBuilder) reject(errs ...models.ImportValidationError) {
	b.errors = append(b.errors, errs...)
	b.skipped++
}

func (b *importBuilder) result(elapsed time.Duration) *models.ImportResult {
	status := models.ImportCompleted
	switch {
	case len(b.deck) == 0:
		status = models.ImportValidationFailed
	case b.skipped > 0:
		status = models.ImportPartial
	}

	preview := make([]string, 0, previewSize)
	for i := 0; i < len(b.deck) && i < previewSize; i++ {
		preview = append(preview, b.deck[i].Question)
	}

	return &models.ImportResult{
		Deck: b.deck,
		Summary: models.ImportSummary{
			TotalRows:      b.total,
			ProcessedRows:  len(b.deck) + b.skipped,
			SuccessCount:   len(b.deck),
			ErrorCount:     b.skipped,
			Status:         status,
			TypeBreakdown:  b.deck.TypeBreakdown(),
			Preview:        preview,
			Errors:         b.errors,
			ProcessingTime: elapsed,
		},
	}
}

// ===== EXPORT OPERATIONS =====

func (s *importExportService) Export(ctx context.Context, req *models.ExportRequest) (*models.ExportResult, error) {
	op := s.svcLogger.WithOperation(ctx, "export")

	if err := s.validator.Validate(req); err != nil {
		op.LogResult("", "deck", err)
		return nil, err
	}
	if errs := s.validator.Deck().ValidateDeck(req.Deck); len(errs) > 0 {
		op.LogResult("", "deck", errs)
		return nil, errs
	}

	var (
		data []byte
		err  error
	)
	switch req.Format {
	case models.ExportJSON:
		data, err = s.ExportDeckToJSON(req.Deck)
	case models.ExportCSV:
		data, err = s.ExportDeckToCSV(req.Deck)
	case models.ExportXLSX:
		data, err = s.ExportDeckToExcel(req.Deck)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedExportFormat, req.Format)
	}
	if err != nil {
		op.LogResult("", "deck", err)
		return nil, err
	}

	op.LogResult("", "deck", nil,
		slog.String("format", string(req.Format)),
		slog.Int("card_count", len(req.Deck)),
		slog.Int("bytes", len(data)),
	)

	return &models.ExportResult{
		Format:      req.Format,
		FileName:    req.Format.ExportFileName(),
		ContentType: req.Format.ContentType(),
		Data:        data,
		CardCount:   len(req.Deck),
	}, nil
}

func (s *importExportService) ExportDeckToJSON(deck models.Deck) ([]byte, error) {
	if deck == nil {
		deck = models.Deck{}
	}
	data, err := json.MarshalIndent(deck, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode deck: %w", err)
	}
	return data, nil
}

func (s *importExportService) ExportDeckToCSV(deck models.Deck) ([]byte, error) {
	rows, err := deckToRows(deck)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(tabularHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write CSV rows: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *importExportService) ExportDeckToExcel(deck models.Deck) ([]byte, error) {
	rows, err := deckToRows(deck)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), deckSheetName); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	for rowIndex, row := range append([][]string{tabularHeaders}, rows...) {
		for colIndex, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIndex+1, rowIndex+1)
			if err != nil {
				return nil, fmt.Errorf("invalid cell position: %w", err)
			}
			if err := f.SetCellValue(deckSheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// deckToRows renders cards in the tabular layout. All cells are strings so
// CSV and XLSX round-trip the same values.
func deckToRows(deck models.Deck) ([][]string, error) {
	rows := make([][]string, 0, len(deck))
	for i, card := range deck {
		options := make([]string, tabularOptions)
		correctIndex := ""
		correctAnswer := card.CorrectAnswer

		switch card.Type {
		case models.CardMCQ:
			if len(card.Options) > tabularOptions {
				return nil, ValidationErrors{*NewValidationError(
					fmt.Sprintf("deck[%d].options", i),
					fmt.Sprintf("tabular formats hold at most %d options", tabularOptions),
					len(card.Options),
				)}
			}
			copy(options, card.Options)
			correctIndex = strconv.Itoa(card.CorrectIndex)
		case models.CardTrueFalse:
			correctAnswer = strconv.FormatBool(card.IsTrue)
		}

		row := []string{string(card.Type), card.Question}
		row = append(row, options...)
		row = append(row, correctAnswer, correctIndex, card.Explanation)
		rows = append(rows, row)
	}
	return rows, nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
