package services

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/flashcard-service/internal/events"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
)

func newTestImportExportService() (ImportExportService, *events.MockEventPublisher) {
	publisher := events.NewMockEventPublisher(testLogger())
	return NewImportExportService(publisher, testLogger(), validator.New()), publisher
}

// ===== EXPORT =====

func TestExport_JSONSchema(t *testing.T) {
	service, _ := newTestImportExportService()

	result, err := service.Export(context.Background(), &models.ExportRequest{Format: models.ExportJSON, Deck: sampleDeck()})
	require.NoError(t, err)
	assert.Equal(t, "flashcards.json", result.FileName)
	assert.Equal(t, "application/json", result.ContentType)
	assert.Equal(t, 3, result.CardCount)

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(result.Data, &records))
	require.Len(t, records, 3)

	assert.Equal(t, "mcq", records[0]["type"])
	assert.Equal(t, "mitochondria", records[0]["correct_answer"])
	assert.Equal(t, float64(1), records[0]["correct_index"])
	assert.Len(t, records[0]["options"], 4)

	assert.Equal(t, "true_false", records[1]["type"])
	assert.Equal(t, false, records[1]["correct_answer"])
	assert.NotContains(t, records[1], "options")

	assert.Equal(t, "fill_blank", records[2]["type"])
	assert.Equal(t, "respiration", records[2]["correct_answer"])
	assert.NotContains(t, records[2], "correct_index")
}

func TestExport_Validation(t *testing.T) {
	service, _ := newTestImportExportService()
	ctx := context.Background()

	_, err := service.Export(ctx, &models.ExportRequest{Format: "pdf", Deck: sampleDeck()})
	assert.True(t, IsValidation(err))

	_, err = service.Export(ctx, &models.ExportRequest{Format: models.ExportJSON})
	assert.True(t, IsValidation(err))

	deck := sampleDeck()
	deck[0].CorrectIndex = 3
	_, err = service.Export(ctx, &models.ExportRequest{Format: models.ExportJSON, Deck: deck})
	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "deck[0].correct_index", errs[0].Field)
}

func TestExport_TabularRejectsWideMCQ(t *testing.T) {
	service, _ := newTestImportExportService()

	deck := models.Deck{{
		Type:          models.CardMCQ,
		Question:      "Pick one ________ here.",
		Options:       []string{"a", "b", "c", "d", "e"},
		CorrectIndex:  4,
		CorrectAnswer: "e",
	}}
	_, err := service.Export(context.Background(), &models.ExportRequest{Format: models.ExportCSV, Deck: deck})
	assert.True(t, IsValidation(err))

	_, err = service.Export(context.Background(), &models.ExportRequest{Format: models.ExportJSON, Deck: deck})
	assert.NoError(t, err)
}

// ===== ROUND TRIPS =====

func TestImportExport_RoundTrip(t *testing.T) {
	formats := []models.ExportFormat{models.ExportJSON, models.ExportCSV, models.ExportXLSX}

	for _, format := range formats {
		t.Run(string(format), func(t *testing.T) {
			service, publisher := newTestImportExportService()
			ctx := context.Background()

			exported, err := service.Export(ctx, &models.ExportRequest{Format: format, Deck: sampleDeck()})
			require.NoError(t, err)

			imported, err := service.ImportDeckFromFile(ctx, exported.FileName, exported.Data)
			require.NoError(t, err)

			assert.Equal(t, sampleDeck(), imported.Deck)
			assert.Equal(t, models.ImportCompleted, imported.Summary.Status)
			assert.Equal(t, 3, imported.Summary.TotalRows)
			assert.Equal(t, 3, imported.Summary.SuccessCount)
			assert.Zero(t, imported.Summary.ErrorCount)
			assert.Empty(t, imported.Summary.Errors)
			assert.Equal(t, []string{sampleDeck()[0].Question, sampleDeck()[1].Question}, imported.Summary.Preview)
			assert.Equal(t, map[models.CardType]int{models.CardMCQ: 1, models.CardTrueFalse: 1, models.CardFillBlank: 1}, imported.Summary.TypeBreakdown)

			published := publisher.GetPublishedEvents()
			require.Len(t, published, 1)
			assert.Equal(t, events.EventDeckImported, published[0].Type)
		})
	}
}

func TestExportDeckToExcel_Layout(t *testing.T) {
	service, _ := newTestImportExportService()

	data, err := service.ExportDeckToExcel(sampleDeck())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Flashcards"}, f.GetSheetList())
	rows, err := f.GetRows("Flashcards")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, tabularHeaders, rows[0])
	assert.Equal(t, "mitochondria", rows[1][6])
	assert.Equal(t, "1", rows[1][7])
	assert.Equal(t, "false", rows[2][6])
}

// ===== LENIENT IMPORT =====

func TestImportDeckFromJSON_SkipsInvalidRecords(t *testing.T) {
	service, publisher := newTestImportExportService()

	payload := `[
		{"question": "No type here", "correct_answer": "x"},
		{"type": "mcq", "question": "Q ________", "options": ["a", "b"], "correct_answer": "c"},
		{"type": "true_false", "question": "Statement", "correct_answer": "yes"},
		"not an object",
		{"type": "fill_blank", "question": "Fill in the blank: ________ works.", "correct_answer": "Glucose", "explanation": "e"},
		{"type": "essay", "question": "Explain", "correct_answer": "x"}
	]`

	result, err := service.ImportDeckFromJSON(context.Background(), strings.NewReader(payload))
	require.NoError(t, err)

	require.Len(t, result.Deck, 1)
	assert.Equal(t, "Glucose", result.Deck[0].CorrectAnswer)

	summary := result.Summary
	assert.Equal(t, 6, summary.TotalRows)
	assert.Equal(t, 6, summary.ProcessedRows)
	assert.Equal(t, 1, summary.SuccessCount)
	assert.Equal(t, 5, summary.ErrorCount)
	assert.Equal(t, models.ImportPartial, summary.Status)

	codes := map[int]string{}
	for _, e := range summary.Errors {
		codes[e.Row] = e.Code
	}
	assert.Equal(t, "required", codes[1])
	assert.Equal(t, "invalid_card", codes[2])
	assert.Equal(t, "invalid_card", codes[3])
	assert.Equal(t, "invalid_record", codes[4])
	assert.Equal(t, "card_type", codes[6])

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	payloadEvent := published[0].Data.(events.DeckImportedEvent)
	assert.Equal(t, 1, payloadEvent.SuccessCount)
	assert.Equal(t, 5, payloadEvent.ErrorCount)
}

func TestImportDeckFromJSON_AllInvalid(t *testing.T) {
	service, publisher := newTestImportExportService()

	result, err := service.ImportDeckFromJSON(context.Background(), strings.NewReader(`[{"type": "mcq"}, {"type": "essay", "question": "q", "correct_answer": "a"}]`))
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Empty(t, publisher.GetPublishedEvents())

	var ruleErr *BusinessRuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, "no_valid_flashcards", ruleErr.Rule)
	assert.Equal(t, models.ImportValidationFailed, ruleErr.Context["status"])
	assert.Equal(t, 2, ruleErr.Context["total_rows"])
	assert.Equal(t, 2, ruleErr.Context["error_count"])
	assert.NotEmpty(t, ruleErr.Context["errors"])
}

func TestImportDeckFromJSON_Malformed(t *testing.T) {
	service, _ := newTestImportExportService()
	ctx := context.Background()

	_, err := service.ImportDeckFromJSON(ctx, strings.NewReader(`{"type": "mcq"}`))
	assert.True(t, IsValidation(err))

	_, err = service.ImportDeckFromJSON(ctx, strings.NewReader(`[]`))
	assert.True(t, IsValidation(err))
}

func TestImportDeckFromCSV_RowErrors(t *testing.T) {
	service, _ := newTestImportExportService()

	csvData := "type,question,correct_answer,correct_index,option_a,option_b\n" +
		"true_false,The sun is a star.,TRUE,,,\n" +
		"true_false,The moon is a star.,maybe,,,\n" +
		"mcq,Pick ________ now.,b,one,a,b\n" +
		"mcq,Pick ________ again.,b,1,a,b\n"

	result, err := service.ImportDeckFromCSV(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)

	require.Len(t, result.Deck, 2)
	assert.True(t, result.Deck[0].IsTrue)
	assert.Equal(t, []string{"a", "b"}, result.Deck[1].Options)
	assert.Equal(t, 1, result.Deck[1].CorrectIndex)

	require.Len(t, result.Summary.Errors, 2)
	assert.Equal(t, "invalid_boolean", result.Summary.Errors[0].Code)
	assert.Equal(t, 2, result.Summary.Errors[0].Row)
	assert.Equal(t, "invalid_integer", result.Summary.Errors[1].Code)
	assert.Equal(t, "correct_index", result.Summary.Errors[1].Column)
}

func TestImportDeckFromCSV_MissingColumn(t *testing.T) {
	service, _ := newTestImportExportService()

	_, err := service.ImportDeckFromCSV(context.Background(), strings.NewReader("type,question\nmcq,Q\n"))
	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "headers", errs[0].Field)
	assert.Equal(t, "missing required column: correct_answer", errs[0].Message)
}

func TestImportDeckFromFile_UnsupportedExtension(t *testing.T) {
	service, _ := newTestImportExportService()

	_, err := service.ImportDeckFromFile(context.Background(), "deck.yaml", []byte("- a"))
	assert.ErrorIs(t, err, ErrUnsupportedImportFormat)
	assert.True(t, IsValidation(err))
}

func TestImportDeckFromExcel_NotAWorkbook(t *testing.T) {
	service, _ := newTestImportExportService()

	_, err := service.ImportDeckFromExcel(context.Background(), strings.NewReader("plain text"))
	assert.True(t, IsValidation(err))
}
