package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/flashcard-service/internal/errors"
	"github.com/SAP-F-2025/flashcard-service/internal/extractor"
	"github.com/SAP-F-2025/flashcard-service/internal/quiz"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Deck errors
	ErrEmptyDeck               = quiz.ErrEmptyDeck
	ErrUnsupportedExportFormat = errors.New("unsupported export format")
	ErrUnsupportedImportFormat = errors.New("unsupported import format")
	ErrPayloadTooLarge         = errors.New("uploaded file is too large")

	// Quiz session errors
	ErrSessionNotFound  = errors.New("quiz session not found")
	ErrSessionCompleted = quiz.ErrCompleted
	ErrAlreadyAnswered  = quiz.ErrAlreadyAnswered
	ErrInvalidAnswer    = quiz.ErrInvalidAnswer
	ErrNoNextCard       = quiz.ErrNoNextCard
	ErrNoPreviousCard   = quiz.ErrNoPreviousCard
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// ===== ERROR HELPERS =====

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrInvalidAnswer) ||
		errors.Is(err, ErrEmptyDeck) ||
		errors.Is(err, ErrUnsupportedExportFormat) ||
		errors.Is(err, ErrUnsupportedImportFormat) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsExtraction checks if error comes from reading an uploaded document
func IsExtraction(err error) bool {
	return extractor.IsExtractionError(err)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error conflicts with the current session state
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSessionCompleted) ||
		errors.Is(err, ErrAlreadyAnswered) ||
		errors.Is(err, ErrNoNextCard) ||
		errors.Is(err, ErrNoPreviousCard)
}
