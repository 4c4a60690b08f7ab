package errors

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes one invalid field of a request, an imported
// record or a flashcard.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	switch len(ve) {
	case 0:
		return "validation failed"
	case 1:
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	default:
		return fmt.Sprintf("validation failed: %d field errors", len(ve))
	}
}

// Rules returns the rule of every error in order.
func (ve ValidationErrors) Rules() []string {
	rules := make([]string, len(ve))
	for i, e := range ve {
		rules[i] = e.Rule
	}
	return rules
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// NewRuleError builds an error whose message is the standard text for rule.
func NewRuleError(field, rule string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: RuleMessage(rule, ""),
		Value:   value,
		Rule:    rule,
	}
}

// ToValidationErrors converts validator.ValidationErrors. Any other error
// yields nil.
func ToValidationErrors(err error) ValidationErrors {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return nil
	}

	out := make(ValidationErrors, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: RuleMessage(fe.Tag(), fe.Param()),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

// RuleMessage returns the user facing text for a validation rule.
func RuleMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", param)
	case "max":
		return fmt.Sprintf("must be at most %s", param)
	case "oneof":
		return fmt.Sprintf("must be one of: %s", param)
	case "len":
		return fmt.Sprintf("must be %s characters long", param)
	case "hexadecimal":
		return "must be hexadecimal"

	// Custom tags
	case "card_type":
		return "must be a valid card type (mcq, true_false, fill_blank)"
	case "quiz_mode":
		return "must be a valid quiz mode (mixed, mcq, true_false, fill_blank)"
	case "export_format":
		return "must be a valid export format (json, csv, xlsx)"

	// Deck rules
	case "quota_total":
		return "must request at least one card"
	case "non_empty_deck":
		return "must contain at least one card"
	case "options_count":
		return "must have at least 2 options"
	case "answer_in_options":
		return "must appear exactly once in options"
	case "correct_index":
		return "must point at the correct answer"

	default:
		return fmt.Sprintf("validation failed for rule '%s'", rule)
	}
}
