package errors

import (
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("question", "is required", "")

	if err.Field != "question" || err.Message != "is required" {
		t.Errorf("unexpected error fields: %+v", err)
	}

	expected := "validation error on field 'question': is required"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	errs = append(errs, *NewRuleError("options", "options_count", 1))
	expected := "validation failed: options must have at least 2 options"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	errs = append(errs, *NewRuleError("correct_index", "correct_index", 7))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}

	if got := fmt.Sprint(errs.Rules()); got != "[options_count correct_index]" {
		t.Errorf("unexpected rules %s", got)
	}
}

func TestRuleMessage(t *testing.T) {
	tests := []struct {
		rule, param, want string
	}{
		{"required", "", "is required"},
		{"max", "15", "must be at most 15"},
		{"card_type", "", "must be a valid card type (mcq, true_false, fill_blank)"},
		{"non_empty_deck", "", "must contain at least one card"},
		{"answer_in_options", "", "must appear exactly once in options"},
		{"something_else", "", "validation failed for rule 'something_else'"},
	}

	for _, tt := range tests {
		if got := RuleMessage(tt.rule, tt.param); got != tt.want {
			t.Errorf("RuleMessage(%q, %q) = %q, want %q", tt.rule, tt.param, got, tt.want)
		}
	}
}

func TestToValidationErrors(t *testing.T) {
	type generateRequest struct {
		Text  string `validate:"required"`
		Count int    `validate:"min=1,max=50"`
		Mode  string `validate:"oneof=mixed mcq"`
	}

	err := validator.New().Struct(generateRequest{Count: 60, Mode: "essay"})
	errs := ToValidationErrors(fmt.Errorf("generate: %w", err))

	if len(errs) != 3 {
		t.Fatalf("Expected 3 validation errors, got %d", len(errs))
	}

	expected := map[string]string{
		"Text":  "is required",
		"Count": "must be at most 50",
		"Mode":  "must be one of: mixed mcq",
	}
	for _, e := range errs {
		if expected[e.Field] != e.Message {
			t.Errorf("Expected message '%s' for field %s, got '%s'", expected[e.Field], e.Field, e.Message)
		}
	}
}

func TestToValidationErrors_NonValidatorError(t *testing.T) {
	if errs := ToValidationErrors(NewValidationError("f", "m", nil)); errs != nil {
		t.Errorf("Expected no converted errors, got %d", len(errs))
	}
}
