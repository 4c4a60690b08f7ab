package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
)

// Validator combines struct tag validation with deck invariant checks
type Validator struct {
	structValidator *validator.Validate
	deckValidator   *DeckValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
		deckValidator:   NewDeckValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates struct tags and converts failures into ValidationErrors
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Deck returns the deck validator
func (v *Validator) Deck() *DeckValidator {
	return v.deckValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("card_type", validateCardType)
	validate.RegisterValidation("quiz_mode", validateQuizMode)
	validate.RegisterValidation("export_format", validateExportFormat)

	// A quota set must ask for at least one card
	validate.RegisterStructValidation(validateQuotas, models.Quotas{})

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validation functions
func validateCardType(fl validator.FieldLevel) bool {
	return models.CardType(fl.Field().String()).IsValid()
}

func validateQuizMode(fl validator.FieldLevel) bool {
	return models.QuizMode(fl.Field().String()).IsValid()
}

func validateExportFormat(fl validator.FieldLevel) bool {
	return models.ExportFormat(fl.Field().String()).IsValid()
}

func validateQuotas(sl validator.StructLevel) {
	quotas := sl.Current().Interface().(models.Quotas)
	if quotas.Total() < 1 {
		sl.ReportError(quotas.MCQ, "mcq", "MCQ", "quota_total", "")
	}
}
