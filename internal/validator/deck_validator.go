package validator

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/flashcard-service/internal/errors"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/nlp"
)

// DeckValidator checks the flashcard invariants that struct tags cannot
// express.
type DeckValidator struct{}

// NewDeckValidator creates a new deck validator
func NewDeckValidator() *DeckValidator {
	return &DeckValidator{}
}

// ValidateCard checks one card against the rules of its type
func (v *DeckValidator) ValidateCard(card models.Flashcard) ValidationErrors {
	var errs ValidationErrors

	if !card.Type.IsValid() {
		errs = append(errs, *errors.NewRuleError("type", "card_type", card.Type))
		return errs
	}
	if strings.TrimSpace(card.Question) == "" {
		errs = append(errs, *errors.NewRuleError("question", "required", card.Question))
	}

	switch card.Type {
	case models.CardMCQ:
		errs = append(errs, v.validateMCQ(card)...)
	case models.CardFillBlank:
		if nlp.Normalize(card.CorrectAnswer) == "" {
			errs = append(errs, *errors.NewRuleError("correct_answer", "required", card.CorrectAnswer))
		}
	}

	return errs
}

func (v *DeckValidator) validateMCQ(card models.Flashcard) ValidationErrors {
	var errs ValidationErrors

	if len(card.Options) < 2 {
		errs = append(errs, *errors.NewRuleError("options", "options_count", len(card.Options)))
		return errs
	}

	occurrences := 0
	for _, opt := range card.Options {
		if opt == card.CorrectAnswer {
			occurrences++
		}
	}
	if occurrences != 1 {
		errs = append(errs, *errors.NewRuleError("correct_answer", "answer_in_options", card.CorrectAnswer))
	}

	if card.CorrectIndex < 0 || card.CorrectIndex >= len(card.Options) || card.Options[card.CorrectIndex] != card.CorrectAnswer {
		errs = append(errs, *errors.NewRuleError("correct_index", "correct_index", card.CorrectIndex))
	}

	return errs
}

// ValidateDeck validates every card and prefixes field names with the card
// position.
func (v *DeckValidator) ValidateDeck(deck models.Deck) ValidationErrors {
	var errs ValidationErrors

	if len(deck) == 0 {
		errs = append(errs, *errors.NewRuleError("deck", "non_empty_deck", 0))
		return errs
	}

	for i, card := range deck {
		for _, e := range v.ValidateCard(card) {
			e.Field = fmt.Sprintf("deck[%d].%s", i, e.Field)
			errs = append(errs, e)
		}
	}
	return errs
}
