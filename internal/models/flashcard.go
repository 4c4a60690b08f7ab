package models

import (
	"encoding/json"
	"fmt"
)

type CardType string

const (
	CardMCQ       CardType = "mcq"
	CardTrueFalse CardType = "true_false"
	CardFillBlank CardType = "fill_blank"
)

// BlankMarker replaces the answer word in mcq and fill_blank questions.
const BlankMarker = "________"

// MCQOptionCount is the number of options on every generated mcq card.
const MCQOptionCount = 4

// CardTypes lists the supported card types in deck assembly order.
var CardTypes = []CardType{CardMCQ, CardTrueFalse, CardFillBlank}

func (t CardType) IsValid() bool {
	switch t {
	case CardMCQ, CardTrueFalse, CardFillBlank:
		return true
	}
	return false
}

// Flashcard is a tagged variant over the three card shapes. Only the fields
// belonging to Type are meaningful:
//   - mcq: Options, CorrectIndex, CorrectAnswer
//   - true_false: IsTrue
//   - fill_blank: CorrectAnswer
type Flashcard struct {
	Type          CardType
	Question      string
	Options       []string
	CorrectIndex  int
	CorrectAnswer string
	IsTrue        bool
	Explanation   string
}

// AnswerText renders the correct answer regardless of card type.
func (f Flashcard) AnswerText() string {
	if f.Type == CardTrueFalse {
		if f.IsTrue {
			return "True"
		}
		return "False"
	}
	return f.CorrectAnswer
}

type mcqRecord struct {
	Type          CardType `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	CorrectIndex  int      `json:"correct_index"`
	Explanation   string   `json:"explanation"`
}

type trueFalseRecord struct {
	Type          CardType `json:"type"`
	Question      string   `json:"question"`
	CorrectAnswer bool     `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

type fillBlankRecord struct {
	Type          CardType `json:"type"`
	Question      string   `json:"question"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// MarshalJSON writes the flat export record for the card's type.
func (f Flashcard) MarshalJSON() ([]byte, error) {
	switch f.Type {
	case CardMCQ:
		options := f.Options
		if options == nil {
			options = []string{}
		}
		return json.Marshal(mcqRecord{
			Type:          f.Type,
			Question:      f.Question,
			Options:       options,
			CorrectAnswer: f.CorrectAnswer,
			CorrectIndex:  f.CorrectIndex,
			Explanation:   f.Explanation,
		})
	case CardTrueFalse:
		return json.Marshal(trueFalseRecord{
			Type:          f.Type,
			Question:      f.Question,
			CorrectAnswer: f.IsTrue,
			Explanation:   f.Explanation,
		})
	case CardFillBlank:
		return json.Marshal(fillBlankRecord{
			Type:          f.Type,
			Question:      f.Question,
			CorrectAnswer: f.CorrectAnswer,
			Explanation:   f.Explanation,
		})
	default:
		return nil, fmt.Errorf("unsupported card type: %q", f.Type)
	}
}

// UnmarshalJSON decodes a flat record strictly. Lenient, per-record import
// with skip reporting lives in the import service.
func (f *Flashcard) UnmarshalJSON(data []byte) error {
	var rec FlashcardRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	card, err := rec.ToFlashcard()
	if err != nil {
		return err
	}
	*f = card
	return nil
}

// FlashcardRecord is the loosely typed shape of an imported record, before
// per-type validation. CorrectAnswer stays raw because its JSON type depends
// on Type.
type FlashcardRecord struct {
	Type          CardType        `json:"type" validate:"required,card_type"`
	Question      string          `json:"question" validate:"required"`
	Options       []string        `json:"options,omitempty"`
	CorrectAnswer json.RawMessage `json:"correct_answer" validate:"required"`
	CorrectIndex  *int            `json:"correct_index,omitempty"`
	Explanation   string          `json:"explanation"`
}

// ToFlashcard converts a record into a card, checking the fields required by
// its declared type.
func (r FlashcardRecord) ToFlashcard() (Flashcard, error) {
	card := Flashcard{
		Type:        r.Type,
		Question:    r.Question,
		Explanation: r.Explanation,
	}
	if len(r.CorrectAnswer) == 0 || string(r.CorrectAnswer) == "null" {
		return card, fmt.Errorf("correct_answer is required")
	}

	switch r.Type {
	case CardMCQ:
		var answer string
		if err := json.Unmarshal(r.CorrectAnswer, &answer); err != nil {
			return card, fmt.Errorf("correct_answer must be a string for mcq cards")
		}
		if len(r.Options) < 2 {
			return card, fmt.Errorf("mcq cards need at least 2 options")
		}
		index := -1
		for i, opt := range r.Options {
			if opt == answer {
				index = i
				break
			}
		}
		if index < 0 {
			return card, fmt.Errorf("correct_answer %q is not one of the options", answer)
		}
		if r.CorrectIndex != nil {
			if *r.CorrectIndex < 0 || *r.CorrectIndex >= len(r.Options) || r.Options[*r.CorrectIndex] != answer {
				return card, fmt.Errorf("correct_index %d does not point at correct_answer", *r.CorrectIndex)
			}
			index = *r.CorrectIndex
		}
		card.Options = append([]string(nil), r.Options...)
		card.CorrectAnswer = answer
		card.CorrectIndex = index
	case CardTrueFalse:
		var isTrue bool
		if err := json.Unmarshal(r.CorrectAnswer, &isTrue); err != nil {
			return card, fmt.Errorf("correct_answer must be a boolean for true_false cards")
		}
		card.IsTrue = isTrue
	case CardFillBlank:
		var answer string
		if err := json.Unmarshal(r.CorrectAnswer, &answer); err != nil {
			return card, fmt.Errorf("correct_answer must be a string for fill_blank cards")
		}
		if answer == "" {
			return card, fmt.Errorf("correct_answer cannot be empty")
		}
		card.CorrectAnswer = answer
	default:
		return card, fmt.Errorf("unsupported card type: %q", r.Type)
	}
	return card, nil
}
