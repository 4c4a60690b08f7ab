package quiz

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/nlp"
)

var (
	ErrEmptyDeck       = errors.New("deck has no cards")
	ErrCompleted       = errors.New("quiz is already completed")
	ErrAlreadyAnswered = errors.New("current card is already answered")
	ErrInvalidAnswer   = errors.New("answer does not fit the card type")
	ErrNoNextCard      = errors.New("already at the last card")
	ErrNoPreviousCard  = errors.New("already at the first card")
)

// Answer is a submission for the current card. Only the field matching the
// card type is read: Option for mcq, Value for true_false, Text for
// fill_blank.
type Answer struct {
	Option *int   `json:"option,omitempty"`
	Value  *bool  `json:"value,omitempty"`
	Text   string `json:"text,omitempty"`
}

type AnswerResult struct {
	Correct       bool   `json:"correct"`
	Given         string `json:"given"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// Session walks one deck card by card. Each card can be answered once until
// the session is reset. A Session is not safe for concurrent use.
type Session struct {
	ID        string
	deck      models.Deck
	position  int
	results   []*AnswerResult
	completed bool
}

func NewSession(id string, deck models.Deck) (*Session, error) {
	if len(deck) == 0 {
		return nil, ErrEmptyDeck
	}
	return &Session{
		ID:      id,
		deck:    deck.Clone(),
		results: make([]*AnswerResult, len(deck)),
	}, nil
}

func (s *Session) Len() int {
	return len(s.deck)
}

func (s *Session) Position() int {
	return s.position
}

func (s *Session) Completed() bool {
	return s.completed
}

// Deck returns a copy of the deck in its current order.
func (s *Session) Deck() models.Deck {
	return s.deck.Clone()
}

func (s *Session) Current() models.Flashcard {
	return s.deck[s.position]
}

// Result returns the recorded result for the current card, if answered.
func (s *Session) Result() (AnswerResult, bool) {
	r := s.results[s.position]
	if r == nil {
		return AnswerResult{}, false
	}
	return *r, true
}

func (s *Session) Submit(answer Answer) (AnswerResult, error) {
	if s.completed {
		return AnswerResult{}, ErrCompleted
	}
	if s.results[s.position] != nil {
		return AnswerResult{}, ErrAlreadyAnswered
	}

	card := s.deck[s.position]
	result, err := evaluate(card, answer)
	if err != nil {
		return AnswerResult{}, err
	}
	s.results[s.position] = &result
	return result, nil
}

func evaluate(card models.Flashcard, answer Answer) (AnswerResult, error) {
	result := AnswerResult{
		CorrectAnswer: card.AnswerText(),
		Explanation:   card.Explanation,
	}

	switch card.Type {
	case models.CardMCQ:
		if answer.Option == nil || *answer.Option < 0 || *answer.Option >= len(card.Options) {
			return result, fmt.Errorf("%w: mcq needs an option between 0 and %d", ErrInvalidAnswer, len(card.Options)-1)
		}
		result.Given = card.Options[*answer.Option]
		result.Correct = *answer.Option == card.CorrectIndex
	case models.CardTrueFalse:
		if answer.Value == nil {
			return result, fmt.Errorf("%w: true_false needs a value", ErrInvalidAnswer)
		}
		result.Given = "False"
		if *answer.Value {
			result.Given = "True"
		}
		result.Correct = *answer.Value == card.IsTrue
	case models.CardFillBlank:
		result.Given = answer.Text
		result.Correct = nlp.Normalize(answer.Text) == nlp.Normalize(card.CorrectAnswer)
	default:
		return result, fmt.Errorf("%w: unsupported card type %q", ErrInvalidAnswer, card.Type)
	}
	return result, nil
}

func (s *Session) Next() error {
	if s.completed {
		return ErrCompleted
	}
	if s.position >= len(s.deck)-1 {
		return ErrNoNextCard
	}
	s.position++
	return nil
}

func (s *Session) Previous() error {
	if s.completed {
		return ErrCompleted
	}
	if s.position == 0 {
		return ErrNoPreviousCard
	}
	s.position--
	return nil
}

// Finish closes the session; further answers and navigation are rejected
// until Reset.
func (s *Session) Finish() models.QuizStats {
	s.completed = true
	return s.Stats()
}

func (s *Session) Reset() {
	s.position = 0
	s.completed = false
	for i := range s.results {
		s.results[i] = nil
	}
}

// Shuffle reorders the deck and starts over.
func (s *Session) Shuffle(shuffle func(n int, swap func(i, j int))) {
	s.deck.Shuffle(shuffle)
	s.Reset()
}

func (s *Session) Answered() int {
	count := 0
	for _, r := range s.results {
		if r != nil {
			count++
		}
	}
	return count
}

func (s *Session) Score() int {
	score := 0
	for _, r := range s.results {
		if r != nil && r.Correct {
			score++
		}
	}
	return score
}

// Accuracy is the percentage of answered cards that were correct.
func (s *Session) Accuracy() float64 {
	answered := s.Answered()
	if answered == 0 {
		return 0
	}
	return float64(s.Score()) / float64(answered) * 100
}

// Progress is the fraction of the deck reached, counting the current card.
func (s *Session) Progress() float64 {
	return float64(s.position+1) / float64(len(s.deck))
}

func (s *Session) Feedback() string {
	if s.Answered() == 0 {
		return ""
	}
	return Feedback(s.Accuracy())
}

// Feedback maps an accuracy percentage to a performance message.
func Feedback(accuracy float64) string {
	switch {
	case accuracy >= 90:
		return "Excellent! You have mastered this material!"
	case accuracy >= 80:
		return "Great job! You have a solid understanding."
	case accuracy >= 70:
		return "Good work! Consider reviewing some concepts."
	default:
		return "Keep studying! Review the material and try again."
	}
}

func (s *Session) Stats() models.QuizStats {
	return models.QuizStats{
		SessionID: s.ID,
		Total:     len(s.deck),
		Answered:  s.Answered(),
		Score:     s.Score(),
		Accuracy:  s.Accuracy(),
		Progress:  s.Progress(),
		Completed: s.completed,
		Feedback:  s.Feedback(),
	}
}

// CardView is what a runner shows for the current card. The answer stays
// hidden until the card has been answered.
type CardView struct {
	SessionID string            `json:"session_id"`
	Index     int               `json:"index"`
	Total     int               `json:"total"`
	Type      models.CardType   `json:"type"`
	Question  string            `json:"question"`
	Options   []string          `json:"options,omitempty"`
	Answered  bool              `json:"answered"`
	Result    *AnswerResult     `json:"result,omitempty"`
	Completed bool              `json:"completed"`
	Stats     *models.QuizStats `json:"stats,omitempty"`
}

func (s *Session) View() CardView {
	card := s.Current()
	view := CardView{
		SessionID: s.ID,
		Index:     s.position,
		Total:     len(s.deck),
		Type:      card.Type,
		Question:  card.Question,
		Options:   append([]string(nil), card.Options...),
		Completed: s.completed,
	}
	if result, ok := s.Result(); ok {
		view.Answered = true
		view.Result = &result
	}
	if s.completed {
		stats := s.Stats()
		view.Stats = &stats
	}
	return view
}
