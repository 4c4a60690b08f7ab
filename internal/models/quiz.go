package models

type QuizMode string

const (
	QuizMixed     QuizMode = "mixed"
	QuizMCQ       QuizMode = "mcq"
	QuizTrueFalse QuizMode = "true_false"
	QuizFillBlank QuizMode = "fill_blank"
)

func (m QuizMode) IsValid() bool {
	switch m {
	case QuizMixed, QuizMCQ, QuizTrueFalse, QuizFillBlank:
		return true
	}
	return false
}

// Quotas is the requested number of cards per type.
type Quotas struct {
	MCQ       int `json:"mcq" validate:"min=0,max=15"`
	TrueFalse int `json:"true_false" validate:"min=0,max=10"`
	FillBlank int `json:"fill_blank" validate:"min=0,max=8"`
}

func (q Quotas) Total() int {
	return q.MCQ + q.TrueFalse + q.FillBlank
}

// For returns the quota for one card type.
func (q Quotas) For(cardType CardType) int {
	switch cardType {
	case CardMCQ:
		return q.MCQ
	case CardTrueFalse:
		return q.TrueFalse
	case CardFillBlank:
		return q.FillBlank
	}
	return 0
}

// QuotasForMode turns a quiz mode and a single question count into per-type
// quotas. Mixed mode asks for half the count as mcq and a quarter each as
// true_false and fill_blank, at least one of each, so the total can differ
// from count.
func QuotasForMode(mode QuizMode, count int) Quotas {
	if count <= 0 {
		return Quotas{}
	}
	switch mode {
	case QuizMCQ:
		return Quotas{MCQ: count}
	case QuizTrueFalse:
		return Quotas{TrueFalse: count}
	case QuizFillBlank:
		return Quotas{FillBlank: count}
	}
	return Quotas{
		MCQ:       max(1, count/2),
		TrueFalse: max(1, count/4),
		FillBlank: max(1, count/4),
	}
}

// QuizStats summarises a quiz session.
type QuizStats struct {
	SessionID string  `json:"session_id"`
	Total     int     `json:"total"`
	Answered  int     `json:"answered"`
	Score     int     `json:"score"`
	Accuracy  float64 `json:"accuracy"`
	Progress  float64 `json:"progress"`
	Completed bool    `json:"completed"`
	Feedback  string  `json:"feedback"`
}
