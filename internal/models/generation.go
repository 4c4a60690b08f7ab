package models

// GenerationOptions selects how many cards of each type to generate, either
// by explicit per-type quotas or by a quiz mode with a single question count.
// Mode wins when both are set.
type GenerationOptions struct {
	Quotas *Quotas  `json:"quotas,omitempty"`
	Mode   QuizMode `json:"mode,omitempty" validate:"omitempty,quiz_mode"`
	Count  int      `json:"count,omitempty" validate:"omitempty,min=1,max=50"`
}

// ResolveQuotas returns the quotas to generate with, using defaults when
// neither a mode nor quotas are set.
func (o GenerationOptions) ResolveQuotas(defaults Quotas) Quotas {
	if o.Mode != "" {
		count := o.Count
		if count == 0 {
			count = defaults.Total()
		}
		return QuotasForMode(o.Mode, count)
	}
	if o.Quotas != nil {
		return *o.Quotas
	}
	return defaults
}

type GenerateRequest struct {
	Text string `json:"text" validate:"required"`
	GenerationOptions
}

// InvalidateAnalysesRequest selects cached analyses to drop. An empty Hash
// selects every document.
type InvalidateAnalysesRequest struct {
	Hash string `form:"hash" json:"hash" validate:"omitempty,len=64,hexadecimal"`
}

// GenerateResult is a generated deck with the statistics of its source.
type GenerateResult struct {
	Deck          Deck             `json:"deck"`
	Quotas        Quotas           `json:"quotas"`
	TypeBreakdown map[CardType]int `json:"type_breakdown"`
	Keywords      []Keyword        `json:"keywords"`
	SentenceCount int              `json:"sentence_count"`
	Document      *Document        `json:"document,omitempty"`
	CacheHit      bool             `json:"cache_hit"`
}
