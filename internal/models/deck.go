package models

// Deck is the ordered set of flashcards for one session.
type Deck []Flashcard

// Shuffle reorders the deck in place using the supplied shuffle function,
// typically (*rand.Rand).Shuffle.
func (d Deck) Shuffle(shuffle func(n int, swap func(i, j int))) {
	shuffle(len(d), func(i, j int) { d[i], d[j] = d[j], d[i] })
}

// FilterByType returns the cards of the given type, preserving order.
func (d Deck) FilterByType(cardType CardType) Deck {
	filtered := make(Deck, 0, len(d))
	for _, card := range d {
		if card.Type == cardType {
			filtered = append(filtered, card)
		}
	}
	return filtered
}

// CountByType counts the cards of the given type.
func (d Deck) CountByType(cardType CardType) int {
	count := 0
	for _, card := range d {
		if card.Type == cardType {
			count++
		}
	}
	return count
}

// TypeBreakdown returns the number of cards per type.
func (d Deck) TypeBreakdown() map[CardType]int {
	breakdown := make(map[CardType]int)
	for _, card := range d {
		breakdown[card.Type]++
	}
	return breakdown
}

// Clone returns a copy that shares no slices with d.
func (d Deck) Clone() Deck {
	if d == nil {
		return nil
	}
	cloned := make(Deck, len(d))
	for i, card := range d {
		card.Options = append([]string(nil), card.Options...)
		cloned[i] = card
	}
	return cloned
}
