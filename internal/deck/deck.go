package deck

import (
	"math/rand"
)

// Deck represents a standard 52-card deck. The random source is injected so
// hands can be replayed deterministically in tests.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New creates a new shuffled 52-card deck drawing from rng.
func New(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, 52),
		rng:   rng,
	}

	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(suit, rank))
		}
	}

	d.Shuffle()
	return d
}

// Shuffle randomizes the order of the remaining cards using Fisher-Yates.
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// DealOne removes and returns the top card from the deck.
func (d *Deck) DealOne() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, true
}

// Deal deals n cards from the deck. Deals fewer if the deck runs out.
func (d *Deck) Deal(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	cards := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		card, ok := d.DealOne()
		if !ok {
			break
		}
		cards = append(cards, card)
	}
	return cards
}

// Remaining returns the number of cards left in the deck.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Without returns every card of a full 52-card deck except the given ones,
// in suit-then-rank order. Used to build the sampling pool for equity
// simulation.
func Without(excluded []Card) []Card {
	used := make(map[Card]bool, len(excluded))
	for _, c := range excluded {
		used[c] = true
	}

	cards := make([]Card, 0, 52-len(excluded))
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			c := NewCard(suit, rank)
			if !used[c] {
				cards = append(cards, c)
			}
		}
	}
	return cards
}
