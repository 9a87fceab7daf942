package holdem

import (
	"github.com/pmourey/UniversLudique/internal/deck"
)

// Player is a seated player. Stack persists across hands through the
// Ledger; every other field resets when a new hand is dealt.
type Player struct {
	ID   string
	Name string
	Seat int

	Stack        int
	Bet          int // chips committed this street
	TotalContrib int // chips committed this hand
	Folded       bool
	AllIn        bool
	HoleCards    []deck.Card
}

// CanAct reports whether the player may still take betting actions.
func (p *Player) CanAct() bool {
	return !p.Folded && !p.AllIn
}

// contribute moves up to amount chips from the stack into the street bet
// and the hand ledger, marking the player all-in when the stack empties.
// It returns the chips actually paid; no chip is created or destroyed.
func (p *Player) contribute(amount int) int {
	if amount <= 0 {
		return 0
	}
	pay := amount
	if pay > p.Stack {
		pay = p.Stack
	}
	p.Stack -= pay
	p.Bet += pay
	p.TotalContrib += pay
	if p.Stack <= 0 {
		p.AllIn = true
	}
	return pay
}

// resetForHand clears per-hand state and loads the stack for a new deal.
func (p *Player) resetForHand(stack int) {
	p.Stack = stack
	p.Bet = 0
	p.TotalContrib = 0
	p.Folded = false
	p.AllIn = stack <= 0
	p.HoleCards = nil
}
