package holdem

import (
	"sort"

	"github.com/pmourey/UniversLudique/internal/evaluator"
)

// Pot is a main or side pot with the players eligible to win it.
type Pot struct {
	Amount   int      `json:"amount"`
	Eligible []string `json:"eligible"`
}

// SidePots layers the pooled contributions into a main pot and side pots by
// repeatedly capping at the smallest live contribution. A player eligible
// for a pot is any non-folded player who paid into its layer; folded
// players' chips stay in whichever layers they reached but they are never
// eligible.
func SidePots(players []*Player) []Pot {
	remaining := make(map[string]int, len(players))
	for _, p := range players {
		if p.TotalContrib > 0 {
			remaining[p.ID] = p.TotalContrib
		}
	}

	var pots []Pot
	for len(remaining) > 0 {
		layer := 0
		for _, p := range players {
			c, ok := remaining[p.ID]
			if !ok {
				continue
			}
			if layer == 0 || c < layer {
				layer = c
			}
		}

		pot := Pot{}
		for _, p := range players {
			c, ok := remaining[p.ID]
			if !ok {
				continue
			}
			take := c
			if take > layer {
				take = layer
			}
			pot.Amount += take
			if !p.Folded {
				pot.Eligible = append(pot.Eligible, p.ID)
			}
			if c-take == 0 {
				delete(remaining, p.ID)
			} else {
				remaining[p.ID] = c - take
			}
		}
		pots = append(pots, pot)
	}
	return pots
}

// PotTotal sums all contributions currently committed to the hand.
func PotTotal(players []*Player) int {
	total := 0
	for _, p := range players {
		total += p.TotalContrib
	}
	return total
}

// Award records how one pot paid out.
type Award struct {
	Pot       Pot
	Winners   []string
	Share     int
	Remainder int
}

// AwardPots splits each pot among its best eligible hands. Shares divide
// evenly; any indivisible remainder goes to the first winner in seat
// order so chips are conserved.
func AwardPots(pots []Pot, scores map[string]evaluator.HandScore, seatOrder []string) []Award {
	seat := make(map[string]int, len(seatOrder))
	for i, id := range seatOrder {
		seat[id] = i
	}

	awards := make([]Award, 0, len(pots))
	for _, pot := range pots {
		var winners []string
		var best evaluator.HandScore
		for _, id := range pot.Eligible {
			s, ok := scores[id]
			if !ok {
				continue
			}
			if len(winners) == 0 {
				winners = []string{id}
				best = s
				continue
			}
			switch s.Compare(best) {
			case 1:
				winners = []string{id}
				best = s
			case 0:
				winners = append(winners, id)
			}
		}
		if len(winners) == 0 {
			continue
		}
		sort.Slice(winners, func(i, j int) bool {
			return seat[winners[i]] < seat[winners[j]]
		})
		awards = append(awards, Award{
			Pot:       pot,
			Winners:   winners,
			Share:     pot.Amount / len(winners),
			Remainder: pot.Amount % len(winners),
		})
	}
	return awards
}
