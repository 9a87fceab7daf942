package evaluator

import (
	"sort"

	"github.com/pmourey/UniversLudique/internal/deck"
)

// Category is the hand category, ordered from weakest to strongest.
type Category int

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String returns a human-readable category label.
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// HandScore is the strength of a best-5-card hand: category plus up to five
// tie-break rank values in descending significance. Comparison is
// lexicographic over (Category, Tiebreaks...). Unused tie-break slots are
// zero, so two scores compare equal exactly when the hands truly tie.
type HandScore struct {
	Category  Category
	Tiebreaks [5]int
}

// Compare returns 1 if s beats other, -1 if other beats s, 0 on a true tie.
func (s HandScore) Compare(other HandScore) int {
	if s.Category != other.Category {
		if s.Category > other.Category {
			return 1
		}
		return -1
	}
	for i := range s.Tiebreaks {
		if s.Tiebreaks[i] != other.Tiebreaks[i] {
			if s.Tiebreaks[i] > other.Tiebreaks[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// Value packs the score into a single int that orders identically to
// Compare. Exposed on the wire so clients can compare hands numerically.
func (s HandScore) Value() int {
	v := int(s.Category)
	for _, t := range s.Tiebreaks {
		v = v*15 + t
	}
	return v
}

// Evaluate computes the best 5-card HandScore obtainable from 5 to 7 cards
// (2 hole + up to 5 community). The wheel A-2-3-4-5 counts as a 5-high
// straight.
func Evaluate(cards []deck.Card) HandScore {
	var rankCount [15]int
	var suitCount [4]int
	for _, c := range cards {
		rankCount[c.Rank]++
		suitCount[c.Suit]++
	}

	// Flush candidate: any suit holding five or more cards.
	flushSuit := deck.Suit(-1)
	for s := deck.Spades; s <= deck.Clubs; s++ {
		if suitCount[s] >= 5 {
			flushSuit = s
			break
		}
	}

	var flushRanks []int
	if flushSuit >= 0 {
		for _, c := range cards {
			if c.Suit == flushSuit {
				flushRanks = append(flushRanks, int(c.Rank))
			}
		}
		sort.Sort(sort.Reverse(sort.IntSlice(flushRanks)))
	}

	// Straight flush beats everything else.
	if flushSuit >= 0 {
		if high := straightHigh(flushRanks); high > 0 {
			return score(StraightFlush, high)
		}
	}

	quads := ranksWithCount(rankCount, 4)
	trips := ranksWithCount(rankCount, 3)
	pairs := ranksWithCount(rankCount, 2)

	if len(quads) > 0 {
		quad := quads[0]
		return score(FourOfAKind, append([]int{quad}, topKickers(rankCount, 1, quad)...)...)
	}

	if len(trips) > 0 && (len(pairs) > 0 || len(trips) > 1) {
		trip := trips[0]
		pair := 0
		if len(trips) > 1 {
			pair = trips[1]
		}
		if len(pairs) > 0 && pairs[0] > pair {
			pair = pairs[0]
		}
		return score(FullHouse, trip, pair)
	}

	if flushSuit >= 0 {
		return score(Flush, flushRanks[:5]...)
	}

	var allRanks []int
	for r := 2; r <= 14; r++ {
		if rankCount[r] > 0 {
			allRanks = append(allRanks, r)
		}
	}
	if high := straightHigh(allRanks); high > 0 {
		return score(Straight, high)
	}

	if len(trips) > 0 {
		trip := trips[0]
		return score(ThreeOfAKind, append([]int{trip}, topKickers(rankCount, 2, trip)...)...)
	}

	if len(pairs) >= 2 {
		hi, lo := pairs[0], pairs[1]
		return score(TwoPair, append([]int{hi, lo}, topKickers(rankCount, 1, hi, lo)...)...)
	}

	if len(pairs) == 1 {
		return score(Pair, append([]int{pairs[0]}, topKickers(rankCount, 3, pairs[0])...)...)
	}

	return score(HighCard, topKickers(rankCount, 5)...)
}

func score(cat Category, tiebreaks ...int) HandScore {
	s := HandScore{Category: cat}
	copy(s.Tiebreaks[:], tiebreaks)
	return s
}

// ranksWithCount returns the ranks appearing exactly n times, descending.
func ranksWithCount(rankCount [15]int, n int) []int {
	var out []int
	for r := 14; r >= 2; r-- {
		if rankCount[r] == n {
			out = append(out, r)
		}
	}
	return out
}

// topKickers returns the n highest ranks present, excluding the given ones.
func topKickers(rankCount [15]int, n int, exclude ...int) []int {
	out := make([]int, 0, n)
	for r := 14; r >= 2 && len(out) < n; r-- {
		if rankCount[r] == 0 {
			continue
		}
		skip := false
		for _, e := range exclude {
			if r == e {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, r)
		}
	}
	return out
}

// straightHigh finds the highest rank ending a run of five consecutive
// ranks, or 0 if there is none. An Ace also counts as rank 1, so the wheel
// reports 5 rather than 14.
func straightHigh(ranks []int) int {
	present := make(map[int]bool, len(ranks)+1)
	for _, r := range ranks {
		present[r] = true
		if r == 14 {
			present[1] = true
		}
	}

	best := 0
	run := 0
	for r := 1; r <= 14; r++ {
		if !present[r] {
			run = 0
			continue
		}
		run++
		if run >= 5 {
			best = r
		}
	}
	return best
}
