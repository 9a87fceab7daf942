package holdem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmourey/UniversLudique/internal/evaluator"
)

func contributor(id string, contrib int, folded bool) *Player {
	return &Player{ID: id, Name: id, TotalContrib: contrib, Folded: folded}
}

func TestSidePotsSingle(t *testing.T) {
	players := []*Player{
		contributor("a", 100, false),
		contributor("b", 100, false),
		contributor("c", 100, false),
	}

	pots := SidePots(players)
	require.Len(t, pots, 1)
	assert.Equal(t, 300, pots[0].Amount)
	assert.Equal(t, []string{"a", "b", "c"}, pots[0].Eligible)
}

func TestSidePotsAllInLayers(t *testing.T) {
	// a is all-in for 100, b and c keep betting to 250
	players := []*Player{
		contributor("a", 100, false),
		contributor("b", 250, false),
		contributor("c", 250, false),
	}

	pots := SidePots(players)
	require.Len(t, pots, 2)

	assert.Equal(t, 300, pots[0].Amount)
	assert.Equal(t, []string{"a", "b", "c"}, pots[0].Eligible)

	assert.Equal(t, 300, pots[1].Amount)
	assert.Equal(t, []string{"b", "c"}, pots[1].Eligible)
}

func TestSidePotsFoldedChipsStayIn(t *testing.T) {
	// d folded after contributing 40: those chips enrich the pots but d
	// is never eligible
	players := []*Player{
		contributor("a", 100, false),
		contributor("b", 100, false),
		contributor("d", 40, true),
	}

	pots := SidePots(players)
	require.Len(t, pots, 2)
	assert.Equal(t, 120, pots[0].Amount)
	assert.Equal(t, []string{"a", "b"}, pots[0].Eligible)
	assert.Equal(t, 120, pots[1].Amount)
	assert.Equal(t, []string{"a", "b"}, pots[1].Eligible)

	total := 0
	for _, pot := range pots {
		total += pot.Amount
	}
	assert.Equal(t, PotTotal(players), total)
}

func TestSidePotsTripleLayer(t *testing.T) {
	players := []*Player{
		contributor("a", 50, false),
		contributor("b", 150, false),
		contributor("c", 300, false),
		contributor("d", 300, false),
	}

	pots := SidePots(players)
	require.Len(t, pots, 3)
	assert.Equal(t, 200, pots[0].Amount) // 50 from each
	assert.Equal(t, 300, pots[1].Amount) // next 100 from b, c, d
	assert.Equal(t, 300, pots[2].Amount) // final 150 from c and d
	assert.Equal(t, []string{"a", "b", "c", "d"}, pots[0].Eligible)
	assert.Equal(t, []string{"b", "c", "d"}, pots[1].Eligible)
	assert.Equal(t, []string{"c", "d"}, pots[2].Eligible)
}

func TestSidePotsSoleEligibleTopLayer(t *testing.T) {
	// Nobody covers c's top 150, so it forms a pot only c can win
	players := []*Player{
		contributor("a", 50, false),
		contributor("b", 150, false),
		contributor("c", 300, false),
	}

	pots := SidePots(players)
	require.Len(t, pots, 3)
	assert.Equal(t, 150, pots[0].Amount)
	assert.Equal(t, []string{"a", "b", "c"}, pots[0].Eligible)
	assert.Equal(t, 200, pots[1].Amount)
	assert.Equal(t, []string{"b", "c"}, pots[1].Eligible)
	assert.Equal(t, 150, pots[2].Amount)
	assert.Equal(t, []string{"c"}, pots[2].Eligible)
}

func TestAwardPotsBestHandWins(t *testing.T) {
	pots := []Pot{{Amount: 300, Eligible: []string{"a", "b", "c"}}}
	scores := map[string]evaluator.HandScore{
		"a": {Category: evaluator.Pair, Tiebreaks: [5]int{14, 13, 9, 7}},
		"b": {Category: evaluator.TwoPair, Tiebreaks: [5]int{10, 5, 13}},
		"c": {Category: evaluator.HighCard, Tiebreaks: [5]int{14, 12, 10, 8, 6}},
	}

	awards := AwardPots(pots, scores, []string{"a", "b", "c"})
	require.Len(t, awards, 1)
	assert.Equal(t, []string{"b"}, awards[0].Winners)
	assert.Equal(t, 300, awards[0].Share)
	assert.Equal(t, 0, awards[0].Remainder)
}

func TestAwardPotsTieSplitsWithRemainder(t *testing.T) {
	pots := []Pot{{Amount: 101, Eligible: []string{"a", "b"}}}
	same := evaluator.HandScore{Category: evaluator.Straight, Tiebreaks: [5]int{13}}
	scores := map[string]evaluator.HandScore{"a": same, "b": same}

	awards := AwardPots(pots, scores, []string{"a", "b"})
	require.Len(t, awards, 1)
	assert.Equal(t, []string{"a", "b"}, awards[0].Winners)
	assert.Equal(t, 50, awards[0].Share)
	// The odd chip goes to the first winner in seat order
	assert.Equal(t, 1, awards[0].Remainder)
}

func TestAwardPotsIndependentPerPot(t *testing.T) {
	// a is all-in with the best hand, so a takes the main pot while b
	// beats c for the side pot
	pots := []Pot{
		{Amount: 300, Eligible: []string{"a", "b", "c"}},
		{Amount: 200, Eligible: []string{"b", "c"}},
	}
	scores := map[string]evaluator.HandScore{
		"a": {Category: evaluator.Flush, Tiebreaks: [5]int{14, 10, 8, 4, 2}},
		"b": {Category: evaluator.Straight, Tiebreaks: [5]int{9}},
		"c": {Category: evaluator.Pair, Tiebreaks: [5]int{11, 14, 8, 5}},
	}

	awards := AwardPots(pots, scores, []string{"a", "b", "c"})
	require.Len(t, awards, 2)
	assert.Equal(t, []string{"a"}, awards[0].Winners)
	assert.Equal(t, []string{"b"}, awards[1].Winners)
}
