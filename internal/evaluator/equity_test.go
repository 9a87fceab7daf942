package evaluator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmourey/UniversLudique/internal/deck"
)

func TestEquitiesSumToOneHundred(t *testing.T) {
	contenders := []Contender{
		{ID: "a", Hole: deck.MustParseAll("SA", "HA")},
		{ID: "b", Hole: deck.MustParseAll("SK", "HK")},
		{ID: "c", Hole: deck.MustParseAll("D7", "C2")},
	}

	rng := rand.New(rand.NewSource(7))
	result := Equities(contenders, nil, 500, rng)

	require.Len(t, result.Probs, 3)
	assert.False(t, result.Exact)

	sum := 0.0
	for _, p := range result.Probs {
		sum += p
	}
	// Rounding to one decimal can drift the total slightly
	assert.InDelta(t, 100.0, sum, 0.5)
}

func TestEquitiesFavorTheDominatingHand(t *testing.T) {
	contenders := []Contender{
		{ID: "aces", Hole: deck.MustParseAll("SA", "HA")},
		{ID: "trash", Hole: deck.MustParseAll("D7", "C2")},
	}

	rng := rand.New(rand.NewSource(11))
	result := Equities(contenders, nil, 1000, rng)

	assert.Greater(t, result.Probs["aces"], 70.0)
	assert.Less(t, result.Probs["trash"], 30.0)
}

func TestEquitiesExactOnFullBoard(t *testing.T) {
	board := deck.MustParseAll("SQ", "HJ", "D4", "C9", "S2")
	contenders := []Contender{
		{ID: "a", Hole: deck.MustParseAll("SA", "SK")},
		{ID: "b", Hole: deck.MustParseAll("HA", "HK")},
	}

	result := Equities(contenders, board, 500, rand.New(rand.NewSource(1)))
	require.True(t, result.Exact)

	// Both play ace-king high, a genuine split
	assert.InDelta(t, 50.0, result.Probs["a"], 0.01)
	assert.InDelta(t, 50.0, result.Probs["b"], 0.01)
}

func TestEquitiesExactWinnerOnFullBoard(t *testing.T) {
	board := deck.MustParseAll("SQ", "HJ", "D4", "C9", "S2")
	contenders := []Contender{
		{ID: "queens", Hole: deck.MustParseAll("HQ", "D8")},
		{ID: "aceHigh", Hole: deck.MustParseAll("HA", "HK")},
	}

	result := Equities(contenders, board, 500, rand.New(rand.NewSource(1)))
	require.True(t, result.Exact)
	assert.InDelta(t, 100.0, result.Probs["queens"], 0.01)
	assert.InDelta(t, 0.0, result.Probs["aceHigh"], 0.01)
}

func TestEquitiesSingleContender(t *testing.T) {
	contenders := []Contender{
		{ID: "only", Hole: deck.MustParseAll("SA", "HA")},
	}
	result := Equities(contenders, nil, 500, rand.New(rand.NewSource(1)))
	require.True(t, result.Exact)
	assert.InDelta(t, 100.0, result.Probs["only"], 0.01)
}

func TestEquitiesReportTrials(t *testing.T) {
	contenders := []Contender{
		{ID: "a", Hole: deck.MustParseAll("SA", "HA")},
		{ID: "b", Hole: deck.MustParseAll("SK", "HK")},
	}
	board := deck.MustParseAll("D2", "C7", "HJ")

	result := Equities(contenders, board, 300, rand.New(rand.NewSource(99)))
	assert.Equal(t, 300, result.Trials)
	assert.False(t, result.Exact)
}
