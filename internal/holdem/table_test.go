package holdem

import (
	"fmt"
	"io"
	"math/rand"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmourey/UniversLudique/internal/deck"
)

type sinkEvent struct {
	event   string
	to      string // empty for broadcasts
	payload any
}

// recordSink captures table events for assertions
type recordSink struct {
	events []sinkEvent
}

func (s *recordSink) Broadcast(event string, payload any) {
	s.events = append(s.events, sinkEvent{event: event, payload: payload})
}

func (s *recordSink) SendTo(playerID, event string, payload any) {
	s.events = append(s.events, sinkEvent{event: event, to: playerID, payload: payload})
}

func (s *recordSink) ofType(event string) []sinkEvent {
	var out []sinkEvent
	for _, e := range s.events {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

func newTestTable(seed int64, names ...string) (*Table, *MemoryLedger, *recordSink) {
	ledger := NewMemoryLedger(1000)
	sink := &recordSink{}
	logger := log.New(io.Discard)
	rng := rand.New(rand.NewSource(seed))
	table := NewTable("room1", ledger, sink, logger, rng, Options{
		SmallBlind:   5,
		BigBlind:     10,
		EquityTrials: 40,
	})
	for _, name := range names {
		table.AddPlayer(name, name)
	}
	return table, ledger, sink
}

func (t *Table) mustCurrent(test *testing.T) *Player {
	p := t.currentPlayer()
	require.NotNil(test, p)
	return p
}

func TestStartHandPostsBlindsAndDeals(t *testing.T) {
	table, _, _ := newTestTable(1, "alice", "bob", "carol")
	require.NoError(t, table.StartHand())

	assert.Equal(t, StatusDealing, table.Phase())
	assert.Equal(t, "alice", table.dealerID)

	for _, p := range table.dealOrder {
		assert.Len(t, p.HoleCards, 2)
	}

	// Small blind left of the dealer, big blind next
	assert.Equal(t, 5, table.dealOrder[1].Bet)
	assert.Equal(t, 10, table.dealOrder[2].Bet)
	assert.Equal(t, 15, PotTotal(table.dealOrder))
	assert.Equal(t, 10, table.betting.CurrentBet)

	// First to act is the player after the big blind
	assert.Equal(t, "alice", table.mustCurrent(t).ID)
}

func TestStartHandRefusedMidHand(t *testing.T) {
	table, _, _ := newTestTable(2, "alice", "bob")
	require.NoError(t, table.StartHand())

	assert.ErrorContains(t, table.StartHand(), "hand already in progress")
}

func TestStartHandRequiresTwoFundedPlayers(t *testing.T) {
	table, ledger, _ := newTestTable(1, "alice", "bob")
	ledger.SetStack("bob", 0)

	assert.ErrorIs(t, table.StartHand(), ErrInsufficientPlayers)
}

func TestCheckdownConservesChips(t *testing.T) {
	table, ledger, sink := newTestTable(3, "alice", "bob", "carol")
	require.NoError(t, table.StartHand())

	for steps := 0; table.Phase() == StatusDealing; steps++ {
		require.Less(t, steps, 50, "hand did not finish")
		p := table.mustCurrent(t)

		allowed := table.betting.Allowed(p)
		var act Action = Call{}
		if allowed.Check {
			act = Check{}
		}
		require.NoError(t, table.HandleAction(p.ID, act))
	}

	assert.Equal(t, StatusFinished, table.Phase())
	total := ledger.Stack("alice") + ledger.Stack("bob") + ledger.Stack("carol")
	assert.Equal(t, 3000, total)

	// The losers cannot go negative and every contribution was settled
	for _, p := range table.dealOrder {
		assert.GreaterOrEqual(t, p.Stack, 0)
		assert.Equal(t, 0, p.TotalContrib)
	}

	over := sink.ofType(EventGameOver)
	require.Len(t, over, 1)
	assert.Equal(t, "showdown", over[0].payload.(GameOver).Result)
}

func TestPotMatchesContributionsMidHand(t *testing.T) {
	table, _, _ := newTestTable(5, "alice", "bob", "carol")
	require.NoError(t, table.StartHand())

	p := table.mustCurrent(t)
	require.NoError(t, table.HandleAction(p.ID, RaiseTo{To: 60}))

	pots := SidePots(table.dealOrder)
	sum := 0
	for _, pot := range pots {
		sum += pot.Amount
	}
	assert.Equal(t, PotTotal(table.dealOrder), sum)
	assert.Equal(t, 75, sum)
}

func TestFoldToOneEndsHandWithoutShowdown(t *testing.T) {
	table, ledger, sink := newTestTable(2, "alice", "bob", "carol")
	require.NoError(t, table.StartHand())

	// alice raises, both blinds give up
	require.NoError(t, table.HandleAction("alice", RaiseTo{To: 30}))
	require.NoError(t, table.HandleAction("bob", Fold{}))
	require.NoError(t, table.HandleAction("carol", Fold{}))

	assert.Equal(t, StatusFinished, table.Phase())
	assert.Equal(t, 1015, ledger.Stack("alice"))
	assert.Equal(t, 995, ledger.Stack("bob"))
	assert.Equal(t, 990, ledger.Stack("carol"))

	over := sink.ofType(EventGameOver)
	require.Len(t, over, 1)
	payload := over[0].payload.(GameOver)
	assert.Equal(t, "folds", payload.Result)
	assert.Equal(t, []string{"alice"}, payload.Winners)

	// No showdown, so no hand reveals were broadcast
	for _, e := range sink.ofType(EventHandEvaluation) {
		assert.NotEmpty(t, e.to, "hole cards must stay private on a fold win")
	}
}

func TestAmountsAreClampedNotRejected(t *testing.T) {
	table, _, _ := newTestTable(7, "alice", "bob", "carol")
	require.NoError(t, table.StartHand())

	// Raise below the minimum is lifted to current bet plus one big blind
	require.NoError(t, table.HandleAction("alice", RaiseTo{To: 12}))
	assert.Equal(t, 20, table.betting.CurrentBet)
	assert.Equal(t, 20, table.dealOrder[0].Bet)

	require.NoError(t, table.HandleAction("bob", Call{}))
	require.NoError(t, table.HandleAction("carol", Call{}))
	require.Equal(t, Flop, table.street)

	// Opening bet below the big blind is lifted to it
	first := table.mustCurrent(t)
	require.NoError(t, table.HandleAction(first.ID, Bet{Amount: 3}))
	assert.Equal(t, 10, table.betting.CurrentBet)

	// Raise beyond the stack becomes an all-in
	second := table.mustCurrent(t)
	require.NoError(t, table.HandleAction(second.ID, RaiseTo{To: 100000}))
	assert.True(t, second.AllIn)
	assert.Equal(t, 980, second.Bet)
	assert.Equal(t, 980, table.betting.CurrentBet)
}

func TestAddPlayerRefusedWhenTableFull(t *testing.T) {
	table, _, _ := newTestTable(19)
	for i := 0; i < MaxPlayers; i++ {
		name := fmt.Sprintf("p%d", i)
		_, err := table.AddPlayer(name, name)
		require.NoError(t, err)
	}

	_, err := table.AddPlayer("extra", "extra")
	assert.ErrorIs(t, err, ErrTableFull)
	assert.Len(t, table.Players(), MaxPlayers)

	// A full ring still deals everyone two distinct cards from one deck
	require.NoError(t, table.StartHand())
	seen := make(map[deck.Card]bool)
	for _, p := range table.Players() {
		require.Len(t, p.HoleCards, 2)
		for _, c := range p.HoleCards {
			require.False(t, seen[c], "card dealt twice: %s", c)
			seen[c] = true
		}
	}
}

func TestBlindsAllInRunOutImmediately(t *testing.T) {
	table, ledger, sink := newTestTable(17, "alice", "bob")
	ledger.SetStack("alice", 3)
	ledger.SetStack("bob", 4)
	require.NoError(t, table.StartHand())

	// Both blinds went all-in, so the hand settles without any action
	assert.Equal(t, StatusFinished, table.Phase())
	assert.Equal(t, 7, ledger.Stack("alice")+ledger.Stack("bob"))
	require.Len(t, sink.ofType(EventGameOver), 1)
}

func TestShortAllInBelowBetDoesNotReopenAction(t *testing.T) {
	table, ledger, _ := newTestTable(21, "alice", "bob", "carol")
	ledger.SetStack("bob", 30)
	require.NoError(t, table.StartHand())

	// alice raises to 50; bob's attempted re-raise is all-in for 30 total
	require.NoError(t, table.HandleAction("alice", RaiseTo{To: 50}))
	require.NoError(t, table.HandleAction("bob", RaiseTo{To: 100}))

	bob := table.dealOrder[1]
	assert.True(t, bob.AllIn)
	assert.Equal(t, 30, bob.Bet)
	assert.Equal(t, 50, table.betting.CurrentBet)
	assert.Equal(t, 40, table.betting.MinRaise)
	assert.Equal(t, "alice", table.betting.LastAggressor)

	// carol's call closes the street without action returning to alice
	require.NoError(t, table.HandleAction("carol", Call{}))
	assert.Equal(t, Flop, table.street)
}

func TestIllegalActionsAreSilentNoOps(t *testing.T) {
	table, _, _ := newTestTable(9, "alice", "bob", "carol")

	// Outside a hand nothing happens
	require.NoError(t, table.HandleAction("alice", Check{}))
	assert.Equal(t, StatusWaiting, table.Phase())

	require.NoError(t, table.StartHand())

	// Out of turn: state untouched, still alice to act
	require.NoError(t, table.HandleAction("bob", Check{}))
	assert.Equal(t, "alice", table.mustCurrent(t).ID)
	assert.Equal(t, 5, table.dealOrder[1].Bet)

	// alice faces the big blind and cannot check
	require.NoError(t, table.HandleAction("alice", Check{}))
	assert.Equal(t, "alice", table.mustCurrent(t).ID)
	assert.Equal(t, 0, table.dealOrder[0].Bet)

	// Betting over an open bet must be a raise
	require.NoError(t, table.HandleAction("alice", Bet{Amount: 50}))
	assert.Equal(t, "alice", table.mustCurrent(t).ID)
	assert.Equal(t, 10, table.betting.CurrentBet)
	assert.Equal(t, 15, PotTotal(table.dealOrder))
}

func TestAllInRunoutRevealsRemainingStreets(t *testing.T) {
	table, ledger, sink := newTestTable(13, "alice", "bob")
	require.NoError(t, table.StartHand())

	// Heads-up: the non-dealer posts the small blind and acts first
	p := table.mustCurrent(t)
	require.NoError(t, table.HandleAction(p.ID, RaiseTo{To: 1000}))
	p = table.mustCurrent(t)
	require.NoError(t, table.HandleAction(p.ID, Call{}))

	assert.Equal(t, StatusFinished, table.Phase())
	assert.Equal(t, 2000, ledger.Stack("alice")+ledger.Stack("bob"))

	// Equity updates were pushed for every revealed street
	rounds := make(map[string]bool)
	for _, e := range sink.ofType(EventHandEvaluation) {
		rounds[e.payload.(HandEvaluation).Round] = true
	}
	assert.True(t, rounds["flop"])
	assert.True(t, rounds["turn"])
	assert.True(t, rounds["river"])
	assert.True(t, rounds["showdown"])
}

func TestSettleSplitsTiedPotWithOddChip(t *testing.T) {
	table, ledger, sink := newTestTable(17, "alice", "bob", "carol")

	a := &Player{ID: "alice", Name: "alice", Seat: 0, Stack: 900, TotalContrib: 100,
		HoleCards: deck.MustParseAll("SA", "SK")}
	b := &Player{ID: "bob", Name: "bob", Seat: 1, Stack: 900, TotalContrib: 100,
		HoleCards: deck.MustParseAll("HA", "HK")}
	c := &Player{ID: "carol", Name: "carol", Seat: 2, Stack: 999, TotalContrib: 1,
		Folded: true, HoleCards: deck.MustParseAll("D2", "D3")}

	table.dealOrder = []*Player{a, b, c}
	table.community = deck.MustParseAll("CQ", "DJ", "S10", "H9", "C8")
	table.status = StatusDealing
	table.street = River

	table.settle()

	// Both play the king-high straight; the odd chip goes to the first seat
	assert.Equal(t, 1001, ledger.Stack("alice"))
	assert.Equal(t, 1000, ledger.Stack("bob"))
	assert.Equal(t, 999, ledger.Stack("carol"))

	over := sink.ofType(EventGameOver)
	require.Len(t, over, 1)
	payload := over[0].payload.(GameOver)
	assert.Equal(t, "showdown", payload.Result)
	assert.Equal(t, []string{"alice", "bob"}, payload.Winners)
}

func TestForceFoldAdvancesOrEndsHand(t *testing.T) {
	table, ledger, _ := newTestTable(19, "alice", "bob", "carol")
	require.NoError(t, table.StartHand())

	// Folding the player to act passes the turn
	table.ForceFold("alice")
	assert.Equal(t, StatusDealing, table.Phase())
	assert.Equal(t, "bob", table.mustCurrent(t).ID)

	// Folding down to one player ends the hand
	table.ForceFold("bob")
	assert.Equal(t, StatusFinished, table.Phase())
	assert.Equal(t, 1005, ledger.Stack("carol"))
}

func TestRestartAbandonsHandAndDealsFresh(t *testing.T) {
	table, _, _ := newTestTable(23, "alice", "bob", "carol")
	require.NoError(t, table.StartHand())
	require.NoError(t, table.HandleAction("alice", Fold{}))

	require.NoError(t, table.HandleAction("bob", Restart{}))

	assert.Equal(t, StatusDealing, table.Phase())
	assert.Equal(t, "bob", table.dealerID, "dealer button moved on")
	for _, p := range table.dealOrder {
		assert.Len(t, p.HoleCards, 2)
		assert.False(t, p.Folded)
	}
}

func TestFinishStopsTheGame(t *testing.T) {
	table, ledger, sink := newTestTable(29, "alice", "bob", "carol")
	require.NoError(t, table.StartHand())

	require.NoError(t, table.HandleAction("alice", Finish{}))
	assert.Equal(t, StatusFinished, table.Phase())

	// Stacks were written back as they stood, blinds forfeited
	assert.Equal(t, 1000, ledger.Stack("alice"))
	assert.Equal(t, 995, ledger.Stack("bob"))
	assert.Equal(t, 990, ledger.Stack("carol"))

	assert.NotEmpty(t, sink.ofType(EventNotice))
}

func TestRemovePlayerMidHandFoldsThem(t *testing.T) {
	table, _, _ := newTestTable(31, "alice", "bob", "carol")
	require.NoError(t, table.StartHand())

	table.RemovePlayer("alice")
	assert.Len(t, table.Players(), 2)
	assert.True(t, table.dealOrder[0].Folded, "removed player stays in the hand as folded")
	assert.Equal(t, StatusDealing, table.Phase())
}

func TestDealerRotatesAcrossHands(t *testing.T) {
	table, _, _ := newTestTable(37, "alice", "bob", "carol")

	require.NoError(t, table.StartHand())
	assert.Equal(t, "alice", table.dealerID)

	require.NoError(t, table.HandleAction("alice", Restart{}))
	assert.Equal(t, "bob", table.dealerID)

	require.NoError(t, table.HandleAction("alice", Restart{}))
	assert.Equal(t, "carol", table.dealerID)

	require.NoError(t, table.HandleAction("alice", Restart{}))
	assert.Equal(t, "alice", table.dealerID)
}
