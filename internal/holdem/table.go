package holdem

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/pmourey/UniversLudique/internal/deck"
	"github.com/pmourey/UniversLudique/internal/evaluator"
)

// Status is the table lifecycle phase.
type Status int

const (
	StatusWaiting Status = iota
	StatusDealing
	StatusShowdown
	StatusFinished
)

func (s Status) String() string {
	return [...]string{"waiting", "dealing", "showdown", "finished"}[s]
}

// Options configures a table's stakes and equity sampling.
type Options struct {
	SmallBlind   int
	BigBlind     int
	EquityTrials int
}

// Table runs Texas Hold'em hands for a set of seated players. It is not
// safe for concurrent use; the owning room serializes access to it.
type Table struct {
	id     string
	logger *log.Logger
	rng    *rand.Rand
	opts   Options

	ledger Ledger
	sink   EventSink

	status    Status
	seats     []*Player
	dealOrder []*Player // players dealt into the current hand, fixed for its duration
	dealerID  string
	turnIndex int

	street    Street
	community []deck.Card
	revealed  int
	betting   *BettingRound
}

func NewTable(id string, ledger Ledger, sink EventSink, logger *log.Logger, rng *rand.Rand, opts Options) *Table {
	if opts.SmallBlind <= 0 {
		opts.SmallBlind = 5
	}
	if opts.BigBlind <= 0 {
		opts.BigBlind = opts.SmallBlind * 2
	}
	if opts.EquityTrials <= 0 {
		opts.EquityTrials = evaluator.DefaultTrials
	}
	if sink == nil {
		sink = nopSink{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Table{
		id:      id,
		logger:  logger,
		rng:     rng,
		opts:    opts,
		ledger:  ledger,
		sink:    sink,
		status:  StatusWaiting,
		betting: NewBettingRound(opts.BigBlind),
	}
}

// Phase returns the current table phase.
func (t *Table) Phase() Status { return t.status }

// Players returns the seated players in seat order.
func (t *Table) Players() []*Player { return t.seats }

// MaxPlayers caps the seats at one table. Ten-handed keeps a single deck
// sufficient for two hole cards each plus the board.
const MaxPlayers = 10

// AddPlayer seats a player at the table. Players joining mid-hand wait for
// the next deal.
func (t *Table) AddPlayer(id, name string) (*Player, error) {
	if len(t.seats) >= MaxPlayers {
		return nil, ErrTableFull
	}
	p := &Player{
		ID:    id,
		Name:  name,
		Seat:  len(t.seats),
		Stack: t.ledger.Stack(id),
	}
	t.seats = append(t.seats, p)
	t.logger.Info("player seated", "player", name, "seat", p.Seat)
	t.broadcastState()
	return p, nil
}

// RemovePlayer unseats a player. If they are in the current hand they are
// folded first; their contributions stay in the pot.
func (t *Table) RemovePlayer(id string) {
	t.ForceFold(id)
	for i, p := range t.seats {
		if p.ID == id {
			t.seats = append(t.seats[:i], t.seats[i+1:]...)
			break
		}
	}
	for i, p := range t.seats {
		p.Seat = i
	}
	t.broadcastState()
}

// StartHand deals a new hand: rotates the dealer, posts blinds, deals two
// hole cards to every funded player, and opens preflop betting.
func (t *Table) StartHand() error {
	if t.status == StatusDealing || t.status == StatusShowdown {
		return fmt.Errorf("hand already in progress")
	}

	eligible := make([]*Player, 0, len(t.seats))
	for _, p := range t.seats {
		if t.ledger.Stack(p.ID) > 0 {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) < 2 {
		return ErrInsufficientPlayers
	}

	t.dealOrder = eligible
	t.rotateDealer()
	for _, p := range t.dealOrder {
		p.resetForHand(t.ledger.Stack(p.ID))
	}

	d := deck.New(t.rng)
	for round := 0; round < 2; round++ {
		for i := range t.dealOrder {
			p := t.dealOrder[(t.dealerIdx()+1+i)%len(t.dealOrder)]
			c, _ := d.DealOne()
			p.HoleCards = append(p.HoleCards, c)
		}
	}
	t.community = d.Deal(5)
	t.revealed = 0
	t.street = Preflop

	t.betting = NewBettingRound(t.opts.BigBlind)
	t.betting.Reset(t.dealOrder)

	n := len(t.dealOrder)
	sb := t.dealOrder[(t.dealerIdx()+1)%n]
	bb := t.dealOrder[(t.dealerIdx()+2)%n]
	sb.contribute(t.opts.SmallBlind)
	bb.contribute(t.opts.BigBlind)
	t.betting.CurrentBet = t.opts.BigBlind
	t.betting.MinRaise = t.opts.BigBlind
	t.betting.LastAggressor = bb.ID

	t.status = StatusDealing
	t.turnIndex = t.nextEligible((t.dealerIdx() + 2) % n)

	t.logger.Info("hand started", "table", t.id, "players", n, "dealer", t.dealerID)
	t.sink.Broadcast(EventNotice, Notice{
		Message: fmt.Sprintf("New hand: %s posts %d, %s posts %d", sb.Name, sb.Bet, bb.Name, bb.Bet),
	})
	t.broadcastState()
	t.sendPrivateStates()

	// Blinds can put every dealt player all-in; with nobody left to act
	// the remaining streets run out immediately.
	if t.eligibleActors() == 0 {
		t.finishStreet()
	}
	return nil
}

// HandleAction applies a player action. Admin actions (restart, finish)
// are accepted in any phase. Betting actions from the wrong player,
// outside a betting street, or without a legal interpretation are
// silently ignored; amounts with a sane floor or ceiling are clamped
// inside applyBetting instead of rejected.
func (t *Table) HandleAction(playerID string, act Action) error {
	switch act.(type) {
	case Restart:
		t.abortHand()
		return t.StartHand()
	case Finish:
		t.abortHand()
		t.status = StatusFinished
		t.sink.Broadcast(EventNotice, Notice{Message: "Game finished by the host"})
		t.broadcastState()
		return nil
	}

	if t.status != StatusDealing {
		t.logger.Debug("action outside a hand ignored", "player", playerID, "action", act.Name())
		return nil
	}
	current := t.currentPlayer()
	if current == nil || current.ID != playerID {
		t.logger.Debug("out-of-turn action ignored", "player", playerID, "action", act.Name())
		return nil
	}
	if !current.CanAct() {
		t.advanceTurn()
		return nil
	}
	if !t.applyBetting(current, act) {
		t.logger.Debug("illegal action ignored", "player", playerID, "action", act.Name())
	}
	return nil
}

// ForceFold folds a player out of the current hand, used when a client
// disconnects or times out on their turn. The rest of the hand continues.
func (t *Table) ForceFold(playerID string) {
	if t.status != StatusDealing {
		return
	}
	var p *Player
	for _, dp := range t.dealOrder {
		if dp.ID == playerID {
			p = dp
			break
		}
	}
	if p == nil || p.Folded {
		return
	}
	wasTurn := t.currentPlayer() == p
	p.Folded = true
	t.betting.MarkActed(p.ID)
	t.sink.Broadcast(EventNotice, Notice{Message: fmt.Sprintf("%s folds", p.Name)})
	if t.liveCount() <= 1 {
		t.awardToLastStanding()
		return
	}
	if wasTurn {
		t.advanceTurn()
	} else {
		t.broadcastState()
	}
}

func (t *Table) currentPlayer() *Player {
	if t.status != StatusDealing || len(t.dealOrder) == 0 {
		return nil
	}
	return t.dealOrder[t.turnIndex]
}

func (t *Table) dealerIdx() int {
	for i, p := range t.dealOrder {
		if p.ID == t.dealerID {
			return i
		}
	}
	return 0
}

func (t *Table) rotateDealer() {
	if t.dealerID == "" {
		t.dealerID = t.dealOrder[0].ID
		return
	}
	idx := -1
	for i, p := range t.dealOrder {
		if p.ID == t.dealerID {
			idx = i
			break
		}
	}
	t.dealerID = t.dealOrder[(idx+1)%len(t.dealOrder)].ID
}

// nextEligible returns the index of the first player after from who can
// still act, or from itself if none can.
func (t *Table) nextEligible(from int) int {
	n := len(t.dealOrder)
	for i := 1; i <= n; i++ {
		idx := (from + i) % n
		if t.dealOrder[idx].CanAct() {
			return idx
		}
	}
	return from
}

func (t *Table) liveCount() int {
	live := 0
	for _, p := range t.dealOrder {
		if !p.Folded {
			live++
		}
	}
	return live
}

func (t *Table) eligibleActors() int {
	n := 0
	for _, p := range t.dealOrder {
		if p.CanAct() {
			n++
		}
	}
	return n
}

// advanceTurn moves to the next player, or closes the street when betting
// is complete.
func (t *Table) advanceTurn() {
	if t.betting.Complete(t.dealOrder) {
		t.finishStreet()
		return
	}
	t.turnIndex = t.nextEligible(t.turnIndex)
	t.broadcastState()
	t.sendPrivateStates()
}

// finishStreet reveals the next community cards, or runs the showdown
// after river betting.
func (t *Table) finishStreet() {
	switch t.street {
	case Preflop:
		t.startStreet(Flop, 3)
	case Flop:
		t.startStreet(Turn, 4)
	case Turn:
		t.startStreet(River, 5)
	case River:
		t.settle()
	}
}

// startStreet opens betting on a new street. When at most one player can
// still act but two or more are live, betting is moot and the remaining
// streets run out immediately.
func (t *Table) startStreet(s Street, reveal int) {
	t.street = s
	t.revealed = reveal
	t.betting.Reset(t.dealOrder)
	t.turnIndex = t.nextEligible(t.dealerIdx())

	t.broadcastState()
	t.sendEquityEvaluations()
	t.sendPrivateStates()

	if t.liveCount() >= 2 && t.eligibleActors() <= 1 {
		t.finishStreet()
	}
}

// awardToLastStanding pays the whole pot to the sole remaining player
// without a showdown. Hole cards stay hidden.
func (t *Table) awardToLastStanding() {
	var winner *Player
	for _, p := range t.dealOrder {
		if !p.Folded {
			winner = p
			break
		}
	}
	if winner == nil {
		return
	}
	total := PotTotal(t.dealOrder)
	winner.Stack += total
	for _, p := range t.dealOrder {
		p.TotalContrib = 0
		p.Bet = 0
	}
	t.syncLedger()
	t.status = StatusFinished
	t.sink.Broadcast(EventNotice, Notice{
		Message: fmt.Sprintf("%s wins %d, everyone else folded", winner.Name, total),
	})
	t.sink.Broadcast(EventGameOver, GameOver{
		Result:       "folds",
		Winners:      []string{winner.ID},
		WinnersNames: []string{winner.Name},
	})
	t.broadcastState()
}

// settle runs the showdown: evaluates every live hand over the full board,
// layers the pot, and pays each pot to its best hands.
func (t *Table) settle() {
	t.street = Showdown
	t.revealed = 5
	t.status = StatusShowdown
	t.broadcastState()

	scores := make(map[string]evaluator.HandScore)
	for _, p := range t.dealOrder {
		if p.Folded {
			continue
		}
		scores[p.ID] = evaluator.Evaluate(append(p.HoleCards[:2:2], t.community...))
	}

	seatOrder := make([]string, len(t.dealOrder))
	for i, p := range t.dealOrder {
		seatOrder[i] = p.ID
	}
	pots := SidePots(t.dealOrder)
	awards := AwardPots(pots, scores, seatOrder)

	byID := make(map[string]*Player, len(t.dealOrder))
	for _, p := range t.dealOrder {
		byID[p.ID] = p
	}

	var lastWinners []string
	for _, aw := range awards {
		var names []string
		for i, id := range aw.Winners {
			w := byID[id]
			w.Stack += aw.Share
			if i == 0 {
				w.Stack += aw.Remainder
			}
			names = append(names, w.Name)
		}
		t.sink.Broadcast(EventNotice, Notice{
			Message: fmt.Sprintf("Pot of %d goes to %s (%s)",
				aw.Pot.Amount, joinNames(names), scores[aw.Winners[0]].Category),
		})
		lastWinners = aw.Winners
	}
	for _, p := range t.dealOrder {
		p.TotalContrib = 0
		p.Bet = 0
	}

	t.sendShowdownEvaluations(scores)
	t.syncLedger()
	t.status = StatusFinished

	var winnerNames []string
	for _, id := range lastWinners {
		winnerNames = append(winnerNames, byID[id].Name)
	}
	t.sink.Broadcast(EventGameOver, GameOver{
		Result:       "showdown",
		Winners:      lastWinners,
		WinnersNames: winnerNames,
	})
	t.broadcastState()
}

// sendEquityEvaluations sends each live player their current hand rank
// and Monte Carlo win probability against the other live hands, using
// only the cards revealed so far.
func (t *Table) sendEquityEvaluations() {
	var contenders []evaluator.Contender
	for _, p := range t.dealOrder {
		if !p.Folded {
			contenders = append(contenders, evaluator.Contender{ID: p.ID, Hole: p.HoleCards})
		}
	}
	if len(contenders) < 2 {
		return
	}
	board := t.community[:t.revealed]
	result := evaluator.Equities(contenders, board, t.opts.EquityTrials, t.rng)

	round := t.street.String()
	for _, c := range contenders {
		score := evaluator.Evaluate(append(c.Hole[:2:2], board...))
		t.sink.SendTo(c.ID, EventHandEvaluation, HandEvaluation{
			PlayerID: c.ID,
			Hand:     cardCodes(c.Hole),
			Rank:     score.Category.String(),
			Value:    score.Value(),
			WinProb:  result.Probs[c.ID],
			WinProbs: result.Probs,
			Round:    round,
			IsExact:  result.Exact,
		})
	}
}

// sendShowdownEvaluations broadcasts every live hand with exact results
// once the showdown has resolved.
func (t *Table) sendShowdownEvaluations(scores map[string]evaluator.HandScore) {
	var contenders []evaluator.Contender
	for _, p := range t.dealOrder {
		if !p.Folded {
			contenders = append(contenders, evaluator.Contender{ID: p.ID, Hole: p.HoleCards})
		}
	}
	result := evaluator.Equities(contenders, t.community, 0, t.rng)
	for _, c := range contenders {
		score := scores[c.ID]
		t.sink.Broadcast(EventHandEvaluation, HandEvaluation{
			PlayerID: c.ID,
			Hand:     cardCodes(c.Hole),
			Rank:     score.Category.String(),
			Value:    score.Value(),
			WinProb:  result.Probs[c.ID],
			WinProbs: result.Probs,
			Round:    "showdown",
			IsExact:  true,
		})
	}
}

// abortHand writes current stacks back to the ledger and clears hand
// state. Chips already in the pot are not returned.
func (t *Table) abortHand() {
	if t.status == StatusDealing || t.status == StatusShowdown {
		t.syncLedger()
	}
	for _, p := range t.seats {
		p.HoleCards = nil
		p.Bet = 0
		p.TotalContrib = 0
		p.Folded = false
		p.AllIn = false
	}
	t.dealOrder = nil
	t.community = nil
	t.revealed = 0
	t.status = StatusWaiting
}

func (t *Table) syncLedger() {
	for _, p := range t.dealOrder {
		t.ledger.SetStack(p.ID, p.Stack)
	}
}

func (t *Table) broadcastState() {
	t.sink.Broadcast(EventState, t.Snapshot())
}

// Snapshot builds the public table state.
func (t *Table) Snapshot() State {
	inHand := make(map[string]*Player, len(t.dealOrder))
	for _, p := range t.dealOrder {
		inHand[p.ID] = p
	}

	players := make([]PublicPlayer, 0, len(t.seats))
	for _, p := range t.seats {
		pub := PublicPlayer{
			ID:    p.ID,
			Name:  p.Name,
			Seat:  p.Seat,
			Stack: t.ledger.Stack(p.ID),
		}
		if hp, ok := inHand[p.ID]; ok && t.status != StatusWaiting {
			pub.HandCount = len(hp.HoleCards)
			pub.Stack = hp.Stack
			pub.Bet = hp.Bet
			pub.Folded = hp.Folded
			pub.AllIn = hp.AllIn
		}
		players = append(players, pub)
	}

	st := State{
		RoomID:     t.id,
		Game:       "holdem",
		Status:     t.status.String(),
		Players:    players,
		Community:  cardCodes(t.community[:t.revealed]),
		SmallBlind: t.opts.SmallBlind,
		BigBlind:   t.opts.BigBlind,
		PotTotal:   PotTotal(t.dealOrder),
	}
	if t.dealerID != "" {
		id := t.dealerID
		st.DealerID = &id
	}
	if t.status == StatusDealing || t.status == StatusShowdown {
		round := t.street.String()
		st.Round = &round
		st.CurrentBet = t.betting.CurrentBet
		st.MinRaise = t.betting.MinRaise
	}
	if cp := t.currentPlayer(); cp != nil {
		id := cp.ID
		st.CurrentPlayerID = &id
	}
	return st
}

func (t *Table) sendPrivateStates() {
	current := t.currentPlayer()
	for _, p := range t.dealOrder {
		ps := PrivateState{
			Hand:       cardCodes(p.HoleCards),
			IsYourTurn: p == current,
		}
		if p == current {
			allowed := t.betting.Allowed(p)
			ps.Allowed = &allowed
		}
		t.sink.SendTo(p.ID, EventYourHand, ps)
	}
}

func cardCodes(cards []deck.Card) []string {
	codes := make([]string, len(cards))
	for i, c := range cards {
		codes[i] = c.Code()
	}
	return codes
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	out := names[0]
	for _, n := range names[1:] {
		out += ", " + n
	}
	return out
}
