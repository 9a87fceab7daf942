package holdem

// Street represents the betting phase of a hand
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
)

func (s Street) String() string {
	return [...]string{"preflop", "flop", "turn", "river", "showdown"}[s]
}

// AllowedActions describes the legal actions for the player to act, in the
// shape clients consume.
type AllowedActions struct {
	Check      bool `json:"check"`
	Fold       bool `json:"fold"`
	Call       int  `json:"call"`
	MinBet     int  `json:"minBet"`
	MinRaiseTo int  `json:"minRaiseTo"`
}

// BettingRound holds the state of one street's betting: the bet to match,
// the minimum raise, the last aggressor, and which players have acted since
// the last raise.
type BettingRound struct {
	CurrentBet    int
	MinRaise      int
	BigBlind      int
	LastAggressor string
	acted         map[string]bool
}

// NewBettingRound creates the betting state for a fresh hand.
func NewBettingRound(bigBlind int) *BettingRound {
	return &BettingRound{
		MinRaise: bigBlind,
		BigBlind: bigBlind,
		acted:    make(map[string]bool),
	}
}

// Reset opens betting on a new street: street bets clear, folded and all-in
// players are exempt from acting, and the minimum raise returns to the big
// blind.
func (br *BettingRound) Reset(players []*Player) {
	br.CurrentBet = 0
	br.MinRaise = br.BigBlind
	br.LastAggressor = ""
	br.acted = make(map[string]bool, len(players))
	for _, p := range players {
		p.Bet = 0
		br.acted[p.ID] = !p.CanAct()
	}
}

// MarkActed records that a player has acted since the last raise.
func (br *BettingRound) MarkActed(id string) {
	br.acted[id] = true
}

// HasActed reports whether a player has acted since the last raise.
func (br *BettingRound) HasActed(id string) bool {
	return br.acted[id]
}

// ResetActedExcept forces every player who can still act to respond again
// after a bet or raise by id.
func (br *BettingRound) ResetActedExcept(players []*Player, id string) {
	for _, p := range players {
		br.acted[p.ID] = !p.CanAct() || p.ID == id
	}
}

// Complete reports whether the betting round is over: every non-folded,
// non-all-in player has matched the current bet and acted since the last
// raise. All-in and folded players are exempt but still count in pot math.
func (br *BettingRound) Complete(players []*Player) bool {
	live := 0
	for _, p := range players {
		if !p.Folded {
			live++
		}
	}
	if live <= 1 {
		return true
	}

	for _, p := range players {
		if p.Folded || p.AllIn {
			continue
		}
		if p.Bet != br.CurrentBet {
			return false
		}
		if !br.acted[p.ID] {
			return false
		}
	}
	return true
}

// Allowed computes the legal-action envelope for a player: whether check
// and fold apply, the chips a call costs, and the betting floors.
func (br *BettingRound) Allowed(p *Player) AllowedActions {
	var allowed AllowedActions
	if br.CurrentBet == 0 {
		allowed.Check = true
		minBet := br.BigBlind
		if minBet < 1 {
			minBet = 1
		}
		if max := p.Stack + p.Bet; minBet > max {
			minBet = max
		}
		allowed.MinBet = minBet
		return allowed
	}

	toPay := br.CurrentBet - p.Bet
	if toPay < 0 {
		toPay = 0
	}
	allowed.Fold = toPay > 0
	// Already matched, e.g. the big blind closing an unraised preflop.
	allowed.Check = toPay == 0
	if toPay > p.Stack {
		toPay = p.Stack
	}
	allowed.Call = toPay
	minRaise := br.MinRaise
	if minRaise < br.BigBlind {
		minRaise = br.BigBlind
	}
	allowed.MinRaiseTo = br.CurrentBet + minRaise
	return allowed
}

// applyBetting executes a betting-street action for the player whose turn
// it is. Amounts are clamped to the nearest legal value rather than
// rejected; a truly illegal action (checking a live bet, betting over a
// bet) is silently ignored. Returns true when table state changed.
func (t *Table) applyBetting(p *Player, act Action) bool {
	br := t.betting

	switch a := act.(type) {
	case Check:
		if br.CurrentBet != 0 && p.Bet != br.CurrentBet {
			return false
		}
		br.MarkActed(p.ID)
		t.advanceTurn()
		return true

	case Call:
		toPay := br.CurrentBet - p.Bet
		if toPay > 0 {
			p.contribute(toPay) // short stacks go all-in for less
		}
		br.MarkActed(p.ID)
		t.advanceTurn()
		return true

	case Bet:
		if br.CurrentBet != 0 {
			return false
		}
		amount := a.Amount
		if amount < br.BigBlind {
			amount = br.BigBlind
		}
		if max := p.Stack + p.Bet; amount > max {
			amount = max
		}
		delta := amount - p.Bet
		if delta <= 0 {
			return false
		}
		p.contribute(delta)
		br.CurrentBet = amount
		br.MinRaise = amount
		br.LastAggressor = p.ID
		br.ResetActedExcept(t.dealOrder, p.ID)
		t.advanceTurn()
		return true

	case RaiseTo:
		if br.CurrentBet == 0 || a.To <= br.CurrentBet {
			return false
		}
		to := a.To
		minRaise := br.MinRaise
		if minRaise < br.BigBlind {
			minRaise = br.BigBlind
		}
		if floor := br.CurrentBet + minRaise; to < floor {
			to = floor
		}
		p.contribute(to - p.Bet)
		if p.Bet > br.CurrentBet {
			// A short all-in only raises the bet to what was actually posted.
			br.MinRaise = p.Bet - br.CurrentBet
			br.CurrentBet = p.Bet
			br.LastAggressor = p.ID
			br.ResetActedExcept(t.dealOrder, p.ID)
		} else {
			// All-in below the current bet counts as a call and does not
			// reopen the betting.
			br.MarkActed(p.ID)
		}
		t.advanceTurn()
		return true

	case Fold:
		p.Folded = true
		br.MarkActed(p.ID)
		if t.liveCount() <= 1 {
			t.awardToLastStanding()
			return true
		}
		t.advanceTurn()
		return true

	default:
		return false
	}
}
