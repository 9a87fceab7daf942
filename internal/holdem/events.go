package holdem

// EventSink receives table events for delivery to clients. The server's
// room implements it over websockets; tests implement it with slices.
type EventSink interface {
	Broadcast(event string, payload any)
	SendTo(playerID string, event string, payload any)
}

const (
	EventRoomUpdate     = "room_update"
	EventState          = "state"
	EventYourHand       = "your_hand"
	EventHandEvaluation = "hand_evaluation"
	EventNotice         = "notice"
	EventGameOver       = "game_over"
)

// PublicPlayer is the seat information every client may see.
type PublicPlayer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Seat      int    `json:"seat"`
	HandCount int    `json:"handCount"`
	Stack     int    `json:"stack"`
	Bet       int    `json:"bet"`
	Folded    bool   `json:"folded"`
	AllIn     bool   `json:"allin"`
}

// State is the public table snapshot broadcast after every transition.
type State struct {
	RoomID          string         `json:"roomId"`
	Game            string         `json:"game"`
	Status          string         `json:"status"`
	DealerID        *string        `json:"dealerId"`
	Players         []PublicPlayer `json:"players"`
	Community       []string       `json:"community"`
	Round           *string        `json:"round"`
	CurrentPlayerID *string        `json:"currentPlayerId"`
	CurrentBet      int            `json:"currentBet"`
	MinRaise        int            `json:"minRaise"`
	SmallBlind      int            `json:"smallBlind"`
	BigBlind        int            `json:"bigBlind"`
	PotTotal        int            `json:"potTotal"`
}

// PrivateState is sent only to its owner: hole cards plus, when it is
// their turn, the legal actions.
type PrivateState struct {
	Hand       []string        `json:"hand"`
	IsYourTurn bool            `json:"isYourTurn"`
	Allowed    *AllowedActions `json:"allowed,omitempty"`
}

// HandEvaluation reports a player's current best hand and win probability.
// WinProbs covers every live player so clients can chart the whole table.
type HandEvaluation struct {
	PlayerID string             `json:"playerId"`
	Hand     []string           `json:"hand"`
	Rank     string             `json:"rank"`
	Value    int                `json:"value"`
	WinProb  float64            `json:"winProb"`
	WinProbs map[string]float64 `json:"allWinProbs"`
	Round    string             `json:"round"`
	IsExact  bool               `json:"isExact"`
}

// GameOver announces the end of a hand.
type GameOver struct {
	Result       string   `json:"result"`
	Winners      []string `json:"winners"`
	WinnersNames []string `json:"winnersNames"`
}

// Notice is a human-readable line shown in the client's log.
type Notice struct {
	Message string `json:"message"`
}

// nopSink discards events, for tables run without a transport.
type nopSink struct{}

func (nopSink) Broadcast(string, any)      {}
func (nopSink) SendTo(string, string, any) {}
