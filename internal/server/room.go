package server

import (
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/pmourey/UniversLudique/internal/holdem"
)

// Room hosts one table and the connections seated at it. All table access
// runs on the room's own goroutine; connections post work through Do so
// the engine never needs locks.
type Room struct {
	ID   string
	Game string

	logger  *log.Logger
	clock   quartz.Clock
	timeout time.Duration

	table   *holdem.Table
	members map[string]*Connection

	cmds chan func()
	done chan struct{}

	turnTimer *quartz.Timer
	timedTurn string
}

// NewRoom creates a room with its table. The room is its table's event
// sink; Run must be called for it to process commands.
func NewRoom(id string, cfg GameSettings, ledger holdem.Ledger, logger *log.Logger, clock quartz.Clock, rng *rand.Rand) *Room {
	r := &Room{
		ID:      id,
		Game:    "holdem",
		logger:  logger.WithPrefix("room").With("room", id),
		clock:   clock,
		timeout: time.Duration(cfg.TurnTimeoutSeconds) * time.Second,
		members: make(map[string]*Connection),
		cmds:    make(chan func(), 64),
		done:    make(chan struct{}),
	}
	r.table = holdem.NewTable(id, ledger, r, r.logger, rng, holdem.Options{
		SmallBlind:   cfg.SmallBlind,
		BigBlind:     cfg.BigBlind,
		EquityTrials: cfg.EquityTrials,
	})
	return r
}

// Run processes room commands until Close. Commands run one at a time in
// arrival order.
func (r *Room) Run() {
	for {
		select {
		case fn := <-r.cmds:
			fn()
		case <-r.done:
			r.stopTurnTimer()
			return
		}
	}
}

// Do posts work to the room goroutine. It is safe to call from any
// goroutine; work posted after Close is dropped.
func (r *Room) Do(fn func()) {
	select {
	case r.cmds <- fn:
	case <-r.done:
	}
}

// Close stops the room goroutine.
func (r *Room) Close() {
	select {
	case <-r.done:
	default:
		close(r.done)
	}
}

// Join seats a connection's player at the table. Must run on the room
// goroutine.
func (r *Room) Join(conn *Connection) error {
	if _, err := r.table.AddPlayer(conn.PlayerID(), conn.PlayerName()); err != nil {
		return err
	}
	r.members[conn.PlayerID()] = conn
	r.Broadcast(holdem.EventRoomUpdate, r.Summary())
	return nil
}

// Leave unseats a player and reports whether the room is now empty. Must
// run on the room goroutine.
func (r *Room) Leave(playerID string) bool {
	delete(r.members, playerID)
	r.table.RemovePlayer(playerID)
	if len(r.members) == 0 {
		return true
	}
	r.Broadcast(holdem.EventRoomUpdate, r.Summary())
	return false
}

// StartGame deals a new hand. Must run on the room goroutine.
func (r *Room) StartGame() error {
	return r.table.StartHand()
}

// HandleAction applies a player's game action. Must run on the room
// goroutine.
func (r *Room) HandleAction(playerID string, act holdem.Action) error {
	return r.table.HandleAction(playerID, act)
}

// Chat relays a chat line to everyone in the room.
func (r *Room) Chat(from, message string) {
	msg, err := NewMessage(MsgChat, ChatBroadcastPayload{From: from, Message: message})
	if err != nil {
		return
	}
	for _, conn := range r.members {
		_ = conn.SendMessage(msg)
	}
}

// Summary describes the room for lobby listings.
func (r *Room) Summary() RoomSummary {
	return RoomSummary{
		RoomID:  r.ID,
		Game:    r.Game,
		Players: len(r.members),
		Status:  r.table.Phase().String(),
	}
}

// Broadcast sends a table event to every member. State events also drive
// the turn timer.
func (r *Room) Broadcast(event string, payload any) {
	msg, err := NewMessage(event, payload)
	if err != nil {
		r.logger.Error("failed to encode event", "event", event, "error", err)
		return
	}
	for _, conn := range r.members {
		_ = conn.SendMessage(msg)
	}
	if st, ok := payload.(holdem.State); ok && event == holdem.EventState {
		r.trackTurn(st)
	}
}

// SendTo sends a table event to one player.
func (r *Room) SendTo(playerID string, event string, payload any) {
	conn, ok := r.members[playerID]
	if !ok {
		return
	}
	msg, err := NewMessage(event, payload)
	if err != nil {
		r.logger.Error("failed to encode event", "event", event, "error", err)
		return
	}
	_ = conn.SendMessage(msg)
}

// trackTurn arms the turn timer when the player to act changes, so a
// stalled player is folded out after the configured timeout.
func (r *Room) trackTurn(st holdem.State) {
	if r.timeout <= 0 {
		return
	}
	if st.Status != holdem.StatusDealing.String() || st.CurrentPlayerID == nil {
		r.stopTurnTimer()
		return
	}
	playerID := *st.CurrentPlayerID
	if playerID == r.timedTurn && r.turnTimer != nil {
		return
	}
	r.stopTurnTimer()
	r.timedTurn = playerID
	r.turnTimer = r.clock.AfterFunc(r.timeout, func() {
		r.Do(func() {
			snap := r.table.Snapshot()
			if snap.CurrentPlayerID == nil || *snap.CurrentPlayerID != playerID {
				return
			}
			r.logger.Info("turn timed out", "player", playerID)
			r.table.ForceFold(playerID)
		})
	})
}

func (r *Room) stopTurnTimer() {
	if r.turnTimer != nil {
		r.turnTimer.Stop()
		r.turnTimer = nil
	}
	r.timedTurn = ""
}
