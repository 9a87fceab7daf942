package server

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/pmourey/UniversLudique/internal/holdem"
)

// Hub is the room directory. Rooms are created on demand and removed when
// their last member leaves.
type Hub struct {
	cfg    GameSettings
	ledger holdem.Ledger
	logger *log.Logger
	clock  quartz.Clock

	mu    sync.RWMutex
	rooms map[string]*Room
	seed  *rand.Rand
}

// NewHub creates the room directory. The ledger is shared across rooms so
// a player's chips follow them between tables.
func NewHub(cfg GameSettings, ledger holdem.Ledger, logger *log.Logger, clock quartz.Clock, seed *rand.Rand) *Hub {
	return &Hub{
		cfg:    cfg,
		ledger: ledger,
		logger: logger,
		clock:  clock,
		rooms:  make(map[string]*Room),
		seed:   seed,
	}
}

// CreateRoom creates a room for the given game and starts its goroutine.
func (h *Hub) CreateRoom(game string) (*Room, error) {
	if game != "" && game != "holdem" {
		return nil, fmt.Errorf("unsupported game %q", game)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	id := uuid.NewString()
	rng := rand.New(rand.NewSource(h.seed.Int63()))
	room := NewRoom(id, h.cfg, h.ledger, h.logger, h.clock, rng)
	h.rooms[id] = room
	go room.Run()
	h.logger.Info("room created", "room", id)
	return room, nil
}

// GetRoom looks up a room by id.
func (h *Hub) GetRoom(id string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[id]
	return room, ok
}

// RemoveRoom stops a room and drops it from the directory.
func (h *Hub) RemoveRoom(id string) {
	h.mu.Lock()
	room, ok := h.rooms[id]
	if ok {
		delete(h.rooms, id)
	}
	h.mu.Unlock()
	if ok {
		room.Close()
		h.logger.Info("room removed", "room", id)
	}
}

// ListRooms summarizes every open room for the lobby.
func (h *Hub) ListRooms() []RoomSummary {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, room := range h.rooms {
		rooms = append(rooms, room)
	}
	h.mu.RUnlock()

	summaries := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		reply := make(chan RoomSummary, 1)
		room.Do(func() { reply <- room.Summary() })
		select {
		case s := <-reply:
			summaries = append(summaries, s)
		case <-room.done: // room closed before answering
		}
	}
	return summaries
}

// CloseAll stops every room, for server shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, room := range h.rooms {
		room.Close()
		delete(h.rooms, id)
	}
}
