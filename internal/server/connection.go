package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pmourey/UniversLudique/internal/holdem"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection represents a WebSocket connection to a client. Each
// connection gets a stable player id at accept time; the display name is
// set by the register message.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	playerID  string
	name      string
	room      *Room
	hub       *Hub
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, hub *Hub, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()

	return &Connection{
		conn:     conn,
		send:     make(chan *Message, 256),
		playerID: id,
		name:     "guest",
		hub:      hub,
		logger:   logger.WithPrefix("conn").With("player", id),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()

	welcome, _ := NewMessage(MsgWelcome, WelcomePayload{PlayerID: c.playerID})
	_ = c.SendMessage(welcome)
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, expected during shutdown
			c.logger.Debug("send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// PlayerID returns the stable id assigned at accept time.
func (c *Connection) PlayerID() string { return c.playerID }

// PlayerName returns the registered display name.
func (c *Connection) PlayerName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

func (c *Connection) setName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

// Room returns the room this connection has joined, if any.
func (c *Connection) Room() *Room {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}

func (c *Connection) setRoom(room *Room) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = room
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() {
		c.leaveCurrentRoom()
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case MsgRegister:
		var p RegisterPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.sendError("Failed to parse register payload")
			return
		}
		c.handleRegister(p)

	case MsgCreateRoom:
		var p CreateRoomPayload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				c.sendError("Failed to parse create room payload")
				return
			}
		}
		c.handleCreateRoom(p)

	case MsgJoinRoom:
		var p JoinRoomPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.sendError("Failed to parse join room payload")
			return
		}
		c.handleJoinRoom(p)

	case MsgLeaveRoom:
		c.leaveCurrentRoom()

	case MsgListRooms:
		response, _ := NewMessage(MsgRooms, RoomsPayload{Rooms: c.hub.ListRooms()})
		_ = c.SendMessage(response)

	case MsgStartGame:
		c.handleStartGame()

	case MsgAction:
		var p ActionPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.sendError("Failed to parse action payload")
			return
		}
		c.handleAction(p)

	case MsgChat:
		var p ChatPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.sendError("Failed to parse chat payload")
			return
		}
		c.handleChat(p)

	default:
		c.sendError("Unknown message type: " + msg.Type)
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(message string) {
	errorMsg, err := NewMessage(MsgError, ErrorPayload{Message: message})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}
	_ = c.SendMessage(errorMsg)
}

func (c *Connection) handleRegister(p RegisterPayload) {
	if p.Name == "" {
		c.sendError("Player name required")
		return
	}
	c.setName(p.Name)
	c.logger.Info("player registered", "name", p.Name)

	response, _ := NewMessage(MsgRegistered, RegisteredPayload{
		PlayerID: c.playerID,
		Name:     p.Name,
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleCreateRoom(p CreateRoomPayload) {
	if c.Room() != nil {
		c.sendError("Leave your current room first")
		return
	}
	room, err := c.hub.CreateRoom(p.Game)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	response, _ := NewMessage(MsgRoomCreated, RoomCreatedPayload{
		RoomID: room.ID,
		Game:   room.Game,
	})
	_ = c.SendMessage(response)

	c.joinRoom(room)
}

func (c *Connection) handleJoinRoom(p JoinRoomPayload) {
	if c.Room() != nil {
		c.sendError("Leave your current room first")
		return
	}
	room, ok := c.hub.GetRoom(p.RoomID)
	if !ok {
		c.sendError("Room not found: " + p.RoomID)
		return
	}
	c.joinRoom(room)
}

// joinRoom seats the connection at a room's table, backing out when no
// seat is available.
func (c *Connection) joinRoom(room *Room) {
	c.setRoom(room)
	room.Do(func() {
		if err := room.Join(c); err != nil {
			c.setRoom(nil)
			c.sendNotice(err.Error())
		}
	})
}

func (c *Connection) leaveCurrentRoom() {
	room := c.Room()
	if room == nil {
		return
	}
	c.setRoom(nil)

	playerID := c.playerID
	room.Do(func() {
		if room.Leave(playerID) {
			c.hub.RemoveRoom(room.ID)
		}
	})

	response, _ := NewMessage(MsgLeftRoom, LeftRoomPayload{RoomID: room.ID})
	_ = c.SendMessage(response)
}

func (c *Connection) handleStartGame() {
	room := c.Room()
	if room == nil {
		c.sendError("Join a room first")
		return
	}
	room.Do(func() {
		if err := room.StartGame(); err != nil {
			c.sendNotice(err.Error())
		}
	})
}

func (c *Connection) handleAction(p ActionPayload) {
	room := c.Room()
	if room == nil {
		c.sendError("Join a room first")
		return
	}
	act, err := holdem.ParseAction(p.Action, holdem.ActionParams{Amount: p.Amount, To: p.To})
	if err != nil {
		// Malformed game input is reported as a notice, the frame itself
		// was valid protocol
		c.sendNotice(err.Error())
		return
	}
	playerID := c.playerID
	room.Do(func() {
		if err := room.HandleAction(playerID, act); err != nil {
			c.sendNotice(err.Error())
		}
	})
}

// sendNotice reports a game-level problem to this client only
func (c *Connection) sendNotice(message string) {
	msg, err := NewMessage(holdem.EventNotice, holdem.Notice{Message: message})
	if err != nil {
		return
	}
	_ = c.SendMessage(msg)
}

func (c *Connection) handleChat(p ChatPayload) {
	room := c.Room()
	if room == nil {
		c.sendError("Join a room first")
		return
	}
	from := c.PlayerName()
	room.Do(func() { room.Chat(from, p.Message) })
}
