package server

import "encoding/json"

// Message is the wire envelope. Every frame in both directions is a JSON
// object with a type and an optional payload.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage creates a message with a marshaled payload
func NewMessage(msgType string, payload any) (*Message, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = data
	}
	return &Message{Type: msgType, Payload: raw}, nil
}

// Client to server message types
const (
	MsgRegister   = "register"
	MsgCreateRoom = "create_room"
	MsgJoinRoom   = "join_room"
	MsgLeaveRoom  = "leave_room"
	MsgListRooms  = "list_rooms"
	MsgStartGame  = "start_game"
	MsgAction     = "action"
	MsgChat       = "chat"
)

// Server to client message types
const (
	MsgWelcome     = "welcome"
	MsgRegistered  = "registered"
	MsgRoomCreated = "room_created"
	MsgLeftRoom    = "left_room"
	MsgRooms       = "rooms"
	MsgError       = "error"
)

// RegisterPayload sets the display name for a connection
type RegisterPayload struct {
	Name string `json:"name"`
}

// CreateRoomPayload asks for a new room
type CreateRoomPayload struct {
	Game string `json:"game"`
}

// JoinRoomPayload joins an existing room by id
type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
}

// ActionPayload carries a game action from the player
type ActionPayload struct {
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
	To     int    `json:"to,omitempty"`
}

// ChatPayload carries a chat line to the player's room
type ChatPayload struct {
	Message string `json:"message"`
}

// WelcomePayload assigns the connection its player id
type WelcomePayload struct {
	PlayerID string `json:"playerId"`
}

// RegisteredPayload confirms a register request
type RegisteredPayload struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

// RoomCreatedPayload confirms room creation to its creator
type RoomCreatedPayload struct {
	RoomID string `json:"roomId"`
	Game   string `json:"game"`
}

// LeftRoomPayload confirms a leave request
type LeftRoomPayload struct {
	RoomID string `json:"roomId"`
}

// RoomSummary is one entry of a rooms listing
type RoomSummary struct {
	RoomID  string `json:"roomId"`
	Game    string `json:"game"`
	Players int    `json:"players"`
	Status  string `json:"status"`
}

// RoomsPayload lists the open rooms
type RoomsPayload struct {
	Rooms []RoomSummary `json:"rooms"`
}

// ChatBroadcastPayload relays a chat line with its sender
type ChatBroadcastPayload struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

// ErrorPayload reports a rejected request
type ErrorPayload struct {
	Message string `json:"message"`
}
