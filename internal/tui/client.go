package tui

import (
	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/pmourey/UniversLudique/internal/server"
)

// serverMsg wraps a decoded server frame for the Bubble Tea loop
type serverMsg struct {
	msg *server.Message
}

// disconnectedMsg signals that the server connection dropped
type disconnectedMsg struct {
	err error
}

// Client maintains the websocket to the game server. Frames are delivered
// to the TUI through program.Send from a reader goroutine.
type Client struct {
	conn   *websocket.Conn
	logger *log.Logger
}

// Dial connects to the server's websocket endpoint
func Dial(url string, logger *log.Logger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, logger: logger.WithPrefix("client")}, nil
}

// ReadLoop decodes frames until the connection drops, forwarding each to
// the program.
func (c *Client) ReadLoop(send func(msg any)) {
	for {
		var msg server.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			send(disconnectedMsg{err: err})
			return
		}
		send(serverMsg{msg: &msg})
	}
}

// Send encodes one frame to the server
func (c *Client) Send(msgType string, payload any) error {
	msg, err := server.NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	return c.conn.WriteJSON(msg)
}

// Close shuts the websocket down
func (c *Client) Close() error {
	return c.conn.Close()
}
