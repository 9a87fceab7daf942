package tui

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/pmourey/UniversLudique/internal/deck"
	"github.com/pmourey/UniversLudique/internal/holdem"
	"github.com/pmourey/UniversLudique/internal/server"
)

// Model is the Bubble Tea model for the network client
type Model struct {
	client *Client
	logger *log.Logger
	name   string

	logViewport viewport.Model
	input       textinput.Model

	playerID string
	roomID   string
	state    *holdem.State
	hand     []string
	allowed  *holdem.AllowedActions

	gameLog  []string
	width    int
	height   int
	quitting bool
}

// NewModel creates the client model. The connection must already be
// dialed; the caller starts the read loop with program.Send.
func NewModel(client *Client, name string, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "create | join <roomId> | start | check | call | bet 50 | raise 100 | fold"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 80
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)

	return &Model{
		client:      client,
		logger:      logger.WithPrefix("tui"),
		name:        name,
		logViewport: vp,
		input:       ti,
	}
}

// Init registers the player name with the server
func (m *Model) Init() tea.Cmd {
	return func() tea.Msg {
		_ = m.client.Send(server.MsgRegister, server.RegisterPayload{Name: m.name})
		return nil
	}
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logViewport.Width = msg.Width - 4
		m.logViewport.Height = msg.Height - 12
		if m.logViewport.Height < 3 {
			m.logViewport.Height = 3
		}
		m.refreshLog()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			_ = m.client.Close()
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line != "" {
				m.handleCommand(line)
			}
		}

	case serverMsg:
		m.handleServerMessage(msg.msg)

	case disconnectedMsg:
		m.appendLog(ErrorStyle.Render("Disconnected from server"))
		m.quitting = true
		return m, tea.Sequence(tea.ClearScreen, tea.Quit)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleCommand parses a typed command and sends the matching frame
func (m *Model) handleCommand(line string) {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case "rooms":
		_ = m.client.Send(server.MsgListRooms, nil)
	case "create":
		_ = m.client.Send(server.MsgCreateRoom, server.CreateRoomPayload{Game: "holdem"})
	case "join":
		if len(fields) < 2 {
			m.appendLog(ErrorStyle.Render("Usage: join <roomId>"))
			return
		}
		_ = m.client.Send(server.MsgJoinRoom, server.JoinRoomPayload{RoomID: fields[1]})
	case "leave":
		_ = m.client.Send(server.MsgLeaveRoom, nil)
	case "start":
		_ = m.client.Send(server.MsgStartGame, nil)
	case "check", "call", "fold", "restart", "finish":
		_ = m.client.Send(server.MsgAction, server.ActionPayload{Action: cmd})
	case "bet":
		amount := m.parseAmount(fields)
		_ = m.client.Send(server.MsgAction, server.ActionPayload{Action: "bet", Amount: amount})
	case "raise":
		to := m.parseAmount(fields)
		_ = m.client.Send(server.MsgAction, server.ActionPayload{Action: "raise_to", To: to})
	case "say":
		_ = m.client.Send(server.MsgChat, server.ChatPayload{Message: strings.TrimSpace(strings.TrimPrefix(line, fields[0]))})
	case "quit":
		m.quitting = true
		_ = m.client.Close()
	default:
		m.appendLog(ErrorStyle.Render("Unknown command: " + cmd))
	}
}

func (m *Model) parseAmount(fields []string) int {
	if len(fields) < 2 {
		return 0
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0
	}
	return n
}

// handleServerMessage updates display state from one server frame
func (m *Model) handleServerMessage(msg *server.Message) {
	switch msg.Type {
	case server.MsgWelcome:
		var p server.WelcomePayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.playerID = p.PlayerID
		}

	case server.MsgRegistered:
		var p server.RegisteredPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.appendLog(InfoStyle.Render("Registered as " + p.Name))
		}

	case server.MsgRoomCreated:
		var p server.RoomCreatedPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.roomID = p.RoomID
			m.appendLog(InfoStyle.Render("Room created: " + p.RoomID))
		}

	case server.MsgLeftRoom:
		m.roomID = ""
		m.state = nil
		m.hand = nil
		m.allowed = nil
		m.appendLog(InfoStyle.Render("Left room"))

	case server.MsgRooms:
		var p server.RoomsPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			if len(p.Rooms) == 0 {
				m.appendLog(InfoStyle.Render("No open rooms"))
			}
			for _, r := range p.Rooms {
				m.appendLog(fmt.Sprintf("room %s  %s  %d players  %s", r.RoomID, r.Game, r.Players, r.Status))
			}
		}

	case server.MsgChat:
		var p server.ChatBroadcastPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.appendLog(fmt.Sprintf("%s: %s", p.From, p.Message))
		}

	case server.MsgError:
		var p server.ErrorPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.appendLog(ErrorStyle.Render(p.Message))
		}

	case holdem.EventState:
		var st holdem.State
		if json.Unmarshal(msg.Payload, &st) == nil {
			if m.roomID == "" {
				m.roomID = st.RoomID
			}
			m.state = &st
			if st.Status == "waiting" || st.Status == "finished" {
				m.allowed = nil
			}
		}

	case holdem.EventYourHand:
		var p holdem.PrivateState
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.hand = p.Hand
			m.allowed = p.Allowed
		}

	case holdem.EventHandEvaluation:
		var p holdem.HandEvaluation
		if json.Unmarshal(msg.Payload, &p) == nil {
			exact := ""
			if p.IsExact {
				exact = " (exact)"
			}
			m.appendLog(HandInfoStyle.Render(
				fmt.Sprintf("[%s] %s, win %.1f%%%s", p.Round, p.Rank, p.WinProb, exact)))
		}

	case holdem.EventRoomUpdate:
		var p server.RoomSummary
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.appendLog(InfoStyle.Render(
				fmt.Sprintf("Room %s now has %d player(s)", p.RoomID, p.Players)))
		}

	case holdem.EventNotice:
		var p holdem.Notice
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.appendLog(p.Message)
		}

	case holdem.EventGameOver:
		var p holdem.GameOver
		if json.Unmarshal(msg.Payload, &p) == nil {
			m.appendLog(HandInfoStyle.Render(
				fmt.Sprintf("Hand over (%s): %s wins", p.Result, strings.Join(p.WinnersNames, ", "))))
			m.allowed = nil
		}
	}
}

func (m *Model) appendLog(line string) {
	m.gameLog = append(m.gameLog, line)
	m.refreshLog()
}

func (m *Model) refreshLog() {
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.logViewport.GotoBottom()
}

// View renders the table, the log, and the input line
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(" ♠ ♥ UniversLudique Hold'em ♦ ♣ "))
	b.WriteString("\n\n")
	b.WriteString(m.renderTable())
	b.WriteString("\n")
	b.WriteString(m.logViewport.View())
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	return b.String()
}

func (m *Model) renderTable() string {
	if m.state == nil {
		return InfoStyle.Render("Not at a table. Type 'create' or 'rooms' then 'join <roomId>'.")
	}
	st := m.state

	var b strings.Builder
	round := ""
	if st.Round != nil {
		round = " " + *st.Round
	}
	b.WriteString(HandInfoStyle.Render(fmt.Sprintf("Room %s  [%s%s]  Pot: %d  Blinds: %d/%d",
		st.RoomID, st.Status, round, st.PotTotal, st.SmallBlind, st.BigBlind)))
	b.WriteString("\n")

	if len(st.Community) > 0 {
		b.WriteString("Board: " + renderCards(st.Community) + "\n")
	}
	if len(m.hand) > 0 {
		b.WriteString("Hand:  " + renderCards(m.hand) + "\n")
	}

	for _, p := range st.Players {
		marker := "  "
		if st.CurrentPlayerID != nil && *st.CurrentPlayerID == p.ID {
			marker = "→ "
		}
		tag := ""
		switch {
		case p.Folded:
			tag = " folded"
		case p.AllIn:
			tag = " all-in"
		}
		dealer := ""
		if st.DealerID != nil && *st.DealerID == p.ID {
			dealer = " (D)"
		}
		b.WriteString(PlayerInfoStyle.Render(
			fmt.Sprintf("%s%s%s  stack %d  bet %d%s", marker, p.Name, dealer, p.Stack, p.Bet, tag)))
		b.WriteString("\n")
	}

	if m.allowed != nil {
		var opts []string
		if m.allowed.Check {
			opts = append(opts, "check")
		}
		if m.allowed.Call > 0 {
			opts = append(opts, fmt.Sprintf("call %d", m.allowed.Call))
		}
		if m.allowed.MinBet > 0 {
			opts = append(opts, fmt.Sprintf("bet ≥%d", m.allowed.MinBet))
		}
		if m.allowed.MinRaiseTo > 0 {
			opts = append(opts, fmt.Sprintf("raise ≥%d", m.allowed.MinRaiseTo))
		}
		if m.allowed.Fold {
			opts = append(opts, "fold")
		}
		b.WriteString(ActionsStyle.Render("Your turn: " + strings.Join(opts, "  ")))
		b.WriteString("\n")
	}
	return b.String()
}

// renderCards colors card codes by suit
func renderCards(codes []string) string {
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		c, err := deck.Parse(code)
		if err != nil {
			parts = append(parts, code)
			continue
		}
		if c.Suit.IsRed() {
			parts = append(parts, RedCardStyle.Render(c.String()))
		} else {
			parts = append(parts, BlackCardStyle.Render(c.String()))
		}
	}
	return strings.Join(parts, " ")
}

// Run dials the server and blocks in the Bubble Tea loop until quit
func Run(url, name string, logger *log.Logger) error {
	client, err := Dial(url, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	defer func() { _ = client.Close() }()

	model := NewModel(client, name, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())

	go client.ReadLoop(func(msg any) { program.Send(msg) })

	_, err = program.Run()
	return err
}
