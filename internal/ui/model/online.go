// Package model contains the UI model implementations.
package model

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	gameClient "github.com/palemoky/draw-and-guess/internal/client"
	"github.com/palemoky/draw-and-guess/internal/network/client"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/sound"
	"github.com/palemoky/draw-and-guess/internal/ui/common"
)

const (
	httpTimeout      = 5 * time.Second
	leaderboardLimit = 10
)

// OnlineModel is the main model for online game mode.
type OnlineModel struct {
	client    *client.Client
	directory *client.Directory
	screen    Screen

	// Player info
	playerName string

	state       *gameClient.GameState
	rooms       []protocol.RoomListItem
	leaderboard []protocol.LeaderboardEntry

	// Callbacks from the client's read goroutine land here
	events chan tea.Msg

	// System notifications
	notifications map[NotificationType]*SystemNotification

	// Audio
	soundManager *sound.SoundManager

	// UI components
	input  *textinput.Model
	width  int
	height int
	now    func() time.Time

	// View renderer (injected to break circular import)
	viewRenderer func(Model) string
}

// NewOnlineModel creates a new OnlineModel.
func NewOnlineModel(serverURL string) *OnlineModel {
	ti := textinput.New()
	ti.Placeholder = "/help for commands, or type a guess"
	ti.CharLimit = 120
	ti.Width = 50
	ti.Focus()

	c := client.NewClient(serverURL)
	events := make(chan tea.Msg, 64)

	m := &OnlineModel{
		client:        c,
		screen:        ScreenConnecting,
		playerName:    "Player",
		state:         gameClient.NewGameState(),
		events:        events,
		notifications: make(map[NotificationType]*SystemNotification),
		soundManager:  sound.NewSoundManager(),
		input:         &ti,
		now:           time.Now,
	}
	if dir, err := client.NewDirectory(serverURL); err == nil {
		m.directory = dir
	}

	c.OnReconnecting = func(attempt, maxTries int) {
		m.post(ReconnectingMsg{Attempt: attempt, MaxTries: maxTries})
	}
	c.OnReconnect = func() {
		m.post(ReconnectSuccessMsg{})
	}
	c.OnAck = func(req protocol.MessageType, ack protocol.AckPayload) {
		m.post(AckMsg{Request: req, Ack: ack})
	}

	return m
}

// post forwards a message from a client goroutine without blocking it
func (m *OnlineModel) post(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
	}
}

func (m *OnlineModel) Init() tea.Cmd {
	go func() {
		_ = m.soundManager.Init()
	}()

	return tea.Batch(
		m.connectToServer(),
		textinput.Blink,
		m.listenForEvents(),
		tick(),
	)
}

func (m *OnlineModel) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m *OnlineModel) connectToServer() tea.Cmd {
	return func() tea.Msg {
		if err := m.client.Connect(); err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ConnectedMsg{}
	}
}

func (m *OnlineModel) listenForMessages() tea.Cmd {
	return func() tea.Msg {
		msg, err := m.client.Receive()
		if err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ServerMessage{Msg: msg}
	}
}

func (m *OnlineModel) fetchRooms() tea.Cmd {
	dir := m.directory
	if dir == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), httpTimeout)
		defer cancel()
		rooms, err := dir.ListRooms(ctx)
		return RoomsMsg{Rooms: rooms, Err: err}
	}
}

func (m *OnlineModel) createRoom(name string) tea.Cmd {
	dir := m.directory
	if dir == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), httpTimeout)
		defer cancel()
		room, err := dir.CreateRoom(ctx, client.CreateRoomRequest{Name: name})
		return RoomCreatedMsg{Room: room, Err: err}
	}
}

func (m *OnlineModel) fetchLeaderboard(limit int) tea.Cmd {
	dir := m.directory
	if dir == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), httpTimeout)
		defer cancel()
		entries, err := dir.Leaderboard(ctx, limit)
		return LeaderboardMsg{Entries: entries, Err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func clearAfter(t NotificationType) tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg { return ClearNotificationMsg{Type: t} })
}

// --- Model interface implementation ---

func (m *OnlineModel) Screen() Screen                            { return m.screen }
func (m *OnlineModel) State() *gameClient.GameState              { return m.state }
func (m *OnlineModel) Rooms() []protocol.RoomListItem            { return m.rooms }
func (m *OnlineModel) Leaderboard() []protocol.LeaderboardEntry { return m.leaderboard }
func (m *OnlineModel) Input() *textinput.Model                   { return m.input }
func (m *OnlineModel) PlayerName() string                        { return m.playerName }
func (m *OnlineModel) Latency() int64                            { return m.client.GetLatency() }
func (m *OnlineModel) Now() time.Time                            { return m.now() }
func (m *OnlineModel) Width() int                                { return m.width }
func (m *OnlineModel) Height() int                               { return m.height }

// SetNotification shows a notification; temporary ones clear themselves.
func (m *OnlineModel) SetNotification(t NotificationType, message string, temporary bool) tea.Cmd {
	m.notifications[t] = &SystemNotification{Message: message, Type: t, Temporary: temporary}
	if temporary {
		return clearAfter(t)
	}
	return nil
}

// ClearNotification removes a notification.
func (m *OnlineModel) ClearNotification(t NotificationType) {
	delete(m.notifications, t)
}

// Notification returns the highest priority notification, if any.
func (m *OnlineModel) Notification() *SystemNotification {
	for _, t := range notifyPriority {
		if n, ok := m.notifications[t]; ok {
			return n
		}
	}
	return nil
}

func (m *OnlineModel) playCue(cue gameClient.Cue) {
	switch cue {
	case gameClient.CueRoundStart:
		m.soundManager.Play(sound.RoundStart)
	case gameClient.CueCorrect:
		m.soundManager.Play(sound.Correct)
	case gameClient.CueRoundEnd:
		m.soundManager.Play(sound.RoundEnd)
	case gameClient.CueGameOver:
		m.soundManager.Play(sound.GameOver)
	}
}

func (m *OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(20, msg.Width/2)

	case ConnectedMsg:
		cmds = append(cmds, m.handleConnected()...)

	case ConnectionErrorMsg:
		cmds = append(cmds, m.handleConnectionError(msg))

	case ReconnectingMsg:
		cmds = append(cmds, m.handleReconnecting(msg), m.listenForEvents())

	case ReconnectSuccessMsg:
		cmds = append(cmds, m.handleReconnectSuccess(), m.listenForEvents())

	case AckMsg:
		cmds = append(cmds, m.handleAck(msg), m.listenForEvents())

	case RoomsMsg:
		cmds = append(cmds, m.handleRooms(msg))

	case RoomCreatedMsg:
		cmds = append(cmds, m.handleRoomCreated(msg))

	case LeaderboardMsg:
		cmds = append(cmds, m.handleLeaderboard(msg))

	case ClearNotificationMsg:
		if n, ok := m.notifications[msg.Type]; ok && n.Temporary {
			m.ClearNotification(msg.Type)
		}

	case TickMsg:
		cmds = append(cmds, tick())

	case ServerMessage:
		cmds = append(cmds, m.handleServerMessage(msg.Msg), m.listenForMessages())

	case tea.KeyMsg:
		handled, cmd := m.handleKey(msg)
		if handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	*m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *OnlineModel) View() string {
	var content string
	switch {
	case m.screen == ScreenConnecting:
		content = m.connectingView()
	case m.viewRenderer != nil:
		content = m.viewRenderer(m)
	default:
		content = m.input.View()
	}
	return common.DocStyle.Render(lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Top, content))
}

// SetViewRenderer sets the view renderer function.
func (m *OnlineModel) SetViewRenderer(fn func(Model) string) {
	m.viewRenderer = fn
}

func (m *OnlineModel) connectingView() string {
	text := "🔌 Connecting to " + m.client.ServerURL + " ..."
	if n := m.Notification(); n != nil {
		text += "\n\n" + common.ErrorStyle.Render(n.Message)
	}
	return text
}
