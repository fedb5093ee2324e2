package model

import (
	"encoding/json"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	gameClient "github.com/palemoky/draw-and-guess/internal/client"
	"github.com/palemoky/draw-and-guess/internal/protocol"
)

// Command is one parsed line of input. Plain text has an empty Name.
type Command struct {
	Name string
	Args []string
	Text string // everything after the command name
}

// ParseCommand splits "/join abc Bob" into a command name and arguments.
func ParseCommand(line string) Command {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return Command{Text: line}
	}
	name, rest, _ := strings.Cut(line[1:], " ")
	rest = strings.TrimSpace(rest)
	return Command{
		Name: strings.ToLower(name),
		Args: strings.Fields(rest),
		Text: rest,
	}
}

const (
	lobbyHelp = "/name <name>  /rooms  /create [room name]  /join <id|#>  /top [n]  /quit"
	roomHelp  = "/ready  /unready  /start  /choose <#|word>  /draw <text>  /skip  /leave  /quit, other text is a guess"
)

func (m *OnlineModel) execute(line string) tea.Cmd {
	cmd := ParseCommand(line)
	if cmd.Name == "" && cmd.Text == "" {
		return nil
	}

	switch cmd.Name {
	case "help", "h", "?":
		if m.screen == ScreenRoom {
			return m.SetNotification(NotifyInfo, roomHelp, true)
		}
		return m.SetNotification(NotifyInfo, lobbyHelp, true)
	case "quit", "q":
		m.shutdown()
		return tea.Quit
	}

	switch m.screen {
	case ScreenRoom:
		return m.executeRoom(cmd)
	case ScreenLobby, ScreenLeaderboard:
		return m.executeLobby(cmd)
	}
	return nil
}

func (m *OnlineModel) executeLobby(cmd Command) tea.Cmd {
	switch cmd.Name {
	case "name", "n":
		name := strings.TrimSpace(cmd.Text)
		if name == "" {
			return m.SetNotification(NotifyError, "usage: /name <name>", true)
		}
		m.playerName = name
		return m.SetNotification(NotifyInfo, "👤 you are now "+name, true)

	case "rooms", "r", "back":
		m.screen = ScreenLobby
		return m.fetchRooms()

	case "create", "c":
		return m.createRoom(cmd.Text)

	case "join", "j":
		if len(cmd.Args) == 0 {
			return m.SetNotification(NotifyError, "usage: /join <id|#>", true)
		}
		return m.join(m.resolveRoom(cmd.Args[0]))

	case "top", "leaderboard":
		limit := leaderboardLimit
		if len(cmd.Args) > 0 {
			n, err := strconv.Atoi(cmd.Args[0])
			if err != nil || n < 1 {
				return m.SetNotification(NotifyError, "usage: /top [n]", true)
			}
			limit = n
		}
		return m.fetchLeaderboard(limit)

	case "":
		return m.SetNotification(NotifyInfo, "join a room first, /help for commands", true)
	}
	return m.SetNotification(NotifyError, "unknown command /"+cmd.Name, true)
}

func (m *OnlineModel) executeRoom(cmd Command) tea.Cmd {
	switch cmd.Name {
	case "":
		if m.state.IsDrawer() && m.state.Phase == protocol.PhaseChoosing {
			return m.report(m.client.ChooseWord(m.resolveWord(cmd.Text)))
		}
		return m.report(m.client.Guess(cmd.Text))

	case "ready":
		return m.report(m.client.SetReady(true))

	case "unready":
		return m.report(m.client.SetReady(false))

	case "start":
		return m.report(m.client.StartGame())

	case "choose", "c":
		if cmd.Text == "" {
			return m.SetNotification(NotifyError, "usage: /choose <#|word>", true)
		}
		return m.report(m.client.ChooseWord(m.resolveWord(cmd.Text)))

	case "skip":
		return m.report(m.client.SkipTurn())

	case "draw", "d":
		return m.draw(cmd.Text)

	case "leave", "l":
		return m.report(m.client.LeaveRoom())
	}
	return m.SetNotification(NotifyError, "unknown command /"+cmd.Name, true)
}

// draw sends one line of ASCII art as a stroke; the server does not echo it back to us.
func (m *OnlineModel) draw(text string) tea.Cmd {
	if text == "" {
		return m.SetNotification(NotifyError, "usage: /draw <text>", true)
	}
	if !m.state.IsDrawer() || m.state.Phase != protocol.PhaseDrawing {
		return m.SetNotification(NotifyError, "only the drawer can draw right now", true)
	}
	stroke, err := json.Marshal(gameClient.TextStroke{Text: text})
	if err != nil {
		return m.SetNotification(NotifyError, "❌ "+err.Error(), true)
	}
	if err := m.client.Stroke(stroke); err != nil {
		return m.SetNotification(NotifyError, "❌ "+err.Error(), true)
	}
	m.state.AddSketch(text)
	return nil
}

func (m *OnlineModel) join(roomID string) tea.Cmd {
	return m.report(m.client.JoinRoom(roomID, m.playerName))
}

// resolveRoom maps a 1-based index from the room list to its id.
func (m *OnlineModel) resolveRoom(arg string) string {
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(m.rooms) {
		return m.rooms[n-1].ID
	}
	return arg
}

// resolveWord maps a 1-based index from the word options to the word.
func (m *OnlineModel) resolveWord(arg string) string {
	arg = strings.TrimSpace(arg)
	options := m.state.WordOptions
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(options) {
		return options[n-1]
	}
	return arg
}

// report turns a failed send into an error notification; the ack reports everything else.
func (m *OnlineModel) report(_ uint64, err error) tea.Cmd {
	if err != nil {
		return m.SetNotification(NotifyError, "❌ "+err.Error(), true)
	}
	return nil
}
