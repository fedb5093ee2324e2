package model

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
)

func (m *OnlineModel) handleConnected() []tea.Cmd {
	m.screen = ScreenLobby
	m.ClearNotification(NotifyError)
	m.client.StartHeartbeat()
	return []tea.Cmd{m.listenForMessages(), m.fetchRooms()}
}

func (m *OnlineModel) handleConnectionError(msg ConnectionErrorMsg) tea.Cmd {
	if m.screen == ScreenConnecting {
		return m.SetNotification(NotifyError, fmt.Sprintf("❌ connection failed: %v (ctrl+c to quit)", msg.Err), false)
	}
	if m.client.IsReconnecting() {
		return nil
	}
	return m.SetNotification(NotifyError, fmt.Sprintf("❌ disconnected: %v", msg.Err), false)
}

func (m *OnlineModel) handleReconnecting(msg ReconnectingMsg) tea.Cmd {
	return m.SetNotification(NotifyReconnecting,
		fmt.Sprintf("🔄 reconnecting (%d/%d)...", msg.Attempt, msg.MaxTries), false)
}

func (m *OnlineModel) handleReconnectSuccess() tea.Cmd {
	m.ClearNotification(NotifyReconnecting)
	m.ClearNotification(NotifyError)
	// The client rejoins the last room on its own; the join ack moves us back in.
	m.state.Reset()
	m.screen = ScreenLobby
	return m.SetNotification(NotifyReconnectSuccess, "✅ reconnected", true)
}

func (m *OnlineModel) handleAck(msg AckMsg) tea.Cmd {
	if msg.Ack.Error != nil {
		return m.SetNotification(NotifyError, "❌ "+msg.Ack.Error.Message, true)
	}

	switch msg.Request {
	case protocol.MsgJoinRoom:
		m.state.Reset()
		if msg.Ack.Room != nil {
			m.state.ApplySnapshot(*msg.Ack.Room)
		}
		m.screen = ScreenRoom
		return m.SetNotification(NotifyInfo, "🏠 joined "+m.state.RoomName+", /ready when you are", true)

	case protocol.MsgLeaveRoom:
		m.state.Reset()
		m.screen = ScreenLobby
		return m.fetchRooms()
	}
	return nil
}

func (m *OnlineModel) handleRooms(msg RoomsMsg) tea.Cmd {
	if msg.Err != nil {
		return m.SetNotification(NotifyError, "❌ room list: "+msg.Err.Error(), true)
	}
	m.rooms = msg.Rooms
	return nil
}

func (m *OnlineModel) handleRoomCreated(msg RoomCreatedMsg) tea.Cmd {
	if msg.Err != nil {
		return m.SetNotification(NotifyError, "❌ create room: "+msg.Err.Error(), true)
	}
	return m.join(msg.Room.ID)
}

func (m *OnlineModel) handleLeaderboard(msg LeaderboardMsg) tea.Cmd {
	if msg.Err != nil {
		return m.SetNotification(NotifyError, "❌ leaderboard: "+msg.Err.Error(), true)
	}
	m.leaderboard = msg.Entries
	m.screen = ScreenLeaderboard
	return nil
}

func (m *OnlineModel) handleServerMessage(msg *protocol.Message) tea.Cmd {
	m.playCue(m.state.Apply(msg, m.now()))

	switch msg.Type {
	case protocol.MsgError:
		p, err := codec.ParsePayload[protocol.ErrorPayload](msg)
		if err != nil {
			return nil
		}
		if p.Code == protocol.ErrCodeServerMaintenance {
			return m.SetNotification(NotifyMaintenance, "🔧 "+p.Message, false)
		}
		return m.SetNotification(NotifyError, "❌ "+p.Message, true)

	case protocol.MsgGameFinished:
		return m.SetNotification(NotifyInfo, "🏁 game over, /ready to play again", true)
	}
	return nil
}

func (m *OnlineModel) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.shutdown()
		return true, tea.Quit

	case tea.KeyEsc:
		if m.screen == ScreenLeaderboard {
			m.screen = ScreenLobby
			return true, nil
		}

	case tea.KeyEnter:
		line := m.input.Value()
		m.input.Reset()
		return true, m.execute(line)
	}
	return false, nil
}

func (m *OnlineModel) shutdown() {
	m.soundManager.Close()
	m.client.Close()
}
