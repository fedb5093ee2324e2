package model

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
)

func newTestModel(t *testing.T) *OnlineModel {
	t.Helper()
	m := NewOnlineModel("ws://127.0.0.1:1/ws")
	fixed := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return fixed }
	t.Cleanup(m.shutdown)
	return m
}

func enter(m *OnlineModel, line string) tea.Cmd {
	m.input.SetValue(line)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func joinAck(m *OnlineModel, players ...protocol.PlayerInfo) {
	m.Update(AckMsg{Request: protocol.MsgJoinRoom, Ack: protocol.AckPayload{Room: &protocol.RoomSnapshot{
		ID:       "r1",
		Name:     "Sketchy",
		Settings: protocol.RoomSettings{MaxRounds: 3},
		Phase:    protocol.PhaseWaiting,
		Players:  players,
	}}})
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want Command
	}{
		{"hello world", Command{Text: "hello world"}},
		{"  spaced  ", Command{Text: "spaced"}},
		{"/ready", Command{Name: "ready", Args: []string{}, Text: ""}},
		{"/JOIN abc Bob", Command{Name: "join", Args: []string{"abc", "Bob"}, Text: "abc Bob"}},
		{"/draw   /\\  ", Command{Name: "draw", Args: []string{"/\\"}, Text: "/\\"}},
		{"", Command{}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseCommand(tt.line))
		})
	}
}

func TestOnlineModel_StartsConnecting(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	assert.Equal(t, ScreenConnecting, m.Screen())
	assert.Contains(t, m.View(), "Connecting to ws://127.0.0.1:1/ws")

	m.Update(ConnectionErrorMsg{Err: assert.AnError})
	require.NotNil(t, m.Notification())
	assert.Contains(t, m.Notification().Message, "connection failed")
	assert.False(t, m.Notification().Temporary)
}

func TestOnlineModel_JoinAndLeaveAcks(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m.screen = ScreenLobby

	joinAck(m, protocol.PlayerInfo{ID: "me", Name: "Me"})
	assert.Equal(t, ScreenRoom, m.Screen())
	assert.Equal(t, "r1", m.State().RoomID)
	assert.Equal(t, "Sketchy", m.State().RoomName)
	require.Len(t, m.State().Players, 1)

	m.Update(AckMsg{Request: protocol.MsgLeaveRoom})
	assert.Equal(t, ScreenLobby, m.Screen())
	assert.Empty(t, m.State().RoomID)
}

func TestOnlineModel_ErrorAckNotifies(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m.screen = ScreenLobby

	m.Update(AckMsg{Request: protocol.MsgJoinRoom, Ack: protocol.AckPayload{
		Error: &protocol.ErrorPayload{Code: protocol.ErrCodeRoomNotFound, Message: "房间不存在"},
	}})
	assert.Equal(t, ScreenLobby, m.Screen())
	require.NotNil(t, m.Notification())
	assert.Equal(t, NotifyError, m.Notification().Type)
	assert.Contains(t, m.Notification().Message, "房间不存在")

	m.Update(ClearNotificationMsg{Type: NotifyError})
	assert.Nil(t, m.Notification())
}

func TestOnlineModel_LobbyCommands(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m.screen = ScreenLobby

	enter(m, "/name Bob")
	assert.Equal(t, "Bob", m.PlayerName())
	assert.Empty(t, m.input.Value())

	enter(m, "/name")
	assert.Equal(t, "Bob", m.PlayerName())
	assert.Contains(t, m.Notification().Message, "usage: /name")

	enter(m, "/bogus")
	assert.Contains(t, m.Notification().Message, "unknown command /bogus")

	enter(m, "/top zero")
	assert.Contains(t, m.Notification().Message, "usage: /top")

	m.Update(RoomsMsg{Rooms: []protocol.RoomListItem{{ID: "aaa", Name: "A"}, {ID: "bbb", Name: "B"}}})
	assert.Len(t, m.Rooms(), 2)
	assert.Equal(t, "bbb", m.resolveRoom("2"))
	assert.Equal(t, "zzz", m.resolveRoom("zzz"))
	assert.Equal(t, "3", m.resolveRoom("3"))
}

func TestOnlineModel_RoomActionsWithoutServerRoom(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m.screen = ScreenRoom

	// The network client only learns its room from a join ack, so sends fail locally.
	enter(m, "/ready")
	require.NotNil(t, m.Notification())
	assert.Contains(t, m.Notification().Message, "not in a room")
}

func TestOnlineModel_DrawerChoosesAndDraws(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m.screen = ScreenLobby
	m.Update(ServerMessage{Msg: codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{PlayerID: "me"})})
	joinAck(m, protocol.PlayerInfo{ID: "me", Name: "Me"}, protocol.PlayerInfo{ID: "p2", Name: "P2"})

	drawer := "me"
	m.Update(ServerMessage{Msg: codec.MustNewMessage(protocol.MsgRoomUpdated, protocol.RoomSnapshot{
		ID: "r1", Name: "Sketchy", Phase: protocol.PhaseChoosing, Round: 1, CurrentDrawerID: &drawer,
		Players: []protocol.PlayerInfo{{ID: "me", Name: "Me"}, {ID: "p2", Name: "P2"}},
	})})
	m.Update(ServerMessage{Msg: codec.MustNewMessage(protocol.MsgWordOptions, protocol.WordOptionsPayload{
		Words: []string{"apple", "river"}, Timeout: 15,
	})})

	require.True(t, m.State().IsDrawer())
	assert.Equal(t, "river", m.resolveWord("2"))
	assert.Equal(t, "dragon", m.resolveWord("dragon"))
	assert.Equal(t, "apple", m.resolveWord(" 1 "))

	enter(m, "/draw ~~~")
	assert.Contains(t, m.Notification().Message, "only the drawer can draw")
	assert.Empty(t, m.State().Sketch)
}

func TestOnlineModel_Maintenance(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m.screen = ScreenLobby
	m.SetNotification(NotifyInfo, "hello", true)

	m.Update(ServerMessage{Msg: codec.NewErrorMessageWithText(protocol.ErrCodeServerMaintenance, "服务器维护中")})
	n := m.Notification()
	require.NotNil(t, n)
	assert.Equal(t, NotifyMaintenance, n.Type)
	assert.False(t, n.Temporary)

	// Persistent notifications ignore clear ticks
	m.Update(ClearNotificationMsg{Type: NotifyMaintenance})
	assert.Equal(t, NotifyMaintenance, m.Notification().Type)
}

func TestOnlineModel_Reconnect(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m.screen = ScreenRoom
	m.State().RoomID = "r1"

	m.Update(ReconnectingMsg{Attempt: 2, MaxTries: 5})
	assert.Equal(t, "🔄 reconnecting (2/5)...", m.Notification().Message)

	m.Update(ReconnectSuccessMsg{})
	assert.Equal(t, NotifyReconnectSuccess, m.Notification().Type)
	assert.Equal(t, ScreenLobby, m.Screen())
	assert.Empty(t, m.State().RoomID)
}

func TestOnlineModel_LeaderboardScreen(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m.screen = ScreenLobby

	m.Update(LeaderboardMsg{Entries: []protocol.LeaderboardEntry{{Rank: 1, PlayerName: "Alice", Score: 300}}})
	assert.Equal(t, ScreenLeaderboard, m.Screen())
	require.Len(t, m.Leaderboard(), 1)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ScreenLobby, m.Screen())
}

func TestOnlineModel_HelpDependsOnScreen(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m.screen = ScreenLobby
	enter(m, "/help")
	assert.Equal(t, lobbyHelp, m.Notification().Message)

	m.screen = ScreenRoom
	enter(m, "/?")
	assert.Equal(t, roomHelp, m.Notification().Message)
}
