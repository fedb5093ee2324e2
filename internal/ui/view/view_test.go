package view

import (
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/stretchr/testify/assert"

	gameClient "github.com/palemoky/draw-and-guess/internal/client"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/ui/model"
)

var now = time.Unix(1_700_000_000, 0)

type stubModel struct {
	screen       model.Screen
	state        *gameClient.GameState
	rooms        []protocol.RoomListItem
	leaderboard  []protocol.LeaderboardEntry
	input        textinput.Model
	notification *model.SystemNotification
}

func newStub(screen model.Screen) *stubModel {
	return &stubModel{screen: screen, state: gameClient.NewGameState(), input: textinput.New()}
}

func (s *stubModel) Screen() model.Screen                      { return s.screen }
func (s *stubModel) State() *gameClient.GameState              { return s.state }
func (s *stubModel) Rooms() []protocol.RoomListItem            { return s.rooms }
func (s *stubModel) Leaderboard() []protocol.LeaderboardEntry { return s.leaderboard }
func (s *stubModel) Input() *textinput.Model                   { return &s.input }
func (s *stubModel) Notification() *model.SystemNotification  { return s.notification }
func (s *stubModel) PlayerName() string                        { return "Tester" }
func (s *stubModel) Latency() int64                            { return 42 }
func (s *stubModel) Now() time.Time                            { return now }
func (s *stubModel) Width() int                                { return 0 }
func (s *stubModel) Height() int                               { return 0 }

func TestLobbyView(t *testing.T) {
	t.Parallel()

	m := newStub(model.ScreenLobby)
	assert.Contains(t, Render(m), "No rooms yet")

	m.rooms = []protocol.RoomListItem{
		{ID: "a", Name: "Doodlers", Phase: protocol.PhaseWaiting, PlayerCount: 2, MaxRounds: 3},
		{ID: "b", Name: "Artists", Phase: protocol.PhaseDrawing, PlayerCount: 4, Round: 2, MaxRounds: 5},
	}
	out := Render(m)
	assert.Contains(t, out, " 1. Doodlers")
	assert.Contains(t, out, " 2. Artists")
	assert.Contains(t, out, "round 2/5")
	assert.Contains(t, out, "👤 Tester")
	assert.Contains(t, out, "📶 42ms")
}

func TestLeaderboardView(t *testing.T) {
	t.Parallel()

	m := newStub(model.ScreenLeaderboard)
	assert.Contains(t, Render(m), "No games recorded yet")

	m.leaderboard = []protocol.LeaderboardEntry{{Rank: 1, PlayerName: "Alice", Score: 350, Games: 2}}
	out := Render(m)
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "350 pts")
}

func TestRoomView_Waiting(t *testing.T) {
	t.Parallel()

	m := newStub(model.ScreenRoom)
	m.state.SelfID = "me"
	m.state.ApplySnapshot(protocol.RoomSnapshot{
		ID: "r1", Name: "Sketchy", Phase: protocol.PhaseWaiting,
		Players: []protocol.PlayerInfo{{ID: "me", Name: "Me", Ready: true}, {ID: "p2", Name: "Bob"}},
	})

	out := Render(m)
	assert.Contains(t, out, "Sketchy")
	assert.Contains(t, out, "/ready, then /start")
	assert.Contains(t, out, "Me (you)")
	assert.Contains(t, out, "Bob")
}

func TestRoomView_GuesserSeesHint(t *testing.T) {
	t.Parallel()

	m := newStub(model.ScreenRoom)
	m.state.SelfID = "me"
	drawer := "p2"
	m.state.ApplySnapshot(protocol.RoomSnapshot{
		ID: "r1", Name: "Sketchy", Phase: protocol.PhaseDrawing, Round: 1, CurrentDrawerID: &drawer,
		Settings: protocol.RoomSettings{MaxRounds: 3},
		Players:  []protocol.PlayerInfo{{ID: "me", Name: "Me"}, {ID: "p2", Name: "Bob", Score: 50}},
	})
	m.state.WordLength = 5
	m.state.Deadline = now.Add(75 * time.Second)
	m.state.AddSketch(" /\\_/\\ ")
	m.state.Feed = []gameClient.FeedEntry{
		{PlayerName: "Me", Text: "cat?"},
		{PlayerName: "Carol", Text: "guessed the word!", Correct: true},
		{System: true, Text: "round 1 started"},
	}

	out := Render(m)
	assert.Contains(t, out, "Round 1/3")
	assert.Contains(t, out, "_ _ _ _ _")
	assert.Contains(t, out, "1:15")
	assert.Contains(t, out, `/\_/\`)
	assert.Contains(t, out, "Me: cat?")
	assert.Contains(t, out, "Carol guessed the word!")
	assert.Contains(t, out, "round 1 started")
}

func TestRoomView_DrawerSeesOptions(t *testing.T) {
	t.Parallel()

	m := newStub(model.ScreenRoom)
	m.state.SelfID = "me"
	drawer := "me"
	m.state.ApplySnapshot(protocol.RoomSnapshot{
		ID: "r1", Name: "Sketchy", Phase: protocol.PhaseChoosing, Round: 1, CurrentDrawerID: &drawer,
		Players: []protocol.PlayerInfo{{ID: "me", Name: "Me"}},
	})
	m.state.WordOptions = []string{"apple", "river"}

	out := Render(m)
	assert.Contains(t, out, "choose a word")
	assert.Contains(t, out, "1. apple")
	assert.Contains(t, out, "2. river")
}

func TestRender_Notification(t *testing.T) {
	t.Parallel()

	m := newStub(model.ScreenLobby)
	m.notification = &model.SystemNotification{Type: model.NotifyError, Message: "❌ 房间不存在"}
	assert.Contains(t, Render(m), "房间不存在")
}
