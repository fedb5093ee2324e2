package client

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
)

const (
	maxFeed   = 50 // feed lines kept for display
	maxSketch = 12
)

// TextStroke is the stroke format the terminal client sends: one line of ASCII art
type TextStroke struct {
	Text string `json:"text"`
}

// Cue is a notable moment the UI may react to (sound, flash)
type Cue int

const (
	CueNone Cue = iota
	CueRoundStart
	CueCorrect
	CueRoundEnd
	CueGameOver
)

// FeedEntry is one line of the guess / event feed
type FeedEntry struct {
	PlayerName string
	Text       string
	Correct    bool
	System     bool
}

// GameState manages client-side game state, built purely from server messages
type GameState struct {
	SelfID string

	// Room snapshot
	RoomID   string
	RoomName string
	Settings protocol.RoomSettings
	Phase    protocol.Phase
	Round    int
	DrawerID string
	Players  []protocol.PlayerInfo

	// Round data
	Word        string // only known to the drawer
	WordLength  int
	WordOptions []string
	Deadline    time.Time
	Strokes     int
	Sketch      []string // text strokes of the current round
	Guessed     bool

	Feed []FeedEntry
}

// NewGameState creates a new game state
func NewGameState() *GameState {
	return &GameState{}
}

// Apply updates the state from a server message and reports what happened
func (gs *GameState) Apply(msg *protocol.Message, now time.Time) Cue {
	switch msg.Type {
	case protocol.MsgConnected:
		if p, err := codec.ParsePayload[protocol.ConnectedPayload](msg); err == nil {
			gs.SelfID = p.PlayerID
		}

	case protocol.MsgRoomUpdated:
		if snap, err := codec.ParsePayload[protocol.RoomSnapshot](msg); err == nil {
			gs.ApplySnapshot(*snap)
		}

	case protocol.MsgWordOptions:
		if p, err := codec.ParsePayload[protocol.WordOptionsPayload](msg); err == nil {
			gs.WordOptions = p.Words
			gs.Deadline = now.Add(time.Duration(p.Timeout) * time.Second)
		}

	case protocol.MsgDrawerWord:
		if p, err := codec.ParsePayload[protocol.DrawerWordPayload](msg); err == nil {
			gs.Word = p.Word
			gs.WordOptions = nil
		}

	case protocol.MsgRoundStarted:
		if p, err := codec.ParsePayload[protocol.RoundStartedPayload](msg); err == nil {
			gs.Round = p.Round
			gs.DrawerID = p.CurrentDrawerID
			gs.WordLength = p.WordLength
			gs.Deadline = now.Add(time.Duration(p.Timeout) * time.Second)
			gs.Strokes = 0
			gs.Sketch = nil
			gs.Guessed = false
			gs.addFeed(FeedEntry{System: true, Text: fmt.Sprintf("round %d started, %s is drawing", p.Round, gs.playerName(p.CurrentDrawerID))})
			return CueRoundStart
		}

	case protocol.MsgDrawing:
		gs.Strokes++
		if p, err := codec.ParsePayload[protocol.DrawingPayload](msg); err == nil {
			var stroke TextStroke
			if json.Unmarshal(p.Stroke, &stroke) == nil && stroke.Text != "" {
				gs.AddSketch(stroke.Text)
			}
		}

	case protocol.MsgGuessResult:
		if p, err := codec.ParsePayload[protocol.GuessResultPayload](msg); err == nil {
			if p.Correct {
				if p.PlayerID == gs.SelfID {
					gs.Guessed = true
				}
				gs.addFeed(FeedEntry{PlayerName: p.PlayerName, Correct: true, Text: "guessed the word!"})
				return CueCorrect
			}
			if p.Guess != "" {
				gs.addFeed(FeedEntry{PlayerName: p.PlayerName, Text: p.Guess})
			}
		}

	case protocol.MsgRoundEnded:
		if p, err := codec.ParsePayload[protocol.RoundEndedPayload](msg); err == nil {
			text := "round ended (" + string(p.Reason) + ")"
			if p.Word != "" {
				text += ", the word was " + p.Word
			}
			gs.addFeed(FeedEntry{System: true, Text: text})
			gs.Word = ""
			gs.WordLength = 0
			gs.WordOptions = nil
			gs.Deadline = time.Time{}
			return CueRoundEnd
		}

	case protocol.MsgGameFinished:
		if snap, err := codec.ParsePayload[protocol.RoomSnapshot](msg); err == nil {
			gs.ApplySnapshot(*snap)
		}
		gs.Deadline = time.Time{}
		if leaders := gs.Leaders(); len(leaders) > 0 {
			gs.addFeed(FeedEntry{System: true, Text: fmt.Sprintf("game over, %s wins with %d", leaders[0].Name, leaders[0].Score)})
		}
		return CueGameOver

	case protocol.MsgError:
		if p, err := codec.ParsePayload[protocol.ErrorPayload](msg); err == nil {
			gs.addFeed(FeedEntry{System: true, Text: "error: " + p.Message})
		}
	}
	return CueNone
}

// ApplySnapshot replaces room-level fields from a snapshot
func (gs *GameState) ApplySnapshot(snap protocol.RoomSnapshot) {
	gs.RoomID = snap.ID
	gs.RoomName = snap.Name
	gs.Settings = snap.Settings
	gs.Phase = snap.Phase
	gs.Round = snap.Round
	gs.Players = snap.Players
	gs.DrawerID = ""
	if snap.CurrentDrawerID != nil {
		gs.DrawerID = *snap.CurrentDrawerID
	}
	if snap.CurrentWord != nil {
		gs.Word = *snap.CurrentWord
	}
	if snap.Phase != protocol.PhaseChoosing {
		gs.WordOptions = nil
	}
	if snap.Phase == protocol.PhaseWaiting {
		gs.Word = ""
		gs.WordLength = 0
		gs.Deadline = time.Time{}
	}
}

// IsDrawer reports whether this client is the current drawer
func (gs *GameState) IsDrawer() bool {
	return gs.SelfID != "" && gs.DrawerID == gs.SelfID
}

// Leaders returns players ordered by score, ties keep join order
func (gs *GameState) Leaders() []protocol.PlayerInfo {
	leaders := slices.Clone(gs.Players)
	slices.SortStableFunc(leaders, func(a, b protocol.PlayerInfo) int { return b.Score - a.Score })
	return leaders
}

// Hint renders the word mask shown to guessers, e.g. "_ _ _ _ _"
func (gs *GameState) Hint() string {
	if gs.Word != "" {
		return gs.Word
	}
	if gs.WordLength == 0 {
		return ""
	}
	return strings.TrimSpace(strings.Repeat("_ ", gs.WordLength))
}

// Remaining returns the time left on the current deadline
func (gs *GameState) Remaining(now time.Time) time.Duration {
	if gs.Deadline.IsZero() || now.After(gs.Deadline) {
		return 0
	}
	return gs.Deadline.Sub(now)
}

// Reset clears all room state, keeping the player identity
func (gs *GameState) Reset() {
	*gs = GameState{SelfID: gs.SelfID}
}

// AddSketch appends a line to the sketch, keeping the latest lines only
func (gs *GameState) AddSketch(line string) {
	gs.Sketch = append(gs.Sketch, line)
	if len(gs.Sketch) > maxSketch {
		gs.Sketch = gs.Sketch[len(gs.Sketch)-maxSketch:]
	}
}

func (gs *GameState) playerName(id string) string {
	for _, p := range gs.Players {
		if p.ID == id {
			return p.Name
		}
	}
	return "someone"
}

func (gs *GameState) addFeed(e FeedEntry) {
	gs.Feed = append(gs.Feed, e)
	if len(gs.Feed) > maxFeed {
		gs.Feed = gs.Feed[len(gs.Feed)-maxFeed:]
	}
}
