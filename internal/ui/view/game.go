package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	gameClient "github.com/palemoky/draw-and-guess/internal/client"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/ui/common"
	"github.com/palemoky/draw-and-guess/internal/ui/model"
)

const feedLines = 10

// RoomView renders the room: header, players, canvas and feed.
func RoomView(m model.Model) string {
	state := m.State()

	var sb strings.Builder
	sb.WriteString(centered(m.Width(), common.TitleStyle("🏠 "+state.RoomName)))
	sb.WriteString("\n")
	sb.WriteString(centered(m.Width(), header(state, m)))
	sb.WriteString("\n\n")

	left := PlayersView(state)
	right := CanvasView(state)
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))
	sb.WriteString("\n")
	sb.WriteString(FeedView(state))
	return sb.String()
}

func header(state *gameClient.GameState, m model.Model) string {
	switch state.Phase {
	case protocol.PhaseWaiting:
		return "Waiting for players: /ready, then /start"
	case protocol.PhaseFinished:
		return "Game over: /ready to play again"
	}

	parts := []string{fmt.Sprintf("Round %d/%d", state.Round, state.Settings.MaxRounds)}
	switch state.Phase {
	case protocol.PhaseChoosing:
		if state.IsDrawer() {
			parts = append(parts, "choose a word")
		} else {
			parts = append(parts, "drawer is choosing")
		}
	case protocol.PhaseDrawing:
		if hint := state.Hint(); hint != "" {
			parts = append(parts, common.HintStyle.Render(hint))
		}
	case protocol.PhaseIntermission:
		parts = append(parts, "next round soon")
	}
	if left := state.Remaining(m.Now()); left > 0 {
		parts = append(parts, "⏱ "+common.FormatCountdown(left))
	}
	return strings.Join(parts, "   ")
}

// PlayersView renders the scoreboard in join order.
func PlayersView(state *gameClient.GameState) string {
	var sb strings.Builder
	sb.WriteString("Players:\n")
	for _, p := range state.Players {
		mark := "  "
		switch {
		case p.ID == state.DrawerID && state.Phase.IsActive():
			mark = common.DrawerIcon
		case state.Phase == protocol.PhaseWaiting || state.Phase == protocol.PhaseFinished:
			mark = common.WaitIcon
			if p.Ready {
				mark = common.ReadyIcon
			}
		}
		name := common.Truncate(p.Name, 16)
		if p.ID == state.SelfID {
			name += " (you)"
		}
		fmt.Fprintf(&sb, "%s %-22s %5d\n", mark, name, p.Score)
	}
	return common.BoxStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

// CanvasView renders the drawer's word options or the shared sketch.
func CanvasView(state *gameClient.GameState) string {
	if state.IsDrawer() && len(state.WordOptions) > 0 {
		var sb strings.Builder
		sb.WriteString("Pick a word (/choose #):\n")
		for i, w := range state.WordOptions {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, w)
		}
		return common.SketchStyle.Render(strings.TrimRight(sb.String(), "\n"))
	}

	if len(state.Sketch) == 0 {
		text := "(empty canvas)"
		if state.IsDrawer() && state.Phase == protocol.PhaseDrawing {
			text = "Draw with /draw <text>, one line at a time"
		} else if state.Strokes > 0 {
			text = fmt.Sprintf("(%d strokes)", state.Strokes)
		}
		return common.SketchStyle.Render(common.DimStyle.Render(text))
	}
	return common.SketchStyle.Render(strings.Join(state.Sketch, "\n"))
}

// FeedView renders the latest guesses and room events.
func FeedView(state *gameClient.GameState) string {
	feed := state.Feed
	if len(feed) > feedLines {
		feed = feed[len(feed)-feedLines:]
	}

	var lines []string
	for _, e := range feed {
		switch {
		case e.System:
			lines = append(lines, common.SystemStyle.Render("• "+e.Text))
		case e.Correct:
			lines = append(lines, common.CorrectStyle.Render(common.GuessedIcon+" "+e.PlayerName+" "+e.Text))
		default:
			lines = append(lines, e.PlayerName+": "+e.Text)
		}
	}
	return strings.Join(lines, "\n")
}
