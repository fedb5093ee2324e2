package view

import (
	"fmt"
	"strings"

	"github.com/palemoky/draw-and-guess/internal/ui/common"
	"github.com/palemoky/draw-and-guess/internal/ui/model"
)

// LobbyView renders the room directory.
func LobbyView(m model.Model) string {
	var sb strings.Builder
	sb.WriteString(centered(m.Width(), common.TitleStyle("🎨 Draw & Guess")))
	sb.WriteString("\n\n")

	rooms := m.Rooms()
	if len(rooms) == 0 {
		sb.WriteString(common.SystemStyle.Render("No rooms yet. /create one!"))
		return sb.String()
	}

	var list strings.Builder
	list.WriteString("Rooms:\n")
	for i, r := range rooms {
		fmt.Fprintf(&list, "%2d. %-24s %-9s %d players  round %d/%d\n",
			i+1, common.Truncate(r.Name, 24), r.Phase, r.PlayerCount, r.Round, r.MaxRounds)
	}
	sb.WriteString(common.BoxStyle.Render(strings.TrimRight(list.String(), "\n")))
	sb.WriteString("\n")
	sb.WriteString(common.DimStyle.Render("/join <#> to enter a room, /rooms to refresh"))
	return sb.String()
}

// LeaderboardView renders the all-time leaderboard.
func LeaderboardView(m model.Model) string {
	var sb strings.Builder
	sb.WriteString(centered(m.Width(), common.TitleStyle("🏆 Leaderboard")))
	sb.WriteString("\n\n")

	entries := m.Leaderboard()
	if len(entries) == 0 {
		sb.WriteString(common.SystemStyle.Render("No games recorded yet."))
		return sb.String()
	}

	var list strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&list, "%2d. %-20s %6d pts  %3d games\n",
			e.Rank, common.Truncate(e.PlayerName, 20), e.Score, e.Games)
	}
	sb.WriteString(common.BoxStyle.Render(strings.TrimRight(list.String(), "\n")))
	sb.WriteString("\n")
	sb.WriteString(common.DimStyle.Render("esc or /back to return"))
	return sb.String()
}
