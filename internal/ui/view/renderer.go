// Package view provides UI rendering functions.
package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/draw-and-guess/internal/ui/common"
	"github.com/palemoky/draw-and-guess/internal/ui/model"
)

// Render is the view renderer injected into OnlineModel.
func Render(m model.Model) string {
	var body string
	switch m.Screen() {
	case model.ScreenLobby:
		body = LobbyView(m)
	case model.ScreenLeaderboard:
		body = LeaderboardView(m)
	case model.ScreenRoom:
		body = RoomView(m)
	default:
		body = "Unknown screen"
	}

	var sb strings.Builder
	sb.WriteString(body)
	sb.WriteString("\n")
	if n := notification(m); n != "" {
		sb.WriteString("\n" + n + "\n")
	}
	sb.WriteString(common.PromptStyle.Render(m.Input().View()))
	sb.WriteString("\n")
	sb.WriteString(statusBar(m))
	return sb.String()
}

func notification(m model.Model) string {
	n := m.Notification()
	if n == nil {
		return ""
	}
	switch n.Type {
	case model.NotifyError, model.NotifyMaintenance, model.NotifyReconnecting:
		return common.ErrorStyle.Render(n.Message)
	default:
		return common.SystemStyle.Render(n.Message)
	}
}

func statusBar(m model.Model) string {
	parts := []string{"👤 " + m.PlayerName()}
	if ms := m.Latency(); ms > 0 {
		parts = append(parts, fmt.Sprintf("📶 %dms", ms))
	}
	parts = append(parts, "/help", "ctrl+c quit")
	return common.DimStyle.Render(strings.Join(parts, "  ·  "))
}

func centered(width int, s string) string {
	if width <= 0 {
		return s
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}
