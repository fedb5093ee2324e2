// Package common provides shared styles and utilities for the UI.
package common

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Icon constants
const (
	DrawerIcon  = "✏️"
	GuessedIcon = "✅"
	ReadyIcon   = "✅"
	WaitIcon    = "❌"
)

// Lipgloss Styles
var (
	DocStyle     = lipgloss.NewStyle().Margin(1, 2)
	TitleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	BoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	PromptStyle  = lipgloss.NewStyle().MarginTop(1)
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	SystemStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	CorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	HintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Bold(true)
	DimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	SketchStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")).Width(40)
)

// FormatCountdown renders a duration as m:ss, rounding up partial seconds
func FormatCountdown(d time.Duration) string {
	if d <= 0 {
		return "0:00"
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// Truncate shortens s to n runes, marking the cut with "…"
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
