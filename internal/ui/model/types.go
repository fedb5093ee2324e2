// Package model defines the core types and interfaces for the UI.
package model

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"

	gameClient "github.com/palemoky/draw-and-guess/internal/client"
	"github.com/palemoky/draw-and-guess/internal/protocol"
)

// Screen is the top-level screen being shown.
type Screen int

const (
	ScreenConnecting Screen = iota
	ScreenLobby
	ScreenLeaderboard
	ScreenRoom
)

// NotificationType represents types of system notifications.
type NotificationType int

const (
	NotifyError            NotificationType = iota // 错误信息（临时）
	NotifyInfo                                     // 普通提示（临时）
	NotifyReconnecting                             // 重连中（持久）
	NotifyReconnectSuccess                         // 重连成功（临时）
	NotifyMaintenance                              // 维护通知（持久）
)

// notifyPriority orders notifications, persistent ones first.
var notifyPriority = []NotificationType{
	NotifyMaintenance,
	NotifyReconnecting,
	NotifyError,
	NotifyReconnectSuccess,
	NotifyInfo,
}

// SystemNotification represents a system notification.
type SystemNotification struct {
	Message   string
	Type      NotificationType
	Temporary bool // 是否为临时通知（3秒后自动消失）
}

// --- Tea Messages ---

// ServerMessage wraps a protocol message for tea.Msg.
type ServerMessage struct {
	Msg *protocol.Message
}

// ConnectedMsg indicates successful connection.
type ConnectedMsg struct{}

// ConnectionErrorMsg indicates a connection error.
type ConnectionErrorMsg struct {
	Err error
}

// ReconnectingMsg indicates reconnection in progress.
type ReconnectingMsg struct {
	Attempt  int
	MaxTries int
}

// ReconnectSuccessMsg indicates successful reconnection.
type ReconnectSuccessMsg struct{}

// AckMsg carries the server's answer to one of our requests.
type AckMsg struct {
	Request protocol.MessageType
	Ack     protocol.AckPayload
}

// RoomsMsg carries the result of a room directory fetch.
type RoomsMsg struct {
	Rooms []protocol.RoomListItem
	Err   error
}

// RoomCreatedMsg carries the result of creating a room over HTTP.
type RoomCreatedMsg struct {
	Room *protocol.RoomSnapshot
	Err  error
}

// LeaderboardMsg carries the result of a leaderboard fetch.
type LeaderboardMsg struct {
	Entries []protocol.LeaderboardEntry
	Err     error
}

// TickMsg drives the countdown display.
type TickMsg time.Time

// ClearNotificationMsg clears a temporary notification.
type ClearNotificationMsg struct {
	Type NotificationType
}

// Model is the read-only view of OnlineModel used by the view package.
type Model interface {
	Screen() Screen
	State() *gameClient.GameState
	Rooms() []protocol.RoomListItem
	Leaderboard() []protocol.LeaderboardEntry
	Input() *textinput.Model
	Notification() *SystemNotification
	PlayerName() string
	Latency() int64
	Now() time.Time
	Width() int
	Height() int
}
