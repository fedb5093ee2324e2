package protocol

import "encoding/json"

// Phase 房间阶段
type Phase string

const (
	PhaseWaiting      Phase = "waiting"
	PhaseChoosing     Phase = "choosing"
	PhaseDrawing      Phase = "drawing"
	PhaseIntermission Phase = "intermission"
	PhaseFinished     Phase = "finished"
)

// IsActive 游戏是否进行中
func (p Phase) IsActive() bool {
	return p == PhaseChoosing || p == PhaseDrawing || p == PhaseIntermission
}

// RoundEndReason 回合提前结束的原因
type RoundEndReason string

const (
	ReasonTimeout    RoundEndReason = "timeout"
	ReasonAllGuessed RoundEndReason = "all_guessed"
	ReasonSkipped    RoundEndReason = "skipped"
	ReasonDrawerLeft RoundEndReason = "drawer_left"
)

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// JoinRoomPayload 加入房间请求
type JoinRoomPayload struct {
	RoomID     string `json:"room_id"`
	PlayerName string `json:"player_name"`
}

// RoomPayload 只携带房间号的请求（leave/start/skip）
type RoomPayload struct {
	RoomID string `json:"room_id"`
}

// SetReadyPayload 准备请求
type SetReadyPayload struct {
	RoomID string `json:"room_id"`
	Ready  bool   `json:"ready"`
}

// ChooseWordPayload 选词请求
type ChooseWordPayload struct {
	RoomID string `json:"room_id"`
	Word   string `json:"word"`
}

// StrokePayload 笔画数据，服务端不解析 Stroke
type StrokePayload struct {
	RoomID string          `json:"room_id"`
	Stroke json.RawMessage `json:"stroke"`
}

// GuessPayload 猜词请求
type GuessPayload struct {
	RoomID string `json:"room_id"`
	Text   string `json:"text"`
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	PlayerID string `json:"player_id"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"server_timestamp"` // 服务器时间戳（毫秒）
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// AckPayload 请求确认，Room 与 Error 不会同时出现
type AckPayload struct {
	Room    *RoomSnapshot `json:"room,omitempty"`
	Correct *bool         `json:"correct,omitempty"`
	Error   *ErrorPayload `json:"error,omitempty"`
}

// RoomSettings 房间设置
type RoomSettings struct {
	MaxRounds             int `json:"max_rounds"`
	RoundTimeSeconds      int `json:"round_time_seconds"`
	WordOptionsPerTurn    int `json:"word_options_per_turn"`
	WordChoiceTimeSeconds int `json:"word_choice_time_seconds"`
	IntermissionSeconds   int `json:"intermission_seconds"`
}

// PlayerInfo 玩家信息
type PlayerInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Ready bool   `json:"ready"`
}

// RoomSnapshot 房间快照；CurrentWord 仅发给当前画手
type RoomSnapshot struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Settings        RoomSettings `json:"settings"`
	Phase           Phase        `json:"phase"`
	Round           int          `json:"round"`
	CurrentDrawerID *string      `json:"current_drawer_id"`
	Players         []PlayerInfo `json:"players"`
	CurrentWord     *string      `json:"current_word"`
}

// RoundStartedPayload 回合开始
type RoundStartedPayload struct {
	Round           int    `json:"round"`
	CurrentDrawerID string `json:"current_drawer_id"`
	WordLength      int    `json:"word_length"`
	Timeout         int    `json:"timeout"` // 秒
}

// RoundEndedPayload 回合结束，公布答案
type RoundEndedPayload struct {
	Round           int            `json:"round"`
	CurrentDrawerID string         `json:"current_drawer_id"`
	Word            string         `json:"word,omitempty"`
	Reason          RoundEndReason `json:"reason"`
}

// WordOptionsPayload 候选词
type WordOptionsPayload struct {
	Words   []string `json:"words"`
	Timeout int      `json:"timeout"` // 秒
}

// DrawerWordPayload 画手的题目
type DrawerWordPayload struct {
	Word string `json:"word"`
}

// GuessResultPayload 猜词结果；猜错时附带原文作为聊天
type GuessResultPayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Correct    bool   `json:"correct"`
	Guess      string `json:"guess,omitempty"`
}

// DrawingPayload 转发给其他玩家的笔画
type DrawingPayload struct {
	PlayerID string          `json:"player_id"`
	Stroke   json.RawMessage `json:"stroke"`
}

// RoomListItem 房间列表项
type RoomListItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phase       Phase  `json:"phase"`
	Round       int    `json:"round"`
	MaxRounds   int    `json:"max_rounds"`
	PlayerCount int    `json:"player_count"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	PlayerName string `json:"player_name"`
	Score      int    `json:"score"`
	Games      int    `json:"games"`
}
