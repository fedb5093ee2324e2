package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	ID      uint64          `json:"id,omitempty"` // 请求序号，非零时服务端回复 ack
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing MessageType = "ping" // 心跳 ping

	// 房间操作
	MsgJoinRoom  MessageType = "join_room"  // 加入房间
	MsgLeaveRoom MessageType = "leave_room" // 离开房间
	MsgSetReady  MessageType = "set_ready"  // 准备 / 取消准备
	MsgStartGame MessageType = "start_game" // 开始游戏

	// 游戏操作
	MsgChooseWord MessageType = "choose_word" // 画手选词
	MsgStroke     MessageType = "stroke"      // 笔画（无 ack）
	MsgGuess      MessageType = "guess"       // 猜词
	MsgSkipTurn   MessageType = "skip_turn"   // 画手跳过
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected MessageType = "connected" // 连接成功
	MsgPong      MessageType = "pong"      // 心跳 pong
	MsgAck       MessageType = "ack"       // 请求确认

	// 房间相关
	MsgRoomUpdated MessageType = "room_updated" // 房间快照

	// 游戏流程
	MsgRoundStarted MessageType = "round_started" // 回合开始
	MsgRoundEnded   MessageType = "round_ended"   // 回合结束
	MsgWordOptions  MessageType = "word_options"  // 候选词（仅画手）
	MsgDrawerWord   MessageType = "drawer_word"   // 题目（仅画手）
	MsgGuessResult  MessageType = "guess_result"  // 猜词结果
	MsgGameFinished MessageType = "game_finished" // 游戏结束
	MsgDrawing      MessageType = "drawing"       // 笔画转发

	// 错误
	MsgError MessageType = "error" // 错误消息
)

// IsAcknowledged 该类型的请求是否需要 ack
func (t MessageType) IsAcknowledged() bool {
	return t != MsgStroke && t != MsgPing
}
