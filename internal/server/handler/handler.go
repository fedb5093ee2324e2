package handler

import (
	"github.com/rs/zerolog/log"

	"github.com/palemoky/draw-and-guess/internal/apperrors"
	"github.com/palemoky/draw-and-guess/internal/game/room"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
	"github.com/palemoky/draw-and-guess/internal/types"
)

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Server      types.ServerInterface
	RoomManager *room.RoomManager
}

// Handler 消息处理器
type Handler struct {
	server      types.ServerInterface
	roomManager *room.RoomManager
	handlers    map[protocol.MessageType]handlerFunc
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		server:      deps.Server,
		roomManager: deps.RoomManager,
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgPing: h.handlePing,

		// 房间操作
		protocol.MsgJoinRoom:  h.handleJoinRoom,
		protocol.MsgLeaveRoom: h.handleLeaveRoom,
		protocol.MsgSetReady:  h.handleSetReady,
		protocol.MsgStartGame: h.handleStartGame,

		// 游戏操作
		protocol.MsgChooseWord: h.handleChooseWord,
		protocol.MsgStroke:     h.handleStroke,
		protocol.MsgGuess:      h.handleGuess,
		protocol.MsgSkipTurn:   h.handleSkipTurn,
	}
}

// Handle 处理消息
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	log.Warn().Str("type", string(msg.Type)).Str("client", client.GetID()).Int("payload", len(msg.Payload)).Msg("⚠️ 未知消息类型")
	h.fail(client, msg, apperrors.ErrInvalidMessage)
}

// reply 回复确认。请求未携带 id 时只回传错误
func (h *Handler) reply(client types.ClientInterface, msg *protocol.Message, ack protocol.AckPayload) {
	if msg.ID == 0 {
		if ack.Error != nil {
			client.SendMessage(codec.NewErrorMessageWithText(ack.Error.Code, ack.Error.Message))
		}
		return
	}
	client.SendMessage(codec.NewAck(msg.ID, ack))
}

// fail 以错误确认
func (h *Handler) fail(client types.ClientInterface, msg *protocol.Message, err error) {
	h.reply(client, msg, protocol.AckPayload{Error: apperrors.ToPayload(err)})
}

// succeed 以房间快照确认
func (h *Handler) succeed(client types.ClientInterface, msg *protocol.Message, r *room.Room) {
	snap := r.RenderFor(client.GetID())
	h.reply(client, msg, protocol.AckPayload{Room: &snap})
}

// resolveRoom 取请求中的房间，缺省为连接当前所在房间
func (h *Handler) resolveRoom(client types.ClientInterface, roomID string) (*room.Room, error) {
	if roomID == "" {
		roomID = client.GetRoom()
	}
	if roomID == "" {
		return nil, apperrors.ErrNotInRoom
	}
	r, ok := h.roomManager.GetRoom(roomID)
	if !ok {
		return nil, apperrors.ErrRoomNotFound
	}
	return r, nil
}

// parse 解析载荷，失败时回复错误
func parse[T any](h *Handler, client types.ClientInterface, msg *protocol.Message) (*T, bool) {
	payload, err := codec.ParsePayload[T](msg)
	if err != nil {
		h.fail(client, msg, apperrors.ErrInvalidMessage)
		return nil, false
	}
	return payload, true
}
