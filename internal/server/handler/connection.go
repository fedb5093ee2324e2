package handler

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
	"github.com/palemoky/draw-and-guess/internal/types"
)

// handlePing 处理心跳消息
func (h *Handler) handlePing(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}

	// 立即回复 pong
	pong := codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	})
	pong.ID = msg.ID
	client.SendMessage(pong)
}

// Disconnect 连接断开视为离开所在房间
func (h *Handler) Disconnect(client types.ClientInterface) {
	roomID := client.GetRoom()
	if roomID == "" {
		return
	}
	client.SetRoom("")

	r, ok := h.roomManager.GetRoom(roomID)
	if !ok {
		return
	}
	if err := r.Leave(client.GetID()); err != nil {
		log.Debug().Err(err).Str("room", roomID).Str("client", client.GetID()).Msg("断线离开房间")
	}
}
