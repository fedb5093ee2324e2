package handler

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/draw-and-guess/internal/apperrors"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/types"
)

// handleJoinRoom 处理加入房间
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) {
	// 维护模式检查
	if h.server != nil && h.server.IsMaintenanceMode() {
		h.fail(client, msg, apperrors.ErrServerMaintenance)
		return
	}

	payload, ok := parse[protocol.JoinRoomPayload](h, client, msg)
	if !ok {
		return
	}
	if payload.RoomID == "" {
		h.fail(client, msg, apperrors.ErrInvalidInput)
		return
	}

	r, found := h.roomManager.GetRoom(payload.RoomID)
	if !found {
		h.fail(client, msg, apperrors.ErrRoomNotFound)
		return
	}

	// 如果已在其他房间中，先离开
	if current := client.GetRoom(); current != "" && current != r.ID {
		h.leaveRoom(client, current)
	}

	if err := r.Join(client.GetID(), payload.PlayerName); err != nil {
		h.fail(client, msg, err)
		return
	}
	client.SetRoom(r.ID)
	h.succeed(client, msg, r)
}

// handleLeaveRoom 处理离开房间
func (h *Handler) handleLeaveRoom(client types.ClientInterface, msg *protocol.Message) {
	payload, ok := parse[protocol.RoomPayload](h, client, msg)
	if !ok {
		return
	}

	roomID := payload.RoomID
	if roomID == "" {
		roomID = client.GetRoom()
	}
	if roomID == "" {
		h.fail(client, msg, apperrors.ErrNotInRoom)
		return
	}

	if err := h.leaveRoom(client, roomID); err != nil {
		h.fail(client, msg, err)
		return
	}
	h.reply(client, msg, protocol.AckPayload{})
}

// leaveRoom 离开房间并清除连接上的房间标记
func (h *Handler) leaveRoom(client types.ClientInterface, roomID string) error {
	if client.GetRoom() == roomID {
		client.SetRoom("")
	}

	r, ok := h.roomManager.GetRoom(roomID)
	if !ok {
		return apperrors.ErrRoomNotFound
	}
	err := r.Leave(client.GetID())
	if err != nil && !errors.Is(err, apperrors.ErrNotInRoom) {
		log.Debug().Err(err).Str("room", roomID).Msg("离开房间失败")
	}
	return err
}

// handleSetReady 处理准备 / 取消准备
func (h *Handler) handleSetReady(client types.ClientInterface, msg *protocol.Message) {
	payload, ok := parse[protocol.SetReadyPayload](h, client, msg)
	if !ok {
		return
	}
	r, err := h.resolveRoom(client, payload.RoomID)
	if err != nil {
		h.fail(client, msg, err)
		return
	}
	if err := r.SetReady(client.GetID(), payload.Ready); err != nil {
		h.fail(client, msg, err)
		return
	}
	h.succeed(client, msg, r)
}

// handleStartGame 处理开始游戏
func (h *Handler) handleStartGame(client types.ClientInterface, msg *protocol.Message) {
	payload, ok := parse[protocol.RoomPayload](h, client, msg)
	if !ok {
		return
	}
	r, err := h.resolveRoom(client, payload.RoomID)
	if err != nil {
		h.fail(client, msg, err)
		return
	}
	if err := r.StartGame(client.GetID()); err != nil {
		h.fail(client, msg, err)
		return
	}
	h.succeed(client, msg, r)
}
