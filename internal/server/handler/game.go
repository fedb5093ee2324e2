package handler

import (
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
	"github.com/palemoky/draw-and-guess/internal/types"
)

// handleChooseWord 处理画手选词
func (h *Handler) handleChooseWord(client types.ClientInterface, msg *protocol.Message) {
	payload, ok := parse[protocol.ChooseWordPayload](h, client, msg)
	if !ok {
		return
	}
	r, err := h.resolveRoom(client, payload.RoomID)
	if err != nil {
		h.fail(client, msg, err)
		return
	}
	if err := r.ChooseWord(client.GetID(), payload.Word); err != nil {
		h.fail(client, msg, err)
		return
	}
	h.succeed(client, msg, r)
}

// handleStroke 转发笔画，不回复确认，无效时静默丢弃
func (h *Handler) handleStroke(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.StrokePayload](msg)
	if err != nil {
		return
	}
	r, err := h.resolveRoom(client, payload.RoomID)
	if err != nil {
		return
	}
	r.Stroke(client.GetID(), payload.Stroke)
}

// handleGuess 处理猜词，确认中携带是否猜中
func (h *Handler) handleGuess(client types.ClientInterface, msg *protocol.Message) {
	payload, ok := parse[protocol.GuessPayload](h, client, msg)
	if !ok {
		return
	}
	r, err := h.resolveRoom(client, payload.RoomID)
	if err != nil {
		h.fail(client, msg, err)
		return
	}
	correct, err := r.Guess(client.GetID(), payload.Text)
	if err != nil {
		h.fail(client, msg, err)
		return
	}
	h.reply(client, msg, protocol.AckPayload{Correct: &correct})
}

// handleSkipTurn 处理画手跳过
func (h *Handler) handleSkipTurn(client types.ClientInterface, msg *protocol.Message) {
	payload, ok := parse[protocol.RoomPayload](h, client, msg)
	if !ok {
		return
	}
	r, err := h.resolveRoom(client, payload.RoomID)
	if err != nil {
		h.fail(client, msg, err)
		return
	}
	if err := r.SkipTurn(client.GetID()); err != nil {
		h.fail(client, msg, err)
		return
	}
	h.succeed(client, msg, r)
}
