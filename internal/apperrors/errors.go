package apperrors

import (
	"errors"

	"github.com/palemoky/draw-and-guess/internal/protocol"
)

// GameError 游戏错误，可直接回传给操作发起方
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrRoomNotFound        = &GameError{Code: protocol.ErrCodeRoomNotFound, Message: "房间不存在"}
	ErrNotInRoom           = &GameError{Code: protocol.ErrCodeNotInRoom, Message: "您不在房间中"}
	ErrGameFinished        = &GameError{Code: protocol.ErrCodeGameFinished, Message: "游戏已结束"}
	ErrWrongPhase          = &GameError{Code: protocol.ErrCodeWrongPhase, Message: "当前阶段不允许该操作"}
	ErrNotAuthorized       = &GameError{Code: protocol.ErrCodeNotAuthorized, Message: "无权执行该操作"}
	ErrInvalidInput        = &GameError{Code: protocol.ErrCodeInvalidInput, Message: "输入不能为空"}
	ErrInvalidChoice       = &GameError{Code: protocol.ErrCodeInvalidChoice, Message: "该词不在候选列表中"}
	ErrInvalidConfig       = &GameError{Code: protocol.ErrCodeInvalidConfig, Message: "房间设置无效"}
	ErrInsufficientPlayers = &GameError{Code: protocol.ErrCodeInsufficientPlayers, Message: "至少需要 2 名玩家才能开始"}
	ErrNotAllReady         = &GameError{Code: protocol.ErrCodeNotAllReady, Message: "还有玩家未准备"}
	ErrInvalidMessage      = &GameError{Code: protocol.ErrCodeInvalidMsg, Message: "无效的消息格式"}
	ErrServerMaintenance   = &GameError{Code: protocol.ErrCodeServerMaintenance, Message: "服务器维护中，暂停加入房间"}
)

// ToPayload 将任意错误转换为协议错误载荷
func ToPayload(err error) *protocol.ErrorPayload {
	var gameErr *GameError
	if errors.As(err, &gameErr) {
		return &protocol.ErrorPayload{Code: gameErr.Code, Message: gameErr.Message}
	}
	return &protocol.ErrorPayload{Code: protocol.ErrCodeUnknown, Message: err.Error()}
}
