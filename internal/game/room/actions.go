package room

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/draw-and-guess/internal/apperrors"
	"github.com/palemoky/draw-and-guess/internal/protocol"
)

// Join 加入房间；同一连接重复加入只更新名字，分数、准备状态和顺序保持不变
func (r *Room) Join(playerID, name string) error {
	r.mu.Lock()
	defer r.unlockAndFlush()

	if err := r.ensureActionable(); err != nil {
		return err
	}

	name = normalizeName(name)
	if p, ok := r.players[playerID]; ok {
		p.Name = name
	} else {
		r.players[playerID] = &Player{ID: playerID, Name: name}
		r.order = append(r.order, playerID)
	}

	log.Info().Str("room", r.ID).Str("player", playerID).Str("name", name).Msg("👤 玩家加入房间")
	r.emitSnapshot()
	r.changed()
	return nil
}

// Leave 移除玩家（主动离开或断线）
func (r *Room) Leave(playerID string) error {
	r.mu.Lock()
	defer r.unlockAndFlush()

	if r.closed {
		return apperrors.ErrRoomNotFound
	}
	idx := r.indexOf(playerID)
	if idx < 0 {
		return apperrors.ErrNotInRoom
	}

	delete(r.players, playerID)
	delete(r.guessed, playerID)
	r.order = append(r.order[:idx], r.order[idx+1:]...)
	// 保持 turnIndex 指向当前画手；画手本人离开时回退一位，让补位者成为下一位
	if r.turnSet && idx <= r.turnIndex {
		r.turnIndex--
	}

	log.Info().Str("room", r.ID).Str("player", playerID).Msg("👋 玩家离开房间")

	if len(r.order) == 0 {
		r.emptyAt = time.Now()
		r.close()
		log.Info().Str("room", r.ID).Msg("🏠 房间已解散")
		return nil
	}

	wasDrawer := playerID == r.drawerID
	switch {
	case wasDrawer && (r.phase == protocol.PhaseChoosing || r.phase == protocol.PhaseDrawing):
		r.startIntermission(protocol.ReasonDrawerLeft)
	case wasDrawer:
		r.drawerID = ""
	case r.phase == protocol.PhaseDrawing && r.allGuessed():
		r.startIntermission(protocol.ReasonAllGuessed)
	}

	r.emitSnapshot()
	r.changed()
	return nil
}

// SetReady 设置准备状态
func (r *Room) SetReady(playerID string, ready bool) error {
	r.mu.Lock()
	defer r.unlockAndFlush()

	if err := r.ensureActionable(); err != nil {
		return err
	}
	if r.phase != protocol.PhaseWaiting {
		return apperrors.ErrWrongPhase
	}
	p, ok := r.players[playerID]
	if !ok {
		return apperrors.ErrNotAuthorized
	}

	p.Ready = ready
	r.emitSnapshot()
	r.changed()
	return nil
}

// StartGame 所有玩家准备后开始游戏
func (r *Room) StartGame(playerID string) error {
	r.mu.Lock()
	defer r.unlockAndFlush()

	if err := r.ensureActionable(); err != nil {
		return err
	}
	if _, ok := r.players[playerID]; !ok {
		return apperrors.ErrNotAuthorized
	}
	if r.phase != protocol.PhaseWaiting {
		return apperrors.ErrWrongPhase
	}
	if len(r.order) < 2 {
		return apperrors.ErrInsufficientPlayers
	}
	for _, p := range r.players {
		if !p.Ready {
			return apperrors.ErrNotAllReady
		}
	}

	r.round = 0
	r.turnIndex = 0
	r.turnSet = false
	r.started = false
	r.guessed = make(map[string]struct{})
	r.advanceTurn()

	log.Info().Str("room", r.ID).Int("players", len(r.order)).Msg("🎮 游戏开始")
	r.emitSnapshot()
	r.changed()
	return nil
}

// ChooseWord 画手从候选词中选词（不区分大小写）
func (r *Room) ChooseWord(playerID, word string) error {
	r.mu.Lock()
	defer r.unlockAndFlush()

	if err := r.ensureActionable(); err != nil {
		return err
	}
	if r.drawerID == "" || playerID != r.drawerID {
		return apperrors.ErrNotAuthorized
	}
	if r.phase != protocol.PhaseChoosing {
		return apperrors.ErrWrongPhase
	}
	word = strings.TrimSpace(word)
	if word == "" {
		return apperrors.ErrInvalidInput
	}

	chosen := ""
	for _, c := range r.choices {
		if strings.EqualFold(c, word) {
			chosen = c
			break
		}
	}
	if chosen == "" {
		return apperrors.ErrInvalidChoice
	}

	r.startDrawing(chosen)
	r.emitSnapshot()
	r.changed()
	return nil
}

// Stroke 转发画手的笔画给其他玩家；条件不满足时静默丢弃并返回 false
func (r *Room) Stroke(playerID string, stroke json.RawMessage) bool {
	r.mu.Lock()
	defer r.unlockAndFlush()

	if r.closed || r.phase != protocol.PhaseDrawing || playerID != r.drawerID {
		return false
	}
	r.emit(protocol.MsgDrawing, r.everyoneExcept(playerID), protocol.DrawingPayload{
		PlayerID: playerID,
		Stroke:   stroke,
	})
	return true
}

// Guess 猜词。返回值表示猜测是否与题目一致；每位玩家每回合只计一次分
func (r *Room) Guess(playerID, text string) (bool, error) {
	r.mu.Lock()
	defer r.unlockAndFlush()

	if err := r.ensureActionable(); err != nil {
		return false, err
	}
	p, ok := r.players[playerID]
	if !ok || playerID == r.drawerID {
		return false, apperrors.ErrNotAuthorized
	}
	if r.phase != protocol.PhaseDrawing {
		return false, apperrors.ErrWrongPhase
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return false, apperrors.ErrInvalidInput
	}

	correct := normalizeGuess(text) == normalizeGuess(r.word)
	_, already := r.guessed[playerID]

	switch {
	case correct && !already:
		r.guessed[playerID] = struct{}{}
		p.Score += guesserPoints
		if drawer, ok := r.players[r.drawerID]; ok {
			drawer.Score += drawerPoints
		}
		r.emit(protocol.MsgGuessResult, r.everyone(), protocol.GuessResultPayload{
			PlayerID:   playerID,
			PlayerName: p.Name,
			Correct:    true,
		})
		if r.allGuessed() {
			r.startIntermission(protocol.ReasonAllGuessed)
		}
		r.emitSnapshot()
		r.changed()
	case correct:
		// 重复猜中不再计分，也不公开原文
		r.emit(protocol.MsgGuessResult, r.everyone(), protocol.GuessResultPayload{
			PlayerID:   playerID,
			PlayerName: p.Name,
		})
	default:
		r.emit(protocol.MsgGuessResult, r.everyone(), protocol.GuessResultPayload{
			PlayerID:   playerID,
			PlayerName: p.Name,
			Guess:      text,
		})
	}
	return correct, nil
}

// SkipTurn 画手放弃本回合；在回合间歇中调用则直接进入下一位画手
func (r *Room) SkipTurn(playerID string) error {
	r.mu.Lock()
	defer r.unlockAndFlush()

	if err := r.ensureActionable(); err != nil {
		return err
	}
	if r.drawerID == "" || playerID != r.drawerID {
		return apperrors.ErrNotAuthorized
	}
	switch r.phase {
	case protocol.PhaseChoosing, protocol.PhaseDrawing:
		r.startIntermission(protocol.ReasonSkipped)
	case protocol.PhaseIntermission:
		r.advanceTurn()
		if r.closed {
			return nil
		}
	default:
		return apperrors.ErrWrongPhase
	}

	r.emitSnapshot()
	r.changed()
	return nil
}

// Reset 恢复到等待阶段：分数清零、计时器清空，玩家保留。可重复调用
func (r *Room) Reset() error {
	r.mu.Lock()
	defer r.unlockAndFlush()

	if r.closed {
		return apperrors.ErrRoomNotFound
	}

	r.timers.CancelAll()
	r.phase = protocol.PhaseWaiting
	r.round = 0
	r.turnIndex = 0
	r.turnSet = false
	r.started = false
	r.drawerID = ""
	r.word = ""
	r.choices = nil
	r.guessed = make(map[string]struct{})
	for _, p := range r.players {
		p.Score = 0
		p.Ready = false
	}

	log.Info().Str("room", r.ID).Msg("🔄 房间已重置")
	r.emitSnapshot()
	r.changed()
	return nil
}

// closeIfEmpty 房间无人时关闭，返回是否已关闭
func (r *Room) closeIfEmpty() bool {
	r.mu.Lock()
	defer r.unlockAndFlush()

	if len(r.order) == 0 {
		r.close()
	}
	return r.closed
}
