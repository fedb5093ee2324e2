package room

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/draw-and-guess/internal/game/timer"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/server/storage"
)

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// advanceTurn 推进到下一位画手；轮转顺序取自当前成员列表
func (r *Room) advanceTurn() {
	if len(r.order) == 0 {
		r.close()
		return
	}

	switch {
	case !r.started:
		r.started = true
		r.round = 1
		r.turnIndex = 0
	case !r.turnSet || r.turnIndex >= len(r.order)-1:
		if r.round+1 > r.Settings.MaxRounds {
			r.finish()
			return
		}
		r.round++
		r.turnIndex = 0
	default:
		r.turnIndex++
	}
	r.turnSet = true

	r.timers.CancelAll()
	r.drawerID = r.order[r.turnIndex]
	r.word = ""
	r.guessed = make(map[string]struct{})
	r.phase = protocol.PhaseChoosing
	r.choices = r.bank.Draw(r.Settings.WordOptionsPerTurn)

	r.timers.Schedule(timer.WordChoice, seconds(r.Settings.WordChoiceTimeSeconds), r.onTimer)
	r.emit(protocol.MsgWordOptions, []string{r.drawerID}, protocol.WordOptionsPayload{
		Words:   append([]string(nil), r.choices...),
		Timeout: r.Settings.WordChoiceTimeSeconds,
	})

	log.Debug().Str("room", r.ID).Int("round", r.round).Str("drawer", r.drawerID).Msg("🎨 轮到新的画手选词")
}

// startDrawing 进入作画阶段
func (r *Room) startDrawing(word string) {
	r.timers.CancelAll()
	r.word = word
	r.phase = protocol.PhaseDrawing
	r.choices = nil
	r.guessed = make(map[string]struct{})

	r.timers.Schedule(timer.Round, seconds(r.Settings.RoundTimeSeconds), r.onTimer)
	r.emit(protocol.MsgDrawerWord, []string{r.drawerID}, protocol.DrawerWordPayload{Word: word})
	r.emit(protocol.MsgRoundStarted, r.everyone(), protocol.RoundStartedPayload{
		Round:           r.round,
		CurrentDrawerID: r.drawerID,
		WordLength:      len([]rune(word)),
		Timeout:         r.Settings.RoundTimeSeconds,
	})
}

// startIntermission 提前或按时结束回合：超时、全员猜中、画手跳过、画手离开都走这里
func (r *Room) startIntermission(reason protocol.RoundEndReason) {
	r.timers.CancelAll()
	r.phase = protocol.PhaseIntermission
	r.choices = nil

	r.emit(protocol.MsgRoundEnded, r.everyone(), protocol.RoundEndedPayload{
		Round:           r.round,
		CurrentDrawerID: r.drawerID,
		Word:            r.word,
		Reason:          reason,
	})
	r.word = ""
	if reason == protocol.ReasonDrawerLeft {
		r.drawerID = ""
	}

	r.timers.Schedule(timer.Intermission, seconds(r.Settings.IntermissionSeconds), r.onTimer)
	log.Debug().Str("room", r.ID).Int("round", r.round).Str("reason", string(reason)).Msg("⏸️ 回合结束")
}

// finish 超过最大轮数，游戏结束
func (r *Room) finish() {
	r.timers.CancelAll()
	r.phase = protocol.PhaseFinished
	r.drawerID = ""
	r.word = ""
	r.choices = nil
	r.guessed = make(map[string]struct{})

	r.emit(protocol.MsgGameFinished, r.everyone(), r.viewLocked())

	results := make([]storage.GameResult, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		results = append(results, storage.GameResult{PlayerName: p.Name, Score: p.Score})
	}
	if r.owner != nil {
		r.owner.gameFinished(r.ID, results)
	}
	log.Info().Str("room", r.ID).Int("players", len(results)).Msg("🏁 游戏结束")
}

// onTimer 计时器回调，与玩家操作共用房间锁；已取消或被替换的计时器直接忽略
func (r *Room) onTimer(h timer.Handle) {
	r.mu.Lock()
	defer r.unlockAndFlush()

	if r.closed || !r.timers.Claim(h) {
		return
	}

	switch h.Class {
	case timer.WordChoice:
		if r.phase != protocol.PhaseChoosing {
			return
		}
		word := r.bank.Default()
		if len(r.choices) > 0 {
			word = r.choices[0]
		}
		r.startDrawing(word)
	case timer.Round:
		if r.phase != protocol.PhaseDrawing {
			return
		}
		r.startIntermission(protocol.ReasonTimeout)
	case timer.Intermission:
		if r.phase != protocol.PhaseIntermission {
			return
		}
		r.advanceTurn()
	}

	if !r.closed {
		r.emitSnapshot()
		r.changed()
	}
}
