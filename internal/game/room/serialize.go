package room

import (
	"time"

	"github.com/palemoky/draw-and-guess/internal/game/timer"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
	"github.com/palemoky/draw-and-guess/internal/server/storage"
)

// View 某一时刻的完整房间快照，题目只在 For 中按观看者过滤
type View struct {
	snap protocol.RoomSnapshot
	word string
}

// For 渲染给 viewerID 的快照：只有当前画手能看到题目
func (v View) For(viewerID string) protocol.RoomSnapshot {
	s := v.snap
	s.CurrentWord = nil
	if v.word != "" && s.CurrentDrawerID != nil && *s.CurrentDrawerID == viewerID {
		word := v.word
		s.CurrentWord = &word
	}
	return s
}

// Public 不含题目的快照（房间目录使用）
func (v View) Public() protocol.RoomSnapshot {
	return v.For("")
}

// PerViewer 载荷是否需要按接收者分别渲染
func (e Event) PerViewer() bool {
	_, ok := e.Payload.(View)
	return ok
}

// Message 渲染给 viewerID 的协议消息
func (e Event) Message(viewerID string) (*protocol.Message, error) {
	if v, ok := e.Payload.(View); ok {
		return codec.NewMessage(e.Type, v.For(viewerID))
	}
	return codec.NewMessage(e.Type, e.Payload)
}

func (r *Room) viewLocked() View {
	snap := protocol.RoomSnapshot{
		ID:       r.ID,
		Name:     r.Name,
		Settings: r.Settings,
		Phase:    r.phase,
		Round:    r.round,
		Players:  make([]protocol.PlayerInfo, 0, len(r.order)),
	}
	if r.drawerID != "" {
		drawer := r.drawerID
		snap.CurrentDrawerID = &drawer
	}
	for _, id := range r.order {
		p := r.players[id]
		snap.Players = append(snap.Players, protocol.PlayerInfo{
			ID:    p.ID,
			Name:  p.Name,
			Score: p.Score,
			Ready: p.Ready,
		})
	}
	return View{snap: snap, word: r.word}
}

// dataLocked 转换为可存入 Redis 的房间摘要（不含题目）
func (r *Room) dataLocked() *storage.RoomData {
	data := &storage.RoomData{
		ID:        r.ID,
		Name:      r.Name,
		Phase:     string(r.phase),
		Round:     r.round,
		MaxRounds: r.Settings.MaxRounds,
		Players:   make([]storage.PlayerData, 0, len(r.order)),
		CreatedAt: r.CreatedAt.Unix(),
		UpdatedAt: time.Now().Unix(),
	}
	for _, id := range r.order {
		p := r.players[id]
		data.Players = append(data.Players, storage.PlayerData{ID: p.ID, Name: p.Name, Score: p.Score})
	}
	return data
}

// View 当前完整快照
func (r *Room) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewLocked()
}

// RenderFor 渲染给某个连接的快照
func (r *Room) RenderFor(viewerID string) protocol.RoomSnapshot {
	return r.View().For(viewerID)
}

// ListItem 房间列表项
func (r *Room) ListItem() protocol.RoomListItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return protocol.RoomListItem{
		ID:          r.ID,
		Name:        r.Name,
		Phase:       r.phase,
		Round:       r.round,
		MaxRounds:   r.Settings.MaxRounds,
		PlayerCount: len(r.order),
	}
}

// Phase 当前阶段
func (r *Room) Phase() protocol.Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Round 当前轮数
func (r *Room) Round() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.round
}

// CurrentDrawer 当前画手，没有时为空
func (r *Room) CurrentDrawer() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drawerID
}

// WordChoices 当前候选词
func (r *Room) WordChoices() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.choices...)
}

// HasGuessed 玩家本回合是否已猜中
func (r *Room) HasGuessed(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.guessed[playerID]
	return ok
}

// HasPlayer 玩家是否在房间中
func (r *Room) HasPlayer(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.players[playerID]
	return ok
}

// PlayerCount 玩家数量
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// PendingTimers 当前活动的计时器类别
func (r *Room) PendingTimers() []timer.Class {
	return r.timers.Pending()
}

// IsClosed 房间是否已关闭
func (r *Room) IsClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// emptySince 房间为空时返回变空的时间
func (r *Room) emptySince() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.order) > 0 || r.closed {
		return time.Time{}, false
	}
	return r.emptyAt, true
}
