package room

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/palemoky/draw-and-guess/internal/apperrors"
	"github.com/palemoky/draw-and-guess/internal/game/timer"
	"github.com/palemoky/draw-and-guess/internal/game/words"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/server/storage"
)

const (
	defaultPlayerName = "Player"
	maxPlayerNameLen  = 20

	guesserPoints = 100 // 猜中者得分
	drawerPoints  = 50  // 每有一人猜中，画手得分
)

// Player 房间中的玩家，ID 即连接 ID
type Player struct {
	ID    string
	Name  string
	Score int
	Ready bool
}

// Event 房间产生的待投递事件
type Event struct {
	Type    protocol.MessageType
	To      []string // 接收者连接 ID
	Payload any      // View 类型的载荷需按接收者渲染
}

// EventSink 事件投递目标，在房间锁内被调用，不得阻塞也不得回调房间
type EventSink interface {
	Deliver(roomID string, events []Event)
}

// lifecycle 房间向管理器回报的生命周期事件，在房间锁内被调用
type lifecycle interface {
	roomClosed(id string)
	roomChanged(data *storage.RoomData)
	gameFinished(roomID string, results []storage.GameResult)
}

// Room 一局你画我猜。所有状态由 mu 保护，客户端操作与计时器回调都在锁内串行执行
type Room struct {
	ID        string
	Name      string
	Settings  protocol.RoomSettings
	CreatedAt time.Time

	mu        sync.Mutex
	phase     protocol.Phase
	players   map[string]*Player
	order     []string // 加入顺序即轮转顺序
	round     int
	turnIndex int
	turnSet   bool
	started   bool
	drawerID  string
	word      string
	choices   []string
	guessed   map[string]struct{}
	closed    bool
	emptyAt   time.Time // 最近一次变为空房间的时间
	outbox    []Event

	timers *timer.Set
	bank   *words.Bank
	sink   EventSink
	owner  lifecycle
}

func newRoom(id, name string, settings protocol.RoomSettings, bank *words.Bank, clock timer.Clock, sink EventSink, owner lifecycle) *Room {
	now := time.Now()
	return &Room{
		ID:        id,
		Name:      name,
		Settings:  settings,
		CreatedAt: now,
		phase:     protocol.PhaseWaiting,
		players:   make(map[string]*Player),
		guessed:   make(map[string]struct{}),
		emptyAt:   now,
		timers:    timer.NewSet(clock),
		bank:      bank,
		sink:      sink,
		owner:     owner,
	}
}

// unlockAndFlush 在释放锁之前投递本次操作产生的事件，保证同一房间的事件顺序
func (r *Room) unlockAndFlush() {
	events := r.outbox
	r.outbox = nil
	if len(events) > 0 && r.sink != nil {
		r.sink.Deliver(r.ID, events)
	}
	r.mu.Unlock()
}

func (r *Room) emit(msgType protocol.MessageType, to []string, payload any) {
	if len(to) == 0 {
		return
	}
	r.outbox = append(r.outbox, Event{Type: msgType, To: to, Payload: payload})
}

func (r *Room) emitSnapshot() {
	r.emit(protocol.MsgRoomUpdated, r.everyone(), r.viewLocked())
}

func (r *Room) everyone() []string {
	return append([]string(nil), r.order...)
}

func (r *Room) everyoneExcept(id string) []string {
	out := make([]string, 0, len(r.order))
	for _, pid := range r.order {
		if pid != id {
			out = append(out, pid)
		}
	}
	return out
}

// changed 通知管理器房间摘要已变化
func (r *Room) changed() {
	if r.owner != nil && !r.closed {
		r.owner.roomChanged(r.dataLocked())
	}
}

// close 关闭房间并取消所有计时器，之后的操作都视为房间不存在
func (r *Room) close() {
	if r.closed {
		return
	}
	r.closed = true
	r.timers.CancelAll()
	if r.owner != nil {
		r.owner.roomClosed(r.ID)
	}
}

// ensureActionable 玩家操作的公共前置检查
func (r *Room) ensureActionable() error {
	if r.closed {
		return apperrors.ErrRoomNotFound
	}
	if r.phase == protocol.PhaseFinished {
		return apperrors.ErrGameFinished
	}
	return nil
}

func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultPlayerName
	}
	if utf8.RuneCountInString(name) > maxPlayerNameLen {
		name = string([]rune(name)[:maxPlayerNameLen])
	}
	return name
}

func normalizeGuess(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// expectedGuessers 当前仍需猜词的人数，每次猜词与离开时重新计算
func (r *Room) expectedGuessers() int {
	n := len(r.players)
	if _, ok := r.players[r.drawerID]; ok {
		n--
	}
	return n
}

func (r *Room) allGuessed() bool {
	return len(r.guessed) >= r.expectedGuessers()
}

func (r *Room) indexOf(id string) int {
	for i, pid := range r.order {
		if pid == id {
			return i
		}
	}
	return -1
}
