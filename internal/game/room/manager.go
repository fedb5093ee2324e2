package room

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/draw-and-guess/internal/apperrors"
	"github.com/palemoky/draw-and-guess/internal/config"
	"github.com/palemoky/draw-and-guess/internal/game/timer"
	"github.com/palemoky/draw-and-guess/internal/game/words"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/server/storage"
)

const (
	defaultRoomName = "New Room"
	maxRoomNameLen  = 40
)

// RoomStore 房间目录镜像
type RoomStore interface {
	SaveRoom(ctx context.Context, data *storage.RoomData) error
	DeleteRoom(ctx context.Context, id string) error
	SetRoomExpiration(ctx context.Context, id string, ttl time.Duration) error
}

// ResultRecorder 记录结束的对局成绩
type ResultRecorder interface {
	RecordGameResults(ctx context.Context, results []storage.GameResult) error
}

// RoomManager 房间注册表。锁顺序：持有 rm.mu 时从不获取房间锁
type RoomManager struct {
	store       RoomStore
	leaderboard ResultRecorder
	bank        *words.Bank
	clock       timer.Clock
	sink        EventSink
	defaults    protocol.RoomSettings
	roomTimeout time.Duration

	rooms map[string]*Room
	mu    sync.RWMutex

	done      chan struct{}
	closeOnce sync.Once
}

// Option 房间管理器选项
type Option func(*RoomManager)

// WithStore 设置 Redis 房间目录
func WithStore(s RoomStore) Option { return func(rm *RoomManager) { rm.store = s } }

// WithLeaderboard 设置排行榜
func WithLeaderboard(l ResultRecorder) Option { return func(rm *RoomManager) { rm.leaderboard = l } }

// WithWordBank 设置词库
func WithWordBank(b *words.Bank) Option { return func(rm *RoomManager) { rm.bank = b } }

// WithClock 设置计时器时钟
func WithClock(c timer.Clock) Option { return func(rm *RoomManager) { rm.clock = c } }

// WithSink 设置事件投递目标
func WithSink(s EventSink) Option { return func(rm *RoomManager) { rm.sink = s } }

// WithDefaults 设置新房间的默认设置
func WithDefaults(s protocol.RoomSettings) Option { return func(rm *RoomManager) { rm.defaults = s } }

// WithRoomTimeout 空房间保留时长，0 表示不清理
func WithRoomTimeout(d time.Duration) Option { return func(rm *RoomManager) { rm.roomTimeout = d } }

// DefaultSettings 默认配置中的房间设置
func DefaultSettings() protocol.RoomSettings {
	return config.Default().Game.DefaultSettings()
}

// NewRoomManager 创建房间管理器
func NewRoomManager(opts ...Option) *RoomManager {
	rm := &RoomManager{
		defaults: DefaultSettings(),
		rooms:    make(map[string]*Room),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(rm)
	}
	if rm.bank == nil {
		rm.bank = words.NewBank(config.DefaultWords)
	}
	if rm.clock == nil {
		rm.clock = timer.RealClock()
	}

	if rm.roomTimeout > 0 {
		go rm.cleanupLoop()
	}
	return rm
}

// Close 停止清理协程
func (rm *RoomManager) Close() {
	rm.closeOnce.Do(func() { close(rm.done) })
}

// SetSink 设置事件投递目标（服务器与管理器互相引用时使用）
func (rm *RoomManager) SetSink(s EventSink) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.sink = s
}

// Defaults 新房间的默认设置
func (rm *RoomManager) Defaults() protocol.RoomSettings {
	return rm.defaults
}

// ValidateSettings 校验房间设置
func ValidateSettings(s protocol.RoomSettings) error {
	switch {
	case s.MaxRounds < 1:
		return fmt.Errorf("%w: max_rounds 必须 ≥ 1", apperrors.ErrInvalidConfig)
	case s.RoundTimeSeconds < 1:
		return fmt.Errorf("%w: round_time_seconds 必须 ≥ 1", apperrors.ErrInvalidConfig)
	case s.WordOptionsPerTurn < 1:
		return fmt.Errorf("%w: word_options_per_turn 必须 ≥ 1", apperrors.ErrInvalidConfig)
	case s.WordChoiceTimeSeconds < 1:
		return fmt.Errorf("%w: word_choice_time_seconds 必须 ≥ 1", apperrors.ErrInvalidConfig)
	case s.IntermissionSeconds < 0:
		return fmt.Errorf("%w: intermission_seconds 不能为负数", apperrors.ErrInvalidConfig)
	}
	return nil
}

// withDefaults 为零值字段填充默认设置
func (rm *RoomManager) withDefaults(s protocol.RoomSettings) protocol.RoomSettings {
	if s.MaxRounds == 0 {
		s.MaxRounds = rm.defaults.MaxRounds
	}
	if s.RoundTimeSeconds == 0 {
		s.RoundTimeSeconds = rm.defaults.RoundTimeSeconds
	}
	if s.WordOptionsPerTurn == 0 {
		s.WordOptionsPerTurn = rm.defaults.WordOptionsPerTurn
	}
	if s.WordChoiceTimeSeconds == 0 {
		s.WordChoiceTimeSeconds = rm.defaults.WordChoiceTimeSeconds
	}
	if s.IntermissionSeconds == 0 {
		s.IntermissionSeconds = rm.defaults.IntermissionSeconds
	}
	return s
}

// CreateRoom 创建处于等待阶段的房间，设置中的零值取默认值
func (rm *RoomManager) CreateRoom(name string, settings protocol.RoomSettings) (*Room, error) {
	settings = rm.withDefaults(settings)
	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultRoomName
	}
	if len([]rune(name)) > maxRoomNameLen {
		name = string([]rune(name)[:maxRoomNameLen])
	}

	rm.mu.Lock()
	room := newRoom(uuid.NewString(), name, settings, rm.bank, rm.clock, rm.sink, rm)
	data := room.dataLocked()
	rm.rooms[room.ID] = room
	rm.mu.Unlock()

	rm.persist(func(ctx context.Context) error { return rm.saveRoom(ctx, data) }, rm.store != nil)

	log.Info().Str("room", room.ID).Str("name", name).Msg("🏠 房间已创建")
	return room, nil
}

// GetRoom 获取房间；不存在是正常结果
func (rm *RoomManager) GetRoom(id string) (*Room, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	room, ok := rm.rooms[id]
	return room, ok
}

// RemoveIfEmpty 房间无人时删除并取消其计时器
func (rm *RoomManager) RemoveIfEmpty(id string) bool {
	room, ok := rm.GetRoom(id)
	if !ok {
		return false
	}
	return room.closeIfEmpty()
}

// ResetRoom 重置房间
func (rm *RoomManager) ResetRoom(id string) (*Room, error) {
	room, ok := rm.GetRoom(id)
	if !ok {
		return nil, apperrors.ErrRoomNotFound
	}
	if err := room.Reset(); err != nil {
		return nil, err
	}
	return room, nil
}

// snapshot 复制房间列表后释放注册表锁
func (rm *RoomManager) snapshot() []*Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	rooms := make([]*Room, 0, len(rm.rooms))
	for _, room := range rm.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// GetRoomList 获取房间列表，按创建时间排序
func (rm *RoomManager) GetRoomList() []protocol.RoomListItem {
	rooms := rm.snapshot()
	slices.SortFunc(rooms, func(a, b *Room) int { return a.CreatedAt.Compare(b.CreatedAt) })

	items := make([]protocol.RoomListItem, 0, len(rooms))
	for _, room := range rooms {
		items = append(items, room.ListItem())
	}
	return items
}

// GetActiveGamesCount 获取进行中的游戏数量
func (rm *RoomManager) GetActiveGamesCount() int {
	count := 0
	for _, room := range rm.snapshot() {
		if room.Phase().IsActive() {
			count++
		}
	}
	return count
}

// Count 房间总数
func (rm *RoomManager) Count() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// cleanupLoop 定期清理长时间无人的房间
func (rm *RoomManager) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rm.done:
			return
		case now := <-ticker.C:
			rm.cleanup(now)
		}
	}
}

// cleanup 清理在 now 之前已空置超过 roomTimeout 的房间，返回清理数量
func (rm *RoomManager) cleanup(now time.Time) int {
	removed := 0
	for _, room := range rm.snapshot() {
		since, empty := room.emptySince()
		if !empty || now.Sub(since) <= rm.roomTimeout {
			continue
		}
		if room.closeIfEmpty() {
			removed++
			log.Info().Str("room", room.ID).Msg("🧹 空房间超时已清理")
		}
	}
	return removed
}

// --- lifecycle，由房间在其锁内调用，只能获取注册表锁 ---

func (rm *RoomManager) roomClosed(id string) {
	rm.mu.Lock()
	delete(rm.rooms, id)
	rm.mu.Unlock()

	rm.persist(func(ctx context.Context) error { return rm.store.DeleteRoom(ctx, id) }, rm.store != nil)
}

func (rm *RoomManager) roomChanged(data *storage.RoomData) {
	rm.persist(func(ctx context.Context) error { return rm.saveRoom(ctx, data) }, rm.store != nil)
}

func (rm *RoomManager) gameFinished(roomID string, results []storage.GameResult) {
	rm.persist(func(ctx context.Context) error {
		return rm.leaderboard.RecordGameResults(ctx, results)
	}, rm.leaderboard != nil)
	log.Debug().Str("room", roomID).Msg("📝 记录对局成绩")
}

// saveRoom 写入房间镜像；空房间的镜像与内存中的空房间同时过期
func (rm *RoomManager) saveRoom(ctx context.Context, data *storage.RoomData) error {
	if err := rm.store.SaveRoom(ctx, data); err != nil {
		return err
	}
	if len(data.Players) == 0 && rm.roomTimeout > 0 {
		return rm.store.SetRoomExpiration(ctx, data.ID, rm.roomTimeout)
	}
	return nil
}

// persist 异步写入 Redis，失败只记录日志
func (rm *RoomManager) persist(fn func(ctx context.Context) error, enabled bool) {
	if !enabled {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Warn().Err(err).Msg("⚠️ Redis 写入失败")
		}
	}()
}
