package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/draw-and-guess/internal/apperrors"
	"github.com/palemoky/draw-and-guess/internal/game/room"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/server/storage"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// LeaderboardReader 排行榜查询
type LeaderboardReader interface {
	GetLeaderboardByKind(ctx context.Context, kind storage.LeaderboardKind, limit int) ([]protocol.LeaderboardEntry, error)
	GetPlayerRank(ctx context.Context, playerName string) (int64, error)
}

// RoomMirror Redis 中的房间目录镜像
type RoomMirror interface {
	Ping(ctx context.Context) error
	GetAllRoomIDs(ctx context.Context) ([]string, error)
	LoadRoom(ctx context.Context, id string) (*storage.RoomData, error)
}

// Deps 房间目录接口依赖
type Deps struct {
	Rooms       *room.RoomManager
	Leaderboard LeaderboardReader // 未启用 Redis 时为 nil
	Mirror      RoomMirror        // 未启用 Redis 时为 nil
	Maintenance func() bool
	Online      func() int
}

// Handler 房间目录 HTTP 接口
type Handler struct {
	rooms       *room.RoomManager
	leaderboard LeaderboardReader
	mirror      RoomMirror
	maintenance func() bool
	online      func() int
}

// New 创建目录接口
func New(deps Deps) *Handler {
	h := &Handler{
		rooms:       deps.Rooms,
		leaderboard: deps.Leaderboard,
		mirror:      deps.Mirror,
		maintenance: deps.Maintenance,
		online:      deps.Online,
	}
	if h.maintenance == nil {
		h.maintenance = func() bool { return false }
	}
	if h.online == nil {
		h.online = func() int { return 0 }
	}
	return h
}

// Register 注册路由
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.health)
	r.GET("/rooms", h.listRooms)
	r.POST("/rooms", h.createRoom)
	r.GET("/rooms/:id", h.getRoom)
	r.POST("/rooms/:id/reset", h.resetRoom)
	r.GET("/leaderboard", h.getLeaderboard)
	r.GET("/leaderboard/rank/:name", h.getPlayerRank)
}

// createRoomRequest 创建房间请求，未填写的设置取服务器默认值
type createRoomRequest struct {
	Name string `json:"name"`
	protocol.RoomSettings
}

func (h *Handler) health(c *gin.Context) {
	status := "ok"
	if h.maintenance() {
		status = "maintenance"
	}
	resp := gin.H{
		"status":       status,
		"rooms":        h.rooms.Count(),
		"active_games": h.rooms.GetActiveGamesCount(),
		"online":       h.online(),
	}
	if h.mirror != nil {
		resp["redis"] = "ok"
		if err := h.mirror.Ping(c.Request.Context()); err != nil {
			log.Warn().Err(err).Msg("⚠️ Redis 健康检查失败")
			resp["redis"] = "down"
			if status == "ok" {
				resp["status"] = "degraded"
			}
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) listRooms(c *gin.Context) {
	switch c.Query("source") {
	case "", "memory":
		c.JSON(http.StatusOK, gin.H{"rooms": h.rooms.GetRoomList()})
	case "store":
		h.listStoredRooms(c)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "source must be memory or store"})
	}
}

// listStoredRooms 从 Redis 镜像读取房间目录，可看到其他实例或重启前的房间
func (h *Handler) listStoredRooms(c *gin.Context) {
	if h.mirror == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "room store is disabled"})
		return
	}

	ctx := c.Request.Context()
	ids, err := h.mirror.GetAllRoomIDs(ctx)
	if err != nil {
		log.Error().Err(err).Msg("❌ 读取房间镜像失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "room store unavailable"})
		return
	}

	rooms := make([]protocol.RoomListItem, 0, len(ids))
	for _, id := range ids {
		data, err := h.mirror.LoadRoom(ctx, id)
		if err != nil {
			log.Warn().Err(err).Str("room", id).Msg("⚠️ 读取房间镜像失败")
			continue
		}
		if data == nil {
			continue // 扫描与读取之间已过期
		}
		rooms = append(rooms, protocol.RoomListItem{
			ID:          data.ID,
			Name:        data.Name,
			Phase:       protocol.Phase(data.Phase),
			Round:       data.Round,
			MaxRounds:   data.MaxRounds,
			PlayerCount: len(data.Players),
		})
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *Handler) createRoom(c *gin.Context) {
	if h.maintenance() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "server is under maintenance"})
		return
	}

	var req createRoomRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	r, err := h.rooms.CreateRoom(req.Name, req.RoomSettings)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	log.Debug().Str("room", r.ID).Str("ip", c.ClientIP()).Msg("🌐 HTTP 创建房间")
	c.JSON(http.StatusCreated, gin.H{"room": r.View().Public()})
}

func (h *Handler) getRoom(c *gin.Context) {
	r, ok := h.rooms.GetRoom(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": apperrors.ErrRoomNotFound.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": r.View().Public()})
}

func (h *Handler) resetRoom(c *gin.Context) {
	r, err := h.rooms.ResetRoom(c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": r.View().Public()})
}

func (h *Handler) getLeaderboard(c *gin.Context) {
	if h.leaderboard == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "leaderboard is disabled"})
		return
	}

	kind := storage.LeaderboardKind(c.DefaultQuery("kind", string(storage.LeaderboardTotal)))
	if kind != storage.LeaderboardTotal && kind != storage.LeaderboardDaily {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be total or daily"})
		return
	}

	limit := defaultLeaderboardLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxLeaderboardLimit)
	}

	entries, err := h.leaderboard.GetLeaderboardByKind(c.Request.Context(), kind, limit)
	if err != nil {
		log.Error().Err(err).Str("kind", string(kind)).Msg("❌ 查询排行榜失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "leaderboard unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": kind, "entries": entries})
}

func (h *Handler) getPlayerRank(c *gin.Context) {
	if h.leaderboard == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "leaderboard is disabled"})
		return
	}

	name := c.Param("name")
	rank, err := h.leaderboard.GetPlayerRank(c.Request.Context(), name)
	if err != nil {
		log.Error().Err(err).Str("player", name).Msg("❌ 查询玩家排名失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "leaderboard unavailable"})
		return
	}
	if rank < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "player is not ranked"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": name, "rank": rank})
}

// statusFor 错误码到 HTTP 状态码
func statusFor(err error) int {
	var gameErr *apperrors.GameError
	if !errors.As(err, &gameErr) {
		return http.StatusInternalServerError
	}
	switch gameErr.Code {
	case protocol.ErrCodeRoomNotFound:
		return http.StatusNotFound
	case protocol.ErrCodeServerMaintenance:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}
