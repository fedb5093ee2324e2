package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/draw-and-guess/internal/config"
	"github.com/palemoky/draw-and-guess/internal/game/room"
	"github.com/palemoky/draw-and-guess/internal/game/words"
	"github.com/palemoky/draw-and-guess/internal/server/api"
	"github.com/palemoky/draw-and-guess/internal/server/handler"
	"github.com/palemoky/draw-and-guess/internal/server/storage"
)

// Server WebSocket 与 HTTP 服务器
type Server struct {
	config      *config.Config
	redis       *redis.Client
	redisStore  *storage.RedisStore
	leaderboard *storage.LeaderboardManager
	roomManager *room.RoomManager
	clients     map[string]*Client
	clientsMu   sync.RWMutex
	handler     *handler.Handler
	router      *gin.Engine
	httpServer  *http.Server
	upgrader    websocket.Upgrader

	// 安全组件
	connLimiter   *ConnLimiter
	originChecker *OriginChecker
	ipFilter      *IPFilter

	// 连接控制
	maxConnections int
	semaphore      chan struct{} // 信号量控制并发连接数

	// 维护模式
	maintenanceMode bool
	maintenanceMu   sync.RWMutex

	done     chan struct{}
	stopOnce sync.Once
}

// NewServer 创建服务器实例，Redis 未启用时房间目录与排行榜只在内存中（排行榜不可用）
func NewServer(cfg *config.Config) (*Server, error) {
	s := &Server{
		config:         cfg,
		clients:        make(map[string]*Client),
		connLimiter:    NewConnLimiter(cfg.Security.ConnLimit.MaxPerSecond, cfg.Security.ConnLimit.Burst),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		ipFilter:       NewIPFilter(cfg.Security.AllowedIPs, cfg.Security.BlockedIPs),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
		done:           make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}

	opts := []room.Option{
		room.WithSink(s),
		room.WithDefaults(cfg.Game.DefaultSettings()),
		room.WithWordBank(words.NewBank(cfg.Game.Words)),
		room.WithRoomTimeout(cfg.Game.RoomTimeoutDuration()),
	}

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis 连接失败: %w", err)
		}

		s.redis = rdb
		s.redisStore = storage.NewRedisStore(rdb)
		s.leaderboard = storage.NewLeaderboardManager(rdb)
		opts = append(opts, room.WithStore(s.redisStore), room.WithLeaderboard(s.leaderboard))
	}

	s.roomManager = room.NewRoomManager(opts...)

	s.handler = handler.NewHandler(handler.HandlerDeps{
		Server:      s,
		RoomManager: s.roomManager,
	})

	s.router = s.newRouter()
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info().
		Float64("conn_limit", cfg.Security.ConnLimit.MaxPerSecond).
		Float64("message_limit", cfg.Security.MessageLimit.MaxPerSecond).
		Int("max_connections", cfg.Server.MaxConnections).
		Bool("redis", cfg.Redis.Enabled).
		Msg("🔒 安全配置")

	return s, nil
}

// newRouter 组装 gin 路由：/ws 与房间目录接口
func (s *Server) newRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"})

	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
		MaxAge: 12 * time.Hour,
	}
	if origins := s.originChecker.Origins(); len(origins) > 0 {
		corsCfg.AllowOrigins = origins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/ws", s.handleWebSocket)

	// 未启用 Redis 时保持接口为 nil，避免带类型的 nil
	var leaderboard api.LeaderboardReader
	if s.leaderboard != nil {
		leaderboard = s.leaderboard
	}
	var mirror api.RoomMirror
	if s.redisStore != nil {
		mirror = s.redisStore
	}
	api.New(api.Deps{
		Rooms:       s.roomManager,
		Leaderboard: leaderboard,
		Mirror:      mirror,
		Maintenance: s.IsMaintenanceMode,
		Online:      s.GetOnlineCount,
	}).Register(r)

	return r
}

// Router HTTP 入口
func (s *Server) Router() http.Handler {
	return s.router
}

// RoomManager 房间管理器
func (s *Server) RoomManager() *room.RoomManager {
	return s.roomManager
}

// Start 启动服务器，Shutdown 后返回 nil
func (s *Server) Start() error {
	addr := s.httpServer.Addr

	go s.monitorStats()
	go s.connLimiter.cleanupLoop(s.done)

	log.Info().Str("addr", addr).Int("cpus", runtime.NumCPU()).Msgf("🚀 服务器启动在 ws://%s/ws", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
