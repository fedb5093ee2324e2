package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/palemoky/draw-and-guess/internal/logger"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时（pong 等待时间）
	pongWait = 60 * time.Second

	// ping 发送间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 消息最大大小，笔画数据较大
	maxMessageSize = 64 * 1024

	// 超速警告次数上限，超过后断开
	maxRateWarnings = 5

	sendBufferSize = 256
)

// frame 待写出的 WebSocket 帧
type frame struct {
	data   []byte
	binary bool
}

// Client 代表一个 WebSocket 连接
type Client struct {
	ID string // 连接 ID，同时作为玩家 ID
	IP string

	server  *Server
	conn    *websocket.Conn
	send    chan frame
	limiter *rate.Limiter

	mu       sync.RWMutex
	roomID   string
	format   codec.Format // 跟随客户端最近一次使用的帧格式
	closed   bool
	warnings int
}

// NewClient 创建新客户端
func NewClient(s *Server, conn *websocket.Conn) *Client {
	limit := s.config.Security.MessageLimit
	return &Client{
		ID:      uuid.NewString(),
		server:  s,
		conn:    conn,
		send:    make(chan frame, sendBufferSize),
		limiter: newMessageLimiter(limit.MaxPerSecond, limit.Burst),
	}
}

// ReadPump 从 WebSocket 读取消息
func (c *Client) ReadPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		c.server.handler.Disconnect(c)
		c.server.unregisterClient(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("client", c.ID).Msg("读取错误")
			}
			return
		}

		format := codec.FormatJSON
		if kind == websocket.BinaryMessage {
			format = codec.FormatBinary
		}
		c.setFormat(format)

		if !c.limiter.Allow() {
			if c.warn() > maxRateWarnings {
				log.Warn().Str("client", c.ID).Str("ip", c.IP).Msg("🚫 客户端因多次超速被断开连接")
				return
			}
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeRateLimit))
			continue
		}

		msg, err := codec.Decode(data, format)
		if err != nil {
			log.Debug().Err(err).Str("client", c.ID).Msg("消息解析错误")
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			continue
		}

		c.server.handler.Handle(c, msg)
	}
}

// WritePump 向 WebSocket 写入消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case f, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			kind := websocket.TextMessage
			if f.binary {
				kind = websocket.BinaryMessage
			}
			if err := c.conn.WriteMessage(kind, f.data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 按客户端的帧格式发送消息，缓冲区满时断开连接
func (c *Client) SendMessage(msg *protocol.Message) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}

	data, err := codec.Encode(msg, c.format)
	if err != nil {
		log.Error().Err(err).Str("type", string(msg.Type)).Msg("❌ 消息编码错误")
		return
	}

	select {
	case c.send <- frame{data: data, binary: c.format == codec.FormatBinary}:
	default:
		log.Warn().Str("client", c.ID).Msg("⚠️ 发送缓冲区已满，断开连接")
		go c.Close()
	}
}

// Close 关闭客户端连接
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// GetID 获取客户端 ID
func (c *Client) GetID() string {
	return c.ID
}

// SetRoom 设置客户端所在房间
func (c *Client) SetRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
}

// GetRoom 获取客户端所在房间
func (c *Client) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

func (c *Client) setFormat(f codec.Format) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.format = f
}

func (c *Client) warn() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings++
	return c.warnings
}
