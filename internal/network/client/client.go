package client

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// 心跳检测间隔
	heartbeatInterval = 5 * time.Second
	// 最大重连次数
	maxReconnectAttempts = 5
	// 重连间隔
	reconnectInterval = 2 * time.Second
)

var (
	ErrClosed     = errors.New("connection closed")
	ErrBufferFull = errors.New("send buffer full")
	ErrNoRoom     = errors.New("not in a room")
	ErrTimeout    = errors.New("receive timeout")
)

// Client WebSocket 客户端
type Client struct {
	ServerURL string
	Format    codec.Format // 发送帧格式，服务端按相同格式回复

	conn    *websocket.Conn
	send    chan []byte
	receive chan *protocol.Message
	done    chan struct{}

	// 网络延迟（毫秒）
	latency atomic.Int64

	// 回调，在读协程中调用
	OnMessage       func(*protocol.Message)
	OnAck           func(req protocol.MessageType, ack protocol.AckPayload)
	OnError         func(error)
	OnClose         func()
	OnReconnecting  func(attempt, max int)
	OnReconnect     func()
	OnLatencyUpdate func(int64)

	mu             sync.RWMutex
	closed         bool
	playerID       string
	playerName     string
	roomID         string
	pending        map[uint64]pendingRequest
	seq            atomic.Uint64
	reconnecting   atomic.Bool
	reconnectCount int
}

// pendingRequest 等待 ack 的请求
type pendingRequest struct {
	typ    protocol.MessageType
	roomID string
}

// NewClient 创建客户端
func NewClient(serverURL string) *Client {
	return &Client{
		ServerURL: serverURL,
		send:      make(chan []byte, 256),
		receive:   make(chan *protocol.Message, 256),
		done:      make(chan struct{}),
		pending:   make(map[uint64]pendingRequest),
	}
}

// Connect 连接服务器
func (c *Client) Connect() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.Dial(c.ServerURL, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	stop := make(chan struct{})
	go c.readPump(conn, stop)
	go c.writePump(conn, stop)

	return nil
}

// SendMessage 发送消息（不分配请求 id）
func (c *Client) SendMessage(msg *protocol.Message) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}

	data, err := codec.Encode(msg, c.Format)
	if err != nil {
		return err
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

// request 分配请求 id 并发送，服务端会回复对应的 ack
func (c *Client) request(msgType protocol.MessageType, payload any) (uint64, error) {
	msg, err := codec.NewMessage(msgType, payload)
	if err != nil {
		return 0, err
	}
	msg.ID = c.seq.Add(1)

	c.mu.Lock()
	c.pending[msg.ID] = pendingRequest{typ: msgType, roomID: roomOf(payload)}
	c.mu.Unlock()

	if err := c.SendMessage(msg); err != nil {
		c.mu.Lock()
		delete(c.pending, msg.ID)
		c.mu.Unlock()
		return 0, err
	}
	return msg.ID, nil
}

func roomOf(payload any) string {
	if p, ok := payload.(protocol.JoinRoomPayload); ok {
		return p.RoomID
	}
	return ""
}

// resolveAck 匹配 ack 与请求，并跟踪当前所在房间
func (c *Client) resolveAck(msg *protocol.Message) (protocol.MessageType, *protocol.AckPayload, bool) {
	ack, err := codec.ParsePayload[protocol.AckPayload](msg)
	if err != nil {
		return "", nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	req, ok := c.pending[msg.ID]
	if !ok {
		return "", nil, false
	}
	delete(c.pending, msg.ID)

	if ack.Error == nil {
		switch req.typ {
		case protocol.MsgJoinRoom:
			c.roomID = req.roomID
			if ack.Room != nil {
				c.roomID = ack.Room.ID
			}
		case protocol.MsgLeaveRoom:
			c.roomID = ""
		}
	}
	return req.typ, ack, true
}

// Receive 接收消息 (阻塞)
func (c *Client) Receive() (*protocol.Message, error) {
	select {
	case msg := <-c.receive:
		return msg, nil
	case <-c.done:
		return nil, ErrClosed
	}
}

// ReceiveWithTimeout 带超时接收消息
func (c *Client) ReceiveWithTimeout(timeout time.Duration) (*protocol.Message, error) {
	select {
	case msg := <-c.receive:
		return msg, nil
	case <-time.After(timeout):
		return nil, ErrTimeout
	case <-c.done:
		return nil, ErrClosed
	}
}

// Close 关闭连接
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	}
}

// IsConnected 是否已连接
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed && c.conn != nil
}

// PlayerID 服务端分配的玩家 ID
func (c *Client) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// RoomID 当前所在房间
func (c *Client) RoomID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

// GetLatency 获取当前延迟（毫秒）
func (c *Client) GetLatency() int64 {
	return c.latency.Load()
}
