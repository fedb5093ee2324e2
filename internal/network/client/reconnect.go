package client

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/draw-and-guess/internal/logger"
)

// StartHeartbeat 启动心跳检测
func (c *Client) StartHeartbeat() {
	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if c.IsConnected() {
					_ = c.Ping()
				}
			case <-c.done:
				return
			}
		}
	}()
}

// shouldReconnect 连接意外断开且之前在房间中
func (c *Client) shouldReconnect() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed && c.roomID != "" && !c.reconnecting.Load()
}

// tryReconnect 断线即离开房间，重连后以新身份重新加入原房间
func (c *Client) tryReconnect() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			c.reconnecting.Store(false)
		}
	}()

	if !c.reconnecting.CompareAndSwap(false, true) {
		return
	}

	// 指数退避重连策略
	backoff := reconnectInterval

	for c.reconnectCount < maxReconnectAttempts {
		c.reconnectCount++
		if c.OnReconnecting != nil {
			c.OnReconnecting(c.reconnectCount, maxReconnectAttempts)
		}

		time.Sleep(backoff)

		// 计算下一次退避时间 (最大 30 秒)
		backoff = min(backoff*2, 30*time.Second)

		dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
		conn, _, err := dialer.Dial(c.ServerURL, nil)
		if err != nil {
			log.Debug().Err(err).Int("attempt", c.reconnectCount).Msg("重连失败")
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			_ = conn.Close()
			return
		}
		c.conn = conn
		c.mu.Unlock()

		// 收到 connected 后由 dispatch 完成重新加入
		stop := make(chan struct{})
		go c.readPump(conn, stop)
		go c.writePump(conn, stop)
		return
	}

	log.Warn().Msg("❌ 重连失败，已达最大尝试次数")
	c.reconnecting.Store(false)
	c.Close()
	if c.OnClose != nil {
		c.OnClose()
	}
}

// rejoin 重连后重新加入断线前的房间
func (c *Client) rejoin() {
	c.mu.RLock()
	roomID, name := c.roomID, c.playerName
	c.mu.RUnlock()
	if roomID == "" {
		return
	}
	if _, err := c.JoinRoom(roomID, name); err != nil {
		log.Warn().Err(err).Str("room", roomID).Msg("⚠️ 重新加入房间失败")
	}
}

// IsReconnecting 是否正在重连
func (c *Client) IsReconnecting() bool {
	return c.reconnecting.Load()
}
