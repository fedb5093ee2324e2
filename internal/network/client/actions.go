package client

import (
	"encoding/json"
	"time"

	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/protocol/codec"
)

// --- 便捷方法，返回请求 id ---

// JoinRoom 加入房间
func (c *Client) JoinRoom(roomID, name string) (uint64, error) {
	c.mu.Lock()
	c.playerName = name
	c.mu.Unlock()

	return c.request(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomID:     roomID,
		PlayerName: name,
	})
}

// LeaveRoom 离开房间
func (c *Client) LeaveRoom() (uint64, error) {
	roomID, err := c.currentRoom()
	if err != nil {
		return 0, err
	}
	return c.request(protocol.MsgLeaveRoom, protocol.RoomPayload{RoomID: roomID})
}

// SetReady 准备 / 取消准备
func (c *Client) SetReady(ready bool) (uint64, error) {
	roomID, err := c.currentRoom()
	if err != nil {
		return 0, err
	}
	return c.request(protocol.MsgSetReady, protocol.SetReadyPayload{RoomID: roomID, Ready: ready})
}

// StartGame 开始游戏
func (c *Client) StartGame() (uint64, error) {
	roomID, err := c.currentRoom()
	if err != nil {
		return 0, err
	}
	return c.request(protocol.MsgStartGame, protocol.RoomPayload{RoomID: roomID})
}

// ChooseWord 画手选词
func (c *Client) ChooseWord(word string) (uint64, error) {
	roomID, err := c.currentRoom()
	if err != nil {
		return 0, err
	}
	return c.request(protocol.MsgChooseWord, protocol.ChooseWordPayload{RoomID: roomID, Word: word})
}

// Guess 猜词
func (c *Client) Guess(text string) (uint64, error) {
	roomID, err := c.currentRoom()
	if err != nil {
		return 0, err
	}
	return c.request(protocol.MsgGuess, protocol.GuessPayload{RoomID: roomID, Text: text})
}

// SkipTurn 画手跳过
func (c *Client) SkipTurn() (uint64, error) {
	roomID, err := c.currentRoom()
	if err != nil {
		return 0, err
	}
	return c.request(protocol.MsgSkipTurn, protocol.RoomPayload{RoomID: roomID})
}

// Stroke 发送笔画，服务端不回复 ack
func (c *Client) Stroke(stroke json.RawMessage) error {
	roomID, err := c.currentRoom()
	if err != nil {
		return err
	}
	msg, err := codec.NewMessage(protocol.MsgStroke, protocol.StrokePayload{RoomID: roomID, Stroke: stroke})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// Ping 发送心跳
func (c *Client) Ping() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgPing, protocol.PingPayload{
		Timestamp: time.Now().UnixMilli(),
	}))
}

func (c *Client) currentRoom() (string, error) {
	if roomID := c.RoomID(); roomID != "" {
		return roomID, nil
	}
	return "", ErrNoRoom
}
