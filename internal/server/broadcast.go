package server

import (
	"github.com/rs/zerolog/log"

	"github.com/palemoky/draw-and-guess/internal/game/room"
	"github.com/palemoky/draw-and-guess/internal/protocol"
)

// GetOnlineCount 获取在线人数（按需调用）
func (s *Server) GetOnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Deliver 投递房间事件。在房间锁内被调用，只做非阻塞发送
func (s *Server) Deliver(roomID string, events []room.Event) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, ev := range events {
		var shared *protocol.Message
		if !ev.PerViewer() {
			msg, err := ev.Message("")
			if err != nil {
				log.Error().Err(err).Str("room", roomID).Str("type", string(ev.Type)).Msg("❌ 事件编码失败")
				continue
			}
			shared = msg
		}

		for _, id := range ev.To {
			client, ok := s.clients[id]
			if !ok {
				continue
			}
			msg := shared
			if msg == nil {
				var err error
				if msg, err = ev.Message(id); err != nil {
					log.Error().Err(err).Str("room", roomID).Str("type", string(ev.Type)).Msg("❌ 事件编码失败")
					continue
				}
			}
			client.SendMessage(msg)
		}
	}
}

// BroadcastToLobby 广播消息给不在房间中的连接
func (s *Server) BroadcastToLobby(msg *protocol.Message) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, client := range s.clients {
		if client.GetRoom() == "" {
			client.SendMessage(msg)
		}
	}
}
