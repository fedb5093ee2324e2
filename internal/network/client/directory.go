package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/palemoky/draw-and-guess/internal/protocol"
)

// Directory 房间目录 HTTP 客户端
type Directory struct {
	BaseURL string
	http    *http.Client
}

// NewDirectory 由 WebSocket 地址推导目录地址，ws://host/ws -> http://host
func NewDirectory(wsURL string) (*Directory, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	}
	u.Path = strings.TrimSuffix(u.Path, "/ws")
	u.RawQuery = ""

	return &Directory{
		BaseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}, nil
}

// CreateRoomRequest 创建房间请求，零值设置使用服务器默认值
type CreateRoomRequest struct {
	Name string `json:"name"`
	protocol.RoomSettings
}

// ListRooms 获取房间列表
func (d *Directory) ListRooms(ctx context.Context) ([]protocol.RoomListItem, error) {
	var resp struct {
		Rooms []protocol.RoomListItem `json:"rooms"`
	}
	if err := d.do(ctx, http.MethodGet, "/rooms", nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Rooms, nil
}

// CreateRoom 创建房间
func (d *Directory) CreateRoom(ctx context.Context, req CreateRoomRequest) (*protocol.RoomSnapshot, error) {
	var resp struct {
		Room protocol.RoomSnapshot `json:"room"`
	}
	if err := d.do(ctx, http.MethodPost, "/rooms", req, http.StatusCreated, &resp); err != nil {
		return nil, err
	}
	return &resp.Room, nil
}

// Leaderboard 获取排行榜
func (d *Directory) Leaderboard(ctx context.Context, limit int) ([]protocol.LeaderboardEntry, error) {
	var resp struct {
		Entries []protocol.LeaderboardEntry `json:"entries"`
	}
	path := fmt.Sprintf("/leaderboard?limit=%d", limit)
	if err := d.do(ctx, http.MethodGet, path, nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

func (d *Directory) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, d.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != want {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = resp.Status
		}
		return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
