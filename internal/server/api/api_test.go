package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/draw-and-guess/internal/game/room"
	"github.com/palemoky/draw-and-guess/internal/protocol"
	"github.com/palemoky/draw-and-guess/internal/server/storage"
	"github.com/palemoky/draw-and-guess/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type env struct {
	rooms       *room.RoomManager
	router      *gin.Engine
	maintenance bool
}

func newEnv(t *testing.T, deps Deps) *env {
	t.Helper()

	e := &env{rooms: room.NewRoomManager(room.WithClock(testutil.NewFakeClock()))}
	e.router = gin.New()
	deps.Rooms = e.rooms
	deps.Maintenance = func() bool { return e.maintenance }
	deps.Online = func() int { return 7 }
	New(deps).Register(e.router)
	return e
}

func (e *env) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

type roomResponse struct {
	Room  protocol.RoomSnapshot `json:"room"`
	Error string                `json:"error"`
}

func TestHealth(t *testing.T) {
	t.Parallel()

	e := newEnv(t, Deps{})
	_, err := e.rooms.CreateRoom("a", protocol.RoomSettings{})
	require.NoError(t, err)

	w := e.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[map[string]any](t, w)
	assert.Equal(t, "ok", got["status"])
	assert.EqualValues(t, 1, got["rooms"])
	assert.EqualValues(t, 7, got["online"])

	e.maintenance = true
	got = decode[map[string]any](t, e.do(http.MethodGet, "/health", ""))
	assert.Equal(t, "maintenance", got["status"])
}

func TestCreateRoom(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		check      func(t *testing.T, resp roomResponse)
	}{
		{
			name:       "empty body uses defaults",
			body:       "",
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, resp roomResponse) {
				assert.Equal(t, "New Room", resp.Room.Name)
				assert.Equal(t, room.DefaultSettings(), resp.Room.Settings)
				assert.Equal(t, protocol.PhaseWaiting, resp.Room.Phase)
				assert.Empty(t, resp.Room.Players)
				assert.Nil(t, resp.Room.CurrentWord)
			},
		},
		{
			name:       "partial settings",
			body:       `{"name":"Sketchy","max_rounds":5,"intermission_seconds":0}`,
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, resp roomResponse) {
				assert.Equal(t, "Sketchy", resp.Room.Name)
				assert.Equal(t, 5, resp.Room.Settings.MaxRounds)
				assert.Equal(t, 75, resp.Room.Settings.RoundTimeSeconds)
			},
		},
		{
			name:       "negative rounds",
			body:       `{"max_rounds":-1}`,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, resp roomResponse) {
				assert.Contains(t, resp.Error, "max_rounds")
			},
		},
		{
			name:       "negative round time",
			body:       `{"round_time_seconds":-5}`,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, resp roomResponse) {
				assert.Contains(t, resp.Error, "round_time_seconds")
			},
		},
		{
			name:       "malformed json",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, resp roomResponse) {
				assert.NotEmpty(t, resp.Error)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newEnv(t, Deps{})
			w := e.do(http.MethodPost, "/rooms", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			tt.check(t, decode[roomResponse](t, w))
		})
	}
}

func TestCreateRoomDuringMaintenance(t *testing.T) {
	t.Parallel()

	e := newEnv(t, Deps{})
	e.maintenance = true

	w := e.do(http.MethodPost, "/rooms", `{"name":"late"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Zero(t, e.rooms.Count())
}

func TestListAndGetRoom(t *testing.T) {
	t.Parallel()

	e := newEnv(t, Deps{})
	r, err := e.rooms.CreateRoom("Lobby", protocol.RoomSettings{})
	require.NoError(t, err)
	require.NoError(t, r.Join("p1", "Alice"))

	w := e.do(http.MethodGet, "/rooms", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Rooms []protocol.RoomListItem `json:"rooms"`
	}](t, w)
	require.Len(t, list.Rooms, 1)
	assert.Equal(t, r.ID, list.Rooms[0].ID)
	assert.Equal(t, 1, list.Rooms[0].PlayerCount)

	w = e.do(http.MethodGet, "/rooms/"+r.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[roomResponse](t, w)
	assert.Equal(t, "Lobby", got.Room.Name)
	require.Len(t, got.Room.Players, 1)
	assert.Equal(t, "Alice", got.Room.Players[0].Name)

	w = e.do(http.MethodGet, "/rooms/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, decode[roomResponse](t, w).Error)
}

func TestGetRoomHidesWord(t *testing.T) {
	t.Parallel()

	e := newEnv(t, Deps{})
	r, err := e.rooms.CreateRoom("Secret", protocol.RoomSettings{})
	require.NoError(t, err)
	require.NoError(t, r.Join("p1", "Alice"))
	require.NoError(t, r.Join("p2", "Bob"))
	require.NoError(t, r.SetReady("p1", true))
	require.NoError(t, r.SetReady("p2", true))
	require.NoError(t, r.StartGame("p1"))
	require.NoError(t, r.ChooseWord("p1", r.WordChoices()[0]))

	got := decode[roomResponse](t, e.do(http.MethodGet, "/rooms/"+r.ID, ""))
	assert.Equal(t, protocol.PhaseDrawing, got.Room.Phase)
	assert.Nil(t, got.Room.CurrentWord)
}

func TestResetRoom(t *testing.T) {
	t.Parallel()

	e := newEnv(t, Deps{})
	r, err := e.rooms.CreateRoom("Reset", protocol.RoomSettings{})
	require.NoError(t, err)
	require.NoError(t, r.Join("p1", "Alice"))
	require.NoError(t, r.Join("p2", "Bob"))
	require.NoError(t, r.SetReady("p1", true))
	require.NoError(t, r.SetReady("p2", true))
	require.NoError(t, r.StartGame("p1"))

	w := e.do(http.MethodPost, "/rooms/"+r.ID+"/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[roomResponse](t, w)
	assert.Equal(t, protocol.PhaseWaiting, got.Room.Phase)
	assert.Nil(t, got.Room.CurrentDrawerID)
	for _, p := range got.Room.Players {
		assert.False(t, p.Ready)
		assert.Zero(t, p.Score)
	}

	w = e.do(http.MethodPost, "/rooms/missing/reset", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLeaderboard(t *testing.T) {
	t.Parallel()

	entries := []protocol.LeaderboardEntry{{Rank: 1, PlayerName: "Alice", Score: 300, Games: 2}}

	t.Run("default limit", func(t *testing.T) {
		t.Parallel()
		lb := new(testutil.MockLeaderboard)
		lb.On("GetLeaderboardByKind", mock.Anything, storage.LeaderboardTotal, 10).Return(entries, nil)

		w := newEnv(t, Deps{Leaderboard: lb}).do(http.MethodGet, "/leaderboard", "")
		require.Equal(t, http.StatusOK, w.Code)
		got := decode[struct {
			Entries []protocol.LeaderboardEntry `json:"entries"`
		}](t, w)
		assert.Equal(t, entries, got.Entries)
		lb.AssertExpectations(t)
	})

	t.Run("limit capped", func(t *testing.T) {
		t.Parallel()
		lb := new(testutil.MockLeaderboard)
		lb.On("GetLeaderboardByKind", mock.Anything, storage.LeaderboardTotal, 100).Return([]protocol.LeaderboardEntry{}, nil)

		w := newEnv(t, Deps{Leaderboard: lb}).do(http.MethodGet, "/leaderboard?limit=500", "")
		assert.Equal(t, http.StatusOK, w.Code)
		lb.AssertExpectations(t)
	})

	t.Run("bad limit", func(t *testing.T) {
		t.Parallel()
		lb := new(testutil.MockLeaderboard)
		w := newEnv(t, Deps{Leaderboard: lb}).do(http.MethodGet, "/leaderboard?limit=abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		lb.AssertNotCalled(t, "GetLeaderboardByKind", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("backend error", func(t *testing.T) {
		t.Parallel()
		lb := new(testutil.MockLeaderboard)
		lb.On("GetLeaderboardByKind", mock.Anything, storage.LeaderboardTotal, 10).Return(nil, errors.New("redis down"))

		w := newEnv(t, Deps{Leaderboard: lb}).do(http.MethodGet, "/leaderboard", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("daily", func(t *testing.T) {
		t.Parallel()
		lb := new(testutil.MockLeaderboard)
		lb.On("GetLeaderboardByKind", mock.Anything, storage.LeaderboardDaily, 5).Return(entries, nil)

		w := newEnv(t, Deps{Leaderboard: lb}).do(http.MethodGet, "/leaderboard?kind=daily&limit=5", "")
		require.Equal(t, http.StatusOK, w.Code)
		got := decode[struct {
			Kind    string                      `json:"kind"`
			Entries []protocol.LeaderboardEntry `json:"entries"`
		}](t, w)
		assert.Equal(t, "daily", got.Kind)
		assert.Equal(t, entries, got.Entries)
		lb.AssertExpectations(t)
	})

	t.Run("bad kind", func(t *testing.T) {
		t.Parallel()
		lb := new(testutil.MockLeaderboard)
		w := newEnv(t, Deps{Leaderboard: lb}).do(http.MethodGet, "/leaderboard?kind=weekly", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		lb.AssertNotCalled(t, "GetLeaderboardByKind", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()
		w := newEnv(t, Deps{}).do(http.MethodGet, "/leaderboard", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestPlayerRank(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rank     int64
		err      error
		wantCode int
	}{
		{"ranked", 3, nil, http.StatusOK},
		{"unranked", -1, nil, http.StatusNotFound},
		{"backend error", -1, errors.New("redis down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			lb := new(testutil.MockLeaderboard)
			lb.On("GetPlayerRank", mock.Anything, "Alice").Return(tt.rank, tt.err)

			w := newEnv(t, Deps{Leaderboard: lb}).do(http.MethodGet, "/leaderboard/rank/Alice", "")
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				got := decode[map[string]any](t, w)
				assert.Equal(t, "Alice", got["player"])
				assert.EqualValues(t, 3, got["rank"])
			}
			lb.AssertExpectations(t)
		})
	}

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()
		w := newEnv(t, Deps{}).do(http.MethodGet, "/leaderboard/rank/Alice", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestHealthReportsRedis(t *testing.T) {
	t.Parallel()

	t.Run("up", func(t *testing.T) {
		t.Parallel()
		store := new(testutil.MockRedisStore)
		store.On("Ping", mock.Anything).Return(nil)

		got := decode[map[string]any](t, newEnv(t, Deps{Mirror: store}).do(http.MethodGet, "/health", ""))
		assert.Equal(t, "ok", got["status"])
		assert.Equal(t, "ok", got["redis"])
		store.AssertExpectations(t)
	})

	t.Run("down", func(t *testing.T) {
		t.Parallel()
		store := new(testutil.MockRedisStore)
		store.On("Ping", mock.Anything).Return(errors.New("connection refused"))

		w := newEnv(t, Deps{Mirror: store}).do(http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, w.Code)
		got := decode[map[string]any](t, w)
		assert.Equal(t, "degraded", got["status"])
		assert.Equal(t, "down", got["redis"])
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()
		got := decode[map[string]any](t, newEnv(t, Deps{}).do(http.MethodGet, "/health", ""))
		assert.NotContains(t, got, "redis")
	})
}

func TestListStoredRooms(t *testing.T) {
	t.Parallel()

	store := new(testutil.MockRedisStore)
	store.On("GetAllRoomIDs", mock.Anything).Return([]string{"r1", "gone", "broken"}, nil)
	store.On("LoadRoom", mock.Anything, "r1").Return(&storage.RoomData{
		ID: "r1", Name: "Elsewhere", Phase: string(protocol.PhaseDrawing), Round: 2, MaxRounds: 3,
		Players: []storage.PlayerData{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}},
	}, nil)
	store.On("LoadRoom", mock.Anything, "gone").Return(nil, nil)
	store.On("LoadRoom", mock.Anything, "broken").Return(nil, errors.New("bad json"))

	e := newEnv(t, Deps{Mirror: store})
	w := e.do(http.MethodGet, "/rooms?source=store", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Rooms []protocol.RoomListItem `json:"rooms"`
	}](t, w)
	assert.Equal(t, []protocol.RoomListItem{{
		ID: "r1", Name: "Elsewhere", Phase: protocol.PhaseDrawing, Round: 2, MaxRounds: 3, PlayerCount: 2,
	}}, list.Rooms)
	store.AssertExpectations(t)

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/rooms?source=disk", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, newEnv(t, Deps{}).do(http.MethodGet, "/rooms?source=store", "").Code)

	failing := new(testutil.MockRedisStore)
	failing.On("GetAllRoomIDs", mock.Anything).Return(nil, errors.New("redis down"))
	w = newEnv(t, Deps{Mirror: failing}).do(http.MethodGet, "/rooms?source=store", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
