package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestRedisStore_SaveLoadDeleteRoom(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t)
	store := NewRedisStore(client)
	ctx := context.Background()

	roomData := &RoomData{
		ID:        "room-1",
		Name:      "Sketchers",
		Phase:     "waiting",
		MaxRounds: 3,
		Players:   []PlayerData{{ID: "c1", Name: "Alice"}},
		CreatedAt: time.Now().Unix(),
	}

	require.NoError(t, store.SaveRoom(ctx, roomData))

	loaded, err := store.LoadRoom(ctx, "room-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Sketchers", loaded.Name)
	assert.Equal(t, 3, loaded.MaxRounds)
	assert.Len(t, loaded.Players, 1)

	require.NoError(t, store.DeleteRoom(ctx, "room-1"))

	loaded, err = store.LoadRoom(ctx, "room-1")
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStore_SaveNil(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t)
	store := NewRedisStore(client)
	assert.NoError(t, store.SaveRoom(context.Background(), nil))
}

func TestRedisStore_Expiration(t *testing.T) {
	t.Parallel()

	client, mr := newTestClient(t)
	store := NewRedisStore(client)
	ctx := context.Background()

	require.NoError(t, store.SaveRoom(ctx, &RoomData{ID: "r"}))
	assert.Equal(t, roomExpiration, mr.TTL(roomKeyPrefix+"r"))

	mr.FastForward(roomExpiration + time.Second)
	loaded, err := store.LoadRoom(ctx, "r")
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStore_SetRoomExpiration(t *testing.T) {
	t.Parallel()

	client, mr := newTestClient(t)
	store := NewRedisStore(client)
	ctx := context.Background()

	require.NoError(t, store.SaveRoom(ctx, &RoomData{ID: "r"}))
	require.NoError(t, store.SetRoomExpiration(ctx, "r", time.Minute))
	assert.Equal(t, time.Minute, mr.TTL(roomKeyPrefix+"r"))
}

func TestRedisStore_GetAllRoomIDs(t *testing.T) {
	t.Parallel()

	client, mr := newTestClient(t)
	store := NewRedisStore(client)
	ctx := context.Background()

	require.NoError(t, store.SaveRoom(ctx, &RoomData{ID: "a"}))
	require.NoError(t, store.SaveRoom(ctx, &RoomData{ID: "b"}))
	require.NoError(t, mr.Set("other", "x"))

	ids, err := store.GetAllRoomIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
}

func TestRedisStore_LoadCorrupted(t *testing.T) {
	t.Parallel()

	client, mr := newTestClient(t)
	store := NewRedisStore(client)

	require.NoError(t, mr.Set(roomKeyPrefix+"bad", "{not json"))
	_, err := store.LoadRoom(context.Background(), "bad")
	assert.Error(t, err)
}

func TestRedisStore_Ping(t *testing.T) {
	t.Parallel()

	client, mr := newTestClient(t)
	store := NewRedisStore(client)
	assert.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}
