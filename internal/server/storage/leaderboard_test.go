package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboard_RecordAndRank(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t)
	lm := NewLeaderboardManager(client)
	ctx := context.Background()

	require.NoError(t, lm.RecordGameResults(ctx, []GameResult{
		{PlayerName: "Alice", Score: 250},
		{PlayerName: "Bob", Score: 100},
	}))
	require.NoError(t, lm.RecordGameResults(ctx, []GameResult{
		{PlayerName: "Bob", Score: 300},
		{PlayerName: "Carol", Score: 0},
	}))

	entries, err := lm.GetLeaderboardByKind(ctx, LeaderboardTotal, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "Bob", entries[0].PlayerName)
	assert.Equal(t, 400, entries[0].Score)
	assert.Equal(t, 2, entries[0].Games)
	assert.Equal(t, 1, entries[0].Rank)

	assert.Equal(t, "Alice", entries[1].PlayerName)
	assert.Equal(t, 1, entries[1].Games)
	assert.Equal(t, 2, entries[1].Rank)

	assert.Equal(t, "Carol", entries[2].PlayerName)
	assert.Equal(t, 0, entries[2].Score)

	rank, err := lm.GetPlayerRank(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rank)

	rank, err = lm.GetPlayerRank(ctx, "Nobody")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), rank)
}

func TestLeaderboard_Limit(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t)
	lm := NewLeaderboardManager(client)
	ctx := context.Background()

	require.NoError(t, lm.RecordGameResults(ctx, []GameResult{
		{PlayerName: "a", Score: 1},
		{PlayerName: "b", Score: 2},
		{PlayerName: "c", Score: 3},
	}))

	entries, err := lm.GetLeaderboardByKind(ctx, LeaderboardTotal, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].PlayerName)

	entries, err = lm.GetLeaderboardByKind(ctx, LeaderboardTotal, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLeaderboard_Empty(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t)
	lm := NewLeaderboardManager(client)

	entries, err := lm.GetLeaderboardByKind(context.Background(), LeaderboardTotal, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, lm.RecordGameResults(context.Background(), nil))
}

func TestLeaderboard_Daily(t *testing.T) {
	t.Parallel()

	client, mr := newTestClient(t)
	lm := NewLeaderboardManager(client)
	day := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lm.now = func() time.Time { return day }
	ctx := context.Background()

	require.NoError(t, lm.RecordGameResults(ctx, []GameResult{{PlayerName: "Alice", Score: 150}}))
	assert.Equal(t, dailyExpiration, mr.TTL(dailyLeaderboard+"2026-03-01"))

	entries, err := lm.GetLeaderboardByKind(ctx, LeaderboardDaily, 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 150, entries[0].Score)

	// 次日的日榜为空，总榜保留
	lm.now = func() time.Time { return day.Add(24 * time.Hour) }
	entries, err = lm.GetLeaderboardByKind(ctx, LeaderboardDaily, 5)
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = lm.GetLeaderboardByKind(ctx, LeaderboardTotal, 5)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
