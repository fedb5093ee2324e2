package storage

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/draw-and-guess/internal/protocol"
)

const (
	// Redis key
	leaderboardKey   = "leaderboard:score"
	dailyLeaderboard = "leaderboard:daily:"
	gamesCountKey    = "leaderboard:games"

	dailyExpiration = 48 * time.Hour
)

// LeaderboardKind 排行榜类型
type LeaderboardKind string

const (
	LeaderboardTotal LeaderboardKind = "total"
	LeaderboardDaily LeaderboardKind = "daily"
)

// GameResult 一局结束时某位玩家的成绩
type GameResult struct {
	PlayerName string `json:"player_name"`
	Score      int    `json:"score"`
}

// LeaderboardManager 排行榜管理器，以玩家昵称为成员累计得分
type LeaderboardManager struct {
	redis *redis.Client
	now   func() time.Time
}

// NewLeaderboardManager 创建排行榜管理器
func NewLeaderboardManager(client *redis.Client) *LeaderboardManager {
	return &LeaderboardManager{redis: client, now: time.Now}
}

func (lm *LeaderboardManager) dailyKey() string {
	return dailyLeaderboard + lm.now().Format("2006-01-02")
}

// RecordGameResults 累加一局的成绩，同一个事务内写入总榜、日榜和场次
func (lm *LeaderboardManager) RecordGameResults(ctx context.Context, results []GameResult) error {
	if len(results) == 0 {
		return nil
	}

	daily := lm.dailyKey()
	pipe := lm.redis.TxPipeline()
	for _, r := range results {
		pipe.ZIncrBy(ctx, leaderboardKey, float64(r.Score), r.PlayerName)
		pipe.ZIncrBy(ctx, daily, float64(r.Score), r.PlayerName)
		pipe.HIncrBy(ctx, gamesCountKey, r.PlayerName, 1)
	}
	pipe.Expire(ctx, daily, dailyExpiration)

	_, err := pipe.Exec(ctx)
	return err
}

// GetLeaderboardByKind 获取指定类型的排行榜（从高到低）
func (lm *LeaderboardManager) GetLeaderboardByKind(ctx context.Context, kind LeaderboardKind, limit int) ([]protocol.LeaderboardEntry, error) {
	if limit <= 0 {
		return []protocol.LeaderboardEntry{}, nil
	}

	key := leaderboardKey
	if kind == LeaderboardDaily {
		key = lm.dailyKey()
	}

	results, err := lm.redis.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(results))
	for _, z := range results {
		name, _ := z.Member.(string)
		names = append(names, name)
	}

	games := make([]any, len(names))
	if len(names) > 0 {
		games, err = lm.redis.HMGet(ctx, gamesCountKey, names...).Result()
		if err != nil {
			return nil, err
		}
	}

	entries := make([]protocol.LeaderboardEntry, 0, len(results))
	for i, z := range results {
		entry := protocol.LeaderboardEntry{
			Rank:       i + 1,
			PlayerName: names[i],
			Score:      int(z.Score),
		}
		if s, ok := games[i].(string); ok {
			entry.Games, _ = strconv.Atoi(s)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// GetPlayerRank 获取玩家总榜排名，未上榜返回 -1
func (lm *LeaderboardManager) GetPlayerRank(ctx context.Context, playerName string) (int64, error) {
	rank, err := lm.redis.ZRevRank(ctx, leaderboardKey, playerName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil // Redis 排名从 0 开始
}
