package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"quizfund/internal/model"
)

// LeaderboardCache mirrors live standings in a Redis ZSET per room and
// stores the frozen final snapshot. The in-memory room store stays
// authoritative; this mirror only feeds dashboards and the host
// leaderboard endpoint.
type LeaderboardCache interface {
	UpdateScore(ctx context.Context, roomID, playerID string, score int) error
	GetTop(ctx context.Context, roomID string, limit int) ([]LiveEntry, error)
	GetRank(ctx context.Context, roomID, playerID string) (int64, error)
	SetFrozen(ctx context.Context, roomID string, entries []model.FinalLeaderboardEntry) error
	GetFrozen(ctx context.Context, roomID string) ([]model.FinalLeaderboardEntry, error)
	Clear(ctx context.Context, roomID string) error
}

// LiveEntry is a single live standings row.
type LiveEntry struct {
	PlayerID string `json:"playerId"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

type leaderboardCache struct {
	client *redis.Client
}

func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &leaderboardCache{client: client}
}

func (c *leaderboardCache) key(roomID string) string {
	return fmt.Sprintf("room:%s:lb", roomID)
}

func (c *leaderboardCache) frozenKey(roomID string) string {
	return fmt.Sprintf("room:%s:lb:frozen", roomID)
}

func (c *leaderboardCache) UpdateScore(ctx context.Context, roomID, playerID string, score int) error {
	return c.client.ZAdd(ctx, c.key(roomID), redis.Z{
		Score:  float64(score),
		Member: playerID,
	}).Err()
}

func (c *leaderboardCache) GetTop(ctx context.Context, roomID string, limit int) ([]LiveEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(roomID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LiveEntry, len(results))
	for i, z := range results {
		entries[i] = LiveEntry{
			PlayerID: z.Member.(string),
			Score:    int(z.Score),
			Rank:     i + 1,
		}
	}
	return entries, nil
}

func (c *leaderboardCache) GetRank(ctx context.Context, roomID, playerID string) (int64, error) {
	rank, err := c.client.ZRevRank(ctx, c.key(roomID), playerID).Result()
	if err == redis.Nil {
		return -1, nil
	}
	return rank + 1, err // 1-indexed
}

// SetFrozen stores the final snapshot with no TTL: reconciliation may
// read it long after the room is gone from memory.
func (c *leaderboardCache) SetFrozen(ctx context.Context, roomID string, entries []model.FinalLeaderboardEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.frozenKey(roomID), data, 0).Err()
}

func (c *leaderboardCache) GetFrozen(ctx context.Context, roomID string) ([]model.FinalLeaderboardEntry, error) {
	data, err := c.client.Get(ctx, c.frozenKey(roomID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []model.FinalLeaderboardEntry
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *leaderboardCache) Clear(ctx context.Context, roomID string) error {
	return c.client.Del(ctx, c.key(roomID)).Err()
}
