package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quizfund/internal/model"
)

// RoomStateMeta is the lightweight room projection mirrored to Redis
// for ops visibility and cross-service reads.
type RoomStateMeta struct {
	RoomID      string          `json:"roomId"`
	HostID      string          `json:"hostId"`
	Phase       model.RoomPhase `json:"phase"`
	Round       int             `json:"round"`
	PlayerCount int             `json:"playerCount"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// RoomStateCache handles Redis operations for room state mirrors.
type RoomStateCache interface {
	SetState(ctx context.Context, meta *RoomStateMeta) error
	GetState(ctx context.Context, roomID string) (*RoomStateMeta, error)
	Delete(ctx context.Context, roomID string) error
}

type roomStateCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRoomStateCache(client *redis.Client) RoomStateCache {
	return &roomStateCache{
		client: client,
		ttl:    24 * time.Hour, // Mirrors expire after 24h
	}
}

func (c *roomStateCache) key(roomID string) string {
	return fmt.Sprintf("room:%s:state", roomID)
}

func (c *roomStateCache) SetState(ctx context.Context, meta *RoomStateMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(meta.RoomID), data, c.ttl).Err()
}

func (c *roomStateCache) GetState(ctx context.Context, roomID string) (*RoomStateMeta, error) {
	data, err := c.client.Get(ctx, c.key(roomID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var meta RoomStateMeta
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (c *roomStateCache) Delete(ctx context.Context, roomID string) error {
	return c.client.Del(ctx, c.key(roomID)).Err()
}
