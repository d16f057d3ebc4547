package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"chatfeed/internal/model"
)

const generationKey = "chat:feed:gen"

// FeedCache stores pages of the public feed keyed by the caller's lastId.
// Every write bumps a generation counter that is part of the page key, so
// pages cached before a write are never served after it.
type FeedCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewFeedCache(client *redisv9.Client, ttl time.Duration) *FeedCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &FeedCache{
		client: client,
		ttl:    ttl,
	}
}

// Generation returns the current feed generation; 0 if no write was recorded.
func (c *FeedCache) Generation(ctx context.Context) (int64, error) {
	raw, err := c.client.Get(ctx, generationKey).Result()
	if err == redisv9.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get feed generation failed: %w", err)
	}
	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse feed generation failed: %w", err)
	}
	return gen, nil
}

func (c *FeedCache) GetPage(ctx context.Context, gen int64, lastID uint) ([]model.Message, bool, error) {
	raw, err := c.client.Get(ctx, c.pageKey(gen, lastID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get feed page failed: %w", err)
	}

	var messages []model.Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached feed page failed: %w", err)
	}
	return messages, true, nil
}

func (c *FeedCache) SetPage(ctx context.Context, gen int64, lastID uint, messages []model.Message) error {
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal feed page failed: %w", err)
	}
	if err := c.client.Set(ctx, c.pageKey(gen, lastID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set feed page failed: %w", err)
	}
	return nil
}

func (c *FeedCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("redis bump feed generation failed: %w", err)
	}
	return nil
}

func (c *FeedCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *FeedCache) pageKey(gen int64, lastID uint) string {
	return fmt.Sprintf("chat:feed:%d:after:%d", gen, lastID)
}
