// Copyright 2025 LoaniFi
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"loanifi/backend/conversation"
)

// DefaultSessionTTL is how long a cached session context lives without being
// refreshed by a new turn.
const DefaultSessionTTL = 30 * time.Minute

// RedisSessionCache implements SessionCache on Redis with per-key TTL
type RedisSessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionCache creates a session cache. A zero ttl uses
// DefaultSessionTTL.
func NewRedisSessionCache(client *redis.Client, ttl time.Duration) *RedisSessionCache {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionCache{client: client, ttl: ttl}
}

// ConnectRedis creates and pings a Redis client
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func sessionKey(conversationID string) string {
	return "session:" + conversationID
}

// GetContext returns the cached context, or ErrCacheMiss
func (c *RedisSessionCache) GetContext(ctx context.Context, conversationID string) (*conversation.Context, error) {
	data, err := c.client.Get(ctx, sessionKey(conversationID)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session cache: %w", err)
	}

	restored, err := conversation.UnmarshalContext(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached session: %w", err)
	}
	return restored, nil
}

// SetContext caches the context and refreshes its TTL
func (c *RedisSessionCache) SetContext(ctx context.Context, conversationID string, conv *conversation.Context) error {
	var data []byte
	var err error
	if conv == nil {
		data, err = json.Marshal(struct{}{})
	} else {
		data, err = conv.Marshal()
	}
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := c.client.Set(ctx, sessionKey(conversationID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached context
func (c *RedisSessionCache) Invalidate(ctx context.Context, conversationID string) error {
	if err := c.client.Del(ctx, sessionKey(conversationID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate session cache: %w", err)
	}
	return nil
}
