// Package configcache provides Redis-backed caching for guild configs, so
// the hot messageCreate path does not hit the document store on every
// message.
package configcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/avekrivov/warden-bot/internal/domain"
)

const defaultTTL = 5 * time.Minute

// Source loads the authoritative config when the cache misses.
type Source interface {
	Get(ctx context.Context, guildID string) (domain.GuildConfig, error)
}

// Cache is a read-through cache over a config Source. A nil redis client
// degrades to pass-through reads.
type Cache struct {
	client *redis.Client
	source Source
	ttl    time.Duration
}

func New(client *redis.Client, source Source) *Cache {
	return &Cache{
		client: client,
		source: source,
		ttl:    defaultTTL,
	}
}

// Get returns the guild's config, from cache when possible. Cache failures
// fall back to the source; a broken cache must not break moderation.
func (c *Cache) Get(ctx context.Context, guildID string) (domain.GuildConfig, error) {
	if c.client == nil {
		return c.source.Get(ctx, guildID)
	}

	data, err := c.client.Get(ctx, cacheKey(guildID)).Bytes()
	if err == nil {
		var cfg domain.GuildConfig
		if decodeErr := json.Unmarshal(data, &cfg); decodeErr == nil {
			return cfg, nil
		}
		// fall through to the source on a corrupt entry
	} else if !errors.Is(err, redis.Nil) {
		return c.source.Get(ctx, guildID)
	}

	cfg, err := c.source.Get(ctx, guildID)
	if err != nil {
		return domain.GuildConfig{}, err
	}

	if payload, marshalErr := json.Marshal(cfg); marshalErr == nil {
		_ = c.client.Set(ctx, cacheKey(guildID), payload, c.ttl).Err()
	}

	return cfg, nil
}

// Invalidate removes the cached entry for guildID.
func (c *Cache) Invalidate(ctx context.Context, guildID string) error {
	if c.client == nil {
		return nil
	}

	if err := c.client.Del(ctx, cacheKey(guildID)).Err(); err != nil {
		return fmt.Errorf("invalidate guild config cache: %w", err)
	}

	return nil
}

func cacheKey(guildID string) string {
	return fmt.Sprintf("guildconfig:%s", guildID)
}
