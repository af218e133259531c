package dedupe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL covers Discord's redelivery window with plenty of slack.
const DefaultTTL = 15 * time.Minute

// Guard filters redelivered gateway events so a command or message is
// processed exactly once per event id.
type Guard interface {
	// Seen marks id as handled, reporting true when it was already marked.
	Seen(ctx context.Context, id string) (bool, error)
}

type redisGuard struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

// NewRedisGuard builds a Guard over redis SETNX. A nil client disables
// deduplication entirely, which is the single-replica development setup.
func NewRedisGuard(client *redis.Client, ttl time.Duration, log *slog.Logger) Guard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = slog.Default()
	}

	return &redisGuard{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func (g *redisGuard) Seen(ctx context.Context, id string) (bool, error) {
	if g.client == nil || id == "" {
		return false, nil
	}

	acquired, err := g.client.SetNX(ctx, eventKey(id), 1, g.ttl).Result()
	if err != nil {
		// fail open: dropping a real event is worse than double handling
		g.log.Warn("dedupe guard unavailable, processing event anyway",
			slog.String("event_id", id), slog.Any("error", err))
		return false, err
	}

	return !acquired, nil
}

func eventKey(id string) string {
	return fmt.Sprintf("dedupe:event:%s", id)
}
