package moderation

import (
	"context"
	"log/slog"
	"time"

	"github.com/avekrivov/warden-bot/internal/ratelimit"
)

// NoopSpamDetector never flags anything. Used when no limiter is wired.
type NoopSpamDetector struct{}

func (NoopSpamDetector) IsSpam(Message) bool { return false }

// RateSpamDetector flags an author who exceeds a per-window message budget,
// using the shared sliding-window limiter.
type RateSpamDetector struct {
	limiter ratelimit.Limiter
	limit   int
	window  time.Duration
	log     *slog.Logger
}

func NewRateSpamDetector(limiter ratelimit.Limiter, limit int, window time.Duration, log *slog.Logger) *RateSpamDetector {
	if log == nil {
		log = slog.Default()
	}

	return &RateSpamDetector{
		limiter: limiter,
		limit:   limit,
		window:  window,
		log:     log,
	}
}

// IsSpam counts the message against the author's window. A limiter failure
// is treated as not-spam: moderation must not start deleting messages
// because redis blinked.
func (d *RateSpamDetector) IsSpam(msg Message) bool {
	if d.limiter == nil || d.limit <= 0 || msg.AuthorID == "" {
		return false
	}

	result, err := d.limiter.Check(context.Background(), "spam:"+msg.AuthorID, d.limit, d.window)
	if err != nil && result == nil {
		d.log.Warn("spam limiter check failed", slog.String("author_id", msg.AuthorID), slog.Any("error", err))
		return false
	}

	return result != nil && !result.Allowed
}
