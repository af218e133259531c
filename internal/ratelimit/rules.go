package ratelimit

import (
	"errors"
	"sync"
	"time"

	"github.com/avekrivov/warden-bot/pkg/config"
)

// Rules resolves configured rate-limit rules for the bot's two consumers:
// the per-user interaction limit and the message spam heuristic. Rules are
// hot-swappable via Update when the config file changes.
type Rules struct {
	mu     sync.RWMutex
	config config.RateLimitConfig
}

// NewRules constructs rate limiting rules from configuration settings.
func NewRules(cfg config.RateLimitConfig) *Rules {
	return &Rules{config: cfg}
}

// Update replaces the active rule set.
func (r *Rules) Update(cfg config.RateLimitConfig) {
	r.mu.Lock()
	r.config = cfg
	r.mu.Unlock()
}

// IsWhitelisted returns true if the userID bypasses rate limits.
func (r *Rules) IsWhitelisted(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.config.Whitelist {
		if id == userID {
			return true
		}
	}
	return false
}

// GetInteractionLimit returns the per-user slash-command rule.
func (r *Rules) GetInteractionLimit() (int, time.Duration, error) {
	r.mu.RLock()
	rule := r.config.PerUser
	r.mu.RUnlock()

	return parseRule(rule)
}

// GetSpamLimit returns the messages-per-window rule used by the spam
// heuristic.
func (r *Rules) GetSpamLimit() (int, time.Duration, error) {
	r.mu.RLock()
	rule := r.config.Spam
	r.mu.RUnlock()

	return parseRule(rule)
}

func parseRule(rule config.RateLimitRule) (int, time.Duration, error) {
	if rule.Window == "" {
		return rule.Limit, 0, errors.New("window duration is not set")
	}
	window, err := time.ParseDuration(rule.Window)
	if err != nil {
		return 0, 0, err
	}
	return rule.Limit, window, nil
}
