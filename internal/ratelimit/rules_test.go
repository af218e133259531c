package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avekrivov/warden-bot/pkg/config"
)

func TestRulesGetInteractionLimit(t *testing.T) {
	rules := NewRules(config.RateLimitConfig{
		PerUser: config.RateLimitRule{Limit: 10, Window: "10s"},
	})

	limit, window, err := rules.GetInteractionLimit()
	require.NoError(t, err)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 10*time.Second, window)
}

func TestRulesGetSpamLimit(t *testing.T) {
	rules := NewRules(config.RateLimitConfig{
		Spam: config.RateLimitRule{Limit: 5, Window: "5s"},
	})

	limit, window, err := rules.GetSpamLimit()
	require.NoError(t, err)
	assert.Equal(t, 5, limit)
	assert.Equal(t, 5*time.Second, window)
}

func TestRulesMissingWindow(t *testing.T) {
	rules := NewRules(config.RateLimitConfig{
		PerUser: config.RateLimitRule{Limit: 10},
	})

	_, _, err := rules.GetInteractionLimit()
	assert.Error(t, err)
}

func TestRulesMalformedWindow(t *testing.T) {
	rules := NewRules(config.RateLimitConfig{
		Spam: config.RateLimitRule{Limit: 5, Window: "five seconds"},
	})

	_, _, err := rules.GetSpamLimit()
	assert.Error(t, err)
}

func TestRulesWhitelist(t *testing.T) {
	rules := NewRules(config.RateLimitConfig{
		Whitelist: []string{"admin-1", "admin-2"},
	})

	assert.True(t, rules.IsWhitelisted("admin-1"))
	assert.False(t, rules.IsWhitelisted("someone-else"))
}

func TestRulesUpdateSwapsRules(t *testing.T) {
	rules := NewRules(config.RateLimitConfig{
		PerUser: config.RateLimitRule{Limit: 10, Window: "10s"},
	})

	rules.Update(config.RateLimitConfig{
		PerUser:   config.RateLimitRule{Limit: 3, Window: "1m"},
		Whitelist: []string{"admin-1"},
	})

	limit, window, err := rules.GetInteractionLimit()
	require.NoError(t, err)
	assert.Equal(t, 3, limit)
	assert.Equal(t, time.Minute, window)
	assert.True(t, rules.IsWhitelisted("admin-1"))
}
