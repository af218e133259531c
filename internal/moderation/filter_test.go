package moderation

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/avekrivov/warden-bot/internal/domain"
	"github.com/avekrivov/warden-bot/internal/ratelimit"
)

type alwaysSpam struct{}

func (alwaysSpam) IsSpam(Message) bool { return true }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFilter_Evaluate(t *testing.T) {
	testCases := []struct {
		name     string
		detector SpamDetector
		cfg      domain.GuildConfig
		content  string
		expected Verdict
	}{
		{
			name:     "clean message",
			cfg:      domain.GuildConfig{},
			content:  "hello there",
			expected: Verdict{Kind: VerdictClean},
		},
		{
			name:     "link blocked when anti-link enabled",
			cfg:      domain.GuildConfig{AntiLinkEnabled: true},
			content:  "check this out http://example.com",
			expected: Verdict{Kind: VerdictLink},
		},
		{
			name:     "link allowed when anti-link disabled",
			cfg:      domain.GuildConfig{AntiLinkEnabled: false},
			content:  "check this out http://example.com",
			expected: Verdict{Kind: VerdictClean},
		},
		{
			name:     "https link blocked",
			cfg:      domain.GuildConfig{AntiLinkEnabled: true},
			content:  "https://example.com/page",
			expected: Verdict{Kind: VerdictLink},
		},
		{
			name:     "blocked word substring match is case-insensitive",
			cfg:      domain.GuildConfig{BlockedWords: []string{"spoiler"}},
			content:  "huge SPOILERS ahead",
			expected: Verdict{Kind: VerdictBlockedWord, Word: "spoiler"},
		},
		{
			name:     "first matching word in list order wins",
			cfg:      domain.GuildConfig{BlockedWords: []string{"beta", "alpha"}},
			content:  "alpha and beta",
			expected: Verdict{Kind: VerdictBlockedWord, Word: "beta"},
		},
		{
			name:     "spam wins over blocked word",
			detector: alwaysSpam{},
			cfg: domain.GuildConfig{
				SpamProtectionEnabled: true,
				BlockedWords:          []string{"alpha"},
			},
			content:  "alpha alpha alpha",
			expected: Verdict{Kind: VerdictSpam},
		},
		{
			name:     "spam wins over link",
			detector: alwaysSpam{},
			cfg: domain.GuildConfig{
				SpamProtectionEnabled: true,
				AntiLinkEnabled:       true,
			},
			content:  "http://example.com",
			expected: Verdict{Kind: VerdictSpam},
		},
		{
			name:     "spam detector ignored when protection disabled",
			detector: alwaysSpam{},
			cfg:      domain.GuildConfig{SpamProtectionEnabled: false},
			content:  "anything",
			expected: Verdict{Kind: VerdictClean},
		},
		{
			name:     "link wins over blocked word",
			cfg:      domain.GuildConfig{AntiLinkEnabled: true, BlockedWords: []string{"example"}},
			content:  "http://example.com",
			expected: Verdict{Kind: VerdictLink},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			filter := NewFilter(tc.detector)
			verdict := filter.Evaluate(Message{AuthorID: "u1", Content: tc.content}, tc.cfg)
			assert.Equal(t, tc.expected, verdict)
		})
	}
}

func TestNoopSpamDetector(t *testing.T) {
	assert.False(t, NoopSpamDetector{}.IsSpam(Message{Content: "anything at all"}))
}

func TestRateSpamDetector(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(testLogger())
	detector := NewRateSpamDetector(limiter, 3, time.Minute, testLogger())

	msg := Message{AuthorID: "flooder", Content: "hi"}
	for i := 0; i < 3; i++ {
		assert.False(t, detector.IsSpam(msg), "message %d within budget", i+1)
	}

	assert.True(t, detector.IsSpam(msg))

	// a different author has their own window
	assert.False(t, detector.IsSpam(Message{AuthorID: "other", Content: "hi"}))
}

func TestRateSpamDetector_NilLimiterFailsOpen(t *testing.T) {
	detector := NewRateSpamDetector(nil, 3, time.Minute, testLogger())
	assert.False(t, detector.IsSpam(Message{AuthorID: "u1"}))
}

func TestVerdictKindString(t *testing.T) {
	assert.Equal(t, "clean", VerdictClean.String())
	assert.Equal(t, "spam", VerdictSpam.String())
	assert.Equal(t, "link", VerdictLink.String())
	assert.Equal(t, "blocked_word", VerdictBlockedWord.String())
}
