// Package moderation classifies incoming messages against a guild's
// moderation settings. Evaluation never mutates state; acting on a verdict
// (deleting the message, notifying the channel) is the caller's job.
package moderation

import (
	"regexp"
	"strings"

	"github.com/avekrivov/warden-bot/internal/domain"
)

// VerdictKind enumerates the outcomes of evaluating a message.
type VerdictKind int

const (
	VerdictClean VerdictKind = iota
	VerdictSpam
	VerdictLink
	VerdictBlockedWord
)

func (k VerdictKind) String() string {
	switch k {
	case VerdictClean:
		return "clean"
	case VerdictSpam:
		return "spam"
	case VerdictLink:
		return "link"
	case VerdictBlockedWord:
		return "blocked_word"
	default:
		return "unknown"
	}
}

// Verdict is the classification of a single message. Word is set only for
// VerdictBlockedWord and names the first matching filter entry.
type Verdict struct {
	Kind VerdictKind
	Word string
}

// Message is the slice of an incoming message the filter needs.
type Message struct {
	AuthorID  string
	ChannelID string
	Content   string
}

var linkPattern = regexp.MustCompile(`https?://\S+`)

// SpamDetector flags messages that look like spam. Implementations must be
// safe for concurrent use.
type SpamDetector interface {
	IsSpam(msg Message) bool
}

// Filter evaluates messages in a fixed short-circuit order: spam, then
// links, then blocked words. The order is contractual; it decides which
// notice the caller posts.
type Filter struct {
	spam SpamDetector
}

func NewFilter(spam SpamDetector) *Filter {
	if spam == nil {
		spam = NoopSpamDetector{}
	}

	return &Filter{spam: spam}
}

// Evaluate classifies msg under cfg and returns the first matching verdict.
func (f *Filter) Evaluate(msg Message, cfg domain.GuildConfig) Verdict {
	if cfg.SpamProtectionEnabled && f.spam.IsSpam(msg) {
		return Verdict{Kind: VerdictSpam}
	}

	if cfg.AntiLinkEnabled && linkPattern.MatchString(msg.Content) {
		return Verdict{Kind: VerdictLink}
	}

	lowered := strings.ToLower(msg.Content)
	for _, word := range cfg.BlockedWords {
		if word == "" {
			continue
		}
		if strings.Contains(lowered, word) {
			return Verdict{Kind: VerdictBlockedWord, Word: word}
		}
	}

	return Verdict{Kind: VerdictClean}
}
