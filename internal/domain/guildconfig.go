package domain

import "strings"

// Default message templates, matching the values seeded on first run.
const (
	DefaultWelcomeMessage = "Welcome to the server, {user}! 👋"
	DefaultGoodbyeMessage = "Goodbye {user}, thanks for being part of our community! 👋"
	DefaultLevelUpMessage = "🎉 Congratulations {user}! You've reached level {level}!"
)

// GuildConfig holds per-guild moderation and messaging settings.
type GuildConfig struct {
	WelcomeChannelID      string   `json:"welcomeChannel,omitempty"`
	WelcomeMessage        string   `json:"welcomeMessage"`
	GoodbyeMessage        string   `json:"goodbyeMessage"`
	LevelUpMessage        string   `json:"levelUpMessage"`
	BlockedWords          []string `json:"blockedWords"`
	AntiLinkEnabled       bool     `json:"antiLink"`
	SpamProtectionEnabled bool     `json:"spamProtection"`
}

// NewGuildConfig returns a config populated with default templates and
// spam protection on, mirroring the initial state of a fresh guild.
func NewGuildConfig() GuildConfig {
	return GuildConfig{
		WelcomeMessage:        DefaultWelcomeMessage,
		GoodbyeMessage:        DefaultGoodbyeMessage,
		LevelUpMessage:        DefaultLevelUpMessage,
		BlockedWords:          []string{},
		SpamProtectionEnabled: true,
	}
}

// NormalizeWord lowercases and trims a blocked-word candidate.
func NormalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// AddBlockedWord appends word to the filter list after normalization.
// Returns false if the word is empty or already present.
func (c *GuildConfig) AddBlockedWord(word string) bool {
	word = NormalizeWord(word)
	if word == "" {
		return false
	}

	for _, existing := range c.BlockedWords {
		if existing == word {
			return false
		}
	}

	c.BlockedWords = append(c.BlockedWords, word)
	return true
}

// RemoveBlockedWord deletes word from the filter list, preserving order.
// Returns false if the word was not present.
func (c *GuildConfig) RemoveBlockedWord(word string) bool {
	word = NormalizeWord(word)

	for i, existing := range c.BlockedWords {
		if existing == word {
			c.BlockedWords = append(c.BlockedWords[:i], c.BlockedWords[i+1:]...)
			return true
		}
	}

	return false
}
