package platform

import (
	"context"
	"time"
)

// Embed is a platform-neutral rich message. The discord client maps it onto
// discordgo's embed type; tests substitute a fake without pulling the SDK in.
type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []EmbedField
	Footer      string
}

type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// User is the subset of platform profile data the bot surfaces.
type User struct {
	ID       string
	Username string
	Bot      bool
}

// Command describes a slash command to register with the platform.
type Command struct {
	Name        string
	Description string
}

// Client is everything the bot needs from the chat platform. Handlers and
// services depend on this, never on the SDK session directly.
type Client interface {
	SendMessage(ctx context.Context, channelID, content string) error
	SendEmbed(ctx context.Context, channelID string, embed Embed) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error

	BanUser(ctx context.Context, guildID, userID, reason string) error
	KickUser(ctx context.Context, guildID, userID, reason string) error
	TimeoutUser(ctx context.Context, guildID, userID string, duration time.Duration) error
	RemoveTimeout(ctx context.Context, guildID, userID string) error

	FetchUser(ctx context.Context, userID string) (*User, error)

	CreateCommand(ctx context.Context, cmd Command) (string, error)
	DeleteCommand(ctx context.Context, commandID string) error
}
