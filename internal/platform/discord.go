package platform

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	apperrors "github.com/avekrivov/warden-bot/internal/errors"
)

// DiscordClient implements Client over a discordgo session.
type DiscordClient struct {
	session *discordgo.Session
	log     *slog.Logger
}

var _ Client = (*DiscordClient)(nil)

func NewDiscordClient(session *discordgo.Session, log *slog.Logger) (*DiscordClient, error) {
	if session == nil {
		return nil, fmt.Errorf("discord session is required")
	}
	if log == nil {
		log = slog.Default()
	}

	return &DiscordClient{
		session: session,
		log:     log,
	}, nil
}

func (c *DiscordClient) SendMessage(ctx context.Context, channelID, content string) error {
	_, err := c.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return wrapPlatformErr("send message", err)
	}

	return nil
}

func (c *DiscordClient) SendEmbed(ctx context.Context, channelID string, embed Embed) error {
	_, err := c.session.ChannelMessageSendEmbed(channelID, toDiscordEmbed(embed), discordgo.WithContext(ctx))
	if err != nil {
		return wrapPlatformErr("send embed", err)
	}

	return nil
}

func (c *DiscordClient) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	if err := c.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return wrapPlatformErr("delete message", err)
	}

	return nil
}

func (c *DiscordClient) BanUser(ctx context.Context, guildID, userID, reason string) error {
	err := c.session.GuildBanCreateWithReason(guildID, userID, reason, 0, discordgo.WithContext(ctx))
	if err != nil {
		return wrapPlatformErr("ban user", err)
	}

	return nil
}

func (c *DiscordClient) KickUser(ctx context.Context, guildID, userID, reason string) error {
	err := c.session.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx))
	if err != nil {
		return wrapPlatformErr("kick user", err)
	}

	return nil
}

func (c *DiscordClient) TimeoutUser(ctx context.Context, guildID, userID string, duration time.Duration) error {
	until := time.Now().Add(duration)
	err := c.session.GuildMemberTimeout(guildID, userID, &until, discordgo.WithContext(ctx))
	if err != nil {
		return wrapPlatformErr("timeout user", err)
	}

	return nil
}

func (c *DiscordClient) RemoveTimeout(ctx context.Context, guildID, userID string) error {
	err := c.session.GuildMemberTimeout(guildID, userID, nil, discordgo.WithContext(ctx))
	if err != nil {
		return wrapPlatformErr("remove timeout", err)
	}

	return nil
}

func (c *DiscordClient) FetchUser(ctx context.Context, userID string) (*User, error) {
	u, err := c.session.User(userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapPlatformErr("fetch user", err)
	}

	return &User{
		ID:       u.ID,
		Username: u.Username,
		Bot:      u.Bot,
	}, nil
}

// CreateCommand registers a global application command and returns its
// platform-assigned id.
func (c *DiscordClient) CreateCommand(ctx context.Context, cmd Command) (string, error) {
	created, err := c.session.ApplicationCommandCreate(c.session.State.User.ID, "",
		&discordgo.ApplicationCommand{
			Name:        cmd.Name,
			Description: cmd.Description,
		}, discordgo.WithContext(ctx))
	if err != nil {
		return "", wrapPlatformErr("create command", err)
	}

	return created.ID, nil
}

func (c *DiscordClient) DeleteCommand(ctx context.Context, commandID string) error {
	err := c.session.ApplicationCommandDelete(c.session.State.User.ID, "", commandID, discordgo.WithContext(ctx))
	if err != nil {
		return wrapPlatformErr("delete command", err)
	}

	return nil
}

func toDiscordEmbed(embed Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title:       embed.Title,
		Description: embed.Description,
		Color:       embed.Color,
	}

	for _, f := range embed.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}

	if embed.Footer != "" {
		out.Footer = &discordgo.MessageEmbedFooter{Text: embed.Footer}
	}

	return out
}

func wrapPlatformErr(op string, err error) error {
	return apperrors.NewPlatformError(op, err)
}
