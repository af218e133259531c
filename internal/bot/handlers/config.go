package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avekrivov/warden-bot/internal/domain"
	"github.com/avekrivov/warden-bot/internal/guildconfig"
)

// NewSetWelcomeHandler binds the welcome channel and template for the guild.
func NewSetWelcomeHandler(cfg *guildconfig.Service, log *slog.Logger) Handler {
	return func(ctx context.Context, ic *Interaction) error {
		channelID := ic.ChannelOption("channel")
		message := ic.StringOption("message", domain.DefaultWelcomeMessage)
		if channelID == "" {
			return ic.ReplyEphemeral("A channel is required.")
		}

		if err := cfg.SetWelcome(ctx, ic.GuildID, channelID, message); err != nil {
			return err
		}

		return ic.Reply(fmt.Sprintf("Welcome channel set to <#%s> with message: %q", channelID, message))
	}
}

// NewSetGoodbyeHandler stores the goodbye template for the guild.
func NewSetGoodbyeHandler(cfg *guildconfig.Service, log *slog.Logger) Handler {
	return func(ctx context.Context, ic *Interaction) error {
		message := ic.StringOption("message", "")
		if message == "" {
			return ic.ReplyEphemeral("A message is required.")
		}

		if err := cfg.SetGoodbye(ctx, ic.GuildID, message); err != nil {
			return err
		}

		return ic.Reply(fmt.Sprintf("Goodbye message set to: %q", message))
	}
}

// NewSetLevelUpHandler stores the level-up announcement template.
func NewSetLevelUpHandler(cfg *guildconfig.Service, log *slog.Logger) Handler {
	return func(ctx context.Context, ic *Interaction) error {
		message := ic.StringOption("message", "")
		if message == "" {
			return ic.ReplyEphemeral("A message is required.")
		}

		if err := cfg.SetLevelUpMessage(ctx, ic.GuildID, message); err != nil {
			return err
		}

		return ic.Reply(fmt.Sprintf("Level-up message set to: %q", message))
	}
}
