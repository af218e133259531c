package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avekrivov/warden-bot/internal/guildconfig"
)

// Moderator is the subset of platform actions the moderation commands need.
type Moderator interface {
	UserFetcher
	BanUser(ctx context.Context, guildID, userID, reason string) error
	KickUser(ctx context.Context, guildID, userID, reason string) error
	TimeoutUser(ctx context.Context, guildID, userID string, duration time.Duration) error
	RemoveTimeout(ctx context.Context, guildID, userID string) error
}

func resolveName(ctx context.Context, users UserFetcher, userID string) string {
	if users != nil {
		if u, err := users.FetchUser(ctx, userID); err == nil {
			return u.Username
		}
	}
	return userID
}

// NewBanHandler permanently removes a user from the guild.
func NewBanHandler(mod Moderator, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx context.Context, ic *Interaction) error {
		targetID := ic.UserOption("user")
		reason := ic.StringOption("reason", "No reason provided")
		if targetID == "" {
			return ic.ReplyEphemeral("A user is required.")
		}

		if err := mod.BanUser(ctx, ic.GuildID, targetID, reason); err != nil {
			log.Error("ban failed",
				slog.String("guild_id", ic.GuildID),
				slog.String("user_id", targetID),
				slog.Any("error", err))
			return ic.Reply("Failed to ban user.")
		}

		name := resolveName(ctx, mod, targetID)
		return ic.Reply(fmt.Sprintf("%s has been banned. Reason: %s", name, reason))
	}
}

// NewKickHandler removes a user from the guild.
func NewKickHandler(mod Moderator, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx context.Context, ic *Interaction) error {
		targetID := ic.UserOption("user")
		reason := ic.StringOption("reason", "No reason provided")
		if targetID == "" {
			return ic.ReplyEphemeral("A user is required.")
		}

		if err := mod.KickUser(ctx, ic.GuildID, targetID, reason); err != nil {
			log.Error("kick failed",
				slog.String("guild_id", ic.GuildID),
				slog.String("user_id", targetID),
				slog.Any("error", err))
			return ic.Reply("Failed to kick user.")
		}

		name := resolveName(ctx, mod, targetID)
		return ic.Reply(fmt.Sprintf("%s has been kicked. Reason: %s", name, reason))
	}
}

// NewMuteHandler times a user out for the given number of minutes.
func NewMuteHandler(mod Moderator, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx context.Context, ic *Interaction) error {
		targetID := ic.UserOption("user")
		minutes := ic.IntOption("duration", 0)
		if targetID == "" || minutes <= 0 {
			return ic.ReplyEphemeral("A user and a positive duration are required.")
		}

		duration := time.Duration(minutes) * time.Minute
		if err := mod.TimeoutUser(ctx, ic.GuildID, targetID, duration); err != nil {
			log.Error("timeout failed",
				slog.String("guild_id", ic.GuildID),
				slog.String("user_id", targetID),
				slog.Any("error", err))
			return ic.Reply("Failed to timeout user.")
		}

		name := resolveName(ctx, mod, targetID)
		reason := ic.StringOption("reason", "No reason provided")
		return ic.Reply(fmt.Sprintf("%s has been timed out for %d minutes. Reason: %s", name, minutes, reason))
	}
}

// NewUnmuteHandler lifts an active timeout.
func NewUnmuteHandler(mod Moderator, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx context.Context, ic *Interaction) error {
		targetID := ic.UserOption("user")
		if targetID == "" {
			return ic.ReplyEphemeral("A user is required.")
		}

		if err := mod.RemoveTimeout(ctx, ic.GuildID, targetID); err != nil {
			log.Error("timeout removal failed",
				slog.String("guild_id", ic.GuildID),
				slog.String("user_id", targetID),
				slog.Any("error", err))
			return ic.Reply("Failed to remove timeout.")
		}

		name := resolveName(ctx, mod, targetID)
		return ic.Reply(fmt.Sprintf("%s's timeout has been removed.", name))
	}
}

// NewAddWordHandler adds a word to the guild's blocked list.
func NewAddWordHandler(cfg *guildconfig.Service, log *slog.Logger) Handler {
	return func(ctx context.Context, ic *Interaction) error {
		word := strings.ToLower(ic.StringOption("word", ""))
		if word == "" {
			return ic.ReplyEphemeral("A word is required.")
		}

		added, err := cfg.AddBlockedWord(ctx, ic.GuildID, word)
		if err != nil {
			return err
		}

		if !added {
			return ic.Reply(fmt.Sprintf("Word %q is already in the filter.", word))
		}

		return ic.Reply(fmt.Sprintf("Word %q added to filter.", word))
	}
}

// NewRemoveWordHandler drops a word from the guild's blocked list.
func NewRemoveWordHandler(cfg *guildconfig.Service, log *slog.Logger) Handler {
	return func(ctx context.Context, ic *Interaction) error {
		word := strings.ToLower(ic.StringOption("word", ""))
		if word == "" {
			return ic.ReplyEphemeral("A word is required.")
		}

		removed, err := cfg.RemoveBlockedWord(ctx, ic.GuildID, word)
		if err != nil {
			return err
		}

		if !removed {
			return ic.Reply(fmt.Sprintf("Word %q not found in filter.", word))
		}

		return ic.Reply(fmt.Sprintf("Word %q removed from filter.", word))
	}
}

// NewToggleAntiLinkHandler flips link filtering for the guild.
func NewToggleAntiLinkHandler(cfg *guildconfig.Service, log *slog.Logger) Handler {
	return func(ctx context.Context, ic *Interaction) error {
		enabled, err := cfg.ToggleAntiLink(ctx, ic.GuildID)
		if err != nil {
			return err
		}

		return ic.Reply(fmt.Sprintf("Anti-link protection %s.", onOff(enabled)))
	}
}

// NewToggleSpamHandler flips the spam heuristic for the guild.
func NewToggleSpamHandler(cfg *guildconfig.Service, log *slog.Logger) Handler {
	return func(ctx context.Context, ic *Interaction) error {
		enabled, err := cfg.ToggleSpamProtection(ctx, ic.GuildID)
		if err != nil {
			return err
		}

		return ic.Reply(fmt.Sprintf("Spam protection %s.", onOff(enabled)))
	}
}

func onOff(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
