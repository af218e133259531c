package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/avekrivov/warden-bot/internal/platform"
	"github.com/avekrivov/warden-bot/internal/progression"
)

const (
	colorInfo    = 0x0099ff
	colorSuccess = 0x00ff00
	colorGold    = 0xffd700
)

// UserFetcher resolves a user id to profile data for display.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) (*platform.User, error)
}

// NewLevelHandler reports a user's level card. Without a user option it
// describes the invoker.
func NewLevelHandler(engine *progression.Engine, users UserFetcher, log *slog.Logger) Handler {
	return func(ctx context.Context, ic *Interaction) error {
		targetID := ic.UserOption("user")
		targetName := ic.Username
		if targetID == "" {
			targetID = ic.UserID
		} else if users != nil {
			if u, err := users.FetchUser(ctx, targetID); err == nil {
				targetName = u.Username
			}
		}

		progress, err := engine.Progress(ctx, targetID)
		if err != nil {
			return err
		}

		return ic.ReplyEmbed(platform.Embed{
			Title: fmt.Sprintf("%s's Level", targetName),
			Color: colorInfo,
			Fields: []platform.EmbedField{
				{Name: "Level", Value: fmt.Sprintf("%d", progress.Level), Inline: true},
				{Name: "XP", Value: fmt.Sprintf("%d", progress.Experience), Inline: true},
				{Name: "Messages", Value: fmt.Sprintf("%d", progress.MessageCount), Inline: true},
			},
		})
	}
}

// NewLeaderboardHandler renders the top ten users by experience.
func NewLeaderboardHandler(engine *progression.Engine, users UserFetcher, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx context.Context, ic *Interaction) error {
		entries, err := engine.Leaderboard(ctx, 10)
		if err != nil {
			return err
		}

		var sb strings.Builder
		for i, entry := range entries {
			name := entry.UserID
			if users != nil {
				if u, fetchErr := users.FetchUser(ctx, entry.UserID); fetchErr == nil {
					name = u.Username
				} else {
					log.Warn("leaderboard: failed to resolve user",
						slog.String("user_id", entry.UserID), slog.Any("error", fetchErr))
				}
			}

			fmt.Fprintf(&sb, "%d. **%s** - Level %d (%d XP)\n",
				i+1, name, entry.Progress.Level, entry.Progress.Experience)
		}

		description := sb.String()
		if description == "" {
			description = "No users found"
		}

		return ic.ReplyEmbed(platform.Embed{
			Title:       "🏆 Server Leaderboard",
			Color:       colorGold,
			Description: description,
		})
	}
}

// NewAddXPHandler grants (or, with a negative amount, revokes) experience.
func NewAddXPHandler(engine *progression.Engine, users UserFetcher, log *slog.Logger) Handler {
	return func(ctx context.Context, ic *Interaction) error {
		targetID := ic.UserOption("user")
		amount := ic.IntOption("amount", 0)
		if targetID == "" {
			return ic.ReplyEphemeral("A user is required.")
		}

		result, err := engine.RecordActivity(ctx, targetID, amount)
		if err != nil {
			return err
		}

		targetName := targetID
		if users != nil {
			if u, fetchErr := users.FetchUser(ctx, targetID); fetchErr == nil {
				targetName = u.Username
			}
		}

		return ic.ReplyEmbed(platform.Embed{
			Color: colorSuccess,
			Description: fmt.Sprintf("Added %d XP to %s. They now have %d XP and are level %d.",
				amount, targetName, result.TotalExperience, result.NewLevel),
		})
	}
}
