package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/avekrivov/warden-bot/internal/errors"
	"github.com/avekrivov/warden-bot/internal/platform"
	"github.com/avekrivov/warden-bot/internal/schedule"
)

// NewScheduleMessageHandler registers a recurring announcement. The cron
// expression is validated before anything is persisted, so a bad expression
// leaves no trace.
func NewScheduleMessageHandler(registry *schedule.Registry, log *slog.Logger) Handler {
	return func(ctx context.Context, ic *Interaction) error {
		channelID := ic.ChannelOption("channel")
		message := ic.StringOption("message", "")
		cronExpr := ic.StringOption("cron", "")
		if channelID == "" || message == "" || cronExpr == "" {
			return ic.ReplyEphemeral("A channel, a message and a cron expression are required.")
		}

		id, err := registry.Create(ctx, ic.GuildID, channelID, message, cronExpr)
		if err != nil {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) && appErr.Code == apperrors.CodeInvalidSchedule {
				return ic.ReplyEphemeral(fmt.Sprintf("Invalid cron expression: %q", cronExpr))
			}
			return err
		}

		return ic.Reply(fmt.Sprintf("Message scheduled! ID: %d", id))
	}
}

// NewListScheduledHandler shows the guild's scheduled announcements.
func NewListScheduledHandler(registry *schedule.Registry, log *slog.Logger) Handler {
	return func(ctx context.Context, ic *Interaction) error {
		items, err := registry.List(ctx, ic.GuildID)
		if err != nil {
			return err
		}

		if len(items) == 0 {
			return ic.Reply("No scheduled messages found.")
		}

		var sb strings.Builder
		for _, item := range items {
			// Truncate on rune boundaries so multi-byte text is not split.
			preview := item.Message
			if runes := []rune(preview); len(runes) > 50 {
				preview = string(runes[:50]) + "..."
			}
			fmt.Fprintf(&sb, "**ID:** %d\n**Channel:** <#%s>\n**Cron:** %s\n**Message:** %s\n\n",
				item.ID, item.ChannelID, item.CronExpr, preview)
		}

		return ic.ReplyEmbed(platform.Embed{
			Title:       "Scheduled Messages",
			Color:       colorInfo,
			Description: sb.String(),
		})
	}
}

// NewDeleteScheduledHandler cancels and removes a scheduled announcement.
func NewDeleteScheduledHandler(registry *schedule.Registry, log *slog.Logger) Handler {
	return func(ctx context.Context, ic *Interaction) error {
		id := ic.IntOption("id", 0)
		if id == 0 {
			return ic.ReplyEphemeral("A schedule id is required.")
		}

		err := registry.Delete(ctx, id, ic.GuildID)
		if err != nil {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) && appErr.Code == apperrors.CodeNotFound {
				return ic.Reply(fmt.Sprintf("Scheduled message %d not found.", id))
			}
			return err
		}

		return ic.Reply(fmt.Sprintf("Scheduled message %d deleted.", id))
	}
}
