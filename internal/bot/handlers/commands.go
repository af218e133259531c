package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/avekrivov/warden-bot/internal/commands"
	apperrors "github.com/avekrivov/warden-bot/internal/errors"
	"github.com/avekrivov/warden-bot/internal/platform"
)

// NewCreateCommandHandler stores a custom command and registers it with the
// platform so it shows up in the slash-command picker.
func NewCreateCommandHandler(svc *commands.Service, log *slog.Logger) Handler {
	return func(ctx context.Context, ic *Interaction) error {
		name := strings.ToLower(ic.StringOption("name", ""))
		response := ic.StringOption("response", "")
		if name == "" || response == "" {
			return ic.ReplyEphemeral("Both a name and a response are required.")
		}

		if err := svc.Create(ctx, name, response); err != nil {
			return err
		}

		return ic.Reply(fmt.Sprintf("Custom command `/%s` created!", name))
	}
}

// NewDeleteCommandHandler removes a custom command.
func NewDeleteCommandHandler(svc *commands.Service, log *slog.Logger) Handler {
	return func(ctx context.Context, ic *Interaction) error {
		name := strings.ToLower(ic.StringOption("name", ""))
		if name == "" {
			return ic.ReplyEphemeral("A command name is required.")
		}

		err := svc.Delete(ctx, name)
		if err != nil {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) && appErr.Code == apperrors.CodeNotFound {
				return ic.Reply(fmt.Sprintf("Custom command `/%s` not found!", name))
			}
			return err
		}

		return ic.Reply(fmt.Sprintf("Custom command `/%s` deleted!", name))
	}
}

// NewListCommandsHandler enumerates the stored custom commands.
func NewListCommandsHandler(svc *commands.Service, log *slog.Logger) Handler {
	return func(ctx context.Context, ic *Interaction) error {
		names, err := svc.List(ctx)
		if err != nil {
			return err
		}

		if len(names) == 0 {
			return ic.Reply("No custom commands found.")
		}

		quoted := make([]string, 0, len(names))
		for _, name := range names {
			quoted = append(quoted, fmt.Sprintf("`/%s`", name))
		}

		return ic.ReplyEmbed(platform.Embed{
			Title:       "Custom Commands",
			Color:       colorInfo,
			Description: strings.Join(quoted, ", "),
		})
	}
}

// NewCustomCommandHandler answers an invocation of a stored custom command.
// Unknown names reply nothing, matching the platform's silent fallthrough.
func NewCustomCommandHandler(svc *commands.Service, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx context.Context, ic *Interaction) error {
		response, err := svc.Lookup(ctx, ic.CommandName)
		if err != nil {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) && appErr.Code == apperrors.CodeNotFound {
				log.Info("unknown command invoked", slog.String("command", ic.CommandName))
				return nil
			}
			return err
		}

		return ic.Reply(response)
	}
}
