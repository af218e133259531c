package bot

import (
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/avekrivov/warden-bot/internal/bot/handlers"
	"github.com/avekrivov/warden-bot/internal/dedupe"
	errors "github.com/avekrivov/warden-bot/internal/errors"
	"github.com/avekrivov/warden-bot/internal/ratelimit"
	"github.com/avekrivov/warden-bot/pkg/metrics"
)

// RecoveryMiddleware catches panics, reports them via the centralized handler,
// and notifies the user.
func RecoveryMiddleware(log *slog.Logger, errHandler *errors.Handler) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(ctx context.Context, ic *handlers.Interaction) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered in handler",
						slog.Any("panic", r), slog.String("stack", string(debug.Stack())))

					userMsg := "⚠️ Something went wrong. Please try again later."
					if errHandler != nil {
						appErr := errors.NewStoreError(fmt.Errorf("panic recovered: %v", r))
						if msg, _ := errHandler.Handle(ctx, appErr); msg != "" {
							userMsg = msg
						}
					}

					if ic != nil {
						if sendErr := ic.ReplyEphemeral(userMsg); sendErr != nil {
							log.Error("failed to notify user about panic", slog.Any("error", sendErr))
						}
					}

					err = nil
				}
			}()

			return next(ctx, ic)
		}
	}
}

// DedupeMiddleware drops redelivered interactions by their platform event id.
func DedupeMiddleware(guard dedupe.Guard, log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(ctx context.Context, ic *handlers.Interaction) error {
			if guard == nil || ic == nil {
				return next(ctx, ic)
			}

			seen, err := guard.Seen(ctx, ic.ID)
			if err != nil {
				// guard already logged; process rather than drop
				return next(ctx, ic)
			}

			if seen {
				log.Info("dropping redelivered interaction",
					slog.String("interaction_id", ic.ID),
					slog.String("command", ic.CommandName))
				return nil
			}

			return next(ctx, ic)
		}
	}
}

// ErrorHandlingMiddleware centralizes error reporting and user messaging for
// handler failures.
func ErrorHandlingMiddleware(errHandler *errors.Handler) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(ctx context.Context, ic *handlers.Interaction) error {
			err := next(ctx, ic)
			if err == nil {
				return nil
			}

			userMsg := "An error occurred while executing this command."
			if errHandler != nil {
				if msg, _ := errHandler.Handle(ctx, err); msg != "" {
					userMsg = msg
				}
			}

			if ic != nil {
				_ = ic.ReplyEphemeral(userMsg)
			}

			return nil
		}
	}
}

// LoggingMiddleware logs basic telemetry about incoming interactions.
func LoggingMiddleware(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(ctx context.Context, ic *handlers.Interaction) error {
			start := time.Now()

			command, userID, guildID := "", "", ""
			if ic != nil {
				command = ic.CommandName
				userID = ic.UserID
				guildID = ic.GuildID
			}

			log.Info("handling interaction",
				slog.String("command", command),
				slog.String("user_id", userID),
				slog.String("guild_id", guildID))

			err := next(ctx, ic)

			log.Info("handled interaction",
				slog.String("command", command),
				slog.String("user_id", userID),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err))

			return err
		}
	}
}

// RateLimitMiddleware enforces the per-user interaction limit.
func RateLimitMiddleware(limiter ratelimit.Limiter, rules *ratelimit.Rules, log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(ctx context.Context, ic *handlers.Interaction) error {
			if limiter == nil || rules == nil || ic == nil {
				return next(ctx, ic)
			}

			if rules.IsWhitelisted(ic.UserID) {
				return next(ctx, ic)
			}

			limit, window, err := rules.GetInteractionLimit()
			if err != nil {
				log.Error("failed to load per-user rate limit",
					slog.String("user_id", ic.UserID), slog.Any("error", err))
				return next(ctx, ic)
			}

			key := fmt.Sprintf("interaction:%s", ic.UserID)
			result, err := limiter.Check(ctx, key, limit, window)
			if err != nil && !goerrors.Is(err, ratelimit.ErrLimitExceeded) {
				log.Warn("rate limiter error",
					slog.String("user_id", ic.UserID), slog.Any("error", err))
				return next(ctx, ic)
			}

			if result != nil && !result.Allowed {
				log.Warn("rate limit exceeded", slog.String("user_id", ic.UserID))
				return ic.ReplyEphemeral("Rate limit exceeded. Try again later.")
			}

			return next(ctx, ic)
		}
	}
}

// MetricsMiddleware measures execution time and status for handlers.
func MetricsMiddleware(next handlers.Handler) handlers.Handler {
	if next == nil {
		return nil
	}

	return func(ctx context.Context, ic *handlers.Interaction) error {
		start := time.Now()
		err := next(ctx, ic)

		command := "unknown"
		if ic != nil && ic.CommandName != "" {
			command = ic.CommandName
		}

		status := "ok"
		if err != nil {
			status = "error"
		}

		metrics.RecordCommand(command, status, time.Since(start))

		return err
	}
}
