package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	apperrors "github.com/avekrivov/warden-bot/internal/errors"
	"github.com/avekrivov/warden-bot/internal/jobs"
	"github.com/avekrivov/warden-bot/pkg/metrics"
)

// Sender is the minimal platform surface a dispatch needs.
type Sender interface {
	SendMessage(ctx context.Context, channelID, content string) error
}

// DispatchHandler delivers scheduled announcements to their channel. An
// unavailable channel is logged and skipped; it must never take down the
// worker.
type DispatchHandler struct {
	sender  Sender
	breaker *apperrors.CircuitBreaker
	log     *slog.Logger
}

func NewDispatchHandler(sender Sender, log *slog.Logger) *DispatchHandler {
	if log == nil {
		log = slog.Default()
	}

	return &DispatchHandler{
		sender:  sender,
		breaker: apperrors.NewCircuitBreaker(),
		log:     log,
	}
}

func (h *DispatchHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.ScheduleDispatchPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.log.ErrorContext(ctx, "dispatch: failed to decode payload",
			slog.String("task_type", t.Type()), slog.Any("error", err))
		// a malformed payload will never succeed, drop it
		return nil
	}

	err := h.breaker.Call(func() error {
		return apperrors.WithRetry(ctx, func() error {
			return h.sender.SendMessage(ctx, payload.ChannelID, payload.Message)
		})
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrCircuitOpen) {
			h.log.WarnContext(ctx, "dispatch: platform circuit open, skipping firing",
				slog.Int64("schedule_id", payload.ScheduleID))
			metrics.RecordScheduledDispatch("skipped")
			return nil
		}

		h.log.ErrorContext(ctx, "dispatch: send failed",
			slog.Int64("schedule_id", payload.ScheduleID),
			slog.String("channel_id", payload.ChannelID),
			slog.Any("error", err))
		metrics.RecordScheduledDispatch("error")

		// let asynq retry within the task's bounded retry budget
		return err
	}

	h.log.InfoContext(ctx, "dispatch: scheduled message sent",
		slog.Int64("schedule_id", payload.ScheduleID),
		slog.String("channel_id", payload.ChannelID))
	metrics.RecordScheduledDispatch("ok")

	return nil
}
