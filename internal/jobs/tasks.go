package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/avekrivov/warden-bot/internal/domain"
)

const (
	TaskTypeScheduleDispatch = "schedule:dispatch"
)

const (
	QueueDefault = "default"
	QueueLow     = "low"
)

// maxDispatchRetries bounds redelivery attempts for one cron firing; an
// unreachable channel is skipped after that, never retried forever.
const maxDispatchRetries = 3

// ScheduleDispatchPayload carries one scheduled announcement to the worker.
type ScheduleDispatchPayload struct {
	ScheduleID int64  `json:"schedule_id"`
	GuildID    string `json:"guild_id"`
	ChannelID  string `json:"channel_id"`
	Message    string `json:"message"`
}

// NewScheduleDispatchTask builds the task registered against a cron entry.
func NewScheduleDispatchTask(msg domain.ScheduledMessage) (*asynq.Task, error) {
	payload, err := json.Marshal(ScheduleDispatchPayload{
		ScheduleID: msg.ID,
		GuildID:    msg.GuildID,
		ChannelID:  msg.ChannelID,
		Message:    msg.Message,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeScheduleDispatch, payload,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(maxDispatchRetries),
	), nil
}
