package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/avekrivov/warden-bot/internal/domain"
)

// CronScheduler adapts asynq's cron scheduler to the schedule.Scheduler
// contract: Register validates the five-field expression and returns the
// entry id used for cancellation.
type CronScheduler struct {
	asynqScheduler *asynq.Scheduler
	log            *slog.Logger
}

func NewCronScheduler(redisOpt asynq.RedisConnOpt, log *slog.Logger) *CronScheduler {
	return &CronScheduler{
		asynqScheduler: asynq.NewScheduler(redisOpt, nil),
		log:            log,
	}
}

// Schedule registers a recurring dispatch task for msg. asynq rejects
// malformed cron expressions here, before anything else happens.
func (s *CronScheduler) Schedule(cronExpr string, msg domain.ScheduledMessage) (string, error) {
	task, err := NewScheduleDispatchTask(msg)
	if err != nil {
		return "", err
	}

	entryID, err := s.asynqScheduler.Register(cronExpr, task)
	if err != nil {
		return "", err
	}

	if s.log != nil {
		s.log.Info("scheduler: registered dispatch entry",
			slog.Int64("schedule_id", msg.ID),
			slog.String("cron", cronExpr),
			slog.String("entry_id", entryID))
	}

	return entryID, nil
}

// Cancel removes a previously registered entry so it stops firing.
func (s *CronScheduler) Cancel(handle string) error {
	return s.asynqScheduler.Unregister(handle)
}

// Run starts the scheduler loop in the background.
func (s *CronScheduler) Run() {
	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: starting")
	}

	go func() {
		if err := s.asynqScheduler.Run(); err != nil && s.log != nil {
			s.log.ErrorContext(context.Background(), "scheduler: run failed", "error", err)
		}
	}()
}

// Shutdown stops the scheduler loop.
func (s *CronScheduler) Shutdown() {
	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: shutting down")
	}

	s.asynqScheduler.Shutdown()
}
