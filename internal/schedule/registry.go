// Package schedule owns recurring announcements: persistence, registration
// against the external cron scheduler, and the mapping between stored
// records and live scheduler handles.
package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/avekrivov/warden-bot/internal/domain"
	apperrors "github.com/avekrivov/warden-bot/internal/errors"
	"github.com/avekrivov/warden-bot/internal/store"
	"github.com/avekrivov/warden-bot/pkg/metrics"
)

// Scheduler is the external cron facility. Schedule validates the
// expression and returns a cancellation handle; Cancel stops future
// firings for that handle.
type Scheduler interface {
	Schedule(cronExpr string, msg domain.ScheduledMessage) (handle string, err error)
	Cancel(handle string) error
}

// Registry persists scheduled messages and keeps the live handle for each
// record so deletion can cancel the registration, not just drop the row.
type Registry struct {
	store     store.Store
	scheduler Scheduler
	log       *slog.Logger

	mu      sync.Mutex
	handles map[int64]string
}

func NewRegistry(st store.Store, scheduler Scheduler, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}

	return &Registry{
		store:     st,
		scheduler: scheduler,
		log:       log,
		handles:   make(map[int64]string),
	}
}

// Create validates the expression against the scheduler, persists the
// record and retains the live handle. A malformed expression surfaces as an
// invalid-schedule error before anything is persisted.
func (r *Registry) Create(ctx context.Context, guildID, channelID, message, cronExpr string) (int64, error) {
	record := domain.ScheduledMessage{
		ID:        domain.NewScheduleID(),
		GuildID:   guildID,
		ChannelID: channelID,
		Message:   message,
		CronExpr:  cronExpr,
	}

	handle, err := r.scheduler.Schedule(cronExpr, record)
	if err != nil {
		return 0, apperrors.NewInvalidScheduleError(cronExpr, err)
	}

	if err := r.persistAppend(ctx, record); err != nil {
		// roll back the live registration so a failed create has no effect
		if cancelErr := r.scheduler.Cancel(handle); cancelErr != nil {
			r.log.Error("failed to cancel registration after persist failure",
				slog.Int64("schedule_id", record.ID), slog.Any("error", cancelErr))
		}
		return 0, err
	}

	r.mu.Lock()
	r.handles[record.ID] = handle
	metrics.SetActiveSchedules(len(r.handles))
	r.mu.Unlock()

	return record.ID, nil
}

// Delete removes the record matching id and guildID and cancels its live
// scheduler registration. Dropping only the persisted row would leave the
// message firing until the next restart.
func (r *Registry) Delete(ctx context.Context, id int64, guildID string) error {
	found := false

	err := r.store.Update(ctx, store.KeyScheduledMessages, func(raw json.RawMessage) (json.RawMessage, error) {
		records, err := decodeRecords(raw)
		if err != nil {
			return nil, err
		}

		kept := records[:0]
		for _, rec := range records {
			if rec.ID == id && rec.GuildID == guildID {
				found = true
				continue
			}
			kept = append(kept, rec)
		}
		if !found {
			return raw, nil
		}

		return encodeRecords(kept)
	})
	if err != nil {
		return err
	}

	if !found {
		return apperrors.NewNotFoundError(fmt.Sprintf("Scheduled message %d", id))
	}

	r.mu.Lock()
	handle, ok := r.handles[id]
	delete(r.handles, id)
	metrics.SetActiveSchedules(len(r.handles))
	r.mu.Unlock()

	if ok {
		if err := r.scheduler.Cancel(handle); err != nil {
			r.log.Error("failed to cancel scheduler registration",
				slog.Int64("schedule_id", id), slog.Any("error", err))
		}
	}

	return nil
}

// List returns the guild's records ordered by id.
func (r *Registry) List(ctx context.Context, guildID string) ([]domain.ScheduledMessage, error) {
	records, err := r.loadRecords(ctx)
	if err != nil {
		return nil, err
	}

	var filtered []domain.ScheduledMessage
	for _, rec := range records {
		if rec.GuildID == guildID {
			filtered = append(filtered, rec)
		}
	}

	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })

	return filtered, nil
}

// Restore re-registers every persisted record with the scheduler. Called
// exactly once at process start; records whose expression no longer parses
// are logged and skipped rather than blocking the rest.
func (r *Registry) Restore(ctx context.Context) error {
	records, err := r.loadRecords(ctx)
	if err != nil {
		return err
	}

	for _, rec := range records {
		handle, err := r.scheduler.Schedule(rec.CronExpr, rec)
		if err != nil {
			r.log.Error("failed to restore scheduled message",
				slog.Int64("schedule_id", rec.ID),
				slog.String("cron", rec.CronExpr),
				slog.Any("error", err))
			continue
		}

		r.mu.Lock()
		r.handles[rec.ID] = handle
		metrics.SetActiveSchedules(len(r.handles))
		r.mu.Unlock()
	}

	r.log.Info("restored scheduled messages", slog.Int("count", len(records)))

	return nil
}

func (r *Registry) persistAppend(ctx context.Context, record domain.ScheduledMessage) error {
	return r.store.Update(ctx, store.KeyScheduledMessages, func(raw json.RawMessage) (json.RawMessage, error) {
		records, err := decodeRecords(raw)
		if err != nil {
			return nil, err
		}

		return encodeRecords(append(records, record))
	})
}

func (r *Registry) loadRecords(ctx context.Context) ([]domain.ScheduledMessage, error) {
	raw, err := r.store.Load(ctx, store.KeyScheduledMessages)
	if err != nil {
		return nil, err
	}

	return decodeRecords(raw)
}

// The collection document is {"items": [...]} so it stays a JSON object
// like every other collection.
type recordsDoc struct {
	Items []domain.ScheduledMessage `json:"items"`
}

func decodeRecords(raw json.RawMessage) ([]domain.ScheduledMessage, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var doc recordsDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode scheduled messages collection: %w", err)
	}

	return doc.Items, nil
}

func encodeRecords(records []domain.ScheduledMessage) (json.RawMessage, error) {
	return json.Marshal(recordsDoc{Items: records})
}
