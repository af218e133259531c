// Package progression converts accumulated experience points into discrete
// levels and detects level-ups.
package progression

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/avekrivov/warden-bot/internal/domain"
	"github.com/avekrivov/warden-bot/internal/store"
)

// LevelForExperience maps a non-negative experience total to a level.
func LevelForExperience(xp int64) int {
	if xp <= 0 {
		return 0
	}

	return int(math.Floor(0.1 * math.Sqrt(float64(xp))))
}

// ExperienceRequiredForLevel is the inverse of LevelForExperience, used for
// display only.
func ExperienceRequiredForLevel(level int) float64 {
	return math.Pow(float64(level)/0.1, 2)
}

// ActivityResult reports the outcome of a single recorded activity.
type ActivityResult struct {
	LeveledUp       bool
	NewLevel        int
	TotalExperience int64
}

// LeaderboardEntry pairs a user with their progress, ordered by experience.
type LeaderboardEntry struct {
	UserID   string
	Progress domain.UserProgress
}

// Engine owns the leveling computation over the persisted progress
// collection.
type Engine struct {
	store store.Store
	log   *slog.Logger
}

func NewEngine(st store.Store, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}

	return &Engine{
		store: st,
		log:   log,
	}
}

// RecordActivity adds xpDelta to the user's experience, bumps the message
// count by one regardless of the delta, recomputes the level and persists
// the record in a single atomic store update. Negative deltas are allowed
// for administrative corrections and are not clamped; LeveledUp only ever
// reports upward crossings.
func (e *Engine) RecordActivity(ctx context.Context, userID string, xpDelta int64) (ActivityResult, error) {
	var result ActivityResult

	err := e.store.Update(ctx, store.KeyLevels, func(raw json.RawMessage) (json.RawMessage, error) {
		levels, err := decodeLevels(raw)
		if err != nil {
			return nil, err
		}

		record := levels[userID]
		oldLevel := record.Level

		record.Experience += xpDelta
		record.MessageCount++
		record.Level = LevelForExperience(record.Experience)
		levels[userID] = record

		result = ActivityResult{
			LeveledUp:       record.Level > oldLevel,
			NewLevel:        record.Level,
			TotalExperience: record.Experience,
		}

		return json.Marshal(levels)
	})
	if err != nil {
		return ActivityResult{}, err
	}

	return result, nil
}

// Progress returns the stored record for userID, or a zero record if the
// user has never been active.
func (e *Engine) Progress(ctx context.Context, userID string) (domain.UserProgress, error) {
	levels, err := e.loadLevels(ctx)
	if err != nil {
		return domain.UserProgress{}, err
	}

	return levels[userID], nil
}

// Leaderboard returns up to limit entries sorted by experience descending.
// Ties break on user id so the ordering is stable.
func (e *Engine) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	levels, err := e.loadLevels(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(levels))
	for userID, progress := range levels {
		entries = append(entries, LeaderboardEntry{UserID: userID, Progress: progress})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Progress.Experience != entries[j].Progress.Experience {
			return entries[i].Progress.Experience > entries[j].Progress.Experience
		}
		return entries[i].UserID < entries[j].UserID
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}

func (e *Engine) loadLevels(ctx context.Context) (map[string]domain.UserProgress, error) {
	raw, err := e.store.Load(ctx, store.KeyLevels)
	if err != nil {
		return nil, err
	}

	return decodeLevels(raw)
}

func decodeLevels(raw json.RawMessage) (map[string]domain.UserProgress, error) {
	levels := make(map[string]domain.UserProgress)
	if len(raw) == 0 {
		return levels, nil
	}

	if err := json.Unmarshal(raw, &levels); err != nil {
		return nil, fmt.Errorf("decode levels collection: %w", err)
	}

	return levels, nil
}
