package progression

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avekrivov/warden-bot/internal/store"
)

func TestLevelForExperience(t *testing.T) {
	testCases := []struct {
		name     string
		xp       int64
		expected int
	}{
		{name: "zero", xp: 0, expected: 0},
		{name: "one", xp: 1, expected: 0},
		{name: "just below level one", xp: 99, expected: 0},
		{name: "level one boundary", xp: 100, expected: 1},
		{name: "level two boundary", xp: 400, expected: 2},
		{name: "just below level three", xp: 899, expected: 2},
		{name: "level three boundary", xp: 900, expected: 3},
		{name: "large total", xp: 1_000_000, expected: 100},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, LevelForExperience(tc.xp))
		})
	}
}

func TestLevelForExperienceMonotonic(t *testing.T) {
	prev := 0
	for xp := int64(0); xp <= 10_000; xp++ {
		level := LevelForExperience(xp)
		if level < prev {
			t.Fatalf("level decreased from %d to %d at xp=%d", prev, level, xp)
		}
		prev = level
	}
}

func TestExperienceRequiredForLevel(t *testing.T) {
	assert.Equal(t, 0.0, ExperienceRequiredForLevel(0))
	assert.Equal(t, 100.0, ExperienceRequiredForLevel(1))
	assert.Equal(t, 400.0, ExperienceRequiredForLevel(2))

	// inverse relationship at the boundary
	assert.Equal(t, 1, LevelForExperience(int64(ExperienceRequiredForLevel(1))))
}

func TestRecordActivity_FreshUserZeroDelta(t *testing.T) {
	engine := NewEngine(store.NewMemoryStore(), testLogger())
	ctx := context.Background()

	result, err := engine.RecordActivity(ctx, "u1", 0)
	require.NoError(t, err)

	assert.False(t, result.LeveledUp)
	assert.Equal(t, 0, result.NewLevel)
	assert.Equal(t, int64(0), result.TotalExperience)

	progress, err := engine.Progress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), progress.Experience)
	assert.Equal(t, 0, progress.Level)
	assert.Equal(t, int64(1), progress.MessageCount)
}

func TestRecordActivity_LevelUpBoundary(t *testing.T) {
	engine := NewEngine(store.NewMemoryStore(), testLogger())
	ctx := context.Background()

	_, err := engine.RecordActivity(ctx, "u1", 99)
	require.NoError(t, err)

	result, err := engine.RecordActivity(ctx, "u1", 1)
	require.NoError(t, err)

	assert.True(t, result.LeveledUp)
	assert.Equal(t, 1, result.NewLevel)
	assert.Equal(t, int64(100), result.TotalExperience)
}

func TestRecordActivity_SplitDeltasMatchSingleDelta(t *testing.T) {
	ctx := context.Background()

	split := NewEngine(store.NewMemoryStore(), testLogger())
	_, err := split.RecordActivity(ctx, "u1", 30)
	require.NoError(t, err)
	_, err = split.RecordActivity(ctx, "u1", 70)
	require.NoError(t, err)

	single := NewEngine(store.NewMemoryStore(), testLogger())
	_, err = single.RecordActivity(ctx, "u1", 100)
	require.NoError(t, err)

	splitProgress, err := split.Progress(ctx, "u1")
	require.NoError(t, err)
	singleProgress, err := single.Progress(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, singleProgress.Experience, splitProgress.Experience)
	assert.Equal(t, singleProgress.Level, splitProgress.Level)
	assert.Equal(t, int64(2), splitProgress.MessageCount)
	assert.Equal(t, int64(1), singleProgress.MessageCount)
}

func TestRecordActivity_NegativeDeltaNotClamped(t *testing.T) {
	engine := NewEngine(store.NewMemoryStore(), testLogger())
	ctx := context.Background()

	_, err := engine.RecordActivity(ctx, "u1", 400)
	require.NoError(t, err)

	result, err := engine.RecordActivity(ctx, "u1", -350)
	require.NoError(t, err)

	// level drops but LeveledUp stays false: there is no level-down signal
	assert.False(t, result.LeveledUp)
	assert.Equal(t, 0, result.NewLevel)
	assert.Equal(t, int64(50), result.TotalExperience)
}

func TestLeaderboard(t *testing.T) {
	engine := NewEngine(store.NewMemoryStore(), testLogger())
	ctx := context.Background()

	for userID, xp := range map[string]int64{"a": 50, "b": 500, "c": 200} {
		_, err := engine.RecordActivity(ctx, userID, xp)
		require.NoError(t, err)
	}

	entries, err := engine.Leaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "b", entries[0].UserID)
	assert.Equal(t, "c", entries[1].UserID)
	assert.Equal(t, int64(500), entries[0].Progress.Experience)
}

func TestLeaderboard_StableTieBreak(t *testing.T) {
	engine := NewEngine(store.NewMemoryStore(), testLogger())
	ctx := context.Background()

	for _, userID := range []string{"z", "a", "m"} {
		_, err := engine.RecordActivity(ctx, userID, 10)
		require.NoError(t, err)
	}

	entries, err := engine.Leaderboard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "a", entries[0].UserID)
	assert.Equal(t, "m", entries[1].UserID)
	assert.Equal(t, "z", entries[2].UserID)
}
