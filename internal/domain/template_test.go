package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTemplate(t *testing.T) {
	testCases := []struct {
		name     string
		tmpl     string
		values   TemplateValues
		expected string
	}{
		{
			name:     "user placeholder",
			tmpl:     "Welcome to the server, {user}!",
			values:   TemplateValues{User: "<@123>"},
			expected: "Welcome to the server, <@123>!",
		},
		{
			name:     "user and level placeholders",
			tmpl:     "🎉 Congratulations {user}! You've reached level {level}!",
			values:   TemplateValues{User: "<@123>", Level: 4},
			expected: "🎉 Congratulations <@123>! You've reached level 4!",
		},
		{
			name:     "repeated placeholder",
			tmpl:     "{user} {user}",
			values:   TemplateValues{User: "bob"},
			expected: "bob bob",
		},
		{
			name:     "unknown placeholder left verbatim",
			tmpl:     "hello {usr}",
			values:   TemplateValues{User: "bob"},
			expected: "hello {usr}",
		},
		{
			name:     "no placeholders",
			tmpl:     "plain text",
			values:   TemplateValues{User: "bob", Level: 9},
			expected: "plain text",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, RenderTemplate(tc.tmpl, tc.values))
		})
	}
}

func TestValidateTemplate(t *testing.T) {
	assert.NoError(t, ValidateTemplate("hi {user}, level {level}"))
	assert.NoError(t, ValidateTemplate("no placeholders"))

	err := ValidateTemplate("hi {usr} at {lvl}")
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "{usr}")
		assert.Contains(t, err.Error(), "{lvl}")
	}
}

func TestGuildConfigBlockedWords(t *testing.T) {
	cfg := NewGuildConfig()

	assert.True(t, cfg.AddBlockedWord("  Spoiler "))
	assert.Equal(t, []string{"spoiler"}, cfg.BlockedWords)

	// duplicate after normalization
	assert.False(t, cfg.AddBlockedWord("SPOILER"))
	assert.Len(t, cfg.BlockedWords, 1)

	assert.False(t, cfg.AddBlockedWord("   "))

	assert.True(t, cfg.AddBlockedWord("second"))
	assert.True(t, cfg.RemoveBlockedWord("Spoiler"))
	assert.Equal(t, []string{"second"}, cfg.BlockedWords)

	assert.False(t, cfg.RemoveBlockedWord("missing"))
}

func TestNewScheduleIDMonotonic(t *testing.T) {
	prev := NewScheduleID()
	for i := 0; i < 1000; i++ {
		id := NewScheduleID()
		if id <= prev {
			t.Fatalf("ids not strictly increasing: %d after %d", id, prev)
		}
		prev = id
	}
}
