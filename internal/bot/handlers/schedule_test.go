package handlers

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avekrivov/warden-bot/internal/domain"
	"github.com/avekrivov/warden-bot/internal/platform"
	"github.com/avekrivov/warden-bot/internal/schedule"
	"github.com/avekrivov/warden-bot/internal/store"
)

type embedRecorder struct {
	embeds   []platform.Embed
	contents []string
}

func (r *embedRecorder) Respond(content string, _ bool) error {
	r.contents = append(r.contents, content)
	return nil
}

func (r *embedRecorder) RespondEmbed(embed platform.Embed, _ bool) error {
	r.embeds = append(r.embeds, embed)
	return nil
}

type stubScheduler struct {
	handles int
}

func (s *stubScheduler) Schedule(string, domain.ScheduledMessage) (string, error) {
	s.handles++
	return "entry-1", nil
}

func (s *stubScheduler) Cancel(string) error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListScheduledHandler_TruncatesPreviewOnRuneBoundary(t *testing.T) {
	reg := schedule.NewRegistry(store.NewMemoryStore(), &stubScheduler{}, discardLogger())
	ctx := context.Background()

	// 60 multi-byte runes; a byte-index cut at 50 would land mid-rune.
	long := strings.Repeat("日", 60)
	_, err := reg.Create(ctx, "g1", "chan-1", long, "0 9 * * *")
	require.NoError(t, err)

	recorder := &embedRecorder{}
	ic := NewInteraction(recorder)
	ic.GuildID = "g1"

	handler := NewListScheduledHandler(reg, discardLogger())
	require.NoError(t, handler(ctx, ic))

	require.Len(t, recorder.embeds, 1)
	desc := recorder.embeds[0].Description
	assert.True(t, utf8.ValidString(desc))
	assert.Contains(t, desc, strings.Repeat("日", 50)+"...")
	assert.NotContains(t, desc, strings.Repeat("日", 51))
}

func TestListScheduledHandler_ShortMessageUntruncated(t *testing.T) {
	reg := schedule.NewRegistry(store.NewMemoryStore(), &stubScheduler{}, discardLogger())
	ctx := context.Background()

	_, err := reg.Create(ctx, "g1", "chan-1", "daily standup", "0 9 * * *")
	require.NoError(t, err)

	recorder := &embedRecorder{}
	ic := NewInteraction(recorder)
	ic.GuildID = "g1"

	handler := NewListScheduledHandler(reg, discardLogger())
	require.NoError(t, handler(ctx, ic))

	require.Len(t, recorder.embeds, 1)
	assert.Contains(t, recorder.embeds[0].Description, "daily standup")
	assert.NotContains(t, recorder.embeds[0].Description, "...")
}

func TestListScheduledHandler_EmptyRegistry(t *testing.T) {
	reg := schedule.NewRegistry(store.NewMemoryStore(), &stubScheduler{}, discardLogger())

	recorder := &embedRecorder{}
	ic := NewInteraction(recorder)
	ic.GuildID = "g1"

	handler := NewListScheduledHandler(reg, discardLogger())
	require.NoError(t, handler(context.Background(), ic))

	require.Len(t, recorder.contents, 1)
	assert.Equal(t, "No scheduled messages found.", recorder.contents[0])
}
