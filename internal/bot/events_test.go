package bot

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avekrivov/warden-bot/internal/domain"
	"github.com/avekrivov/warden-bot/internal/moderation"
	"github.com/avekrivov/warden-bot/internal/platform"
	"github.com/avekrivov/warden-bot/internal/progression"
	"github.com/avekrivov/warden-bot/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeConfigSource struct {
	cfg domain.GuildConfig
}

func (f *fakeConfigSource) Get(_ context.Context, _ string) (domain.GuildConfig, error) {
	return f.cfg, nil
}

type sentEmbed struct {
	channelID string
	embed     platform.Embed
}

type fakeClient struct {
	mu       sync.Mutex
	deleted  []string
	embeds   []sentEmbed
	messages []string
}

func (f *fakeClient) SendMessage(_ context.Context, channelID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, content)
	return nil
}

func (f *fakeClient) SendEmbed(_ context.Context, channelID string, embed platform.Embed) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeds = append(f.embeds, sentEmbed{channelID: channelID, embed: embed})
	return nil
}

func (f *fakeClient) DeleteMessage(_ context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeClient) BanUser(context.Context, string, string, string) error     { return nil }
func (f *fakeClient) KickUser(context.Context, string, string, string) error   { return nil }
func (f *fakeClient) TimeoutUser(context.Context, string, string, time.Duration) error {
	return nil
}
func (f *fakeClient) RemoveTimeout(context.Context, string, string) error { return nil }
func (f *fakeClient) FetchUser(_ context.Context, userID string) (*platform.User, error) {
	return &platform.User{ID: userID, Username: "user-" + userID}, nil
}
func (f *fakeClient) CreateCommand(context.Context, platform.Command) (string, error) {
	return "cmd-id", nil
}
func (f *fakeClient) DeleteCommand(context.Context, string) error { return nil }

func (f *fakeClient) deletedMessages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func (f *fakeClient) sentEmbeds() []sentEmbed {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentEmbed(nil), f.embeds...)
}

func newTestProcessor(t *testing.T, cfg domain.GuildConfig) (*EventProcessor, *fakeClient, *progression.Engine) {
	t.Helper()

	st := store.NewMemoryStore()
	engine := progression.NewEngine(st, testLogger())
	client := &fakeClient{}

	processor := NewEventProcessor(
		&fakeConfigSource{cfg: cfg},
		moderation.NewFilter(moderation.NoopSpamDetector{}),
		engine,
		client,
		testLogger(),
	)

	return processor, client, engine
}

func TestHandleMessage_CleanMessageEarnsExperience(t *testing.T) {
	processor, client, engine := newTestProcessor(t, domain.NewGuildConfig())
	ctx := context.Background()

	processor.HandleMessage(ctx, MessageEvent{
		MessageID: "m1",
		GuildID:   "g1",
		ChannelID: "c1",
		AuthorID:  "u1",
		Content:   "hello there",
	})

	progress, err := engine.Progress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), progress.Experience)
	assert.Equal(t, int64(1), progress.MessageCount)
	assert.Empty(t, client.deletedMessages())
}

func TestHandleMessage_LinkIsRemovedAndEarnsNothing(t *testing.T) {
	cfg := domain.NewGuildConfig()
	cfg.AntiLinkEnabled = true

	processor, client, engine := newTestProcessor(t, cfg)
	ctx := context.Background()

	processor.HandleMessage(ctx, MessageEvent{
		MessageID: "m1",
		GuildID:   "g1",
		ChannelID: "c1",
		AuthorID:  "u1",
		Content:   "check https://example.com out",
	})

	assert.Equal(t, []string{"m1"}, client.deletedMessages())

	embeds := client.sentEmbeds()
	require.Len(t, embeds, 1)
	assert.Equal(t, "Links are not allowed in this server!", embeds[0].embed.Description)

	progress, err := engine.Progress(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, progress.Experience)
}

func TestHandleMessage_BlockedWordNotice(t *testing.T) {
	cfg := domain.NewGuildConfig()
	cfg.BlockedWords = []string{"spoiler"}

	processor, client, _ := newTestProcessor(t, cfg)

	processor.HandleMessage(context.Background(), MessageEvent{
		MessageID: "m2",
		GuildID:   "g1",
		ChannelID: "c1",
		AuthorID:  "u1",
		Content:   "huge SPOILER ahead",
	})

	assert.Equal(t, []string{"m2"}, client.deletedMessages())

	embeds := client.sentEmbeds()
	require.Len(t, embeds, 1)
	assert.Equal(t, "Your message contained a blocked word!", embeds[0].embed.Description)
}

type flaggingDetector struct{}

func (flaggingDetector) IsSpam(moderation.Message) bool { return true }

func TestHandleMessage_SpamIsRemovedSilently(t *testing.T) {
	cfg := domain.NewGuildConfig()
	cfg.SpamProtectionEnabled = true

	st := store.NewMemoryStore()
	engine := progression.NewEngine(st, testLogger())
	client := &fakeClient{}
	processor := NewEventProcessor(
		&fakeConfigSource{cfg: cfg},
		moderation.NewFilter(flaggingDetector{}),
		engine,
		client,
		testLogger(),
	)
	ctx := context.Background()

	processor.HandleMessage(ctx, MessageEvent{
		MessageID: "m5",
		GuildID:   "g1",
		ChannelID: "c1",
		AuthorID:  "u1",
		Content:   "buy now",
	})

	assert.Equal(t, []string{"m5"}, client.deletedMessages())
	assert.Empty(t, client.sentEmbeds())

	progress, err := engine.Progress(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, progress.Experience)
}

func TestHandleMessage_LevelUpAnnouncement(t *testing.T) {
	processor, client, engine := newTestProcessor(t, domain.NewGuildConfig())
	ctx := context.Background()

	// 99 XP sits just below level 1; the hundredth message crosses it
	_, err := engine.RecordActivity(ctx, "u1", 99)
	require.NoError(t, err)

	processor.HandleMessage(ctx, MessageEvent{
		MessageID: "m3",
		GuildID:   "g1",
		ChannelID: "c1",
		AuthorID:  "u1",
		Content:   "one more",
	})

	embeds := client.sentEmbeds()
	require.Len(t, embeds, 1)
	assert.Contains(t, embeds[0].embed.Description, "<@u1>")
	assert.Contains(t, embeds[0].embed.Description, "level 1")
	assert.Equal(t, "c1", embeds[0].channelID)
}

func TestHandleMemberJoin_UsesWelcomeChannel(t *testing.T) {
	cfg := domain.NewGuildConfig()
	cfg.WelcomeChannelID = "welcome-channel"

	processor, client, _ := newTestProcessor(t, cfg)

	processor.HandleMemberJoin(context.Background(), "g1", "u9")

	embeds := client.sentEmbeds()
	require.Len(t, embeds, 1)
	assert.Equal(t, "welcome-channel", embeds[0].channelID)
	assert.Contains(t, embeds[0].embed.Description, "<@u9>")
}

func TestHandleMemberJoin_NoChannelConfigured(t *testing.T) {
	processor, client, _ := newTestProcessor(t, domain.NewGuildConfig())

	processor.HandleMemberJoin(context.Background(), "g1", "u9")

	assert.Empty(t, client.sentEmbeds())
}

func TestHandleMemberLeave_RendersUsername(t *testing.T) {
	cfg := domain.NewGuildConfig()
	cfg.WelcomeChannelID = "welcome-channel"

	processor, client, _ := newTestProcessor(t, cfg)

	processor.HandleMemberLeave(context.Background(), "g1", "ada")

	embeds := client.sentEmbeds()
	require.Len(t, embeds, 1)
	assert.Contains(t, embeds[0].embed.Description, "ada")
}
