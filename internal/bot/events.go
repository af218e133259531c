package bot

import (
	"context"
	"log/slog"

	"github.com/avekrivov/warden-bot/internal/domain"
	"github.com/avekrivov/warden-bot/internal/guildconfig"
	"github.com/avekrivov/warden-bot/internal/moderation"
	"github.com/avekrivov/warden-bot/internal/platform"
	"github.com/avekrivov/warden-bot/internal/progression"
	"github.com/avekrivov/warden-bot/pkg/metrics"
)

const (
	colorError   = 0xff0000
	colorSuccess = 0x00ff00
	colorGoodbye = 0xff6600
)

// xpPerMessage is the flat grant for each clean guild message.
const xpPerMessage = 1

// ConfigSource resolves guild configuration, normally through the cache.
type ConfigSource interface {
	Get(ctx context.Context, guildID string) (domain.GuildConfig, error)
}

// EventProcessor runs the message and membership pipelines. It is separated
// from the gateway session so the flow is testable without a connection.
type EventProcessor struct {
	config ConfigSource
	filter *moderation.Filter
	engine *progression.Engine
	client platform.Client
	log    *slog.Logger
}

func NewEventProcessor(
	config ConfigSource,
	filter *moderation.Filter,
	engine *progression.Engine,
	client platform.Client,
	log *slog.Logger,
) *EventProcessor {
	if log == nil {
		log = slog.Default()
	}

	return &EventProcessor{
		config: config,
		filter: filter,
		engine: engine,
		client: client,
		log:    log,
	}
}

// MessageEvent is the inbound guild message as seen by the pipeline. Bot
// authors are expected to be filtered out before this point.
type MessageEvent struct {
	MessageID string
	GuildID   string
	ChannelID string
	AuthorID  string
	Content   string
}

// HandleMessage runs moderation first, then progression. A removed message
// earns no experience.
func (p *EventProcessor) HandleMessage(ctx context.Context, ev MessageEvent) {
	metrics.RecordMessageProcessed()

	cfg, err := p.config.Get(ctx, ev.GuildID)
	if err != nil {
		p.log.Error("failed to load guild config, skipping message",
			slog.String("guild_id", ev.GuildID), slog.Any("error", err))
		return
	}

	verdict := p.filter.Evaluate(moderation.Message{
		AuthorID:  ev.AuthorID,
		ChannelID: ev.ChannelID,
		Content:   ev.Content,
	}, cfg)

	if verdict.Kind != moderation.VerdictClean {
		p.enforce(ctx, ev, verdict)
		return
	}

	result, err := p.engine.RecordActivity(ctx, ev.AuthorID, xpPerMessage)
	if err != nil {
		p.log.Error("failed to record activity",
			slog.String("user_id", ev.AuthorID), slog.Any("error", err))
		return
	}

	if result.LeveledUp {
		p.announceLevelUp(ctx, ev, cfg, result.NewLevel)
	}
}

func (p *EventProcessor) enforce(ctx context.Context, ev MessageEvent, verdict moderation.Verdict) {
	metrics.RecordVerdict(verdict.Kind.String())

	if err := p.client.DeleteMessage(ctx, ev.ChannelID, ev.MessageID); err != nil {
		p.log.Error("failed to delete filtered message",
			slog.String("channel_id", ev.ChannelID),
			slog.String("message_id", ev.MessageID),
			slog.String("verdict", verdict.Kind.String()),
			slog.Any("error", err))
		return
	}

	p.log.Info("message removed",
		slog.String("guild_id", ev.GuildID),
		slog.String("user_id", ev.AuthorID),
		slog.String("verdict", verdict.Kind.String()))

	// spam removals post no notice
	var notice string
	switch verdict.Kind {
	case moderation.VerdictLink:
		notice = "Links are not allowed in this server!"
	case moderation.VerdictBlockedWord:
		notice = "Your message contained a blocked word!"
	default:
		return
	}

	err := p.client.SendEmbed(ctx, ev.ChannelID, platform.Embed{
		Color:       colorError,
		Description: notice,
	})
	if err != nil {
		p.log.Error("failed to post moderation notice",
			slog.String("channel_id", ev.ChannelID), slog.Any("error", err))
	}
}

func (p *EventProcessor) announceLevelUp(ctx context.Context, ev MessageEvent, cfg domain.GuildConfig, newLevel int) {
	metrics.RecordLevelUp()

	rendered := domain.RenderTemplate(cfg.LevelUpMessage, domain.TemplateValues{
		User:  "<@" + ev.AuthorID + ">",
		Level: newLevel,
	})

	err := p.client.SendEmbed(ctx, ev.ChannelID, platform.Embed{
		Color:       colorSuccess,
		Description: rendered,
	})
	if err != nil {
		p.log.Error("failed to announce level up",
			slog.String("channel_id", ev.ChannelID), slog.Any("error", err))
	}
}

// HandleMemberJoin posts the welcome message when a welcome channel is set.
func (p *EventProcessor) HandleMemberJoin(ctx context.Context, guildID, userID string) {
	cfg, err := p.config.Get(ctx, guildID)
	if err != nil {
		p.log.Error("failed to load guild config for member join",
			slog.String("guild_id", guildID), slog.Any("error", err))
		return
	}

	if cfg.WelcomeChannelID == "" {
		return
	}

	rendered := domain.RenderTemplate(cfg.WelcomeMessage, domain.TemplateValues{
		User: "<@" + userID + ">",
	})

	err = p.client.SendEmbed(ctx, cfg.WelcomeChannelID, platform.Embed{
		Color:       colorSuccess,
		Description: rendered,
	})
	if err != nil {
		p.log.Error("failed to send welcome message",
			slog.String("guild_id", guildID), slog.Any("error", err))
	}
}

// HandleMemberLeave posts the goodbye message into the welcome channel.
func (p *EventProcessor) HandleMemberLeave(ctx context.Context, guildID, username string) {
	cfg, err := p.config.Get(ctx, guildID)
	if err != nil {
		p.log.Error("failed to load guild config for member leave",
			slog.String("guild_id", guildID), slog.Any("error", err))
		return
	}

	if cfg.WelcomeChannelID == "" {
		return
	}

	rendered := domain.RenderTemplate(cfg.GoodbyeMessage, domain.TemplateValues{
		User: username,
	})

	err = p.client.SendEmbed(ctx, cfg.WelcomeChannelID, platform.Embed{
		Color:       colorGoodbye,
		Description: rendered,
	})
	if err != nil {
		p.log.Error("failed to send goodbye message",
			slog.String("guild_id", guildID), slog.Any("error", err))
	}
}

var _ ConfigSource = (*guildconfig.Service)(nil)
