package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/avekrivov/warden-bot/internal/bot/handlers"
	"github.com/avekrivov/warden-bot/internal/commands"
	"github.com/avekrivov/warden-bot/internal/dedupe"
	errors "github.com/avekrivov/warden-bot/internal/errors"
	"github.com/avekrivov/warden-bot/internal/guildconfig"
	"github.com/avekrivov/warden-bot/internal/platform"
	"github.com/avekrivov/warden-bot/internal/progression"
	"github.com/avekrivov/warden-bot/internal/ratelimit"
	"github.com/avekrivov/warden-bot/internal/schedule"
	"github.com/avekrivov/warden-bot/pkg/config"
)

// Deps carries the services the bot wires into its router and event
// pipeline.
type Deps struct {
	Client    platform.Client
	Config    ConfigSource
	ConfigSvc *guildconfig.Service
	Commands  *commands.Service
	Engine    *progression.Engine
	Processor *EventProcessor
	Schedules *schedule.Registry
	Guard     dedupe.Guard
	Limiter   ratelimit.Limiter
	Rules     *ratelimit.Rules
}

// Bot wraps the discord gateway session with application dependencies
// required for handling events.
type Bot struct {
	session    *discordgo.Session
	log        *slog.Logger
	cfg        config.Config
	deps       Deps
	router     *Router
	errHandler *errors.Handler
}

// NewSession creates a gateway session with the intents the bot needs. The
// session is shared with the platform client, so it is built separately
// from the Bot.
func NewSession(cfg config.Config) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + cfg.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("initialize discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentMessageContent

	return session, nil
}

// New builds a discord bot instance over an existing session.
func New(cfg config.Config, log *slog.Logger, session *discordgo.Session, deps Deps) (*Bot, error) {
	if session == nil {
		return nil, fmt.Errorf("discord session is required")
	}
	if log == nil {
		log = slog.Default()
	}

	errHandler := errors.NewHandler(log, cfg.Sentry.Enabled)
	router := NewRouter(log)

	b := &Bot{
		session:    session,
		log:        log,
		cfg:        cfg,
		deps:       deps,
		router:     router,
		errHandler: errHandler,
	}

	b.setupRouter()
	b.registerGatewayHandlers()

	return b, nil
}

// Start opens the gateway connection, publishes the slash-command set, and
// restores persisted schedules.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}

	b.log.Info("connected to discord",
		slog.String("username", b.session.State.User.Username))

	if err := registerCommands(b.session); err != nil {
		return err
	}

	if err := b.deps.Commands.Resync(ctx); err != nil {
		b.log.Error("failed to resync custom commands", slog.Any("error", err))
	}

	if err := b.deps.Schedules.Restore(ctx); err != nil {
		b.log.Error("failed to restore scheduled messages", slog.Any("error", err))
	}

	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() {
	if b.session == nil {
		return
	}

	b.log.Info("closing discord session...")

	if err := b.session.Close(); err != nil {
		b.log.Error("failed to close discord session", slog.Any("error", err))
	}
}

// Session exposes the underlying gateway session for health checks.
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

func (b *Bot) setupRouter() {
	b.router.Use(RecoveryMiddleware(b.log, b.errHandler))
	b.router.Use(DedupeMiddleware(b.deps.Guard, b.log))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(RateLimitMiddleware(b.deps.Limiter, b.deps.Rules, b.log))
	b.router.Use(MetricsMiddleware)

	b.router.RegisterCommand("level", handlers.NewLevelHandler(b.deps.Engine, b.deps.Client, b.log))
	b.router.RegisterCommand("leaderboard", handlers.NewLeaderboardHandler(b.deps.Engine, b.deps.Client, b.log))
	b.router.RegisterCommand("addxp", handlers.NewAddXPHandler(b.deps.Engine, b.deps.Client, b.log))

	b.router.RegisterCommand("createcommand", handlers.NewCreateCommandHandler(b.deps.Commands, b.log))
	b.router.RegisterCommand("deletecommand", handlers.NewDeleteCommandHandler(b.deps.Commands, b.log))
	b.router.RegisterCommand("listcommands", handlers.NewListCommandsHandler(b.deps.Commands, b.log))

	b.router.RegisterCommand("ban", handlers.NewBanHandler(b.deps.Client, b.log))
	b.router.RegisterCommand("kick", handlers.NewKickHandler(b.deps.Client, b.log))
	b.router.RegisterCommand("mute", handlers.NewMuteHandler(b.deps.Client, b.log))
	b.router.RegisterCommand("unmute", handlers.NewUnmuteHandler(b.deps.Client, b.log))
	b.router.RegisterCommand("addword", handlers.NewAddWordHandler(b.deps.ConfigSvc, b.log))
	b.router.RegisterCommand("removeword", handlers.NewRemoveWordHandler(b.deps.ConfigSvc, b.log))
	b.router.RegisterCommand("toggleantilink", handlers.NewToggleAntiLinkHandler(b.deps.ConfigSvc, b.log))
	b.router.RegisterCommand("togglespam", handlers.NewToggleSpamHandler(b.deps.ConfigSvc, b.log))

	b.router.RegisterCommand("setwelcome", handlers.NewSetWelcomeHandler(b.deps.ConfigSvc, b.log))
	b.router.RegisterCommand("setgoodbye", handlers.NewSetGoodbyeHandler(b.deps.ConfigSvc, b.log))
	b.router.RegisterCommand("setlevelup", handlers.NewSetLevelUpHandler(b.deps.ConfigSvc, b.log))

	b.router.RegisterCommand("schedulemessage", handlers.NewScheduleMessageHandler(b.deps.Schedules, b.log))
	b.router.RegisterCommand("listscheduled", handlers.NewListScheduledHandler(b.deps.Schedules, b.log))
	b.router.RegisterCommand("deletescheduled", handlers.NewDeleteScheduledHandler(b.deps.Schedules, b.log))

	b.router.SetDefault(handlers.NewCustomCommandHandler(b.deps.Commands, b.log))
}

func (b *Bot) registerGatewayHandlers() {
	b.session.AddHandler(b.onInteractionCreate)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onGuildMemberAdd)
	b.session.AddHandler(b.onGuildMemberRemove)
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	ic := buildInteraction(s, i)

	if err := b.router.Route(context.Background(), ic); err != nil {
		b.log.Error("interaction routing failed",
			slog.String("command", ic.CommandName), slog.Any("error", err))
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	b.deps.Processor.HandleMessage(context.Background(), MessageEvent{
		MessageID: m.ID,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		AuthorID:  m.Author.ID,
		Content:   m.Content,
	})
}

func (b *Bot) onGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User == nil || m.User.Bot {
		return
	}

	b.deps.Processor.HandleMemberJoin(context.Background(), m.GuildID, m.User.ID)
}

func (b *Bot) onGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m.User == nil || m.User.Bot {
		return
	}

	b.deps.Processor.HandleMemberLeave(context.Background(), m.GuildID, m.User.Username)
}

// buildInteraction flattens the gateway interaction into the router's
// platform-neutral shape.
func buildInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) *handlers.Interaction {
	ic := handlers.NewInteraction(&discordResponder{session: s, interaction: i.Interaction})

	data := i.ApplicationCommandData()
	ic.ID = i.ID
	ic.CommandName = data.Name
	ic.GuildID = i.GuildID
	ic.ChannelID = i.ChannelID

	if i.Member != nil && i.Member.User != nil {
		ic.UserID = i.Member.User.ID
		ic.Username = i.Member.User.Username
		ic.IsAdmin = i.Member.Permissions&discordgo.PermissionAdministrator != 0
	} else if i.User != nil {
		ic.UserID = i.User.ID
		ic.Username = i.User.Username
	}

	for _, opt := range data.Options {
		if opt == nil {
			continue
		}

		value := handlers.OptionValue{}
		switch opt.Type {
		case discordgo.ApplicationCommandOptionString:
			value.String = opt.StringValue()
		case discordgo.ApplicationCommandOptionInteger:
			value.Int = opt.IntValue()
		case discordgo.ApplicationCommandOptionUser:
			if id, ok := opt.Value.(string); ok {
				value.UserID = id
			}
		case discordgo.ApplicationCommandOptionChannel:
			if id, ok := opt.Value.(string); ok {
				value.ChannelID = id
			}
		}
		ic.Options[opt.Name] = value
	}

	return ic
}

type discordResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
}

func (r *discordResponder) Respond(content string, ephemeral bool) error {
	return r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   responseFlags(ephemeral),
		},
	})
}

func (r *discordResponder) RespondEmbed(embed platform.Embed, ephemeral bool) error {
	discordEmbed := &discordgo.MessageEmbed{
		Title:       embed.Title,
		Description: embed.Description,
		Color:       embed.Color,
	}
	for _, f := range embed.Fields {
		discordEmbed.Fields = append(discordEmbed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}

	return r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{discordEmbed},
			Flags:  responseFlags(ephemeral),
		},
	})
}

func responseFlags(ephemeral bool) discordgo.MessageFlags {
	if ephemeral {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}
