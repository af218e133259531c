package handlers

import (
	"context"

	"github.com/avekrivov/warden-bot/internal/platform"
)

// Handler processes one slash-command interaction.
type Handler func(ctx context.Context, ic *Interaction) error

// Middleware wraps a handler with pre/post behaviour.
type Middleware func(Handler) Handler

// Responder delivers the interaction response back to the platform. The bot
// wires a discord-backed implementation; tests substitute a recorder.
type Responder interface {
	Respond(content string, ephemeral bool) error
	RespondEmbed(embed platform.Embed, ephemeral bool) error
}

// OptionValue holds one resolved interaction option.
type OptionValue struct {
	String    string
	Int       int64
	UserID    string
	ChannelID string
}

// Interaction is the platform-neutral view of one slash-command invocation.
type Interaction struct {
	ID          string
	CommandName string
	GuildID     string
	ChannelID   string
	UserID      string
	Username    string
	IsAdmin     bool
	Options     map[string]OptionValue

	responder Responder
}

// NewInteraction builds an Interaction bound to the given responder.
func NewInteraction(responder Responder) *Interaction {
	return &Interaction{
		Options:   make(map[string]OptionValue),
		responder: responder,
	}
}

// Reply sends a visible text response.
func (ic *Interaction) Reply(content string) error {
	if ic == nil || ic.responder == nil {
		return nil
	}
	return ic.responder.Respond(content, false)
}

// ReplyEphemeral sends a response only the invoking user can see.
func (ic *Interaction) ReplyEphemeral(content string) error {
	if ic == nil || ic.responder == nil {
		return nil
	}
	return ic.responder.Respond(content, true)
}

// ReplyEmbed sends a rich embed response.
func (ic *Interaction) ReplyEmbed(embed platform.Embed) error {
	if ic == nil || ic.responder == nil {
		return nil
	}
	return ic.responder.RespondEmbed(embed, false)
}

// StringOption returns the named string option or fallback when absent.
func (ic *Interaction) StringOption(name, fallback string) string {
	if opt, ok := ic.Options[name]; ok && opt.String != "" {
		return opt.String
	}
	return fallback
}

// IntOption returns the named integer option or fallback when absent.
func (ic *Interaction) IntOption(name string, fallback int64) int64 {
	if opt, ok := ic.Options[name]; ok {
		return opt.Int
	}
	return fallback
}

// UserOption returns the id of the named user option, or "" when absent.
func (ic *Interaction) UserOption(name string) string {
	return ic.Options[name].UserID
}

// ChannelOption returns the id of the named channel option, or "" when absent.
func (ic *Interaction) ChannelOption(name string) string {
	return ic.Options[name].ChannelID
}
