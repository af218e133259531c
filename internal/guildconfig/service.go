// Package guildconfig manages per-guild moderation and messaging settings.
package guildconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/avekrivov/warden-bot/internal/domain"
	"github.com/avekrivov/warden-bot/internal/store"
)

// Invalidator drops cached config entries after a mutation.
type Invalidator interface {
	Invalidate(ctx context.Context, guildID string) error
}

// Service provides reads and mutations over guild configs. Every mutation
// goes through the store's atomic update and invalidates the cache entry.
type Service struct {
	store store.Store
	cache Invalidator
	log   *slog.Logger
}

func NewService(st store.Store, cache Invalidator, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		store: st,
		cache: cache,
		log:   log,
	}
}

// SetInvalidator wires the cache after construction. The cache reads
// through this service, so the two cannot be built in one step.
func (s *Service) SetInvalidator(cache Invalidator) {
	s.cache = cache
}

// Get returns the guild's config, or a default config if the guild has
// never been configured.
func (s *Service) Get(ctx context.Context, guildID string) (domain.GuildConfig, error) {
	raw, err := s.store.Load(ctx, store.KeyGuildConfig)
	if err != nil {
		return domain.GuildConfig{}, err
	}

	configs, err := decodeConfigs(raw)
	if err != nil {
		return domain.GuildConfig{}, err
	}

	cfg, ok := configs[guildID]
	if !ok {
		return domain.NewGuildConfig(), nil
	}

	return cfg, nil
}

// SetWelcome updates the welcome channel and message template.
func (s *Service) SetWelcome(ctx context.Context, guildID, channelID, message string) error {
	if message == "" {
		message = domain.DefaultWelcomeMessage
	}
	if err := domain.ValidateTemplate(message); err != nil {
		return err
	}

	return s.mutate(ctx, guildID, func(cfg *domain.GuildConfig) error {
		cfg.WelcomeChannelID = channelID
		cfg.WelcomeMessage = message
		return nil
	})
}

// SetGoodbye updates the goodbye message template.
func (s *Service) SetGoodbye(ctx context.Context, guildID, message string) error {
	if err := domain.ValidateTemplate(message); err != nil {
		return err
	}

	return s.mutate(ctx, guildID, func(cfg *domain.GuildConfig) error {
		cfg.GoodbyeMessage = message
		return nil
	})
}

// SetLevelUpMessage updates the level-up announcement template.
func (s *Service) SetLevelUpMessage(ctx context.Context, guildID, message string) error {
	if err := domain.ValidateTemplate(message); err != nil {
		return err
	}

	return s.mutate(ctx, guildID, func(cfg *domain.GuildConfig) error {
		cfg.LevelUpMessage = message
		return nil
	})
}

// ToggleAntiLink flips anti-link protection and returns the new state.
func (s *Service) ToggleAntiLink(ctx context.Context, guildID string) (bool, error) {
	var enabled bool
	err := s.mutate(ctx, guildID, func(cfg *domain.GuildConfig) error {
		cfg.AntiLinkEnabled = !cfg.AntiLinkEnabled
		enabled = cfg.AntiLinkEnabled
		return nil
	})

	return enabled, err
}

// ToggleSpamProtection flips the spam heuristic and returns the new state.
func (s *Service) ToggleSpamProtection(ctx context.Context, guildID string) (bool, error) {
	var enabled bool
	err := s.mutate(ctx, guildID, func(cfg *domain.GuildConfig) error {
		cfg.SpamProtectionEnabled = !cfg.SpamProtectionEnabled
		enabled = cfg.SpamProtectionEnabled
		return nil
	})

	return enabled, err
}

// AddBlockedWord adds a word to the guild's filter. Returns false when the
// word was already present.
func (s *Service) AddBlockedWord(ctx context.Context, guildID, word string) (bool, error) {
	var added bool
	err := s.mutate(ctx, guildID, func(cfg *domain.GuildConfig) error {
		added = cfg.AddBlockedWord(word)
		return nil
	})

	return added, err
}

// RemoveBlockedWord removes a word from the guild's filter. Returns false
// when the word was not present.
func (s *Service) RemoveBlockedWord(ctx context.Context, guildID, word string) (bool, error) {
	var removed bool
	err := s.mutate(ctx, guildID, func(cfg *domain.GuildConfig) error {
		removed = cfg.RemoveBlockedWord(word)
		return nil
	})

	return removed, err
}

func (s *Service) mutate(ctx context.Context, guildID string, apply func(*domain.GuildConfig) error) error {
	err := s.store.Update(ctx, store.KeyGuildConfig, func(raw json.RawMessage) (json.RawMessage, error) {
		configs, err := decodeConfigs(raw)
		if err != nil {
			return nil, err
		}

		cfg, ok := configs[guildID]
		if !ok {
			cfg = domain.NewGuildConfig()
		}

		if err := apply(&cfg); err != nil {
			return nil, err
		}
		configs[guildID] = cfg

		return json.Marshal(configs)
	})
	if err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, guildID); err != nil {
			s.log.Warn("failed to invalidate guild config cache",
				slog.String("guild_id", guildID), slog.Any("error", err))
		}
	}

	return nil
}

func decodeConfigs(raw json.RawMessage) (map[string]domain.GuildConfig, error) {
	configs := make(map[string]domain.GuildConfig)
	if len(raw) == 0 {
		return configs, nil
	}

	if err := json.Unmarshal(raw, &configs); err != nil {
		return nil, fmt.Errorf("decode guild config collection: %w", err)
	}

	return configs, nil
}
