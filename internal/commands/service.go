// Package commands manages admin-defined text commands. Names are global
// across guilds: the backing collection is a single flat mapping.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/avekrivov/warden-bot/internal/domain"
	apperrors "github.com/avekrivov/warden-bot/internal/errors"
	"github.com/avekrivov/warden-bot/internal/store"
)

// Registrar mirrors custom commands onto the chat platform so they are
// invokable as slash commands. Registration is best-effort; the store stays
// the source of truth.
type Registrar interface {
	CreateCommand(ctx context.Context, name, description string) (string, error)
	DeleteCommand(ctx context.Context, commandID string) error
}

// Service provides CRUD over custom commands.
type Service struct {
	store     store.Store
	registrar Registrar
	log       *slog.Logger
}

func NewService(st store.Store, registrar Registrar, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		store:     st,
		registrar: registrar,
		log:       log,
	}
}

// Create stores a command under its lowercased name, silently overwriting
// any existing entry. New names are also registered with the platform.
func (s *Service) Create(ctx context.Context, name, response string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return fmt.Errorf("command name is empty")
	}

	var platformID string
	if s.registrar != nil {
		id, err := s.registrar.CreateCommand(ctx, name, "Custom command")
		if err != nil {
			// Keep the entry anyway; an admin can re-create it to retry.
			s.log.Warn("failed to register custom command with platform",
				slog.String("name", name), slog.Any("error", err))
		} else {
			platformID = id
		}
	}

	return s.store.Update(ctx, store.KeyCustomCommands, func(raw json.RawMessage) (json.RawMessage, error) {
		cmds, err := decodeCommands(raw)
		if err != nil {
			return nil, err
		}

		entry := domain.CustomCommand{Response: response, PlatformCommandID: platformID}
		if existing, ok := cmds[name]; ok && platformID == "" {
			// overwrite keeps the original platform registration
			entry.PlatformCommandID = existing.PlatformCommandID
		}
		cmds[name] = entry

		return json.Marshal(cmds)
	})
}

// Delete removes the named command. Returns a not-found error if absent.
func (s *Service) Delete(ctx context.Context, name string) error {
	name = strings.ToLower(strings.TrimSpace(name))

	var removed domain.CustomCommand
	found := false

	err := s.store.Update(ctx, store.KeyCustomCommands, func(raw json.RawMessage) (json.RawMessage, error) {
		cmds, err := decodeCommands(raw)
		if err != nil {
			return nil, err
		}

		removed, found = cmds[name]
		if !found {
			return raw, nil
		}
		delete(cmds, name)

		return json.Marshal(cmds)
	})
	if err != nil {
		return err
	}

	if !found {
		return apperrors.NewNotFoundError(fmt.Sprintf("Custom command `/%s`", name))
	}

	if s.registrar != nil && removed.PlatformCommandID != "" {
		if err := s.registrar.DeleteCommand(ctx, removed.PlatformCommandID); err != nil {
			s.log.Warn("failed to unregister custom command from platform",
				slog.String("name", name), slog.Any("error", err))
		}
	}

	return nil
}

// Lookup returns the response for name, or a not-found error.
func (s *Service) Lookup(ctx context.Context, name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	cmds, err := s.load(ctx)
	if err != nil {
		return "", err
	}

	entry, ok := cmds[name]
	if !ok {
		return "", apperrors.NewNotFoundError(fmt.Sprintf("Custom command `/%s`", name))
	}

	return entry.Response, nil
}

// List returns all command names sorted alphabetically.
func (s *Service) List(ctx context.Context) ([]string, error) {
	cmds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

// Resync re-registers every stored command with the platform and records the
// fresh platform ids. Called on startup after the static command set is
// bulk-overwritten, which discards prior dynamic registrations.
func (s *Service) Resync(ctx context.Context) error {
	if s.registrar == nil {
		return nil
	}

	cmds, err := s.load(ctx)
	if err != nil {
		return err
	}

	ids := make(map[string]string, len(cmds))
	for name := range cmds {
		id, regErr := s.registrar.CreateCommand(ctx, name, "Custom command")
		if regErr != nil {
			s.log.Warn("failed to re-register custom command",
				slog.String("name", name), slog.Any("error", regErr))
			continue
		}
		ids[name] = id
	}

	if len(ids) == 0 {
		return nil
	}

	return s.store.Update(ctx, store.KeyCustomCommands, func(raw json.RawMessage) (json.RawMessage, error) {
		cmds, err := decodeCommands(raw)
		if err != nil {
			return nil, err
		}

		for name, id := range ids {
			entry, ok := cmds[name]
			if !ok {
				continue
			}
			entry.PlatformCommandID = id
			cmds[name] = entry
		}

		return json.Marshal(cmds)
	})
}

func (s *Service) load(ctx context.Context) (map[string]domain.CustomCommand, error) {
	raw, err := s.store.Load(ctx, store.KeyCustomCommands)
	if err != nil {
		return nil, err
	}

	return decodeCommands(raw)
}

func decodeCommands(raw json.RawMessage) (map[string]domain.CustomCommand, error) {
	cmds := make(map[string]domain.CustomCommand)
	if len(raw) == 0 {
		return cmds, nil
	}

	if err := json.Unmarshal(raw, &cmds); err != nil {
		return nil, fmt.Errorf("decode custom commands collection: %w", err)
	}

	return cmds, nil
}
