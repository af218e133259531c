// Package store persists the bot's collections as one JSON document per
// collection key. Update is atomic per key, so concurrent read-modify-write
// cycles on the same collection never lose writes.
package store

import (
	"context"
	"encoding/json"
)

// Collection keys. Each key owns a single JSON document.
const (
	KeyLevels            = "levels"
	KeyCustomCommands    = "custom_commands"
	KeyGuildConfig       = "guild_config"
	KeyScheduledMessages = "scheduled_messages"
)

// Store is the persistence contract shared by every collection. Load
// tolerates a missing or corrupt backing document by returning an empty one;
// Save and Update failures propagate to the caller.
type Store interface {
	Load(ctx context.Context, key string) (json.RawMessage, error)
	Save(ctx context.Context, key string, doc json.RawMessage) error
	// Update applies mutate to the current document and persists the result
	// in one atomic step. mutate receives an empty JSON object for a missing
	// or corrupt document.
	Update(ctx context.Context, key string, mutate func(json.RawMessage) (json.RawMessage, error)) error
}

var emptyDoc = json.RawMessage(`{}`)

// normalizeDoc substitutes an empty object for documents that are absent or
// not valid JSON, matching the load contract.
func normalizeDoc(raw []byte) json.RawMessage {
	if len(raw) == 0 || !json.Valid(raw) {
		return append(json.RawMessage(nil), emptyDoc...)
	}

	return json.RawMessage(raw)
}
