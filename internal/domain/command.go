package domain

// CustomCommand maps an admin-defined command name to a literal response.
// Names are stored lowercased and are global across guilds: the backing
// collection is a single flat mapping with no guild key.
type CustomCommand struct {
	Response string `json:"response"`
	// PlatformCommandID is the application-command id assigned by the chat
	// platform when the command was registered, used to unregister it on
	// deletion. Empty when registration failed; Resync repairs it.
	PlatformCommandID string `json:"platformCommandId,omitempty"`
}
