package platform

import "context"

// CommandRegistrar adapts a Client to the name/description registration
// shape the custom-command service expects.
type CommandRegistrar struct {
	client Client
}

func NewCommandRegistrar(client Client) *CommandRegistrar {
	return &CommandRegistrar{client: client}
}

func (r *CommandRegistrar) CreateCommand(ctx context.Context, name, description string) (string, error) {
	return r.client.CreateCommand(ctx, Command{Name: name, Description: description})
}

func (r *CommandRegistrar) DeleteCommand(ctx context.Context, commandID string) error {
	return r.client.DeleteCommand(ctx, commandID)
}
