package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Default member permissions per command group. Discord enforces these
// server-side and hides a command from members missing the bits.
var (
	adminOnly       = int64(discordgo.PermissionAdministrator)
	banMembers      = int64(discordgo.PermissionBanMembers)
	kickMembers     = int64(discordgo.PermissionKickMembers)
	moderateMembers = int64(discordgo.PermissionModerateMembers)
)

// commandManifest is the static slash-command surface registered on startup.
// Stored custom commands are registered separately, as they come and go at
// runtime.
func commandManifest() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "level",
			Description: "Check your current level and XP",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to check (optional)",
				},
			},
		},
		{
			Name:        "leaderboard",
			Description: "View the server XP leaderboard",
		},
		{
			Name:                     "addxp",
			Description:              "Add XP to a user (Admin only)",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to give XP to",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Amount of XP to add",
					Required:    true,
				},
			},
		},
		{
			Name:                     "createcommand",
			Description:              "Create a custom command (Admin only)",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "Command name",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "response",
					Description: "Command response",
					Required:    true,
				},
			},
		},
		{
			Name:                     "deletecommand",
			Description:              "Delete a custom command (Admin only)",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "Command name to delete",
					Required:    true,
				},
			},
		},
		{
			Name:        "listcommands",
			Description: "List all custom commands",
		},
		{
			Name:                     "ban",
			Description:              "Ban a user",
			DefaultMemberPermissions: &banMembers,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to ban",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Reason for ban",
				},
			},
		},
		{
			Name:                     "kick",
			Description:              "Kick a user",
			DefaultMemberPermissions: &kickMembers,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to kick",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Reason for kick",
				},
			},
		},
		{
			Name:                     "mute",
			Description:              "Timeout a user",
			DefaultMemberPermissions: &moderateMembers,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to timeout",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "duration",
					Description: "Timeout duration in minutes",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Reason for timeout",
				},
			},
		},
		{
			Name:                     "unmute",
			Description:              "Remove timeout from a user",
			DefaultMemberPermissions: &moderateMembers,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to unmute",
					Required:    true,
				},
			},
		},
		{
			Name:                     "addword",
			Description:              "Add a word to the blocked words filter (Admin only)",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "word",
					Description: "Word to block",
					Required:    true,
				},
			},
		},
		{
			Name:                     "removeword",
			Description:              "Remove a word from the blocked words filter (Admin only)",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "word",
					Description: "Word to unblock",
					Required:    true,
				},
			},
		},
		{
			Name:                     "setwelcome",
			Description:              "Set the welcome channel and message (Admin only)",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Channel for welcome messages",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message",
					Description: "Welcome message ({user} for mention)",
				},
			},
		},
		{
			Name:                     "setgoodbye",
			Description:              "Set the goodbye message (Admin only)",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message",
					Description: "Goodbye message ({user} for username)",
					Required:    true,
				},
			},
		},
		{
			Name:                     "setlevelup",
			Description:              "Set the level-up announcement message (Admin only)",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message",
					Description: "Level-up message ({user} and {level} placeholders)",
					Required:    true,
				},
			},
		},
		{
			Name:                     "toggleantilink",
			Description:              "Toggle anti-link protection (Admin only)",
			DefaultMemberPermissions: &adminOnly,
		},
		{
			Name:                     "togglespam",
			Description:              "Toggle spam protection (Admin only)",
			DefaultMemberPermissions: &adminOnly,
		},
		{
			Name:                     "schedulemessage",
			Description:              "Schedule a recurring message (Admin only)",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Channel to send the message in",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message",
					Description: "Message to send",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "cron",
					Description: "Cron expression (e.g. 0 9 * * * for 9 AM daily)",
					Required:    true,
				},
			},
		},
		{
			Name:                     "listscheduled",
			Description:              "List scheduled messages (Admin only)",
			DefaultMemberPermissions: &adminOnly,
		},
		{
			Name:                     "deletescheduled",
			Description:              "Delete a scheduled message (Admin only)",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "id",
					Description: "ID of scheduled message to delete",
					Required:    true,
				},
			},
		},
	}
}

// registerCommands bulk-overwrites the global command set so removed commands
// disappear instead of lingering.
func registerCommands(session *discordgo.Session) error {
	_, err := session.ApplicationCommandBulkOverwrite(session.State.User.ID, "", commandManifest())
	if err != nil {
		return fmt.Errorf("register application commands: %w", err)
	}

	return nil
}
