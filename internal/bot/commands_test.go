package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandManifest_PermissionBits(t *testing.T) {
	byName := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range commandManifest() {
		byName[cmd.Name] = cmd
	}

	tests := []struct {
		command string
		want    int64
	}{
		{"ban", discordgo.PermissionBanMembers},
		{"kick", discordgo.PermissionKickMembers},
		{"mute", discordgo.PermissionModerateMembers},
		{"unmute", discordgo.PermissionModerateMembers},
		{"addxp", discordgo.PermissionAdministrator},
		{"createcommand", discordgo.PermissionAdministrator},
		{"deletecommand", discordgo.PermissionAdministrator},
		{"addword", discordgo.PermissionAdministrator},
		{"removeword", discordgo.PermissionAdministrator},
		{"setwelcome", discordgo.PermissionAdministrator},
		{"setgoodbye", discordgo.PermissionAdministrator},
		{"setlevelup", discordgo.PermissionAdministrator},
		{"toggleantilink", discordgo.PermissionAdministrator},
		{"togglespam", discordgo.PermissionAdministrator},
		{"schedulemessage", discordgo.PermissionAdministrator},
		{"listscheduled", discordgo.PermissionAdministrator},
		{"deletescheduled", discordgo.PermissionAdministrator},
	}

	for _, tc := range tests {
		t.Run(tc.command, func(t *testing.T) {
			cmd, ok := byName[tc.command]
			require.True(t, ok, "command %q missing from manifest", tc.command)
			require.NotNil(t, cmd.DefaultMemberPermissions)
			assert.Equal(t, tc.want, *cmd.DefaultMemberPermissions)
		})
	}
}

func TestCommandManifest_MemberCommandsUnrestricted(t *testing.T) {
	byName := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range commandManifest() {
		byName[cmd.Name] = cmd
	}

	for _, name := range []string{"level", "leaderboard", "listcommands"} {
		cmd, ok := byName[name]
		require.True(t, ok, "command %q missing from manifest", name)
		assert.Nil(t, cmd.DefaultMemberPermissions, "command %q should be open to all members", name)
	}
}
