package bot

import (
	"errors"
	"fmt"
	"testing"

	"betroom/service"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"domain error", service.ErrRoomClosed, "Room is closed to new wagers."},
		{"wrapped domain error", fmt.Errorf("placing wager: %w", service.ErrInsufficientBalance), "Balance does not cover the stake."},
		{"busy", service.ErrRoomBusy, "Room is busy, try again."},
		{"internal domain error", service.ErrOutcomeUnresolvable, "Something went wrong. Please try again."},
		{"plain error", errors.New("connection refused"), "Something went wrong. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, userMessage(tt.err, "test"))
		})
	}
}

func TestInteractionHelpers(t *testing.T) {
	guild := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Member: &discordgo.Member{
			Nick:        "Captain",
			Permissions: discordgo.PermissionManageGuild,
			User:        &discordgo.User{ID: "123456789012345678", Username: "captain_1", GlobalName: "Cap"},
		},
	}}
	dm := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		User: &discordgo.User{ID: "42", Username: "lurker"},
	}}

	assert.True(t, isAdmin(guild))
	assert.False(t, isAdmin(dm))
	assert.Equal(t, "Captain", displayName(guild))
	assert.Equal(t, "lurker", displayName(dm))

	id, err := parseDiscordID(interactionUser(guild))
	assert.NoError(t, err)
	assert.Equal(t, int64(123456789012345678), id)

	_, err = parseDiscordID(&discordgo.User{ID: "not-a-number"})
	assert.Error(t, err)
	_, err = parseDiscordID(nil)
	assert.Error(t, err)
}

func TestCommandDefinitions(t *testing.T) {
	names := map[string]*discordgo.ApplicationCommand{}
	for _, cmd := range commandDefinitions() {
		names[cmd.Name] = cmd
	}

	assert.Contains(t, names, "balance")
	assert.Contains(t, names, "history")
	assert.Contains(t, names, "bet")
	if assert.Contains(t, names, "room") {
		var subs []string
		for _, opt := range names["room"].Options {
			subs = append(subs, opt.Name)
		}
		assert.Equal(t, []string{"create", "show", "close"}, subs)
	}
}
