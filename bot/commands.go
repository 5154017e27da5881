package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// commandDefinitions returns every slash command the bot serves
func commandDefinitions() []*discordgo.ApplicationCommand {
	codeOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "code",
		Description: "Room code",
		Required:    true,
		MinLength:   ptr(6),
		MaxLength:   6,
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "balance",
			Description: "Check your current balance",
		},
		{
			Name:        "history",
			Description: "List your settled wagers",
		},
		{
			Name:        "bet",
			Description: "Place a wager in an open room",
			Options: []*discordgo.ApplicationCommandOption{
				codeOption,
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "option",
					Description: "Outcome to back, e.g. red",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "amount",
					Description: "Stake, e.g. 250.50",
					Required:    true,
				},
			},
		},
		{
			Name:        "room",
			Description: "Open, inspect and close betting rooms",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "Open a new room (admins only)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "game",
							Description: "Game type, e.g. roulette",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Show a room's options and pool",
					Options:     []*discordgo.ApplicationCommandOption{codeOption},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "close",
					Description: "Draw the outcome and pay out (admins only)",
					Options:     []*discordgo.ApplicationCommandOption{codeOption},
				},
			},
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	for _, cmd := range commandDefinitions() {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}
	return nil
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "balance":
		b.handleBalance(s, i)
	case "history":
		b.handleHistory(s, i)
	case "bet":
		b.handleBet(s, i)
	case "room":
		b.handleRoomCommand(s, i)
	}
}

func ptr[T any](v T) *T {
	return &v
}
