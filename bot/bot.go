package bot

import (
	"fmt"
	"strconv"

	"betroom/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string
}

type Bot struct {
	config            Config
	session           *discordgo.Session
	userService       service.UserService
	roomService       service.RoomService
	wagerService      service.WagerService
	settlementService service.SettlementService
}

func New(config Config, userService service.UserService, roomService service.RoomService, wagerService service.WagerService, settlementService service.SettlementService) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds

	bot := &Bot{
		config:            config,
		session:           dg,
		userService:       userService,
		roomService:       roomService,
		wagerService:      wagerService,
		settlementService: settlementService,
	}

	dg.AddHandler(bot.handleCommands)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	log.WithField("guildID", config.GuildID).Info("Discord bot connected")
	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// interactionUser returns the invoking Discord user, whether the command ran in a guild or a DM
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// isAdmin reports whether the invoker can manage the guild
func isAdmin(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionManageGuild != 0
}

func parseDiscordID(user *discordgo.User) (int64, error) {
	if user == nil {
		return 0, fmt.Errorf("interaction has no user")
	}
	id, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid discord id %q: %w", user.ID, err)
	}
	return id, nil
}

// optionMap indexes command options by name
func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}
