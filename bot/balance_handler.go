package bot

import (
	"context"

	"betroom/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (b *Bot) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := b.resolveUser(context.Background(), s, i, false)
	if user == nil {
		return
	}
	if err := common.RespondWithEmbed(s, i, buildBalanceEmbed(user), true); err != nil {
		log.WithError(err).Error("Error responding to balance command")
	}
}

func (b *Bot) handleHistory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := b.resolveUser(ctx, s, i, false)
	if user == nil {
		return
	}

	entries, err := b.userService.GetUserHistory(ctx, user.ID)
	if err != nil {
		common.RespondWithError(s, i, userMessage(err, "history"))
		return
	}
	if err := common.RespondWithEmbed(s, i, buildHistoryEmbed(entries), true); err != nil {
		log.WithError(err).Error("Error responding to history command")
	}
}
