package bot

import (
	"context"

	"betroom/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleBet places a wager on a labelled option, e.g. /bet code:A1B2C3 option:red amount:250
func (b *Bot) handleBet(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	opts := optionMap(i.ApplicationCommandData().Options)

	args, err := parseBetArgs(opts["code"].StringValue(), opts["option"].StringValue(), opts["amount"].StringValue())
	if err != nil {
		common.RespondWithError(s, i, err.Error())
		return
	}

	if err := common.DeferResponse(s, i, true); err != nil {
		log.WithError(err).Error("Error deferring bet response")
		return
	}

	user := b.resolveUser(ctx, s, i, true)
	if user == nil {
		return
	}

	detail, err := b.roomService.GetRoomState(ctx, args.Code)
	if err != nil {
		common.FollowUpWithError(s, i, userMessage(err, "bet"))
		return
	}

	option := detail.GameType.FindOptionByLabel(args.Option)
	if option == nil {
		common.FollowUpWithError(s, i, "Unknown option. Choose one of: "+optionLabels(detail.GameType))
		return
	}

	wager, err := b.wagerService.PlaceWager(ctx, args.Code, user.ID, option.ID, args.Stake)
	if err != nil {
		common.FollowUpWithError(s, i, userMessage(err, "bet"))
		return
	}

	common.FollowUpWithEmbed(s, i, buildWagerEmbed(args.Code, option.Label, wager), true)
}
