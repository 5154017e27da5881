package bot

import (
	"context"
	"strings"

	"betroom/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (b *Bot) handleRoomCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	sub := options[0]
	opts := optionMap(sub.Options)
	switch sub.Name {
	case "create":
		b.handleRoomCreate(s, i, opts["game"].StringValue())
	case "show":
		b.handleRoomShow(s, i, opts["code"].StringValue())
	case "close":
		b.handleRoomClose(s, i, opts["code"].StringValue())
	}
}

func (b *Bot) handleRoomCreate(s *discordgo.Session, i *discordgo.InteractionCreate, game string) {
	if !isAdmin(i) {
		common.RespondWithError(s, i, "Only server managers can open rooms.")
		return
	}
	ctx := context.Background()

	gameTypes, err := b.roomService.ListGameTypes(ctx)
	if err != nil {
		common.RespondWithError(s, i, userMessage(err, "list game types"))
		return
	}

	game = strings.TrimSpace(game)
	for _, gt := range gameTypes {
		if !strings.EqualFold(gt.Name, game) {
			continue
		}

		room, err := b.roomService.CreateRoom(ctx, gt.ID)
		if err != nil {
			common.RespondWithError(s, i, userMessage(err, "create room"))
			return
		}

		detail, err := b.roomService.GetRoomState(ctx, room.Code)
		if err != nil {
			common.RespondWithError(s, i, userMessage(err, "create room"))
			return
		}
		if err := common.RespondWithEmbed(s, i, buildRoomEmbed(detail), false); err != nil {
			log.WithError(err).Error("Error responding to room create")
		}
		return
	}

	names := make([]string, len(gameTypes))
	for idx, gt := range gameTypes {
		names[idx] = "`" + gt.Name + "`"
	}
	common.RespondWithError(s, i, "Unknown game. Available: "+strings.Join(names, ", "))
}

func (b *Bot) handleRoomShow(s *discordgo.Session, i *discordgo.InteractionCreate, code string) {
	detail, err := b.roomService.GetRoomState(context.Background(), roomCodeArg(code))
	if err != nil {
		common.RespondWithError(s, i, userMessage(err, "show room"))
		return
	}
	if err := common.RespondWithEmbed(s, i, buildRoomEmbed(detail), false); err != nil {
		log.WithError(err).Error("Error responding to room show")
	}
}

func (b *Bot) handleRoomClose(s *discordgo.Session, i *discordgo.InteractionCreate, code string) {
	if !isAdmin(i) {
		common.RespondWithError(s, i, "Only server managers can close rooms.")
		return
	}

	// settlement may wait on row locks
	if err := common.DeferResponse(s, i, false); err != nil {
		log.WithError(err).Error("Error deferring room close")
		return
	}

	result, err := b.settlementService.CloseRoom(context.Background(), roomCodeArg(code))
	if err != nil {
		common.FollowUpWithError(s, i, userMessage(err, "close room"))
		return
	}
	common.FollowUpWithEmbed(s, i, buildSettlementEmbed(result), false)
}
