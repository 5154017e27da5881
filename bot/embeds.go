package bot

import (
	"fmt"
	"strings"

	"betroom/bot/common"
	"betroom/models"

	"github.com/bwmarrin/discordgo"
)

// Discord color constants
const (
	ColorPrimary = 0x5865F2 // Discord blurple
	ColorSuccess = 0x57F287 // Green
	ColorDanger  = 0xED4245 // Red
	ColorWarning = 0xFEE75C // Yellow
)

// maxHistoryLines keeps the history embed under Discord's description limit
const maxHistoryLines = 15

func optionLabels(g *models.GameType) string {
	labels := make([]string, len(g.Options))
	for i, o := range g.Options {
		labels[i] = "`" + o.Label + "`"
	}
	return strings.Join(labels, ", ")
}

// buildRoomEmbed shows a room's game, options and pool
func buildRoomEmbed(detail *models.RoomDetail) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🎲 Room %s", detail.Room.Code),
		Color: ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Game", Value: detail.GameType.Name, Inline: true},
			{Name: "Wagers", Value: fmt.Sprintf("%d", detail.WagerCount), Inline: true},
			{Name: "Pool", Value: common.FormatMoney(detail.TotalPool), Inline: true},
			{Name: "Options", Value: optionLabels(detail.GameType)},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("/bet code:%s option:<label> amount:<stake>", detail.Room.Code),
		},
	}

	if !detail.Room.IsOpen {
		embed.Color = ColorWarning
		embed.Footer = nil
		outcome := "unknown"
		if detail.OutcomeOption != nil {
			outcome = detail.OutcomeOption.Label
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Outcome",
			Value: fmt.Sprintf("**%s**", outcome),
		})
	}

	return embed
}

// buildSettlementEmbed announces the outcome of a closed room
func buildSettlementEmbed(result *models.SettlementResult) *discordgo.MessageEmbed {
	winners := result.Winners()

	var description string
	switch {
	case len(result.Payouts) == 0:
		description = "Nobody placed a wager."
	case len(winners) == 0:
		description = fmt.Sprintf("Nobody picked **%s**. The house keeps %s.",
			result.WinningOption.Label, common.FormatMoney(result.HouseRetained))
	default:
		lines := make([]string, 0, len(winners))
		for _, w := range winners {
			lines = append(lines, fmt.Sprintf("• wager #%d: %s → **%s**",
				w.WagerID, common.FormatMoney(w.Stake), common.FormatMoney(w.Payout)))
		}
		description = strings.Join(lines, "\n")
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🏁 Room %s landed on %s (%d)", result.Room.Code, result.WinningOption.Label, result.DrawValue),
		Description: description,
		Color:       ColorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Total pool", Value: common.FormatMoney(result.TotalPool), Inline: true},
			{Name: "Winning pool", Value: common.FormatMoney(result.WinningPool), Inline: true},
			{Name: "Winners", Value: fmt.Sprintf("%d", len(winners)), Inline: true},
		},
	}
}

// buildWagerEmbed confirms a placed wager
func buildWagerEmbed(code, label string, wager *models.Wager) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "✅ Wager placed",
		Description: fmt.Sprintf("**%s** on **%s** in room **%s**", common.FormatMoney(wager.Stake), label, code),
		Color:       ColorSuccess,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Wager #%d", wager.ID),
		},
	}
}

func buildBalanceEmbed(user *models.User) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "💰 Balance",
		Description: fmt.Sprintf("%s, your balance is **%s**", user.Nickname, common.FormatMoney(user.Balance)),
		Color:       ColorPrimary,
	}
}

// buildHistoryEmbed lists settled wagers, newest first
func buildHistoryEmbed(entries []*models.HistoryEntry) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "📜 Settled wagers",
		Color: ColorPrimary,
	}
	if len(entries) == 0 {
		embed.Description = "No settled wagers yet."
		return embed
	}

	lines := make([]string, 0, min(len(entries), maxHistoryLines))
	for _, e := range entries[:min(len(entries), maxHistoryLines)] {
		result := "lost"
		if e.Won && e.Payout.Valid {
			result = "won " + common.FormatMoney(e.Payout.Decimal)
		}
		when := ""
		if e.SettledAt != nil {
			when = " " + common.FormatDiscordTimestamp(*e.SettledAt, "R")
		}
		lines = append(lines, fmt.Sprintf("`%s` %s on %s: %s%s",
			e.RoomCode, common.FormatMoney(e.Stake), e.OptionLabel, result, when))
	}
	embed.Description = strings.Join(lines, "\n")
	if len(entries) > maxHistoryLines {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Showing %d of %d", maxHistoryLines, len(entries)),
		}
	}
	return embed
}
