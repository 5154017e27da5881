package bot

import (
	"context"

	"betroom/bot/common"
	"betroom/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// displayName returns the server-specific display name for the invoker,
// falling back to the global name and then the username
func displayName(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.Nick != "" {
		return i.Member.Nick
	}
	user := interactionUser(i)
	if user == nil {
		return ""
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

// resolveUser maps the invoking Discord account to a betroom user, registering it on first use.
// On failure the error has already been reported to the invoker and nil is returned.
func (b *Bot) resolveUser(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, deferred bool) *models.User {
	discordID, err := parseDiscordID(interactionUser(i))
	if err != nil {
		log.WithError(err).Warn("Unable to parse Discord ID")
		b.reportError(s, i, deferred, "Unable to process request. Please try again.")
		return nil
	}

	user, err := b.userService.GetOrCreateDiscordUser(ctx, discordID, displayName(i))
	if err != nil {
		b.reportError(s, i, deferred, userMessage(err, "resolve user"))
		return nil
	}
	return user
}

func (b *Bot) reportError(s *discordgo.Session, i *discordgo.InteractionCreate, deferred bool, msg string) {
	if deferred {
		common.FollowUpWithError(s, i, msg)
		return
	}
	common.RespondWithError(s, i, msg)
}
