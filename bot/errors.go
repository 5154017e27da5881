package bot

import (
	"betroom/service"

	log "github.com/sirupsen/logrus"
)

// userMessage turns a service error into text safe to show in Discord
func userMessage(err error, action string) string {
	if de, ok := service.AsDomainError(err); ok && de.Kind != service.KindInternal {
		return capitalize(de.Message) + "."
	}
	log.WithError(err).WithField("action", action).Error("Discord command failed")
	return "Something went wrong. Please try again."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if 'a' <= s[0] && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
