package matchers

import (
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Command matches "/name" and "/name@botname" at the start of a message.
func Command(name string) bot.MatchFunc {
	return func(update *models.Update) bool {
		if update.Message == nil {
			return false
		}

		first, _, _ := strings.Cut(strings.TrimSpace(update.Message.Text), " ")
		command, _, _ := strings.Cut(first, "@")

		return command == "/"+name
	}
}

// None matches updates that no given matcher accepts.
func None(matchers ...bot.MatchFunc) bot.MatchFunc {
	return func(update *models.Update) bool {
		for _, m := range matchers {
			if m(update) {
				return false
			}
		}
		return true
	}
}
