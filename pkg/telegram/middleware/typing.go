package middleware

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/dskvich/llm-relay-bot/pkg/logger"
)

// Typing shows the typing indicator for updates the bot is going to answer.
func Typing(addressed func(*models.Update) bool) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if update.Message != nil && addressed(update) {
				if _, err := b.SendChatAction(ctx, &bot.SendChatActionParams{
					ChatID:          update.Message.Chat.ID,
					MessageThreadID: update.Message.MessageThreadID,
					Action:          models.ChatActionTyping,
				}); err != nil {
					slog.DebugContext(ctx, "Sending chat action failed", logger.Err(err))
				}
			}

			next(ctx, b, update)
		}
	}
}
