package middleware

import (
	"context"
	"log/slog"
	"slices"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Auth lets through updates from listed user or chat ids. An empty list allows everyone.
func Auth(authorizedIDs []int64) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if len(authorizedIDs) == 0 {
				next(ctx, b, update)
				return
			}

			var userID, chatID int64
			switch {
			case update.Message != nil:
				chatID = update.Message.Chat.ID
				if update.Message.From != nil {
					userID = update.Message.From.ID
				}
			case update.MyChatMember != nil:
				chatID = update.MyChatMember.Chat.ID
				userID = update.MyChatMember.From.ID
			default:
				slog.DebugContext(ctx, "Skipping unsupported update")
				return
			}

			if slices.Contains(authorizedIDs, userID) || slices.Contains(authorizedIDs, chatID) {
				next(ctx, b, update)
				return
			}

			slog.WarnContext(ctx, "Unauthorized access attempt", "userID", userID, "chatID", chatID)

			if update.Message != nil && update.Message.Chat.Type == models.ChatTypePrivate {
				b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID:          update.Message.Chat.ID,
					MessageThreadID: update.Message.MessageThreadID,
					Text:            "❌ Not authorized",
				})
			}
		}
	}
}
