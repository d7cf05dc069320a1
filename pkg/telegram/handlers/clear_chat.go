package handlers

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/dskvich/llm-relay-bot/pkg/telegram"
)

type HistoryClearer interface {
	Clear(conversationID string)
}

func ClearChat(clearer HistoryClearer) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		chatID := update.Message.Chat.ID
		topicID := update.Message.MessageThreadID
		conversationID := telegram.ConversationID(chatID, topicID)

		slog.InfoContext(ctx, "Clearing conversation history", "conversation", conversationID)

		clearer.Clear(conversationID)

		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:          chatID,
			MessageThreadID: topicID,
			Text:            "🧹 History cleared. Let's start over.",
		})
	}
}
