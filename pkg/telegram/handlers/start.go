package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

func Start(supportsVision bool) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		var greeting strings.Builder
		greeting.WriteString("👋 Hi! I relay your questions to a local language model.\n\n")
		greeting.WriteString("💬 In private chats just write to me.\n")
		greeting.WriteString("👥 In groups mention me or reply to one of my messages.\n")
		if supportsVision {
			greeting.WriteString("📷 Attach a photo and I will pass it along with your question.\n")
		}
		greeting.WriteString("🧹 /reset forgets the conversation so far.")

		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:          update.Message.Chat.ID,
			MessageThreadID: update.Message.MessageThreadID,
			Text:            greeting.String(),
		})
	}
}
