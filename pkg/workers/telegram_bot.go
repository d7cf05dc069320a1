package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
)

type telegramAPI interface {
	Start(ctx context.Context)
	StartWebhook(ctx context.Context)
	SetWebhook(ctx context.Context, params *bot.SetWebhookParams) (bool, error)
	DeleteWebhook(ctx context.Context, params *bot.DeleteWebhookParams) (bool, error)
}

type telegramBot struct {
	bot           telegramAPI
	webhookURL    string
	webhookSecret string
}

// NewTelegramBot long-polls for updates unless webhookURL is set.
func NewTelegramBot(b telegramAPI, webhookURL, webhookSecret string) *telegramBot {
	return &telegramBot{
		bot:           b,
		webhookURL:    webhookURL,
		webhookSecret: webhookSecret,
	}
}

func (t *telegramBot) Name() string { return "telegram_bot" }

func (t *telegramBot) Start(ctx context.Context) error {
	if t.webhookURL == "" {
		if _, err := t.bot.DeleteWebhook(ctx, &bot.DeleteWebhookParams{}); err != nil {
			return fmt.Errorf("deleting webhook: %w", err)
		}
		t.bot.Start(ctx)
		return nil
	}

	if _, err := t.bot.SetWebhook(ctx, &bot.SetWebhookParams{
		URL:         t.webhookURL,
		SecretToken: t.webhookSecret,
	}); err != nil {
		return fmt.Errorf("setting webhook: %w", err)
	}
	slog.Info("Receiving updates via webhook", "url", t.webhookURL)

	// The webhook stays registered on shutdown so updates queue until the next start.
	t.bot.StartWebhook(ctx)
	return nil
}
