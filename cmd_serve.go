package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-telegram/bot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/dskvich/llm-relay-bot/pkg/api"
	"github.com/dskvich/llm-relay-bot/pkg/metrics"
	"github.com/dskvich/llm-relay-bot/pkg/repository"
	"github.com/dskvich/llm-relay-bot/pkg/services"
	"github.com/dskvich/llm-relay-bot/pkg/telegram"
	"github.com/dskvich/llm-relay-bot/pkg/telegram/handlers"
	"github.com/dskvich/llm-relay-bot/pkg/telegram/matchers"
	"github.com/dskvich/llm-relay-bot/pkg/telegram/middleware"
	"github.com/dskvich/llm-relay-bot/pkg/workers"
)

func newServeCmd(root *rootCommander) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			workerGroup, err := setupWorkers(cmd.Context(), root)
			if err != nil {
				return err
			}
			return workerGroup.Start(cmd.Context())
		},
	}
}

func setupWorkers(ctx context.Context, root *rootCommander) (workers.Group, error) {
	cfg := root.cfg
	if err := cfg.RequireTelegram(); err != nil {
		return nil, err
	}

	client, err := root.newLLMClient()
	if err != nil {
		return nil, fmt.Errorf("creating llm client: %w", err)
	}

	history := repository.NewHistoryRepository(cfg.History.MaxMessages)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.New(registry, history.Conversations)

	b, err := bot.New(cfg.Telegram.Token,
		bot.WithSkipGetMe(),
		bot.WithWebhookSecretToken(cfg.Telegram.WebhookSecret),
		bot.WithMiddlewares(
			middleware.RequestID,
			middleware.Auth(cfg.Telegram.AuthorizedIDs),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bot: %w", err)
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting bot account: %w", err)
	}
	slog.Info("Authorized on telegram", "account", me.Username)

	transport := telegram.NewClient(b)
	dispatcher := services.NewDispatcher(transport, client, history, recorder, cfg.Telegram.UpdateInterval)

	relay := telegram.NewRelay(dispatcher, transport, client.SupportsVision())
	relay.SetSelf(telegram.SelfIdentity(me))

	start, reset := matchers.Command("start"), matchers.Command("reset")
	b.RegisterHandlerMatchFunc(start, handlers.Start(client.SupportsVision()))
	b.RegisterHandlerMatchFunc(reset, handlers.ClearChat(history))
	b.RegisterHandlerMatchFunc(matchers.None(start, reset), relay.Handle, middleware.Typing(relay.Addressed))

	var webhook http.Handler
	if cfg.Telegram.WebhookURL != "" {
		webhook = b.WebhookHandler()
	}
	server := api.New(client, registry, webhook)

	slog.Info("Relaying to model", "endpoint", client.Endpoint(), "model", client.Model(), "vision", client.SupportsVision())

	return workers.Group{
		workers.NewTelegramBot(b, cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret),
		workers.NewAPIServer(server, cfg.Server.Addr()),
	}, nil
}
