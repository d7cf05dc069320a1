package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dskvich/llm-relay-bot/pkg/domain"
	"github.com/dskvich/llm-relay-bot/pkg/llm"
	"github.com/dskvich/llm-relay-bot/pkg/logger"
	"github.com/dskvich/llm-relay-bot/pkg/metrics"
)

type Transport interface {
	SendReply(ctx context.Context, turn domain.Turn, text string) (domain.ReplyHandle, error)
	UpdateReply(ctx context.Context, handle domain.ReplyHandle, text string) error
	// FitReply returns text as the transport will display it.
	FitReply(text string) string
}

type LLMClient interface {
	SupportsVision() bool
	Reply(ctx context.Context, req llm.Request, tap func(acc string)) (string, error)
}

type HistoryStore interface {
	Get(conversationID string) []domain.ChatMessage
	Append(conversationID string, user, assistant domain.ChatMessage)
}

type Recorder interface {
	ObserveTurn(outcome string, d time.Duration)
	AddDeltas(n int)
	ObserveReplyUpdate(err error)
}

type dispatcher struct {
	transport      Transport
	client         LLMClient
	history        HistoryStore
	recorder       Recorder
	updateInterval time.Duration
}

func NewDispatcher(
	transport Transport,
	client LLMClient,
	history HistoryStore,
	recorder Recorder,
	updateInterval time.Duration,
) *dispatcher {
	return &dispatcher{
		transport:      transport,
		client:         client,
		history:        history,
		recorder:       recorder,
		updateInterval: updateInterval,
	}
}

func (d *dispatcher) Handle(ctx context.Context, event domain.Event) {
	switch event.Kind {
	case domain.EventMessage:
		if event.Turn == nil {
			slog.WarnContext(ctx, "Message event without a turn")
			return
		}
		start := time.Now()
		outcome := d.handleTurn(ctx, *event.Turn)
		d.recorder.ObserveTurn(outcome, time.Since(start))
	default:
		slog.DebugContext(ctx, "Ignoring event", "kind", event.Kind)
	}
}

func (d *dispatcher) handleTurn(ctx context.Context, turn domain.Turn) string {
	ctx = logger.ContextWithRequestID(ctx, requestID(ctx, turn))
	log := slog.With("conversation", turn.ConversationID, "sender", turn.Sender.ID)

	if !turn.Direct && !turn.MentionsRecipient() {
		log.DebugContext(ctx, "Bot not mentioned, skipping")
		return metrics.OutcomeIgnored
	}

	text := strings.TrimSpace(turn.Text)
	if text == "" {
		if _, err := d.transport.SendReply(ctx, turn, domain.EmptyPromptText); err != nil {
			log.ErrorContext(ctx, "Sending empty prompt notice failed", logger.Err(err))
		}
		return metrics.OutcomeEmptyInput
	}

	history := d.history.Get(turn.ConversationID)

	handle, err := d.transport.SendReply(ctx, turn, domain.PlaceholderText)
	if err != nil {
		log.ErrorContext(ctx, "Sending placeholder failed", logger.Err(err))
		return metrics.OutcomeSendFailed
	}

	log.InfoContext(ctx, "Streaming reply",
		"historyCount", len(history),
		"imagesCount", len(turn.ImageURLs),
	)

	publisher := newReplyPublisher(d.transport, d.recorder, handle, domain.PlaceholderText, d.updateInterval)
	deltas := 0
	started := time.Now()

	reply, err := d.client.Reply(ctx, llm.Request{
		Message:   text,
		History:   history,
		ImageURLs: turn.ImageURLs,
	}, func(acc string) {
		deltas++
		publisher.Publish(ctx, acc)
	})
	d.recorder.AddDeltas(deltas)

	if ctx.Err() != nil {
		log.InfoContext(ctx, "Turn cancelled", "deltas", deltas, logger.Err(ctx.Err()))
		return metrics.OutcomeCancelled
	}

	if err != nil {
		log.ErrorContext(ctx, "Streaming reply failed", "deltas", deltas, logger.Err(err))
		publisher.Final(ctx, domain.FailureText(err))
		return metrics.OutcomeFailed
	}

	publisher.Final(ctx, reply)

	d.history.Append(turn.ConversationID,
		llm.UserMessage(text, turn.ImageURLs, d.client.SupportsVision()),
		domain.NewTextMessage(domain.RoleAssistant, reply),
	)

	log.InfoContext(ctx, "Reply committed",
		"deltas", deltas,
		"chars", len(reply),
		"duration", time.Since(started).Round(time.Millisecond),
	)

	return metrics.OutcomeReplied
}

func requestID(ctx context.Context, turn domain.Turn) string {
	if id, ok := logger.RequestIDFromContext(ctx); ok {
		return id
	}
	return turn.ConversationID + "/" + turn.MessageID
}
