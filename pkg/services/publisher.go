package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/dskvich/llm-relay-bot/pkg/domain"
	"github.com/dskvich/llm-relay-bot/pkg/logger"
)

// replyPublisher republishes the growing text of one live reply. Intermediate
// updates are coalesced by a rate limiter; Final always publishes.
type replyPublisher struct {
	transport Transport
	recorder  Recorder
	handle    domain.ReplyHandle
	limiter   *rate.Limiter

	published string
	pending   string
}

func newReplyPublisher(
	transport Transport,
	recorder Recorder,
	handle domain.ReplyHandle,
	initial string,
	interval time.Duration,
) *replyPublisher {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	return &replyPublisher{
		transport: transport,
		recorder:  recorder,
		handle:    handle,
		limiter:   rate.NewLimiter(limit, 1),
		published: transport.FitReply(initial),
		pending:   initial,
	}
}

func (p *replyPublisher) Publish(ctx context.Context, text string) {
	p.pending = text
	if !p.limiter.Allow() {
		return
	}
	p.flush(ctx)
}

func (p *replyPublisher) Final(ctx context.Context, text string) {
	p.pending = text
	p.flush(ctx)
}

// flush sends pending unless the transport would show the same text that is
// already published.
func (p *replyPublisher) flush(ctx context.Context) {
	text := p.transport.FitReply(p.pending)
	if text == p.published {
		return
	}

	err := p.transport.UpdateReply(ctx, p.handle, text)
	p.recorder.ObserveReplyUpdate(err)
	if err != nil {
		slog.WarnContext(ctx, "Updating reply failed", "messageID", p.handle.MessageID, logger.Err(err))
		return
	}
	p.published = text
}
