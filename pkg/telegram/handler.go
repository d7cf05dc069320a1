package telegram

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/dskvich/llm-relay-bot/pkg/domain"
	"github.com/dskvich/llm-relay-bot/pkg/logger"
)

type EventHandler interface {
	Handle(ctx context.Context, event domain.Event)
}

type PhotoSource interface {
	PhotoURL(ctx context.Context, photos []models.PhotoSize) (string, error)
}

// Relay turns inbound updates into dispatcher events.
type Relay struct {
	dispatcher     EventHandler
	photos         PhotoSource
	supportsVision bool

	mu   sync.RWMutex
	self domain.Identity
}

func NewRelay(dispatcher EventHandler, photos PhotoSource, supportsVision bool) *Relay {
	return &Relay{
		dispatcher:     dispatcher,
		photos:         photos,
		supportsVision: supportsVision,
	}
}

// SetSelf records the bot account once it is known.
func (r *Relay) SetSelf(self domain.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.self = self
}

func (r *Relay) identity() domain.Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.self
}

// Addressed reports whether the update is a message the bot should answer.
func (r *Relay) Addressed(update *models.Update) bool {
	event := ToEvent(update, r.identity())
	if event.Kind != domain.EventMessage {
		return false
	}
	return event.Turn.Direct || event.Turn.MentionsRecipient()
}

// Handle is a bot.HandlerFunc.
func (r *Relay) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	event := ToEvent(update, r.identity())

	if event.Kind == domain.EventMessage && r.supportsVision && len(update.Message.Photo) > 0 &&
		(event.Turn.Direct || event.Turn.MentionsRecipient()) {
		url, err := r.photos.PhotoURL(ctx, update.Message.Photo)
		if err != nil {
			slog.WarnContext(ctx, "Photo download failed, continuing with text only", logger.Err(err))
		} else {
			event.Turn.ImageURLs = append(event.Turn.ImageURLs, url)
		}
	}

	r.dispatcher.Handle(ctx, event)
}
