package repository

import (
	"sync"

	"github.com/dskvich/llm-relay-bot/pkg/domain"
)

const DefaultMaxHistoryMessages = 20

type conversation struct {
	mu       sync.Mutex
	messages []domain.ChatMessage
}

// historyRepository keeps the latest messages of every conversation in memory.
// Writes to one conversation are serialized; different conversations never
// contend beyond the short map lookup.
type historyRepository struct {
	mu            sync.RWMutex
	conversations map[string]*conversation
	maxMessages   int
}

func NewHistoryRepository(maxMessages int) *historyRepository {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxHistoryMessages
	}
	return &historyRepository{
		conversations: make(map[string]*conversation),
		maxMessages:   maxMessages,
	}
}

func (h *historyRepository) lookup(conversationID string) (*conversation, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.conversations[conversationID]
	return c, ok
}

func (h *historyRepository) getOrCreate(conversationID string) *conversation {
	if c, ok := h.lookup(conversationID); ok {
		return c
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.conversations[conversationID]; ok {
		return c
	}
	c := &conversation{}
	h.conversations[conversationID] = c
	return c
}

// Get returns a copy of the conversation history, oldest first.
func (h *historyRepository) Get(conversationID string) []domain.ChatMessage {
	c, ok := h.lookup(conversationID)
	if !ok {
		return []domain.ChatMessage{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]domain.ChatMessage{}, c.messages...)
}

// Append adds a user/assistant pair and drops the oldest entries beyond the cap.
func (h *historyRepository) Append(conversationID string, user, assistant domain.ChatMessage) {
	c := h.getOrCreate(conversationID)

	c.mu.Lock()
	defer c.mu.Unlock()

	messages := append(c.messages, user, assistant)
	if overflow := len(messages) - h.maxMessages; overflow > 0 {
		messages = append([]domain.ChatMessage(nil), messages[overflow:]...)
	}
	c.messages = messages
}

func (h *historyRepository) Len(conversationID string) int {
	c, ok := h.lookup(conversationID)
	if !ok {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.messages)
}

func (h *historyRepository) Conversations() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.conversations)
}

// Clear forgets a conversation. Turns already in flight may still commit to it.
func (h *historyRepository) Clear(conversationID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.conversations, conversationID)
}
