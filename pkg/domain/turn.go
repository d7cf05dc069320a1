package domain

import "strings"

// Identity is a participant of a conversation as seen by the transport.
type Identity struct {
	ID   string
	Name string
}

// Mention is a structured reference to a participant inside a message.
type Mention struct {
	ID string
}

// Turn is one inbound message handed over by the chat transport.
type Turn struct {
	ConversationID string
	MessageID      string
	Sender         Identity
	Recipient      Identity
	Text           string
	Mentions       []Mention
	ImageURLs      []string

	// Direct marks one-to-one conversations, where every message is addressed to the bot.
	Direct bool
}

// MentionsRecipient reports whether any mention references the recipient by id or name.
func (t Turn) MentionsRecipient() bool {
	for _, m := range t.Mentions {
		if m.ID == "" {
			continue
		}
		if m.ID == t.Recipient.ID || (t.Recipient.Name != "" && strings.EqualFold(m.ID, t.Recipient.Name)) {
			return true
		}
	}
	return false
}

type EventKind int

const (
	EventUnknown EventKind = iota
	EventMessage
	EventConversationUpdate
)

func (k EventKind) String() string {
	switch k {
	case EventMessage:
		return "message"
	case EventConversationUpdate:
		return "conversation_update"
	default:
		return "unknown"
	}
}

// Event is an inbound activity. Turn is set for EventMessage only.
type Event struct {
	Kind EventKind
	Turn *Turn
}

// ReplyHandle identifies a reply message so it can be edited later.
type ReplyHandle struct {
	ConversationID string
	MessageID      string
}
