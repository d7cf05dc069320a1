package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/go-telegram/bot/models"
	"github.com/samber/lo"

	"github.com/dskvich/llm-relay-bot/pkg/domain"
)

// ConversationID keys history by chat and forum topic.
func ConversationID(chatID int64, threadID int) string {
	return fmt.Sprintf("%d:%d", chatID, threadID)
}

// ParseConversationID is the inverse of ConversationID.
func ParseConversationID(id string) (chatID int64, threadID int, err error) {
	chat, thread, ok := strings.Cut(id, ":")
	if !ok {
		return 0, 0, fmt.Errorf("malformed conversation id %q", id)
	}
	if chatID, err = strconv.ParseInt(chat, 10, 64); err != nil {
		return 0, 0, fmt.Errorf("parsing chat id: %w", err)
	}
	if threadID, err = strconv.Atoi(thread); err != nil {
		return 0, 0, fmt.Errorf("parsing thread id: %w", err)
	}
	return chatID, threadID, nil
}

// SelfIdentity describes the bot account as a turn recipient.
func SelfIdentity(me *models.User) domain.Identity {
	if me == nil {
		return domain.Identity{}
	}
	return domain.Identity{ID: strconv.FormatInt(me.ID, 10), Name: me.Username}
}

// ToEvent converts a Telegram update into a transport-neutral event.
func ToEvent(update *models.Update, self domain.Identity) domain.Event {
	switch {
	case update == nil:
		return domain.Event{Kind: domain.EventUnknown}
	case update.Message != nil:
		return domain.Event{Kind: domain.EventMessage, Turn: toTurn(update.Message, self)}
	case update.MyChatMember != nil:
		return domain.Event{Kind: domain.EventConversationUpdate}
	default:
		return domain.Event{Kind: domain.EventUnknown}
	}
}

func toTurn(msg *models.Message, self domain.Identity) *domain.Turn {
	text, entities := msg.Text, msg.Entities
	if text == "" {
		text, entities = msg.Caption, msg.CaptionEntities
	}

	units := utf16.Encode([]rune(text))
	mentions := lo.FilterMap(entities, func(e models.MessageEntity, _ int) (domain.Mention, bool) {
		return entityMention(units, e)
	})

	// A reply to one of the bot's messages addresses the bot.
	if reply := msg.ReplyToMessage; reply != nil && reply.From != nil && self.ID != "" &&
		strconv.FormatInt(reply.From.ID, 10) == self.ID {
		mentions = append(mentions, domain.Mention{ID: self.ID})
	}

	turn := &domain.Turn{
		ConversationID: ConversationID(msg.Chat.ID, msg.MessageThreadID),
		MessageID:      strconv.Itoa(msg.ID),
		Recipient:      self,
		Text:           stripSelfMentions(units, entities, self),
		Mentions:       mentions,
		Direct:         msg.Chat.Type == models.ChatTypePrivate,
	}
	if msg.From != nil {
		turn.Sender = domain.Identity{
			ID:   strconv.FormatInt(msg.From.ID, 10),
			Name: lo.CoalesceOrEmpty(msg.From.Username, msg.From.FirstName),
		}
	}
	return turn
}

func entityMention(units []uint16, e models.MessageEntity) (domain.Mention, bool) {
	switch e.Type {
	case models.MessageEntityTypeMention:
		name := strings.TrimPrefix(entityText(units, e), "@")
		return domain.Mention{ID: name}, name != ""
	case models.MessageEntityTypeTextMention:
		if e.User == nil {
			return domain.Mention{}, false
		}
		return domain.Mention{ID: strconv.FormatInt(e.User.ID, 10)}, true
	default:
		return domain.Mention{}, false
	}
}

// entityText slices by UTF-16 code units, the unit Telegram measures offsets in.
func entityText(units []uint16, e models.MessageEntity) string {
	start, end, ok := entityBounds(units, e)
	if !ok {
		return ""
	}
	return string(utf16.Decode(units[start:end]))
}

func entityBounds(units []uint16, e models.MessageEntity) (int, int, bool) {
	start, end := e.Offset, e.Offset+e.Length
	if start < 0 || e.Length <= 0 || end > len(units) {
		return 0, 0, false
	}
	return start, end, true
}

func isSelf(units []uint16, e models.MessageEntity, self domain.Identity) bool {
	m, ok := entityMention(units, e)
	if !ok {
		return false
	}
	return (self.ID != "" && m.ID == self.ID) || (self.Name != "" && strings.EqualFold(m.ID, self.Name))
}

// stripSelfMentions removes the bot's own mentions so the model sees only the question.
func stripSelfMentions(units []uint16, entities []models.MessageEntity, self domain.Identity) string {
	out := make([]uint16, 0, len(units))
	pos := 0
	for _, e := range entities {
		start, end, ok := entityBounds(units, e)
		if !ok || start < pos || !isSelf(units, e, self) {
			continue
		}
		out = append(out, units[pos:start]...)
		pos = end
	}
	out = append(out, units[pos:]...)
	return strings.TrimSpace(string(utf16.Decode(out)))
}

// largestPhoto picks the highest resolution size Telegram offers.
func largestPhoto(photos []models.PhotoSize) (models.PhotoSize, bool) {
	if len(photos) == 0 {
		return models.PhotoSize{}, false
	}
	return lo.MaxBy(photos, func(a, b models.PhotoSize) bool {
		return a.Width*a.Height > b.Width*b.Height
	}), true
}
