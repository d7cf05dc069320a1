package domain

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ImageRef struct {
	URL string
}

// ChatMessage is one entry of a conversation. Values are never mutated after
// construction; Images is copied in and out.
type ChatMessage struct {
	role   Role
	text   string
	images []ImageRef
}

func NewTextMessage(role Role, text string) ChatMessage {
	return ChatMessage{role: role, text: text}
}

// NewMultimodalMessage builds a message with a text part followed by one image part per URL.
func NewMultimodalMessage(role Role, text string, imageURLs []string) ChatMessage {
	msg := ChatMessage{role: role, text: text}
	if len(imageURLs) == 0 {
		return msg
	}
	msg.images = make([]ImageRef, 0, len(imageURLs))
	for _, u := range imageURLs {
		msg.images = append(msg.images, ImageRef{URL: u})
	}
	return msg
}

func (m ChatMessage) Role() Role   { return m.role }
func (m ChatMessage) Text() string { return m.text }

func (m ChatMessage) Images() []ImageRef {
	if len(m.images) == 0 {
		return nil
	}
	return append([]ImageRef(nil), m.images...)
}

func (m ChatMessage) IsMultimodal() bool { return len(m.images) > 0 }
