package llm

import (
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/dskvich/llm-relay-bot/pkg/domain"
)

// UserMessage builds the current user turn. Images are attached only when the
// model accepts them.
func UserMessage(text string, imageURLs []string, visionCapable bool) domain.ChatMessage {
	if visionCapable && len(imageURLs) > 0 {
		return domain.NewMultimodalMessage(domain.RoleUser, text, imageURLs)
	}
	return domain.NewTextMessage(domain.RoleUser, text)
}

// BuildMessages composes the conversation sent to the model: the optional
// system prompt, the history as given, then the current user turn.
func BuildMessages(
	userMessage string,
	history []domain.ChatMessage,
	imageURLs []string,
	systemPrompt string,
	visionCapable bool,
) []domain.ChatMessage {
	messages := make([]domain.ChatMessage, 0, len(history)+2)

	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, domain.NewTextMessage(domain.RoleSystem, systemPrompt))
	}

	messages = append(messages, history...)
	messages = append(messages, UserMessage(userMessage, imageURLs, visionCapable))

	return messages
}

func toOpenAI(messages []domain.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		if !m.IsMultimodal() {
			out = append(out, openai.ChatCompletionMessage{Role: string(m.Role()), Content: m.Text()})
			continue
		}

		images := m.Images()
		parts := make([]openai.ChatMessagePart, 0, len(images)+1)
		parts = append(parts, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: m.Text()})
		for _, img := range images {
			parts = append(parts, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: img.URL},
			})
		}
		out = append(out, openai.ChatCompletionMessage{Role: string(m.Role()), MultiContent: parts})
	}
	return out
}
