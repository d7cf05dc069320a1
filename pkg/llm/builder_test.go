package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dskvich/llm-relay-bot/pkg/domain"
)

func TestBuildMessages(t *testing.T) {
	history := []domain.ChatMessage{
		domain.NewTextMessage(domain.RoleUser, "hi"),
		domain.NewTextMessage(domain.RoleAssistant, "hello"),
	}

	t.Run("system prompt first, history verbatim, user last", func(t *testing.T) {
		got := BuildMessages("how are you?", history, nil, "be brief", false)

		require.Len(t, got, 4)
		assert.Equal(t, domain.RoleSystem, got[0].Role())
		assert.Equal(t, "be brief", got[0].Text())
		assert.Equal(t, history[0], got[1])
		assert.Equal(t, history[1], got[2])
		assert.Equal(t, domain.RoleUser, got[3].Role())
		assert.Equal(t, "how are you?", got[3].Text())
		assert.False(t, got[3].IsMultimodal())
	})

	t.Run("no system prompt", func(t *testing.T) {
		got := BuildMessages("q", nil, nil, "", false)

		require.Len(t, got, 1)
		assert.Equal(t, domain.RoleUser, got[0].Role())
	})

	t.Run("images with vision", func(t *testing.T) {
		got := BuildMessages("what is this?", nil, []string{"http://a/1.png", "http://a/2.png"}, "", true)

		require.Len(t, got, 1)
		assert.True(t, got[0].IsMultimodal())
		assert.Equal(t, []domain.ImageRef{{URL: "http://a/1.png"}, {URL: "http://a/2.png"}}, got[0].Images())
	})

	t.Run("images without vision are dropped", func(t *testing.T) {
		got := BuildMessages("what is this?", nil, []string{"http://a/1.png"}, "", false)

		require.Len(t, got, 1)
		assert.False(t, got[0].IsMultimodal())
		assert.Equal(t, "what is this?", got[0].Text())
	})

	t.Run("history is not mutated", func(t *testing.T) {
		h := make([]domain.ChatMessage, len(history), len(history)+10)
		copy(h, history)

		_ = BuildMessages("x", h, nil, "sys", false)

		assert.Equal(t, history, h[:len(history)])
		assert.Len(t, h, 2)
	})
}

func TestToOpenAIWireShape(t *testing.T) {
	messages := []domain.ChatMessage{
		domain.NewTextMessage(domain.RoleSystem, "sys"),
		domain.NewMultimodalMessage(domain.RoleUser, "look", []string{"data:image/jpeg;base64,AAA"}),
	}

	raw, err := json.Marshal(toOpenAI(messages))
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 2)

	assert.Equal(t, "system", decoded[0]["role"])
	assert.Equal(t, "sys", decoded[0]["content"])

	parts, ok := decoded[1]["content"].([]any)
	require.True(t, ok, "multimodal content must be an array")
	require.Len(t, parts, 2)
	assert.Equal(t, map[string]any{"type": "text", "text": "look"}, parts[0])

	imagePart := parts[1].(map[string]any)
	assert.Equal(t, "image_url", imagePart["type"])
	assert.Equal(t, "data:image/jpeg;base64,AAA", imagePart["image_url"].(map[string]any)["url"])
}
