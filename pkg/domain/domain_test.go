package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatMessageImagesAreCopied(t *testing.T) {
	urls := []string{"data:image/png;base64,AA"}
	msg := NewMultimodalMessage(RoleUser, "what is this?", urls)
	urls[0] = "changed"

	images := msg.Images()
	images[0].URL = "mutated"

	assert.Equal(t, []ImageRef{{URL: "data:image/png;base64,AA"}}, msg.Images())
	assert.True(t, msg.IsMultimodal())
}

func TestTextMessage(t *testing.T) {
	msg := NewTextMessage(RoleAssistant, "hi")

	assert.Equal(t, RoleAssistant, msg.Role())
	assert.Equal(t, "hi", msg.Text())
	assert.Nil(t, msg.Images())
	assert.False(t, msg.IsMultimodal())
	assert.False(t, NewMultimodalMessage(RoleUser, "x", nil).IsMultimodal())
}

func TestMentionsRecipient(t *testing.T) {
	recipient := Identity{ID: "99", Name: "Relay_Bot"}

	tests := []struct {
		name     string
		mentions []Mention
		want     bool
	}{
		{"none", nil, false},
		{"by id", []Mention{{ID: "99"}}, true},
		{"by name ignoring case", []Mention{{ID: "relay_bot"}}, true},
		{"someone else", []Mention{{ID: "bob"}, {ID: "7"}}, false},
		{"empty mention", []Mention{{ID: ""}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turn := Turn{Recipient: recipient, Mentions: tt.mentions}
			assert.Equal(t, tt.want, turn.MentionsRecipient())
		})
	}
}

func TestMentionsRecipientWithoutName(t *testing.T) {
	turn := Turn{Recipient: Identity{ID: "99"}, Mentions: []Mention{{ID: ""}}}
	assert.False(t, turn.MentionsRecipient())
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "message", EventMessage.String())
	assert.Equal(t, "conversation_update", EventConversationUpdate.String())
	assert.Equal(t, "unknown", EventUnknown.String())
}

func TestIsModelFailure(t *testing.T) {
	wrapped := fmt.Errorf("streaming: %w", &TransportError{Err: context.DeadlineExceeded})

	assert.True(t, IsModelFailure(&HTTPError{Status: 500}))
	assert.True(t, IsModelFailure(wrapped))
	assert.True(t, errors.Is(wrapped, context.DeadlineExceeded))
	assert.False(t, IsModelFailure(errors.New("other")))
	assert.False(t, IsModelFailure(nil))
}

func TestErrorTexts(t *testing.T) {
	assert.Equal(t, "model server returned status 502", (&HTTPError{Status: 502}).Error())
	assert.Equal(t, "model server returned status 500: boom", (&HTTPError{Status: 500, Body: "boom"}).Error())
	assert.Equal(t, "❌ Could not get a reply from the local model: model server returned status 500: boom",
		FailureText(&HTTPError{Status: 500, Body: "boom"}))
}
