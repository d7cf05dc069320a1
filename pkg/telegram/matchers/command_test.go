package matchers

import (
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		name   string
		update *models.Update
		want   bool
	}{
		{"plain", &models.Update{Message: &models.Message{Text: "/reset"}}, true},
		{"addressed", &models.Update{Message: &models.Message{Text: "/reset@relay_bot"}}, true},
		{"with args", &models.Update{Message: &models.Message{Text: "/reset now"}}, true},
		{"other command", &models.Update{Message: &models.Message{Text: "/resetall"}}, false},
		{"not first", &models.Update{Message: &models.Message{Text: "please /reset"}}, false},
		{"no message", &models.Update{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Command("reset")(tt.update))
		})
	}
}

func TestNone(t *testing.T) {
	match := None(Command("start"), Command("reset"))

	assert.False(t, match(&models.Update{Message: &models.Message{Text: "/start"}}))
	assert.False(t, match(&models.Update{Message: &models.Message{Text: "/reset"}}))
	assert.True(t, match(&models.Update{Message: &models.Message{Text: "hello"}}))
	assert.True(t, match(&models.Update{MyChatMember: &models.ChatMemberUpdated{}}))
}
