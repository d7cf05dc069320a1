package workers

import (
	"context"
	"errors"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTelegram struct {
	polled, webhooked bool
	deleted           bool
	webhook           *bot.SetWebhookParams
	setErr            error
}

func (f *fakeTelegram) Start(ctx context.Context)        { f.polled = true; <-ctx.Done() }
func (f *fakeTelegram) StartWebhook(ctx context.Context) { f.webhooked = true; <-ctx.Done() }

func (f *fakeTelegram) SetWebhook(_ context.Context, params *bot.SetWebhookParams) (bool, error) {
	f.webhook = params
	return f.setErr == nil, f.setErr
}

func (f *fakeTelegram) DeleteWebhook(context.Context, *bot.DeleteWebhookParams) (bool, error) {
	f.deleted = true
	return true, nil
}

func cancelled() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func TestTelegramBotPolling(t *testing.T) {
	fake := &fakeTelegram{}

	require.NoError(t, NewTelegramBot(fake, "", "").Start(cancelled()))

	assert.True(t, fake.deleted)
	assert.True(t, fake.polled)
	assert.False(t, fake.webhooked)
}

func TestTelegramBotWebhook(t *testing.T) {
	fake := &fakeTelegram{}

	require.NoError(t, NewTelegramBot(fake, "https://relay.example.com/api/messages", "s3cret").Start(cancelled()))

	assert.True(t, fake.webhooked)
	assert.False(t, fake.polled)
	assert.Equal(t, "https://relay.example.com/api/messages", fake.webhook.URL)
	assert.Equal(t, "s3cret", fake.webhook.SecretToken)
}

func TestTelegramBotWebhookFailure(t *testing.T) {
	fake := &fakeTelegram{setErr: errors.New("bad url")}

	err := NewTelegramBot(fake, "https://relay.example.com/api/messages", "").Start(cancelled())

	assert.ErrorContains(t, err, "setting webhook")
	assert.False(t, fake.webhooked)
}
