package telegram

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"unicode/utf16"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/dskvich/llm-relay-bot/pkg/domain"
)

const (
	maxMessageLength = 4096
	maxPhotoBytes    = 10 << 20
)

// botAPI is the part of *bot.Bot the transport drives.
type botAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	GetFile(ctx context.Context, params *bot.GetFileParams) (*models.File, error)
	FileDownloadLink(f *models.File) string
}

type client struct {
	bot        botAPI
	httpClient *http.Client
}

// NewClient wraps a bot as the relay's chat transport.
func NewClient(b botAPI) *client {
	return &client{bot: b, httpClient: http.DefaultClient}
}

// SendReply answers the inbound message in its own thread.
func (c *client) SendReply(ctx context.Context, turn domain.Turn, text string) (domain.ReplyHandle, error) {
	chatID, threadID, err := ParseConversationID(turn.ConversationID)
	if err != nil {
		return domain.ReplyHandle{}, err
	}

	params := &bot.SendMessageParams{
		ChatID:          chatID,
		MessageThreadID: threadID,
		Text:            c.FitReply(text),
	}
	if replyTo, err := strconv.Atoi(turn.MessageID); err == nil {
		params.ReplyParameters = &models.ReplyParameters{MessageID: replyTo, AllowSendingWithoutReply: true}
	}

	msg, err := c.bot.SendMessage(ctx, params)
	if err != nil {
		return domain.ReplyHandle{}, fmt.Errorf("sending message: %w", err)
	}

	return domain.ReplyHandle{ConversationID: turn.ConversationID, MessageID: strconv.Itoa(msg.ID)}, nil
}

// UpdateReply replaces the text of a previously sent reply.
func (c *client) UpdateReply(ctx context.Context, handle domain.ReplyHandle, text string) error {
	chatID, _, err := ParseConversationID(handle.ConversationID)
	if err != nil {
		return err
	}
	messageID, err := strconv.Atoi(handle.MessageID)
	if err != nil {
		return fmt.Errorf("parsing message id: %w", err)
	}

	if _, err := c.bot.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      c.FitReply(text),
	}); err != nil {
		return fmt.Errorf("editing message: %w", err)
	}
	return nil
}

// PhotoURL downloads the largest photo of a message and returns it as a data URL.
func (c *client) PhotoURL(ctx context.Context, photos []models.PhotoSize) (string, error) {
	photo, ok := largestPhoto(photos)
	if !ok {
		return "", errors.New("message has no photo")
	}

	file, err := c.bot.GetFile(ctx, &bot.GetFileParams{FileID: photo.FileID})
	if err != nil {
		return "", fmt.Errorf("getting file: %w", err)
	}

	data, err := c.download(ctx, c.bot.FileDownloadLink(file))
	if err != nil {
		return "", err
	}

	slog.DebugContext(ctx, "photo downloaded", "file_id", photo.FileID, "bytes", len(data))
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (c *client) download(ctx context.Context, link string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading file: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if len(data) > maxPhotoBytes {
		return nil, fmt.Errorf("file exceeds %d bytes", maxPhotoBytes)
	}
	return data, nil
}

// FitReply returns text as Telegram will store it, cut to the message limit.
func (c *client) FitReply(text string) string {
	return truncate(text, maxMessageLength)
}

// truncate cuts text to at most limit UTF-16 code units, the unit Telegram
// counts message length in. A surrogate pair is never split.
func truncate(text string, limit int) string {
	units := utf16.Encode([]rune(text))
	if len(units) <= limit {
		return text
	}

	cut := limit - 1
	if cut > 0 && utf16.IsSurrogate(rune(units[cut-1])) && units[cut-1] < 0xdc00 {
		cut--
	}
	return string(utf16.Decode(units[:cut])) + "…"
}
