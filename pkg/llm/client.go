package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/dskvich/llm-relay-bot/pkg/domain"
)

const (
	DefaultTimeout = 60 * time.Second

	maxErrorBodyBytes = 64 << 10
)

type Config struct {
	BaseURL        string
	ChatPath       string
	Model          string
	SystemPrompt   string
	SupportsVision bool
	APIKey         string

	// Timeout bounds the whole exchange, including reading the stream.
	Timeout time.Duration

	HTTPClient *http.Client
}

// Request is one user turn with the history that precedes it.
type Request struct {
	Message   string
	History   []domain.ChatMessage
	ImageURLs []string
}

type Client struct {
	endpoint       string
	model          string
	systemPrompt   string
	supportsVision bool
	apiKey         string
	timeout        time.Duration
	hc             *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Model == "" {
		return nil, errors.New("model is empty")
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	chatPath := cfg.ChatPath
	if chatPath != "" && !strings.HasPrefix(chatPath, "/") {
		chatPath = "/" + chatPath
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	return &Client{
		endpoint:       base.String() + chatPath,
		model:          cfg.Model,
		systemPrompt:   cfg.SystemPrompt,
		supportsVision: cfg.SupportsVision,
		apiKey:         cfg.APIKey,
		timeout:        timeout,
		hc:             hc,
	}, nil
}

func (c *Client) Endpoint() string     { return c.endpoint }
func (c *Client) Model() string        { return c.model }
func (c *Client) SupportsVision() bool { return c.supportsVision }

// StreamReply opens a streaming completion. A non-2xx answer fails with
// *domain.HTTPError and a connection failure with *domain.TransportError,
// both before any delta is produced.
func (c *Client) StreamReply(ctx context.Context, req Request) (*Stream, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)

	resp, err := c.post(ctx, req, true)
	if err != nil {
		cancel()
		return nil, err
	}

	return newStream(ctx, cancel, resp.Body), nil
}

// Reply streams a completion, reporting every growing prefix to tap, and
// returns the full text. An empty completion yields domain.EmptyContentText.
func (c *Client) Reply(ctx context.Context, req Request, tap func(acc string)) (string, error) {
	stream, err := c.StreamReply(ctx, req)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	text, err := Fold(stream.Deltas(), tap)
	if err != nil {
		return text, err
	}
	if text == "" {
		return domain.EmptyContentText, nil
	}
	return text, nil
}

// GenerateReply is Reply without observation.
func (c *Client) GenerateReply(ctx context.Context, req Request) (string, error) {
	return c.Reply(ctx, req, nil)
}

// Complete asks for a non-streaming completion.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.post(ctx, req, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var completion openai.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", &domain.TransportError{Err: fmt.Errorf("decoding response: %w", err)}
	}

	if len(completion.Choices) == 0 {
		return domain.NoResponseText, nil
	}

	content := completion.Choices[0].Message.Content
	if content == "" {
		return domain.EmptyContentText, nil
	}
	return content, nil
}

func (c *Client) newCompletionRequest(req Request, stream bool) openai.ChatCompletionRequest {
	messages := BuildMessages(req.Message, req.History, req.ImageURLs, c.systemPrompt, c.supportsVision)

	return openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toOpenAI(messages),
		Stream:   stream,
	}
}

func (c *Client) post(ctx context.Context, req Request, stream bool) (*http.Response, error) {
	completionReq := c.newCompletionRequest(req, stream)

	body, err := json.Marshal(completionReq)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	slog.DebugContext(ctx, "Calling local model",
		"endpoint", c.endpoint,
		"model", c.model,
		"stream", stream,
		"messagesCount", len(completionReq.Messages),
	)

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, &domain.TransportError{Err: fmt.Errorf("executing HTTP request: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &domain.HTTPError{Status: resp.StatusCode, Body: strings.TrimSpace(string(bodyBytes))}
	}

	return resp, nil
}
